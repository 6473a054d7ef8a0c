package lfdemod

/*------------------------------------------------------------------
 *
 * Purpose:	Policy shared by every demodulator.
 *
 * Description:	A demodulator works on a private copy of the trace.  It
 *		refuses short or flat traces, refuses results with fewer
 *		than 16 bits, and refuses results with more errors than
 *		the caller allowed.  Only a demodulation that passes all
 *		of that replaces the bit buffer and moves the clock grid.
 *
 *---------------------------------------------------------------*/

type DemodOptions struct {
	Clock     int  // 0 to detect
	Invert    int  // 0 or 1
	MaxErrors int  // errors tolerated; exactly this many is still a success
	MaxLen    int  // samples considered, 0 for all
	Amplify   bool // ASK only
}

// DefaultDemodOptions uses the configured error budget and detects the clock.
func (ctx *DecodeContext) DefaultDemodOptions() DemodOptions {
	return DemodOptions{MaxErrors: ctx.Config.Demod.MaxErrors}
}

/*-------------------------------------------------------------------
 *
 * Name:	NormalizeClockArg
 *
 * Purpose:	Apply the command line convention that a clock of 1
 *		means "inverted, detect the clock".
 *
 *---------------------------------------------------------------*/

func NormalizeClockArg(clock int, invert int) (int, int, error) {
	if clock == 1 {
		clock, invert = 0, 1
	}

	if clock < 0 {
		return 0, 0, demodErr("clock", ErrInvalidArgument, "clock %d", clock)
	}

	if invert != 0 && invert != 1 {
		return 0, 0, demodErr("invert", ErrInvalidArgument, "invert must be 0 or 1, got %d", invert)
	}

	return clock, invert, nil
}

// prepare validates options and returns a private copy of the trace with its properties.
func (ctx *DecodeContext) prepare(op string, opts DemodOptions) ([]int, SignalProperties, error) {
	if opts.Invert != 0 && opts.Invert != 1 {
		return nil, SignalProperties{}, demodErr(op, ErrInvalidArgument, "invert must be 0 or 1, got %d", opts.Invert)
	}

	if opts.Clock < 0 || opts.MaxErrors < 0 || opts.MaxLen < 0 {
		return nil, SignalProperties{}, demodErr(op, ErrInvalidArgument, "clock %d, max errors %d, max length %d", opts.Clock, opts.MaxErrors, opts.MaxLen)
	}

	var samples = ctx.Samples.Copy(opts.MaxLen)
	if len(samples) < MinDemodSamples {
		return nil, SignalProperties{}, demodErr(op, ErrInsufficientData, "%d samples, need %d", len(samples), MinDemodSamples)
	}

	var props = ComputeSignalProperties(samples, ctx.Config.Demod)
	if props.IsNoise {
		return nil, SignalProperties{}, demodErr(op, ErrInsufficientData, "signal looks like noise (amplitude %d)", props.Amplitude)
	}

	return samples, props, nil
}

// finish applies the result checks and commits on success.
func (ctx *DecodeContext) finish(op string, bb BitBuffer, maxErrors int) (BitBuffer, error) {
	if bb.ErrCount < 0 {
		return BitBuffer{}, demodErr(op, ErrInternal, "error count %d", bb.ErrCount)
	}

	if bb.Len() < MinDemodBits {
		return BitBuffer{}, demodErr(op, ErrInsufficientData, "only %d bits", bb.Len())
	}

	if bb.ErrCount > maxErrors {
		ctx.Log.Debug("too many errors", "op", op, "errors", bb.ErrCount, "max", maxErrors, "bits", bb.Len())
		return BitBuffer{}, demodErr(op, ErrTooManyErrors, "%d errors, %d allowed", bb.ErrCount, maxErrors)
	}

	ctx.Log.Debug("demod ok", "op", op, "clock", bb.Clock, "start", bb.StartOffset, "bits", bb.Len(), "errors", bb.ErrCount)
	ctx.commitBits(bb)

	return bb, nil
}

/* end demod.go */
