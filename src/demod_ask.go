package lfdemod

/*------------------------------------------------------------------
 *
 * Purpose:	ASK demodulation: raw, Manchester and biphase.
 *
 * Description:	The raw demodulator measures how long the signal stays
 *		high or low.  Every half clock of a run produces one raw
 *		bit, so a Manchester or biphase coded tag gives two raw
 *		bits per data bit.  The Manchester and biphase passes then
 *		pair those raw bits up.
 *
 *		A run that is not close to a whole number of half clocks
 *		is ambiguous.  It counts as one error and the bits it
 *		produced are flagged.  A run too short to be even half a
 *		clock is a glitch and produces nothing but an error.
 *
 *---------------------------------------------------------------*/

// AskAmp squares up a weak ASK trace.  Jumps up of 30 or more go to full scale high,
// jumps down of 20 or more to full scale low, and everything else holds the last level.
func AskAmp(samples []int) {
	if len(samples) < 2 {
		return
	}

	var last = 0

	for i := 1; i < len(samples); i++ {
		if samples[i]-samples[i-1] >= 30 {
			last = SampleMax
		} else if samples[i-1]-samples[i] >= 20 {
			last = SampleMin
		}

		samples[i-1] = last
	}

	samples[len(samples)-1] = last
}

type askRaw struct {
	bits     BitBuffer
	glitches int
}

/*-------------------------------------------------------------------
 *
 * Name:	askRawDemod
 *
 * Purpose:	Turn a private copy of the trace into half clock bits.
 *
 * Inputs:	samples	- Private copy, may be amplified in place.
 *
 *		opts	- Clock 0 means look for a sequence terminator
 *			  and then fall back to run length detection.
 *
 * Returns:	Raw bits.  Clock is the full bit clock even though
 *		each raw bit covers half of it.
 *
 * Description:	When a sequence terminator was found, only the frame
 *		that follows the first one is decoded, up to the next
 *		terminator or the end of the trace.
 *
 *---------------------------------------------------------------*/

func (ctx *DecodeContext) askRawDemod(samples []int, opts DemodOptions) (askRaw, error) {
	const op = "DemodASK"

	if opts.Amplify {
		AskAmp(samples)
	}

	var props = ComputeSignalProperties(samples, ctx.Config.Demod)
	var hi, lo = props.levelThresholds()
	var runs = levelRuns(samples, hi, lo)

	var clk = opts.Clock
	var anchor, stop = -1, len(samples)

	var terminators, found = detectST(runs)
	if found && (clk == 0 || clk == terminators[0].Clock) {
		clk = terminators[0].Clock
		anchor = terminators[0].End

		if len(terminators) > 1 {
			stop = terminators[1].Start
		}

		ctx.Log.Debug("sequence terminator", "clock", clk, "start", terminators[0].Start, "end", anchor, "count", len(terminators))
	}

	if clk == 0 {
		var res, err = detectASKClock(samples, props, ctx.Config.Demod.ClockMaxErrors)
		if err != nil {
			return askRaw{}, err
		}

		clk = res.Clock
	}

	if clk < 2 {
		return askRaw{}, demodErr(op, ErrInvalidArgument, "clock %d", clk)
	}

	var selected []levelRun

	if anchor >= 0 {
		for _, r := range runs {
			if r.start >= anchor && r.start+r.length <= stop {
				selected = append(selected, r)
			}
		}
	} else {
		selected = interiorRuns(runs)
	}

	if len(selected) == 0 {
		return askRaw{}, demodErr(op, ErrInsufficientData, "no complete level runs")
	}

	var half = clk / 2
	var tol = max(1, clk/4-1)
	var out = askRaw{bits: BitBuffer{Clock: clk, StartOffset: selected[0].start, Inverted: opts.Invert == 1}}

	for _, r := range selected {
		var k = (r.length + half/2) / half

		if k == 0 {
			out.glitches++
			out.bits.ErrCount++
			continue
		}

		var bad = abs(r.length-k*half) > tol
		if bad {
			out.bits.ErrCount++
		}

		var v uint8
		if r.high {
			v = 1
		}

		v ^= uint8(opts.Invert)

		for range k {
			if !out.bits.appendBit(v, bad) {
				return out, nil
			}
		}
	}

	return out, nil
}

// DemodASKRaw demodulates to half clock raw bits.
func (ctx *DecodeContext) DemodASKRaw(opts DemodOptions) (BitBuffer, error) {
	var samples, _, err = ctx.prepare("DemodASKRaw", opts)
	if err != nil {
		return BitBuffer{}, err
	}

	var raw, rawErr = ctx.askRawDemod(samples, opts)
	if rawErr != nil {
		return BitBuffer{}, rawErr
	}

	return ctx.finish("DemodASKRaw", raw.bits, opts.MaxErrors)
}

/*-------------------------------------------------------------------
 *
 * Name:	manchesterPairs
 *
 * Purpose:	Decode raw half bits as Manchester, 01 = 1 and 10 = 0.
 *
 * Description:	Both ways of pairing up the raw bits are tried and the
 *		one with fewer invalid pairs is where decoding starts.  A
 *		pair of equal bits, or one holding a flagged bit, is an
 *		error.  A glitch can swallow or add a half bit, so after
 *		each invalid pair the next few pairs are counted at both
 *		alignments and decoding carries on from the cleaner one.
 *
 *---------------------------------------------------------------*/

const manchesterLookahead = 8

func manchesterPairs(raw BitBuffer, invert int) BitBuffer {
	var invalid = func(i int) bool {
		return raw.Bits[i] == raw.Bits[i+1] || raw.IsError(i) || raw.IsError(i+1)
	}

	var pairErrors = func(from int, pairs int) int {
		var errs = 0

		for i := from; i+1 < raw.Len() && pairs > 0; i, pairs = i+2, pairs-1 {
			if invalid(i) {
				errs++
			}
		}

		return errs
	}

	var align = 0
	if pairErrors(1, raw.Len()) < pairErrors(0, raw.Len()) {
		align = 1
	}

	var out = BitBuffer{
		Clock:       raw.Clock,
		StartOffset: raw.StartOffset + align*raw.Clock/2,
		Inverted:    raw.Inverted != (invert == 1),
	}

	for i := align; i+1 < raw.Len(); {
		if !invalid(i) {
			out.appendBit(raw.Bits[i+1]^uint8(invert), false)
			i += 2

			continue
		}

		out.ErrCount++
		out.appendBit(0, true)

		if pairErrors(i+1, manchesterLookahead) < pairErrors(i+2, manchesterLookahead) {
			i++
		} else {
			i += 2
		}
	}

	return out
}

// DemodASKManchester demodulates ASK and decodes the raw bits as Manchester.
func (ctx *DecodeContext) DemodASKManchester(opts DemodOptions) (BitBuffer, error) {
	var samples, _, err = ctx.prepare("DemodASKManchester", opts)
	if err != nil {
		return BitBuffer{}, err
	}

	var raw, rawErr = ctx.askRawDemod(samples, opts)
	if rawErr != nil {
		return BitBuffer{}, rawErr
	}

	var bb = manchesterPairs(raw.bits, 0)
	bb.ErrCount += raw.glitches

	return ctx.finish("DemodASKManchester", bb, opts.MaxErrors)
}

// ManchesterDecodeBits runs the Manchester pass over the current bit buffer.
func (ctx *DecodeContext) ManchesterDecodeBits(invert int, maxErrors int) (BitBuffer, error) {
	const op = "ManchesterDecode"

	if invert != 0 && invert != 1 {
		return BitBuffer{}, demodErr(op, ErrInvalidArgument, "invert must be 0 or 1, got %d", invert)
	}

	if ctx.Bits.Len() == 0 {
		return BitBuffer{}, demodErr(op, ErrInsufficientData, "bit buffer is empty")
	}

	return ctx.finish(op, manchesterPairs(ctx.Bits, invert), maxErrors)
}

/*-------------------------------------------------------------------
 *
 * Name:	biphasePairs
 *
 * Purpose:	Decode raw half bits as biphase.
 *
 * Inputs:	raw	- Raw ASK bits.
 *
 *		offset	- 0 or 1, which raw bit starts the first pair.
 *			  Moved on by one if that alignment shows fewer
 *			  phase errors.
 *
 * Returns:	Decoded bits and the offset actually used.
 *
 * Description:	The level always changes at a bit boundary.  A change
 *		in the middle as well (10 or 01) is a 0, no change (11
 *		or 00) is a 1.  Inverting gives conditional dephase.
 *		A missing change at a boundary is a phase error.
 *
 *---------------------------------------------------------------*/

func biphasePairs(raw BitBuffer, offset int, invert int) (BitBuffer, int) {
	var phaseErrors = func(align int) int {
		var errs = 0

		for i := align; i+2 < raw.Len(); i += 2 {
			if raw.Bits[i+1] == raw.Bits[i+2] {
				errs++
			}
		}

		return errs
	}

	var here = phaseErrors(offset)
	if here > 0 && phaseErrors(offset+1) < here {
		offset++
	}

	var out = BitBuffer{
		Clock:       raw.Clock,
		StartOffset: raw.StartOffset + offset*raw.Clock/2,
		Inverted:    invert == 1,
	}

	for i := offset; i+1 < raw.Len(); i += 2 {
		var bad = raw.IsError(i) || raw.IsError(i+1) || (i+2 < raw.Len() && raw.Bits[i+1] == raw.Bits[i+2])
		if bad {
			out.ErrCount++
			out.appendBit(0, true)

			continue
		}

		var v uint8 = 1
		if raw.Bits[i] != raw.Bits[i+1] {
			v = 0
		}

		out.appendBit(v^uint8(invert), false)
	}

	return out, offset
}

/*-------------------------------------------------------------------
 *
 * Name:	BiphaseDecode
 *
 * Purpose:	Second pass over raw ASK bits already in the bit buffer.
 *
 * Returns:	The biphase decoded bits.
 *
 * Description:	On success the bit buffer is not replaced by the
 *		decoded bits.  It keeps the raw bits, less the offset
 *		bits skipped at the start, so that a different tag
 *		decoder can have another go at them.
 *
 *---------------------------------------------------------------*/

func (ctx *DecodeContext) BiphaseDecode(offset int, invert int, maxErrors int) (BitBuffer, error) {
	const op = "BiphaseDecode"

	if offset != 0 && offset != 1 {
		return BitBuffer{}, demodErr(op, ErrInvalidArgument, "offset must be 0 or 1, got %d", offset)
	}

	if invert != 0 && invert != 1 {
		return BitBuffer{}, demodErr(op, ErrInvalidArgument, "invert must be 0 or 1, got %d", invert)
	}

	if ctx.Bits.Len() == 0 {
		return BitBuffer{}, demodErr(op, ErrInsufficientData, "bit buffer is empty, demodulate ASK first")
	}

	var decoded, used = biphasePairs(ctx.Bits, offset, invert)

	if decoded.Len() < MinDemodBits {
		return BitBuffer{}, demodErr(op, ErrInsufficientData, "only %d bits", decoded.Len())
	}

	if decoded.ErrCount > maxErrors {
		return BitBuffer{}, demodErr(op, ErrTooManyErrors, "%d errors, %d allowed", decoded.ErrCount, maxErrors)
	}

	var trimmed = ctx.Bits.Slice(used, ctx.Bits.Len())
	trimmed.StartOffset += ctx.Bits.Clock * used / 2

	ctx.Bits = trimmed
	ctx.SetClockGrid(trimmed.Clock, trimmed.StartOffset)

	return decoded, nil
}

// DemodASKBiphase demodulates ASK from the trace and commits the biphase decoded bits.
func (ctx *DecodeContext) DemodASKBiphase(offset int, opts DemodOptions) (BitBuffer, error) {
	const op = "DemodASKBiphase"

	if offset != 0 && offset != 1 {
		return BitBuffer{}, demodErr(op, ErrInvalidArgument, "offset must be 0 or 1, got %d", offset)
	}

	var samples, _, err = ctx.prepare(op, opts)
	if err != nil {
		return BitBuffer{}, err
	}

	var rawOpts = opts
	rawOpts.Invert = 0

	var raw, rawErr = ctx.askRawDemod(samples, rawOpts)
	if rawErr != nil {
		return BitBuffer{}, rawErr
	}

	var bb, _ = biphasePairs(raw.bits, offset, opts.Invert)
	bb.ErrCount += raw.glitches

	return ctx.finish(op, bb, opts.MaxErrors)
}

/* end demod_ask.go */
