package lfdemod

// DemodNRZ thresholds the level directly: each whole clock of a high run is a 1, of a low run a 0.
func (ctx *DecodeContext) DemodNRZ(opts DemodOptions) (BitBuffer, error) {
	const op = "DemodNRZ"

	var samples, props, err = ctx.prepare(op, opts)
	if err != nil {
		return BitBuffer{}, err
	}

	var clk = opts.Clock
	if clk == 0 {
		var res, detectErr = detectNRZClock(samples, props, ctx.Config.Demod.ClockMaxErrors)
		if detectErr != nil {
			return BitBuffer{}, detectErr
		}

		clk = res.Clock
	}

	var hi, lo = props.levelThresholds()
	var runs = interiorRuns(levelRuns(samples, hi, lo))

	if len(runs) == 0 {
		return BitBuffer{}, demodErr(op, ErrInsufficientData, "no complete level runs")
	}

	var tol = max(1, clk/8)
	var bb = BitBuffer{Clock: clk, StartOffset: runs[0].start, Inverted: opts.Invert == 1}

	for _, r := range runs {
		var k = (r.length + clk/2) / clk

		// Glitch.
		if k == 0 {
			bb.ErrCount++
			continue
		}

		var bad = abs(r.length-k*clk) > tol
		if bad {
			bb.ErrCount++
		}

		var v uint8
		if r.high {
			v = 1
		}

		for range k {
			bb.appendBit(v^uint8(opts.Invert), bad)
		}
	}

	return ctx.finish(op, bb, opts.MaxErrors)
}
