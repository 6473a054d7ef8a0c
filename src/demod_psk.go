package lfdemod

/*------------------------------------------------------------------
 *
 * Purpose:	PSK demodulation.
 *
 * Description:	PSK1 is demodulated from the trace: each bit window is
 *		given the phase that most of its carrier cycles have.
 *		PSK2 and PSK3 are not demodulated separately.  They are
 *		PSK1 bits run through a differential transform.
 *
 *		The absolute phase of a PSK signal cannot be known from
 *		the signal alone.  The first carrier cycle of the trace
 *		is taken to be a 0; pass Invert if the tag disagrees.
 *
 *---------------------------------------------------------------*/

type PSKInfo struct {
	Carrier int
}

/*-------------------------------------------------------------------
 *
 * Name:	DemodPSK1
 *
 * Purpose:	Demodulate a PSK trace into the bit buffer.
 *
 * Inputs:	opts	- Clock 0 means detect it from the spacing of
 *			  phase reversals.
 *
 * Description:	Bit windows are laid on a grid through the first phase
 *		reversal and extended back to the start of the trace.
 *		Carrier cycles that straddle a reversal do not vote.
 *		A window with no votes, a tied vote, or a split vote
 *		counts as an error.
 *
 *---------------------------------------------------------------*/

func (ctx *DecodeContext) DemodPSK1(opts DemodOptions) (BitBuffer, PSKInfo, error) {
	const op = "DemodPSK1"

	var samples, props, err = ctx.prepare(op, opts)
	if err != nil {
		return BitBuffer{}, PSKInfo{}, err
	}

	var a, analyzeErr = analyzePSK(samples, props)
	if analyzeErr != nil {
		return BitBuffer{}, PSKInfo{}, analyzeErr
	}

	var info = PSKInfo{Carrier: a.carrier}

	var clk = opts.Clock
	if clk == 0 {
		var res, detectErr = detectPSKClock(samples, props)
		if detectErr != nil {
			return BitBuffer{}, info, detectErr
		}

		clk = res.Clock
	}

	if clk < a.carrier {
		return BitBuffer{}, info, demodErr(op, ErrInvalidArgument, "clock %d shorter than carrier %d", clk, a.carrier)
	}

	var first = a.shifts[0] % clk
	var bb = BitBuffer{Clock: clk, StartOffset: first, Inverted: opts.Invert == 1}

	var e = 1
	for w := first; w+clk <= len(samples); w += clk {
		var ones, zeros = 0, 0

		for ; e < len(a.edges) && a.edges[e] < w+clk; e++ {
			if a.edges[e] < w || a.isShift(e) {
				continue
			}

			if a.phase(a.edges[e]) == 1 {
				ones++
			} else {
				zeros++
			}
		}

		if ones == zeros {
			bb.ErrCount++
			bb.appendBit(0, true)

			continue
		}

		var bad = ones > 0 && zeros > 0
		if bad {
			bb.ErrCount++
		}

		var v uint8
		if ones > zeros {
			v = 1
		}

		bb.appendBit(v^uint8(opts.Invert), bad)
	}

	ctx.Log.Debug("psk", "carrier", a.carrier, "clock", clk, "first_shift", a.shifts[0])

	var out, finishErr = ctx.finish(op, bb, opts.MaxErrors)

	return out, info, finishErr
}

// DemodPSK2 is DemodPSK1 followed by PSK1ToPSK2.
func (ctx *DecodeContext) DemodPSK2(opts DemodOptions) (BitBuffer, PSKInfo, error) {
	var _, info, err = ctx.DemodPSK1(opts)
	if err != nil {
		return BitBuffer{}, info, err
	}

	ctx.Bits = PSK1ToPSK2(ctx.Bits)

	return ctx.Bits, info, nil
}

// DemodPSK3 is DemodPSK1 followed by PSK1ToPSK3.
func (ctx *DecodeContext) DemodPSK3(opts DemodOptions) (BitBuffer, PSKInfo, error) {
	var _, info, err = ctx.DemodPSK1(opts)
	if err != nil {
		return BitBuffer{}, info, err
	}

	ctx.Bits = PSK1ToPSK3(ctx.Bits)

	return ctx.Bits, info, nil
}

/*-------------------------------------------------------------------
 *
 * Name:	PSK1ToPSK2
 *
 * Purpose:	Re-encode PSK1 phase bits differentially.
 *
 * Description:	Each bit after the first becomes 1 where the phase
 *		changed from the previous good bit and 0 where it did
 *		not.  The first bit is kept as it is, which makes the
 *		transform reversible.  Error bits stay error bits and do
 *		not move the reference.
 *
 *---------------------------------------------------------------*/

func PSK1ToPSK2(bb BitBuffer) BitBuffer {
	return differential(bb, 1)
}

// PSK1ToPSK3 is PSK1ToPSK2 with the sense reversed: 1 where the phase did not change.
func PSK1ToPSK3(bb BitBuffer) BitBuffer {
	return differential(bb, 0)
}

func differential(bb BitBuffer, changed uint8) BitBuffer {
	var out = bb.Clone()
	if out.Len() == 0 {
		return out
	}

	var last = bb.Bits[0]

	for i := 1; i < bb.Len(); i++ {
		if bb.IsError(i) {
			continue
		}

		if bb.Bits[i] != last {
			out.Bits[i] = changed
		} else {
			out.Bits[i] = changed ^ 1
		}

		last = bb.Bits[i]
	}

	return out
}

// PSK2ToPSK1 undoes PSK1ToPSK2.
func PSK2ToPSK1(bb BitBuffer) BitBuffer {
	return integrate(bb, 1)
}

// PSK3ToPSK1 undoes PSK1ToPSK3.
func PSK3ToPSK1(bb BitBuffer) BitBuffer {
	return integrate(bb, 0)
}

func integrate(bb BitBuffer, changed uint8) BitBuffer {
	var out = bb.Clone()
	if out.Len() == 0 {
		return out
	}

	var phase = bb.Bits[0]

	for i := 1; i < bb.Len(); i++ {
		if bb.IsError(i) {
			continue
		}

		if bb.Bits[i] == changed {
			phase ^= 1
		}

		out.Bits[i] = phase
	}

	return out
}

/* end demod_psk.go */
