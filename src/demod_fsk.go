package lfdemod

/*------------------------------------------------------------------
 *
 * Purpose:	FSK demodulation.
 *
 * Description:	The carrier alternates between two field clocks.  Cycles
 *		at the shorter field clock carry 1 bits, cycles at the
 *		longer one 0 bits.  Each bit period is a window on the
 *		trace and the field clock that fills most of it wins.
 *
 *---------------------------------------------------------------*/

import (
	"slices"
)

// FSKType names the FSK variant for display.  It has no effect on decoding.
func FSKType(fcHigh int, fcLow int, invert int) string {
	switch {
	case fcHigh == 10 && fcLow == 8:
		if invert == 1 {
			return "FSK2a"
		}

		return "FSK2"
	case fcHigh == 8 && fcLow == 5:
		if invert == 1 {
			return "FSK1"
		}

		return "FSK1a"
	}

	return "FSK??"
}

type FSKInfo struct {
	FCHigh int
	FCLow  int
	Label  string
}

/*-------------------------------------------------------------------
 *
 * Name:	DemodFSK
 *
 * Purpose:	Demodulate an FSK trace into the bit buffer.
 *
 * Inputs:	opts	- Clock is the bit clock; 0 to detect it.  The
 *			  field clocks are always measured.
 *
 * Returns:	Bits, plus the field clocks and variant label.
 *
 *---------------------------------------------------------------*/

func (ctx *DecodeContext) DemodFSK(opts DemodOptions) (BitBuffer, FSKInfo, error) {
	const op = "DemodFSK"

	var samples, props, err = ctx.prepare(op, opts)
	if err != nil {
		return BitBuffer{}, FSKInfo{}, err
	}

	var a, analyzeErr = analyzeFSK(samples, props)
	if analyzeErr != nil {
		return BitBuffer{}, FSKInfo{}, analyzeErr
	}

	var info = FSKInfo{FCHigh: a.fcHigh, FCLow: a.fcLow, Label: FSKType(a.fcHigh, a.fcLow, opts.Invert)}

	var clk = opts.Clock
	if clk == 0 {
		var res, detectErr = detectFSKClock(samples, props)
		if detectErr != nil {
			return BitBuffer{}, info, detectErr
		}

		clk = res.Clock
	}

	if len(a.runs) == 0 {
		return BitBuffer{}, info, demodErr(op, ErrInsufficientData, "no complete tone runs")
	}

	var bb = fskWindows(a, clk, opts.Invert)

	ctx.Log.Debug("fsk", "fc_high", a.fcHigh, "fc_low", a.fcLow, "clock", clk, "label", info.Label)

	var out, finishErr = ctx.finish(op, bb, opts.MaxErrors)

	return out, info, finishErr
}

/*-------------------------------------------------------------------
 *
 * Name:	fskWindows
 *
 * Purpose:	Cut the carrier into bit windows and vote each one.
 *
 * Description:	Windows start at the first complete tone run and step
 *		by the clock.  When a tone change lands within one long
 *		cycle of where a window would start, the window starts
 *		there instead, which keeps the grid on the tag's clock.
 *
 *		Every carrier cycle that overlaps a window votes for its
 *		field clock with the number of samples it overlaps.
 *		Cycles much shorter than the short field clock are
 *		noise and do not vote.  A window with no clear winner
 *		is an error, and so is one where the losing tone holds
 *		more than a third of it.
 *
 *---------------------------------------------------------------*/

func fskWindows(a fskAnalysis, clk int, invert int) BitBuffer {
	var last = a.runs[len(a.runs)-1]
	var end = last.start + last.length
	var bb = BitBuffer{Clock: clk, StartOffset: a.runs[0].start, Inverted: invert == 1}

	var run = 0

	for w := a.runs[0].start; w+clk <= end; w += clk {
		for run < len(a.runs) && a.runs[run].start < w-a.fcHigh {
			run++
		}

		if run < len(a.runs) && abs(a.runs[run].start-w) <= a.fcHigh {
			w = a.runs[run].start
			run++

			if w+clk > end {
				break
			}
		}

		var lowSum, highSum = 0, 0
		var i, _ = slices.BinarySearch(a.edges, w+1)

		for i = max(i, 1); i < len(a.edges) && a.edges[i-1] < w+clk; i++ {
			var length = a.edges[i] - a.edges[i-1]
			var overlap = min(a.edges[i], w+clk) - max(a.edges[i-1], w)

			if overlap <= 0 || length < a.fcLow-2 {
				continue
			}

			if 2*length < a.fcHigh+a.fcLow {
				lowSum += overlap
			} else {
				highSum += overlap
			}
		}

		if lowSum == highSum {
			bb.ErrCount++
			bb.appendBit(0, true)

			continue
		}

		var v uint8
		if lowSum > highSum {
			v = 1
		}

		var bad = 3*min(lowSum, highSum) > lowSum+highSum
		if bad {
			bb.ErrCount++
		}

		if !bb.appendBit(v^uint8(invert), bad) {
			break
		}
	}

	return bb
}

// toneTemplate is clk samples of a square carrier at field clock fc, centred so any
// remainder is split between the two ends.
func toneTemplate(clk int, fc int) []int {
	var rem = clk % fc
	var left, right = rem%2 + rem/2, rem / 2
	var half = fc%2 + fc/2

	var t = make([]int, 0, clk)

	for range left {
		t = append(t, 1)
	}

	for range clk / fc {
		for j := range fc {
			if j < half {
				t = append(t, 1)
			} else {
				t = append(t, -1)
			}
		}
	}

	for range right {
		t = append(t, -1)
	}

	return t
}

/*-------------------------------------------------------------------
 *
 * Name:	FSKToNRZ
 *
 * Purpose:	Turn a weak FSK trace into an NRZ wave.
 *
 * Inputs:	clk, fcHigh, fcLow - Any of them 0 to measure all three.
 *
 * Description:	A clock long window of the trace is matched against a
 *		square carrier at each field clock.  The match strengths
 *		are then averaged over one cycle of their own field
 *		clock, and the trace becomes the short field clock's
 *		strength less the long one's, normalised.  1 bits come
 *		out high, so the result can go straight to DemodNRZ.
 *
 *		The trace gets shorter by clk + fcHigh samples.  The bit
 *		buffer and clock grid are cleared.
 *
 *---------------------------------------------------------------*/

func (ctx *DecodeContext) FSKToNRZ(clk int, fcHigh int, fcLow int) error {
	const op = "FSKToNRZ"

	if clk < 0 || fcHigh < 0 || fcLow < 0 {
		return demodErr(op, ErrInvalidArgument, "clock %d, field clocks %d/%d", clk, fcHigh, fcLow)
	}

	var samples = ctx.Samples.Samples()

	if clk == 0 || fcHigh == 0 || fcLow == 0 {
		var props = ComputeSignalProperties(samples, ctx.Config.Demod)
		if props.IsNoise {
			return demodErr(op, ErrInsufficientData, "signal looks like noise (amplitude %d)", props.Amplitude)
		}

		var res, err = detectFSKClock(samples, props)
		if err != nil {
			return err
		}

		clk, fcHigh, fcLow = res.Clock, res.FCHigh, res.FCLow
		ctx.Log.Debug("fsk to nrz", "clock", clk, "fc_high", fcHigh, "fc_low", fcLow)
	}

	// Only field clocks between 4 and 10 samples are known to carry FSK.
	if fcHigh > 10 || fcLow < 4 || fcHigh <= fcLow || clk < fcHigh {
		return demodErr(op, ErrInvalidArgument, "clock %d with field clocks %d/%d", clk, fcHigh, fcLow)
	}

	var n = len(samples)
	if n <= clk+fcHigh {
		return demodErr(op, ErrInsufficientData, "%d samples for clock %d", n, clk)
	}

	var longTone, shortTone = toneTemplate(clk, fcHigh), toneTemplate(clk, fcLow)
	var longMatch, shortMatch = make([]int, n-clk), make([]int, n-clk)

	for i := range n - clk {
		var longSum, shortSum = 0, 0

		for j := range clk {
			longSum += longTone[j] * samples[i+j]
			shortSum += shortTone[j] * samples[i+j]
		}

		longMatch[i] = abs(100 * longSum / clk)
		shortMatch[i] = abs(100 * shortSum / clk)
	}

	var out = make([]int, n-clk-fcHigh)

	for i := range out {
		var longTot, shortTot = 0, 0

		for j := range fcHigh {
			longTot += longMatch[i+j]
		}

		for j := range fcLow {
			shortTot += shortMatch[i+j]
		}

		out[i] = shortTot - longTot
	}

	var nrz = &SampleBuffer{samples: out}
	if err := nrz.Normalize(); err != nil {
		return err
	}

	ctx.Samples.samples = nrz.samples
	ctx.ClearBits()
	ctx.Grid = ClockGrid{}

	return nil
}

/* end demod_fsk.go */
