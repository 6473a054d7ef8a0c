package lfdemod

/*------------------------------------------------------------------
 *
 * Purpose:	Find how often a trace repeats itself.
 *
 * Description:	Works on any modulation because it never looks at bits.
 *		Tags repeat their frame, so the lag at which the trace
 *		best matches itself is usually the frame length in
 *		samples.  For a trace with a strong clock it can also be
 *		the clock.
 *
 *---------------------------------------------------------------*/

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/conv"
)

// Correlation values closer than this are treated as equal peaks.
const peakEpsilon = 1e-6

type AutoCorrResult struct {
	Distance int
	Curve    []float64 // normalised correlation at each lag
}

/*-------------------------------------------------------------------
 *
 * Name:	AutoCorrelate
 *
 * Purpose:	Estimate the repeat distance of the current trace.
 *
 * Inputs:	window	- Lags from 0 up to len-window are tried.
 *
 *		commit	- Replace the trace with the correlation curve
 *			  (scaled to +-127, same length) and put the
 *			  result on the clock grid.
 *
 * Returns:	Distance in samples.
 *
 * Description:	The two highest correlation peaks are found.  If they
 *		are within 4% of each other their spacing is the answer.
 *		Failing that, the spacing of the last two lags that
 *		correlated above 1 is used.
 *
 *---------------------------------------------------------------*/

func (ctx *DecodeContext) AutoCorrelate(window int, commit bool) (AutoCorrResult, error) {
	const op = "AutoCorrelate"

	var samples = ctx.Samples.Samples()
	var n = len(samples)

	if window <= 0 || window >= n {
		return AutoCorrResult{}, demodErr(op, ErrInvalidArgument, "window %d must be between 1 and %d", window, n-1)
	}

	var props = ComputeSignalProperties(samples, ctx.Config.Demod)
	if props.IsNoise {
		return AutoCorrResult{}, demodErr(op, ErrInsufficientData, "signal looks like noise (amplitude %d)", props.Amplitude)
	}

	var mean, variance = meanVariance(samples)
	if variance == 0 {
		return AutoCorrResult{}, demodErr(op, ErrInsufficientData, "flat trace")
	}

	var centred = make([]float64, n)
	for i, v := range samples {
		centred[i] = float64(v) - mean
	}

	// Lag k sits at index n-1+k of the full correlation.
	var full, err = conv.AutoCorrelate(centred)
	if err != nil {
		return AutoCorrResult{}, demodErr(op, ErrInternal, "correlation failed: %v", err)
	}

	var lags = n - window
	var curve = make([]float64, lags)
	var correlation, lastMax = 0, 0

	for i := range lags {
		curve[i] = full[n-1+i] / (float64(n-i) * variance)

		if curve[i] > 1+peakEpsilon {
			correlation = i - lastMax
			lastMax = i
		}
	}

	var idx, hi = firstPeak(curve)

	var hi1, idx1 = math.Inf(-1), -1
	if last := min(window, lags-1); idx < last {
		var off int
		off, hi1 = firstPeak(curve[idx+1 : last+1])
		idx1 = idx + 1 + off
	}

	var distance = 0

	switch {
	case idx1 > 0 && math.Abs(hi-hi1) < 0.04*(hi+hi1)/2:
		distance = idx1 - idx
	case correlation > 1:
		distance = correlation
	default:
		ctx.Log.Debug("no repeating pattern", "peak", idx, "second", idx1)
		return AutoCorrResult{Curve: curve}, demodErr(op, ErrNoPatternFound, "no repeating pattern found")
	}

	ctx.Log.Debug("autocorrelation", "distance", distance, "peak", idx, "second", idx1)

	if commit {
		var out = make([]int, n)
		for i, ac := range curve {
			out[i] = clampSample(int(math.Round(ac * SampleMax)))
		}

		ctx.Samples.Set(out)
		ctx.SetClockGrid(distance, 0)
	}

	return AutoCorrResult{Distance: distance, Curve: curve}, nil
}

// firstPeak returns the earliest index whose value is within
// peakEpsilon of the maximum.  A repeating trace matches itself
// equally well at every multiple of its period, and rounding decides
// which of those FindPeak sees first.
func firstPeak(curve []float64) (int, float64) {
	var idx, hi = conv.FindPeak(curve)

	for i := range idx {
		if curve[i] >= hi-peakEpsilon {
			return i, curve[i]
		}
	}

	return idx, hi
}

func meanVariance(samples []int) (float64, float64) {
	var sum = 0.0
	for _, v := range samples {
		sum += float64(v)
	}

	var mean = sum / float64(len(samples))

	var sq = 0.0
	for _, v := range samples {
		var d = float64(v) - mean
		sq += d * d
	}

	return mean, sq / float64(len(samples))
}

/* end autocorr.go */
