package lfdemod

/*------------------------------------------------------------------
 *
 * Purpose:	Estimate the bit clock (samples per bit) of a trace for
 *		each modulation family.
 *
 * Description:	All the estimators work the same way.  Something in the
 *		trace is measured (level runs for ASK and NRZ, tone runs
 *		for FSK, distances between phase reversals for PSK) and
 *		each candidate clock is scored by how many measurements
 *		are not close to a whole number of clock units.
 *
 *		A clock always fits its own multiples, so 16 fits a
 *		signal clocked at 32 just as well as 32 does.  Of the
 *		candidates that score close to the best, the largest wins.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"slices"
	"strings"
)

type Modulation int

const (
	ModASK Modulation = iota
	ModFSK
	ModPSK
	ModNRZ
)

func (m Modulation) String() string {
	switch m {
	case ModASK:
		return "ASK"
	case ModFSK:
		return "FSK"
	case ModPSK:
		return "PSK"
	case ModNRZ:
		return "NRZ"
	}

	return fmt.Sprintf("Modulation(%d)", int(m))
}

// ParseModulation accepts the single letter forms a, f, p, n as well as the names.
func ParseModulation(s string) (Modulation, error) {
	switch strings.ToLower(s) {
	case "a", "ask":
		return ModASK, nil
	case "f", "fsk":
		return ModFSK, nil
	case "p", "psk":
		return ModPSK, nil
	case "n", "nrz":
		return ModNRZ, nil
	}

	return 0, demodErr("ParseModulation", ErrInvalidArgument, "unknown modulation %q", s)
}

var (
	askClockCandidates = []int{8, 16, 32, 40, 50, 64, 100, 128, 256}
	fskClockCandidates = []int{32, 40, 50, 64, 100, 128}
	pskClockCandidates = []int{16, 32, 40, 50, 64, 100, 128}
)

// SequenceTerminator is a run of one and a half clocks that some ASK tags put between frames.
type SequenceTerminator struct {
	Start int
	End   int
	Clock int
}

type ClockResult struct {
	Clock int
	Start int

	// FSK only.
	FCHigh int
	FCLow  int

	// PSK only.
	Carrier int

	// ASK only, when the clock came from a sequence terminator.
	Terminators []SequenceTerminator
}

/*-------------------------------------------------------------------
 *
 * Name:	DetectClock
 *
 * Purpose:	Find the bit clock of the current trace.
 *
 * Inputs:	mod	- Modulation family.
 *
 *		hint	- Non zero means the caller already knows; it
 *			  is returned as is.
 *
 * Returns:	Clock and the sample offset of a bit boundary.  The
 *		clock grid is updated on success.
 *
 *---------------------------------------------------------------*/

func (ctx *DecodeContext) DetectClock(mod Modulation, hint int) (ClockResult, error) {
	if hint < 0 {
		return ClockResult{}, demodErr("DetectClock", ErrInvalidArgument, "clock %d", hint)
	}

	if hint != 0 {
		ctx.SetClockGrid(hint, 0)
		return ClockResult{Clock: hint}, nil
	}

	var samples = ctx.Samples.Samples()

	var props = ComputeSignalProperties(samples, ctx.Config.Demod)
	if props.IsNoise {
		return ClockResult{}, demodErr("DetectClock", ErrInsufficientData, "signal looks like noise (%d samples, amplitude %d)", props.Count, props.Amplitude)
	}

	var res ClockResult
	var err error

	switch mod {
	case ModASK:
		res, err = detectASKClock(samples, props, ctx.Config.Demod.ClockMaxErrors)
	case ModFSK:
		res, err = detectFSKClock(samples, props)
	case ModPSK:
		res, err = detectPSKClock(samples, props)
	case ModNRZ:
		res, err = detectNRZClock(samples, props, ctx.Config.Demod.ClockMaxErrors)
	default:
		return ClockResult{}, demodErr("DetectClock", ErrInvalidArgument, "%s", mod)
	}

	if err != nil {
		ctx.Log.Debug("clock detect failed", "modulation", mod, "err", err)
		return ClockResult{}, err
	}

	ctx.Log.Debug("clock detected", "modulation", mod, "clock", res.Clock, "start", res.Start)
	ctx.SetClockGrid(res.Clock, res.Start)

	return res, nil
}

// fitErrors counts lengths that are not within tol of a positive multiple of unit.
func fitErrors(lengths []int, unit int, tol int) int {
	var errs = 0

	for _, n := range lengths {
		var k = (n + unit/2) / unit
		if k == 0 || abs(n-k*unit) > tol {
			errs++
		}
	}

	return errs
}

/*-------------------------------------------------------------------
 *
 * Name:	pickClock
 *
 * Purpose:	Choose among scored candidate clocks.
 *
 * Inputs:	candidates	- Ascending.
 *		errs		- Misfit count for each candidate.
 *		maxErr		- Candidates above this are never chosen.
 *		measured	- How many measurements were scored.
 *
 * Returns:	Chosen clock, or 0 if none qualifies.
 *
 * Description:	A harmonic of the true clock fits as well as the clock
 *		itself, so the largest candidate that misfits at most an
 *		eighth of the measurements more than the best one wins.
 *		Glitches cost every candidate about the same number of
 *		misfits, so the margin scales with the trace.
 *
 *---------------------------------------------------------------*/

func pickClock(candidates []int, errs []int, maxErr int, measured int) int {
	var best = slices.Min(errs)
	if best > maxErr {
		return 0
	}

	var slack = max(2, measured/8)

	for i := len(candidates) - 1; i >= 0; i-- {
		if errs[i] <= maxErr && errs[i] <= best+slack {
			return candidates[i]
		}
	}

	return 0
}

func runLengths(runs []levelRun) []int {
	var lengths = make([]int, len(runs))
	for i, r := range runs {
		lengths[i] = r.length
	}

	return lengths
}

/*-------------------------------------------------------------------
 *
 * Name:	detectST
 *
 * Purpose:	Look for sequence terminators in an ASK trace.
 *
 * Description:	Manchester and biphase data never hold one level for
 *		longer than a full clock.  A run of three half clocks can
 *		only be a terminator.  Only clocks of 32 and 64 are
 *		considered, and the rest of the trace has to look like
 *		clean half and full clock runs at that clock.
 *
 *---------------------------------------------------------------*/

func detectST(runs []levelRun) ([]SequenceTerminator, bool) {
	var inner = interiorRuns(runs)

	for _, clk := range []int{32, 64} {
		var half = clk / 2
		var tol = clk/8 + 1
		var normal, odd = 0, 0
		var found []SequenceTerminator

		for _, r := range inner {
			var k = (r.length + half/2) / half

			switch {
			case abs(r.length-3*half) <= tol:
				found = append(found, SequenceTerminator{Start: r.start, End: r.start + r.length, Clock: clk})
			case (k == 1 || k == 2) && abs(r.length-k*half) <= tol:
				normal++
			default:
				odd++
			}
		}

		if len(found) > 0 && normal >= MinDemodBits && odd*10 <= normal {
			return found, true
		}
	}

	return nil, false
}

func detectASKClock(samples []int, props SignalProperties, maxErr int) (ClockResult, error) {
	var hi, lo = props.levelThresholds()
	var runs = levelRuns(samples, hi, lo)

	var terminators, found = detectST(runs)
	if found {
		return ClockResult{Clock: terminators[0].Clock, Start: terminators[0].End, Terminators: terminators}, nil
	}

	var inner = interiorRuns(runs)
	if len(inner) < 8 {
		return ClockResult{}, demodErr("DetectASKClock", ErrInsufficientData, "only %d level changes", len(runs))
	}

	var lengths = runLengths(inner)
	var errs = make([]int, len(askClockCandidates))

	for i, clk := range askClockCandidates {
		errs[i] = fitErrors(lengths, clk/2, max(1, clk/8))
	}

	var clk = pickClock(askClockCandidates, errs, maxErr, len(lengths))
	if clk == 0 {
		return ClockResult{}, demodErr("DetectASKClock", ErrNoPatternFound, "no clock fits within %d errors", maxErr)
	}

	return ClockResult{Clock: clk, Start: inner[0].start}, nil
}

func detectNRZClock(samples []int, props SignalProperties, maxErr int) (ClockResult, error) {
	var hi, lo = props.levelThresholds()
	var inner = interiorRuns(levelRuns(samples, hi, lo))

	if len(inner) < 8 {
		return ClockResult{}, demodErr("DetectNRZClock", ErrInsufficientData, "only %d level changes", len(inner))
	}

	var lengths = runLengths(inner)
	var errs = make([]int, len(askClockCandidates))

	for i, clk := range askClockCandidates {
		errs[i] = fitErrors(lengths, clk, max(1, clk/8))
	}

	var clk = pickClock(askClockCandidates, errs, maxErr, len(lengths))
	if clk == 0 {
		return ClockResult{}, demodErr("DetectNRZClock", ErrNoPatternFound, "no clock fits within %d errors", maxErr)
	}

	return ClockResult{Clock: clk, Start: inner[0].start}, nil
}

/*-------------------------------------------------------------------
 *
 * Name:	CountFC
 *
 * Purpose:	Find the two field clocks of an FSK trace.
 *
 * Returns:	Longer and shorter carrier cycle length in samples.
 *		The shorter is 0 when only one length dominates.
 *
 *---------------------------------------------------------------*/

func CountFC(samples []int, props SignalProperties) (int, int) {
	var hi, lo = props.carrierThresholds()
	var hist = waveHistogram(risingEdges(samples, hi, lo))

	var fc1, _ = histogramPeak(hist, nil, 0)
	if fc1 == 0 {
		return 0, 0
	}

	var fc2, _ = histogramPeak(hist, []int{fc1}, 2)
	if fc2 == 0 {
		return fc1, 0
	}

	return max(fc1, fc2), min(fc1, fc2)
}

func validFieldClocks(fcHigh, fcLow int) bool {
	return (fcHigh == 10 && fcLow == 8) || (fcHigh == 8 && fcLow == 5)
}

type toneRun struct {
	start  int
	length int
	low    bool // made of the shorter field clock cycles
}

// toneRuns groups consecutive carrier cycles of the same field clock.
func toneRuns(edges []int, fcHigh int, fcLow int) []toneRun {
	var runs []toneRun

	for i := 1; i < len(edges); i++ {
		var length = edges[i] - edges[i-1]
		var low = 2*length < fcHigh+fcLow

		if len(runs) > 0 && runs[len(runs)-1].low == low {
			runs[len(runs)-1].length += length
			continue
		}

		runs = append(runs, toneRun{start: edges[i-1], length: length, low: low})
	}

	return runs
}

type fskAnalysis struct {
	fcHigh int
	fcLow  int
	edges  []int     // rising edges of the carrier
	runs   []toneRun // complete runs only
}

func analyzeFSK(samples []int, props SignalProperties) (fskAnalysis, error) {
	var fcHigh, fcLow = CountFC(samples, props)
	if !validFieldClocks(fcHigh, fcLow) {
		return fskAnalysis{}, demodErr("DetectFSKClock", ErrNoPatternFound, "unknown field clock %d/%d", fcHigh, fcLow)
	}

	var hi, lo = props.carrierThresholds()
	var edges = risingEdges(samples, hi, lo)
	var runs = toneRuns(edges, fcHigh, fcLow)

	if len(runs) < 3 {
		return fskAnalysis{}, demodErr("DetectFSKClock", ErrInsufficientData, "only %d tone changes", len(runs))
	}

	return fskAnalysis{fcHigh: fcHigh, fcLow: fcLow, edges: edges, runs: runs[1 : len(runs)-1]}, nil
}

// tolerance allows for a bit boundary falling anywhere inside a carrier cycle.
func (a fskAnalysis) tolerance() int {
	return a.fcHigh
}

func detectFSKClock(samples []int, props SignalProperties) (ClockResult, error) {
	var a, err = analyzeFSK(samples, props)
	if err != nil {
		return ClockResult{}, err
	}

	var lengths = make([]int, len(a.runs))
	for i, r := range a.runs {
		lengths[i] = r.length
	}

	var errs = make([]int, len(fskClockCandidates))
	for i, clk := range fskClockCandidates {
		errs[i] = fitErrors(lengths, clk, a.tolerance())
	}

	var clk = pickClock(fskClockCandidates, errs, len(lengths)/4, len(lengths))
	if clk == 0 {
		return ClockResult{}, demodErr("DetectFSKClock", ErrNoPatternFound, "no bit clock fits fc %d/%d", a.fcHigh, a.fcLow)
	}

	return ClockResult{Clock: clk, Start: a.runs[0].start, FCHigh: a.fcHigh, FCLow: a.fcLow}, nil
}

/*-------------------------------------------------------------------
 *
 * Name:	analyzePSK
 *
 * Purpose:	Find the carrier of a PSK trace and where its phase
 *		reverses.
 *
 * Description:	Measured between rising edges, the carrier cycle that
 *		spans a phase reversal is one and a half cycles long.
 *		Which half it is depends on the phase after the
 *		reversal, so that phase is used to put the reversal
 *		exactly on the bit boundary.
 *
 *		Phase is reckoned against the first carrier cycle of the
 *		trace, which is taken as a 0 bit.
 *
 *---------------------------------------------------------------*/

type pskAnalysis struct {
	carrier int
	ref     int
	edges   []int
	shifts  []int // bit boundaries where the phase reverses
}

func (a pskAnalysis) phase(edge int) uint8 {
	var ph = ((edge-a.ref)%a.carrier + a.carrier) % a.carrier
	if 4*ph >= a.carrier && 4*ph < 3*a.carrier {
		return 1
	}

	return 0
}

func (a pskAnalysis) isShift(i int) bool {
	var length = a.edges[i] - a.edges[i-1]
	return 4*abs(length-a.carrier) > a.carrier
}

func analyzePSK(samples []int, props SignalProperties) (pskAnalysis, error) {
	var hi, lo = props.carrierThresholds()
	var edges = risingEdges(samples, hi, lo)

	if len(edges) < 32 {
		return pskAnalysis{}, demodErr("DetectPSKClock", ErrInsufficientData, "only %d carrier cycles", len(edges))
	}

	var hist = waveHistogram(edges)
	var carrier, _ = histogramPeak(hist, nil, 0)

	switch carrier {
	case 2, 4, 8:
	default:
		return pskAnalysis{}, demodErr("DetectPSKClock", ErrNoPatternFound, "carrier %d is not 2, 4 or 8", carrier)
	}

	// An FSK2 trace has a lot of cycles of 8, and it is not PSK.
	var second, _ = histogramPeak(hist, []int{carrier}, 2)
	if carrier == 8 && second == 10 {
		return pskAnalysis{}, demodErr("DetectPSKClock", ErrNoPatternFound, "field clocks 10/8 look like FSK")
	}

	var a = pskAnalysis{carrier: carrier, ref: edges[0] % carrier, edges: edges}

	for i := 1; i < len(edges); i++ {
		if !a.isShift(i) {
			continue
		}

		var e = edges[i]
		if a.phase(e) == 1 {
			a.shifts = append(a.shifts, e-carrier/2)
		} else {
			a.shifts = append(a.shifts, e-carrier)
		}
	}

	if len(a.shifts) == 0 {
		return pskAnalysis{}, demodErr("DetectPSKClock", ErrNoPatternFound, "no phase shift")
	}

	return a, nil
}

func detectPSKClock(samples []int, props SignalProperties) (ClockResult, error) {
	var a, err = analyzePSK(samples, props)
	if err != nil {
		return ClockResult{}, err
	}

	if len(a.shifts) < 3 {
		return ClockResult{}, demodErr("DetectPSKClock", ErrNoPatternFound, "only %d phase shifts", len(a.shifts))
	}

	var distances = make([]int, len(a.shifts)-1)
	for i := 1; i < len(a.shifts); i++ {
		distances[i-1] = a.shifts[i] - a.shifts[i-1]
	}

	var errs = make([]int, len(pskClockCandidates))
	for i, clk := range pskClockCandidates {
		errs[i] = fitErrors(distances, clk, a.carrier/2+1)
	}

	var clk = pickClock(pskClockCandidates, errs, len(distances)/4, len(distances))
	if clk == 0 {
		return ClockResult{}, demodErr("DetectPSKClock", ErrNoPatternFound, "no bit clock fits carrier %d", a.carrier)
	}

	return ClockResult{Clock: clk, Start: a.shifts[0], Carrier: a.carrier}, nil
}

/* end clock_detect.go */
