package lfdemod

/*------------------------------------------------------------------
 *
 * Purpose:	Basic statistics of a trace, and the level / carrier
 *		segmentation that every clock detector works from.
 *
 *---------------------------------------------------------------*/

// Fewest samples worth demodulating, and fewest bits worth reporting.
const (
	MinDemodSamples = 255
	MinDemodBits    = 16
)

type SignalProperties struct {
	Low       int
	High      int
	Mean      int
	Amplitude int
	Count     int
	IsNoise   bool
}

/*-------------------------------------------------------------------
 *
 * Name:	ComputeSignalProperties
 *
 * Purpose:	Find the extremes and mean of a trace and decide
 *		whether it is worth looking at.
 *
 * Inputs:	samples	- Signed amplitudes.
 *
 *		cfg	- Supplies the settling interval skipped at the
 *			  start, the minimum sample count and the
 *			  minimum peak to peak amplitude.
 *
 * Returns:	Properties.  IsNoise is set for short or flat traces.
 *
 *---------------------------------------------------------------*/

func ComputeSignalProperties(samples []int, cfg DemodConfig) SignalProperties {
	var p = SignalProperties{Count: len(samples)}

	if len(samples) == 0 {
		p.IsNoise = true
		return p
	}

	var from = cfg.SettleSamples
	if from < 0 || from >= len(samples) {
		from = 0
	}

	p.Low = samples[from]
	p.High = samples[from]

	var sum = 0
	for _, v := range samples[from:] {
		p.Low = min(p.Low, v)
		p.High = max(p.High, v)
		sum += v
	}

	p.Mean = sum / (len(samples) - from)
	p.Amplitude = p.High - p.Low
	p.IsNoise = len(samples) < cfg.MinSamples || p.Amplitude < cfg.NoiseAmplitude

	return p
}

// levelThresholds returns hysteresis levels three quarters of the way from the mean to each extreme.
func (p SignalProperties) levelThresholds() (int, int) {
	var hi = p.Mean + (p.High-p.Mean)*3/4
	var lo = p.Mean - (p.Mean-p.Low)*3/4

	return hi, lo
}

// carrierThresholds are narrow, so that every carrier cycle produces an edge.
func (p SignalProperties) carrierThresholds() (int, int) {
	var d = max(1, p.Amplitude/8)
	return p.Mean + d, p.Mean - d
}

type levelRun struct {
	start  int
	length int
	high   bool
}

/*-------------------------------------------------------------------
 *
 * Name:	levelRuns
 *
 * Purpose:	Split a trace into runs of constant level.
 *
 * Description:	A run changes level only when the signal crosses the
 *		opposite threshold, so wobble between the thresholds
 *		does not break a run.  The first run begins where the
 *		signal first reaches either threshold and the last run
 *		ends at the end of the trace; both are usually partial.
 *
 *---------------------------------------------------------------*/

func levelRuns(samples []int, hi int, lo int) []levelRun {
	var runs []levelRun
	var state = 0 // 1 high, -1 low, 0 not yet known
	var start = 0

	for i, v := range samples {
		var next = state

		if v >= hi {
			next = 1
		} else if v <= lo {
			next = -1
		}

		if next == state {
			continue
		}

		if state != 0 {
			runs = append(runs, levelRun{start: start, length: i - start, high: state == 1})
		}

		state = next
		start = i
	}

	if state != 0 {
		runs = append(runs, levelRun{start: start, length: len(samples) - start, high: state == 1})
	}

	return runs
}

// interiorRuns drops the partial first and last runs.
func interiorRuns(runs []levelRun) []levelRun {
	if len(runs) < 3 {
		return nil
	}

	return runs[1 : len(runs)-1]
}

// risingEdges returns the sample index of every low to high crossing.
func risingEdges(samples []int, hi int, lo int) []int {
	var edges []int
	var state = 0

	for i, v := range samples {
		if v >= hi {
			if state == -1 {
				edges = append(edges, i)
			}

			state = 1
		} else if v <= lo {
			state = -1
		}
	}

	return edges
}

// waveHistogram counts carrier cycle lengths between consecutive rising edges.
func waveHistogram(edges []int) map[int]int {
	var hist = make(map[int]int)

	for i := 1; i < len(edges); i++ {
		var length = edges[i] - edges[i-1]
		if length >= 2 && length <= 64 {
			hist[length]++
		}
	}

	return hist
}

// histogramPeak finds the most common length at least minGap away from every length in exclude.
// Ties go to the shorter length.
func histogramPeak(hist map[int]int, exclude []int, minGap int) (int, int) {
	var best, bestCount = 0, 0

	for length := 2; length <= 64; length++ {
		var count = hist[length]
		if count == 0 || count <= bestCount {
			continue
		}

		var near = false
		for _, x := range exclude {
			if abs(length-x) < minGap {
				near = true
			}
		}

		if !near {
			best, bestCount = length, count
		}
	}

	return best, bestCount
}

func abs(x int) int {
	if x < 0 {
		return -x
	}

	return x
}

/* end signal_props.go */
