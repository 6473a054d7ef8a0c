package lfdemod

/*------------------------------------------------------------------
 *
 * Purpose:	In place operations on a trace.
 *
 * Description:	These are the clean-up steps an operator tries by hand
 *		on a marginal capture before demodulating again.  All of
 *		them keep samples within -127 .. 127.
 *
 *---------------------------------------------------------------*/

// Normalize centres the trace on its mean and stretches it to full scale.
func (sb *SampleBuffer) Normalize() error {
	if len(sb.samples) == 0 {
		return demodErr("Normalize", ErrInsufficientData, "empty trace")
	}

	var lo, hi, sum = sb.samples[0], sb.samples[0], 0
	for _, v := range sb.samples {
		lo = min(lo, v)
		hi = max(hi, v)
		sum += v
	}

	var mean = sum / len(sb.samples)
	var span = max(hi-mean, mean-lo)

	if span == 0 {
		return demodErr("Normalize", ErrInsufficientData, "flat trace")
	}

	for i, v := range sb.samples {
		sb.samples[i] = clampSample((v - mean) * SampleMax / span)
	}

	return nil
}

// HighPass removes the DC offset, measured past the settling interval.
func (sb *SampleBuffer) HighPass(settle int) {
	if len(sb.samples) == 0 {
		return
	}

	if settle < 0 || settle >= len(sb.samples) {
		settle = 0
	}

	var sum = 0
	for _, v := range sb.samples[settle:] {
		sum += v
	}

	var mean = sum / (len(sb.samples) - settle)

	for i, v := range sb.samples {
		sb.samples[i] = clampSample(v - mean)
	}
}

/*-------------------------------------------------------------------
 *
 * Name:	DirectionalThreshold
 *
 * Purpose:	Square up a trace by the direction of each step.
 *
 * Inputs:	up	- A rise of at least this much goes to full high.
 *		down	- A fall of at least this much goes to full low.
 *
 * Description:	Steps smaller than either threshold hold the previous
 *		output level.  The first sample starts at 0.
 *
 *---------------------------------------------------------------*/

func (sb *SampleBuffer) DirectionalThreshold(up int, down int) error {
	if up <= 0 || down <= 0 {
		return demodErr("DirectionalThreshold", ErrInvalidArgument, "thresholds %d/%d must be positive", up, down)
	}

	if len(sb.samples) == 0 {
		return nil
	}

	var prev = sb.samples[0]
	var level = 0

	sb.samples[0] = 0

	for i := 1; i < len(sb.samples); i++ {
		var v = sb.samples[i]

		if v-prev >= up {
			level = SampleMax
		} else if prev-v >= down {
			level = SampleMin
		}

		prev = v
		sb.samples[i] = level
	}

	return nil
}

// EdgeDetect squares up the trace from its edges alone.  A jump up of at least
// threshold between neighbouring samples goes to full scale high, a jump down of
// at least threshold to full scale low, and everything else holds the last level.
func (sb *SampleBuffer) EdgeDetect(threshold int) error {
	if threshold < 1 {
		return demodErr("EdgeDetect", ErrInvalidArgument, "threshold %d", threshold)
	}

	if len(sb.samples) < 2 {
		return nil
	}

	var last = 0

	for i := 1; i < len(sb.samples); i++ {
		var diff = sb.samples[i] - sb.samples[i-1]

		if diff >= threshold {
			last = SampleMax
		} else if diff <= -threshold {
			last = SampleMin
		}

		sb.samples[i-1] = last
	}

	sb.samples[len(sb.samples)-1] = last

	return nil
}

/*-------------------------------------------------------------------
 *
 * Name:	ZeroCrossings
 *
 * Purpose:	Replace the trace with the length of each carrier cycle.
 *
 * Description:	The DC offset is removed first, since crossings mean
 *		nothing otherwise.  Every sample then holds the length of
 *		the last complete cycle, counted in samples that did not
 *		cross zero, so FSK turns into a two level wave.
 *
 *---------------------------------------------------------------*/

func (sb *SampleBuffer) ZeroCrossings(settle int) {
	sb.HighPass(settle)

	var sign, count, lastCycle = 1, 0, 0

	for i, v := range sb.samples {
		if v*sign < 0 {
			sign = -sign

			if sign > 0 {
				sb.samples[i] = lastCycle
				lastCycle = min(count, SampleMax)
				count = 0

				continue
			}
		} else {
			count++
		}

		sb.samples[i] = lastCycle
	}
}

// Decimate keeps every n'th sample.
func (sb *SampleBuffer) Decimate(n int) error {
	if n < 1 {
		return demodErr("Decimate", ErrInvalidArgument, "factor %d", n)
	}

	var out = make([]int, 0, (len(sb.samples)+n-1)/n)
	for i := 0; i < len(sb.samples); i += n {
		out = append(out, sb.samples[i])
	}

	sb.samples = out

	return nil
}

// Undecimate repeats every sample n times.  The result is cut at capacity.
func (sb *SampleBuffer) Undecimate(n int) error {
	if n < 1 {
		return demodErr("Undecimate", ErrInvalidArgument, "factor %d", n)
	}

	var out = make([]int, 0, min(len(sb.samples)*n, MaxSampleCount))

outer:
	for _, v := range sb.samples {
		for range n {
			if len(out) == MaxSampleCount {
				break outer
			}

			out = append(out, v)
		}
	}

	sb.samples = out

	return nil
}

// Ltrim drops the first n samples.
func (sb *SampleBuffer) Ltrim(n int) error {
	if n < 0 || n > len(sb.samples) {
		return demodErr("Ltrim", ErrInvalidArgument, "trim %d of %d samples", n, len(sb.samples))
	}

	sb.samples = append([]int(nil), sb.samples[n:]...)

	return nil
}

// Rtrim keeps only the first n samples.
func (sb *SampleBuffer) Rtrim(n int) error {
	if n < 0 || n > len(sb.samples) {
		return demodErr("Rtrim", ErrInvalidArgument, "keep %d of %d samples", n, len(sb.samples))
	}

	sb.samples = sb.samples[:n:n]

	return nil
}

// ShiftZero moves every sample by delta.
func (sb *SampleBuffer) ShiftZero(delta int) {
	for i, v := range sb.samples {
		sb.samples[i] = clampSample(v + delta)
	}
}

/* end sample_ops.go */
