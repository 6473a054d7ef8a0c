package lfdemod

/*------------------------------------------------------------------
 *
 * Purpose:	Synthesise clean traces from bits.
 *
 * Description:	Each generator produces what an ideal reader would
 *		capture from a tag using that encoding: square waves at
 *		+-amp, every bit exactly clk samples long.  They are
 *		used to check the demodulators and by gen_trace to make
 *		sample files.
 *
 *---------------------------------------------------------------*/

func level(high bool, amp int) int {
	if high {
		return amp
	}

	return -amp
}

func appendLevel(out []int, high bool, amp int, n int) []int {
	for range n {
		out = append(out, level(high, amp))
	}

	return out
}

// GenNRZ holds the level for the whole bit: high for 1, low for 0.
func GenNRZ(bits []uint8, clk int, amp int) []int {
	var out = make([]int, 0, len(bits)*clk)

	for _, b := range bits {
		out = appendLevel(out, b == 1, amp, clk)
	}

	return out
}

// GenManchester sends 1 as low then high, 0 as high then low.
func GenManchester(bits []uint8, clk int, amp int) []int {
	var half = clk / 2
	var out = make([]int, 0, len(bits)*clk)

	for _, b := range bits {
		out = appendLevel(out, b == 0, amp, half)
		out = appendLevel(out, b == 1, amp, clk-half)
	}

	return out
}

// GenBiphase changes level at every bit boundary, and also in the middle of a 0.
func GenBiphase(bits []uint8, clk int, amp int) []int {
	var half = clk / 2
	var out = make([]int, 0, len(bits)*clk)
	var high = false

	for _, b := range bits {
		high = !high
		out = appendLevel(out, high, amp, half)

		if b == 0 {
			high = !high
		}

		out = appendLevel(out, high, amp, clk-half)
	}

	return out
}

// AppendTerminator adds one and a half clocks held at the opposite of the last level.
func AppendTerminator(samples []int, clk int, amp int) []int {
	var high = len(samples) == 0 || samples[len(samples)-1] < 0
	return appendLevel(samples, high, amp, 3*clk/2)
}

/*-------------------------------------------------------------------
 *
 * Name:	GenFSK
 *
 * Purpose:	Send 1 as cycles of fcLow samples, 0 as cycles of fcHigh.
 *
 * Inputs:	clk	- Any bit clock of at least one fcHigh cycle.
 *
 * Description:	The carrier phase runs on across bit boundaries, so a
 *		clock that is not a multiple of a field clock ends a bit
 *		part way through a cycle and the next bit finishes it at
 *		its own rate.  Phase is counted in units of 1/(fcHigh *
 *		fcLow) of a cycle to keep it exact.
 *
 *---------------------------------------------------------------*/

func GenFSK(bits []uint8, clk int, fcHigh int, fcLow int, amp int) ([]int, error) {
	if fcHigh <= fcLow || fcLow < 2 || clk < fcHigh {
		return nil, demodErr("GenFSK", ErrInvalidArgument, "clock %d with field clocks %d/%d", clk, fcHigh, fcLow)
	}

	var period = fcHigh * fcLow
	var phase = 0
	var out = make([]int, 0, len(bits)*clk)

	for _, b := range bits {
		var step = period / fcHigh
		if b == 1 {
			step = period / fcLow
		}

		for range clk {
			out = append(out, level(2*phase < period, amp))
			phase = (phase + step) % period
		}
	}

	return out, nil
}

/*-------------------------------------------------------------------
 *
 * Name:	GenPSK1
 *
 * Purpose:	Send bits as the phase of a square carrier.
 *
 * Description:	A 0 starts each carrier cycle high, a 1 starts it low.
 *		The carrier is continuous, so a phase reversal shows up
 *		as a cycle and a half between rising edges.
 *
 *---------------------------------------------------------------*/

func GenPSK1(bits []uint8, clk int, carrier int, amp int) ([]int, error) {
	if carrier < 2 || clk%carrier != 0 {
		return nil, demodErr("GenPSK1", ErrInvalidArgument, "clock %d with carrier %d", clk, carrier)
	}

	var out = make([]int, 0, len(bits)*clk)

	for _, b := range bits {
		for j := range clk {
			var high = j%carrier < carrier/2
			out = append(out, level(high != (b == 1), amp))
		}
	}

	return out, nil
}

// GenPSK2 differentially encodes bits before GenPSK1, so that a 1 is a phase change.
func GenPSK2(bits []uint8, clk int, carrier int, amp int) ([]int, error) {
	var phases = PSK2ToPSK1(BitBuffer{Bits: bits})
	return GenPSK1(phases.Bits, clk, carrier, amp)
}

// GenPSK3 is GenPSK2 with a 0 as the phase change.
func GenPSK3(bits []uint8, clk int, carrier int, amp int) ([]int, error) {
	var phases = PSK3ToPSK1(BitBuffer{Bits: bits})
	return GenPSK1(phases.Bits, clk, carrier, amp)
}

// Repeat returns bits n times over.
func Repeat(bits []uint8, n int) []uint8 {
	var out = make([]uint8, 0, len(bits)*n)
	for range n {
		out = append(out, bits...)
	}

	return out
}

// ParseBitString accepts a string of 0 and 1, ignoring spaces.
func ParseBitString(s string) ([]uint8, error) {
	var out []uint8

	for i, c := range s {
		switch c {
		case '0', '1':
			out = append(out, uint8(c-'0'))
		case ' ', '\t':
		default:
			return nil, demodErr("ParseBitString", ErrInvalidArgument, "character %q at %d", c, i)
		}
	}

	return out, nil
}

/* end gen_signal.go */
