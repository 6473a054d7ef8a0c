package lfdemod

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func flipBits(bits []uint8) []uint8 {
	var out = make([]uint8, len(bits))
	for i, b := range bits {
		out[i] = b ^ 1
	}

	return out
}

func TestNormalizeClockArg(t *testing.T) {
	var clk, inv, err = NormalizeClockArg(1, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, clk)
	assert.Equal(t, 1, inv)

	clk, inv, err = NormalizeClockArg(64, 0)
	require.NoError(t, err)
	assert.Equal(t, 64, clk)
	assert.Equal(t, 0, inv)

	_, _, err = NormalizeClockArg(32, 2)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDemod_NoiseGate(t *testing.T) {
	var ctx = newTestContext(GenNRZ(Repeat(testPattern, 6), 64, 5))
	ctx.SetBits([]uint8{1, 0, 1})

	var opts = ctx.DefaultDemodOptions()

	var _, err = ctx.DemodNRZ(opts)
	require.ErrorIs(t, err, ErrInsufficientData)

	_, err = ctx.DemodASKManchester(opts)
	require.ErrorIs(t, err, ErrInsufficientData)

	_, _, err = ctx.DemodFSK(opts)
	require.ErrorIs(t, err, ErrInsufficientData)

	_, _, err = ctx.DemodPSK1(opts)
	require.ErrorIs(t, err, ErrInsufficientData)

	// Failures leave the bit buffer alone.
	assert.Equal(t, []uint8{1, 0, 1}, ctx.Bits.Bits)
}

func TestDemod_MinimumLength(t *testing.T) {
	var ctx = newTestContext(GenNRZ(testPattern[:10], 30, 100))
	require.Equal(t, 300, ctx.Samples.Len())

	var opts = ctx.DefaultDemodOptions()
	opts.Clock = 64

	// Enough samples to look at, not enough bits to report.
	var _, err = ctx.DemodNRZ(opts)
	require.ErrorIs(t, err, ErrInsufficientData)

	ctx.LoadSamples(GenNRZ(testPattern, 8, 100))
	require.Less(t, ctx.Samples.Len(), MinDemodSamples)

	_, err = ctx.DemodNRZ(ctx.DefaultDemodOptions())
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestDemod_BadOptions(t *testing.T) {
	var ctx = newTestContext(GenNRZ(Repeat(testPattern, 6), 64, 100))

	var _, err = ctx.DemodNRZ(DemodOptions{Invert: 2})
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = ctx.DemodASKRaw(DemodOptions{Clock: -1})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDemodNRZ(t *testing.T) {
	var ctx = newTestContext(GenNRZ(Repeat(testPattern, 6), 64, 100))

	var bb, err = ctx.DemodNRZ(ctx.DefaultDemodOptions())
	require.NoError(t, err)

	assert.Equal(t, 64, bb.Clock)
	assert.Equal(t, 0, bb.ErrCount)
	containsBits(t, bb.Bits, Repeat(testPattern, 4))
	assert.Equal(t, bb.Bits, ctx.Bits.Bits)
	assert.Equal(t, ClockGrid{Locked: true, Clock: 64, Offset: 0}, ctx.Grid)

	// The same trace decodes the same way again.
	var again, againErr = ctx.DemodNRZ(ctx.DefaultDemodOptions())
	require.NoError(t, againErr)
	assert.Equal(t, bb, again)
}

func TestDemodNRZ_Invert(t *testing.T) {
	var ctx = newTestContext(GenNRZ(Repeat(testPattern, 6), 64, 100))

	var opts = ctx.DefaultDemodOptions()
	opts.Invert = 1

	var bb, err = ctx.DemodNRZ(opts)
	require.NoError(t, err)

	var inverted = make([]uint8, len(testPattern))
	for i, b := range testPattern {
		inverted[i] = b ^ 1
	}

	containsBits(t, bb.Bits, Repeat(inverted, 4))
	assert.True(t, bb.Inverted)
}

// glitchedNRZ puts a short dip at the start of each of the first n
// "1 1" pairs, which splits one run into three and costs exactly one error.
func glitchedNRZ(n int) []int {
	var bits = Repeat(testPattern, 6)
	var samples = GenNRZ(bits, 32, 100)

	var done = 0
	for i := 2; i+1 < len(bits) && done < n; i++ {
		if bits[i] == 1 && bits[i+1] == 1 && bits[i-1] == 0 {
			var at = (i + 1) * 32
			samples[at] = -100
			samples[at+1] = -100
			done++
		}
	}

	return samples
}

func TestDemodNRZ_ErrorBudget(t *testing.T) {
	const glitches = 5

	var ctx = newTestContext(glitchedNRZ(glitches))

	var opts = ctx.DefaultDemodOptions()
	opts.Clock = 32
	opts.MaxErrors = glitches

	var bb, err = ctx.DemodNRZ(opts)
	require.NoError(t, err)
	assert.Equal(t, glitches, bb.ErrCount)

	ctx.ClearBits()
	opts.MaxErrors = glitches - 1

	_, err = ctx.DemodNRZ(opts)
	require.ErrorIs(t, err, ErrTooManyErrors)
	assert.Equal(t, 0, ctx.Bits.Len())
}

func TestDemodASKRaw(t *testing.T) {
	var ctx = newTestContext(GenManchester(Repeat(testPattern, 6), 32, 100))

	var bb, err = ctx.DemodASKRaw(ctx.DefaultDemodOptions())
	require.NoError(t, err)

	assert.Equal(t, 32, bb.Clock)
	assert.Equal(t, 0, bb.ErrCount)

	// Two raw bits per data bit: 0 is 10, 1 is 01.
	var raw []uint8
	for _, b := range testPattern {
		raw = append(raw, b^1, b)
	}

	containsBits(t, bb.Bits, Repeat(raw, 4))
}

func TestDemodASKManchester(t *testing.T) {
	var ctx = newTestContext(GenManchester(Repeat(testPattern, 6), 64, 100))

	var bb, err = ctx.DemodASKManchester(ctx.DefaultDemodOptions())
	require.NoError(t, err)

	assert.Equal(t, 64, bb.Clock)
	assert.Equal(t, 0, bb.ErrCount)
	containsBits(t, bb.Bits, Repeat(testPattern, 4))
}

func TestDemodASKManchester_Amplify(t *testing.T) {
	// A weak, offset trace that still has sharp edges.
	var samples = GenManchester(Repeat(testPattern, 6), 32, 20)
	for i := range samples {
		samples[i] += 30
	}

	var ctx = newTestContext(samples)

	var opts = ctx.DefaultDemodOptions()
	opts.Amplify = true

	var bb, err = ctx.DemodASKManchester(opts)
	require.NoError(t, err)
	containsBits(t, bb.Bits, Repeat(testPattern, 4))
}

// Uneven levels must not move the edges far enough to cost a bit.
func TestDemodASKManchester_Noisy(t *testing.T) {
	var samples = GenManchester(Repeat(testPattern, 6), 32, 100)
	for i := range samples {
		samples[i] += (i*37)%21 - 10
	}

	var ctx = newTestContext(samples)

	var bb, err = ctx.DemodASKManchester(ctx.DefaultDemodOptions())
	require.NoError(t, err)
	assert.Equal(t, 32, bb.Clock)
	assert.Equal(t, 0, bb.ErrCount)
	containsBits(t, bb.Bits, Repeat(testPattern, 4))
}

func TestManchesterDecodeBits(t *testing.T) {
	var ctx = newTestContext(GenManchester(Repeat(testPattern, 6), 32, 100))

	var _, err = ctx.ManchesterDecodeBits(0, 10)
	require.ErrorIs(t, err, ErrInsufficientData)

	_, err = ctx.DemodASKRaw(ctx.DefaultDemodOptions())
	require.NoError(t, err)

	var bb, decodeErr = ctx.ManchesterDecodeBits(0, 0)
	require.NoError(t, decodeErr)
	containsBits(t, bb.Bits, Repeat(testPattern, 4))
	assert.Equal(t, bb.Bits, ctx.Bits.Bits)
}

func TestDemodASKBiphase(t *testing.T) {
	var ctx = newTestContext(GenBiphase(Repeat(testPattern, 6), 32, 100))

	var bb, err = ctx.DemodASKBiphase(0, ctx.DefaultDemodOptions())
	require.NoError(t, err)

	assert.Equal(t, 0, bb.ErrCount)
	containsBits(t, bb.Bits, Repeat(testPattern, 4))
}

func TestDemodASKBiphase_OffsetAndInvert(t *testing.T) {
	var cases = []struct {
		offset, invert int
	}{
		{1, 0},
		{0, 1},
		{1, 1},
	}

	for _, c := range cases {
		var ctx = newTestContext(GenBiphase(Repeat(testPattern, 6), 32, 100))

		var opts = ctx.DefaultDemodOptions()
		opts.Invert = c.invert

		var bb, err = ctx.DemodASKBiphase(c.offset, opts)
		require.NoError(t, err, "%+v", c)

		var want = Repeat(testPattern, 4)
		if c.invert == 1 {
			want = flipBits(want)
		}

		assert.Equal(t, 0, bb.ErrCount, "%+v", c)
		assert.Equal(t, c.invert == 1, bb.Inverted)
		containsBits(t, bb.Bits, want)
	}
}

func TestBiphaseDecode_KeepsRawBits(t *testing.T) {
	var ctx = newTestContext(GenBiphase(Repeat(testPattern, 6), 32, 100))

	var raw, err = ctx.DemodASKRaw(ctx.DefaultDemodOptions())
	require.NoError(t, err)

	var decoded, decodeErr = ctx.BiphaseDecode(0, 0, 0)
	require.NoError(t, decodeErr)
	containsBits(t, decoded.Bits, Repeat(testPattern, 4))

	// The bit buffer still holds raw bits, less any skipped for alignment.
	assert.LessOrEqual(t, raw.Len()-ctx.Bits.Len(), 1)
	assert.Equal(t, raw.Bits[raw.Len()-8:], ctx.Bits.Bits[ctx.Bits.Len()-8:])

	_, decodeErr = ctx.BiphaseDecode(2, 0, 0)
	require.ErrorIs(t, decodeErr, ErrInvalidArgument)
}

func TestDemodFSK(t *testing.T) {
	var cases = []struct {
		fcHigh, fcLow int
		clk           int
		invert        int
		label         string
	}{
		{10, 8, 40, 0, "FSK2"},
		{8, 5, 40, 0, "FSK1a"},
		{10, 8, 40, 1, "FSK2a"},
		{8, 5, 40, 1, "FSK1"},
		{10, 8, 32, 0, "FSK2"},
		{10, 8, 50, 0, "FSK2"},
		{8, 5, 50, 0, "FSK1a"},
		{10, 8, 64, 0, "FSK2"},
		{10, 8, 100, 0, "FSK2"},
	}

	for _, c := range cases {
		var samples, genErr = GenFSK(Repeat(testPattern, 6), c.clk, c.fcHigh, c.fcLow, 100)
		require.NoError(t, genErr)

		var ctx = newTestContext(samples)

		var opts = ctx.DefaultDemodOptions()
		opts.Invert = c.invert

		var bb, info, err = ctx.DemodFSK(opts)
		require.NoError(t, err, "%+v", c)

		var want = Repeat(testPattern, 4)
		if c.invert == 1 {
			want = flipBits(want)
		}

		assert.Equal(t, c.clk, bb.Clock, "%+v", c)
		assert.Equal(t, 0, bb.ErrCount, "%+v", c)
		assert.Equal(t, c.label, info.Label)
		assert.Equal(t, c.invert == 1, bb.Inverted)
		containsBits(t, bb.Bits, want)
	}
}

// A real coil gives something closer to a sine than a square carrier.
func TestDemodFSK_SineCarrier(t *testing.T) {
	for _, clk := range []int{40, 50} {
		var samples []int
		var phase = 0.0

		for _, b := range Repeat(testPattern, 6) {
			var fc = 10.0
			if b == 1 {
				fc = 8
			}

			for range clk {
				samples = append(samples, int(math.Round(100*math.Cos(2*math.Pi*phase))))
				phase += 1 / fc
			}
		}

		var ctx = newTestContext(samples)

		var bb, info, err = ctx.DemodFSK(ctx.DefaultDemodOptions())
		require.NoError(t, err, "clock %d", clk)
		assert.Equal(t, clk, bb.Clock)
		assert.Equal(t, "FSK2", info.Label)
		assert.Equal(t, 0, bb.ErrCount)
		containsBits(t, bb.Bits, Repeat(testPattern, 4))
	}
}

func TestFSKToNRZ(t *testing.T) {
	for _, args := range [][3]int{{40, 10, 8}, {0, 0, 0}} {
		var samples, genErr = GenFSK(Repeat(testPattern, 6), 40, 10, 8, 100)
		require.NoError(t, genErr)

		var ctx = newTestContext(samples)
		ctx.SetBits([]uint8{1, 0, 1})

		require.NoError(t, ctx.FSKToNRZ(args[0], args[1], args[2]))
		assert.Equal(t, len(samples)-50, ctx.Samples.Len())
		assert.Equal(t, 0, ctx.Bits.Len())

		var opts = ctx.DefaultDemodOptions()
		opts.Clock = 40

		var bb, err = ctx.DemodNRZ(opts)
		require.NoError(t, err, "%v", args)
		assert.Equal(t, 0, bb.ErrCount)
		containsBits(t, bb.Bits, Repeat(testPattern, 4))
	}
}

func TestFSKToNRZ_Arguments(t *testing.T) {
	var samples, genErr = GenFSK(Repeat(testPattern, 6), 40, 10, 8, 100)
	require.NoError(t, genErr)

	var ctx = newTestContext(samples)

	require.ErrorIs(t, ctx.FSKToNRZ(40, 12, 8), ErrInvalidArgument)
	require.ErrorIs(t, ctx.FSKToNRZ(40, 10, 3), ErrInvalidArgument)
	require.ErrorIs(t, ctx.FSKToNRZ(-1, 10, 8), ErrInvalidArgument)

	// Failures leave the trace alone.
	assert.Equal(t, samples, ctx.Samples.Samples())

	ctx.LoadSamples(GenNRZ(Repeat(testPattern, 6), 64, 100))
	require.ErrorIs(t, ctx.FSKToNRZ(0, 0, 0), ErrNoPatternFound)
}

func TestFSKType(t *testing.T) {
	assert.Equal(t, "FSK2a", FSKType(10, 8, 1))
	assert.Equal(t, "FSK1", FSKType(8, 5, 1))
	assert.Equal(t, "FSK??", FSKType(12, 9, 0))
}

func TestDemodPSK1(t *testing.T) {
	for _, carrier := range []int{2, 4, 8} {
		var bits = Repeat(testPattern, 6)
		var samples, genErr = GenPSK1(bits, 32, carrier, 100)
		require.NoError(t, genErr)

		var ctx = newTestContext(samples)

		var bb, info, err = ctx.DemodPSK1(ctx.DefaultDemodOptions())
		require.NoError(t, err)

		assert.Equal(t, carrier, info.Carrier)
		assert.Equal(t, 32, bb.Clock)
		assert.Equal(t, 0, bb.ErrCount)
		assert.Equal(t, bits, bb.Bits)
	}
}

func TestDemodPSK2(t *testing.T) {
	var bits = Repeat(testPattern, 6)
	var samples, genErr = GenPSK2(bits, 32, 2, 100)
	require.NoError(t, genErr)

	var ctx = newTestContext(samples)

	var bb, _, err = ctx.DemodPSK2(ctx.DefaultDemodOptions())
	require.NoError(t, err)
	assert.Equal(t, bits, bb.Bits)
	assert.Equal(t, bits, ctx.Bits.Bits)
}

func TestDemodPSK3(t *testing.T) {
	var bits = Repeat(testPattern, 6)
	var samples, genErr = GenPSK3(bits, 32, 2, 100)
	require.NoError(t, genErr)

	var ctx = newTestContext(samples)

	var bb, info, err = ctx.DemodPSK3(ctx.DefaultDemodOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, info.Carrier)
	assert.Equal(t, bits, bb.Bits)
	assert.Equal(t, bits, ctx.Bits.Bits)
}

func TestPSKTransforms_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var bits = rapid.SliceOfN(rapid.Uint8Range(0, 1), 1, 200).Draw(t, "bits")
		var bb = BitBuffer{Bits: bits}

		assert.Equal(t, bits, PSK2ToPSK1(PSK1ToPSK2(bb)).Bits)
		assert.Equal(t, bits, PSK3ToPSK1(PSK1ToPSK3(bb)).Bits)
		assert.Equal(t, bits, PSK1ToPSK2(PSK2ToPSK1(bb)).Bits)
	})
}

func TestPSK1ToPSK3_IsComplementOfPSK2(t *testing.T) {
	var bb = BitBuffer{Bits: []uint8{0, 0, 1, 1, 0, 1}}

	assert.Equal(t, []uint8{0, 0, 1, 0, 1, 1}, PSK1ToPSK2(bb).Bits)
	assert.Equal(t, []uint8{0, 1, 0, 1, 0, 0}, PSK1ToPSK3(bb).Bits)
}
