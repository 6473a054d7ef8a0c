package lfdemod

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A 16 bit pattern with plenty of single bits and runs, starting with 0 so
// that PSK phase comes out the right way up.
var testPattern = []uint8{0, 1, 1, 0, 1, 0, 0, 0, 1, 1, 1, 0, 0, 1, 0, 1}

func containsBits(t *testing.T, haystack []uint8, needle []uint8) {
	t.Helper()

	assert.True(t, bytes.Contains(haystack, needle), "bits %v\ndo not contain %v", haystack, needle)
}

func TestComputeSignalProperties(t *testing.T) {
	var samples = GenNRZ(Repeat(testPattern, 2), 32, 100)

	// The settling interval is skipped.
	samples[0] = 127
	samples[5] = -127

	var p = ComputeSignalProperties(samples, DefaultConfig().Demod)

	assert.Equal(t, 100, p.High)
	assert.Equal(t, -100, p.Low)
	assert.Equal(t, 200, p.Amplitude)
	assert.False(t, p.IsNoise)
}

func TestComputeSignalProperties_Noise(t *testing.T) {
	var cfg = DefaultConfig().Demod

	assert.True(t, ComputeSignalProperties(GenNRZ(Repeat(testPattern, 4), 32, 8), cfg).IsNoise)
	assert.True(t, ComputeSignalProperties(GenNRZ(testPattern[:2], 32, 100), cfg).IsNoise)
	assert.True(t, ComputeSignalProperties(nil, cfg).IsNoise)
}

func TestParseModulation(t *testing.T) {
	for in, want := range map[string]Modulation{"a": ModASK, "FSK": ModFSK, "p": ModPSK, "nrz": ModNRZ} {
		var got, err = ParseModulation(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	var _, err = ParseModulation("q")
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDetectClock_Hint(t *testing.T) {
	var ctx = newTestContext(GenNRZ(Repeat(testPattern, 4), 64, 100))

	var res, err = ctx.DetectClock(ModASK, 50)
	require.NoError(t, err)
	assert.Equal(t, 50, res.Clock)
	assert.Equal(t, ClockGrid{Locked: true, Clock: 50}, ctx.Grid)
}

func TestDetectClock_Noise(t *testing.T) {
	var ctx = newTestContext(GenNRZ(Repeat(testPattern, 4), 64, 5))

	for _, mod := range []Modulation{ModASK, ModFSK, ModPSK, ModNRZ} {
		var _, err = ctx.DetectClock(mod, 0)
		require.ErrorIs(t, err, ErrInsufficientData, "%s", mod)
	}

	assert.False(t, ctx.Grid.Locked)
}

func TestDetectClock_ASK(t *testing.T) {
	for _, clk := range []int{32, 64} {
		var ctx = newTestContext(GenManchester(Repeat(testPattern, 6), clk, 100))

		var res, err = ctx.DetectClock(ModASK, 0)
		require.NoError(t, err)
		assert.Equal(t, clk, res.Clock)
		assert.Empty(t, res.Terminators)
		assert.True(t, ctx.Grid.Locked)
	}
}

func TestDetectClock_ASKShortGlitches(t *testing.T) {
	var samples = GenManchester(Repeat(testPattern, 6), 64, 100)

	for _, at := range []int{1300, 2900, 4500} {
		var level = samples[at]

		for i := at; i < at+12; i++ {
			samples[i] = -level
		}
	}

	var ctx = newTestContext(samples)

	var res, err = ctx.DetectClock(ModASK, 0)
	require.NoError(t, err)
	assert.Equal(t, 64, res.Clock)

	var bb, demodErr = ctx.DemodASKManchester(ctx.DefaultDemodOptions())
	require.NoError(t, demodErr)
	assert.Equal(t, 64, bb.Clock)
	containsBits(t, bb.Bits, Repeat(testPattern, 2))
}

func TestDetectClock_ASKTerminator(t *testing.T) {
	var frame = EncodeEM410x(0x0123456789)
	var samples = GenManchester(frame, 32, 100)

	samples = AppendTerminator(samples, 32, 100)
	samples = append(samples, GenManchester(frame, 32, 100)...)
	samples = AppendTerminator(samples, 32, 100)
	samples = append(samples, GenManchester(frame, 32, 100)...)

	var ctx = newTestContext(samples)

	var res, err = ctx.DetectClock(ModASK, 0)
	require.NoError(t, err)
	assert.Equal(t, 32, res.Clock)
	require.Len(t, res.Terminators, 2)
	assert.Equal(t, 64*32, res.Terminators[0].Start)
	assert.Equal(t, 64*32+48, res.Terminators[0].End)
}

func TestDetectClock_NRZ(t *testing.T) {
	var ctx = newTestContext(GenNRZ(Repeat(testPattern, 6), 64, 100))

	var res, err = ctx.DetectClock(ModNRZ, 0)
	require.NoError(t, err)
	assert.Equal(t, 64, res.Clock)
}

func TestDetectClock_FSK(t *testing.T) {
	for _, fc := range [][2]int{{10, 8}, {8, 5}} {
		var samples, genErr = GenFSK(Repeat(testPattern, 6), 40, fc[0], fc[1], 100)
		require.NoError(t, genErr)

		var ctx = newTestContext(samples)

		var res, err = ctx.DetectClock(ModFSK, 0)
		require.NoError(t, err)
		assert.Equal(t, 40, res.Clock)
		assert.Equal(t, fc[0], res.FCHigh)
		assert.Equal(t, fc[1], res.FCLow)
	}
}

func TestDetectClock_PSK(t *testing.T) {
	for _, carrier := range []int{2, 4, 8} {
		var samples, genErr = GenPSK1(Repeat(testPattern, 6), 32, carrier, 100)
		require.NoError(t, genErr)

		var ctx = newTestContext(samples)

		var res, err = ctx.DetectClock(ModPSK, 0)
		require.NoError(t, err)
		assert.Equal(t, 32, res.Clock)
		assert.Equal(t, carrier, res.Carrier)
		assert.Equal(t, 32, res.Start)
	}
}

// Cycles of 8 dominate an FSK2 trace, but the 10s beside them give it away.
func TestDetectClock_PSKRejectsFSK2(t *testing.T) {
	var samples, err = GenFSK(Repeat(testPattern, 6), 40, 10, 8, 100)
	require.NoError(t, err)

	var ctx = newTestContext(samples)

	var _, detectErr = ctx.DetectClock(ModPSK, 0)
	require.ErrorIs(t, detectErr, ErrNoPatternFound)
	assert.False(t, ctx.Grid.Locked)
}

func TestDetectClock_FSKClocks(t *testing.T) {
	for _, clk := range []int{32, 50, 64, 100} {
		for _, fc := range [][2]int{{10, 8}, {8, 5}} {
			var samples, genErr = GenFSK(Repeat(testPattern, 6), clk, fc[0], fc[1], 100)
			require.NoError(t, genErr)

			var ctx = newTestContext(samples)

			var res, err = ctx.DetectClock(ModFSK, 0)
			require.NoError(t, err, "clock %d fc %v", clk, fc)
			assert.Equal(t, clk, res.Clock, "fc %v", fc)
		}
	}
}

func TestCountFC(t *testing.T) {
	var samples, err = GenFSK(Repeat(testPattern, 4), 40, 10, 8, 100)
	require.NoError(t, err)

	var p = ComputeSignalProperties(samples, DefaultConfig().Demod)
	var fcHigh, fcLow = CountFC(samples, p)

	assert.Equal(t, 10, fcHigh)
	assert.Equal(t, 8, fcLow)
}
