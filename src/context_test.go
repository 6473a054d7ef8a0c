package lfdemod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(samples []int) *DecodeContext {
	var ctx = NewDecodeContext(DefaultConfig(), nil)
	ctx.LoadSamples(samples)

	return ctx
}

func TestSetClockGrid(t *testing.T) {
	var ctx = newTestContext(make([]int, 1000))

	var cases = []struct {
		clk, offset int
		want        ClockGrid
	}{
		{64, 10, ClockGrid{Locked: true, Offset: 10, Clock: 64}},
		{64, 130, ClockGrid{Locked: true, Offset: 2, Clock: 64}},
		{64, -10, ClockGrid{Locked: true, Offset: 54, Clock: 64}},
		{64, 64, ClockGrid{Locked: true, Offset: 0, Clock: 64}},
		{4, 0, ClockGrid{}},
		{0, 0, ClockGrid{}},
		{2000, 0, ClockGrid{}},
	}

	for _, c := range cases {
		ctx.SetClockGrid(c.clk, c.offset)
		assert.Equal(t, c.want, ctx.Grid, "clock %d offset %d", c.clk, c.offset)
	}
}

func TestSaveRestoreBits(t *testing.T) {
	var ctx = newTestContext(nil)

	require.ErrorIs(t, ctx.RestoreBits(), ErrInvalidArgument)

	ctx.SetBits([]uint8{1, 0, 1})
	ctx.SaveBits()
	ctx.SetBits([]uint8{0, 0})

	require.NoError(t, ctx.RestoreBits())
	assert.Equal(t, []uint8{1, 0, 1}, ctx.Bits.Bits)

	// Last save wins.
	ctx.SetBits([]uint8{1})
	ctx.SaveBits()
	ctx.ClearBits()
	require.NoError(t, ctx.RestoreBits())
	assert.Equal(t, []uint8{1}, ctx.Bits.Bits)
}

func TestSaveRestoreSamples(t *testing.T) {
	var ctx = newTestContext([]int{1, 2, 3})

	require.ErrorIs(t, ctx.RestoreSamples(), ErrInvalidArgument)

	ctx.SaveSamples()
	ctx.LoadSamples([]int{9})

	require.NoError(t, ctx.RestoreSamples())
	assert.Equal(t, []int{1, 2, 3}, ctx.Samples.Samples())
}
