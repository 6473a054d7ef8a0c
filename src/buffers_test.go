package lfdemod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleBuffer_SetClampsAndTruncates(t *testing.T) {
	var in = make([]int, MaxSampleCount+50)
	in[0] = 300
	in[1] = -300
	in[2] = 42

	var sb = NewSampleBuffer(in)

	assert.Equal(t, MaxSampleCount, sb.Len())
	assert.Equal(t, []int{127, -127, 42}, sb.Samples()[:3])
}

func TestSampleBuffer_CopyIsPrivate(t *testing.T) {
	var sb = NewSampleBuffer([]int{1, 2, 3, 4})

	var c = sb.Copy(2)
	c[0] = 99

	assert.Equal(t, []int{99, 2}, c)
	assert.Equal(t, 1, sb.Samples()[0])
	assert.Len(t, sb.Copy(0), 4)
}

func testBits(t *testing.T, s string, bad ...int) BitBuffer {
	t.Helper()

	var bits, err = ParseBitString(s)
	require.NoError(t, err)

	var bb BitBuffer
	for i, b := range bits {
		var flagged = false
		for _, e := range bad {
			flagged = flagged || e == i
		}

		bb.appendBit(b, flagged)
	}

	bb.ErrCount = len(bad)

	return bb
}

func TestBitBuffer_ErrorBitsRenderAsSeven(t *testing.T) {
	var bb = testBits(t, "1101 0011", 2)

	assert.True(t, bb.IsError(2))
	assert.False(t, bb.IsError(3))
	assert.Equal(t, uint8(0), bb.Bits[2])
	assert.Equal(t, "1171\n0011", bb.BinaryString(4))

	var _, err = bb.HexString()
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestBitBuffer_HexString(t *testing.T) {
	var bb = testBits(t, "1101 0011 101")

	var s, err = bb.HexString()
	require.NoError(t, err)
	assert.Equal(t, "D3", s)
}

func TestBitBuffer_Uint64(t *testing.T) {
	var bb = testBits(t, "0001 0010 0011")

	var v, err = bb.Uint64(4, 8)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x23), v)

	_, err = bb.Uint64(8, 8)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestBitBuffer_SliceRebasesErrors(t *testing.T) {
	var bb = testBits(t, "10101010", 1, 5, 7)
	bb.Clock = 32

	var s = bb.Slice(4, 8)

	assert.Equal(t, []uint8{1, 0, 1, 0}, s.Bits)
	assert.Equal(t, []int{1, 3}, s.ErrorIdx)
	assert.Equal(t, 2, s.ErrCount)
	assert.Equal(t, 32, s.Clock)
}

func TestBitBuffer_InvertLeavesErrors(t *testing.T) {
	var bb = testBits(t, "1100", 1)

	bb.Invert()

	assert.Equal(t, []uint8{0, 0, 1, 1}, bb.Bits)
	assert.True(t, bb.Inverted)
}

func TestBitBuffer_Capacity(t *testing.T) {
	var bb BitBuffer
	for range MaxBitCount {
		require.True(t, bb.appendBit(1, false))
	}

	assert.False(t, bb.appendBit(1, false))
	assert.Equal(t, MaxBitCount, bb.Len())
}
