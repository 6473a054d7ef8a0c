package lfdemod

/*------------------------------------------------------------------
 *
 * Purpose:	The two working buffers of a decode session.
 *
 * Description:	SampleBuffer holds the signed amplitude trace as it came
 *		from the reader or a file.  BitBuffer holds the result of
 *		the most recent successful demodulation along with the
 *		clock and sample offset that produced it.
 *
 *		Bits that a decoder could not resolve are kept in a
 *		separate error list rather than being given a third
 *		value.  They still render as '7' in text dumps so the
 *		output lines up with what operators are used to.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"slices"
	"strings"
)

const (
	MaxSampleCount = 40000
	MaxBitCount    = 4096

	SampleMin = -127
	SampleMax = 127
)

func clampSample(v int) int {
	return max(SampleMin, min(SampleMax, v))
}

type SampleBuffer struct {
	samples []int
}

func NewSampleBuffer(samples []int) *SampleBuffer {
	var sb = new(SampleBuffer)
	sb.Set(samples)

	return sb
}

func (sb *SampleBuffer) Len() int {
	return len(sb.samples)
}

// Samples returns the live trace.  Callers must not keep it across writes.
func (sb *SampleBuffer) Samples() []int {
	return sb.samples
}

// Copy returns a private copy of the trace, optionally limited to maxLen samples.
func (sb *SampleBuffer) Copy(maxLen int) []int {
	var n = len(sb.samples)
	if maxLen > 0 && maxLen < n {
		n = maxLen
	}

	return slices.Clone(sb.samples[:n])
}

// Set replaces the trace, truncating at capacity and clamping every value.
func (sb *SampleBuffer) Set(samples []int) {
	var n = min(len(samples), MaxSampleCount)

	sb.samples = make([]int, n)
	for i := range n {
		sb.samples[i] = clampSample(samples[i])
	}
}

func (sb *SampleBuffer) Clear() {
	sb.samples = nil
}

type BitBuffer struct {
	Bits        []uint8
	ErrorIdx    []int
	ErrCount    int
	Clock       int
	StartOffset int
	Inverted    bool
}

func (bb *BitBuffer) Len() int {
	return len(bb.Bits)
}

func (bb *BitBuffer) IsError(i int) bool {
	_, found := slices.BinarySearch(bb.ErrorIdx, i)
	return found
}

// appendBit adds one bit, flagging it when bad is set.  Bits past capacity are dropped.
func (bb *BitBuffer) appendBit(b uint8, bad bool) bool {
	if len(bb.Bits) >= MaxBitCount {
		return false
	}

	if bad {
		bb.ErrorIdx = append(bb.ErrorIdx, len(bb.Bits))
		b = 0
	}

	bb.Bits = append(bb.Bits, b&1)

	return true
}

func (bb BitBuffer) Clone() BitBuffer {
	var c = bb
	c.Bits = slices.Clone(bb.Bits)
	c.ErrorIdx = slices.Clone(bb.ErrorIdx)

	return c
}

// Slice returns bits [from, to) with error positions rebased.
func (bb BitBuffer) Slice(from, to int) BitBuffer {
	from = max(0, min(from, len(bb.Bits)))
	to = max(from, min(to, len(bb.Bits)))

	var out = BitBuffer{
		Bits:        slices.Clone(bb.Bits[from:to]),
		Clock:       bb.Clock,
		StartOffset: bb.StartOffset,
		Inverted:    bb.Inverted,
	}

	for _, e := range bb.ErrorIdx {
		if e >= from && e < to {
			out.ErrorIdx = append(out.ErrorIdx, e-from)
		}
	}

	out.ErrCount = len(out.ErrorIdx)

	return out
}

// Invert flips every bit that is not flagged as an error.
func (bb *BitBuffer) Invert() {
	for i := range bb.Bits {
		if !bb.IsError(i) {
			bb.Bits[i] ^= 1
		}
	}

	bb.Inverted = !bb.Inverted
}

// Uint64 packs n (<= 64) bits starting at start, most significant first.
func (bb *BitBuffer) Uint64(start, n int) (uint64, error) {
	if n < 0 || n > 64 || start < 0 || start+n > len(bb.Bits) {
		return 0, demodErr("Uint64", ErrInvalidArgument, "bits %d+%d of %d", start, n, len(bb.Bits))
	}

	var v uint64
	for _, b := range bb.Bits[start : start+n] {
		v = v<<1 | uint64(b)
	}

	return v, nil
}

// BinaryString renders the bits as digits, breaking lines every width bits.  Errors print as '7'.
func (bb *BitBuffer) BinaryString(width int) string {
	var sb strings.Builder

	for i, b := range bb.Bits {
		if width > 0 && i > 0 && i%width == 0 {
			sb.WriteByte('\n')
		}

		if bb.IsError(i) {
			sb.WriteByte('7')
		} else {
			sb.WriteByte('0' + b)
		}
	}

	return sb.String()
}

// HexString renders whole nibbles.  Trailing bits that do not fill a nibble are ignored.
func (bb *BitBuffer) HexString() (string, error) {
	if len(bb.ErrorIdx) > 0 {
		return "", demodErr("HexString", ErrInvalidArgument, "buffer holds %d error bits", len(bb.ErrorIdx))
	}

	var sb strings.Builder

	for i := 0; i+4 <= len(bb.Bits); i += 4 {
		var nibble = bb.Bits[i]<<3 | bb.Bits[i+1]<<2 | bb.Bits[i+2]<<1 | bb.Bits[i+3]
		fmt.Fprintf(&sb, "%X", nibble)
	}

	return sb.String(), nil
}

/* end buffers.go */
