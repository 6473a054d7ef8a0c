package lfdemod

/*------------------------------------------------------------------
 *
 * Purpose:	State of one decode session.
 *
 * Description:	A session owns one trace and one demodulated bit
 *		buffer.  Every successful decode replaces the bit buffer
 *		wholesale.  A caller that wants to keep an earlier result
 *		saves it in the single save slot first; a second save
 *		overwrites the first.
 *
 *		The clock grid records the clock and offset chosen by the
 *		last successful detector or decoder.  Nothing in the
 *		decoders reads it back; it is there for display and for
 *		tools that want to know what was decided.
 *
 *		A DecodeContext is not safe for concurrent use.
 *
 *---------------------------------------------------------------*/

import (
	"slices"

	"github.com/charmbracelet/log"
)

type ClockGrid struct {
	Locked bool
	Offset int
	Clock  int
}

type DecodeContext struct {
	Samples *SampleBuffer
	Bits    BitBuffer
	Grid    ClockGrid
	Config  Config
	Log     *log.Logger

	savedSamples []int
	haveSamples  bool
	savedBits    BitBuffer
	haveBits     bool
}

// NewDecodeContext creates an empty session.  A nil logger discards diagnostics.
func NewDecodeContext(cfg Config, logger *log.Logger) *DecodeContext {
	if logger == nil {
		logger = discardLogger()
	}

	return &DecodeContext{
		Samples: NewSampleBuffer(nil),
		Config:  cfg,
		Log:     logger,
	}
}

// LoadSamples replaces the trace.  The bit buffer and grid are left alone.
func (ctx *DecodeContext) LoadSamples(samples []int) {
	ctx.Samples.Set(samples)
}

/*-------------------------------------------------------------------
 *
 * Name:	SetClockGrid
 *
 * Purpose:	Record the clock and offset of the latest decode.
 *
 * Inputs:	clk	- Samples per bit.  Below 8 or longer than the
 *			  trace unlocks the grid.
 *
 *		offset	- Sample index of a bit boundary.  Reduced into
 *			  the range 0 .. clk-1.
 *
 *---------------------------------------------------------------*/

func (ctx *DecodeContext) SetClockGrid(clk int, offset int) {
	if clk < 8 || clk > ctx.Samples.Len() {
		ctx.Grid = ClockGrid{}
		return
	}

	if offset > clk {
		offset %= clk
	}

	if offset < 0 {
		offset += clk
	}

	if offset < 0 || offset > clk {
		ctx.Grid = ClockGrid{}
		return
	}

	ctx.Grid = ClockGrid{Locked: true, Offset: offset % clk, Clock: clk}
}

// commitBits installs a successful decode.
func (ctx *DecodeContext) commitBits(bb BitBuffer) {
	ctx.Bits = bb
	ctx.SetClockGrid(bb.Clock, bb.StartOffset)
}

func (ctx *DecodeContext) SetBits(bits []uint8) {
	var bb = BitBuffer{Bits: make([]uint8, 0, len(bits))}
	for _, b := range bits {
		bb.appendBit(b, false)
	}

	ctx.Bits = bb
}

func (ctx *DecodeContext) ClearBits() {
	ctx.Bits = BitBuffer{}
}

func (ctx *DecodeContext) SaveBits() {
	ctx.savedBits = ctx.Bits.Clone()
	ctx.haveBits = true
}

func (ctx *DecodeContext) RestoreBits() error {
	if !ctx.haveBits {
		return demodErr("RestoreBits", ErrInvalidArgument, "nothing saved")
	}

	ctx.Bits = ctx.savedBits.Clone()
	ctx.SetClockGrid(ctx.Bits.Clock, ctx.Bits.StartOffset)

	return nil
}

func (ctx *DecodeContext) SaveSamples() {
	ctx.savedSamples = slices.Clone(ctx.Samples.Samples())
	ctx.haveSamples = true
}

func (ctx *DecodeContext) RestoreSamples() error {
	if !ctx.haveSamples {
		return demodErr("RestoreSamples", ErrInvalidArgument, "nothing saved")
	}

	ctx.Samples.Set(ctx.savedSamples)

	return nil
}

/* end context.go */
