package lfdemod

/*------------------------------------------------------------------
 *
 * Purpose:	Try every demodulator on an unknown trace.
 *
 * Description:	Used when the operator has a capture and no idea what
 *		tag produced it.  Each family is tried with clock
 *		detection and the configured error budget, and every one
 *		that decodes is reported.  The session is left exactly
 *		as it was found.
 *
 *		PSK tags take a while to settle after the field comes
 *		on, so the start of the trace is skipped for PSK only.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
)

const pskSettleSamples = 160

type SearchHit struct {
	Name   string
	Bits   BitBuffer
	Detail string
}

// SearchModulation runs every family over the trace.  The trace goes through the
// sample save slot, and whatever the operator had saved there is put back after.
func (ctx *DecodeContext) SearchModulation(opts DemodOptions) []SearchHit {
	var slot, haveSlot = ctx.savedSamples, ctx.haveSamples
	var savedBits = ctx.Bits.Clone()
	var savedGrid = ctx.Grid

	ctx.SaveSamples()

	defer func() {
		if err := ctx.RestoreSamples(); err != nil {
			ctx.Log.Error("search could not restore the trace", "err", err)
		}

		ctx.savedSamples, ctx.haveSamples = slot, haveSlot
		ctx.Bits = savedBits
		ctx.Grid = savedGrid
	}()

	var hits []SearchHit

	var try = func(name string, demod func() (BitBuffer, string, error)) {
		var bb, detail, err = demod()
		if err != nil {
			ctx.Log.Debug("search miss", "family", name, "err", err)
			return
		}

		hits = append(hits, SearchHit{Name: name, Bits: bb.Clone(), Detail: detail})
	}

	try("FSK", func() (BitBuffer, string, error) {
		var bb, info, err = ctx.DemodFSK(opts)
		return bb, fmt.Sprintf("%s fc %d/%d clock %d", info.Label, info.FCHigh, info.FCLow, bb.Clock), err
	})

	try("ASK/Manchester", func() (BitBuffer, string, error) {
		var bb, err = ctx.DemodASKManchester(opts)
		if err != nil {
			return bb, "", err
		}

		var detail = fmt.Sprintf("clock %d", bb.Clock)

		var em, emErr = DecodeEM410x(bb)
		if emErr == nil {
			detail += fmt.Sprintf(", EM410x ID %s", em)
		}

		return bb, detail, nil
	})

	try("ASK/Biphase", func() (BitBuffer, string, error) {
		var bb, err = ctx.DemodASKBiphase(0, opts)
		return bb, fmt.Sprintf("clock %d", bb.Clock), err
	})

	try("NRZ", func() (BitBuffer, string, error) {
		var bb, err = ctx.DemodNRZ(opts)
		return bb, fmt.Sprintf("clock %d", bb.Clock), err
	})

	if ctx.Samples.Len() <= pskSettleSamples+MinDemodSamples {
		ctx.Log.Debug("search skips PSK1", "samples", ctx.Samples.Len())
		return hits
	}

	if err := ctx.Samples.Ltrim(pskSettleSamples); err != nil {
		ctx.Log.Debug("search skips PSK1", "err", err)
		return hits
	}

	try("PSK1", func() (BitBuffer, string, error) {
		var bb, info, err = ctx.DemodPSK1(opts)
		return bb, fmt.Sprintf("carrier %d clock %d", info.Carrier, bb.Clock), err
	})

	return hits
}

/* end modulation_search.go */
