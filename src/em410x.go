package lfdemod

/*------------------------------------------------------------------
 *
 * Purpose:	EM410x tag ID decoding and encoding.
 *
 * Description:	An EM410x frame is 64 Manchester coded bits:
 *
 *			111111111		header, 9 ones
 *			DDDD P  x 10		4 data bits, even parity
 *			CCCC			column parity
 *			0			stop bit
 *
 *		The XL variant carries 22 rows (88 bits of ID) in the
 *		same layout.  Row parity keeps nine ones in a row from
 *		appearing anywhere but the header.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"math/bits"
)

const (
	em410xHeaderLen = 9
	em410xRows      = 10
	em410xXLRows    = 22
	em410xFrameLen  = em410xHeaderLen + em410xRows*5 + 5
	em410xXLLen     = em410xHeaderLen + em410xXLRows*5 + 5
)

type EM410xResult struct {
	Hi       uint32 // XL only, top 24 bits of the 88 bit ID
	Lo       uint64 // 40 bit ID, or the low 64 bits of an XL ID
	Start    int    // index of the header in the bits decoded
	Inverted bool
	XL       bool
}

func (r EM410xResult) String() string {
	if r.XL {
		return fmt.Sprintf("%06X%016X", r.Hi, r.Lo)
	}

	return fmt.Sprintf("%010X", r.Lo)
}

type em410xState int

const (
	stateSeekHeader em410xState = iota
	stateHeader
	stateReadRow
	stateVerifyColumns
	stateDone
)

type em410xScan struct {
	found      bool
	hi         uint32
	lo         uint64
	start      int
	sawHeader  bool
	parityFail bool
}

/*-------------------------------------------------------------------
 *
 * Name:	scanEM410x
 *
 * Purpose:	Run the frame state machine over bits once.
 *
 * Inputs:	bits	- Working copy of the bits.
 *		valid	- False where the demodulator flagged an error.
 *		rows	- 10 for standard frames, 22 for XL.
 *
 * Description:	A row that fails parity sends the scan back to one bit
 *		after the start of the header that led to it, so a run of
 *		ten or more ones gets tried at each alignment.  Column
 *		parity or stop bit failure rewinds by a header and the
 *		rows, which also lands just past the start of that
 *		header.
 *
 *---------------------------------------------------------------*/

func scanEM410x(bits []uint8, valid []bool, rows int) em410xScan {
	var res em410xScan
	var state = stateSeekHeader
	var pos, ones, headerStart, row = 0, 0, 0, 0
	var nibbles = make([]uint8, rows)
	var frameLen = em410xHeaderLen + rows*5 + 5

	var one = func(i int) bool { return valid[i] && bits[i] == 1 }

	for state != stateDone {
		switch state {
		case stateSeekHeader:
			ones = 0
			state = stateHeader

		case stateHeader:
			if pos >= len(bits) {
				return res
			}

			if one(pos) {
				ones++
			} else {
				ones = 0
			}

			pos++

			if ones == em410xHeaderLen {
				headerStart = pos - em410xHeaderLen
				if headerStart+frameLen > len(bits) {
					return res
				}

				res.sawHeader = true
				row = 0
				state = stateReadRow
			}

		case stateReadRow:
			var group = bits[pos : pos+5]
			var ok = valid[pos] && valid[pos+1] && valid[pos+2] && valid[pos+3] && valid[pos+4]

			if !ok || !ParityTest(group, ParityEven) {
				res.parityFail = true
				pos = headerStart + 1
				state = stateSeekHeader

				continue
			}

			nibbles[row] = group[0]<<3 | group[1]<<2 | group[2]<<1 | group[3]
			pos += 5
			row++

			if row == rows {
				state = stateVerifyColumns
			}

		case stateVerifyColumns:
			var ok = true

			for col := range 4 {
				var parity uint8
				for _, nib := range nibbles {
					parity ^= nib >> (3 - col) & 1
				}

				if !valid[pos+col] || bits[pos+col] != parity {
					ok = false
				}
			}

			if !valid[pos+4] || bits[pos+4] != 0 {
				ok = false
			}

			pos += 5

			if !ok {
				res.parityFail = true
				pos -= em410xHeaderLen + rows*5
				state = stateSeekHeader

				continue
			}

			for _, nib := range nibbles {
				res.hi = res.hi<<4 | uint32(res.lo>>60)
				res.lo = res.lo<<4 | uint64(nib)
			}

			res.found = true
			res.start = headerStart
			state = stateDone
		}
	}

	return res
}

/*-------------------------------------------------------------------
 *
 * Name:	DecodeEM410x
 *
 * Purpose:	Find and check an EM410x frame in demodulated bits.
 *
 * Description:	The scan is made once as given, and if no frame turns
 *		up, once more with every bit inverted.  The XL layout is
 *		tried first: the first 64 bits of an XL frame can pass
 *		as a standard frame, but the next header always breaks
 *		an XL reading of repeated standard frames.
 *
 * Errors:	ErrInsufficientData for fewer than 64 bits,
 *		ErrNoPatternFound when no header was seen,
 *		ErrParityMismatch when headers were seen but no frame
 *		checked out.
 *
 *---------------------------------------------------------------*/

func DecodeEM410x(bb BitBuffer) (EM410xResult, error) {
	const op = "DecodeEM410x"

	if bb.Len() < em410xFrameLen {
		return EM410xResult{}, demodErr(op, ErrInsufficientData, "%d bits, need %d", bb.Len(), em410xFrameLen)
	}

	var work = make([]uint8, bb.Len())
	var valid = make([]bool, bb.Len())

	for i, b := range bb.Bits {
		work[i] = b
		valid[i] = !bb.IsError(i)
	}

	var sawHeader = false

	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			for i := range work {
				work[i] ^= 1
			}
		}

		for _, rows := range []int{em410xXLRows, em410xRows} {
			var scan = scanEM410x(work, valid, rows)
			sawHeader = sawHeader || scan.sawHeader

			if scan.found {
				return EM410xResult{
					Hi:       scan.hi,
					Lo:       scan.lo,
					Start:    scan.start,
					Inverted: attempt > 0,
					XL:       rows == em410xXLRows,
				}, nil
			}
		}
	}

	if !sawHeader {
		return EM410xResult{}, demodErr(op, ErrNoPatternFound, "no EM410x header")
	}

	return EM410xResult{}, demodErr(op, ErrParityMismatch, "header found but parity failed")
}

// DecodeEM410x decodes the bit buffer and, on success only, replaces it with the frame.
func (ctx *DecodeContext) DecodeEM410x() (EM410xResult, error) {
	var res, err = DecodeEM410x(ctx.Bits)
	if err != nil {
		ctx.Log.Debug("em410x", "err", err)
		return res, err
	}

	var frameLen = em410xFrameLen
	if res.XL {
		frameLen = em410xXLLen
	}

	var frame = ctx.Bits.Slice(res.Start, res.Start+frameLen)
	if res.Inverted {
		frame.Invert()
	}

	frame.StartOffset += res.Start * frame.Clock
	ctx.Bits = frame
	ctx.SetClockGrid(frame.Clock, frame.StartOffset)

	return res, nil
}

// DemodEM410x demodulates ASK Manchester and decodes an EM410x ID from the result.
func (ctx *DecodeContext) DemodEM410x(opts DemodOptions) (EM410xResult, error) {
	var _, err = ctx.DemodASKManchester(opts)
	if err != nil {
		return EM410xResult{}, err
	}

	return ctx.DecodeEM410x()
}

/*-------------------------------------------------------------------
 *
 * Name:	EncodeEM410x
 *
 * Purpose:	Build the 64 bit frame for a 40 bit ID.
 *
 *---------------------------------------------------------------*/

func EncodeEM410x(id uint64) []uint8 {
	var frame = make([]uint8, 0, em410xFrameLen)

	for range em410xHeaderLen {
		frame = append(frame, 1)
	}

	var columns [4]uint8

	for row := range em410xRows {
		var nib = uint8(id >> (4 * (em410xRows - 1 - row)) & 0xF)
		var data = []uint8{nib >> 3 & 1, nib >> 2 & 1, nib >> 1 & 1, nib & 1}

		frame = append(frame, data...)
		frame = append(frame, ParityBit(data, ParityEven))

		for col := range 4 {
			columns[col] ^= data[col]
		}
	}

	frame = append(frame, columns[:]...)
	frame = append(frame, 0)

	return frame
}

/*-------------------------------------------------------------------
 *
 * Name:	EncodeEM410xXL
 *
 * Purpose:	Build the 124 bit XL frame for an 88 bit ID.
 *
 *---------------------------------------------------------------*/

func EncodeEM410xXL(hi uint32, lo uint64) []uint8 {
	var frame = make([]uint8, 0, em410xXLLen)

	for range em410xHeaderLen {
		frame = append(frame, 1)
	}

	var columns [4]uint8

	for row := range em410xXLRows {
		var shift = 4 * (em410xXLRows - 1 - row)

		var nib uint8
		if shift >= 64 {
			nib = uint8(hi >> (shift - 64) & 0xF)
		} else {
			nib = uint8(lo >> shift & 0xF)
		}

		var data = []uint8{nib >> 3 & 1, nib >> 2 & 1, nib >> 1 & 1, nib & 1}

		frame = append(frame, data...)
		frame = append(frame, ParityBit(data, ParityEven))

		for col := range 4 {
			columns[col] ^= data[col]
		}
	}

	frame = append(frame, columns[:]...)
	frame = append(frame, 0)

	return frame
}

/*-------------------------------------------------------------------
 *
 * Name:	EM410xFormats
 *
 * Purpose:	The other ways readers print the same 40 bit ID.
 *
 * Returns:	Label and value pairs, in display order.
 *
 *---------------------------------------------------------------*/

type EM410xFormat struct {
	Name  string
	Value string
}

func EM410xFormats(id uint64) []EM410xFormat {
	id &= 0xFFFFFFFFFF

	var out = []EM410xFormat{
		{"DEZ 8", fmt.Sprintf("%08d", id&0xFFFFFF)},
		{"DEZ 10", fmt.Sprintf("%010d", id&0xFFFFFFFF)},
		{"DEZ 5.5", fmt.Sprintf("%05d.%05d", id>>16&0xFFFF, id&0xFFFF)},
		{"DEZ 3.5A", fmt.Sprintf("%03d.%05d", id>>32&0xFF, id&0xFFFF)},
		{"DEZ 3.5B", fmt.Sprintf("%03d.%05d", id>>24&0xFF, id&0xFFFF)},
		{"DEZ 3.5C", fmt.Sprintf("%03d.%05d", id>>16&0xFF, id&0xFFFF)},
		{"DEZ 14/IK2", fmt.Sprintf("%014d", id)},
		{"DEZ 15/IK3", fmt.Sprintf("%015d", em410xUniqueID(id))},
		{"DEZ 20/ZK", em410xZK(id)},
		{"Pattern Paxton", fmt.Sprintf("%d", em410xPaxton(id))},
		{"Pattern Sebury", fmt.Sprintf("%d %d %d", id>>8&0xFFFF, id>>16&0x7F, id&0xFFFFFF)},
	}

	return out
}

// em410xUniqueID reverses the bits of each byte, which is how some readers print the ID.
func em410xUniqueID(id uint64) uint64 {
	var out uint64

	for i := range 5 {
		var b = uint8(id >> (8 * (4 - i)))
		out = out<<8 | uint64(bits.Reverse8(b))
	}

	return out
}

// em410xZK prints each nibble bit reversed, as two decimal digits.
func em410xZK(id uint64) string {
	var s = ""

	for i := range 10 {
		var nib = uint8(id >> (4 * (9 - i)) & 0xF)
		s += fmt.Sprintf("%02d", bits.Reverse8(nib)>>4)
	}

	return s
}

// em410xPaxton rebuilds the decimal Paxton reads from the 32 low bits.
func em410xPaxton(id uint64) uint64 {
	var n = id & 0xFFFFFFFF
	var out uint64
	var mult uint64 = 1

	for n > 0 {
		out += (n & 0xF) % 10 * mult
		n >>= 4
		mult *= 10
	}

	return out
}

/* end em410x.go */
