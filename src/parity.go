package lfdemod

/*------------------------------------------------------------------
 *
 * Purpose:	Strip and insert interleaved parity bits.
 *
 * Description:	Many tag formats follow every few data bits with a
 *		parity bit.  A group is the data bits plus the parity
 *		bit that ends it, so EM410x rows are groups of 5.
 *
 *		Neither function allocates; the caller sizes dst.
 *
 *---------------------------------------------------------------*/

type ParityType int

const (
	ParityEven ParityType = iota
	ParityOdd
	ParityAlwaysOne
	ParityAlwaysZero
)

func (p ParityType) String() string {
	switch p {
	case ParityEven:
		return "even"
	case ParityOdd:
		return "odd"
	case ParityAlwaysOne:
		return "always 1"
	case ParityAlwaysZero:
		return "always 0"
	}

	return "unknown"
}

// ParityBit is the bit that gives data the requested parity.
func ParityBit(data []uint8, pt ParityType) uint8 {
	switch pt {
	case ParityAlwaysOne:
		return 1
	case ParityAlwaysZero:
		return 0
	}

	var x uint8
	for _, b := range data {
		x ^= b & 1
	}

	if pt == ParityOdd {
		return x ^ 1
	}

	return x
}

// ParityTest checks a whole group, data followed by its parity bit.
func ParityTest(group []uint8, pt ParityType) bool {
	if len(group) == 0 {
		return false
	}

	return ParityBit(group[:len(group)-1], pt) == group[len(group)-1]&1
}

/*-------------------------------------------------------------------
 *
 * Name:	RemoveParity
 *
 * Purpose:	Check and drop the parity bit of each group.
 *
 * Inputs:	dst		- Receives the data bits.
 *		src		- Bits holding the groups.
 *		start		- Index in src of the first group.
 *		groupLen	- Bits per group, parity included.
 *		pt		- Parity of each group.
 *		runLen		- Bits of src to scan.  A trailing
 *				  partial group is ignored.
 *
 * Returns:	Number of data bits written, or 0 with an error when a
 *		group fails its parity check.
 *
 *---------------------------------------------------------------*/

func RemoveParity(dst []uint8, src []uint8, start int, groupLen int, pt ParityType, runLen int) (int, error) {
	const op = "RemoveParity"

	if groupLen < 2 || start < 0 || runLen < 0 || start+runLen > len(src) {
		return 0, demodErr(op, ErrInvalidArgument, "start %d, group %d, run %d over %d bits", start, groupLen, runLen, len(src))
	}

	var groups = runLen / groupLen
	if len(dst) < groups*(groupLen-1) {
		return 0, demodErr(op, ErrAllocationFailure, "destination holds %d bits, need %d", len(dst), groups*(groupLen-1))
	}

	var n = 0

	for g := range groups {
		var group = src[start+g*groupLen : start+(g+1)*groupLen]

		if !ParityTest(group, pt) {
			return 0, demodErr(op, ErrParityMismatch, "group %d at bit %d fails %s parity", g, start+g*groupLen, pt)
		}

		n += copy(dst[n:], group[:groupLen-1])
	}

	return n, nil
}

/*-------------------------------------------------------------------
 *
 * Name:	AddParity
 *
 * Purpose:	Insert a parity bit after every groupLen-1 data bits.
 *
 * Returns:	Number of bits written to dst.
 *
 *---------------------------------------------------------------*/

func AddParity(dst []uint8, src []uint8, groupLen int, pt ParityType) (int, error) {
	const op = "AddParity"

	if groupLen < 2 || len(src)%(groupLen-1) != 0 {
		return 0, demodErr(op, ErrInvalidArgument, "%d bits do not split into groups of %d", len(src), groupLen-1)
	}

	var groups = len(src) / (groupLen - 1)
	if len(dst) < groups*groupLen {
		return 0, demodErr(op, ErrAllocationFailure, "destination holds %d bits, need %d", len(dst), groups*groupLen)
	}

	var n = 0

	for g := range groups {
		var data = src[g*(groupLen-1) : (g+1)*(groupLen-1)]

		n += copy(dst[n:], data)
		dst[n] = ParityBit(data, pt)
		n++
	}

	return n, nil
}

/* end parity.go */
