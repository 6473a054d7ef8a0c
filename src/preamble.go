package lfdemod

/*------------------------------------------------------------------
 *
 * Purpose:	Find a tag's preamble in demodulated bits.
 *
 * Description:	Tags repeat their frame for as long as they are in the
 *		field, so a good capture holds the preamble at least
 *		twice.  The distance between the first two occurrences is
 *		then the frame length.  With only one occurrence the
 *		frame is taken to run to the end of the bits.
 *
 *		The three ways this can fail are kept apart because tag
 *		decoders report them differently.
 *
 *---------------------------------------------------------------*/

import (
	"bytes"
)

var (
	ErrPreambleTooShort = &DemodError{Op: "SearchPreamble", Kind: ErrInsufficientData, Detail: "fewer bits than the preamble"}
	ErrPreambleNotFound = &DemodError{Op: "SearchPreamble", Kind: ErrNoPatternFound, Detail: "preamble not found"}
	ErrPreambleSize     = &DemodError{Op: "SearchPreamble", Kind: ErrSizeMismatch, Detail: "frame length differs from expected"}
)

/*-------------------------------------------------------------------
 *
 * Name:	SearchPreamble
 *
 * Purpose:	Locate a preamble and check the frame length.
 *
 * Inputs:	bits		- Demodulated bits.
 *		preamble	- Pattern to find.
 *		expectedLen	- Required frame length including the
 *				  preamble.  0 accepts any length.
 *
 * Returns:	Index of the first occurrence, and the frame length.
 *
 * Errors:	ErrPreambleTooShort, ErrPreambleNotFound or
 *		ErrPreambleSize, which are also ErrInsufficientData,
 *		ErrNoPatternFound and ErrSizeMismatch to errors.Is.
 *
 *---------------------------------------------------------------*/

func SearchPreamble(bits []uint8, preamble []uint8, expectedLen int) (int, int, error) {
	if len(preamble) == 0 || len(bits) <= len(preamble) {
		return -1, 0, ErrPreambleTooShort
	}

	var start = -1

	for idx := 0; idx+len(preamble) <= len(bits); idx++ {
		if !bytes.Equal(bits[idx:idx+len(preamble)], preamble) {
			continue
		}

		if start < 0 {
			start = idx
			continue
		}

		return checkFrameLen(start, idx-start, expectedLen)
	}

	if start < 0 {
		return -1, 0, ErrPreambleNotFound
	}

	return checkFrameLen(start, len(bits)-start, expectedLen)
}

func checkFrameLen(start int, frameLen int, expectedLen int) (int, int, error) {
	if expectedLen != 0 && frameLen != expectedLen {
		return start, frameLen, ErrPreambleSize
	}

	return start, frameLen, nil
}

// FindPreamble returns the index of the first occurrence of preamble, without any length check.
func FindPreamble(bits []uint8, preamble []uint8) (int, error) {
	if len(preamble) == 0 || len(bits) <= len(preamble) {
		return -1, ErrPreambleTooShort
	}

	var idx = bytes.Index(bits, preamble)
	if idx < 0 {
		return -1, ErrPreambleNotFound
	}

	return idx, nil
}

/* end preamble.go */
