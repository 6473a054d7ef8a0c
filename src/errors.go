package lfdemod

/*------------------------------------------------------------------
 *
 * Purpose:	Error kinds shared by the detectors, decoders and tag
 *		decoders.
 *
 * Description:	Every failure wraps exactly one of the sentinel kinds
 *		below so that higher level tooling, which tries several
 *		formats in turn, can tell "no data at all" from "not this
 *		format" from "matched but parity failed".
 *
 *---------------------------------------------------------------*/

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInsufficientData  = errors.New("insufficient data")
	ErrNoPatternFound    = errors.New("no pattern found")
	ErrSizeMismatch      = errors.New("size mismatch")
	ErrTooManyErrors     = errors.New("too many errors")
	ErrAllocationFailure = errors.New("allocation failure")
	ErrTimeout           = errors.New("timeout")
	ErrParityMismatch    = errors.New("parity mismatch")
	ErrInternal          = errors.New("internal decoder fault")
)

// DemodError records which operation failed and why.
type DemodError struct {
	Op     string
	Kind   error
	Detail string
}

func (e *DemodError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}

	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Detail)
}

func (e *DemodError) Unwrap() error {
	return e.Kind
}

func demodErr(op string, kind error, format string, a ...any) error {
	return &DemodError{Op: op, Kind: kind, Detail: fmt.Sprintf(format, a...)}
}

/* end errors.go */
