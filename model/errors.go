package model

import (
	"errors"
	"fmt"
)

// AcquireErrorCode classifies why a location request failed.
type AcquireErrorCode string

const (
	// CodeDenied means the user or platform refused the location request.
	// Denial stops further live retries within an attempt; cached and
	// platform fallbacks may still run.
	CodeDenied AcquireErrorCode = "denied"
	// CodeTimeout means the provider did not answer within the tier's
	// deadline.
	CodeTimeout AcquireErrorCode = "timeout"
	// CodeUnavailable means the provider (or platform control) cannot
	// serve position requests on this host.
	CodeUnavailable AcquireErrorCode = "unavailable"
)

// AcquireError is a classified failure from one acquisition tier. The
// terminal error surfaced after the whole ladder is exhausted carries the
// last tier's code for diagnostics.
type AcquireError struct {
	Code AcquireErrorCode
	Tier int
	Err  error
}

func (e *AcquireError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("acquire tier %d: %s: %v", e.Tier, e.Code, e.Err)
	}
	return fmt.Sprintf("acquire tier %d: %s", e.Tier, e.Code)
}

func (e *AcquireError) Unwrap() error { return e.Err }

// AsAcquireError unwraps err into an *AcquireError if one is in the chain.
func AsAcquireError(err error) (*AcquireError, bool) {
	var ae *AcquireError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// ErrNoPosition is reported when arbitration finds no usable candidate.
// It is a normal condition for the UI (visuals are suppressed), not a
// fault.
var ErrNoPosition = errors.New("no valid position available")
