package domain

import (
	"errors"
	"fmt"
)

// RejectReason enumerates the data-driven outcomes of the ingestion gate.
// These are expected results, not failures; only registry and storage
// errors propagate as plain errors.
type RejectReason string

const (
	RejectSourceInactive RejectReason = "source_inactive"
	RejectRateLimited    RejectReason = "rate_limited"
	RejectDuplicate      RejectReason = "duplicate"
	RejectNearDuplicate  RejectReason = "near_duplicate"
	RejectTooShort       RejectReason = "too_short"
	RejectStale          RejectReason = "stale"
)

// RejectionError is returned by the gate when an item is refused.
type RejectionError struct {
	Reason RejectReason
	URL    string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("item %s rejected: %s", e.URL, e.Reason)
}

// Rejected reports whether err is a gate rejection and, if so, its reason.
func Rejected(err error) (RejectReason, bool) {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej.Reason, true
	}
	return "", false
}
