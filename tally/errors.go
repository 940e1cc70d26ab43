/*
errors.go - Centralized error types for the tally engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Every ballot rejection maps to exactly one sentinel error, and each
  sentinel carries the user-visible message for that rejection.

ERROR CATEGORIES:
  1. Validation errors - Ballot rejected, no state mutated
  2. Store errors - Ledger or counter store unreachable (request-fatal,
     never process-fatal)

USAGE:
  Handlers match with errors.Is:

    if errors.Is(err, tally.ErrQuotaExceeded) {
        // re-render the vote form with the quota message
    }

SEE ALSO:
  - engine.go: Returns these errors in a fixed validation order
*/
package tally

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidUser is returned when the submitted identity fields do not
	// match exactly one known user.
	ErrInvalidUser = errors.New("personal information does not match")

	// ErrEmptyCandidate is returned when the candidate field is missing.
	ErrEmptyCandidate = errors.New("please enter a candidate")

	// ErrInvalidCandidate is returned when the candidate name is not in the
	// roster.
	ErrInvalidCandidate = errors.New("please enter a valid candidate")

	// ErrMissingKeyword is returned when the vote-reason text is empty.
	ErrMissingKeyword = errors.New("please enter a voting reason")

	// ErrQuotaExceeded is returned when the requested vote count exceeds the
	// user's remaining budget. No counters change on this rejection.
	ErrQuotaExceeded = errors.New("vote count exceeds remaining quota")

	// ErrStoreUnavailable is returned when the ledger or counter store
	// cannot serve the request. Callers may retry or degrade; the process
	// keeps running.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// StoreError wraps an underlying store failure so it matches
// ErrStoreUnavailable while preserving the cause for logs.
func StoreError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}

// IsValidation reports whether err is a ballot rejection rather than an
// infrastructure failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidUser) ||
		errors.Is(err, ErrEmptyCandidate) ||
		errors.Is(err, ErrInvalidCandidate) ||
		errors.Is(err, ErrMissingKeyword) ||
		errors.Is(err, ErrQuotaExceeded)
}
