/*
counters.go - Atomic counter store interface

PURPOSE:
  Defines the interface between the tally logic and the live aggregate
  state. The counter store holds every incrementally maintained number:
  per-candidate totals, per-sex totals, per-user remaining budgets, the
  global vote volume, and the per-(candidate,keyword) reason tallies.

ATOMICITY CONTRACT:
  Every method is atomic per key. Increment is read-modify-write without
  interleaving; DecrementIfAtLeast is a single compare-and-decrement so
  two concurrent requests cannot jointly overspend a budget; InitIfAbsent
  is an atomic get-or-insert replacing "set-if-not-exists" side effects.
  Different keys may be updated concurrently and independently.

IMPLEMENTATIONS:
  - counter/memory.go: In-process map with a mutex (single-process target)
  An external atomic counter service can back the same interface.

SEE ALSO:
  - engine.go: Write path, the only mutator besides Reset
  - aggregator.go: Read path, lookups only
*/
package tally

import "strconv"

// Counters is the live aggregate store. All operations complete in bounded,
// short time; none block on I/O.
type Counters interface {
	// Increment adds delta to key and returns the new value. Creates the
	// key at zero if absent. Delta may be negative.
	Increment(key string, delta int64) int64

	// DecrementIfAtLeast subtracts delta from key only if the current value
	// is >= delta, as one atomic step. Reports whether it decremented.
	// Absent keys are treated as zero.
	DecrementIfAtLeast(key string, delta int64) bool

	// InitIfAbsent sets key to value only if the key does not exist, and
	// returns the value now stored under the key.
	InitIfAbsent(key string, value int64) int64

	// Get returns the current value, zero if absent.
	Get(key string) int64

	// AddKeyword adds delta to the (candidate, keyword) reason tally.
	AddKeyword(id CandidateID, keyword string, delta int64)

	// TopKeywords returns up to limit keywords aggregated across the given
	// candidates, ranked by cumulative tally descending. Ties keep the
	// order in which keywords were first seen.
	TopKeywords(ids []CandidateID, limit int) []KeywordCount

	// Reset clears all counters and keyword tallies. Only the initialize
	// path calls this.
	Reset()
}

// =============================================================================
// KEY SCHEME
// =============================================================================
// Keys are built here and nowhere else, so a typo cannot silently corrupt
// an unrelated counter.

// CandidateKey is the live vote total for one candidate.
func CandidateKey(id CandidateID) string {
	return "candidate:" + strconv.Itoa(int(id)) + ":votes"
}

// SexKey is the live vote total for one sex.
func SexKey(s Sex) string { return "sex:" + string(s) + ":votes" }

// BudgetKey is the user's remaining vote budget.
func BudgetKey(id UserID) string {
	return "user:" + strconv.Itoa(int(id)) + ":budget"
}

// TotalKey is the global accepted vote volume. It drives the rendered-view
// cache activation threshold.
const TotalKey = "votes:total"
