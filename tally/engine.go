/*
engine.go - Write-path vote tallying

PURPOSE:
  The Engine validates a ballot, consumes the submitter's budget, updates
  every live counter, and appends the fact to the ledger. It owns the
  invariant that the counter deltas always converge with the ledger row
  weights once in-flight requests drain.

VALIDATION ORDER (fail fast, no state mutated on failure):
  1. identity fields match exactly one user  -> ErrInvalidUser
  2. candidate field non-empty               -> ErrEmptyCandidate
  3. candidate name known                    -> ErrInvalidCandidate
  4. keyword non-empty                       -> ErrMissingKeyword
  5. remaining budget >= requested count     -> ErrQuotaExceeded

BUDGET CONSUMPTION:
  The budget counter is lazily seeded from the user's fixed total with
  InitIfAbsent, then consumed with DecrementIfAtLeast. Check and decrement
  are one atomic step, so concurrent requests for the same user cannot
  jointly overspend. If the ledger append afterwards fails, the decrement
  is refunded before the error is returned.

CONSISTENCY:
  Counter updates and the ledger append are not cross-store transactional.
  A reader may briefly observe counters ahead of the ledger; the sum
  invariant holds again once in-flight requests complete.

INITIALIZE EXCLUSIVITY:
  Initialize takes the engine write lock while CastVote and the read paths
  hold read locks, so a reset never interleaves with traffic.

SEE ALSO:
  - counters.go: Atomicity contract
  - aggregator.go: Read path over the same counters
*/
package tally

import (
	"context"
	"sync"
)

// Purger is the rendered-view cache as seen by the reset path.
type Purger interface {
	PurgeAll()
}

// Engine is the core write path. Construct with NewEngine, then Load once
// before serving traffic.
type Engine struct {
	mu       sync.RWMutex
	ledger   Ledger
	counters Counters
	cache    Purger
	roster   *Roster
}

func NewEngine(ledger Ledger, counters Counters, cache Purger) *Engine {
	return &Engine{
		ledger:   ledger,
		counters: counters,
		cache:    cache,
		roster:   NewRoster(nil),
	}
}

// Roster returns the current candidate snapshot. The returned roster is
// immutable; Initialize swaps in a fresh one.
func (e *Engine) Roster() *Roster {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.roster
}

// Counters exposes the live counter store for the read side.
func (e *Engine) Counters() Counters { return e.counters }

// =============================================================================
// STARTUP - Rebuild live state from the ledger
// =============================================================================

// Load reads the roster and rebuilds every counter from the ledger. Call
// once at startup, before serving traffic.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	candidates, err := e.ledger.ListCandidates(ctx)
	if err != nil {
		return StoreError("list candidates", err)
	}
	e.roster = NewRoster(candidates)

	e.counters.Reset()
	e.seedZeroCounters()

	totals, err := e.ledger.CandidateVoteTotals(ctx)
	if err != nil {
		return StoreError("load candidate totals", err)
	}
	for id, total := range totals {
		e.counters.Increment(CandidateKey(id), total)
		if c, ok := e.roster.ByID(id); ok {
			e.counters.Increment(SexKey(c.Sex), total)
		}
		e.counters.Increment(TotalKey, total)
	}

	budgets, err := e.ledger.RemainingBudgets(ctx)
	if err != nil {
		return StoreError("load budgets", err)
	}
	for id, remaining := range budgets {
		e.counters.InitIfAbsent(BudgetKey(id), remaining)
	}

	voices, err := e.ledger.AllVoices(ctx)
	if err != nil {
		return StoreError("load voices", err)
	}
	for _, v := range voices {
		e.counters.AddKeyword(v.CandidateID, v.Keyword, v.Count)
	}

	return nil
}

// seedZeroCounters creates the per-candidate and per-sex keys at zero so a
// cold read path sees explicit zeros rather than missing keys.
func (e *Engine) seedZeroCounters() {
	for _, c := range e.roster.Candidates() {
		e.counters.InitIfAbsent(CandidateKey(c.ID), 0)
	}
	e.counters.InitIfAbsent(SexKey(SexMale), 0)
	e.counters.InitIfAbsent(SexKey(SexFemale), 0)
	e.counters.InitIfAbsent(TotalKey, 0)
}

// =============================================================================
// CAST VOTE
// =============================================================================

// CastVote validates and records one ballot. Re-submitting an identical
// ballot counts again; there is no deduplication by design.
func (e *Engine) CastVote(ctx context.Context, b Ballot) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	user, err := e.ledger.LookupUser(ctx, b.Name, b.Address, b.MyNumber)
	if err != nil {
		return StoreError("lookup user", err)
	}
	if user == nil {
		return ErrInvalidUser
	}

	if b.Candidate == "" {
		return ErrEmptyCandidate
	}
	candidate, ok := e.roster.ByName(b.Candidate)
	if !ok {
		return ErrInvalidCandidate
	}

	if b.Keyword == "" {
		return ErrMissingKeyword
	}

	// A non-positive request can never consume budget; treating it as
	// over-quota keeps the error taxonomy closed.
	if b.Count < 1 {
		return ErrQuotaExceeded
	}

	budgetKey := BudgetKey(user.ID)
	e.counters.InitIfAbsent(budgetKey, user.Votes)
	if !e.counters.DecrementIfAtLeast(budgetKey, b.Count) {
		return ErrQuotaExceeded
	}

	if err := e.ledger.AppendVote(ctx, VoteFact{
		UserID:      user.ID,
		CandidateID: candidate.ID,
		Keyword:     b.Keyword,
		Count:       b.Count,
	}); err != nil {
		e.counters.Increment(budgetKey, b.Count) // refund
		return StoreError("append vote", err)
	}

	e.counters.AddKeyword(candidate.ID, b.Keyword, b.Count)
	e.counters.Increment(CandidateKey(candidate.ID), b.Count)
	e.counters.Increment(SexKey(candidate.Sex), b.Count)
	e.counters.Increment(TotalKey, b.Count)

	return nil
}

// =============================================================================
// INITIALIZE - Full reset
// =============================================================================

// Initialize resets the ledger's vote facts, re-seeds the counter store
// from the current candidate snapshot, and purges the rendered-view cache.
// Exclusive with all other operations; idempotent.
func (e *Engine) Initialize(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ledger.ResetVotes(ctx); err != nil {
		return StoreError("reset votes", err)
	}

	candidates, err := e.ledger.ListCandidates(ctx)
	if err != nil {
		return StoreError("list candidates", err)
	}
	e.roster = NewRoster(candidates)

	e.counters.Reset()
	e.seedZeroCounters()

	if e.cache != nil {
		e.cache.PurgeAll()
	}
	return nil
}
