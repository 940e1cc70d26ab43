/*
ledger.go - Durable vote ledger interface

PURPOSE:
  Defines the interface between the tally logic and the durable record
  store. The ledger holds immutable vote facts and the canonical user and
  candidate records. The engine touches it in exactly two places: at
  initialization (roster load plus counter rebuild) and at the moment a
  vote is recorded.

APPEND-ONLY CONTRACT:
  Vote facts are never updated or deleted individually. ResetVotes is the
  single administrative exception and clears them wholesale.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite

SEE ALSO:
  - engine.go: The only writer
  - store/sqlite/sqlite.go: Concrete implementation
*/
package tally

import "context"

// Voice is one row of the durable (candidate, keyword) projection, used to
// rebuild the in-memory keyword tallies after a restart.
type Voice struct {
	CandidateID CandidateID
	Keyword     string
	Count       int64
}

// Ledger is the durable record store.
type Ledger interface {
	// LookupUser matches the three identity fields. Returns nil without
	// error when nothing matches.
	LookupUser(ctx context.Context, name, address, mynumber string) (*User, error)

	// ListCandidates returns the roster in discovery order.
	ListCandidates(ctx context.Context) ([]Candidate, error)

	// AppendVote durably records one accepted vote fact and folds its
	// keyword into the durable projection. The store assigns the fact id
	// and timestamp.
	AppendVote(ctx context.Context, fact VoteFact) error

	// CandidateVoteTotals returns accepted vote units per candidate,
	// weighted by count. Rebuild path only.
	CandidateVoteTotals(ctx context.Context) (map[CandidateID]int64, error)

	// RemainingBudgets returns budget minus consumed units for every user
	// who has cast at least one vote. Rebuild path only.
	RemainingBudgets(ctx context.Context) (map[UserID]int64, error)

	// AllVoices dumps the durable keyword projection. Rebuild path only.
	AllVoices(ctx context.Context) ([]Voice, error)

	// CountVotes returns total accepted vote units across all facts.
	CountVotes(ctx context.Context) (int64, error)

	// ResetVotes deletes all vote facts and the keyword projection.
	ResetVotes(ctx context.Context) error
}
