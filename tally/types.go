/*
Package tally provides the core vote-tally engine.

PURPOSE:
  This package contains the domain types and algorithms for incremental
  vote aggregation. Instead of recomputing results by scanning every vote
  row, counters are updated on the write path and results are composed
  from O(1) counter lookups on the read path.

KEY CONCEPTS IN THIS FILE (types.go):
  - Candidate/User: canonical records, loaded from the ledger
  - Roster: immutable in-memory snapshot of the candidate set
  - Ballot: a vote submission (identity fields + choice + reason + count)
  - VoteFact: an immutable ledger row recording an accepted vote

DESIGN PRINCIPLES:
  1. Counters are the source of truth for counts; Candidate records carry
     no authoritative count field.
  2. The ledger is append-only; aggregate state is derived from it at
     initialization and maintained incrementally afterwards.
  3. Strong typing for IDs prevents mixing user and candidate identifiers.

SEE ALSO:
  - counters.go: Counter store interface
  - engine.go: Write-path validation and tallying
  - aggregator.go: Read-path result composition
*/
package tally

import "time"

// =============================================================================
// IDENTIFIERS
// =============================================================================

type CandidateID int
type UserID int

// Sex is the candidate's registered sex, used for the ratio report.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// =============================================================================
// CANONICAL RECORDS
// =============================================================================

// Candidate is a read-side projection of a candidates row. The vote count
// lives in the counter store, not here.
type Candidate struct {
	ID    CandidateID
	Name  string
	Party string
	Sex   Sex
}

// User is a registered voter. Votes is the fixed total budget, immutable
// after record creation; the remaining budget is tracked in the counter
// store under BudgetKey(id).
type User struct {
	ID       UserID
	Name     string
	Address  string
	MyNumber string
	Votes    int64
}

// VoteFact is one accepted vote submission as recorded in the ledger.
// Append-only; removed only by a full reset.
type VoteFact struct {
	ID          string
	UserID      UserID
	CandidateID CandidateID
	Keyword     string
	Count       int64
	CreatedAt   time.Time
}

// Ballot is a vote submission before validation. Identity fields
// re-authenticate the user on every request; there is no session trust.
type Ballot struct {
	Name      string
	Address   string
	MyNumber  string
	Candidate string // display name, not id
	Keyword   string
	Count     int64
}

// KeywordCount is one entry of a "why they're popular" report.
type KeywordCount struct {
	Keyword string
	Count   int64
}

// =============================================================================
// ROSTER - Immutable candidate snapshot
// =============================================================================

// Roster is the in-memory candidate snapshot shared by the engine and the
// aggregator. It is rebuilt from the ledger on startup and on Initialize,
// and never mutated in between, so concurrent readers need no locking.
type Roster struct {
	ordered []Candidate // discovery order (ledger listing order)
	byID    map[CandidateID]Candidate
	byName  map[string]Candidate
	parties []string // discovery order, deduplicated
}

// NewRoster builds a roster from candidates in discovery order.
func NewRoster(candidates []Candidate) *Roster {
	r := &Roster{
		ordered: append([]Candidate(nil), candidates...),
		byID:    make(map[CandidateID]Candidate, len(candidates)),
		byName:  make(map[string]Candidate, len(candidates)),
	}
	seen := make(map[string]bool)
	for _, c := range candidates {
		r.byID[c.ID] = c
		r.byName[c.Name] = c
		if !seen[c.Party] {
			seen[c.Party] = true
			r.parties = append(r.parties, c.Party)
		}
	}
	return r
}

// Candidates returns all candidates in discovery order.
func (r *Roster) Candidates() []Candidate { return r.ordered }

// ByID looks up a candidate by id.
func (r *Roster) ByID(id CandidateID) (Candidate, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// ByName looks up a candidate by display name, as submitted on ballots.
func (r *Roster) ByName(name string) (Candidate, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// Parties returns the known party names in discovery order. Parties with
// zero votes are still listed.
func (r *Roster) Parties() []string { return r.parties }

// PartyMembers returns the candidates belonging to a party, in discovery
// order. Empty for unknown parties.
func (r *Roster) PartyMembers(party string) []Candidate {
	var members []Candidate
	for _, c := range r.ordered {
		if c.Party == party {
			members = append(members, c)
		}
	}
	return members
}

func (r *Roster) Len() int { return len(r.ordered) }
