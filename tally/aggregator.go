/*
aggregator.go - Read-path result composition

PURPOSE:
  Composes counter store values into the reporting views: overall ranking,
  per-candidate detail, per-party totals, and the sex-ratio breakdown.
  Every operation is a pure function of counter state; nothing here scans
  the ledger. Cost is O(#candidates) for the ranking and O(#party members)
  for a party view.

EMPTY-STATE TOLERANCE:
  All operations return zeros and empty lists against an empty or
  partially initialized counter store. They never fail.

SEE ALSO:
  - counters.go: The only data source
  - api/handlers.go: Renders these views (and caches the result)
*/
package tally

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ReportLimit caps keyword reports and the ranking excerpt.
const ReportLimit = 10

// CandidateTally pairs a candidate with its live vote count.
type CandidateTally struct {
	Candidate Candidate
	Count     int64
}

// CandidateDetail is the per-candidate view.
type CandidateDetail struct {
	Candidate Candidate
	Count     int64
	Keywords  []KeywordCount
}

// PartyDetail is the per-party view. Count is the sum over the party's
// candidates; zero when the party has no candidates or no votes.
type PartyDetail struct {
	Party      string
	Count      int64
	Candidates []Candidate
	Keywords   []KeywordCount
}

// SexRatio holds the two running sex aggregates plus a percentage split.
type SexRatio struct {
	Men          int64
	Women        int64
	MenPercent   decimal.Decimal
	WomenPercent decimal.Decimal
}

// Aggregator is the read side. It shares the engine's counters and its
// current roster snapshot.
type Aggregator struct {
	counters Counters
	roster   func() *Roster
}

func NewAggregator(counters Counters, roster func() *Roster) *Aggregator {
	return &Aggregator{counters: counters, roster: roster}
}

// OverallRanking returns every candidate with its live count, descending,
// ties broken by roster (discovery) order.
func (a *Aggregator) OverallRanking() []CandidateTally {
	roster := a.roster()
	ranking := make([]CandidateTally, 0, roster.Len())
	for _, c := range roster.Candidates() {
		ranking = append(ranking, CandidateTally{
			Candidate: c,
			Count:     a.counters.Get(CandidateKey(c.ID)),
		})
	}
	// SliceStable keeps discovery order for equal counts.
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Count > ranking[j].Count
	})
	return ranking
}

// TopRanking returns the index excerpt: the top ten candidates plus the
// lowest-ranked one (eleven entries when the roster has at least eleven).
func (a *Aggregator) TopRanking() []CandidateTally {
	ranking := a.OverallRanking()
	if len(ranking) <= ReportLimit {
		return ranking
	}
	top := append([]CandidateTally(nil), ranking[:ReportLimit]...)
	return append(top, ranking[len(ranking)-1])
}

// CandidateDetail returns the per-candidate view. The second return is
// false for unknown ids.
func (a *Aggregator) CandidateDetail(id CandidateID) (CandidateDetail, bool) {
	c, ok := a.roster().ByID(id)
	if !ok {
		return CandidateDetail{}, false
	}
	return CandidateDetail{
		Candidate: c,
		Count:     a.counters.Get(CandidateKey(id)),
		Keywords:  a.counters.TopKeywords([]CandidateID{id}, ReportLimit),
	}, true
}

// PartyDetail returns the per-party view. Unknown or empty parties yield
// zero counts and empty lists, never an error.
func (a *Aggregator) PartyDetail(name string) PartyDetail {
	members := a.roster().PartyMembers(name)

	detail := PartyDetail{Party: name, Candidates: members}
	ids := make([]CandidateID, 0, len(members))
	for _, c := range members {
		detail.Count += a.counters.Get(CandidateKey(c.ID))
		ids = append(ids, c.ID)
	}
	detail.Keywords = a.counters.TopKeywords(ids, ReportLimit)
	return detail
}

// PartyTotals returns each known party's summed count in discovery order,
// including zero-vote parties.
func (a *Aggregator) PartyTotals() []PartyDetail {
	parties := a.roster().Parties()
	totals := make([]PartyDetail, 0, len(parties))
	for _, name := range parties {
		totals = append(totals, a.PartyDetail(name))
	}
	return totals
}

// SexRatio returns the two running sex aggregates with a percentage split
// rounded to two places. Both percentages are zero when no votes exist.
func (a *Aggregator) SexRatio() SexRatio {
	r := SexRatio{
		Men:   a.counters.Get(SexKey(SexMale)),
		Women: a.counters.Get(SexKey(SexFemale)),
	}
	total := r.Men + r.Women
	if total == 0 {
		return r
	}
	hundred := decimal.NewFromInt(100)
	r.MenPercent = decimal.NewFromInt(r.Men).Mul(hundred).Div(decimal.NewFromInt(total)).Round(2)
	r.WomenPercent = decimal.NewFromInt(r.Women).Mul(hundred).Div(decimal.NewFromInt(total)).Round(2)
	return r
}

// TotalVotes returns the global accepted vote volume.
func (a *Aggregator) TotalVotes() int64 {
	return a.counters.Get(TotalKey)
}
