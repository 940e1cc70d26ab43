package tally_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/vote-engine/tally"
	"github.com/warp/vote-engine/tally/counter"
)

// newTestAggregator builds an aggregator over a fixed roster and a fresh
// counter store, bypassing the ledger entirely.
func newTestAggregator(candidates []tally.Candidate) (*tally.Aggregator, *counter.Memory) {
	counters := counter.NewMemory()
	roster := tally.NewRoster(candidates)
	return tally.NewAggregator(counters, func() *tally.Roster { return roster }), counters
}

func threeCandidates() []tally.Candidate {
	return []tally.Candidate{
		{ID: 1, Name: "Bob Hale", Party: "National Progress Party", Sex: tally.SexMale},
		{ID: 2, Name: "Alice Stone", Party: "National Progress Party", Sex: tally.SexFemale},
		{ID: 3, Name: "Carol Reyes", Party: "Citizens Alliance", Sex: tally.SexFemale},
	}
}

func TestOverallRanking_DescendingWithStableTies(t *testing.T) {
	agg, counters := newTestAggregator(threeCandidates())

	counters.Increment(tally.CandidateKey(1), 2)
	counters.Increment(tally.CandidateKey(2), 5)
	// Candidate 3 stays at zero, tying nobody.

	ranking := agg.OverallRanking()
	require.Len(t, ranking, 3)
	assert.Equal(t, tally.CandidateID(2), ranking[0].Candidate.ID)
	assert.Equal(t, int64(5), ranking[0].Count)
	assert.Equal(t, tally.CandidateID(1), ranking[1].Candidate.ID)
	assert.Equal(t, tally.CandidateID(3), ranking[2].Candidate.ID)
}

func TestOverallRanking_TiesKeepDiscoveryOrder(t *testing.T) {
	agg, counters := newTestAggregator(threeCandidates())

	counters.Increment(tally.CandidateKey(1), 4)
	counters.Increment(tally.CandidateKey(2), 4)
	counters.Increment(tally.CandidateKey(3), 4)

	ranking := agg.OverallRanking()
	require.Len(t, ranking, 3)
	assert.Equal(t, tally.CandidateID(1), ranking[0].Candidate.ID)
	assert.Equal(t, tally.CandidateID(2), ranking[1].Candidate.ID)
	assert.Equal(t, tally.CandidateID(3), ranking[2].Candidate.ID)
}

func TestTopRanking_ExcerptIsTopTenPlusLast(t *testing.T) {
	// Thirty candidates, counts equal to their id, so id 30 ranks first
	// and id 1 ranks last.
	var candidates []tally.Candidate
	for i := 1; i <= 30; i++ {
		candidates = append(candidates, tally.Candidate{
			ID: tally.CandidateID(i), Name: fmt.Sprintf("Candidate %d", i),
			Party: "National Progress Party", Sex: tally.SexMale,
		})
	}
	agg, counters := newTestAggregator(candidates)
	for i := 1; i <= 30; i++ {
		counters.Increment(tally.CandidateKey(tally.CandidateID(i)), int64(i))
	}

	excerpt := agg.TopRanking()
	require.Len(t, excerpt, 11)
	assert.Equal(t, tally.CandidateID(30), excerpt[0].Candidate.ID)
	assert.Equal(t, tally.CandidateID(21), excerpt[9].Candidate.ID)
	assert.Equal(t, tally.CandidateID(1), excerpt[10].Candidate.ID, "last place rides along")
}

func TestTopRanking_SmallRosterReturnsEveryone(t *testing.T) {
	agg, _ := newTestAggregator(threeCandidates())
	assert.Len(t, agg.TopRanking(), 3)
}

func TestCandidateDetail(t *testing.T) {
	agg, counters := newTestAggregator(threeCandidates())

	counters.Increment(tally.CandidateKey(1), 7)
	counters.AddKeyword(1, "policy", 5)
	counters.AddKeyword(1, "economy", 2)

	detail, ok := agg.CandidateDetail(1)
	require.True(t, ok)
	assert.Equal(t, "Bob Hale", detail.Candidate.Name)
	assert.Equal(t, int64(7), detail.Count)
	require.Len(t, detail.Keywords, 2)
	assert.Equal(t, "policy", detail.Keywords[0].Keyword)

	_, ok = agg.CandidateDetail(99)
	assert.False(t, ok)
}

func TestPartyDetail_SumsMembersAndMergesKeywords(t *testing.T) {
	agg, counters := newTestAggregator(threeCandidates())

	counters.Increment(tally.CandidateKey(1), 3)
	counters.Increment(tally.CandidateKey(2), 4)
	counters.AddKeyword(1, "policy", 3)
	counters.AddKeyword(2, "policy", 1)
	counters.AddKeyword(2, "healthcare", 4)

	detail := agg.PartyDetail("National Progress Party")
	assert.Equal(t, int64(7), detail.Count)
	require.Len(t, detail.Candidates, 2)
	require.Len(t, detail.Keywords, 2)
	// "policy" totals 4 across both members; ties with "healthcare" break
	// by first-seen order, so "policy" leads.
	assert.Equal(t, tally.KeywordCount{Keyword: "policy", Count: 4}, detail.Keywords[0])
}

func TestPartyDetail_UnknownPartyIsZeroSafe(t *testing.T) {
	agg, _ := newTestAggregator(threeCandidates())

	detail := agg.PartyDetail("No Such Party")
	assert.Equal(t, int64(0), detail.Count)
	assert.Empty(t, detail.Candidates)
	assert.Empty(t, detail.Keywords)
}

func TestPartyTotals_IncludesZeroVoteParties(t *testing.T) {
	agg, counters := newTestAggregator(threeCandidates())
	counters.Increment(tally.CandidateKey(1), 2)

	totals := agg.PartyTotals()
	require.Len(t, totals, 2)
	assert.Equal(t, "National Progress Party", totals[0].Party)
	assert.Equal(t, int64(2), totals[0].Count)
	assert.Equal(t, "Citizens Alliance", totals[1].Party)
	assert.Equal(t, int64(0), totals[1].Count)
}

func TestSexRatio(t *testing.T) {
	agg, counters := newTestAggregator(threeCandidates())

	t.Run("empty store yields zeros", func(t *testing.T) {
		r := agg.SexRatio()
		assert.Equal(t, int64(0), r.Men)
		assert.Equal(t, int64(0), r.Women)
		assert.True(t, r.MenPercent.IsZero())
		assert.True(t, r.WomenPercent.IsZero())
	})

	t.Run("split rounds to two places", func(t *testing.T) {
		counters.Increment(tally.SexKey(tally.SexMale), 1)
		counters.Increment(tally.SexKey(tally.SexFemale), 2)

		r := agg.SexRatio()
		assert.Equal(t, "33.33", r.MenPercent.StringFixed(2))
		assert.Equal(t, "66.67", r.WomenPercent.StringFixed(2))
	})
}

func TestTotalVotes(t *testing.T) {
	agg, counters := newTestAggregator(threeCandidates())
	assert.Equal(t, int64(0), agg.TotalVotes())

	counters.Increment(tally.TotalKey, 9)
	assert.Equal(t, int64(9), agg.TotalVotes())
}
