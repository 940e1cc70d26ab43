// Package counter provides Counters implementations.
package counter

import (
	"sort"
	"sync"

	"github.com/warp/vote-engine/tally"
)

// =============================================================================
// MEMORY COUNTERS - In-process implementation
// =============================================================================

// Memory is the single-process counter store. A single mutex guards both
// maps; every operation is a few map accesses, so contention stays short
// even under concurrent request handlers.
type Memory struct {
	mu       sync.Mutex
	counters map[string]int64
	keywords map[tally.CandidateID]map[string]*keywordEntry
	seq      int64
}

// keywordEntry tracks the cumulative tally and the first-seen order, which
// breaks ranking ties deterministically.
type keywordEntry struct {
	count int64
	seen  int64
}

func NewMemory() *Memory {
	return &Memory{
		counters: make(map[string]int64),
		keywords: make(map[tally.CandidateID]map[string]*keywordEntry),
	}
}

// Increment adds delta and returns the new value.
func (m *Memory) Increment(key string, delta int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counters[key] += delta
	return m.counters[key]
}

// DecrementIfAtLeast is the atomic compare-and-decrement used for budget
// consumption. Two concurrent callers cannot both pass the check when only
// one of them fits.
func (m *Memory) DecrementIfAtLeast(key string, delta int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.counters[key] < delta {
		return false
	}
	m.counters[key] -= delta
	return true
}

// InitIfAbsent sets key to value unless it already exists, and returns the
// stored value either way.
func (m *Memory) InitIfAbsent(key string, value int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.counters[key]; ok {
		return v
	}
	m.counters[key] = value
	return value
}

// Get returns the current value, zero for absent keys.
func (m *Memory) Get(key string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[key]
}

// AddKeyword adds delta to the (candidate, keyword) tally.
func (m *Memory) AddKeyword(id tally.CandidateID, keyword string, delta int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byKeyword := m.keywords[id]
	if byKeyword == nil {
		byKeyword = make(map[string]*keywordEntry)
		m.keywords[id] = byKeyword
	}
	e := byKeyword[keyword]
	if e == nil {
		m.seq++
		e = &keywordEntry{seen: m.seq}
		byKeyword[keyword] = e
	}
	e.count += delta
}

// TopKeywords aggregates tallies across the given candidates and returns up
// to limit keywords, descending by count, ties by first-seen order.
func (m *Memory) TopKeywords(ids []tally.CandidateID, limit int) []tally.KeywordCount {
	m.mu.Lock()
	defer m.mu.Unlock()

	type merged struct {
		count int64
		seen  int64
	}
	totals := make(map[string]*merged)
	for _, id := range ids {
		for keyword, e := range m.keywords[id] {
			t := totals[keyword]
			if t == nil {
				t = &merged{seen: e.seen}
				totals[keyword] = t
			}
			t.count += e.count
			if e.seen < t.seen {
				t.seen = e.seen
			}
		}
	}

	ranked := make([]tally.KeywordCount, 0, len(totals))
	order := make(map[string]int64, len(totals))
	for keyword, t := range totals {
		ranked = append(ranked, tally.KeywordCount{Keyword: keyword, Count: t.count})
		order[keyword] = t.seen
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return order[ranked[i].Keyword] < order[ranked[j].Keyword]
	})

	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Reset clears everything. Callers serialize this against writers; see
// Engine.Initialize.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counters = make(map[string]int64)
	m.keywords = make(map[tally.CandidateID]map[string]*keywordEntry)
	m.seq = 0
}
