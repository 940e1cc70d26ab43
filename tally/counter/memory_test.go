package counter

import (
	"fmt"
	"sync"
	"testing"

	"github.com/warp/vote-engine/tally"
)

func TestMemory_IncrementAndGet(t *testing.T) {
	m := NewMemory()

	if got := m.Get("absent"); got != 0 {
		t.Fatalf("absent key: got %d, want 0", got)
	}
	if got := m.Increment("k", 3); got != 3 {
		t.Fatalf("first increment: got %d, want 3", got)
	}
	if got := m.Increment("k", 2); got != 5 {
		t.Fatalf("second increment: got %d, want 5", got)
	}
	if got := m.Get("k"); got != 5 {
		t.Fatalf("get: got %d, want 5", got)
	}
}

func TestMemory_InitIfAbsent(t *testing.T) {
	m := NewMemory()

	if got := m.InitIfAbsent("budget", 10); got != 10 {
		t.Fatalf("init: got %d, want 10", got)
	}
	// A second init must not clobber the consumed value.
	m.DecrementIfAtLeast("budget", 4)
	if got := m.InitIfAbsent("budget", 10); got != 6 {
		t.Fatalf("re-init: got %d, want 6", got)
	}
}

func TestMemory_DecrementIfAtLeast(t *testing.T) {
	m := NewMemory()
	m.Increment("budget", 5)

	if !m.DecrementIfAtLeast("budget", 5) {
		t.Fatal("exact decrement should succeed")
	}
	if m.DecrementIfAtLeast("budget", 1) {
		t.Fatal("decrement below zero should fail")
	}
	if got := m.Get("budget"); got != 0 {
		t.Fatalf("budget: got %d, want 0", got)
	}
}

func TestMemory_DecrementIfAtLeast_Concurrent(t *testing.T) {
	// 100 goroutines each try to take 1 from a budget of 40. Exactly 40
	// may succeed; the counter must land on zero, never below.
	m := NewMemory()
	m.Increment("budget", 40)

	var wg sync.WaitGroup
	results := make(chan bool, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- m.DecrementIfAtLeast("budget", 1)
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for ok := range results {
		if ok {
			succeeded++
		}
	}
	if succeeded != 40 {
		t.Fatalf("successes: got %d, want 40", succeeded)
	}
	if got := m.Get("budget"); got != 0 {
		t.Fatalf("remaining budget: got %d, want 0", got)
	}
}

func TestMemory_TopKeywords_OrderAndLimit(t *testing.T) {
	m := NewMemory()
	m.AddKeyword(1, "policy", 5)
	m.AddKeyword(1, "economy", 2)
	m.AddKeyword(1, "healthcare", 5) // ties with policy; policy was seen first

	got := m.TopKeywords([]tally.CandidateID{1}, 2)
	want := []tally.KeywordCount{
		{Keyword: "policy", Count: 5},
		{Keyword: "healthcare", Count: 5},
	}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("top keywords: got %v, want %v", got, want)
	}
}

func TestMemory_TopKeywords_MergesAcrossCandidates(t *testing.T) {
	m := NewMemory()
	m.AddKeyword(1, "policy", 2)
	m.AddKeyword(2, "policy", 3)
	m.AddKeyword(2, "economy", 4)
	m.AddKeyword(3, "ignored", 100) // not in the query set

	got := m.TopKeywords([]tally.CandidateID{1, 2}, 10)
	want := []tally.KeywordCount{
		{Keyword: "policy", Count: 5},
		{Keyword: "economy", Count: 4},
	}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("merged keywords: got %v, want %v", got, want)
	}
}

func TestMemory_Reset(t *testing.T) {
	m := NewMemory()
	m.Increment("k", 7)
	m.AddKeyword(1, "policy", 3)

	m.Reset()

	if got := m.Get("k"); got != 0 {
		t.Fatalf("counter after reset: got %d, want 0", got)
	}
	if got := m.TopKeywords([]tally.CandidateID{1}, 10); len(got) != 0 {
		t.Fatalf("keywords after reset: got %v, want empty", got)
	}
}
