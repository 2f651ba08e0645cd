package game

import (
	"fmt"
	"testing"
)

func cacheRound(id string) SessionRound {
	return SessionRound{
		RoundID:          id,
		Mode:             ModeSingle,
		CorrectCommentID: id + "-top",
		Options:          []Comment{{ID: id + "-top", Text: "top comment text", LikeCount: 10}},
	}
}

func TestSessionCacheEvictsOldestAtCapacity(t *testing.T) {
	cache := newSessionCache(sessionCapacity)
	for i := 0; i < sessionCapacity+1; i++ {
		cache.put(cacheRound(fmt.Sprintf("round-%d", i)))
	}

	if cache.len() != sessionCapacity {
		t.Fatalf("expected %d entries, got %d", sessionCapacity, cache.len())
	}
	if _, ok := cache.get("round-0"); ok {
		t.Fatalf("expected earliest entry to be evicted")
	}
	if _, ok := cache.get("round-1"); !ok {
		t.Fatalf("expected second entry to survive")
	}
	if _, ok := cache.get(fmt.Sprintf("round-%d", sessionCapacity)); !ok {
		t.Fatalf("expected newest entry to be present")
	}
}

func TestSessionCacheGetIsNonDestructive(t *testing.T) {
	cache := newSessionCache(sessionCapacity)
	cache.put(cacheRound("round-1"))

	if _, ok := cache.get("round-1"); !ok {
		t.Fatalf("expected entry to be present")
	}
	if _, ok := cache.get("round-1"); !ok {
		t.Fatalf("peek must not remove the entry")
	}
}

func TestSessionCacheTakeAndInvalidateIsSingleUse(t *testing.T) {
	cache := newSessionCache(sessionCapacity)
	cache.put(cacheRound("round-1"))

	round, ok := cache.takeAndInvalidate("round-1")
	if !ok {
		t.Fatalf("expected entry to be taken")
	}
	if round.RoundID != "round-1" {
		t.Fatalf("unexpected round: %q", round.RoundID)
	}
	if _, ok := cache.takeAndInvalidate("round-1"); ok {
		t.Fatalf("second take must fail")
	}
}

func TestSessionCacheReinsertDoesNotDuplicateOrder(t *testing.T) {
	cache := newSessionCache(2)
	cache.put(cacheRound("round-1"))
	cache.put(cacheRound("round-1"))
	cache.put(cacheRound("round-2"))
	cache.put(cacheRound("round-3"))

	if cache.len() != 2 {
		t.Fatalf("expected 2 entries, got %d", cache.len())
	}
	if _, ok := cache.get("round-1"); ok {
		t.Fatalf("expected round-1 to be evicted exactly once")
	}
	if _, ok := cache.get("round-2"); !ok {
		t.Fatalf("expected round-2 to survive")
	}
	if _, ok := cache.get("round-3"); !ok {
		t.Fatalf("expected round-3 to survive")
	}
}

func TestSessionCacheTakeKeepsEvictionOrderConsistent(t *testing.T) {
	cache := newSessionCache(2)
	cache.put(cacheRound("round-1"))
	cache.put(cacheRound("round-2"))

	if _, ok := cache.takeAndInvalidate("round-1"); !ok {
		t.Fatalf("expected take to succeed")
	}

	cache.put(cacheRound("round-3"))
	cache.put(cacheRound("round-4"))

	if _, ok := cache.get("round-2"); ok {
		t.Fatalf("expected round-2 to be the eviction victim")
	}
	if _, ok := cache.get("round-3"); !ok {
		t.Fatalf("expected round-3 to survive")
	}
}
