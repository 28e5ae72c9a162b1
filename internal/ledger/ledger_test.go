package ledger

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func fixedClock() Clock {
	t := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func TestAppendBuildsValidChain(t *testing.T) {
	l := New(10, WithClock(fixedClock()))

	for i := 0; i < 5; i++ {
		l.Append("ACTION_DISPATCHED", "copilot", SevLow, map[string]any{"i": i})
	}

	res := l.Verify()
	if !res.Valid {
		t.Fatalf("expected valid chain, got error at index %d: %s", res.ErrorIndex, res.Error)
	}
	if res.Entries != 5 {
		t.Fatalf("expected 5 entries, got %d", res.Entries)
	}
}

func TestFirstEntryAnchorsAtGenesis(t *testing.T) {
	l := New(10)
	e := l.Append("PROMPT_ASSEMBLED", "copilot", SevLow, nil)
	if e.PrevHash != Genesis {
		t.Fatalf("first entry prev_hash is %q, expected genesis", e.PrevHash)
	}
	if e.IntegrityHash == "" || e.IntegrityHash == Genesis {
		t.Fatalf("integrity hash not computed: %q", e.IntegrityHash)
	}
}

func TestCapacityEvictionKeepsChainVerifiable(t *testing.T) {
	l := New(100, WithClock(fixedClock()))

	var first Entry
	for i := 0; i < 101; i++ {
		e := l.Append("ACTION_DISPATCHED", "copilot", SevLow, map[string]any{"seq": i})
		if i == 0 {
			first = e
		}
	}

	if l.Len() != 100 {
		t.Fatalf("expected exactly 100 retained entries, got %d", l.Len())
	}

	oldest := l.Tail(100)[99]
	if oldest.ID == first.ID {
		t.Fatal("oldest original entry should have been evicted")
	}
	if oldest.Details["seq"] != 1 {
		t.Fatalf("expected retained head to be entry 1, got seq=%v", oldest.Details["seq"])
	}
	// Re-anchored genesis: the new head references the evicted entry's hash.
	if oldest.PrevHash != first.IntegrityHash {
		t.Fatalf("retained head prev_hash %q does not anchor to evicted hash %q", oldest.PrevHash, first.IntegrityHash)
	}

	res := l.Verify()
	if !res.Valid {
		t.Fatalf("chain must verify over the retained window, got error at index %d: %s", res.ErrorIndex, res.Error)
	}
}

func TestVerifyDetectsTamperedEntry(t *testing.T) {
	l := New(10, WithClock(fixedClock()))
	for i := 0; i < 4; i++ {
		l.Append("ACTION_DISPATCHED", "copilot", SevLow, map[string]any{"i": i})
	}

	// Reach into the ring and flip a hashed field.
	l.entries[2].Action = "ACTION_FAILED"

	res := l.Verify()
	if res.Valid {
		t.Fatal("expected tampered chain to be invalid")
	}
	if res.ErrorIndex != 2 {
		t.Fatalf("expected first mismatch at index 2, got %d", res.ErrorIndex)
	}
}

func TestVerifyDetectsRelinkedTail(t *testing.T) {
	l := New(10, WithClock(fixedClock()))
	for i := 0; i < 3; i++ {
		l.Append("ACTION_DISPATCHED", "copilot", SevLow, nil)
	}

	l.entries[2].PrevHash = l.entries[0].IntegrityHash

	res := l.Verify()
	if res.Valid {
		t.Fatal("expected relinked chain to be invalid")
	}
	if res.ErrorIndex != 2 {
		t.Fatalf("expected mismatch at index 2, got %d", res.ErrorIndex)
	}
}

func TestTailMostRecentFirst(t *testing.T) {
	l := New(10)
	for i := 0; i < 5; i++ {
		l.Append("A", "copilot", SevLow, map[string]any{"i": i})
	}

	tail := l.Tail(3)
	if len(tail) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(tail))
	}
	if tail[0].Details["i"] != 4 || tail[2].Details["i"] != 2 {
		t.Fatalf("tail not most-recent-first: %v, %v", tail[0].Details, tail[2].Details)
	}

	if got := l.Tail(50); len(got) != 5 {
		t.Fatalf("tail larger than ledger returns all entries, got %d", len(got))
	}
	tail = l.Tail(0)
	if len(tail) != 5 {
		t.Fatalf("tail(0) returns all retained entries, got %d", len(tail))
	}
	if tail[0].Details["i"] != 4 || tail[4].Details["i"] != 0 {
		t.Fatalf("tail(0) not most-recent-first: %v, %v", tail[0].Details, tail[4].Details)
	}
}

func TestResetRestoresGenesis(t *testing.T) {
	l := New(10)
	l.Append("A", "copilot", SevLow, nil)
	l.Reset()

	if l.Len() != 0 {
		t.Fatalf("expected empty ledger after reset, got %d", l.Len())
	}
	e := l.Append("B", "copilot", SevLow, nil)
	if e.PrevHash != Genesis {
		t.Fatalf("post-reset chain must restart at genesis, got %q", e.PrevHash)
	}
}

func TestAppendCopiesDetails(t *testing.T) {
	l := New(10)
	details := map[string]any{"view": "Dashboard"}
	e := l.Append("A", "copilot", SevLow, details)

	details["view"] = "mutated"
	if e.Details["view"] != "Dashboard" {
		t.Fatal("appended entry must not alias the caller's details map")
	}
	if res := l.Verify(); !res.Valid {
		t.Fatalf("caller mutation must not break the chain: %s", res.Error)
	}
}

func TestConcurrentAppendsKeepChainIntact(t *testing.T) {
	l := New(200)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				l.Append("A", fmt.Sprintf("worker-%d", g), SevLow, nil)
			}
		}(g)
	}
	wg.Wait()

	if l.Len() != 160 {
		t.Fatalf("expected 160 entries, got %d", l.Len())
	}
	if res := l.Verify(); !res.Valid {
		t.Fatalf("concurrent appends broke the chain at %d: %s", res.ErrorIndex, res.Error)
	}
}

func TestVerifyEmptyLedger(t *testing.T) {
	l := New(10)
	if res := l.Verify(); !res.Valid || res.Entries != 0 {
		t.Fatalf("empty ledger verifies trivially, got %+v", res)
	}
}
