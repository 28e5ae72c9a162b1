// Package ledger is an append-only, hash-chained audit log held in a
// bounded ring. Each entry's integrity hash covers the previous entry's
// hash, so tampering with any retained entry is detectable. Evicting the
// oldest entry re-anchors the chain: verification starts from the oldest
// retained entry, not from genesis.
package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Genesis is the prev_hash of the first entry in a fresh ledger.
const Genesis = "sha256:0000000000000000000000000000000000000000000000000000000000000000"

// DefaultCapacity bounds the ring when the caller passes capacity <= 0.
const DefaultCapacity = 100

// Clock supplies timestamps; injectable for deterministic tests.
type Clock func() time.Time

// Ledger holds the retained chain. Append is the only mutator and is
// guarded by one mutex so concurrent appends never interleave a hash
// computation.
type Ledger struct {
	mu       sync.Mutex
	capacity int
	entries  []Entry
	prevHash string
	now      Clock
}

// Option configures a Ledger at construction.
type Option func(*Ledger)

// WithClock replaces the timestamp source.
func WithClock(now Clock) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// New creates a ledger with the given ring capacity.
func New(capacity int, opts ...Option) *Ledger {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	l := &Ledger{
		capacity: capacity,
		entries:  make([]Entry, 0, capacity),
		prevHash: Genesis,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Append computes the hash chain, inserts at the tail, and evicts the
// head when over capacity. It returns the completed entry.
func (l *Ledger) Append(action, actor string, sev Severity, details map[string]any) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := Entry{
		ID:        uuid.NewString(),
		Timestamp: l.now().UTC().Format("2006-01-02T15:04:05.000Z"),
		Action:    action,
		Actor:     actor,
		Severity:  sev,
		Details:   copyDetails(details),
		PrevHash:  l.prevHash,
	}
	e.IntegrityHash = chainHash(e.PrevHash, e)

	l.entries = append(l.entries, e)
	if len(l.entries) > l.capacity {
		// Eviction re-anchors the logical genesis at the new head:
		// its prev_hash already holds the evicted entry's hash.
		l.entries = l.entries[1:]
	}
	l.prevHash = e.IntegrityHash

	return e
}

// VerifyResult reports the outcome of a chain verification.
type VerifyResult struct {
	Valid      bool   `json:"valid"`
	Entries    int    `json:"entries"`
	Error      string `json:"error,omitempty"`
	ErrorIndex int    `json:"error_index,omitempty"`
}

// Verify recomputes the chain over the retained entries and compares it
// to the stored hashes. It never panics; any mismatch yields Valid=false
// with the index of the first broken entry.
func (l *Ledger) Verify() VerifyResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	return verifyChain(l.entries)
}

func verifyChain(entries []Entry) VerifyResult {
	prev := ""
	for i, e := range entries {
		if i == 0 {
			// The oldest retained entry anchors the chain.
			prev = e.PrevHash
		} else if e.PrevHash != prev {
			return VerifyResult{
				Entries:    len(entries),
				Error:      fmt.Sprintf("prev_hash mismatch: expected %s, got %s", prev, e.PrevHash),
				ErrorIndex: i,
			}
		}
		if want := chainHash(prev, e); e.IntegrityHash != want {
			return VerifyResult{
				Entries:    len(entries),
				Error:      fmt.Sprintf("integrity hash mismatch: expected %s, got %s", want, e.IntegrityHash),
				ErrorIndex: i,
			}
		}
		prev = e.IntegrityHash
	}
	return VerifyResult{Valid: true, Entries: len(entries)}
}

// Tail returns up to n entries, most recent first. n <= 0 returns all
// retained entries.
func (l *Ledger) Tail(n int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) == 0 {
		return nil
	}
	if n <= 0 || n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]Entry, n)
	for i := 0; i < n; i++ {
		out[i] = l.entries[len(l.entries)-1-i]
	}
	return out
}

// Len returns the number of retained entries.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Reset drops all entries and restores the genesis anchor.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = l.entries[:0]
	l.prevHash = Genesis
}

// chainHash returns "sha256:<hex>" over prevHash ++ canonical(entry body).
func chainHash(prevHash string, e Entry) string {
	body, err := json.Marshal(hashBody{
		ID:        e.ID,
		Timestamp: e.Timestamp,
		Action:    e.Action,
		Actor:     e.Actor,
		Details:   e.Details,
	})
	if err != nil {
		// Details came from json.Unmarshal or plain literals; a marshal
		// failure means an unserializable value slipped in. Hash the
		// error text so verification still fails loudly, not silently.
		body = []byte("marshal-error:" + err.Error())
	}
	h := sha256.New()
	h.Write([]byte(prevHash))
	h.Write(body)
	return "sha256:" + hex.EncodeToString(h.Sum(nil))
}

func copyDetails(details map[string]any) map[string]any {
	if details == nil {
		return nil
	}
	out := make(map[string]any, len(details))
	for k, v := range details {
		out[k] = v
	}
	return out
}
