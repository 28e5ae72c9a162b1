package ledger

// Severity ranks how sensitive the operation behind an entry is.
type Severity string

const (
	SevLow      Severity = "low"
	SevMedium   Severity = "medium"
	SevHigh     Severity = "high"
	SevCritical Severity = "critical"
)

// SevRank maps severity to a comparable integer.
var SevRank = map[Severity]int{
	SevLow:      0,
	SevMedium:   1,
	SevHigh:     2,
	SevCritical: 3,
}

// Entry is one immutable record in the hash-chained ledger.
// All hashed fields are canonicalized through json.Marshal (struct field
// order is fixed, map keys are sorted) so recomputation is reproducible.
type Entry struct {
	ID            string         `json:"id"`
	Timestamp     string         `json:"ts"`
	Action        string         `json:"action"`
	Actor         string         `json:"actor"`
	Severity      Severity       `json:"severity"`
	Details       map[string]any `json:"details,omitempty"`
	IntegrityHash string         `json:"integrity_hash"`
	PrevHash      string         `json:"prev_hash"`
}

// hashBody is the canonical subset of Entry covered by the integrity hash.
type hashBody struct {
	ID        string         `json:"id"`
	Timestamp string         `json:"ts"`
	Action    string         `json:"action"`
	Actor     string         `json:"actor"`
	Details   map[string]any `json:"details,omitempty"`
}
