package intent

import "time"

// ActionType is the closed set of commands the extractor can promote.
type ActionType string

const (
	ActionNavigate        ActionType = "NAVIGATE"
	ActionOpenModal       ActionType = "OPEN_MODAL"
	ActionInitiatePayment ActionType = "INITIATE_PAYMENT"
	ActionCreateRecord    ActionType = "CREATE_RECORD"
	ActionLogEvent        ActionType = "LOG_EVENT"
	ActionUnknown         ActionType = "UNKNOWN"
)

// knownTypes excludes ActionUnknown: UNKNOWN is a routing outcome,
// never a type the extractor promotes.
var knownTypes = map[ActionType]bool{
	ActionNavigate:        true,
	ActionOpenModal:       true,
	ActionInitiatePayment: true,
	ActionCreateRecord:    true,
	ActionLogEvent:        true,
}

// ParseActionType maps a raw string to an ActionType.
// Returns false for anything outside the closed set.
func ParseActionType(s string) (ActionType, bool) {
	t := ActionType(s)
	if knownTypes[t] {
		return t, true
	}
	return ActionUnknown, false
}

// Action is a validated, typed command extracted from generation output.
// An Action is only constructed after its payload passed the per-type
// structural schema; unvalidated candidates stay RejectedCandidate.
type Action struct {
	Type        ActionType     `json:"type"`
	Payload     map[string]any `json:"payload"`
	SourceSpan  string         `json:"source_span"`
	ExtractedAt time.Time      `json:"extracted_at"`
}

// RejectReason classifies why a candidate marker was not executed.
type RejectReason string

const (
	RejectParseFailed      RejectReason = "ACTION_PARSE_FAILED"
	RejectDuplicateIgnored RejectReason = "DUPLICATE_ACTION_IGNORED"
)

// RejectedCandidate records a marker that matched a syntax but was not
// promoted to an Action.
type RejectedCandidate struct {
	Span   string       `json:"span"`
	Reason RejectReason `json:"reason"`
	Detail string       `json:"detail,omitempty"`
}

// Result is the full outcome of one extraction pass.
// Prose is never empty when the input was non-empty: when no action is
// found (or the only candidates fail validation) Prose is the entire
// original text.
type Result struct {
	Prose    string              `json:"prose"`
	Action   *Action             `json:"action,omitempty"`
	Rejected []RejectedCandidate `json:"rejected,omitempty"`
}
