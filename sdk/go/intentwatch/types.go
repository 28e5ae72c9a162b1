package intentwatch

import (
	"context"

	"github.com/ppiankov/intentwatch/internal/convo"
	"github.com/ppiankov/intentwatch/internal/intent"
	"github.com/ppiankov/intentwatch/internal/ledger"
	"github.com/ppiankov/intentwatch/internal/prompt"
)

// ActionType is the closed set of commands the pipeline can dispatch.
type ActionType string

const (
	Navigate        ActionType = ActionType(intent.ActionNavigate)
	OpenModal       ActionType = ActionType(intent.ActionOpenModal)
	InitiatePayment ActionType = ActionType(intent.ActionInitiatePayment)
	CreateRecord    ActionType = ActionType(intent.ActionCreateRecord)
	LogEvent        ActionType = ActionType(intent.ActionLogEvent)
)

// Handler executes one dispatched action on the host side.
type Handler func(ctx context.Context, payload map[string]any) (any, error)

// SnapshotFunc supplies the current view id and whitelisted host state.
type SnapshotFunc func() (view string, state map[string]any)

// TurnResult is the outcome of one Submit call.
type TurnResult struct {
	Prose           string
	Dispatched      *ActionType
	Superseded      bool
	TransportFailed bool
}

// Extraction is the outcome of a standalone Extract call.
type Extraction struct {
	Prose    string
	Action   *Action
	Rejected []RejectedCandidate
}

// Action is a validated command extracted from generation output.
type Action struct {
	Type    ActionType
	Payload map[string]any
}

// RejectedCandidate records a marker that matched an action syntax but
// was not executed.
type RejectedCandidate struct {
	Span   string
	Reason string
	Detail string
}

// AuditEntry is one hash-chained ledger record.
type AuditEntry struct {
	ID            string
	Timestamp     string
	Action        string
	Actor         string
	Severity      string
	Details       map[string]any
	IntegrityHash string
	PrevHash      string
}

// VerifyResult reports an audit chain verification pass.
type VerifyResult struct {
	Valid      bool
	Entries    int
	Error      string
	ErrorIndex int
}

func toTurnResult(r convo.TurnResult) TurnResult {
	out := TurnResult{
		Prose:           r.Prose,
		Superseded:      r.Superseded,
		TransportFailed: r.TransportFailed,
	}
	if r.Dispatched != nil {
		t := ActionType(*r.Dispatched)
		out.Dispatched = &t
	}
	return out
}

func toExtraction(r intent.Result) Extraction {
	out := Extraction{Prose: r.Prose}
	if r.Action != nil {
		out.Action = &Action{
			Type:    ActionType(r.Action.Type),
			Payload: r.Action.Payload,
		}
	}
	for _, rej := range r.Rejected {
		out.Rejected = append(out.Rejected, RejectedCandidate{
			Span:   rej.Span,
			Reason: string(rej.Reason),
			Detail: rej.Detail,
		})
	}
	return out
}

func toAuditEntry(e ledger.Entry) AuditEntry {
	return AuditEntry{
		ID:            e.ID,
		Timestamp:     e.Timestamp,
		Action:        e.Action,
		Actor:         e.Actor,
		Severity:      string(e.Severity),
		Details:       e.Details,
		IntegrityHash: e.IntegrityHash,
		PrevHash:      e.PrevHash,
	}
}

func toVerifyResult(vr ledger.VerifyResult) VerifyResult {
	return VerifyResult{
		Valid:      vr.Valid,
		Entries:    vr.Entries,
		Error:      vr.Error,
		ErrorIndex: vr.ErrorIndex,
	}
}

// severityFn adapts config severities to the router.
func severityFn(cfg *prompt.Config) func(intent.ActionType) ledger.Severity {
	return func(t intent.ActionType) ledger.Severity { return cfg.SeverityFor(t) }
}
