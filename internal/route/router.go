// Package route dispatches validated actions to host-registered
// handlers. The router never mutates host state itself: side effects
// live in the single handler it invokes, and every invocation — success,
// handler failure, or unknown type — appends exactly one ledger entry.
package route

import (
	"context"
	"fmt"

	"github.com/ppiankov/intentwatch/internal/intent"
	"github.com/ppiankov/intentwatch/internal/ledger"
	"github.com/ppiankov/intentwatch/internal/vault"
)

// Handler executes one action type on behalf of the host. It may have
// side effects on host state; the router only guarantees it is called
// with a validated payload, exactly once per dispatched action.
type Handler func(ctx context.Context, payload map[string]any) (any, error)

// Table maps action types to handlers. Supplied by the host at
// construction; the host owns what each handler does.
type Table map[intent.ActionType]Handler

// Status classifies a dispatch outcome.
type Status string

const (
	StatusNoop        Status = "noop"
	StatusDispatched  Status = "dispatched"
	StatusFailed      Status = "failed"
	StatusUnknownType Status = "unknown_type"
)

// Audit entry categories written by the router.
const (
	AuditDispatched    = "ACTION_DISPATCHED"
	AuditFailed        = "ACTION_FAILED"
	AuditUnknownAction = "UNKNOWN_ACTION"
)

// Outcome is the settled result of one dispatch.
type Outcome struct {
	Status Status
	Type   intent.ActionType
	Value  any
	Err    error
}

// SeverityFn maps an action type to the audit severity of touching it.
type SeverityFn func(intent.ActionType) ledger.Severity

// Router wires the handler table to the ledger and vault.
type Router struct {
	table    Table
	ledger   *ledger.Ledger
	vault    *vault.Vault
	severity SeverityFn
	actor    string
}

// New creates a Router. table may be nil (every action is then unknown);
// severity may be nil (everything ranks Medium).
func New(table Table, led *ledger.Ledger, vlt *vault.Vault, severity SeverityFn, actor string) *Router {
	if severity == nil {
		severity = func(intent.ActionType) ledger.Severity { return ledger.SevMedium }
	}
	if actor == "" {
		actor = "copilot"
	}
	return &Router{
		table:    table,
		ledger:   led,
		vault:    vlt,
		severity: severity,
		actor:    actor,
	}
}

// Dispatch invokes the registered handler for action, synchronously. A
// nil action is a no-op and leaves no trace. An unregistered type never
// invokes anything and is only logged.
func (r *Router) Dispatch(ctx context.Context, action *intent.Action) Outcome {
	if action == nil {
		return Outcome{Status: StatusNoop}
	}

	handler, ok := r.table[action.Type]
	if !ok || handler == nil {
		r.ledger.Append(AuditUnknownAction, r.actor, r.severity(intent.ActionUnknown), map[string]any{
			"type":        string(action.Type),
			"source_span": action.SourceSpan,
		})
		r.breadcrumb(action.Type, StatusUnknownType)
		return Outcome{Status: StatusUnknownType, Type: action.Type}
	}

	value, err := r.invoke(ctx, handler, action.Payload)
	if err != nil {
		r.ledger.Append(AuditFailed, r.actor, r.severity(action.Type), map[string]any{
			"type":  string(action.Type),
			"error": err.Error(),
		})
		r.breadcrumb(action.Type, StatusFailed)
		return Outcome{Status: StatusFailed, Type: action.Type, Err: err}
	}

	r.ledger.Append(AuditDispatched, r.actor, r.severity(action.Type), map[string]any{
		"type":    string(action.Type),
		"payload": action.Payload,
	})
	r.breadcrumb(action.Type, StatusDispatched)
	return Outcome{Status: StatusDispatched, Type: action.Type, Value: value}
}

// invoke shields the pipeline from handler panics; a panic settles as a
// handler failure instead of unwinding across the orchestrator boundary.
func (r *Router) invoke(ctx context.Context, h Handler, payload map[string]any) (value any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			value = nil
			err = fmt.Errorf("handler panic: %v", rec)
		}
	}()
	return h(ctx, payload)
}

// breadcrumb records the latest outcome per action type in the vault so
// UI screens can show "last payment attempt" style hints.
func (r *Router) breadcrumb(t intent.ActionType, status Status) {
	if r.vault == nil {
		return
	}
	_ = r.vault.Store("last_dispatch:"+string(t), map[string]any{
		"status": string(status),
	})
}
