// Package convo ties the copilot pipeline together per user turn:
// assemble context, call the generation client, extract intent, route
// the action, append audit entries, and return prose to the host.
//
// The generation call is the only suspending step. Submissions are
// sequence-numbered: when a newer submission is issued while an older
// one is still awaiting generation, the older response is discarded on
// arrival so a slow early call can never clobber a newer answer.
package convo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ppiankov/intentwatch/internal/genclient"
	"github.com/ppiankov/intentwatch/internal/intent"
	"github.com/ppiankov/intentwatch/internal/ledger"
	"github.com/ppiankov/intentwatch/internal/prompt"
	"github.com/ppiankov/intentwatch/internal/route"
)

// Audit entry categories written by the orchestrator.
const (
	AuditPromptAssembled    = "PROMPT_ASSEMBLED"
	AuditTransportFailed    = "TRANSPORT_FAILED"
	AuditResponseSuperseded = "RESPONSE_SUPERSEDED"
)

// recentTurnWindow bounds how much conversation history rides along in
// the prompt snapshot.
const recentTurnWindow = 10

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("convo: session closed")

// SnapshotFn supplies the current view id and the whitelisted host
// state fields for prompt assembly.
type SnapshotFn func() (view string, snap prompt.Snapshot)

// TurnResult is what Submit resolves with. Exactly one of the flags is
// meaningful: Superseded when a newer submission overtook this one,
// TransportFailed when the generation client failed and Prose carries
// the degraded message.
type TurnResult struct {
	Prose           string
	Dispatched      *intent.ActionType
	Superseded      bool
	TransportFailed bool
}

// Config wires an Orchestrator.
type Config struct {
	Client       genclient.Client
	Router       *route.Router
	Ledger       *ledger.Ledger
	PromptConfig *prompt.Config
	ConfigHash   string
	PersonaID    string
	Snapshot     SnapshotFn
	Clock        ledger.Clock
	Actor        string
}

// Orchestrator owns one conversation session.
type Orchestrator struct {
	mu        sync.Mutex
	seq       uint64
	turns     []Turn
	state     State
	closed    bool
	assembler *prompt.Assembler
	degraded  string
	cfgHash   string
	client    genclient.Client
	router    *route.Router
	ledger    *ledger.Ledger
	snapshot  SnapshotFn
	now       ledger.Clock
	actor     string
}

// New validates the wiring and creates an idle session.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("convo: generation client is required")
	}
	if cfg.Router == nil {
		return nil, fmt.Errorf("convo: router is required")
	}
	if cfg.Ledger == nil {
		return nil, fmt.Errorf("convo: ledger is required")
	}
	pc := cfg.PromptConfig
	if pc == nil {
		pc = prompt.DefaultConfig()
	}
	snapshot := cfg.Snapshot
	if snapshot == nil {
		snapshot = func() (string, prompt.Snapshot) { return "", nil }
	}
	now := cfg.Clock
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	actor := cfg.Actor
	if actor == "" {
		actor = "copilot"
	}
	return &Orchestrator{
		state:     StateIdle,
		assembler: prompt.NewAssembler(pc, cfg.PersonaID),
		degraded:  pc.DegradedMessage,
		cfgHash:   cfg.ConfigHash,
		client:    cfg.Client,
		router:    cfg.Router,
		ledger:    cfg.Ledger,
		snapshot:  snapshot,
		now:       now,
		actor:     actor,
	}, nil
}

// Submit runs one user turn through the pipeline. It never panics and
// never surfaces extraction or routing failures as errors: the only
// error conditions are a closed session or a cancelled context on a
// turn that was already superseded anyway.
func (o *Orchestrator) Submit(ctx context.Context, userText string) (TurnResult, error) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return TurnResult{}, ErrClosed
	}

	o.turns = append(o.turns, Turn{Role: RoleUser, Content: userText, Timestamp: o.now()})

	view, snap := o.snapshot()
	snap = o.withRecentTurns(snap)
	outbound := o.assembler.Build(view, snap)

	o.seq++
	seq := o.seq
	o.state = StateAwaitingGeneration
	o.ledger.Append(AuditPromptAssembled, o.actor, ledger.SevLow, map[string]any{
		"seq":          seq,
		"persona":      o.assembler.PersonaID(),
		"config_hash":  o.cfgHash,
		"prompt_chars": len(outbound),
	})
	o.mu.Unlock()

	// The only suspending step. No lock held: a newer Submit may
	// overtake this one here.
	raw, sendErr := o.client.Send(ctx, outbound)

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return TurnResult{}, ErrClosed
	}
	if seq != o.seq {
		// A newer submission owns the session now; this response is
		// stale and must not be applied.
		o.ledger.Append(AuditResponseSuperseded, o.actor, ledger.SevLow, map[string]any{
			"seq":        seq,
			"latest_seq": o.seq,
		})
		return TurnResult{Superseded: true}, nil
	}

	if sendErr != nil {
		o.state = StateTransportFailed
		o.ledger.Append(AuditTransportFailed, o.actor, ledger.SevHigh, map[string]any{
			"seq":  seq,
			"kind": string(genclient.KindOf(sendErr)),
		})
		o.turns = append(o.turns, Turn{Role: RoleAssistant, Content: o.degraded, Timestamp: o.now()})
		o.state = StateIdle
		return TurnResult{Prose: o.degraded, TransportFailed: true}, nil
	}

	o.state = StateExtracting
	res := intent.Extract(raw, o.now())
	for _, rej := range res.Rejected {
		sev := ledger.SevLow
		if rej.Reason == intent.RejectParseFailed {
			sev = ledger.SevMedium
		}
		o.ledger.Append(string(rej.Reason), o.actor, sev, map[string]any{
			"seq":    seq,
			"span":   rej.Span,
			"detail": rej.Detail,
		})
	}

	o.state = StateDispatching
	var dispatched *intent.ActionType
	out := o.router.Dispatch(ctx, res.Action)
	if out.Status == route.StatusDispatched {
		t := out.Type
		dispatched = &t
	}

	o.turns = append(o.turns, Turn{Role: RoleAssistant, Content: res.Prose, Timestamp: o.now()})
	o.state = StateIdle

	return TurnResult{Prose: res.Prose, Dispatched: dispatched}, nil
}

// withRecentTurns adds a bounded slice of conversation history to the
// snapshot so the assembler's sequence truncation applies to it too.
func (o *Orchestrator) withRecentTurns(snap prompt.Snapshot) prompt.Snapshot {
	merged := prompt.Snapshot{}
	for k, v := range snap {
		merged[k] = v
	}
	start := len(o.turns) - recentTurnWindow
	if start < 0 {
		start = 0
	}
	recent := make([]any, 0, len(o.turns)-start)
	for _, t := range o.turns[start:] {
		recent = append(recent, string(t.Role)+": "+t.Content)
	}
	merged["recent_turns"] = recent
	return merged
}

// State reports the pipeline position, for diagnostics.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Turns returns a copy of the session's conversation log.
func (o *Orchestrator) Turns() []Turn {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Turn, len(o.turns))
	copy(out, o.turns)
	return out
}

// SwapPromptConfig applies a hot-reloaded config to subsequent turns.
func (o *Orchestrator) SwapPromptConfig(cfg *prompt.Config, hash string) {
	if cfg == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.assembler = prompt.NewAssembler(cfg, o.assembler.PersonaID())
	o.degraded = cfg.DegradedMessage
	o.cfgHash = hash
}

// Close discards the conversation log and refuses further submissions.
// In-flight generation responses are dropped on arrival.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	o.turns = nil
	o.state = StateIdle
}
