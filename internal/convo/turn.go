package convo

import "time"

// Role identifies who produced a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Turn is one entry in the ordered, append-only conversation log. The
// orchestrator owns the sequence for the lifetime of one session; it is
// discarded on Close, never persisted.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// State names the orchestrator's position in the turn pipeline.
type State string

const (
	StateIdle               State = "IDLE"
	StateAwaitingGeneration State = "AWAITING_GENERATION"
	StateExtracting         State = "EXTRACTING"
	StateDispatching        State = "DISPATCHING"
	StateTransportFailed    State = "TRANSPORT_FAILED"
)
