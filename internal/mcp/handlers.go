package mcp

import (
	"context"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/intentwatch/internal/intent"
	"github.com/ppiankov/intentwatch/internal/ledger"
)

// --- Input/Output types ---

// SubmitInput defines parameters for the copilot_submit tool.
type SubmitInput struct {
	Text string `json:"text" jsonschema:"the user's message"`
}

// SubmitOutput contains the copilot's reply and any dispatched action.
type SubmitOutput struct {
	Prose           string         `json:"prose"`
	ActionType      string         `json:"action_type,omitempty"`
	ActionPayload   map[string]any `json:"action_payload,omitempty"`
	Superseded      bool           `json:"superseded,omitempty"`
	TransportFailed bool           `json:"transport_failed,omitempty"`
}

// ExtractInput defines parameters for the copilot_extract tool.
type ExtractInput struct {
	Raw string `json:"raw" jsonschema:"raw model output to scan for an action command"`
}

// ExtractOutput contains the extraction result.
type ExtractOutput struct {
	Prose         string         `json:"prose"`
	ActionType    string         `json:"action_type,omitempty"`
	ActionPayload map[string]any `json:"action_payload,omitempty"`
	Rejected      []RejectedItem `json:"rejected,omitempty"`
}

// RejectedItem describes a candidate marker that was not executed.
type RejectedItem struct {
	Span   string `json:"span"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// AuditTailInput defines parameters for the copilot_audit_tail tool.
type AuditTailInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"max entries to return, 0 for all retained"`
}

// AuditTailOutput lists ledger entries, newest first.
type AuditTailOutput struct {
	Entries []ledger.Entry `json:"entries"`
}

// AuditVerifyInput is empty. No parameters needed.
type AuditVerifyInput struct{}

// AuditVerifyOutput reports the chain verification result.
type AuditVerifyOutput struct {
	Valid      bool   `json:"valid"`
	Entries    int    `json:"entries"`
	Error      string `json:"error,omitempty"`
	ErrorIndex int    `json:"error_index,omitempty"`
}

// VaultStoreInput defines parameters for the copilot_vault_store tool.
type VaultStoreInput struct {
	Key   string `json:"key" jsonschema:"vault key"`
	Value any    `json:"value" jsonschema:"value to store"`
}

// VaultStoreOutput confirms the store.
type VaultStoreOutput struct {
	Key    string `json:"key"`
	Stored bool   `json:"stored"`
}

// VaultGetInput defines parameters for the copilot_vault_get tool.
type VaultGetInput struct {
	Key string `json:"key" jsonschema:"vault key"`
}

// VaultGetOutput returns the decoded value, or Found=false.
type VaultGetOutput struct {
	Key   string `json:"key"`
	Found bool   `json:"found"`
	Value any    `json:"value,omitempty"`
}

// --- Handlers ---

func (s *Server) handleSubmit(ctx context.Context, req *mcpsdk.CallToolRequest, input SubmitInput) (*mcpsdk.CallToolResult, SubmitOutput, error) {
	res, err := s.orch.Submit(ctx, input.Text)
	if err != nil {
		return &mcpsdk.CallToolResult{IsError: true}, SubmitOutput{}, err
	}

	out := SubmitOutput{
		Prose:           res.Prose,
		Superseded:      res.Superseded,
		TransportFailed: res.TransportFailed,
	}
	if res.Dispatched != nil {
		out.ActionType = string(*res.Dispatched)
		// The payload rides along in the newest dispatch entry.
		for _, e := range s.led.Tail(0) {
			if e.Action == "ACTION_DISPATCHED" {
				if p, ok := e.Details["payload"].(map[string]any); ok {
					out.ActionPayload = p
				}
				break
			}
		}
	}
	return nil, out, nil
}

func (s *Server) handleExtract(ctx context.Context, req *mcpsdk.CallToolRequest, input ExtractInput) (*mcpsdk.CallToolResult, ExtractOutput, error) {
	res := intent.Extract(input.Raw, time.Now().UTC())

	out := ExtractOutput{Prose: res.Prose}
	if res.Action != nil {
		out.ActionType = string(res.Action.Type)
		out.ActionPayload = res.Action.Payload
	}
	for _, rej := range res.Rejected {
		out.Rejected = append(out.Rejected, RejectedItem{
			Span:   rej.Span,
			Reason: string(rej.Reason),
			Detail: rej.Detail,
		})
	}
	return nil, out, nil
}

func (s *Server) handleAuditTail(ctx context.Context, req *mcpsdk.CallToolRequest, input AuditTailInput) (*mcpsdk.CallToolResult, AuditTailOutput, error) {
	return nil, AuditTailOutput{Entries: s.led.Tail(input.Limit)}, nil
}

func (s *Server) handleAuditVerify(ctx context.Context, req *mcpsdk.CallToolRequest, input AuditVerifyInput) (*mcpsdk.CallToolResult, AuditVerifyOutput, error) {
	vr := s.led.Verify()
	return nil, AuditVerifyOutput{
		Valid:      vr.Valid,
		Entries:    vr.Entries,
		Error:      vr.Error,
		ErrorIndex: vr.ErrorIndex,
	}, nil
}

func (s *Server) handleVaultStore(ctx context.Context, req *mcpsdk.CallToolRequest, input VaultStoreInput) (*mcpsdk.CallToolResult, VaultStoreOutput, error) {
	if err := s.vlt.Store(input.Key, input.Value); err != nil {
		return &mcpsdk.CallToolResult{IsError: true}, VaultStoreOutput{Key: input.Key}, err
	}
	return nil, VaultStoreOutput{Key: input.Key, Stored: true}, nil
}

func (s *Server) handleVaultGet(ctx context.Context, req *mcpsdk.CallToolRequest, input VaultGetInput) (*mcpsdk.CallToolResult, VaultGetOutput, error) {
	value, found, err := s.vlt.Get(input.Key)
	if err != nil {
		return &mcpsdk.CallToolResult{IsError: true}, VaultGetOutput{Key: input.Key, Found: found}, err
	}
	return nil, VaultGetOutput{Key: input.Key, Found: found, Value: value}, nil
}
