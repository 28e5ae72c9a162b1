// Package mcp exposes the copilot pipeline as MCP tools over stdio so
// editor and agent hosts can submit turns and inspect the audit ledger
// without linking the Go SDK.
package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/intentwatch/internal/convo"
	"github.com/ppiankov/intentwatch/internal/genclient"
	"github.com/ppiankov/intentwatch/internal/intent"
	"github.com/ppiankov/intentwatch/internal/ledger"
	"github.com/ppiankov/intentwatch/internal/prompt"
	"github.com/ppiankov/intentwatch/internal/route"
	"github.com/ppiankov/intentwatch/internal/vault"
)

// Config holds MCP server configuration.
type Config struct {
	ConfigPath     string
	PersonaID      string
	Actor          string
	LedgerCapacity int

	// Generation transport. Client wins when set (tests); otherwise an
	// HTTP client is built from the remaining fields.
	Client    genclient.Client
	APIURL    string
	APIKey    string
	Model     string
	MaxTokens int
}

// Server wraps the MCP SDK server around one copilot session.
type Server struct {
	mcpServer *mcpsdk.Server
	orch      *convo.Orchestrator
	led       *ledger.Ledger
	vlt       *vault.Vault
}

// New creates an MCP server with a loaded config and a fresh session.
// Actions dispatch to echo handlers: over MCP the host executes effects
// itself from the returned action, so dispatch here only audits and
// reflects the payload back.
func New(cfg Config) (*Server, error) {
	pc, hash, err := prompt.LoadConfigWithHash(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load copilot config: %w", err)
	}

	capacity := cfg.LedgerCapacity
	if capacity <= 0 {
		capacity = ledger.DefaultCapacity
	}
	led := ledger.New(capacity)
	vlt := vault.New()

	client := cfg.Client
	if client == nil {
		client, err = genclient.NewHTTPClient(genclient.HTTPConfig{
			APIURL:    cfg.APIURL,
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create generation client: %w", err)
		}
	}

	actor := cfg.Actor
	if actor == "" {
		actor = "mcp"
	}

	router := route.New(echoTable(), led, vlt, func(t intent.ActionType) ledger.Severity {
		return pc.SeverityFor(t)
	}, actor)

	orch, err := convo.New(convo.Config{
		Client:       client,
		Router:       router,
		Ledger:       led,
		PromptConfig: pc,
		ConfigHash:   hash,
		PersonaID:    cfg.PersonaID,
		Actor:        actor,
	})
	if err != nil {
		return nil, err
	}

	s := &Server{orch: orch, led: led, vlt: vlt}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "intentwatch",
			Version: "0.1.0",
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// echoTable dispatches every known action type by reflecting its
// payload back to the MCP caller.
func echoTable() route.Table {
	echo := func(ctx context.Context, payload map[string]any) (any, error) {
		return payload, nil
	}
	return route.Table{
		intent.ActionNavigate:        echo,
		intent.ActionOpenModal:       echo,
		intent.ActionInitiatePayment: echo,
		intent.ActionCreateRecord:    echo,
		intent.ActionLogEvent:        echo,
	}
}

// Run starts the MCP server on stdio transport. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Close discards the session.
func (s *Server) Close() error {
	s.orch.Close()
	return nil
}

// registerTools adds all intentwatch tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "copilot_submit",
		Description: "Submit a user message to the copilot. Returns the prose reply and the dispatched action, if any.",
	}, s.handleSubmit)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "copilot_extract",
		Description: "Extract an action command from raw model output without submitting a turn (dry-run).",
	}, s.handleExtract)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "copilot_audit_tail",
		Description: "Return the most recent audit ledger entries, newest first.",
	}, s.handleAuditTail)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "copilot_audit_verify",
		Description: "Recompute the audit ledger hash chain and report whether it is intact.",
	}, s.handleAuditVerify)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "copilot_vault_store",
		Description: "Store a sensitive value in the obfuscated session vault.",
	}, s.handleVaultStore)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "copilot_vault_get",
		Description: "Retrieve a value from the session vault.",
	}, s.handleVaultGet)
}
