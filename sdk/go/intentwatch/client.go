package intentwatch

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ppiankov/intentwatch/internal/convo"
	"github.com/ppiankov/intentwatch/internal/intent"
	"github.com/ppiankov/intentwatch/internal/ledger"
	"github.com/ppiankov/intentwatch/internal/prompt"
	"github.com/ppiankov/intentwatch/internal/route"
	"github.com/ppiankov/intentwatch/internal/vault"
)

// Client holds the full copilot pipeline for in-process use.
// Thread-safe for concurrent Submit calls; a newer submission
// supersedes any still awaiting generation.
type Client struct {
	cfg        clientConfig
	orch       *convo.Orchestrator
	led        *ledger.Ledger
	vlt        *vault.Vault
	stopReload context.CancelFunc
}

// New creates a Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := clientConfig{
		handlers: route.Table{},
		capacity: ledger.DefaultCapacity,
		actor:    "copilot",
	}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.gen == nil {
		return nil, fmt.Errorf("intentwatch: a generation client is required")
	}

	pc, hash, err := prompt.LoadConfigWithHash(cfg.configPath)
	if err != nil {
		return nil, fmt.Errorf("intentwatch: failed to load config: %w", err)
	}

	ledOpts := []ledger.Option{}
	if cfg.clock != nil {
		ledOpts = append(ledOpts, ledger.WithClock(cfg.clock))
	}
	led := ledger.New(cfg.capacity, ledOpts...)

	vltOpts := []vault.Option{}
	if cfg.codec != nil {
		vltOpts = append(vltOpts, vault.WithCodec(cfg.codec))
	}
	vlt := vault.New(vltOpts...)

	router := route.New(cfg.handlers, led, vlt, severityFn(pc), cfg.actor)

	var snapshot convo.SnapshotFn
	if cfg.snapshot != nil {
		fn := cfg.snapshot
		snapshot = func() (string, prompt.Snapshot) {
			view, state := fn()
			return view, prompt.Snapshot(state)
		}
	}

	orch, err := convo.New(convo.Config{
		Client:       cfg.gen,
		Router:       router,
		Ledger:       led,
		PromptConfig: pc,
		ConfigHash:   hash,
		PersonaID:    cfg.personaID,
		Snapshot:     snapshot,
		Clock:        cfg.clock,
		Actor:        cfg.actor,
	})
	if err != nil {
		return nil, err
	}

	c := &Client{cfg: cfg, orch: orch, led: led, vlt: vlt}

	if cfg.watchConfig && cfg.configPath != "" {
		r, err := prompt.NewReloader(cfg.configPath, orch.SwapPromptConfig)
		if err != nil {
			return nil, fmt.Errorf("intentwatch: failed to watch config: %w", err)
		}
		watchCtx, cancel := context.WithCancel(context.Background())
		c.stopReload = cancel
		go r.Run(watchCtx)
	}

	return c, nil
}

// Submit runs one user turn: assemble prompt, call the model, extract
// intent, dispatch, audit. Extraction and routing failures degrade into
// the result rather than surfacing as errors.
func (c *Client) Submit(ctx context.Context, text string) (TurnResult, error) {
	res, err := c.orch.Submit(ctx, text)
	if err != nil {
		return TurnResult{}, err
	}
	return toTurnResult(res), nil
}

// Extract runs the intent extractor on raw text without touching the
// conversation, the router, or the ledger.
func (c *Client) Extract(raw string) Extraction {
	return toExtraction(intent.Extract(raw, time.Now().UTC()))
}

// AuditTail returns the n most recent ledger entries, newest first.
// n <= 0 returns all retained entries.
func (c *Client) AuditTail(n int) []AuditEntry {
	entries := c.led.Tail(n)
	out := make([]AuditEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, toAuditEntry(e))
	}
	return out
}

// AuditVerify recomputes the hash chain over the retained entries.
func (c *Client) AuditVerify() VerifyResult {
	return toVerifyResult(c.led.Verify())
}

// AuditExport writes the retained entries as JSONL.
func (c *Client) AuditExport(w io.Writer) error {
	return c.led.ExportJSONL(w)
}

// Vault exposes the session vault for hosts that need Has/Keys or a
// custom codec round-trip beyond VaultStore/VaultGet.
func (c *Client) Vault() *vault.Vault {
	return c.vlt
}

// VaultStore obfuscates and retains one sensitive value.
func (c *Client) VaultStore(key string, value any) error {
	return c.vlt.Store(key, value)
}

// VaultGet decodes one retained value. Absent keys return (nil, false,
// nil); a stored envelope with an unknown codec version returns
// (nil, true, vault.ErrUnknownVersion).
func (c *Client) VaultGet(key string) (any, bool, error) {
	return c.vlt.Get(key)
}

// Turns returns a copy of the conversation log.
func (c *Client) Turns() []convo.Turn {
	return c.orch.Turns()
}

// Reset clears the vault and the audit ledger. The conversation
// continues; subsequent entries chain from genesis again.
func (c *Client) Reset() {
	c.vlt.Clear()
	c.led.Reset()
}

// Close ends the session: the conversation log is discarded, in-flight
// generation responses are dropped, and the config watcher stops.
func (c *Client) Close() error {
	if c.stopReload != nil {
		c.stopReload()
	}
	c.orch.Close()
	return nil
}
