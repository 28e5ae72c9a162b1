package intentwatch

import (
	"time"

	"github.com/ppiankov/intentwatch/internal/genclient"
	"github.com/ppiankov/intentwatch/internal/intent"
	"github.com/ppiankov/intentwatch/internal/route"
	"github.com/ppiankov/intentwatch/internal/vault"
)

// Option configures a Client at creation time.
type Option func(*clientConfig)

type clientConfig struct {
	gen         genclient.Client
	handlers    route.Table
	capacity    int
	configPath  string
	watchConfig bool
	personaID   string
	actor       string
	codec       vault.Codec
	clock       func() time.Time
	snapshot    SnapshotFunc
}

// WithGenerationClient sets the model transport. Required unless
// WithMockResponses is used.
func WithGenerationClient(c genclient.Client) Option {
	return func(cfg *clientConfig) { cfg.gen = c }
}

// WithMockResponses installs a scripted generation client, for tests
// and demos.
func WithMockResponses(responses ...string) Option {
	return func(cfg *clientConfig) { cfg.gen = genclient.NewMock(responses...) }
}

// WithHandler registers one action handler.
func WithHandler(t ActionType, h Handler) Option {
	return func(cfg *clientConfig) {
		cfg.handlers[intent.ActionType(t)] = route.Handler(h)
	}
}

// WithHandlers registers a full handler table at once.
func WithHandlers(table map[ActionType]Handler) Option {
	return func(cfg *clientConfig) {
		for t, h := range table {
			cfg.handlers[intent.ActionType(t)] = route.Handler(h)
		}
	}
}

// WithLedgerCapacity bounds the in-memory audit ring.
func WithLedgerCapacity(n int) Option {
	return func(cfg *clientConfig) { cfg.capacity = n }
}

// WithConfig sets the path to a copilot YAML config file.
// Empty path means ~/.intentwatch/copilot.yaml, falling back to
// built-in defaults when the file does not exist.
func WithConfig(path string) Option {
	return func(cfg *clientConfig) { cfg.configPath = path }
}

// WithConfigWatch hot-reloads the config file on change.
func WithConfigWatch() Option {
	return func(cfg *clientConfig) { cfg.watchConfig = true }
}

// WithPersona selects the assistant persona (e.g., "advisor").
func WithPersona(id string) Option {
	return func(cfg *clientConfig) { cfg.personaID = id }
}

// WithActor sets the actor name recorded on audit entries.
func WithActor(actor string) Option {
	return func(cfg *clientConfig) { cfg.actor = actor }
}

// WithVaultCodec replaces the default obfuscation codec.
func WithVaultCodec(c vault.Codec) Option {
	return func(cfg *clientConfig) { cfg.codec = c }
}

// WithClock overrides the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(cfg *clientConfig) { cfg.clock = now }
}

// WithSnapshot supplies the current view and whitelisted host state
// for prompt assembly.
func WithSnapshot(fn SnapshotFunc) Option {
	return func(cfg *clientConfig) { cfg.snapshot = fn }
}
