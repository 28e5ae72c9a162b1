package prompt

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/intentwatch/internal/intent"
	"github.com/ppiankov/intentwatch/internal/ledger"
)

// Persona is a fixed voice-and-policy block prepended to every prompt.
type Persona struct {
	ID          string `yaml:"id"`
	DisplayName string `yaml:"display_name"`
	Style       string `yaml:"style"`
	Rules       string `yaml:"rules"`
}

// Config holds all tunable prompt and dispatch parameters.
type Config struct {
	FieldBudget     int               `yaml:"field_budget"`
	DegradedMessage string            `yaml:"degraded_message"`
	DefaultPersona  string            `yaml:"default_persona"`
	Personas        []Persona         `yaml:"personas"`
	Severities      map[string]string `yaml:"severities"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		FieldBudget:     2000,
		DegradedMessage: "I couldn't reach the assistant service just now. Your dashboard is unaffected, please try again in a moment.",
		DefaultPersona:  "advisor",
		Personas:        BuiltinPersonas(),
		Severities: map[string]string{
			string(intent.ActionNavigate):        string(ledger.SevLow),
			string(intent.ActionOpenModal):       string(ledger.SevLow),
			string(intent.ActionInitiatePayment): string(ledger.SevHigh),
			string(intent.ActionCreateRecord):    string(ledger.SevHigh),
			string(intent.ActionLogEvent):        string(ledger.SevLow),
			string(intent.ActionUnknown):         string(ledger.SevMedium),
		},
	}
}

// SeverityFor maps an action type to its configured audit severity.
// Unconfigured types rank Medium rather than silently Low.
func (c *Config) SeverityFor(t intent.ActionType) ledger.Severity {
	if s, ok := c.Severities[string(t)]; ok {
		switch sev := ledger.Severity(s); sev {
		case ledger.SevLow, ledger.SevMedium, ledger.SevHigh, ledger.SevCritical:
			return sev
		}
	}
	return ledger.SevMedium
}

// Persona returns the persona with the given id, falling back to the
// configured default and then to the first builtin.
func (c *Config) Persona(id string) Persona {
	if id == "" {
		id = c.DefaultPersona
	}
	for _, p := range c.Personas {
		if p.ID == id {
			return p
		}
	}
	for _, p := range c.Personas {
		if p.ID == c.DefaultPersona {
			return p
		}
	}
	if len(c.Personas) > 0 {
		return c.Personas[0]
	}
	return BuiltinPersonas()[0]
}

// LoadConfig loads configuration from a YAML file.
// Empty path falls back to ~/.intentwatch/copilot.yaml.
// Missing file returns defaults. Invalid YAML returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg, _, err := LoadConfigWithHash(path)
	return cfg, err
}

// LoadConfigWithHash loads configuration and returns the SHA-256 of the
// raw YAML bytes, recorded in audit entries so a verifier can tell which
// policy produced a decision. Defaults hash as empty input.
func LoadConfigWithHash(path string) (*Config, string, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return DefaultConfig(), emptyHash(), nil
		}
		path = filepath.Join(home, ".intentwatch", "copilot.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), emptyHash(), nil
		}
		return nil, "", fmt.Errorf("prompt: read config: %w", err)
	}

	// Start with defaults, YAML overwrites only specified fields.
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("prompt: parse config: %w", err)
	}
	if cfg.FieldBudget <= 0 {
		cfg.FieldBudget = DefaultConfig().FieldBudget
	}

	h := sha256.Sum256(data)
	return cfg, "sha256:" + hex.EncodeToString(h[:]), nil
}

func emptyHash() string {
	h := sha256.Sum256(nil)
	return "sha256:" + hex.EncodeToString(h[:])
}
