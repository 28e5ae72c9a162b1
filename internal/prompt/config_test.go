package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/intentwatch/internal/intent"
	"github.com/ppiankov/intentwatch/internal/ledger"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.FieldBudget != 2000 {
		t.Fatalf("expected default field budget 2000, got %d", cfg.FieldBudget)
	}
	if cfg.DegradedMessage == "" {
		t.Fatal("default degraded message must not be empty")
	}
	if len(cfg.Personas) == 0 {
		t.Fatal("defaults must include builtin personas")
	}
}

func TestSeverityForConfiguredTypes(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		typ  intent.ActionType
		want ledger.Severity
	}{
		{intent.ActionNavigate, ledger.SevLow},
		{intent.ActionInitiatePayment, ledger.SevHigh},
		{intent.ActionCreateRecord, ledger.SevHigh},
		{intent.ActionUnknown, ledger.SevMedium},
	}
	for _, tt := range tests {
		if got := cfg.SeverityFor(tt.typ); got != tt.want {
			t.Fatalf("SeverityFor(%s) = %s, want %s", tt.typ, got, tt.want)
		}
	}
}

func TestSeverityForUnconfiguredTypeDefaultsMedium(t *testing.T) {
	cfg := &Config{Severities: map[string]string{}}
	if got := cfg.SeverityFor(intent.ActionInitiatePayment); got != ledger.SevMedium {
		t.Fatalf("unconfigured type should rank medium, got %s", got)
	}
}

func TestSeverityForInvalidValueDefaultsMedium(t *testing.T) {
	cfg := &Config{Severities: map[string]string{"NAVIGATE": "extreme"}}
	if got := cfg.SeverityFor(intent.ActionNavigate); got != ledger.SevMedium {
		t.Fatalf("invalid severity value should rank medium, got %s", got)
	}
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, hash, err := LoadConfigWithHash(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if cfg.FieldBudget != 2000 {
		t.Fatalf("expected defaults, got budget %d", cfg.FieldBudget)
	}
	if hash != emptyHash() {
		t.Fatalf("defaults hash as empty input, got %s", hash)
	}
}

func TestLoadConfigMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "copilot.yaml")
	yaml := "field_budget: 500\nseverities:\n  NAVIGATE: medium\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, hash, err := LoadConfigWithHash(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.FieldBudget != 500 {
		t.Fatalf("expected overridden budget 500, got %d", cfg.FieldBudget)
	}
	if got := cfg.SeverityFor(intent.ActionNavigate); got != ledger.SevMedium {
		t.Fatalf("expected overridden NAVIGATE severity, got %s", got)
	}
	// Unspecified fields keep their defaults.
	if cfg.DegradedMessage == "" {
		t.Fatal("unspecified fields must keep defaults")
	}
	if hash == emptyHash() {
		t.Fatal("real file must not hash as empty input")
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("field_budget: [not a number"), 0644)

	if _, _, err := LoadConfigWithHash(path); err == nil {
		t.Fatal("invalid YAML must return an error")
	}
}

func TestPersonaLookupFallsBack(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.Persona("concierge"); got.ID != "concierge" {
		t.Fatalf("expected concierge, got %s", got.ID)
	}
	if got := cfg.Persona("no-such-persona"); got.ID != cfg.DefaultPersona {
		t.Fatalf("unknown id must fall back to default, got %s", got.ID)
	}
	if got := cfg.Persona(""); got.ID != cfg.DefaultPersona {
		t.Fatalf("empty id must resolve the default, got %s", got.ID)
	}
}

func TestBuiltinPersonasStable(t *testing.T) {
	a := BuiltinPersonas()
	b := BuiltinPersonas()
	if len(a) == 0 {
		t.Fatal("no builtin personas")
	}
	if a[0].ID != "advisor" {
		t.Fatalf("expected advisor first, got %s", a[0].ID)
	}
	a[0].ID = "mutated"
	if b[0].ID != "advisor" {
		t.Fatal("BuiltinPersonas must return a copy")
	}
}
