package prompt

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestReloaderSwapsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "copilot.yaml")
	if err := os.WriteFile(path, []byte("field_budget: 1000\n"), 0644); err != nil {
		t.Fatal(err)
	}

	swapped := make(chan *Config, 1)
	r, err := NewReloader(path, func(cfg *Config, hash string) {
		select {
		case swapped <- cfg:
		default:
		}
	})
	if err != nil {
		t.Fatalf("new reloader: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	// Give the watcher a moment to arm, then rewrite the config.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("field_budget: 750\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-swapped:
		if cfg.FieldBudget != 750 {
			t.Fatalf("expected reloaded budget 750, got %d", cfg.FieldBudget)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("reload callback never fired")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reloader did not stop on context cancel")
	}
}

func TestReloaderRejectsMissingFile(t *testing.T) {
	if _, err := NewReloader(filepath.Join(t.TempDir(), "nope.yaml"), func(*Config, string) {}); err == nil {
		t.Fatal("missing config path must be rejected")
	}
}
