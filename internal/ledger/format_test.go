package ledger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func exportToFile(t *testing.T, l *Ledger) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit-export.jsonl")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create export: %v", err)
	}
	defer f.Close()
	if err := l.ExportJSONL(f); err != nil {
		t.Fatalf("export: %v", err)
	}
	return path
}

func TestExportRoundTripVerifies(t *testing.T) {
	l := New(10, WithClock(fixedClock()))
	for i := 0; i < 5; i++ {
		l.Append("ACTION_DISPATCHED", "copilot", SevHigh, map[string]any{"i": i})
	}
	path := exportToFile(t, l)

	res := VerifyFile(path)
	if !res.Valid {
		t.Fatalf("exported chain must verify, got error at %d: %s", res.ErrorIndex, res.Error)
	}
	if res.Entries != 5 {
		t.Fatalf("expected 5 entries, got %d", res.Entries)
	}

	entries, err := ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if len(entries) != 5 || entries[0].Severity != SevHigh {
		t.Fatalf("unexpected export contents: %d entries", len(entries))
	}
}

func TestVerifyFileDetectsTampering(t *testing.T) {
	l := New(10, WithClock(fixedClock()))
	for i := 0; i < 3; i++ {
		l.Append("ACTION_DISPATCHED", "copilot", SevLow, nil)
	}
	path := exportToFile(t, l)

	data, _ := os.ReadFile(path)
	tampered := strings.Replace(string(data), `"ACTION_DISPATCHED"`, `"ACTION_FAILED"`, 1)
	os.WriteFile(path, []byte(tampered), 0644)

	res := VerifyFile(path)
	if res.Valid {
		t.Fatal("expected tampered export to be invalid")
	}
	if res.ErrorIndex != 0 {
		t.Fatalf("expected mismatch at index 0, got %d", res.ErrorIndex)
	}
}

func TestVerifyFileAfterEvictionStaysValid(t *testing.T) {
	l := New(4, WithClock(fixedClock()))
	for i := 0; i < 9; i++ {
		l.Append("A", "copilot", SevLow, map[string]any{"i": i})
	}
	path := exportToFile(t, l)

	res := VerifyFile(path)
	if !res.Valid {
		t.Fatalf("evicted-window export must verify from its anchor, got: %s", res.Error)
	}
	if res.Entries != 4 {
		t.Fatalf("expected 4 entries, got %d", res.Entries)
	}
}

func TestVerifyFileMissing(t *testing.T) {
	res := VerifyFile(filepath.Join(t.TempDir(), "nope.jsonl"))
	if res.Valid {
		t.Fatal("missing file must not verify")
	}
}
