package ledger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func FuzzVerifyFile(f *testing.F) {
	l := New(10, WithClock(fixedClock()))
	for i := 0; i < 3; i++ {
		l.Append("ACTION_DISPATCHED", "copilot", SevLow, map[string]any{"i": i})
	}
	var buf bytes.Buffer
	if err := l.ExportJSONL(&buf); err != nil {
		f.Fatal(err)
	}
	f.Add(buf.Bytes())
	f.Add([]byte{})
	f.Add([]byte(`{"not":"an entry"}` + "\n"))
	f.Add([]byte(`not json`))

	f.Fuzz(func(t *testing.T, data []byte) {
		path := filepath.Join(t.TempDir(), "fuzz.jsonl")
		os.WriteFile(path, data, 0644)

		// Must not panic.
		VerifyFile(path)
	})
}
