package ledger

import "testing"

func BenchmarkAppend(b *testing.B) {
	l := New(DefaultCapacity)
	details := map[string]any{"view": "Dashboard"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.Append("ACTION_DISPATCHED", "copilot", SevLow, details)
	}
}

func benchVerify(b *testing.B, n int) {
	b.Helper()
	l := New(n)
	for i := 0; i < n; i++ {
		l.Append("ACTION_DISPATCHED", "copilot", SevLow, map[string]any{"i": i})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if res := l.Verify(); !res.Valid {
			b.Fatal("invalid chain:", res.Error)
		}
	}
}

func BenchmarkVerify_100(b *testing.B)  { benchVerify(b, 100) }
func BenchmarkVerify_1000(b *testing.B) { benchVerify(b, 1000) }
