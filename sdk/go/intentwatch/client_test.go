package intentwatch

import (
	"context"
	"errors"
	"testing"

	"github.com/ppiankov/intentwatch/internal/genclient"
)

func TestNewRequiresGenerationClient(t *testing.T) {
	if _, err := New(); err == nil {
		t.Fatal("New accepted config without a generation client")
	}
}

func TestSubmitDispatchesAndAudits(t *testing.T) {
	var gotView string
	iw, err := New(
		WithMockResponses(`Sure! {"action":"NAVIGATE","payload":{"view":"transfers"}}`),
		WithHandler(Navigate, func(ctx context.Context, payload map[string]any) (any, error) {
			gotView, _ = payload["view"].(string)
			return nil, nil
		}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer iw.Close()

	res, err := iw.Submit(context.Background(), "take me to transfers")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Prose != "Sure!" {
		t.Errorf("prose = %q, want %q", res.Prose, "Sure!")
	}
	if res.Dispatched == nil || *res.Dispatched != Navigate {
		t.Errorf("dispatched = %v, want NAVIGATE", res.Dispatched)
	}
	if gotView != "transfers" {
		t.Errorf("handler payload view = %q, want transfers", gotView)
	}

	vr := iw.AuditVerify()
	if !vr.Valid {
		t.Fatalf("audit chain invalid: %s", vr.Error)
	}
	if vr.Entries < 2 {
		t.Errorf("entries = %d, want prompt + dispatch at least", vr.Entries)
	}

	tail := iw.AuditTail(1)
	if len(tail) != 1 || tail[0].Action != "ACTION_DISPATCHED" {
		t.Errorf("newest entry = %+v, want ACTION_DISPATCHED", tail)
	}
}

func TestSubmitTransportFailure(t *testing.T) {
	mock := genclient.NewMock()
	mock.Fail(&genclient.TransportError{Kind: genclient.KindTimeout, Err: errors.New("deadline")})
	iw, err := New(WithGenerationClient(mock))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer iw.Close()

	res, err := iw.Submit(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !res.TransportFailed {
		t.Error("TransportFailed = false, want true")
	}
	if res.Prose == "" {
		t.Error("degraded prose is empty")
	}
}

func TestExtractStandalone(t *testing.T) {
	iw, err := New(WithMockResponses())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer iw.Close()

	ex := iw.Extract(`Opening it. [ACTION:OPEN_MODAL: {"modal":"settings"}]`)
	if ex.Action == nil || ex.Action.Type != OpenModal {
		t.Fatalf("action = %+v, want OPEN_MODAL", ex.Action)
	}
	if ex.Prose != "Opening it." {
		t.Errorf("prose = %q", ex.Prose)
	}

	ex = iw.Extract("just words")
	if ex.Action != nil || ex.Prose != "just words" {
		t.Errorf("prose-only extraction = %+v", ex)
	}
}

func TestVaultRoundTripAndReset(t *testing.T) {
	iw, err := New(WithMockResponses("ok"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer iw.Close()

	if err := iw.VaultStore("account", "12-34-56"); err != nil {
		t.Fatalf("VaultStore: %v", err)
	}
	v, ok, err := iw.VaultGet("account")
	if err != nil || !ok || v != "12-34-56" {
		t.Fatalf("VaultGet = (%v, %v, %v)", v, ok, err)
	}

	if _, err := iw.Submit(context.Background(), "hi"); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	iw.Reset()
	if _, ok, _ := iw.VaultGet("account"); ok {
		t.Error("vault key survived Reset")
	}
	if vr := iw.AuditVerify(); !vr.Valid || vr.Entries != 0 {
		t.Errorf("ledger after Reset = %+v, want empty valid chain", vr)
	}
}

func TestCloseRefusesFurtherSubmits(t *testing.T) {
	iw, err := New(WithMockResponses("hello"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := iw.Submit(context.Background(), "hi"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	iw.Close()
	if _, err := iw.Submit(context.Background(), "again"); err == nil {
		t.Fatal("Submit after Close succeeded")
	}
	if got := len(iw.Turns()); got != 0 {
		t.Errorf("turns after Close = %d, want 0", got)
	}
}
