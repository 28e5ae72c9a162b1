package genclient

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Mock provides deterministic local replies when no generation service
// is configured. Scripted responses are consumed in order; when the
// script runs out (or none was given) ReplyFn answers, defaulting to a
// plain echo.
type Mock struct {
	mu      sync.Mutex
	script  []string
	err     error
	delay   time.Duration
	ReplyFn func(prompt string) string
}

// NewMock creates a mock that returns the given responses in order.
func NewMock(responses ...string) *Mock {
	return &Mock{script: responses}
}

// Fail makes every subsequent Send return err.
func (m *Mock) Fail(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// SetDelay makes Send wait before answering, to exercise cancellation
// and supersede paths in tests.
func (m *Mock) SetDelay(d time.Duration) {
	m.mu.Lock()
	m.delay = d
	m.mu.Unlock()
}

func (m *Mock) Send(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	delay := m.delay
	err := m.err
	var reply string
	var scripted bool
	if err == nil && len(m.script) > 0 {
		reply = m.script[0]
		m.script = m.script[1:]
		scripted = true
	}
	replyFn := m.ReplyFn
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return "", &TransportError{Kind: KindTimeout, Err: ctx.Err()}
		case <-time.After(delay):
		}
	}

	if err != nil {
		return "", err
	}
	if scripted {
		return reply, nil
	}
	if replyFn != nil {
		return replyFn(prompt), nil
	}
	return fmt.Sprintf("I heard you. (%d chars of context)", len(prompt)), nil
}
