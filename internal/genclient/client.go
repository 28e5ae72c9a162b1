// Package genclient abstracts the external text-generation service.
// The orchestrator only sees the Client interface and the typed
// TransportError taxonomy; which service sits behind it is the host's
// choice.
package genclient

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a transport failure.
type Kind string

const (
	KindTimeout     Kind = "timeout"
	KindAuthFailure Kind = "auth_failure"
	KindRateLimited Kind = "rate_limited"
	KindUnknown     Kind = "unknown"
)

// TransportError is the only error type the generation client surfaces.
type TransportError struct {
	Kind Kind
	Err  error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("genclient: transport failure (%s)", e.Kind)
	}
	return fmt.Sprintf("genclient: transport failure (%s): %v", e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// KindOf extracts the failure kind from an error chain.
// Non-transport errors report KindUnknown.
func KindOf(err error) Kind {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindUnknown
}

// Client sends one prompt and returns the raw generated text.
// Send is the only suspending operation in the whole pipeline; it must
// honor ctx cancellation.
type Client interface {
	Send(ctx context.Context, prompt string) (string, error)
}
