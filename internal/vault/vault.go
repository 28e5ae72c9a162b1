// Package vault is an in-process key/value store with a reversible
// obfuscation transform at rest. Values are canonicalized through JSON
// before encoding and wrapped in a versioned envelope; decoding an
// envelope with an unregistered version fails closed.
package vault

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownVersion marks an envelope whose codec version is not
// registered with this vault.
var ErrUnknownVersion = errors.New("vault: unknown envelope version")

// Envelope wraps one stored value.
type Envelope struct {
	Version    int    `json:"version"`
	CipherText string `json:"cipher_text"`
}

// Vault maps keys to envelopes. Safe for concurrent use.
type Vault struct {
	mu      sync.RWMutex
	encoder Codec
	codecs  map[int]Codec
	data    map[string]Envelope
}

// Option configures a Vault at construction.
type Option func(*Vault)

// WithCodec replaces the encoding codec and registers it for decoding.
func WithCodec(c Codec) Option {
	return func(v *Vault) {
		v.encoder = c
		v.codecs[c.Version()] = c
	}
}

// New creates a Vault using the version-1 obfuscation codec unless
// overridden.
func New(opts ...Option) *Vault {
	def := NewObfuscationCodec()
	v := &Vault{
		encoder: def,
		codecs:  map[int]Codec{def.Version(): def},
		data:    make(map[string]Envelope),
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Store canonicalizes value through JSON and saves it under key.
// Any JSON-serializable value is accepted, including nil, false, and 0.
func (v *Vault) Store(key string, value any) error {
	if key == "" {
		return fmt.Errorf("vault: key must not be empty")
	}
	plain, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("vault: value is not serializable: %w", err)
	}
	cipherText, err := v.encoder.Encode(plain)
	if err != nil {
		return fmt.Errorf("vault: encode: %w", err)
	}

	v.mu.Lock()
	v.data[key] = Envelope{Version: v.encoder.Version(), CipherText: cipherText}
	v.mu.Unlock()
	return nil
}

// Get returns the stored value. The bool reports presence, so an absent
// key is always distinguishable from a stored null, false, or zero. A
// present key whose envelope cannot be decoded returns a non-nil error.
func (v *Vault) Get(key string) (any, bool, error) {
	v.mu.RLock()
	env, ok := v.data[key]
	v.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	codec, ok := v.codecs[env.Version]
	if !ok {
		return nil, true, fmt.Errorf("%w: %d", ErrUnknownVersion, env.Version)
	}
	plain, err := codec.Decode(env.CipherText)
	if err != nil {
		return nil, true, err
	}
	var value any
	if err := json.Unmarshal(plain, &value); err != nil {
		return nil, true, fmt.Errorf("vault: corrupt value for %q: %w", key, err)
	}
	return value, true, nil
}

// Has reports whether key is present, without decoding.
func (v *Vault) Has(key string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.data[key]
	return ok
}

// Clear removes every stored value.
func (v *Vault) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.data = make(map[string]Envelope)
}

// Keys returns all stored keys in sorted order.
func (v *Vault) Keys() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	keys := make([]string, 0, len(v.data))
	for k := range v.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored values.
func (v *Vault) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.data)
}

// envelope is exposed for tests that need to inspect the stored form.
func (v *Vault) envelope(key string) (Envelope, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	env, ok := v.data[key]
	return env, ok
}
