package vault

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Codec transforms canonical value bytes to and from envelope cipher
// text. The transform is swappable: a deployment that needs real
// confidentiality substitutes an authenticated-encryption codec behind
// the same interface.
type Codec interface {
	Version() int
	Encode(plain []byte) (string, error)
	Decode(cipherText string) ([]byte, error)
}

// obfuscationCodec is the demo transform: a rolling XOR keystream plus
// base64. It is reversible obfuscation with no security properties —
// no key derivation, no authentication — and must not be treated as
// encryption.
type obfuscationCodec struct {
	pad []byte
}

// NewObfuscationCodec returns the version-1 XOR/base64 codec.
func NewObfuscationCodec() Codec {
	pad := sha256.Sum256([]byte("intentwatch-vault-v1"))
	return &obfuscationCodec{pad: pad[:]}
}

func (c *obfuscationCodec) Version() int { return 1 }

func (c *obfuscationCodec) Encode(plain []byte) (string, error) {
	return base64.StdEncoding.EncodeToString(c.xor(plain)), nil
}

func (c *obfuscationCodec) Decode(cipherText string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(cipherText)
	if err != nil {
		return nil, fmt.Errorf("vault: corrupt cipher text: %w", err)
	}
	return c.xor(raw), nil
}

func (c *obfuscationCodec) xor(in []byte) []byte {
	out := make([]byte, len(in))
	for i, b := range in {
		out[i] = b ^ c.pad[i%len(c.pad)]
	}
	return out
}
