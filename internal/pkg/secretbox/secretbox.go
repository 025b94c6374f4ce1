// Package secretbox seals tenant provider credentials at rest with
// nacl/secretbox (XSalsa20-Poly1305). Sealed values are base64 strings with
// the random nonce prefixed.
package secretbox

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// Sealer seals and opens credential strings with one symmetric key.
type Sealer struct {
	key [32]byte
}

// NewSealer parses a 64-character hex key. An empty key is refused so a
// misconfigured deployment fails at startup rather than storing plaintext.
func NewSealer(hexKey string) (*Sealer, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decode seal key failed: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("seal key must be 32 bytes, got %d", len(raw))
	}
	s := &Sealer{}
	copy(s.key[:], raw)
	return s, nil
}

// Seal encrypts value; empty input stays empty.
func (s *Sealer) Seal(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("generate nonce failed: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], []byte(value), &nonce, &s.key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a sealed value; empty input stays empty.
func (s *Sealer) Open(sealed string) (string, error) {
	if sealed == "" {
		return "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("decode sealed value failed: %w", err)
	}
	if len(raw) < nonceSize {
		return "", fmt.Errorf("sealed value too short")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	opened, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", fmt.Errorf("open sealed value failed")
	}
	return string(opened), nil
}
