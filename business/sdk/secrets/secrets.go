// Package secrets provides symmetric encryption for values that must not
// be stored in the clear, such as tenancy client secrets.
package secrets

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

// ErrDecrypt is returned when a sealed value cannot be opened, either
// because the key is wrong or the payload is corrupt.
var ErrDecrypt = errors.New("unable to decrypt value")

// Keeper seals and opens secrets with a single symmetric key.
type Keeper struct {
	key [32]byte
}

// NewKeeper constructs a Keeper from a hex encoded 32 byte key.
func NewKeeper(hexKey string) (*Keeper, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decoding key: %w", err)
	}

	if len(raw) != 32 {
		return nil, fmt.Errorf("key must be 32 bytes, got %d", len(raw))
	}

	var k Keeper
	copy(k.key[:], raw)

	return &k, nil
}

// Encrypt seals the value with a random nonce. The nonce is prepended to
// the returned payload.
func (k *Keeper) Encrypt(value string) ([]byte, error) {
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	return secretbox.Seal(nonce[:], []byte(value), &nonce, &k.key), nil
}

// Decrypt opens a payload produced by Encrypt.
func (k *Keeper) Decrypt(payload []byte) (string, error) {
	if len(payload) < 24 {
		return "", ErrDecrypt
	}

	var nonce [24]byte
	copy(nonce[:], payload[:24])

	value, ok := secretbox.Open(nil, payload[24:], &nonce, &k.key)
	if !ok {
		return "", ErrDecrypt
	}

	return string(value), nil
}
