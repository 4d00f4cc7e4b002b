package security

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// SigningKeySize is the length of derived HMAC keys in bytes.
const SigningKeySize = 32

const visitorTokenInfo = "folio visitor token v1"

// DeriveSigningKey expands secret into a fixed-size key for purpose using
// HKDF-SHA256. Different purposes never share key material.
func DeriveSigningKey(secret, purpose string) ([]byte, error) {
	if secret == "" {
		return nil, errors.New("empty secret")
	}

	key := make([]byte, SigningKeySize)
	reader := hkdf.New(sha256.New, []byte(secret), nil, []byte(purpose))
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("failed to derive %s key: %w", purpose, err)
	}
	return key, nil
}
