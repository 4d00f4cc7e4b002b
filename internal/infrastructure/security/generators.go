// Package security provides visitor identity: ids, signing keys and tokens.
package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
)

// GenerateULID generates a new ULID string.
func GenerateULID() string {
	return ulid.Make().String()
}

// IsVisitorID reports whether id is a well-formed ULID.
func IsVisitorID(id string) bool {
	_, err := ulid.ParseStrict(strings.ToUpper(id))
	return err == nil
}

// GenerateSecureKey creates a cryptographically secure random key and returns it as a hex string.
// Used when FOLIO_SECRET is unset so tokens still verify for the life of the process.
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length/2) // Each byte becomes two hex characters
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
