// Package auth authenticates back-office admins: argon2id password checks,
// PASETO access tokens and server-side sessions.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// PASETO v4 requires a 256-bit symmetric key.
	keyLength    = 32
	keyHexLength = 64
)

// DecodeKey parses a hex-encoded 32-byte key.
func DecodeKey(keyHex string) ([]byte, error) {
	keyHex = strings.TrimSpace(keyHex)
	if len(keyHex) != keyHexLength {
		return nil, fmt.Errorf("auth key must be exactly %d hex characters, got %d", keyHexLength, len(keyHex))
	}
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("auth key is not valid hex: %w", err)
	}
	return key, nil
}

// LoadOrGenerateKey returns the key stored in <dir>/auth.key, creating it
// on first use so development tokens survive restarts.
func LoadOrGenerateKey(dir string) ([]byte, error) {
	keyPath := filepath.Join(dir, "auth.key")

	//#nosec G304 -- path is derived from configuration
	if data, err := os.ReadFile(keyPath); err == nil {
		return DecodeKey(string(data))
	}

	key := make([]byte, keyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate auth key: %w", err)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(hex.EncodeToString(key)), 0o600); err != nil {
		return nil, fmt.Errorf("failed to save auth key: %w", err)
	}
	return key, nil
}

// ResolveKey uses keyHex when set, otherwise the key file in dir.
func ResolveKey(keyHex, dir string) ([]byte, error) {
	if keyHex != "" {
		return DecodeKey(keyHex)
	}
	return LoadOrGenerateKey(dir)
}
