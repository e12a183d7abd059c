// Package auth provides opt-in API-key authentication for the stack
// service. Keys are never stored in the clear: each key is stretched with
// PBKDF2-SHA256 against a per-key random salt.
package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

var (
	// ErrKeyExists is returned when registering a key name twice
	ErrKeyExists = errors.New("api key already exists")
	// ErrInvalidKey is returned when a presented key matches no record
	ErrInvalidKey = errors.New("invalid api key")
	// ErrInvalidAuthHeader is returned for a malformed Authorization header
	ErrInvalidAuthHeader = errors.New("invalid authorization header")
)

const (
	saltLength     = 16
	iterationCount = 4096
	keyLength      = 32
)

// keyRecord holds the derived form of one registered API key.
type keyRecord struct {
	salt    []byte
	derived []byte
}

// KeyManager holds the registered API keys.
type KeyManager struct {
	mu   sync.RWMutex
	keys map[string]keyRecord
}

// NewKeyManager creates an empty key manager.
func NewKeyManager() *KeyManager {
	return &KeyManager{keys: make(map[string]keyRecord)}
}

// AddKey registers secret under name. The secret itself is discarded after
// derivation.
func (m *KeyManager) AddKey(name, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.keys[name]; ok {
		return ErrKeyExists
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	m.keys[name] = keyRecord{
		salt:    salt,
		derived: pbkdf2.Key([]byte(secret), salt, iterationCount, keyLength, sha256.New),
	}
	return nil
}

// RemoveKey drops the key registered under name, if any.
func (m *KeyManager) RemoveKey(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, name)
}

// Verify reports whether secret matches any registered key and returns the
// matching key name.
func (m *KeyManager) Verify(secret string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for name, rec := range m.keys {
		derived := pbkdf2.Key([]byte(secret), rec.salt, iterationCount, keyLength, sha256.New)
		if hmac.Equal(derived, rec.derived) {
			return name, nil
		}
	}
	return "", ErrInvalidKey
}

// Empty reports whether no keys are registered.
func (m *KeyManager) Empty() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.keys) == 0
}

// ParseAuthHeader extracts the bearer token from an Authorization header.
func ParseAuthHeader(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", ErrInvalidAuthHeader
	}
	return parts[1], nil
}
