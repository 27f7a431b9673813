package auth

import (
	"context"
	"fmt"
	"sync"
)

// MemoryAuthenticator holds credentials entirely in process memory,
// grounded on the source's base Authenticator class before the
// JSON-file-backed subclass layers persistence on top.
type MemoryAuthenticator struct {
	mu    sync.RWMutex
	creds map[string]Credential
}

// NewMemoryAuthenticator returns an empty MemoryAuthenticator.
func NewMemoryAuthenticator() *MemoryAuthenticator {
	return &MemoryAuthenticator{creds: make(map[string]Credential)}
}

func (m *MemoryAuthenticator) Authenticate(_ context.Context, id, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.creds[id]
	if !ok {
		return false, nil
	}
	return constantTimeEqual(c.KeyHash, hashKey(key)), nil
}

func (m *MemoryAuthenticator) AccessFor(_ context.Context, id string) (AccessSet, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.creds[id]
	if !ok {
		return AccessSet{}, false, nil
	}
	return c.Access, true, nil
}

func (m *MemoryAuthenticator) Create(_ context.Context, access AccessSet) (string, string, error) {
	id, err := randomID(12)
	if err != nil {
		return "", "", err
	}
	key := newCredentialKey()

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.creds[id]; exists {
		return "", "", fmt.Errorf("auth: generated id %q already in use", id)
	}
	m.creds[id] = Credential{ID: id, KeyHash: hashKey(key), Access: access}
	return id, key, nil
}

func (m *MemoryAuthenticator) Revoke(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.creds[id]; !ok {
		return fmt.Errorf("auth: credential %q not found", id)
	}
	delete(m.creds, id)
	return nil
}
