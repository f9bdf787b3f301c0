// Package memory provides process-local adapters used when no external
// store is configured and in tests.
package memory

import (
	"context"
	"sync"

	"github.com/abcretailers/identity-gateway/internal/core/domain"
)

// CredentialStore is a map-backed ports.CredentialRepository. The map key
// plays the role of the unique username constraint.
type CredentialStore struct {
	mu    sync.RWMutex
	creds map[string]domain.Credential
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{creds: make(map[string]domain.Credential)}
}

func (s *CredentialStore) FindByUsername(_ context.Context, username string) (*domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.creds[username]
	if !ok {
		return nil, domain.ErrCredentialNotFound
	}
	return &cred, nil
}

func (s *CredentialStore) Insert(_ context.Context, cred *domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.creds[cred.Username]; exists {
		return domain.ErrDuplicateUsername
	}
	s.creds[cred.Username] = *cred
	return nil
}

func (s *CredentialStore) Delete(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.creds, username)
	return nil
}
