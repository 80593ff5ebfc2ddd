package core

import (
	"context"
	"strings"
	"sync"
)

// MemoryCredentialStore keeps the credential pair in process memory. Save and
// Clear are mutually exclusive; Load never observes a half-written pair.
type MemoryCredentialStore struct {
	mu         sync.RWMutex
	credential Credential
	present    bool
}

func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{}
}

func (s *MemoryCredentialStore) Save(_ context.Context, credential Credential) error {
	if s == nil {
		return NewBadInputError("core: credential store is nil", nil)
	}
	credential = normalizeCredential(credential)
	if credential.AccessToken == "" {
		return NewBadInputError("core: access token is required", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = credential
	s.present = true
	return nil
}

func (s *MemoryCredentialStore) Load(context.Context) (Credential, bool) {
	if s == nil {
		return Credential{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.present {
		return Credential{}, false
	}
	return cloneCredential(s.credential), true
}

func (s *MemoryCredentialStore) Clear(context.Context) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = Credential{}
	s.present = false
	return nil
}

func normalizeCredential(credential Credential) Credential {
	return Credential{
		AccessToken:  strings.TrimSpace(credential.AccessToken),
		RefreshToken: strings.TrimSpace(credential.RefreshToken),
		TokenType:    strings.TrimSpace(credential.TokenType),
		IssuedAt:     cloneTimePointer(credential.IssuedAt),
	}
}

func cloneCredential(credential Credential) Credential {
	out := credential
	out.IssuedAt = cloneTimePointer(credential.IssuedAt)
	return out
}
