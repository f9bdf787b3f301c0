package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/abcretailers/identity-gateway/internal/core/domain"
	"github.com/abcretailers/identity-gateway/internal/core/ports"
)

// LoginService checks credentials locally and then resolves the paired
// remote profile. It never retries and never repairs a missing profile.
type LoginService struct {
	credentials ports.CredentialRepository
	profiles    ports.ProfileGateway
	log         zerolog.Logger

	dummyOnce sync.Once
	dummyHash []byte
}

func NewLoginService(credentials ports.CredentialRepository, profiles ports.ProfileGateway, log zerolog.Logger) *LoginService {
	return &LoginService{credentials: credentials, profiles: profiles, log: log}
}

// Verify returns the identity pair for username. Unknown usernames and wrong
// passwords both yield domain.ErrInvalidCredentials.
func (s *LoginService) Verify(ctx context.Context, username, password string) (*domain.Credential, *domain.Profile, error) {
	if username == "" || password == "" {
		return nil, nil, domain.ErrInvalidCredentials
	}

	cred, err := s.credentials.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialNotFound) {
			s.equalizeTiming(password)
			return nil, nil, domain.ErrInvalidCredentials
		}
		s.log.Error().Err(err).Str("username", username).Msg("credential lookup failed")
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrCredentialStoreUnavailable, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		return nil, nil, domain.ErrInvalidCredentials
	}

	profile, err := s.profiles.GetCustomerByUsername(ctx, cred.Username)
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		s.log.Warn().Str("username", cred.Username).Msg("data consistency: credential exists without paired profile")
		return nil, nil, domain.ErrProfileMissing
	case err != nil:
		s.log.Error().Err(err).Str("username", cred.Username).Msg("profile lookup failed")
		if errors.Is(err, domain.ErrRemoteUnavailable) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrRemoteUnavailable, err)
	case profile == nil || profile.Username != cred.Username:
		s.log.Warn().Str("username", cred.Username).Msg("data consistency: profile lookup returned a different user")
		return nil, nil, domain.ErrProfileMissing
	}

	return cred, profile, nil
}

// equalizeTiming spends a bcrypt comparison on unknown usernames so they take
// as long as a wrong password.
func (s *LoginService) equalizeTiming(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("timing-equalizer"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
}
