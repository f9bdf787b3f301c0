package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/abcretailers/identity-gateway/internal/core/domain"
	"github.com/abcretailers/identity-gateway/internal/core/ports"
)

const (
	minPasswordLength   = 8
	maxPasswordLength   = 72 // bcrypt input limit
	maxUsernameLength   = 100
	compensationTimeout = 5 * time.Second
)

// RegistrationService writes the credential locally, then the profile
// remotely, and deletes the credential again if the remote write fails.
type RegistrationService struct {
	credentials ports.CredentialRepository
	profiles    ports.ProfileGateway
	orphans     ports.OrphanLog
	log         zerolog.Logger
	hashCost    int
	now         func() time.Time
}

func NewRegistrationService(
	credentials ports.CredentialRepository,
	profiles ports.ProfileGateway,
	orphans ports.OrphanLog,
	log zerolog.Logger,
) *RegistrationService {
	return &RegistrationService{
		credentials: credentials,
		profiles:    profiles,
		orphans:     orphans,
		log:         log,
		hashCost:    bcrypt.DefaultCost,
		now:         time.Now,
	}
}

// Register creates the identity pair for input.Username. It returns
// domain.ErrInconsistentState only when the pair is left half-written.
func (s *RegistrationService) Register(ctx context.Context, in ports.RegistrationInput) error {
	role, err := validateRegistration(in)
	if err != nil {
		return err
	}

	// 1. Duplicate check: no writes on a hit.
	existing, err := s.credentials.FindByUsername(ctx, in.Username)
	switch {
	case err == nil && existing != nil:
		return domain.ErrDuplicateUsername
	case err != nil && !errors.Is(err, domain.ErrCredentialNotFound):
		s.log.Error().Err(err).Str("username", in.Username).Msg("credential lookup failed")
		return fmt.Errorf("%w: lookup: %w", domain.ErrLocalWriteFailed, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return fmt.Errorf("%w: hash password: %w", domain.ErrLocalWriteFailed, err)
	}

	cred := &domain.Credential{
		Username:     in.Username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}

	// 2. Local write always precedes the remote one.
	if err := s.credentials.Insert(ctx, cred); err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) {
			s.log.Info().Str("username", in.Username).Msg("concurrent registration rejected by unique constraint")
			return domain.ErrDuplicateUsername
		}
		s.log.Error().Err(err).Str("username", in.Username).Msg("credential insert failed")
		return fmt.Errorf("%w: %w", domain.ErrLocalWriteFailed, err)
	}

	// 3. Remote write, compensated on failure.
	_, err = s.profiles.CreateCustomer(ctx, domain.Profile{
		Username:        in.Username,
		Name:            in.Profile.Name,
		Surname:         in.Profile.Surname,
		Email:           in.Profile.Email,
		ShippingAddress: in.Profile.ShippingAddress,
	})
	if err != nil {
		return s.compensate(ctx, cred, err)
	}

	s.log.Info().Str("username", cred.Username).Str("role", string(cred.Role)).Msg("identity registered")
	return nil
}

// compensate undoes the credential insert after a failed profile write.
func (s *RegistrationService) compensate(ctx context.Context, cred *domain.Credential, cause error) error {
	// Detached from the caller's cancellation, bounded by compensationTimeout.
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	delErr := s.credentials.Delete(cctx, cred.Username)
	if delErr == nil {
		s.log.Warn().Err(cause).Str("username", cred.Username).Msg("profile write failed, credential rolled back")
		return fmt.Errorf("%w: %w", domain.ErrRemoteWriteFailed, cause)
	}

	s.log.Error().
		Err(delErr).
		Str("username", cred.Username).
		Str("cause", cause.Error()).
		Msg("orphaned credential: compensation failed, manual reconciliation required")

	orphan := domain.OrphanedCredential{
		Username:          cred.Username,
		Role:              cred.Role,
		Cause:             cause.Error(),
		CompensationError: delErr.Error(),
		DetectedAt:        s.now().UTC(),
	}
	if err := s.orphans.RecordOrphan(cctx, orphan); err != nil {
		s.log.Error().Err(err).Str("username", cred.Username).Msg("failed to record orphaned credential")
	}

	return fmt.Errorf("%w: %w (compensation: %v)", domain.ErrInconsistentState, cause, delErr)
}

func validateRegistration(in ports.RegistrationInput) (domain.Role, error) {
	if strings.TrimSpace(in.Username) == "" || len(in.Username) > maxUsernameLength {
		return "", fmt.Errorf("%w: username is required and at most %d characters", domain.ErrInvalidRegistration, maxUsernameLength)
	}
	if len(in.Password) < minPasswordLength || len(in.Password) > maxPasswordLength {
		return "", fmt.Errorf("%w: password must be %d-%d characters", domain.ErrInvalidRegistration, minPasswordLength, maxPasswordLength)
	}
	role, ok := domain.ParseRole(in.Role)
	if !ok {
		return "", fmt.Errorf("%w: unknown role %q", domain.ErrInvalidRegistration, in.Role)
	}
	p := in.Profile
	for _, f := range []string{p.Name, p.Surname, p.Email, p.ShippingAddress} {
		if strings.TrimSpace(f) == "" {
			return "", fmt.Errorf("%w: profile fields are required", domain.ErrInvalidRegistration)
		}
	}
	return role, nil
}
