package ports

import (
	"context"

	"github.com/abcretailers/identity-gateway/internal/core/domain"
)

// ProfileFields carries the business attributes of a new customer.
type ProfileFields struct {
	Name            string
	Surname         string
	Email           string
	ShippingAddress string
}

// RegistrationInput is the DTO passed from the transport layer to RegistrationService.
type RegistrationInput struct {
	Username string
	Password string
	Role     string
	Profile  ProfileFields
}

// RegistrationService creates an identity pair or nothing.
type RegistrationService interface {
	Register(ctx context.Context, input RegistrationInput) error
}

// LoginService verifies credentials and resolves the paired profile.
type LoginService interface {
	Verify(ctx context.Context, username, password string) (*domain.Credential, *domain.Profile, error)
}

// SessionService issues, resolves and invalidates sessions.
type SessionService interface {
	Issue(ctx context.Context, cred *domain.Credential, profile *domain.Profile) (string, *domain.Session, error)
	Resolve(ctx context.Context, token string) (*domain.Session, error)
	Invalidate(ctx context.Context, sessionID string) error
	Revoke(ctx context.Context, token string) error
}

// DashboardService aggregates catalog statistics.
type DashboardService interface {
	Aggregate(ctx context.Context) (*domain.DashboardSnapshot, error)
}
