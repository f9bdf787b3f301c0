package ports

import (
	"context"

	"github.com/abcretailers/identity-gateway/internal/core/domain"
)

// CredentialRepository is the local relational credential store. Username
// uniqueness is enforced by the store itself.
type CredentialRepository interface {
	// FindByUsername returns domain.ErrCredentialNotFound when no row matches.
	FindByUsername(ctx context.Context, username string) (*domain.Credential, error)
	// Insert returns domain.ErrDuplicateUsername on a uniqueness violation.
	Insert(ctx context.Context, cred *domain.Credential) error
	// Delete removes the credential. Deleting a missing username is not an error.
	Delete(ctx context.Context, username string) error
}
