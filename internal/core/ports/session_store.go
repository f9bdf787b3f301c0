package ports

import (
	"context"

	"github.com/abcretailers/identity-gateway/internal/core/domain"
)

// SessionStore is the session table addressed by session ID.
type SessionStore interface {
	Save(ctx context.Context, session *domain.Session) error
	// Get returns domain.ErrSessionNotFound for unknown IDs.
	Get(ctx context.Context, id string) (*domain.Session, error)
	// Delete is idempotent.
	Delete(ctx context.Context, id string) error
}
