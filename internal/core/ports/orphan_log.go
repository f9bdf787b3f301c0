package ports

import (
	"context"

	"github.com/abcretailers/identity-gateway/internal/core/domain"
)

// OrphanLog durably records credentials left without a profile so that an
// operator can reconcile them.
type OrphanLog interface {
	RecordOrphan(ctx context.Context, orphan domain.OrphanedCredential) error
}

// OrphanReader lists recorded orphans for operators, newest first.
type OrphanReader interface {
	ListOrphans(ctx context.Context, limit int64) ([]domain.OrphanedCredential, error)
}

// OrphanResolver marks every open record for username as reconciled.
type OrphanResolver interface {
	ResolveOrphan(ctx context.Context, username string) error
}
