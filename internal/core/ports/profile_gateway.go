package ports

import (
	"context"

	"github.com/abcretailers/identity-gateway/internal/core/domain"
)

// ProfileGateway is the remote profile/catalog service. Implementations map
// every transport failure onto domain.ErrRemoteUnavailable,
// domain.ErrRemoteRejected or domain.ErrProfileNotFound.
type ProfileGateway interface {
	CreateCustomer(ctx context.Context, profile domain.Profile) (*domain.Profile, error)
	GetCustomerByUsername(ctx context.Context, username string) (*domain.Profile, error)
	CatalogReader
	InitializeStorage(ctx context.Context) error
}

// CatalogReader is the read-only slice of the gateway the dashboard needs.
type CatalogReader interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListCustomers(ctx context.Context) ([]domain.Profile, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
}
