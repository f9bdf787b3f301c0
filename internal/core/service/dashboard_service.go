package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/abcretailers/identity-gateway/internal/core/domain"
	"github.com/abcretailers/identity-gateway/internal/core/ports"
)

// DashboardService fans the three catalog reads out concurrently and joins
// them all-or-nothing.
type DashboardService struct {
	catalog ports.CatalogReader
	log     zerolog.Logger
}

func NewDashboardService(catalog ports.CatalogReader, log zerolog.Logger) *DashboardService {
	return &DashboardService{catalog: catalog, log: log}
}

// Aggregate returns a snapshot only when all three reads succeed. The first
// failure cancels the reads still in flight.
func (s *DashboardService) Aggregate(ctx context.Context) (*domain.DashboardSnapshot, error) {
	start := time.Now()

	var (
		products  []domain.Product
		customers []domain.Profile
		orders    []domain.Order
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if products, err = s.catalog.ListProducts(gctx); err != nil {
			return fmt.Errorf("list products: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if customers, err = s.catalog.ListCustomers(gctx); err != nil {
			return fmt.Errorf("list customers: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if orders, err = s.catalog.ListOrders(gctx); err != nil {
			return fmt.Errorf("list orders: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		s.log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("dashboard aggregation failed")
		return nil, fmt.Errorf("%w: %w", domain.ErrAggregationFailed, err)
	}

	snapshot := domain.NewDashboardSnapshot(products, customers, orders)
	s.log.Debug().
		Int("products", snapshot.ProductCount).
		Int("customers", snapshot.CustomerCount).
		Int("orders", snapshot.OrderCount).
		Dur("elapsed", time.Since(start)).
		Msg("dashboard aggregated")
	return snapshot, nil
}
