package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/abcretailers/identity-gateway/internal/core/domain"
)

func productList(n int) []domain.Product {
	out := make([]domain.Product, n)
	for i := range out {
		out[i] = domain.Product{ID: fmt.Sprintf("p%d", i+1)}
	}
	return out
}

func TestDashboardService_Aggregate_Success(t *testing.T) {
	gw := newStubProfileGateway()
	gw.productsF = func(context.Context) ([]domain.Product, error) { return productList(10), nil }
	gw.customerF = func(context.Context) ([]domain.Profile, error) {
		return []domain.Profile{{ID: "c1"}, {ID: "c2"}}, nil
	}
	gw.ordersF = func(context.Context) ([]domain.Order, error) { return []domain.Order{}, nil }

	snap, err := NewDashboardService(gw, discardLogger).Aggregate(context.Background())
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}
	if len(snap.FeaturedProducts) != 8 {
		t.Fatalf("expected 8 featured, got %d", len(snap.FeaturedProducts))
	}
	for i, p := range snap.FeaturedProducts {
		if want := fmt.Sprintf("p%d", i+1); p.ID != want {
			t.Errorf("featured[%d] = %s, want %s", i, p.ID, want)
		}
	}
	if snap.ProductCount != 10 || snap.CustomerCount != 2 || snap.OrderCount != 0 {
		t.Fatalf("unexpected counts: %+v", snap)
	}
}

func TestDashboardService_Aggregate_OneFailureFailsAll(t *testing.T) {
	customersErr := errors.New("customers: 503")
	gw := newStubProfileGateway()
	gw.productsF = func(context.Context) ([]domain.Product, error) { return productList(3), nil }
	gw.customerF = func(context.Context) ([]domain.Profile, error) { return nil, customersErr }
	gw.ordersF = func(context.Context) ([]domain.Order, error) { return []domain.Order{{ID: "o1"}}, nil }

	snap, err := NewDashboardService(gw, discardLogger).Aggregate(context.Background())
	if !errors.Is(err, domain.ErrAggregationFailed) {
		t.Fatalf("expected ErrAggregationFailed, got %v", err)
	}
	if !errors.Is(err, customersErr) {
		t.Fatalf("expected underlying cause to be preserved, got %v", err)
	}
	if snap != nil {
		t.Fatalf("no partial snapshot expected, got %+v", snap)
	}
}

func TestDashboardService_Aggregate_ReadsOverlap(t *testing.T) {
	var started sync.WaitGroup
	started.Add(3)
	allStarted := make(chan struct{})
	go func() {
		started.Wait()
		close(allStarted)
	}()

	// Each read blocks until all three are in flight; serial calls would time out.
	barrier := func(ctx context.Context) error {
		started.Done()
		select {
		case <-allStarted:
			return nil
		case <-time.After(2 * time.Second):
			return errors.New("reads did not overlap")
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	gw := newStubProfileGateway()
	gw.productsF = func(ctx context.Context) ([]domain.Product, error) { return productList(1), barrier(ctx) }
	gw.customerF = func(ctx context.Context) ([]domain.Profile, error) { return nil, barrier(ctx) }
	gw.ordersF = func(ctx context.Context) ([]domain.Order, error) { return nil, barrier(ctx) }

	if _, err := NewDashboardService(gw, discardLogger).Aggregate(context.Background()); err != nil {
		t.Fatalf("expected concurrent reads to succeed, got %v", err)
	}
}

func TestDashboardService_Aggregate_FailureCancelsInFlightReads(t *testing.T) {
	slowCancelled := make(chan struct{}, 2)
	slow := func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			slowCancelled <- struct{}{}
			return ctx.Err()
		case <-time.After(5 * time.Second):
			return nil
		}
	}

	gw := newStubProfileGateway()
	gw.productsF = func(ctx context.Context) ([]domain.Product, error) { return nil, slow(ctx) }
	gw.customerF = func(context.Context) ([]domain.Profile, error) { return nil, domain.ErrRemoteUnavailable }
	gw.ordersF = func(ctx context.Context) ([]domain.Order, error) { return nil, slow(ctx) }

	start := time.Now()
	_, err := NewDashboardService(gw, discardLogger).Aggregate(context.Background())
	if !errors.Is(err, domain.ErrAggregationFailed) || !errors.Is(err, domain.ErrRemoteUnavailable) {
		t.Fatalf("expected aggregation failure caused by remote outage, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("in-flight reads were not cancelled, took %v", elapsed)
	}
	if len(slowCancelled) != 2 {
		t.Fatalf("expected both slow reads to observe cancellation, got %d", len(slowCancelled))
	}
}

func TestDashboardService_Aggregate_TimeoutIsFailure(t *testing.T) {
	gw := newStubProfileGateway()
	gw.productsF = func(ctx context.Context) ([]domain.Product, error) {
		<-ctx.Done()
		return nil, fmt.Errorf("%w: %w", domain.ErrRemoteUnavailable, ctx.Err())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := NewDashboardService(gw, discardLogger).Aggregate(ctx); !errors.Is(err, domain.ErrAggregationFailed) {
		t.Fatalf("expected ErrAggregationFailed on timeout, got %v", err)
	}
}
