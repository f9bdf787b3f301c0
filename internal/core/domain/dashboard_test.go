package domain

import (
	"fmt"
	"testing"
)

func products(n int) []Product {
	out := make([]Product, n)
	for i := range out {
		out[i] = Product{ID: fmt.Sprintf("p%d", i+1), Name: fmt.Sprintf("Product %d", i+1)}
	}
	return out
}

func TestNewDashboardSnapshot_TakesFirstEight(t *testing.T) {
	snap := NewDashboardSnapshot(products(10), []Profile{{ID: "c1"}, {ID: "c2"}}, nil)

	if len(snap.FeaturedProducts) != 8 {
		t.Fatalf("expected 8 featured products, got %d", len(snap.FeaturedProducts))
	}
	for i, p := range snap.FeaturedProducts {
		if want := fmt.Sprintf("p%d", i+1); p.ID != want {
			t.Errorf("featured[%d]: expected %s, got %s", i, want, p.ID)
		}
	}
	if snap.ProductCount != 10 || snap.CustomerCount != 2 || snap.OrderCount != 0 {
		t.Fatalf("unexpected counts: %+v", snap)
	}
}

func TestNewDashboardSnapshot_FewerThanEight(t *testing.T) {
	snap := NewDashboardSnapshot(products(3), nil, []Order{{ID: "o1"}})

	if len(snap.FeaturedProducts) != 3 {
		t.Fatalf("expected 3 featured products, got %d", len(snap.FeaturedProducts))
	}
	if snap.OrderCount != 1 {
		t.Fatalf("expected 1 order, got %d", snap.OrderCount)
	}
}

func TestNewDashboardSnapshot_DoesNotAliasInput(t *testing.T) {
	in := products(2)
	snap := NewDashboardSnapshot(in, nil, nil)
	in[0].Name = "changed"

	if snap.FeaturedProducts[0].Name == "changed" {
		t.Fatal("snapshot must not share backing array with input")
	}
}

func TestEmptyDashboard(t *testing.T) {
	snap := EmptyDashboard()
	if snap.FeaturedProducts == nil || len(snap.FeaturedProducts) != 0 {
		t.Fatalf("expected empty non-nil featured list, got %v", snap.FeaturedProducts)
	}
}
