package domain

// FeaturedProductCount is how many products the dashboard highlights.
const FeaturedProductCount = 8

// DashboardSnapshot summarises the remote catalog. It is recomputed on every
// request and never stored.
type DashboardSnapshot struct {
	FeaturedProducts []Product `json:"featured_products"`
	ProductCount     int       `json:"product_count"`
	CustomerCount    int       `json:"customer_count"`
	OrderCount       int       `json:"order_count"`
}

// NewDashboardSnapshot composes a snapshot from complete result sets. Featured
// products keep the order the service returned them in.
func NewDashboardSnapshot(products []Product, customers []Profile, orders []Order) *DashboardSnapshot {
	n := min(len(products), FeaturedProductCount)
	featured := make([]Product, n)
	copy(featured, products[:n])

	return &DashboardSnapshot{
		FeaturedProducts: featured,
		ProductCount:     len(products),
		CustomerCount:    len(customers),
		OrderCount:       len(orders),
	}
}

// EmptyDashboard is what callers render when aggregation fails.
func EmptyDashboard() *DashboardSnapshot {
	return &DashboardSnapshot{FeaturedProducts: []Product{}}
}
