package domain

import "time"

// Profile is the customer record owned by the remote profile service. Its
// Username must match the Credential it is paired with.
type Profile struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	Name            string `json:"name"`
	Surname         string `json:"surname"`
	Email           string `json:"email"`
	ShippingAddress string `json:"shipping_address"`
}

// Product is a catalog item served by the remote service.
type Product struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description,omitempty"`
	Price          float64 `json:"price"`
	StockAvailable int     `json:"stock_available"`
	ImageURL       string  `json:"image_url,omitempty"`
}

// Order is a placed order as reported by the remote service.
type Order struct {
	ID          string    `json:"id"`
	CustomerID  string    `json:"customer_id"`
	Username    string    `json:"username"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	TotalPrice  float64   `json:"total_price"`
	OrderDate   time.Time `json:"order_date"`
	Status      string    `json:"status"`
}
