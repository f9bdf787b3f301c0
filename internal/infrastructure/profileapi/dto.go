package profileapi

import (
	"time"

	"github.com/abcretailers/identity-gateway/internal/core/domain"
)

type customerDTO struct {
	CustomerID      string `json:"customerId,omitempty"`
	Username        string `json:"username"`
	Name            string `json:"name"`
	Surname         string `json:"surname"`
	Email           string `json:"email"`
	ShippingAddress string `json:"shippingAddress"`
}

func customerFromDomain(p domain.Profile) customerDTO {
	return customerDTO{
		CustomerID:      p.ID,
		Username:        p.Username,
		Name:            p.Name,
		Surname:         p.Surname,
		Email:           p.Email,
		ShippingAddress: p.ShippingAddress,
	}
}

func (d customerDTO) toDomain() domain.Profile {
	return domain.Profile{
		ID:              d.CustomerID,
		Username:        d.Username,
		Name:            d.Name,
		Surname:         d.Surname,
		Email:           d.Email,
		ShippingAddress: d.ShippingAddress,
	}
}

type productDTO struct {
	ProductID      string  `json:"productId"`
	ProductName    string  `json:"productName"`
	Description    string  `json:"description"`
	Price          float64 `json:"price"`
	StockAvailable int     `json:"stockAvailable"`
	ImageURL       string  `json:"imageUrl"`
}

func (d productDTO) toDomain() domain.Product {
	return domain.Product{
		ID:             d.ProductID,
		Name:           d.ProductName,
		Description:    d.Description,
		Price:          d.Price,
		StockAvailable: d.StockAvailable,
		ImageURL:       d.ImageURL,
	}
}

type orderDTO struct {
	OrderID     string    `json:"orderId"`
	CustomerID  string    `json:"customerId"`
	Username    string    `json:"username"`
	ProductID   string    `json:"productId"`
	ProductName string    `json:"productName"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unitPrice"`
	TotalPrice  float64   `json:"totalPrice"`
	OrderDate   time.Time `json:"orderDate"`
	Status      string    `json:"status"`
}

func (d orderDTO) toDomain() domain.Order {
	return domain.Order{
		ID:          d.OrderID,
		CustomerID:  d.CustomerID,
		Username:    d.Username,
		ProductID:   d.ProductID,
		ProductName: d.ProductName,
		Quantity:    d.Quantity,
		UnitPrice:   d.UnitPrice,
		TotalPrice:  d.TotalPrice,
		OrderDate:   d.OrderDate,
		Status:      d.Status,
	}
}
