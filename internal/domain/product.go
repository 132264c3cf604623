package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductSoldOut  ProductStatus = "soldOut"
	ProductInactive ProductStatus = "inactive"
)

type Product struct {
	ID          string          `json:"id"`
	SellerID    *string         `json:"-"`
	Key         string          `json:"key"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Status      ProductStatus   `json:"status"`
	Version     int             `json:"-"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Purchasable reports whether qty units can be added to a cart right now.
func (p Product) Purchasable(qty int) bool {
	return p.Status == ProductActive && qty <= p.Quantity
}
