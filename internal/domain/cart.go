package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CartStatus string

const (
	CartOnGoing   CartStatus = "onGoing"
	CartPurchased CartStatus = "purchased"
)

type LineStatus string

const (
	LineActive    LineStatus = "active"
	LineRemoved   LineStatus = "removed"
	LinePurchased LineStatus = "purchased"
)

type Cart struct {
	ID         string          `json:"id"`
	UserID     string          `json:"-"`
	Status     CartStatus      `json:"-"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	CreatedAt  time.Time       `json:"createdAt"`
	Lines      []CartLine      `json:"products"`
}

type CartLine struct {
	ID        string          `json:"id"`
	CartID    string          `json:"-"`
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Status    LineStatus      `json:"-"`
	CreatedAt time.Time       `json:"createdAt"`
	Product   *ProductDisplay `json:"product,omitempty"`
}

// ProductDisplay is the public part of a product shown next to a cart line.
type ProductDisplay struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// LineTotal is quantity × price.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
