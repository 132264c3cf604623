package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID         string          `json:"id"`
	UserID     string          `json:"userId"`
	CartID     string          `json:"-"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Date       time.Time       `json:"date"`
	CreatedAt  time.Time       `json:"createdAt"`
	Lines      []OrderLine     `json:"products"`
}

type OrderLine struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"-"`
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"createdAt"`
}
