// Package notify delivers order confirmations off the request path.
package notify

import (
	"context"

	"github.com/shopspring/decimal"
)

// Item is one purchased product as shown to the customer.
type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Confirmation is the message sent after a successful checkout.
type Confirmation struct {
	OrderID    string          `json:"orderId"`
	UserID     string          `json:"userId"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Items      []Item          `json:"products"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// Sink delivers a confirmation somewhere.
type Sink interface {
	Send(ctx context.Context, c Confirmation) error
}
