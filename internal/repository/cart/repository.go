package cart

import (
	"context"

	"github.com/shopspring/decimal"

	"storefront-api/internal/domain"
)

// AddLineInput describes a new line for the user's onGoing cart. Price is the
// product price at add time.
type AddLineInput struct {
	UserID    string
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}

// ChangeLineInput rewrites one active line. The write only applies while the
// line still holds OldQuantity; TotalDelta is added to the cart total.
type ChangeLineInput struct {
	CartID      string
	LineID      string
	OldQuantity int
	NewQuantity int
	Status      domain.LineStatus
	TotalDelta  decimal.Decimal
}

type Repository interface {
	// GetActiveByUser returns the onGoing cart with its active lines, or ErrNotFound.
	GetActiveByUser(ctx context.Context, userID string) (*domain.Cart, error)
	AddLine(ctx context.Context, in AddLineInput) (*domain.Cart, error)
	ChangeLine(ctx context.Context, in ChangeLineInput) error
}
