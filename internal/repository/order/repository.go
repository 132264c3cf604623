package order

import (
	"context"

	"github.com/shopspring/decimal"

	"storefront-api/internal/domain"
)

// StockWrite is the product state a checkout line leaves behind. It only
// applies while the product is still at Version.
type StockWrite struct {
	ProductID string
	Version   int
	Quantity  int
	Status    domain.ProductStatus
}

// PlaceLine is one planned cart line. Record controls whether an order line
// is written for it.
type PlaceLine struct {
	CartLineID   string
	CartQuantity int
	Stock        StockWrite
	Record       bool
	Quantity     int
	Price        decimal.Decimal
}

type PlaceOrderInput struct {
	UserID string
	CartID string
	Lines  []PlaceLine
}

type Repository interface {
	// PlaceOrder consumes the cart, writes the order and applies every stock
	// write in one transaction. ErrStockConflict means a product or cart line
	// moved since planning; ErrNoActiveCart means the cart is gone.
	PlaceOrder(ctx context.Context, in PlaceOrderInput) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
}
