package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was hit.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidProduct is returned when a product is missing, not active, or
	// lacks the requested stock at add-to-cart time.
	ErrInvalidProduct = errors.New("product does not exist or it exceeds the available quantity")
	// ErrDuplicateLine is returned when the cart already holds an active line for the product.
	ErrDuplicateLine = errors.New("you already added this product to the cart")
	// ErrNoActiveCart is returned when the user has no onGoing cart.
	ErrNoActiveCart = errors.New("invalid cart")
	// ErrInvalidLine is returned when the cart has no active line for the product.
	ErrInvalidLine = errors.New("invalid product")
	// ErrExceedsStock is returned when a requested quantity is above the product's stock.
	ErrExceedsStock = errors.New("quantity exceeds available stock")
	// ErrNoChange is returned when an update would leave the line unchanged.
	ErrNoChange = errors.New("you already have that quantity in that product")
	// ErrOutOfStock is returned when a product has no stock left at checkout.
	ErrOutOfStock = errors.New("there is no stock of this product")
	// ErrEmptyCart is returned when checking out a cart with no active lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrStockConflict is returned when concurrent checkouts kept racing on the same products.
	ErrStockConflict = errors.New("stock changed while checking out, please retry")
	// ErrDuplicateRequest is returned when an idempotency key was already used.
	ErrDuplicateRequest = errors.New("duplicate request")
)

// ValidationError carries a client-facing message about bad input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Invalid builds a ValidationError.
func Invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

type detailError struct {
	err error
	msg string
}

func (e *detailError) Error() string { return e.msg }
func (e *detailError) Unwrap() error { return e.err }

// WithDetail returns an error that matches sentinel under errors.Is but
// reads as the formatted message.
func WithDetail(sentinel error, format string, args ...any) error {
	return &detailError{err: sentinel, msg: fmt.Sprintf(format, args...)}
}
