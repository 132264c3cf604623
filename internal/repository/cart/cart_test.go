package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"storefront-api/internal/domain"
	"storefront-api/internal/testdb"
)

func TestPostgres_AddLineCreatesCart(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(t)
	testdb.Reset(ctx, t, pool)

	userID := testdb.InsertUser(ctx, t, pool, "cart@example.com")
	p1 := testdb.InsertProduct(ctx, t, pool, "p1", "10.00", 5)
	p2 := testdb.InsertProduct(ctx, t, pool, "p2", "2.50", 5)

	repo := NewPostgres(pool, nil)
	if _, err := repo.GetActiveByUser(ctx, userID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before first add, got %v", err)
	}

	cart, err := repo.AddLine(ctx, AddLineInput{UserID: userID, ProductID: p1, Quantity: 3, Price: decimal.RequireFromString("10.00")})
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if !cart.TotalPrice.Equal(decimal.RequireFromString("30")) || len(cart.Lines) != 1 {
		t.Fatalf("unexpected cart after first add %+v", cart)
	}
	if cart.Lines[0].Product == nil || cart.Lines[0].Product.Name != "p1" {
		t.Fatalf("expected product display fields, got %+v", cart.Lines[0])
	}

	cart2, err := repo.AddLine(ctx, AddLineInput{UserID: userID, ProductID: p2, Quantity: 2, Price: decimal.RequireFromString("2.50")})
	if err != nil {
		t.Fatalf("AddLine second: %v", err)
	}
	if cart2.ID != cart.ID {
		t.Fatalf("expected the same onGoing cart, got %s and %s", cart.ID, cart2.ID)
	}
	if !cart2.TotalPrice.Equal(decimal.RequireFromString("35")) {
		t.Fatalf("expected total 35, got %s", cart2.TotalPrice)
	}

	_, err = repo.AddLine(ctx, AddLineInput{UserID: userID, ProductID: p1, Quantity: 1, Price: decimal.RequireFromString("10.00")})
	if !errors.Is(err, domain.ErrDuplicateLine) {
		t.Fatalf("expected ErrDuplicateLine, got %v", err)
	}
}

func TestPostgres_ChangeLineGuarded(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(t)
	testdb.Reset(ctx, t, pool)

	userID := testdb.InsertUser(ctx, t, pool, "change@example.com")
	p1 := testdb.InsertProduct(ctx, t, pool, "p1", "4.00", 10)

	repo := NewPostgres(pool, nil)
	cart, err := repo.AddLine(ctx, AddLineInput{UserID: userID, ProductID: p1, Quantity: 2, Price: decimal.RequireFromString("4.00")})
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	line := cart.Lines[0]

	err = repo.ChangeLine(ctx, ChangeLineInput{
		CartID:      cart.ID,
		LineID:      line.ID,
		OldQuantity: 2,
		NewQuantity: 0,
		Status:      domain.LineRemoved,
		TotalDelta:  decimal.RequireFromString("-8"),
	})
	if err != nil {
		t.Fatalf("ChangeLine: %v", err)
	}

	after, err := repo.GetActiveByUser(ctx, userID)
	if err != nil {
		t.Fatalf("GetActiveByUser: %v", err)
	}
	if len(after.Lines) != 0 || !after.TotalPrice.IsZero() {
		t.Fatalf("expected empty cart with zero total, got %+v", after)
	}

	// A second write based on the stale quantity must not apply.
	err = repo.ChangeLine(ctx, ChangeLineInput{
		CartID:      cart.ID,
		LineID:      line.ID,
		OldQuantity: 2,
		NewQuantity: 5,
		Status:      domain.LineActive,
		TotalDelta:  decimal.RequireFromString("12"),
	})
	if !errors.Is(err, domain.ErrInvalidLine) {
		t.Fatalf("expected ErrInvalidLine for stale write, got %v", err)
	}

	// A removed line frees the slot for a fresh one.
	if _, err := repo.AddLine(ctx, AddLineInput{UserID: userID, ProductID: p1, Quantity: 1, Price: decimal.RequireFromString("4.00")}); err != nil {
		t.Fatalf("AddLine after remove: %v", err)
	}
}
