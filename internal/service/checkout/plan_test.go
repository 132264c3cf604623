package checkout

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"storefront-api/internal/domain"
	orderrepo "storefront-api/internal/repository/order"
)

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func product(qty int) domain.Product {
	return domain.Product{ID: "p1", Name: "Lamp", Price: dec("10"), Quantity: qty, Status: domain.ProductActive, Version: 7}
}

func line(qty int) domain.CartLine {
	return domain.CartLine{ID: "l1", ProductID: "p1", Quantity: qty, Price: dec("10"), Status: domain.LineActive}
}

func TestPlanLine_Decrement(t *testing.T) {
	got := planLine(line(3), product(5), false)

	want := orderrepo.PlaceLine{
		CartLineID:   "l1",
		CartQuantity: 3,
		Stock:        orderrepo.StockWrite{ProductID: "p1", Version: 7, Quantity: 2, Status: domain.ProductActive},
		Record:       true,
		Quantity:     3,
		Price:        dec("10"),
	}
	if got.outcome != outcomeDecrement {
		t.Fatalf("expected decrement, got %s", got.outcome)
	}
	if diff := cmp.Diff(want, got.write, decimalEqual); diff != "" {
		t.Fatalf("write mismatch (-want +got):\n%s", diff)
	}
	if total := itemsTotal([]Item{got.item}); !total.Equal(dec("30")) {
		t.Fatalf("expected total 30, got %s", total)
	}
}

func TestPlanLine_PartialProratesPrice(t *testing.T) {
	got := planLine(line(5), product(2), false)

	if got.outcome != outcomePartial {
		t.Fatalf("expected partial, got %s", got.outcome)
	}
	want := orderrepo.PlaceLine{
		CartLineID:   "l1",
		CartQuantity: 5,
		Stock:        orderrepo.StockWrite{ProductID: "p1", Version: 7, Quantity: 0, Status: domain.ProductSoldOut},
		Record:       true,
		Quantity:     2,
		Price:        dec("4"), // (2 × 10) / 5
	}
	if diff := cmp.Diff(want, got.write, decimalEqual); diff != "" {
		t.Fatalf("write mismatch (-want +got):\n%s", diff)
	}
	wantItem := Item{ProductID: "p1", Name: "Lamp", Quantity: 2, Price: dec("4")}
	if diff := cmp.Diff(wantItem, got.item, decimalEqual); diff != "" {
		t.Fatalf("item mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanLine_PartialRoundsToCents(t *testing.T) {
	l := line(3)
	l.Price = dec("9.99")
	got := planLine(l, product(1), false)
	// 1 × 9.99 / 3 = 3.33
	if !got.write.Price.Equal(dec("3.33")) {
		t.Fatalf("expected 3.33, got %s", got.write.Price)
	}
}

func TestPlanLine_ExhaustedRecordsOnlyWhenAsked(t *testing.T) {
	got := planLine(line(3), product(3), false)
	if got.outcome != outcomeExhausted || got.write.Record {
		t.Fatalf("expected unrecorded exhausted line, got %+v", got)
	}
	if got.write.Stock.Quantity != 0 || got.write.Stock.Status != domain.ProductSoldOut {
		t.Fatalf("expected product sold out, got %+v", got.write.Stock)
	}
	if got.item.Quantity != 3 {
		t.Fatalf("exhausted line still reports the purchase, got %+v", got.item)
	}

	recorded := planLine(line(3), product(3), true)
	if !recorded.write.Record {
		t.Fatalf("expected exhausted line to be recorded when enabled")
	}
}

func TestPlanLine_OutOfStock(t *testing.T) {
	got := planLine(line(1), product(0), false)
	if got.outcome != outcomeOutOfStock {
		t.Fatalf("expected out of stock, got %s", got.outcome)
	}
	if got.product != "Lamp" {
		t.Fatalf("expected product name for the error, got %q", got.product)
	}
}
