package checkout

import (
	"github.com/shopspring/decimal"

	"storefront-api/internal/domain"
	orderrepo "storefront-api/internal/repository/order"
)

type outcome int

const (
	outcomeDecrement outcome = iota
	outcomePartial
	outcomeExhausted
	outcomeOutOfStock
)

func (o outcome) String() string {
	switch o {
	case outcomeDecrement:
		return "decrement"
	case outcomePartial:
		return "partial"
	case outcomeExhausted:
		return "exhausted"
	default:
		return "out_of_stock"
	}
}

// Item is one entry of the purchase as reported to the customer.
type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type plannedLine struct {
	outcome outcome
	product string
	write   orderrepo.PlaceLine
	item    Item
}

// planLine decides what a cart line does against the current product row.
// Lines asking for more than is left are fulfilled with what remains, at a
// unit price scaled down so the line total stays proportional.
func planLine(line domain.CartLine, p domain.Product, recordExhausted bool) plannedLine {
	planned := plannedLine{product: p.Name}
	if p.Quantity <= 0 {
		planned.outcome = outcomeOutOfStock
		return planned
	}

	write := orderrepo.PlaceLine{
		CartLineID:   line.ID,
		CartQuantity: line.Quantity,
		Stock: orderrepo.StockWrite{
			ProductID: p.ID,
			Version:   p.Version,
			Status:    p.Status,
		},
		Record:   true,
		Quantity: line.Quantity,
		Price:    line.Price,
	}

	remaining := p.Quantity - line.Quantity
	switch {
	case remaining < 0:
		planned.outcome = outcomePartial
		write.Stock.Quantity = 0
		write.Stock.Status = domain.ProductSoldOut
		write.Quantity = p.Quantity
		write.Price = line.Price.
			Mul(decimal.NewFromInt(int64(p.Quantity))).
			DivRound(decimal.NewFromInt(int64(line.Quantity)), 2)
	case remaining == 0:
		planned.outcome = outcomeExhausted
		write.Stock.Quantity = 0
		write.Stock.Status = domain.ProductSoldOut
		write.Record = recordExhausted
	default:
		planned.outcome = outcomeDecrement
		write.Stock.Quantity = remaining
	}

	planned.write = write
	planned.item = Item{
		ProductID: p.ID,
		Name:      p.Name,
		Quantity:  write.Quantity,
		Price:     write.Price,
	}
	return planned
}

func itemsTotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}
