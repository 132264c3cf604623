package order

import (
	"context"
	"errors"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"storefront-api/internal/db"
	"storefront-api/internal/domain"
	"storefront-api/internal/logger"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger logrus.FieldLogger
}

func NewPostgres(pool *pgxpool.Pool, log logrus.FieldLogger) Repository {
	return &postgresRepo{pool: pool, logger: logger.OrDiscard(log).WithField("repo", "order")}
}

func (r *postgresRepo) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*domain.Order, error) {
	// Lock products in a stable order so concurrent checkouts cannot deadlock.
	lines := make([]PlaceLine, len(in.Lines))
	copy(lines, in.Lines)
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Stock.ProductID < lines[j].Stock.ProductID
	})

	var order domain.Order
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var total decimal.Decimal
		err := tx.QueryRow(ctx, `
UPDATE carts
SET status = 'purchased'
WHERE id = $1 AND user_id = $2 AND status = 'onGoing'
RETURNING total_price::text
`, in.CartID, in.UserID).Scan(&total)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNoActiveCart
			}
			return err
		}

		// The cart row is locked now. A line added after planning makes the
		// plan stale.
		var active int
		if err := tx.QueryRow(ctx, `
SELECT count(*) FROM cart_lines WHERE cart_id = $1 AND status = 'active'
`, in.CartID).Scan(&active); err != nil {
			return err
		}
		if active != len(lines) {
			return domain.ErrStockConflict
		}

		if err := tx.QueryRow(ctx, `
INSERT INTO orders (user_id, cart_id, total_price, date)
VALUES ($1, $2, $3::numeric, CURRENT_DATE)
RETURNING id::text, user_id::text, cart_id::text, total_price::text, date, created_at
`, in.UserID, in.CartID, total.String()).Scan(
			&order.ID,
			&order.UserID,
			&order.CartID,
			&order.TotalPrice,
			&order.Date,
			&order.CreatedAt,
		); err != nil {
			return err
		}

		order.Lines = []domain.OrderLine{}
		for _, line := range lines {
			cmd, err := tx.Exec(ctx, `
UPDATE products
SET quantity = $2, status = $3, version = version + 1
WHERE id = $1 AND version = $4
`, line.Stock.ProductID, line.Stock.Quantity, string(line.Stock.Status), line.Stock.Version)
			if err != nil {
				return err
			}
			if cmd.RowsAffected() == 0 {
				return domain.ErrStockConflict
			}

			cmd, err = tx.Exec(ctx, `
UPDATE cart_lines
SET status = 'purchased'
WHERE id = $1 AND cart_id = $2 AND status = 'active' AND quantity = $3
`, line.CartLineID, in.CartID, line.CartQuantity)
			if err != nil {
				return err
			}
			if cmd.RowsAffected() == 0 {
				return domain.ErrStockConflict
			}

			if !line.Record {
				continue
			}
			var ol domain.OrderLine
			if err := tx.QueryRow(ctx, `
INSERT INTO order_lines (order_id, product_id, quantity, price)
VALUES ($1, $2, $3, $4::numeric)
RETURNING id::text, order_id::text, product_id::text, quantity, price::text, created_at
`, order.ID, line.Stock.ProductID, line.Quantity, line.Price.String()).Scan(
				&ol.ID,
				&ol.OrderID,
				&ol.ProductID,
				&ol.Quantity,
				&ol.Price,
				&ol.CreatedAt,
			); err != nil {
				return err
			}
			order.Lines = append(order.Lines, ol)
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrStockConflict):
			r.logger.WithField("cart_id", in.CartID).Info("stock moved during checkout commit")
		case errors.Is(err, domain.ErrNoActiveCart):
		default:
			r.logger.WithError(err).WithField("cart_id", in.CartID).Error("place order")
		}
		return nil, err
	}
	r.logger.WithFields(logrus.Fields{"order_id": order.ID, "lines": len(order.Lines)}).Info("placed order")
	return &order, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	const ordersQuery = `
SELECT id::text, user_id::text, cart_id::text, total_price::text, date, created_at
FROM orders
WHERE user_id = $1
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, ordersQuery, userID)
	if err != nil {
		r.logger.WithError(err).WithField("user_id", userID).Error("list orders")
		return nil, err
	}
	defer rows.Close()

	orders := []domain.Order{}
	index := map[string]int{}
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.CartID, &o.TotalPrice, &o.Date, &o.CreatedAt); err != nil {
			return nil, err
		}
		o.Lines = []domain.OrderLine{}
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	const linesQuery = `
SELECT l.id::text, l.order_id::text, l.product_id::text, l.quantity, l.price::text, l.created_at
FROM order_lines l
JOIN orders o ON o.id = l.order_id
WHERE o.user_id = $1
ORDER BY l.created_at ASC
`
	lineRows, err := r.pool.Query(ctx, linesQuery, userID)
	if err != nil {
		r.logger.WithError(err).WithField("user_id", userID).Error("list order lines")
		return nil, err
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var l domain.OrderLine
		if err := lineRows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity, &l.Price, &l.CreatedAt); err != nil {
			return nil, err
		}
		if i, ok := index[l.OrderID]; ok {
			orders[i].Lines = append(orders[i].Lines, l)
		}
	}
	return orders, lineRows.Err()
}
