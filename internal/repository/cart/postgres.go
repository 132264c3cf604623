package cart

import (
	"context"
	"errors"

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
	return &postgresRepo{pool: pool, logger: logger.OrDiscard(log).WithField("repo", "cart")}
}

func (r *postgresRepo) GetActiveByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	const cartQuery = `
SELECT id::text, user_id::text, status, total_price::text, created_at
FROM carts
WHERE user_id = $1 AND status = 'onGoing'
`
	var cart domain.Cart
	var status string
	err := r.pool.QueryRow(ctx, cartQuery, userID).Scan(
		&cart.ID,
		&cart.UserID,
		&status,
		&cart.TotalPrice,
		&cart.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.WithError(err).WithField("user_id", userID).Error("get active cart")
		return nil, err
	}
	cart.Status = domain.CartStatus(status)

	const linesQuery = `
SELECT l.id::text, l.cart_id::text, l.product_id::text, l.quantity, l.price::text, l.status, l.created_at,
       p.name, COALESCE(p.description, ''), COALESCE(p.image_url, '')
FROM cart_lines l
JOIN products p ON p.id = l.product_id
WHERE l.cart_id = $1 AND l.status = 'active'
ORDER BY l.created_at ASC
`
	rows, err := r.pool.Query(ctx, linesQuery, cart.ID)
	if err != nil {
		r.logger.WithError(err).WithField("cart_id", cart.ID).Error("list cart lines")
		return nil, err
	}
	defer rows.Close()

	cart.Lines = []domain.CartLine{}
	for rows.Next() {
		var line domain.CartLine
		var lineStatus string
		display := &domain.ProductDisplay{}
		if err := rows.Scan(
			&line.ID,
			&line.CartID,
			&line.ProductID,
			&line.Quantity,
			&line.Price,
			&lineStatus,
			&line.CreatedAt,
			&display.Name,
			&display.Description,
			&display.ImageURL,
		); err != nil {
			return nil, err
		}
		line.Status = domain.LineStatus(lineStatus)
		line.Product = display
		cart.Lines = append(cart.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *postgresRepo) AddLine(ctx context.Context, in AddLineInput) (*domain.Cart, error) {
	var cartID string
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		// The partial unique index keeps a single onGoing cart per user even
		// when two first adds race.
		if _, err := tx.Exec(ctx, `
INSERT INTO carts (user_id)
VALUES ($1)
ON CONFLICT (user_id) WHERE status = 'onGoing' DO NOTHING
`, in.UserID); err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, `
SELECT id::text
FROM carts
WHERE user_id = $1 AND status = 'onGoing'
FOR UPDATE
`, in.UserID).Scan(&cartID); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `
INSERT INTO cart_lines (cart_id, product_id, quantity, price)
VALUES ($1, $2, $3, $4::numeric)
`, cartID, in.ProductID, in.Quantity, in.Price.String()); err != nil {
			if db.IsUniqueViolation(err) {
				return domain.ErrDuplicateLine
			}
			return err
		}

		lineTotal := in.Price.Mul(decimal.NewFromInt(int64(in.Quantity)))
		_, err := tx.Exec(ctx, `
UPDATE carts
SET total_price = total_price + $2::numeric
WHERE id = $1
`, cartID, lineTotal.String())
		return err
	})
	if err != nil {
		if !errors.Is(err, domain.ErrDuplicateLine) {
			r.logger.WithError(err).WithFields(logrus.Fields{"user_id": in.UserID, "product_id": in.ProductID}).Error("add cart line")
		}
		return nil, err
	}
	r.logger.WithFields(logrus.Fields{"cart_id": cartID, "product_id": in.ProductID, "quantity": in.Quantity}).Debug("added cart line")
	return r.GetActiveByUser(ctx, in.UserID)
}

func (r *postgresRepo) ChangeLine(ctx context.Context, in ChangeLineInput) error {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx, `
UPDATE cart_lines
SET quantity = $1, status = $2
WHERE id = $3 AND cart_id = $4 AND status = 'active' AND quantity = $5
`, in.NewQuantity, string(in.Status), in.LineID, in.CartID, in.OldQuantity)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrInvalidLine
		}

		cmd, err = tx.Exec(ctx, `
UPDATE carts
SET total_price = total_price + $2::numeric
WHERE id = $1 AND status = 'onGoing'
`, in.CartID, in.TotalDelta.String())
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrNoActiveCart
		}
		return nil
	})
	if err != nil && !errors.Is(err, domain.ErrInvalidLine) && !errors.Is(err, domain.ErrNoActiveCart) {
		r.logger.WithError(err).WithField("cart_id", in.CartID).Error("change cart line")
	}
	return err
}
