package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"storefront-api/internal/domain"
	"storefront-api/internal/logger"
)

const productColumns = `id::text, user_id::text, key, name, COALESCE(description, ''), COALESCE(image_url, ''), price::text, quantity, status, version, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger logrus.FieldLogger
}

func NewPostgres(pool *pgxpool.Pool, log logrus.FieldLogger) Repository {
	return &postgresRepo{pool: pool, logger: logger.OrDiscard(log).WithField("repo", "product")}
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	q := `
SELECT ` + productColumns + `
FROM products
WHERE status <> 'inactive'
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.WithError(err).Error("list products")
		return nil, err
	}
	defer rows.Close()

	result := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.WithError(err).Error("list products rows")
		return nil, err
	}
	r.logger.WithField("count", len(result)).Debug("listed products")
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	q := `
SELECT ` + productColumns + `
FROM products
WHERE id = $1
`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WithField("product_id", id).Debug("product not found")
			return nil, domain.ErrNotFound
		}
		r.logger.WithError(err).WithField("product_id", id).Error("get product")
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	q := `
INSERT INTO products (id, user_id, key, name, description, image_url, price, quantity, status)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7::numeric, $8, $9)
ON CONFLICT (key) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    image_url = EXCLUDED.image_url,
    price = EXCLUDED.price,
    quantity = EXCLUDED.quantity,
    status = EXCLUDED.status,
    version = products.version + 1
RETURNING ` + productColumns
	status := product.Status
	if status == "" {
		status = domain.ProductActive
	}
	res, err := scanProduct(r.pool.QueryRow(ctx, q,
		product.ID,
		product.SellerID,
		product.Key,
		product.Name,
		product.Description,
		product.ImageURL,
		product.Price.String(),
		product.Quantity,
		string(status),
	))
	if err != nil {
		r.logger.WithError(err).WithField("key", product.Key).Error("upsert product")
		return nil, err
	}
	if product.ID != "" && res.ID != product.ID {
		return nil, fmt.Errorf("product repo: id mismatch for key=%s existing_id=%s import_id=%s", product.Key, res.ID, product.ID)
	}
	r.logger.WithFields(logrus.Fields{"key": res.Key, "product_id": res.ID}).Debug("upserted product")
	return res, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	var status string
	if err := row.Scan(
		&p.ID,
		&p.SellerID,
		&p.Key,
		&p.Name,
		&p.Description,
		&p.ImageURL,
		&p.Price,
		&p.Quantity,
		&status,
		&p.Version,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	p.Status = domain.ProductStatus(status)
	return &p, nil
}
