package user

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"storefront-api/internal/db"
	"storefront-api/internal/domain"
	"storefront-api/internal/logger"
)

const userColumns = `id::text, name, email, password_hash, role, status, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger logrus.FieldLogger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, log logrus.FieldLogger) Repository {
	return &postgresRepo{pool: pool, logger: logger.OrDiscard(log).WithField("repo", "user")}
}

func (r *postgresRepo) Create(ctx context.Context, u domain.User) (*domain.User, error) {
	role := u.Role
	if role == "" {
		role = domain.RoleNormal
	}
	const q = `
INSERT INTO users (name, email, password_hash, role)
VALUES ($1, $2, $3, $4)
RETURNING ` + userColumns
	return r.scanUser(r.pool.QueryRow(ctx, q, u.Name, strings.ToLower(u.Email), u.PasswordHash, role))
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `
SELECT ` + userColumns + `
FROM users
WHERE lower(email) = lower($1) AND status = 'active'
LIMIT 1
`
	return r.scanUser(r.pool.QueryRow(ctx, q, email))
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const q = `
SELECT ` + userColumns + `
FROM users
WHERE id = $1 AND status = 'active'
LIMIT 1
`
	return r.scanUser(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.Status,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if db.IsUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.WithError(err).Error("scan user")
		return nil, err
	}
	return &u, nil
}
