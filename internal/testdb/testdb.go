// Package testdb hands integration tests a migrated Postgres pool.
package testdb

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"storefront-api/internal/migrate"
)

var (
	once   sync.Once
	dsn    string
	setErr error
)

// Pool connects to TEST_DB_DSN, or to a disposable postgres container when
// the variable is unset, and applies migrations. Each test binary works in
// its own schema, so packages run by `go test ./...` in parallel never see
// each other's rows. The calling test is skipped when no database can be
// reached.
func Pool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}
	once.Do(func() {
		base := os.Getenv("TEST_DB_DSN")
		if base == "" {
			base, setErr = startContainer()
			if setErr != nil {
				return
			}
		}
		dsn, setErr = isolatedSchema(base)
	})
	if setErr != nil {
		t.Skipf("postgres not available: %v", setErr)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("postgres not available: %v", err)
	}
	if err := migrate.Apply(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("apply migrations: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// isolatedSchema creates a fresh schema and returns base with its
// search_path pointing there.
func isolatedSchema(base string) (string, error) {
	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, base)
	if err != nil {
		return "", err
	}
	defer pool.Close()
	if _, err := pool.Exec(ctx, "CREATE SCHEMA "+schema); err != nil {
		return "", fmt.Errorf("create schema %s: %w", schema, err)
	}
	return withSearchPath(base, schema)
}

func withSearchPath(dsn, schema string) (string, error) {
	if !strings.Contains(dsn, "://") {
		return dsn + " search_path=" + schema, nil
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}
	q := u.Query()
	q.Set("search_path", schema)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Reset empties every table in the test schema.
func Reset(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE order_lines, orders, cart_lines, carts, products, tokens, users RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

// InsertUser creates a bare user row and returns its id.
func InsertUser(ctx context.Context, t *testing.T, pool *pgxpool.Pool, email string) string {
	t.Helper()
	var id string
	err := pool.QueryRow(ctx, `INSERT INTO users (name, email, password_hash) VALUES ('Test', $1, 'x') RETURNING id::text`, email).Scan(&id)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return id
}

// InsertProduct creates an active product and returns its id.
func InsertProduct(ctx context.Context, t *testing.T, pool *pgxpool.Pool, key, price string, quantity int) string {
	t.Helper()
	var id string
	err := pool.QueryRow(ctx, `
INSERT INTO products (key, name, price, quantity)
VALUES ($1, $1, $2::numeric, $3)
RETURNING id::text
`, key, price, quantity).Scan(&id)
	if err != nil {
		t.Fatalf("insert product: %v", err)
	}
	return id
}

func startContainer() (string, error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return "", fmt.Errorf("docker pool: %w", err)
	}
	if err := pool.Client.Ping(); err != nil {
		return "", fmt.Errorf("docker ping: %w", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=storefront",
			"POSTGRES_PASSWORD=storefront",
			"POSTGRES_DB=storefront_test",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return "", fmt.Errorf("start postgres: %w", err)
	}
	// The container removes itself once the test binary is long gone.
	_ = resource.Expire(600)

	connURL := fmt.Sprintf("postgres://storefront:storefront@%s/storefront_test?sslmode=disable", resource.GetHostPort("5432/tcp"))

	pool.MaxWait = 60 * time.Second
	err = pool.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		p, err := pgxpool.New(ctx, connURL)
		if err != nil {
			return err
		}
		defer p.Close()
		return p.Ping(ctx)
	})
	if err != nil {
		_ = pool.Purge(resource)
		return "", fmt.Errorf("wait for postgres: %w", err)
	}
	return connURL, nil
}
