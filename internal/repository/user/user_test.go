package user

import (
	"context"
	"errors"
	"testing"

	"storefront-api/internal/domain"
	"storefront-api/internal/testdb"
)

func TestPostgres_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(t)
	testdb.Reset(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	created, err := repo.Create(ctx, domain.User{Name: "Ada", Email: "Ada@Example.com", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Email != "ada@example.com" || created.Role != domain.RoleNormal || created.Status != domain.UserActive {
		t.Fatalf("unexpected user %+v", created)
	}

	byEmail, err := repo.GetByEmail(ctx, "ADA@example.com")
	if err != nil || byEmail.ID != created.ID {
		t.Fatalf("GetByEmail: %+v %v", byEmail, err)
	}
	byID, err := repo.GetByID(ctx, created.ID)
	if err != nil || byID.Email != created.Email {
		t.Fatalf("GetByID: %+v %v", byID, err)
	}

	if _, err := repo.Create(ctx, domain.User{Name: "Other", Email: "ada@example.com", PasswordHash: "x"}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if _, err := repo.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
