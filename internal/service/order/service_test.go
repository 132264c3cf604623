package order

import (
	"context"
	"testing"

	"storefront-api/internal/domain"
)

type stubRepo struct {
	orders   []domain.Order
	lastUser string
}

func (s *stubRepo) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	s.lastUser = userID
	return s.orders, nil
}

func TestListForUser_EmptyIsNotNil(t *testing.T) {
	repo := &stubRepo{}
	got, err := New(repo).ListForUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
	if repo.lastUser != "u1" {
		t.Fatalf("expected lookup for u1, got %q", repo.lastUser)
	}
}

func TestListForUser_PassesOrdersThrough(t *testing.T) {
	repo := &stubRepo{orders: []domain.Order{{ID: "o2"}, {ID: "o1"}}}
	got, err := New(repo).ListForUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "o2" {
		t.Fatalf("unexpected orders %+v", got)
	}
}
