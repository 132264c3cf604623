package product

import (
	"context"
	"errors"
	"testing"

	"storefront-api/internal/domain"
)

type stubRepo struct {
	products  []domain.Product
	getCalls  int
	lastGetID string
}

func (s *stubRepo) List(_ context.Context) ([]domain.Product, error) {
	return s.products, nil
}

func (s *stubRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	s.getCalls++
	s.lastGetID = id
	for _, p := range s.products {
		if p.ID == id {
			clone := p
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubRepo) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	return &p, nil
}

func TestGet_RejectsMalformedIDWithoutQuery(t *testing.T) {
	repo := &stubRepo{}
	svc := New(repo)

	if _, err := svc.Get(context.Background(), "not-a-uuid"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if repo.getCalls != 0 {
		t.Fatalf("expected no repository call, got %d", repo.getCalls)
	}
}

func TestGet_PassesThroughValidID(t *testing.T) {
	id := "5b0f1d5e-8a4c-4b55-9a53-0b6f7d6c3f11"
	repo := &stubRepo{products: []domain.Product{{ID: id, Name: "Mug"}}}
	svc := New(repo)

	p, err := svc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Mug" || repo.lastGetID != id {
		t.Fatalf("unexpected product %+v", p)
	}
}
