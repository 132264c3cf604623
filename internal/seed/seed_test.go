package seed

import (
	"context"
	"errors"
	"testing"

	"storefront-api/internal/domain"
	usersvc "storefront-api/internal/service/user"
)

type stubProducts struct {
	saved []domain.Product
}

func (s *stubProducts) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	s.saved = append(s.saved, p)
	return &p, nil
}

type stubSigner struct {
	err   error
	calls int
}

func (s *stubSigner) Signup(_ context.Context, in usersvc.SignupInput) (*domain.User, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &domain.User{ID: "u1", Email: in.Email}, nil
}

func TestApply(t *testing.T) {
	products := &stubProducts{}
	users := &stubSigner{}
	if err := Apply(context.Background(), products, users, nil); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(products.saved) != len(demoProducts) {
		t.Fatalf("expected %d products, got %d", len(demoProducts), len(products.saved))
	}
	for _, p := range products.saved {
		if p.Status == "" {
			t.Fatalf("product %s saved without status", p.Key)
		}
	}
	if users.calls != 1 {
		t.Fatalf("expected one signup, got %d", users.calls)
	}
}

func TestApply_ExistingUser(t *testing.T) {
	if err := Apply(context.Background(), &stubProducts{}, &stubSigner{err: domain.ErrAlreadyExists}, nil); err != nil {
		t.Fatalf("existing demo user should not fail: %v", err)
	}
	if err := Apply(context.Background(), &stubProducts{}, &stubSigner{err: errors.New("boom")}, nil); err == nil {
		t.Fatalf("expected signup error")
	}
}
