package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront-api/internal/domain"
	tokenrepo "storefront-api/internal/repository/token"
)

// memoryRepo is a lightweight in-memory user repository for tests.
type memoryRepo struct {
	byEmail map[string]domain.User
}

type memoryTokenRepo struct {
	tokens map[string]tokenrepo.Token
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byEmail: make(map[string]domain.User)}
}

func newMemoryTokenRepo() *memoryTokenRepo {
	return &memoryTokenRepo{tokens: make(map[string]tokenrepo.Token)}
}

func (r *memoryTokenRepo) Create(_ context.Context, token tokenrepo.Token) error {
	if _, exists := r.tokens[token.Token]; exists {
		return domain.ErrAlreadyExists
	}
	r.tokens[token.Token] = token
	return nil
}

func (r *memoryTokenRepo) Get(_ context.Context, token string) (*tokenrepo.Token, error) {
	t, ok := r.tokens[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := t
	return &clone, nil
}

func (r *memoryTokenRepo) Delete(_ context.Context, token string) error {
	if _, ok := r.tokens[token]; !ok {
		return domain.ErrNotFound
	}
	delete(r.tokens, token)
	return nil
}

func (r *memoryRepo) Create(_ context.Context, u domain.User) (*domain.User, error) {
	if _, exists := r.byEmail[u.Email]; exists {
		return nil, domain.ErrAlreadyExists
	}
	clone := u
	if clone.ID == "" {
		clone.ID = "user-" + u.Email
	}
	clone.Status = domain.UserActive
	r.byEmail[clone.Email] = clone
	return &clone, nil
}

func (r *memoryRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := r.byEmail[email]; ok {
		clone := u
		return &clone, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			clone := u
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func TestSignupAndLogin_SucceedsWithTrimmedPassword(t *testing.T) {
	svc := New(newMemoryRepo(), newMemoryTokenRepo(), nil)
	ctx := context.Background()

	u, err := svc.Signup(ctx, SignupInput{Name: "T", Email: "User@Example.com", Password: " Abcdefg1 "})
	if err != nil {
		t.Fatalf("signup returned error: %v", err)
	}
	if u == nil || u.Email != "user@example.com" || u.Role != domain.RoleNormal {
		t.Fatalf("unexpected user %+v", u)
	}

	session, err := svc.Login(ctx, "user@example.com", "Abcdefg1")
	if err != nil {
		t.Fatalf("login failed with trimmed password: %v", err)
	}
	if session.AccessToken == "" || session.RefreshToken == "" || session.ExpiresIn != 48*3600 {
		t.Fatalf("unexpected session %+v", session)
	}

	me, err := svc.LookupByToken(ctx, session.AccessToken)
	if err != nil || me.ID != u.ID {
		t.Fatalf("LookupByToken: %+v %v", me, err)
	}
	if _, err := svc.LookupByToken(ctx, session.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh token must not authenticate, got %v", err)
	}
}

func TestSignup_Validation(t *testing.T) {
	svc := New(newMemoryRepo(), newMemoryTokenRepo(), nil)
	ctx := context.Background()

	cases := []struct {
		name string
		in   SignupInput
	}{
		{"missing email", SignupInput{Name: "T", Password: "Abcdefg1"}},
		{"missing name", SignupInput{Email: "a@b.c", Password: "Abcdefg1"}},
		{"weak password", SignupInput{Name: "T", Email: "a@b.c", Password: "abc"}},
	}
	for _, tc := range cases {
		_, err := svc.Signup(ctx, tc.in)
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}

	if _, err := svc.Signup(ctx, SignupInput{Name: "T", Email: "dup@example.com", Password: "Abcdefg1"}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := svc.Signup(ctx, SignupInput{Name: "T", Email: "dup@example.com", Password: "Abcdefg1"}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestValidatePassword_FailsOnWeakValues(t *testing.T) {
	cases := []struct {
		name string
		pass string
	}{
		{"too short", "Abc1"},
		{"no upper", "abcdefg1"},
		{"no lower", "ABCDEFG1"},
		{"no digit", "Abcdefgh"},
	}
	for _, tc := range cases {
		if err := validatePassword(tc.pass, 8); err == nil {
			t.Fatalf("expected error for case %s", tc.name)
		}
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := New(newMemoryRepo(), newMemoryTokenRepo(), nil)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, SignupInput{Name: "T", Email: "user@example.com", Password: "Abcdefg1"}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := svc.Login(ctx, "user@example.com", "wrongpass"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "missing@example.com", "Abcdefg1"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for missing user, got %v", err)
	}
}

func TestTokenManager_ExpiredTokenIsDeleted(t *testing.T) {
	repo := newMemoryTokenRepo()
	m := newTokenManager(repo)
	ctx := context.Background()

	token, err := m.Issue(ctx, "u1", tokenrepo.KindAccess, time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	if _, ok := m.Validate(ctx, token); ok {
		t.Fatalf("expected expired token to be rejected")
	}
	if _, ok := repo.tokens[token]; ok {
		t.Fatalf("expected expired token to be deleted")
	}
}
