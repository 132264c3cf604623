package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"storefront-api/internal/domain"
	"storefront-api/internal/logger"
	tokenrepo "storefront-api/internal/repository/token"
	userrepo "storefront-api/internal/repository/user"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = errors.New("invalid token")
)

// Service handles signup, login and token lookup.
type Service struct {
	repo        userrepo.Repository
	tokens      *tokenManager
	logger      logrus.FieldLogger
	accessTTL   time.Duration
	refreshTTL  time.Duration
	passwordMin int
}

func New(repo userrepo.Repository, tokens tokenrepo.Repository, log logrus.FieldLogger) *Service {
	return &Service{
		repo:        repo,
		tokens:      newTokenManager(tokens),
		logger:      logger.OrDiscard(log).WithField("service", "user"),
		accessTTL:   48 * time.Hour,
		refreshTTL:  30 * 24 * time.Hour,
		passwordMin: 8,
	}
}

type SignupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is what a successful login hands back.
type Session struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

func (s *Service) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" {
		return nil, domain.Invalid("email required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name required")
	}
	password := strings.TrimSpace(in.Password)
	if err := validatePassword(password, s.passwordMin); err != nil {
		return nil, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.Create(ctx, domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         domain.RoleNormal,
	})
	if err != nil {
		return nil, err
	}
	s.logger.WithField("user_id", u.ID).Info("user signed up")
	return u, nil
}

// Login validates credentials and issues an access and a refresh token.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	password = strings.TrimSpace(password)
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	access, err := s.tokens.Issue(ctx, u.ID, tokenrepo.KindAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.Issue(ctx, u.ID, tokenrepo.KindRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &Session{
		User:         u,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(s.accessTTL.Seconds()),
	}, nil
}

// LookupByToken returns the user bound to a valid access token.
func (s *Service) LookupByToken(ctx context.Context, token string) (*domain.User, error) {
	meta, ok := s.tokens.Validate(ctx, token)
	if !ok {
		return nil, ErrInvalidToken
	}
	u, err := s.repo.GetByID(ctx, meta.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return u, nil
}

func validatePassword(p string, min int) error {
	if len(p) < min {
		return domain.Invalid("password must be at least %d characters", min)
	}
	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, r := range p {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return domain.Invalid("password must contain at least 1 uppercase letter, 1 lowercase letter, and 1 number")
	}
	return nil
}
