package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"storefront-api/internal/domain"
	"storefront-api/internal/logger"
	usersvc "storefront-api/internal/service/user"
)

// DemoEmail and DemoPassword identify the account created by Apply.
const (
	DemoEmail    = "demo@storefront.local"
	DemoPassword = "Demo12345"
)

type productWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type signer interface {
	Signup(ctx context.Context, in usersvc.SignupInput) (*domain.User, error)
}

var demoProducts = []domain.Product{
	{Key: "demo-lamp", Name: "Desk Lamp", Description: "Warm light for late nights", Price: decimal.RequireFromString("19.99"), Quantity: 25},
	{Key: "demo-mug", Name: "Demo Mug", Description: "Ceramic mug with demo logo", Price: decimal.RequireFromString("12.99"), Quantity: 40},
	{Key: "demo-notebook", Name: "Notebook", Description: "Dotted A5 notebook", Price: decimal.RequireFromString("7.50"), Quantity: 3},
	{Key: "demo-poster", Name: "Poster", Description: "Limited print", Price: decimal.RequireFromString("30.00"), Quantity: 0, Status: domain.ProductSoldOut},
}

// Apply inserts a demo catalog and a demo account for manual testing. It can
// be run repeatedly.
func Apply(ctx context.Context, products productWriter, users signer, log logrus.FieldLogger) error {
	log = logger.OrDiscard(log).WithField("component", "seed")

	for _, p := range demoProducts {
		if p.Status == "" {
			p.Status = domain.ProductActive
		}
		if _, err := products.Upsert(ctx, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Key, err)
		}
	}
	log.WithField("count", len(demoProducts)).Info("seeded products")

	_, err := users.Signup(ctx, usersvc.SignupInput{Name: "Demo User", Email: DemoEmail, Password: DemoPassword})
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		log.WithField("email", DemoEmail).Info("demo user already present")
	case err != nil:
		return fmt.Errorf("create demo user: %w", err)
	default:
		log.WithField("email", DemoEmail).Info("seeded demo user")
	}
	return nil
}
