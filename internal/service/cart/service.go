package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"storefront-api/internal/domain"
	"storefront-api/internal/logger"
	cartrepo "storefront-api/internal/repository/cart"
)

type Service struct {
	repo        cartRepo
	productRepo productRepo
	logger      logrus.FieldLogger
}

type cartRepo interface {
	GetActiveByUser(ctx context.Context, userID string) (*domain.Cart, error)
	AddLine(ctx context.Context, in cartrepo.AddLineInput) (*domain.Cart, error)
	ChangeLine(ctx context.Context, in cartrepo.ChangeLineInput) error
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

func New(repo cartRepo, productRepo productRepo, log logrus.FieldLogger) *Service {
	return &Service{
		repo:        repo,
		productRepo: productRepo,
		logger:      logger.OrDiscard(log).WithField("service", "cart"),
	}
}

// Get returns the user's onGoing cart.
func (s *Service) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.repo.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNoActiveCart
		}
		return nil, err
	}
	return cart, nil
}

// AddLine puts quantity units of a product into the user's onGoing cart,
// opening one when needed.
func (s *Service) AddLine(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, domain.Invalid("quantity must be at least 1")
	}
	if _, err := uuid.Parse(productID); err != nil {
		return nil, domain.ErrInvalidProduct
	}
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidProduct
		}
		return nil, err
	}
	if !product.Purchasable(quantity) {
		return nil, domain.ErrInvalidProduct
	}

	cart, err := s.repo.AddLine(ctx, cartrepo.AddLineInput{
		UserID:    userID,
		ProductID: product.ID,
		Quantity:  quantity,
		Price:     product.Price,
	})
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"user_id": userID, "product_id": productID, "quantity": quantity}).Info("added product to cart")
	return cart, nil
}

// UpdateLine sets the quantity of an active line. Zero removes the line.
func (s *Service) UpdateLine(ctx context.Context, userID, productID string, newQuantity int) error {
	if newQuantity < 0 {
		return domain.Invalid("newQuantity must not be negative")
	}
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	var line *domain.CartLine
	for i := range cart.Lines {
		if cart.Lines[i].ProductID == productID && cart.Lines[i].Status == domain.LineActive {
			line = &cart.Lines[i]
			break
		}
	}
	if line == nil {
		return domain.ErrInvalidLine
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInvalidLine
		}
		return err
	}
	if newQuantity > product.Quantity {
		return domain.WithDetail(domain.ErrExceedsStock, "this product only has %d items", product.Quantity)
	}
	if newQuantity == line.Quantity {
		return domain.ErrNoChange
	}

	status := domain.LineActive
	if newQuantity == 0 {
		status = domain.LineRemoved
	}
	delta := line.Price.Mul(decimal.NewFromInt(int64(newQuantity - line.Quantity)))

	if err := s.repo.ChangeLine(ctx, cartrepo.ChangeLineInput{
		CartID:      cart.ID,
		LineID:      line.ID,
		OldQuantity: line.Quantity,
		NewQuantity: newQuantity,
		Status:      status,
		TotalDelta:  delta,
	}); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{"cart_id": cart.ID, "product_id": productID, "from": line.Quantity, "to": newQuantity}).Info("updated cart line")
	return nil
}
