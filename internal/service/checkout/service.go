package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"storefront-api/internal/domain"
	"storefront-api/internal/logger"
	"storefront-api/internal/notify"
	orderrepo "storefront-api/internal/repository/order"
)

const (
	defaultMaxConcurrency = 8
	defaultMaxAttempts    = 3
)

type cartRepo interface {
	GetActiveByUser(ctx context.Context, userID string) (*domain.Cart, error)
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type orderRepo interface {
	PlaceOrder(ctx context.Context, in orderrepo.PlaceOrderInput) (*domain.Order, error)
}

type notifier interface {
	Enqueue(c notify.Confirmation) error
}

type idempotencyGuard interface {
	Claim(ctx context.Context, userID, key string) (bool, error)
	Release(ctx context.Context, userID, key string) error
}

type outcomeRecorder interface {
	CheckoutOutcome(outcome string)
}

type Options struct {
	MaxConcurrency       int
	MaxAttempts          int
	RecordExhaustedLines bool
}

type Service struct {
	carts    cartRepo
	products productRepo
	orders   orderRepo
	notifier notifier
	guard    idempotencyGuard
	metrics  outcomeRecorder
	logger   logrus.FieldLogger
	opts     Options
}

type Option func(*Service)

// WithIdempotency makes Checkout honour request keys.
func WithIdempotency(g idempotencyGuard) Option {
	return func(s *Service) { s.guard = g }
}

func WithMetrics(m outcomeRecorder) Option {
	return func(s *Service) { s.metrics = m }
}

func New(carts cartRepo, products productRepo, orders orderRepo, n notifier, opts Options, log logrus.FieldLogger, extra ...Option) *Service {
	if opts.MaxConcurrency < 1 {
		opts.MaxConcurrency = defaultMaxConcurrency
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	s := &Service{
		carts:    carts,
		products: products,
		orders:   orders,
		notifier: n,
		logger:   logger.OrDiscard(log).WithField("service", "checkout"),
		opts:     opts,
	}
	for _, o := range extra {
		o(s)
	}
	return s
}

type Input struct {
	UserID         string
	Name           string
	Email          string
	IdempotencyKey string
}

type Result struct {
	Order      *domain.Order
	Items      []Item
	TotalPrice decimal.Decimal
}

// Checkout turns the user's onGoing cart into an order. Every line is planned
// against current stock first; nothing is written unless all lines can be
// served. Commits that lose a race on product versions are re-planned.
func (s *Service) Checkout(ctx context.Context, in Input) (res *Result, err error) {
	log := s.logger.WithField("user_id", in.UserID)

	if in.IdempotencyKey != "" && s.guard != nil {
		ok, err := s.guard.Claim(ctx, in.UserID, in.IdempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("claim idempotency key: %w", err)
		}
		if !ok {
			s.record("duplicate")
			return nil, domain.ErrDuplicateRequest
		}
		defer func() {
			if err == nil {
				return
			}
			if relErr := s.guard.Release(context.WithoutCancel(ctx), in.UserID, in.IdempotencyKey); relErr != nil {
				log.WithError(relErr).Warn("release idempotency key")
			}
		}()
	}

	for attempt := 1; ; attempt++ {
		res, err = s.attempt(ctx, in)
		if errors.Is(err, domain.ErrStockConflict) && attempt < s.opts.MaxAttempts {
			log.WithField("attempt", attempt).Info("stock moved during checkout, retrying")
			continue
		}
		break
	}
	if err != nil {
		s.record(outcomeLabel(err))
		return nil, err
	}
	s.record("success")

	confirmation := notify.Confirmation{
		OrderID:    res.Order.ID,
		UserID:     in.UserID,
		Name:       in.Name,
		Email:      in.Email,
		Items:      make([]notify.Item, 0, len(res.Items)),
		TotalPrice: res.TotalPrice,
	}
	for _, it := range res.Items {
		confirmation.Items = append(confirmation.Items, notify.Item(it))
	}
	if s.notifier != nil {
		if nerr := s.notifier.Enqueue(confirmation); nerr != nil {
			log.WithError(nerr).WithField("order_id", res.Order.ID).Warn("order confirmation not queued")
		}
	}
	log.WithFields(logrus.Fields{"order_id": res.Order.ID, "total": res.TotalPrice.StringFixed(2)}).Info("checkout complete")
	return res, nil
}

func (s *Service) attempt(ctx context.Context, in Input) (*Result, error) {
	cart, err := s.carts.GetActiveByUser(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNoActiveCart
		}
		return nil, err
	}
	if len(cart.Lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	planned, err := s.plan(ctx, cart.Lines)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, p := range planned {
		if p.outcome == outcomeOutOfStock {
			missing = append(missing, p.product)
		}
	}
	if len(missing) > 0 {
		return nil, domain.WithDetail(domain.ErrOutOfStock, "there is no stock of this product: %s", strings.Join(missing, ", "))
	}

	place := orderrepo.PlaceOrderInput{
		UserID: in.UserID,
		CartID: cart.ID,
		Lines:  make([]orderrepo.PlaceLine, 0, len(planned)),
	}
	items := make([]Item, 0, len(planned))
	for _, p := range planned {
		place.Lines = append(place.Lines, p.write)
		items = append(items, p.item)
	}

	order, err := s.orders.PlaceOrder(ctx, place)
	if err != nil {
		return nil, err
	}
	return &Result{Order: order, Items: items, TotalPrice: itemsTotal(items)}, nil
}

// plan reads every product concurrently. Results are stored by line index so
// the decision only happens once all lines are known.
func (s *Service) plan(ctx context.Context, lines []domain.CartLine) ([]plannedLine, error) {
	planned := make([]plannedLine, len(lines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.MaxConcurrency)

	for idx := range lines {
		g.Go(func() error {
			line := lines[idx]
			product, err := s.products.GetByID(gctx, line.ProductID)
			if err != nil {
				return fmt.Errorf("load product %s: %w", line.ProductID, err)
			}
			planned[idx] = planLine(line, *product, s.opts.RecordExhaustedLines)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, p := range planned {
		s.logger.WithFields(logrus.Fields{"product_id": lines[i].ProductID, "outcome": p.outcome.String()}).Debug("planned line")
	}
	return planned, nil
}

func (s *Service) record(outcome string) {
	if s.metrics != nil {
		s.metrics.CheckoutOutcome(outcome)
	}
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrOutOfStock):
		return "out_of_stock"
	case errors.Is(err, domain.ErrStockConflict):
		return "conflict"
	case errors.Is(err, domain.ErrNoActiveCart), errors.Is(err, domain.ErrEmptyCart):
		return "no_cart"
	default:
		return "error"
	}
}
