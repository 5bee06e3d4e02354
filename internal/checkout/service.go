package checkout

import (
	"context"
	"time"

	"github.com/ugochukwu16henry/Team05-handcrafted-haven-project/internal/cart"
	"github.com/ugochukwu16henry/Team05-handcrafted-haven-project/internal/domain"
	"go.uber.org/zap"
)

const (
	EmptyCartMessage    = "Your cart is empty. Add items to checkout."
	OrderPlacedMessage  = "Thank you for your order. This is a demo — no payment was processed."
	defaultCurrencyCode = "USD"
)

// CartStore is the part of the cart store checkout depends on.
type CartStore interface {
	View() domain.CartView
	Checkout(ctx context.Context) (domain.CartView, error)
}

// Service turns a cart into an order. Placing an order only empties the cart:
// no payment is taken and nothing is recorded.
type Service struct {
	currency string
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(currency string, logger *zap.Logger) *Service {
	if currency == "" {
		currency = defaultCurrencyCode
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		currency: currency,
		logger:   logger,
		now:      time.Now,
	}
}

// Summary returns the order summary for the current cart, or ErrEmptyCart.
func (s *Service) Summary(store CartStore) (*domain.OrderSummary, error) {
	view := store.View()
	if view.IsEmpty() {
		return nil, ErrEmptyCart
	}
	summary := s.summarize(view)
	return &summary, nil
}

// PlaceOrder captures the summary and clears the cart in one step. A
// persistence warning from the clear is returned with the confirmation; the
// order still counts as placed.
func (s *Service) PlaceOrder(ctx context.Context, store CartStore) (*domain.OrderConfirmation, error) {
	view, err := store.Checkout(ctx)
	if err != nil && !cart.IsWarning(err) {
		return nil, err
	}
	if view.IsEmpty() {
		return nil, ErrEmptyCart
	}

	confirmation := &domain.OrderConfirmation{
		Status:  domain.OrderStatusReceived,
		Message: OrderPlacedMessage,
		Summary: s.summarize(view),
	}

	if err != nil {
		s.logger.Warn("order placed but cart clear not persisted", zap.Error(err))
		return confirmation, err
	}

	s.logger.Info("order placed",
		zap.Int("item_count", confirmation.Summary.ItemCount),
		zap.String("total", confirmation.Summary.Total.StringFixed(2)))
	return confirmation, nil
}

func (s *Service) summarize(view domain.CartView) domain.OrderSummary {
	items := make([]domain.OrderSummaryItem, len(view.Items))
	for i, l := range view.Items {
		items[i] = domain.OrderSummaryItem{
			ProductID: l.ProductID,
			Title:     l.Title,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal(),
		}
	}

	return domain.OrderSummary{
		Items:      items,
		ItemCount:  view.ItemCount,
		Total:      view.Total,
		Currency:   s.currency,
		CapturedAt: s.now(),
	}
}
