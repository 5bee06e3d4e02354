package cart

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ugochukwu16henry/Team05-handcrafted-haven-project/internal/domain"
	"go.uber.org/zap"
)

const defaultSaveTimeout = 2 * time.Second

// Persister loads and saves the lines of a single cart.
// Load returns an empty, non-nil slice when nothing was stored.
type Persister interface {
	Load(ctx context.Context) ([]domain.CartLine, error)
	Save(ctx context.Context, lines []domain.CartLine) error
}

type Option func(*options)

type options struct {
	logger      *zap.Logger
	onWarning   func(*PersistenceWarning)
	saveTimeout time.Duration
	loadTimeout time.Duration
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithWarningHandler registers fn to be called for every persistence failure.
// fn runs while the store is locked and must not call back into it.
func WithWarningHandler(fn func(*PersistenceWarning)) Option {
	return func(o *options) { o.onWarning = fn }
}

func WithSaveTimeout(d time.Duration) Option {
	return func(o *options) { o.saveTimeout = d }
}

// WithLoadTimeout bounds how long a Registry waits for a cart to hydrate.
func WithLoadTimeout(d time.Duration) Option {
	return func(o *options) { o.loadTimeout = d }
}

func buildOptions(opts []Option) options {
	o := options{
		logger:      zap.NewNop(),
		saveTimeout: defaultSaveTimeout,
		loadTimeout: defaultLoadTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Store holds the lines of one buyer's cart and writes them through to a
// Persister after every mutation.
type Store struct {
	mu        sync.Mutex
	lines     []domain.CartLine
	persister Persister
	opts      options
	disposed  bool
}

// New creates a store hydrated from p. A failed load starts the cart empty and
// is returned as a *PersistenceWarning alongside a usable store.
func New(ctx context.Context, p Persister, opts ...Option) (*Store, error) {
	s := &Store{
		persister: p,
		opts:      buildOptions(opts),
		lines:     []domain.CartLine{},
	}

	lines, err := p.Load(ctx)
	if err != nil {
		return s, s.warn("load", err)
	}
	if lines != nil {
		s.lines = lines
	}
	return s, nil
}

// AddItem merges item into the cart. item.Quantity, when set, takes precedence
// over quantity.
func (s *Store) AddItem(ctx context.Context, item domain.CartLine, quantity int) error {
	qty := quantity
	if item.Quantity != 0 {
		qty = item.Quantity
	}
	if item.ProductID == "" {
		return invalid("productId", "must not be empty")
	}
	if qty < 1 {
		return invalid("quantity", "must be at least 1")
	}
	if qty > domain.MaxLineQuantity {
		return errQuantityTooLarge
	}
	if item.UnitPrice.IsNegative() {
		return invalid("unitPrice", "must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return ErrDisposed
	}

	if i := s.indexOf(item.ProductID); i >= 0 {
		if s.lines[i].Quantity+qty > domain.MaxLineQuantity {
			return errQuantityTooLarge
		}
		s.lines[i].Quantity += qty
	} else {
		item.Quantity = qty
		s.lines = append(s.lines, item)
	}
	return s.persist(ctx, "add")
}

// RemoveItem drops the line for productID. Removing an absent product is a no-op.
func (s *Store) RemoveItem(ctx context.Context, productID string) error {
	if productID == "" {
		return invalid("productId", "must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return ErrDisposed
	}

	i := s.indexOf(productID)
	if i < 0 {
		return nil
	}
	s.lines = slices.Delete(s.lines, i, i+1)
	return s.persist(ctx, "remove")
}

// UpdateQuantity sets the quantity of an existing line. A quantity below 1
// removes the line; an absent product is a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if productID == "" {
		return invalid("productId", "must not be empty")
	}
	if quantity > domain.MaxLineQuantity {
		return errQuantityTooLarge
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return ErrDisposed
	}

	i := s.indexOf(productID)
	if i < 0 {
		return nil
	}
	if quantity < 1 {
		s.lines = slices.Delete(s.lines, i, i+1)
		return s.persist(ctx, "remove")
	}
	if s.lines[i].Quantity == quantity {
		return nil
	}
	s.lines[i].Quantity = quantity
	return s.persist(ctx, "update")
}

func (s *Store) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return ErrDisposed
	}

	s.lines = []domain.CartLine{}
	return s.persist(ctx, "clear")
}

// Checkout snapshots the cart and clears it under one lock. An empty cart is
// returned as is and nothing is saved.
// A failed save still returns the snapshot together with the warning.
func (s *Store) Checkout(ctx context.Context) (domain.CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return domain.CartView{}, ErrDisposed
	}

	view := domain.CartView{
		Items:     s.lines,
		ItemCount: domain.ItemCount(s.lines),
		Total:     domain.Total(s.lines),
	}
	if len(s.lines) == 0 {
		view.Items = []domain.CartLine{}
		return view, nil
	}
	s.lines = []domain.CartLine{}
	return view, s.persist(ctx, "checkout")
}

// Items returns a copy of the lines in insertion order.
func (s *Store) Items() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.lines)
}

func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.ItemCount(s.lines)
}

func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Total(s.lines)
}

// View returns items and derived values computed from the same state.
func (s *Store) View() domain.CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CartView{
		Items:     slices.Clone(s.lines),
		ItemCount: domain.ItemCount(s.lines),
		Total:     domain.Total(s.lines),
	}
}

// Dispose detaches the store. Later mutations return ErrDisposed; readers keep
// returning the last state.
func (s *Store) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disposed = true
}

func (s *Store) indexOf(productID string) int {
	return slices.IndexFunc(s.lines, func(l domain.CartLine) bool {
		return l.ProductID == productID
	})
}

// persist must be called with mu held so that writes reach storage in the
// order they were applied.
func (s *Store) persist(ctx context.Context, op string) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.saveTimeout)
	defer cancel()

	if err := s.persister.Save(ctx, slices.Clone(s.lines)); err != nil {
		return s.warn(op, err)
	}
	return nil
}

func (s *Store) warn(op string, err error) *PersistenceWarning {
	w := &PersistenceWarning{Op: op, Err: err}
	s.opts.logger.Warn("cart persistence failed", zap.String("op", op), zap.Error(err))
	if s.opts.onWarning != nil {
		s.opts.onWarning(w)
	}
	return w
}
