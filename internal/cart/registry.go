package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const defaultLoadTimeout = 5 * time.Second

// PersisterFactory returns the persister backing the cart of profileID.
type PersisterFactory func(profileID string) Persister

type entry struct {
	store    *Store
	lastUsed time.Time
}

// Registry hands out one Store per buyer profile, hydrating each store at most
// once per process. Stores idle for longer than the eviction window are
// dropped and hydrated again from storage on next use.
//
// Stores of the same profile held by different processes are not reconciled:
// whichever writes last wins.
type Registry struct {
	mu      sync.Mutex
	stores  map[string]*entry
	sfg     singleflight.Group // Prevents duplicate hydration
	factory PersisterFactory
	opts    []Option
	logger  *zap.Logger
	now     func() time.Time

	loadTimeout time.Duration

	stopOnce sync.Once
	stop     chan struct{}
	wg       sync.WaitGroup
}

func NewRegistry(factory PersisterFactory, logger *zap.Logger, opts ...Option) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = append([]Option{WithLogger(logger)}, opts...)
	return &Registry{
		stores:      make(map[string]*entry),
		factory:     factory,
		opts:        opts,
		logger:      logger,
		now:         time.Now,
		loadTimeout: buildOptions(opts).loadTimeout,
		stop:        make(chan struct{}),
	}
}

// Get returns the store for profileID, creating and hydrating it on first use.
//
// Hydration is detached from ctx and bounded by the load timeout. Unreadable
// stored data yields an empty store. Any other load failure returns
// ErrUnavailable and caches nothing; the next call loads again.
func (r *Registry) Get(ctx context.Context, profileID string) (*Store, error) {
	if profileID == "" {
		return nil, invalid("profileId", "must not be empty")
	}

	if s, ok := r.lookup(profileID); ok {
		return s, nil
	}

	v, err, _ := r.sfg.Do(profileID, func() (interface{}, error) {
		if s, ok := r.lookup(profileID); ok {
			return s, nil
		}

		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.loadTimeout)
		defer cancel()

		s, errNew := New(loadCtx, r.factory(profileID), r.opts...)
		if errNew != nil && !IsWarning(errNew) {
			return nil, errNew
		}
		if errNew != nil {
			if !errors.Is(errNew, ErrCorrupt) {
				s.Dispose()
				return nil, fmt.Errorf("%w: %v", ErrUnavailable, errNew)
			}
			r.logger.Warn("cart hydrated empty", zap.String("profile_id", profileID), zap.Error(errNew))
		}

		r.mu.Lock()
		r.stores[profileID] = &entry{store: s, lastUsed: r.now()}
		r.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Store), nil
}

// Clear empties the cart of profileID, hydrating it first if needed.
func (r *Registry) Clear(ctx context.Context, profileID string) error {
	s, err := r.Get(ctx, profileID)
	if err != nil {
		return err
	}
	return s.ClearCart(ctx)
}

// Evict disposes the store of profileID so the next Get hydrates from storage.
func (r *Registry) Evict(profileID string) {
	r.mu.Lock()
	e, ok := r.stores[profileID]
	delete(r.stores, profileID)
	r.mu.Unlock()

	if ok {
		e.store.Dispose()
	}
}

// EvictIdle disposes every store not handed out within idle and returns how
// many were dropped.
func (r *Registry) EvictIdle(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	var stale []*Store
	r.mu.Lock()
	for id, e := range r.stores {
		if e.lastUsed.Before(cutoff) {
			stale = append(stale, e.store)
			delete(r.stores, id)
		}
	}
	r.mu.Unlock()

	for _, s := range stale {
		s.Dispose()
	}
	return len(stale)
}

// StartEviction runs EvictIdle every interval until Close.
func (r *Registry) StartEviction(idle, interval time.Duration) {
	if idle <= 0 || interval <= 0 {
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-r.stop:
				return
			case <-ticker.C:
				if n := r.EvictIdle(idle); n > 0 {
					r.logger.Debug("evicted idle carts", zap.Int("count", n))
				}
			}
		}
	}()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// Close stops eviction and disposes every store.
func (r *Registry) Close() {
	r.stopOnce.Do(func() { close(r.stop) })
	r.wg.Wait()

	r.mu.Lock()
	stores := r.stores
	r.stores = make(map[string]*entry)
	r.mu.Unlock()

	for _, e := range stores {
		e.store.Dispose()
	}
}

func (r *Registry) lookup(profileID string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.stores[profileID]
	if !ok {
		return nil, false
	}
	e.lastUsed = r.now()
	return e.store, true
}
