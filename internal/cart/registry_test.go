package cart

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ugochukwu16henry/Team05-handcrafted-haven-project/internal/domain"
	"go.uber.org/zap"
)

type countingFactory struct {
	m          sync.Mutex
	persisters map[string]*mockPersister
	calls      atomic.Int32
	loadErr    error
}

func (f *countingFactory) build(profileID string) Persister {
	f.calls.Add(1)
	f.m.Lock()
	defer f.m.Unlock()
	if f.persisters == nil {
		f.persisters = make(map[string]*mockPersister)
	}
	p, ok := f.persisters[profileID]
	if !ok {
		p = &mockPersister{loadErr: f.loadErr}
		f.persisters[profileID] = p
	}
	return p
}

func TestRegistry_GetReturnsSameStore(t *testing.T) {
	f := &countingFactory{}
	r := NewRegistry(f.build, zap.NewNop())
	defer r.Close()
	ctx := context.Background()

	s1, err := r.Get(ctx, "buyer-1")
	require.NoError(t, err)
	s2, err := r.Get(ctx, "buyer-1")
	require.NoError(t, err)

	assert.Same(t, s1, s2)
	assert.Equal(t, int32(1), f.calls.Load())
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_SeparateProfiles(t *testing.T) {
	r := NewRegistry((&countingFactory{}).build, nil)
	defer r.Close()
	ctx := context.Background()

	s1, err := r.Get(ctx, "buyer-1")
	require.NoError(t, err)
	s2, err := r.Get(ctx, "buyer-2")
	require.NoError(t, err)
	require.NoError(t, s1.AddItem(ctx, line("a", "A", "1"), 1))

	assert.NotSame(t, s1, s2)
	assert.Empty(t, s2.Items())
}

func TestRegistry_ConcurrentGetHydratesOnce(t *testing.T) {
	f := &countingFactory{}
	r := NewRegistry(f.build, nil)
	defer r.Close()

	var wg sync.WaitGroup
	stores := make([]*Store, 20)
	for i := range stores {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := r.Get(context.Background(), "buyer-1")
			assert.NoError(t, err)
			stores[i] = s
		}(i)
	}
	wg.Wait()

	for _, s := range stores {
		assert.Same(t, stores[0], s)
	}
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestRegistry_EmptyProfile(t *testing.T) {
	r := NewRegistry((&countingFactory{}).build, nil)

	_, err := r.Get(context.Background(), "")

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestRegistry_TransientLoadFailureIsRetried(t *testing.T) {
	vase := line("vase", "Clay Vase", "24.50")
	vase.Quantity = 1
	p := &mockPersister{lines: []domain.CartLine{vase}, loadErr: context.DeadlineExceeded}
	f := &countingFactory{persisters: map[string]*mockPersister{"buyer-1": p}}
	r := NewRegistry(f.build, nil)
	defer r.Close()
	ctx := context.Background()

	_, err := r.Get(ctx, "buyer-1")

	require.ErrorIs(t, err, ErrUnavailable)
	assert.False(t, IsWarning(err))
	assert.Zero(t, r.Len())
	assert.Zero(t, p.saveCount())

	p.setLoadErr(nil)
	s, err := r.Get(ctx, "buyer-1")
	require.NoError(t, err)
	require.NoError(t, s.AddItem(ctx, line("bowl", "Wooden Bowl", "18"), 1))

	saved := p.saved()
	require.Len(t, saved, 2)
	assert.Equal(t, "vase", saved[0].ProductID)
	assert.Equal(t, "bowl", saved[1].ProductID)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestRegistry_CorruptDataHydratesEmpty(t *testing.T) {
	f := &countingFactory{loadErr: fmt.Errorf("%w: unexpected end of JSON input", ErrCorrupt)}
	r := NewRegistry(f.build, nil)
	defer r.Close()

	s, err := r.Get(context.Background(), "buyer-1")

	require.NoError(t, err)
	assert.Empty(t, s.Items())
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_HydrationIgnoresCallerCancellation(t *testing.T) {
	vase := line("vase", "Clay Vase", "24.50")
	vase.Quantity = 2
	p := &mockPersister{lines: []domain.CartLine{vase}}
	r := NewRegistry((&countingFactory{persisters: map[string]*mockPersister{"buyer-1": p}}).build, nil)
	defer r.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := r.Get(ctx, "buyer-1")

	require.NoError(t, err)
	assert.Equal(t, 2, s.ItemCount())
}

func TestRegistry_Clear(t *testing.T) {
	f := &countingFactory{}
	r := NewRegistry(f.build, nil)
	defer r.Close()
	ctx := context.Background()
	s, err := r.Get(ctx, "buyer-1")
	require.NoError(t, err)
	require.NoError(t, s.AddItem(ctx, line("a", "A", "1"), 2))

	require.NoError(t, r.Clear(ctx, "buyer-1"))

	assert.Empty(t, s.Items())
	assert.Empty(t, f.persisters["buyer-1"].saved())
}

func TestRegistry_EvictRehydrates(t *testing.T) {
	f := &countingFactory{}
	r := NewRegistry(f.build, nil)
	defer r.Close()
	ctx := context.Background()
	s1, err := r.Get(ctx, "buyer-1")
	require.NoError(t, err)
	require.NoError(t, s1.AddItem(ctx, line("a", "A", "1"), 2))

	r.Evict("buyer-1")

	assert.ErrorIs(t, s1.AddItem(ctx, line("b", "B", "1"), 1), ErrDisposed)
	s2, err := r.Get(ctx, "buyer-1")
	require.NoError(t, err)
	assert.NotSame(t, s1, s2)
	assert.Equal(t, []domain.CartLine{s1.Items()[0]}, s2.Items())
}

func TestRegistry_CloseDisposesStores(t *testing.T) {
	r := NewRegistry((&countingFactory{}).build, nil)
	ctx := context.Background()
	s, err := r.Get(ctx, "buyer-1")
	require.NoError(t, err)

	r.Close()

	assert.Zero(t, r.Len())
	assert.ErrorIs(t, s.ClearCart(ctx), ErrDisposed)
}

func TestRegistry_EvictIdle(t *testing.T) {
	r := NewRegistry((&countingFactory{}).build, nil)
	defer r.Close()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	ctx := context.Background()

	stale, err := r.Get(ctx, "buyer-1")
	require.NoError(t, err)
	now = now.Add(20 * time.Minute)
	_, err = r.Get(ctx, "buyer-2")
	require.NoError(t, err)
	now = now.Add(15 * time.Minute)

	assert.Equal(t, 1, r.EvictIdle(30*time.Minute))
	assert.Equal(t, 1, r.Len())
	assert.ErrorIs(t, stale.ClearCart(ctx), ErrDisposed)
}

func TestRegistry_GetRefreshesIdleClock(t *testing.T) {
	r := NewRegistry((&countingFactory{}).build, nil)
	defer r.Close()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := r.Get(ctx, "buyer-1")
	require.NoError(t, err)
	now = now.Add(25 * time.Minute)
	_, err = r.Get(ctx, "buyer-1")
	require.NoError(t, err)
	now = now.Add(25 * time.Minute)

	assert.Zero(t, r.EvictIdle(30*time.Minute))
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_StartEviction(t *testing.T) {
	r := NewRegistry((&countingFactory{}).build, nil)
	ctx := context.Background()
	for i := range 50 {
		_, err := r.Get(ctx, fmt.Sprintf("buyer-%d", i))
		require.NoError(t, err)
	}

	r.StartEviction(time.Millisecond, 5*time.Millisecond)

	require.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, 5*time.Millisecond)
	r.Close()
}
