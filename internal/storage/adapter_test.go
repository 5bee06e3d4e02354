package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ugochukwu16henry/Team05-handcrafted-haven-project/internal/cart"
	"github.com/ugochukwu16henry/Team05-handcrafted-haven-project/internal/domain"
)

type failingSlot struct {
	err error
}

func (f failingSlot) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingSlot) Put(context.Context, string, []byte) error   { return f.err }
func (f failingSlot) Delete(context.Context, string) error        { return f.err }

func TestCartKey(t *testing.T) {
	assert.Equal(t, "haven_cart:buyer-1", CartKey("buyer-1"))
}

func TestAdapter_LoadMissingIsEmpty(t *testing.T) {
	a := NewAdapter(NewMemorySlot(), CartKey("buyer-1"))

	lines, err := a.Load(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, lines)
	assert.Empty(t, lines)
}

func TestAdapter_SaveThenLoad(t *testing.T) {
	slot := NewMemorySlot()
	a := NewAdapter(slot, CartKey("buyer-1"))
	ctx := context.Background()
	lines := []domain.CartLine{{ProductID: "a", Title: "A", UnitPrice: decimal.NewFromInt(3), Quantity: 2}}

	require.NoError(t, a.Save(ctx, lines))
	got, err := a.Load(ctx)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Quantity)

	raw, err := slot.Get(ctx, "haven_cart:buyer-1")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"version":1`)
}

func TestAdapter_CorruptPayload(t *testing.T) {
	slot := NewMemorySlot()
	ctx := context.Background()
	require.NoError(t, slot.Put(ctx, CartKey("buyer-1"), []byte("not json")))

	lines, err := NewAdapter(slot, CartKey("buyer-1")).Load(ctx)

	assert.ErrorIs(t, err, cart.ErrCorrupt)
	assert.Empty(t, lines)
}

func TestAdapter_UnsupportedVersionIsCorrupt(t *testing.T) {
	slot := NewMemorySlot()
	ctx := context.Background()
	require.NoError(t, slot.Put(ctx, CartKey("buyer-1"), []byte(`{"version":9,"items":[]}`)))

	_, err := NewAdapter(slot, CartKey("buyer-1")).Load(ctx)

	assert.ErrorIs(t, err, cart.ErrCorrupt)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestAdapter_SlotErrors(t *testing.T) {
	boom := errors.New("unavailable")
	a := NewAdapter(failingSlot{err: boom}, CartKey("buyer-1"))
	ctx := context.Background()

	_, err := a.Load(ctx)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, cart.ErrCorrupt)
	assert.ErrorIs(t, a.Save(ctx, nil), boom)
}
