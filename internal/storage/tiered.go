package storage

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// TieredSlot reads through a cache in front of a primary slot. Writes go to the
// primary and invalidate the cached copy.
type TieredSlot struct {
	primary Slot
	cache   Slot
	sfg     singleflight.Group // Prevents cache stampede
	logger  *zap.Logger
}

func NewTieredSlot(primary, cache Slot, logger *zap.Logger) *TieredSlot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TieredSlot{
		primary: primary,
		cache:   cache,
		logger:  logger,
	}
}

func (t *TieredSlot) Get(ctx context.Context, key string) ([]byte, error) {
	v, err, _ := t.sfg.Do(key, func() (interface{}, error) {
		data, err := t.cache.Get(ctx, key)
		if err == nil {
			return data, nil // cached
		}
		if !errors.Is(err, ErrSlotNotFound) {
			t.logger.Warn("cache get error", zap.String("key", key), zap.Error(err))
		}

		data, err = t.primary.Get(ctx, key)
		if err != nil {
			return nil, err
		}

		// Filled synchronously so a fill can not land after a later invalidation
		// from this process.
		setCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if errSet := t.cache.Put(setCtx, key, data); errSet != nil {
			t.logger.Warn("cache set error", zap.String("key", key), zap.Error(errSet))
		}

		return data, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]byte), nil
}

func (t *TieredSlot) Put(ctx context.Context, key string, value []byte) error {
	if err := t.primary.Put(ctx, key, value); err != nil {
		return err
	}
	t.invalidate(key)
	return nil
}

func (t *TieredSlot) Delete(ctx context.Context, key string) error {
	if err := t.primary.Delete(ctx, key); err != nil {
		return err
	}
	t.invalidate(key)
	return nil
}

func (t *TieredSlot) invalidate(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := t.cache.Delete(ctx, key); err != nil {
		t.logger.Warn("cache invalidate error", zap.String("key", key), zap.Error(err))
	}
}
