package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/ugochukwu16henry/Team05-handcrafted-haven-project/internal/cart"
	"github.com/ugochukwu16henry/Team05-handcrafted-haven-project/internal/domain"
)

// Adapter persists one cart under a fixed key of a Slot.
type Adapter struct {
	slot Slot
	key  string
}

func NewAdapter(slot Slot, key string) *Adapter {
	return &Adapter{slot: slot, key: key}
}

func (a *Adapter) Load(ctx context.Context) ([]domain.CartLine, error) {
	data, err := a.slot.Get(ctx, a.key)
	if errors.Is(err, ErrSlotNotFound) {
		return []domain.CartLine{}, nil
	}
	if err != nil {
		return []domain.CartLine{}, err
	}

	lines, err := Decode(data)
	if err != nil {
		return []domain.CartLine{}, fmt.Errorf("%w: %w", cart.ErrCorrupt, err)
	}
	return lines, nil
}

func (a *Adapter) Save(ctx context.Context, lines []domain.CartLine) error {
	data, err := Encode(lines)
	if err != nil {
		return err
	}
	return a.slot.Put(ctx, a.key, data)
}
