package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/ugochukwu16henry/Team05-handcrafted-haven-project/internal/domain"
)

// CurrentVersion is written by Encode. Version 0 is the untagged array format.
const CurrentVersion = 1

var ErrUnsupportedVersion = errors.New("unsupported cart format version")

// price is written as a bare JSON number; both numbers and numeric strings are
// accepted on read.
type price decimal.Decimal

func (p price) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(p).String()), nil
}

func (p *price) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*p = price(d)
	return nil
}

type record struct {
	ProductID string `json:"productId"`
	Title     string `json:"title"`
	Price     price  `json:"price"`
	Quantity  int    `json:"quantity"`
	ImageURL  string `json:"imageUrl,omitempty"`
}

type envelope struct {
	Version int      `json:"version"`
	Items   []record `json:"items"`
}

func Encode(lines []domain.CartLine) ([]byte, error) {
	env := envelope{
		Version: CurrentVersion,
		Items:   make([]record, len(lines)),
	}
	for i, l := range lines {
		env.Items[i] = record{
			ProductID: l.ProductID,
			Title:     l.Title,
			Price:     price(l.UnitPrice),
			Quantity:  l.Quantity,
			ImageURL:  l.ImageURL,
		}
	}

	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal cart failed: %w", err)
	}
	return data, nil
}

// Decode parses both the versioned envelope and the legacy bare array.
// Records without a product id or with a quantity below 1 are dropped and
// duplicate product ids are merged. Quantities are capped at
// domain.MaxLineQuantity, so the result always satisfies the cart invariants.
func Decode(data []byte) ([]domain.CartLine, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []domain.CartLine{}, nil
	}

	var records []record
	if data[0] == '[' {
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("unmarshal cart failed: %w", err)
		}
	} else {
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("unmarshal cart failed: %w", err)
		}
		if env.Version < 1 || env.Version > CurrentVersion {
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
		}
		records = env.Items
	}

	lines := make([]domain.CartLine, 0, len(records))
	index := make(map[string]int, len(records))
	for _, r := range records {
		if r.ProductID == "" || r.Quantity < 1 {
			continue
		}
		qty := min(r.Quantity, domain.MaxLineQuantity)
		if i, ok := index[r.ProductID]; ok {
			lines[i].Quantity = min(lines[i].Quantity+qty, domain.MaxLineQuantity)
			continue
		}
		index[r.ProductID] = len(lines)
		lines = append(lines, domain.CartLine{
			ProductID: r.ProductID,
			Title:     r.Title,
			UnitPrice: decimal.Decimal(r.Price),
			Quantity:  qty,
			ImageURL:  r.ImageURL,
		})
	}
	return lines, nil
}
