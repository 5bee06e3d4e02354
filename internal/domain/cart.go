package domain

import "github.com/shopspring/decimal"

// MaxLineQuantity caps the quantity of a single cart line.
const MaxLineQuantity = 999

// CartLine is one row of a cart. Title, UnitPrice and ImageURL are snapshots
// taken when the product was added and are never re-fetched.
type CartLine struct {
	ProductID string          `json:"productId"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	ImageURL  string          `json:"imageUrl,omitempty"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartView is a consistent snapshot of a cart and its derived values.
type CartView struct {
	Items     []CartLine
	ItemCount int
	Total     decimal.Decimal
}

func (v CartView) IsEmpty() bool {
	return len(v.Items) == 0
}

// ItemCount sums quantities, not lines.
func ItemCount(lines []CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func Total(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}
