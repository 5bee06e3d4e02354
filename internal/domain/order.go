package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	// OrderStatusReceived is the only status a placed order reaches. No payment
	// is taken and no order record is stored.
	OrderStatusReceived OrderStatus = "ORDER_RECEIVED"
)

func (s OrderStatus) String() string {
	return string(s)
}

type OrderSummaryItem struct {
	ProductID string
	Title     string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// OrderSummary represents the cart as shown on the checkout page
type OrderSummary struct {
	Items      []OrderSummaryItem
	ItemCount  int
	Total      decimal.Decimal
	Currency   string
	CapturedAt time.Time
}

type OrderConfirmation struct {
	Status  OrderStatus
	Message string
	Summary OrderSummary
}
