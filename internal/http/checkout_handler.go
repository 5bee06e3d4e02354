package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ugochukwu16henry/Team05-handcrafted-haven-project/internal/cart"
	"github.com/ugochukwu16henry/Team05-handcrafted-haven-project/internal/checkout"
	"github.com/ugochukwu16henry/Team05-handcrafted-haven-project/internal/domain"
	"go.uber.org/zap"
)

type CheckoutHandler struct {
	carts    CartProvider
	checkout *checkout.Service
	timeout  time.Duration
	logger   *zap.Logger
}

func NewCheckoutHandler(carts CartProvider, svc *checkout.Service, timeout time.Duration, logger *zap.Logger) *CheckoutHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutHandler{
		carts:    carts,
		checkout: svc,
		timeout:  timeout,
		logger:   logger,
	}
}

type OrderSummaryItemDTO struct {
	ProductID string `json:"productId"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
	Subtotal  string `json:"subtotal"`
}

type OrderSummaryDTO struct {
	Items      []OrderSummaryItemDTO `json:"items"`
	ItemCount  int                   `json:"itemCount"`
	Total      string                `json:"total"`
	Currency   string                `json:"currency"`
	CapturedAt time.Time             `json:"capturedAt"`
}

type CheckoutResponseDTO struct {
	Status  string           `json:"status"`
	Message string           `json:"message,omitempty"`
	Summary *OrderSummaryDTO `json:"summary,omitempty"`
	Warning string           `json:"warning,omitempty"`
}

const checkoutStatusEmpty = "EMPTY"

func convertSummary(s domain.OrderSummary) *OrderSummaryDTO {
	dto := &OrderSummaryDTO{
		Items:      make([]OrderSummaryItemDTO, len(s.Items)),
		ItemCount:  s.ItemCount,
		Total:      formatMoney(s.Total),
		Currency:   s.Currency,
		CapturedAt: s.CapturedAt,
	}
	for i, item := range s.Items {
		dto.Items[i] = OrderSummaryItemDTO{
			ProductID: item.ProductID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: formatMoney(item.UnitPrice),
			Subtotal:  formatMoney(item.Subtotal),
		}
	}
	return dto
}

// GET /api/v1/checkout
func (h *CheckoutHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	store, ok := h.store(ctx, w, r)
	if !ok {
		return
	}

	summary, err := h.checkout.Summary(store)
	if errors.Is(err, checkout.ErrEmptyCart) {
		respondJSON(w, http.StatusOK, CheckoutResponseDTO{
			Status:  checkoutStatusEmpty,
			Message: checkout.EmptyCartMessage,
		})
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, CheckoutResponseDTO{
		Status:  "PENDING",
		Summary: convertSummary(*summary),
	})
}

// POST /api/v1/checkout
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	store, ok := h.store(ctx, w, r)
	if !ok {
		return
	}

	confirmation, err := h.checkout.PlaceOrder(ctx, store)
	if errors.Is(err, checkout.ErrEmptyCart) {
		respondError(w, http.StatusConflict, "empty_cart", checkout.EmptyCartMessage)
		return
	}
	if err != nil && !cart.IsWarning(err) {
		handleCartError(w, err)
		return
	}

	resp := CheckoutResponseDTO{
		Status:  confirmation.Status.String(),
		Message: confirmation.Message,
		Summary: convertSummary(confirmation.Summary),
	}
	if err != nil {
		resp.Warning = persistenceWarningMessage
	}
	respondJSON(w, http.StatusCreated, resp)
}

func (h *CheckoutHandler) store(ctx context.Context, w http.ResponseWriter, r *http.Request) (*cart.Store, bool) {
	profileID := getProfileIDFromContext(r.Context())
	if profileID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing buyer profile")
		return nil, false
	}

	store, err := h.carts.Get(ctx, profileID)
	if err != nil {
		h.logger.Error("failed to load cart", zap.String("profile_id", profileID), zap.Error(err))
		handleCartError(w, err)
		return nil, false
	}
	return store, true
}
