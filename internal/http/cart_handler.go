package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/ugochukwu16henry/Team05-handcrafted-haven-project/internal/cart"
	"github.com/ugochukwu16henry/Team05-handcrafted-haven-project/internal/domain"
	"github.com/ugochukwu16henry/Team05-handcrafted-haven-project/internal/repository"
	"go.uber.org/zap"
)

const persistenceWarningMessage = "Your cart was updated but could not be saved. It may be lost if you leave the site."

// CartProvider returns the cart store of a buyer profile.
type CartProvider interface {
	Get(ctx context.Context, profileID string) (*cart.Store, error)
}

// ProductLookup resolves catalog products. When configured, carts snapshot the
// catalog's title, price and image instead of the values sent by the client.
type ProductLookup interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

type CartHandler struct {
	carts    CartProvider
	products ProductLookup
	timeout  time.Duration
	logger   *zap.Logger
}

func NewCartHandler(carts CartProvider, products ProductLookup, timeout time.Duration, logger *zap.Logger) *CartHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartHandler{
		carts:    carts,
		products: products,
		timeout:  timeout,
		logger:   logger,
	}
}

type AddItemRequestDTO struct {
	ProductID string          `json:"productId" validate:"required,max=128"`
	Title     string          `json:"title" validate:"max=256"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	ImageURL  string          `json:"imageUrl" validate:"omitempty,max=2048"`
	Quantity  *int            `json:"quantity" validate:"omitempty,min=1,max=999"`
}

// UpdateQuantityRequestDTO allows zero and negative quantities; they remove the line.
// The upper bound matches domain.MaxLineQuantity.
type UpdateQuantityRequestDTO struct {
	Quantity *int `json:"quantity" validate:"required,max=999"`
}

type CartItemDTO struct {
	ProductID string `json:"productId"`
	Title     string `json:"title"`
	UnitPrice string `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	ImageURL  string `json:"imageUrl,omitempty"`
	Subtotal  string `json:"subtotal"`
}

type CartResponseDTO struct {
	ProfileID string        `json:"profileId"`
	Items     []CartItemDTO `json:"items"`
	ItemCount int           `json:"itemCount"`
	Total     string        `json:"total"`
	Warning   string        `json:"warning,omitempty"`
}

func convertCart(profileID string, view domain.CartView) CartResponseDTO {
	resp := CartResponseDTO{
		ProfileID: profileID,
		Items:     make([]CartItemDTO, len(view.Items)),
		ItemCount: view.ItemCount,
		Total:     formatMoney(view.Total),
	}

	for i, item := range view.Items {
		resp.Items[i] = CartItemDTO{
			ProductID: item.ProductID,
			Title:     item.Title,
			UnitPrice: formatMoney(item.UnitPrice),
			Quantity:  item.Quantity,
			ImageURL:  item.ImageURL,
			Subtotal:  formatMoney(item.Subtotal()),
		}
	}

	return resp
}

func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	profileID, store, ok := h.store(ctx, w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, convertCart(profileID, store.View()))
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	line := domain.CartLine{
		ProductID: req.ProductID,
		Title:     req.Title,
		UnitPrice: req.UnitPrice,
		ImageURL:  req.ImageURL,
	}

	if h.products != nil {
		product, err := h.products.GetProduct(ctx, req.ProductID)
		if err != nil {
			handleProductError(w, err)
			return
		}
		line.Title = product.Title
		line.UnitPrice = decimal.NewFromFloat(product.Price)
		line.ImageURL = product.ImageURL
	} else if line.Title == "" {
		respondError(w, http.StatusBadRequest, "invalid_title", "title is required")
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	profileID, store, ok := h.store(ctx, w, r)
	if !ok {
		return
	}

	err := store.AddItem(ctx, line, quantity)
	h.respondMutation(w, http.StatusCreated, profileID, store, err)
}

// PUT /api/v1/cart/items/{product_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "product_id")

	var req UpdateQuantityRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	profileID, store, ok := h.store(ctx, w, r)
	if !ok {
		return
	}

	err := store.UpdateQuantity(ctx, productID, *req.Quantity)
	h.respondMutation(w, http.StatusOK, profileID, store, err)
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "product_id")

	profileID, store, ok := h.store(ctx, w, r)
	if !ok {
		return
	}

	err := store.RemoveItem(ctx, productID)
	h.respondMutation(w, http.StatusOK, profileID, store, err)
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	profileID, store, ok := h.store(ctx, w, r)
	if !ok {
		return
	}

	err := store.ClearCart(ctx)
	h.respondMutation(w, http.StatusOK, profileID, store, err)
}

func (h *CartHandler) store(ctx context.Context, w http.ResponseWriter, r *http.Request) (string, *cart.Store, bool) {
	profileID := getProfileIDFromContext(r.Context())
	if profileID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing buyer profile")
		return "", nil, false
	}

	store, err := h.carts.Get(ctx, profileID)
	if err != nil {
		h.logger.Error("failed to load cart", zap.String("profile_id", profileID), zap.Error(err))
		handleCartError(w, err)
		return "", nil, false
	}
	return profileID, store, true
}

// respondMutation renders the cart after a mutation. A persistence warning does
// not fail the request; the response carries a warning for the buyer instead.
func (h *CartHandler) respondMutation(w http.ResponseWriter, status int, profileID string, store *cart.Store, err error) {
	if err != nil && !cart.IsWarning(err) {
		handleCartError(w, err)
		return
	}

	resp := convertCart(profileID, store.View())
	if err != nil {
		resp.Warning = persistenceWarningMessage
	}
	respondJSON(w, status, resp)
}

func handleProductError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrInvalidID):
		respondError(w, http.StatusBadRequest, "invalid_product_id", "invalid product id")
	case errors.Is(err, repository.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "not_found", "product not found")
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "product lookup timed out")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to validate product")
	}
}
