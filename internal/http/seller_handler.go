package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ugochukwu16henry/Team05-handcrafted-haven-project/internal/domain"
	"github.com/ugochukwu16henry/Team05-handcrafted-haven-project/internal/repository"
	"go.uber.org/zap"
)

// SellerDirectory is the read-only seller source.
type SellerDirectory interface {
	List(ctx context.Context) ([]*domain.Seller, error)
	GetSeller(ctx context.Context, id string) (*domain.Seller, error)
}

type SellerHandler struct {
	sellers SellerDirectory
	catalog Catalog
	timeout time.Duration
	logger  *zap.Logger
}

// NewSellerHandler accepts nil sources; requests needing them answer 503.
func NewSellerHandler(sellers SellerDirectory, catalog Catalog, timeout time.Duration, logger *zap.Logger) *SellerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SellerHandler{
		sellers: sellers,
		catalog: catalog,
		timeout: timeout,
		logger:  logger,
	}
}

type SellerResponse struct {
	ID           string    `json:"_id"`
	UserID       string    `json:"userId"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	BusinessName string    `json:"businessName,omitempty"`
	Description  string    `json:"description,omitempty"`
	Location     string    `json:"location,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type SellersResponse struct {
	Success bool             `json:"success"`
	Sellers []SellerResponse `json:"sellers"`
}

type SingleSellerResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Seller  *SellerResponse `json:"seller,omitempty"`
}

func convertSeller(s *domain.Seller) SellerResponse {
	return SellerResponse{
		ID:           s.ID,
		UserID:       s.UserID,
		Name:         s.Name,
		Email:        s.Email,
		BusinessName: s.BusinessName,
		Description:  s.Description,
		Location:     s.Location,
		Phone:        s.Phone,
		CreatedAt:    s.CreatedAt,
	}
}

// GET /api/sellers
func (h *SellerHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.sellers == nil {
		respondError(w, http.StatusServiceUnavailable, "not_configured", catalogNotConfiguredMessage)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	res, err := h.sellers.List(ctx)
	if err != nil {
		h.logger.Error("failed to fetch sellers", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to fetch sellers")
		return
	}

	resp := SellersResponse{
		Success: true,
		Sellers: make([]SellerResponse, len(res)),
	}
	for i, s := range res {
		resp.Sellers[i] = convertSeller(s)
	}
	respondJSON(w, http.StatusOK, resp)
}

// GET /api/sellers/{id}
func (h *SellerHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.sellers == nil {
		respondError(w, http.StatusServiceUnavailable, "not_configured", catalogNotConfiguredMessage)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s, err := h.sellers.GetSeller(ctx, chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, repository.ErrInvalidID):
		respondError(w, http.StatusBadRequest, "invalid_seller_id", "Invalid seller ID")
		return
	case errors.Is(err, repository.ErrSellerNotFound):
		respondJSON(w, http.StatusNotFound, SingleSellerResponse{Success: false, Message: "Seller not found"})
		return
	case err != nil:
		h.logger.Error("failed to fetch seller", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to fetch seller")
		return
	}

	seller := convertSeller(s)
	respondJSON(w, http.StatusOK, SingleSellerResponse{Success: true, Seller: &seller})
}

// GET /api/sellers/{id}/products
func (h *SellerHandler) Products(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		respondError(w, http.StatusServiceUnavailable, "not_configured", catalogNotConfiguredMessage)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	res, err := h.catalog.List(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrInvalidID) {
			respondError(w, http.StatusBadRequest, "invalid_seller_id", "Invalid seller ID")
			return
		}
		h.logger.Error("failed to fetch seller products", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to fetch seller products")
		return
	}

	resp := ProductsResponse{
		Success:  true,
		Products: make([]ProductResponse, len(res)),
	}
	for i, p := range res {
		resp.Products[i] = convertProduct(p)
	}
	respondJSON(w, http.StatusOK, resp)
}
