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

const catalogNotConfiguredMessage = "Database not configured. Set MONGO_URI to use the product catalog."

// Catalog is the read-only product source.
type Catalog interface {
	ProductLookup
	List(ctx context.Context, sellerID string) ([]*domain.Product, error)
}

// ReviewSource lists the reviews of a product.
type ReviewSource interface {
	ListByProduct(ctx context.Context, productID string) ([]*domain.Review, error)
}

type ProductHandler struct {
	catalog Catalog
	reviews ReviewSource
	timeout time.Duration
	logger  *zap.Logger
}

// NewProductHandler accepts nil sources; requests needing them answer 503.
func NewProductHandler(catalog Catalog, reviews ReviewSource, timeout time.Duration, logger *zap.Logger) *ProductHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductHandler{
		catalog: catalog,
		reviews: reviews,
		timeout: timeout,
		logger:  logger,
	}
}

type ProductResponse struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	SellerID    string    `json:"sellerId"`
	ArtistName  string    `json:"artistName"`
	Category    string    `json:"category,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ProductsResponse struct {
	Success  bool              `json:"success"`
	Message  string            `json:"message,omitempty"`
	Products []ProductResponse `json:"products"`
}

type SingleProductResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message,omitempty"`
	Product *ProductResponse `json:"product,omitempty"`
}

type ReviewResponse struct {
	ID          string    `json:"_id"`
	ProductID   string    `json:"productId"`
	UserID      string    `json:"userId"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	DateCreated time.Time `json:"dateCreated"`
	DateUpdated time.Time `json:"dateUpdated"`
}

type ReviewsResponse struct {
	Success bool             `json:"success"`
	Reviews []ReviewResponse `json:"reviews"`
}

func convertProduct(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		SellerID:    p.SellerID,
		ArtistName:  p.ArtistName,
		Category:    p.Category,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// GET /api/products?sellerId=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		respondError(w, http.StatusServiceUnavailable, "not_configured", catalogNotConfiguredMessage)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	res, err := h.catalog.List(ctx, r.URL.Query().Get("sellerId"))
	if err != nil {
		if errors.Is(err, repository.ErrInvalidID) {
			respondError(w, http.StatusBadRequest, "invalid_seller_id", "Invalid seller ID format")
			return
		}
		h.logger.Error("failed to fetch products", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to fetch products")
		return
	}

	resp := ProductsResponse{
		Success:  true,
		Products: make([]ProductResponse, len(res)),
	}
	for i, p := range res {
		resp.Products[i] = convertProduct(p)
	}
	if len(res) == 0 {
		resp.Message = "No products yet"
	}

	respondJSON(w, http.StatusOK, resp)
}

// GET /api/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		respondError(w, http.StatusServiceUnavailable, "not_configured", catalogNotConfiguredMessage)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, err := h.catalog.GetProduct(ctx, chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, repository.ErrInvalidID):
		respondError(w, http.StatusBadRequest, "invalid_product_id", "invalid product id")
		return
	case errors.Is(err, repository.ErrProductNotFound):
		respondJSON(w, http.StatusNotFound, SingleProductResponse{Success: false, Message: "No product found"})
		return
	case err != nil:
		h.logger.Error("failed to fetch product", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to fetch product")
		return
	}

	product := convertProduct(p)
	respondJSON(w, http.StatusOK, SingleProductResponse{Success: true, Product: &product})
}

// GET /api/products/{id}/reviews
func (h *ProductHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	h.listReviews(w, r, chi.URLParam(r, "id"))
}

// GET /api/product-reviews?productId=
func (h *ProductHandler) ReviewsByQuery(w http.ResponseWriter, r *http.Request) {
	productID := r.URL.Query().Get("productId")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "missing_product_id", "productId is required")
		return
	}
	h.listReviews(w, r, productID)
}

func (h *ProductHandler) listReviews(w http.ResponseWriter, r *http.Request, productID string) {
	if h.reviews == nil {
		respondError(w, http.StatusServiceUnavailable, "not_configured", catalogNotConfiguredMessage)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	res, err := h.reviews.ListByProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidID) {
			respondError(w, http.StatusBadRequest, "invalid_product_id", "invalid product id")
			return
		}
		h.logger.Error("failed to fetch reviews", zap.String("product_id", productID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to fetch reviews")
		return
	}

	resp := ReviewsResponse{
		Success: true,
		Reviews: make([]ReviewResponse, len(res)),
	}
	for i, rv := range res {
		resp.Reviews[i] = ReviewResponse{
			ID:          rv.ID,
			ProductID:   rv.ProductID,
			UserID:      rv.UserID,
			Rating:      rv.Rating,
			Comment:     rv.Comment,
			DateCreated: rv.CreatedAt,
			DateUpdated: rv.UpdatedAt,
		}
	}
	respondJSON(w, http.StatusOK, resp)
}
