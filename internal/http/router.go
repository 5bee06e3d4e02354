package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type RouterConfig struct {
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
}

// NewRouter mounts the cart, checkout and catalog routes.
func NewRouter(cfg RouterConfig, carts *CartHandler, checkout *CheckoutHandler, products *ProductHandler, sellers *SellerHandler, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	r.Use(middleware.Compress(5))
	if cfg.MaxRequestBodySize > 0 {
		r.Use(MaxBodySize(cfg.MaxRequestBodySize))
	}

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ProfileMiddleware)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", carts.GetCart)
			r.Delete("/", carts.ClearCart)
			r.Post("/items", carts.AddItem)
			r.Put("/items/{product_id}", carts.UpdateQuantity)
			r.Delete("/items/{product_id}", carts.RemoveItem)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", checkout.Summary)
			r.Post("/", checkout.PlaceOrder)
		})
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", products.List)
		r.Get("/{id}", products.Get)
		r.Get("/{id}/reviews", products.Reviews)
	})
	r.Get("/api/product-reviews", products.ReviewsByQuery)

	r.Route("/api/sellers", func(r chi.Router) {
		r.Get("/", sellers.List)
		r.Get("/{id}", sellers.Get)
		r.Get("/{id}/products", sellers.Products)
	})

	return r
}
