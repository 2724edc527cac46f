package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/SgtSlaughter1/flipkart-bff/internal/cartview"
	"github.com/SgtSlaughter1/flipkart-bff/internal/session"
)

// NewRouter assembles the BFF's HTTP surface: the reconciled cart view and
// its mutations, plus catalog passthroughs for the storefront pages.
func NewRouter(views *cartview.Manager, store session.Store, catalog Catalog, defaultUserID string, timeout time.Duration) http.Handler {
	cartHandler := NewCartHandler(views, store, timeout)
	productHandler := NewProductHandler(catalog, timeout)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(middleware.Compress(5))
	r.Use(SessionMiddleware(store, defaultUserID))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/session", cartHandler.GetSession)
		r.Get("/products", productHandler.List)
		r.Get("/categories", productHandler.Categories)
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Patch("/items/{product_id}", cartHandler.AdjustQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})
	})

	// The storefront runs on a different origin.
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})
	return c.Handler(r)
}
