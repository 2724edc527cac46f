package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/SgtSlaughter1/flipkart-bff/internal/domain"
)

// Catalog is the slice of the catalog client the product handlers need.
type Catalog interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListProductsByCategory(ctx context.Context, category string) ([]domain.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
}

type ProductHandler struct {
	catalog Catalog
	timeout time.Duration
}

func NewProductHandler(catalog Catalog, timeout time.Duration) *ProductHandler {
	return &ProductHandler{catalog: catalog, timeout: timeout}
}

type ProductsResponse struct {
	Products []domain.Product `json:"products"`
	Count    int              `json:"count"`
}

// List returns the normalized catalog, optionally narrowed to one category.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var (
		products []domain.Product
		err      error
	)
	if category := r.URL.Query().Get("category"); category != "" {
		products, err = h.catalog.ListProductsByCategory(ctx, category)
	} else {
		products, err = h.catalog.ListProducts(ctx)
	}
	if err != nil {
		// Recoverable: an empty listing plus a banner beats a dead page.
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"products": []domain.Product{},
			"count":    0,
			"notice":   "catalog is temporarily unavailable",
		})
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	respondJSON(w, http.StatusOK, ProductsResponse{Products: products, Count: len(products)})
}

// Categories returns the ordered category identifiers.
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	categories, err := h.catalog.ListCategories(ctx)
	if err != nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"categories": []string{},
			"notice":     "catalog is temporarily unavailable",
		})
		return
	}
	if categories == nil {
		categories = []string{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"categories": categories})
}
