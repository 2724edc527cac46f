package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sony/gobreaker/v2"

	"github.com/SgtSlaughter1/flipkart-bff/internal/cartsvc"
	"github.com/SgtSlaughter1/flipkart-bff/internal/cartview"
	"github.com/SgtSlaughter1/flipkart-bff/internal/domain"
	"github.com/SgtSlaughter1/flipkart-bff/internal/session"
)

type CartHandler struct {
	views   *cartview.Manager
	store   session.Store
	timeout time.Duration
}

func NewCartHandler(views *cartview.Manager, store session.Store, timeout time.Duration) *CartHandler {
	return &CartHandler{views: views, store: store, timeout: timeout}
}

type AddItemRequestDTO struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type AdjustQuantityRequestDTO struct {
	// Quantity is a delta, not an absolute value.
	Quantity   int    `json:"quantity"`
	CartRef    string `json:"cartRef,omitempty"`
	Occurrence int    `json:"occurrence,omitempty"`
}

// GetCart rebuilds and returns the reconciled cart view: enriched lines,
// price summary, the unresolved-product count, and any degraded-mode notice.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := sessionFromContext(r.Context())
	if s == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	view := h.views.Get(s.ID, s.UserID)
	if err := view.Refresh(ctx); err != nil {
		// Keep serving the last-known-good snapshot with an error banner.
		snap := view.Snapshot()
		snap.Notice = "cart is temporarily out of date: " + err.Error()
		respondJSON(w, http.StatusOK, snap)
		return
	}
	respondJSON(w, http.StatusOK, view.Snapshot())
}

// AddItem puts one product into the user's cart (delta semantics server-side).
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := sessionFromContext(r.Context())
	if s == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productId is required")
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	view := h.views.Get(s.ID, s.UserID)
	if err := view.AddItem(ctx, req.ProductID, req.Quantity); err != nil {
		handleCartError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]bool{"success": true})
}

// AdjustQuantity applies a quantity delta to one line. A delta that would
// bring the quantity to zero or below removes the line instead.
func (h *CartHandler) AdjustQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := sessionFromContext(r.Context())
	if s == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	var req AdjustQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity == 0 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity delta must be non-zero")
		return
	}

	view := h.views.Get(s.ID, s.UserID)
	key := domain.LineKey{ProductID: productID, CartRef: req.CartRef, Occurrence: req.Occurrence}
	if err := view.AdjustQuantity(ctx, key, req.Quantity); err != nil {
		handleCartError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view.Snapshot())
}

// RemoveItem deletes one line from the cart.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := sessionFromContext(r.Context())
	if s == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	occurrence, _ := strconv.Atoi(r.URL.Query().Get("occurrence"))

	view := h.views.Get(s.ID, s.UserID)
	key := domain.LineKey{
		ProductID:  productID,
		CartRef:    r.URL.Query().Get("cartRef"),
		Occurrence: occurrence,
	}
	if err := view.Remove(ctx, key); err != nil {
		handleCartError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view.Snapshot())
}

// GetSession exposes the session context the navbar needs: user id and the
// cached cart count maintained by the event refresher.
func (h *CartHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := sessionFromContext(r.Context())
	if s == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}
	count, err := h.store.GetCartCount(ctx, s.UserID)
	if err != nil {
		count = 0
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"userId":    s.UserID,
		"cartCount": count,
	})
}

func handleCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cartview.ErrLineNotFound):
		respondError(w, http.StatusNotFound, "not_found", "line item not found")
	case errors.Is(err, cartview.ErrViewClosed):
		respondError(w, http.StatusConflict, "view_closed", "cart view was torn down")
	case errors.Is(err, cartsvc.ErrRejected):
		respondError(w, http.StatusConflict, "rejected", err.Error())
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "cart service unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "cart service timed out")
	default:
		respondError(w, http.StatusBadGateway, "upstream_error", err.Error())
	}
}
