package session

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/SgtSlaughter1/flipkart-bff/internal/cartview"
	"github.com/SgtSlaughter1/flipkart-bff/internal/domain"
	"github.com/SgtSlaughter1/flipkart-bff/internal/events"
)

// CartLister is the slice of the cart-service client the refresher needs.
type CartLister interface {
	ListCarts(ctx context.Context) ([]domain.CartRecord, error)
}

// Refresher keeps per-user cart counts current by listening on the cart
// event channel instead of an ambient refresh callback. The count is the
// number of merged line items across the user's active carts.
type Refresher struct {
	store Store
	carts CartLister
}

func NewRefresher(store Store, carts CartLister) *Refresher {
	return &Refresher{store: store, carts: carts}
}

// Run consumes events until the channel closes or the context is cancelled.
func (r *Refresher) Run(ctx context.Context, ch <-chan events.CartUpdated) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			r.refresh(ctx, ev.UserID)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context, userID string) {
	records, err := r.carts.ListCarts(ctx)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("cart count refresh failed")
		return
	}
	merged := cartview.MergeActive(records, userID)
	if err := r.store.SetCartCount(ctx, userID, len(merged)); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("cart count store failed")
	}
}
