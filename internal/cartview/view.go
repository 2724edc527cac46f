package cartview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/SgtSlaughter1/flipkart-bff/internal/cartsvc"
	"github.com/SgtSlaughter1/flipkart-bff/internal/domain"
	"github.com/SgtSlaughter1/flipkart-bff/internal/events"
)

var (
	ErrViewClosed   = errors.New("cart view is closed")
	ErrLineNotFound = errors.New("line item not found")
)

// CartClient is the slice of the cart-service client the view needs.
type CartClient interface {
	ListCarts(ctx context.Context) ([]domain.CartRecord, error)
	AdjustQuantity(ctx context.Context, userID, productID string, delta int) error
	RemoveItem(ctx context.Context, userID, productID string) error
}

// CatalogClient is the slice of the catalog client the view needs.
type CatalogClient interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// View owns one user's enriched line-item sequence for the duration of a
// session. Reads derive a fresh PriceSummary each time; writes go through the
// mutation coordinator: optimistic local change, remote call, then commit or
// rollback when the response lands.
//
// The line slice is written only here, and only in response to a completed
// remote call (success or failure) beyond the one optimistic set step.
type View struct {
	userID  string
	fee     float64
	carts   CartClient
	catalog CatalogClient
	pub     events.Publisher

	mu         sync.Mutex
	lines      []domain.EnrichedLineItem
	unresolved int
	notice     string
	closed     bool

	// One gate per line key. Same-line mutations queue up on their gate so
	// a second mutation is never issued while a prior one is pending;
	// different lines proceed concurrently.
	gatesMu sync.Mutex
	gates   map[domain.LineKey]*sync.Mutex
}

func NewView(userID string, fee float64, carts CartClient, catalog CatalogClient, pub events.Publisher) *View {
	if pub == nil {
		pub = events.Multi{}
	}
	return &View{
		userID:  userID,
		fee:     fee,
		carts:   carts,
		catalog: catalog,
		pub:     pub,
		gates:   make(map[domain.LineKey]*sync.Mutex),
	}
}

// Snapshot is what a single read of the view yields.
type Snapshot struct {
	Lines      []domain.EnrichedLineItem `json:"items"`
	Summary    domain.PriceSummary       `json:"summary"`
	Unresolved int                       `json:"unresolvedCount"`
	Notice     string                    `json:"notice,omitempty"`
}

// Refresh rebuilds the line sequence from both services. Catalog and cart
// fetches run concurrently; neither blocks mutations already in flight on
// other lines. A transport failure keeps the last-known-good lines and
// returns the error; a service-reported cart failure degrades to an empty
// cart with a user-facing notice.
func (v *View) Refresh(ctx context.Context) error {
	var (
		records  []domain.CartRecord
		products []domain.Product
		rejected string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, err := v.carts.ListCarts(gctx)
		if err != nil {
			if errors.Is(err, cartsvc.ErrRejected) {
				rejected = err.Error()
				return nil
			}
			return fmt.Errorf("fetch carts: %w", err)
		}
		records = recs
		return nil
	})
	g.Go(func() error {
		prods, err := v.catalog.ListProducts(gctx)
		if err != nil {
			return fmt.Errorf("fetch catalog: %w", err)
		}
		products = prods
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Str("user_id", v.userID).Msg("cart view refresh failed")
		return err
	}

	merged := MergeActive(records, v.userID)
	lines, unresolved := Join(merged, products)
	if unresolved > 0 {
		log.Warn().Int("unresolved", unresolved).Str("user_id", v.userID).
			Msg("cart lines referenced unknown products")
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrViewClosed
	}
	v.lines = lines
	v.unresolved = unresolved
	v.notice = rejected
	return nil
}

// Snapshot copies the current lines and derives their PriceSummary.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	lines := make([]domain.EnrichedLineItem, len(v.lines))
	copy(lines, v.lines)
	return Snapshot{
		Lines:      lines,
		Summary:    Summarize(lines, v.fee),
		Unresolved: v.unresolved,
		Notice:     v.notice,
	}
}

// AdjustQuantity applies a delta to the line identified by key. The local
// quantity changes optimistically and the line goes Pending while the remote
// "adjust by delta" call is out; success commits, failure restores the
// pre-mutation quantity and marks the line RolledBack. A resulting quantity
// of zero or less routes to Remove instead: quantity 0 means removal, never a
// zero-quantity line.
func (v *View) AdjustQuantity(ctx context.Context, key domain.LineKey, delta int) error {
	gate := v.gate(key)
	gate.Lock()
	defer gate.Unlock()

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrViewClosed
	}
	line := v.resolve(key)
	if line == nil {
		v.mu.Unlock()
		return ErrLineNotFound
	}
	key = line.Key // resolved key, in case the caller omitted the cart ref
	prev := line.Quantity
	next := prev + delta
	if next <= 0 {
		v.mu.Unlock()
		return v.remove(ctx, key)
	}
	line.Quantity = next
	line.State = domain.LineStatePending
	productID := line.ProductID
	v.mu.Unlock()

	err := v.carts.AdjustQuantity(ctx, v.userID, productID, delta)

	v.mu.Lock()
	if v.closed {
		// View torn down while the request was in flight; drop the result.
		v.mu.Unlock()
		return ErrViewClosed
	}
	line = v.resolve(key)
	if line == nil {
		v.mu.Unlock()
		return ErrLineNotFound
	}
	if err != nil {
		line.Quantity = prev
		line.State = domain.LineStateRolledBack
		v.mu.Unlock()
		log.Warn().Err(err).Str("user_id", v.userID).Str("product_id", productID).
			Msg("quantity adjust rolled back")
		return fmt.Errorf("adjust quantity: %w", err)
	}
	line.State = domain.LineStateStable
	v.mu.Unlock()
	v.publish(ctx, "adjust", productID)
	return nil
}

// Remove deletes the line identified by key. The remote deletion goes first;
// only a confirmed success deletes the local line. On failure the line stays
// untouched and the error is surfaced, non-fatally.
func (v *View) Remove(ctx context.Context, key domain.LineKey) error {
	gate := v.gate(key)
	gate.Lock()
	defer gate.Unlock()
	return v.remove(ctx, key)
}

// remove assumes the caller holds the line's gate.
func (v *View) remove(ctx context.Context, key domain.LineKey) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrViewClosed
	}
	line := v.resolve(key)
	if line == nil {
		v.mu.Unlock()
		return ErrLineNotFound
	}
	key = line.Key
	productID := line.ProductID
	v.mu.Unlock()

	err := v.carts.RemoveItem(ctx, v.userID, productID)

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrViewClosed
	}
	if err != nil {
		v.mu.Unlock()
		log.Warn().Err(err).Str("user_id", v.userID).Str("product_id", productID).
			Msg("remove failed, line kept")
		return fmt.Errorf("remove item: %w", err)
	}
	for i := range v.lines {
		if v.lines[i].Key == key {
			v.lines = append(v.lines[:i], v.lines[i+1:]...)
			break
		}
	}
	v.mu.Unlock()
	v.publish(ctx, "remove", productID)
	return nil
}

// AddItem adds one unit of a product to the user's cart. The product may not
// be a local line yet, so there is nothing to mutate optimistically; the next
// Refresh picks the new line up.
func (v *View) AddItem(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	if err := v.carts.AdjustQuantity(ctx, v.userID, productID, quantity); err != nil {
		return fmt.Errorf("add item: %w", err)
	}
	v.publish(ctx, "add", productID)
	return nil
}

// Close tears the view down. In-flight mutation completions arriving after
// Close are discarded without touching state.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	v.lines = nil
}

// resolve finds a line by stable key, caller must hold v.mu. An empty CartRef
// matches the first line with the product id, which covers callers that only
// know the product.
func (v *View) resolve(key domain.LineKey) *domain.EnrichedLineItem {
	for i := range v.lines {
		if key.CartRef == "" {
			if v.lines[i].Key.ProductID == key.ProductID {
				return &v.lines[i]
			}
			continue
		}
		if v.lines[i].Key == key {
			return &v.lines[i]
		}
	}
	return nil
}

func (v *View) gate(key domain.LineKey) *sync.Mutex {
	// Gate on the product alone: a key with and without a cart ref must
	// still serialize against each other.
	gateKey := domain.LineKey{ProductID: key.ProductID}
	v.gatesMu.Lock()
	defer v.gatesMu.Unlock()
	g, ok := v.gates[gateKey]
	if !ok {
		g = &sync.Mutex{}
		v.gates[gateKey] = g
	}
	return g
}

func (v *View) publish(ctx context.Context, action, productID string) {
	ev := events.CartUpdated{
		UserID:    v.userID,
		Action:    action,
		ProductID: productID,
		At:        time.Now(),
	}
	if err := v.pub.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Str("action", action).Msg("cart event publish failed")
	}
}
