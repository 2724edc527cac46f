package cartview

import (
	"github.com/SgtSlaughter1/flipkart-bff/internal/domain"
)

// Join resolves each merged line against the normalized catalog by
// string-normalized identifier equality. Matching lines come back enriched
// with the product snapshot; the cart line's productId is kept verbatim even
// when the catalog spells it differently.
//
// Policy for unknown products: the line is dropped, excluded from both
// display and totals, and counted in the returned unresolved total so the
// caller can tell the user "N line items referenced unknown products" rather
// than losing them silently.
//
// Duplicate catalog identifiers resolve to the first match of a left-to-right
// scan. Duplicate cart lines each become an independent enriched line; the
// Occurrence field disambiguates their keys.
func Join(items []MergedItem, catalog []domain.Product) (lines []domain.EnrichedLineItem, unresolved int) {
	index := make(map[string]domain.Product, len(catalog))
	for _, p := range catalog {
		id := domain.NormalizeID(string(p.ID))
		if _, seen := index[id]; !seen {
			index[id] = p
		}
	}

	type lineRef struct {
		productID, cartRef string
	}
	occurrences := make(map[lineRef]int)
	for _, item := range items {
		product, ok := index[domain.NormalizeID(string(item.ProductID))]
		if !ok {
			unresolved++
			continue
		}

		quantity := item.Quantity
		if quantity < 1 {
			quantity = 1
		}

		ref := lineRef{productID: string(item.ProductID), cartRef: item.CartRef}
		key := domain.LineKey{
			ProductID:  ref.productID,
			CartRef:    ref.cartRef,
			Occurrence: occurrences[ref],
		}
		occurrences[ref]++

		lines = append(lines, domain.EnrichedLineItem{
			Key:       key,
			ProductID: string(item.ProductID),
			Quantity:  quantity,
			Product:   product,
			State:     domain.LineStateStable,
		})
	}
	return lines, unresolved
}
