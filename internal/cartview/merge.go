// Package cartview reconciles the remote catalog and cart services into one
// authoritative, priced line-item view and coordinates optimistic mutations
// against it.
package cartview

import (
	"strconv"

	"github.com/SgtSlaughter1/flipkart-bff/internal/domain"
)

// MergedItem is a raw cart line annotated with the record it came from, so a
// later mutation can be targeted at a stable (product, record) pair instead
// of a slice position.
type MergedItem struct {
	domain.RawLineItem
	CartRef string
}

// MergeActive collapses all of a user's active cart records into one logical
// line-item list: records in their original order, each record's items in
// original order. Inactive records and other users' records never influence
// the result. No active records means an empty merge, not an error.
//
// The same productId can appear twice when two active records both hold it;
// each occurrence stays an independent line so quantity accounting is exact.
func MergeActive(records []domain.CartRecord, userID string) []MergedItem {
	var out []MergedItem
	for i, rec := range records {
		if domain.NormalizeID(string(rec.UserID)) != domain.NormalizeID(userID) {
			continue
		}
		if rec.Status != domain.CartStatusActive {
			continue
		}
		ref := string(rec.ID)
		if ref == "" {
			ref = "record-" + strconv.Itoa(i)
		}
		for _, item := range rec.Items {
			out = append(out, MergedItem{RawLineItem: item, CartRef: ref})
		}
	}
	return out
}
