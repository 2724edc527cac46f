package catalog

import (
	"bytes"
	"encoding/json"

	"github.com/SgtSlaughter1/flipkart-bff/internal/domain"
)

// Flatten normalizes a raw catalog payload into a flat product sequence.
//
// The catalog service answers in one of two shapes: a flat array of products,
// or an array of documents each carrying a nested "products" array. The shape
// is decided by probing the first element; when it carries a products
// sub-array the whole payload is treated as nested and the sub-arrays are
// concatenated in document order, preserving nested order.
//
// Empty or malformed payloads flatten to nil rather than an error: the join
// downstream simply finds no matches. No deduplication happens here; on
// duplicate identifiers the joiner uses the first match of a left-to-right
// scan.
func Flatten(payload json.RawMessage) []domain.Product {
	var docs []json.RawMessage
	if err := json.Unmarshal(payload, &docs); err != nil || len(docs) == 0 {
		return nil
	}

	if !isNested(docs[0]) {
		var flat []domain.Product
		if err := json.Unmarshal(payload, &flat); err != nil {
			return nil
		}
		return flat
	}

	var out []domain.Product
	for _, doc := range docs {
		var d struct {
			Products []domain.Product `json:"products"`
		}
		if err := json.Unmarshal(doc, &d); err != nil {
			continue
		}
		out = append(out, d.Products...)
	}
	return out
}

func isNested(first json.RawMessage) bool {
	var probe struct {
		Products json.RawMessage `json:"products"`
	}
	if err := json.Unmarshal(first, &probe); err != nil {
		return false
	}
	return bytes.HasPrefix(bytes.TrimSpace(probe.Products), []byte("["))
}
