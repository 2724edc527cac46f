package cartview

import "github.com/SgtSlaughter1/flipkart-bff/internal/domain"

// DefaultPlatformFee is the flat additive charge applied to every non-empty
// and empty cart alike. Configuration, not computation.
const DefaultPlatformFee = 4.0

// Summarize derives a PriceSummary from the current line sequence. Pure
// function: no I/O, no state, recomputed on every read.
//
// Unit prices are already discounted, so the per-line original price is
// price / (1 - pct/100) and the discount column is informational only:
// total = subtotal + fee, always.
func Summarize(lines []domain.EnrichedLineItem, fee float64) domain.PriceSummary {
	s := domain.PriceSummary{Fee: fee, Items: len(lines)}
	for _, line := range lines {
		qty := float64(line.Quantity)
		s.Subtotal += line.Product.Price * qty

		// A 100% discount would divide by zero; out-of-range values
		// contribute nothing instead of propagating Inf/NaN.
		pct := line.Product.DiscountPercentage
		if pct > 0 && pct < 100 {
			original := line.Product.Price / (1 - pct/100)
			s.Discount += (original - line.Product.Price) * qty
		}
	}
	s.Total = s.Subtotal + s.Fee
	return s
}
