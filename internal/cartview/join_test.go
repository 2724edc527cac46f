package cartview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SgtSlaughter1/flipkart-bff/internal/domain"
)

func TestJoin_EnrichesWithCatalogSnapshot(t *testing.T) {
	catalog := []domain.Product{
		{ID: "p1", Title: "Phone", Price: 100, DiscountPercentage: 20},
	}
	items := []MergedItem{
		{RawLineItem: domain.RawLineItem{ProductID: "p1", Quantity: 2}, CartRef: "c1"},
	}

	lines, unresolved := Join(items, catalog)
	require.Len(t, lines, 1)
	assert.Zero(t, unresolved)
	assert.Equal(t, "Phone", lines[0].Product.Title)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, domain.LineStateStable, lines[0].State)
	assert.Equal(t, domain.LineKey{ProductID: "p1", CartRef: "c1"}, lines[0].Key)
}

func TestJoin_DuplicateCartLinesStayIndependent(t *testing.T) {
	catalog := []domain.Product{{ID: "p1", Title: "Phone", Price: 50}}
	items := []MergedItem{
		{RawLineItem: domain.RawLineItem{ProductID: "p1", Quantity: 1}, CartRef: "c1"},
		{RawLineItem: domain.RawLineItem{ProductID: "p1", Quantity: 4}, CartRef: "c2"},
	}

	lines, unresolved := Join(items, catalog)
	require.Len(t, lines, 2)
	assert.Zero(t, unresolved)
	assert.Equal(t, "Phone", lines[0].Product.Title)
	assert.Equal(t, "Phone", lines[1].Product.Title)
	assert.NotEqual(t, lines[0].Key, lines[1].Key)

	// Both occurrences count toward the subtotal.
	summary := Summarize(lines, 0)
	assert.Equal(t, 250.0, summary.Subtotal)
}

func TestJoin_DuplicateWithinOneRecordGetsOccurrences(t *testing.T) {
	catalog := []domain.Product{{ID: "p1", Price: 10}}
	items := []MergedItem{
		{RawLineItem: domain.RawLineItem{ProductID: "p1", Quantity: 1}, CartRef: "c1"},
		{RawLineItem: domain.RawLineItem{ProductID: "p1", Quantity: 2}, CartRef: "c1"},
	}

	lines, _ := Join(items, catalog)
	require.Len(t, lines, 2)
	assert.Equal(t, 0, lines[0].Key.Occurrence)
	assert.Equal(t, 1, lines[1].Key.Occurrence)
}

func TestJoin_UnknownProductsDroppedAndCounted(t *testing.T) {
	catalog := []domain.Product{{ID: "p1", Price: 10}}
	items := []MergedItem{
		{RawLineItem: domain.RawLineItem{ProductID: "p1", Quantity: 1}, CartRef: "c1"},
		{RawLineItem: domain.RawLineItem{ProductID: "ghost", Quantity: 3}, CartRef: "c1"},
		{RawLineItem: domain.RawLineItem{ProductID: "phantom", Quantity: 1}, CartRef: "c1"},
	}

	lines, unresolved := Join(items, catalog)
	require.Len(t, lines, 1)
	assert.Equal(t, 2, unresolved)
}

func TestJoin_NumericVersusStringIdentifiers(t *testing.T) {
	// Catalog id arrived as a JSON number, cart line as a string.
	catalog := []domain.Product{{ID: domain.FlexID("7"), Title: "Seven", Price: 1}}
	items := []MergedItem{
		{RawLineItem: domain.RawLineItem{ProductID: "7", Quantity: 1}, CartRef: "c1"},
	}

	lines, unresolved := Join(items, catalog)
	require.Len(t, lines, 1)
	assert.Zero(t, unresolved)
	// Cart's own representation is kept verbatim.
	assert.Equal(t, "7", lines[0].ProductID)
}

func TestJoin_FirstCatalogMatchWins(t *testing.T) {
	catalog := []domain.Product{
		{ID: "p1", Title: "First", Price: 10},
		{ID: "p1", Title: "Second", Price: 99},
	}
	items := []MergedItem{
		{RawLineItem: domain.RawLineItem{ProductID: "p1", Quantity: 1}, CartRef: "c1"},
	}

	lines, _ := Join(items, catalog)
	require.Len(t, lines, 1)
	assert.Equal(t, "First", lines[0].Product.Title)
}

func TestJoin_NonPositiveQuantityClampsToOne(t *testing.T) {
	catalog := []domain.Product{{ID: "p1", Price: 10}}
	items := []MergedItem{
		{RawLineItem: domain.RawLineItem{ProductID: "p1", Quantity: 0}, CartRef: "c1"},
	}

	lines, _ := Join(items, catalog)
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Quantity)
}

func TestJoin_EmptyInputs(t *testing.T) {
	lines, unresolved := Join(nil, nil)
	assert.Empty(t, lines)
	assert.Zero(t, unresolved)

	lines, unresolved = Join([]MergedItem{{RawLineItem: domain.RawLineItem{ProductID: "a", Quantity: 1}}}, nil)
	assert.Empty(t, lines)
	assert.Equal(t, 1, unresolved)
}
