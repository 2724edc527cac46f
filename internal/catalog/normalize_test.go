package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatten_NestedDocuments(t *testing.T) {
	payload := json.RawMessage(`[
		{"products": [{"_id": "a", "title": "A", "price": 10}, {"_id": "b", "title": "B", "price": 20}]},
		{"products": [{"_id": "c", "title": "C", "price": 30}]},
		{"products": []}
	]`)

	products := Flatten(payload)
	require.Len(t, products, 3)
	// Document order, nested order preserved.
	assert.Equal(t, "a", string(products[0].ID))
	assert.Equal(t, "b", string(products[1].ID))
	assert.Equal(t, "c", string(products[2].ID))
	assert.Equal(t, 30.0, products[2].Price)
}

func TestFlatten_FlatPayload(t *testing.T) {
	payload := json.RawMessage(`[
		{"_id": "x", "title": "X", "price": 5},
		{"_id": "y", "title": "Y", "price": 6}
	]`)

	products := Flatten(payload)
	require.Len(t, products, 2)
	assert.Equal(t, "x", string(products[0].ID))
	assert.Equal(t, "y", string(products[1].ID))
}

func TestFlatten_NumericIdentifiers(t *testing.T) {
	payload := json.RawMessage(`[{"id": 7, "title": "Seven", "price": 1}]`)

	products := Flatten(payload)
	require.Len(t, products, 1)
	assert.Equal(t, "7", string(products[0].ID))
}

func TestFlatten_MongoIDPreferred(t *testing.T) {
	payload := json.RawMessage(`[{"_id": "abc", "id": 99, "title": "Both", "price": 1}]`)

	products := Flatten(payload)
	require.Len(t, products, 1)
	assert.Equal(t, "abc", string(products[0].ID))
}

func TestFlatten_EmptyAndMalformed(t *testing.T) {
	assert.Empty(t, Flatten(json.RawMessage(`[]`)))
	assert.Empty(t, Flatten(json.RawMessage(`{}`)))
	assert.Empty(t, Flatten(json.RawMessage(`not json`)))
	assert.Empty(t, Flatten(json.RawMessage(`"a string"`)))
	assert.Empty(t, Flatten(nil))
}

func TestFlatten_FirstElementDecides(t *testing.T) {
	// First element has no products array, so the payload is flat even
	// though a later element carries one; its nested items are not pulled up.
	payload := json.RawMessage(`[
		{"_id": "p1", "title": "P1", "price": 1},
		{"products": [{"_id": "hidden", "price": 2}]}
	]`)

	products := Flatten(payload)
	require.Len(t, products, 2)
	assert.Equal(t, "p1", string(products[0].ID))
	assert.Equal(t, "", string(products[1].ID))
}
