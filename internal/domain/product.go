package domain

import (
	"encoding/json"
	"strings"
)

// FlexID is a product or record identifier that may arrive on the wire as a
// JSON string or a JSON number. Both decode to the same canonical string so
// identifiers from the catalog and cart services compare equal regardless of
// representation.
type FlexID string

func (f *FlexID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == "" {
		*f = ""
		return nil
	}
	if s[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*f = FlexID(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

// NormalizeID is the comparison form used for catalog joins.
func NormalizeID(id string) string {
	return strings.TrimSpace(id)
}

// Product is a catalog entry, immutable for the duration of a view session
// and replaced wholesale on re-fetch.
type Product struct {
	ID          FlexID  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Brand       string  `json:"brand,omitempty"`
	Category    string  `json:"category,omitempty"`
	Price       float64 `json:"price"`
	// DiscountPercentage is 0-100; absent means 0. Price already reflects it.
	DiscountPercentage float64 `json:"discountPercentage,omitempty"`
	Stock              int     `json:"stock"`
	Rating             float64 `json:"rating,omitempty"`
	Thumbnail          string  `json:"thumbnail,omitempty"`
}

// The catalog service emits mongo-style documents, so the identifier can show
// up as "_id" instead of "id". Prefer "_id" when both are present.
func (p *Product) UnmarshalJSON(b []byte) error {
	type alias Product
	aux := struct {
		*alias
		MongoID FlexID `json:"_id"`
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if aux.MongoID != "" {
		p.ID = aux.MongoID
	}
	return nil
}
