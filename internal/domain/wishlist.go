package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ProductRef refers to a product either by bare ID or as an embedded summary.
// The wishlist API returns embedded summaries on list calls and bare IDs on
// add calls, so both representations coexist in one cache.
type ProductRef struct {
	ID      string
	Summary *ProductSummary
}

// RefByID creates a ProductRef holding only a product ID.
func RefByID(id string) ProductRef {
	return ProductRef{ID: id}
}

// RefEmbedded creates a ProductRef holding an embedded product summary.
func RefEmbedded(p ProductSummary) ProductRef {
	return ProductRef{Summary: &p}
}

// ProductID extracts the product identity regardless of representation.
func (r ProductRef) ProductID() string {
	if r.Summary != nil {
		return r.Summary.ID
	}
	return r.ID
}

// MarshalJSON writes either the bare ID string or the embedded object,
// preserving whichever representation the entry carries.
func (r ProductRef) MarshalJSON() ([]byte, error) {
	if r.Summary != nil {
		return json.Marshal(r.Summary)
	}
	return json.Marshal(r.ID)
}

// UnmarshalJSON accepts either a JSON string (bare ID) or an object
// (embedded summary).
func (r *ProductRef) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*r = ProductRef{}
		return nil
	}

	switch trimmed[0] {
	case '"':
		var id string
		if err := json.Unmarshal(trimmed, &id); err != nil {
			return fmt.Errorf("unmarshal product ref id: %w", err)
		}
		*r = ProductRef{ID: id}
		return nil
	case '{':
		var summary ProductSummary
		if err := json.Unmarshal(trimmed, &summary); err != nil {
			return fmt.Errorf("unmarshal product ref summary: %w", err)
		}
		*r = ProductRef{Summary: &summary}
		return nil
	default:
		return fmt.Errorf("product ref must be a string or object, got %q", trimmed[0])
	}
}

// WishlistEntry is one saved product in a user's server-side wishlist.
// EntryID is assigned by the wishlist API.
type WishlistEntry struct {
	EntryID string     `json:"entry_id"`
	Product ProductRef `json:"product"`
}
