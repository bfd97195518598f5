// internal/workers/product/search-product/models.go
package searchproduct

import "deal-hunter/internal/models"

// Input is a single search request. ImageInput is base64 image bytes (a data
// URL prefix is allowed) unless IsURLMode is set, in which case it is an
// absolute http(s) image URL.
type Input struct {
	ImageInput   string `json:"imageInput"`
	IsURLMode    bool   `json:"isUrlMode"`
	SortBy       string `json:"sortBy,omitempty"`
	VerifiedOnly bool   `json:"verifiedOnly,omitempty"`
}

type Output struct {
	Matches []models.ProductMatch `json:"matches"`
	Summary Summary               `json:"summary"`
}

// Summary describes the returned list. Lowest and Highest are 0 when the
// list is empty.
type Summary struct {
	Count         int     `json:"count"`
	VerifiedCount int     `json:"verifiedCount"`
	Lowest        float64 `json:"lowest"`
	Highest       float64 `json:"highest"`
	Currency      string  `json:"currency"`
}

// ResolvedImage is a URL the search provider can fetch. When IsTemporary is
// set, ObjectName names a stored object that must be removed after use.
type ResolvedImage struct {
	PublicURL   string
	IsTemporary bool
	ObjectName  string
}

const inputSchema = `{
	"type": "object",
	"required": ["imageInput"],
	"properties": {
		"imageInput":   {"type": "string", "minLength": 1},
		"isUrlMode":    {"type": "boolean"},
		"sortBy":       {"type": "string", "enum": ["", "price_ascending", "price_descending", "trust_descending"]},
		"verifiedOnly": {"type": "boolean"}
	}
}`
