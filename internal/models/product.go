// internal/models/product.go
package models

// Price is a listing price in the market currency. Amount is always > 0 on
// any ProductMatch that leaves the normalizer.
type Price struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// ProductMatch is a normalized, scored listing returned to callers.
type ProductMatch struct {
	Title      string `json:"title"`
	Price      Price  `json:"price"`
	Thumbnail  string `json:"thumbnail"`
	Source     string `json:"source"`
	Link       string `json:"link"`
	SourceIcon string `json:"sourceIcon,omitempty"`
	TrustScore int    `json:"trustScore"`
	Verified   bool   `json:"verified"`
}

// RawVisualMatch is one untrusted record from the visual search provider,
// decoded as generic JSON. Known keys: title, source, link, thumbnail,
// source_icon and price{extracted_value, currency}. Any of them may be
// missing or carry the wrong type.
type RawVisualMatch map[string]interface{}

// ShoppingResult is one record of a shopping search used for daily deals.
type ShoppingResult struct {
	Title          string  `json:"title"`
	ExtractedPrice float64 `json:"extracted_price"`
	Thumbnail      string  `json:"thumbnail"`
	Link           string  `json:"link"`
	ProductLink    string  `json:"product_link"`
	Source         string  `json:"source"`
}
