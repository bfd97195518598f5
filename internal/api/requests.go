// internal/api/requests.go
package api

const searchRequestSchema = `{
	"type": "object",
	"properties": {
		"imageInput":   {"type": "string", "minLength": 1},
		"isUrlMode":    {"type": "boolean"},
		"pageUrl":      {"type": "string", "minLength": 1},
		"sortBy":       {"type": "string", "enum": ["", "price_ascending", "price_descending", "trust_descending"]},
		"verifiedOnly": {"type": "boolean"}
	},
	"oneOf": [
		{"required": ["imageInput"], "not": {"required": ["pageUrl"]}},
		{"required": ["pageUrl"], "not": {"required": ["imageInput"]}}
	]
}`

const extractRequestSchema = `{
	"type": "object",
	"required": ["pageUrl"],
	"properties": {
		"pageUrl": {"type": "string", "minLength": 1}
	}
}`

const vibeRequestSchema = `{
	"type": "object",
	"required": ["productTitle"],
	"properties": {
		"productTitle": {"type": "string", "minLength": 1, "maxLength": 500}
	}
}`

// SearchRequest carries either an image (inline or URL) or a product page
// link whose image is extracted first.
type SearchRequest struct {
	ImageInput   string `json:"imageInput,omitempty"`
	IsURLMode    bool   `json:"isUrlMode,omitempty"`
	PageURL      string `json:"pageUrl,omitempty"`
	SortBy       string `json:"sortBy,omitempty"`
	VerifiedOnly bool   `json:"verifiedOnly,omitempty"`
}

type ExtractRequest struct {
	PageURL string `json:"pageUrl"`
}

type ExtractResponse struct {
	ImageURL *string `json:"imageUrl"`
}

type VibeRequest struct {
	ProductTitle string `json:"productTitle"`
}

type VibeResponse struct {
	Vibe string `json:"vibe"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
