// internal/workers/product/extract-page-image/models.go
package extractpageimage

type Input struct {
	PageURL string `json:"pageUrl"`
}

// Output.ImageURL is null when the page has no usable product image.
type Output struct {
	ImageURL *string `json:"imageUrl"`
	Found    bool    `json:"found"`
}

// cachedPage keeps the raw body bytes; encoding/json stores them as base64 so
// pages that are not valid UTF-8 survive the round trip.
type cachedPage struct {
	URL        string `json:"url"`
	StatusCode int    `json:"statusCode"`
	Body       []byte `json:"body"`
}

const inputSchema = `{
	"type": "object",
	"required": ["pageUrl"],
	"properties": {
		"pageUrl": {"type": "string", "minLength": 1}
	}
}`
