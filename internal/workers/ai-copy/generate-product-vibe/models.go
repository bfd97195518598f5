// internal/workers/ai-copy/generate-product-vibe/models.go
package generateproductvibe

type Input struct {
	ProductTitle string `json:"productTitle"`
}

// Output.Vibe is always user-presentable, including the fallback texts.
type Output struct {
	Vibe      string `json:"vibe"`
	Generated bool   `json:"generated"`
	Cached    bool   `json:"cached"`
}

const inputSchema = `{
	"type": "object",
	"required": ["productTitle"],
	"properties": {
		"productTitle": {"type": "string", "minLength": 1, "maxLength": 500}
	}
}`
