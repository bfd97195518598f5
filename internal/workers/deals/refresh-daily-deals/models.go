// internal/workers/deals/refresh-daily-deals/models.go
package refreshdailydeals

// Input overrides the configured query and limit for one run.
type Input struct {
	Query string `json:"query,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

type Output struct {
	Refreshed bool   `json:"refreshed"`
	Count     int    `json:"count"`
	Message   string `json:"message,omitempty"`
}

const inputSchema = `{
	"type": "object",
	"properties": {
		"query": {"type": "string"},
		"limit": {"type": "integer", "minimum": 0, "maximum": 100}
	}
}`
