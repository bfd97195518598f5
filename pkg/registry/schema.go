// pkg/registry/schema.go
package registry

// TrustRegistry is the on-disk list of marketplaces whose listings earn the
// trusted bonus and the verified badge.
type TrustRegistry struct {
	Version      string        `json:"version"`
	LastUpdated  string        `json:"lastUpdated"`
	Marketplaces []Marketplace `json:"marketplaces"`
}

type Marketplace struct {
	// Keyword is matched case-insensitively as a substring of a listing's source.
	Keyword     string `json:"keyword"`
	DisplayName string `json:"displayName,omitempty"`
	AddedAt     string `json:"addedAt,omitempty"`
}
