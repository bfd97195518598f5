// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultKeywords is used when no registry file is available.
var DefaultKeywords = []string{"amazon", "flipkart", "myntra", "ajio", "tata"}

func LoadRegistry(path string) (*TrustRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg TrustRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse trust registry %s: %w", path, err)
	}
	return &reg, nil
}

// Default returns a registry holding DefaultKeywords.
func Default() *TrustRegistry {
	reg := &TrustRegistry{Version: "1.0.0"}
	for _, kw := range DefaultKeywords {
		reg.Marketplaces = append(reg.Marketplaces, Marketplace{Keyword: kw})
	}
	return reg
}

// SaveRegistry writes reg as indented JSON, creating parent directories.
func SaveRegistry(reg *TrustRegistry, path string) error {
	reg.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

// Add appends a marketplace. Keywords are stored lowercased and must be unique.
func (r *TrustRegistry) Add(keyword, displayName string) error {
	kw := normalize(keyword)
	if kw == "" {
		return fmt.Errorf("keyword is required")
	}
	for _, m := range r.Marketplaces {
		if normalize(m.Keyword) == kw {
			return fmt.Errorf("marketplace %q already exists", kw)
		}
	}
	r.Marketplaces = append(r.Marketplaces, Marketplace{
		Keyword:     kw,
		DisplayName: displayName,
		AddedAt:     time.Now().UTC().Format(time.RFC3339),
	})
	return nil
}

func (r *TrustRegistry) Remove(keyword string) error {
	kw := normalize(keyword)
	for i, m := range r.Marketplaces {
		if normalize(m.Keyword) == kw {
			r.Marketplaces = append(r.Marketplaces[:i], r.Marketplaces[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("marketplace %q not found", kw)
}

// Validate rejects empty and duplicate keywords.
func (r *TrustRegistry) Validate() error {
	if len(r.Marketplaces) == 0 {
		return fmt.Errorf("registry contains no marketplaces")
	}
	seen := make(map[string]bool, len(r.Marketplaces))
	for i, m := range r.Marketplaces {
		kw := normalize(m.Keyword)
		if kw == "" {
			return fmt.Errorf("marketplace %d missing required field: keyword", i)
		}
		if seen[kw] {
			return fmt.Errorf("duplicate marketplace keyword: %s", kw)
		}
		seen[kw] = true
	}
	return nil
}

// Keywords returns the normalized keyword set.
func (r *TrustRegistry) Keywords() []string {
	out := make([]string, 0, len(r.Marketplaces))
	for _, m := range r.Marketplaces {
		if kw := normalize(m.Keyword); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// Matcher is an immutable keyword set safe for concurrent use.
type Matcher struct {
	keywords []string
}

func NewMatcher(keywords []string) *Matcher {
	m := &Matcher{}
	for _, kw := range keywords {
		if kw = normalize(kw); kw != "" {
			m.keywords = append(m.keywords, kw)
		}
	}
	return m
}

// Matcher snapshots the registry's current keywords.
func (r *TrustRegistry) Matcher() *Matcher {
	return NewMatcher(r.Keywords())
}

// Matches reports whether source contains any trusted keyword, ignoring case.
func (m *Matcher) Matches(source string) bool {
	s := strings.ToLower(source)
	for _, kw := range m.keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func (m *Matcher) Keywords() []string {
	return append([]string(nil), m.keywords...)
}

func normalize(keyword string) string {
	return strings.ToLower(strings.TrimSpace(keyword))
}
