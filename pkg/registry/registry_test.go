// pkg/registry/registry_test.go
package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher_Matches(t *testing.T) {
	m := Default().Matcher()

	tests := []struct {
		source string
		want   bool
	}{
		{"Amazon.in", true},
		{"FLIPKART", true},
		{"Tata CLiQ", true},
		{"www.myntra.com", true},
		{"Random Store", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Matches(tt.source))
		})
	}
}

func TestTrustRegistry_AddRemove(t *testing.T) {
	reg := Default()

	require.NoError(t, reg.Add("  Nykaa ", "Nykaa"))
	assert.Contains(t, reg.Keywords(), "nykaa")
	assert.Error(t, reg.Add("NYKAA", ""), "duplicate keywords are rejected")
	assert.Error(t, reg.Add("   ", ""))

	require.NoError(t, reg.Remove("nykaa"))
	assert.NotContains(t, reg.Keywords(), "nykaa")
	assert.Error(t, reg.Remove("nykaa"))
}

func TestTrustRegistry_Validate(t *testing.T) {
	assert.NoError(t, Default().Validate())
	assert.Error(t, (&TrustRegistry{}).Validate())

	dup := &TrustRegistry{Marketplaces: []Marketplace{{Keyword: "amazon"}, {Keyword: "Amazon"}}}
	assert.Error(t, dup.Validate())
}

func TestSaveAndLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "trust-registry.json")

	require.NoError(t, SaveRegistry(Default(), path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultKeywords, loaded.Keywords())
	assert.NotEmpty(t, loaded.LastUpdated)
}

func TestLoadRegistry_Missing(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
