// internal/workers/product/search-product/normalize_test.go
package searchproduct

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deal-hunter/internal/common/config"
	"deal-hunter/internal/models"
)

// ==========================
// Acceptance Rules
// ==========================

func TestNormalizer_MixedCurrencyScenario(t *testing.T) {
	n := NewNormalizer(testMarket())
	raw := []models.RawVisualMatch{
		rawMatch("a", "Amazon.in", 100.0, "INR"),
		rawMatch("b", "Amazon.com", 50.0, "USD"),
		rawMatch("c", "Flipkart", 0.0, "INR"),
	}

	out := n.Normalize(raw)

	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].Title)
	assert.Equal(t, 100.0, out[0].Price.Amount)
	assert.Equal(t, "INR", out[0].Price.Currency)
}

func TestNormalizer_Records(t *testing.T) {
	tests := []struct {
		name     string
		raw      models.RawVisualMatch
		strict   bool
		accepted bool
		currency string
	}{
		{name: "currency code", raw: rawMatch("x", "s", 10.0, "INR"), accepted: true, currency: "INR"},
		{name: "lowercase code", raw: rawMatch("x", "s", 10.0, "inr"), accepted: true, currency: "inr"},
		{name: "currency symbol", raw: rawMatch("x", "s", 10.0, "₹"), accepted: true, currency: "₹"},
		{name: "absent currency", raw: rawMatch("x", "s", 10.0, nil), accepted: true, currency: "INR"},
		{name: "empty currency", raw: rawMatch("x", "s", 10.0, ""), accepted: true, currency: "INR"},
		{name: "absent currency strict", raw: rawMatch("x", "s", 10.0, nil), strict: true},
		{name: "foreign currency", raw: rawMatch("x", "s", 10.0, "USD")},
		{name: "dollar symbol", raw: rawMatch("x", "s", 10.0, "$")},
		{name: "currency wrong type", raw: rawMatch("x", "s", 10.0, 356)},
		{name: "amount as string", raw: rawMatch("x", "s", "1,299", "INR")},
		{name: "amount null", raw: rawMatch("x", "s", nil, "INR")},
		{name: "negative amount", raw: rawMatch("x", "s", -5.0, "INR")},
		{name: "zero amount", raw: rawMatch("x", "s", 0.0, "INR")},
		{name: "no price", raw: models.RawVisualMatch{"title": "x", "source": "s"}},
		{name: "price wrong type", raw: models.RawVisualMatch{"title": "x", "price": "₹499"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			market := testMarket()
			market.StrictCurrency = tt.strict
			out := NewNormalizer(market).Normalize([]models.RawVisualMatch{tt.raw})

			if !tt.accepted {
				assert.Empty(t, out)
				return
			}
			require.Len(t, out, 1)
			assert.Equal(t, tt.currency, out[0].Price.Currency)
		})
	}
}

func TestNormalizer_FieldMapping(t *testing.T) {
	n := NewNormalizer(testMarket())
	raw := models.RawVisualMatch{
		"title":       "Air Max 90",
		"thumbnail":   "https://img.test/t.jpg",
		"link":        "https://shop.test/p/1",
		"source_icon": "https://img.test/icon.png",
		"price":       map[string]interface{}{"extracted_value": 7999.0, "currency": "₹"},
	}

	out := n.Normalize([]models.RawVisualMatch{raw})

	require.Len(t, out, 1)
	assert.Equal(t, "Air Max 90", out[0].Title)
	assert.Equal(t, DefaultSource, out[0].Source)
	assert.Equal(t, "https://img.test/t.jpg", out[0].Thumbnail)
	assert.Equal(t, "https://shop.test/p/1", out[0].Link)
	assert.Equal(t, "https://img.test/icon.png", out[0].SourceIcon)
}

func TestNormalizer_NonStringFieldsAreBlank(t *testing.T) {
	n := NewNormalizer(testMarket())
	raw := models.RawVisualMatch{
		"title":  42,
		"source": []interface{}{"amazon"},
		"link":   nil,
		"price":  map[string]interface{}{"extracted_value": 10.0},
	}

	out := n.Normalize([]models.RawVisualMatch{raw})

	require.Len(t, out, 1)
	assert.Equal(t, "", out[0].Title)
	assert.Equal(t, DefaultSource, out[0].Source)
	assert.Equal(t, "", out[0].Link)
}

// ==========================
// Output Invariant
// ==========================

func TestNormalizer_EveryOutputIsPricedInMarketCurrency(t *testing.T) {
	amounts := []interface{}{-1.0, 0.0, 0.01, 1.0, 499.0, 1e6, "12", nil, true}
	currencies := []interface{}{"INR", "₹", "USD", "EUR", "", nil, 1.5, false}

	var raw []models.RawVisualMatch
	for _, a := range amounts {
		for _, c := range currencies {
			raw = append(raw, rawMatch("p", "Store", a, c))
		}
	}

	for _, strict := range []bool{false, true} {
		market := config.MarketConfig{CurrencyCode: "INR", CurrencySymbol: "₹", StrictCurrency: strict}
		out := NewNormalizer(market).Normalize(raw)
		require.NotEmpty(t, out)
		for _, m := range out {
			assert.Greater(t, m.Price.Amount, 0.0)
			assert.Contains(t, []string{"INR", "₹"}, m.Price.Currency)
		}
	}
}

func TestNormalizer_PreservesOrder(t *testing.T) {
	n := NewNormalizer(testMarket())
	out := n.Normalize([]models.RawVisualMatch{
		rawMatch("first", "s", 3.0, "INR"),
		rawMatch("skip", "s", 3.0, "USD"),
		rawMatch("second", "s", 1.0, "INR"),
	})

	require.Len(t, out, 2)
	assert.Equal(t, "first", out[0].Title)
	assert.Equal(t, "second", out[1].Title)
}
