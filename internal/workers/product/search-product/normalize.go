// internal/workers/product/search-product/normalize.go
package searchproduct

import (
	"strings"

	"deal-hunter/internal/common/config"
	"deal-hunter/internal/common/metrics"
	"deal-hunter/internal/models"
)

const DefaultSource = "Unknown Store"

// Rejection reasons, also used as metric labels.
const (
	rejectMissingPrice  = "missing_price"
	rejectInvalidAmount = "invalid_amount"
	rejectCurrency      = "currency"
	rejectNonPositive   = "non_positive_price"
)

// Normalizer maps untrusted provider records to ProductMatch values priced
// in the market currency.
type Normalizer struct {
	currencyCode   string
	currencySymbol string
	strict         bool
}

func NewNormalizer(market config.MarketConfig) *Normalizer {
	return &Normalizer{
		currencyCode:   market.CurrencyCode,
		currencySymbol: market.CurrencySymbol,
		strict:         market.StrictCurrency,
	}
}

// Normalize keeps input order. Every returned match has a positive amount
// and an accepted currency; TrustScore and Verified are left unset.
func (n *Normalizer) Normalize(raw []models.RawVisualMatch) []models.ProductMatch {
	out := make([]models.ProductMatch, 0, len(raw))
	for _, r := range raw {
		m, reason := n.normalizeOne(r)
		if reason != "" {
			metrics.SearchMatchesRejected.WithLabelValues(reason).Inc()
			continue
		}
		out = append(out, m)
	}
	return out
}

func (n *Normalizer) normalizeOne(r models.RawVisualMatch) (models.ProductMatch, string) {
	price, ok := r["price"].(map[string]interface{})
	if !ok {
		return models.ProductMatch{}, rejectMissingPrice
	}

	amount, ok := price["extracted_value"].(float64)
	if !ok {
		return models.ProductMatch{}, rejectInvalidAmount
	}

	currency, ok := n.acceptCurrency(price)
	if !ok {
		return models.ProductMatch{}, rejectCurrency
	}

	if amount <= 0 {
		return models.ProductMatch{}, rejectNonPositive
	}

	source := stringField(r, "source")
	if source == "" {
		source = DefaultSource
	}

	return models.ProductMatch{
		Title:      stringField(r, "title"),
		Price:      models.Price{Amount: amount, Currency: currency},
		Thumbnail:  stringField(r, "thumbnail"),
		Source:     source,
		Link:       stringField(r, "link"),
		SourceIcon: stringField(r, "source_icon"),
	}, ""
}

// acceptCurrency returns the currency to report for an accepted price. An
// absent or empty currency is the market currency unless strict mode is on.
func (n *Normalizer) acceptCurrency(price map[string]interface{}) (string, bool) {
	value, present := price["currency"]
	if !present || value == nil {
		return n.currencyCode, !n.strict
	}

	s, ok := value.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)

	switch {
	case s == "":
		return n.currencyCode, !n.strict
	case strings.EqualFold(s, n.currencyCode), s == n.currencySymbol:
		return s, true
	default:
		return "", false
	}
}

func stringField(r models.RawVisualMatch, key string) string {
	s, _ := r[key].(string)
	return s
}
