// internal/workers/product/search-product/ranking.go
package searchproduct

import (
	"fmt"
	"sort"

	"deal-hunter/internal/models"
	"deal-hunter/pkg/registry"
)

// Score components. Any source containing a trusted keyword outranks every
// source that does not, whatever the icon bonus.
const (
	BaselineScore      = 50
	TrustedSourceBonus = 40
	SourceIconBonus    = 10
	MaxScore           = 100
	MinScore           = 0
)

type SortStrategy string

const (
	SortPriceAscending  SortStrategy = "price_ascending"
	SortPriceDescending SortStrategy = "price_descending"
	SortTrustDescending SortStrategy = "trust_descending"
)

// ParseSortStrategy maps "" to fallback and rejects unknown keys.
func ParseSortStrategy(s string, fallback SortStrategy) (SortStrategy, error) {
	switch SortStrategy(s) {
	case "":
		return fallback, nil
	case SortPriceAscending, SortPriceDescending, SortTrustDescending:
		return SortStrategy(s), nil
	default:
		return "", fmt.Errorf("unknown sort strategy %q", s)
	}
}

// Score returns the trust score of m and whether its source is a trusted
// marketplace.
func Score(m models.ProductMatch, matcher *registry.Matcher) (int, bool) {
	score := BaselineScore
	verified := matcher != nil && matcher.Matches(m.Source)
	if verified {
		score += TrustedSourceBonus
	}
	if m.SourceIcon != "" {
		score += SourceIconBonus
	}
	return clamp(score), verified
}

func clamp(score int) int {
	if score > MaxScore {
		return MaxScore
	}
	if score < MinScore {
		return MinScore
	}
	return score
}

// Rank scores every match in place.
func Rank(matches []models.ProductMatch, matcher *registry.Matcher) {
	for i := range matches {
		matches[i].TrustScore, matches[i].Verified = Score(matches[i], matcher)
	}
}

// Sort orders matches in place. The sort is stable, so equal keys keep their
// input order and sorting an already sorted list changes nothing.
func Sort(matches []models.ProductMatch, strategy SortStrategy) {
	var less func(a, b models.ProductMatch) bool
	switch strategy {
	case SortPriceAscending:
		less = func(a, b models.ProductMatch) bool { return a.Price.Amount < b.Price.Amount }
	case SortPriceDescending:
		less = func(a, b models.ProductMatch) bool { return a.Price.Amount > b.Price.Amount }
	default:
		less = func(a, b models.ProductMatch) bool { return a.TrustScore > b.TrustScore }
	}
	sort.SliceStable(matches, func(i, j int) bool { return less(matches[i], matches[j]) })
}

// FilterVerified returns the verified matches in their current order.
func FilterVerified(matches []models.ProductMatch) []models.ProductMatch {
	out := make([]models.ProductMatch, 0, len(matches))
	for _, m := range matches {
		if m.Verified {
			out = append(out, m)
		}
	}
	return out
}

// Summarize computes counts and the price range of matches.
func Summarize(matches []models.ProductMatch, currency string) Summary {
	s := Summary{Count: len(matches), Currency: currency}
	for i, m := range matches {
		if m.Verified {
			s.VerifiedCount++
		}
		if i == 0 || m.Price.Amount < s.Lowest {
			s.Lowest = m.Price.Amount
		}
		if m.Price.Amount > s.Highest {
			s.Highest = m.Price.Amount
		}
	}
	return s
}
