// internal/workers/product/search-product/helpers_test.go
package searchproduct

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"deal-hunter/internal/common/config"
	"deal-hunter/internal/models"
)

// ==========================
// Mocks
// ==========================

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Upload(ctx context.Context, name string, data []byte, contentType string) error {
	return m.Called(ctx, name, data, contentType).Error(0)
}

func (m *mockStore) PublicURL(name string) string {
	return "https://product-images.s3.ap-south-1.amazonaws.com/" + name
}

func (m *mockStore) Remove(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) VisualMatches(ctx context.Context, imageURL string) ([]models.RawVisualMatch, error) {
	args := m.Called(ctx, imageURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RawVisualMatch), args.Error(1)
}

// ==========================
// Fixtures
// ==========================

func testMarket() config.MarketConfig {
	return config.MarketConfig{Country: "in", CurrencyCode: "INR", CurrencySymbol: "₹"}
}

func createTestConfig() *Config {
	return &Config{
		Timeout:        3 * time.Second,
		CleanupTimeout: time.Second,
		DefaultSort:    SortTrustDescending,
		Market:         testMarket(),
		MaxUploadBytes: 5 << 20,
	}
}

// pngBytes returns a small valid PNG image.
func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func dataURL(t *testing.T) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t))
}

func rawMatch(title, source string, amount interface{}, currency interface{}) models.RawVisualMatch {
	price := map[string]interface{}{"extracted_value": amount}
	if currency != nil {
		price["currency"] = currency
	}
	return models.RawVisualMatch{
		"title":     title,
		"source":    source,
		"link":      "https://shop.test/" + title,
		"thumbnail": "https://img.test/" + title + ".jpg",
		"price":     price,
	}
}
