// internal/common/serpapi/client_test.go
package serpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"deal-hunter/internal/common/config"
	"deal-hunter/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestClient(t *testing.T, baseURL string) *Client {
	client, err := NewClient(
		config.SerpAPIConfig{BaseURL: baseURL, APIKey: "test-key", Timeout: 2000},
		config.MarketConfig{Country: "in", CurrencyCode: "INR", CurrencySymbol: "₹"},
	)
	require.NoError(t, err)
	return client
}

func jsonServer(t *testing.T, status int, body string, inspect func(r *http.Request)) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if inspect != nil {
			inspect(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

// ==========================
// Construction
// ==========================

func TestNewClient_MissingKey(t *testing.T) {
	client, err := NewClient(config.SerpAPIConfig{BaseURL: "http://localhost"}, config.MarketConfig{})

	assert.Nil(t, client)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeConfiguration))
}

// ==========================
// Visual Matches
// ==========================

func TestClient_VisualMatches_SendsMarketParams(t *testing.T) {
	server := jsonServer(t, http.StatusOK, `{"visual_matches":[{"title":"Shoe","source":"Amazon.in"}]}`, func(r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "google_lens", q.Get("engine"))
		assert.Equal(t, "https://cdn.example.com/shoe.jpg", q.Get("url"))
		assert.Equal(t, "in", q.Get("country"))
		assert.Equal(t, "INR", q.Get("currency"))
		assert.Equal(t, "test-key", q.Get("api_key"))
	})

	matches, err := createTestClient(t, server.URL).VisualMatches(context.Background(), "https://cdn.example.com/shoe.jpg")

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Shoe", matches[0]["title"])
}

func TestClient_VisualMatches_MissingField(t *testing.T) {
	server := jsonServer(t, http.StatusOK, `{"search_metadata":{"status":"Success"}}`, nil)

	matches, err := createTestClient(t, server.URL).VisualMatches(context.Background(), "https://x.test/a.jpg")

	assert.NoError(t, err)
	assert.Empty(t, matches)
}

func TestClient_VisualMatches_DropsNonObjectEntries(t *testing.T) {
	server := jsonServer(t, http.StatusOK, `{"visual_matches":[{"title":"ok"}, "junk", 42, null]}`, nil)

	matches, err := createTestClient(t, server.URL).VisualMatches(context.Background(), "https://x.test/a.jpg")

	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestClient_VisualMatches_ProviderErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":"boom"}`},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":"Invalid API key"}`},
		{name: "malformed body", status: http.StatusOK, body: `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := jsonServer(t, tt.status, tt.body, nil)

			_, err := createTestClient(t, server.URL).VisualMatches(context.Background(), "https://x.test/a.jpg")

			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeProviderFailed))
		})
	}
}

func TestClient_VisualMatches_TransportErrorHidesKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := createTestClient(t, server.URL)
	client.httpClient.Timeout = 50 * time.Millisecond

	_, err := client.VisualMatches(context.Background(), "https://x.test/a.jpg")

	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeProviderFailed))
	assert.NotContains(t, err.Error(), "test-key")
}

// ==========================
// Shopping
// ==========================

func TestClient_Shopping(t *testing.T) {
	body := `{"shopping_results":[
		{"title":"Runner","extracted_price":2499,"thumbnail":"https://img.test/1.jpg","link":"https://shop.test/1","source":"Myntra"},
		{"title":"Broken","extracted_price":"n/a"},
		{"title":"Court","extracted_price":3999.5,"product_link":"https://shop.test/2","source":"Ajio"}
	]}`
	server := jsonServer(t, http.StatusOK, body, func(r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "google_shopping", q.Get("engine"))
		assert.Equal(t, "best sneaker deals india", q.Get("q"))
		assert.Equal(t, "google.co.in", q.Get("google_domain"))
		assert.Equal(t, "in", q.Get("gl"))
		assert.Equal(t, "en", q.Get("hl"))
		assert.Equal(t, "INR", q.Get("currency"))
	})

	results, found, err := createTestClient(t, server.URL).Shopping(context.Background(), ShoppingQuery{
		Query:        "best sneaker deals india",
		GoogleDomain: "google.co.in",
		Language:     "en",
	})

	require.NoError(t, err)
	assert.True(t, found)
	require.Len(t, results, 2)
	assert.Equal(t, 2499.0, results[0].ExtractedPrice)
	assert.Equal(t, "https://shop.test/2", results[1].Link, "product_link backfills link")
}

func TestClient_Shopping_NoResults(t *testing.T) {
	server := jsonServer(t, http.StatusOK, `{}`, nil)

	results, found, err := createTestClient(t, server.URL).Shopping(context.Background(), ShoppingQuery{Query: "x"})

	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, results)
}
