// internal/workers/product/search-product/handler_test.go
package searchproduct

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"deal-hunter/internal/common/errors"
	"deal-hunter/internal/common/logger"
	"deal-hunter/internal/models"
)

func newTestHandler(t *testing.T, store *mockStore, searcher *mockSearcher) *Handler {
	cfg := createTestConfig()
	return NewHandler(cfg, NewResolver(store, cfg.MaxUploadBytes), searcher, testMatcher(), logger.NewTestLogger(t))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_InlineSuccess(t *testing.T) {
	store := &mockStore{}
	searcher := &mockSearcher{}
	store.On("Upload", mock.Anything, mock.Anything, mock.Anything, "image/jpeg").Return(nil).Once()
	store.On("Remove", mock.Anything, mock.Anything).Return(nil).Once()
	searcher.On("VisualMatches", mock.Anything, mock.MatchedBy(func(u string) bool {
		return len(u) > 0
	})).Return([]models.RawVisualMatch{
		rawMatch("street", "Street Kicks", 1500.0, "INR"),
		rawMatch("amazon", "Amazon.in", 2000.0, "INR"),
		rawMatch("usd", "Amazon.com", 30.0, "USD"),
	}, nil).Once()

	h := newTestHandler(t, store, searcher)
	out, err := h.Execute(context.Background(), &Input{ImageInput: dataURL(t)})

	require.NoError(t, err)
	require.Len(t, out.Matches, 2)
	assert.Equal(t, "amazon", out.Matches[0].Title)
	assert.True(t, out.Matches[0].Verified)
	assert.Equal(t, 90, out.Matches[0].TrustScore)
	assert.Equal(t, "street", out.Matches[1].Title)
	assert.Equal(t, Summary{Count: 2, VerifiedCount: 1, Lowest: 1500, Highest: 2000, Currency: "INR"}, out.Summary)

	store.AssertExpectations(t)
	searcher.AssertExpectations(t)
}

func TestHandler_Execute_SearchesUploadedURL(t *testing.T) {
	store := &mockStore{}
	searcher := &mockSearcher{}
	var uploaded string
	store.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { uploaded = args.String(1) }).
		Return(nil)
	store.On("Remove", mock.Anything, mock.Anything).Return(nil)
	searcher.On("VisualMatches", mock.Anything, mock.Anything).Return(nil, nil)

	h := newTestHandler(t, store, searcher)
	_, err := h.Execute(context.Background(), &Input{ImageInput: dataURL(t)})

	require.NoError(t, err)
	searcher.AssertCalled(t, "VisualMatches", mock.Anything, store.PublicURL(uploaded))
	store.AssertCalled(t, "Remove", mock.Anything, uploaded)
}

func TestHandler_Execute_URLModeNeverUploads(t *testing.T) {
	store := &mockStore{}
	searcher := &mockSearcher{}
	searcher.On("VisualMatches", mock.Anything, "https://cdn.test/shoe.jpg").
		Return([]models.RawVisualMatch{rawMatch("one", "Myntra", 999.0, "₹")}, nil)

	h := newTestHandler(t, store, searcher)
	out, err := h.Execute(context.Background(), &Input{ImageInput: "https://cdn.test/shoe.jpg", IsURLMode: true})

	require.NoError(t, err)
	assert.Len(t, out.Matches, 1)
	store.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything)
}

func TestHandler_Execute_MissingVisualMatchesIsEmpty(t *testing.T) {
	searcher := &mockSearcher{}
	searcher.On("VisualMatches", mock.Anything, mock.Anything).Return(nil, nil)

	h := newTestHandler(t, &mockStore{}, searcher)
	out, err := h.Execute(context.Background(), &Input{ImageInput: "https://cdn.test/a.jpg", IsURLMode: true})

	require.NoError(t, err)
	assert.NotNil(t, out.Matches)
	assert.Empty(t, out.Matches)
	assert.Equal(t, 0, out.Summary.Count)
}

func TestHandler_Execute_SortAndVerifiedOnly(t *testing.T) {
	searcher := &mockSearcher{}
	searcher.On("VisualMatches", mock.Anything, mock.Anything).Return([]models.RawVisualMatch{
		rawMatch("flip-high", "Flipkart", 3000.0, "INR"),
		rawMatch("local", "Local Shop", 100.0, "INR"),
		rawMatch("ajio-low", "AJIO", 1200.0, "INR"),
	}, nil)

	h := newTestHandler(t, &mockStore{}, searcher)
	out, err := h.Execute(context.Background(), &Input{
		ImageInput:   "https://cdn.test/a.jpg",
		IsURLMode:    true,
		SortBy:       string(SortPriceAscending),
		VerifiedOnly: true,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"ajio-low", "flip-high"}, titles(out.Matches))
	assert.Equal(t, 1200.0, out.Summary.Lowest)
}

// ==========================
// Cleanup Guarantees
// ==========================

func TestHandler_Execute_CleanupOnceOnProviderFailure(t *testing.T) {
	store := &mockStore{}
	searcher := &mockSearcher{}
	store.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	store.On("Remove", mock.Anything, mock.Anything).Return(nil).Once()
	providerErr := errors.NewProviderError("serpapi", stderrors.New("503 Service Unavailable"))
	searcher.On("VisualMatches", mock.Anything, mock.Anything).Return(nil, providerErr)

	h := newTestHandler(t, store, searcher)
	out, err := h.Execute(context.Background(), &Input{ImageInput: dataURL(t)})

	assert.Nil(t, out)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeSearchFailed))
	assert.True(t, errors.HasCode(err, errors.ErrCodeProviderFailed))
	assert.Equal(t, errors.UserMessage, errors.AsStandard(err).Message)
	store.AssertNumberOfCalls(t, "Remove", 1)
}

func TestHandler_Execute_CleanupFailureIsSwallowed(t *testing.T) {
	store := &mockStore{}
	searcher := &mockSearcher{}
	store.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	store.On("Remove", mock.Anything, mock.Anything).Return(stderrors.New("access denied")).Once()
	searcher.On("VisualMatches", mock.Anything, mock.Anything).
		Return([]models.RawVisualMatch{rawMatch("x", "Amazon", 10.0, "INR")}, nil)

	h := newTestHandler(t, store, searcher)
	out, err := h.Execute(context.Background(), &Input{ImageInput: dataURL(t)})

	require.NoError(t, err)
	assert.Len(t, out.Matches, 1)
	store.AssertNumberOfCalls(t, "Remove", 1)
}

func TestHandler_Execute_CleanupRunsAfterCancellation(t *testing.T) {
	store := &mockStore{}
	searcher := &mockSearcher{}
	ctx, cancel := context.WithCancel(context.Background())
	store.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	store.On("Remove", mock.MatchedBy(func(c context.Context) bool { return c.Err() == nil }), mock.Anything).
		Return(nil).Once()
	searcher.On("VisualMatches", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(nil, errors.NewProviderError("serpapi", context.Canceled))

	h := newTestHandler(t, store, searcher)
	_, err := h.Execute(ctx, &Input{ImageInput: dataURL(t)})

	assert.Error(t, err)
	store.AssertExpectations(t)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_ResolutionFailures(t *testing.T) {
	tests := []struct {
		name      string
		input     *Input
		uploadErr error
		reason    string
	}{
		{name: "empty payload", input: &Input{ImageInput: "data:image/jpeg;base64,"}, reason: errors.ReasonInvalidInput},
		{name: "bad url", input: &Input{ImageInput: "not a url", IsURLMode: true}, reason: errors.ReasonInvalidInput},
		{name: "upload failure", uploadErr: stderrors.New("timeout"), reason: errors.ReasonUploadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockStore{}
			searcher := &mockSearcher{}
			input := tt.input
			if tt.uploadErr != nil {
				store.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(tt.uploadErr)
				input = &Input{ImageInput: dataURL(t)}
			}

			h := newTestHandler(t, store, searcher)
			_, err := h.Execute(context.Background(), input)

			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeSearchFailed))
			assert.Equal(t, tt.reason, errors.ResolutionReason(err))
			searcher.AssertNotCalled(t, "VisualMatches", mock.Anything, mock.Anything)
			store.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything)
		})
	}
}

func TestHandler_Execute_UnknownSortStrategy(t *testing.T) {
	store := &mockStore{}
	h := newTestHandler(t, store, &mockSearcher{})

	_, err := h.Execute(context.Background(), &Input{ImageInput: dataURL(t), SortBy: "random"})

	assert.Equal(t, errors.ReasonInvalidInput, errors.ResolutionReason(err))
	store.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestInputSchema(t *testing.T) {
	assert.NoError(t, schema.ValidateBytes([]byte(`{"imageInput":"https://a.test/x.jpg","isUrlMode":true}`)))
	assert.Error(t, schema.ValidateBytes([]byte(`{"isUrlMode":true}`)))
	assert.Error(t, schema.ValidateBytes([]byte(`{"imageInput":"x","sortBy":"cheapest"}`)))
	assert.Error(t, schema.ValidateBytes([]byte(`{"imageInput":"x","verifiedOnly":"yes"}`)))
}
