// internal/workers/deals/refresh-daily-deals/handler_test.go
package refreshdailydeals

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"deal-hunter/internal/common/errors"
	"deal-hunter/internal/common/logger"
	"deal-hunter/internal/common/serpapi"
	"deal-hunter/internal/models"
)

// ==========================
// Mocks
// ==========================

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) Shopping(ctx context.Context, q serpapi.ShoppingQuery) ([]models.ShoppingResult, bool, error) {
	args := m.Called(ctx, q)
	results, _ := args.Get(0).([]models.ShoppingResult)
	return results, args.Bool(1), args.Error(2)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Replace(ctx context.Context, deals []models.Deal) error {
	return m.Called(ctx, deals).Error(0)
}

type mockSNS struct {
	mock.Mock
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*sns.PublishOutput)
	return out, args.Error(1)
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout:      5 * time.Second,
		Query:        "best sneaker deals india",
		GoogleDomain: "google.co.in",
		Language:     "en",
		Limit:        10,
		Currency:     "INR",
	}
}

func shoppingResults(n int) []models.ShoppingResult {
	out := make([]models.ShoppingResult, n)
	for i := range out {
		out[i] = models.ShoppingResult{
			Title:          "Deal",
			ExtractedPrice: float64(1000 + i),
			Thumbnail:      "https://img.test/t.jpg",
			Link:           "https://shop.test/d",
			Source:         "Flipkart",
		}
	}
	return out
}

var defaultQuery = serpapi.ShoppingQuery{Query: "best sneaker deals india", GoogleDomain: "google.co.in", Language: "en"}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_StoresTopResults(t *testing.T) {
	searcher := &mockSearcher{}
	store := &mockStore{}
	searcher.On("Shopping", mock.Anything, defaultQuery).Return(shoppingResults(25), true, nil)
	store.On("Replace", mock.Anything, mock.MatchedBy(func(deals []models.Deal) bool {
		if len(deals) != 10 {
			return false
		}
		for _, d := range deals {
			if d.Currency != "INR" || d.Price <= 0 || d.ImageURL == "" {
				return false
			}
		}
		return deals[0].Price == 1000 && deals[9].Price == 1009
	})).Return(nil)

	h := NewHandler(createTestConfig(), searcher, store, nil, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), &Input{})

	require.NoError(t, err)
	assert.True(t, out.Refreshed)
	assert.Equal(t, 10, out.Count)
	store.AssertExpectations(t)
}

func TestHandler_Execute_NoResultsFieldLeavesStoreUntouched(t *testing.T) {
	searcher := &mockSearcher{}
	store := &mockStore{}
	searcher.On("Shopping", mock.Anything, mock.Anything).Return(nil, false, nil)

	h := NewHandler(createTestConfig(), searcher, store, nil, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), &Input{})

	require.NoError(t, err)
	assert.False(t, out.Refreshed)
	assert.Equal(t, 0, out.Count)
	assert.Equal(t, noDealsMessage, out.Message)
	store.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything)
}

func TestHandler_Execute_SkipsUnpricedDeals(t *testing.T) {
	results := shoppingResults(3)
	results[1].ExtractedPrice = 0

	searcher := &mockSearcher{}
	store := &mockStore{}
	searcher.On("Shopping", mock.Anything, mock.Anything).Return(results, true, nil)
	store.On("Replace", mock.Anything, mock.MatchedBy(func(deals []models.Deal) bool {
		return len(deals) == 2
	})).Return(nil)

	h := NewHandler(createTestConfig(), searcher, store, nil, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), &Input{})

	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)
}

func TestHandler_Execute_InputOverrides(t *testing.T) {
	searcher := &mockSearcher{}
	store := &mockStore{}
	searcher.On("Shopping", mock.Anything, serpapi.ShoppingQuery{Query: "running shoes", GoogleDomain: "google.co.in", Language: "en"}).
		Return(shoppingResults(8), true, nil)
	store.On("Replace", mock.Anything, mock.MatchedBy(func(deals []models.Deal) bool { return len(deals) == 3 })).Return(nil)

	h := NewHandler(createTestConfig(), searcher, store, nil, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), &Input{Query: "running shoes", Limit: 3})

	require.NoError(t, err)
	assert.Equal(t, 3, out.Count)
}

func TestHandler_Refresh_PublishesNotification(t *testing.T) {
	searcher := &mockSearcher{}
	store := &mockStore{}
	snsClient := &mockSNS{}
	searcher.On("Shopping", mock.Anything, mock.Anything).Return(shoppingResults(4), true, nil)
	store.On("Replace", mock.Anything, mock.Anything).Return(nil)
	snsClient.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		var msg refreshedMessage
		if err := json.Unmarshal([]byte(*in.Message), &msg); err != nil {
			return false
		}
		return *in.TopicArn == "arn:aws:sns:ap-south-1:123:deals" && msg.Count == 4
	})).Return(&sns.PublishOutput{}, nil).Once()

	notifier := NewNotifier(snsClient, "arn:aws:sns:ap-south-1:123:deals")
	h := NewHandler(createTestConfig(), searcher, store, notifier, logger.NewTestLogger(t))
	count, err := h.Refresh(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4, count)
	snsClient.AssertExpectations(t)
}

func TestHandler_Refresh_NotificationFailureIsIgnored(t *testing.T) {
	searcher := &mockSearcher{}
	store := &mockStore{}
	snsClient := &mockSNS{}
	searcher.On("Shopping", mock.Anything, mock.Anything).Return(shoppingResults(1), true, nil)
	store.On("Replace", mock.Anything, mock.Anything).Return(nil)
	snsClient.On("Publish", mock.Anything, mock.Anything).Return(nil, stderrors.New("throttled"))

	h := NewHandler(createTestConfig(), searcher, store, NewNotifier(snsClient, "arn:topic"), logger.NewTestLogger(t))
	count, err := h.Refresh(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_ProviderFailure(t *testing.T) {
	searcher := &mockSearcher{}
	store := &mockStore{}
	searcher.On("Shopping", mock.Anything, mock.Anything).
		Return(nil, false, errors.NewProviderError("serpapi", stderrors.New("401")))

	h := NewHandler(createTestConfig(), searcher, store, nil, logger.NewTestLogger(t))
	_, err := h.Execute(context.Background(), &Input{})

	assert.True(t, errors.HasCode(err, errors.ErrCodeDealsRefreshFailed))
	assert.True(t, errors.HasCode(err, errors.ErrCodeProviderFailed))
	store.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything)
}

func TestHandler_Execute_StoreFailure(t *testing.T) {
	searcher := &mockSearcher{}
	store := &mockStore{}
	searcher.On("Shopping", mock.Anything, mock.Anything).Return(shoppingResults(2), true, nil)
	store.On("Replace", mock.Anything, mock.Anything).Return(errors.NewDealsStoreError("replace", stderrors.New("deadlock")))

	h := NewHandler(createTestConfig(), searcher, store, nil, logger.NewTestLogger(t))
	_, err := h.Execute(context.Background(), &Input{})

	assert.True(t, errors.HasCode(err, errors.ErrCodeDealsStoreFailed))
}

func TestNewNotifier_DisabledWithoutTopic(t *testing.T) {
	assert.Nil(t, NewNotifier(&mockSNS{}, ""))
	var n *Notifier
	assert.NoError(t, n.Publish(context.Background(), 3, "q"))
}

func TestInputSchema(t *testing.T) {
	assert.NoError(t, schema.ValidateBytes([]byte(`{}`)))
	assert.NoError(t, schema.ValidateBytes([]byte(`{"query":"shoes","limit":5}`)))
	assert.Error(t, schema.ValidateBytes([]byte(`{"limit":-1}`)))
	assert.Error(t, schema.ValidateBytes([]byte(`{"limit":"ten"}`)))
}
