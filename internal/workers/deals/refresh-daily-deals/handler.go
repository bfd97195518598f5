// internal/workers/deals/refresh-daily-deals/handler.go
package refreshdailydeals

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"deal-hunter/internal/common/errors"
	"deal-hunter/internal/common/logger"
	"deal-hunter/internal/common/metrics"
	"deal-hunter/internal/common/serpapi"
	"deal-hunter/internal/common/validation"
	"deal-hunter/internal/models"
)

const (
	TaskType = "refresh-daily-deals"

	noDealsMessage = "No deals found"
)

var schema = validation.MustCompile(inputSchema)

// ShoppingSearcher runs a shopping search. found is false when the provider
// response has no results field at all.
type ShoppingSearcher interface {
	Shopping(ctx context.Context, q serpapi.ShoppingQuery) ([]models.ShoppingResult, bool, error)
}

// DealStore persists the current deal set.
type DealStore interface {
	Replace(ctx context.Context, deals []models.Deal) error
}

type Handler struct {
	config       *Config
	searcher     ShoppingSearcher
	store        DealStore
	notifier     *Notifier
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, searcher ShoppingSearcher, store DealStore, notifier *Notifier, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		searcher:     searcher,
		store:        store,
		notifier:     notifier,
		errorHandler: errors.NewErrorHandler(scoped),
		logger:       scoped,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if strings.TrimSpace(job.Variables) != "" {
		if err := schema.ValidateBytes([]byte(job.Variables)); err != nil {
			stdErr := errors.NewDealsRefreshError(err)
			h.errorHandler.HandleJobError(ctx, client, job, stdErr)
			return stdErr
		}
		if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
			stdErr := errors.NewDealsRefreshError(err)
			h.errorHandler.HandleJobError(ctx, client, job, stdErr)
			return stdErr
		}
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return err
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return err
	}
	return nil
}

// Refresh replaces the stored deals with the configured query's top results
// and returns how many were stored. Used by the scheduler.
func (h *Handler) Refresh(ctx context.Context) (int, error) {
	out, err := h.execute(ctx, &Input{})
	if err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	query := h.config.Query
	if input.Query != "" {
		query = input.Query
	}
	limit := h.config.Limit
	if input.Limit > 0 {
		limit = input.Limit
	}

	results, found, err := h.searcher.Shopping(ctx, serpapi.ShoppingQuery{
		Query:        query,
		GoogleDomain: h.config.GoogleDomain,
		Language:     h.config.Language,
	})
	if err != nil {
		return nil, errors.NewDealsRefreshError(err)
	}
	if !found {
		h.logger.Info("shopping search returned no results field", map[string]interface{}{
			"query": query,
		})
		return &Output{Message: noDealsMessage}, nil
	}

	deals := h.toDeals(results, limit)
	if err := h.store.Replace(ctx, deals); err != nil {
		return nil, err
	}
	metrics.DealsRefreshed.Set(float64(len(deals)))

	if err := h.notifier.Publish(ctx, len(deals), query); err != nil {
		h.logger.Warn("failed to publish deals notification", map[string]interface{}{
			"error": err,
		})
	}

	h.logger.Info("daily deals refreshed", map[string]interface{}{
		"query":   query,
		"results": len(results),
		"stored":  len(deals),
	})
	return &Output{Refreshed: true, Count: len(deals)}, nil
}

// toDeals keeps the first limit results, then drops those without a
// positive price.
func (h *Handler) toDeals(results []models.ShoppingResult, limit int) []models.Deal {
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	deals := make([]models.Deal, 0, len(results))
	for _, r := range results {
		if r.ExtractedPrice <= 0 {
			continue
		}
		deals = append(deals, models.Deal{
			Title:    r.Title,
			Price:    r.ExtractedPrice,
			ImageURL: r.Thumbnail,
			Link:     r.Link,
			Source:   r.Source,
			Currency: h.config.Currency,
		})
	}
	return deals
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
