// internal/workers/product/search-product/handler.go
package searchproduct

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"deal-hunter/internal/common/errors"
	"deal-hunter/internal/common/logger"
	"deal-hunter/internal/common/metrics"
	"deal-hunter/internal/common/validation"
	"deal-hunter/internal/models"
	"deal-hunter/pkg/registry"
)

const (
	TaskType = "search-product"
)

var schema = validation.MustCompile(inputSchema)

// VisualSearcher returns raw visual matches for a public image URL. A nil
// slice with a nil error means the provider found nothing.
type VisualSearcher interface {
	VisualMatches(ctx context.Context, imageURL string) ([]models.RawVisualMatch, error)
}

type Handler struct {
	config       *Config
	resolver     *Resolver
	searcher     VisualSearcher
	normalizer   *Normalizer
	matcher      *registry.Matcher
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, resolver *Resolver, searcher VisualSearcher, matcher *registry.Matcher, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		resolver:     resolver,
		searcher:     searcher,
		normalizer:   NewNormalizer(config.Market),
		matcher:      matcher,
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

	if err := schema.ValidateBytes([]byte(job.Variables)); err != nil {
		searchErr := errors.NewSearchError(errors.NewInvalidInputError(err.Error()))
		h.errorHandler.HandleJobError(ctx, client, job, searchErr)
		return searchErr
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		searchErr := errors.NewSearchError(errors.NewInvalidInputError(err.Error()))
		h.errorHandler.HandleJobError(ctx, client, job, searchErr)
		return searchErr
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	return h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	start := time.Now()
	mode := "inline"
	if input.IsURLMode {
		mode = "url"
	}

	output, err := h.search(ctx, input)
	if err != nil {
		metrics.SearchRequests.WithLabelValues(mode, "failed").Inc()
		h.logger.Error("search failed", map[string]interface{}{
			"mode":             mode,
			"error":            err,
			"resolutionReason": errors.ResolutionReason(err),
		})
		return nil, err
	}

	metrics.SearchRequests.WithLabelValues(mode, "completed").Inc()
	metrics.SearchMatchesReturned.Observe(float64(len(output.Matches)))
	h.logger.Info("search completed", map[string]interface{}{
		"mode":       mode,
		"matches":    len(output.Matches),
		"verified":   output.Summary.VerifiedCount,
		"durationMs": time.Since(start).Milliseconds(),
	})
	return output, nil
}

// search runs one resolve, query, normalize, rank cycle. A staged upload is
// removed exactly once on every path after it succeeds.
func (h *Handler) search(ctx context.Context, input *Input) (*Output, error) {
	strategy, err := ParseSortStrategy(input.SortBy, h.config.DefaultSort)
	if err != nil {
		return nil, errors.NewSearchError(errors.NewInvalidInputError(err.Error()))
	}

	img, err := h.resolver.Resolve(ctx, input.ImageInput, input.IsURLMode)
	if err != nil {
		return nil, errors.NewSearchError(err)
	}
	if img.IsTemporary {
		defer h.release(ctx, img)
	}

	raw, err := h.searcher.VisualMatches(ctx, img.PublicURL)
	if err != nil {
		return nil, errors.NewSearchError(err)
	}

	matches := h.normalizer.Normalize(raw)
	Rank(matches, h.matcher)
	Sort(matches, strategy)
	if input.VerifiedOnly {
		matches = FilterVerified(matches)
	}

	return &Output{
		Matches: matches,
		Summary: Summarize(matches, h.config.Market.CurrencyCode),
	}, nil
}

// release never fails the search. The caller's context may already be done,
// so removal gets its own deadline.
func (h *Handler) release(ctx context.Context, img *ResolvedImage) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.config.CleanupTimeout)
	defer cancel()

	if err := h.resolver.Release(cleanupCtx, img); err != nil {
		metrics.TransientCleanupFailures.Inc()
		h.logger.Warn("failed to remove transient image", map[string]interface{}{
			"object": img.ObjectName,
			"error":  err,
		})
	}
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return err
	}
	if _, err = cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return err
	}
	return nil
}

// Execute runs a search without a job. Used by the HTTP API and tests.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
