// internal/workers/ai-copy/generate-product-vibe/handler.go
package generateproductvibe

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"

	"deal-hunter/internal/common/errors"
	"deal-hunter/internal/common/logger"
	"deal-hunter/internal/common/validation"
)

const (
	TaskType = "generate-product-vibe"

	UnavailableMessage = "AI Vibe Check is currently unavailable (API Key missing). But trust us, it's a vibe! ✨"
	FallbackMessage    = "AI is currently taking a chai break. Try again later! ☕"

	promptTemplate = `Give me a 2-sentence summary of pros/cons for "%s" based on Indian user reviews. Be savage but helpful. Use emojis.`
)

var schema = validation.MustCompile(inputSchema)

type Handler struct {
	config       *Config
	generator    Generator
	redis        *redis.Client
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

// NewHandler accepts a nil generator, in which case every request answers
// with UnavailableMessage. A nil redis client disables caching.
func NewHandler(config *Config, generator Generator, redis *redis.Client, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		generator:    generator,
		redis:        redis,
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
	if err := schema.ValidateBytes([]byte(job.Variables)); err != nil {
		stdErr := errors.NewVibeError(err)
		h.errorHandler.HandleJobError(ctx, client, job, stdErr)
		return stdErr
	}
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		stdErr := errors.NewVibeError(err)
		h.errorHandler.HandleJobError(ctx, client, job, stdErr)
		return stdErr
	}

	output := h.execute(ctx, &input)

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

// execute never fails: generation problems turn into fallback text.
func (h *Handler) execute(ctx context.Context, input *Input) *Output {
	title := strings.TrimSpace(input.ProductTitle)
	if h.generator == nil {
		return &Output{Vibe: UnavailableMessage}
	}

	cacheKey := vibeCacheKey(title)
	if h.redis != nil {
		if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil && val != "" {
			return &Output{Vibe: val, Generated: true, Cached: true}
		}
	}

	text, err := h.generator.Generate(ctx, fmt.Sprintf(promptTemplate, title))
	if err != nil {
		h.logger.Error("vibe generation failed", map[string]interface{}{
			"productTitle": title,
			"error":        errors.NewVibeError(err),
		})
		return &Output{Vibe: FallbackMessage}
	}

	if h.redis != nil && h.config.CacheTTL > 0 {
		if err := h.redis.Set(ctx, cacheKey, text, h.config.CacheTTL).Err(); err != nil {
			h.logger.Debug("failed to cache vibe", map[string]interface{}{
				"error": err,
			})
		}
	}
	return &Output{Vibe: text, Generated: true}
}

func vibeCacheKey(title string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(title)))
	return "vibe:" + hex.EncodeToString(sum[:])
}

func (h *Handler) Execute(ctx context.Context, input *Input) *Output {
	return h.execute(ctx, input)
}
