// internal/workers/product/extract-page-image/handler.go
package extractpageimage

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"deal-hunter/internal/common/errors"
	"deal-hunter/internal/common/logger"
	"deal-hunter/internal/common/validation"
)

const (
	TaskType = "extract-page-image"
)

var schema = validation.MustCompile(inputSchema)

type Handler struct {
	config       *Config
	extractor    *Extractor
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, extractor *Extractor, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		extractor:    extractor,
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
		stdErr := errors.NewInvalidInputError(err.Error())
		h.errorHandler.HandleJobError(ctx, client, job, stdErr)
		return stdErr
	}
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		stdErr := errors.NewInvalidInputError(err.Error())
		h.errorHandler.HandleJobError(ctx, client, job, stdErr)
		return stdErr
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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	image, err := h.extractor.Extract(ctx, input.PageURL)
	if err != nil {
		return nil, err
	}

	h.logger.Info("page image extraction finished", map[string]interface{}{
		"pageUrl": input.PageURL,
		"found":   image != "",
	})

	if image == "" {
		return &Output{}, nil
	}
	return &Output{ImageURL: &image, Found: true}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
