// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"deal-hunter/internal/common/config"
	"deal-hunter/internal/common/errors"
	"deal-hunter/internal/common/logger"
	"deal-hunter/internal/common/metrics"
	"deal-hunter/internal/common/observability"
)

// JobHandler completes or fails the job itself and returns the error it
// reported, if any, so outcomes can be recorded.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job) error
}

// StartWorker opens a job worker for taskType unless it is disabled.
// The returned worker is nil when disabled.
func StartWorker(
	client zbc.Client,
	taskType string,
	wcfg config.WorkerConfig,
	handler JobHandler,
	obs *observability.Observability,
	log logger.Logger,
) worker.JobWorker {
	if !wcfg.Enabled {
		log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return nil
	}

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(instrument(taskType, handler, obs, log)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	log.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeoutMs":     wcfg.Timeout,
	})
	return jobWorker
}

func instrument(taskType string, handler JobHandler, obs *observability.Observability, log logger.Logger) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		err := handler.Handle(client, job)
		elapsed := time.Since(start)

		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())

		status := "completed"
		if err != nil {
			status = "failed"
			metrics.WorkerJobsFailed.WithLabelValues(taskType, string(errors.AsStandard(err).Code)).Inc()
			log.Debug("handler returned error", map[string]interface{}{
				"taskType": taskType,
				"jobKey":   job.Key,
				"error":    err.Error(),
			})
		} else {
			metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		}
		obs.RecordJob(context.Background(), taskType, status, elapsed)
	}
}
