// internal/workers/deals/refresh-daily-deals/scheduler.go
package refreshdailydeals

import (
	"context"
	"fmt"
	"time"

	cronlib "github.com/robfig/cron/v3"

	"deal-hunter/internal/common/logger"
)

// Refresher is satisfied by *Handler.
type Refresher interface {
	Refresh(ctx context.Context) (int, error)
}

// Scheduler runs the deals refresh in-process on a cron expression. A
// CRON_TZ= prefix selects the time zone.
type Scheduler struct {
	cron      *cronlib.Cron
	refresher Refresher
	timeout   time.Duration
	logger    logger.Logger
}

var parser = cronlib.NewParser(cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow | cronlib.Descriptor)

func NewScheduler(expr string, refresher Refresher, timeout time.Duration, log logger.Logger) (*Scheduler, error) {
	scoped := log.WithFields(map[string]interface{}{"component": "deals-scheduler"})
	s := &Scheduler{
		refresher: refresher,
		timeout:   timeout,
		logger:    scoped,
	}

	cl := cronLogger{log: scoped}
	s.cron = cronlib.New(
		cronlib.WithParser(parser),
		cronlib.WithLogger(cl),
		cronlib.WithChain(cronlib.Recover(cl), cronlib.SkipIfStillRunning(cl)),
	)
	if _, err := s.cron.AddFunc(expr, s.RunNow); err != nil {
		return nil, fmt.Errorf("invalid deals schedule %q: %w", expr, err)
	}
	return s, nil
}

// RunNow performs one refresh and logs the outcome.
func (s *Scheduler) RunNow() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	count, err := s.refresher.Refresh(ctx)
	if err != nil {
		s.logger.Error("scheduled deals refresh failed", map[string]interface{}{
			"error": err,
		})
		return
	}
	s.logger.Info("scheduled deals refresh finished", map[string]interface{}{
		"count":      count,
		"durationMs": time.Since(start).Milliseconds(),
	})
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for a running refresh to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// NextRun reports when the refresh will next fire.
func (s *Scheduler) NextRun() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	if !entries[0].Next.IsZero() {
		return entries[0].Next
	}
	return entries[0].Schedule.Next(time.Now())
}

type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, pairs(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := pairs(keysAndValues)
	fields["error"] = err
	l.log.Error(msg, fields)
}

func pairs(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2+1)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}

var _ cronlib.Logger = cronLogger{}
