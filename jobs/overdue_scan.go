package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/fla-ops/fla/internal/jobs"
)

// OverdueCounter counts unpaid jobs past their due date.
type OverdueCounter interface {
	OverdueCount(ctx context.Context) (int, error)
}

// OverdueScanJob publishes the overdue receivable count as a gauge.
type OverdueScanJob struct {
	Counter OverdueCounter
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewOverdueScanJob initialises the scan handler.
func NewOverdueScanJob(counter OverdueCounter, logger *slog.Logger, metrics *jobmetrics.Metrics) *OverdueScanJob {
	return &OverdueScanJob{Counter: counter, Logger: logger, Metrics: metrics}
}

// Handle runs one scan.
func (j *OverdueScanJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Counter == nil {
		return errors.New("overdue scan: handler not configured")
	}
	var payload OverdueScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	metrics := j.Metrics
	if metrics == nil {
		metrics = defaultJobMetrics
	}
	tracker := metrics.Track(TaskOverdueScan)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("job", TaskOverdueScan))

	n, err := j.Counter.OverdueCount(ctx)
	if err != nil {
		logger.Error("count overdue receivables", slog.Any("error", err))
		return err
	}
	metrics.SetOverdue(n)
	attrs := []any{slog.Int("overdue", n)}
	if !payload.ScheduledFor.IsZero() {
		attrs = append(attrs, slog.String("scheduled_for", payload.ScheduledFor.Format(time.RFC3339)))
	}
	if n > 0 {
		logger.Warn("overdue receivables found", attrs...)
	} else {
		logger.Info("no overdue receivables", attrs...)
	}
	return nil
}
