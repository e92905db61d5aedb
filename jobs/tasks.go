package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardWarmup rebuilds cached dashboard reports.
	TaskDashboardWarmup = "dashboard:warmup"
	// TaskOverdueScan counts overdue receivables.
	TaskOverdueScan = "finance:overdue_scan"
)

// DefaultWarmupMonths is how many months, ending at the current one, a warmup rebuilds.
const DefaultWarmupMonths = 2

// DashboardWarmupPayload selects the months to rebuild.
type DashboardWarmupPayload struct {
	Months int `json:"months"`
}

// OverdueScanPayload carries scheduling metadata.
type OverdueScanPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewDashboardWarmupTask constructs a warmup task. Duplicate warmups within the
// uniqueness window collapse into one.
func NewDashboardWarmupTask(months int) (*asynq.Task, error) {
	body, err := json.Marshal(DashboardWarmupPayload{Months: months})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, body,
		asynq.Queue(QueueDefault),
		asynq.Unique(30*time.Second),
		asynq.Timeout(taskTimeout),
	), nil
}

// NewOverdueScanTask constructs an overdue scan task.
func NewOverdueScanTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(OverdueScanPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOverdueScan, body, asynq.Queue(QueueDefault), asynq.Timeout(taskTimeout)), nil
}
