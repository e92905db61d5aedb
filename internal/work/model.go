// Package work manages jobs: their quotes, payment ledgers and lifecycle status.
package work

import (
	"fmt"

	"github.com/fla-ops/fla/internal/clients"
	"github.com/fla-ops/fla/internal/costing"
	"github.com/fla-ops/fla/internal/platform/httpx"
	"github.com/fla-ops/fla/internal/workers"
)

// Errors returned by the work service.
var (
	ErrNotFound   = fmt.Errorf("job %w", httpx.ErrNotFound)
	ErrValidation = fmt.Errorf("job %w", httpx.ErrValidation)
	ErrConflict   = fmt.Errorf("job %w", httpx.ErrConflict)
)

// JobView is a job with its computed financials.
type JobView struct {
	costing.Job
	Financials costing.JobFinancials `json:"financials"`
}

// JobDetail adds the referenced parties. Client or Worker is nil when the
// job has no reference or the referenced record no longer exists.
type JobDetail struct {
	JobView
	Client *clients.Client `json:"client"`
	Worker *workers.Worker `json:"worker"`
}

// ListFilter narrows job listings. CreatedIn filters by creation month.
type ListFilter struct {
	Status    costing.JobStatus
	CreatedIn *costing.Period
	ClientID  *int64
	WorkerID  *int64
}
