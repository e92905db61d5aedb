// Package workers is the registry of tradespeople who perform jobs.
package workers

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fla-ops/fla/internal/platform/httpx"
)

// ErrNotFound is returned for unknown worker ids.
var ErrNotFound = fmt.Errorf("worker %w", httpx.ErrNotFound)

// Engagement is how a worker is paid.
type Engagement string

const (
	EngagementPerJob Engagement = "per_job"
	EngagementFixed  Engagement = "fixed"
)

// Worker performs jobs and is paid the job's labor cost.
type Worker struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	TaxID      string          `json:"tax_id,omitempty"`
	Email      string          `json:"email,omitempty"`
	Phone      string          `json:"phone,omitempty"`
	Specialty  string          `json:"specialty,omitempty"`
	Rate       decimal.Decimal `json:"rate"`
	Engagement Engagement      `json:"engagement"`
	Active     bool            `json:"active"`
	Notes      string          `json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ListFilter narrows List results.
type ListFilter struct {
	Specialty string
	Active    *bool
}
