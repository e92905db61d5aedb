package dashboard

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fla-ops/fla/internal/costing"
)

// Receivable is one job with an open client balance.
type Receivable struct {
	JobID       int64                       `json:"job_id"`
	ClientID    *int64                      `json:"client_id,omitempty"`
	ClientName  string                      `json:"client_name,omitempty"`
	ServiceType string                      `json:"service_type"`
	Total       decimal.Decimal             `json:"total"`
	Collected   decimal.Decimal             `json:"collected"`
	Balance     decimal.Decimal             `json:"balance"`
	Status      costing.ClientPaymentStatus `json:"status"`
	DueOn       *time.Time                  `json:"due_on,omitempty"`
	Overdue     bool                        `json:"overdue"`
}

// Payable is one job with labor still owed to the worker.
type Payable struct {
	JobID       int64                       `json:"job_id"`
	WorkerID    *int64                      `json:"worker_id,omitempty"`
	WorkerName  string                      `json:"worker_name,omitempty"`
	ServiceType string                      `json:"service_type"`
	LaborCost   decimal.Decimal             `json:"labor_cost"`
	Paid        decimal.Decimal             `json:"paid"`
	Balance     decimal.Decimal             `json:"balance"`
	Status      costing.WorkerPaymentStatus `json:"status"`
}

// IsOverdue reports whether the client payment is past due as of today.
func IsOverdue(job costing.Job, today time.Time) bool {
	if job.ClientPaymentStatus == costing.ClientPaid || job.DueOn == nil {
		return false
	}
	return dateOnly(*job.DueOn).Before(dateOnly(today))
}

// CountOverdue counts unpaid jobs whose due date has passed.
func CountOverdue(jobs []costing.Job, today time.Time) int {
	n := 0
	for _, job := range jobs {
		if IsOverdue(job, today) {
			n++
		}
	}
	return n
}

// Receivables lists jobs whose client status is not paid, oldest due date first.
func Receivables(calc costing.Calculator, jobs []costing.Job, names map[int64]string, today time.Time) []Receivable {
	out := make([]Receivable, 0)
	for _, job := range jobs {
		if job.ClientPaymentStatus == costing.ClientPaid {
			continue
		}
		f := calc.JobFinancials(job)
		out = append(out, Receivable{
			JobID:       job.ID,
			ClientID:    job.ClientID,
			ClientName:  lookup(names, job.ClientID),
			ServiceType: job.ServiceType,
			Total:       f.Total,
			Collected:   f.ClientCollected,
			Balance:     f.ClientBalance,
			Status:      job.ClientPaymentStatus,
			DueOn:       job.DueOn,
			Overdue:     IsOverdue(job, today),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].DueOn, out[j].DueOn
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	return out
}

// Payables lists jobs whose worker status is not paid.
func Payables(calc costing.Calculator, jobs []costing.Job, names map[int64]string) []Payable {
	out := make([]Payable, 0)
	for _, job := range jobs {
		if job.WorkerPaymentStatus == costing.WorkerPaid {
			continue
		}
		f := calc.JobFinancials(job)
		out = append(out, Payable{
			JobID:       job.ID,
			WorkerID:    job.WorkerID,
			WorkerName:  lookup(names, job.WorkerID),
			ServiceType: job.ServiceType,
			LaborCost:   f.LaborCost,
			Paid:        f.WorkerPaid,
			Balance:     f.WorkerBalance,
			Status:      job.WorkerPaymentStatus,
		})
	}
	return out
}

func lookup(names map[int64]string, id *int64) string {
	if id == nil {
		return ""
	}
	return names[*id]
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
