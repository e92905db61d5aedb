// Package dashboard folds job financials into the monthly profit, tax and cash-flow report.
package dashboard

import (
	"github.com/shopspring/decimal"

	"github.com/fla-ops/fla/internal/costing"
)

// Snapshot is the monthly aggregate over completed jobs plus fixed expenses.
// Receivable and Payable span every job regardless of period.
type Snapshot struct {
	Period             costing.Period  `json:"period"`
	NetSales           decimal.Decimal `json:"net_sales"`
	TaxCollected       decimal.Decimal `json:"tax_collected"`
	GrossSales         decimal.Decimal `json:"gross_sales"`
	LaborCost          decimal.Decimal `json:"labor_cost"`
	MaterialCost       decimal.Decimal `json:"material_cost"`
	AdditionalCost     decimal.Decimal `json:"additional_cost"`
	DirectCosts        decimal.Decimal `json:"direct_costs"`
	GrossMargin        decimal.Decimal `json:"gross_margin"`
	GrossMarginPct     decimal.Decimal `json:"gross_margin_pct"`
	FixedExpenses      decimal.Decimal `json:"fixed_expenses"`
	NetOperatingResult decimal.Decimal `json:"net_operating_result"`
	TaxCredit          decimal.Decimal `json:"tax_credit"`
	TaxPayable         decimal.Decimal `json:"tax_payable"`
	Receivable         decimal.Decimal `json:"receivable"`
	Payable            decimal.Decimal `json:"payable"`
	CompletedJobs      int             `json:"completed_jobs"`
}

// Aggregator computes snapshots with a fixed calculator.
type Aggregator struct {
	calc costing.Calculator
}

// NewAggregator wires the calculator used for per-job figures.
func NewAggregator(calc costing.Calculator) Aggregator {
	return Aggregator{calc: calc}
}

// Compute builds the snapshot for period. Each job's financials are computed once.
func (a Aggregator) Compute(jobs []costing.Job, expenses []costing.FixedExpense, period costing.Period) Snapshot {
	snap := Snapshot{Period: period}
	for _, job := range jobs {
		f := a.calc.JobFinancials(job)
		if job.ClientPaymentStatus != costing.ClientPaid {
			snap.Receivable = snap.Receivable.Add(f.ClientBalance)
		}
		if job.WorkerPaymentStatus != costing.WorkerPaid {
			snap.Payable = snap.Payable.Add(f.WorkerBalance)
		}
		if !completedIn(job, period) {
			continue
		}
		snap.CompletedJobs++
		snap.NetSales = snap.NetSales.Add(f.NetRevenue)
		snap.TaxCollected = snap.TaxCollected.Add(f.Tax)
		snap.LaborCost = snap.LaborCost.Add(f.LaborCost)
		snap.MaterialCost = snap.MaterialCost.Add(f.MaterialCost)
		snap.AdditionalCost = snap.AdditionalCost.Add(f.AdditionalCost)
	}

	snap.GrossSales = snap.NetSales.Add(snap.TaxCollected)
	snap.DirectCosts = snap.LaborCost.Add(snap.MaterialCost).Add(snap.AdditionalCost)
	snap.GrossMargin = snap.NetSales.Sub(snap.DirectCosts)
	snap.GrossMarginPct = safeRatio(snap.GrossMargin, snap.NetSales)
	snap.FixedExpenses = SumFixedExpenses(expenses)
	snap.NetOperatingResult = snap.GrossMargin.Sub(snap.FixedExpenses)
	snap.TaxCredit = a.calc.Tax(snap.MaterialCost)
	snap.TaxPayable = snap.TaxCollected.Sub(snap.TaxCredit)
	return snap
}

func completedIn(job costing.Job, period costing.Period) bool {
	return job.Status == costing.StatusCompleted && period.Contains(job.FinishedOn)
}

// SumFixedExpenses totals the monthly fixed costs.
func SumFixedExpenses(expenses []costing.FixedExpense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

func safeRatio(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Div(den)
}
