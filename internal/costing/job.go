package costing

import "github.com/shopspring/decimal"

// JobFinancials extends the quote totals with labor, profit and ledger balances.
type JobFinancials struct {
	QuoteTotals
	LaborCost       decimal.Decimal `json:"labor_cost"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	Profit          decimal.Decimal `json:"profit"`
	Margin          decimal.Decimal `json:"margin"`
	ClientCollected decimal.Decimal `json:"client_collected"`
	ClientBalance   decimal.Decimal `json:"client_balance"`
	WorkerPaid      decimal.Decimal `json:"worker_paid"`
	WorkerBalance   decimal.Decimal `json:"worker_balance"`
}

// JobFinancials computes the full money picture of a job.
func (c Calculator) JobFinancials(job Job) JobFinancials {
	f := JobFinancials{QuoteTotals: c.QuoteTotals(job.Quote.Items)}
	f.LaborCost = job.LaborCost
	f.TotalCost = f.LaborCost.Add(f.MaterialCost).Add(f.AdditionalCost)
	f.Profit = f.NetRevenue.Sub(f.TotalCost)
	if f.NetRevenue.IsPositive() {
		f.Margin = f.Profit.Div(f.NetRevenue)
	}
	f.ClientCollected = sumPayments(job.ClientPayments)
	f.ClientBalance = f.Total.Sub(f.ClientCollected)
	f.WorkerPaid = sumPayments(job.WorkerPayments)
	f.WorkerBalance = f.LaborCost.Sub(f.WorkerPaid)
	return f
}

func sumPayments(payments []Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}

// ClientStatusFor derives the client payment status from job figures.
func ClientStatusFor(f JobFinancials) ClientPaymentStatus {
	switch {
	case !f.ClientBalance.IsPositive():
		return ClientPaid
	case f.ClientCollected.IsPositive():
		return ClientPartial
	default:
		return ClientPending
	}
}

// WorkerStatusFor derives the worker payment status from job figures.
func WorkerStatusFor(f JobFinancials) WorkerPaymentStatus {
	if f.WorkerPaid.GreaterThanOrEqual(f.LaborCost) {
		return WorkerPaid
	}
	return WorkerPending
}

// Refresh re-derives both payment statuses from the job's current quote and ledgers.
func (c Calculator) Refresh(job Job) Job {
	f := c.JobFinancials(job)
	job.ClientPaymentStatus = ClientStatusFor(f)
	job.WorkerPaymentStatus = WorkerStatusFor(f)
	return job
}

// AppendPayment returns a copy of job with the payment added to the chosen ledger
// and that ledger's status re-derived. The input job is not modified and the
// other ledger's status is left as it was. An unknown ledger returns job as is.
func (c Calculator) AppendPayment(job Job, ledger Ledger, payment Payment) Job {
	switch ledger {
	case LedgerClient:
		job.ClientPayments = appendCopy(job.ClientPayments, payment)
		job.ClientPaymentStatus = ClientStatusFor(c.JobFinancials(job))
	case LedgerWorker:
		job.WorkerPayments = appendCopy(job.WorkerPayments, payment)
		job.WorkerPaymentStatus = WorkerStatusFor(c.JobFinancials(job))
	}
	return job
}

func appendCopy(payments []Payment, p Payment) []Payment {
	out := make([]Payment, 0, len(payments)+1)
	out = append(out, payments...)
	return append(out, p)
}

// OverrideClientStatus sets the client status without consulting the ledger.
// The next payment re-derives it.
func OverrideClientStatus(job Job, status ClientPaymentStatus) Job {
	job.ClientPaymentStatus = status
	return job
}

// OverrideWorkerStatus sets the worker status without consulting the ledger.
func OverrideWorkerStatus(job Job, status WorkerPaymentStatus) Job {
	job.WorkerPaymentStatus = status
	return job
}
