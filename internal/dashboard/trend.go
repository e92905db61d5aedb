package dashboard

import (
	"github.com/shopspring/decimal"

	"github.com/fla-ops/fla/internal/costing"
)

// DefaultTrendMonths is the window shown next to the monthly report.
const DefaultTrendMonths = 6

// TrendPoint is net sales for one month.
type TrendPoint struct {
	Period        costing.Period  `json:"period"`
	NetSales      decimal.Decimal `json:"net_sales"`
	CompletedJobs int             `json:"completed_jobs"`
}

// SalesTrend returns the completed-job net sales of the months ending at end, oldest first.
func SalesTrend(calc costing.Calculator, jobs []costing.Job, end costing.Period, months int) []TrendPoint {
	if months <= 0 {
		return nil
	}
	points := make([]TrendPoint, months)
	index := make(map[costing.Period]int, months)
	for i := 0; i < months; i++ {
		p := end.AddMonths(i - months + 1)
		points[i] = TrendPoint{Period: p}
		index[p] = i
	}
	for _, job := range jobs {
		if job.Status != costing.StatusCompleted || job.FinishedOn == nil {
			continue
		}
		i, ok := index[costing.PeriodOf(*job.FinishedOn)]
		if !ok {
			continue
		}
		points[i].NetSales = points[i].NetSales.Add(calc.QuoteTotals(job.Quote.Items).NetRevenue)
		points[i].CompletedJobs++
	}
	return points
}
