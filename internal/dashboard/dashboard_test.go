package dashboard

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fla-ops/fla/internal/costing"
)

var march = costing.Period{Year: 2026, Month: time.March}

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func day(y int, m time.Month, dd int) *time.Time {
	t := time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
	return &t
}

func calc() costing.Calculator {
	return costing.NewCalculator(costing.DefaultConfig())
}

func paintingJob(id int64, finished *time.Time) costing.Job {
	return costing.Job{
		ID:          id,
		ServiceType: "Painting",
		Status:      costing.StatusCompleted,
		FinishedOn:  finished,
		Quote: costing.Quote{Items: []costing.LineItem{
			costing.ServiceItem("Wall painting", 1, d(60000)),
			costing.MaterialItem("Paint", 2, d(10000), d(15000)),
			costing.AdditionalItem("Transport", "transport", d(5000), d(20000)),
		}},
		LaborCost:           d(30000),
		ClientPaymentStatus: costing.ClientPending,
		WorkerPaymentStatus: costing.WorkerPending,
	}
}

func sampleJobs() []costing.Job {
	inProgress := costing.Job{
		ID:                  2,
		Status:              costing.StatusInProgress,
		Quote:               costing.Quote{Items: []costing.LineItem{costing.ServiceItem("Repair", 1, d(50000))}},
		LaborCost:           d(10000),
		WorkerPayments:      []costing.Payment{{Amount: d(4000)}},
		ClientPaymentStatus: costing.ClientPaid,
		WorkerPaymentStatus: costing.WorkerPending,
	}
	february := paintingJob(3, day(2026, time.February, 27))
	february.ClientPaymentStatus = costing.ClientPaid
	february.WorkerPaymentStatus = costing.WorkerPaid
	return []costing.Job{paintingJob(1, day(2026, time.March, 10)), inProgress, february}
}

func TestComputeSnapshot(t *testing.T) {
	expenses := []costing.FixedExpense{{Name: "Rent", Amount: d(80000)}, {Name: "Phone", Amount: d(20000)}}
	s := NewAggregator(calc()).Compute(sampleJobs(), expenses, march)

	assert.Equal(t, 1, s.CompletedJobs)
	assert.Equal(t, "110000", s.NetSales.String())
	assert.Equal(t, "20900", s.TaxCollected.String())
	assert.Equal(t, "130900", s.GrossSales.String())
	assert.Equal(t, "55000", s.DirectCosts.String())
	assert.Equal(t, "55000", s.GrossMargin.String())
	assert.True(t, s.GrossMarginPct.Equal(decimal.RequireFromString("0.5")))
	assert.Equal(t, "100000", s.FixedExpenses.String())
	assert.Equal(t, "-45000", s.NetOperatingResult.String())
	assert.Equal(t, "3800", s.TaxCredit.String())
	assert.Equal(t, "17100", s.TaxPayable.String())
	assert.Equal(t, "130900", s.Receivable.String())
	assert.Equal(t, "36000", s.Payable.String())
}

func TestComputeEmptyPeriod(t *testing.T) {
	s := NewAggregator(calc()).Compute(nil, nil, march)
	assert.Zero(t, s.CompletedJobs)
	assert.True(t, s.GrossMarginPct.IsZero())
	assert.True(t, s.TaxPayable.IsZero())
}

func TestGenerateInsights(t *testing.T) {
	expenses := []costing.FixedExpense{{Amount: d(100000)}}
	s := NewAggregator(calc()).Compute(sampleJobs(), expenses, march)
	breakeven := BreakevenRevenue(s.FixedExpenses, DefaultGrossMarginRatio).Round(0)

	codes := func(in []Insight) []string {
		out := make([]string, len(in))
		for i, x := range in {
			out[i] = x.Code
		}
		return out
	}

	got := GenerateInsights(s, breakeven)
	assert.Equal(t, []string{CodeHealthyCashFlow, CodeStrongMargin, CodeOperatingLoss, CodeBelowBreakeven}, codes(got))
	for _, in := range got {
		assert.NotEmpty(t, in.Message)
	}

	empty := GenerateInsights(Snapshot{Period: march}, decimal.Zero)
	assert.Equal(t, []string{CodeNoCompletedJobs}, codes(empty))

	risky := Snapshot{
		NetSales:       d(100000),
		GrossMarginPct: decimal.RequireFromString("0.2"),
		Receivable:     d(1000),
		Payable:        d(5000),
		CompletedJobs:  2,
	}
	got = GenerateInsights(risky, d(50000))
	assert.Equal(t, []string{CodeCashRisk, CodeLowMargin}, codes(got))
	assert.Equal(t, SeverityDanger, got[0].Severity)
}

func TestLowMarginWithZeroSalesCompletedJob(t *testing.T) {
	job := costing.Job{
		ID:                  9,
		Status:              costing.StatusCompleted,
		FinishedOn:          day(2026, time.March, 5),
		LaborCost:           d(30000),
		ClientPaymentStatus: costing.ClientPending,
		WorkerPaymentStatus: costing.WorkerPending,
	}
	s := NewAggregator(calc()).Compute([]costing.Job{job}, nil, march)
	require.Equal(t, 1, s.CompletedJobs)
	assert.True(t, s.NetSales.IsZero())
	assert.True(t, s.GrossMarginPct.IsZero())

	var codes []string
	for _, in := range GenerateInsights(s, decimal.Zero) {
		codes = append(codes, in.Code)
	}
	assert.Contains(t, codes, CodeLowMargin)
	assert.NotContains(t, codes, CodeNoCompletedJobs)
}

func TestBreakevenRevenue(t *testing.T) {
	assert.Equal(t, "300", BreakevenRevenue(d(90), decimal.RequireFromString("0.3")).String())
	assert.Equal(t, "200", BreakevenRevenue(d(90), decimal.Zero).String())
	assert.True(t, BreakevenRevenue(decimal.Zero, DefaultGrossMarginRatio).IsZero())
}

func TestComputeGoals(t *testing.T) {
	g := ComputeGoals(d(950), d(1000), d(800))
	assert.Equal(t, LightGreen, g.ObjectiveLight)
	assert.Equal(t, "50", g.RemainingToObjective.String())
	assert.True(t, g.BreakevenProgress.Equal(d(1)))
	assert.Equal(t, LightGreen, g.BreakevenLight)
	assert.True(t, g.RemainingToBreakeven.IsZero())

	g = ComputeGoals(d(650), d(1000), d(1000))
	assert.Equal(t, LightYellow, g.ObjectiveLight)
	assert.Equal(t, LightRed, g.BreakevenLight)

	g = ComputeGoals(d(100), d(1000), d(1000))
	assert.Equal(t, LightRed, g.ObjectiveLight)

	g = ComputeGoals(decimal.Zero, decimal.Zero, decimal.Zero)
	assert.Equal(t, LightGreen, g.ObjectiveLight)
	assert.Equal(t, LightGreen, g.BreakevenLight)
}

func TestSalesTrend(t *testing.T) {
	jobs := append(sampleJobs(), paintingJob(9, day(2025, time.December, 20)))
	points := SalesTrend(calc(), jobs, march, 3)
	require.Len(t, points, 3)

	assert.Equal(t, "2026-01", points[0].Period.String())
	assert.True(t, points[0].NetSales.IsZero())
	assert.Equal(t, "2026-02", points[1].Period.String())
	assert.Equal(t, "110000", points[1].NetSales.String())
	assert.Equal(t, 1, points[2].CompletedJobs)

	assert.Nil(t, SalesTrend(calc(), jobs, march, 0))
}

func TestReceivablesAndPayables(t *testing.T) {
	today := time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC)
	jobs := sampleJobs()
	jobs[0].ClientID = ptr(int64(4))
	jobs[0].DueOn = day(2026, time.March, 14)
	late := paintingJob(5, nil)
	late.DueOn = day(2026, time.March, 1)
	undated := paintingJob(6, nil)
	dueToday := paintingJob(7, nil)
	dueToday.DueOn = day(2026, time.March, 15)
	jobs = append(jobs, undated, late, dueToday)

	rows := Receivables(calc(), jobs, map[int64]string{4: "María González"}, today)
	require.Len(t, rows, 4)
	assert.Equal(t, []int64{5, 1, 7, 6}, []int64{rows[0].JobID, rows[1].JobID, rows[2].JobID, rows[3].JobID})
	assert.Equal(t, "María González", rows[1].ClientName)
	assert.True(t, rows[0].Overdue)
	assert.True(t, rows[1].Overdue)
	assert.False(t, rows[2].Overdue)
	assert.Equal(t, 2, CountOverdue(jobs, today))

	payables := Payables(calc(), jobs, nil)
	require.Len(t, payables, 5)
	assert.Equal(t, "6000", payables[1].Balance.String())
}

func ptr[T any](v T) *T { return &v }
