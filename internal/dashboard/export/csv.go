// Package export renders dashboard reports as CSV.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/fla-ops/fla/internal/dashboard"
)

// WriteReportCSV serialises the monthly snapshot, goals and trend as Metric,Value rows.
func WriteReportCSV(w io.Writer, report dashboard.Report) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	s := report.Snapshot
	records := [][]string{
		{"Metric", "Value"},
		{"Period", report.Period.String()},
		{"Currency", report.Currency},
		{"Net Sales", s.NetSales.String()},
		{"Tax Collected", s.TaxCollected.String()},
		{"Gross Sales", s.GrossSales.String()},
		{"Labor Cost", s.LaborCost.String()},
		{"Material Cost", s.MaterialCost.String()},
		{"Additional Cost", s.AdditionalCost.String()},
		{"Direct Costs", s.DirectCosts.String()},
		{"Gross Margin", s.GrossMargin.String()},
		{"Gross Margin %", s.GrossMarginPct.Round(4).String()},
		{"Fixed Expenses", s.FixedExpenses.String()},
		{"Net Operating Result", s.NetOperatingResult.String()},
		{"Tax Credit", s.TaxCredit.String()},
		{"Tax Payable", s.TaxPayable.String()},
		{"Receivable", s.Receivable.String()},
		{"Payable", s.Payable.String()},
		{"Completed Jobs", strconv.Itoa(s.CompletedJobs)},
		{"Overdue Receivables", strconv.Itoa(report.OverdueReceivables)},
		{"Breakeven", report.Breakeven.String()},
		{"Sales Objective", report.Goals.Objective.String()},
		{"Objective Progress", report.Goals.ObjectiveProgress.Round(4).String()},
	}
	if err := writer.WriteAll(records); err != nil {
		return err
	}
	if len(report.Trend) > 0 {
		if err := writer.Write([]string{}); err != nil {
			return err
		}
		if err := WriteTrendCSV(writer, report.Trend); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteTrendCSV appends the monthly sales trend to an open writer.
func WriteTrendCSV(writer *csv.Writer, points []dashboard.TrendPoint) error {
	if err := writer.Write([]string{"Period", "Net Sales", "Completed Jobs"}); err != nil {
		return err
	}
	for _, p := range points {
		if err := writer.Write([]string{p.Period.String(), p.NetSales.String(), strconv.Itoa(p.CompletedJobs)}); err != nil {
			return err
		}
	}
	return nil
}

// WriteReceivablesCSV lists open client balances.
func WriteReceivablesCSV(w io.Writer, rows []dashboard.Receivable) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Job", "Client", "Service", "Total", "Collected", "Balance", "Status", "Due On", "Overdue"}); err != nil {
		return err
	}
	for _, r := range rows {
		due := ""
		if r.DueOn != nil {
			due = r.DueOn.Format("2006-01-02")
		}
		if err := writer.Write([]string{
			strconv.FormatInt(r.JobID, 10),
			r.ClientName,
			r.ServiceType,
			r.Total.String(),
			r.Collected.String(),
			r.Balance.String(),
			string(r.Status),
			due,
			strconv.FormatBool(r.Overdue),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
