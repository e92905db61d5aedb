package dashboard

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Severity classifies an insight.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarn    Severity = "warn"
	SeverityDanger  Severity = "danger"
	SeveritySuccess Severity = "success"
)

// Insight codes, in evaluation order.
const (
	CodeHealthyCashFlow = "healthy_cash_flow"
	CodeCashRisk        = "cash_risk"
	CodeLowMargin       = "low_margin"
	CodeStrongMargin    = "strong_margin"
	CodeOperatingLoss   = "operating_loss"
	CodeBelowBreakeven  = "below_breakeven"
	CodeNoCompletedJobs = "no_completed_jobs"
)

var (
	lowMargin          = decimal.RequireFromString("0.30")
	strongMargin       = decimal.RequireFromString("0.45")
	receivableCoverage = decimal.NewFromInt(2)
	locale             = language.MustParse("es-CL")
)

// Insight is one advisory message derived from a snapshot.
type Insight struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// GenerateInsights evaluates the advisory rules in a fixed order. Rules are independent;
// any subset may fire. The low-margin rule needs completed jobs to rate; an empty month only
// reports the missing completed jobs.
func GenerateInsights(s Snapshot, breakeven decimal.Decimal) []Insight {
	p := message.NewPrinter(locale)
	out := make([]Insight, 0, 4)
	add := func(code string, sev Severity, msg string) {
		out = append(out, Insight{Code: code, Severity: sev, Message: msg})
	}

	if s.Receivable.GreaterThan(s.Payable.Mul(receivableCoverage)) {
		add(CodeHealthyCashFlow, SeveritySuccess, fmt.Sprintf(
			"Positive cash flow: receivables (%s) exceed payables (%s).",
			money(p, s.Receivable), money(p, s.Payable)))
	}
	if s.Receivable.LessThan(s.Payable) {
		add(CodeCashRisk, SeverityDanger, fmt.Sprintf(
			"Cash risk: %s owed to workers against %s receivable.",
			money(p, s.Payable), money(p, s.Receivable)))
	}
	if s.CompletedJobs > 0 && s.GrossMarginPct.LessThan(lowMargin) {
		add(CodeLowMargin, SeverityWarn, fmt.Sprintf(
			"Low gross margin (%s). Review prices or material costs.", percent(p, s.GrossMarginPct)))
	}
	if s.GrossMarginPct.GreaterThanOrEqual(strongMargin) {
		add(CodeStrongMargin, SeveritySuccess, fmt.Sprintf(
			"Strong gross margin (%s) this month.", percent(p, s.GrossMarginPct)))
	}
	if s.NetOperatingResult.IsNegative() {
		add(CodeOperatingLoss, SeverityDanger, fmt.Sprintf(
			"Negative operating result (%s). Fixed expenses exceed gross margin.", money(p, s.NetOperatingResult)))
	}
	if s.NetSales.LessThan(breakeven) {
		add(CodeBelowBreakeven, SeverityWarn, fmt.Sprintf(
			"%s more in net sales needed to reach breakeven.", money(p, breakeven.Sub(s.NetSales))))
	}
	if s.CompletedJobs == 0 {
		add(CodeNoCompletedJobs, SeverityWarn, "No completed jobs this month. Review the pipeline.")
	}
	return out
}

func money(p *message.Printer, amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	if amount.Equal(amount.Truncate(0)) {
		return sign + p.Sprintf("$%d", amount.IntPart())
	}
	v, _ := amount.Round(2).Float64()
	return sign + p.Sprintf("$%.2f", v)
}

func percent(p *message.Printer, ratio decimal.Decimal) string {
	v, _ := ratio.Mul(decimal.NewFromInt(100)).Float64()
	return p.Sprintf("%.1f%%", v)
}
