package dashboard

import "github.com/shopspring/decimal"

// DefaultGrossMarginRatio is used for breakeven when no usable ratio is configured.
var DefaultGrossMarginRatio = decimal.RequireFromString("0.45")

var (
	one           = decimal.NewFromInt(1)
	objectiveHigh = decimal.RequireFromString("0.9")
	objectiveMid  = decimal.RequireFromString("0.6")
	breakevenMid  = decimal.RequireFromString("0.7")
)

// BreakevenRevenue is the net sales needed to cover fixed expenses at the given gross margin ratio.
func BreakevenRevenue(fixedTotal, grossMarginRatio decimal.Decimal) decimal.Decimal {
	if !grossMarginRatio.IsPositive() {
		grossMarginRatio = DefaultGrossMarginRatio
	}
	return fixedTotal.Div(grossMarginRatio)
}

// Light is a traffic-light rating for goal progress.
type Light string

const (
	LightGreen  Light = "green"
	LightYellow Light = "yellow"
	LightRed    Light = "red"
)

// Goals reports progress towards the monthly sales objective and breakeven point.
type Goals struct {
	Objective            decimal.Decimal `json:"objective"`
	ObjectiveProgress    decimal.Decimal `json:"objective_progress"`
	ObjectiveLight       Light           `json:"objective_light"`
	RemainingToObjective decimal.Decimal `json:"remaining_to_objective"`
	Breakeven            decimal.Decimal `json:"breakeven"`
	BreakevenProgress    decimal.Decimal `json:"breakeven_progress"`
	BreakevenLight       Light           `json:"breakeven_light"`
	RemainingToBreakeven decimal.Decimal `json:"remaining_to_breakeven"`
}

// ComputeGoals rates net sales against the objective and breakeven targets.
// Progress is capped at 1; a non-positive target counts as met.
func ComputeGoals(netSales, objective, breakeven decimal.Decimal) Goals {
	g := Goals{
		Objective:            objective,
		ObjectiveProgress:    progress(netSales, objective),
		RemainingToObjective: remaining(netSales, objective),
		Breakeven:            breakeven,
		BreakevenProgress:    progress(netSales, breakeven),
		RemainingToBreakeven: remaining(netSales, breakeven),
	}
	g.ObjectiveLight = rate(g.ObjectiveProgress, objectiveHigh, objectiveMid)
	g.BreakevenLight = rate(g.BreakevenProgress, one, breakevenMid)
	return g
}

func progress(actual, target decimal.Decimal) decimal.Decimal {
	if !target.IsPositive() {
		return one
	}
	return decimal.Min(actual.Div(target), one)
}

func remaining(actual, target decimal.Decimal) decimal.Decimal {
	return decimal.Max(target.Sub(actual), decimal.Zero)
}

func rate(p, green, yellow decimal.Decimal) Light {
	switch {
	case p.GreaterThanOrEqual(green):
		return LightGreen
	case p.GreaterThanOrEqual(yellow):
		return LightYellow
	default:
		return LightRed
	}
}
