package costing

import "github.com/shopspring/decimal"

// QuoteTotals summarises a quote's revenue, tax and internal cost.
type QuoteTotals struct {
	NetRevenue        decimal.Decimal `json:"net_revenue"`
	Tax               decimal.Decimal `json:"tax"`
	Total             decimal.Decimal `json:"total"`
	MaterialCost      decimal.Decimal `json:"material_cost"`
	AdditionalCost    decimal.Decimal `json:"additional_cost"`
	ServiceRevenue    decimal.Decimal `json:"service_revenue"`
	MaterialRevenue   decimal.Decimal `json:"material_revenue"`
	AdditionalRevenue decimal.Decimal `json:"additional_revenue"`
}

// Calculator computes quote and job figures under a fixed Config.
type Calculator struct {
	cfg Config
}

// NewCalculator builds a Calculator.
func NewCalculator(cfg Config) Calculator {
	return Calculator{cfg: cfg.normalized()}
}

// Config returns the parameters in use.
func (c Calculator) Config() Config {
	return c.cfg
}

// Tax returns the rounded tax owed on a net amount.
func (c Calculator) Tax(net decimal.Decimal) decimal.Decimal {
	return c.cfg.RoundMoney(net.Mul(c.cfg.TaxRate))
}

// QuoteTotals sums the line items. Unknown kinds contribute nothing.
func (c Calculator) QuoteTotals(items []LineItem) QuoteTotals {
	var t QuoteTotals
	for _, item := range items {
		switch item.Kind {
		case KindService:
			t.ServiceRevenue = t.ServiceRevenue.Add(item.Revenue())
		case KindMaterial:
			t.MaterialRevenue = t.MaterialRevenue.Add(item.Revenue())
			t.MaterialCost = t.MaterialCost.Add(item.InternalCost())
		case KindAdditional:
			t.AdditionalRevenue = t.AdditionalRevenue.Add(item.Revenue())
			t.AdditionalCost = t.AdditionalCost.Add(item.InternalCost())
		}
	}
	t.NetRevenue = t.ServiceRevenue.Add(t.MaterialRevenue).Add(t.AdditionalRevenue)
	t.Tax = c.Tax(t.NetRevenue)
	t.Total = t.NetRevenue.Add(t.Tax)
	return t
}
