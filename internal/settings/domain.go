// Package settings stores the company profile, regional tax parameters, sales goals and fixed expenses.
package settings

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fla-ops/fla/internal/costing"
	"github.com/fla-ops/fla/internal/platform/httpx"
)

// Errors returned by the settings service.
var (
	ErrNotFound   = fmt.Errorf("settings: %w", httpx.ErrNotFound)
	ErrValidation = fmt.Errorf("settings: %w", httpx.ErrValidation)
)

// DefaultSalesObjective is the monthly net sales target for a new installation.
var DefaultSalesObjective = decimal.NewFromInt(1_500_000)

// DefaultGrossMarginRatio is the planning margin used for breakeven.
var DefaultGrossMarginRatio = decimal.RequireFromString("0.45")

// Company is the business profile printed on quotes.
type Company struct {
	Name    string `json:"name"`
	TaxID   string `json:"tax_id"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Settings is the single installation-wide configuration row.
type Settings struct {
	Company          Company         `json:"company"`
	TaxRate          decimal.Decimal `json:"tax_rate"`
	Currency         string          `json:"currency"`
	CurrencyScale    int32           `json:"currency_scale"`
	GrossMarginRatio decimal.Decimal `json:"gross_margin_ratio"`
	SalesObjective   decimal.Decimal `json:"sales_objective"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Defaults returns the factory configuration.
func Defaults() Settings {
	return Settings{
		TaxRate:          costing.DefaultTaxRate,
		Currency:         costing.DefaultCurrency,
		CurrencyScale:    costing.DefaultCurrencyScale,
		GrossMarginRatio: DefaultGrossMarginRatio,
		SalesObjective:   DefaultSalesObjective,
	}
}

// CostingConfig projects the parameters the calculators need.
func (s Settings) CostingConfig() costing.Config {
	return costing.Config{TaxRate: s.TaxRate, Currency: s.Currency, CurrencyScale: s.CurrencyScale}
}

// Calculator builds a calculator for the current parameters.
func (s Settings) Calculator() costing.Calculator {
	return costing.NewCalculator(s.CostingConfig())
}
