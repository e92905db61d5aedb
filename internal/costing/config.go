package costing

import "github.com/shopspring/decimal"

// Default business parameters for a single-currency installation.
const (
	DefaultCurrency      = "CLP"
	DefaultCurrencyScale = int32(0)
)

// DefaultTaxRate is the VAT rate applied to net revenue.
var DefaultTaxRate = decimal.RequireFromString("0.19")

// Config carries the regional parameters the calculators depend on.
type Config struct {
	TaxRate       decimal.Decimal
	Currency      string
	CurrencyScale int32
}

// DefaultConfig returns the 19% CLP configuration.
func DefaultConfig() Config {
	return Config{
		TaxRate:       DefaultTaxRate,
		Currency:      DefaultCurrency,
		CurrencyScale: DefaultCurrencyScale,
	}
}

func (c Config) normalized() Config {
	if c.Currency == "" {
		c.Currency = DefaultCurrency
	}
	if c.CurrencyScale < 0 {
		c.CurrencyScale = 0
	}
	return c
}

// RoundMoney rounds an amount to the currency's minor unit, half away from zero.
func (c Config) RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(c.CurrencyScale)
}
