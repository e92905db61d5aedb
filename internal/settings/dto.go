package settings

import "github.com/shopspring/decimal"

// UpdateRequest patches settings; nil fields are left unchanged.
type UpdateRequest struct {
	CompanyName      *string          `json:"company_name" validate:"omitempty,max=200"`
	CompanyTaxID     *string          `json:"company_tax_id" validate:"omitempty,max=20"`
	CompanyEmail     *string          `json:"company_email" validate:"omitempty,email"`
	CompanyPhone     *string          `json:"company_phone" validate:"omitempty,max=40"`
	CompanyAddress   *string          `json:"company_address" validate:"omitempty,max=300"`
	TaxRate          *decimal.Decimal `json:"tax_rate" validate:"omitnil,gte=0,lt=1"`
	Currency         *string          `json:"currency" validate:"omitempty,len=3,alpha"`
	CurrencyScale    *int32           `json:"currency_scale" validate:"omitnil,gte=0,lte=4"`
	GrossMarginRatio *decimal.Decimal `json:"gross_margin_ratio" validate:"omitnil,gt=0,lt=1"`
	SalesObjective   *decimal.Decimal `json:"sales_objective" validate:"omitnil,gte=0"`
}

// CreateExpenseRequest adds a fixed monthly expense.
type CreateExpenseRequest struct {
	Name   string          `json:"name" validate:"required,max=200"`
	Amount decimal.Decimal `json:"amount" validate:"gte=0"`
}
