package workers

import "github.com/shopspring/decimal"

// CreateRequest registers a worker.
type CreateRequest struct {
	Name       string          `json:"name" validate:"required,max=200"`
	TaxID      string          `json:"tax_id" validate:"omitempty,max=20"`
	Email      string          `json:"email" validate:"omitempty,email"`
	Phone      string          `json:"phone" validate:"omitempty,max=40"`
	Specialty  string          `json:"specialty" validate:"omitempty,max=100"`
	Rate       decimal.Decimal `json:"rate" validate:"gte=0"`
	Engagement Engagement      `json:"engagement" validate:"omitempty,oneof=per_job fixed"`
	Notes      string          `json:"notes" validate:"omitempty,max=2000"`
}

// UpdateRequest patches a worker; nil fields are left unchanged.
type UpdateRequest struct {
	Name       *string          `json:"name" validate:"omitnil,min=1,max=200"`
	TaxID      *string          `json:"tax_id" validate:"omitnil,max=20"`
	Email      *string          `json:"email" validate:"omitempty,email"`
	Phone      *string          `json:"phone" validate:"omitnil,max=40"`
	Specialty  *string          `json:"specialty" validate:"omitnil,max=100"`
	Rate       *decimal.Decimal `json:"rate" validate:"omitnil,gte=0"`
	Engagement *Engagement      `json:"engagement" validate:"omitnil,oneof=per_job fixed"`
	Active     *bool            `json:"active"`
	Notes      *string          `json:"notes" validate:"omitnil,max=2000"`
}
