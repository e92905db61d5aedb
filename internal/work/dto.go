package work

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fla-ops/fla/internal/costing"
)

// LineItemRequest is one quote line as submitted.
type LineItemRequest struct {
	Kind        costing.ItemKind `json:"kind" validate:"required,oneof=service material additional"`
	Description string           `json:"description" validate:"max=500"`
	Quantity    int64            `json:"quantity" validate:"gte=0"`
	UnitPrice   decimal.Decimal  `json:"unit_price" validate:"gte=0"`
	UnitCost    decimal.Decimal  `json:"unit_cost" validate:"gte=0"`
	SubCategory string           `json:"sub_category" validate:"max=100"`
	Price       decimal.Decimal  `json:"price" validate:"gte=0"`
	Cost        decimal.Decimal  `json:"cost" validate:"gte=0"`
}

// QuoteRequest replaces a job's quote wholesale.
type QuoteRequest struct {
	Number   string            `json:"number" validate:"max=40"`
	IssuedOn *time.Time        `json:"issued_on"`
	Validity string            `json:"validity" validate:"max=100"`
	Terms    string            `json:"terms" validate:"max=4000"`
	Items    []LineItemRequest `json:"items" validate:"max=500,dive"`
}

// CreateRequest opens a job.
type CreateRequest struct {
	ClientID    *int64          `json:"client_id" validate:"omitnil,gt=0"`
	WorkerID    *int64          `json:"worker_id" validate:"omitnil,gt=0"`
	ServiceType string          `json:"service_type" validate:"required,max=100"`
	Description string          `json:"description" validate:"max=4000"`
	CreatedOn   *time.Time      `json:"created_on"`
	StartedOn   *time.Time      `json:"started_on"`
	FinishedOn  *time.Time      `json:"finished_on"`
	DueOn       *time.Time      `json:"due_on"`
	LaborCost   decimal.Decimal `json:"labor_cost" validate:"gte=0"`
	Quote       QuoteRequest    `json:"quote"`
	Notes       string          `json:"notes" validate:"max=4000"`
	Tags        []string        `json:"tags" validate:"max=20,dive,min=1,max=40"`
}

// UpdateRequest patches job attributes. Quote, payments and status have dedicated operations.
type UpdateRequest struct {
	ClientID    *int64           `json:"client_id" validate:"omitnil,gt=0"`
	WorkerID    *int64           `json:"worker_id" validate:"omitnil,gt=0"`
	ServiceType *string          `json:"service_type" validate:"omitnil,min=1,max=100"`
	Description *string          `json:"description" validate:"omitnil,max=4000"`
	StartedOn   *time.Time       `json:"started_on"`
	FinishedOn  *time.Time       `json:"finished_on"`
	DueOn       *time.Time       `json:"due_on"`
	LaborCost   *decimal.Decimal `json:"labor_cost" validate:"omitnil,gte=0"`
	Notes       *string          `json:"notes" validate:"omitnil,max=4000"`
	Tags        []string         `json:"tags" validate:"omitempty,max=20,dive,min=1,max=40"`
}

// PaymentRequest appends a payment to one ledger. PaidOn defaults to today.
type PaymentRequest struct {
	Ledger    costing.Ledger        `json:"ledger" validate:"required,oneof=client worker"`
	Amount    decimal.Decimal       `json:"amount" validate:"gt=0"`
	PaidOn    *time.Time            `json:"paid_on"`
	Method    costing.PaymentMethod `json:"method" validate:"required,oneof=transfer cash check debit_card credit_card"`
	Reference string                `json:"reference" validate:"max=100"`
}

// PaymentStatusRequest overrides a derived payment status.
type PaymentStatusRequest struct {
	Ledger costing.Ledger `json:"ledger" validate:"required,oneof=client worker"`
	Status string         `json:"status" validate:"required,oneof=pending partial paid"`
}

// StatusRequest moves the job through its lifecycle.
type StatusRequest struct {
	Status     costing.JobStatus `json:"status" validate:"required,oneof=pending_acceptance in_progress completed canceled"`
	FinishedOn *time.Time        `json:"finished_on"`
}
