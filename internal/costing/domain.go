// Package costing turns quotes and payment ledgers into cost, margin, tax and balance figures.
package costing

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemKind tags the variant of a quote line item.
type ItemKind string

const (
	KindService    ItemKind = "service"
	KindMaterial   ItemKind = "material"
	KindAdditional ItemKind = "additional"
)

// Valid reports whether the kind is one of the known variants.
func (k ItemKind) Valid() bool {
	switch k {
	case KindService, KindMaterial, KindAdditional:
		return true
	}
	return false
}

// LineItem is one quoted line. Which fields apply depends on Kind:
//   - service: Quantity, UnitPrice
//   - material: Quantity, UnitCost (purchase), UnitPrice (sale)
//   - additional: SubCategory, Cost, Price
//
// Absent numeric fields decode as zero.
type LineItem struct {
	ID          int64           `json:"id"`
	Kind        ItemKind        `json:"kind"`
	Description string          `json:"description,omitempty"`
	Quantity    int64           `json:"quantity,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	SubCategory string          `json:"sub_category,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Cost        decimal.Decimal `json:"cost"`
}

// ServiceItem builds a service line.
func ServiceItem(description string, quantity int64, unitPrice decimal.Decimal) LineItem {
	return LineItem{Kind: KindService, Description: description, Quantity: quantity, UnitPrice: unitPrice}
}

// MaterialItem builds a material line.
func MaterialItem(description string, quantity int64, unitCost, unitPrice decimal.Decimal) LineItem {
	return LineItem{Kind: KindMaterial, Description: description, Quantity: quantity, UnitCost: unitCost, UnitPrice: unitPrice}
}

// AdditionalItem builds an additional-charge line such as transport or debris removal.
func AdditionalItem(description, subCategory string, cost, price decimal.Decimal) LineItem {
	return LineItem{Kind: KindAdditional, Description: description, SubCategory: subCategory, Cost: cost, Price: price}
}

// Revenue is the net sale amount of the line.
func (li LineItem) Revenue() decimal.Decimal {
	switch li.Kind {
	case KindService, KindMaterial:
		return li.UnitPrice.Mul(decimal.NewFromInt(li.Quantity))
	case KindAdditional:
		return li.Price
	}
	return decimal.Zero
}

// InternalCost is the net expense of the line. Service lines carry none; labor is tracked on the job.
func (li LineItem) InternalCost() decimal.Decimal {
	switch li.Kind {
	case KindMaterial:
		return li.UnitCost.Mul(decimal.NewFromInt(li.Quantity))
	case KindAdditional:
		return li.Cost
	}
	return decimal.Zero
}

// Quote is the itemized offer embedded in a job.
type Quote struct {
	Number   string     `json:"number"`
	IssuedOn time.Time  `json:"issued_on"`
	Validity string     `json:"validity,omitempty"`
	Terms    string     `json:"terms,omitempty"`
	Items    []LineItem `json:"items"`
}

// PaymentMethod enumerates accepted payment instruments.
type PaymentMethod string

const (
	MethodTransfer   PaymentMethod = "transfer"
	MethodCash       PaymentMethod = "cash"
	MethodCheck      PaymentMethod = "check"
	MethodDebitCard  PaymentMethod = "debit_card"
	MethodCreditCard PaymentMethod = "credit_card"
)

// Valid reports whether the method is supported.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodTransfer, MethodCash, MethodCheck, MethodDebitCard, MethodCreditCard:
		return true
	}
	return false
}

// Payment is one ledger entry.
type Payment struct {
	ID        string          `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	PaidOn    time.Time       `json:"paid_on"`
	Method    PaymentMethod   `json:"method"`
	Reference string          `json:"reference,omitempty"`
}

// Ledger selects which payment list of a job an entry belongs to.
type Ledger string

const (
	LedgerClient Ledger = "client"
	LedgerWorker Ledger = "worker"
)

// Valid reports whether the ledger is known.
func (l Ledger) Valid() bool {
	return l == LedgerClient || l == LedgerWorker
}

// JobStatus is the externally driven work status.
type JobStatus string

const (
	StatusPendingAcceptance JobStatus = "pending_acceptance"
	StatusInProgress        JobStatus = "in_progress"
	StatusCompleted         JobStatus = "completed"
	StatusCanceled          JobStatus = "canceled"
)

// Valid reports whether the status is known.
func (s JobStatus) Valid() bool {
	switch s {
	case StatusPendingAcceptance, StatusInProgress, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

// ClientPaymentStatus is derived from the client ledger.
type ClientPaymentStatus string

const (
	ClientPending ClientPaymentStatus = "pending"
	ClientPartial ClientPaymentStatus = "partial"
	ClientPaid    ClientPaymentStatus = "paid"
)

// Valid reports whether the status is known.
func (s ClientPaymentStatus) Valid() bool {
	return s == ClientPending || s == ClientPartial || s == ClientPaid
}

// WorkerPaymentStatus is derived from the worker ledger. Workers are paid all-or-nothing.
type WorkerPaymentStatus string

const (
	WorkerPending WorkerPaymentStatus = "pending"
	WorkerPaid    WorkerPaymentStatus = "paid"
)

// Valid reports whether the status is known.
func (s WorkerPaymentStatus) Valid() bool {
	return s == WorkerPending || s == WorkerPaid
}

// Job is one unit of work for a client performed by a worker.
type Job struct {
	ID                  int64               `json:"id"`
	ClientID            *int64              `json:"client_id,omitempty"`
	WorkerID            *int64              `json:"worker_id,omitempty"`
	ServiceType         string              `json:"service_type"`
	Description         string              `json:"description"`
	CreatedOn           time.Time           `json:"created_on"`
	StartedOn           *time.Time          `json:"started_on,omitempty"`
	// FinishedOn and the other dates are calendar dates at midnight UTC; PeriodOf reads their fields as is.
	FinishedOn          *time.Time          `json:"finished_on,omitempty"`
	DueOn               *time.Time          `json:"due_on,omitempty"`
	Quote               Quote               `json:"quote"`
	LaborCost           decimal.Decimal     `json:"labor_cost"`
	ClientPayments      []Payment           `json:"client_payments"`
	WorkerPayments      []Payment           `json:"worker_payments"`
	Status              JobStatus           `json:"status"`
	ClientPaymentStatus ClientPaymentStatus `json:"client_payment_status"`
	WorkerPaymentStatus WorkerPaymentStatus `json:"worker_payment_status"`
	Notes               string              `json:"notes,omitempty"`
	Tags                []string            `json:"tags,omitempty"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// FixedExpense is a recurring monthly cost.
type FixedExpense struct {
	ID     int64           `json:"id"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}
