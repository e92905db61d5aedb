package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fla-ops/fla/internal/costing"
	"github.com/fla-ops/fla/internal/platform/db"
)

// Repository persists settings and fixed expenses.
type Repository interface {
	Get(ctx context.Context) (Settings, error)
	Save(ctx context.Context, s Settings) (Settings, error)
	ListExpenses(ctx context.Context) ([]costing.FixedExpense, error)
	CreateExpense(ctx context.Context, e costing.FixedExpense) (costing.FixedExpense, error)
	DeleteExpense(ctx context.Context, id int64) error
}

type repository struct {
	db db.DBTX
}

// NewRepository returns a Postgres backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const selectSettings = `
	SELECT company_name, company_tax_id, company_email, company_phone, company_address,
	       tax_rate, currency, currency_scale, gross_margin_ratio, sales_objective, updated_at
	FROM settings WHERE id = 1`

func (r *repository) Get(ctx context.Context) (Settings, error) {
	return scanSettings(r.db.QueryRow(ctx, selectSettings))
}

func (r *repository) Save(ctx context.Context, s Settings) (Settings, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO settings (id, company_name, company_tax_id, company_email, company_phone, company_address,
		                      tax_rate, currency, currency_scale, gross_margin_ratio, sales_objective, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
		ON CONFLICT (id) DO UPDATE SET
		    company_name = EXCLUDED.company_name,
		    company_tax_id = EXCLUDED.company_tax_id,
		    company_email = EXCLUDED.company_email,
		    company_phone = EXCLUDED.company_phone,
		    company_address = EXCLUDED.company_address,
		    tax_rate = EXCLUDED.tax_rate,
		    currency = EXCLUDED.currency,
		    currency_scale = EXCLUDED.currency_scale,
		    gross_margin_ratio = EXCLUDED.gross_margin_ratio,
		    sales_objective = EXCLUDED.sales_objective,
		    updated_at = now()
		RETURNING company_name, company_tax_id, company_email, company_phone, company_address,
		          tax_rate, currency, currency_scale, gross_margin_ratio, sales_objective, updated_at`,
		s.Company.Name, s.Company.TaxID, s.Company.Email, s.Company.Phone, s.Company.Address,
		db.Numeric(s.TaxRate), s.Currency, s.CurrencyScale, db.Numeric(s.GrossMarginRatio), db.Numeric(s.SalesObjective),
	)
	return scanSettings(row)
}

func scanSettings(row pgx.Row) (Settings, error) {
	var (
		s                         Settings
		taxRate, ratio, objective pgtype.Numeric
		updatedAt                 pgtype.Timestamptz
	)
	err := row.Scan(
		&s.Company.Name, &s.Company.TaxID, &s.Company.Email, &s.Company.Phone, &s.Company.Address,
		&taxRate, &s.Currency, &s.CurrencyScale, &ratio, &objective, &updatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Settings{}, ErrNotFound
	}
	if err != nil {
		return Settings{}, fmt.Errorf("settings: scan: %w", err)
	}
	s.TaxRate = db.Decimal(taxRate)
	s.GrossMarginRatio = db.Decimal(ratio)
	s.SalesObjective = db.Decimal(objective)
	if updatedAt.Valid {
		s.UpdatedAt = updatedAt.Time
	}
	return s, nil
}

func (r *repository) ListExpenses(ctx context.Context) ([]costing.FixedExpense, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, amount FROM fixed_expenses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("settings: list expenses: %w", err)
	}
	defer rows.Close()

	expenses := make([]costing.FixedExpense, 0)
	for rows.Next() {
		var (
			e      costing.FixedExpense
			amount pgtype.Numeric
		)
		if err := rows.Scan(&e.ID, &e.Name, &amount); err != nil {
			return nil, fmt.Errorf("settings: scan expense: %w", err)
		}
		e.Amount = db.Decimal(amount)
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *repository) CreateExpense(ctx context.Context, e costing.FixedExpense) (costing.FixedExpense, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO fixed_expenses (name, amount) VALUES ($1, $2) RETURNING id`,
		e.Name, db.Numeric(e.Amount),
	).Scan(&e.ID)
	if err != nil {
		return costing.FixedExpense{}, fmt.Errorf("settings: create expense: %w", err)
	}
	return e, nil
}

func (r *repository) DeleteExpense(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM fixed_expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("settings: delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
