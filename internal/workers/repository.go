package workers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fla-ops/fla/internal/platform/db"
)

// Repository persists workers.
type Repository interface {
	Get(ctx context.Context, id int64) (Worker, error)
	List(ctx context.Context, filter ListFilter) ([]Worker, error)
	Create(ctx context.Context, w Worker) (Worker, error)
	Update(ctx context.Context, w Worker) (Worker, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db db.DBTX
}

// NewRepository returns a Postgres backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const workerColumns = `id, name, tax_id, email, phone, specialty, rate, engagement, active, notes, created_at, updated_at`

func scanWorker(row pgx.Row) (Worker, error) {
	var (
		w    Worker
		rate pgtype.Numeric
	)
	err := row.Scan(&w.ID, &w.Name, &w.TaxID, &w.Email, &w.Phone, &w.Specialty, &rate, &w.Engagement, &w.Active, &w.Notes, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Worker{}, ErrNotFound
	}
	if err != nil {
		return Worker{}, err
	}
	w.Rate = db.Decimal(rate)
	return w, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Worker, error) {
	return scanWorker(r.db.QueryRow(ctx, `SELECT `+workerColumns+` FROM workers WHERE id = $1`, id))
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Worker, error) {
	var (
		conditions []string
		args       []any
	)
	if s := strings.TrimSpace(filter.Specialty); s != "" {
		args = append(args, s)
		conditions = append(conditions, fmt.Sprintf("specialty ILIKE $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)))
	}
	query := `SELECT ` + workerColumns + ` FROM workers`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY name, id"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("workers: list: %w", err)
	}
	defer rows.Close()

	out := make([]Worker, 0)
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, fmt.Errorf("workers: scan: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, w Worker) (Worker, error) {
	return scanWorker(r.db.QueryRow(ctx, `
		INSERT INTO workers (name, tax_id, email, phone, specialty, rate, engagement, active, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+workerColumns,
		w.Name, w.TaxID, w.Email, w.Phone, w.Specialty, db.Numeric(w.Rate), string(w.Engagement), w.Active, w.Notes,
	))
}

func (r *repository) Update(ctx context.Context, w Worker) (Worker, error) {
	return scanWorker(r.db.QueryRow(ctx, `
		UPDATE workers
		SET name = $2, tax_id = $3, email = $4, phone = $5, specialty = $6, rate = $7,
		    engagement = $8, active = $9, notes = $10, updated_at = now()
		WHERE id = $1
		RETURNING `+workerColumns,
		w.ID, w.Name, w.TaxID, w.Email, w.Phone, w.Specialty, db.Numeric(w.Rate), string(w.Engagement), w.Active, w.Notes,
	))
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM workers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("workers: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
