package work

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fla-ops/fla/internal/costing"
	"github.com/fla-ops/fla/internal/platform/db"
)

// Repository persists jobs. Quotes and payment ledgers are stored as JSONB on the job row.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (costing.Job, error)
	// GetForUpdate locks the row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id int64) (costing.Job, error)
	List(ctx context.Context, filter ListFilter) ([]costing.Job, error)
	Create(ctx context.Context, job costing.Job) (costing.Job, error)
	Save(ctx context.Context, job costing.Job) (costing.Job, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db   db.DBTX
	pool *pgxpool.Pool
}

// NewRepository returns a Postgres backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const jobColumns = `id, client_id, worker_id, service_type, description, created_on, started_on, finished_on, due_on,
	quote, labor_cost, client_payments, worker_payments, status, client_payment_status, worker_payment_status,
	notes, tags, updated_at`

func scanJob(row pgx.Row) (costing.Job, error) {
	var (
		j     costing.Job
		labor pgtype.Numeric
	)
	err := row.Scan(
		&j.ID, &j.ClientID, &j.WorkerID, &j.ServiceType, &j.Description,
		&j.CreatedOn, &j.StartedOn, &j.FinishedOn, &j.DueOn,
		&j.Quote, &labor, &j.ClientPayments, &j.WorkerPayments,
		&j.Status, &j.ClientPaymentStatus, &j.WorkerPaymentStatus,
		&j.Notes, &j.Tags, &j.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return costing.Job{}, ErrNotFound
	}
	if err != nil {
		return costing.Job{}, err
	}
	j.LaborCost = db.Decimal(labor)
	return j, nil
}

func (r *repository) Get(ctx context.Context, id int64) (costing.Job, error) {
	return scanJob(r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
}

func (r *repository) GetForUpdate(ctx context.Context, id int64) (costing.Job, error) {
	return scanJob(r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1 FOR UPDATE`, id))
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]costing.Job, error) {
	var (
		conditions []string
		args       []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.CreatedIn != nil {
		add("created_on >= $%d", filter.CreatedIn.Start())
		add("created_on < $%d", filter.CreatedIn.End())
	}
	if filter.ClientID != nil {
		add("client_id = $%d", *filter.ClientID)
	}
	if filter.WorkerID != nil {
		add("worker_id = $%d", *filter.WorkerID)
	}

	query := `SELECT ` + jobColumns + ` FROM jobs`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_on DESC, id DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("work: list jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]costing.Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("work: scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (r *repository) Create(ctx context.Context, job costing.Job) (costing.Job, error) {
	job = normalize(job)
	row := r.db.QueryRow(ctx, `
		INSERT INTO jobs (client_id, worker_id, service_type, description, created_on, started_on, finished_on, due_on,
		                  quote, labor_cost, client_payments, worker_payments, status, client_payment_status,
		                  worker_payment_status, notes, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING `+jobColumns,
		job.ClientID, job.WorkerID, job.ServiceType, job.Description, job.CreatedOn, job.StartedOn, job.FinishedOn, job.DueOn,
		job.Quote, db.Numeric(job.LaborCost), job.ClientPayments, job.WorkerPayments, string(job.Status),
		string(job.ClientPaymentStatus), string(job.WorkerPaymentStatus), job.Notes, job.Tags,
	)
	created, err := scanJob(row)
	if err != nil {
		return costing.Job{}, translate(err)
	}
	return created, nil
}

func (r *repository) Save(ctx context.Context, job costing.Job) (costing.Job, error) {
	job = normalize(job)
	row := r.db.QueryRow(ctx, `
		UPDATE jobs SET
		    client_id = $2, worker_id = $3, service_type = $4, description = $5, created_on = $6,
		    started_on = $7, finished_on = $8, due_on = $9, quote = $10, labor_cost = $11,
		    client_payments = $12, worker_payments = $13, status = $14, client_payment_status = $15,
		    worker_payment_status = $16, notes = $17, tags = $18, updated_at = now()
		WHERE id = $1
		RETURNING `+jobColumns,
		job.ID, job.ClientID, job.WorkerID, job.ServiceType, job.Description, job.CreatedOn,
		job.StartedOn, job.FinishedOn, job.DueOn, job.Quote, db.Numeric(job.LaborCost),
		job.ClientPayments, job.WorkerPayments, string(job.Status), string(job.ClientPaymentStatus),
		string(job.WorkerPaymentStatus), job.Notes, job.Tags,
	)
	saved, err := scanJob(row)
	if err != nil {
		return costing.Job{}, translate(err)
	}
	return saved, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("work: delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// normalize replaces nil collections so JSONB and array columns never receive NULL.
func normalize(job costing.Job) costing.Job {
	if job.Quote.Items == nil {
		job.Quote.Items = []costing.LineItem{}
	}
	if job.ClientPayments == nil {
		job.ClientPayments = []costing.Payment{}
	}
	if job.WorkerPayments == nil {
		job.WorkerPayments = []costing.Payment{}
	}
	if job.Tags == nil {
		job.Tags = []string{}
	}
	return job
}

func translate(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return err
	case db.IsForeignKeyViolation(err):
		return fmt.Errorf("%w: unknown client or worker", ErrValidation)
	case db.IsSerializationFailure(err):
		return fmt.Errorf("%w: concurrent update", ErrConflict)
	default:
		return fmt.Errorf("work: %w", err)
	}
}
