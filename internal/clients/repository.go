package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fla-ops/fla/internal/platform/db"
)

// Repository persists clients.
type Repository interface {
	Get(ctx context.Context, id int64) (Client, error)
	List(ctx context.Context, filter ListFilter) ([]Client, error)
	Create(ctx context.Context, c Client) (Client, error)
	Update(ctx context.Context, c Client) (Client, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db db.DBTX
}

// NewRepository returns a Postgres backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const clientColumns = `id, name, tax_id, email, phone, address, district, notes, created_at, updated_at`

func scanClient(row pgx.Row) (Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.Name, &c.TaxID, &c.Email, &c.Phone, &c.Address, &c.District, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Client{}, ErrNotFound
	}
	return c, err
}

func (r *repository) Get(ctx context.Context, id int64) (Client, error) {
	return scanClient(r.db.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Client, error) {
	var (
		conditions []string
		args       []any
	)
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+s+"%")
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR tax_id ILIKE $%d OR email ILIKE $%d)", len(args), len(args), len(args)))
	}
	query := `SELECT ` + clientColumns + ` FROM clients`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY name, id"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("clients: list: %w", err)
	}
	defer rows.Close()

	out := make([]Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("clients: scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, c Client) (Client, error) {
	return scanClient(r.db.QueryRow(ctx, `
		INSERT INTO clients (name, tax_id, email, phone, address, district, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+clientColumns,
		c.Name, c.TaxID, c.Email, c.Phone, c.Address, c.District, c.Notes,
	))
}

func (r *repository) Update(ctx context.Context, c Client) (Client, error) {
	return scanClient(r.db.QueryRow(ctx, `
		UPDATE clients
		SET name = $2, tax_id = $3, email = $4, phone = $5, address = $6, district = $7, notes = $8, updated_at = now()
		WHERE id = $1
		RETURNING `+clientColumns,
		c.ID, c.Name, c.TaxID, c.Email, c.Phone, c.Address, c.District, c.Notes,
	))
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("clients: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
