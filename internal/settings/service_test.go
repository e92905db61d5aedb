package settings

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fla-ops/fla/internal/costing"
)

type memoryRepo struct {
	current  *Settings
	expenses []costing.FixedExpense
	nextID   int64
}

func (m *memoryRepo) Get(ctx context.Context) (Settings, error) {
	if m.current == nil {
		return Settings{}, ErrNotFound
	}
	return *m.current, nil
}

func (m *memoryRepo) Save(ctx context.Context, s Settings) (Settings, error) {
	m.current = &s
	return s, nil
}

func (m *memoryRepo) ListExpenses(ctx context.Context) ([]costing.FixedExpense, error) {
	return append([]costing.FixedExpense(nil), m.expenses...), nil
}

func (m *memoryRepo) CreateExpense(ctx context.Context, e costing.FixedExpense) (costing.FixedExpense, error) {
	m.nextID++
	e.ID = m.nextID
	m.expenses = append(m.expenses, e)
	return e, nil
}

func (m *memoryRepo) DeleteExpense(ctx context.Context, id int64) error {
	for i, e := range m.expenses {
		if e.ID == id {
			m.expenses = append(m.expenses[:i], m.expenses[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

type countingCache struct{ bumps int }

func (c *countingCache) Bump(context.Context) error {
	c.bumps++
	return nil
}

func TestCurrentFallsBackToDefaults(t *testing.T) {
	svc := NewService(&memoryRepo{}, nil, nil)

	current, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.True(t, current.TaxRate.Equal(decimal.RequireFromString("0.19")))
	assert.Equal(t, "CLP", current.Currency)
	assert.True(t, current.GrossMarginRatio.Equal(decimal.RequireFromString("0.45")))
	assert.True(t, current.SalesObjective.Equal(decimal.NewFromInt(1500000)))

	calc, err := svc.Calculator(context.Background())
	require.NoError(t, err)
	assert.True(t, calc.Tax(decimal.NewFromInt(110000)).Equal(decimal.NewFromInt(20900)))
}

func TestUpdatePatchesAndInvalidates(t *testing.T) {
	repo := &memoryRepo{}
	cache := &countingCache{}
	svc := NewService(repo, cache, nil)

	name := "  Felipe Repairs "
	rate := decimal.RequireFromString("0.10")
	updated, err := svc.Update(context.Background(), UpdateRequest{CompanyName: &name, TaxRate: &rate})
	require.NoError(t, err)

	assert.Equal(t, "Felipe Repairs", updated.Company.Name)
	assert.True(t, updated.TaxRate.Equal(rate))
	assert.Equal(t, "CLP", updated.Currency)
	assert.Equal(t, 1, cache.bumps)
}

func TestUpdateRejectsInvalidRatio(t *testing.T) {
	svc := NewService(&memoryRepo{}, nil, nil)
	ratio := decimal.RequireFromString("1.5")

	_, err := svc.Update(context.Background(), UpdateRequest{GrossMarginRatio: &ratio})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "gross_margin_ratio", verrs[0].Field())
}

func TestFixedExpenses(t *testing.T) {
	repo := &memoryRepo{}
	cache := &countingCache{}
	svc := NewService(repo, cache, nil)
	ctx := context.Background()

	rent, err := svc.AddFixedExpense(ctx, CreateExpenseRequest{Name: "Warehouse rent", Amount: decimal.NewFromInt(80000)})
	require.NoError(t, err)
	_, err = svc.AddFixedExpense(ctx, CreateExpenseRequest{Name: "Marketing", Amount: decimal.NewFromInt(30000)})
	require.NoError(t, err)

	_, err = svc.AddFixedExpense(ctx, CreateExpenseRequest{Name: " ", Amount: decimal.NewFromInt(1)})
	require.Error(t, err)

	list, err := svc.ListFixedExpenses(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, svc.DeleteFixedExpense(ctx, rent.ID))
	require.ErrorIs(t, svc.DeleteFixedExpense(ctx, rent.ID), ErrNotFound)
	assert.Equal(t, 3, cache.bumps)
}
