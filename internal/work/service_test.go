package work

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fla-ops/fla/internal/clients"
	"github.com/fla-ops/fla/internal/costing"
	"github.com/fla-ops/fla/internal/workers"
)

type memoryRepo struct {
	rows      map[int64]costing.Job
	nextID    int64
	conflicts int
	locks     int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: make(map[int64]costing.Job), nextID: 1}
}

func (m *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	if m.conflicts > 0 {
		m.conflicts--
		return ErrConflict
	}
	return fn(ctx, m)
}

func (m *memoryRepo) Get(ctx context.Context, id int64) (costing.Job, error) {
	j, ok := m.rows[id]
	if !ok {
		return costing.Job{}, ErrNotFound
	}
	return j, nil
}

func (m *memoryRepo) GetForUpdate(ctx context.Context, id int64) (costing.Job, error) {
	m.locks++
	return m.Get(ctx, id)
}

func (m *memoryRepo) List(ctx context.Context, filter ListFilter) ([]costing.Job, error) {
	out := make([]costing.Job, 0, len(m.rows))
	for _, j := range m.rows {
		if filter.Status != "" && j.Status != filter.Status {
			continue
		}
		if filter.CreatedIn != nil && costing.PeriodOf(j.CreatedOn) != *filter.CreatedIn {
			continue
		}
		out = append(out, j)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID > out[k].ID })
	return out, nil
}

func (m *memoryRepo) Create(ctx context.Context, job costing.Job) (costing.Job, error) {
	job.ID = m.nextID
	m.nextID++
	m.rows[job.ID] = job
	return job, nil
}

func (m *memoryRepo) Save(ctx context.Context, job costing.Job) (costing.Job, error) {
	if _, ok := m.rows[job.ID]; !ok {
		return costing.Job{}, ErrNotFound
	}
	m.rows[job.ID] = job
	return job, nil
}

func (m *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.rows[id]; !ok {
		return ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

type fixedCalculator struct{}

func (fixedCalculator) Calculator(context.Context) (costing.Calculator, error) {
	return costing.NewCalculator(costing.DefaultConfig()), nil
}

type clientBook map[int64]clients.Client

func (b clientBook) Get(_ context.Context, id int64) (clients.Client, error) {
	c, ok := b[id]
	if !ok {
		return clients.Client{}, clients.ErrNotFound
	}
	return c, nil
}

type workerBook map[int64]workers.Worker

func (b workerBook) Get(_ context.Context, id int64) (workers.Worker, error) {
	w, ok := b[id]
	if !ok {
		return workers.Worker{}, workers.ErrNotFound
	}
	return w, nil
}

type countingCache struct{ bumps int }

func (c *countingCache) Bump(context.Context) error {
	c.bumps++
	return nil
}

var testToday = time.Date(2026, time.March, 14, 15, 30, 0, 0, time.UTC)

func newTestService(repo Repository) (*Service, *countingCache) {
	cache := &countingCache{}
	svc := NewService(Deps{
		Repo:     repo,
		Settings: fixedCalculator{},
		Clients:  clientBook{1: {ID: 1, Name: "María González"}},
		Workers:  workerBook{7: {ID: 7, Name: "Pedro Soto"}},
		Cache:    cache,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:      func() time.Time { return testToday },
	})
	return svc, cache
}

func int64p(v int64) *int64 { return &v }

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func sampleCreate() CreateRequest {
	return CreateRequest{
		ClientID:    int64p(1),
		WorkerID:    int64p(7),
		ServiceType: "  Painting ",
		LaborCost:   dec(30000),
		Quote: QuoteRequest{
			Number: "Q-001",
			Items: []LineItemRequest{
				{Kind: costing.KindService, Description: "Wall painting", Quantity: 1, UnitPrice: dec(60000)},
				{Kind: costing.KindMaterial, Description: "Paint", Quantity: 2, UnitCost: dec(10000), UnitPrice: dec(15000)},
				{Kind: costing.KindAdditional, SubCategory: "transport", Cost: dec(5000), Price: dec(20000)},
			},
		},
	}
}

func TestCreateStartsPending(t *testing.T) {
	repo := newMemoryRepo()
	svc, cache := newTestService(repo)

	out, err := svc.Create(context.Background(), sampleCreate())
	require.NoError(t, err)

	assert.Equal(t, int64(1), out.ID)
	assert.Equal(t, "Painting", out.ServiceType)
	assert.Equal(t, costing.StatusPendingAcceptance, out.Status)
	assert.Equal(t, costing.ClientPending, out.ClientPaymentStatus)
	assert.Equal(t, costing.WorkerPending, out.WorkerPaymentStatus)
	assert.Equal(t, time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC), out.CreatedOn)
	assert.Equal(t, out.CreatedOn, out.Quote.IssuedOn)
	require.Len(t, out.Quote.Items, 3)
	assert.Equal(t, int64(3), out.Quote.Items[2].ID)

	assert.True(t, out.Financials.NetRevenue.Equal(dec(110000)))
	assert.True(t, out.Financials.Total.Equal(dec(130900)))
	assert.True(t, out.Financials.TotalCost.Equal(dec(55000)))
	assert.True(t, out.Financials.Profit.Equal(dec(55000)))
	assert.Equal(t, 1, cache.bumps)
}

func TestCreateRejectsUnknownReferences(t *testing.T) {
	svc, _ := newTestService(newMemoryRepo())

	req := sampleCreate()
	req.ClientID = int64p(99)
	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, ErrValidation)

	req = sampleCreate()
	req.WorkerID = int64p(99)
	_, err = svc.Create(context.Background(), req)
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateValidatesItems(t *testing.T) {
	svc, _ := newTestService(newMemoryRepo())
	req := sampleCreate()
	req.Quote.Items[0].Kind = "labour"
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)

	req = sampleCreate()
	req.ServiceType = "   "
	_, err = svc.Create(context.Background(), req)
	require.Error(t, err)
}

func TestGetToleratesMissingParties(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo)
	created, err := svc.Create(context.Background(), sampleCreate())
	require.NoError(t, err)

	detail, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Client)
	assert.Equal(t, "María González", detail.Client.Name)
	require.NotNil(t, detail.Worker)

	job := repo.rows[created.ID]
	job.WorkerID = int64p(42)
	repo.rows[created.ID] = job
	detail, err = svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.Worker)
	assert.NotNil(t, detail.Client)

	_, err = svc.Get(context.Background(), 999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAddPaymentDerivesLedgerStatus(t *testing.T) {
	repo := newMemoryRepo()
	svc, cache := newTestService(repo)
	ctx := context.Background()
	created, err := svc.Create(ctx, sampleCreate())
	require.NoError(t, err)

	out, err := svc.AddPayment(ctx, created.ID, PaymentRequest{
		Ledger: costing.LedgerClient, Amount: dec(50000), Method: costing.MethodTransfer,
	})
	require.NoError(t, err)
	assert.Equal(t, costing.ClientPartial, out.ClientPaymentStatus)
	assert.Equal(t, costing.WorkerPending, out.WorkerPaymentStatus)
	require.Len(t, out.ClientPayments, 1)
	assert.NotEmpty(t, out.ClientPayments[0].ID)
	assert.Equal(t, time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC), out.ClientPayments[0].PaidOn)
	assert.True(t, out.Financials.ClientBalance.Equal(dec(80900)))

	out, err = svc.AddPayment(ctx, created.ID, PaymentRequest{
		Ledger: costing.LedgerClient, Amount: dec(80900), Method: costing.MethodCash,
	})
	require.NoError(t, err)
	assert.Equal(t, costing.ClientPaid, out.ClientPaymentStatus)

	out, err = svc.AddPayment(ctx, created.ID, PaymentRequest{
		Ledger: costing.LedgerWorker, Amount: dec(30000), Method: costing.MethodTransfer,
	})
	require.NoError(t, err)
	assert.Equal(t, costing.WorkerPaid, out.WorkerPaymentStatus)
	assert.Equal(t, costing.ClientPaid, repo.rows[created.ID].ClientPaymentStatus)
	assert.Equal(t, 3, repo.locks)
	assert.Equal(t, 4, cache.bumps)
}

func TestAddPaymentRejectsInvalidInput(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo)
	created, err := svc.Create(context.Background(), sampleCreate())
	require.NoError(t, err)

	_, err = svc.AddPayment(context.Background(), created.ID, PaymentRequest{
		Ledger: costing.LedgerClient, Amount: dec(0), Method: costing.MethodCash,
	})
	require.Error(t, err)
	_, err = svc.AddPayment(context.Background(), created.ID, PaymentRequest{
		Ledger: "supplier", Amount: dec(10), Method: costing.MethodCash,
	})
	require.Error(t, err)
	assert.Empty(t, repo.rows[created.ID].ClientPayments)
}

func TestAddPaymentRetriesConflicts(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo)
	created, err := svc.Create(context.Background(), sampleCreate())
	require.NoError(t, err)

	repo.conflicts = 2
	out, err := svc.AddPayment(context.Background(), created.ID, PaymentRequest{
		Ledger: costing.LedgerWorker, Amount: dec(10000), Method: costing.MethodCash,
	})
	require.NoError(t, err)
	assert.Len(t, out.WorkerPayments, 1)

	repo.conflicts = maxPaymentAttempts
	_, err = svc.AddPayment(context.Background(), created.ID, PaymentRequest{
		Ledger: costing.LedgerWorker, Amount: dec(10000), Method: costing.MethodCash,
	})
	require.ErrorIs(t, err, ErrConflict)
	assert.Len(t, repo.rows[created.ID].WorkerPayments, 1)
}

func TestOverridePaymentStatus(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo)
	ctx := context.Background()
	created, err := svc.Create(ctx, sampleCreate())
	require.NoError(t, err)

	out, err := svc.OverridePaymentStatus(ctx, created.ID, PaymentStatusRequest{Ledger: costing.LedgerClient, Status: "paid"})
	require.NoError(t, err)
	assert.Equal(t, costing.ClientPaid, out.ClientPaymentStatus)

	_, err = svc.OverridePaymentStatus(ctx, created.ID, PaymentStatusRequest{Ledger: costing.LedgerWorker, Status: "partial"})
	require.ErrorIs(t, err, ErrValidation)

	// The next client payment re-derives the overridden status.
	out, err = svc.AddPayment(ctx, created.ID, PaymentRequest{
		Ledger: costing.LedgerClient, Amount: dec(1000), Method: costing.MethodCash,
	})
	require.NoError(t, err)
	assert.Equal(t, costing.ClientPartial, out.ClientPaymentStatus)
}

func TestUpdateLaborRederivesWorkerStatusOnlyWithPayments(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo)
	ctx := context.Background()
	created, err := svc.Create(ctx, sampleCreate())
	require.NoError(t, err)

	zero := decimal.Zero
	out, err := svc.Update(ctx, created.ID, UpdateRequest{LaborCost: &zero})
	require.NoError(t, err)
	assert.Equal(t, costing.WorkerPending, out.WorkerPaymentStatus)

	_, err = svc.AddPayment(ctx, created.ID, PaymentRequest{
		Ledger: costing.LedgerWorker, Amount: dec(20000), Method: costing.MethodCash,
	})
	require.NoError(t, err)
	higher := dec(40000)
	out, err = svc.Update(ctx, created.ID, UpdateRequest{LaborCost: &higher})
	require.NoError(t, err)
	assert.Equal(t, costing.WorkerPending, out.WorkerPaymentStatus)

	lower := dec(15000)
	out, err = svc.Update(ctx, created.ID, UpdateRequest{LaborCost: &lower})
	require.NoError(t, err)
	assert.Equal(t, costing.WorkerPaid, out.WorkerPaymentStatus)
}

func TestReplaceQuoteRederivesClientStatus(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo)
	ctx := context.Background()
	created, err := svc.Create(ctx, sampleCreate())
	require.NoError(t, err)

	_, err = svc.AddPayment(ctx, created.ID, PaymentRequest{
		Ledger: costing.LedgerClient, Amount: dec(119000), Method: costing.MethodTransfer,
	})
	require.NoError(t, err)

	out, err := svc.ReplaceQuote(ctx, created.ID, QuoteRequest{
		Number: "Q-001-B",
		Items:  []LineItemRequest{{Kind: costing.KindService, Quantity: 1, UnitPrice: dec(100000)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Q-001-B", out.Quote.Number)
	assert.Equal(t, created.Quote.IssuedOn, out.Quote.IssuedOn)
	assert.True(t, out.Financials.Total.Equal(dec(119000)))
	assert.Equal(t, costing.ClientPaid, out.ClientPaymentStatus)
}

func TestSetStatusCompletedStampsFinishDate(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo)
	ctx := context.Background()
	created, err := svc.Create(ctx, sampleCreate())
	require.NoError(t, err)

	out, err := svc.SetStatus(ctx, created.ID, StatusRequest{Status: costing.StatusCompleted})
	require.NoError(t, err)
	require.NotNil(t, out.FinishedOn)
	assert.Equal(t, time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC), *out.FinishedOn)

	_, err = svc.SetStatus(ctx, created.ID, StatusRequest{Status: "archived"})
	require.Error(t, err)
	_, err = svc.SetStatus(ctx, 404, StatusRequest{Status: costing.StatusCanceled})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	repo := newMemoryRepo()
	svc, cache := newTestService(repo)
	created, err := svc.Create(context.Background(), sampleCreate())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	assert.Empty(t, repo.rows)
	assert.Equal(t, 2, cache.bumps)
	require.ErrorIs(t, svc.Delete(context.Background(), created.ID), ErrNotFound)
}
