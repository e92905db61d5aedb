package dashboard

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fla-ops/fla/internal/costing"
	"github.com/fla-ops/fla/internal/platform/cache"
	"github.com/fla-ops/fla/internal/settings"
)

type stubJobs struct {
	jobs  []costing.Job
	calls atomic.Int32
}

func (s *stubJobs) ListAllJobs(context.Context) ([]costing.Job, error) {
	s.calls.Add(1)
	return s.jobs, nil
}

type stubSettings struct{ expenses []costing.FixedExpense }

func (stubSettings) Current(context.Context) (settings.Settings, error) {
	return settings.Defaults(), nil
}

func (s stubSettings) ListFixedExpenses(context.Context) ([]costing.FixedExpense, error) {
	return s.expenses, nil
}

type stubNames map[int64]string

func (n stubNames) Names(context.Context) (map[int64]string, error) { return n, nil }

func newCachedService(t *testing.T, jobs *stubJobs) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := NewService(Sources{
		Jobs:     jobs,
		Settings: stubSettings{expenses: []costing.FixedExpense{{Name: "Rent", Amount: d(90000)}}},
		Clients:  stubNames{4: "María González"},
		Workers:  stubNames{},
	}, cache.NewVersioned(client, CacheNamespace, time.Minute), slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.WithNow(func() time.Time { return time.Date(2026, time.March, 20, 12, 0, 0, 0, time.UTC) })
	return svc, mr
}

func TestReportDefaultsToCurrentMonth(t *testing.T) {
	jobs := &stubJobs{jobs: sampleJobs()}
	svc, _ := newCachedService(t, jobs)

	report, err := svc.Report(context.Background(), costing.Period{})
	require.NoError(t, err)

	assert.Equal(t, march, report.Period)
	assert.Equal(t, "CLP", report.Currency)
	assert.Equal(t, "110000", report.Snapshot.NetSales.String())
	assert.Equal(t, "200000", report.Breakeven.String())
	assert.Equal(t, "1500000", report.Goals.Objective.String())
	require.Len(t, report.Trend, DefaultTrendMonths)
	assert.Equal(t, march, report.Trend[len(report.Trend)-1].Period)
	assert.NotEmpty(t, report.Insights)
}

func TestReportIsCachedUntilInvalidated(t *testing.T) {
	jobs := &stubJobs{jobs: sampleJobs()}
	svc, mr := newCachedService(t, jobs)
	ctx := context.Background()

	first, err := svc.Report(ctx, march)
	require.NoError(t, err)
	second, err := svc.Report(ctx, march)
	require.NoError(t, err)
	assert.Equal(t, int32(1), jobs.calls.Load())
	assert.True(t, first.Snapshot.NetSales.Equal(second.Snapshot.NetSales))
	assert.True(t, mr.Exists("dashboard:report:2026-03:2026-03-20:v1"))

	require.NoError(t, svc.Invalidate(ctx))
	_, err = svc.Report(ctx, march)
	require.NoError(t, err)
	assert.Equal(t, int32(2), jobs.calls.Load())
}

func TestReportWithoutCache(t *testing.T) {
	jobs := &stubJobs{jobs: sampleJobs()}
	svc := NewService(Sources{Jobs: jobs, Settings: stubSettings{}}, nil, nil)

	_, err := svc.Report(context.Background(), march)
	require.NoError(t, err)
	_, err = svc.Report(context.Background(), march)
	require.NoError(t, err)
	assert.Equal(t, int32(2), jobs.calls.Load())
	require.NoError(t, svc.Invalidate(context.Background()))
}

type blockingJobs struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
	calls   atomic.Int32
}

func (b *blockingJobs) ListAllJobs(ctx context.Context) ([]costing.Job, error) {
	b.calls.Add(1)
	b.once.Do(func() { close(b.started) })
	<-b.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return sampleJobs(), nil
}

func TestSharedBuildSurvivesFirstCallerCancel(t *testing.T) {
	jobs := &blockingJobs{started: make(chan struct{}), release: make(chan struct{})}
	svc := NewService(Sources{Jobs: jobs, Settings: stubSettings{}}, nil, nil)

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Report(firstCtx, march)
		firstErr <- err
	}()
	<-jobs.started

	type result struct {
		report Report
		err    error
	}
	second := make(chan result, 1)
	go func() {
		r, err := svc.Report(context.Background(), march)
		second <- result{r, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)
	close(jobs.release)

	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, "110000", got.report.Snapshot.NetSales.String())
	assert.Equal(t, int32(1), jobs.calls.Load())
}

func TestServiceFinanceListings(t *testing.T) {
	list := sampleJobs()
	list[0].ClientID = ptr(int64(4))
	list[0].DueOn = day(2026, time.March, 1)
	svc, _ := newCachedService(t, &stubJobs{jobs: list})
	ctx := context.Background()

	rows, err := svc.Receivables(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "María González", rows[0].ClientName)
	assert.True(t, rows[0].Overdue)

	payables, err := svc.Payables(ctx)
	require.NoError(t, err)
	assert.Len(t, payables, 2)

	n, err := svc.OverdueCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
