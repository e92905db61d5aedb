package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/fla-ops/fla/internal/costing"
	"github.com/fla-ops/fla/internal/platform/cache"
	"github.com/fla-ops/fla/internal/settings"
)

// CacheNamespace is the Redis namespace shared by every cached report.
const CacheNamespace = "dashboard"

// JobSource lists every stored job.
type JobSource interface {
	ListAllJobs(ctx context.Context) ([]costing.Job, error)
}

// SettingsSource supplies tax parameters, goals and fixed expenses.
type SettingsSource interface {
	Current(ctx context.Context) (settings.Settings, error)
	ListFixedExpenses(ctx context.Context) ([]costing.FixedExpense, error)
}

// NameSource resolves display names by id.
type NameSource interface {
	Names(ctx context.Context) (map[int64]string, error)
}

// Sources groups the read dependencies of the dashboard.
type Sources struct {
	Jobs     JobSource
	Settings SettingsSource
	Clients  NameSource
	Workers  NameSource
}

// Report is the monthly dashboard document.
type Report struct {
	Period             costing.Period  `json:"period"`
	Currency           string          `json:"currency"`
	Snapshot           Snapshot        `json:"snapshot"`
	Breakeven          decimal.Decimal `json:"breakeven"`
	Goals              Goals           `json:"goals"`
	Insights           []Insight       `json:"insights"`
	Trend              []TrendPoint    `json:"trend"`
	OverdueReceivables int             `json:"overdue_receivables"`
	GeneratedAt        time.Time       `json:"generated_at"`
}

// Service builds dashboard reports and the receivable and payable listings.
type Service struct {
	src    Sources
	cache  *cache.Versioned
	group  singleflight.Group
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires the sources with an optional report cache.
func NewService(src Sources, reports *cache.Versioned, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{src: src, cache: reports, logger: logger, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Report returns the dashboard for period; a zero period means the current month.
// Concurrent requests for the same report share one build.
func (s *Service) Report(ctx context.Context, period costing.Period) (Report, error) {
	now := s.now()
	if period.IsZero() {
		period = costing.PeriodOf(now)
	}
	today := now.UTC().Format("2006-01-02")
	key, err := s.cache.Key(ctx, "report", period.String(), today)
	if err != nil {
		s.logger.Warn("dashboard: cache key failed", slog.Any("error", err))
		return s.build(ctx, period, now)
	}
	// The shared build outlives any single caller; each caller still stops waiting on its own ctx.
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (interface{}, error) {
		return cache.Fetch(shared, s.cache, key, func(ctx context.Context) (Report, error) {
			return s.build(ctx, period, now)
		})
	})
	select {
	case <-ctx.Done():
		return Report{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Report{}, res.Err
		}
		return res.Val.(Report), nil
	}
}

func (s *Service) build(ctx context.Context, period costing.Period, now time.Time) (Report, error) {
	cfg, err := s.src.Settings.Current(ctx)
	if err != nil {
		return Report{}, err
	}
	expenses, err := s.src.Settings.ListFixedExpenses(ctx)
	if err != nil {
		return Report{}, err
	}
	jobs, err := s.src.Jobs.ListAllJobs(ctx)
	if err != nil {
		return Report{}, err
	}

	calc := cfg.Calculator()
	snap := NewAggregator(calc).Compute(jobs, expenses, period)
	breakeven := calc.Config().RoundMoney(BreakevenRevenue(snap.FixedExpenses, cfg.GrossMarginRatio))

	return Report{
		Period:             period,
		Currency:           calc.Config().Currency,
		Snapshot:           snap,
		Breakeven:          breakeven,
		Goals:              ComputeGoals(snap.NetSales, cfg.SalesObjective, breakeven),
		Insights:           GenerateInsights(snap, breakeven),
		Trend:              SalesTrend(calc, jobs, period, DefaultTrendMonths),
		OverdueReceivables: CountOverdue(jobs, now),
		GeneratedAt:        now.UTC(),
	}, nil
}

// Receivables lists jobs with an open client balance.
func (s *Service) Receivables(ctx context.Context) ([]Receivable, error) {
	calc, jobs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	names, err := s.names(ctx, s.src.Clients)
	if err != nil {
		return nil, err
	}
	return Receivables(calc, jobs, names, s.now()), nil
}

// Payables lists jobs with labor still owed.
func (s *Service) Payables(ctx context.Context) ([]Payable, error) {
	calc, jobs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	names, err := s.names(ctx, s.src.Workers)
	if err != nil {
		return nil, err
	}
	return Payables(calc, jobs, names), nil
}

// OverdueCount counts unpaid jobs past their due date.
func (s *Service) OverdueCount(ctx context.Context) (int, error) {
	jobs, err := s.src.Jobs.ListAllJobs(ctx)
	if err != nil {
		return 0, err
	}
	return CountOverdue(jobs, s.now()), nil
}

// Invalidate drops every cached report.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func (s *Service) load(ctx context.Context) (costing.Calculator, []costing.Job, error) {
	cfg, err := s.src.Settings.Current(ctx)
	if err != nil {
		return costing.Calculator{}, nil, err
	}
	jobs, err := s.src.Jobs.ListAllJobs(ctx)
	if err != nil {
		return costing.Calculator{}, nil, err
	}
	return cfg.Calculator(), jobs, nil
}

func (s *Service) names(ctx context.Context, src NameSource) (map[int64]string, error) {
	if src == nil {
		return nil, nil
	}
	return src.Names(ctx)
}
