package work

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fla-ops/fla/internal/clients"
	"github.com/fla-ops/fla/internal/costing"
	"github.com/fla-ops/fla/internal/platform/db"
	"github.com/fla-ops/fla/internal/platform/httpx"
	"github.com/fla-ops/fla/internal/workers"
)

const maxPaymentAttempts = 3

// CalculatorSource supplies the calculator for the current tax settings.
type CalculatorSource interface {
	Calculator(ctx context.Context) (costing.Calculator, error)
}

// ClientLookup resolves client references.
type ClientLookup interface {
	Get(ctx context.Context, id int64) (clients.Client, error)
}

// WorkerLookup resolves worker references.
type WorkerLookup interface {
	Get(ctx context.Context, id int64) (workers.Worker, error)
}

// Invalidator drops cached reports after a write.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// Deps groups the collaborators of Service.
type Deps struct {
	Repo     Repository
	Settings CalculatorSource
	Clients  ClientLookup
	Workers  WorkerLookup
	Cache    Invalidator
	Logger   *slog.Logger
	Now      func() time.Time
}

// Service coordinates job writes and reads.
type Service struct {
	repo     Repository
	settings CalculatorSource
	clients  ClientLookup
	workers  WorkerLookup
	cache    Invalidator
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// NewService builds the service.
func NewService(deps Deps) *Service {
	s := &Service{
		repo:     deps.Repo,
		settings: deps.Settings,
		clients:  deps.Clients,
		workers:  deps.Workers,
		cache:    deps.Cache,
		logger:   deps.Logger,
		now:      deps.Now,
		newID:    uuid.NewString,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *Service) today() time.Time {
	return dateOnly(s.now())
}

// Create opens a job with pending payment statuses.
func (s *Service) Create(ctx context.Context, req CreateRequest) (JobView, error) {
	req.ServiceType = strings.TrimSpace(req.ServiceType)
	if err := httpx.Validate(req); err != nil {
		return JobView{}, err
	}
	if err := s.checkReferences(ctx, req.ClientID, req.WorkerID); err != nil {
		return JobView{}, err
	}
	calc, err := s.settings.Calculator(ctx)
	if err != nil {
		return JobView{}, err
	}

	created := s.today()
	if req.CreatedOn != nil {
		created = dateOnly(*req.CreatedOn)
	}
	job := costing.Job{
		ClientID:            req.ClientID,
		WorkerID:            req.WorkerID,
		ServiceType:         req.ServiceType,
		Description:         req.Description,
		CreatedOn:           created,
		StartedOn:           datePtr(req.StartedOn),
		FinishedOn:          datePtr(req.FinishedOn),
		DueOn:               datePtr(req.DueOn),
		Quote:               s.buildQuote(req.Quote, created),
		LaborCost:           req.LaborCost,
		Status:              costing.StatusPendingAcceptance,
		ClientPaymentStatus: costing.ClientPending,
		WorkerPaymentStatus: costing.WorkerPending,
		Notes:               req.Notes,
		Tags:                req.Tags,
	}
	saved, err := s.repo.Create(ctx, job)
	if err != nil {
		return JobView{}, err
	}
	s.invalidate(ctx)
	s.logger.Info("job created", slog.Int64("job_id", saved.ID), slog.String("service_type", saved.ServiceType))
	return view(calc, saved), nil
}

func (s *Service) buildQuote(req QuoteRequest, fallback time.Time) costing.Quote {
	q := costing.Quote{
		Number:   strings.TrimSpace(req.Number),
		IssuedOn: fallback,
		Validity: req.Validity,
		Terms:    req.Terms,
		Items:    make([]costing.LineItem, 0, len(req.Items)),
	}
	if req.IssuedOn != nil {
		q.IssuedOn = dateOnly(*req.IssuedOn)
	}
	for i, it := range req.Items {
		q.Items = append(q.Items, costing.LineItem{
			ID:          int64(i + 1),
			Kind:        it.Kind,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			UnitCost:    it.UnitCost,
			SubCategory: it.SubCategory,
			Price:       it.Price,
			Cost:        it.Cost,
		})
	}
	return q
}

func (s *Service) checkReferences(ctx context.Context, clientID, workerID *int64) error {
	if clientID != nil && s.clients != nil {
		if _, err := s.clients.Get(ctx, *clientID); err != nil {
			if errors.Is(err, clients.ErrNotFound) {
				return fmt.Errorf("%w: client %d does not exist", ErrValidation, *clientID)
			}
			return err
		}
	}
	if workerID != nil && s.workers != nil {
		if _, err := s.workers.Get(ctx, *workerID); err != nil {
			if errors.Is(err, workers.ErrNotFound) {
				return fmt.Errorf("%w: worker %d does not exist", ErrValidation, *workerID)
			}
			return err
		}
	}
	return nil
}

// Get returns a job with financials and the referenced parties.
func (s *Service) Get(ctx context.Context, id int64) (JobDetail, error) {
	job, err := s.repo.Get(ctx, id)
	if err != nil {
		return JobDetail{}, err
	}
	calc, err := s.settings.Calculator(ctx)
	if err != nil {
		return JobDetail{}, err
	}
	detail := JobDetail{JobView: view(calc, job)}
	if job.ClientID != nil && s.clients != nil {
		c, err := s.clients.Get(ctx, *job.ClientID)
		switch {
		case err == nil:
			detail.Client = &c
		case !errors.Is(err, clients.ErrNotFound):
			return JobDetail{}, err
		}
	}
	if job.WorkerID != nil && s.workers != nil {
		w, err := s.workers.Get(ctx, *job.WorkerID)
		switch {
		case err == nil:
			detail.Worker = &w
		case !errors.Is(err, workers.ErrNotFound):
			return JobDetail{}, err
		}
	}
	return detail, nil
}

// List returns jobs matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]JobView, error) {
	jobs, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	calc, err := s.settings.Calculator(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]JobView, len(jobs))
	for i, j := range jobs {
		out[i] = view(calc, j)
	}
	return out, nil
}

// ListAllJobs returns every job without financials.
func (s *Service) ListAllJobs(ctx context.Context) ([]costing.Job, error) {
	return s.repo.List(ctx, ListFilter{})
}

// Update patches job attributes. A labor cost change re-derives the worker status
// when the worker ledger already has entries.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (JobView, error) {
	if err := httpx.Validate(req); err != nil {
		return JobView{}, err
	}
	if err := s.checkReferences(ctx, req.ClientID, req.WorkerID); err != nil {
		return JobView{}, err
	}
	return s.mutate(ctx, id, func(calc costing.Calculator, job costing.Job) (costing.Job, error) {
		if req.ClientID != nil {
			job.ClientID = req.ClientID
		}
		if req.WorkerID != nil {
			job.WorkerID = req.WorkerID
		}
		if req.ServiceType != nil {
			job.ServiceType = strings.TrimSpace(*req.ServiceType)
		}
		if req.Description != nil {
			job.Description = *req.Description
		}
		if req.StartedOn != nil {
			job.StartedOn = datePtr(req.StartedOn)
		}
		if req.FinishedOn != nil {
			job.FinishedOn = datePtr(req.FinishedOn)
		}
		if req.DueOn != nil {
			job.DueOn = datePtr(req.DueOn)
		}
		if req.Notes != nil {
			job.Notes = *req.Notes
		}
		if req.Tags != nil {
			job.Tags = req.Tags
		}
		if req.LaborCost != nil {
			job.LaborCost = *req.LaborCost
			if len(job.WorkerPayments) > 0 {
				job.WorkerPaymentStatus = costing.WorkerStatusFor(calc.JobFinancials(job))
			}
		}
		return job, nil
	})
}

// ReplaceQuote swaps the quote wholesale. The client status is re-derived when
// the client ledger already has entries.
func (s *Service) ReplaceQuote(ctx context.Context, id int64, req QuoteRequest) (JobView, error) {
	if err := httpx.Validate(req); err != nil {
		return JobView{}, err
	}
	return s.mutate(ctx, id, func(calc costing.Calculator, job costing.Job) (costing.Job, error) {
		job.Quote = s.buildQuote(req, job.Quote.IssuedOn)
		if len(job.ClientPayments) > 0 {
			job.ClientPaymentStatus = costing.ClientStatusFor(calc.JobFinancials(job))
		}
		return job, nil
	})
}

// AddPayment appends a payment to the chosen ledger and re-derives that ledger's
// status in one locked read-modify-write.
func (s *Service) AddPayment(ctx context.Context, id int64, req PaymentRequest) (JobView, error) {
	if err := httpx.Validate(req); err != nil {
		return JobView{}, err
	}
	paidOn := s.today()
	if req.PaidOn != nil {
		paidOn = dateOnly(*req.PaidOn)
	}
	payment := costing.Payment{
		ID:        s.newID(),
		Amount:    req.Amount,
		PaidOn:    paidOn,
		Method:    req.Method,
		Reference: strings.TrimSpace(req.Reference),
	}
	out, err := s.mutate(ctx, id, func(calc costing.Calculator, job costing.Job) (costing.Job, error) {
		return calc.AppendPayment(job, req.Ledger, payment), nil
	})
	if err != nil {
		return JobView{}, err
	}
	s.logger.Info("payment recorded",
		slog.Int64("job_id", id),
		slog.String("ledger", string(req.Ledger)),
		slog.String("payment_id", payment.ID),
		slog.String("amount", payment.Amount.String()),
	)
	return out, nil
}

// OverridePaymentStatus sets a payment status by hand. The next payment on that
// ledger re-derives it.
func (s *Service) OverridePaymentStatus(ctx context.Context, id int64, req PaymentStatusRequest) (JobView, error) {
	if err := httpx.Validate(req); err != nil {
		return JobView{}, err
	}
	var apply func(costing.Job) costing.Job
	switch req.Ledger {
	case costing.LedgerClient:
		status := costing.ClientPaymentStatus(req.Status)
		apply = func(j costing.Job) costing.Job { return costing.OverrideClientStatus(j, status) }
	case costing.LedgerWorker:
		status := costing.WorkerPaymentStatus(req.Status)
		if !status.Valid() {
			return JobView{}, fmt.Errorf("%w: worker status must be pending or paid", ErrValidation)
		}
		apply = func(j costing.Job) costing.Job { return costing.OverrideWorkerStatus(j, status) }
	}
	out, err := s.mutate(ctx, id, func(_ costing.Calculator, job costing.Job) (costing.Job, error) {
		return apply(job), nil
	})
	if err != nil {
		return JobView{}, err
	}
	s.logger.Warn("payment status overridden",
		slog.Int64("job_id", id),
		slog.String("ledger", string(req.Ledger)),
		slog.String("status", req.Status),
	)
	return out, nil
}

// SetStatus changes the work status. Completing a job without a finish date stamps today.
func (s *Service) SetStatus(ctx context.Context, id int64, req StatusRequest) (JobView, error) {
	if err := httpx.Validate(req); err != nil {
		return JobView{}, err
	}
	return s.mutate(ctx, id, func(_ costing.Calculator, job costing.Job) (costing.Job, error) {
		job.Status = req.Status
		if req.FinishedOn != nil {
			job.FinishedOn = datePtr(req.FinishedOn)
		}
		if req.Status == costing.StatusCompleted && job.FinishedOn == nil {
			today := s.today()
			job.FinishedOn = &today
		}
		return job, nil
	})
}

// Delete removes a job and its ledgers.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// mutate runs fn against the locked row inside a transaction, retrying when a
// concurrent writer wins the race.
func (s *Service) mutate(ctx context.Context, id int64, fn func(costing.Calculator, costing.Job) (costing.Job, error)) (JobView, error) {
	calc, err := s.settings.Calculator(ctx)
	if err != nil {
		return JobView{}, err
	}
	var saved costing.Job
	for attempt := 1; ; attempt++ {
		err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
			job, err := repo.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			next, err := fn(calc, job)
			if err != nil {
				return err
			}
			saved, err = repo.Save(ctx, next)
			return err
		})
		if err == nil {
			break
		}
		if !retryable(err) || attempt >= maxPaymentAttempts {
			return JobView{}, err
		}
		s.logger.Debug("job write conflict, retrying", slog.Int64("job_id", id), slog.Int("attempt", attempt))
	}
	s.invalidate(ctx)
	return view(calc, saved), nil
}

func retryable(err error) bool {
	return errors.Is(err, ErrConflict) || db.IsSerializationFailure(err)
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("work: cache bump failed", slog.Any("error", err))
	}
}

func view(calc costing.Calculator, job costing.Job) JobView {
	return JobView{Job: job, Financials: calc.JobFinancials(job)}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func datePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := dateOnly(*t)
	return &d
}
