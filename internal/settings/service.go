package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fla-ops/fla/internal/costing"
	"github.com/fla-ops/fla/internal/platform/httpx"
)

// Invalidator drops cached reports after a write.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// Service manages installation settings.
type Service struct {
	repo   Repository
	cache  Invalidator
	logger *slog.Logger
}

// NewService wires the repository with an optional cache invalidator.
func NewService(repo Repository, cache Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

// Current returns the stored settings, or the defaults when none were saved.
func (s *Service) Current(ctx context.Context) (Settings, error) {
	current, err := s.repo.Get(ctx)
	if errors.Is(err, ErrNotFound) {
		return Defaults(), nil
	}
	if err != nil {
		return Settings{}, err
	}
	return current, nil
}

// Calculator returns a calculator configured from the current settings.
func (s *Service) Calculator(ctx context.Context) (costing.Calculator, error) {
	current, err := s.Current(ctx)
	if err != nil {
		return costing.Calculator{}, err
	}
	return current.Calculator(), nil
}

// Update applies a partial change.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (Settings, error) {
	if err := httpx.Validate(req); err != nil {
		return Settings{}, err
	}
	current, err := s.Current(ctx)
	if err != nil {
		return Settings{}, err
	}
	applyUpdate(&current, req)

	saved, err := s.repo.Save(ctx, current)
	if err != nil {
		return Settings{}, fmt.Errorf("settings: save: %w", err)
	}
	s.invalidate(ctx)
	return saved, nil
}

func applyUpdate(s *Settings, req UpdateRequest) {
	setString(&s.Company.Name, req.CompanyName)
	setString(&s.Company.TaxID, req.CompanyTaxID)
	setString(&s.Company.Email, req.CompanyEmail)
	setString(&s.Company.Phone, req.CompanyPhone)
	setString(&s.Company.Address, req.CompanyAddress)
	if req.TaxRate != nil {
		s.TaxRate = *req.TaxRate
	}
	if req.Currency != nil {
		s.Currency = strings.ToUpper(*req.Currency)
	}
	if req.CurrencyScale != nil {
		s.CurrencyScale = *req.CurrencyScale
	}
	if req.GrossMarginRatio != nil {
		s.GrossMarginRatio = *req.GrossMarginRatio
	}
	if req.SalesObjective != nil {
		s.SalesObjective = *req.SalesObjective
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

// ListFixedExpenses returns every fixed expense.
func (s *Service) ListFixedExpenses(ctx context.Context) ([]costing.FixedExpense, error) {
	return s.repo.ListExpenses(ctx)
}

// AddFixedExpense records a new monthly expense.
func (s *Service) AddFixedExpense(ctx context.Context, req CreateExpenseRequest) (costing.FixedExpense, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := httpx.Validate(req); err != nil {
		return costing.FixedExpense{}, err
	}
	expense, err := s.repo.CreateExpense(ctx, costing.FixedExpense{Name: req.Name, Amount: req.Amount})
	if err != nil {
		return costing.FixedExpense{}, err
	}
	s.invalidate(ctx)
	return expense, nil
}

// DeleteFixedExpense removes an expense.
func (s *Service) DeleteFixedExpense(ctx context.Context, id int64) error {
	if err := s.repo.DeleteExpense(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("settings: cache bump failed", slog.Any("error", err))
	}
}
