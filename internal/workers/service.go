package workers

import (
	"context"
	"fmt"
	"strings"

	"github.com/fla-ops/fla/internal/platform/httpx"
)

// Service manages the worker registry.
type Service struct {
	repo Repository
}

// NewService wires the repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and stores a worker. New workers are active and paid per job unless stated.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Worker, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := httpx.Validate(req); err != nil {
		return Worker{}, err
	}
	engagement := req.Engagement
	if engagement == "" {
		engagement = EngagementPerJob
	}
	created, err := s.repo.Create(ctx, Worker{
		Name:       req.Name,
		TaxID:      strings.TrimSpace(req.TaxID),
		Email:      strings.TrimSpace(req.Email),
		Phone:      strings.TrimSpace(req.Phone),
		Specialty:  strings.TrimSpace(req.Specialty),
		Rate:       req.Rate,
		Engagement: engagement,
		Active:     true,
		Notes:      req.Notes,
	})
	if err != nil {
		return Worker{}, fmt.Errorf("create worker: %w", err)
	}
	return created, nil
}

// Update patches an existing worker.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (Worker, error) {
	if err := httpx.Validate(req); err != nil {
		return Worker{}, err
	}
	w, err := s.repo.Get(ctx, id)
	if err != nil {
		return Worker{}, err
	}
	for dst, v := range map[*string]*string{
		&w.Name:      req.Name,
		&w.TaxID:     req.TaxID,
		&w.Email:     req.Email,
		&w.Phone:     req.Phone,
		&w.Specialty: req.Specialty,
		&w.Notes:     req.Notes,
	} {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	if req.Rate != nil {
		w.Rate = *req.Rate
	}
	if req.Engagement != nil {
		w.Engagement = *req.Engagement
	}
	if req.Active != nil {
		w.Active = *req.Active
	}
	return s.repo.Update(ctx, w)
}

// Get returns one worker.
func (s *Service) Get(ctx context.Context, id int64) (Worker, error) {
	return s.repo.Get(ctx, id)
}

// List returns workers matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Worker, error) {
	return s.repo.List(ctx, filter)
}

// Delete removes a worker.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Names maps every worker id to its display name.
func (s *Service) Names(ctx context.Context) (map[int64]string, error) {
	all, err := s.repo.List(ctx, ListFilter{})
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(all))
	for _, w := range all {
		names[w.ID] = w.Name
	}
	return names, nil
}
