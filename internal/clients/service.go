package clients

import (
	"context"
	"fmt"
	"strings"

	"github.com/fla-ops/fla/internal/platform/httpx"
)

// Service manages the client registry.
type Service struct {
	repo Repository
}

// NewService wires the repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and stores a client.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Client, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := httpx.Validate(req); err != nil {
		return Client{}, err
	}
	created, err := s.repo.Create(ctx, Client{
		Name:     req.Name,
		TaxID:    strings.TrimSpace(req.TaxID),
		Email:    strings.TrimSpace(req.Email),
		Phone:    strings.TrimSpace(req.Phone),
		Address:  req.Address,
		District: req.District,
		Notes:    req.Notes,
	})
	if err != nil {
		return Client{}, fmt.Errorf("create client: %w", err)
	}
	return created, nil
}

// Update patches an existing client.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (Client, error) {
	if err := httpx.Validate(req); err != nil {
		return Client{}, err
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Client{}, err
	}
	patch(&existing.Name, req.Name)
	patch(&existing.TaxID, req.TaxID)
	patch(&existing.Email, req.Email)
	patch(&existing.Phone, req.Phone)
	patch(&existing.Address, req.Address)
	patch(&existing.District, req.District)
	patch(&existing.Notes, req.Notes)
	return s.repo.Update(ctx, existing)
}

func patch(dst, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

// Get returns one client.
func (s *Service) Get(ctx context.Context, id int64) (Client, error) {
	return s.repo.Get(ctx, id)
}

// List returns clients matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Client, error) {
	return s.repo.List(ctx, filter)
}

// Delete removes a client. Jobs keep their figures and lose the reference.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Names maps every client id to its display name.
func (s *Service) Names(ctx context.Context) (map[int64]string, error) {
	all, err := s.repo.List(ctx, ListFilter{})
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(all))
	for _, c := range all {
		names[c.ID] = c.Name
	}
	return names, nil
}
