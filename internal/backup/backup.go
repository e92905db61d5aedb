// Package backup produces a full JSON export of the installation.
package backup

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/fla-ops/fla/internal/clients"
	"github.com/fla-ops/fla/internal/costing"
	"github.com/fla-ops/fla/internal/platform/httpx"
	"github.com/fla-ops/fla/internal/settings"
	"github.com/fla-ops/fla/internal/workers"
)

// FormatVersion identifies the document layout.
const FormatVersion = "1.0"

// SettingsSource supplies the configuration and fixed expenses.
type SettingsSource interface {
	Current(ctx context.Context) (settings.Settings, error)
	ListFixedExpenses(ctx context.Context) ([]costing.FixedExpense, error)
}

// ClientSource lists clients.
type ClientSource interface {
	List(ctx context.Context, filter clients.ListFilter) ([]clients.Client, error)
}

// WorkerSource lists workers.
type WorkerSource interface {
	List(ctx context.Context, filter workers.ListFilter) ([]workers.Worker, error)
}

// JobSource lists every job.
type JobSource interface {
	ListAllJobs(ctx context.Context) ([]costing.Job, error)
}

// Document is the exported snapshot.
type Document struct {
	ID         string                 `json:"id"`
	ExportedAt time.Time              `json:"exported_at"`
	Version    string                 `json:"version"`
	Settings   settings.Settings      `json:"settings"`
	Clients    []clients.Client       `json:"clients"`
	Workers    []workers.Worker       `json:"workers"`
	Jobs       []costing.Job          `json:"jobs"`
	Expenses   []costing.FixedExpense `json:"expenses"`
}

// Exporter reads every source into one document.
type Exporter struct {
	Settings SettingsSource
	Clients  ClientSource
	Workers  WorkerSource
	Jobs     JobSource
	Logger   *slog.Logger
	Now      func() time.Time
}

// Export loads all sources concurrently.
func (e *Exporter) Export(ctx context.Context) (Document, error) {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	doc := Document{ID: uuid.NewString(), ExportedAt: now().UTC(), Version: FormatVersion}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := e.Settings.Current(ctx)
		doc.Settings = s
		return wrap("settings", err)
	})
	g.Go(func() error {
		out, err := e.Settings.ListFixedExpenses(ctx)
		doc.Expenses = out
		return wrap("expenses", err)
	})
	g.Go(func() error {
		out, err := e.Clients.List(ctx, clients.ListFilter{})
		doc.Clients = out
		return wrap("clients", err)
	})
	g.Go(func() error {
		out, err := e.Workers.List(ctx, workers.ListFilter{})
		doc.Workers = out
		return wrap("workers", err)
	})
	g.Go(func() error {
		out, err := e.Jobs.ListAllJobs(ctx)
		doc.Jobs = out
		return wrap("jobs", err)
	})
	if err := g.Wait(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("backup: load %s: %w", what, err)
	}
	return nil
}

// MountRoutes registers GET /backup.
func (e *Exporter) MountRoutes(r chi.Router) {
	r.Get("/backup", e.handleExport)
}

func (e *Exporter) handleExport(w http.ResponseWriter, r *http.Request) {
	doc, err := e.Export(r.Context())
	if err != nil {
		if e.Logger != nil {
			e.Logger.Error("backup export failed", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	filename := fmt.Sprintf("fla-backup-%s.json", doc.ExportedAt.Format("2006-01-02"))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	httpx.JSON(w, http.StatusOK, doc)
}
