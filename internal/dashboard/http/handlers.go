// Package dashboardhttp serves the monthly dashboard and finance listings.
package dashboardhttp

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/fla-ops/fla/internal/costing"
	"github.com/fla-ops/fla/internal/dashboard"
	"github.com/fla-ops/fla/internal/dashboard/chart"
	"github.com/fla-ops/fla/internal/dashboard/export"
	"github.com/fla-ops/fla/internal/platform/httpx"
)

const requestTimeout = 5 * time.Second

// DashboardService is the data contract used by the handler.
type DashboardService interface {
	Report(ctx context.Context, period costing.Period) (dashboard.Report, error)
	Receivables(ctx context.Context) ([]dashboard.Receivable, error)
	Payables(ctx context.Context) ([]dashboard.Payable, error)
	OverdueCount(ctx context.Context) (int, error)
}

// Handler coordinates dashboard HTTP requests.
type Handler struct {
	logger  *slog.Logger
	service DashboardService
	csvPool sync.Pool
}

// NewHandler constructs the dashboard handler.
func NewHandler(logger *slog.Logger, service DashboardService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{logger: logger, service: service}
	h.csvPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	report, err := h.service.Report(ctx, period)
	if err != nil {
		h.serverError(w, "load dashboard", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	report, err := h.service.Report(ctx, period)
	if err != nil {
		h.serverError(w, "load dashboard", err)
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()
	if err := export.WriteReportCSV(buf, report); err != nil {
		h.serverError(w, "write csv", err)
		return
	}
	h.sendCSV(w, fmt.Sprintf("dashboard-%s.csv", report.Period), buf.Bytes())
}

func (h *Handler) handleTrendSVG(w http.ResponseWriter, r *http.Request) {
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	report, err := h.service.Report(ctx, period)
	if err != nil {
		h.serverError(w, "load dashboard", err)
		return
	}
	svg, err := chart.TrendSVG(report.Trend, chart.Options{Title: "Net sales to " + report.Period.String()})
	if err != nil {
		h.serverError(w, "render trend", err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write([]byte(svg)); err != nil {
		h.logger.Error("dashboard: stream svg", slog.Any("error", err))
	}
}

func (h *Handler) handleReceivables(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.Receivables(r.Context())
	if err != nil {
		h.serverError(w, "load receivables", err)
		return
	}
	if r.URL.Query().Get("format") == "csv" {
		var buf bytes.Buffer
		if err := export.WriteReceivablesCSV(&buf, rows); err != nil {
			h.serverError(w, "write csv", err)
			return
		}
		h.sendCSV(w, "receivables.csv", buf.Bytes())
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *Handler) handlePayables(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.Payables(r.Context())
	if err != nil {
		h.serverError(w, "load payables", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *Handler) handleOverdue(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.OverdueCount(r.Context())
	if err != nil {
		h.serverError(w, "count overdue", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"overdue": n})
}

func (h *Handler) sendCSV(w http.ResponseWriter, filename string, body []byte) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	if _, err := w.Write(body); err != nil {
		h.logger.Error("dashboard: stream csv", slog.Any("error", err))
	}
}

func (h *Handler) serverError(w http.ResponseWriter, op string, err error) {
	h.logger.Error("dashboard: "+op, slog.Any("error", err))
	httpx.RespondError(w, err)
}

func parsePeriod(w http.ResponseWriter, r *http.Request) (costing.Period, bool) {
	raw := r.URL.Query().Get("period")
	if raw == "" {
		return costing.Period{}, true
	}
	p, err := costing.ParsePeriod(raw)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid period", "period must be formatted YYYY-MM")
		return costing.Period{}, false
	}
	return p, true
}
