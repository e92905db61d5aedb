package work

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fla-ops/fla/internal/costing"
	"github.com/fla-ops/fla/internal/platform/httpx"
)

// Handler exposes jobs over JSON.
type Handler struct {
	service *Service
}

// NewHandler constructs the handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// MountRoutes registers /jobs endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/jobs", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.show)
			r.Put("/", h.update)
			r.Delete("/", h.delete)
			r.Put("/quote", h.replaceQuote)
			r.Post("/payments", h.addPayment)
			r.Put("/payment-status", h.overridePaymentStatus)
			r.Put("/status", h.setStatus)
		})
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter ListFilter
	if v := q.Get("status"); v != "" {
		filter.Status = costing.JobStatus(v)
		if !filter.Status.Valid() {
			httpx.Problem(w, http.StatusBadRequest, "Invalid filter", "unknown job status "+strconv.Quote(v))
			return
		}
	}
	if v := q.Get("month"); v != "" {
		p, err := costing.ParsePeriod(v)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid filter", "month must be formatted YYYY-MM")
			return
		}
		filter.CreatedIn = &p
	}
	if id, ok := optionalID(q.Get("client_id")); ok {
		filter.ClientID = &id
	}
	if id, ok := optionalID(q.Get("worker_id")); ok {
		filter.WorkerID = &id
	}
	out, err := h.service.List(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	out, err := h.service.Create(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, out)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	out, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	var req UpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	respond(w, func() (JobView, error) { return h.service.Update(r.Context(), id, req) })
}

func (h *Handler) replaceQuote(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	var req QuoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	respond(w, func() (JobView, error) { return h.service.ReplaceQuote(r.Context(), id, req) })
}

func (h *Handler) addPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	var req PaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	out, err := h.service.AddPayment(r.Context(), id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, out)
}

func (h *Handler) overridePaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	var req PaymentStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	respond(w, func() (JobView, error) { return h.service.OverridePaymentStatus(r.Context(), id, req) })
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	var req StatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	respond(w, func() (JobView, error) { return h.service.SetStatus(r.Context(), id, req) })
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func respond(w http.ResponseWriter, fn func() (JobView, error)) {
	out, err := fn()
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func jobID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "job id must be a positive integer")
		return 0, false
	}
	return id, true
}

func optionalID(raw string) (int64, bool) {
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
