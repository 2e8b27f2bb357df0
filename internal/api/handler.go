package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/xtding233/refine-backend/internal/api/dto"
	"github.com/xtding233/refine-backend/internal/converter"
	"github.com/xtding233/refine-backend/internal/service"
)

type HandlerDeps struct {
	Sim    *service.Simulator
	Logger *slog.Logger

	// BatchTimeout bounds one /simulate request; a batch that hits it returns
	// the runs completed so far. Zero disables the bound.
	BatchTimeout time.Duration
}

type Handler struct {
	sim          *service.Simulator
	log          *slog.Logger
	batchTimeout time.Duration
}

func NewHandler(deps HandlerDeps) *Handler {
	log := deps.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Handler{sim: deps.Sim, log: log.With("component", "http"), batchTimeout: deps.BatchTimeout}
}

// Simulate runs a Monte Carlo batch for the submitted form.
func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	req, err := decode[dto.SimulateRequest](r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	in, err := converter.ToInput(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ctx := r.Context()
	if h.batchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.batchTimeout)
		defer cancel()
	}
	out, err := h.sim.Simulate(ctx, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, converter.ToSimulateResponse(out, req.IncludeRuns))
}

// Attempt runs a single refine sequence and returns every attempt.
func (h *Handler) Attempt(w http.ResponseWriter, r *http.Request) {
	req, err := decode[dto.SimulateRequest](r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	in, err := converter.ToInput(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	out, err := h.sim.RunOnce(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, converter.ToRunResponse(out))
}

func (h *Handler) Table(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, converter.ToTableResponse(h.sim.Table()))
}

func (h *Handler) GetPrices(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, converter.ToPrices(h.sim.Prices()))
}

// PutPrices updates the market prices; omitted materials keep their price.
func (h *Handler) PutPrices(w http.ResponseWriter, r *http.Request) {
	req, err := decode[dto.Prices](r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	p, err := converter.FromPrices(req, h.sim.Prices())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.sim.SetPrices(p); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, converter.ToPrices(p))
}

func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "table": h.sim.Table().Version()})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		h.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, err)
	}
}
