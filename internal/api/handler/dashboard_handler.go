package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"engagement-dashboard/internal/engine"
	"engagement-dashboard/internal/logging"
	"engagement-dashboard/internal/model"
	"engagement-dashboard/internal/session"
	"engagement-dashboard/internal/validation"
)

// maxBodyBytes caps request bodies; filter payloads are small.
const maxBodyBytes = 1 << 20

// Handler serves the dashboard API over one session.
type Handler struct {
	session *session.Session
	started time.Time
}

// New creates a handler for s.
func New(s *session.Session) *Handler {
	return &Handler{session: s, started: time.Now()}
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse reports liveness and the loaded dataset.
type HealthResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
	Rows      int    `json:"rows"`
	Uptime    string `json:"uptime"`
}

// Health reports service status
// @Summary Health check
// @Description Report liveness and the size of the loaded dataset
// @Tags system
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		SessionID: h.session.ID,
		Rows:      h.session.Table().Len(),
		Uptime:    time.Since(h.started).Round(time.Second).String(),
	})
}

// Options lists filter widget values
// @Summary Filter options
// @Description Distinct values of every filter dimension, the age bounds, and the fields usable in aggregations
// @Tags dashboard
// @Produce json
// @Success 200 {object} session.Options
// @Failure 500 {object} ErrorResponse
// @Router /options [get]
func (h *Handler) Options(w http.ResponseWriter, r *http.Request) {
	opts, err := h.session.Options()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

// Dashboard renders every view for a filter
// @Summary Render dashboard
// @Description Filter the dataset and build the KPIs and all chart datasets
// @Tags dashboard
// @Accept json
// @Produce json
// @Param request body model.RenderRequest true "Filter selections"
// @Success 200 {object} dashboard.Snapshot
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /dashboard [post]
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	var req model.RenderRequest
	if !decode(w, r, &req) {
		return
	}

	snap, err := h.session.Render(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Aggregate runs one aggregation
// @Summary Ad-hoc aggregation
// @Description Filter the dataset and compute a grouped mean, sum, count, value count, distribution, or a scalar mean or sum
// @Tags dashboard
// @Accept json
// @Produce json
// @Param request body model.AggregateRequest true "Aggregation"
// @Success 200 {object} session.AggregateResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /aggregate [post]
func (h *Handler) Aggregate(w http.ResponseWriter, r *http.Request) {
	var req model.AggregateRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := h.session.Aggregate(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// LoadReport returns the cleaning summary
// @Summary Load report
// @Description Rows read, kept and dropped while loading the dataset, with per-stage timings
// @Tags dashboard
// @Produce json
// @Success 200 {object} model.LoadReport
// @Router /load-report [get]
func (h *Handler) LoadReport(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Report())
}

// decode reads and validates a JSON body, replying 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON payload: " + err.Error()})
		return false
	}
	if err := validation.ValidateStruct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return false
	}
	return true
}

// writeError maps request mistakes to 400 and everything else to 500.
func writeError(w http.ResponseWriter, err error) {
	var unknown *engine.UnknownFieldError
	if errors.Is(err, session.ErrInvalidRequest) || errors.As(err, &unknown) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	logging.Error().Err(err).Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("failed to encode response")
	}
}
