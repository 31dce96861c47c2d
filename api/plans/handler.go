// Package plans exposes planning over HTTP.
//
//	GET  /algorithms   available search strategies
//	POST /plans        run a search on the submitted problem
//	GET  /runs         stored run history (start, end, algorithm, limit)
//
// Requests must carry "Authorization: Bearer <token>" when a token is set.
package plans

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kilianp07/relplan/app"
	corelogger "github.com/kilianp07/relplan/core/logger"
	"github.com/kilianp07/relplan/core/model"
	"github.com/kilianp07/relplan/core/runlog"
	"github.com/kilianp07/relplan/core/search"
	"github.com/kilianp07/relplan/infra/dataset"
	"github.com/kilianp07/relplan/infra/logger"
)

// maxBodyBytes caps the size of a submitted problem.
const maxBodyBytes = 8 << 20

// Planner is the part of app.Service the API needs.
type Planner interface {
	Plan(ctx context.Context, p search.Problem, alg search.Algorithm) (app.Outcome, error)
	History(ctx context.Context, q runlog.Query) ([]runlog.Record, error)
}

// Request is the body of POST /plans. Search falls back to Defaults for an
// empty algorithm.
type Request struct {
	Search search.Config `json:"search"`
	dataset.Document
}

// Response is returned by POST /plans.
type Response struct {
	RunID     string  `json:"run_id"`
	Algorithm string  `json:"algorithm"`
	Seed      int64   `json:"seed"`
	Fitness   float64 `json:"fitness"`
	app.Outcome
}

type handler struct {
	planner  Planner
	defaults search.Config
	token    string
	log      logger.Logger
}

// NewRouter returns the HTTP API. defaults is the search configuration used
// when a request does not name an algorithm.
func NewRouter(p Planner, defaults search.Config, token string, log logger.Logger) http.Handler {
	h := &handler{planner: p, defaults: defaults, token: token, log: corelogger.OrNop(log)}
	r := chi.NewRouter()
	r.Use(h.recoverer)
	r.Use(h.auth)
	r.Get("/algorithms", h.algorithms)
	r.Post("/plans", h.plan)
	r.Get("/runs", h.runs)
	return r
}

func (h *handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.token != "" && r.Header.Get("Authorization") != "Bearer "+h.token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.log.Errorf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *handler) algorithms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, search.Names())
}

func (h *handler) plan(w http.ResponseWriter, r *http.Request) {
	var req Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid body: %v", err), http.StatusBadRequest)
		return
	}
	for i := range req.Workers {
		if req.Workers[i].Efficiency == 0 {
			req.Workers[i].Efficiency = 1
		}
	}
	cfg := req.Search
	if cfg.Algorithm == "" {
		cfg = h.defaults
	}
	alg, err := search.New(cfg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	problem, err := dataset.Assemble(req.Tasks, req.Releases, req.Workers)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	out, err := h.planner.Plan(r.Context(), problem, alg)
	if err != nil && (out.Result.Best == nil || errors.Is(err, model.ErrInvariantViolation)) {
		http.Error(w, err.Error(), statusOf(err))
		return
	}
	if err != nil {
		h.log.Warnf("plan %s: %v", out.Result.RunID, err)
	}
	writeJSON(w, http.StatusOK, Response{
		RunID:     out.Result.RunID,
		Algorithm: out.Result.Algorithm,
		Seed:      out.Result.Seed,
		Fitness:   out.Result.Fitness,
		Outcome:   out,
	})
}

func (h *handler) runs(w http.ResponseWriter, r *http.Request) {
	var q runlog.Query
	params := r.URL.Query()
	if s := params.Get("start"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			q.Start = t
		}
	}
	if s := params.Get("end"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			q.End = t
		}
	}
	q.Algorithm = params.Get("algorithm")
	if s := params.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		q.Limit = n
	}
	recs, err := h.planner.History(r.Context(), q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if recs == nil {
		recs = []runlog.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidConfiguration), errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
