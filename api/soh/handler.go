// Package soh exposes SOH estimation and run history over HTTP.
package soh

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/kilianp07/batlife/app"
	"github.com/kilianp07/batlife/core/model"
	"github.com/kilianp07/batlife/core/monitoring"
	"github.com/kilianp07/batlife/core/runstore"
)

// maxBodyBytes bounds estimate requests; a leap year of minute samples
// fits comfortably.
const maxBodyBytes = 128 << 20

// Service is the application surface used by the handlers.
type Service interface {
	Predict(ctx context.Context, req app.Request) (runstore.RunRecord, error)
	Runs(ctx context.Context, q runstore.RunQuery) ([]runstore.RunRecord, error)
	Run(ctx context.Context, id string) (runstore.RunRecord, error)
}

// Defaults fill fields omitted from estimate requests.
type Defaults struct {
	NominalKWh float64
	Strategy   model.Strategy
}

type estimateRequest struct {
	Timestamps []int64        `json:"timestamps"`
	Powers     []float64      `json:"powers"`
	Strategy   *strategyParam `json:"strategy"`
	NominalKWh *float64       `json:"nominal_kwh"`
	Source     string         `json:"source"`
}

// strategyParam accepts either the strategy name or its numeric code.
type strategyParam struct{ raw string }

func (s *strategyParam) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &s.raw)
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	s.raw = n.String()
	return nil
}

// NewRouter returns a router serving:
//
//	GET  /health
//	POST /api/soh/estimate
//	GET  /api/soh/runs?strategy=&start=&end=&limit=
//	GET  /api/soh/runs/{id}
//
// Requests under /api must include "Authorization: Bearer <token>" when
// token is non-empty.
func NewRouter(svc Service, defaults Defaults, token string) *mux.Router {
	h := &handler{svc: svc, defaults: defaults}
	r := mux.NewRouter()
	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api/soh").Subrouter()
	api.Use(bearerAuth(token))
	api.HandleFunc("/estimate", h.estimate).Methods(http.MethodPost)
	api.HandleFunc("/runs", h.listRuns).Methods(http.MethodGet)
	api.HandleFunc("/runs/{id}", h.getRun).Methods(http.MethodGet)
	return r
}

type handler struct {
	svc      Service
	defaults Defaults
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func bearerAuth(token string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
				writeError(w, http.StatusUnauthorized, errors.New("unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Recoverer answers 500 when a handler panics and reports the panic.
func Recoverer(rep monitoring.Reporter) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					rep.CaptureError(fmt.Errorf("panic in %s %s: %v", r.Method, r.URL.Path, v), map[string]string{"stage": "http"})
					writeError(w, http.StatusInternalServerError, errors.New("internal error"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func (h *handler) estimate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req estimateRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	strategy := h.defaults.Strategy
	if req.Strategy != nil {
		s, err := model.ParseStrategy(req.Strategy.raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		strategy = s
	}
	nominal := h.defaults.NominalKWh
	if req.NominalKWh != nil {
		nominal = *req.NominalKWh
	}
	source := req.Source
	if source == "" {
		source = "api"
	}
	rec, err := h.svc.Predict(r.Context(), app.Request{
		Series:     model.TimeSeries{Timestamps: req.Timestamps, Powers: req.Powers},
		Strategy:   strategy,
		NominalKWh: nominal,
		Source:     source,
	})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *handler) listRuns(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	records, err := h.svc.Runs(r.Context(), q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if records == nil {
		records = []runstore.RunRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *handler) getRun(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Run(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, runstore.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func parseQuery(r *http.Request) (runstore.RunQuery, error) {
	v := r.URL.Query()
	q := runstore.RunQuery{}
	if s := v.Get("strategy"); s != "" {
		st, err := model.ParseStrategy(s)
		if err != nil {
			return q, err
		}
		q.Strategy = st.String()
	}
	if s := v.Get("start"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return q, fmt.Errorf("start: %w", err)
		}
		q.Start = t
	}
	if s := v.Get("end"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return q, fmt.Errorf("end: %w", err)
		}
		q.End = t
	}
	if s := v.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return q, fmt.Errorf("invalid limit %q", s)
		}
		q.Limit = n
	}
	return q, nil
}

// statusFor maps prediction errors to HTTP status codes.
func statusFor(err error) int {
	switch app.FailureReason(err) {
	case "malformed_input", "degenerate_parameter", "invalid_strategy", "non_contiguous":
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
