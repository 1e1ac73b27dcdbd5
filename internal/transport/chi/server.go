// Package chi exposes the stringdex HTTP API.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/stringdex/internal/domain"
	"github.com/kailas-cloud/stringdex/internal/metrics"
	healthuc "github.com/kailas-cloud/stringdex/internal/usecase/health"
	recorduc "github.com/kailas-cloud/stringdex/internal/usecase/record"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server holds the HTTP handlers for the strings API.
type Server struct {
	records       *recorduc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(records *recorduc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		records: records,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound,
			"String does not exist in the system"),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict,
			"String already exists in the system"),
		sentinelHandler(domain.ErrEmptyValue, http.StatusUnprocessableEntity,
			"Value must be a non-empty string"),
		sentinelHandler(domain.ErrValueTooLarge, http.StatusUnprocessableEntity,
			"Value exceeds the maximum size of 1 MiB"),
		sentinelHandler(domain.ErrInvalidFilter, http.StatusUnprocessableEntity, ""),
	}
	return s
}

// Register mounts all routes on r. The static filter-by-natural-language
// route is declared alongside the {value} routes; chi matches static
// segments before wildcards.
func (s *Server) Register(r chi.Router) {
	r.Route("/strings", func(r chi.Router) {
		r.Post("/", s.createString)
		r.Get("/", s.listStrings)
		r.Delete("/", s.deleteAllStrings)
		r.Get("/filter-by-natural-language", s.filterByNaturalLanguage)
		r.Get("/{value}", s.getString)
		r.Delete("/{value}", s.deleteString)
	})
	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// createString handles POST /strings.
func (s *Server) createString(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value *json.RawMessage `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body or missing 'value' field")
		return
	}
	if req.Value == nil {
		writeError(w, http.StatusBadRequest, "Invalid request body or missing 'value' field")
		return
	}

	var value string
	if err := json.Unmarshal(*req.Value, &value); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "'value' must be a string")
		return
	}

	rec, freq, err := s.records.Create(r.Context(), value)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	metrics.RecordsCreatedTotal.Inc()
	writeJSON(w, http.StatusCreated, createResponseFrom(rec, freq))
}

// listStrings handles GET /strings.
func (s *Server) listStrings(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilters(r.URL.Query())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	recs, err := s.records.List(r.Context(), f)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{
		Data:           recordsToResponses(recs),
		Count:          len(recs),
		FiltersApplied: f,
	})
}

// deleteAllStrings handles DELETE /strings. The deletion count travels
// in the X-Deleted-Count header because 204 cannot carry a body.
func (s *Server) deleteAllStrings(w http.ResponseWriter, r *http.Request) {
	n, err := s.records.DeleteAll(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	metrics.RecordsDeletedTotal.WithLabelValues("bulk").Add(float64(n))
	w.Header().Set("X-Deleted-Count", intToString(n))
	w.WriteHeader(http.StatusNoContent)
}

// getString handles GET /strings/{value}.
func (s *Server) getString(w http.ResponseWriter, r *http.Request) {
	value := pathValue(r)

	rec, err := s.records.Get(r.Context(), value)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, recordToResponse(rec))
}

// deleteString handles DELETE /strings/{value}.
func (s *Server) deleteString(w http.ResponseWriter, r *http.Request) {
	value := pathValue(r)

	if err := s.records.Delete(r.Context(), value); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	metrics.RecordsDeletedTotal.WithLabelValues("single").Inc()
	w.WriteHeader(http.StatusNoContent)
}

// filterByNaturalLanguage handles GET /strings/filter-by-natural-language.
func (s *Server) filterByNaturalLanguage(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("query")
	if text == "" {
		writeError(w, http.StatusBadRequest, "No query provided")
		return
	}

	f, recs, err := s.records.SearchNaturalLanguage(r.Context(), text)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	outcome := "interpreted"
	if f.IsZero() {
		outcome = "empty"
	}
	metrics.NaturalLanguageQueriesTotal.WithLabelValues(outcome).Inc()

	writeJSON(w, http.StatusOK, naturalLanguageResponse{
		Data:  recordsToResponses(recs),
		Count: len(recs),
		InterpretedQuery: interpretedQuery{
			Original:      text,
			ParsedFilters: f,
		},
	})
}

// healthz handles GET /healthz.
func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	checks := make(map[string]string, len(report.Checks))
	for name, result := range report.Checks {
		checks[name] = string(result)
	}
	writeJSON(w, status, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// handleDomainError maps a domain error onto a status code, falling back
// to 500 with diagnostic detail for storage failures.
func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	for _, handle := range s.errorHandlers {
		if handle(w, err) {
			return
		}
	}
	s.logger.Error("storage failure",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "storage failure: "+err.Error())
}

// sentinelHandler answers status with msg when err wraps sentinel.
// An empty msg passes the error's own message through (used for filter
// validation, where the message names the offending parameter).
func sentinelHandler(sentinel error, status int, msg string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		body := msg
		if body == "" {
			body = err.Error()
		}
		writeError(w, status, body)
		return true
	}
}

// pathValue returns the {value} path parameter, percent-decoded so
// values with spaces or slashes survive the round trip.
func pathValue(r *http.Request) string {
	raw := chi.URLParam(r, "value")
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
