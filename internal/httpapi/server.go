// Package httpapi serves the loaded match data as JSON for local
// dashboards.
package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/pable/go-cod-stats/internal/aggregator"
	"github.com/pable/go-cod-stats/internal/ingest"
	"github.com/pable/go-cod-stats/internal/logging"
	"github.com/pable/go-cod-stats/internal/model"
	"github.com/pable/go-cod-stats/internal/query"
)

// Options tune the analytics served.
type Options struct {
	SessionGap     time.Duration
	MinSessionSize int
	// Location buckets hour-of-day stats; defaults to time.Local.
	Location *time.Location
}

type Server struct {
	orch     *ingest.Orchestrator
	store    *ingest.Store
	opts     Options
	validate *validator.Validate
	router   chi.Router
}

// New builds the router. Data routes answer 503 until the orchestrator's
// store is ready.
func New(orch *ingest.Orchestrator, opts Options) *Server {
	if opts.SessionGap <= 0 {
		opts.SessionGap = aggregator.DefaultSessionGap
	}
	if opts.MinSessionSize <= 0 {
		opts.MinSessionSize = aggregator.DefaultMinSessionSize
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	s := &Server{
		orch:     orch,
		store:    orch.Store(),
		opts:     opts,
		validate: validator.New(),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/api/health", s.health)
	r.Post("/api/cache/clear", s.clearCache)
	r.Group(func(r chi.Router) {
		r.Use(s.requireReady)
		r.Get("/api/options", s.options)
		r.Get("/api/view", s.view)
		r.Get("/api/matches", s.matches)
		r.Get("/api/summary", s.summary)
		r.Get("/api/sessions", s.sessions)
		r.Get("/api/correlations", s.correlations)
		r.Get("/api/maps", s.maps)
		r.Get("/api/hours", s.hours)
	})
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type envelope struct {
	Status string    `json:"status"`
	Data   any       `json:"data,omitempty"`
	Error  *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(envelope{Status: "success", Data: data})
	if err != nil {
		logging.Error().Err(err).Msg("marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	write(w, status, body)
}

func respondError(w http.ResponseWriter, status int, code, msg string) {
	body, err := json.Marshal(envelope{Status: "error", Error: &apiError{Code: code, Message: msg}})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	write(w, status, body)
}

func write(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logging.Warn().Err(err).Msg("write response")
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logging.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Msg("http request")
	})
}

func (s *Server) requireReady(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.store.Ready() {
			next.ServeHTTP(w, r)
			return
		}
		if s.orch.State() == ingest.StateEmpty {
			respondError(w, http.StatusNotFound, "NO_DATA", ingest.NoDataHint)
			return
		}
		respondError(w, http.StatusServiceUnavailable, "NOT_READY", "match data is still loading")
	})
}

// selection reads mode, map and metric from the request. Missing values
// fall back to the store's current query.
func (s *Server) selection(r *http.Request) (model.Query, []*model.CanonicalMatch, bool) {
	q := s.store.Query()
	v := r.URL.Query()
	if m := v.Get("mode"); m != "" {
		q.Gamemode = m
	}
	if m := v.Get("map"); m != "" {
		q.Map = m
	}
	if m := v.Get("metric"); m != "" {
		q.Metric = m
	}
	if err := s.validate.Struct(q); err != nil || !model.IsMetric(q.Metric) {
		return q, nil, false
	}
	return q, query.FilteredView(s.store.Matches(), q), true
}

func (s *Server) badSelection(w http.ResponseWriter, q model.Query) {
	respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "unknown metric "+strconv.Quote(q.Metric))
}
