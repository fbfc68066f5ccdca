// Package server exposes stored sessions over a read-only HTTP API for stream overlays
// and dashboards.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/pable/royaleops/internal/export"
	"github.com/pable/royaleops/internal/model"
	"github.com/pable/royaleops/internal/series"
	"github.com/pable/royaleops/internal/session"
	"github.com/pable/royaleops/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// Store is the read side of session persistence.
type Store interface {
	GetSession(prefix string) (*session.Session, error)
	ListOpen() ([]model.SessionSummary, error)
	ListSaved() ([]model.SessionSummary, error)
}

// MapNamer resolves map ids to display names.
type MapNamer interface {
	Name(id string) string
}

// Server serves session snapshots.
type Server struct {
	store    Store
	maps     MapNamer
	log      zerolog.Logger
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// New builds a server with its own metrics registry.
func New(store Store, maps MapNamer, logger zerolog.Logger) *Server {
	s := &Server{
		store:    store,
		maps:     maps,
		log:      logger,
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "royaleops",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "royaleops",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
	s.registry.MustRegister(s.requests, s.latency)
	return s
}

// Handler returns the routed, instrumented handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLog)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.Get("/sessions", s.listSessions)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", s.getSession)
		r.Get("/leaderboard", s.getLeaderboard)
		r.Get("/leaderboard.png", s.getLeaderboardPNG)
		r.Get("/players", s.getPlayers)
		r.Get("/series", s.getSeries)
		r.Get("/series.png", s.getSeriesPNG)
	})

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info().Msg("server stopped gracefully")
	return nil
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		duration := time.Since(start)
		s.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		s.latency.WithLabelValues(route).Observe(duration.Seconds())

		s.log.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Dur("duration", duration).
			Msg("request completed")
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn().Err(err).Msg("encode response")
	}
}

func writePNG(w http.ResponseWriter, img []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(img)
}

// loadSession resolves the {id} URL parameter, writing the error response itself.
func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "id")
	sess, err := s.store.GetSession(id)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		s.log.Error().Err(err).Str("session", id).Msg("load session")
		http.Error(w, "failed to load session", http.StatusInternalServerError)
		return nil, false
	}
	return sess, true
}

type sessionList struct {
	Open  []model.SessionSummary `json:"open"`
	Saved []model.SessionSummary `json:"saved"`
}

func (s *Server) listSessions(w http.ResponseWriter, _ *http.Request) {
	open, err := s.store.ListOpen()
	if err != nil {
		http.Error(w, "failed to list sessions", http.StatusInternalServerError)
		return
	}
	saved, err := s.store.ListSaved()
	if err != nil {
		http.Error(w, "failed to list sessions", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, sessionList{Open: nonNil(open), Saved: nonNil(saved)})
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, sess)
}

func (s *Server) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, sess.Leaderboard())
}

func (s *Server) getLeaderboardPNG(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	img, err := export.LeaderboardPNG(sess.Name, sess.Leaderboard())
	if err != nil {
		s.log.Error().Err(err).Msg("render leaderboard")
		http.Error(w, "failed to render chart", http.StatusInternalServerError)
		return
	}
	writePNG(w, img)
}

func (s *Server) getPlayers(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, nonNil(sess.MVPs()))
}

type seriesView struct {
	model.SeriesState
	CurrentMapName string        `json:"currentMapName"`
	NextAction     *model.Action `json:"nextAction,omitempty"`
}

func (s *Server) seriesState(w http.ResponseWriter, r *http.Request) (model.SeriesState, bool) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return model.SeriesState{}, false
	}
	if sess.Series == nil {
		http.Error(w, "series not started", http.StatusNotFound)
		return model.SeriesState{}, false
	}
	return *sess.Series, true
}

func (s *Server) getSeries(w http.ResponseWriter, r *http.Request) {
	st, ok := s.seriesState(w, r)
	if !ok {
		return
	}
	view := seriesView{SeriesState: st}
	if id := st.CurrentMap(); id != "" && !st.Complete {
		view.CurrentMapName = s.maps.Name(id)
	}
	if a, ok := series.NextAction(st); ok {
		view.NextAction = &a
	}
	s.writeJSON(w, view)
}

func (s *Server) getSeriesPNG(w http.ResponseWriter, r *http.Request) {
	st, ok := s.seriesState(w, r)
	if !ok {
		return
	}
	img, err := export.SeriesPNG(st)
	if err != nil {
		s.log.Error().Err(err).Msg("render series")
		http.Error(w, "failed to render chart", http.StatusInternalServerError)
		return
	}
	writePNG(w, img)
}
