package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/statuspage/internal/domain"
	apimw "github.com/hamed0406/statuspage/internal/httpapi/middleware"
	"github.com/hamed0406/statuspage/internal/metrics"
	"github.com/hamed0406/statuspage/internal/repo"
	"github.com/hamed0406/statuspage/internal/targets"
)

// StatusResolver and HistoryBuilder are the read-side collaborators.
type StatusResolver interface {
	Resolve(ctx context.Context, ts []domain.Target) (map[string]domain.Status, error)
}

type HistoryBuilder interface {
	Build(ctx context.Context, service string) (domain.HistoryView, error)
}

type Server struct {
	Logger  *zap.Logger
	Targets *targets.Registry
	Status  StatusResolver
	History HistoryBuilder
	Health  repo.Pinger
	Metrics *metrics.Metrics
}

type Options struct {
	StaticDir      string
	AllowedOrigins []string
	RateLimitRPM   int
	RateLimitBurst int
}

func NewServer(l *zap.Logger, reg *targets.Registry, st StatusResolver, hb HistoryBuilder, health repo.Pinger, m *metrics.Metrics) *Server {
	return &Server{Logger: l, Targets: reg, Status: st, History: hb, Health: health, Metrics: m}
}

func (s *Server) Router(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(s.requestLog)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(apimw.RateLimit(opts.RateLimitRPM, opts.RateLimitBurst))
		r.NotFound(notFound)
		r.Get("/services", s.handleServices)
		r.Get("/status", s.handleStatus)
		r.Get("/history/{serviceId}", s.handleHistory)
	})

	if fi, err := os.Stat(opts.StaticDir); opts.StaticDir != "" && err == nil && fi.IsDir() {
		r.Handle("/*", staticFiles(opts.StaticDir))
	} else {
		r.NotFound(notFound)
	}
	return r
}

type serviceItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s *Server) handleServices(w http.ResponseWriter, r *http.Request) {
	ts := s.Targets.Snapshot()
	out := make([]serviceItem, 0, len(ts))
	for _, t := range ts {
		out = append(out, serviceItem{ID: t.ID, Name: t.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.Status.Resolve(r.Context(), s.Targets.Snapshot())
	if err != nil {
		s.Logger.Error("status_query_failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "serviceId")
	t, ok := s.Targets.Lookup(id)
	if !ok {
		writeError(w, http.StatusNotFound, "service not found")
		return
	}
	view, err := s.History.Build(r.Context(), t.Name)
	if err != nil {
		s.Logger.Error("history_query_failed", zap.String("target_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if s.Health != nil {
		if err := s.Health.Ping(ctx); err != nil {
			s.Logger.Warn("health_ping_failed", zap.Error(err))
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.Logger.Debug("http_request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.String("remote", r.RemoteAddr),
			zap.Duration("took", time.Since(start)),
		)
	})
}

// staticFiles serves the dashboard; paths with no file behind them get the
// JSON 404 like every other unknown route.
func staticFiles(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		if _, err := os.Stat(name); err != nil {
			notFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not found")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
