package graphql

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Route paths served by NewRouter.
const (
	PathQuery  = "/query"
	PathSchema = "/schema.graphql"
	PathHealth = "/health"
	PathMetric = "/metrics"
)

type router struct {
	log        *zap.Logger
	metrics    http.Handler
	playground bool
	health     func(context.Context) error
	title      string
}

// RouterOption configures NewRouter.
type RouterOption func(*router)

// WithRouterLogger sets the access logger.
func WithRouterLogger(l *zap.Logger) RouterOption {
	return func(r *router) {
		if l != nil {
			r.log = l
		}
	}
}

// WithMetricsHandler serves h on /metrics.
func WithMetricsHandler(h http.Handler) RouterOption {
	return func(r *router) {
		r.metrics = h
	}
}

// WithPlayground toggles the GraphQL playground on /.
func WithPlayground(enabled bool) RouterOption {
	return func(r *router) {
		r.playground = enabled
	}
}

// WithHealthCheck adds a dependency check to /health, e.g. a database ping.
func WithHealthCheck(fn func(context.Context) error) RouterOption {
	return func(r *router) {
		r.health = fn
	}
}

// WithTitle sets the playground title.
func WithTitle(title string) RouterOption {
	return func(r *router) {
		r.title = title
	}
}

// NewRouter returns the HTTP routes of the query-serving layer.
func NewRouter(h *Holder, opts ...RouterOption) chi.Router {
	cfg := &router{log: zap.NewNop(), playground: true, title: "vertexql"}
	for _, opt := range opts {
		opt(cfg)
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(cfg.log))
	r.Use(middleware.Recoverer)

	r.Handle(PathQuery, h)
	if cfg.playground {
		r.Get("/", playground.Handler(cfg.title, PathQuery))
	}
	r.Get(PathSchema, func(w http.ResponseWriter, req *http.Request) {
		s := h.Schema()
		if s == nil {
			http.Error(w, "schema not loaded", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/graphql; charset=utf-8")
		w.Header().Set("ETag", `"`+s.Hash()+`"`)
		if req.Header.Get("If-None-Match") == `"`+s.Hash()+`"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		_, _ = w.Write([]byte(s.SDL()))
	})
	r.Get(PathHealth, func(w http.ResponseWriter, req *http.Request) {
		status := health{Status: "ok"}
		code := http.StatusOK
		if s := h.Schema(); s != nil {
			status.Schema = s.Hash()
			status.VertexTypes = len(s.Types())
		} else {
			status.Status, code = "schema not loaded", http.StatusServiceUnavailable
		}
		if cfg.health != nil && code == http.StatusOK {
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()
			if err := cfg.health(ctx); err != nil {
				status.Status, code = "unhealthy: "+err.Error(), http.StatusServiceUnavailable
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(status)
	})
	if cfg.metrics != nil {
		r.Handle(PathMetric, cfg.metrics)
	}
	return r
}

type health struct {
	Status      string `json:"status"`
	Schema      string `json:"schema,omitempty"`
	VertexTypes int    `json:"vertex_types,omitempty"`
}

// accessLog logs one line per request.
func accessLog(log *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
