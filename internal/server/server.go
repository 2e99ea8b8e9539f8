package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/unclebandit/customer-service/internal/handler"
	"github.com/unclebandit/customer-service/internal/metrics"
)

type Deps struct {
	Customers      *handler.CustomerHandler
	Metrics        *metrics.Registry
	Logger         *slog.Logger
	AllowedOrigins []string
}

// NewRouter wires middleware and routes.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// Middlewares (outermost -> innermost)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(d.Logger))
	// outside Recoverer so recovered panics are counted as 500s
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/liveness", handler.Liveness)
	r.Get("/readiness", d.Customers.Readiness)
	if d.Metrics != nil {
		r.Get("/metrics", d.Metrics.Handler())
	}

	r.Route("/customers", d.Customers.Routes)
	// singular path used by the original web client
	r.Route("/customer", d.Customers.Routes)

	return r
}

// requestLogger logs one line per request once it has completed.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"dur_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote", r.RemoteAddr,
			)
		})
	}
}

// New returns the http.Server for addr.
func New(addr string, h http.Handler, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 15 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}
