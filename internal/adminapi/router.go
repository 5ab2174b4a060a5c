// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

// Package adminapi builds the ambient admin HTTP surface: /healthz,
// /readyz, /debug/perf, and /metrics. It is deliberately not the RPC/HTTP
// lifecycle dispatcher (spec §1 Non-goals): there is no Create/Delete/
// Action route here, only the operational endpoints a deployment's load
// balancer and scrape target need.
package adminapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/buildforge/buildforge/internal/middleware"
)

// ReadinessCheck reports why the process isn't ready to serve, or nil when
// it is. Registered checks run on every /readyz request.
type ReadinessCheck func() error

// Config controls the admin router's CORS and rate-limiting posture.
type Config struct {
	RateLimitPerMin    int
	CORSAllowedOrigins []string
}

// DefaultConfig matches the spec-default 600 requests/min with CORS
// disabled (empty origin list), requiring explicit configuration before
// any cross-origin caller is admitted.
func DefaultConfig() Config {
	return Config{
		RateLimitPerMin:    600,
		CORSAllowedOrigins: []string{},
	}
}

// perfSampleCapacity bounds the in-memory ring of recent request samples
// the performance monitor keeps for /debug/perf.
const perfSampleCapacity = 1000

// NewRouter builds the admin HTTP surface. checks are consulted in order by
// /readyz; the first failing check's error is reported and the endpoint
// returns 503.
func NewRouter(cfg Config, checks ...ReadinessCheck) http.Handler {
	if cfg.RateLimitPerMin <= 0 {
		cfg.RateLimitPerMin = 600
	}

	perf := middleware.NewPerformanceMonitor(perfSampleCapacity)

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet},
		MaxAge:         300,
	}))
	r.Use(httprate.LimitByIP(cfg.RateLimitPerMin, time.Minute))
	r.Use(asHandlerMiddleware(middleware.RequestID))
	r.Use(asHandlerMiddleware(middleware.Compression))
	r.Use(asHandlerMiddleware(middleware.PrometheusMetrics))
	r.Use(perf.Middleware)

	r.Get("/healthz", handleHealthz)
	r.Get("/readyz", handleReadyz(checks))
	r.Get("/debug/perf", handleDebugPerf(perf))
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// asHandlerMiddleware adapts the package's legacy HandlerFunc-in/out
// middleware shape to chi's func(http.Handler) http.Handler convention.
func asHandlerMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleDebugPerf reports per-endpoint latency percentiles gathered by the
// performance monitor middleware. Unauthenticated like the rest of this
// surface: it carries no project data, only request-shape aggregates.
func handleDebugPerf(perf *middleware.PerformanceMonitor) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(perf.GetStats())
	}
}

func handleReadyz(checks []ReadinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		for _, check := range checks {
			if check == nil {
				continue
			}
			if err := check(); err != nil {
				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(err.Error()))
				return
			}
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}
}
