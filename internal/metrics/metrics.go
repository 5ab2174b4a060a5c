// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package provides comprehensive instrumentation for:
// - Build Scheduler queue depth and reconciliation
// - Watcher Supervisor process spawn/kill activity
// - Handler dispatch outcomes
// - EventBus publish activity
// - The ambient admin HTTP surface and dashboard WebSocket hub

var (
	// Build Scheduler Metrics (§4.C)
	BuildQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "build_queue_depth",
			Help: "Current number of projects queued for a build",
		},
	)

	RunningBuilds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "running_builds",
			Help: "Current number of builds in progress",
		},
	)

	ReconciliationTickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reconciliation_tick_duration_seconds",
			Help:    "Duration of a single Build Scheduler reconciliation tick",
			Buckets: prometheus.DefBuckets,
		},
	)

	ReconciliationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconciliation_errors_total",
			Help: "Total number of errors encountered during reconciliation ticks",
		},
		[]string{"stage"}, // "admit", "reap", "emit_ranks"
	)

	BuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "build_duration_seconds",
			Help:    "Duration of a project build from admit to terminal state",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"outcome"}, // "success", "failed"
	)

	// Handler Dispatch Metrics (§5)
	HandlerCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "handler_calls_total",
			Help: "Total number of Handler method invocations",
		},
		[]string{"method", "outcome"}, // method: "Create"; outcome: "success", "error"
	)

	HandlerCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "handler_call_duration_seconds",
			Help:    "Duration of a Handler method invocation",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// Watcher Supervisor Metrics (§4.B)
	WatcherProcessesManaged = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "watcher_processes_managed",
			Help: "Current number of watcher processes tracked by the Watcher Supervisor",
		},
	)

	WatcherSpawnTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watcher_spawn_total",
			Help: "Total number of watcher process spawn attempts",
		},
		[]string{"outcome"}, // "success", "error"
	)

	WatcherKillTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "watcher_kill_total",
			Help: "Total number of watcher processes killed (stale or project removed)",
		},
	)

	WatcherSpawnDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "watcher_spawn_duration_seconds",
			Help:    "Duration of spawning a single watcher process",
			Buckets: prometheus.DefBuckets,
		},
	)

	WatcherReconcileDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "watcher_reconcile_duration_seconds",
			Help:    "Duration of a single Watcher Supervisor reconciliation pass",
			Buckets: prometheus.DefBuckets,
		},
	)

	// EventBus Metrics
	EventBusMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventbus_messages_published_total",
			Help: "Total number of events published to the EventBus",
		},
		[]string{"subject"},
	)

	EventBusPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventbus_publish_errors_total",
			Help: "Total number of EventBus publish failures",
		},
		[]string{"subject"},
	)

	EventBusPublishDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "eventbus_publish_duration_seconds",
			Help:    "Duration of a single EventBus publish call",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Admin HTTP Surface Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of admin HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Admin HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active admin HTTP requests",
		},
	)

	// Project Info Cache Metrics (General)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions",
		},
		[]string{"cache_type"},
	)

	// Dashboard WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active dashboard WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of dashboard WebSocket messages sent",
		},
	)

	WSMessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_received_total",
			Help: "Total number of dashboard WebSocket messages received",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of dashboard WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Circuit Breaker Metrics (watcher spawn breaker, §4.B)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordReconciliationTick records the duration of one scheduler reconciliation tick.
func RecordReconciliationTick(duration time.Duration) {
	ReconciliationTickDuration.Observe(duration.Seconds())
}

// RecordReconciliationError records an error at a specific reconciliation stage.
func RecordReconciliationError(stage string) {
	ReconciliationErrors.WithLabelValues(stage).Inc()
}

// RecordBuildCompletion records a build's terminal outcome and total duration.
func RecordBuildCompletion(outcome string, duration time.Duration) {
	BuildDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordHandlerCall records a Handler method invocation and its outcome.
func RecordHandlerCall(method string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	HandlerCallsTotal.WithLabelValues(method, outcome).Inc()
	HandlerCallDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordWatcherSpawn records a watcher process spawn attempt and its duration.
func RecordWatcherSpawn(duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	WatcherSpawnTotal.WithLabelValues(outcome).Inc()
	WatcherSpawnDuration.Observe(duration.Seconds())
}

// RecordWatcherKill records a watcher process being killed.
func RecordWatcherKill() {
	WatcherKillTotal.Inc()
}

// RecordWatcherReconcile records the duration of one Watcher Supervisor reconciliation pass.
func RecordWatcherReconcile(duration time.Duration) {
	WatcherReconcileDuration.Observe(duration.Seconds())
}

// RecordEventBusPublish records an EventBus publish call and its outcome.
func RecordEventBusPublish(subject string, duration time.Duration, err error) {
	EventBusPublishDuration.Observe(duration.Seconds())
	if err != nil {
		EventBusPublishErrors.WithLabelValues(subject).Inc()
		return
	}
	EventBusMessagesPublished.WithLabelValues(subject).Inc()
}

// RecordAPIRequest records an admin HTTP request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active admin HTTP requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
