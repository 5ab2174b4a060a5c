// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package implements comprehensive application instrumentation using the Prometheus
client library, exposing metrics for monitoring the Build Scheduler, the Watcher
Supervisor, the EventBus, and the ambient admin HTTP and dashboard WebSocket surfaces.

# Overview

The package provides metrics for:
  - Build Scheduler queue depth, running builds, and reconciliation ticks
  - Handler dispatch outcomes (Create)
  - Watcher Supervisor process spawn/kill activity and its circuit breaker
  - EventBus publish activity
  - Admin HTTP request latency and throughput
  - Project Info cache hit/miss rates
  - Dashboard WebSocket connection counts

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:9280/metrics

# Available Metrics

Build Scheduler Metrics:
  - build_queue_depth: Projects currently queued for a build (gauge)
  - running_builds: Builds currently in progress (gauge)
  - reconciliation_tick_duration_seconds: Duration of a scheduler tick (histogram)
  - reconciliation_errors_total: Errors during reconciliation (counter)
    Labels: stage (admit, reap, emit_ranks)
  - build_duration_seconds: Duration of a project build (histogram)
    Labels: outcome (success, failed)

Handler Dispatch Metrics:
  - handler_calls_total: Handler method invocations (counter)
    Labels: method, outcome
  - handler_call_duration_seconds: Handler method duration (histogram)
    Labels: method

Watcher Supervisor Metrics:
  - watcher_processes_managed: Watcher processes currently tracked (gauge)
  - watcher_spawn_total: Watcher process spawn attempts (counter)
    Labels: outcome
  - watcher_kill_total: Watcher processes killed (counter)
  - watcher_spawn_duration_seconds: Duration of spawning a watcher (histogram)
  - watcher_reconcile_duration_seconds: Duration of a supervisor pass (histogram)

EventBus Metrics:
  - eventbus_messages_published_total: Events published (counter)
    Labels: subject
  - eventbus_publish_errors_total: Publish failures (counter)
    Labels: subject
  - eventbus_publish_duration_seconds: Publish call duration (histogram)

Admin HTTP Metrics:
  - api_requests_total: Total admin HTTP requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: Active admin HTTP requests (gauge)

Cache Metrics:
  - cache_hits_total / cache_misses_total / cache_evictions_total: (counter)
    Labels: cache_type (e.g. "project_info")
  - cache_entries: Current cached entries (gauge)
    Labels: cache_type

WebSocket Metrics:
  - websocket_connections: Active dashboard connections (gauge)
  - websocket_messages_sent_total / websocket_messages_received_total: (counter)
  - websocket_errors_total: (counter)
    Labels: error_type

Circuit Breaker Metrics (watcher spawn breaker):
  - circuit_breaker_state: Current state (gauge)
    Labels: name
    Values: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total: (counter)
    Labels: name, result (success, failure, rejected)
  - circuit_breaker_consecutive_failures: (gauge)
    Labels: name
  - circuit_breaker_state_transitions_total: (counter)
    Labels: name, from_state, to_state

# Usage Example

Recording a scheduler reconciliation tick:

	start := time.Now()
	s.reconcile(ctx)
	metrics.RecordReconciliationTick(time.Since(start))

Recording a Handler call:

	start := time.Now()
	err := entry.Handler.Create(entry.Operation)
	metrics.RecordHandlerCall("Create", time.Since(start), err)

Recording a watcher spawn:

	start := time.Now()
	_, err := s.spawn(ctx, pw)
	metrics.RecordWatcherSpawn(time.Since(start), err)

Recording an admin HTTP request with middleware:

	func MetricsMiddleware(next http.Handler) http.Handler {
	    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	        start := time.Now()
	        metrics.TrackActiveRequest(true)
	        defer metrics.TrackActiveRequest(false)

	        rw := &responseWriter{ResponseWriter: w, statusCode: 200}
	        next.ServeHTTP(rw, r)

	        metrics.RecordAPIRequest(r.Method, r.URL.Path, strconv.Itoa(rw.statusCode), time.Since(start))
	    })
	}

# Prometheus Configuration

Example prometheus.yml configuration:

	scrape_configs:
	  - job_name: 'buildforge'
	    static_configs:
	      - targets: ['localhost:9280']
	    metrics_path: '/metrics'
	    scrape_interval: 15s

# Grafana Dashboards

The metrics support Grafana dashboards with panels for:

  - Build queue depth and running builds over time
  - Reconciliation tick duration (p50, p95, p99)
  - Handler call error rate by method
  - Watcher spawn success rate and circuit breaker state
  - Admin HTTP request rate and latency

Example PromQL queries:

	# Build throughput
	rate(build_duration_seconds_count{outcome="success"}[5m])

	# Reconciliation tick p95 latency
	histogram_quantile(0.95, rate(reconciliation_tick_duration_seconds_bucket[5m]))

	# Handler error rate
	sum(rate(handler_calls_total{outcome="error"}[5m])) by (method)

	# Watcher spawn failure rate
	rate(watcher_spawn_total{outcome="error"}[5m])

	# Cache hit rate
	sum(rate(cache_hits_total[5m])) / (sum(rate(cache_hits_total[5m])) + sum(rate(cache_misses_total[5m])))

# Performance Impact

Metrics collection overhead:
  - Counter increment: ~100ns per operation
  - Histogram observation: ~500ns per operation
  - Memory overhead: ~5KB per metric time series
  - Total overhead: <1% CPU, <10MB RAM for typical workloads

# Thread Safety

All metric recording functions are thread-safe and designed for concurrent use
from multiple goroutines. The Prometheus client library handles synchronization
internally.

# Cardinality Management

To prevent high cardinality issues:
  - Endpoint labels are normalized (no path parameters, no query parameters)
  - Status codes are kept as exact codes, bounded by the admin API's small route set
  - subject labels on EventBus metrics are the fixed set of subjects this service
    publishes (project status, queue ranks, operation events)

Maximum cardinality per metric:
  - api_requests_total: low tens of series (few methods × few admin endpoints × status codes)
  - handler_calls_total: single digits (1 method × 2 outcomes)
  - circuit_breaker_state: one series per named breaker (currently one: watcher spawn)

# Alerting Rules

Example Prometheus alerting rules:

	groups:
	  - name: buildforge
	    rules:
	      - alert: BuildQueueBacklog
	        expr: build_queue_depth > 20
	        for: 10m
	        annotations:
	          summary: "Build queue depth is {{ $value }}"

	      - alert: HandlerErrorRate
	        expr: |
	          sum(rate(handler_calls_total{outcome="error"}[5m]))
	          /
	          sum(rate(handler_calls_total[5m]))
	          > 0.05
	        for: 5m
	        annotations:
	          summary: "High handler error rate: {{ $value }}%"

	      - alert: WatcherSpawnCircuitOpen
	        expr: circuit_breaker_state{name="watcher_spawn"} == 2
	        for: 1m
	        annotations:
	          summary: "Watcher spawn circuit breaker is open"

# Debugging

Inspect the endpoint directly:

	# View all registered metrics
	curl http://localhost:9280/metrics | grep "# HELP"

	# Check a specific metric
	curl http://localhost:9280/metrics | grep build_queue_depth

	# Validate Prometheus format
	promtool check metrics http://localhost:9280/metrics

# Best Practices

When adding new metrics:

 1. Use appropriate metric types: Counter for cumulative totals, Gauge for
    values that go up and down, Histogram for distributions
 2. Keep label cardinality low: avoid per-project or per-build-ID labels
 3. Name metrics with a unit suffix (_seconds, _total, _bytes)
 4. Register metrics via promauto at package init so /metrics never omits them

# See Also

  - github.com/prometheus/client_golang: Underlying Prometheus client library
  - internal/scheduler: Emits Build Scheduler metrics
  - internal/watcher: Emits Watcher Supervisor and circuit breaker metrics
  - internal/middleware: Wires admin HTTP request metrics
*/
package metrics
