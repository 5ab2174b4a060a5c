// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

package metrics

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

// histogramSampleCount returns how many observations h has recorded.
func histogramSampleCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	m := &dto.Metric{}
	if err := h.Write(m); err != nil {
		t.Fatalf("failed to read histogram: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestRecordReconciliationTick(t *testing.T) {
	t.Parallel()

	before := histogramSampleCount(t, ReconciliationTickDuration)
	RecordReconciliationTick(50 * time.Millisecond)
	after := histogramSampleCount(t, ReconciliationTickDuration)

	if after <= before {
		t.Errorf("expected observation count to increase, before=%d after=%d", before, after)
	}
}

func TestRecordReconciliationError(t *testing.T) {
	t.Parallel()

	tests := []string{"admit", "reap", "emit_ranks"}
	for _, stage := range tests {
		stage := stage
		t.Run(stage, func(t *testing.T) {
			t.Parallel()
			before := testutil.ToFloat64(ReconciliationErrors.WithLabelValues(stage))
			RecordReconciliationError(stage)
			after := testutil.ToFloat64(ReconciliationErrors.WithLabelValues(stage))

			if after != before+1 {
				t.Errorf("expected counter to increment by 1, before=%v after=%v", before, after)
			}
		})
	}
}

func TestRecordBuildCompletion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		outcome  string
		duration time.Duration
	}{
		{"success", 30 * time.Second},
		{"failed", 5 * time.Second},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.outcome, func(t *testing.T) {
			t.Parallel()
			h := BuildDuration.WithLabelValues(tt.outcome).(prometheus.Histogram)
			before := histogramSampleCount(t, h)
			RecordBuildCompletion(tt.outcome, tt.duration)
			after := histogramSampleCount(t, h)

			if after <= before {
				t.Errorf("expected observation count to increase for outcome %s", tt.outcome)
			}
		})
	}
}

func TestRecordHandlerCall(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		before := testutil.ToFloat64(HandlerCallsTotal.WithLabelValues("Build", "success"))
		RecordHandlerCall("Build", 10*time.Millisecond, nil)
		after := testutil.ToFloat64(HandlerCallsTotal.WithLabelValues("Build", "success"))

		if after != before+1 {
			t.Errorf("expected success counter to increment, before=%v after=%v", before, after)
		}
	})

	t.Run("error", func(t *testing.T) {
		t.Parallel()
		before := testutil.ToFloat64(HandlerCallsTotal.WithLabelValues("Start", "error"))
		RecordHandlerCall("Start", 10*time.Millisecond, errors.New("spawn failed"))
		after := testutil.ToFloat64(HandlerCallsTotal.WithLabelValues("Start", "error"))

		if after != before+1 {
			t.Errorf("expected error counter to increment, before=%v after=%v", before, after)
		}
	})
}

func TestRecordWatcherSpawn(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		before := testutil.ToFloat64(WatcherSpawnTotal.WithLabelValues("success"))
		RecordWatcherSpawn(5*time.Millisecond, nil)
		after := testutil.ToFloat64(WatcherSpawnTotal.WithLabelValues("success"))

		if after != before+1 {
			t.Errorf("expected success counter to increment, before=%v after=%v", before, after)
		}
	})

	t.Run("error", func(t *testing.T) {
		t.Parallel()
		before := testutil.ToFloat64(WatcherSpawnTotal.WithLabelValues("error"))
		RecordWatcherSpawn(5*time.Millisecond, errors.New("exec failed"))
		after := testutil.ToFloat64(WatcherSpawnTotal.WithLabelValues("error"))

		if after != before+1 {
			t.Errorf("expected error counter to increment, before=%v after=%v", before, after)
		}
	})
}

func TestRecordWatcherKill(t *testing.T) {
	t.Parallel()

	before := testutil.ToFloat64(WatcherKillTotal)
	RecordWatcherKill()
	after := testutil.ToFloat64(WatcherKillTotal)

	if after != before+1 {
		t.Errorf("expected counter to increment by 1, before=%v after=%v", before, after)
	}
}

func TestRecordWatcherReconcile(t *testing.T) {
	t.Parallel()

	before := histogramSampleCount(t, WatcherReconcileDuration)
	RecordWatcherReconcile(100 * time.Millisecond)
	after := histogramSampleCount(t, WatcherReconcileDuration)

	if after <= before {
		t.Error("expected observation count to increase")
	}
}

func TestRecordEventBusPublish(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		before := testutil.ToFloat64(EventBusMessagesPublished.WithLabelValues("status"))
		RecordEventBusPublish("status", time.Millisecond, nil)
		after := testutil.ToFloat64(EventBusMessagesPublished.WithLabelValues("status"))

		if after != before+1 {
			t.Errorf("expected published counter to increment, before=%v after=%v", before, after)
		}
	})

	t.Run("error", func(t *testing.T) {
		t.Parallel()
		before := testutil.ToFloat64(EventBusPublishErrors.WithLabelValues("ranks"))
		RecordEventBusPublish("ranks", time.Millisecond, errors.New("nats: no responders"))
		after := testutil.ToFloat64(EventBusPublishErrors.WithLabelValues("ranks"))

		if after != before+1 {
			t.Errorf("expected error counter to increment, before=%v after=%v", before, after)
		}
	})
}

func TestRecordAPIRequest(t *testing.T) {
	t.Parallel()

	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/projects", "200"))
	RecordAPIRequest("GET", "/api/v1/projects", "200", 15*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/projects", "200"))

	if after != before+1 {
		t.Errorf("expected counter to increment by 1, before=%v after=%v", before, after)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	t.Parallel()

	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	mid := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(false)
	after := testutil.ToFloat64(APIActiveRequests)

	if mid != before+1 {
		t.Errorf("expected gauge to increment, before=%v mid=%v", before, mid)
	}
	if after != before {
		t.Errorf("expected gauge to return to baseline, before=%v after=%v", before, after)
	}
}

func TestCacheMetrics(t *testing.T) {
	t.Parallel()

	CacheHits.WithLabelValues("project_info").Inc()
	CacheMisses.WithLabelValues("project_info").Inc()
	CacheEvictions.WithLabelValues("project_info").Inc()
	CacheSize.WithLabelValues("project_info").Set(3)

	if got := testutil.ToFloat64(CacheSize.WithLabelValues("project_info")); got != 3 {
		t.Errorf("expected cache size 3, got %v", got)
	}
}

func TestWebSocketMetrics(t *testing.T) {
	t.Parallel()

	before := testutil.ToFloat64(WSConnections)
	WSConnections.Inc()
	after := testutil.ToFloat64(WSConnections)
	if after != before+1 {
		t.Errorf("expected connections gauge to increment, before=%v after=%v", before, after)
	}
	WSConnections.Dec()

	WSMessagesSent.Inc()
	WSMessagesReceived.Inc()
	WSErrors.WithLabelValues("write_timeout").Inc()
}

func TestCircuitBreakerMetrics(t *testing.T) {
	t.Parallel()

	const name = "watcher_spawn"

	CircuitBreakerState.WithLabelValues(name).Set(0)
	CircuitBreakerRequests.WithLabelValues(name, "success").Inc()
	CircuitBreakerRequests.WithLabelValues(name, "failure").Inc()
	CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(2)
	CircuitBreakerTransitions.WithLabelValues(name, "closed", "open").Inc()

	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues(name)); got != 0 {
		t.Errorf("expected state 0 (closed), got %v", got)
	}
	if got := testutil.ToFloat64(CircuitBreakerConsecutiveFailures.WithLabelValues(name)); got != 2 {
		t.Errorf("expected 2 consecutive failures, got %v", got)
	}
}

func TestAppMetrics(t *testing.T) {
	t.Parallel()

	AppInfo.WithLabelValues("0.1.0", "go1.23").Set(1)
	AppUptime.Set(3600)

	if got := testutil.ToFloat64(AppUptime); got != 3600 {
		t.Errorf("expected uptime 3600, got %v", got)
	}
}

func TestConcurrentMetricRecording(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			RecordHandlerCall("Build", time.Millisecond, nil)
			RecordWatcherSpawn(time.Millisecond, nil)
			RecordReconciliationTick(time.Millisecond)
			TrackActiveRequest(true)
			TrackActiveRequest(false)
		}(i)
	}
	wg.Wait()
}

func TestMetricsRegistration(t *testing.T) {
	t.Parallel()

	collectors := []prometheus.Collector{
		BuildQueueDepth,
		RunningBuilds,
		ReconciliationTickDuration,
		ReconciliationErrors,
		BuildDuration,
		HandlerCallsTotal,
		HandlerCallDuration,
		WatcherProcessesManaged,
		WatcherSpawnTotal,
		WatcherKillTotal,
		WatcherSpawnDuration,
		WatcherReconcileDuration,
		EventBusMessagesPublished,
		EventBusPublishErrors,
		EventBusPublishDuration,
		APIRequestsTotal,
		APIRequestDuration,
		APIActiveRequests,
		CacheHits,
		CacheMisses,
		CacheSize,
		CacheEvictions,
		WSConnections,
		WSMessagesSent,
		WSMessagesReceived,
		WSErrors,
		CircuitBreakerState,
		CircuitBreakerRequests,
		CircuitBreakerConsecutiveFailures,
		CircuitBreakerTransitions,
		AppInfo,
		AppUptime,
	}

	for _, c := range collectors {
		if c == nil {
			t.Fatal("found nil collector in registration list")
		}
	}
}

func TestMetricGathering(t *testing.T) {
	t.Parallel()

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Fatalf("GatherAndLint failed: %v", err)
	}
	for _, p := range problems {
		if strings.Contains(p.Text, "buildforge") {
			t.Errorf("lint problem in buildforge metric %s: %s", p.Metric, p.Text)
		}
	}
}

func BenchmarkRecordHandlerCall(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		RecordHandlerCall("Build", time.Millisecond, nil)
	}
}

func BenchmarkRecordReconciliationTick(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		RecordReconciliationTick(time.Millisecond)
	}
}

func BenchmarkTrackActiveRequest(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		TrackActiveRequest(true)
		TrackActiveRequest(false)
	}
}
