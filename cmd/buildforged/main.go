// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

// Command buildforged is the project lifecycle and build scheduler core's
// process entrypoint. It wires every component named in spec §4 into a
// three-layer thejerf/suture/v4 supervisor tree and serves until a signal
// or an unrecoverable service failure asks it to stop.
//
// Configuration is loaded once at startup (internal/config, layered Koanf:
// defaults, optional YAML file, environment overrides) and never reloaded;
// a config change requires a restart.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/buildforge/buildforge/internal/adminapi"
	"github.com/buildforge/buildforge/internal/config"
	"github.com/buildforge/buildforge/internal/eventbus"
	"github.com/buildforge/buildforge/internal/handlerregistry"
	"github.com/buildforge/buildforge/internal/lifecycle"
	"github.com/buildforge/buildforge/internal/logging"
	"github.com/buildforge/buildforge/internal/models"
	"github.com/buildforge/buildforge/internal/scheduler"
	"github.com/buildforge/buildforge/internal/statuscontroller"
	"github.com/buildforge/buildforge/internal/store"
	"github.com/buildforge/buildforge/internal/supervisor"
	"github.com/buildforge/buildforge/internal/supervisor/services"
	"github.com/buildforge/buildforge/internal/watcher"
	"github.com/buildforge/buildforge/internal/websocket"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("buildforged exited with error")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	zl := logging.WithComponent("buildforged")

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("building supervisor tree: %w", err)
	}

	infoStore := store.New(cfg.Store.DataDir, cfg.Store.LogsDir, cfg.Store.WriteWorkers)
	defer infoStore.Close()

	status := statuscontroller.New()
	registry := handlerregistry.New()

	watcherSupervisor := watcher.NewSupervisor(watcher.Config{
		InCluster:          cfg.Watcher.InCluster,
		ScriptPath:         cfg.Watcher.ScriptPath,
		WorkspaceOrigin:    cfg.Watcher.WorkspaceOrigin,
		PortalPort:         cfg.PortalPort(),
		SpawnRatePerSecond: cfg.Watcher.SpawnRatePerSecond,
	}, &zl)

	bus, err := eventbus.New(eventbus.Config{
		Embedded: cfg.EventBus.Embedded,
		URL:      cfg.EventBus.URL,
	}, &zl)
	if err != nil {
		return fmt.Errorf("building event bus: %w", err)
	}
	defer func() {
		if cerr := bus.Close(); cerr != nil {
			zl.Warn().Err(cerr).Msg("event bus close failed")
		}
	}()

	sched := scheduler.New(infoStore, status, schedulerWatcherAdapter{watcherSupervisor}, bus, &zl, scheduler.Config{
		MaxBuilds:    cfg.Scheduler.MaxBuilds,
		TickInterval: cfg.Scheduler.ReconcileInterval,
	})

	coordinator := lifecycle.New(
		infoStore, infoStore, status, registry,
		lifecycleWatcherAdapter{watcherSupervisor},
		sched, bus, &zl, lifecycle.DefaultConfig(),
	)
	defer coordinator.Shutdown()

	hub := websocket.NewHub()
	status.OnTransition(func(projectID string, state models.BuildState, statusKey string, _ map[string]string) {
		payload := websocket.StatusUpdateData{
			ProjectID: projectID,
			State:     string(state),
			StatusKey: statusKey,
		}
		hub.BroadcastStatusUpdate(payload)
		if err := bus.EmitOnListener("statusUpdate", payload); err != nil {
			zl.Warn().Err(err).Str("project_id", projectID).Msg("statusUpdate publish failed")
		}
	})

	adminServer := &http.Server{
		Addr:              cfg.Admin.Addr,
		Handler:           adminapi.NewRouter(adminapi.Config{RateLimitPerMin: cfg.Admin.RateLimitPerMin}),
		ReadHeaderTimeout: cfg.Admin.ReadHeaderTimeout,
	}

	tree.AddSchedulingService(services.NewBuildSchedulerService(sched))
	tree.AddWatchingService(services.NewWatcherSupervisorService(watcherSupervisor))
	tree.AddEventsService(services.NewEventBusService(bus))
	tree.AddEventsService(services.NewWebSocketHubService(hub))
	tree.AddEventsService(services.NewHTTPServerService(adminServer, 10*time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		zl.Info().Str("signal", sig.String()).Msg("shutdown signal received")
		cancel()
	}()

	zl.Info().
		Str("admin_addr", cfg.Admin.Addr).
		Int("max_builds", cfg.Scheduler.MaxBuilds).
		Msg("buildforged starting")

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			zl.Error().Err(err).Msg("supervisor tree exited unexpectedly")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			zl.Error().Err(err).Msg("service failed during shutdown")
		}
	}

	if unstopped, err := tree.UnstoppedServiceReport(); err != nil {
		zl.Warn().Err(err).Int("unstopped", len(unstopped)).Msg("services did not stop within the shutdown timeout")
	}

	zl.Info().Msg("buildforged stopped gracefully")
	return nil
}
