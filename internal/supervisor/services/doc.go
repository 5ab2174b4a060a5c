// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

/*
Package services provides suture.Service wrappers for the project lifecycle
and build scheduler core's components.

This package adapts application components to the suture v4 supervision
model, translating various lifecycle patterns (Start/Stop, RunWithContext,
ListenAndServe) into suture's context-aware Serve pattern.

# Overview

Each wrapper implements the suture.Service interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

The wrappers handle:
  - Lifecycle translation (Start/Stop to Serve pattern)
  - Graceful shutdown via context cancellation
  - Error propagation for supervisor restart decisions
  - Service identification via fmt.Stringer

# Available Services

Build Scheduler (BuildSchedulerService):
  - Wraps the Build Scheduler's reconciliation loop (spec §4.C)
  - Converts its Start/Stop lifecycle to Serve
  - Registered on the scheduling layer

Watcher Supervisor (WatcherSupervisorService):
  - Wraps the Watcher Supervisor, whose RunWithContext blocks until shutdown (spec §4.B)
  - Its RunWithContext already matches Serve directly
  - Registered on the watching layer

WebSocket Hub (WebSocketHubService):
  - Wraps the dashboard websocket.Hub with context support
  - Handles client connection cleanup on shutdown
  - Registered on the events layer

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Converts ListenAndServe pattern to Serve
  - Configurable shutdown timeout for draining connections
  - Used for the admin HTTP surface, registered on the events layer

# Usage Example

Creating and registering services:

	import (
	    "net/http"
	    "time"

	    "github.com/buildforge/buildforge/internal/supervisor"
	    "github.com/buildforge/buildforge/internal/supervisor/services"
	)

	func setupSupervisor(server *http.Server, hub *websocket.Hub, sched *scheduler.Scheduler, sup *watcher.Supervisor) {
	    tree, _ := supervisor.NewSupervisorTree(logger, config)

	    schedSvc := services.NewBuildSchedulerService(sched)
	    tree.AddSchedulingService(schedSvc)

	    watchSvc := services.NewWatcherSupervisorService(sup)
	    tree.AddWatchingService(watchSvc)

	    wsSvc := services.NewWebSocketHubService(hub)
	    tree.AddEventsService(wsSvc)

	    httpSvc := services.NewHTTPServerService(server, 30*time.Second)
	    tree.AddEventsService(httpSvc)

	    tree.Serve(ctx)
	}

# Lifecycle Patterns

The package handles three common lifecycle patterns:

Start/Stop Pattern:

	type StartStopper interface {
	    Start(ctx context.Context) error
	    Stop() error
	}

	// Wrapped as:
	func (s *Service) Serve(ctx context.Context) error {
	    if err := s.component.Start(ctx); err != nil {
	        return err
	    }
	    <-ctx.Done()
	    return s.component.Stop()
	}

RunWithContext Pattern:

	type Runner interface {
	    RunWithContext(ctx context.Context) error // blocks until ctx is canceled
	}

	// Wrapped as:
	func (s *Service) Serve(ctx context.Context) error {
	    return s.component.RunWithContext(ctx)
	}

ListenAndServe Pattern:

	type Listener interface {
	    ListenAndServe() error
	    Shutdown(ctx context.Context) error
	}

	// Wrapped as:
	func (s *Service) Serve(ctx context.Context) error {
	    go s.server.ListenAndServe()
	    <-ctx.Done()
	    return s.server.Shutdown(shutdownCtx)
	}

# Error Handling

Return values determine supervisor behavior:

	nil         -> Service stopped cleanly, will not restart
	error       -> Service crashed, supervisor will restart
	ctx.Err()   -> Shutdown requested, normal termination

# Service Identification

All services implement fmt.Stringer for logging:

	func (s *BuildSchedulerService) String() string {
	    return "build-scheduler"
	}

Suture uses this for log messages:

	INFO build-scheduler: starting
	INFO build-scheduler: stopped
	ERROR build-scheduler: restarting after failure

# Thread Safety

All service wrappers are safe for concurrent use:
  - State is protected by mutexes where needed
  - Context cancellation is handled atomically
  - Multiple Serve calls are not supported (undefined behavior)

# See Also

  - internal/supervisor: SupervisorTree that manages these services
  - github.com/thejerf/suture/v4: Underlying supervision library
  - internal/websocket: dashboard WebSocket hub implementation
  - internal/scheduler: Build Scheduler implementation
  - internal/watcher: Watcher Supervisor implementation
*/
package services
