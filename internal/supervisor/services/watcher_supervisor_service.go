// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

package services

import (
	"context"
)

// WatcherSupervisorEngine matches the Watcher Supervisor's RunWithContext
// method (spec §4.B).
//
// This interface allows WatcherSupervisorService to work with the
// supervisor without importing its package, avoiding circular dependencies.
//
// Satisfied by *watcher.Supervisor from internal/watcher/supervisor.go.
type WatcherSupervisorEngine interface {
	// RunWithContext blocks until the context is canceled. Watcher spawns
	// and kills do not happen here; they happen synchronously in
	// EnsureWatcher and KillWatchers.
	RunWithContext(ctx context.Context) error
}

// WatcherSupervisorService wraps the Watcher Supervisor as a supervised
// service.
//
// The Watcher Supervisor has no background processing of its own: watcher
// processes are killed and spawned synchronously by EnsureWatcher and
// KillWatchers, and RunWithContext only blocks until shutdown. The supervisor
// tree will restart this service if it crashes.
//
// Example usage:
//
//	sup := watcher.NewSupervisor(cfg, logger)
//	svc := services.NewWatcherSupervisorService(sup)
//	tree.AddWatchingService(svc)
type WatcherSupervisorService struct {
	engine WatcherSupervisorEngine
	name   string
}

// NewWatcherSupervisorService creates a new Watcher Supervisor service wrapper.
func NewWatcherSupervisorService(engine WatcherSupervisorEngine) *WatcherSupervisorService {
	return &WatcherSupervisorService{
		engine: engine,
		name:   "watcher-supervisor",
	}
}

// Serve implements suture.Service.
//
// This method delegates to engine.RunWithContext, which does no scanning or
// spawning and returns when the context is canceled.
//
// The method returns ctx.Err() on normal shutdown.
func (d *WatcherSupervisorService) Serve(ctx context.Context) error {
	return d.engine.RunWithContext(ctx)
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (d *WatcherSupervisorService) String() string {
	return d.name
}
