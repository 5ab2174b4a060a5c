// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

package main

import (
	"context"

	"github.com/buildforge/buildforge/internal/lifecycle"
	"github.com/buildforge/buildforge/internal/scheduler"
	"github.com/buildforge/buildforge/internal/watcher"
)

// schedulerWatcherAdapter and lifecycleWatcherAdapter exist because
// scheduler.ProjectWatch, lifecycle.ProjectWatch, and watcher.ProjectWatch
// are three distinct named types with identical fields: each package
// declares its own to avoid importing internal/watcher just for one
// struct shape. Go requires exact type identity for interface
// satisfaction, so a bare *watcher.Supervisor does not itself implement
// scheduler.WatcherSupervisor or lifecycle.WatcherSupervisor; these
// wrappers convert at the call boundary instead.
type schedulerWatcherAdapter struct {
	*watcher.Supervisor
}

func (a schedulerWatcherAdapter) EnsureWatcher(ctx context.Context, pw scheduler.ProjectWatch) error {
	return a.Supervisor.EnsureWatcher(ctx, watcher.ProjectWatch(pw))
}

// lifecycleWatcherAdapter embeds *watcher.Supervisor so KillWatchers, whose
// signature has no package-local type to convert, is promoted unchanged;
// only EnsureWatcher needs the ProjectWatch conversion.
type lifecycleWatcherAdapter struct {
	*watcher.Supervisor
}

func (a lifecycleWatcherAdapter) EnsureWatcher(ctx context.Context, pw lifecycle.ProjectWatch) error {
	return a.Supervisor.EnsureWatcher(ctx, watcher.ProjectWatch(pw))
}
