// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

package services

import (
	"context"
	"fmt"
)

// BuildSchedulerManager matches the Build Scheduler's lifecycle
// (spec §4.C, §5). Satisfied by *scheduler.Scheduler.
type BuildSchedulerManager interface {
	Start(ctx context.Context) error
	Stop() error
}

// BuildSchedulerService wraps the Build Scheduler as a supervised service,
// adapting its Start/Stop lifecycle to suture's Serve pattern:
//  1. Calls Start(ctx) to begin the reconciliation loop.
//  2. Waits for context cancellation.
//  3. Calls Stop() for graceful shutdown.
type BuildSchedulerService struct {
	manager BuildSchedulerManager
	name    string
}

// NewBuildSchedulerService creates a new Build Scheduler service wrapper.
//
// Example usage:
//
//	sched := scheduler.New(store, statusController, watcherSupervisor, eventBus, logger, cfg)
//	svc := services.NewBuildSchedulerService(sched)
//	tree.AddSchedulingService(svc)
func NewBuildSchedulerService(manager BuildSchedulerManager) *BuildSchedulerService {
	return &BuildSchedulerService{
		manager: manager,
		name:    "build-scheduler",
	}
}

// Serve implements suture.Service.
//
// If Start() fails, the error is returned immediately, causing suture to
// restart the service according to its backoff policy.
func (s *BuildSchedulerService) Serve(ctx context.Context) error {
	if err := s.manager.Start(ctx); err != nil {
		return fmt.Errorf("build scheduler start failed: %w", err)
	}

	<-ctx.Done()

	if err := s.manager.Stop(); err != nil {
		return fmt.Errorf("build scheduler stop failed: %w", err)
	}

	return ctx.Err()
}

// String implements fmt.Stringer. Suture uses this to identify the service
// in log messages.
func (s *BuildSchedulerService) String() string {
	return s.name
}
