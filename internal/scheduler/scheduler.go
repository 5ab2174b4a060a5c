// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

// Package scheduler implements the Build Scheduler (spec §4.C): a FIFO
// buildQueue, a runningBuilds set bounded by MaxBuilds, and a periodic
// reconciliation tick that reaps terminal builds, admits queued ones, and
// broadcasts rank updates.
package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/buildforge/buildforge/internal/metrics"
	"github.com/buildforge/buildforge/internal/models"
)

// ProjectStore is the subset of the Project Info Store the scheduler needs:
// reading a project's current record to build watcher arguments and
// ignoredPaths for the newProjectAdded event.
type ProjectStore interface {
	Load(projectID string, quiet bool) (*models.ProjectInfo, bool)
}

// StatusController is the subset of the Status Controller external
// contract (spec §6) the scheduler drives.
type StatusController interface {
	AddProject(projectID string)
	UpdateProjectStatus(projectID string, state models.BuildState, statusKey string, params map[string]string)
	GetBuildState(projectID string) (models.BuildState, bool)
}

// ProjectWatch is the watcher argument shape the scheduler hands to
// WatcherSupervisor.EnsureWatcher; it matches watcher.ProjectWatch without
// importing internal/watcher, keeping this package's dependency surface to
// what it actually calls.
type ProjectWatch struct {
	ProjectID    string
	ProjectType  string
	Location     string
	WatchedFiles []string
	IgnoredFiles []string
}

// WatcherSupervisor is the subset of the Watcher Supervisor (spec §4.B) the
// scheduler drives when a build is admitted.
type WatcherSupervisor interface {
	EnsureWatcher(ctx context.Context, pw ProjectWatch) error
}

// EventBus is the subset of the EventBus external contract (spec §6) the
// scheduler publishes through.
type EventBus interface {
	EmitOnListener(event string, payload interface{}) error
}

// Status keys (spec §4.C), carried as params["key"] via UpdateProjectStatus.
const (
	StatusKeyBuildFailMissingFile = "buildscripts.buildFailMissingFile"
	StatusKeyBuildStarted         = "projectStatusController.buildStarted"
	StatusKeyBuildRank            = "projectStatusController.buildRank"
)

// Config controls the Build Scheduler.
type Config struct {
	// MaxBuilds caps the size of runningBuilds. Sourced from MC_MAX_BUILDS.
	MaxBuilds int
	// TickInterval is how often the reconciliation tick runs (spec §4.C: 5s).
	TickInterval time.Duration
}

// DefaultConfig returns the spec-default reconciliation cadence and a
// conservative concurrency cap.
func DefaultConfig() Config {
	return Config{
		MaxBuilds:    3,
		TickInterval: 5 * time.Second,
	}
}

// Scheduler is the Build Scheduler (spec §4.C).
type Scheduler struct {
	store   ProjectStore
	status  StatusController
	watcher WatcherSupervisor
	bus     EventBus
	cfg     Config
	logger  zerolog.Logger

	mu            sync.Mutex
	queue         []*models.BuildQueueEntry
	runningBuilds map[string]*models.BuildQueueEntry

	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	tickCh  chan struct{}
}

// New creates a Build Scheduler. store, status, watcher, and bus are the
// Project Info Store, Status Controller, Watcher Supervisor, and EventBus
// respectively.
func New(store ProjectStore, status StatusController, watcher WatcherSupervisor, bus EventBus, logger *zerolog.Logger, cfg Config) *Scheduler {
	if cfg.MaxBuilds <= 0 {
		cfg.MaxBuilds = 3
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 5 * time.Second
	}

	return &Scheduler{
		store:         store,
		status:        status,
		watcher:       watcher,
		bus:           bus,
		cfg:           cfg,
		logger:        logger.With().Str("component", "build-scheduler").Logger(),
		runningBuilds: make(map[string]*models.BuildQueueEntry),
		tickCh:        make(chan struct{}, 1),
	}
}

// Start begins the reconciliation loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("build scheduler already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	s.logger.Info().Dur("tick_interval", s.cfg.TickInterval).Int("max_builds", s.cfg.MaxBuilds).
		Msg("build scheduler started")

	go s.run(ctx)
	return nil
}

// Stop stops the reconciliation loop and waits for it to exit.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	close(s.stopCh)
	<-s.doneCh

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.logger.Info().Msg("build scheduler stopped")
	return nil
}

// TriggerTickNow schedules an out-of-band reconciliation tick, coalescing
// with any tick already pending (spec §4.C implementation note: concurrent
// manual triggers collapse onto a single slot rather than queueing up).
func (s *Scheduler) TriggerTickNow() {
	select {
	case s.tickCh <- struct{}{}:
	default:
	}
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.reconcile(ctx)
		case <-s.tickCh:
			s.reconcile(ctx)
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Enqueue adds an Operation to the FIFO buildQueue. Enqueue is idempotent
// by project id (invariant: a project already queued or running is not
// added a second time); it returns false when the project was already
// known.
func (s *Scheduler) Enqueue(op *models.Operation, handler models.Handler) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	projectID := op.ProjectInfo.ProjectID
	if _, ok := s.runningBuilds[projectID]; ok {
		return false
	}
	for _, e := range s.queue {
		if e.ProjectID() == projectID {
			return false
		}
	}

	s.queue = append(s.queue, &models.BuildQueueEntry{Operation: op, Handler: handler})
	s.status.AddProject(projectID)
	return true
}

// Remove removes a project's entry from the buildQueue (if present) and
// from runningBuilds (if present). It reports whether anything was
// removed, for the Lifecycle Coordinator's Delete procedure's
// exactly-one-removal assertion (spec §4.D step 3).
func (s *Scheduler) Remove(projectID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := false
	if _, ok := s.runningBuilds[projectID]; ok {
		delete(s.runningBuilds, projectID)
		removed = true
	}
	for i, e := range s.queue {
		if e.ProjectID() == projectID {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			removed = true
			break
		}
	}
	return removed
}

// reconcile runs one tick: reap terminal builds, admit queued ones up to
// MaxBuilds, and broadcast rank updates if the queue changed (spec §4.C).
func (s *Scheduler) reconcile(ctx context.Context) {
	start := time.Now()
	defer func() { metrics.RecordReconciliationTick(time.Since(start)) }()

	reaped := s.reap()
	admitted := s.admit(ctx)

	metrics.BuildQueueDepth.Set(float64(s.queueDepth()))
	metrics.RunningBuilds.Set(float64(s.runningCount()))

	if reaped || admitted {
		s.EmitRanks()
	}
}

// reap removes terminal (success/failed) entries from runningBuilds.
func (s *Scheduler) reap() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for projectID := range s.runningBuilds {
		state, ok := s.status.GetBuildState(projectID)
		if !ok || state.IsTerminal() {
			delete(s.runningBuilds, projectID)
			changed = true
		}
	}
	return changed
}

// admit dequeues up to the available runningBuilds capacity and triggers
// each build.
func (s *Scheduler) admit(ctx context.Context) bool {
	admitted := false
	for {
		entry, ok := s.dequeueIfRoom()
		if !ok {
			break
		}
		s.TriggerBuild(ctx, entry)
		admitted = true
	}
	return admitted
}

func (s *Scheduler) dequeueIfRoom() (*models.BuildQueueEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 || len(s.runningBuilds) >= s.cfg.MaxBuilds {
		return nil, false
	}
	entry := s.queue[0]
	s.queue = s.queue[1:]
	s.runningBuilds[entry.ProjectID()] = entry
	return entry, true
}

// TriggerBuild runs a single admitted build (spec §4.C): validates the
// handler's required files exist at the project's location, fails the
// build without starting it if any are missing, otherwise marks it
// inProgress, fires the handler's Create asynchronously, starts the
// project's watcher, and emits newProjectAdded.
func (s *Scheduler) TriggerBuild(ctx context.Context, entry *models.BuildQueueEntry) {
	projectID := entry.ProjectID()
	info := entry.Operation.ProjectInfo

	// Prefer the freshest persisted record over what was queued: a project
	// can be reconfigured (watched/ignored files, settings merge) while its
	// build is still sitting in the queue.
	if fresh, ok := s.store.Load(projectID, true); ok {
		info = fresh
	}

	if missing, ok := s.firstMissingRequiredFile(entry.Handler, info.Location); !ok {
		s.mu.Lock()
		delete(s.runningBuilds, projectID)
		s.mu.Unlock()

		s.status.UpdateProjectStatus(projectID, models.BuildStateFailed, StatusKeyBuildFailMissingFile,
			map[string]string{"file": missing})
		metrics.RecordBuildCompletion("failed", 0)
		s.logger.Warn().Str("project_id", projectID).Str("file", missing).
			Msg("build scheduler: required file missing, build failed")
		return
	}

	s.status.UpdateProjectStatus(projectID, models.BuildStateInProgress, StatusKeyBuildStarted, nil)

	go func() {
		start := time.Now()
		err := entry.Handler.Create(entry.Operation)
		metrics.RecordHandlerCall("Create", time.Since(start), err)
		if err != nil {
			s.logger.Error().Err(err).Str("project_id", projectID).Msg("build scheduler: handler.Create failed")
		}
	}()

	if err := s.watcher.EnsureWatcher(ctx, ProjectWatch{
		ProjectID:    projectID,
		ProjectType:  info.ProjectType,
		Location:     info.Location,
		WatchedFiles: info.WatchedFiles,
		IgnoredFiles: info.IgnoredFiles,
	}); err != nil {
		s.logger.Warn().Err(err).Str("project_id", projectID).Msg("build scheduler: watcher start failed")
	}

	if err := s.bus.EmitOnListener("newProjectAdded", map[string]interface{}{
		"projectID":    projectID,
		"ignoredPaths": info.IgnoredPaths,
	}); err != nil {
		s.logger.Warn().Err(err).Str("project_id", projectID).Msg("build scheduler: emit newProjectAdded failed")
	}

	s.logger.Info().Str("project_id", projectID).Msg("build scheduler: build triggered")
}

// firstMissingRequiredFile reports the first of the handler's
// RequiredFiles() not present under location, or ("", true) if all are
// present (or none are required).
func (s *Scheduler) firstMissingRequiredFile(handler models.Handler, location string) (string, bool) {
	if handler == nil {
		return "", true
	}
	for _, f := range handler.RequiredFiles() {
		if _, err := os.Stat(filepath.Join(location, f)); err != nil {
			return f, false
		}
	}
	return "", true
}

// EmitRanks compacts the buildQueue and sets every entry's state to
// queued with its 1-indexed rank out of the total (spec §4.C).
func (s *Scheduler) EmitRanks() {
	s.mu.Lock()
	entries := append([]*models.BuildQueueEntry(nil), s.queue...)
	s.mu.Unlock()

	total := len(entries)
	for i, e := range entries {
		rank := fmt.Sprintf("%d/%d", i+1, total)
		s.status.UpdateProjectStatus(e.ProjectID(), models.BuildStateQueued, StatusKeyBuildRank,
			map[string]string{"rank": rank})
	}
}

func (s *Scheduler) queueDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *Scheduler) runningCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.runningBuilds)
}

// Shutdown truncates the buildQueue and runningBuilds without reallocating
// (spec §4.C), leaving the scheduler's backing arrays intact for reuse.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = s.queue[:0]
	for k := range s.runningBuilds {
		delete(s.runningBuilds, k)
	}
}
