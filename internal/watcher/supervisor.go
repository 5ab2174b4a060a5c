// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

// Package watcher implements the Watcher Supervisor (spec §4.B): one
// detached child process per project that watches its filesystem and
// reports build-trigger events back into the system out of band.
package watcher

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/process"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/buildforge/buildforge/internal/metrics"
)

// Config controls the Watcher Supervisor.
type Config struct {
	// InCluster disables process-table scanning and spawning entirely;
	// a cluster-managed environment runs watchers some other way (IN_K8).
	InCluster bool
	// ScriptPath is the project-watcher executable to spawn and to match
	// command lines against during a process-table scan.
	ScriptPath string
	// WorkspaceOrigin is the second positional argument of every spawned
	// watcher process.
	WorkspaceOrigin string
	// PortalPort is the last positional argument (9191 HTTPS, else 9090).
	PortalPort int
	// SpawnRatePerSecond throttles detached process spawns during a
	// bulk-create burst.
	SpawnRatePerSecond float64
}

// ProjectWatch describes the watcher arguments derived from a project
// (spec §4.B step 3).
type ProjectWatch struct {
	ProjectID    string
	ProjectType  string
	Location     string
	WatchedFiles []string
	IgnoredFiles []string
}

// genericContainerProjectType is the plain container project type (spec
// §4.B step 4, spec.md's own Create examples use type="docker" for it).
const genericContainerProjectType = "docker"

// Supervisor manages one long-lived watcher child process per project.
type Supervisor struct {
	cfg    Config
	logger zerolog.Logger

	mu    sync.Mutex
	pids  map[string]int
	locks map[string]*sync.Mutex

	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[int]
}

// NewSupervisor creates a Supervisor. Pass the *zerolog.Logger the rest of
// the process shares; the supervisor derives its own component-scoped
// child logger from it.
func NewSupervisor(cfg Config, logger *zerolog.Logger) *Supervisor {
	if cfg.SpawnRatePerSecond <= 0 {
		cfg.SpawnRatePerSecond = 5
	}

	s := &Supervisor{
		cfg:     cfg,
		logger:  logger.With().Str("component", "watcher-supervisor").Logger(),
		pids:    make(map[string]int),
		locks:   make(map[string]*sync.Mutex),
		limiter: rate.NewLimiter(rate.Limit(cfg.SpawnRatePerSecond), 1),
	}

	s.breaker = gobreaker.NewCircuitBreaker[int](gobreaker.Settings{
		Name:        "watcher-spawn",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("watcher spawn circuit breaker state change")
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			metrics.CircuitBreakerState.WithLabelValues(name).Set(circuitStateValue(to))
		},
	})

	return s
}

// RunWithContext blocks until ctx is cancelled. The supervisor has no
// periodic work of its own: spawns and kills happen synchronously as
// EnsureWatcher/KillWatchers are called from the Build Scheduler and
// Lifecycle Coordinator, so this exists only to satisfy the
// suture.Service contract and to log the supervisor's lifecycle.
func (s *Supervisor) RunWithContext(ctx context.Context) error {
	if s.cfg.InCluster {
		s.logger.Info().Msg("watcher supervisor disabled: running in cluster-managed environment")
	} else {
		s.logger.Info().Str("script_path", s.cfg.ScriptPath).Msg("watcher supervisor started")
	}
	<-ctx.Done()
	return ctx.Err()
}

// EnsureWatcher runs the create-time sequence (spec §4.B steps 1-4): kill
// any lingering watcher processes for this project, then spawn a fresh
// one. A no-op when InCluster is set.
func (s *Supervisor) EnsureWatcher(ctx context.Context, pw ProjectWatch) error {
	if s.cfg.InCluster {
		return nil
	}

	unlock := s.lockProject(pw.ProjectID)
	defer unlock()

	start := time.Now()
	if err := s.killLingering(pw.ProjectID, pw.Location); err != nil {
		s.logger.Warn().Err(err).Str("project_id", pw.ProjectID).Msg("watcher supervisor: scan-and-kill failed")
	}

	pid, err := s.breaker.Execute(func() (int, error) {
		return s.spawn(ctx, pw)
	})
	metrics.RecordWatcherSpawn(time.Since(start), err)
	if err != nil {
		return fmt.Errorf("spawn watcher for project %s: %w", pw.ProjectID, err)
	}

	s.mu.Lock()
	s.pids[pw.ProjectID] = pid
	s.mu.Unlock()
	metrics.WatcherProcessesManaged.Set(float64(s.managedCount()))

	return nil
}

// KillWatchers runs the delete-time sequence (spec §4.B steps 1-2 only):
// scan and kill, no spawn. A no-op when InCluster is set.
func (s *Supervisor) KillWatchers(projectID, location string) error {
	if s.cfg.InCluster {
		return nil
	}

	unlock := s.lockProject(projectID)
	defer unlock()

	err := s.killLingering(projectID, location)

	s.mu.Lock()
	delete(s.pids, projectID)
	delete(s.locks, projectID)
	s.mu.Unlock()
	metrics.WatcherProcessesManaged.Set(float64(s.managedCount()))

	return err
}

func (s *Supervisor) managedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pids)
}

// lockProject returns an unlock func for the per-project mutex, creating
// it on first use. This bounds scan+spawn/kill to one outstanding
// operation per project (spec §4.B implementation note) without a
// process-wide semaphore that would serialise unrelated projects.
func (s *Supervisor) lockProject(projectID string) func() {
	s.mu.Lock()
	l, ok := s.locks[projectID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[projectID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// killLingering scans the process table for watcher processes whose
// command line references location (suffixed with "/" to avoid prefix
// collisions between projects sharing a name prefix), killing every match.
// If the in-memory pid table has an entry for this project, only that pid is
// targeted (nothing is killed if it no longer exists); otherwise the full
// table is scanned (spec §4.B implementation note: crash-recovery fallback).
func (s *Supervisor) killLingering(projectID, location string) error {
	s.mu.Lock()
	knownPID, haveKnown := s.pids[projectID]
	s.mu.Unlock()

	procs, err := process.Processes()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	suffixed := strings.TrimSuffix(location, "/") + "/"
	scriptMarker := s.cfg.ScriptPath + " " + strings.TrimSuffix(location, "/") + " "

	var killErrs []error
	matched := 0
	for _, p := range procs {
		if haveKnown && int(p.Pid) != knownPID {
			continue
		}

		cmdline, err := p.Cmdline()
		if err != nil {
			continue
		}
		if !matchesWatcher(cmdline, scriptMarker, suffixed) {
			continue
		}

		matched++
		if err := p.Kill(); err != nil {
			killErrs = append(killErrs, fmt.Errorf("kill pid %d: %w", p.Pid, err))
			continue
		}
		metrics.RecordWatcherKill()
		s.logger.Info().Str("project_id", projectID).Int32("pid", p.Pid).Msg("watcher supervisor: killed lingering watcher")
	}

	if matched == 0 {
		return nil
	}
	if len(killErrs) > 0 {
		return fmt.Errorf("%d of %d kills failed: %v", len(killErrs), matched, killErrs)
	}
	return nil
}

// matchesWatcher applies the two identifier patterns from spec §4.B step 1.
func matchesWatcher(cmdline, scriptMarker, locationSlash string) bool {
	if strings.Contains(cmdline, scriptMarker) {
		return true
	}
	return strings.Contains(cmdline, locationSlash)
}

// spawn launches one detached project-watcher process (spec §4.B steps 3-4).
func (s *Supervisor) spawn(ctx context.Context, pw ProjectWatch) (int, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limiter: %w", err)
	}

	watchedFiles := pw.WatchedFiles
	if len(watchedFiles) == 0 && pw.ProjectType == genericContainerProjectType {
		watchedFiles = []string{pw.Location + "/"}
	}

	args := []string{
		pw.Location,
		s.cfg.WorkspaceOrigin,
		pw.ProjectID,
		"localhost",
		csvOrEmpty(watchedFiles),
		csvOrEmpty(pw.IgnoredFiles),
		"",
		strconv.Itoa(s.cfg.PortalPort),
	}

	cmd := exec.Command(s.cfg.ScriptPath, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start watcher process: %w", err)
	}

	// Detach: the watcher outlives this call and is reaped only by a
	// future scan-and-kill, never by waiting on it here.
	go func() { _ = cmd.Process.Release() }()

	s.logger.Info().
		Str("project_id", pw.ProjectID).
		Int("pid", cmd.Process.Pid).
		Str("location", pw.Location).
		Msg("watcher supervisor: spawned watcher")

	return cmd.Process.Pid, nil
}

func csvOrEmpty(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return strings.Join(values, ",")
}

func circuitStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
