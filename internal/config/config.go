// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

// Package config loads and validates process-wide configuration for the
// project lifecycle and build scheduler core.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in sensible defaults for every setting below.
//  2. Config File: optional YAML file (CONFIG_PATH or a default search path).
//  3. Environment Variables: override any setting, including the legacy
//     flat names recognised by the original service (MC_MAX_BUILDS, IN_K8,
//     PORTAL_HTTPS).
package config

import (
	"fmt"
	"time"
)

// SchedulerConfig controls the Build Scheduler (§4.C).
type SchedulerConfig struct {
	// MaxBuilds bounds concurrent in-flight builds. Overridden by MC_MAX_BUILDS.
	MaxBuilds int `koanf:"max_builds" validate:"min=1"`
	// ReconcileInterval is the reconciliation tick period. Spec default 5s.
	ReconcileInterval time.Duration `koanf:"reconcile_interval"`
}

// WatcherConfig controls the Watcher Supervisor (§4.B).
type WatcherConfig struct {
	// InCluster disables process-table scanning and spawning entirely.
	// Sourced from IN_K8.
	InCluster bool `koanf:"in_cluster"`
	// SpawnRatePerSecond throttles detached watcher-process spawns during
	// a bulk-create burst.
	SpawnRatePerSecond float64 `koanf:"spawn_rate_per_second" validate:"min=0.1"`
	// WorkspaceOrigin is the second positional argument passed to every
	// spawned watcher process.
	WorkspaceOrigin string `koanf:"workspace_origin" validate:"required"`
	// ScriptPath is the project-watcher executable the supervisor spawns
	// one instance of per project, and whose command line it matches
	// against when scanning for lingering processes (§4.B).
	ScriptPath string `koanf:"script_path" validate:"required"`
}

// PortalConfig determines the portal port the Watcher Supervisor passes to
// spawned watcher processes (§4.B).
type PortalConfig struct {
	// HTTPS selects port 9191 instead of 9090. Sourced from PORTAL_HTTPS.
	HTTPS bool `koanf:"https"`
}

// StoreConfig controls the Project Info Store's on-disk layout (§6).
type StoreConfig struct {
	DataDir string `koanf:"data_dir" validate:"required"`
	LogsDir string `koanf:"logs_dir" validate:"required"`
	// WriteWorkers bounds the background disk-write worker pool.
	WriteWorkers int `koanf:"write_workers" validate:"min=1"`
}

// EventBusConfig controls the default NATS-backed EventBus publisher.
type EventBusConfig struct {
	// Embedded runs an in-process NATS server instead of dialing an
	// external one. Suitable for single-binary deployments and tests.
	Embedded bool   `koanf:"embedded"`
	URL      string `koanf:"url"`
}

// DashboardConfig controls the gorilla/websocket live-status hub.
type DashboardConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// AdminConfig controls the ambient health/metrics HTTP surface.
type AdminConfig struct {
	Addr              string        `koanf:"addr"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	RateLimitPerMin   int           `koanf:"rate_limit_per_min" validate:"min=1"`
}

// LoggingConfig controls the zerolog facade (internal/logging).
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Config is the root configuration object for the service.
type Config struct {
	Scheduler SchedulerConfig `koanf:"scheduler"`
	Watcher   WatcherConfig   `koanf:"watcher"`
	Portal    PortalConfig    `koanf:"portal"`
	Store     StoreConfig     `koanf:"store"`
	EventBus  EventBusConfig  `koanf:"eventbus"`
	Dashboard DashboardConfig `koanf:"dashboard"`
	Admin     AdminConfig     `koanf:"admin"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// PortalPort returns the watcher-process portal port per §4.B: 9191 when
// the portal runs HTTPS, else 9090.
func (c *Config) PortalPort() int {
	if c.Portal.HTTPS {
		return 9191
	}
	return 9090
}

// defaultConfig returns the built-in defaults layer, loaded first by
// LoadWithKoanf before the YAML file and environment overrides are applied.
func defaultConfig() *Config {
	return &Config{
		Scheduler: SchedulerConfig{
			MaxBuilds:         3,
			ReconcileInterval: 5 * time.Second,
		},
		Watcher: WatcherConfig{
			InCluster:          false,
			SpawnRatePerSecond: 5,
			WorkspaceOrigin:    "localhost",
			ScriptPath:         "/usr/local/bin/project-watcher.sh",
		},
		Portal: PortalConfig{HTTPS: false},
		Store: StoreConfig{
			DataDir:      "/var/lib/buildforge/projects",
			LogsDir:      "/var/log/buildforge/projects",
			WriteWorkers: 4,
		},
		EventBus: EventBusConfig{
			Embedded: true,
			URL:      "nats://127.0.0.1:4222",
		},
		Dashboard: DashboardConfig{
			Enabled: true,
			Addr:    ":9290",
		},
		Admin: AdminConfig{
			Addr:              ":9280",
			ReadHeaderTimeout: 5 * time.Second,
			RateLimitPerMin:   600,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Caller: false,
		},
	}
}

// Validate checks that the loaded configuration is internally consistent,
// composing small per-section validators in the teacher's style rather than
// one monolithic check.
func (c *Config) Validate() error {
	if err := c.validateScheduler(); err != nil {
		return err
	}
	if err := c.validateWatcher(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	return c.validateAdmin()
}

func (c *Config) validateScheduler() error {
	// Boundary behavior (§8): MC_MAX_BUILDS=0 or non-integer defaults to 3
	// rather than failing validation; Load applies applyMaxBuildsBoundary
	// before Validate runs, so a non-positive value here only reaches a
	// Config that was built without going through Load.
	if c.Scheduler.MaxBuilds < 1 {
		return fmt.Errorf("scheduler.max_builds must be >= 1, got %d", c.Scheduler.MaxBuilds)
	}
	if c.Scheduler.ReconcileInterval <= 0 {
		return fmt.Errorf("scheduler.reconcile_interval must be positive, got %s", c.Scheduler.ReconcileInterval)
	}
	return nil
}

func (c *Config) validateWatcher() error {
	if c.Watcher.SpawnRatePerSecond <= 0 {
		return fmt.Errorf("watcher.spawn_rate_per_second must be positive, got %f", c.Watcher.SpawnRatePerSecond)
	}
	if c.Watcher.WorkspaceOrigin == "" {
		return fmt.Errorf("watcher.workspace_origin is required")
	}
	if c.Watcher.ScriptPath == "" {
		return fmt.Errorf("watcher.script_path is required")
	}
	return nil
}

func (c *Config) validateStore() error {
	if c.Store.DataDir == "" {
		return fmt.Errorf("store.data_dir is required")
	}
	if c.Store.LogsDir == "" {
		return fmt.Errorf("store.logs_dir is required")
	}
	if c.Store.WriteWorkers < 1 {
		return fmt.Errorf("store.write_workers must be >= 1, got %d", c.Store.WriteWorkers)
	}
	return nil
}

func (c *Config) validateAdmin() error {
	if c.Admin.RateLimitPerMin < 1 {
		return fmt.Errorf("admin.rate_limit_per_min must be >= 1, got %d", c.Admin.RateLimitPerMin)
	}
	return nil
}
