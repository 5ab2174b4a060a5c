// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

/*
Package main is the entry point for the project lifecycle and build
scheduler core.

# Application Architecture

The process wires a three-layer thejerf/suture/v4 supervisor tree:

	RootSupervisor
	├── scheduling layer
	│   └── Build Scheduler (reconciliation loop, spec §4.C)
	├── watching layer
	│   └── Watcher Supervisor (per-project watch processes, spec §4.B)
	└── events layer
	    ├── EventBus publisher (spec §6)
	    ├── dashboard WebSocket hub
	    └── admin HTTP server (/healthz, /readyz, /metrics)

Component initialization order:

 1. Configuration: Koanf v2, layered defaults → YAML file → environment
 2. Logging: zerolog, bridged to slog for the supervisor tree's own logs
 3. Project Info Store: per-project JSON files plus an in-memory cache
 4. Status Controller, Handler Registry: default in-memory implementations
 5. Watcher Supervisor, EventBus: the components other collaborators drive
 6. Build Scheduler, Lifecycle Coordinator: wired against the above
 7. Dashboard WebSocket hub, bridged to Status Controller transitions
 8. Admin HTTP server
 9. Supervisor tree: every component above registered as a suture.Service

The Lifecycle Coordinator (internal/lifecycle) is constructed and kept
running here, but this binary does not itself expose Create/Delete/Action
over HTTP; the RPC/HTTP request dispatcher that would call into it is
named out of scope (spec §1); this entrypoint only serves the ambient
admin endpoints.

# Configuration

See internal/config for the full list of environment variables and
defaults, including the legacy flat names the original service recognised
(MC_MAX_BUILDS, IN_K8, PORTAL_HTTPS).

# Signal Handling

SIGINT and SIGTERM cancel the root context, which:

 1. Stops the admin HTTP server from accepting new connections and drains
    in-flight requests within its configured shutdown timeout
 2. Stops the Watcher Supervisor, killing no in-progress watcher processes
    (they are independent OS processes by design, spec §4.B)
 3. Stops the Build Scheduler's reconciliation loop
 4. Closes the EventBus publisher
 5. Reports any service that failed to stop within the tree's shutdown
    timeout

# See Also

  - internal/config: configuration loading
  - internal/supervisor: the suture.Supervisor tree
  - internal/lifecycle: the Lifecycle Coordinator
  - internal/scheduler: the Build Scheduler
  - internal/watcher: the Watcher Supervisor
  - internal/adminapi: the ambient health/metrics HTTP surface
*/
package main
