// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

/*
Package statuscontroller provides a default in-memory Status Controller.

The Status Controller is, per the core's external-interfaces list, a
collaborator the Build Scheduler and Lifecycle Coordinator consume through
a narrow contract:

	AddProject(id)
	DeleteProject(id)
	UpdateProjectStatus(id, state, key, params)
	GetBuildState(id)

A production deployment may replace this with a controller backed by a
separate process or a persistent store; this package's InMemory type is the
default used by single-binary deployments and by every test in this module
that needs a working Controller without standing up external
infrastructure.

# Build States

AddProject registers a project with an empty build state; every
UpdateProjectStatus then sets one of four states: queued, inProgress,
success, or failed. The Build Scheduler uses this state to decide which
collection (buildQueue or runningBuilds) a project belongs in, and to reap
completed builds on its reconciliation tick.

# Transition Listeners

OnTransition registers a callback invoked synchronously, in order, on every
state change for a project. cmd/buildforged uses this to forward Status
Controller transitions to the dashboard WebSocket hub and the event bus
without the controller needing to import either.

# Thread Safety

InMemory is safe for concurrent use; all state is guarded by a single
mutex, matching the scale of this component (a handful of fields protected
by one guard, not a sharded or actor-based design).
*/
package statuscontroller
