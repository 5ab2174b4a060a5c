// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

// Package statuscontroller provides a default in-memory implementation of
// the Status Controller external contract (spec §6): per-project build/app
// state tracking with state-transition notifications.
//
// The Build Scheduler treats the Status Controller as an external
// collaborator reached through this package's Controller interface; this
// default implementation exists so the core is runnable and testable as a
// single binary without a separate state-tracking service.
package statuscontroller

import (
	"sync"

	"github.com/buildforge/buildforge/internal/logging"
	"github.com/buildforge/buildforge/internal/models"
)

// Controller is the external contract the Build Scheduler and Lifecycle
// Coordinator consume (spec §6).
type Controller interface {
	AddProject(projectID string)
	DeleteProject(projectID string)
	UpdateProjectStatus(projectID string, state models.BuildState, statusKey string, params map[string]string)
	GetBuildState(projectID string) (models.BuildState, bool)
}

// TransitionListener is notified on every UpdateProjectStatus call, in the
// order calls are made for a single project (spec §5 ordering guarantee).
type TransitionListener func(projectID string, state models.BuildState, statusKey string, params map[string]string)

// InMemory is the default Controller: a map guarded by a single mutex,
// matching the ancestor codebase's preference for a small guarded struct
// over a dedicated actor goroutine for state this size.
type InMemory struct {
	mu        sync.Mutex
	states    map[string]models.BuildState
	listeners []TransitionListener
}

// New creates an empty in-memory Status Controller.
func New() *InMemory {
	return &InMemory{
		states: make(map[string]models.BuildState),
	}
}

// AddProject registers a project with no build state yet recorded.
func (c *InMemory) AddProject(projectID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.states[projectID]; exists {
		return
	}
	c.states[projectID] = ""
	logging.Debug().Str("project_id", projectID).Msg("status controller: project registered")
}

// DeleteProject removes all tracked state for a project.
func (c *InMemory) DeleteProject(projectID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.states, projectID)
	logging.Debug().Str("project_id", projectID).Msg("status controller: project deregistered")
}

// UpdateProjectStatus records a new build state and notifies listeners.
// Calls for a single project are totally ordered by the caller holding no
// overlapping lock wider than this method's own (spec §5).
func (c *InMemory) UpdateProjectStatus(projectID string, state models.BuildState, statusKey string, params map[string]string) {
	c.mu.Lock()
	c.states[projectID] = state
	listeners := append([]TransitionListener(nil), c.listeners...)
	c.mu.Unlock()

	logging.Debug().
		Str("project_id", projectID).
		Str("state", string(state)).
		Str("status_key", statusKey).
		Msg("status controller: state transition")

	for _, l := range listeners {
		l(projectID, state, statusKey, params)
	}
}

// GetBuildState returns the current build state and whether the project is
// known to the controller at all.
func (c *InMemory) GetBuildState(projectID string) (models.BuildState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.states[projectID]
	return state, ok
}

// OnTransition registers a listener invoked on every UpdateProjectStatus
// call. Used to bridge state transitions onto the EventBus/dashboard hub
// as status_update events without the controller importing internal/eventbus.
func (c *InMemory) OnTransition(l TransitionListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}
