// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

// Package handlerregistry provides a default in-memory implementation of
// the Handler Registry external contract (spec §6): resolving a project to
// the Handler that knows how to build, delete, and watch it.
package handlerregistry

import (
	"sync"

	"github.com/buildforge/buildforge/internal/coreerr"
	"github.com/buildforge/buildforge/internal/models"
)

// Registry is the external contract the Lifecycle Coordinator consumes
// (spec §6).
type Registry interface {
	AllProjectTypes() []string
	DetermineProjectType(location string) (string, error)
	ProjectHandler(info *models.ProjectInfo) (models.Handler, error)
	ProjectCapabilities(handler models.Handler) models.HandlerCapabilities
}

// DetectFunc inspects a project's on-disk location and returns the project
// type it recognises, or "" if it does not recognise it. Registered
// detectors are tried in registration order; this mirrors the out-of-scope
// "project-type auto-detection" collaborator named in spec §1: the
// registry owns only the lookup-by-type half of the contract, not the
// detection heuristics themselves, which callers plug in via RegisterDetector.
type DetectFunc func(location string) (projectType string, ok bool)

// InMemory is the default Registry: a map from project type to Handler,
// populated at startup by the binary wiring handlers in, plus an optional
// chain of DetectFuncs for DetermineProjectType.
type InMemory struct {
	mu       sync.RWMutex
	handlers map[string]models.Handler
	detect   []DetectFunc
}

// New creates an empty registry.
func New() *InMemory {
	return &InMemory{
		handlers: make(map[string]models.Handler),
	}
}

// RegisterHandler adds a Handler under its SupportedType().
func (r *InMemory) RegisterHandler(h models.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[h.SupportedType()] = h
}

// RegisterDetector appends a detection function tried, in order, by
// DetermineProjectType.
func (r *InMemory) RegisterDetector(d DetectFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.detect = append(r.detect, d)
}

// AllProjectTypes returns every registered project type.
func (r *InMemory) AllProjectTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	return types
}

// DetermineProjectType runs registered detectors against location in
// order, returning the first match. Returns coreerr.NotFound (mapped to
// FILE_NOT_EXIST / 404 per spec §4.D step 4) if none recognise it.
func (r *InMemory) DetermineProjectType(location string) (string, error) {
	r.mu.RLock()
	detectors := append([]DetectFunc(nil), r.detect...)
	r.mu.RUnlock()

	for _, d := range detectors {
		if t, ok := d(location); ok {
			return t, nil
		}
	}
	return "", coreerr.NotFound("no handler recognises project at %s", location)
}

// ProjectHandler resolves a ProjectInfo's handler by its ProjectType.
func (r *InMemory) ProjectHandler(info *models.ProjectInfo) (models.Handler, error) {
	if info == nil {
		return nil, coreerr.BadRequest("project info is required")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[info.ProjectType]
	if !ok {
		return nil, coreerr.NotFound("no handler registered for project type %q", info.ProjectType)
	}
	return h, nil
}

// ProjectCapabilities returns the handler's advertised capabilities.
func (r *InMemory) ProjectCapabilities(handler models.Handler) models.HandlerCapabilities {
	if handler == nil {
		return models.HandlerCapabilities{}
	}
	return handler.Capabilities()
}
