// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

package services

import (
	"context"
)

// EventPublisher interface matches *eventbus.Bus's RunWithContext method.
//
// This interface allows the EventBusService to work with the default
// EventBus without importing the eventbus package, avoiding circular
// dependencies.
//
// Satisfied by *eventbus.Bus from internal/eventbus/nats.go (or
// internal/eventbus/stub.go in a build without the nats tag).
type EventPublisher interface {
	RunWithContext(ctx context.Context) error
}

// EventBusService wraps the default EventBus publisher as a supervised
// service.
//
// Example usage:
//
//	bus, _ := eventbus.New(eventbus.DefaultConfig(), logger)
//	svc := services.NewEventBusService(bus)
//	tree.AddEventsService(svc)
type EventBusService struct {
	bus  EventPublisher
	name string
}

// NewEventBusService creates a new EventBus service wrapper.
func NewEventBusService(bus EventPublisher) *EventBusService {
	return &EventBusService{
		bus:  bus,
		name: "eventbus-publisher",
	}
}

// Serve implements suture.Service.
func (e *EventBusService) Serve(ctx context.Context) error {
	return e.bus.RunWithContext(ctx)
}

// String implements fmt.Stringer for logging.
func (e *EventBusService) String() string {
	return e.name
}
