// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

// Package eventbus implements the EventBus external contract (spec §6):
// EmitOnListener(event, payload), fire-and-forget. The NATS
// implementation (built with -tags nats) publishes onto NATS subjects via
// Watermill, bridging into the dashboard WebSocket hub
// (internal/websocket.NATSSubscriber) and any other listener subscribed to
// "buildforge.>". The default build, without the nats tag, gets an in-process stand-in
// that logs instead of publishing across a wire, so the rest of the system
// compiles and runs standalone.
package eventbus

import (
	"time"

	"github.com/goccy/go-json"
)

// EventBus is the fire-and-forget publish contract the Build Scheduler and
// Lifecycle Coordinator emit domain events through.
type EventBus interface {
	EmitOnListener(event string, payload interface{}) error
	Close() error
}

// Config controls the default EventBus implementation.
type Config struct {
	// Embedded runs an in-process NATS server instead of dialing an
	// external one.
	Embedded bool
	// URL is the NATS server to connect to when Embedded is false, or
	// the advertised client URL once the embedded server is up.
	URL string
	// StoreDir is unused when JetStream is disabled (the common case for
	// this bus's fire-and-forget semantics) but is kept so an embedded
	// server can be reconfigured for durability without an API change.
	StoreDir string
	// PublishTimeout bounds how long a single EmitOnListener call may
	// block on a slow or unreachable broker.
	PublishTimeout time.Duration
}

// DefaultConfig returns sane defaults for an embedded, non-durable bus.
func DefaultConfig() Config {
	return Config{
		Embedded:       true,
		URL:            "nats://127.0.0.1:4222",
		PublishTimeout: 5 * time.Second,
	}
}

// Outbound event names (spec §6).
const (
	EventNewProjectAdded        = "newProjectAdded"
	EventProjectDeletion        = "projectDeletion"
	EventProjectLogsListChanged = "projectLogsListChanged"
	// EventStatusUpdate is not spec-named but is how the Status
	// Controller's transition listener (internal/statuscontroller) bridges
	// build-state changes, including EmitRanks's per-project rank
	// messages, onto the same bus and subject namespace.
	EventStatusUpdate = "statusUpdate"
)

// subject is the wildcard-matchable channel every event publishes under;
// internal/websocket.NATSSubscriber subscribes to "buildforge.>".
func subject(event string) string {
	return "buildforge." + event
}

// envelope marshals payload to a JSON object and injects "kind": event at
// the top level, matching internal/websocket.NATSSubscriber's expected
// dashboardEvent wire shape. Spec §6 payloads (e.g. {projectID,
// ignoredPaths}) carry no kind of their own, so both Bus implementations
// add it here rather than at every caller.
func envelope(event string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["kind"] = event

	return json.Marshal(fields)
}

// NewProjectAddedPayload is the §6 outbound shape for EventNewProjectAdded.
type NewProjectAddedPayload struct {
	ProjectID    string   `json:"projectID"`
	IgnoredPaths []string `json:"ignoredPaths,omitempty"`
}

// ProjectDeletionPayload is the §6 outbound shape for EventProjectDeletion.
type ProjectDeletionPayload struct {
	OperationID string `json:"operationId"`
	ProjectID   string `json:"projectID"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
}

// ProjectLogsListChangedPayload is the §6 outbound shape for
// EventProjectLogsListChanged.
type ProjectLogsListChangedPayload struct {
	ProjectID string   `json:"projectID"`
	Type      string   `json:"type"`
	Logs      []string `json:"logs"`
}

// StatusUpdatePayload carries a Status Controller transition onto the bus.
type StatusUpdatePayload struct {
	ProjectID string `json:"projectID"`
	Status    string `json:"status"`
	StatusKey string `json:"statusKey"`
	Message   string `json:"message,omitempty"`
}
