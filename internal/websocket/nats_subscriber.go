// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

//go:build nats

package websocket

import (
	"context"
	"sync"

	"github.com/goccy/go-json"

	"github.com/buildforge/buildforge/internal/logging"
)

// dashboardEvent is the wire shape the default EventBus publishes for
// newProjectAdded, projectDeletion, projectLogsListChanged, and status/rank
// broadcasts (spec §1, §4.C, §6). It is a superset envelope: only the
// fields relevant to a given subject are populated.
type dashboardEvent struct {
	Kind      string      `json:"kind"`
	ProjectID string      `json:"projectID,omitempty"`
	Status    string      `json:"status,omitempty"`
	StatusKey string      `json:"statusKey,omitempty"`
	Message   string      `json:"message,omitempty"`
	Ranks     []RankEntry `json:"ranks,omitempty"`
}

// NATSMessageHandler defines the interface for receiving NATS messages.
// This allows the WebSocket subscriber to work with any message source.
type NATSMessageHandler interface {
	// Subscribe subscribes to a topic and returns a channel of messages.
	Subscribe(ctx context.Context, topic string) (<-chan []byte, error)
	// Close releases resources.
	Close() error
}

// NATSSubscriber bridges the default EventBus (NATS/JetStream) to the
// dashboard WebSocket hub. It subscribes to the event subjects and
// re-broadcasts each one as a dashboard Message.
type NATSSubscriber struct {
	hub     *Hub
	handler NATSMessageHandler
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewNATSSubscriber creates a new EventBus-to-WebSocket bridge.
func NewNATSSubscriber(hub *Hub, handler NATSMessageHandler) *NATSSubscriber {
	return &NATSSubscriber{
		hub:     hub,
		handler: handler,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Start begins listening for dashboard events and forwarding them to the hub.
// Subscribes to the "buildforge.>" wildcard to receive all project and
// build lifecycle events.
func (s *NATSSubscriber) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	messages, err := s.handler.Subscribe(ctx, "buildforge.>")
	if err != nil {
		return err
	}

	go s.processMessages(ctx, messages)

	logging.Info().Msg("EventBus to WebSocket subscriber started")
	return nil
}

// Stop stops the subscriber.
func (s *NATSSubscriber) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	<-s.doneCh
	logging.Info().Msg("EventBus to WebSocket subscriber stopped")
}

// processMessages handles incoming EventBus messages.
func (s *NATSSubscriber) processMessages(ctx context.Context, messages <-chan []byte) {
	defer close(s.doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case data, ok := <-messages:
			if !ok {
				return
			}
			s.handleMessage(data)
		}
	}
}

// handleMessage converts a single EventBus payload into a hub broadcast.
func (s *NATSSubscriber) handleMessage(data []byte) {
	var event dashboardEvent
	if err := json.Unmarshal(data, &event); err != nil {
		logging.Warn().Err(err).Msg("failed to unmarshal EventBus event")
		return
	}

	switch {
	case event.Ranks != nil:
		s.hub.BroadcastRanksUpdate(event.Ranks)
	case event.StatusKey != "" || event.Status != "":
		s.hub.BroadcastStatusUpdate(StatusUpdateData{
			ProjectID: event.ProjectID,
			State:     event.Status,
			StatusKey: event.StatusKey,
			Message:   event.Message,
		})
	default:
		s.hub.BroadcastOperationEvent(OperationEventData{
			Kind:      event.Kind,
			ProjectID: event.ProjectID,
			Status:    event.Status,
			Message:   event.Message,
		})
	}
}
