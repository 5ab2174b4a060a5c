// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

//go:build !nats

package eventbus

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/buildforge/buildforge/internal/metrics"
)

// Bus is the default EventBus built without the nats tag: it logs every
// event instead of publishing it across a wire, so the rest of the system
// runs standalone without an embedded or external NATS server. Swap it for
// the -tags nats build whenever the dashboard WebSocket bridge
// (internal/websocket.NATSSubscriber) needs something to actually listen
// to.
type Bus struct {
	cfg    Config
	logger zerolog.Logger
}

// New returns a logging-only Bus. It never fails to construct.
func New(cfg Config, logger *zerolog.Logger) (*Bus, error) {
	return &Bus{
		cfg:    cfg,
		logger: logger.With().Str("component", "eventbus").Logger(),
	}, nil
}

// RunWithContext satisfies the suture.Service contract; this Bus has no
// background work.
func (b *Bus) RunWithContext(ctx context.Context) error {
	b.logger.Warn().Msg("eventbus running without NATS support (build with -tags nats for a wired bus)")
	<-ctx.Done()
	return ctx.Err()
}

// EmitOnListener logs the event and always succeeds: there is no broker to
// fail against in this build.
func (b *Bus) EmitOnListener(event string, payload interface{}) error {
	start := time.Now()
	data, err := envelope(event, payload)
	if err != nil {
		metrics.RecordEventBusPublish(event, time.Since(start), err)
		return err
	}
	b.logger.Info().Str("event", event).RawJSON("message", data).Msg("eventbus: emit (no-op transport)")
	metrics.RecordEventBusPublish(event, time.Since(start), nil)
	return nil
}

// Close is a no-op: there is nothing open to release.
func (b *Bus) Close() error {
	return nil
}
