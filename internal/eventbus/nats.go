// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

//go:build nats

package eventbus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/buildforge/buildforge/internal/metrics"
)

// Bus is the default EventBus (spec §6): it publishes every event onto a
// NATS subject via Watermill, where internal/websocket.NATSSubscriber and
// any other "buildforge.>" listener picks it up. Publish failures are
// logged and counted, never returned to the caller as a reason to abort:
// EmitOnListener is fire-and-forget by contract.
type Bus struct {
	cfg    Config
	logger zerolog.Logger

	embedded  *embeddedServer
	publisher message.Publisher
	breaker   *gobreaker.CircuitBreaker[interface{}]

	mu     sync.RWMutex
	closed bool
}

// New connects (or, when cfg.Embedded, starts and connects to) a NATS
// server and returns a ready-to-use Bus.
func New(cfg Config, logger *zerolog.Logger) (*Bus, error) {
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 5 * time.Second
	}

	b := &Bus{
		cfg:    cfg,
		logger: logger.With().Str("component", "eventbus").Logger(),
	}

	url := cfg.URL
	if cfg.Embedded {
		srv, err := newEmbeddedServer()
		if err != nil {
			return nil, fmt.Errorf("start embedded NATS server: %w", err)
		}
		b.embedded = srv
		url = srv.URL()
	}

	wmLogger := watermillLogAdapter{logger: b.logger}
	wmConfig := wmNats.PublisherConfig{
		URL: url,
		NatsOptions: []natsgo.Option{
			natsgo.RetryOnFailedConnect(true),
			natsgo.MaxReconnects(10),
			natsgo.ReconnectWait(time.Second),
			natsgo.ErrorHandler(func(_ *natsgo.Conn, sub *natsgo.Subscription, err error) {
				subject := ""
				if sub != nil {
					subject = sub.Subject
				}
				b.logger.Error().Err(err).Str("subject", subject).Msg("eventbus: NATS connection error")
			}),
		},
		Marshaler: &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{Disabled: true},
	}

	pub, err := wmNats.NewPublisher(wmConfig, wmLogger)
	if err != nil {
		if b.embedded != nil {
			b.embedded.Shutdown()
		}
		return nil, fmt.Errorf("create watermill NATS publisher: %w", err)
	}
	b.publisher = pub

	b.breaker = gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        "eventbus-publish",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("eventbus publish circuit breaker state change")
		},
	})

	return b, nil
}

// RunWithContext satisfies the suture.Service contract the events
// supervisor layer requires (spec §5): the bus itself is driven entirely
// by EmitOnListener calls, so this just logs and blocks until shutdown.
func (b *Bus) RunWithContext(ctx context.Context) error {
	b.logger.Info().Msg("eventbus started")
	<-ctx.Done()
	return ctx.Err()
}

// EmitOnListener marshals payload, injects the event kind so
// internal/websocket.NATSSubscriber's dashboardEvent envelope can decode
// it, and publishes it fire-and-forget onto "buildforge.<event>".
func (b *Bus) EmitOnListener(event string, payload interface{}) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return fmt.Errorf("eventbus: closed")
	}
	b.mu.RUnlock()

	data, err := envelope(event, payload)
	if err != nil {
		return fmt.Errorf("eventbus: encode %s: %w", event, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)

	start := time.Now()
	_, err = b.breaker.Execute(func() (interface{}, error) {
		return nil, b.publisher.Publish(subject(event), msg)
	})
	metrics.RecordEventBusPublish(event, time.Since(start), err)

	if err != nil {
		b.logger.Error().Err(err).Str("event", event).Msg("eventbus: publish failed")
	}
	return err
}

// Close shuts down the publisher and, if this Bus started it, the
// embedded server.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	err := b.publisher.Close()
	if b.embedded != nil {
		b.embedded.Shutdown()
	}
	return err
}

// watermillLogAdapter routes Watermill's internal logging through zerolog
// rather than its own stdlib-backed default logger.
type watermillLogAdapter struct {
	logger zerolog.Logger
	fields watermill.LogFields
}

func (w watermillLogAdapter) Error(msg string, err error, fields watermill.LogFields) {
	w.logger.Error().Err(err).Fields(map[string]interface{}(fields)).Msg(msg)
}

func (w watermillLogAdapter) Info(msg string, fields watermill.LogFields) {
	w.logger.Info().Fields(map[string]interface{}(fields)).Msg(msg)
}

func (w watermillLogAdapter) Debug(msg string, fields watermill.LogFields) {
	w.logger.Debug().Fields(map[string]interface{}(fields)).Msg(msg)
}

func (w watermillLogAdapter) Trace(msg string, fields watermill.LogFields) {
	w.logger.Trace().Fields(map[string]interface{}(fields)).Msg(msg)
}

func (w watermillLogAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return watermillLogAdapter{logger: w.logger, fields: fields}
}
