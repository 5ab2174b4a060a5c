// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

//go:build nats

package eventbus

import (
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
)

// embeddedServer wraps an in-process NATS server so a single-instance
// deployment needs no external broker. JetStream stays disabled: every
// event this bus carries is fire-and-forget (spec §6), so there is
// nothing here worth the durability cost.
type embeddedServer struct {
	server    *server.Server
	clientURL string
}

func newEmbeddedServer() (*embeddedServer, error) {
	opts := &server.Options{
		ServerName: "buildforge-events",
		Host:       "127.0.0.1",
		Port:       -1, // an ephemeral port; URL() reports what was chosen
		JetStream:  false,
		DontListen: false,
		Debug:      false,
		Trace:      false,
		NoLog:      true,
		MaxPayload: 1024 * 1024,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("create embedded NATS server: %w", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(10 * time.Second) {
		ns.Shutdown()
		return nil, fmt.Errorf("embedded NATS server not ready within timeout")
	}

	return &embeddedServer{server: ns, clientURL: ns.ClientURL()}, nil
}

func (s *embeddedServer) URL() string {
	return s.clientURL
}

func (s *embeddedServer) Shutdown() {
	s.server.Shutdown()
	s.server.WaitForShutdown()
}
