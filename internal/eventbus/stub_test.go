// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

//go:build !nats

package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubBus_EmitOnListenerAlwaysSucceeds(t *testing.T) {
	nop := zerolog.Nop()
	b, err := New(DefaultConfig(), &nop)
	require.NoError(t, err)
	defer b.Close()

	err = b.EmitOnListener(EventNewProjectAdded, NewProjectAddedPayload{ProjectID: "p1"})
	assert.NoError(t, err)
}

func TestStubBus_RunWithContextReturnsOnCancel(t *testing.T) {
	nop := zerolog.Nop()
	b, err := New(DefaultConfig(), &nop)
	require.NoError(t, err)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.RunWithContext(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("RunWithContext did not return after context cancellation")
	}
}

func TestStubBus_CloseIsNoop(t *testing.T) {
	nop := zerolog.Nop()
	b, err := New(DefaultConfig(), &nop)
	require.NoError(t, err)
	assert.NoError(t, b.Close())
	assert.NoError(t, b.Close())
}
