// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

/*
Package eventbus implements the EventBus external contract (spec §6): a
single method, EmitOnListener(event, payload), fire-and-forget. The Build
Scheduler and Lifecycle Coordinator are the only callers; neither waits on
or retries a failed emit, since a missed dashboard update is not a reason
to fail a build or a project operation.

# Two Builds

The package ships two implementations behind the nats build tag, both
named Bus with an identical exported surface (New, RunWithContext,
EmitOnListener, Close) so callers never branch on which one is linked in:

  - -tags nats: publishes onto NATS subjects via Watermill, either against
    an embedded in-process server (the default, for a single-instance
    deployment with no external dependency) or an external one named by
    Config.URL. A sony/gobreaker/v2 breaker wraps the publish step so a
    broker outage degrades to fast failures instead of blocking every
    caller on a timeout.
  - default (no nats tag): logs the event instead of publishing it. Used
    when the NATS stack isn't wanted: tests, or a deployment that has no
    dashboard bridge to feed.

# Wire Shape

internal/websocket.NATSSubscriber decodes every message on "buildforge.>"
into a dashboardEvent envelope keyed by "kind". The spec's own payload
shapes (NewProjectAddedPayload and friends) carry no such field, so
envelope() marshals the payload, re-opens it as a generic map, injects
"kind": event, and re-marshals, keeping the typed payload structs
faithful to §6 while still producing what the existing subscriber expects.

# Subjects

Every event publishes under "buildforge.<event>", matching the wildcard
subscription already established in internal/websocket.
*/
package eventbus
