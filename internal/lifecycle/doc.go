// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

// Package lifecycle implements the Lifecycle Coordinator (spec §4.D), the
// component that carries out every project-level operation (the admin HTTP
// surface in internal/adminapi has no routes into it):
//
//   - Create parses a project's .cw-settings, resolves its handler, merges
//     defaults via the Settings Merger, persists the result, and enqueues a
//     create build, all before returning 202.
//   - Delete synchronously dequeues a project, then removes it from the
//     Status Controller's view and finishes teardown (watcher kill,
//     handler.DeleteContainer, on-disk removal) on a detached goroutine,
//     emitting projectDeletion with the outcome.
//   - Action dispatches disableautobuild and reconfigwatchedfiles
//     synchronously, and enableautobuild/build by enqueueing an operation
//     and returning 202.
//   - Specification re-merges a live project's settings and re-persists it.
//   - Logs returns a handler's reported app/build log bundle; CheckNewLogFile
//     polls a handler for new or changed log files using a bounded-retry
//     backoff in place of the source's unbounded recursion, caching the
//     last-seen list per (project, log type) and emitting
//     projectLogsListChanged only when it changes.
//   - Shutdown clears the coordinator's in-process caches.
//
// handler.DeleteContainer, the one call in this package to an out-of-process
// plug-in during async teardown, runs behind a sony/gobreaker/v2 circuit
// breaker so a wedged handler can't indefinitely back up project deletions.
// Inbound request shapes (CreateRequest, ActionRequest) are validated with
// go-playground/validator/v10 before any collaborator is touched.
package lifecycle
