// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

/*
Package watcher implements the Watcher Supervisor (spec §4.B): one
detached child process per project, watching its filesystem and reporting
build triggers back into the system independently of this process.

# Lifecycle

EnsureWatcher runs the create-time sequence: scan the process table for a
lingering watcher referencing the project's location, kill any match, then
spawn a fresh detached process. KillWatchers runs the same scan-and-kill
half only, used on project deletion.

An in-memory projectID -> pid table records watchers this supervisor
itself spawned; killLingering consults it first and only falls back to a
full process-table scan when the table has no entry, which is the common
case after a process restart where the table is empty but the previous
run's watchers are still alive.

# Concurrency

Each project gets its own mutex, created lazily and retained for the
project's lifetime, so at most one scan+spawn or scan+kill runs per
project at a time without serialising unrelated projects behind a single
global lock.

# Circuit Breaker

The spawn step runs behind a sony/gobreaker/v2 breaker: a workspace whose
watcher binary is missing or misconfigured will otherwise fail the same
way on every create, burning a process-table scan and an exec attempt each
time. After five consecutive spawn failures the breaker opens and further
spawns fail fast until its cooldown elapses.

# Rate Limiting

A golang.org/x/time/rate limiter throttles the spawn step so a bulk-create
burst (e.g. re-importing many projects at once) does not fork a watcher
process for all of them in the same instant.

# Cluster Mode

When Config.InCluster is set (sourced from IN_K8), EnsureWatcher and
KillWatchers are no-ops: a cluster-managed environment provisions watchers
some other way, and this supervisor's process-table view would not even
be meaningful across container boundaries.
*/
package watcher
