// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

/*
Package scheduler implements the Build Scheduler (spec §4.C), the central
piece coordinating what gets built, in what order, and how many builds run
concurrently.

# Queue And Concurrency Cap

buildQueue is a FIFO of *models.BuildQueueEntry; runningBuilds is an
unordered set of the same type keyed by project id, bounded by
Config.MaxBuilds. Enqueue is idempotent by project id (a project already
queued or running is never added twice), and Remove reports whether it
actually found and removed an entry, which the Lifecycle Coordinator's
Delete procedure uses to assert exactly-one-removal.

# Reconciliation Tick

Every Config.TickInterval (5s by default), reconcile runs three steps:

 1. reap: drop runningBuilds entries whose Status Controller state has
    gone terminal (success or failed).
 2. admit: dequeue FIFO-order entries into the freed runningBuilds slots
    and trigger each one.
 3. broadcast: if step 1 or 2 changed anything, EmitRanks recomputes and
    publishes every queued entry's position.

TriggerTickNow lets a caller (the Lifecycle Coordinator, after an Enqueue)
ask for an out-of-band tick without waiting for the next ticker fire;
concurrent calls collapse onto a single pending slot rather than queuing
up, since a tick that's about to run anyway makes a second one redundant.

# Triggering A Build

TriggerBuild re-loads the project's current record from the Project Info
Store (a build can sit queued long enough for its settings to change),
validates the handler's required files are present at its location, and
either fails the build in place (status failed, key
buildscripts.buildFailMissingFile) or marks it inProgress, fires the
handler's Create call in the background, starts its watcher, and emits
newProjectAdded. A handler failure is logged and reflected through the
Status Controller rather than propagated: the scheduler never aborts the
process over one project's build.

# Shutdown

Shutdown truncates both buildQueue and runningBuilds in place (slicing to
zero length, deleting every map key) rather than reallocating, leaving the
scheduler reusable rather than discarded.
*/
package scheduler
