// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

/*
Package store implements the Project Info Store (spec §4.A), the only
persisted unit in the system: one JSON document per project, read and
written through an in-memory cache that the rest of the system treats as
authoritative.

# Cache Discipline

Unlike a typical TTL cache, entries here never expire on their own.
ProjectInfo has no natural staleness window, so the Store opens its
internal/cache.Cache with a zero TTL and relies entirely on explicit
invalidation: Evict on project deletion, or a fresh Set on every Save.
The cache is keyed by the project's absolute info-file path rather than
its bare id, which keeps the key space aligned with what actually
identifies a document on disk.

# Write-Through, Read-Cached

Save updates the cache synchronously and, when persist is true, enqueues
the disk write onto a bounded pool of worker goroutines (the same shape
as a delivery queue: a buffered channel, a WaitGroup, workers that log
and swallow individual failures rather than propagate them). A disk
write failure never unwinds the caller: the in-memory copy remains the
source of truth until the process restarts, which is the store's
documented failure mode under spec §4.A.

Load checks the cache first and falls back to disk only on a miss,
repopulating the cache from whatever it read. A missing or corrupt file
is reported as "not found" rather than as an error value, since every
caller treats the two identically.

# Typed Field Updates

Update takes a FieldUpdate, a struct of optional pointers/slices (one
per mutable ProjectInfo field), instead of a stringly-typed key/value
pair (spec §9 design note). This keeps the one case that actually needs
special handling, appPorts, impossible to get wrong: setting AppPort
always replaces the entire slot rather than appending to it, preserving
the single-element invariant at the type level instead of by convention
at every call site.

# Directory Lifecycle

EnsureProjectDir and RemoveProjectDir manage the project's metadata
directory on disk. RemoveProjectDir refuses to operate when the
resolved path canonicalises to "/" or to the store's own data root, so
a malformed or empty project id can never turn into a wipe of unrelated
data.
*/
package store
