// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

/*
Package cache provides thread-safe in-memory caching with TTL support.

This package implements a simple but effective caching layer used by the
Project Info Store to avoid re-reading a project's on-disk JSON file on
every lookup.

# Overview

The cache provides:
  - Thread-safe concurrent access (sync.RWMutex)
  - Time-to-live (TTL) expiration for automatic cleanup
  - Simple key-value storage with any value type (interface{})
  - Lazy expiration checking (on Get operations)
  - Zero external dependencies (stdlib only)

# Use Cases

Primary use case:
  - The Project Info Store caches each project's ProjectInfo under its
    info-file path, with an effectively unbounded TTL (§4.A): the on-disk file
    is the source of truth, and the cache entry is evicted explicitly
    (Evict) rather than by expiration, since builds can be long-running.

# Cache Structure

The cache stores items with metadata:

	type Entry struct {
	    Data      interface{}  // Cached value (any type)
	    ExpiresAt time.Time    // Expiration timestamp
	}

# Usage Example

Basic caching:

	import "github.com/buildforge/buildforge/internal/cache"

	// Create cache with a long default TTL
	c := cache.New(24 * time.Hour)

	// Store value
	c.Set("proj-1", info)

	// Retrieve value
	if value, ok := c.Get("proj-1"); ok {
	    info := value.(*models.ProjectInfo)
	    // Use cached info
	}

	// Evict a single project on deletion
	c.Delete("proj-1")

	// Clear entire cache
	c.Clear()

Project Info Store wrapping pattern:

	func (s *Store) Load(projectID string) (*models.ProjectInfo, error) {
	    if cached, ok := s.cache.Get(projectID); ok {
	        return cached.(*models.ProjectInfo), nil
	    }

	    info, err := s.readFromDisk(projectID)
	    if err != nil {
	        return nil, err
	    }

	    s.cache.Set(projectID, info)
	    return info, nil
	}

# Cache Invalidation

The cache supports two invalidation strategies:

1. TTL-based expiration (automatic):
  - Items expire after the configured TTL
  - Checked lazily during Get operations
  - A background goroutine started by New also removes expired entries
    every 5 minutes

2. Manual invalidation (on data changes):
  - Clear() removes all cache entries
  - Delete(key) removes a single project's entry
  - The Project Info Store calls Delete on project deletion (§6)

# Performance Characteristics

  - Get operation: O(1) hash map lookup + TTL check (~100ns)
  - Set operation: O(1) hash map insert with lock (~200ns)
  - Delete operation: O(1) hash map delete with lock (~150ns)
  - Clear operation: O(1) map reassignment (~50ns)
  - Memory overhead: ~100 bytes per cached item (key + metadata)

# Thread Safety

All cache methods are thread-safe using sync.RWMutex:

  - Get: Acquires read lock (concurrent reads allowed)
  - Set: Acquires write lock (exclusive access)
  - Delete: Acquires write lock (exclusive access)
  - Clear: Acquires write lock (exclusive access)

Multiple goroutines can safely access the cache concurrently.

# Limitations

The current implementation has intentional limitations for simplicity:

  - No maximum cache size limit (grows unbounded)
  - No LRU eviction policy (only TTL-based)
  - Expired entries linger until the next Get or 5-minute cleanup pass
  - No cache persistence (in-memory only; the on-disk JSON is authoritative)
  - No distributed caching (single instance)

These limitations are acceptable at this application's scale: a developer
workspace manages a small, bounded set of projects per instance.

# Testing

The package includes comprehensive tests:
  - Basic operations (Get, Set, Delete, Clear)
  - TTL expiration behavior
  - Concurrent access with race detector
  - Thread safety validation

Run tests with race detector:

	go test -race ./internal/cache

# See Also

  - internal/store: Project Info Store that wraps this cache
  - internal/models: ProjectInfo, the cached value type
*/
package cache
