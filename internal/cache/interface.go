// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

// Package cache provides a thread-safe in-memory TTL cache, used by the
// Project Info Store as its write-through cache (spec §4.A).
package cache

import "time"

// Cacher defines the interface the Project Info Store depends on, rather
// than the concrete *Cache type, so tests can substitute a fake.
type Cacher interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{})
	SetWithTTL(key string, value interface{}, ttl time.Duration)
	Delete(key string)
	Clear()
	GetStats() Stats
	HitRate() float64
}

// NewTTL creates a new TTL-based cache. A ttl of 0 means entries never
// expire on their own; the Project Info Store uses this mode since
// ProjectInfo has no natural expiry, only explicit Evict (spec §4.A).
func NewTTL(ttl time.Duration) Cacher {
	return New(ttl)
}

var _ Cacher = (*Cache)(nil)
