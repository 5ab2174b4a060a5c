// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

// Package store implements the Project Info Store (spec §4.A): the sole
// persisted unit in the system, one JSON document per project, fronted by
// a write-through in-memory cache.
package store

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/buildforge/buildforge/internal/cache"
	"github.com/buildforge/buildforge/internal/logging"
	"github.com/buildforge/buildforge/internal/metrics"
	"github.com/buildforge/buildforge/internal/models"
)

const cacheType = "project_info"

// writeJob is one queued disk write, consumed by the bounded worker pool.
type writeJob struct {
	path string
	info *models.ProjectInfo
}

// Store is the Project Info Store. The in-memory cache is authoritative for
// the process lifetime (Load consults it before the on-disk JSON file, and
// a Save with persist=false updates only the cache); it is specialised with an effectively infinite TTL (spec §4.A implementation
// note) since ProjectInfo has no natural expiry; entries leave only via
// Evict or process restart.
type Store struct {
	dataDir string
	logsDir string

	cache *cache.Cache

	jobs   chan writeJob
	wg     sync.WaitGroup
	closed chan struct{}
}

// New creates a Store rooted at dataDir/logsDir with writeWorkers
// background goroutines servicing asynchronous disk writes.
func New(dataDir, logsDir string, writeWorkers int) *Store {
	if writeWorkers < 1 {
		writeWorkers = 1
	}

	s := &Store{
		dataDir: dataDir,
		logsDir: logsDir,
		cache:   cache.New(0), // 0 TTL => SetWithTTL stores a zero ExpiresAt, which cache.Get treats as never-expiring
		jobs:    make(chan writeJob, writeWorkers*4),
		closed:  make(chan struct{}),
	}

	for i := 0; i < writeWorkers; i++ {
		s.wg.Add(1)
		go s.writeWorker()
	}

	return s
}

// Close stops the background write workers, waiting for queued writes to
// finish. Safe to call once during shutdown.
func (s *Store) Close() {
	close(s.jobs)
	s.wg.Wait()
}

func (s *Store) writeWorker() {
	defer s.wg.Done()
	for job := range s.jobs {
		if err := writeJSONFile(job.path, job.info); err != nil {
			logging.Error().
				Err(err).
				Str("path", job.path).
				Str("project_id", job.info.ProjectID).
				Msg("project info store: async disk write failed")
		}
	}
}

// Metadata derives a project's on-disk layout from its id (spec §3).
func (s *Store) Metadata(projectID string) models.ProjectMetadata {
	dir := filepath.Join(s.dataDir, projectID)
	return models.ProjectMetadata{
		Dir:      dir,
		InfoFile: filepath.Join(dir, projectID+".json"),
		LogDir:   s.logsDir,
	}
}

// Save updates the cache for projectID and, if persist is true, queues an
// asynchronous write of the JSON document. Disk errors are logged, not
// returned: the cache remains authoritative for the process lifetime
// (spec §4.A failure semantics).
func (s *Store) Save(projectID string, info *models.ProjectInfo, persist bool) {
	meta := s.Metadata(projectID)
	clone := info.Clone()

	s.cache.Set(meta.InfoFile, clone)
	metrics.CacheSize.WithLabelValues(cacheType).Set(float64(s.cache.GetStats().TotalKeys))

	if !persist {
		return
	}

	select {
	case s.jobs <- writeJob{path: meta.InfoFile, info: clone}:
	case <-s.closed:
		logging.Warn().Str("project_id", projectID).Msg("project info store: write skipped, store closed")
	}
}

// Load returns a project's ProjectInfo, preferring the cache. On a cache
// miss it reads the on-disk file, populates the cache, and returns the
// parsed value. A disk read failure is treated as "not found"; quiet
// suppresses the log line for expected misses (e.g. existence probes).
func (s *Store) Load(projectID string, quiet bool) (*models.ProjectInfo, bool) {
	meta := s.Metadata(projectID)

	if cached, ok := s.cache.Get(meta.InfoFile); ok {
		metrics.CacheHits.WithLabelValues(cacheType).Inc()
		info, _ := cached.(*models.ProjectInfo)
		return info.Clone(), info != nil
	}
	metrics.CacheMisses.WithLabelValues(cacheType).Inc()

	info, err := readJSONFile(meta.InfoFile)
	if err != nil {
		if !quiet {
			logging.Debug().Err(err).Str("project_id", projectID).Msg("project info store: load miss")
		}
		return nil, false
	}

	s.cache.Set(meta.InfoFile, info)
	return info.Clone(), true
}

// FieldUpdate is a discriminated sum of the single-field mutations the
// Lifecycle Coordinator and Settings Merger apply to an already-persisted
// ProjectInfo (spec §9 design note: replaces a schema-less key/value
// update with typed variants so invariant 5, appPorts.length <= 1, holds
// at compile time rather than by convention).
type FieldUpdate struct {
	AppPort          *string
	DebugPort        *string
	AutoBuildEnabled *bool
	WatchedFiles     []string
	IgnoredFiles     []string
	IgnoredPaths     []string
}

// Update reads the current ProjectInfo, applies the non-nil fields of
// update, and writes the result back (cache + async disk write).
// AppPort replaces the single appPorts slot outright (pop then push),
// preserving invariant 5 regardless of what the slice held before.
func (s *Store) Update(projectID string, update FieldUpdate) (*models.ProjectInfo, bool) {
	info, ok := s.Load(projectID, false)
	if !ok {
		return nil, false
	}

	if update.AppPort != nil {
		info.AppPorts = []string{*update.AppPort}
	}
	if update.DebugPort != nil {
		info.DebugPort = *update.DebugPort
	}
	if update.AutoBuildEnabled != nil {
		info.AutoBuildEnabled = *update.AutoBuildEnabled
	}
	if update.WatchedFiles != nil {
		info.WatchedFiles = update.WatchedFiles
	}
	if update.IgnoredFiles != nil {
		info.IgnoredFiles = update.IgnoredFiles
	}
	if update.IgnoredPaths != nil {
		info.IgnoredPaths = update.IgnoredPaths
	}

	s.Save(projectID, info, true)
	return info.Clone(), true
}

// Evict removes a project's cache entry, used on delete (spec §4.A, §6).
func (s *Store) Evict(projectID string) {
	meta := s.Metadata(projectID)
	s.cache.Delete(meta.InfoFile)
	metrics.CacheEvictions.WithLabelValues(cacheType).Inc()
	metrics.CacheSize.WithLabelValues(cacheType).Set(float64(s.cache.GetStats().TotalKeys))
}

// EnsureProjectDir creates the project's metadata directory, treating
// EEXIST as success (spec §4.D step 8).
func (s *Store) EnsureProjectDir(projectID string) error {
	meta := s.Metadata(projectID)
	if err := os.MkdirAll(meta.Dir, 0o755); err != nil {
		return err
	}
	return nil
}

// RemoveProjectDir recursively deletes a project's metadata directory,
// refusing to operate on the data root itself (spec §4.D step 5).
func (s *Store) RemoveProjectDir(projectID string) error {
	meta := s.Metadata(projectID)
	clean := filepath.Clean(meta.Dir)
	if clean == "" || clean == "/" || clean == filepath.Clean(s.dataDir) {
		return os.ErrInvalid
	}
	return os.RemoveAll(clean)
}

func readJSONFile(path string) (*models.ProjectInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var info models.ProjectInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func writeJSONFile(path string, info *models.ProjectInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp-" + time.Now().Format("150405.000000000")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
