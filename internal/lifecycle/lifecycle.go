// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

// Package lifecycle implements the Lifecycle Coordinator (spec §4.D): the
// top-level Create/Delete/Action/Specification/Logs/Shutdown operations
// that validate input, materialise a ProjectInfo, and drive the Project
// Info Store, Status Controller, Handler Registry, Watcher Supervisor, and
// Build Scheduler to carry a project through its lifecycle.
package lifecycle

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/buildforge/buildforge/internal/coreerr"
	"github.com/buildforge/buildforge/internal/models"
	"github.com/buildforge/buildforge/internal/settings"
	"github.com/buildforge/buildforge/internal/store"
)

// ProjectStore is the subset of the Project Info Store (spec §4.A) the
// coordinator drives.
type ProjectStore interface {
	Load(projectID string, quiet bool) (*models.ProjectInfo, bool)
	Save(projectID string, info *models.ProjectInfo, persist bool)
	Evict(projectID string)
	EnsureProjectDir(projectID string) error
	RemoveProjectDir(projectID string) error
	Metadata(projectID string) models.ProjectMetadata
}

// StoreUpdater is the subset of the Project Info Store's field-update API
// the synchronous Action branches (disableautobuild, reconfigWatchedFiles)
// use to mutate an already-persisted ProjectInfo without a full re-merge.
// Unlike the other collaborator interfaces in this file, this one takes
// internal/store's own FieldUpdate type directly rather than a locally
// redeclared shape: FieldUpdate is a plain data carrier with no behavior of
// its own, so importing it costs nothing a narrower redeclaration would
// save, and doing so avoids the method-signature mismatch a redeclared
// identical-looking type would otherwise introduce at the call site.
type StoreUpdater interface {
	Update(projectID string, update store.FieldUpdate) (*models.ProjectInfo, bool)
}

// StatusController is the subset of the Status Controller external
// contract (spec §6) the coordinator drives.
type StatusController interface {
	AddProject(projectID string)
	DeleteProject(projectID string)
	UpdateProjectStatus(projectID string, state models.BuildState, statusKey string, params map[string]string)
	GetBuildState(projectID string) (models.BuildState, bool)
}

// HandlerRegistry is the subset of the Handler Registry external contract
// (spec §6) the coordinator resolves handlers through.
type HandlerRegistry interface {
	DetermineProjectType(location string) (string, error)
	ProjectHandler(info *models.ProjectInfo) (models.Handler, error)
	ProjectCapabilities(handler models.Handler) models.HandlerCapabilities
}

// WatcherSupervisor is the subset of the Watcher Supervisor (spec §4.B) the
// coordinator drives directly; build-admission-time watcher starts are
// owned by the Build Scheduler, not here.
type WatcherSupervisor interface {
	EnsureWatcher(ctx context.Context, pw ProjectWatch) error
	KillWatchers(projectID, location string) error
}

// ProjectWatch mirrors watcher.ProjectWatch/scheduler.ProjectWatch's shape
// without importing either package, the same narrow-dependency idiom used
// throughout this module.
type ProjectWatch struct {
	ProjectID    string
	ProjectType  string
	Location     string
	WatchedFiles []string
	IgnoredFiles []string
}

// BuildScheduler is the subset of the Build Scheduler (spec §4.C) the
// coordinator drives: enqueueing new builds, removing a deleted project's
// entry, and nudging the reconciliation loop.
type BuildScheduler interface {
	Enqueue(op *models.Operation, handler models.Handler) bool
	Remove(projectID string) bool
	EmitRanks()
	TriggerTickNow()
}

// EventBus is the subset of the EventBus external contract (spec §6) the
// coordinator publishes through.
type EventBus interface {
	EmitOnListener(event string, payload interface{}) error
}

// Outbound event names (spec §6).
const (
	EventProjectDeletion        = "projectDeletion"
	EventProjectLogsListChanged = "projectLogsListChanged"
)

// dockerBuildLogName is the fixed build-log file name under a project's log
// directory (spec §6 persisted-state layout: "dockerBuild<logExtension>").
const dockerBuildLogName = "dockerBuild.log"

const cwSettingsFileName = ".cw-settings"

// Config controls the bounded-retry behaviour of CheckNewLogFile, which
// replaces the source's unbounded "recurse until files exist" recursion
// (spec §9 design note) with a capped exponential backoff.
type Config struct {
	LogPollMaxAttempts int
	LogPollBaseDelay   time.Duration
	LogPollMaxDelay    time.Duration
}

// DefaultConfig returns a conservative bounded-retry schedule: roughly 21
// seconds of total waiting across 8 attempts before CheckNewLogFile gives up
// and reports no logs yet rather than blocking its caller indefinitely.
func DefaultConfig() Config {
	return Config{
		LogPollMaxAttempts: 8,
		LogPollBaseDelay:   200 * time.Millisecond,
		LogPollMaxDelay:    5 * time.Second,
	}
}

// Coordinator is the Lifecycle Coordinator (spec §4.D).
type Coordinator struct {
	infoStore ProjectStore
	updater   StoreUpdater
	status    StatusController
	registry  HandlerRegistry
	watcher   WatcherSupervisor
	scheduler BuildScheduler
	bus       EventBus
	cfg       Config
	logger    zerolog.Logger

	validate *validator.Validate

	deleteBreaker *gobreaker.CircuitBreaker[struct{}]

	logCacheMu sync.Mutex
	// logCache holds, per project and log type, the last-seen file
	// list CheckNewLogFile compares against (spec §4.D).
	logCache map[string]map[string][]string
}

// New creates a Lifecycle Coordinator wiring every collaborator it drives.
func New(
	infoStore ProjectStore,
	updater StoreUpdater,
	status StatusController,
	registry HandlerRegistry,
	watcher WatcherSupervisor,
	scheduler BuildScheduler,
	bus EventBus,
	logger *zerolog.Logger,
	cfg Config,
) *Coordinator {
	if cfg.LogPollMaxAttempts <= 0 {
		cfg = DefaultConfig()
	}

	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "lifecycle-delete-container",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Coordinator{
		infoStore:     infoStore,
		updater:       updater,
		status:        status,
		registry:      registry,
		watcher:       watcher,
		scheduler:     scheduler,
		bus:           bus,
		cfg:           cfg,
		logger:        logger.With().Str("component", "lifecycle-coordinator").Logger(),
		validate:      validator.New(),
		deleteBreaker: breaker,
		logCache:      make(map[string]map[string][]string),
	}
}

// ImageIdentifier computes the deterministic image/container identifier
// handlers derive a project's build artifact name from (spec §4.D):
// projectID + "-" + projectType + "-" + SHA1_HEX(location, utf8).
func ImageIdentifier(projectID, projectType, location string) string {
	sum := sha1.Sum([]byte(location))
	return projectID + "-" + projectType + "-" + hex.EncodeToString(sum[:])
}

// CreateRequest is the validated input to Create.
type CreateRequest struct {
	ProjectID   string `validate:"required"`
	ProjectType string `validate:"required"`
	Location    string `validate:"required"`
	StartMode   string
	ExtensionID string
}

// CreateResult is Create's 202 payload.
type CreateResult struct {
	OperationID        string
	ImageIdentifier    string
	DockerBuildLogFile string
}

// Create registers a new (or re-creates an existing) project (spec §4.D).
func (c *Coordinator) Create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, coreerr.BadRequest("create: %v", err)
	}

	// Step 1: parse .cw-settings if present.
	parsed, err := readSettings(req.Location)
	if err != nil {
		return nil, coreerr.IOFailure(err, "create: reading %s", cwSettingsFileName)
	}
	if req.StartMode != "" {
		parsed.StartMode = req.StartMode
	}

	// Step 3: detect re-creation vs. a conflicting prior project.
	if prior, ok := c.infoStore.Load(req.ProjectID, true); ok {
		if prior.ProjectType != req.ProjectType || prior.Location != req.Location {
			return nil, coreerr.Conflict("project %q already exists with a different type or location", req.ProjectID)
		}
		if err := c.watcher.KillWatchers(req.ProjectID, prior.Location); err != nil {
			c.logger.Warn().Err(err).Str("project_id", req.ProjectID).Msg("create: killing prior watcher failed")
		}
	}

	// Step 4: location must exist.
	if _, err := os.Stat(req.Location); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, coreerr.NotFound("location %s does not exist", req.Location)
		}
		return nil, coreerr.IOFailure(err, "create: statting location")
	}

	// Step 5: resolve the handler.
	handler, err := c.registry.ProjectHandler(&models.ProjectInfo{ProjectID: req.ProjectID, ProjectType: req.ProjectType})
	if err != nil {
		return nil, err
	}

	// Step 6: build ProjectInfo via the Settings Merger.
	info := settings.Merge(req.ProjectID, req.ProjectType, req.Location, handler, parsed)
	info.ExtensionID = req.ExtensionID

	// Step 7: validate startMode against the handler's advertised
	// capabilities, if one was requested.
	if info.StartMode != "" {
		caps := c.registry.ProjectCapabilities(handler)
		if !caps.SupportsStartMode(info.StartMode) {
			return nil, coreerr.BadRequest("handler %s does not support start mode %q", req.ProjectType, info.StartMode)
		}
	}

	// Step 8: ensure the metadata directory exists.
	if err := c.infoStore.EnsureProjectDir(req.ProjectID); err != nil {
		return nil, coreerr.IOFailure(err, "create: ensuring project directory")
	}

	logDir, err := c.ensureLogDir(req.ProjectID, req.Location)
	if err != nil {
		return nil, coreerr.IOFailure(err, "create: ensuring log directory")
	}

	// Step 9 & 10: persist and register with the Status Controller.
	c.infoStore.Save(req.ProjectID, info, true)
	c.status.AddProject(req.ProjectID)

	// Step 11: enqueue the create operation idempotently.
	operationID := uuid.NewString()
	op := &models.Operation{OperationID: operationID, Kind: models.OperationCreate, ProjectInfo: info}
	c.scheduler.Enqueue(op, handler)

	// Step 12: broadcast ranks and nudge the reconciliation loop.
	c.scheduler.EmitRanks()
	c.scheduler.TriggerTickNow()

	c.logger.Info().Str("project_id", req.ProjectID).Str("project_type", req.ProjectType).
		Str("operation_id", operationID).Msg("lifecycle: project created")

	return &CreateResult{
		OperationID:        operationID,
		ImageIdentifier:    ImageIdentifier(req.ProjectID, req.ProjectType, req.Location),
		DockerBuildLogFile: filepath.Join(logDir, dockerBuildLogName),
	}, nil
}

// ensureLogDir creates and returns the project's log directory
// (<location>/../.logs/<projectID>-<basename(location)>), per spec §4.D
// step 2 ("create the log directory for (projectID, projectName)").
func (c *Coordinator) ensureLogDir(projectID, location string) (string, error) {
	logDirName := projectID + "-" + filepath.Base(location)
	logDir := filepath.Join(filepath.Dir(location), ".logs", logDirName)
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return "", err
	}
	return logDir, nil
}

// DeleteResult is Delete's 202 payload.
type DeleteResult struct {
	OperationID string
}

// Delete removes a project, synchronously dequeuing it and asynchronously
// tearing down its resources (spec §4.D).
func (c *Coordinator) Delete(ctx context.Context, projectID string) (*DeleteResult, error) {
	if projectID == "" {
		return nil, coreerr.BadRequest("delete: projectID is required")
	}

	info, ok := c.infoStore.Load(projectID, true)
	if !ok {
		return nil, coreerr.NotFound("project %q not found", projectID)
	}

	operationID := uuid.NewString()
	op := &models.Operation{OperationID: operationID, Kind: models.OperationDelete, ProjectInfo: info}

	if removed := c.scheduler.Remove(projectID); !removed {
		c.logger.Warn().Str("project_id", projectID).
			Msg("lifecycle: delete found no queued/running build to remove")
	}
	c.scheduler.EmitRanks()

	go c.runProjectDeletion(context.Background(), op)

	c.logger.Info().Str("project_id", projectID).Str("operation_id", operationID).
		Msg("lifecycle: delete accepted")

	return &DeleteResult{OperationID: operationID}, nil
}

// runProjectDeletion is the async ProjectDeletion procedure (spec §4.D
// step 5): deregister, kill the watcher, call the handler's
// deleteContainer behind a circuit breaker, remove on-disk state, and emit
// projectDeletion with the outcome.
func (c *Coordinator) runProjectDeletion(ctx context.Context, op *models.Operation) {
	info := op.ProjectInfo
	projectID := info.ProjectID

	c.status.DeleteProject(projectID)

	if err := c.watcher.KillWatchers(projectID, info.Location); err != nil {
		c.logger.Warn().Err(err).Str("project_id", projectID).Msg("delete: killing watcher failed")
	}

	var deleteErr error
	if handler, err := c.registry.ProjectHandler(info); err == nil {
		_, deleteErr = c.deleteBreaker.Execute(func() (struct{}, error) {
			return struct{}{}, handler.DeleteContainer(info)
		})
	} else {
		deleteErr = err
	}

	status := "success"
	errMsg := ""
	if deleteErr != nil {
		status = "failed"
		errMsg = deleteErr.Error()
		c.logger.Error().Err(deleteErr).Str("project_id", projectID).Msg("delete: handler.DeleteContainer failed")
	}

	if err := c.infoStore.RemoveProjectDir(projectID); err != nil {
		c.logger.Warn().Err(err).Str("project_id", projectID).Msg("delete: removing metadata directory failed")
	}
	c.infoStore.Evict(projectID)

	logDirName := projectID + "-" + filepath.Base(info.Location)
	logDir := filepath.Join(filepath.Dir(info.Location), ".logs", logDirName)
	if err := os.RemoveAll(logDir); err != nil {
		c.logger.Warn().Err(err).Str("project_id", projectID).Msg("delete: removing log directory failed")
	}

	c.logCacheMu.Lock()
	delete(c.logCache, projectID)
	c.logCacheMu.Unlock()

	if err := c.bus.EmitOnListener(EventProjectDeletion, map[string]interface{}{
		"operationId": op.OperationID,
		"projectID":   projectID,
		"status":      status,
		"error":       errMsg,
	}); err != nil {
		c.logger.Warn().Err(err).Str("project_id", projectID).Msg("delete: emitting projectDeletion failed")
	}
}

// Known action names (spec §4.D actionMap). disableautobuild and
// reconfigwatchedfiles are synchronous; the rest enqueue an asynchronous
// operation and return 202. The spec names these two explicitly as
// synchronous and describes the rest only by the OperationKind enum; the
// mapping of "enableautobuild" and "build" onto that enum, and their
// synchronous/asynchronous split, is this package's resolution of that
// gap (recorded in the project's design notes).
const (
	ActionDisableAutoBuild     = "disableautobuild"
	ActionEnableAutoBuild      = "enableautobuild"
	ActionReconfigWatchedFiles = "reconfigwatchedfiles"
	ActionBuild                = "build"
)

// ActionRequest is the validated input to Action.
type ActionRequest struct {
	ProjectID    string `validate:"required"`
	Action       string `validate:"required"`
	WatchedFiles []string
	IgnoredFiles []string
}

// ActionResult is Action's response payload; OperationID is empty for the
// synchronous actions.
type ActionResult struct {
	OperationID string
	StatusCode  int
}

// Action dispatches a named project action (spec §4.D).
func (c *Coordinator) Action(ctx context.Context, req ActionRequest) (*ActionResult, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, coreerr.BadRequest("action: %v", err)
	}

	info, ok := c.infoStore.Load(req.ProjectID, false)
	if !ok {
		return nil, coreerr.NotFound("project %q not found", req.ProjectID)
	}

	switch strings.ToLower(req.Action) {
	case ActionDisableAutoBuild:
		disabled := false
		c.updater.Update(req.ProjectID, store.FieldUpdate{AutoBuildEnabled: &disabled})
		return &ActionResult{StatusCode: 200}, nil

	case ActionReconfigWatchedFiles:
		c.updater.Update(req.ProjectID, store.FieldUpdate{
			WatchedFiles: req.WatchedFiles,
			IgnoredFiles: req.IgnoredFiles,
		})
		if err := c.watcher.EnsureWatcher(ctx, ProjectWatch{
			ProjectID:    req.ProjectID,
			ProjectType:  info.ProjectType,
			Location:     info.Location,
			WatchedFiles: req.WatchedFiles,
			IgnoredFiles: req.IgnoredFiles,
		}); err != nil {
			c.logger.Warn().Err(err).Str("project_id", req.ProjectID).Msg("action: re-registering watcher failed")
		}
		return &ActionResult{StatusCode: 200}, nil

	case ActionEnableAutoBuild:
		enabled := true
		updated, _ := c.updater.Update(req.ProjectID, store.FieldUpdate{AutoBuildEnabled: &enabled})
		if updated == nil {
			updated = info
		}
		return c.enqueueAsyncAction(updated, models.OperationEnableAutoBuild)

	case ActionBuild:
		return c.enqueueAsyncAction(info, models.OperationBuild)

	default:
		return nil, coreerr.BadRequest("unknown action %q", req.Action)
	}
}

func (c *Coordinator) enqueueAsyncAction(info *models.ProjectInfo, kind models.OperationKind) (*ActionResult, error) {
	handler, err := c.registry.ProjectHandler(info)
	if err != nil {
		return nil, err
	}

	operationID := uuid.NewString()
	op := &models.Operation{OperationID: operationID, Kind: kind, ProjectInfo: info}
	c.scheduler.Enqueue(op, handler)
	c.scheduler.EmitRanks()
	c.scheduler.TriggerTickNow()

	return &ActionResult{OperationID: operationID, StatusCode: 202}, nil
}

// SpecificationResult is Specification's 202 payload.
type SpecificationResult struct {
	OperationID string
}

// Specification reconfigures a live project's settings, re-running the
// Settings Merger over the new input and re-persisting the result (spec
// §4.D). It shares Action's error-mapping rule.
func (c *Coordinator) Specification(ctx context.Context, projectID string, s settings.Settings) (*SpecificationResult, error) {
	if projectID == "" {
		return nil, coreerr.BadRequest("specification: projectID is required")
	}

	info, ok := c.infoStore.Load(projectID, false)
	if !ok {
		return nil, coreerr.NotFound("project %q not found", projectID)
	}

	handler, err := c.registry.ProjectHandler(info)
	if err != nil {
		return nil, err
	}

	merged := settings.Merge(info.ProjectID, info.ProjectType, info.Location, handler, s)
	merged.ExtensionID = info.ExtensionID
	c.infoStore.Save(projectID, merged, true)

	if err := c.watcher.EnsureWatcher(ctx, ProjectWatch{
		ProjectID:    projectID,
		ProjectType:  merged.ProjectType,
		Location:     merged.Location,
		WatchedFiles: merged.WatchedFiles,
		IgnoredFiles: merged.IgnoredFiles,
	}); err != nil {
		c.logger.Warn().Err(err).Str("project_id", projectID).Msg("specification: re-registering watcher failed")
	}

	operationID := uuid.NewString()
	op := &models.Operation{OperationID: operationID, Kind: models.OperationUpdate, ProjectInfo: merged}
	c.scheduler.Enqueue(op, handler)
	c.scheduler.EmitRanks()
	c.scheduler.TriggerTickNow()

	return &SpecificationResult{OperationID: operationID}, nil
}

// LogsResult is Logs' 200 payload.
type LogsResult struct {
	Logs interface{}
}

// Logs returns a project's handler-reported app/build log bundle (spec
// §4.D).
func (c *Coordinator) Logs(projectID string) (*LogsResult, error) {
	if projectID == "" {
		return nil, coreerr.BadRequest("logs: projectID is required")
	}

	info, ok := c.infoStore.Load(projectID, false)
	if !ok {
		return nil, coreerr.NotFound("project %q not found", projectID)
	}
	if _, err := os.Stat(info.Location); err != nil {
		return nil, coreerr.NotFound("project %q location is missing", projectID)
	}

	handler, err := c.registry.ProjectHandler(info)
	if err != nil {
		return nil, err
	}

	logs, err := handler.Logs(info)
	if err != nil {
		return nil, coreerr.HandlerFailure(err, "logs: handler reported an error")
	}
	return &LogsResult{Logs: logs}, nil
}

// CheckNewLogFileResult is CheckNewLogFile's 200 payload; Logs is nil when
// the cached list is unchanged.
type CheckNewLogFileResult struct {
	Logs []string
}

// CheckNewLogFile polls the handler for projectID's logType (models.LogTypeApp
// or models.LogTypeBuild) log files, using a bounded-retry backoff (spec §9
// design note) in place of the source's unbounded recursion when no files
// exist yet. It caches the last-seen list per (project, type) and emits
// projectLogsListChanged whenever the list is new or differs from the
// cached one (spec §4.D).
func (c *Coordinator) CheckNewLogFile(ctx context.Context, projectID, logType string) (*CheckNewLogFileResult, error) {
	info, ok := c.infoStore.Load(projectID, false)
	if !ok {
		return nil, coreerr.NotFound("project %q not found", projectID)
	}
	handler, err := c.registry.ProjectHandler(info)
	if err != nil {
		return nil, err
	}

	delay := c.cfg.LogPollBaseDelay
	var files []string
	for attempt := 0; attempt < c.cfg.LogPollMaxAttempts; attempt++ {
		files, err = handler.LogFiles(info, logType)
		if err != nil {
			return nil, coreerr.HandlerFailure(err, "checkNewLogFile: handler reported an error")
		}
		if len(files) > 0 {
			break
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		delay *= 2
		if delay > c.cfg.LogPollMaxDelay {
			delay = c.cfg.LogPollMaxDelay
		}
	}

	if len(files) == 0 {
		return &CheckNewLogFileResult{}, nil
	}

	c.logCacheMu.Lock()
	byType, ok := c.logCache[projectID]
	if !ok {
		byType = make(map[string][]string)
		c.logCache[projectID] = byType
	}
	cached, hadType := byType[logType]
	changed := !hadType || !sameFileSet(cached, files)
	if changed {
		byType[logType] = append([]string(nil), files...)
	}
	c.logCacheMu.Unlock()

	if !changed {
		return &CheckNewLogFileResult{}, nil
	}

	if err := c.bus.EmitOnListener(EventProjectLogsListChanged, map[string]interface{}{
		"projectID": projectID,
		"type":      logType,
		"logs":      files,
	}); err != nil {
		c.logger.Warn().Err(err).Str("project_id", projectID).Msg("checkNewLogFile: emit failed")
	}

	return &CheckNewLogFileResult{Logs: files}, nil
}

// sameFileSet reports whether a and b contain the same elements, ignoring
// order (spec §4.D "mutual subset check").
func sameFileSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	for _, v := range b {
		if _, ok := set[v]; !ok {
			return false
		}
	}
	return true
}

// Shutdown clears the log-file-list cache for every project and always
// returns nil. It does not touch the Build Scheduler's buildQueue or
// runningBuilds, and it does not stop any project.
func (c *Coordinator) Shutdown() error {
	c.logCacheMu.Lock()
	c.logCache = make(map[string]map[string][]string)
	c.logCacheMu.Unlock()

	c.logger.Info().Msg("lifecycle: shutdown complete")
	return nil
}

// readSettings reads and parses location/.cw-settings if present, coercing
// internalPort and internalDebugPort to strings when the file encodes them
// as JSON numbers (spec §4.D step 1). A missing file is not an error: it
// yields zero-value Settings.
func readSettings(location string) (settings.Settings, error) {
	path := filepath.Join(location, cwSettingsFileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings.Settings{}, nil
		}
		return settings.Settings{}, err
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return settings.Settings{}, fmt.Errorf("parsing %s: %w", cwSettingsFileName, err)
	}
	coerceToString(fields, "internalPort")
	coerceToString(fields, "internalDebugPort")

	coerced, err := json.Marshal(fields)
	if err != nil {
		return settings.Settings{}, err
	}

	var s settings.Settings
	if err := json.Unmarshal(coerced, &s); err != nil {
		return settings.Settings{}, fmt.Errorf("parsing %s: %w", cwSettingsFileName, err)
	}
	return s, nil
}

// coerceToString rewrites fields[key] to its string form in place when it
// decoded as a JSON number, so settings.Settings (whose internalPort and
// internalDebugPort are strings) can unmarshal it.
func coerceToString(fields map[string]interface{}, key string) {
	v, ok := fields[key]
	if !ok {
		return
	}
	switch n := v.(type) {
	case float64:
		fields[key] = strconv.FormatFloat(n, 'f', -1, 64)
	}
}
