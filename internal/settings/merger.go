// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

// Package settings implements the Settings Merger (spec §4.E): it builds a
// project's canonical ProjectInfo from a handler's defaults overlaid with
// whatever the project's .cw-settings file requests, applying settings
// last so they win over the defaults field by field.
package settings

import (
	"strings"

	"github.com/buildforge/buildforge/internal/models"
)

// WatchedFilesSettings is the watchedFiles block of a .cw-settings file.
type WatchedFilesSettings struct {
	IncludeFiles []string `json:"includeFiles,omitempty"`
	ExcludeFiles []string `json:"excludeFiles,omitempty"`
}

// Settings is the parsed shape of a project's .cw-settings file. Every
// field is optional; a zero value means "not specified", not "empty".
type Settings struct {
	InternalPort      string               `json:"internalPort,omitempty"`
	DebugPort         string               `json:"debugPort,omitempty"`
	InternalDebugPort string               `json:"internalDebugPort,omitempty"`
	IgnoredPaths      []string             `json:"ignoredPaths,omitempty"`
	ContextRoot       string               `json:"contextRoot,omitempty"`
	HealthCheck       string               `json:"healthCheck,omitempty"`
	MavenProfiles     []string             `json:"mavenProfiles,omitempty"`
	MavenProperties   []string             `json:"mavenProperties,omitempty"`
	WatchedFiles      WatchedFilesSettings `json:"watchedFiles,omitempty"`
	AutoBuildEnabled  *bool                `json:"autoBuildEnabled,omitempty"`
	StartMode         string               `json:"startMode,omitempty"`
}

// HandlerDefaults is the subset of models.Handler the merger consumes.
// Defined locally (rather than taking models.Handler directly) so a test
// double needs to implement only what this package actually calls.
type HandlerDefaults interface {
	DefaultAppPort() []string
	DefaultDebugPort() string
	DefaultIgnoredPaths() []string
}

// Merge builds a canonical ProjectInfo for projectID/projectType/location
// from handler's defaults overlaid with settings, field by field, per
// spec §4.E. Fields it rejects (an all-or-nothing list with an empty
// element, for instance) are silently left unset on the returned
// ProjectInfo rather than failing the whole merge: invalid settings
// narrow what settings contributes, they never abort project creation.
func Merge(projectID, projectType, location string, handler HandlerDefaults, s Settings) *models.ProjectInfo {
	info := &models.ProjectInfo{
		ProjectID:        projectID,
		ProjectType:      projectType,
		Location:         location,
		AutoBuildEnabled: true,
		StartMode:        s.StartMode,
	}

	if s.AutoBuildEnabled != nil {
		info.AutoBuildEnabled = *s.AutoBuildEnabled
	}

	info.AppPorts = mergeAppPort(handler, s)
	info.DebugPort = mergeDebugPort(handler, s)
	info.IgnoredPaths = mergeIgnoredPaths(handler, s)
	info.ContextRoot = normalizeLeadingSlash(s.ContextRoot)
	info.HealthCheck = normalizeLeadingSlash(s.HealthCheck)

	if profiles, ok := nonEmptyTrimmedAll(s.MavenProfiles); ok {
		info.MavenProfiles = profiles
	}
	if props, ok := nonEmptyTrimmedAll(s.MavenProperties); ok {
		info.MavenProperties = props
	}
	if files, ok := nonEmptyTrimmedAll(s.WatchedFiles.IncludeFiles); ok {
		info.WatchedFiles = files
	}
	if files, ok := nonEmptyTrimmedAll(s.WatchedFiles.ExcludeFiles); ok {
		info.IgnoredFiles = files
	}

	return info
}

// mergeAppPort implements: internalPort replaces the handler's default app
// port outright; otherwise the handler's default (scalar or sequence) is
// used, appPorts staying empty if the handler has none (invariant 5: at
// most one element).
func mergeAppPort(handler HandlerDefaults, s Settings) []string {
	if s.InternalPort != "" {
		return []string{s.InternalPort}
	}
	if handler == nil {
		return nil
	}
	def := handler.DefaultAppPort()
	if len(def) == 0 {
		return nil
	}
	return append([]string(nil), def...)
}

// mergeDebugPort implements: a settings debugPort wins over the handler
// default, and internalDebugPort (trimmed), being the more specific
// settings key, wins over both.
func mergeDebugPort(handler HandlerDefaults, s Settings) string {
	debugPort := ""
	if handler != nil {
		debugPort = handler.DefaultDebugPort()
	}
	if s.DebugPort != "" {
		debugPort = s.DebugPort
	}
	if trimmed := strings.TrimSpace(s.InternalDebugPort); trimmed != "" {
		debugPort = trimmed
	}
	return debugPort
}

// mergeIgnoredPaths implements: the handler default wins unless settings
// supplies a non-empty (after filtering blank entries) override.
func mergeIgnoredPaths(handler HandlerDefaults, s Settings) []string {
	def := []string(nil)
	if handler != nil {
		def = handler.DefaultIgnoredPaths()
	}

	filtered := filterNonEmpty(s.IgnoredPaths)
	if len(filtered) == 0 {
		return def
	}
	return filtered
}

// normalizeLeadingSlash strips surrounding whitespace and any leading/
// trailing slashes, then prefixes exactly one "/", per spec §3 invariant 3.
// Whitespace is trimmed both before and after the slash trim so a value
// like " //foo// " (outer spaces, inner slashes) normalizes fully instead
// of stopping at the first character strings.Trim's "/" cutset doesn't
// match. An empty input stays empty: there is nothing to normalize for an
// unset contextRoot/healthCheck.
func normalizeLeadingSlash(s string) string {
	if s == "" {
		return ""
	}
	trimmed := strings.Trim(strings.TrimSpace(s), "/")
	trimmed = strings.TrimSpace(trimmed)
	if trimmed == "" {
		return "/"
	}
	return "/" + trimmed
}

// filterNonEmpty drops blank entries (after trimming) from values.
func filterNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// nonEmptyTrimmedAll implements the all-or-nothing validation rule shared
// by mavenProfiles, mavenProperties, and watchedFiles.include/excludeFiles:
// the whole setting is accepted, trimmed, only if it is non-empty and
// every element is non-empty after trimming; otherwise it is rejected
// entirely (ok=false) rather than partially applied.
func nonEmptyTrimmedAll(values []string) ([]string, bool) {
	if len(values) == 0 {
		return nil, false
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil, false
		}
		out = append(out, trimmed)
	}
	return out, true
}
