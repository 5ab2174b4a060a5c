// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar names the environment variable holding an explicit path
// to a YAML config file.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched, in order, when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"./buildforge.yaml",
	"/etc/buildforge/config.yaml",
}

// legacyEnvMap maps the service's historical flat environment variable
// names onto koanf dot-paths. Unmapped keys are passed through the default
// BUILDFORGE_-prefixed transform instead.
var legacyEnvMap = map[string]string{
	"MC_MAX_BUILDS": "scheduler.max_builds",
	"IN_K8":         "watcher.in_cluster",
	"PORTAL_HTTPS":  "portal.https",
}

// Load builds the final Config by layering defaults, an optional YAML file,
// and environment variables (highest priority), then validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, err
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, err
	}

	// A non-numeric max_builds cannot be unmarshalled into an int; replace
	// it with the default so Load falls back to 3 instead of failing.
	if _, err := strconv.Atoi(k.String("scheduler.max_builds")); err != nil {
		if err := k.Set("scheduler.max_builds", 3); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	applyMaxBuildsBoundary(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		return path
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransformFunc maps an environment variable name to a koanf dot-path,
// honoring the legacy flat names before falling back to a
// BUILDFORGE_SECTION_FIELD -> section.field transform.
func envTransformFunc(key string) string {
	if path, ok := legacyEnvMap[key]; ok {
		return path
	}
	const prefix = "BUILDFORGE_"
	if !strings.HasPrefix(key, prefix) {
		return ""
	}
	trimmed := strings.ToLower(strings.TrimPrefix(key, prefix))
	return strings.ReplaceAll(trimmed, "_", ".")
}

// applyMaxBuildsBoundary enforces the §8 boundary behavior: a non-positive
// MC_MAX_BUILDS defaults back to 3 rather than failing validation. A
// non-numeric value is replaced with 3 in Load before unmarshalling.
func applyMaxBuildsBoundary(cfg *Config) {
	if cfg.Scheduler.MaxBuilds < 1 {
		cfg.Scheduler.MaxBuilds = 3
	}
}

// parseBoolLoose mirrors the original service's truthy-string check for
// IN_K8 and PORTAL_HTTPS: koanf's env provider already coerces "true"/"1"
// for bool fields, but a raw string comparison is kept here for callers
// reading the environment directly (e.g. tests asserting parity).
func parseBoolLoose(s string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && v
}
