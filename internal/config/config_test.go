// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Scheduler.MaxBuilds)
	require.False(t, cfg.Watcher.InCluster)
	require.Equal(t, 9090, cfg.PortalPort())
}

func TestLoad_LegacyEnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("MC_MAX_BUILDS", "7")
	t.Setenv("IN_K8", "true")
	t.Setenv("PORTAL_HTTPS", "true")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 7, cfg.Scheduler.MaxBuilds)
	require.True(t, cfg.Watcher.InCluster)
	require.Equal(t, 9191, cfg.PortalPort())
}

func TestLoad_MaxBuildsBoundary(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")

	for _, v := range []string{"0", "-1", "not-a-number"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("MC_MAX_BUILDS", v)
			cfg, err := Load()
			require.NoError(t, err)
			require.Equal(t, 3, cfg.Scheduler.MaxBuilds)
		})
	}
}

func TestParseBoolLoose(t *testing.T) {
	require.True(t, parseBoolLoose("true"))
	require.True(t, parseBoolLoose(" 1 "))
	require.False(t, parseBoolLoose("false"))
	require.False(t, parseBoolLoose("garbage"))
}

func TestConfig_Validate(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Scheduler.MaxBuilds = 0
	require.Error(t, cfg.Validate())
}
