// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

/*
Package handlerregistry provides a default in-memory Handler Registry.

The Handler Registry resolves a project to the Handler plug-in (out of
scope, spec §1) that knows how to build, delete, and watch it, and
advertises that handler's capabilities for validation (e.g. startMode).

# Registration

Handlers are registered at startup by the binary wiring the service
together, keyed by their SupportedType(). Project-type detection is
pluggable via RegisterDetector: each detector inspects a project's on-disk
location and either claims it or declines, letting callers compose
multiple detection strategies (a Dockerfile probe, a package.json probe,
...) without this package knowing about any of them.

# Relationship to Out-of-Scope Components

Project-type auto-detection and capability introspection are themselves
named out of scope (spec §1) as "pure queries against handlers": this
package is the query surface, not the detection logic. DetectFunc
implementations live with whatever code registers them (typically the
process entrypoint), not here.

# Error Semantics

ProjectHandler and DetermineProjectType return coreerr-wrapped errors so
the Lifecycle Coordinator's error-mapping rule (spec §6) applies uniformly:
an unresolved handler or project type surfaces as 404.
*/
package handlerregistry
