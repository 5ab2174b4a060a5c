// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

/*
Package settings implements the Settings Merger (spec §4.E): given a
handler's defaults and a project's parsed .cw-settings file, produce the
ProjectInfo the Lifecycle Coordinator persists.

Every field follows its own precedence rule rather than a single blanket
"settings win" policy:

  - appPorts: an explicit internalPort setting replaces the handler's
    default outright; otherwise the handler's default stands (invariant 5
    keeps this to at most one element throughout).
  - debugPort: the handler default is the base, a settings debugPort
    overrides it, and a trimmed, non-empty internalDebugPort (the more
    specific of the two settings keys) overrides both.
  - ignoredPaths: the handler default stands unless settings supplies a
    non-empty override after filtering blank entries.
  - contextRoot / healthCheck: normalized to exactly one leading slash and
    no trailing slash.
  - mavenProfiles / mavenProperties / watchedFiles.include|excludeFiles:
    all-or-nothing. The whole setting is accepted, trimmed, only if every
    element is non-empty; a single blank element rejects the setting
    entirely rather than applying it partially.

A rejected or absent setting never fails Merge; it simply leaves that
field at its default (or unset), matching the overall principle that
invalid project configuration narrows what gets applied rather than
blocking project creation.
*/
package settings
