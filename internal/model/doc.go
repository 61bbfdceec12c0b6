// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model provides the Go representation of a JavaScript workspace as
// monox sees it. It holds plain data only: the scanner produces Packages, the
// dag package consumes them, and the orchestrator reports its findings with the
// record types declared here.
//
// # Core Concepts
//
//   - Package: one package.json and the directory that contains it. Created once
//     per scan and treated as immutable afterwards, with the single exception of
//     WorkspaceDependencies, which the graph builder fills in.
//
//   - Analysis: the outcome of scanning and planning a workspace. It carries the
//     packages, the stage plan, the detected cycles and a few statistics.
//
//   - ConflictUsage / VersionConflict / OutdatedDependency: health findings
//     about third-party dependencies.
//
//   - Edit: a single version-string change to apply to one manifest. Both the
//     fix and the update flows produce Edits; manifestedit applies them.
//
// Every record type carries json and yaml tags because the CLI can print any
// of them in machine-readable form.
package model
