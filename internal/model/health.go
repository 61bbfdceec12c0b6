// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the records produced by the workspace health checks.
package model

// Usage is one package declaring a dependency, as collected by the
// outdated check.
type Usage struct {
	Package string         `json:"package" yaml:"package"`
	Kind    DependencyKind `json:"kind" yaml:"kind"`
}

// DependencyUsage aggregates every declaration of one third-party dependency.
// Spec is the first version spec seen for it.
type DependencyUsage struct {
	Name   string  `json:"name" yaml:"name"`
	Spec   string  `json:"spec" yaml:"spec"`
	UsedBy []Usage `json:"used_by" yaml:"used_by"`
}

// ConflictUsage is one declaration participating in a version conflict.
type ConflictUsage struct {
	Package         string         `json:"package" yaml:"package"`
	Spec            string         `json:"version_spec" yaml:"version_spec"`
	ResolvedVersion string         `json:"resolved_version" yaml:"resolved_version"`
	Kind            DependencyKind `json:"dep_type" yaml:"dep_type"`
}

// VersionConflict is a dependency resolved to two or more distinct versions
// across the workspace.
type VersionConflict struct {
	Name               string          `json:"name" yaml:"name"`
	Usages             []ConflictUsage `json:"conflicts" yaml:"conflicts"`
	RecommendedVersion string          `json:"recommended_version" yaml:"recommended_version"`
}

// OutdatedDependency is a declaration whose bare version differs from the
// latest version published to the registry.
type OutdatedDependency struct {
	Name    string         `json:"name" yaml:"name"`
	Current string         `json:"current" yaml:"current"`
	Latest  string         `json:"latest" yaml:"latest"`
	Package string         `json:"package" yaml:"package"`
	Kind    DependencyKind `json:"dep_type" yaml:"dep_type"`
}

// OutdatedReport is the result of an outdated check.
type OutdatedReport struct {
	Records []OutdatedDependency `json:"outdated" yaml:"outdated"`
	// Examined is the number of distinct dependencies that were looked up.
	Examined int `json:"total_examined" yaml:"total_examined"`
}

// UniqueOutdated counts distinct dependency names among the records.
func (r *OutdatedReport) UniqueOutdated() int {
	seen := make(map[string]struct{}, len(r.Records))
	for _, rec := range r.Records {
		seen[rec.Name] = struct{}{}
	}
	return len(seen)
}

// Edit is one version-string replacement in one manifest.
type Edit struct {
	Package    string         `json:"package" yaml:"package"`
	Dependency string         `json:"dependency" yaml:"dependency"`
	OldVersion string         `json:"old_version" yaml:"old_version"`
	NewVersion string         `json:"new_version" yaml:"new_version"`
	Kind       DependencyKind `json:"dep_type" yaml:"dep_type"`
}
