// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines Package, the unit the whole engine revolves around.
package model

import "sort"

// DependencyKind names one of the three dependency maps of a manifest. The
// value is the manifest key itself so it can be used to address the section.
type DependencyKind string

const (
	KindRuntime     DependencyKind = "dependencies"
	KindDevelopment DependencyKind = "devDependencies"
	KindPeer        DependencyKind = "peerDependencies"
)

// DependencyKinds lists the recognized kinds in the order they are merged.
var DependencyKinds = []DependencyKind{KindRuntime, KindDevelopment, KindPeer}

// DefaultVersion is used when a manifest does not declare a version.
const DefaultVersion = "0.0.0"

// Dependency is one declared dependency together with the map it came from.
type Dependency struct {
	Name string         `json:"name" yaml:"name"`
	Spec string         `json:"spec" yaml:"spec"`
	Kind DependencyKind `json:"kind" yaml:"kind"`
}

// Package is a manifest found somewhere below the workspace root.
type Package struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
	// Folder is relative to the workspace root.
	Folder string `json:"folder" yaml:"folder"`
	// Dir is the absolute directory of the manifest.
	Dir string `json:"-" yaml:"-"`
	// ManifestPath is the absolute path of the package.json file.
	ManifestPath string `json:"-" yaml:"-"`

	// Dependencies merges runtime, development and peer dependencies. When a
	// name appears in several maps the later kind wins.
	Dependencies map[string]string `json:"dependencies" yaml:"dependencies"`
	// Declared keeps every declaration with its kind, ordered by kind then name.
	Declared []Dependency `json:"-" yaml:"-"`
	// WorkspaceDependencies is the sorted subset of Dependencies naming other
	// packages of the same workspace.
	WorkspaceDependencies []string `json:"workspace_dependencies" yaml:"workspace_dependencies"`

	Scripts map[string]string `json:"scripts" yaml:"scripts"`
}

// HasScript reports whether the manifest declares the named script.
func (p *Package) HasScript(name string) bool {
	_, ok := p.Scripts[name]
	return ok
}

// HasWorkspaceDependencies reports whether the package depends on any sibling.
func (p *Package) HasWorkspaceDependencies() bool {
	return len(p.WorkspaceDependencies) > 0
}

// ScriptNames returns the script names in sorted order.
func (p *Package) ScriptNames() []string {
	names := make([]string, 0, len(p.Scripts))
	for name := range p.Scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DependencyNames returns the merged dependency names in sorted order.
func (p *Package) DependencyNames() []string {
	names := make([]string, 0, len(p.Dependencies))
	for name := range p.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SortPackages orders packages by name, breaking ties by folder.
func SortPackages(pkgs []*Package) {
	sort.Slice(pkgs, func(i, j int) bool {
		if pkgs[i].Name != pkgs[j].Name {
			return pkgs[i].Name < pkgs[j].Name
		}
		return pkgs[i].Folder < pkgs[j].Folder
	})
}

// Names returns the names of the given packages, preserving order.
func Names(pkgs []*Package) []string {
	names := make([]string, len(pkgs))
	for i, p := range pkgs {
		names[i] = p.Name
	}
	return names
}
