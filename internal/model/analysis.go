// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the result of analyzing a workspace.
package model

import "encoding/json"

// Stage is a set of packages whose workspace dependencies all live in
// earlier stages. Packages are sorted by name.
type Stage []*Package

// Analysis is the output of scan, graph building and stage planning.
type Analysis struct {
	Packages []*Package `json:"packages" yaml:"packages"`
	// Stages is empty whenever Cycles is not.
	Stages     []Stage    `json:"-" yaml:"-"`
	Cycles     [][]string `json:"circular_dependencies" yaml:"circular_dependencies"`
	Statistics Statistics `json:"statistics" yaml:"statistics"`
}

// Statistics summarizes an Analysis.
type Statistics struct {
	TotalPackages             int   `json:"total_packages" yaml:"total_packages"`
	TotalStages               int   `json:"total_stages" yaml:"total_stages"`
	PackagesWithWorkspaceDeps int   `json:"packages_with_workspace_deps" yaml:"packages_with_workspace_deps"`
	CircularDependencyCount   int   `json:"circular_dependency_count" yaml:"circular_dependency_count"`
	AnalysisDurationMS        int64 `json:"analysis_duration_ms" yaml:"analysis_duration_ms"`
}

// StageNames projects the stage plan onto package names.
func (a *Analysis) StageNames() [][]string {
	out := make([][]string, len(a.Stages))
	for i, stage := range a.Stages {
		out[i] = Names(stage)
	}
	return out
}

// Package looks a package up by name.
func (a *Analysis) Package(name string) (*Package, bool) {
	for _, p := range a.Packages {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// HasCycles reports whether any nontrivial cycle was detected.
func (a *Analysis) HasCycles() bool {
	return len(a.Cycles) > 0
}

// analysisView is the serialized shape: stages are rendered as name lists.
type analysisView struct {
	Packages   []*Package `json:"packages" yaml:"packages"`
	Stages     [][]string `json:"stages" yaml:"stages"`
	Cycles     [][]string `json:"circular_dependencies" yaml:"circular_dependencies"`
	Statistics Statistics `json:"statistics" yaml:"statistics"`
}

// View returns the serializable projection of the analysis.
func (a *Analysis) View() any {
	cycles := a.Cycles
	if cycles == nil {
		cycles = [][]string{}
	}
	return analysisView{
		Packages:   a.Packages,
		Stages:     a.StageNames(),
		Cycles:     cycles,
		Statistics: a.Statistics,
	}
}

// MarshalJSON renders stages as name lists instead of nested packages.
func (a *Analysis) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.View())
}
