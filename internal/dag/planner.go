package dag

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/monox/internal/model"
)

// errNoProgress is returned by PlanStages when an iteration cannot place any
// package. It only happens when the packages contain a cycle.
var errNoProgress = errors.New("stage planning made no progress")

// PlanStages groups packages into stages. Every package of stage k has all of
// its workspace dependencies in stages 0..k-1. Packages within a stage are
// sorted by name. Build must have populated WorkspaceDependencies.
//
// Dependencies on packages outside pkgs are treated as already satisfied, so
// the planner also works on a subset of the workspace.
func PlanStages(pkgs []*model.Package) ([]model.Stage, error) {
	inSet := make(map[string]bool, len(pkgs))
	for _, p := range pkgs {
		inSet[p.Name] = true
	}

	placed := make(map[string]bool, len(pkgs))
	remaining := append([]*model.Package(nil), pkgs...)
	var stages []model.Stage

	for len(remaining) > 0 {
		var stage model.Stage
		var rest []*model.Package
		for _, p := range remaining {
			if ready(p, inSet, placed) {
				stage = append(stage, p)
			} else {
				rest = append(rest, p)
			}
		}
		if len(stage) == 0 {
			return nil, fmt.Errorf("%w: %d packages left unplaced", errNoProgress, len(rest))
		}
		model.SortPackages(stage)
		for _, p := range stage {
			placed[p.Name] = true
		}
		stages = append(stages, stage)
		remaining = rest
	}
	return stages, nil
}

func ready(p *model.Package, inSet, placed map[string]bool) bool {
	for _, dep := range p.WorkspaceDependencies {
		if inSet[dep] && !placed[dep] {
			return false
		}
	}
	return true
}

// Restrict keeps only the packages named in keep, dropping stages that end
// up empty. Relative order is preserved.
func Restrict(stages []model.Stage, keep []string) []model.Stage {
	set := make(map[string]bool, len(keep))
	for _, k := range keep {
		set[k] = true
	}
	var out []model.Stage
	for _, stage := range stages {
		var kept model.Stage
		for _, p := range stage {
			if set[p.Name] {
				kept = append(kept, p)
			}
		}
		if len(kept) > 0 {
			out = append(out, kept)
		}
	}
	return out
}

// Plan is the combined result of cycle detection and stage planning.
type Plan struct {
	Graph  *Graph
	Cycles [][]string
	Stages []model.Stage
}

// NewPlan detects cycles on g and, when there are none, plans stages for
// pkgs. With cycles present Stages is empty.
func NewPlan(g *Graph, pkgs []*model.Package) (*Plan, error) {
	plan := &Plan{Graph: g, Cycles: g.DetectCycles()}
	if len(plan.Cycles) > 0 {
		return plan, nil
	}
	stages, err := PlanStages(pkgs)
	if err != nil {
		return nil, err
	}
	plan.Stages = stages
	return plan, nil
}

// Err returns a CycleError when the plan has cycles.
func (p *Plan) Err() error {
	if len(p.Cycles) == 0 {
		return nil
	}
	return &CycleError{Cycles: p.Cycles}
}
