package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/monox/internal/ctxlog"
	"github.com/specialistvlad/monox/internal/dag"
	"github.com/specialistvlad/monox/internal/model"
)

// Analyze scans the workspace, builds the graph, detects cycles and plans
// stages. Cycles are part of the result, not an error.
func (o *Orchestrator) Analyze(ctx context.Context) (*model.Analysis, error) {
	a, _, err := o.analyze(ctx)
	return a, err
}

func (o *Orchestrator) analyze(ctx context.Context) (*model.Analysis, *dag.Plan, error) {
	logger := ctxlog.FromContext(ctx)
	start := time.Now()

	pkgs, err := o.Scan(ctx)
	if err != nil {
		return nil, nil, err
	}
	g := dag.Build(ctx, pkgs)
	plan, err := dag.NewPlan(g, pkgs)
	if err != nil {
		return nil, nil, err
	}

	a := &model.Analysis{Packages: pkgs, Stages: plan.Stages, Cycles: plan.Cycles}
	a.Statistics = statistics(a, time.Since(start))
	logger.Debug("Analysis complete.",
		"packages", a.Statistics.TotalPackages,
		"stages", a.Statistics.TotalStages,
		"cycles", a.Statistics.CircularDependencyCount,
	)
	return a, plan, nil
}

// AnalyzePackage returns the analysis restricted to name and everything it
// transitively depends on. When the workspace has cycles the stage list is
// empty and the cycles are reported.
func (o *Orchestrator) AnalyzePackage(ctx context.Context, name string) (*model.Analysis, error) {
	start := time.Now()
	full, plan, err := o.analyze(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := full.Package(name); !ok {
		return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, name)
	}
	closure, err := plan.Graph.Closure(name)
	if err != nil {
		return nil, err
	}

	a := &model.Analysis{Cycles: full.Cycles}
	inClosure := make(map[string]bool, len(closure))
	for _, n := range closure {
		inClosure[n] = true
	}
	for _, p := range full.Packages {
		if inClosure[p.Name] {
			a.Packages = append(a.Packages, p)
		}
	}
	if !full.HasCycles() {
		a.Stages = dag.Restrict(full.Stages, closure)
	}
	a.Statistics = statistics(a, time.Since(start))
	return a, nil
}

func statistics(a *model.Analysis, elapsed time.Duration) model.Statistics {
	withDeps := 0
	for _, p := range a.Packages {
		if p.HasWorkspaceDependencies() {
			withDeps++
		}
	}
	return model.Statistics{
		TotalPackages:             len(a.Packages),
		TotalStages:               len(a.Stages),
		PackagesWithWorkspaceDeps: withDeps,
		CircularDependencyCount:   len(a.Cycles),
		AnalysisDurationMS:        elapsed.Milliseconds(),
	}
}
