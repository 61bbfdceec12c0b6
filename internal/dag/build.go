package dag

import (
	"context"
	"sort"

	"github.com/specialistvlad/monox/internal/ctxlog"
	"github.com/specialistvlad/monox/internal/model"
)

// Build projects every package's dependency map onto the workspace package
// names, records the result in Package.WorkspaceDependencies, and returns the
// graph with one edge per workspace dependency. A package listing itself is
// ignored.
func Build(ctx context.Context, pkgs []*model.Package) *Graph {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.", "packages", len(pkgs))

	g := New()
	names := make(map[string]struct{}, len(pkgs))
	for _, p := range pkgs {
		g.AddNode(p.Name)
		names[p.Name] = struct{}{}
	}

	edges := 0
	for _, p := range pkgs {
		var wsDeps []string
		for dep := range p.Dependencies {
			if _, ok := names[dep]; !ok {
				continue
			}
			if dep == p.Name {
				logger.Warn("Package depends on itself, ignoring the dependency.", "package", p.Name)
				continue
			}
			wsDeps = append(wsDeps, dep)
		}
		sort.Strings(wsDeps)
		p.WorkspaceDependencies = wsDeps

		for _, dep := range wsDeps {
			// Both endpoints were added above and dep != p.Name.
			_ = g.AddEdge(dep, p.Name)
			edges++
		}
	}

	logger.Debug("Build: Graph construction complete.", "nodes", g.Len(), "edges", edges)
	return g
}
