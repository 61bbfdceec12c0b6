package render

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/monox/internal/model"
)

// CycleArrow joins the members of a rendered cycle.
const CycleArrow = " → "

// FormatCycle renders a cycle closed on its first member, e.g. "a → b → a".
func FormatCycle(cycle []string) string {
	if len(cycle) == 0 {
		return ""
	}
	return strings.Join(append(append([]string(nil), cycle...), cycle[0]), CycleArrow)
}

// Analysis writes an analysis result.
func (r *Renderer) Analysis(a *model.Analysis) error {
	if r.Structured() {
		return r.Value(a.View())
	}

	st := a.Statistics
	r.title("Analysis Result")
	r.line(1, r.p.Sprintf("Total packages: %d", st.TotalPackages))
	r.line(1, r.p.Sprintf("Build stages: %d", st.TotalStages))
	r.line(1, r.p.Sprintf("Packages with workspace deps: %d", st.PackagesWithWorkspaceDeps))
	r.line(1, r.p.Sprintf("Circular dependencies: %d", st.CircularDependencyCount))
	r.line(1, r.p.Sprintf("Analysis duration: %dms", st.AnalysisDurationMS))

	r.Cycles(a.Cycles)
	if a.HasCycles() {
		r.line(0, r.styles.bad.Render(r.p.Sprintf("Circular dependencies detected, cannot calculate build stages")))
		return nil
	}

	r.title("Build Stages")
	for i, stage := range a.Stages {
		r.line(1, r.styles.title.Render(r.p.Sprintf("Stage %d (%d packages):", i+1, len(stage))))
		for _, pkg := range stage {
			r.stagePackage(pkg)
		}
	}

	if !r.opts.Detail && !r.opts.Verbose {
		fmt.Fprintln(r.out)
		r.line(0, r.styles.muted.Render(r.p.Sprintf("Tip: Use --detail to show dependencies, --verbose for more details, --format json for JSON output")))
	}
	return nil
}

func (r *Renderer) stagePackage(pkg *model.Package) {
	r.line(2, "• "+r.styles.pkgName.Render(pkg.Name))
	if r.opts.Detail || r.opts.Verbose {
		if pkg.HasWorkspaceDependencies() {
			r.line(3, r.p.Sprintf("depends on: %s", strings.Join(pkg.WorkspaceDependencies, ", ")))
		} else {
			r.line(3, r.styles.muted.Render(r.p.Sprintf("no workspace dependencies")))
		}
	}
	if r.opts.Verbose {
		r.line(3, r.p.Sprintf("Path: %s", pkg.Folder))
		r.line(3, r.p.Sprintf("Version: %s", pkg.Version))
		if scripts := pkg.ScriptNames(); len(scripts) > 0 {
			r.line(3, r.p.Sprintf("Scripts: %s", strings.Join(scripts, ", ")))
		}
	}
}

// Cycles writes the circular dependency section.
func (r *Renderer) Cycles(cycles [][]string) {
	r.title("Circular Dependencies")
	if len(cycles) == 0 {
		r.line(1, r.styles.ok.Render(r.p.Sprintf("No circular dependencies found")))
		return
	}
	for i, c := range cycles {
		r.line(1, r.styles.bad.Render(fmt.Sprintf("%d. %s", i+1, FormatCycle(c))))
	}
}
