package app

import (
	"errors"

	"github.com/specialistvlad/monox/internal/model"
	"github.com/specialistvlad/monox/internal/render"
)

// ErrIssuesFound is returned when a health check found something to report.
var ErrIssuesFound = errors.New("issues found")

// AnalyzeOptions selects what analyze prints.
type AnalyzeOptions struct {
	Format  render.Format
	Detail  bool
	Package string
}

// Analyze runs the workspace analysis, or the analysis of one package and
// its dependency closure, and renders it.
func (a *App) Analyze(opts AnalyzeOptions) error {
	var (
		analysis *model.Analysis
		err      error
	)
	if opts.Package != "" {
		analysis, err = a.orch.AnalyzePackage(a.ctx, opts.Package)
	} else {
		analysis, err = a.orch.Analyze(a.ctx)
	}
	if err != nil {
		return err
	}
	return a.renderer(opts.Format, opts.Detail).Analysis(analysis)
}

// CheckOptions selects the health checks to run. With no check selected
// only the circular dependency check runs.
type CheckOptions struct {
	Circular bool
	Versions bool
	Outdated bool
	Format   render.Format
	Detail   bool
}

// Check runs the requested health checks and renders their findings. It
// returns ErrIssuesFound when any check found something.
func (a *App) Check(opts CheckOptions) error {
	if !opts.Circular && !opts.Versions && !opts.Outdated {
		opts.Circular = true
	}
	r := a.renderer(opts.Format, opts.Detail)
	report := &render.CheckReport{}

	if opts.Circular {
		analysis, err := a.orch.Analyze(a.ctx)
		if err != nil {
			return err
		}
		report.CheckedCycles = true
		report.Cycles = analysis.Cycles
	}
	if opts.Versions {
		conflicts, err := a.orch.DetectVersionConflicts(a.ctx)
		if err != nil {
			return err
		}
		report.CheckedConflicts = true
		report.Conflicts = conflicts
	}
	if opts.Outdated {
		onProgress, finish := a.progress(r)
		outdated, err := a.orch.CheckOutdated(a.ctx, onProgress)
		finish()
		if err != nil {
			return err
		}
		report.Outdated = outdated
	}

	if err := r.Check(report); err != nil {
		return err
	}
	if report.HasIssues() {
		return ErrIssuesFound
	}
	return nil
}
