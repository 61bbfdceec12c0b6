package app

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/monox/internal/ctxlog"
	"github.com/specialistvlad/monox/internal/orchestrator"
	"github.com/specialistvlad/monox/internal/render"
)

// ErrNoTarget is returned when run is given neither a package nor --all.
var ErrNoTarget = errors.New("either a package or all packages must be selected")

// RunOptions selects the script and the packages to run it in.
type RunOptions struct {
	Script  string
	Package string
	All     bool
	Format  render.Format
}

// Run executes a script stage by stage and renders the summary. A run with
// failed or timed out tasks renders normally and then returns an error
// matching orchestrator.ErrTasksFailed.
func (a *App) Run(opts RunOptions) (*orchestrator.RunSummary, error) {
	if opts.Script == "" {
		return nil, errors.New("a script name is required")
	}
	logger := ctxlog.FromContext(a.ctx)

	var (
		summary *orchestrator.RunSummary
		err     error
	)
	switch {
	case opts.Package != "":
		logger.Debug("Running script for package.", "script", opts.Script, "package", opts.Package)
		summary, err = a.orch.RunScriptForPackage(a.ctx, opts.Package, opts.Script)
	case opts.All:
		logger.Debug("Running script across workspace.", "script", opts.Script)
		summary, err = a.orch.RunScript(a.ctx, opts.Script)
	default:
		return nil, ErrNoTarget
	}
	return a.finishRun(summary, err, opts.Format)
}

// Exec runs a predefined task from the configuration.
func (a *App) Exec(task string, format render.Format) (*orchestrator.RunSummary, error) {
	t, ok := a.model.TaskByName(task)
	if !ok {
		return nil, fmt.Errorf("%w: %s", orchestrator.ErrTaskNotFound, task)
	}
	if t.Description != "" {
		ctxlog.FromContext(a.ctx).Info("Executing task.", "task", t.Name, "description", t.Description)
	}
	summary, err := a.orch.ExecTask(a.ctx, task)
	return a.finishRun(summary, err, format)
}

func (a *App) finishRun(summary *orchestrator.RunSummary, err error, format render.Format) (*orchestrator.RunSummary, error) {
	if summary == nil {
		return nil, err
	}
	if rerr := a.renderer(format, false).RunSummary(summary); rerr != nil {
		return summary, rerr
	}
	if err != nil {
		return summary, err
	}
	return summary, summary.Err()
}
