package app

import (
	"bufio"
	"errors"
	"io"

	"github.com/specialistvlad/monox/internal/ctxlog"
	"github.com/specialistvlad/monox/internal/model"
	"github.com/specialistvlad/monox/internal/render"
)

// EditOptions controls how planned manifest edits are applied.
type EditOptions struct {
	DryRun bool
	// Yes skips the confirmation prompt.
	Yes    bool
	Format render.Format
	Detail bool
}

// UpdateOptions selects the dependencies to update.
type UpdateOptions struct {
	EditOptions
	// Dependency is updated to Version, or to the registry's latest when
	// Version is empty.
	Dependency string
	Version    string
	// All updates every outdated dependency to its latest version.
	All bool
}

// Fix plans and applies the edits resolving version conflicts.
func (a *App) Fix(opts EditOptions) error {
	conflicts, edits, err := a.orch.PlanFixes(a.ctx)
	if err != nil {
		return err
	}
	r := a.renderer(opts.Format, opts.Detail)
	if !r.Structured() {
		if err := r.Conflicts(conflicts); err != nil {
			return err
		}
	}
	return a.applyEdits(r, edits, opts)
}

// Update plans and applies dependency upgrades.
func (a *App) Update(opts UpdateOptions) error {
	r := a.renderer(opts.Format, opts.Detail)

	var edits []model.Edit
	switch {
	case opts.All:
		onProgress, finish := a.progress(r)
		_, planned, err := a.orch.PlanUpdateAll(a.ctx, onProgress)
		finish()
		if err != nil {
			return err
		}
		edits = planned
	case opts.Dependency != "":
		target, planned, err := a.orch.PlanUpdate(a.ctx, opts.Dependency, opts.Version)
		if err != nil {
			return err
		}
		ctxlog.FromContext(a.ctx).Debug("Update target resolved.", "dependency", opts.Dependency, "version", target)
		edits = planned
	default:
		return errors.New("either a dependency or all dependencies must be selected")
	}
	return a.applyEdits(r, edits, opts.EditOptions)
}

func (a *App) applyEdits(r *render.Renderer, edits []model.Edit, opts EditOptions) error {
	if opts.DryRun || len(edits) == 0 {
		return r.Edits(edits)
	}
	if !r.Structured() {
		if err := r.Edits(edits); err != nil {
			return err
		}
	}
	if !opts.Yes && !r.Confirm(a.readLine, len(edits)) {
		if !r.Structured() {
			r.Warning("Aborted")
		}
		return nil
	}

	applied, err := a.orch.ApplyEdits(a.ctx, edits)
	if err != nil {
		return err
	}
	return r.Applied(applied)
}

func (a *App) readLine() (string, error) {
	if a.streams.In == nil {
		return "", io.EOF
	}
	line, err := bufio.NewReader(a.streams.In).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return line, nil
}
