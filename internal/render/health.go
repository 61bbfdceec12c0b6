package render

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/monox/internal/manifestedit"
	"github.com/specialistvlad/monox/internal/model"
)

// CheckReport gathers the results of the requested health checks. Checks
// that were not requested stay nil.
type CheckReport struct {
	Cycles    [][]string              `json:"circular_dependencies,omitempty" yaml:"circular_dependencies,omitempty"`
	Conflicts []model.VersionConflict `json:"version_conflicts,omitempty" yaml:"version_conflicts,omitempty"`
	Outdated  *model.OutdatedReport   `json:"outdated_dependencies,omitempty" yaml:"outdated_dependencies,omitempty"`

	CheckedCycles    bool `json:"-" yaml:"-"`
	CheckedConflicts bool `json:"-" yaml:"-"`
}

// HasIssues reports whether any requested check found something.
func (c *CheckReport) HasIssues() bool {
	return len(c.Cycles) > 0 || len(c.Conflicts) > 0 || (c.Outdated != nil && len(c.Outdated.Records) > 0)
}

// Check writes the results of a health check run.
func (r *Renderer) Check(c *CheckReport) error {
	if r.Structured() {
		return r.Value(c)
	}
	if c.CheckedCycles {
		r.Cycles(c.Cycles)
	}
	if c.CheckedConflicts {
		r.conflicts(c.Conflicts)
	}
	if c.Outdated != nil {
		r.outdated(c.Outdated)
	}
	return nil
}

// Conflicts writes a list of version conflicts.
func (r *Renderer) Conflicts(conflicts []model.VersionConflict) error {
	if r.Structured() {
		return r.Value(conflicts)
	}
	r.conflicts(conflicts)
	return nil
}

func (r *Renderer) conflicts(conflicts []model.VersionConflict) {
	r.title("Version Conflicts")
	if len(conflicts) == 0 {
		r.line(1, r.styles.ok.Render(r.p.Sprintf("No version conflicts found")))
		return
	}
	for _, c := range conflicts {
		r.line(1, r.styles.warn.Render(c.Name)+"  "+r.styles.muted.Render(r.p.Sprintf("recommended: %s", c.RecommendedVersion)))
		if !r.opts.Detail && !r.opts.Verbose {
			continue
		}
		rows := make([][]string, 0, len(c.Usages))
		for _, u := range c.Usages {
			rows = append(rows, []string{u.Package, u.Spec, u.ResolvedVersion, string(u.Kind)})
		}
		r.table([]string{"Package", "Spec", "Resolved", "Type"}, rows)
	}
}

// Outdated writes an outdated dependency report.
func (r *Renderer) Outdated(report *model.OutdatedReport) error {
	if r.Structured() {
		return r.Value(report)
	}
	r.outdated(report)
	return nil
}

func (r *Renderer) outdated(report *model.OutdatedReport) {
	r.title("Outdated Dependencies")
	if len(report.Records) == 0 {
		r.line(1, r.styles.ok.Render(r.p.Sprintf("All %d dependencies are up to date", report.Examined)))
		return
	}
	r.line(1, r.styles.warn.Render(r.p.Sprintf("%d of %d dependencies are outdated", report.UniqueOutdated(), report.Examined)))
	rows := make([][]string, 0, len(report.Records))
	for _, rec := range report.Records {
		rows = append(rows, []string{rec.Name, rec.Package, rec.Current, rec.Latest, string(rec.Kind)})
	}
	r.table([]string{"Dependency", "Package", "Current", "Latest", "Type"}, rows)
}

// Edits writes the manifest edits a fix or update would make.
func (r *Renderer) Edits(edits []model.Edit) error {
	if r.Structured() {
		if edits == nil {
			edits = []model.Edit{}
		}
		return r.Value(edits)
	}
	r.title("Planned Changes")
	r.edits(edits)
	return nil
}

// Applied writes the edits that were written to disk.
func (r *Renderer) Applied(applied []manifestedit.Applied) error {
	edits := make([]model.Edit, len(applied))
	for i, a := range applied {
		edits[i] = a.Edit
	}
	if r.Structured() {
		return r.Value(edits)
	}
	r.title("Applied Changes")
	r.edits(edits)
	return nil
}

func (r *Renderer) edits(edits []model.Edit) {
	if len(edits) == 0 {
		r.line(1, r.styles.muted.Render(r.p.Sprintf("Nothing to change")))
		return
	}
	rows := make([][]string, 0, len(edits))
	for _, e := range edits {
		rows = append(rows, []string{e.Package, e.Dependency, e.OldVersion, e.NewVersion, string(e.Kind)})
	}
	r.table([]string{"Package", "Dependency", "Old", "New", "Type"}, rows)
}

// Confirm asks whether count changes should be applied. Only "y" and "yes"
// accept.
func (r *Renderer) Confirm(answer func() (string, error), count int) bool {
	fmt.Fprint(r.out, r.p.Sprintf("Apply %d changes? [y/N]: ", count))
	s, err := answer()
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return true
	}
	return false
}
