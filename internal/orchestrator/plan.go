package orchestrator

import (
	"context"
	"fmt"
	"sort"

	"github.com/specialistvlad/monox/internal/manifestedit"
	"github.com/specialistvlad/monox/internal/model"
)

// FixEdits plans one edit per usage whose resolved version differs from the
// recommended one. The new spec keeps the usage's range operator.
func FixEdits(conflicts []model.VersionConflict) []model.Edit {
	var edits []model.Edit
	for _, c := range conflicts {
		for _, u := range c.Usages {
			if u.ResolvedVersion == c.RecommendedVersion {
				continue
			}
			edits = append(edits, model.Edit{
				Package:    u.Package,
				Dependency: c.Name,
				OldVersion: u.Spec,
				NewVersion: manifestedit.PreserveVersionFormat(u.Spec, c.RecommendedVersion),
				Kind:       u.Kind,
			})
		}
	}
	sortEdits(edits)
	return edits
}

// PlanFixes detects version conflicts and plans the edits resolving them.
func (o *Orchestrator) PlanFixes(ctx context.Context) ([]model.VersionConflict, []model.Edit, error) {
	conflicts, err := o.DetectVersionConflicts(ctx)
	if err != nil {
		return nil, nil, err
	}
	return conflicts, FixEdits(conflicts), nil
}

// PlanUpdateAll checks every dependency against the registry and plans an
// edit bringing each outdated usage to the latest version.
func (o *Orchestrator) PlanUpdateAll(ctx context.Context, onProgress func(completed, total int)) (*model.OutdatedReport, []model.Edit, error) {
	pkgs, err := o.Scan(ctx)
	if err != nil {
		return nil, nil, err
	}
	report := o.checkOutdated(ctx, pkgs, onProgress)

	specs := declaredSpecs(pkgs)
	var edits []model.Edit
	for _, r := range report.Records {
		spec, ok := specs[specKey{r.Package, r.Name, r.Kind}]
		if !ok {
			continue
		}
		edits = append(edits, model.Edit{
			Package:    r.Package,
			Dependency: r.Name,
			OldVersion: spec,
			NewVersion: manifestedit.PreserveVersionFormat(spec, r.Latest),
			Kind:       r.Kind,
		})
	}
	sortEdits(edits)
	return report, edits, nil
}

// PlanUpdate plans edits moving every usage of dependency to version. An
// empty version means the registry's latest.
func (o *Orchestrator) PlanUpdate(ctx context.Context, dependency, version string) (string, []model.Edit, error) {
	pkgs, err := o.Scan(ctx)
	if err != nil {
		return "", nil, err
	}

	used := false
	for _, p := range pkgs {
		if _, ok := p.Dependencies[dependency]; ok {
			used = true
			break
		}
	}
	if !used {
		return "", nil, fmt.Errorf("%w: no package depends on %s", ErrPackageNotFound, dependency)
	}

	target := version
	if target == "" {
		latest, err := o.registry.Latest(ctx, dependency)
		o.observer.RegistryLookup(dependency, err == nil)
		if err != nil {
			return "", nil, err
		}
		target = latest
	}
	target = ExtractVersion(target)

	var edits []model.Edit
	for _, p := range pkgs {
		for _, d := range p.Declared {
			if d.Name != dependency || IsLocalSpec(d.Spec) || ExtractVersion(d.Spec) == target {
				continue
			}
			edits = append(edits, model.Edit{
				Package:    p.Name,
				Dependency: d.Name,
				OldVersion: d.Spec,
				NewVersion: manifestedit.PreserveVersionFormat(d.Spec, target),
				Kind:       d.Kind,
			})
		}
	}
	sortEdits(edits)
	return target, edits, nil
}

// ApplyEdits writes edits to the workspace manifests and returns the ones
// that matched.
func (o *Orchestrator) ApplyEdits(ctx context.Context, edits []model.Edit) ([]manifestedit.Applied, error) {
	if len(edits) == 0 {
		return nil, nil
	}
	pkgs, err := o.Scan(ctx)
	if err != nil {
		return nil, err
	}
	return manifestedit.Apply(ctx, pkgs, edits)
}

type specKey struct {
	pkg  string
	dep  string
	kind model.DependencyKind
}

func declaredSpecs(pkgs []*model.Package) map[specKey]string {
	out := map[specKey]string{}
	for _, p := range pkgs {
		for _, d := range p.Declared {
			out[specKey{p.Name, d.Name, d.Kind}] = d.Spec
		}
	}
	return out
}

func sortEdits(edits []model.Edit) {
	sort.Slice(edits, func(i, j int) bool {
		a, b := edits[i], edits[j]
		if a.Package != b.Package {
			return a.Package < b.Package
		}
		if a.Dependency != b.Dependency {
			return a.Dependency < b.Dependency
		}
		return a.Kind < b.Kind
	})
}

