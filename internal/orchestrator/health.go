package orchestrator

import (
	"context"
	"sort"
	"sync"

	"github.com/specialistvlad/monox/internal/ctxlog"
	"github.com/specialistvlad/monox/internal/model"
	"github.com/specialistvlad/monox/internal/scheduler"
)

// CollectUsages lists every registry-resolved dependency of pkgs, one entry
// per name, sorted by name. The spec is the first one seen when walking the
// packages in name order.
func CollectUsages(pkgs []*model.Package) []model.DependencyUsage {
	sorted := append([]*model.Package(nil), pkgs...)
	model.SortPackages(sorted)

	index := map[string]int{}
	var usages []model.DependencyUsage
	for _, p := range sorted {
		for _, d := range p.Declared {
			if IsLocalSpec(d.Spec) {
				continue
			}
			i, ok := index[d.Name]
			if !ok {
				i = len(usages)
				index[d.Name] = i
				usages = append(usages, model.DependencyUsage{Name: d.Name, Spec: d.Spec})
			}
			usages[i].UsedBy = append(usages[i].UsedBy, model.Usage{Package: p.Name, Kind: d.Kind})
		}
	}
	sort.Slice(usages, func(i, j int) bool { return usages[i].Name < usages[j].Name })
	return usages
}

// outdatedCollector accumulates records from concurrent lookups.
type outdatedCollector struct {
	mu       sync.Mutex
	records  []model.OutdatedDependency
	reported map[string]bool
}

func (c *outdatedCollector) add(u model.DependencyUsage, current, latest string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reported[u.Name] {
		return
	}
	c.reported[u.Name] = true
	for _, by := range u.UsedBy {
		c.records = append(c.records, model.OutdatedDependency{
			Name:    u.Name,
			Current: current,
			Latest:  latest,
			Package: by.Package,
			Kind:    by.Kind,
		})
	}
}

// CheckOutdated asks the registry for the latest version of every distinct
// dependency and reports one record per using package for each dependency
// whose bare version differs. onProgress may be nil.
func (o *Orchestrator) CheckOutdated(ctx context.Context, onProgress func(completed, total int)) (*model.OutdatedReport, error) {
	pkgs, err := o.Scan(ctx)
	if err != nil {
		return nil, err
	}
	return o.checkOutdated(ctx, pkgs, onProgress), nil
}

func (o *Orchestrator) checkOutdated(ctx context.Context, pkgs []*model.Package, onProgress func(completed, total int)) *model.OutdatedReport {
	logger := ctxlog.FromContext(ctx)
	usages := CollectUsages(pkgs)
	concurrency := OptimalConcurrency(len(usages))
	logger.Info("Checking dependencies against the registry.", "dependencies", len(usages), "concurrency", concurrency)

	collector := &outdatedCollector{reported: map[string]bool{}}
	tasks := make([]scheduler.Task, len(usages))
	for i, u := range usages {
		tasks[i] = scheduler.Task{ID: u.Name, Run: func(ctx context.Context) (any, error) {
			latest, err := o.registry.Latest(ctx, u.Name)
			if err != nil {
				o.observer.RegistryLookup(u.Name, false)
				if o.cfg.Output.Verbose {
					logger.Warn("Could not determine latest version.", "dependency", u.Name, "error", err)
				}
				return "", nil
			}
			o.observer.RegistryLookup(u.Name, true)
			current := ExtractVersion(u.Spec)
			if current != latest && !IsSatisfied(current, latest) {
				collector.add(u, current, latest)
			}
			return latest, nil
		}}
	}

	sched := scheduler.New(scheduler.Options{
		MaxConcurrency: concurrency,
		Verbose:        o.cfg.Output.Verbose,
		OnProgress:     onProgress,
	})
	sched.ExecuteBatch(ctx, tasks)

	records := collector.records
	sort.Slice(records, func(i, j int) bool {
		if records[i].Name != records[j].Name {
			return records[i].Name < records[j].Name
		}
		if records[i].Package != records[j].Package {
			return records[i].Package < records[j].Package
		}
		return records[i].Kind < records[j].Kind
	})
	report := &model.OutdatedReport{Records: records, Examined: len(usages)}
	if report.Records == nil {
		report.Records = []model.OutdatedDependency{}
	}
	logger.Info("Outdated check complete.", "outdated", report.UniqueOutdated(), "examined", report.Examined)
	return report
}

// DetectVersionConflicts scans the workspace and reports every dependency
// declared at more than one resolved version.
func (o *Orchestrator) DetectVersionConflicts(ctx context.Context) ([]model.VersionConflict, error) {
	pkgs, err := o.Scan(ctx)
	if err != nil {
		return nil, err
	}
	return VersionConflicts(pkgs), nil
}

// VersionConflicts is the pure part of DetectVersionConflicts. Conflicts are
// sorted by dependency name, usages by package.
func VersionConflicts(pkgs []*model.Package) []model.VersionConflict {
	sorted := append([]*model.Package(nil), pkgs...)
	model.SortPackages(sorted)

	usages := map[string][]model.ConflictUsage{}
	for _, p := range sorted {
		for _, d := range p.Declared {
			if IsLocalSpec(d.Spec) {
				continue
			}
			usages[d.Name] = append(usages[d.Name], model.ConflictUsage{
				Package:         p.Name,
				Spec:            d.Spec,
				ResolvedVersion: ExtractVersion(d.Spec),
				Kind:            d.Kind,
			})
		}
	}

	conflicts := []model.VersionConflict{}
	for name, us := range usages {
		if len(us) < 2 {
			continue
		}
		var distinct []string
		seen := map[string]bool{}
		for _, u := range us {
			if !seen[u.ResolvedVersion] {
				seen[u.ResolvedVersion] = true
				distinct = append(distinct, u.ResolvedVersion)
			}
		}
		if len(distinct) < 2 {
			continue
		}
		conflicts = append(conflicts, model.VersionConflict{
			Name:               name,
			Usages:             us,
			RecommendedVersion: RecommendedVersion(distinct),
		})
	}
	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].Name < conflicts[j].Name })
	return conflicts
}
