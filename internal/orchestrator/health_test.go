package orchestrator

import (
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/monox/internal/model"
	"github.com/specialistvlad/monox/internal/testutil"
)

func TestDetectVersionConflicts(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	f := newFixture(t, fixtureOptions{manifests: map[string]testutil.Manifest{
		"p1": {Name: "P1", Deps: deps("left", "^1.2.0", "same", "1.0.0")},
		"p2": {Name: "P2", DevDeps: deps("left", "^1.3.0", "same", "^1.0.0")},
		"p3": {Name: "P3", Deps: deps("local", "workspace:*")},
		"p4": {Name: "P4", Deps: deps("local", "file:../p3")},
	}})

	// --- Act ---
	conflicts, err := f.orch.DetectVersionConflicts(f.ctx)

	// --- Assert ---
	require.NoError(t, err)
	want := []model.VersionConflict{{
		Name: "left",
		Usages: []model.ConflictUsage{
			{Package: "P1", Spec: "^1.2.0", ResolvedVersion: "1.2.0", Kind: model.KindRuntime},
			{Package: "P2", Spec: "^1.3.0", ResolvedVersion: "1.3.0", Kind: model.KindDevelopment},
		},
		RecommendedVersion: "1.3.0",
	}}
	if diff := cmp.Diff(want, conflicts); diff != "" {
		t.Errorf("conflicts mismatch (-want +got):\n%s", diff)
	}
}

func TestVersionConflicts_SemverRecommendation(t *testing.T) {
	t.Parallel()

	pkgs := []*model.Package{
		{Name: "a", Declared: []model.Dependency{{Name: "lib", Spec: "^9.0.0", Kind: model.KindRuntime}}},
		{Name: "b", Declared: []model.Dependency{{Name: "lib", Spec: "~10.0.0", Kind: model.KindRuntime}}},
	}

	conflicts := VersionConflicts(pkgs)

	require.Len(t, conflicts, 1)
	assert.Equal(t, "10.0.0", conflicts[0].RecommendedVersion)
	assert.Equal(t, conflicts, VersionConflicts(pkgs), "detection is a pure function of the packages")
}

func TestCheckOutdated_DuplicatedUsage(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	f := newFixture(t, fixtureOptions{
		manifests: map[string]testutil.Manifest{
			"a": {Name: "a", Deps: deps("tool", "^2.0.0")},
			"b": {Name: "b", DevDeps: deps("tool", "^2.0.0")},
			"c": {Name: "c", Peers: deps("tool", "^2.0.0")},
		},
		versions: map[string]string{"tool": "2.1.0"},
	})
	var mu sync.Mutex
	var progress []int

	// --- Act ---
	report, err := f.orch.CheckOutdated(f.ctx, func(completed, total int) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 1, total)
		progress = append(progress, completed)
	})

	// --- Assert ---
	require.NoError(t, err)
	want := []model.OutdatedDependency{
		{Name: "tool", Current: "2.0.0", Latest: "2.1.0", Package: "a", Kind: model.KindRuntime},
		{Name: "tool", Current: "2.0.0", Latest: "2.1.0", Package: "b", Kind: model.KindDevelopment},
		{Name: "tool", Current: "2.0.0", Latest: "2.1.0", Package: "c", Kind: model.KindPeer},
	}
	if diff := cmp.Diff(want, report.Records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, report.UniqueOutdated())
	assert.Equal(t, 1, report.Examined)
	assert.Equal(t, 1, f.registry.Queries("tool"))
	assert.Equal(t, []int{1}, progress)
}

func TestCheckOutdated_SkipsLocalSpecs(t *testing.T) {
	t.Parallel()

	f := newFixture(t, fixtureOptions{
		manifests: map[string]testutil.Manifest{
			"a": {Name: "a", Deps: deps(
				"w", "workspace:^1.0.0",
				"f", "file:../f",
				"l", "link:../l",
				"g", "git+https://example.com/g.git",
				"h", "github:user/h",
				"r", "1.0.0",
			)},
		},
		versions: map[string]string{"w": "9", "f": "9", "l": "9", "g": "9", "h": "9", "r": "1.0.0"},
	})

	report, err := f.orch.CheckOutdated(f.ctx, nil)

	require.NoError(t, err)
	assert.Empty(t, report.Records)
	assert.Equal(t, 1, report.Examined)
	assert.Equal(t, 1, f.registry.TotalQueries())
}

func TestCheckOutdated_LookupFailureProducesNoRecord(t *testing.T) {
	t.Parallel()

	f := newFixture(t, fixtureOptions{
		manifests: map[string]testutil.Manifest{
			"a": {Name: "a", Deps: deps("known", "^1.0.0", "unknown", "^1.0.0")},
		},
		versions: map[string]string{"known": "2.0.0"},
	})

	report, err := f.orch.CheckOutdated(f.ctx, nil)

	require.NoError(t, err)
	require.Len(t, report.Records, 1)
	assert.Equal(t, "known", report.Records[0].Name)
	assert.Equal(t, 2, report.Examined)
	f.observer.mu.Lock()
	defer f.observer.mu.Unlock()
	assert.Equal(t, map[string]bool{"known": true, "unknown": false}, f.observer.lookups)
}

func TestCheckOutdated_Idempotent(t *testing.T) {
	t.Parallel()

	manifests := map[string]testutil.Manifest{}
	versions := map[string]string{}
	for _, n := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		manifests["pkg-"+n] = testutil.Manifest{Name: "pkg-" + n, Deps: deps("dep-"+n, "^1.0.0", "shared", "~3.0.0")}
		versions["dep-"+n] = "1.0.0"
	}
	versions["shared"] = "3.2.0"
	versions["dep-c"] = "1.5.0"
	f := newFixture(t, fixtureOptions{manifests: manifests, versions: versions})
	f.registry.Delay = time.Millisecond

	first, err := f.orch.CheckOutdated(f.ctx, nil)
	require.NoError(t, err)
	second, err := f.orch.CheckOutdated(f.ctx, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 13, first.Examined)
	assert.Equal(t, 2, first.UniqueOutdated())
	assert.Len(t, first.Records, 13)
}

func TestCollectUsages_FirstSpecWins(t *testing.T) {
	t.Parallel()

	pkgs := []*model.Package{
		{Name: "zeta", Declared: []model.Dependency{{Name: "x", Spec: "^2.0.0", Kind: model.KindRuntime}}},
		{Name: "alpha", Declared: []model.Dependency{{Name: "x", Spec: "^1.0.0", Kind: model.KindDevelopment}}},
	}

	usages := CollectUsages(pkgs)

	require.Len(t, usages, 1)
	assert.Equal(t, "^1.0.0", usages[0].Spec)
	assert.Equal(t, []model.Usage{
		{Package: "alpha", Kind: model.KindDevelopment},
		{Package: "zeta", Kind: model.KindRuntime},
	}, usages[0].UsedBy)
}
