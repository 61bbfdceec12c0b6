package dag

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/monox/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pkg builds a package whose dependencies are the given names, all at "1".
func pkg(name string, deps ...string) *model.Package {
	p := &model.Package{Name: name, Version: "1", Dependencies: map[string]string{}}
	for _, d := range deps {
		p.Dependencies[d] = "1"
	}
	return p
}

func plan(t *testing.T, pkgs ...*model.Package) *Plan {
	t.Helper()
	g := Build(context.Background(), pkgs)
	p, err := NewPlan(g, pkgs)
	require.NoError(t, err)
	return p
}

func stageNames(stages []model.Stage) [][]string {
	out := make([][]string, len(stages))
	for i, s := range stages {
		out[i] = model.Names(s)
	}
	return out
}

func TestBuild_WorkspaceDependencies(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	app := pkg("app", "lib", "react", "app")
	lib := pkg("lib", "lodash")

	// --- Act ---
	g := Build(context.Background(), []*model.Package{app, lib})

	// --- Assert ---
	assert.Equal(t, []string{"lib"}, app.WorkspaceDependencies, "third-party and self dependencies are excluded")
	assert.Empty(t, lib.WorkspaceDependencies)
	assert.True(t, g.HasEdge("lib", "app"), "edges point from dependency to dependent")
	assert.False(t, g.HasEdge("app", "app"))
}

func TestPlan_Scenarios(t *testing.T) {
	t.Parallel()

	t.Run("linear chain", func(t *testing.T) {
		p := plan(t, pkg("c", "b"), pkg("a"), pkg("b", "a"))

		assert.Empty(t, p.Cycles)
		assert.NoError(t, p.Err())
		if diff := cmp.Diff([][]string{{"a"}, {"b"}, {"c"}}, stageNames(p.Stages)); diff != "" {
			t.Errorf("stages mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("cycle", func(t *testing.T) {
		p := plan(t, pkg("x", "y"), pkg("y", "x"))

		assert.Equal(t, [][]string{{"x", "y"}}, p.Cycles)
		assert.Empty(t, p.Stages)
		err := p.Err()
		assert.ErrorIs(t, err, ErrCycleDetected)
		assert.ErrorContains(t, err, "x, y")
	})

	t.Run("parallel siblings", func(t *testing.T) {
		p := plan(t, pkg("app2", "lib"), pkg("lib"), pkg("app1", "lib"))

		if diff := cmp.Diff([][]string{{"lib"}, {"app1", "app2"}}, stageNames(p.Stages)); diff != "" {
			t.Errorf("stages mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("cycle elsewhere empties the whole plan", func(t *testing.T) {
		p := plan(t, pkg("ok"), pkg("x", "y"), pkg("y", "x"))

		assert.Len(t, p.Cycles, 1)
		assert.Empty(t, p.Stages)
	})
}

func TestPlanStages_NoProgress(t *testing.T) {
	t.Parallel()

	// PlanStages trusts its caller; fed a cycle directly it must give up.
	x := pkg("x")
	y := pkg("y")
	x.WorkspaceDependencies = []string{"y"}
	y.WorkspaceDependencies = []string{"x"}

	stages, err := PlanStages([]*model.Package{x, y})

	assert.Nil(t, stages)
	assert.ErrorIs(t, err, errNoProgress)
}

func TestRestrict(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	pkgs := []*model.Package{pkg("a"), pkg("b", "a"), pkg("c", "b"), pkg("side")}
	p := plan(t, pkgs...)
	closure, err := p.Graph.Closure("b")
	require.NoError(t, err)

	// --- Act ---
	restricted := Restrict(p.Stages, closure)

	// --- Assert ---
	assert.Equal(t, [][]string{{"a"}, {"b"}}, stageNames(restricted))
}

// TestPlanStages_Invariants checks on random DAGs that every package lands
// after all of its dependencies and that the stages cover every package.
func TestPlanStages_Invariants(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		n := 1 + rng.Intn(30)
		pkgs := make([]*model.Package, n)
		for i := 0; i < n; i++ {
			var deps []string
			// Only depend on lower indices so the graph stays acyclic.
			for j := 0; j < i; j++ {
				if rng.Intn(4) == 0 {
					deps = append(deps, fmt.Sprintf("p%02d", j))
				}
			}
			pkgs[i] = pkg(fmt.Sprintf("p%02d", i), deps...)
		}
		rng.Shuffle(n, func(i, j int) { pkgs[i], pkgs[j] = pkgs[j], pkgs[i] })

		p := plan(t, pkgs...)
		require.Empty(t, p.Cycles)

		stageOf := map[string]int{}
		for k, stage := range p.Stages {
			for _, q := range stage {
				_, dup := stageOf[q.Name]
				require.False(t, dup, "package %s placed twice", q.Name)
				stageOf[q.Name] = k
			}
		}
		require.Len(t, stageOf, n, "union of stages must equal the package set")
		for _, q := range pkgs {
			for _, dep := range q.WorkspaceDependencies {
				assert.Less(t, stageOf[dep], stageOf[q.Name], "%s must come after %s", q.Name, dep)
			}
		}
	}
}
