package manifestedit

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/monox/internal/model"
	"github.com/specialistvlad/monox/internal/testutil"
)

func TestReplaceVersion(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		content     string
		dep         string
		oldSpec     string
		newSpec     string
		want        string
		wantChanged bool
	}{
		{
			name:        "standard formatting",
			content:     `{"dependencies": {"left": "^1.2.0"}}`,
			dep:         "left",
			oldSpec:     "^1.2.0",
			newSpec:     "^1.3.0",
			want:        `{"dependencies": {"left": "^1.3.0"}}`,
			wantChanged: true,
		},
		{
			name:        "compact formatting is normalized",
			content:     `{"left":"~1.0.0"}`,
			dep:         "left",
			oldSpec:     "~1.0.0",
			newSpec:     "~2.0.0",
			want:        `{"left": "~2.0.0"}`,
			wantChanged: true,
		},
		{
			name:        "regex characters in names are literal",
			content:     `{"a.b": "1.0.0", "axb": "1.0.0"}`,
			dep:         "a.b",
			oldSpec:     "1.0.0",
			newSpec:     "2.0.0",
			want:        `{"a.b": "2.0.0", "axb": "1.0.0"}`,
			wantChanged: true,
		},
		{
			name:        "scoped package",
			content:     "{\n  \"@scope/x\":  \"1.0.0\"\n}",
			dep:         "@scope/x",
			oldSpec:     "1.0.0",
			newSpec:     "1.1.0",
			want:        "{\n  \"@scope/x\": \"1.1.0\"\n}",
			wantChanged: true,
		},
		{
			name:        "old spec not present",
			content:     `{"left": "^9.0.0"}`,
			dep:         "left",
			oldSpec:     "^1.2.0",
			newSpec:     "^1.3.0",
			want:        `{"left": "^9.0.0"}`,
			wantChanged: false,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, changed := ReplaceVersion(tc.content, tc.dep, tc.oldSpec, tc.newSpec)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.wantChanged, changed)
		})
	}
}

func TestPreserveVersionFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "^2.0.0", PreserveVersionFormat("^1.0.0", "2.0.0"))
	assert.Equal(t, ">=2.0.0", PreserveVersionFormat(">=1.0.0", "2.0.0"))
	assert.Equal(t, "2.0.0", PreserveVersionFormat("1.0.0", "2.0.0"))
	assert.Equal(t, "~2.0.0", PreserveVersionFormat("^1.0.0", "~2.0.0"))
	assert.Equal(t, "", Prefix("latest"))
}

func TestApply(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	ctx, logs := testutil.Context(t)
	root := testutil.Workspace(t, map[string]testutil.Manifest{
		"p1": {Name: "p1", Deps: map[string]string{"left": "^1.2.0", "right": "1.0.0"}},
		"p2": {Name: "p2", DevDeps: map[string]string{"left": "^1.3.0"}},
	})
	pkgs := []*model.Package{
		{Name: "p1", ManifestPath: filepath.Join(root, "packages", "p1", "package.json")},
		{Name: "p2", ManifestPath: filepath.Join(root, "packages", "p2", "package.json")},
	}
	edits := []model.Edit{
		{Package: "p1", Dependency: "left", OldVersion: "^1.2.0", NewVersion: "^1.3.0", Kind: model.KindRuntime},
		{Package: "p1", Dependency: "right", OldVersion: "9.9.9", NewVersion: "1.0.1", Kind: model.KindRuntime},
	}

	// --- Act ---
	applied, err := Apply(ctx, pkgs, edits)

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Equal(t, "left", applied[0].Dependency)
	assert.Equal(t, pkgs[0].ManifestPath, applied[0].Path)

	p1 := testutil.ReadFile(t, root, "packages/p1/package.json")
	assert.Contains(t, p1, `"left": "^1.3.0"`)
	assert.Contains(t, p1, `"right": "1.0.0"`)
	assert.Contains(t, logs.String(), "Version string not found")

	p2 := testutil.ReadFile(t, root, "packages/p2/package.json")
	assert.Contains(t, p2, `"left": "^1.3.0"`)
}

func TestApply_UnknownPackage(t *testing.T) {
	t.Parallel()

	ctx, _ := testutil.Context(t)
	_, err := Apply(ctx, nil, []model.Edit{{Package: "ghost", Dependency: "x"}})
	assert.ErrorContains(t, err, "ghost")
}
