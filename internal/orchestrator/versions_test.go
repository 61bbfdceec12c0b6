package orchestrator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractVersion(t *testing.T) {
	t.Parallel()

	testCases := map[string]string{
		"^1.2.0":  "1.2.0",
		"~1.2.0":  "1.2.0",
		">=1.2.0": "1.2.0",
		"<=1.2.0": "1.2.0",
		">1.2.0":  "1.2.0",
		"<1.2.0":  "1.2.0",
		"=1.2.0":  "1.2.0",
		"1.2.0":   "1.2.0",
		"^^1.0.0": "^1.0.0",
		"latest":  "latest",
		"":        "",
	}

	for spec, want := range testCases {
		spec, want := spec, want
		t.Run(spec, func(t *testing.T) {
			t.Parallel()
			got := ExtractVersion(spec)
			assert.Equal(t, want, got)
			if ExtractVersion(want) == want {
				assert.Equal(t, want, ExtractVersion(got), "idempotent on bare versions")
			}
		})
	}
}

func TestIsLocalSpec(t *testing.T) {
	t.Parallel()

	for _, spec := range []string{"workspace:*", "file:../x", "link:../y", "git+ssh://h/r.git", "github:o/r", "npm:github:o/r"} {
		assert.True(t, IsLocalSpec(spec), spec)
	}
	for _, spec := range []string{"^1.0.0", "latest", "1.0.0 || 2.0.0", "npm:other@1"} {
		assert.False(t, IsLocalSpec(spec), spec)
	}
}

func TestRecommendedVersion(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in   []string
		want string
	}{
		{in: []string{"1.2.0", "1.3.0"}, want: "1.3.0"},
		{in: []string{"9.0.0", "10.0.0"}, want: "10.0.0"},
		{in: []string{"1.0.0-beta.1", "1.0.0"}, want: "1.0.0"},
		{in: []string{"9.0.0", "10.x"}, want: "9.0.0"},
		{in: []string{"only"}, want: "only"},
		{in: nil, want: ""},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, RecommendedVersion(tc.in), "%v", tc.in)
	}
}

func TestOptimalConcurrency(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		n, cpus, want int
	}{
		{n: 0, cpus: 8, want: 1},
		{n: 1, cpus: 8, want: 1},
		{n: 10, cpus: 8, want: 2},
		{n: 11, cpus: 8, want: 5},
		{n: 50, cpus: 8, want: 8},
		{n: 50, cpus: 32, want: 25},
		{n: 51, cpus: 8, want: 12},
		{n: 200, cpus: 8, want: 16},
		{n: 201, cpus: 8, want: 24},
		{n: 1000, cpus: 8, want: 24},
		{n: 1000, cpus: 64, want: 125},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(fmt.Sprintf("n=%d cpus=%d", tc.n, tc.cpus), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, optimalConcurrency(tc.n, tc.cpus))
		})
	}
}
