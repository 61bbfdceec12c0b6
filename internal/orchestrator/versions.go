package orchestrator

import (
	"runtime"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/specialistvlad/monox/internal/manifestedit"
)

// localPrefixes mark specs that resolve inside the repository.
var localPrefixes = []string{"workspace:", "file:", "link:"}

// localMarkers mark specs that resolve from a git host.
var localMarkers = []string{"git+", "github:"}

// IsLocalSpec reports whether spec resolves without the registry.
func IsLocalSpec(spec string) bool {
	for _, p := range localPrefixes {
		if strings.HasPrefix(spec, p) {
			return true
		}
	}
	for _, m := range localMarkers {
		if strings.Contains(spec, m) {
			return true
		}
	}
	return false
}

// ExtractVersion strips one leading range operator from spec. The longest
// matching operator wins, so ">=1.0.0" yields "1.0.0".
func ExtractVersion(spec string) string {
	return spec[len(manifestedit.Prefix(spec)):]
}

// IsSatisfied reports whether current already is latest. Only literal
// equality counts; ranges are not resolved.
func IsSatisfied(current, latest string) bool {
	return current == latest
}

// RecommendedVersion picks the version every usage should converge on: the
// highest by semantic-version order when all candidates parse as semver, the
// lexicographic maximum otherwise.
func RecommendedVersion(versions []string) string {
	if len(versions) == 0 {
		return ""
	}
	allSemver := true
	for _, v := range versions {
		if !semver.IsValid(canonical(v)) {
			allSemver = false
			break
		}
	}
	best := versions[0]
	for _, v := range versions[1:] {
		if allSemver {
			if semver.Compare(canonical(v), canonical(best)) > 0 {
				best = v
			}
		} else if v > best {
			best = v
		}
	}
	return best
}

func canonical(v string) string {
	if strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}

// OptimalConcurrency sizes the registry fan-out for n lookups.
func OptimalConcurrency(n int) int {
	return optimalConcurrency(n, runtime.NumCPU())
}

func optimalConcurrency(n, cpus int) int {
	if n <= 0 {
		return 1
	}
	var c int
	switch {
	case n <= 10:
		c = min(n, 2)
	case n <= 50:
		c = min(n/2, cpus)
	case n <= 200:
		c = min(n/4, 2*cpus)
	default:
		c = min(n/8, 3*cpus)
	}
	return max(1, min(c, n))
}
