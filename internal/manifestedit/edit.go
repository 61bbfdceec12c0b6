// Package manifestedit rewrites dependency version strings inside
// package.json files without reformatting them.
package manifestedit

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/specialistvlad/monox/internal/ctxlog"
	"github.com/specialistvlad/monox/internal/model"
)

// versionPrefixes are the range operators kept in front of a rewritten
// version, longest first.
var versionPrefixes = []string{">=", "<=", "^", "~", ">", "<", "="}

// ReplaceVersion replaces every `"dep": "oldSpec"` in content with
// `"dep": "newSpec"`, tolerating any whitespace around the colon. It reports
// whether anything changed.
func ReplaceVersion(content, dep, oldSpec, newSpec string) (string, bool) {
	pattern := regexp.MustCompile(`"` + regexp.QuoteMeta(dep) + `"(\s*):(\s*)"` + regexp.QuoteMeta(oldSpec) + `"`)
	if !pattern.MatchString(content) {
		return content, false
	}
	replacement := fmt.Sprintf(`"%s": "%s"`, dep, newSpec)
	out := pattern.ReplaceAllLiteralString(content, replacement)
	return out, out != content
}

// Prefix returns the range operator spec starts with, or "".
func Prefix(spec string) string {
	for _, p := range versionPrefixes {
		if strings.HasPrefix(spec, p) {
			return p
		}
	}
	return ""
}

// PreserveVersionFormat returns version carrying the range operator of
// oldSpec. A version that already has an operator is returned as is.
func PreserveVersionFormat(oldSpec, version string) string {
	if Prefix(version) != "" {
		return version
	}
	return Prefix(oldSpec) + version
}

// Applied is one edit that changed a manifest.
type Applied struct {
	model.Edit
	Path string
}

// Apply performs the edits against the manifests of pkgs. Edits are grouped
// per manifest so each file is read and written once. Edits whose old spec
// is not found are skipped. The returned slice lists the edits that changed a
// file, ordered by package then dependency.
func Apply(ctx context.Context, pkgs []*model.Package, edits []model.Edit) ([]Applied, error) {
	logger := ctxlog.FromContext(ctx)

	byName := make(map[string]*model.Package, len(pkgs))
	for _, p := range pkgs {
		byName[p.Name] = p
	}
	grouped := make(map[string][]model.Edit)
	for _, e := range edits {
		grouped[e.Package] = append(grouped[e.Package], e)
	}
	names := make([]string, 0, len(grouped))
	for n := range grouped {
		names = append(names, n)
	}
	sort.Strings(names)

	var applied []Applied
	for _, name := range names {
		pkg, ok := byName[name]
		if !ok {
			return applied, fmt.Errorf("package %q is not part of the workspace", name)
		}
		raw, err := os.ReadFile(pkg.ManifestPath)
		if err != nil {
			return applied, fmt.Errorf("failed to read %s: %w", pkg.ManifestPath, err)
		}
		content := string(raw)
		var changed []Applied

		pkgEdits := grouped[name]
		sort.SliceStable(pkgEdits, func(i, j int) bool { return pkgEdits[i].Dependency < pkgEdits[j].Dependency })
		for _, e := range pkgEdits {
			next, ok := ReplaceVersion(content, e.Dependency, e.OldVersion, e.NewVersion)
			if !ok {
				logger.Warn("Version string not found, skipping edit.", "package", name, "dependency", e.Dependency, "spec", e.OldVersion)
				continue
			}
			content = next
			changed = append(changed, Applied{Edit: e, Path: pkg.ManifestPath})
		}
		if len(changed) == 0 {
			continue
		}

		info, err := os.Stat(pkg.ManifestPath)
		if err != nil {
			return applied, err
		}
		if err := os.WriteFile(pkg.ManifestPath, []byte(content), info.Mode().Perm()); err != nil {
			return applied, fmt.Errorf("failed to write %s: %w", pkg.ManifestPath, err)
		}
		logger.Info("Updated manifest.", "package", name, "edits", len(changed))
		applied = append(applied, changed...)
	}
	return applied, nil
}
