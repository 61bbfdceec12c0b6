package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/specialistvlad/monox/internal/ctxlog"
	"github.com/specialistvlad/monox/internal/fsutil"
	"github.com/specialistvlad/monox/internal/ignore"
	"github.com/specialistvlad/monox/internal/model"
	"golang.org/x/sync/errgroup"
)

// Scanner enumerates the packages of one workspace.
type Scanner struct {
	root    string
	matcher *ignore.Matcher
}

// NewScanner creates a scanner for the workspace rooted at root. A nil
// matcher only prunes node_modules.
func NewScanner(root string, matcher *ignore.Matcher) *Scanner {
	if matcher == nil {
		matcher = ignore.New(nil)
	}
	return &Scanner{root: root, matcher: matcher}
}

// Root returns the absolute workspace root, or the configured value when it
// cannot be made absolute.
func (s *Scanner) Root() string {
	if abs, err := filepath.Abs(s.root); err == nil {
		return abs
	}
	return s.root
}

// Scan walks the workspace and parses every manifest below the root. The
// result is sorted by folder. Manifests that cannot be read or decoded are
// skipped. When two manifests declare the same name the later folder wins.
func (s *Scanner) Scan(ctx context.Context) ([]*model.Package, error) {
	logger := ctxlog.FromContext(ctx)
	root := s.Root()

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrWorkspaceNotFound, root)
	}

	logger.Debug("Scanning workspace.", "root", root, "ignore", s.matcher.Patterns())
	paths, err := fsutil.FindFilesByName(root, ManifestName, s.matcher.Match)
	if err != nil {
		return nil, fmt.Errorf("failed to walk workspace %s: %w", root, err)
	}

	rootManifest := filepath.Join(root, ManifestName)
	manifests := paths[:0]
	for _, p := range paths {
		if p == rootManifest {
			logger.Debug("Skipping workspace root manifest.", "path", p)
			continue
		}
		manifests = append(manifests, p)
	}
	sort.Strings(manifests)
	logger.Debug("Manifests discovered.", "count", len(manifests))

	parsed := make([]*model.Package, len(manifests))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range manifests {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pkg, err := ParseManifest(root, path)
			if err != nil {
				if errors.Is(err, ErrManifestUnreadable) || errors.Is(err, ErrManifestUnparseable) {
					logger.Debug("Skipping manifest.", "path", path, "error", err)
					return nil
				}
				return err
			}
			parsed[i] = pkg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byName := make(map[string]int)
	var packages []*model.Package
	for _, pkg := range parsed {
		if pkg == nil {
			continue
		}
		if idx, dup := byName[pkg.Name]; dup {
			logger.Warn("Duplicate package name, keeping the last one.",
				"name", pkg.Name, "dropped", packages[idx].Folder, "kept", pkg.Folder)
			packages[idx] = pkg
			continue
		}
		byName[pkg.Name] = len(packages)
		packages = append(packages, pkg)
	}

	if len(packages) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrWorkspaceEmpty, root)
	}
	logger.Debug("Workspace scan complete.", "packages", len(packages))
	return packages, nil
}
