package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/specialistvlad/monox/internal/model"
)

// ManifestName is the file name of a package manifest.
const ManifestName = "package.json"

// manifestFile is the subset of package.json the engine consumes. Values of
// the dependency and script maps are decoded loosely: anything that is not a
// string becomes the empty string.
type manifestFile struct {
	Name             *string        `json:"name"`
	Version          *string        `json:"version"`
	Dependencies     map[string]any `json:"dependencies"`
	DevDependencies  map[string]any `json:"devDependencies"`
	PeerDependencies map[string]any `json:"peerDependencies"`
	Scripts          map[string]any `json:"scripts"`
}

func (m *manifestFile) section(kind model.DependencyKind) map[string]any {
	switch kind {
	case model.KindRuntime:
		return m.Dependencies
	case model.KindDevelopment:
		return m.DevDependencies
	case model.KindPeer:
		return m.PeerDependencies
	}
	return nil
}

// ParseManifest reads and decodes the manifest at path. root is the workspace
// root; it is used to compute the package folder.
func ParseManifest(root, path string) (*model.Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrManifestUnreadable, path, err)
	}
	return DecodeManifest(root, path, data)
}

// DecodeManifest decodes manifest bytes read from path.
func DecodeManifest(root, path string, data []byte) (*model.Package, error) {
	var mf manifestFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrManifestUnparseable, path, err)
	}

	dir := filepath.Dir(path)
	folder, err := filepath.Rel(root, dir)
	if err != nil {
		folder = dir
	}

	pkg := &model.Package{
		Name:         filepath.Base(dir),
		Version:      model.DefaultVersion,
		Folder:       folder,
		Dir:          dir,
		ManifestPath: path,
		Dependencies: make(map[string]string),
		Scripts:      make(map[string]string),
	}
	if mf.Name != nil && *mf.Name != "" {
		pkg.Name = *mf.Name
	}
	if mf.Version != nil && *mf.Version != "" {
		pkg.Version = *mf.Version
	}

	for _, kind := range model.DependencyKinds {
		section := mf.section(kind)
		names := make([]string, 0, len(section))
		for name := range section {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			spec := asString(section[name])
			pkg.Dependencies[name] = spec
			pkg.Declared = append(pkg.Declared, model.Dependency{Name: name, Spec: spec, Kind: kind})
		}
	}

	for name, cmd := range mf.Scripts {
		pkg.Scripts[name] = asString(cmd)
	}

	return pkg, nil
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
