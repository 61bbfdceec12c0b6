// Package fsutil provides file system utility functions.
package fsutil

import (
	"io/fs"
	"path/filepath"
)

// SkipFunc reports whether a path, given relative to the parent of the walk
// root, must be pruned.
type SkipFunc func(rel string) bool

// FindFilesByName walks rootPath without following symbolic links and returns
// the full paths of every file whose base name equals name. Directories for
// which skip returns true are not descended into; matching files for which
// skip returns true are dropped. A nil skip prunes nothing.
func FindFilesByName(rootPath, name string, skip SkipFunc) ([]string, error) {
	if name == "" {
		panic("name must not be empty")
	}

	root, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, err
	}
	parent := filepath.Dir(root)

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if skip != nil && path != root {
			rel, relErr := filepath.Rel(parent, path)
			if relErr != nil {
				return relErr
			}
			if skip(rel) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}
		if !d.IsDir() && d.Name() == name {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}
