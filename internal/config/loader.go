package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/monox/internal/ctxlog"
)

// Loader reads one configuration file on top of a base model.
type Loader interface {
	Load(ctx context.Context, path string, base Model) (Model, error)
}

// CandidateFiles are the file names probed, in order, when no explicit path
// is given.
var CandidateFiles = []string{"monox.hcl", "monox.yaml", "monox.yml"}

// Discover returns the first candidate file present in dir, or "".
func Discover(dir string) string {
	for _, name := range CandidateFiles {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// LoaderFor picks the loader matching the file extension.
func LoaderFor(path string) (Loader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return NewHCLLoader(), nil
	case ".yaml", ".yml":
		return NewYAMLLoader(), nil
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", path)
	}
}

// Options tells Load where to find each source.
type Options struct {
	// Path is an explicit config file. Empty means discovery in Dir.
	Path string
	// Dir is the working directory used for discovery and .env lookup.
	Dir string
	// Environ is the process environment in "KEY=value" form.
	Environ   []string
	Overrides RuntimeOverrides
}

// Load resolves the full configuration and validates it.
func Load(ctx context.Context, opts Options) (Model, error) {
	logger := ctxlog.FromContext(ctx)
	m := Defaults()

	path := opts.Path
	if path == "" {
		path = Discover(opts.Dir)
	} else if _, err := os.Stat(path); err != nil {
		return Model{}, fmt.Errorf("config file %s: %w", path, err)
	}
	if path != "" {
		loader, err := LoaderFor(path)
		if err != nil {
			return Model{}, err
		}
		m, err = loader.Load(ctx, path, m)
		if err != nil {
			return Model{}, err
		}
		logger.Debug("Loaded config file.", "path", path)
	} else {
		logger.Debug("No config file found, using defaults.", "dir", opts.Dir)
	}

	dotenv := filepath.Join(opts.Dir, ".env")
	if err := ApplyEnv(&m, dotenv, opts.Environ); err != nil {
		return Model{}, err
	}
	opts.Overrides.Apply(&m)

	if err := m.Validate(); err != nil {
		return Model{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return m, nil
}

// IsNotExist reports whether err is a missing-file error from Load.
func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
