package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/specialistvlad/monox/internal/config"
	"github.com/specialistvlad/monox/internal/ignore"
	"github.com/specialistvlad/monox/internal/localexecutor"
	"github.com/specialistvlad/monox/internal/model"
	"github.com/specialistvlad/monox/internal/registry"
	"github.com/specialistvlad/monox/internal/workspace"
)

var (
	// ErrScriptMissing is returned when a named target package lacks the
	// requested script.
	ErrScriptMissing = errors.New("script missing")
	// ErrPackageNotFound is returned for a target package that is not part of
	// the workspace.
	ErrPackageNotFound = errors.New("package not found")
	// ErrTaskNotFound is returned for an unknown predefined task.
	ErrTaskNotFound = errors.New("task not found")
	// ErrTasksFailed is returned by RunSummary.Err when a task failed or
	// timed out.
	ErrTasksFailed = errors.New("tasks failed")
)

// Orchestrator runs the workspace workflows for one configuration.
type Orchestrator struct {
	cfg      config.Model
	root     string
	runner   localexecutor.Runner
	registry registry.Client
	observer Observer
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithRunner replaces the child-process runner.
func WithRunner(r localexecutor.Runner) Option {
	return func(o *Orchestrator) { o.runner = r }
}

// WithRegistry replaces the registry client.
func WithRegistry(c registry.Client) Option {
	return func(o *Orchestrator) { o.registry = c }
}

// WithObserver installs an observer.
func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) { o.observer = obs }
}

// New creates an orchestrator. Without options it runs real child processes
// and queries the registry through the package manager.
func New(cfg config.Model, opts ...Option) (*Orchestrator, error) {
	root, err := filepath.Abs(cfg.Workspace.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace root %q: %w", cfg.Workspace.Root, err)
	}
	o := &Orchestrator{cfg: cfg, root: root, observer: NopObserver{}}
	for _, opt := range opts {
		opt(o)
	}
	if o.runner == nil {
		o.runner = localexecutor.New()
	}
	if o.registry == nil {
		o.registry = registry.NewCommandClient(o.runner, cfg.Workspace.PackageManager, root)
	}
	return o, nil
}

// Config returns the configuration the orchestrator was built with.
func (o *Orchestrator) Config() config.Model { return o.cfg }

// Root returns the absolute workspace root.
func (o *Orchestrator) Root() string { return o.root }

// Scan returns the workspace packages sorted by name.
func (o *Orchestrator) Scan(ctx context.Context) ([]*model.Package, error) {
	pkgs, err := workspace.NewScanner(o.root, ignore.New(o.cfg.Workspace.Ignore)).Scan(ctx)
	if err != nil {
		return nil, err
	}
	model.SortPackages(pkgs)
	return pkgs, nil
}
