package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/specialistvlad/monox/internal/config"
	"github.com/specialistvlad/monox/internal/ctxlog"
	"github.com/specialistvlad/monox/internal/events"
	"github.com/specialistvlad/monox/internal/localexecutor"
	"github.com/specialistvlad/monox/internal/metrics"
	"github.com/specialistvlad/monox/internal/orchestrator"
	"github.com/specialistvlad/monox/internal/registry"
	"github.com/specialistvlad/monox/internal/render"
)

// Streams are the standard streams of one invocation. Results go to Out,
// logs and progress to Err.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx     context.Context
	streams Streams
	logger  *slog.Logger
	config  *Config
	model   config.Model

	orch       *orchestrator.Orchestrator
	registry   registry.Client
	metrics    *metrics.Collectors
	httpServer *http.Server
	closers    []io.Closer
}

// Option customizes NewApp. It is mainly used by tests to swap the process
// runner or the registry for fakes.
type Option func(*options)

type options struct {
	runner   localexecutor.Runner
	registry registry.Client
	emitter  events.Emitter
}

// WithRunner replaces the child-process runner.
func WithRunner(r localexecutor.Runner) Option {
	return func(o *options) { o.runner = r }
}

// WithRegistry replaces the registry client. The cache decorator is still
// applied on top of it.
func WithRegistry(c registry.Client) Option {
	return func(o *options) { o.registry = c }
}

// WithEmitter streams lifecycle events to e instead of dialing EventsURL.
func WithEmitter(e events.Emitter) Option {
	return func(o *options) { o.emitter = e }
}

// NewApp resolves the configuration, builds the logger, and wires the
// orchestrator with its registry client and observers. Close must be called
// when the App is no longer needed.
func NewApp(ctx context.Context, streams Streams, appConfig *Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	// Configuration decides the log level, so it is loaded with a quiet logger.
	boot := newLogger(slog.LevelWarn, appConfig.LogFormat, streams.Err)
	cfg, err := config.Load(ctxlog.WithLogger(ctx, boot), config.Options{
		Path:      appConfig.ConfigPath,
		Dir:       appConfig.Dir,
		Environ:   appConfig.Environ,
		Overrides: appConfig.Overrides,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := newLogger(logLevel(cfg.Output.Verbose), appConfig.LogFormat, streams.Err)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Configuration resolved.",
		"root", cfg.Workspace.Root,
		"package_manager", cfg.Workspace.PackageManager,
		"max_concurrency", cfg.Execution.MaxConcurrency,
		"tasks", len(cfg.Tasks),
	)

	a := &App{ctx: ctx, streams: streams, logger: logger, config: appConfig, model: cfg}

	runner := o.runner
	if runner == nil {
		runner = localexecutor.New()
	}
	client, err := a.newRegistry(runner, o.registry)
	if err != nil {
		return nil, err
	}
	a.registry = client

	var observers orchestrator.Observers
	if cfg.Output.ShowProgress {
		observers = append(observers, a.renderer(render.FormatTable, false).StageReporter(streams.Err))
	}
	if appConfig.HealthcheckPort > 0 {
		a.metrics = metrics.New()
		observers = append(observers, a.metrics)
	}
	if emitter := a.eventEmitter(o.emitter); emitter != nil {
		observers = append(observers, events.NewReporter(ctx, emitter))
	}

	a.orch, err = orchestrator.New(cfg,
		orchestrator.WithRunner(runner),
		orchestrator.WithRegistry(client),
		orchestrator.WithObserver(observers),
	)
	if err != nil {
		a.Close()
		return nil, err
	}

	if appConfig.HealthcheckPort > 0 {
		a.healthCheckServer()
	}
	return a, nil
}

// newRegistry picks the HTTP binding when a registry URL is configured and
// the package manager binding otherwise, then adds the LRU cache.
func (a *App) newRegistry(runner localexecutor.Runner, override registry.Client) (registry.Client, error) {
	inner := override
	switch {
	case inner != nil:
	case a.model.Registry.URL != "":
		httpClient := registry.NewHTTPClient(a.model.Registry.URL, registry.DefaultTimeout)
		a.closers = append(a.closers, httpClient)
		inner = httpClient
		a.logger.Debug("Using registry HTTP binding.", "url", a.model.Registry.URL)
	default:
		root, err := filepath.Abs(a.model.Workspace.Root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve workspace root %q: %w", a.model.Workspace.Root, err)
		}
		inner = registry.NewCommandClient(runner, a.model.Workspace.PackageManager, root)
	}
	return registry.NewCached(inner, a.model.Registry.CacheSize)
}

// eventEmitter returns the injected emitter or dials EventsURL. Dial
// failures are logged and disable streaming.
func (a *App) eventEmitter(injected events.Emitter) events.Emitter {
	if injected != nil {
		return injected
	}
	if a.config.EventsURL == "" {
		return nil
	}
	conn, err := events.Dial(a.ctx, a.config.EventsURL, events.DialOptions{})
	if err != nil {
		a.logger.Warn("Event streaming disabled.", "url", a.config.EventsURL, "error", err)
		return nil
	}
	a.closers = append(a.closers, conn)
	return conn
}

// Model returns the resolved configuration.
func (a *App) Model() config.Model { return a.model }

// Orchestrator returns the wired orchestrator. This is primarily for testing.
func (a *App) Orchestrator() *orchestrator.Orchestrator { return a.orch }

// Metrics returns the collectors, or nil when the health server is disabled.
func (a *App) Metrics() *metrics.Collectors { return a.metrics }

// Close stops the health server and releases network clients.
func (a *App) Close() error {
	var errs []error
	if err := a.closeHealthCheckServer(); err != nil {
		errs = append(errs, err)
	}
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// renderer builds a renderer for Out honoring the output settings.
func (a *App) renderer(format render.Format, detail bool) *render.Renderer {
	return render.New(a.streams.Out, render.Options{
		Format:   format,
		Colored:  a.model.Output.Colored,
		Verbose:  a.model.Output.Verbose,
		Detail:   detail,
		Language: a.model.I18n.Language,
	})
}

// progress returns a progress callback drawing on Err, or nil when progress
// display is disabled or the output is structured.
func (a *App) progress(r *render.Renderer) (func(completed, total int), func()) {
	if !a.model.Output.ShowProgress || r.Structured() {
		return nil, func() {}
	}
	bar := r.Progress(a.streams.Err, "Checking registry")
	return bar.Update, bar.Finish
}
