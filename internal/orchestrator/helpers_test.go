package orchestrator

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/monox/internal/config"
	"github.com/specialistvlad/monox/internal/testutil"
)

type fixture struct {
	ctx      context.Context
	logs     *testutil.SafeBuffer
	root     string
	runner   *testutil.FakeRunner
	registry *testutil.FakeRegistry
	observer *recordingObserver
	orch     *Orchestrator
}

type fixtureOptions struct {
	manifests map[string]testutil.Manifest
	behaviors map[string]testutil.Behavior
	versions  map[string]string
	configure func(m *config.Model)
}

func newFixture(t *testing.T, opts fixtureOptions) *fixture {
	t.Helper()
	ctx, logs := testutil.Context(t)
	root := testutil.Workspace(t, opts.manifests)

	cfg := config.Defaults()
	cfg.Workspace.Root = root
	cfg.Execution.MaxConcurrency = 4
	cfg.Execution.TaskTimeout = 0
	if opts.configure != nil {
		opts.configure(&cfg)
	}
	require.NoError(t, cfg.Validate())

	f := &fixture{
		ctx:      ctx,
		logs:     logs,
		root:     root,
		runner:   testutil.NewFakeRunner(opts.behaviors),
		registry: testutil.NewFakeRegistry(opts.versions),
		observer: &recordingObserver{},
	}
	orch, err := New(cfg, WithRunner(f.runner), WithRegistry(f.registry), WithObserver(f.observer))
	require.NoError(t, err)
	f.orch = orch
	return f
}

type recordingObserver struct {
	mu        sync.Mutex
	started   []string
	completed []TaskReport
	stages    []StageSummary
	runs      int
	lookups   map[string]bool
}

func (r *recordingObserver) TaskStarted(_ int, pkg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, pkg)
}

func (r *recordingObserver) TaskCompleted(_ int, report TaskReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, report)
}

func (r *recordingObserver) StageCompleted(s StageSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, s)
}

func (r *recordingObserver) RunCompleted(*RunSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs++
}

func (r *recordingObserver) RegistryLookup(dep string, found bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lookups == nil {
		r.lookups = map[string]bool{}
	}
	r.lookups[dep] = found
}

func deps(pairs ...string) map[string]string {
	m := map[string]string{}
	for i := 0; i+1 < len(pairs); i += 2 {
		m[pairs[i]] = pairs[i+1]
	}
	return m
}

func scripts(names ...string) map[string]string {
	m := map[string]string{}
	for _, n := range names {
		m[n] = "echo " + n
	}
	return m
}
