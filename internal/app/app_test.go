package app

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/monox/internal/orchestrator"
	"github.com/specialistvlad/monox/internal/render"
	"github.com/specialistvlad/monox/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chainWorkspace(t *testing.T) string {
	t.Helper()
	return testutil.Workspace(t, map[string]testutil.Manifest{
		"a": {Name: "a", Version: "1.0.0", Deps: map[string]string{"lodash": "^4.17.20"}, Scripts: map[string]string{"build": "tsc"}},
		"b": {Name: "b", Version: "1.0.0", Deps: map[string]string{"a": "workspace:*", "lodash": "^4.17.21"}, Scripts: map[string]string{"build": "tsc"}},
		"c": {Name: "c", Version: "1.0.0", Deps: map[string]string{"b": "workspace:*"}, Scripts: map[string]string{"test": "jest"}},
	})
}

func TestNewConfig(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		in      Config
		wantErr string
	}{
		{name: "defaults", in: Config{}},
		{name: "json logs", in: Config{LogFormat: "json"}},
		{name: "bad log format", in: Config{LogFormat: "xml"}, wantErr: "invalid log-format"},
		{name: "negative port", in: Config{HealthcheckPort: -1}, wantErr: "healthcheck-port"},
		{name: "port too large", in: Config{HealthcheckPort: 70000}, wantErr: "healthcheck-port"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := NewConfig(tc.in)
			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, ".", cfg.Dir)
			assert.NotEmpty(t, cfg.LogFormat)
		})
	}
}

func TestNewApp_InvalidConfiguration(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := chainWorkspace(t)
	testutil.WriteFiles(t, root, map[string]string{"monox.yaml": "workspace:\n  package_manager: bower\n"})
	cfg, err := NewConfig(Config{Dir: root})
	require.NoError(t, err)

	// --- Act ---
	_, err = NewApp(t.Context(), Streams{Out: io.Discard, Err: io.Discard}, cfg)

	// --- Assert ---
	require.ErrorContains(t, err, "failed to load configuration")
	assert.ErrorContains(t, err, "bower")
}

func TestApp_Analyze(t *testing.T) {
	t.Parallel()

	t.Run("json stages", func(t *testing.T) {
		t.Parallel()
		// --- Arrange ---
		a, streams := SetupAppTest(t, chainWorkspace(t), Config{}, "")

		// --- Act ---
		err := a.Analyze(AnalyzeOptions{Format: render.FormatJSON})

		// --- Assert ---
		require.NoError(t, err)
		var got struct {
			Stages [][]string `json:"stages"`
		}
		require.NoError(t, json.Unmarshal([]byte(streams.Out.String()), &got))
		assert.Equal(t, [][]string{{"a"}, {"b"}, {"c"}}, got.Stages)
		assert.Contains(t, streams.Err.String(), "level=DEBUG", "verbose runs log at debug level")
	})

	t.Run("single package closure", func(t *testing.T) {
		t.Parallel()
		a, streams := SetupAppTest(t, chainWorkspace(t), Config{}, "")

		require.NoError(t, a.Analyze(AnalyzeOptions{Package: "b"}))

		assert.Contains(t, streams.Out.String(), "Total packages: 2")
	})

	t.Run("unknown package", func(t *testing.T) {
		t.Parallel()
		a, _ := SetupAppTest(t, chainWorkspace(t), Config{}, "")

		err := a.Analyze(AnalyzeOptions{Package: "nope"})

		require.ErrorIs(t, err, orchestrator.ErrPackageNotFound)
	})
}

func TestApp_Check(t *testing.T) {
	t.Parallel()

	t.Run("circular by default and clean", func(t *testing.T) {
		t.Parallel()
		a, streams := SetupAppTest(t, chainWorkspace(t), Config{}, "")

		require.NoError(t, a.Check(CheckOptions{}))

		assert.Contains(t, streams.Out.String(), "No circular dependencies found")
	})

	t.Run("version conflicts are issues", func(t *testing.T) {
		t.Parallel()
		a, streams := SetupAppTest(t, chainWorkspace(t), Config{}, "")

		err := a.Check(CheckOptions{Versions: true})

		require.ErrorIs(t, err, ErrIssuesFound)
		assert.Contains(t, streams.Out.String(), "lodash")
		assert.Contains(t, streams.Out.String(), "recommended: 4.17.21")
	})

	t.Run("outdated lookups go through the cache", func(t *testing.T) {
		t.Parallel()
		// --- Arrange ---
		reg := testutil.NewFakeRegistry(map[string]string{"lodash": "4.17.21"})
		a, streams := SetupAppTest(t, chainWorkspace(t), Config{}, "", WithRegistry(reg))

		// --- Act ---
		first := a.Check(CheckOptions{Outdated: true, Format: render.FormatJSON})
		second := a.Check(CheckOptions{Outdated: true, Format: render.FormatJSON})

		// --- Assert ---
		require.ErrorIs(t, first, ErrIssuesFound)
		require.ErrorIs(t, second, ErrIssuesFound)
		assert.Equal(t, 1, reg.Queries("lodash"))
		assert.Contains(t, streams.Out.String(), `"outdated_dependencies"`)
	})
}

func TestApp_Run(t *testing.T) {
	t.Parallel()

	t.Run("all packages", func(t *testing.T) {
		t.Parallel()
		// --- Arrange ---
		runner := testutil.NewFakeRunner(nil)
		a, streams := SetupAppTest(t, chainWorkspace(t), Config{}, "", WithRunner(runner))

		// --- Act ---
		summary, err := a.Run(RunOptions{Script: "build", All: true})

		// --- Assert ---
		require.NoError(t, err)
		assert.Equal(t, 2, summary.Succeeded)
		assert.Equal(t, 1, summary.Skipped)
		assert.Len(t, runner.Calls(), 2)
		assert.Contains(t, streams.Out.String(), "Run Summary: build")
	})

	t.Run("failed task", func(t *testing.T) {
		t.Parallel()
		runner := testutil.NewFakeRunner(map[string]testutil.Behavior{"a": {ExitCode: 2, Stderr: "boom"}})
		a, streams := SetupAppTest(t, chainWorkspace(t), Config{}, "", WithRunner(runner))

		summary, err := a.Run(RunOptions{Script: "build", All: true})

		require.ErrorIs(t, err, orchestrator.ErrTasksFailed)
		require.NotNil(t, summary)
		assert.Equal(t, 2, summary.NotStarted, "b and c stages never start")
		assert.Contains(t, streams.Out.String(), "Output of a:")
	})

	t.Run("single package runs its closure", func(t *testing.T) {
		t.Parallel()
		runner := testutil.NewFakeRunner(nil)
		a, _ := SetupAppTest(t, chainWorkspace(t), Config{}, "", WithRunner(runner))

		summary, err := a.Run(RunOptions{Script: "build", Package: "b"})

		require.NoError(t, err)
		assert.Equal(t, 2, summary.Succeeded)
	})

	t.Run("no target", func(t *testing.T) {
		t.Parallel()
		a, _ := SetupAppTest(t, chainWorkspace(t), Config{}, "")

		_, err := a.Run(RunOptions{Script: "build"})

		require.ErrorIs(t, err, ErrNoTarget)
	})

	t.Run("missing script", func(t *testing.T) {
		t.Parallel()
		a, _ := SetupAppTest(t, chainWorkspace(t), Config{}, "")

		_, err := a.Run(RunOptions{Script: "build", Package: "c"})

		require.ErrorIs(t, err, orchestrator.ErrScriptMissing)
	})
}

func TestApp_Exec(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := chainWorkspace(t)
	testutil.WriteFiles(t, root, map[string]string{"monox.yaml": `
tasks:
  - name: build-all
    packages: "*"
    command: build
    desc: Build everything
  - name: test-c
    pkg_name: c
    command: test
`})
	runner := testutil.NewFakeRunner(nil)
	a, _ := SetupAppTest(t, root, Config{}, "", WithRunner(runner))

	t.Run("workspace task", func(t *testing.T) {
		summary, err := a.Exec("build-all", render.FormatTable)
		require.NoError(t, err)
		assert.Equal(t, 2, summary.Succeeded)
	})

	t.Run("package task", func(t *testing.T) {
		summary, err := a.Exec("test-c", render.FormatTable)
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Succeeded)
	})

	t.Run("unknown task", func(t *testing.T) {
		_, err := a.Exec("deploy", render.FormatTable)
		require.ErrorIs(t, err, orchestrator.ErrTaskNotFound)
	})
}

func TestApp_Fix(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		stdin       string
		opts        EditOptions
		wantChanged bool
	}{
		{name: "confirmed", stdin: "y\n", wantChanged: true},
		{name: "declined", stdin: "n\n", wantChanged: false},
		{name: "no answer", stdin: "", wantChanged: false},
		{name: "yes flag", opts: EditOptions{Yes: true}, wantChanged: true},
		{name: "dry run", stdin: "y\n", opts: EditOptions{DryRun: true}, wantChanged: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			// --- Arrange ---
			root := chainWorkspace(t)
			a, streams := SetupAppTest(t, root, Config{}, tc.stdin)

			// --- Act ---
			err := a.Fix(tc.opts)

			// --- Assert ---
			require.NoError(t, err)
			manifest := testutil.ReadFile(t, root, "packages/a/package.json")
			if tc.wantChanged {
				assert.Contains(t, manifest, `"lodash": "^4.17.21"`)
				assert.Contains(t, streams.Out.String(), "Applied Changes")
			} else {
				assert.Contains(t, manifest, `"lodash": "^4.17.20"`)
				assert.Contains(t, streams.Out.String(), "Planned Changes")
			}
		})
	}
}

func TestApp_Update(t *testing.T) {
	t.Parallel()

	t.Run("explicit version", func(t *testing.T) {
		t.Parallel()
		root := chainWorkspace(t)
		a, _ := SetupAppTest(t, root, Config{}, "")

		err := a.Update(UpdateOptions{Dependency: "lodash", Version: "4.18.0", EditOptions: EditOptions{Yes: true}})

		require.NoError(t, err)
		assert.Contains(t, testutil.ReadFile(t, root, "packages/a/package.json"), `"lodash": "^4.18.0"`)
		assert.Contains(t, testutil.ReadFile(t, root, "packages/b/package.json"), `"lodash": "^4.18.0"`)
	})

	t.Run("all outdated from registry", func(t *testing.T) {
		t.Parallel()
		root := chainWorkspace(t)
		reg := testutil.NewFakeRegistry(map[string]string{"lodash": "4.17.21"})
		a, streams := SetupAppTest(t, root, Config{}, "", WithRegistry(reg))

		err := a.Update(UpdateOptions{All: true, EditOptions: EditOptions{Yes: true, Format: render.FormatJSON}})

		require.NoError(t, err)
		assert.Contains(t, testutil.ReadFile(t, root, "packages/a/package.json"), `"lodash": "^4.17.21"`)
		assert.Contains(t, streams.Out.String(), `"new_version": "^4.17.21"`)
	})

	t.Run("nothing selected", func(t *testing.T) {
		t.Parallel()
		a, _ := SetupAppTest(t, chainWorkspace(t), Config{}, "")

		require.Error(t, a.Update(UpdateOptions{}))
	})
}

func TestInit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := filepath.Join(t.TempDir(), "monox.hcl")
	var first, second SafeBuffer

	// --- Act ---
	require.NoError(t, Init(&first, InitOptions{Path: path}))
	require.NoError(t, Init(&second, InitOptions{Path: path}))

	// --- Assert ---
	assert.Contains(t, first.String(), "Config file created")
	assert.Contains(t, second.String(), "Config file already exists")
	assert.Contains(t, testutil.ReadFile(t, filepath.Dir(path), "monox.hcl"), `task "build"`)
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestApp_HealthAndMetrics(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	runner := testutil.NewFakeRunner(nil)
	a, _ := SetupAppTest(t, chainWorkspace(t), Config{HealthcheckPort: freePort(t)}, "", WithRunner(runner))
	_, err := a.Run(RunOptions{Script: "build", All: true})
	require.NoError(t, err)
	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)

	get := func(path string) (int, string) {
		res, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		defer res.Body.Close()
		body, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		return res.StatusCode, string(body)
	}

	// --- Act ---
	healthCode, healthBody := get("/health")
	metricsCode, metricsBody := get("/metrics")

	// --- Assert ---
	assert.Equal(t, http.StatusOK, healthCode)
	assert.Equal(t, "OK\n", healthBody)
	assert.Equal(t, http.StatusOK, metricsCode)
	assert.Contains(t, metricsBody, `monox_tasks_total{result="success"} 2`)
	assert.Contains(t, metricsBody, "monox_tasks_running 0")
}

func TestApp_HealthWithoutMetrics(t *testing.T) {
	t.Parallel()

	a, _ := SetupAppTest(t, chainWorkspace(t), Config{}, "")
	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)

	res, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Nil(t, a.Metrics())
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingEmitter) Emit(event string, _ ...any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func TestApp_Events(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	em := &recordingEmitter{}
	a, _ := SetupAppTest(t, chainWorkspace(t), Config{}, "", WithRunner(testutil.NewFakeRunner(nil)), WithEmitter(em))

	// --- Act ---
	_, err := a.Run(RunOptions{Script: "build", Package: "a"})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{"task_started", "task_completed", "stage_completed", "run_completed"}, em.events)
}
