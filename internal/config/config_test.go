package config

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	m := Defaults()

	assert.Equal(t, ".", m.Workspace.Root)
	assert.Equal(t, "pnpm", m.Workspace.PackageManager)
	assert.Equal(t, []string{".git", "dist", "*.log"}, m.Workspace.Ignore)
	assert.Equal(t, runtime.NumCPU(), m.Execution.MaxConcurrency)
	assert.Equal(t, 300, m.Execution.TaskTimeout)
	assert.Equal(t, 0, m.Execution.RetryCount)
	assert.False(t, m.Execution.ContinueOnFailure)
	assert.True(t, m.Output.ShowProgress)
	assert.False(t, m.Output.Verbose)
	assert.True(t, m.Output.Colored)
	assert.Equal(t, "en_us", m.I18n.Language)
	assert.Equal(t, 1024, m.Registry.CacheSize)
	assert.NoError(t, m.Validate())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		mutate  func(m *Model)
		wantErr string
	}{
		{name: "unknown package manager", mutate: func(m *Model) { m.Workspace.PackageManager = "bun" }, wantErr: "package_manager"},
		{name: "zero concurrency", mutate: func(m *Model) { m.Execution.MaxConcurrency = 0 }, wantErr: "max_concurrency"},
		{name: "negative timeout", mutate: func(m *Model) { m.Execution.TaskTimeout = -1 }, wantErr: "task_timeout"},
		{name: "negative retry", mutate: func(m *Model) { m.Execution.RetryCount = -2 }, wantErr: "retry_count"},
		{name: "unknown language", mutate: func(m *Model) { m.I18n.Language = "fr_fr" }, wantErr: "language"},
		{name: "task without command", mutate: func(m *Model) {
			m.Tasks = []Task{{Name: "x", Packages: []string{"*"}}}
		}, wantErr: "has no command"},
		{name: "task without target", mutate: func(m *Model) {
			m.Tasks = []Task{{Name: "x", Command: "build"}}
		}, wantErr: "no target packages"},
		{name: "duplicate task", mutate: func(m *Model) {
			m.Tasks = []Task{
				{Name: "x", Command: "build", Packages: []string{"*"}},
				{Name: "x", Command: "test", Packages: []string{"*"}},
			}
		}, wantErr: "more than once"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			m := Defaults()
			tc.mutate(&m)
			err := m.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestHCLLoader(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	path := writeFile(t, dir, "monox.hcl", `
workspace {
  package_manager = "npm"
  ignore          = ["dist", "coverage"]
}

execution {
  max_concurrency     = num_cpu * 2
  continue_on_failure = true
}

output {
  colored = false
}

i18n {
  language = env.MONOX_TEST_LANG
}

task "build-all" {
  packages = "*"
  command  = "build"
  desc     = "Build everything"
}

task "apps" {
  packages = ["app1", "app2"]
  command  = "test"
}

task "one" {
  pkg_name = "lib"
  command  = "lint"
}
`)
	loader := &HCLLoader{Environ: []string{"MONOX_TEST_LANG=zh_cn"}}

	// --- Act ---
	m, err := loader.Load(context.Background(), path, Defaults())

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, ".", m.Workspace.Root, "unset attributes keep the base value")
	assert.Equal(t, "npm", m.Workspace.PackageManager)
	assert.Equal(t, []string{"dist", "coverage"}, m.Workspace.Ignore)
	assert.Equal(t, runtime.NumCPU()*2, m.Execution.MaxConcurrency)
	assert.Equal(t, 300, m.Execution.TaskTimeout)
	assert.True(t, m.Execution.ContinueOnFailure)
	assert.False(t, m.Output.Colored)
	assert.True(t, m.Output.ShowProgress)
	assert.Equal(t, "zh_cn", m.I18n.Language)

	require.Len(t, m.Tasks, 3)
	assert.Equal(t, Task{Name: "build-all", Packages: []string{"*"}, Command: "build", Description: "Build everything"}, m.Tasks[0])
	assert.True(t, m.Tasks[0].TargetsAll())
	assert.Equal(t, []string{"app1", "app2"}, m.Tasks[1].Packages)
	assert.Equal(t, []string{"lib"}, m.Tasks[2].Packages)
	assert.NoError(t, m.Validate())
}

func TestHCLLoader_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "syntax error", content: `workspace {`, wantErr: "failed to parse"},
		{name: "wrong type", content: "execution {\n  max_concurrency = \"many\"\n}\n", wantErr: "failed to decode"},
		{name: "bad packages", content: "task \"x\" {\n  packages = 3\n  command = \"b\"\n}\n", wantErr: "packages must be"},
		{name: "missing command", content: "task \"x\" {\n  packages = \"*\"\n}\n", wantErr: "failed to decode"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			path := writeFile(t, t.TempDir(), "monox.hcl", tc.content)
			_, err := NewHCLLoader().Load(context.Background(), path, Defaults())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestYAMLLoader(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := writeFile(t, t.TempDir(), "monox.yaml", `
workspace:
  root: ./repo
execution:
  task_timeout: 0
  retry_count: 2
tasks:
  - name: build-all
    packages: "*"
    command: build
  - name: apps
    packages: [app1, app2]
    command: test
  - name: one
    pkg_name: lib
    command: lint
    desc: Lint the library
`)

	// --- Act ---
	m, err := NewYAMLLoader().Load(context.Background(), path, Defaults())

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "./repo", m.Workspace.Root)
	assert.Equal(t, "pnpm", m.Workspace.PackageManager)
	assert.Equal(t, 0, m.Execution.TaskTimeout)
	assert.Zero(t, m.Timeout())
	assert.Equal(t, 2, m.Execution.RetryCount)
	require.Len(t, m.Tasks, 3)
	assert.True(t, m.Tasks[0].TargetsAll())
	assert.Equal(t, []string{"app1", "app2"}, m.Tasks[1].Packages)
	assert.Equal(t, Task{Name: "one", Packages: []string{"lib"}, Command: "lint", Description: "Lint the library"}, m.Tasks[2])
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	t.Run("process environment wins over .env", func(t *testing.T) {
		t.Parallel()

		// --- Arrange ---
		dotenv := writeFile(t, t.TempDir(), ".env", "MONOX_PACKAGE_MANAGER=yarn\nMONOX_MAX_CONCURRENCY=3\nMONOX_VERBOSE=true\n")
		m := Defaults()

		// --- Act ---
		err := ApplyEnv(&m, dotenv, []string{"MONOX_MAX_CONCURRENCY=7", "PATH=/bin", "MONOX_REGISTRY_URL=http://r"})

		// --- Assert ---
		require.NoError(t, err)
		assert.Equal(t, "yarn", m.Workspace.PackageManager)
		assert.Equal(t, 7, m.Execution.MaxConcurrency)
		assert.True(t, m.Output.Verbose)
		assert.Equal(t, "http://r", m.Registry.URL)
	})

	t.Run("missing .env is fine", func(t *testing.T) {
		t.Parallel()
		m := Defaults()
		assert.NoError(t, ApplyEnv(&m, filepath.Join(t.TempDir(), ".env"), nil))
	})

	t.Run("malformed values are reported", func(t *testing.T) {
		t.Parallel()
		m := Defaults()
		err := ApplyEnv(&m, "", []string{"MONOX_TASK_TIMEOUT=soon", "MONOX_COLORED=perhaps"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "MONOX_TASK_TIMEOUT")
		assert.Contains(t, err.Error(), "MONOX_COLORED")
	})
}

func TestLoad_Precedence(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	writeFile(t, dir, "monox.hcl", "execution {\n  max_concurrency = 2\n  task_timeout = 10\n  retry_count = 1\n}\n")
	writeFile(t, dir, ".env", "MONOX_TASK_TIMEOUT=20\nMONOX_RETRY_COUNT=4\n")
	retry := 9

	// --- Act ---
	m, err := Load(context.Background(), Options{
		Dir:       dir,
		Environ:   []string{"MONOX_RETRY_COUNT=5"},
		Overrides: RuntimeOverrides{RetryCount: &retry},
	})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 2, m.Execution.MaxConcurrency, "file")
	assert.Equal(t, 20, m.Execution.TaskTimeout, ".env")
	assert.Equal(t, 9, m.Execution.RetryCount, "flag")
}

func TestLoad_Discovery(t *testing.T) {
	t.Parallel()

	t.Run("no file uses defaults", func(t *testing.T) {
		t.Parallel()
		m, err := Load(context.Background(), Options{Dir: t.TempDir()})
		require.NoError(t, err)
		assert.Equal(t, Defaults(), m)
	})

	t.Run("yaml is found when hcl is absent", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, dir, "monox.yml", "workspace:\n  package_manager: npm\n")
		assert.Equal(t, filepath.Join(dir, "monox.yml"), Discover(dir))
		m, err := Load(context.Background(), Options{Dir: dir})
		require.NoError(t, err)
		assert.Equal(t, "npm", m.Workspace.PackageManager)
	})

	t.Run("explicit missing file is an error", func(t *testing.T) {
		t.Parallel()
		_, err := Load(context.Background(), Options{Path: filepath.Join(t.TempDir(), "nope.hcl")})
		require.Error(t, err)
		assert.True(t, IsNotExist(err))
	})

	t.Run("invalid result is rejected", func(t *testing.T) {
		t.Parallel()
		bad := "bun"
		_, err := Load(context.Background(), Options{Dir: t.TempDir(), Overrides: RuntimeOverrides{PackageManager: &bad}})
		assert.ErrorContains(t, err, "invalid configuration")
	})
}

func TestWriteTemplate(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"monox.hcl", "monox.yaml"} {
		name := name
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			path := filepath.Join(t.TempDir(), name)

			// --- Act ---
			written, err := WriteTemplate(path, false)
			require.NoError(t, err)
			again, err := WriteTemplate(path, false)
			require.NoError(t, err)

			// --- Assert ---
			assert.True(t, written)
			assert.False(t, again, "existing file is kept")

			loader, err := LoaderFor(path)
			require.NoError(t, err)
			m, err := loader.Load(context.Background(), path, Defaults())
			require.NoError(t, err)
			want := Defaults()
			want.Tasks = TemplateTasks()
			assert.Equal(t, want, m)
		})
	}

	t.Run("unsupported extension", func(t *testing.T) {
		t.Parallel()
		_, err := WriteTemplate(filepath.Join(t.TempDir(), "monox.toml"), false)
		assert.ErrorContains(t, err, "unsupported")
	})
}
