// Package testutil contains helpers shared by the package tests: temporary
// workspaces, log capture, and fakes for the process runner and registry.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/monox/internal/ctxlog"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Context returns a context carrying a debug-level logger that writes into the
// returned buffer. Setting MONOX_TEST_LOGS=true dumps the logs on cleanup.
func Context(t *testing.T) (context.Context, *SafeBuffer) {
	t.Helper()
	buf := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	t.Cleanup(func() {
		if os.Getenv("MONOX_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), buf.String())
		}
	})
	return ctxlog.WithLogger(context.Background(), logger), buf
}

// Manifest describes a package.json for tests.
type Manifest struct {
	Name    string
	Version string
	Deps    map[string]string
	DevDeps map[string]string
	Peers   map[string]string
	Scripts map[string]string
}

// JSON renders the manifest with two-space indentation.
func (m Manifest) JSON() string {
	doc := map[string]any{}
	if m.Name != "" {
		doc["name"] = m.Name
	}
	if m.Version != "" {
		doc["version"] = m.Version
	}
	if len(m.Deps) > 0 {
		doc["dependencies"] = m.Deps
	}
	if len(m.DevDeps) > 0 {
		doc["devDependencies"] = m.DevDeps
	}
	if len(m.Peers) > 0 {
		doc["peerDependencies"] = m.Peers
	}
	if len(m.Scripts) > 0 {
		doc["scripts"] = m.Scripts
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		panic(err)
	}
	return string(data) + "\n"
}

// WriteFiles creates the given files below root. Keys are slash-separated
// paths relative to root.
func WriteFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// Workspace creates a workspace directory named "ws" inside a temporary
// directory, with one packages/<dir>/package.json per entry, and returns its
// root.
func Workspace(t *testing.T, manifests map[string]Manifest) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "ws")
	require.NoError(t, os.MkdirAll(root, 0o755))
	files := make(map[string]string, len(manifests)+1)
	files["package.json"] = Manifest{Name: "root", Version: "1.0.0"}.JSON()
	for dir, m := range manifests {
		files["packages/"+dir+"/package.json"] = m.JSON()
	}
	WriteFiles(t, root, files)
	return root
}

// ReadFile returns the content of a file below root.
func ReadFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}
