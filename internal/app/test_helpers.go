package app

import (
	"bytes"
	"context"
	"os"
	"strings"
	"sync"
	"testing"
)

// SafeBuffer is a thread-safe buffer for capturing output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// TestStreams bundles the buffers a test App writes to.
type TestStreams struct {
	Out *SafeBuffer
	Err *SafeBuffer
}

// SetupAppTest creates an App over the workspace at root for system testing.
// Colors and progress are off unless appConfig overrides them; the log level
// is debug. stdin feeds confirmation prompts.
func SetupAppTest(t *testing.T, root string, appConfig Config, stdin string, opts ...Option) (*App, TestStreams) {
	t.Helper()

	streams := TestStreams{Out: &SafeBuffer{}, Err: &SafeBuffer{}}
	off, on := false, true
	if appConfig.Overrides.WorkspaceRoot == nil {
		appConfig.Overrides.WorkspaceRoot = &root
	}
	if appConfig.Overrides.Colored == nil {
		appConfig.Overrides.Colored = &off
	}
	if appConfig.Overrides.ShowProgress == nil {
		appConfig.Overrides.ShowProgress = &off
	}
	if appConfig.Overrides.Verbose == nil {
		appConfig.Overrides.Verbose = &on
	}
	if appConfig.Dir == "" {
		appConfig.Dir = root
	}
	cfg, err := NewConfig(appConfig)
	if err != nil {
		t.Fatalf("invalid app config: %v", err)
	}

	testApp, err := NewApp(context.Background(), Streams{
		In:  strings.NewReader(stdin),
		Out: streams.Out,
		Err: streams.Err,
	}, cfg, opts...)
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}

	t.Cleanup(func() {
		_ = testApp.Close()
		if os.Getenv("MONOX_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), streams.Err.String())
		}
	})

	return testApp, streams
}

// Ptr returns a pointer to v, for filling config.RuntimeOverrides.
func Ptr[T any](v T) *T { return &v }
