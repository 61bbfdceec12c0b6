package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/specialistvlad/monox/internal/ctxlog"
	"github.com/specialistvlad/monox/internal/localexecutor"
)

// CommandClient queries the registry through the package manager binary.
type CommandClient struct {
	Runner         localexecutor.Runner
	PackageManager string
	// Dir is the working directory of the child process, normally the
	// workspace root so that registry settings in .npmrc apply.
	Dir     string
	Timeout time.Duration
}

// NewCommandClient creates a command binding with the default timeout.
func NewCommandClient(runner localexecutor.Runner, packageManager, dir string) *CommandClient {
	return &CommandClient{Runner: runner, PackageManager: packageManager, Dir: dir, Timeout: DefaultTimeout}
}

// Latest implements Client.
func (c *CommandClient) Latest(ctx context.Context, name string) (string, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := c.Runner.Run(ctx, c.Dir, c.PackageManager, "view", name, "version", "--json")
	if err != nil {
		ctxlog.FromContext(ctx).Debug("Registry command failed.", "dependency", name, "error", err)
		return "", fmt.Errorf("%w: %s: %v", ErrLookupFailed, name, err)
	}
	version, ok := ParseVersionOutput(out.Stdout)
	if !ok {
		return "", fmt.Errorf("%w: %s: unparseable output %q", ErrLookupFailed, name, strings.TrimSpace(out.Stdout))
	}
	return version, nil
}

// ParseVersionOutput extracts a version from the output of
// `<pm> view <dep> version --json`. The output is either a JSON string or,
// failing that, a bare literal with surrounding quotes stripped.
func ParseVersionOutput(stdout string) (string, bool) {
	trimmed := strings.TrimSpace(stdout)
	if trimmed == "" {
		return "", false
	}
	var v string
	if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
		v = strings.TrimSpace(v)
		return v, v != ""
	}
	v = strings.TrimSpace(strings.Trim(trimmed, `"'`))
	if v == "" || strings.ContainsAny(v, "{}[]\n") {
		return "", false
	}
	return v, true
}
