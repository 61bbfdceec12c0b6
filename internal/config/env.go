package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "MONOX_"

// ApplyEnv overlays values from the .env file at dotenvPath and then from
// environ, which wins. A missing .env file is not an error. The .env values
// are never exported to the process environment.
func ApplyEnv(m *Model, dotenvPath string, environ []string) error {
	vars := map[string]string{}
	if dotenvPath != "" {
		fileVars, err := godotenv.Read(dotenvPath)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to read %s: %w", dotenvPath, err)
		}
		for k, v := range fileVars {
			vars[k] = v
		}
	}
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(k, EnvPrefix) {
			vars[k] = v
		}
	}

	var errs []error
	str := func(key string, dst *string) {
		if v, ok := vars[EnvPrefix+key]; ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		v, ok := vars[EnvPrefix+key]
		if !ok || v == "" {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %q is not an integer", EnvPrefix, key, v))
			return
		}
		*dst = n
	}
	flag := func(key string, dst *bool) {
		v, ok := vars[EnvPrefix+key]
		if !ok || v == "" {
			return
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %q is not a boolean", EnvPrefix, key, v))
			return
		}
		*dst = b
	}

	str("WORKSPACE_ROOT", &m.Workspace.Root)
	str("PACKAGE_MANAGER", &m.Workspace.PackageManager)
	num("MAX_CONCURRENCY", &m.Execution.MaxConcurrency)
	num("TASK_TIMEOUT", &m.Execution.TaskTimeout)
	num("RETRY_COUNT", &m.Execution.RetryCount)
	flag("CONTINUE_ON_FAILURE", &m.Execution.ContinueOnFailure)
	flag("VERBOSE", &m.Output.Verbose)
	flag("COLORED", &m.Output.Colored)
	flag("SHOW_PROGRESS", &m.Output.ShowProgress)
	str("LANGUAGE", &m.I18n.Language)
	str("REGISTRY_URL", &m.Registry.URL)

	return errors.Join(errs...)
}
