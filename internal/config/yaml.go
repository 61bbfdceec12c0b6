package config

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/specialistvlad/monox/internal/ctxlog"
)

// YAMLLoader reads monox.yaml.
type YAMLLoader struct{}

// NewYAMLLoader creates a YAML loader.
func NewYAMLLoader() *YAMLLoader {
	return &YAMLLoader{}
}

// Load implements Loader. Keys missing from the file keep their base value.
func (l *YAMLLoader) Load(ctx context.Context, path string, base Model) (Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Model{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	m := base
	// Tasks from the file replace the defaults rather than merge with them.
	m.Tasks = nil
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Model{}, fmt.Errorf("failed to decode YAML file %s: %w", path, err)
	}
	if m.Tasks == nil {
		m.Tasks = base.Tasks
	}
	ctxlog.FromContext(ctx).Debug("YAML loading complete.", "path", path, "tasks", len(m.Tasks))
	return m, nil
}

// yamlTask accepts `packages` as a string or a list, and the `pkg_name`
// spelling for a single target.
type yamlTask struct {
	Name        string    `yaml:"name"`
	PkgName     string    `yaml:"pkg_name"`
	Packages    yaml.Node `yaml:"packages"`
	Command     string    `yaml:"command"`
	Description string    `yaml:"desc"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Task) UnmarshalYAML(value *yaml.Node) error {
	var raw yamlTask
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*t = Task{Name: raw.Name, Command: raw.Command, Description: raw.Description}

	switch raw.Packages.Kind {
	case 0:
		// absent
	case yaml.ScalarNode:
		var s string
		if err := raw.Packages.Decode(&s); err != nil {
			return err
		}
		t.Packages = []string{s}
	case yaml.SequenceNode:
		if err := raw.Packages.Decode(&t.Packages); err != nil {
			return err
		}
		if len(t.Packages) == 0 {
			return fmt.Errorf("task %q: packages list must not be empty", raw.Name)
		}
	default:
		return fmt.Errorf("task %q: packages must be a string or a list of strings", raw.Name)
	}
	if len(t.Packages) == 0 && raw.PkgName != "" {
		t.Packages = []string{raw.PkgName}
	}
	return nil
}
