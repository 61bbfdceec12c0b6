package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// TemplateTasks are the tasks written by `monox init`.
func TemplateTasks() []Task {
	return []Task{
		{Name: "build", Packages: []string{AllPackages}, Command: "build", Description: "Build every package"},
		{Name: "test", Packages: []string{AllPackages}, Command: "test", Description: "Test every package"},
		{Name: "lint", Packages: []string{AllPackages}, Command: "lint", Description: "Lint every package"},
	}
}

// RenderHCL renders m as a monox.hcl document. max_concurrency is written as
// the num_cpu variable.
func RenderHCL(m Model) []byte {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	ws := root.AppendNewBlock("workspace", nil).Body()
	ws.SetAttributeValue("root", cty.StringVal(m.Workspace.Root))
	ws.SetAttributeValue("package_manager", cty.StringVal(m.Workspace.PackageManager))
	ws.SetAttributeValue("ignore", stringList(m.Workspace.Ignore))
	root.AppendNewline()

	ex := root.AppendNewBlock("execution", nil).Body()
	ex.SetAttributeTraversal("max_concurrency", hcl.Traversal{hcl.TraverseRoot{Name: "num_cpu"}})
	ex.SetAttributeValue("task_timeout", cty.NumberIntVal(int64(m.Execution.TaskTimeout)))
	ex.SetAttributeValue("retry_count", cty.NumberIntVal(int64(m.Execution.RetryCount)))
	ex.SetAttributeValue("continue_on_failure", cty.BoolVal(m.Execution.ContinueOnFailure))
	root.AppendNewline()

	out := root.AppendNewBlock("output", nil).Body()
	out.SetAttributeValue("show_progress", cty.BoolVal(m.Output.ShowProgress))
	out.SetAttributeValue("verbose", cty.BoolVal(m.Output.Verbose))
	out.SetAttributeValue("colored", cty.BoolVal(m.Output.Colored))
	root.AppendNewline()

	root.AppendNewBlock("i18n", nil).Body().SetAttributeValue("language", cty.StringVal(m.I18n.Language))
	root.AppendNewline()

	reg := root.AppendNewBlock("registry", nil).Body()
	reg.SetAttributeValue("url", cty.StringVal(m.Registry.URL))
	reg.SetAttributeValue("cache_size", cty.NumberIntVal(int64(m.Registry.CacheSize)))

	for _, t := range m.Tasks {
		root.AppendNewline()
		tb := root.AppendNewBlock("task", []string{t.Name}).Body()
		if len(t.Packages) == 1 {
			tb.SetAttributeValue("packages", cty.StringVal(t.Packages[0]))
		} else {
			tb.SetAttributeValue("packages", stringList(t.Packages))
		}
		tb.SetAttributeValue("command", cty.StringVal(t.Command))
		if t.Description != "" {
			tb.SetAttributeValue("desc", cty.StringVal(t.Description))
		}
	}
	return f.Bytes()
}

// RenderYAML renders m as a monox.yaml document.
func RenderYAML(m Model) ([]byte, error) {
	return yaml.Marshal(m)
}

// WriteTemplate writes the default configuration with the template tasks to
// path. The format follows the extension. It reports whether a file was
// written: an existing file is kept unless force is set.
func WriteTemplate(path string, force bool) (bool, error) {
	if _, err := os.Stat(path); err == nil && !force {
		return false, nil
	}
	m := Defaults()
	m.Tasks = TemplateTasks()

	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var err error
		if data, err = RenderYAML(m); err != nil {
			return false, err
		}
	case ".hcl":
		data = RenderHCL(m)
	default:
		return false, fmt.Errorf("unsupported config file format: %s", path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, err
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}

func stringList(items []string) cty.Value {
	if len(items) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	vals := make([]cty.Value, len(items))
	for i, s := range items {
		vals[i] = cty.StringVal(s)
	}
	return cty.ListVal(vals)
}
