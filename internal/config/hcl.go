package config

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/monox/internal/ctxlog"
)

// HCLLoader reads monox.hcl.
type HCLLoader struct {
	// Environ feeds the `env` variable. Nil means os.Environ().
	Environ []string
}

// NewHCLLoader creates an HCL loader.
func NewHCLLoader() *HCLLoader {
	return &HCLLoader{}
}

// hclRoot decodes every top-level block. Pointer fields mark attributes the
// file may leave out, so that unset values keep their base value.
type hclRoot struct {
	Workspace *hclWorkspace `hcl:"workspace,block"`
	Execution *hclExecution `hcl:"execution,block"`
	Output    *hclOutput    `hcl:"output,block"`
	I18n      *hclI18n      `hcl:"i18n,block"`
	Registry  *hclRegistry  `hcl:"registry,block"`
	Tasks     []*hclTask    `hcl:"task,block"`
}

type hclWorkspace struct {
	Root           *string   `hcl:"root,optional"`
	PackageManager *string   `hcl:"package_manager,optional"`
	Ignore         *[]string `hcl:"ignore,optional"`
}

type hclExecution struct {
	MaxConcurrency    *int  `hcl:"max_concurrency,optional"`
	TaskTimeout       *int  `hcl:"task_timeout,optional"`
	RetryCount        *int  `hcl:"retry_count,optional"`
	ContinueOnFailure *bool `hcl:"continue_on_failure,optional"`
}

type hclOutput struct {
	ShowProgress *bool `hcl:"show_progress,optional"`
	Verbose      *bool `hcl:"verbose,optional"`
	Colored      *bool `hcl:"colored,optional"`
}

type hclI18n struct {
	Language *string `hcl:"language,optional"`
}

type hclRegistry struct {
	URL       *string `hcl:"url,optional"`
	CacheSize *int    `hcl:"cache_size,optional"`
}

type hclTask struct {
	Name        string         `hcl:"name,label"`
	Packages    hcl.Expression `hcl:"packages,optional"`
	PkgName     *string        `hcl:"pkg_name,optional"`
	Command     string         `hcl:"command"`
	Description *string        `hcl:"desc,optional"`
}

// Load implements Loader.
func (l *HCLLoader) Load(ctx context.Context, path string, base Model) (Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return Model{}, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	evalCtx := l.evalContext()
	var root hclRoot
	if diags := gohcl.DecodeBody(file.Body, evalCtx, &root); diags.HasErrors() {
		return Model{}, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	m := base
	if w := root.Workspace; w != nil {
		setIf(&m.Workspace.Root, w.Root)
		setIf(&m.Workspace.PackageManager, w.PackageManager)
		if w.Ignore != nil {
			m.Workspace.Ignore = append([]string(nil), (*w.Ignore)...)
		}
	}
	if e := root.Execution; e != nil {
		setIf(&m.Execution.MaxConcurrency, e.MaxConcurrency)
		setIf(&m.Execution.TaskTimeout, e.TaskTimeout)
		setIf(&m.Execution.RetryCount, e.RetryCount)
		setIf(&m.Execution.ContinueOnFailure, e.ContinueOnFailure)
	}
	if o := root.Output; o != nil {
		setIf(&m.Output.ShowProgress, o.ShowProgress)
		setIf(&m.Output.Verbose, o.Verbose)
		setIf(&m.Output.Colored, o.Colored)
	}
	if i := root.I18n; i != nil {
		setIf(&m.I18n.Language, i.Language)
	}
	if r := root.Registry; r != nil {
		setIf(&m.Registry.URL, r.URL)
		setIf(&m.Registry.CacheSize, r.CacheSize)
	}

	if len(root.Tasks) > 0 {
		m.Tasks = make([]Task, 0, len(root.Tasks))
	}
	for _, t := range root.Tasks {
		targets, err := decodeTargets(t.Packages, evalCtx)
		if err != nil {
			return Model{}, fmt.Errorf("task %q: %w", t.Name, err)
		}
		if len(targets) == 0 && t.PkgName != nil {
			targets = []string{*t.PkgName}
		}
		task := Task{Name: t.Name, Packages: targets, Command: t.Command}
		setIf(&task.Description, t.Description)
		m.Tasks = append(m.Tasks, task)
	}

	logger.Debug("HCL loading complete.", "tasks", len(m.Tasks))
	return m, nil
}

// evalContext exposes num_cpu and env to expressions.
func (l *HCLLoader) evalContext() *hcl.EvalContext {
	environ := l.Environ
	if environ == nil {
		environ = os.Environ()
	}
	env := make(map[string]cty.Value, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		env[k] = cty.StringVal(v)
	}
	envVal := cty.EmptyObjectVal
	if len(env) > 0 {
		envVal = cty.ObjectVal(env)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"num_cpu": cty.NumberIntVal(int64(runtime.NumCPU())),
			"env":     envVal,
		},
	}
}

// decodeTargets accepts a string or a list of strings.
func decodeTargets(expr hcl.Expression, evalCtx *hcl.EvalContext) ([]string, error) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsWhollyKnown() {
		return nil, fmt.Errorf("packages must be known at load time")
	}

	ty := val.Type()
	switch {
	case ty == cty.String:
		return []string{val.AsString()}, nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		var out []string
		for it := val.ElementIterator(); it.Next(); {
			_, el := it.Element()
			if el.IsNull() || el.Type() != cty.String {
				return nil, fmt.Errorf("packages must be a string or a list of strings")
			}
			out = append(out, el.AsString())
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("packages list must not be empty")
		}
		return out, nil
	default:
		return nil, fmt.Errorf("packages must be a string or a list of strings, got %s", ty.FriendlyName())
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
