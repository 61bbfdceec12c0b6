package config

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"time"
)

// AllPackages is the task target meaning "every package in the workspace".
const AllPackages = "*"

// Known package managers. The value is the binary that gets invoked.
var PackageManagers = []string{"npm", "yarn", "pnpm"}

// Supported output languages.
const (
	LanguageEnUS = "en_us"
	LanguageZhCN = "zh_cn"
)

// Languages lists the accepted values of i18n.language.
var Languages = []string{LanguageEnUS, LanguageZhCN}

// Model is the unified, format-agnostic representation of the whole
// configuration.
type Model struct {
	Workspace Workspace `yaml:"workspace"`
	Execution Execution `yaml:"execution"`
	Output    Output    `yaml:"output"`
	I18n      I18n      `yaml:"i18n"`
	Registry  Registry  `yaml:"registry"`
	Tasks     []Task    `yaml:"tasks"`
}

// Workspace locates the monorepo and the tool that drives it.
type Workspace struct {
	Root           string   `yaml:"root"`
	PackageManager string   `yaml:"package_manager"`
	Ignore         []string `yaml:"ignore"`
}

// Execution controls the task scheduler.
type Execution struct {
	MaxConcurrency int `yaml:"max_concurrency"`
	// TaskTimeout is in seconds. Zero disables the timeout.
	TaskTimeout       int  `yaml:"task_timeout"`
	RetryCount        int  `yaml:"retry_count"`
	ContinueOnFailure bool `yaml:"continue_on_failure"`
}

// Output controls rendering.
type Output struct {
	ShowProgress bool `yaml:"show_progress"`
	Verbose      bool `yaml:"verbose"`
	Colored      bool `yaml:"colored"`
}

// I18n selects the message catalog.
type I18n struct {
	Language string `yaml:"language"`
}

// Registry configures latest-version lookups. An empty URL selects the
// package manager binding.
type Registry struct {
	URL       string `yaml:"url"`
	CacheSize int    `yaml:"cache_size"`
}

// Task is a predefined named invocation.
type Task struct {
	Name string `yaml:"name"`
	// Packages holds the target: a single AllPackages entry, one package
	// name, or a list of names.
	Packages    []string `yaml:"packages"`
	Command     string   `yaml:"command"`
	Description string   `yaml:"desc"`
}

// TargetsAll reports whether the task runs across the whole workspace.
func (t Task) TargetsAll() bool {
	return len(t.Packages) == 1 && t.Packages[0] == AllPackages
}

// Defaults returns the built-in configuration.
func Defaults() Model {
	return Model{
		Workspace: Workspace{
			Root:           ".",
			PackageManager: "pnpm",
			Ignore:         []string{".git", "dist", "*.log"},
		},
		Execution: Execution{
			MaxConcurrency: runtime.NumCPU(),
			TaskTimeout:    300,
		},
		Output: Output{
			ShowProgress: true,
			Colored:      true,
		},
		I18n:     I18n{Language: LanguageEnUS},
		Registry: Registry{CacheSize: 1024},
	}
}

// Timeout returns the per-task timeout, zero meaning none.
func (m Model) Timeout() time.Duration {
	return time.Duration(m.Execution.TaskTimeout) * time.Second
}

// TaskByName returns the predefined task with the given name.
func (m Model) TaskByName(name string) (Task, bool) {
	for _, t := range m.Tasks {
		if t.Name == name {
			return t, true
		}
	}
	return Task{}, false
}

// Validate checks the model for values the engine cannot work with. All
// problems are reported at once.
func (m Model) Validate() error {
	var errs []error
	if m.Workspace.Root == "" {
		errs = append(errs, errors.New("workspace.root must not be empty"))
	}
	if !slices.Contains(PackageManagers, m.Workspace.PackageManager) {
		errs = append(errs, fmt.Errorf("workspace.package_manager %q is not one of %v", m.Workspace.PackageManager, PackageManagers))
	}
	if m.Execution.MaxConcurrency < 1 {
		errs = append(errs, fmt.Errorf("execution.max_concurrency must be at least 1, got %d", m.Execution.MaxConcurrency))
	}
	if m.Execution.TaskTimeout < 0 {
		errs = append(errs, fmt.Errorf("execution.task_timeout must not be negative, got %d", m.Execution.TaskTimeout))
	}
	if m.Execution.RetryCount < 0 {
		errs = append(errs, fmt.Errorf("execution.retry_count must not be negative, got %d", m.Execution.RetryCount))
	}
	if !slices.Contains(Languages, m.I18n.Language) {
		errs = append(errs, fmt.Errorf("i18n.language %q is not one of %v", m.I18n.Language, Languages))
	}
	if m.Registry.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("registry.cache_size must not be negative, got %d", m.Registry.CacheSize))
	}
	seen := make(map[string]bool, len(m.Tasks))
	for i, t := range m.Tasks {
		switch {
		case t.Name == "":
			errs = append(errs, fmt.Errorf("tasks[%d] has no name", i))
		case seen[t.Name]:
			errs = append(errs, fmt.Errorf("task %q is defined more than once", t.Name))
		}
		seen[t.Name] = true
		if t.Command == "" {
			errs = append(errs, fmt.Errorf("task %q has no command", t.Name))
		}
		if len(t.Packages) == 0 {
			errs = append(errs, fmt.Errorf("task %q has no target packages", t.Name))
		}
	}
	return errors.Join(errs...)
}
