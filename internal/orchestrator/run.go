package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/specialistvlad/monox/internal/ctxlog"
	"github.com/specialistvlad/monox/internal/dag"
	"github.com/specialistvlad/monox/internal/localexecutor"
	"github.com/specialistvlad/monox/internal/model"
	"github.com/specialistvlad/monox/internal/scheduler"
)

// TaskReport is the outcome of running a script in one package.
type TaskReport struct {
	Package  string           `json:"package" yaml:"package"`
	Folder   string           `json:"folder" yaml:"folder"`
	Status   scheduler.Status `json:"-" yaml:"-"`
	State    string           `json:"status" yaml:"status"`
	Attempts int              `json:"attempts" yaml:"attempts"`
	Duration time.Duration    `json:"duration_ns" yaml:"duration_ns"`
	Message  string           `json:"message,omitempty" yaml:"message,omitempty"`
	Stdout   string           `json:"stdout,omitempty" yaml:"stdout,omitempty"`
	Stderr   string           `json:"stderr,omitempty" yaml:"stderr,omitempty"`
}

// StageSummary aggregates one stage.
type StageSummary struct {
	// Index is 1-based.
	Index     int           `json:"index" yaml:"index"`
	Tasks     []TaskReport  `json:"tasks" yaml:"tasks"`
	Skipped   []string      `json:"skipped" yaml:"skipped"`
	Succeeded int           `json:"succeeded" yaml:"succeeded"`
	Failed    int           `json:"failed" yaml:"failed"`
	TimedOut  int           `json:"timed_out" yaml:"timed_out"`
	Cancelled int           `json:"cancelled" yaml:"cancelled"`
	Duration  time.Duration `json:"duration_ns" yaml:"duration_ns"`
}

// HasFailures reports whether a task failed or timed out.
func (s StageSummary) HasFailures() bool {
	return s.Failed > 0 || s.TimedOut > 0
}

// RunSummary aggregates a whole run.
type RunSummary struct {
	Script    string         `json:"script" yaml:"script"`
	Stages    []StageSummary `json:"stages" yaml:"stages"`
	Succeeded int            `json:"succeeded" yaml:"succeeded"`
	Failed    int            `json:"failed" yaml:"failed"`
	TimedOut  int            `json:"timed_out" yaml:"timed_out"`
	Cancelled int            `json:"cancelled" yaml:"cancelled"`
	Skipped   int            `json:"skipped" yaml:"skipped"`
	// NotStarted counts the stages left out after a failure.
	NotStarted int           `json:"not_started_stages" yaml:"not_started_stages"`
	Duration   time.Duration `json:"duration_ns" yaml:"duration_ns"`
}

// OK reports whether no task failed or timed out.
func (s *RunSummary) OK() bool {
	return s.Failed == 0 && s.TimedOut == 0
}

// Err returns ErrTasksFailed with the counts when the run is not OK.
func (s *RunSummary) Err() error {
	if s.OK() {
		return nil
	}
	return fmt.Errorf("%w: %d failed, %d timed out", ErrTasksFailed, s.Failed, s.TimedOut)
}

// Reports returns every task report in stage order.
func (s *RunSummary) Reports() []TaskReport {
	var out []TaskReport
	for _, st := range s.Stages {
		out = append(out, st.Tasks...)
	}
	return out
}

// RunScript runs script in every package that has it, stage by stage.
// Packages without the script are skipped.
func (o *Orchestrator) RunScript(ctx context.Context, script string) (*RunSummary, error) {
	a, plan, err := o.analyze(ctx)
	if err != nil {
		return nil, err
	}
	if err := plan.Err(); err != nil {
		return nil, err
	}
	return o.runStages(ctx, script, a.Stages)
}

// RunScriptForPackage runs script for name after running it in everything
// name depends on.
func (o *Orchestrator) RunScriptForPackage(ctx context.Context, name, script string) (*RunSummary, error) {
	return o.RunScriptForPackages(ctx, []string{name}, script)
}

// RunScriptForPackages runs script for the union of the closures of names.
// Every named package must exist and have the script.
func (o *Orchestrator) RunScriptForPackages(ctx context.Context, names []string, script string) (*RunSummary, error) {
	if len(names) == 0 {
		return nil, errors.New("no target packages given")
	}
	a, plan, err := o.analyze(ctx)
	if err != nil {
		return nil, err
	}

	keep := map[string]bool{}
	for _, name := range names {
		p, ok := a.Package(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, name)
		}
		if !p.HasScript(script) {
			return nil, fmt.Errorf("%w: package %s has no %q script", ErrScriptMissing, name, script)
		}
	}
	if err := plan.Err(); err != nil {
		return nil, err
	}
	for _, name := range names {
		closure, err := plan.Graph.Closure(name)
		if err != nil {
			return nil, err
		}
		for _, n := range closure {
			keep[n] = true
		}
	}
	union := make([]string, 0, len(keep))
	for n := range keep {
		union = append(union, n)
	}
	sort.Strings(union)
	return o.runStages(ctx, script, dag.Restrict(a.Stages, union))
}

// ExecTask runs a predefined task from the configuration.
func (o *Orchestrator) ExecTask(ctx context.Context, name string) (*RunSummary, error) {
	task, ok := o.cfg.TaskByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, name)
	}
	ctx = ctxlog.With(ctx, "task", name)
	switch {
	case task.TargetsAll():
		return o.RunScript(ctx, task.Command)
	case len(task.Packages) == 0:
		return nil, fmt.Errorf("task %q has no target packages", name)
	default:
		return o.RunScriptForPackages(ctx, task.Packages, task.Command)
	}
}

// capture holds the last process output of each package of a stage.
type capture struct {
	mu       sync.Mutex
	outputs  map[string]*localexecutor.Output
	attempts map[string]int
}

func (c *capture) record(pkg string, out *localexecutor.Output, attempt int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if out != nil {
		c.outputs[pkg] = out
	}
	c.attempts[pkg] = attempt
}

func (o *Orchestrator) runStages(ctx context.Context, script string, stages []model.Stage) (*RunSummary, error) {
	logger := ctxlog.FromContext(ctx).With("script", script)
	start := time.Now()
	summary := &RunSummary{Script: script}
	logger.Info("Running script.", "stages", len(stages))

	for i, stage := range stages {
		st := o.runStage(ctxlog.With(ctx, "stage", i+1), i+1, script, stage)
		summary.Stages = append(summary.Stages, st)
		summary.Succeeded += st.Succeeded
		summary.Failed += st.Failed
		summary.TimedOut += st.TimedOut
		summary.Cancelled += st.Cancelled
		summary.Skipped += len(st.Skipped)
		o.observer.StageCompleted(st)

		if err := ctx.Err(); err != nil {
			summary.NotStarted = len(stages) - i - 1
			summary.Duration = time.Since(start)
			o.observer.RunCompleted(summary)
			return summary, err
		}
		if st.HasFailures() && !o.cfg.Execution.ContinueOnFailure {
			summary.NotStarted = len(stages) - i - 1
			logger.Warn("Stopping after failed stage.", "stage", i+1, "remaining_stages", summary.NotStarted)
			break
		}
	}

	summary.Duration = time.Since(start)
	o.observer.RunCompleted(summary)
	logger.Info("Run finished.",
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"timed_out", summary.TimedOut,
		"skipped", summary.Skipped,
		"duration", summary.Duration,
	)
	return summary, nil
}

func (o *Orchestrator) runStage(ctx context.Context, index int, script string, stage model.Stage) StageSummary {
	logger := ctxlog.FromContext(ctx)
	start := time.Now()
	st := StageSummary{Index: index, Skipped: []string{}}

	caps := &capture{outputs: map[string]*localexecutor.Output{}, attempts: map[string]int{}}
	byName := make(map[string]*model.Package, len(stage))
	var tasks []scheduler.Task
	for _, p := range stage {
		if !p.HasScript(script) {
			logger.Debug("Package has no such script, skipping.", "package", p.Name)
			st.Skipped = append(st.Skipped, p.Name)
			continue
		}
		byName[p.Name] = p
		tasks = append(tasks, scheduler.Task{ID: p.Name, Run: o.scriptTask(p, script, caps)})
	}
	logger.Info("Starting stage.", "tasks", len(tasks), "skipped", len(st.Skipped))

	sched := scheduler.New(scheduler.Options{
		MaxConcurrency: o.cfg.Execution.MaxConcurrency,
		Timeout:        o.cfg.Timeout(),
		FailFast:       !o.cfg.Execution.ContinueOnFailure,
		Verbose:        o.cfg.Output.Verbose,
		OnTaskStarted:  func(id string) { o.observer.TaskStarted(index, id) },
	})
	outcomes := sched.ExecuteBatch(ctx, tasks)

	for _, oc := range outcomes {
		p := byName[oc.ID]
		r := TaskReport{
			Package:  p.Name,
			Folder:   p.Folder,
			Status:   oc.Result.Status,
			State:    oc.Result.Status.String(),
			Duration: oc.Duration,
			Message:  oc.Result.Message,
		}
		caps.mu.Lock()
		if out := caps.outputs[p.Name]; out != nil {
			r.Stdout, r.Stderr = out.Stdout, out.Stderr
		}
		r.Attempts = caps.attempts[p.Name]
		caps.mu.Unlock()

		switch oc.Result.Status {
		case scheduler.StatusSuccess:
			st.Succeeded++
		case scheduler.StatusFailed:
			st.Failed++
			logger.Error("Task failed.", "package", p.Name, "error", r.Message)
		case scheduler.StatusTimeout:
			st.TimedOut++
			logger.Error("Task timed out.", "package", p.Name, "timeout", o.cfg.Timeout())
		case scheduler.StatusCancelled:
			st.Cancelled++
		}
		st.Tasks = append(st.Tasks, r)
		o.observer.TaskCompleted(index, r)
	}
	sort.Slice(st.Tasks, func(i, j int) bool { return st.Tasks[i].Package < st.Tasks[j].Package })
	st.Duration = time.Since(start)
	return st
}

// scriptTask builds the payload running `<pm> run <script>` in p's folder.
// A non-zero exit is retried up to retry_count extra times; a cancelled or
// timed out context is not.
func (o *Orchestrator) scriptTask(p *model.Package, script string, caps *capture) scheduler.Func {
	pm := o.cfg.Workspace.PackageManager
	retries := o.cfg.Execution.RetryCount
	return func(ctx context.Context) (any, error) {
		logger := ctxlog.FromContext(ctx).With("package", p.Name)
		var lastErr error
		for attempt := 1; attempt <= retries+1; attempt++ {
			out, err := o.runner.Run(ctx, p.Dir, pm, "run", script)
			caps.record(p.Name, out, attempt)
			if err == nil {
				return out, nil
			}
			lastErr = err
			var exitErr *localexecutor.ExitError
			if !errors.As(err, &exitErr) || ctx.Err() != nil {
				return nil, err
			}
			if attempt <= retries {
				logger.Warn("Script failed, retrying.", "attempt", attempt, "exit_code", exitErr.Code)
			}
		}
		return nil, lastErr
	}
}
