// Package orchestrator combines the workspace scanner, the dependency graph,
// the stage planner and the task scheduler into the user-facing workflows:
// analysis, running a script stage by stage, checking dependencies against
// the registry, and planning manifest edits.
//
// An Orchestrator is built from a resolved config.Model and is safe to reuse;
// every workflow rescans the workspace.
package orchestrator
