package config

// RuntimeOverrides carries values set on the command line. Nil fields are
// left alone.
type RuntimeOverrides struct {
	WorkspaceRoot     *string
	PackageManager    *string
	MaxConcurrency    *int
	TaskTimeout       *int
	RetryCount        *int
	ContinueOnFailure *bool
	Verbose           *bool
	Colored           *bool
	ShowProgress      *bool
	Language          *string
}

// Apply writes every set override into m.
func (o RuntimeOverrides) Apply(m *Model) {
	setIf(&m.Workspace.Root, o.WorkspaceRoot)
	setIf(&m.Workspace.PackageManager, o.PackageManager)
	setIf(&m.Execution.MaxConcurrency, o.MaxConcurrency)
	setIf(&m.Execution.TaskTimeout, o.TaskTimeout)
	setIf(&m.Execution.RetryCount, o.RetryCount)
	setIf(&m.Execution.ContinueOnFailure, o.ContinueOnFailure)
	setIf(&m.Output.Verbose, o.Verbose)
	setIf(&m.Output.Colored, o.Colored)
	setIf(&m.Output.ShowProgress, o.ShowProgress)
	setIf(&m.I18n.Language, o.Language)
}
