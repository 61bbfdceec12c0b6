package orchestrator

// Observer receives lifecycle notifications from the workflows. Calls may
// come from several goroutines. Implementations must not block.
type Observer interface {
	TaskStarted(stage int, pkg string)
	TaskCompleted(stage int, report TaskReport)
	StageCompleted(summary StageSummary)
	RunCompleted(summary *RunSummary)
	RegistryLookup(dependency string, found bool)
}

// NopObserver ignores every notification.
type NopObserver struct{}

func (NopObserver) TaskStarted(int, string) {}
func (NopObserver) TaskCompleted(int, TaskReport) {}
func (NopObserver) StageCompleted(StageSummary) {}
func (NopObserver) RunCompleted(*RunSummary) {}
func (NopObserver) RegistryLookup(string, bool) {}

// Observers fans every notification out to each member, in order.
type Observers []Observer

func (obs Observers) TaskStarted(stage int, pkg string) {
	for _, o := range obs {
		o.TaskStarted(stage, pkg)
	}
}

func (obs Observers) TaskCompleted(stage int, report TaskReport) {
	for _, o := range obs {
		o.TaskCompleted(stage, report)
	}
}

func (obs Observers) StageCompleted(summary StageSummary) {
	for _, o := range obs {
		o.StageCompleted(summary)
	}
}

func (obs Observers) RunCompleted(summary *RunSummary) {
	for _, o := range obs {
		o.RunCompleted(summary)
	}
}

func (obs Observers) RegistryLookup(dependency string, found bool) {
	for _, o := range obs {
		o.RegistryLookup(dependency, found)
	}
}
