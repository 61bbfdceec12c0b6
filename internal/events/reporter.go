package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/specialistvlad/monox/internal/ctxlog"
	"github.com/specialistvlad/monox/internal/orchestrator"
)

// Event names emitted by the Reporter.
const (
	EventTaskStarted    = "task_started"
	EventTaskCompleted  = "task_completed"
	EventStageCompleted = "stage_completed"
	EventRunCompleted   = "run_completed"
)

// Emitter sends one named event with a payload.
type Emitter interface {
	Emit(event string, args ...any) error
}

// TaskStarted is the payload of task_started.
type TaskStarted struct {
	Stage   int       `json:"stage"`
	Package string    `json:"package"`
	At      time.Time `json:"at"`
}

// TaskCompleted is the payload of task_completed.
type TaskCompleted struct {
	Stage      int    `json:"stage"`
	Package    string `json:"package"`
	Status     string `json:"status"`
	Attempts   int    `json:"attempts"`
	DurationMS int64  `json:"duration_ms"`
	Message    string `json:"message,omitempty"`
}

// StageCompleted is the payload of stage_completed.
type StageCompleted struct {
	Stage      int   `json:"stage"`
	Succeeded  int   `json:"succeeded"`
	Failed     int   `json:"failed"`
	TimedOut   int   `json:"timed_out"`
	Cancelled  int   `json:"cancelled"`
	Skipped    int   `json:"skipped"`
	DurationMS int64 `json:"duration_ms"`
}

// RunCompleted is the payload of run_completed.
type RunCompleted struct {
	Script     string `json:"script"`
	OK         bool   `json:"ok"`
	Succeeded  int    `json:"succeeded"`
	Failed     int    `json:"failed"`
	TimedOut   int    `json:"timed_out"`
	Cancelled  int    `json:"cancelled"`
	Skipped    int    `json:"skipped"`
	NotStarted int    `json:"not_started_stages"`
	DurationMS int64  `json:"duration_ms"`
}

// Reporter streams run lifecycle events to an Emitter. Delivery is best
// effort: emit errors are logged and otherwise ignored.
type Reporter struct {
	orchestrator.NopObserver

	emitter Emitter
	logger  *slog.Logger
	now     func() time.Time
}

var _ orchestrator.Observer = (*Reporter)(nil)

// NewReporter creates a reporter logging through the logger found in ctx.
func NewReporter(ctx context.Context, e Emitter) *Reporter {
	return &Reporter{
		emitter: e,
		logger:  ctxlog.FromContext(ctx).With("component", "events"),
		now:     time.Now,
	}
}

func (r *Reporter) emit(event string, payload any) {
	if err := r.emitter.Emit(event, payload); err != nil {
		r.logger.Debug("Dropping event.", "event", event, "error", err)
	}
}

func (r *Reporter) TaskStarted(stage int, pkg string) {
	r.emit(EventTaskStarted, TaskStarted{Stage: stage, Package: pkg, At: r.now().UTC()})
}

func (r *Reporter) TaskCompleted(stage int, report orchestrator.TaskReport) {
	r.emit(EventTaskCompleted, TaskCompleted{
		Stage:      stage,
		Package:    report.Package,
		Status:     report.Status.String(),
		Attempts:   report.Attempts,
		DurationMS: report.Duration.Milliseconds(),
		Message:    report.Message,
	})
}

func (r *Reporter) StageCompleted(s orchestrator.StageSummary) {
	r.emit(EventStageCompleted, StageCompleted{
		Stage:      s.Index,
		Succeeded:  s.Succeeded,
		Failed:     s.Failed,
		TimedOut:   s.TimedOut,
		Cancelled:  s.Cancelled,
		Skipped:    len(s.Skipped),
		DurationMS: s.Duration.Milliseconds(),
	})
}

func (r *Reporter) RunCompleted(s *orchestrator.RunSummary) {
	r.emit(EventRunCompleted, RunCompleted{
		Script:     s.Script,
		OK:         s.OK(),
		Succeeded:  s.Succeeded,
		Failed:     s.Failed,
		TimedOut:   s.TimedOut,
		Cancelled:  s.Cancelled,
		Skipped:    s.Skipped,
		NotStarted: s.NotStarted,
		DurationMS: s.Duration.Milliseconds(),
	})
}
