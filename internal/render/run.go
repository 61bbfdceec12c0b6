package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/specialistvlad/monox/internal/orchestrator"
	"github.com/specialistvlad/monox/internal/scheduler"
)

// RunSummary writes the outcome of a script run.
func (r *Renderer) RunSummary(s *orchestrator.RunSummary) error {
	if r.Structured() {
		return r.Value(s)
	}

	r.title("Run Summary: %s", s.Script)
	rows := make([][]string, 0)
	for _, st := range s.Stages {
		for _, t := range st.Tasks {
			rows = append(rows, []string{
				strconv.Itoa(st.Index),
				t.Package,
				r.status(t.Status),
				strconv.Itoa(t.Attempts),
				roundDuration(t.Duration).String(),
			})
		}
		for _, name := range st.Skipped {
			rows = append(rows, []string{strconv.Itoa(st.Index), name, r.styles.muted.Render("skipped"), "0", "-"})
		}
	}
	if len(rows) > 0 {
		r.table([]string{"Stage", "Package", "Status", "Attempts", "Duration"}, rows)
	}

	for _, st := range s.Stages {
		r.line(1, r.stageLine(st))
	}
	r.line(1, r.styles.ok.Render(r.p.Sprintf("Succeeded: %d", s.Succeeded)))
	failed := r.p.Sprintf("Failed: %d", s.Failed)
	timedOut := r.p.Sprintf("Timed out: %d", s.TimedOut)
	if s.Failed > 0 {
		failed = r.styles.bad.Render(failed)
	}
	if s.TimedOut > 0 {
		timedOut = r.styles.bad.Render(timedOut)
	}
	r.line(1, failed)
	r.line(1, timedOut)
	r.line(1, r.p.Sprintf("Cancelled: %d", s.Cancelled))
	r.line(1, r.p.Sprintf("Skipped: %d", s.Skipped))
	if s.NotStarted > 0 {
		r.line(1, r.styles.warn.Render(r.p.Sprintf("Stages not started: %d", s.NotStarted)))
	}
	r.line(1, r.p.Sprintf("Total duration: %s", roundDuration(s.Duration)))

	if r.opts.Verbose {
		r.failedOutput(s)
	}
	return nil
}

func (r *Renderer) failedOutput(s *orchestrator.RunSummary) {
	for _, t := range s.Reports() {
		if !t.Status.IsFailure() {
			continue
		}
		fmt.Fprintln(r.out)
		r.line(0, r.styles.bad.Render(r.p.Sprintf("Output of %s:", t.Package)))
		if t.Message != "" {
			r.line(1, t.Message)
		}
		for _, out := range []string{t.Stdout, t.Stderr} {
			out = strings.TrimRight(out, "\n")
			if out == "" {
				continue
			}
			for _, l := range strings.Split(out, "\n") {
				r.line(1, r.styles.muted.Render(l))
			}
		}
	}
}

func (r *Renderer) stageLine(st orchestrator.StageSummary) string {
	s := r.p.Sprintf("Stage %d: %d succeeded, %d failed, %d timed out, %d cancelled, %d skipped (%s)",
		st.Index, st.Succeeded, st.Failed, st.TimedOut, st.Cancelled, len(st.Skipped), roundDuration(st.Duration))
	if st.HasFailures() {
		return r.styles.bad.Render(s)
	}
	return s
}

func (r *Renderer) status(s scheduler.Status) string {
	switch s {
	case scheduler.StatusSuccess:
		return r.styles.ok.Render(s.String())
	case scheduler.StatusFailed, scheduler.StatusTimeout:
		return r.styles.bad.Render(s.String())
	case scheduler.StatusCancelled:
		return r.styles.warn.Render(s.String())
	}
	return s.String()
}

func roundDuration(d time.Duration) time.Duration {
	if d < time.Second {
		return d.Round(time.Millisecond)
	}
	return d.Round(10 * time.Millisecond)
}

// StageReporter prints one line per finished stage while a run is in
// progress. It is an orchestrator.Observer.
type StageReporter struct {
	orchestrator.NopObserver

	mu sync.Mutex
	w  io.Writer
	r  *Renderer
}

// StageReporter returns an observer printing stage progress to w.
func (r *Renderer) StageReporter(w io.Writer) *StageReporter {
	return &StageReporter{w: w, r: r}
}

func (s *StageReporter) StageCompleted(summary orchestrator.StageSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.w, s.r.stageLine(summary))
}
