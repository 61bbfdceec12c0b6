package render

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/muesli/termenv"
)

const progressWidth = 40

// Progress prints static progress bar frames, one per update, overwriting
// the current terminal line.
type Progress struct {
	mu    sync.Mutex
	w     io.Writer
	label string
	bar   progress.Model
	last  int
	done  bool
}

// Progress creates a bar labelled with the localized key, writing to w.
func (r *Renderer) Progress(w io.Writer, key string) *Progress {
	opts := []progress.Option{progress.WithWidth(progressWidth)}
	if r.opts.Colored {
		opts = append(opts, progress.WithDefaultGradient(), progress.WithColorProfile(termenv.ANSI256))
	} else {
		opts = append(opts, progress.WithFillCharacters('#', '-'), progress.WithColorProfile(termenv.Ascii))
	}
	return &Progress{w: w, label: r.p.Sprintf(key), bar: progress.New(opts...), last: -1}
}

// Update draws the frame for completed out of total. Frames that would not
// advance the bar are dropped. It matches the scheduler progress callback.
func (p *Progress) Update(completed, total int) {
	if total <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done || completed <= p.last {
		return
	}
	p.last = completed
	fmt.Fprintf(p.w, "\r%s %s %d/%d", p.label, p.bar.ViewAs(float64(completed)/float64(total)), completed, total)
	if completed >= total {
		fmt.Fprintln(p.w)
		p.done = true
	}
}

// Finish terminates the line if the bar never reached the total.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.done && p.last >= 0 {
		fmt.Fprintln(p.w)
	}
	p.done = true
}
