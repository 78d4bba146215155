// Package progress draws a single-line progress bar for long runs.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"golang.org/x/term"
)

const (
	defaultInterval = 100 * time.Millisecond
	defaultWidth    = 40
)

// Reporter redraws a progress bar in place. It is safe for concurrent use.
type Reporter struct {
	mu       sync.Mutex
	w        io.Writer
	bar      progress.Model
	enabled  bool
	interval time.Duration
	now      func() time.Time
	last     time.Time
	drawn    bool
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithInterval sets the minimum time between redraws.
func WithInterval(d time.Duration) Option {
	return func(r *Reporter) {
		r.interval = d
	}
}

// WithWidth sets the bar width in cells.
func WithWidth(width int) Option {
	return func(r *Reporter) {
		if width > 0 {
			r.bar.Width = width
		}
	}
}

// WithForce draws even when the writer is not a terminal.
func WithForce() Option {
	return func(r *Reporter) {
		r.enabled = true
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Reporter) {
		r.now = now
	}
}

// New returns a Reporter writing to w. Drawing is disabled unless w is a
// terminal or WithForce is given.
func New(w io.Writer, opts ...Option) *Reporter {
	r := &Reporter{
		w:        w,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(defaultWidth)),
		enabled:  isTerminal(w),
		interval: defaultInterval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Enabled reports whether the reporter draws anything.
func (r *Reporter) Enabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled
}

// Update redraws the bar for done out of total units. Calls closer together
// than the interval are dropped, except the final one.
func (r *Reporter) Update(done, total int) {
	if total <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled {
		return
	}

	now := r.now()
	if done < total && r.drawn && now.Sub(r.last) < r.interval {
		return
	}
	r.last = now
	r.drawn = true
	percent := float64(done) / float64(total)
	if percent > 1 {
		percent = 1
	}
	if _, err := fmt.Fprintf(r.w, "\r%s %d/%d", r.bar.ViewAs(percent), done, total); err != nil {
		// Progress output is best-effort.
		r.enabled = false
	}
}

// Finish ends the bar line if anything was drawn.
func (r *Reporter) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.drawn {
		return
	}
	r.drawn = false
	if _, err := fmt.Fprintln(r.w); err != nil {
		// Best-effort newline.
		_ = err
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
