package output

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

// Spinner animates a status line while a long operation runs.
type Spinner struct {
	w        io.Writer
	message  string
	interval time.Duration
	done     chan struct{}
	stopped  chan struct{}
	once     sync.Once
	started  atomic.Bool
}

// NewSpinner creates a spinner writing to w.
func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		w:        w,
		message:  message,
		interval: 120 * time.Millisecond,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start starts the animation.
func (s *Spinner) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(s.stopped)
		t := time.NewTicker(s.interval)
		defer t.Stop()
		for i := 0; ; i++ {
			fmt.Fprintf(s.w, "\r%s %s", spinnerFrames[i%len(spinnerFrames)], s.message)
			select {
			case <-s.done:
				return
			case <-t.C:
			}
		}
	}()
}

// Stop ends the animation and replaces the line with final, if not empty.
// It is safe to call more than once.
func (s *Spinner) Stop(final string) {
	s.once.Do(func() {
		close(s.done)
		if s.started.Load() {
			<-s.stopped
		}
		fmt.Fprint(s.w, "\r\033[K")
		if final != "" {
			fmt.Fprintln(s.w, final)
		}
	})
}
