// Package spinner draws a one-line activity indicator on a terminal.
package spinner

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
)

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// DefaultInterval is the time between frames.
const DefaultInterval = 80 * time.Millisecond

// Spinner animates a message on w. A Spinner can be started again after it
// has been stopped; Start while running replaces the message.
type Spinner struct {
	w        io.Writer
	interval time.Duration

	mu      sync.Mutex
	message string
	done    chan struct{}
	cleared chan struct{}
}

// New returns a stopped spinner that draws on w.
func New(w io.Writer) *Spinner {
	return &Spinner{w: w, interval: DefaultInterval}
}

// Start shows message next to an animated frame.
func (s *Spinner) Start(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.message = message
	if s.done != nil {
		return
	}
	s.done = make(chan struct{})
	s.cleared = make(chan struct{})
	go s.loop(s.done, s.cleared)
}

// Stop halts the animation and blanks the line. It blocks until the line
// has been cleared so the caller can print on it.
func (s *Spinner) Stop() {
	s.mu.Lock()
	done, cleared := s.done, s.cleared
	s.done, s.cleared = nil, nil
	s.mu.Unlock()

	if done == nil {
		return
	}
	close(done)
	<-cleared
}

func (s *Spinner) loop(done, cleared chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	width := 0
	for i := 0; ; i++ {
		s.mu.Lock()
		line := frames[i%len(frames)] + " " + s.message
		s.mu.Unlock()

		// Pad over whatever a longer previous message left behind.
		w := runewidth.StringWidth(line)
		pad := max(width-w, 0)
		width = max(width, w)
		fmt.Fprintf(s.w, "\r%s%s", line, strings.Repeat(" ", pad)) //nolint:errcheck

		select {
		case <-done:
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", width)) //nolint:errcheck
			close(cleared)
			return
		case <-ticker.C:
		}
	}
}
