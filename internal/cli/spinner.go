package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner animates a one-line status message while a task runs.
type spinner struct {
	w        io.Writer
	interval time.Duration

	mu    sync.Mutex
	msg   string
	drawn int // runes on the line, for clearing
}

func newSpinner(w io.Writer, msg string) *spinner {
	return &spinner{w: w, interval: spinnerInterval, msg: msg}
}

// withSpinner shows msg on stderr while fn runs and clears the line before
// returning fn's error.
func withSpinner(ctx context.Context, msg string, fn func(context.Context) error) error {
	return newSpinner(os.Stderr, msg).run(ctx, fn)
}

func (s *spinner) run(ctx context.Context, fn func(context.Context) error) error {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.animate(ctx, done)
	}()

	err := fn(ctx)
	close(done)
	wg.Wait()
	return err
}

func (s *spinner) animate(ctx context.Context, done <-chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer s.clear()

	for frame := 0; ; frame++ {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.draw(spinnerFrames[frame%len(spinnerFrames)])
		}
	}
}

func (s *spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := frame + " " + s.msg
	pad := s.drawn - len([]rune(line))
	if pad < 0 {
		pad = 0
	}
	fmt.Fprintf(s.w, "\r%s %s%s", styleIconSpinner.Render(frame), StyleDim.Render(s.msg), strings.Repeat(" ", pad))
	s.drawn = len([]rune(line))
}

func (s *spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drawn == 0 {
		return
	}
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.drawn))
	s.drawn = 0
}
