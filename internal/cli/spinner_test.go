package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a bytes.Buffer shared with the animation goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testSpinner(msg string) (*spinner, *syncBuffer) {
	var out syncBuffer
	s := newSpinner(&out, msg)
	s.interval = 5 * time.Millisecond
	return s, &out
}

func TestSpinnerDrawsAndClears(t *testing.T) {
	s, out := testSpinner("Computing layout...")
	err := s.run(context.Background(), func(context.Context) error {
		time.Sleep(50 * time.Millisecond)
		return nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "Computing layout...") {
		t.Errorf("output = %q, want message", got)
	}
	if !strings.HasSuffix(got, "\r") {
		t.Errorf("output should end by clearing the line, got %q", got)
	}
}

func TestSpinnerReturnsTaskError(t *testing.T) {
	want := errors.New("boom")
	s, _ := testSpinner("x")
	if err := s.run(context.Background(), func(context.Context) error { return want }); !errors.Is(err, want) {
		t.Errorf("run() = %v, want %v", err, want)
	}
}

func TestSpinnerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s, _ := testSpinner("Generating...")

	err := s.run(ctx, func(ctx context.Context) error {
		cancel()
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("run() = %v, want context.Canceled", err)
	}
}

func TestSpinnerQuickTaskDrawsNothing(t *testing.T) {
	s, out := testSpinner("x")
	s.interval = time.Hour
	_ = s.run(context.Background(), func(context.Context) error { return nil })
	if out.String() != "" {
		t.Errorf("output = %q, want empty", out.String())
	}
}
