package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/zebtan/courier-backoffice/internal/core/domain"
	"github.com/zebtan/courier-backoffice/internal/core/ports"
)

type fakeEngine struct {
	mu      sync.Mutex
	runs    int
	started chan struct{} // signalled on pass entry when non-nil
	release chan struct{} // pass blocks until closed when non-nil
}

func (f *fakeEngine) RunPass(ctx context.Context) (ports.PassSummary, error) {
	f.mu.Lock()
	f.runs++
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
		}
	}
	return ports.PassSummary{}, nil
}

func (f *fakeEngine) runCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs
}

func TestRunNow_SkipsWhilePassRunning(t *testing.T) {
	engine := &fakeEngine{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	s := New(engine, time.Minute, zerolog.Nop())

	go func() {
		_, _ = s.RunNow(context.Background())
	}()
	<-engine.started

	// Second trigger while the first pass is still in flight: skipped, not queued.
	_, err := s.RunNow(context.Background())
	if !errors.Is(err, domain.ErrPassRunning) {
		t.Fatalf("expected ErrPassRunning, got: %v", err)
	}

	close(engine.release)
}

func TestRunNow_AvailableAfterPassCompletes(t *testing.T) {
	engine := &fakeEngine{}
	s := New(engine, time.Minute, zerolog.Nop())

	if _, err := s.RunNow(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := s.RunNow(context.Background()); err != nil {
		t.Fatalf("second run after completion: %v", err)
	}
	if engine.runCount() != 2 {
		t.Fatalf("expected 2 passes, got %d", engine.runCount())
	}
}

func TestRun_TicksUntilCancelled(t *testing.T) {
	engine := &fakeEngine{}
	s := New(engine, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(55 * time.Millisecond)
	cancel()
	<-done

	// One immediate pass plus at least a few ticks.
	if engine.runCount() < 3 {
		t.Fatalf("expected several passes, got %d", engine.runCount())
	}
}
