package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeService struct {
	name     string
	startErr error
	exitNow  bool
	stopped  atomic.Int32
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(ctx context.Context) error {
	if s.exitNow {
		return s.startErr
	}
	<-ctx.Done()
	return nil
}

func (s *fakeService) Stop(context.Context) error {
	s.stopped.Add(1)
	return nil
}

func TestRunnerStopsAllOnCancel(t *testing.T) {
	a := &fakeService{name: "a"}
	b := &fakeService{name: "b"}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewRunner(a, b).Run(ctx, time.Second, nil) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("cancel should exit cleanly, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("runner did not exit")
	}
	if a.stopped.Load() != 1 || b.stopped.Load() != 1 {
		t.Fatalf("each service should be stopped once: a=%d b=%d", a.stopped.Load(), b.stopped.Load())
	}
}

func TestRunnerReturnsFirstServiceError(t *testing.T) {
	boom := errors.New("listen failed")
	failing := &fakeService{name: "http", exitNow: true, startErr: boom}
	waiting := &fakeService{name: "worker"}

	err := NewRunner(failing, waiting).Run(context.Background(), time.Second, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected start error, got %v", err)
	}
	if waiting.stopped.Load() != 1 {
		t.Fatalf("remaining service should be stopped")
	}
}

func TestRunnerRejectsNilService(t *testing.T) {
	if err := NewRunner(nil).Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("nil service should be rejected")
	}
	if err := NewRunner().Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("empty runner should be rejected")
	}
}
