package worker

import (
	"sync/atomic"
	"testing"
	"time"
)

type countingWorkable struct {
	calls atomic.Int64
}

func (c *countingWorkable) Work() error {
	c.calls.Add(1)
	return nil
}

func TestAddWakesAndRefills(t *testing.T) {
	th := New()
	th.Start()
	defer th.Stop()

	w := &countingWorkable{}
	th.Add(w)

	deadline := time.After(time.Second)
	for w.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected repeated Work() calls, got %d", w.calls.Load())
		case <-time.After(time.Millisecond):
		}
	}
}

func TestRemoveStopsRefills(t *testing.T) {
	th := New()
	th.Start()
	defer th.Stop()

	w := &countingWorkable{}
	th.Add(w)
	time.Sleep(50 * time.Millisecond)
	th.Remove(w)

	stopped := w.calls.Load()
	time.Sleep(50 * time.Millisecond)
	if w.calls.Load() > stopped+1 {
		t.Fatalf("expected refills to stop after Remove, before=%d after=%d", stopped, w.calls.Load())
	}
}

func TestStopTerminatesGoroutine(t *testing.T) {
	th := New()
	th.Start()

	done := make(chan struct{})
	go func() {
		th.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
}
