package mediaevent

import "testing"

func TestDispatchUntilOrderAndRemoval(t *testing.T) {
	q := NewQueue()
	var got []string

	q.AppendAt(100, MediaEvent{Name: "on_marker_a"})
	q.AppendAt(50, MediaEvent{Name: "on_marker_b"})
	q.AppendAt(200, MediaEvent{Name: "on_eos"})

	q.DispatchUntil(150, func(name string, args []any) {
		got = append(got, name)
	})

	if len(got) != 2 {
		t.Fatalf("expected 2 events dispatched, got %v", got)
	}
	if got[0] != "on_marker_a" && got[0] != "on_marker_b" {
		t.Fatalf("unexpected first event: %s", got[0])
	}
	if q.Len() != 1 {
		t.Fatalf("expected 1 remaining event, got %d", q.Len())
	}

	q.DispatchUntil(200, func(name string, args []any) {
		got = append(got, name)
	})
	if q.Len() != 0 {
		t.Fatalf("expected queue drained, got %d remaining", q.Len())
	}
	if got[len(got)-1] != "on_eos" {
		t.Fatalf("expected on_eos dispatched last, got %s", got[len(got)-1])
	}
}

func TestDispatchUntilNilHandlerDrops(t *testing.T) {
	q := NewQueue()
	q.AppendAt(10, MediaEvent{Name: "on_eos"})
	q.DispatchUntil(100, nil)
	if q.Len() != 0 {
		t.Fatalf("expected queue drained even with nil handler, got %d", q.Len())
	}
}

func TestClear(t *testing.T) {
	q := NewQueue()
	q.AppendAt(10, MediaEvent{Name: "on_eos"})
	q.Clear()
	if q.Len() != 0 {
		t.Fatalf("expected empty queue after Clear, got %d", q.Len())
	}
}

func TestAppendWithOffsets(t *testing.T) {
	q := NewQueue()
	events := []MediaEvent{{Name: "on_a"}, {Name: "on_b"}}
	offsets := []int64{0, 100}
	q.Append(1000, events, offsets)

	var dispatched []string
	q.DispatchUntil(1000, func(name string, args []any) { dispatched = append(dispatched, name) })
	if len(dispatched) != 1 || dispatched[0] != "on_a" {
		t.Fatalf("expected only on_a due at cursor 1000, got %v", dispatched)
	}
	q.DispatchUntil(1100, func(name string, args []any) { dispatched = append(dispatched, name) })
	if len(dispatched) != 2 || dispatched[1] != "on_b" {
		t.Fatalf("expected on_b due at cursor 1100, got %v", dispatched)
	}
}
