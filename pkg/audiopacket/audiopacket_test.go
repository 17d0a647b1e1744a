package audiopacket

import (
	"testing"

	"github.com/drgolem/audiostream/pkg/audioformat"
	"github.com/drgolem/audiostream/pkg/mediaevent"
)

func testFormat(t *testing.T) audioformat.AudioFormat {
	t.Helper()
	f, err := audioformat.New(1, 2, 1000) // 2 bytes per frame, 2000 bytes/sec
	if err != nil {
		t.Fatalf("audioformat.New: %v", err)
	}
	return f
}

func TestConsumePartial(t *testing.T) {
	f := testFormat(t)
	p := New(make([]byte, 100), 0.0, 0.05)

	p.Consume(20, f)

	if p.Len() != 80 {
		t.Fatalf("Len() = %d, want 80", p.Len())
	}
	if p.Timestamp <= 0 {
		t.Fatalf("Timestamp should advance, got %v", p.Timestamp)
	}
}

func TestConsumeAll(t *testing.T) {
	f := testFormat(t)
	p := New(make([]byte, 50), 0.0, 0.025)

	p.Consume(50, f)

	if p.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", p.Len())
	}
	if p.Timestamp != -1 {
		t.Fatalf("Timestamp after full consume = %v, want -1", p.Timestamp)
	}
}

func TestConsumeDropsEarlyEvents(t *testing.T) {
	f := testFormat(t)
	p := New(make([]byte, 100), 0, 0)
	p.Events = []mediaevent.MediaEvent{{Name: "on_marker"}, {Name: "on_eos"}}
	p.EventOffsets = []int64{5, 60}

	p.Consume(10, f)

	if len(p.Events) != 1 || p.Events[0].Name != "on_eos" {
		t.Fatalf("expected only on_eos to survive, got %v", p.Events)
	}
	if p.EventOffsets[0] != 50 {
		t.Fatalf("expected remaining offset 50, got %d", p.EventOffsets[0])
	}
}
