package queue

import (
	"testing"

	"github.com/drgolem/audiostream/pkg/audioformat"
	"github.com/drgolem/audiostream/pkg/backend"
	"github.com/drgolem/audiostream/pkg/playerhandle"
)

// newBarePlayer builds a Player with no native stream, standing in for
// a simulated device so Driver bookkeeping can be exercised without
// PortAudio hardware.
func newBarePlayer(d *Driver) *Player {
	format := audioformat.AudioFormat{Channels: 2, SampleSize: 2, SampleRate: 44100}
	p := &Player{
		AbstractPlayer: backend.NewAbstractPlayer(playerhandle.Register(nil), format),
		cfg:            d.cfg,
		submit:         make(chan inFlightBuffer, maxBufferCount),
		driver:         d,
	}
	d.players[p] = struct{}{}
	return p
}

func TestDriverResetNotifiesEveryTrackedPlayer(t *testing.T) {
	d := NewDriver(DefaultConfig())
	p1 := newBarePlayer(d)
	p2 := newBarePlayer(d)

	reset1, reset2 := 0, 0
	p1.onReset = func() { reset1++ }
	p2.onReset = func() { reset2++ }

	if err := d.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if reset1 != 1 || reset2 != 1 {
		t.Fatalf("expected both players notified once, got %d %d", reset1, reset2)
	}
}

func TestDriverDeleteTearsDownTrackedPlayersAndRejectsFurtherCreate(t *testing.T) {
	d := NewDriver(DefaultConfig())
	p := newBarePlayer(d)

	destroyed := false
	p.onDestroy = func() { destroyed = true }

	d.Delete()

	if !destroyed {
		t.Fatalf("expected OnDriverDestroy to fire before teardown")
	}
	if len(d.players) != 0 {
		t.Fatalf("expected driver to forget all players after Delete, got %d left", len(d.players))
	}

	if _, err := d.CreatePlayer(playerhandle.Register(nil), nil); err != errDriverDeleted {
		t.Fatalf("CreatePlayer after Delete = %v, want errDriverDeleted", err)
	}
}
