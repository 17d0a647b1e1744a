// Package listener implements global playback-wide state: master gain
// and 3D position/orientation, propagated to every live player on a
// driver whenever it changes.
//
// Supplements spec.md's Listener contract with the propagate-on-change
// behavior of PulseAudioListener._set_volume in
// original_source/pyglet/media/drivers/pulse/adaptation.py, dropped by
// the distillation.
package listener

import (
	"sync"

	"github.com/drgolem/audiostream/pkg/backend"
)

// Volumer is the subset of backend.Player a Listener needs to reapply
// gain when global volume changes.
type Volumer interface {
	SetVolume(gain float64) error
}

// Listener holds master gain/position/orientation and the set of live
// players it should propagate changes to.
type Listener struct {
	mu       sync.Mutex
	gain     float64
	position backend.Coordinates
	forward  backend.Coordinates
	up       backend.Coordinates
	players  map[Volumer]float64 // player -> its own per-source gain
}

// New returns a Listener at unity gain, origin position.
func New() *Listener {
	return &Listener{gain: 1.0, players: map[Volumer]float64{}}
}

// Track registers player with its current per-source gain so future
// SetGain calls can recompute its effective volume.
func (l *Listener) Track(player Volumer, sourceGain float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.players[player] = sourceGain
}

// Untrack removes player, called when it is deleted.
func (l *Listener) Untrack(player Volumer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.players, player)
}

// SetGain sets master gain and reapplies gain*sourceGain to every
// tracked player immediately, matching
// PulseAudioListener._set_volume's behavior of walking the driver's
// player set on every change rather than waiting for the next refill.
func (l *Listener) SetGain(gain float64) {
	l.mu.Lock()
	l.gain = gain
	snapshot := make(map[Volumer]float64, len(l.players))
	for p, g := range l.players {
		snapshot[p] = g
	}
	l.mu.Unlock()

	for p, sourceGain := range snapshot {
		_ = p.SetVolume(gain * sourceGain)
	}
}

// Gain returns the current master gain.
func (l *Listener) Gain() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gain
}

// SetPosition sets listener position in 3D space.
func (l *Listener) SetPosition(pos backend.Coordinates) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.position = pos
}

// SetOrientation sets listener forward/up vectors.
func (l *Listener) SetOrientation(forward, up backend.Coordinates) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.forward = forward
	l.up = up
}

// Position returns the current listener position.
func (l *Listener) Position() backend.Coordinates {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.position
}
