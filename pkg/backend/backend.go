package backend

import (
	"github.com/drgolem/audiostream/pkg/audioformat"
	"github.com/drgolem/audiostream/pkg/mediaevent"
	"github.com/drgolem/audiostream/pkg/playerhandle"
	"github.com/drgolem/audiostream/pkg/source"
)

// Player is the per-backend adapter contract: the low-level cursor
// bookkeeping, refill policy and native device interaction each backend
// variant (ring/queue/write-callback) implements differently, behind
// one shared shape the high-level AudioPlayer state machine drives.
//
// Grounded on AbstractAudioPlayer's abstract methods in
// original_source/pyglet/media/drivers/base.py.
type Player interface {
	// Play starts (or resumes) the device.
	Play() error
	// Stop pauses the device without discarding buffered audio.
	Stop() error
	// Clear discards all buffered/queued audio and pending events,
	// resetting cursors, without stopping the device.
	Clear() error
	// Delete releases native resources. The player must not be used
	// again afterward.
	Delete() error
	// PrefillAudio performs the one-time buffer fill a backend wants
	// before the first Play (mirrors prefill_audio in the original).
	PrefillAudio() error
	// Work is invoked periodically by the worker scheduler to refill
	// buffers and dispatch due events.
	Work() error
	// GetTime returns the current playback position in seconds.
	GetTime() float64

	// SetVolume applies linear gain in [0,1].
	SetVolume(gain float64) error
	// SetPosition sets 3D position for spatialized backends; backends
	// without positional audio silently ignore it.
	SetPosition(pos Coordinates) error
	// SetPitch scales playback rate/frequency.
	SetPitch(pitch float64) error

	// OnDriverDestroy/OnDriverReset are lifecycle hooks a Driver calls
	// around device teardown/recreation. Supplemented from
	// AbstractAudioPlayer.on_driver_destroy/on_driver_reset, dropped by
	// the distillation.
	OnDriverDestroy()
	OnDriverReset()

	// InvertsZAxis reports whether SetPosition/orientation calls should
	// have their Z coordinate negated before being applied (a
	// DirectSound-style backend convention).
	InvertsZAxis() bool

	// SetHandler installs the callback Work uses to dispatch due
	// MediaEvents (on_eos and any source-defined markers).
	SetHandler(h mediaevent.Handler)
}

// Driver creates and owns Players for a given output device.
type Driver interface {
	CreatePlayer(owner playerhandle.Handle, group *source.Group) (Player, error)
	Delete()
	Reset() error
}

// AbstractPlayer is the state every concrete backend embeds: the event
// dispatch queue, the drift-compensation filter, and the weak
// back-reference to the owning AudioPlayer. Concrete backends embed
// this and implement the remaining Player methods themselves.
type AbstractPlayer struct {
	Owner   playerhandle.Handle
	Events  *mediaevent.Queue
	Drift   DriftFilter
	Format  audioformat.AudioFormat
	Handler mediaevent.Handler
}

// SetHandler installs the event dispatch callback.
func (a *AbstractPlayer) SetHandler(h mediaevent.Handler) { a.Handler = h }

// NewAbstractPlayer initializes the shared state for a concrete backend.
func NewAbstractPlayer(owner playerhandle.Handle, format audioformat.AudioFormat) AbstractPlayer {
	return AbstractPlayer{
		Owner:  owner,
		Events: mediaevent.NewQueue(),
		Format: format,
	}
}

// OnDriverDestroy and OnDriverReset default to no-ops; most backends do
// not need to react to driver lifecycle events, matching the base-class
// no-op hooks in the original.
func (a *AbstractPlayer) OnDriverDestroy() {}
func (a *AbstractPlayer) OnDriverReset()   {}

// InvertsZAxis defaults to false; only DirectSound-style backends
// override it.
func (a *AbstractPlayer) InvertsZAxis() bool { return false }
