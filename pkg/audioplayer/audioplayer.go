// Package audioplayer implements the high-level playback state
// machine applications interact with: a queue of gapless sources, a
// chosen low-level backend.Player doing the cursor bookkeeping, and
// the Idle/Playing/Paused/Deleted lifecycle wrapping it.
//
// Grounded on pkg/audioplayer.Player (teacher, its Play/Stop/Wait
// lifecycle and producer/consumer split generalized here into a
// backend-agnostic shape) and the AbstractAudioPlayer/Player split in
// original_source/pyglet/media/player.py.
package audioplayer

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/drgolem/audiostream/pkg/backend"
	"github.com/drgolem/audiostream/pkg/listener"
	"github.com/drgolem/audiostream/pkg/mediaerr"
	"github.com/drgolem/audiostream/pkg/mediaevent"
	"github.com/drgolem/audiostream/pkg/playerhandle"
	"github.com/drgolem/audiostream/pkg/source"
	"github.com/drgolem/audiostream/pkg/types"
	"github.com/drgolem/audiostream/pkg/worker"
)

// State is one of the player lifecycle states, matching the
// Idle/Playing/Paused states implied by pyglet's Player (it tracks
// playing as a bool plus an internal source queue; named explicitly
// here since Go favors explicit state over an implicit bool+queue
// combination).
type State int

const (
	StateIdle State = iota
	StatePlaying
	StatePaused
	StateDeleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// BackendFactory opens a concrete backend.Player for a source group,
// letting callers choose ring/queue/writecb (or a test double)
// without AudioPlayer importing any of them directly.
type BackendFactory func(owner playerhandle.Handle, group *source.Group) (backend.Player, error)

// AudioPlayer is the application-facing playback handle. One
// AudioPlayer owns one source.Group and, once started, one
// backend.Player instance.
type AudioPlayer struct {
	mu        sync.Mutex
	state     State
	group     *source.Group
	be        backend.Player
	handle    playerhandle.Handle
	factory   BackendFactory
	worker    *worker.Thread
	listen    *listener.Listener
	volume    float64
	pitch     float64
	onEOS     func()
	startTime time.Time
}

// New creates an idle AudioPlayer. worker is shared across every
// AudioPlayer in the process (see pkg/worker); factory is typically
// one of ring.New/queue.New/writecb.New adapted to the BackendFactory
// shape by the caller.
func New(w *worker.Thread, factory BackendFactory) *AudioPlayer {
	p := &AudioPlayer{
		group:   source.NewGroup(),
		factory: factory,
		worker:  w,
		volume:  1.0,
		pitch:   1.0,
	}
	p.handle = playerhandle.Register(p)
	return p
}

// SetListener attaches a shared Listener this player's backend volume
// is tracked under: master gain changes on l are reapplied to this
// player immediately, on top of whatever SetVolume sets as its own
// per-source gain. Passing nil detaches it. Matches pyglet drivers
// tracking every live Player against a single driver-wide Listener.
func (p *AudioPlayer) SetListener(l *listener.Listener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.listen != nil && p.be != nil {
		p.listen.Untrack(p.be)
	}
	p.listen = l
	if p.listen != nil && p.be != nil {
		p.listen.Track(p.be, p.volume)
	}
}

// SetSource replaces the queue with a single source, matching
// Player.queue(source) when called before any source is added.
func (p *AudioPlayer) SetSource(src source.Source) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateIdle {
		return fmt.Errorf("audioplayer: cannot set source while %s", p.state)
	}
	p.group = source.NewGroup()
	return p.group.Add(src)
}

// Queue appends another source to play gaplessly after the current
// ones, matching Player.queue.
func (p *AudioPlayer) Queue(src source.Source) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.group.Add(src)
}

// OnEndOfStream registers a callback fired once every queued source is
// exhausted, matching the on_eos event dispatched by the original.
func (p *AudioPlayer) OnEndOfStream(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onEOS = fn
}

func (p *AudioPlayer) handleEvent(name string, args []any) {
	switch name {
	case "on_eos":
		p.mu.Lock()
		cb := p.onEOS
		p.mu.Unlock()
		if cb != nil {
			cb()
		}
	default:
		slog.Debug("audioplayer: unhandled event", "name", name, "args", args)
	}
}

// Play starts or resumes playback, creating the backend on first call.
func (p *AudioPlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateDeleted {
		return fmt.Errorf("audioplayer: player deleted")
	}

	if p.be == nil {
		be, err := p.factory(p.handle, p.group)
		if err != nil {
			return fmt.Errorf("audioplayer: create backend: %w", err)
		}
		be.SetHandler(mediaevent.Handler(p.handleEvent))
		if err := be.PrefillAudio(); err != nil {
			return fmt.Errorf("audioplayer: prefill: %w", err)
		}
		effectiveGain := p.volume
		if p.listen != nil {
			effectiveGain *= p.listen.Gain()
		}
		if err := be.SetVolume(effectiveGain); err != nil {
			slog.Warn("audioplayer: set initial volume failed", "error", err)
		}
		if err := be.SetPitch(p.pitch); err != nil {
			slog.Warn("audioplayer: set initial pitch failed", "error", err)
		}
		p.be = be
		if p.worker != nil {
			p.worker.Add(be)
		}
		if p.listen != nil {
			p.listen.Track(be, p.volume)
		}
		p.startTime = time.Now()
	}

	if err := p.be.Play(); err != nil {
		return fmt.Errorf("audioplayer: play: %w", err)
	}
	p.state = StatePlaying
	return nil
}

// Pause stops device activity without discarding buffered audio,
// matching Player.pause.
func (p *AudioPlayer) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StatePlaying {
		return nil
	}
	if err := p.be.Stop(); err != nil {
		return fmt.Errorf("audioplayer: pause: %w", err)
	}
	p.state = StatePaused
	return nil
}

// Stop halts playback and releases the backend, matching
// Player.delete's device teardown while keeping the AudioPlayer itself
// reusable (Play creates a fresh backend).
func (p *AudioPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopLocked()
}

func (p *AudioPlayer) stopLocked() error {
	if p.be == nil {
		p.state = StateIdle
		return nil
	}
	if p.worker != nil {
		p.worker.Remove(p.be)
	}
	if p.listen != nil {
		p.listen.Untrack(p.be)
	}
	if err := p.be.Delete(); err != nil {
		return fmt.Errorf("audioplayer: stop: %w", err)
	}
	p.be = nil
	p.state = StateIdle
	return nil
}

// Clear discards the backend's buffered audio and pending events
// without releasing the backend, matching the flush half of
// Player.next_source; the sources queued in the group are kept and
// the group does not advance.
// Precondition (spec §4.5.7): the player must be Paused — a backend's
// Clear tears down or reclaims buffers its own drain/writer goroutine
// may still be concurrently touching while Playing, so this is
// rejected rather than merely discouraged.
func (p *AudioPlayer) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StatePaused {
		return mediaerr.ErrInvalidState
	}
	if p.be == nil {
		return nil
	}
	return p.be.Clear()
}

// Seek moves the read position within the current head source to t
// seconds, matching SourceGroup.seek's head-only delegation (§4.4).
// Like Clear, this requires the player not be Playing: seeking flushes
// any already-buffered pre-seek audio out of the backend (§6's "Flush
// ... typically prior to seek"), which is unsafe to do concurrently
// with a live drain/writer goroutine. Matches Scenario E's
// stop(); seek(t); play() sequencing.
func (p *AudioPlayer) Seek(t float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StatePlaying || p.state == StateDeleted {
		return mediaerr.ErrInvalidState
	}
	if err := p.group.Seek(t); err != nil {
		return err
	}
	if p.be == nil {
		return nil
	}
	return p.be.Clear()
}

// Delete tears down the AudioPlayer permanently; it must not be used
// again afterward.
func (p *AudioPlayer) Delete() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateDeleted {
		return nil
	}
	err := p.stopLocked()
	p.state = StateDeleted
	playerhandle.Unregister(p.handle)
	return err
}

// SetVolume applies linear gain in [0,1] to the active backend (or
// remembers it for the next one).
func (p *AudioPlayer) SetVolume(gain float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = gain
	if p.be == nil {
		return nil
	}
	if p.listen != nil {
		p.listen.Track(p.be, gain)
		return p.be.SetVolume(gain * p.listen.Gain())
	}
	return p.be.SetVolume(gain)
}

// SetPitch scales playback rate on the active backend (or remembers it
// for the next one).
func (p *AudioPlayer) SetPitch(pitch float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pitch = pitch
	if p.be != nil {
		return p.be.SetPitch(pitch)
	}
	return nil
}

// SetPosition applies 3D position, honoring the backend's coordinate
// convention (InvertsZAxis).
func (p *AudioPlayer) SetPosition(pos backend.Coordinates) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.be == nil {
		return nil
	}
	return p.be.SetPosition(pos)
}

// Time returns the current playback position in seconds.
func (p *AudioPlayer) Time() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.be == nil {
		return 0
	}
	return p.be.GetTime()
}

// State returns the player's current lifecycle state.
func (p *AudioPlayer) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Duration returns the total duration of every queued source, if
// known.
func (p *AudioPlayer) Duration() (time.Duration, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	seconds, ok := p.group.Duration()
	if !ok {
		return 0, false
	}
	return time.Duration(seconds * float64(time.Second)), true
}

// Info returns metadata for the currently playing source.
func (p *AudioPlayer) Info() source.Info {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.group.Info()
}

// GetPlaybackStatus implements types.PlaybackMonitor, letting callers
// reuse the CLI's existing status-ticker logic unchanged against the
// new backend stack.
func (p *AudioPlayer) GetPlaybackStatus() types.PlaybackStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	format := p.group.AudioFormat()
	info := p.group.Info()

	var playedSeconds float64
	var elapsed time.Duration
	if p.be != nil {
		playedSeconds = p.be.GetTime()
		elapsed = time.Since(p.startTime)
	}

	return types.PlaybackStatus{
		FileName:      info.Title,
		SampleRate:    format.SampleRate,
		Channels:      format.Channels,
		BitsPerSample: format.SampleSize * 8,
		PlayedSamples: uint64(playedSeconds * float64(format.SampleRate)),
		ElapsedTime:   elapsed,
	}
}
