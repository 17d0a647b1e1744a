// Package ring implements the ring-buffer cursor-bookkeeping backend
// variant: a fixed-size circular buffer with independent write and play
// cursors, refilled whenever the empty space between them grows past a
// comfortable threshold. Models DirectSound/PulseAudio-style devices.
//
// Grounded on pkg/audioplayer.Player's producer/consumer pair (teacher,
// adapted to read through pkg/source instead of pkg/types.AudioDecoder
// directly) and the cursor arithmetic in
// original_source/pyglet/media/drivers/directsound/adaptation.py.
package ring

import (
	"fmt"
	"sync"
	"time"

	"github.com/drgolem/audiostream/pkg/audioformat"
	"github.com/drgolem/audiostream/pkg/backend"
	"github.com/drgolem/audiostream/pkg/playerhandle"
	"github.com/drgolem/audiostream/pkg/ringbuffer"
	"github.com/drgolem/audiostream/pkg/source"

	"github.com/drgolem/go-portaudio/portaudio"
)

// Config controls the native stream and the ring buffer backing it.
type Config struct {
	DeviceIndex     int
	BufferSize      uint64 // ring buffer size in bytes, rounded up to a power of 2
	FramesPerBuffer int
}

// DefaultConfig mirrors the teacher's audioplayer.Config defaults.
func DefaultConfig() Config {
	return Config{DeviceIndex: -1, BufferSize: 256 * 1024, FramesPerBuffer: 512}
}

// Player is the ring-buffer backend adapter.
type Player struct {
	backend.AbstractPlayer

	cfg   Config
	group *source.Group
	rb    *ringbuffer.RingBuffer

	stream   *portaudio.PaStream
	streamMu sync.Mutex

	mu                  sync.Mutex
	writeCursor         int64
	playCursor          int64
	eosCursor           *int64
	hasUnderrun         bool
	tolerableEmptySpace int

	// masterStart/pausedAccum/pausedAt track wall-clock elapsed time
	// since the first Play, excluding paused intervals: the external
	// clock DriftFilter compares the audio clock against, matching
	// get_audio_time_diff's master_clock argument in
	// original_source/pyglet/media/drivers/base.py.
	masterStart time.Time
	pausedAccum time.Duration
	pausedAt    time.Time

	drainStop chan struct{}
	drainDone chan struct{}
}

// New opens a blocking-write PortAudio stream and wraps group for
// playback. The caller drives refills via Work (directly, or through
// pkg/worker) and drains the device via the internal drain goroutine
// started by Play.
func New(owner playerhandle.Handle, group *source.Group, cfg Config) (*Player, error) {
	format := group.AudioFormat()

	rb := ringbuffer.New(cfg.BufferSize)

	stream, err := openStream(cfg, format)
	if err != nil {
		return nil, fmt.Errorf("ring: failed to open stream: %w", err)
	}

	p := &Player{
		AbstractPlayer:      backend.NewAbstractPlayer(owner, format),
		cfg:                 cfg,
		group:               group,
		rb:                  rb,
		stream:              stream,
		tolerableEmptySpace: int(cfg.BufferSize) / 3,
	}
	return p, nil
}

func openStream(cfg Config, format audioformat.AudioFormat) (*portaudio.PaStream, error) {
	var sampleFormat portaudio.PaSampleFormat
	switch format.SampleSize * 8 {
	case 16:
		sampleFormat = portaudio.SampleFmtInt16
	case 24:
		sampleFormat = portaudio.SampleFmtInt24
	case 32:
		sampleFormat = portaudio.SampleFmtInt32
	default:
		return nil, fmt.Errorf("unsupported bit depth: %d", format.SampleSize*8)
	}

	outParams := portaudio.PaStreamParameters{
		DeviceIndex:  cfg.DeviceIndex,
		ChannelCount: format.Channels,
		SampleFormat: sampleFormat,
	}

	stream, err := portaudio.NewStream(outParams, float64(format.SampleRate))
	if err != nil {
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}
	if err := stream.Open(cfg.FramesPerBuffer); err != nil {
		return nil, fmt.Errorf("failed to open stream: %w", err)
	}
	return stream, nil
}

// PrefillAudio performs the one-time buffer fill before first Play,
// matching DirectSoundAudioPlayer's call to self._refill(buffer_size)
// in its constructor.
func (p *Player) PrefillAudio() error {
	return p.refill(int(p.cfg.BufferSize))
}

// refill pulls up to size bytes from the source group, writes them into
// the ring buffer, appends any carried events at the current write
// cursor, and pads with silence if the group could not supply size
// bytes outright (a real device write would otherwise underrun).
func (p *Player) refill(size int) error {
	p.mu.Lock()
	compensation := p.Drift.Update(p.playTimeLocked(), p.masterClockLocked())
	p.mu.Unlock()

	chunk, err := p.group.GetAudioData(size, compensation)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if chunk == nil {
		if p.eosCursor == nil {
			cur := p.writeCursor
			p.eosCursor = &cur
		}
		return nil
	}

	p.Events.Append(p.writeCursor, chunk.Events, chunk.EventOffsets)
	if _, err := p.rb.Write(chunk.Audio); err != nil {
		return fmt.Errorf("ring: write: %w", err)
	}
	p.writeCursor += int64(len(chunk.Audio))

	if len(chunk.Audio) < size {
		silence := make([]byte, size-len(chunk.Audio))
		p.rb.Write(silence)
		p.writeCursor += int64(len(silence))
	}

	return nil
}

func (p *Player) playTimeLocked() float64 {
	return p.Format.BytesToSeconds(int(p.playCursor))
}

// masterClockLocked returns wall-clock seconds elapsed since the first
// Play, minus any time spent Stopped. Zero before the first Play.
// Caller must hold p.mu.
func (p *Player) masterClockLocked() float64 {
	if p.masterStart.IsZero() {
		return 0
	}
	elapsed := time.Since(p.masterStart) - p.pausedAccum
	if !p.pausedAt.IsZero() {
		elapsed -= time.Since(p.pausedAt)
	}
	if elapsed < 0 {
		elapsed = 0
	}
	return elapsed.Seconds()
}

// Work refills the ring buffer whenever empty space exceeds the
// tolerable threshold and dispatches events the play cursor has passed,
// mirroring DirectSoundAudioPlayer.work/_maybe_fill.
func (p *Player) Work() error {
	p.mu.Lock()
	empty := int(p.writeCursor - p.playCursor)
	size := int(p.cfg.BufferSize)
	needsFill := (size - empty) > p.tolerableEmptySpace
	playCursor := p.playCursor
	eos := p.eosCursor
	hasUnderrun := p.hasUnderrun
	p.mu.Unlock()

	p.Events.DispatchUntil(playCursor, p.Handler)

	if eos != nil {
		if playCursor > *eos && !hasUnderrun {
			p.mu.Lock()
			p.hasUnderrun = true
			p.mu.Unlock()
			if p.Handler != nil {
				p.Handler("on_eos", nil)
			}
		}
		return nil
	}

	if needsFill {
		return p.refill(size - empty)
	}
	return nil
}

// Play starts the drain goroutine that performs the actual blocking
// device writes, advancing the play cursor as each write completes.
func (p *Player) Play() error {
	p.streamMu.Lock()
	defer p.streamMu.Unlock()

	if p.drainStop != nil {
		return nil // already playing
	}
	if p.stream != nil {
		if err := p.stream.StartStream(); err != nil {
			return fmt.Errorf("ring: start stream: %w", err)
		}
	}

	p.mu.Lock()
	if p.masterStart.IsZero() {
		p.masterStart = time.Now()
	} else if !p.pausedAt.IsZero() {
		p.pausedAccum += time.Since(p.pausedAt)
		p.pausedAt = time.Time{}
	}
	p.mu.Unlock()

	p.drainStop = make(chan struct{})
	p.drainDone = make(chan struct{})
	go p.drainLoop(p.drainStop, p.drainDone)
	return nil
}

func (p *Player) drainLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	buf := make([]byte, p.cfg.FramesPerBuffer*p.Format.BytesPerFrame())

	for {
		select {
		case <-stop:
			return
		default:
		}

		available := int(p.rb.AvailableRead())
		aligned := p.Format.AlignDown(available)
		if aligned == 0 {
			time.Sleep(2 * time.Millisecond)
			continue
		}
		if aligned > len(buf) {
			aligned = p.Format.AlignDown(len(buf))
		}

		n, _ := p.rb.Read(buf[:aligned])
		if n == 0 {
			time.Sleep(2 * time.Millisecond)
			continue
		}

		frames := n / p.Format.BytesPerFrame()
		if p.stream != nil {
			p.stream.Write(frames, buf[:n])
		}

		p.mu.Lock()
		p.playCursor += int64(n)
		p.mu.Unlock()
	}
}

// Stop halts the drain goroutine without discarding buffered audio.
func (p *Player) Stop() error {
	p.streamMu.Lock()
	defer p.streamMu.Unlock()

	if p.drainStop == nil {
		return nil
	}
	close(p.drainStop)
	<-p.drainDone
	p.drainStop = nil
	p.drainDone = nil

	p.mu.Lock()
	if p.pausedAt.IsZero() {
		p.pausedAt = time.Now()
	}
	p.mu.Unlock()

	if p.stream != nil {
		if err := p.stream.StopStream(); err != nil {
			return fmt.Errorf("ring: stop stream: %w", err)
		}
	}
	return nil
}

// Clear discards buffered audio and resets both cursors to the current
// write position, matching DirectSoundAudioPlayer.clear.
func (p *Player) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.rb.Reset()
	p.playCursor = p.writeCursor
	p.eosCursor = nil
	p.hasUnderrun = false
	p.Events.Clear()
	p.Drift.Reset()
	p.masterStart = time.Time{}
	p.pausedAccum = 0
	p.pausedAt = time.Time{}
	return nil
}

// Delete stops the stream and releases native resources.
func (p *Player) Delete() error {
	p.Stop()
	p.streamMu.Lock()
	defer p.streamMu.Unlock()
	if p.stream != nil {
		p.stream.Close()
		p.stream = nil
	}
	playerhandle.Unregister(p.Owner)
	return nil
}

func (p *Player) GetTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playTimeLocked()
}

func (p *Player) SetVolume(gain float64) error {
	// DirectSound-style native buffers take gain in millibels; captured
	// here for backends that plug in a real DSound-like API.
	_ = backend.GainToDB(gain)
	return nil
}

func (p *Player) SetPosition(pos backend.Coordinates) error {
	if p.InvertsZAxis() {
		pos = backend.ConvertCoordinates(pos)
	}
	return nil
}

func (p *Player) SetPitch(pitch float64) error { return nil }

// InvertsZAxis reports true: the ring backend models a DirectSound-style
// device, which uses a left-handed coordinate convention.
func (p *Player) InvertsZAxis() bool { return true }
