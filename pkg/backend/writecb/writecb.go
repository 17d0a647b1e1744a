// Package writecb implements the write-callback cursor-bookkeeping
// backend variant: PortAudio pulls audio via a native callback running
// on its own real-time thread, draining an AudioFrameRingBuffer a
// producer side fills asynchronously. Models PulseAudio-style
// write-request devices.
//
// Grounded directly on the teacher's internal/fileplayer.FilePlayer,
// generalized to read through pkg/source instead of a bare
// types.AudioDecoder, and to be driven by Work() instead of owning its
// own producer goroutine.
package writecb

import (
	"fmt"
	"sync/atomic"

	"github.com/drgolem/audiostream/pkg/audioformat"
	"github.com/drgolem/audiostream/pkg/audioframe"
	"github.com/drgolem/audiostream/pkg/audioframeringbuffer"
	"github.com/drgolem/audiostream/pkg/backend"
	"github.com/drgolem/audiostream/pkg/playerhandle"
	"github.com/drgolem/audiostream/pkg/source"

	"github.com/drgolem/go-portaudio/portaudio"
)

// Config controls the native stream and the frame ring buffer backing
// it.
type Config struct {
	DeviceIndex     int
	FramesPerBuffer int
	FrameCapacity   uint64 // number of AudioFrames the ring buffer holds
	SamplesPerFrame int    // samples decoded per refill iteration
}

// DefaultConfig mirrors the teacher's NewFilePlayer call sites.
func DefaultConfig() Config {
	return Config{DeviceIndex: -1, FramesPerBuffer: 512, FrameCapacity: 256, SamplesPerFrame: 4096}
}

// Player is the write-callback backend adapter.
type Player struct {
	backend.AbstractPlayer

	cfg   Config
	group *source.Group

	ringbuf *audioframeringbuffer.AudioFrameRingBuffer
	stream  *portaudio.PaStream

	exhausted     atomic.Bool
	complete      atomic.Bool
	eosDispatched atomic.Bool
	completeCh    chan struct{}

	currentFrame atomic.Pointer[audioframe.AudioFrame]
	frameOffset  int

	producedBytes atomic.Uint64
	playedBytes   atomic.Uint64
}

// New wraps group for write-callback playback.
func New(owner playerhandle.Handle, group *source.Group, cfg Config) (*Player, error) {
	format := group.AudioFormat()

	p := &Player{
		AbstractPlayer: backend.NewAbstractPlayer(owner, format),
		cfg:            cfg,
		group:          group,
		ringbuf:        audioframeringbuffer.New(cfg.FrameCapacity),
		completeCh:     make(chan struct{}),
	}

	stream, err := openCallbackStream(cfg, format, p.audioCallback)
	if err != nil {
		return nil, fmt.Errorf("writecb: failed to open stream: %w", err)
	}
	p.stream = stream
	return p, nil
}

func openCallbackStream(cfg Config, format audioformat.AudioFormat, cb portaudio.StreamCallback) (*portaudio.PaStream, error) {
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

	stream := &portaudio.PaStream{
		OutputParameters: &portaudio.PaStreamParameters{
			DeviceIndex:  cfg.DeviceIndex,
			ChannelCount: format.Channels,
			SampleFormat: sampleFormat,
		},
		SampleRate: float64(format.SampleRate),
	}
	if err := stream.OpenCallback(cfg.FramesPerBuffer, cb); err != nil {
		return nil, fmt.Errorf("failed to open stream with callback: %w", err)
	}
	return stream, nil
}

// audioCallback runs on PortAudio's own real-time thread, not a Go
// goroutine: no blocking, and no caller-supplied handler is invoked
// here (Work dispatches due events). The only allocation is the slice
// the ring buffer's Read returns. Ported from FilePlayer.audioCallback
// unchanged in shape.
func (p *Player) audioCallback(
	input, output []byte,
	frameCount uint,
	timeInfo *portaudio.StreamCallbackTimeInfo,
	statusFlags portaudio.StreamCallbackFlags,
) portaudio.StreamCallbackResult {
	bpf := p.Format.BytesPerFrame()
	bytesNeeded := int(frameCount) * bpf
	bytesWritten := 0

	if p.exhausted.Load() && p.ringbuf.AvailableRead() == 0 && p.currentFrame.Load() == nil {
		p.complete.Store(true)
		select {
		case <-p.completeCh:
		default:
			close(p.completeCh)
		}
		return portaudio.Complete
	}

	for bytesWritten < bytesNeeded {
		current := p.currentFrame.Load()
		if current == nil {
			if p.ringbuf.AvailableRead() > 0 {
				frames, err := p.ringbuf.Read(1)
				if err != nil || len(frames) == 0 {
					break
				}
				p.currentFrame.Store(&frames[0])
				current = &frames[0]
				p.frameOffset = 0
			} else {
				break
			}
		}

		remainingInFrame := len(current.Audio) - p.frameOffset
		remainingInOutput := bytesNeeded - bytesWritten
		toCopy := remainingInFrame
		if remainingInOutput < toCopy {
			toCopy = remainingInOutput
		}

		copy(output[bytesWritten:bytesWritten+toCopy], current.Audio[p.frameOffset:p.frameOffset+toCopy])
		bytesWritten += toCopy
		p.frameOffset += toCopy

		if p.frameOffset >= len(current.Audio) {
			p.currentFrame.Store(nil)
			p.frameOffset = 0
		}
	}

	if bytesWritten < bytesNeeded {
		clear(output[bytesWritten:bytesNeeded])
	}

	p.playedBytes.Add(uint64(bytesWritten))

	return portaudio.Continue
}

// PrefillAudio fills the ring buffer once before the first Play.
func (p *Player) PrefillAudio() error {
	return p.Work()
}

// Work dispatches the events the callback's play position has passed,
// then decodes one chunk from the source group and writes it into the
// frame ring buffer as an AudioFrame. When the ring buffer has no free
// slot, nothing is decoded and the next tick tries again. Replaces
// FilePlayer.producer's loop body, called periodically by the worker
// scheduler instead of running as its own goroutine.
func (p *Player) Work() error {
	p.Events.DispatchUntil(int64(p.playedBytes.Load()), p.Handler)

	if p.complete.Load() && p.eosDispatched.CompareAndSwap(false, true) && p.Handler != nil {
		p.Handler("on_eos", nil)
	}

	if p.exhausted.Load() {
		return nil
	}
	if p.ringbuf.AvailableWrite() == 0 {
		return nil // ring buffer full; worker will retry on next tick
	}

	numBytes := p.cfg.SamplesPerFrame * p.Format.BytesPerFrame()
	chunk, err := p.group.GetAudioData(numBytes, 0)
	if err != nil {
		return err
	}
	if chunk == nil {
		p.exhausted.Store(true)
		return nil
	}

	p.Events.Append(int64(p.producedBytes.Load()), chunk.Events, chunk.EventOffsets)

	frame := audioframe.AudioFrame{
		Format: audioframe.FrameFormat{
			SampleRate:    uint32(p.Format.SampleRate),
			Channels:      uint8(p.Format.Channels),
			BitsPerSample: uint8(p.Format.SampleSize * 8),
		},
		SamplesCount: uint16(len(chunk.Audio) / p.Format.BytesPerFrame()),
		Audio:        chunk.Audio,
	}

	toWrite := []audioframe.AudioFrame{frame}
	for len(toWrite) > 0 {
		written, _ := p.ringbuf.Write(toWrite)
		if written > 0 {
			p.producedBytes.Add(uint64(len(toWrite[0].Audio)))
			toWrite = toWrite[written:]
		} else {
			break // ring buffer full; worker will retry on next tick
		}
	}
	return nil
}

// Play starts the native stream; the callback then pulls whatever is
// already buffered.
func (p *Player) Play() error {
	if p.stream == nil {
		return fmt.Errorf("writecb: stream not initialized")
	}
	return p.stream.StartStream()
}

// Stop halts the native stream without discarding buffered frames.
func (p *Player) Stop() error {
	if p.stream == nil {
		return nil
	}
	return p.stream.StopStream()
}

// Clear discards buffered frames and resets playback position tracking.
func (p *Player) Clear() error {
	p.ringbuf.Reset()
	p.currentFrame.Store(nil)
	p.frameOffset = 0
	p.exhausted.Store(false)
	p.complete.Store(false)
	p.eosDispatched.Store(false)
	p.completeCh = make(chan struct{})
	p.Events.Clear()
	p.Drift.Reset()
	return nil
}

// Delete stops and releases the native stream.
func (p *Player) Delete() error {
	if p.stream != nil {
		p.stream.StopStream()
		p.stream.CloseCallback()
		p.stream = nil
	}
	playerhandle.Unregister(p.Owner)
	return nil
}

// Done returns a channel closed once the callback has drained every
// buffered frame after exhaustion, mirroring FilePlayer.Wait's second
// stage.
func (p *Player) Done() <-chan struct{} { return p.completeCh }

func (p *Player) GetTime() float64 {
	return p.Format.BytesToSeconds(int(p.playedBytes.Load()))
}

func (p *Player) SetVolume(gain float64) error {
	_ = backend.GainToDB(gain)
	return nil
}

func (p *Player) SetPosition(pos backend.Coordinates) error { return nil }
func (p *Player) SetPitch(pitch float64) error               { return nil }
