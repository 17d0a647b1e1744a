package source

import (
	"github.com/drgolem/audiostream/pkg/audioformat"
	"github.com/drgolem/audiostream/pkg/audiopacket"
	"github.com/drgolem/audiostream/pkg/mediaevent"
)

// PreciseSource adapts an imprecise Source (one whose GetAudioData may
// return fewer bytes than requested even when more data is coming) into
// one that always returns exactly numBytes until genuinely exhausted.
//
// The refill algorithm - attempt sizes of power-of-two(max(4096,
// required+16)), then twice that, then eight times that (repeated until
// the request is met), with four consecutive empty packets treated as
// exhaustion - is ported from
// original_source/pyglet/media/codecs/base.py's PreciseStreamingSource.
type PreciseSource struct {
	Attachable

	wrapped Source
	format  audioformat.AudioFormat

	buffer      []byte
	bufEvents   []mediaevent.MediaEvent
	bufOffsets  []int64
	exhausted   bool
}

// NewPrecise wraps src, which must not itself already be precise (callers
// should check src.IsPrecise() first; wrapping a precise source is
// harmless but pointless).
func NewPrecise(src Source) *PreciseSource {
	return &PreciseSource{wrapped: src, format: src.AudioFormat()}
}

func (p *PreciseSource) AudioFormat() audioformat.AudioFormat { return p.format }

func (p *PreciseSource) Duration() (float64, bool) { return p.wrapped.Duration() }

func (p *PreciseSource) Info() Info { return p.wrapped.Info() }

func (p *PreciseSource) IsPrecise() bool { return true }

// Seek clears any buffered data and the exhausted flag before delegating,
// matching PreciseStreamingSource.seek.
func (p *PreciseSource) Seek(t float64) error {
	p.buffer = nil
	p.bufEvents = nil
	p.bufOffsets = nil
	p.exhausted = false
	return p.wrapped.Seek(t)
}

// GetQueueSource returns itself: a PreciseSource is already queueable.
func (p *PreciseSource) GetQueueSource() (Source, error) { return p, nil }

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	v := n - 1
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	return v + 1
}

func (p *PreciseSource) appendChunk(chunk *audiopacket.AudioPacket) {
	base := int64(len(p.buffer))
	for i, off := range chunk.EventOffsets {
		p.bufEvents = append(p.bufEvents, chunk.Events[i])
		p.bufOffsets = append(p.bufOffsets, base+off)
	}
	p.buffer = append(p.buffer, chunk.Audio...)
}

// GetAudioData returns exactly numBytes of audio, refilling its internal
// buffer from the wrapped source as needed, until the wrapped source is
// exhausted, at which point it returns whatever remains (possibly less
// than numBytes, possibly nil).
func (p *PreciseSource) GetAudioData(numBytes int, compensationTime float64) (*audiopacket.AudioPacket, error) {
	if p.exhausted && len(p.buffer) == 0 {
		return nil, nil
	}

	if len(p.buffer) < numBytes && !p.exhausted {
		required := numBytes - len(p.buffer)
		attempt := required + 16
		if attempt < 4096 {
			attempt = 4096
		}
		attempt = nextPow2(attempt)

		sizes := []int{attempt, attempt * 2, attempt * 8}
		empties := 0
		for i := 0; len(p.buffer) < numBytes; i++ {
			chunk, err := p.wrapped.GetAudioData(sizes[min(i, len(sizes)-1)], compensationTime)
			if err != nil {
				return nil, err
			}
			if chunk == nil {
				p.exhausted = true
				break
			}
			if len(chunk.Audio) == 0 {
				// Guard against a decoder that never ends.
				if empties++; empties >= 4 {
					p.exhausted = true
					break
				}
				continue
			}
			empties = 0
			p.appendChunk(chunk)
		}
	}

	if len(p.buffer) == 0 {
		return nil, nil
	}

	n := numBytes
	if n > len(p.buffer) {
		n = len(p.buffer)
	}

	out := &audiopacket.AudioPacket{
		Audio:     append([]byte(nil), p.buffer[:n]...),
		Timestamp: -1,
		Duration:  -1,
	}
	for i, off := range p.bufOffsets {
		if off < int64(n) {
			out.Events = append(out.Events, p.bufEvents[i])
			out.EventOffsets = append(out.EventOffsets, off)
		}
	}

	p.buffer = p.buffer[n:]
	remEvents := p.bufEvents[:0:0]
	remOffsets := p.bufOffsets[:0:0]
	for i, off := range p.bufOffsets {
		if off >= int64(n) {
			remEvents = append(remEvents, p.bufEvents[i])
			remOffsets = append(remOffsets, off-int64(n))
		}
	}
	p.bufEvents = remEvents
	p.bufOffsets = remOffsets

	return out, nil
}
