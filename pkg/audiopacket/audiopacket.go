// Package audiopacket implements the unit of decoded audio a Source
// hands to a player: a byte buffer, its duration/timestamp metadata and
// any MediaEvents anchored inside it, plus the consume() operation that
// lets a backend take bytes off the front without discarding the rest.
//
// Grounded on original_source/pyglet/media/codecs/base.py's AudioData
// class (consume, get_string_data) and its interaction with
// PreciseStreamingSource.get_audio_data.
package audiopacket

import (
	"github.com/drgolem/audiostream/pkg/audioformat"
	"github.com/drgolem/audiostream/pkg/mediaevent"
)

// AudioPacket carries one chunk of decoded PCM audio plus timing
// metadata. Timestamp and Duration are -1 when unknown (as produced by
// PreciseSource, which erases timing precision it cannot guarantee).
// EventOffsets[i] is the byte offset of Events[i] from the start of
// Audio, consumed along with it.
type AudioPacket struct {
	Audio        []byte
	Timestamp    float64
	Duration     float64
	Events       []mediaevent.MediaEvent
	EventOffsets []int64
}

// New builds a packet with no attached events.
func New(audio []byte, timestamp, duration float64) *AudioPacket {
	return &AudioPacket{Audio: audio, Timestamp: timestamp, Duration: duration}
}

// Len returns the number of bytes remaining in the packet.
func (p *AudioPacket) Len() int {
	return len(p.Audio)
}

// Consume removes numBytes from the front of the packet, dropping any
// events whose offset falls inside the consumed region and adjusting
// the offsets and duration/timestamp of what remains. numBytes is
// clamped to the format's frame alignment by the caller; Consume itself
// does not re-align, mirroring AudioData.consume which trusts its
// caller to pass an already-aligned length.
func (p *AudioPacket) Consume(numBytes int, format audioformat.AudioFormat) {
	if numBytes <= 0 {
		return
	}
	if numBytes >= len(p.Audio) {
		p.Audio = nil
		p.Timestamp = -1
		p.Duration = 0
		p.Events = nil
		p.EventOffsets = nil
		return
	}

	consumedSeconds := format.BytesToSeconds(numBytes)
	if p.Timestamp >= 0 {
		p.Timestamp += consumedSeconds
	}
	if p.Duration > 0 {
		p.Duration -= consumedSeconds
		if p.Duration < 0 {
			p.Duration = 0
		}
	}

	remainingEvents := p.Events[:0:0]
	remainingOffsets := p.EventOffsets[:0:0]
	for i, off := range p.EventOffsets {
		if off >= int64(numBytes) {
			remainingEvents = append(remainingEvents, p.Events[i])
			remainingOffsets = append(remainingOffsets, off-int64(numBytes))
		}
	}
	p.Events = remainingEvents
	p.EventOffsets = remainingOffsets

	p.Audio = p.Audio[numBytes:]
}
