package source

import (
	"github.com/drgolem/audiostream/pkg/audioformat"
	"github.com/drgolem/audiostream/pkg/audiopacket"
	"github.com/drgolem/audiostream/pkg/mediaerr"
)

// Group gaplessly concatenates a sequence of sources of identical
// format, presenting them to a player as a single logical stream.
//
// Grounded on SourceGroup in
// original_source/pyglet/media/codecs/base.py.
type Group struct {
	format          audioformat.AudioFormat
	formatSet       bool
	sources         []Source
	timestampOffset float64
	dequeuedSeconds float64
}

// NewGroup returns an empty source group.
func NewGroup() *Group {
	return &Group{}
}

// Add appends src to the group. Returns mediaerr.ErrFormatMismatch if
// src's format differs from the group's established format.
func (g *Group) Add(src Source) error {
	if !g.formatSet {
		g.format = src.AudioFormat()
		g.formatSet = true
	} else if src.AudioFormat() != g.format {
		return mediaerr.ErrFormatMismatch
	}
	g.sources = append(g.sources, src)
	return nil
}

// AudioFormat returns the group's established format, valid once at
// least one source has been added.
func (g *Group) AudioFormat() audioformat.AudioFormat { return g.format }

// HasNext reports whether more than one source remains queued (i.e.
// the current head will be followed by another once exhausted).
func (g *Group) HasNext() bool { return len(g.sources) > 1 }

// Duration sums the duration of every queued source; returns ok=false
// if any member's duration is unknown.
func (g *Group) Duration() (float64, bool) {
	total := 0.0
	for _, s := range g.sources {
		d, ok := s.Duration()
		if !ok {
			return 0, false
		}
		total += d
	}
	return total, true
}

// Info returns the head source's Info, or the zero Info if empty.
func (g *Group) Info() Info {
	if len(g.sources) == 0 {
		return Info{}
	}
	return g.sources[0].Info()
}

// Seek delegates to the current head only: group-level seek spans the
// head, not the whole concatenation, per SourceGroup.seek. Returns
// mediaerr.ErrCannotSeek if the group is empty or the head can't seek.
func (g *Group) Seek(t float64) error {
	if len(g.sources) == 0 {
		return mediaerr.ErrCannotSeek
	}
	return g.sources[0].Seek(t)
}

// advance drops the exhausted head source, releasing it (and, for a
// DecoderSource/imprecise head, relying on the caller having acquired
// the PreciseSource wrapper so Release is symmetric), and accumulates
// its duration into the group's running timestamp offset.
func (g *Group) advance() {
	if len(g.sources) == 0 {
		return
	}
	head := g.sources[0]
	if d, ok := head.Duration(); ok {
		g.timestampOffset += d
	}
	g.dequeuedSeconds += g.timestampOffset
	head.Release()
	g.sources = g.sources[1:]
}

// GetAudioData accumulates audio from the head source(s) until numBytes
// have been gathered or every source is exhausted, advancing to the
// next source transparently when the current head ends - this is what
// makes playback gapless across a group's members. Returns nil, nil
// only once every member is exhausted.
func (g *Group) GetAudioData(numBytes int, compensationTime float64) (*audiopacket.AudioPacket, error) {
	var out *audiopacket.AudioPacket

	for numBytes > 0 {
		if len(g.sources) == 0 {
			break
		}
		head := g.sources[0]
		chunk, err := head.GetAudioData(numBytes, compensationTime)
		if err != nil {
			return nil, err
		}
		if chunk == nil {
			if len(g.sources) == 1 {
				g.advance()
				break
			}
			g.advance()
			continue
		}

		if chunk.Timestamp >= 0 {
			chunk.Timestamp += g.timestampOffset
		}
		if out == nil {
			out = chunk
		} else {
			out.Audio = append(out.Audio, chunk.Audio...)
			base := int64(len(out.Audio) - len(chunk.Audio))
			for i, off := range chunk.EventOffsets {
				out.Events = append(out.Events, chunk.Events[i])
				out.EventOffsets = append(out.EventOffsets, base+off)
			}
			if out.Duration >= 0 && chunk.Duration >= 0 {
				out.Duration += chunk.Duration
			}
		}
		numBytes -= len(chunk.Audio)
	}

	return out, nil
}
