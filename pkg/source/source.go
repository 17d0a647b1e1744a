// Package source implements the Source hierarchy: the common interface
// every playable thing satisfies, the precision-adapter that normalizes
// imprecise decoders into fixed-size reads, static/memory sources, and
// the gapless-concatenation group a player actually drives.
//
// Grounded on original_source/pyglet/media/codecs/base.py (Source,
// StreamingSource, StaticSource, StaticMemorySource, SourceGroup,
// PreciseStreamingSource).
package source

import (
	"sync"

	"github.com/drgolem/audiostream/pkg/audioformat"
	"github.com/drgolem/audiostream/pkg/audiopacket"
	"github.com/drgolem/audiostream/pkg/mediaerr"
)

// Info carries optional descriptive metadata about a source. The zero
// value means "unknown"; not every decoder populates it.
//
// Supplements spec.md's data model with pyglet's SourceInfo
// (codecs/base.py), dropped by the distillation.
type Info struct {
	Title  string
	Author string
	Album  string
}

// Source is anything that can produce PCM audio data on demand. A
// Source may be attached to at most one player at a time (Acquire
// enforces this); a Source that cannot seek returns
// mediaerr.ErrCannotSeek from Seek.
type Source interface {
	// AudioFormat returns the format this source decodes to. It must
	// not change over the lifetime of the source.
	AudioFormat() audioformat.AudioFormat

	// Duration returns the source's total duration in seconds and
	// whether that duration is known. Streaming sources with no known
	// length return (0, false).
	Duration() (float64, bool)

	// Info returns descriptive metadata, or the zero Info if unknown.
	Info() Info

	// IsPrecise reports whether GetAudioData always returns exactly
	// numBytes (aligned) until the source is exhausted. Most decoders
	// are imprecise; PreciseSource, MemorySource and StaticSource are
	// precise by construction.
	IsPrecise() bool

	// Acquire marks the source as attached to a player. Returns
	// mediaerr.ErrAlreadyAttached if already attached.
	Acquire() error

	// Release marks the source as no longer attached. Safe to call on
	// an unattached source.
	Release()

	// Seek moves the read position to t seconds. Returns
	// mediaerr.ErrCannotSeek if the source does not support seeking.
	Seek(t float64) error

	// GetAudioData returns up to numBytes of audio (aligned to the
	// source's format), or nil with a nil error at end of stream.
	// compensationTime is the current drift-filter correction in
	// seconds; sources that can skip/stretch to compensate may use it,
	// most simply ignore it.
	GetAudioData(numBytes int, compensationTime float64) (*audiopacket.AudioPacket, error)

	// GetQueueSource returns the Source a player should actually read
	// from: an imprecise source returns a PreciseSource wrapping it
	// (DecoderSource acquires itself first, not the wrapper); a precise
	// source may return itself.
	GetQueueSource() (Source, error)
}

// Attachable implements the common Acquire/Release bookkeeping every
// concrete Source embeds, mirroring the attached-state checks
// pyglet's Source.acquire/release perform before delegating.
type Attachable struct {
	mu       sync.Mutex
	attached bool
}

// Acquire marks the source attached, or returns ErrAlreadyAttached.
func (a *Attachable) Acquire() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.attached {
		return mediaerr.ErrAlreadyAttached
	}
	a.attached = true
	return nil
}

// Release marks the source unattached.
func (a *Attachable) Release() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.attached = false
}

// Attached reports whether Acquire has been called without a matching
// Release.
func (a *Attachable) Attached() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.attached
}
