package source

import (
	"github.com/drgolem/audiostream/pkg/audioformat"
	"github.com/drgolem/audiostream/pkg/audiopacket"
	"github.com/drgolem/audiostream/pkg/mediaerr"
)

// MemorySource is a precise, seekable source backed by a fully decoded
// byte slice already in memory. Several MemorySources may share the same
// underlying slice (StaticSource.GetQueueSource does this on every call)
// since MemorySource never mutates it, only its own read cursor.
//
// Grounded on StaticMemorySource in
// original_source/pyglet/media/codecs/base.py.
type MemorySource struct {
	Attachable

	data   []byte
	format audioformat.AudioFormat
	pos    int
	info   Info
}

// NewMemorySource wraps data (not copied) for playback as format.
func NewMemorySource(data []byte, format audioformat.AudioFormat, info Info) *MemorySource {
	return &MemorySource{data: data, format: format, info: info}
}

func (m *MemorySource) AudioFormat() audioformat.AudioFormat { return m.format }

func (m *MemorySource) Duration() (float64, bool) {
	return m.format.BytesToSeconds(len(m.data)), true
}

func (m *MemorySource) Info() Info { return m.info }

func (m *MemorySource) IsPrecise() bool { return true }

func (m *MemorySource) Seek(t float64) error {
	offset := m.format.AlignDown(m.format.SecondsToBytes(t))
	if offset < 0 {
		offset = 0
	}
	if offset > len(m.data) {
		offset = len(m.data)
	}
	m.pos = offset
	return nil
}

func (m *MemorySource) GetQueueSource() (Source, error) { return m, nil }

// GetAudioData returns up to numBytes starting at the current cursor,
// or nil at end of data, exactly like StaticMemorySource.get_audio_data
// reading from its io.BytesIO.
func (m *MemorySource) GetAudioData(numBytes int, _ float64) (*audiopacket.AudioPacket, error) {
	if m.pos >= len(m.data) {
		return nil, nil
	}
	end := m.pos + numBytes
	if end > len(m.data) {
		end = len(m.data)
	}
	chunk := m.data[m.pos:end]
	timestamp := m.format.BytesToSeconds(m.pos)
	duration := m.format.BytesToSeconds(len(chunk))
	m.pos = end
	return audiopacket.New(chunk, timestamp, duration), nil
}

// StaticSource eagerly decodes an entire imprecise source into memory at
// construction time. It is not itself queueable (mirrors pyglet's
// StaticSource raising on acquire/get_audio_data); GetQueueSource
// returns a fresh MemorySource sharing the decoded buffer.
type StaticSource struct {
	data   []byte
	format audioformat.AudioFormat
	info   Info
}

// NewStaticSource decodes src fully into memory, reading in 1MB chunks
// (matching StaticSource.__init__'s buffer_size), and returns a source
// that can be queued any number of times without re-decoding.
func NewStaticSource(src Source) (*StaticSource, error) {
	const chunkSize = 1 << 20

	queueSrc, err := src.GetQueueSource()
	if err != nil {
		return nil, err
	}
	if err := queueSrc.Acquire(); err != nil {
		return nil, err
	}
	defer queueSrc.Release()

	var out []byte
	for {
		chunk, err := queueSrc.GetAudioData(chunkSize, 0)
		if err != nil {
			return nil, err
		}
		if chunk == nil {
			break
		}
		out = append(out, chunk.Audio...)
	}

	return &StaticSource{data: out, format: src.AudioFormat(), info: src.Info()}, nil
}

func (s *StaticSource) AudioFormat() audioformat.AudioFormat { return s.format }

func (s *StaticSource) Duration() (float64, bool) {
	return s.format.BytesToSeconds(len(s.data)), true
}

func (s *StaticSource) Info() Info { return s.info }

func (s *StaticSource) IsPrecise() bool { return true }

func (s *StaticSource) Seek(float64) error { return mediaerr.ErrCannotSeek }

func (s *StaticSource) Acquire() error { return mediaerr.ErrInvalidState }

func (s *StaticSource) Release() {}

func (s *StaticSource) GetAudioData(int, float64) (*audiopacket.AudioPacket, error) {
	return nil, mediaerr.ErrInvalidState
}

// GetQueueSource returns a new MemorySource over the shared decoded
// buffer; every call shares the same backing array, never re-decoding.
func (s *StaticSource) GetQueueSource() (Source, error) {
	return NewMemorySource(s.data, s.format, s.info), nil
}
