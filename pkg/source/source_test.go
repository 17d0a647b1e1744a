package source

import (
	"testing"

	"github.com/drgolem/audiostream/pkg/audioformat"
	"github.com/drgolem/audiostream/pkg/audiopacket"
	"github.com/drgolem/audiostream/pkg/mediaerr"
)

// chunkySource hands out data in fixed-size chunks regardless of the
// requested size, simulating a real decoder that cannot satisfy
// arbitrary read sizes - exactly the imprecision PreciseSource exists
// to absorb.
type chunkySource struct {
	Attachable
	format    audioformat.AudioFormat
	data      []byte
	pos       int
	chunkSize int
}

func (c *chunkySource) AudioFormat() audioformat.AudioFormat { return c.format }
func (c *chunkySource) Duration() (float64, bool)            { return 0, false }
func (c *chunkySource) Info() Info                           { return Info{} }
func (c *chunkySource) IsPrecise() bool                      { return false }
func (c *chunkySource) Seek(float64) error                   { return mediaerr.ErrCannotSeek }
func (c *chunkySource) GetQueueSource() (Source, error)       { return NewPrecise(c), nil }

func (c *chunkySource) GetAudioData(numBytes int, _ float64) (*audiopacket.AudioPacket, error) {
	if c.pos >= len(c.data) {
		return nil, nil
	}
	n := c.chunkSize
	if c.pos+n > len(c.data) {
		n = len(c.data) - c.pos
	}
	chunk := c.data[c.pos : c.pos+n]
	c.pos += n
	return audiopacket.New(chunk, -1, -1), nil
}

func TestPreciseSourceAlwaysReturnsRequestedSize(t *testing.T) {
	f, _ := audioformat.New(1, 2, 8000)
	total := 200000
	data := make([]byte, total)
	for i := range data {
		data[i] = byte(i)
	}
	src := &chunkySource{format: f, data: data, chunkSize: 137}
	precise := NewPrecise(src)

	got := 0
	for {
		chunk, err := precise.GetAudioData(4096, 0)
		if err != nil {
			t.Fatalf("GetAudioData: %v", err)
		}
		if chunk == nil {
			break
		}
		if len(chunk.Audio) != 4096 && got+len(chunk.Audio) != total {
			t.Fatalf("mid-stream chunk not full size: got %d", len(chunk.Audio))
		}
		got += len(chunk.Audio)
	}
	if got != total {
		t.Fatalf("total bytes read = %d, want %d", got, total)
	}
}

func TestMemorySourceSeekAligns(t *testing.T) {
	f, _ := audioformat.New(2, 2, 1000) // 4 bytes/frame
	data := make([]byte, 400)
	m := NewMemorySource(data, f, Info{Title: "x"})

	if err := m.Seek(0.0123); err != nil { // 0.0123s * 4000 bytes/s = 49 bytes, aligned down to 48
		t.Fatalf("Seek: %v", err)
	}

	chunk, err := m.GetAudioData(100, 0)
	if err != nil {
		t.Fatalf("GetAudioData: %v", err)
	}
	if chunk != nil && len(chunk.Audio)%f.BytesPerFrame() != 0 {
		t.Fatalf("chunk not frame aligned")
	}
}

func TestStaticSourceSharesBufferAcrossQueueSources(t *testing.T) {
	f, _ := audioformat.New(1, 2, 8000)
	data := make([]byte, 1000)
	src := &chunkySource{format: f, data: data, chunkSize: 300}

	static, err := NewStaticSource(src)
	if err != nil {
		t.Fatalf("NewStaticSource: %v", err)
	}
	if len(static.data) != len(data) {
		t.Fatalf("decoded %d bytes, want %d", len(static.data), len(data))
	}

	q1, err := static.GetQueueSource()
	if err != nil {
		t.Fatalf("GetQueueSource: %v", err)
	}
	q2, err := static.GetQueueSource()
	if err != nil {
		t.Fatalf("GetQueueSource: %v", err)
	}

	m1 := q1.(*MemorySource)
	m2 := q2.(*MemorySource)
	if &m1.data[0] != &m2.data[0] {
		t.Fatalf("expected shared backing array across queue sources")
	}

	if err := static.Acquire(); err == nil {
		t.Fatalf("expected StaticSource.Acquire to fail, it is not itself queueable")
	}
}

func TestGroupGaplessConcat(t *testing.T) {
	f, _ := audioformat.New(1, 2, 1000)
	g := NewGroup()

	s1 := NewMemorySource(make([]byte, 100), f, Info{})
	s2 := NewMemorySource(make([]byte, 100), f, Info{})
	if err := g.Add(s1); err != nil {
		t.Fatalf("Add s1: %v", err)
	}
	if err := g.Add(s2); err != nil {
		t.Fatalf("Add s2: %v", err)
	}

	total := 0
	for {
		chunk, err := g.GetAudioData(60, 0)
		if err != nil {
			t.Fatalf("GetAudioData: %v", err)
		}
		if chunk == nil {
			break
		}
		total += len(chunk.Audio)
	}
	if total != 200 {
		t.Fatalf("total = %d, want 200", total)
	}
}

func TestGroupFormatMismatch(t *testing.T) {
	f1, _ := audioformat.New(1, 2, 1000)
	f2, _ := audioformat.New(2, 2, 1000)
	g := NewGroup()
	if err := g.Add(NewMemorySource(nil, f1, Info{})); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := g.Add(NewMemorySource(nil, f2, Info{})); err != mediaerr.ErrFormatMismatch {
		t.Fatalf("expected ErrFormatMismatch, got %v", err)
	}
}
