package source

import (
	"strings"

	"github.com/drgolem/audiostream/pkg/audioformat"
	"github.com/drgolem/audiostream/pkg/audiopacket"
	"github.com/drgolem/audiostream/pkg/mediaerr"
	"github.com/drgolem/audiostream/pkg/types"
)

// DecoderSource adapts the codec decoders in pkg/decoders (each
// implementing types.AudioDecoder) into the Source interface. Decoders
// read variable sample counts per call, so DecoderSource is always
// imprecise; GetQueueSource wraps it in a PreciseSource on first use,
// matching StreamingSource.get_queue_source in
// original_source/pyglet/media/codecs/base.py.
type DecoderSource struct {
	Attachable

	decoder  types.AudioDecoder
	format   audioformat.AudioFormat
	info     Info
	seekable bool
}

// NewDecoderSource builds a Source over an already-opened decoder.
func NewDecoderSource(decoder types.AudioDecoder, info Info) (*DecoderSource, error) {
	rate, channels, bitsPerSample := decoder.GetFormat()
	format, err := audioformat.New(channels, bitsPerSample/8, rate)
	if err != nil {
		return nil, err
	}
	return &DecoderSource{decoder: decoder, format: format, info: info}, nil
}

func (d *DecoderSource) AudioFormat() audioformat.AudioFormat { return d.format }

// Duration is unknown: the decoders in pkg/decoders do not expose a
// total-sample count, matching most pyglet streaming codecs.
func (d *DecoderSource) Duration() (float64, bool) { return 0, false }

func (d *DecoderSource) Info() Info { return d.info }

func (d *DecoderSource) IsPrecise() bool { return false }

func (d *DecoderSource) Seek(float64) error { return mediaerr.ErrCannotSeek }

func (d *DecoderSource) GetQueueSource() (Source, error) {
	if err := d.Acquire(); err != nil {
		return nil, err
	}
	return NewPrecise(d), nil
}

// GetAudioData decodes up to numBytes (aligned down to a whole frame)
// from the wrapped decoder. Returns nil, nil at end of stream.
func (d *DecoderSource) GetAudioData(numBytes int, _ float64) (*audiopacket.AudioPacket, error) {
	bpf := d.format.BytesPerFrame()
	if bpf <= 0 {
		return nil, mediaerr.ErrInvalidState
	}
	numSamples := d.format.AlignDown(numBytes) / bpf
	if numSamples <= 0 {
		return nil, nil
	}

	buf := make([]byte, numSamples*bpf)
	n, err := d.decoder.DecodeSamples(numSamples, buf)
	if n > 0 {
		// Some decoders signal end-of-stream alongside the final
		// partial read rather than on the following call; the data
		// itself is still valid, so hand it back and let exhaustion
		// surface on the next GetAudioData call.
		return audiopacket.New(buf[:n*bpf], -1, -1), nil
	}

	if err != nil && !isEOF(err) {
		return nil, mediaerr.Wrap(mediaerr.ErrBackendFatal, err)
	}
	return nil, nil
}

func isEOF(err error) bool {
	s := err.Error()
	return strings.Contains(s, "EOF") || strings.Contains(s, "done")
}
