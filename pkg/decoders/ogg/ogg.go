// Package ogg decodes Ogg Vorbis files using jfreymuth/oggvorbis.
// Implements types.AudioDecoder.
package ogg

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/jfreymuth/oggvorbis"
)

// Decoder wraps oggvorbis for decoding Ogg Vorbis audio files.
// Implements types.AudioDecoder interface.
type Decoder struct {
	file   *os.File
	reader *oggvorbis.Reader

	rate     int
	channels int

	samples []float32 // leftover decoded samples not yet consumed by DecodeSamples
}

// NewDecoder creates a new Ogg Vorbis decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Open opens an Ogg Vorbis file for decoding.
func (d *Decoder) Open(fileName string) error {
	file, err := os.Open(fileName)
	if err != nil {
		return fmt.Errorf("failed to open ogg file: %w", err)
	}

	reader, err := oggvorbis.NewReader(file)
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to read ogg vorbis header: %w", err)
	}

	d.file = file
	d.reader = reader
	d.rate = reader.SampleRate()
	d.channels = reader.Channels()

	return nil
}

// Close closes the underlying file.
func (d *Decoder) Close() error {
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}

// GetFormat returns the audio format. oggvorbis decodes to float32
// samples internally; DecodeSamples converts them to 16-bit PCM, the
// bit depth this decoder reports.
func (d *Decoder) GetFormat() (rate, channels, bitsPerSample int) {
	return d.rate, d.channels, 16
}

// DecodeSamples decodes up to 'samples' audio samples (interleaved
// across channels) into the provided buffer as little-endian int16.
func (d *Decoder) DecodeSamples(samples int, audio []byte) (int, error) {
	if d.reader == nil {
		return 0, fmt.Errorf("decoder not initialized")
	}

	bytesPerSample := 2
	totalSamples := 0
	chunk := make([]float32, 4096*d.channels)

	for totalSamples < samples {
		if len(d.samples) == 0 {
			n, err := d.reader.Read(chunk)
			if n == 0 {
				if err != nil {
					if totalSamples > 0 {
						return totalSamples, nil
					}
					return 0, io.EOF
				}
				return totalSamples, nil
			}
			d.samples = chunk[:n]
		}

		avail := len(d.samples)
		need := (samples - totalSamples) * d.channels
		take := avail
		if need < take {
			take = need
		}

		for i := 0; i < take; i++ {
			offset := totalSamples*d.channels + i
			if offset*bytesPerSample+bytesPerSample > len(audio) {
				return totalSamples, nil
			}
			binary.LittleEndian.PutUint16(audio[offset*bytesPerSample:], floatToInt16(d.samples[i]))
		}
		d.samples = d.samples[take:]
		totalSamples += take / d.channels
	}

	return totalSamples, nil
}

func floatToInt16(f float32) uint16 {
	v := float64(f) * 32767.0
	v = math.Max(-32768, math.Min(32767, v))
	return uint16(int16(v))
}
