// Package g711 decodes headerless G.711 mu-law/A-law telephony
// captures using github.com/zaf/g711. Implements types.AudioDecoder.
//
// G.711 files have no container or header: every byte is one 8kHz
// mono sample. Callers must tell Open which law was used via
// NewMuLawDecoder/NewALawDecoder since there is nothing in the file to
// detect it from.
package g711

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/zaf/g711"
)

// Law selects mu-law or A-law decoding.
type Law int

const (
	MuLaw Law = iota
	ALaw
)

// Decoder wraps zaf/g711 for decoding raw G.711 captures.
// Implements types.AudioDecoder interface.
type Decoder struct {
	file *os.File
	law  Law
}

// NewMuLawDecoder creates a decoder for mu-law (G.711 u-law) captures.
func NewMuLawDecoder() *Decoder { return &Decoder{law: MuLaw} }

// NewALawDecoder creates a decoder for A-law captures.
func NewALawDecoder() *Decoder { return &Decoder{law: ALaw} }

// NewDecoder creates a mu-law decoder, matching the zero-value
// convention of the other codec packages' NewDecoder.
func NewDecoder() *Decoder { return NewMuLawDecoder() }

// Open opens a raw G.711 file for decoding.
func (d *Decoder) Open(fileName string) error {
	file, err := os.Open(fileName)
	if err != nil {
		return fmt.Errorf("failed to open g711 file: %w", err)
	}
	d.file = file
	return nil
}

// Close closes the underlying file.
func (d *Decoder) Close() error {
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}

// GetFormat returns the audio format: fixed at 8kHz mono 16-bit PCM
// output, the standard G.711 telephony parameters.
func (d *Decoder) GetFormat() (rate, channels, bitsPerSample int) {
	return 8000, 1, 16
}

// DecodeSamples decodes up to 'samples' G.711 octets (one sample each)
// into the provided buffer as little-endian int16 PCM.
func (d *Decoder) DecodeSamples(samples int, audio []byte) (int, error) {
	if d.file == nil {
		return 0, fmt.Errorf("decoder not initialized")
	}

	encoded := make([]byte, samples)
	n, err := d.file.Read(encoded)
	if n == 0 {
		if err != nil {
			return 0, io.EOF
		}
		return 0, nil
	}
	encoded = encoded[:n]

	var decoded []int16
	switch d.law {
	case ALaw:
		decoded = g711.DecodeAlaw(encoded)
	default:
		decoded = g711.DecodeUlaw(encoded)
	}

	needed := len(decoded) * 2
	if needed > len(audio) {
		decoded = decoded[:len(audio)/2]
	}
	for i, v := range decoded {
		binary.LittleEndian.PutUint16(audio[i*2:], uint16(v))
	}

	return len(decoded), nil
}
