// Package opus decodes Ogg-Opus files into PCM. Implements
// types.AudioDecoder.
//
// go-opus only exposes raw Opus-frame decoding, not Ogg demuxing, so
// this package also carries a small hand-rolled Ogg page reader (RFC
// 3533) sufficient to pull Opus packets out of a single logical
// bitstream - the retrieved example pack has no general-purpose Ogg
// demuxer (jfreymuth/oggvorbis bundles its own, internal to the
// vorbis codec, and does not expose raw packets).
package opus

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	goopus "github.com/drgolem/go-opus"
)

const (
	maxFrameSamples = 5760 // 120ms at 48kHz, the largest a single Opus frame can decode to
)

// Decoder wraps go-opus for decoding Ogg-Opus audio files.
// Implements types.AudioDecoder interface.
type Decoder struct {
	file    *os.File
	pages   *oggPageReader
	decoder *goopus.Decoder

	rate     int
	channels int

	pcm     []int16 // leftover decoded samples not yet consumed by DecodeSamples
	pcmRead int
	eof     bool
}

// NewDecoder creates a new Opus decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Open opens an Ogg-Opus file for decoding.
func (d *Decoder) Open(fileName string) error {
	file, err := os.Open(fileName)
	if err != nil {
		return fmt.Errorf("failed to open opus file: %w", err)
	}

	pages := newOggPageReader(file)

	head, err := pages.nextPacket()
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to read OpusHead: %w", err)
	}
	channels, rate, err := parseOpusHead(head)
	if err != nil {
		file.Close()
		return err
	}

	// OpusTags packet; discarded.
	if _, err := pages.nextPacket(); err != nil {
		file.Close()
		return fmt.Errorf("failed to read OpusTags: %w", err)
	}

	dec, err := goopus.NewDecoder(48000, channels)
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to create opus decoder: %w", err)
	}

	d.file = file
	d.pages = pages
	d.decoder = dec
	d.channels = channels
	d.rate = rate

	return nil
}

// Close closes the underlying file.
func (d *Decoder) Close() error {
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}

// GetFormat returns the audio format. Opus always decodes to 16-bit
// PCM at its internal 48kHz clock regardless of the container's
// nominal rate, matching the RFC 6716 decoder contract.
func (d *Decoder) GetFormat() (rate, channels, bitsPerSample int) {
	return 48000, d.channels, 16
}

// DecodeSamples decodes up to 'samples' audio samples (interleaved
// across channels) into the provided buffer as little-endian int16.
func (d *Decoder) DecodeSamples(samples int, audio []byte) (int, error) {
	if d.decoder == nil {
		return 0, fmt.Errorf("decoder not initialized")
	}

	bytesPerSample := 2
	totalSamples := 0
	frame := make([]int16, maxFrameSamples*d.channels)

	for totalSamples < samples {
		if d.pcmRead >= len(d.pcm) {
			if d.eof {
				return totalSamples, io.EOF
			}
			packet, err := d.pages.nextPacket()
			if err != nil {
				d.eof = true
				if totalSamples > 0 {
					return totalSamples, nil
				}
				return 0, io.EOF
			}
			n, err := d.decoder.Decode(packet, frame)
			if err != nil {
				return totalSamples, fmt.Errorf("opus decode: %w", err)
			}
			d.pcm = frame[:n*d.channels]
			d.pcmRead = 0
		}

		avail := len(d.pcm) - d.pcmRead
		need := (samples - totalSamples) * d.channels
		take := avail
		if need < take {
			take = need
		}

		for i := 0; i < take; i++ {
			offset := (totalSamples*d.channels + i)
			if offset*bytesPerSample+bytesPerSample > len(audio) {
				return totalSamples, nil
			}
			binary.LittleEndian.PutUint16(audio[offset*bytesPerSample:], uint16(d.pcm[d.pcmRead+i]))
		}
		d.pcmRead += take
		totalSamples += take / d.channels
	}

	return totalSamples, nil
}

func parseOpusHead(packet []byte) (channels, rate int, err error) {
	if len(packet) < 19 || string(packet[0:8]) != "OpusHead" {
		return 0, 0, fmt.Errorf("not an OpusHead packet")
	}
	channels = int(packet[9])
	rate = int(binary.LittleEndian.Uint32(packet[12:16]))
	return channels, rate, nil
}

// oggPageReader extracts raw packets from an Ogg bitstream, assuming
// one logical stream (the common case for .opus files).
type oggPageReader struct {
	r       *bufio.Reader
	queue   [][]byte // fully-assembled packets not yet returned
	partial []byte   // a packet still spanning page boundaries
}

func newOggPageReader(r io.Reader) *oggPageReader {
	return &oggPageReader{r: bufio.NewReaderSize(r, 64*1024)}
}

// nextPacket returns the next complete packet, reading and
// reassembling as many Ogg pages as a continued packet spans.
func (o *oggPageReader) nextPacket() ([]byte, error) {
	for len(o.queue) == 0 {
		if err := o.readPage(); err != nil {
			return nil, err
		}
	}
	packet := o.queue[0]
	o.queue = o.queue[1:]
	return packet, nil
}

// readPage reads one Ogg page and splits it into packets per the
// lacing-value rules in RFC 3533 section 6, appending fully-terminated
// packets to o.queue and carrying an unterminated final segment over
// in o.partial for the next page to complete.
func (o *oggPageReader) readPage() error {
	header := make([]byte, 27)
	if _, err := io.ReadFull(o.r, header); err != nil {
		return err
	}
	if string(header[0:4]) != "OggS" {
		return fmt.Errorf("invalid ogg page magic")
	}

	numSegments := int(header[26])
	segTable := make([]byte, numSegments)
	if _, err := io.ReadFull(o.r, segTable); err != nil {
		return err
	}

	cur := o.partial
	o.partial = nil
	for i := 0; i < numSegments; i++ {
		size := int(segTable[i])
		buf := make([]byte, size)
		if size > 0 {
			if _, err := io.ReadFull(o.r, buf); err != nil {
				return err
			}
		}
		cur = append(cur, buf...)
		if size < 255 {
			o.queue = append(o.queue, cur)
			cur = nil
		}
	}
	if cur != nil {
		o.partial = cur // last segment was 255 bytes: packet continues
	}

	return nil
}
