// Package audioformat describes the shape of a raw PCM stream: channel
// count, sample size and sample rate, plus the byte-alignment arithmetic
// every other package in audiostream needs to turn byte offsets into
// whole sample frames and back.
package audioformat

import "fmt"

// AudioFormat describes linear PCM audio: channel count, the size of a
// single sample in bytes, and the sample rate in Hz. Two formats compare
// equal by value; there is no notion of format identity beyond that.
type AudioFormat struct {
	Channels   int
	SampleSize int // bytes per sample per channel, e.g. 2 for 16-bit PCM
	SampleRate int
}

// New validates and constructs an AudioFormat. Channels must be positive;
// SampleSize and SampleRate must be positive. audiostream does not itself
// care whether SampleSize is a "common" value (1/2/3/4 bytes) since that
// is a decoder concern, not a format concern.
func New(channels, sampleSize, sampleRate int) (AudioFormat, error) {
	if channels <= 0 {
		return AudioFormat{}, fmt.Errorf("audioformat: channels must be positive, got %d", channels)
	}
	if sampleSize <= 0 {
		return AudioFormat{}, fmt.Errorf("audioformat: sample size must be positive, got %d", sampleSize)
	}
	if sampleRate <= 0 {
		return AudioFormat{}, fmt.Errorf("audioformat: sample rate must be positive, got %d", sampleRate)
	}
	return AudioFormat{Channels: channels, SampleSize: sampleSize, SampleRate: sampleRate}, nil
}

// BytesPerFrame is the size in bytes of one sample frame (one sample per
// channel).
func (f AudioFormat) BytesPerFrame() int {
	return f.Channels * f.SampleSize
}

// BytesPerSecond is the number of bytes one second of this format
// occupies.
func (f AudioFormat) BytesPerSecond() int {
	return f.BytesPerFrame() * f.SampleRate
}

// AlignDown rounds n down to the nearest whole-frame boundary.
func (f AudioFormat) AlignDown(n int) int {
	bpf := f.BytesPerFrame()
	if bpf <= 0 {
		return n
	}
	return (n / bpf) * bpf
}

// AlignUp rounds n up to the nearest whole-frame boundary.
func (f AudioFormat) AlignUp(n int) int {
	bpf := f.BytesPerFrame()
	if bpf <= 0 {
		return n
	}
	if n%bpf == 0 {
		return n
	}
	return ((n / bpf) + 1) * bpf
}

// SecondsToBytes converts a duration in seconds to an aligned byte count.
func (f AudioFormat) SecondsToBytes(seconds float64) int {
	return f.AlignDown(int(seconds * float64(f.BytesPerSecond())))
}

// BytesToSeconds converts an aligned byte count back to seconds.
func (f AudioFormat) BytesToSeconds(n int) float64 {
	bps := f.BytesPerSecond()
	if bps <= 0 {
		return 0
	}
	return float64(n) / float64(bps)
}

func (f AudioFormat) String() string {
	return fmt.Sprintf("%dch/%dbyte/%dHz", f.Channels, f.SampleSize, f.SampleRate)
}
