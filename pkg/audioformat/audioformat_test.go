package audioformat

import "testing"

func TestNewValidation(t *testing.T) {
	cases := []struct {
		name                          string
		channels, sampleSize, rate    int
		wantErr                       bool
	}{
		{"valid stereo 16 bit", 2, 2, 44100, false},
		{"zero channels", 0, 2, 44100, true},
		{"negative sample size", 2, -1, 44100, true},
		{"zero rate", 2, 2, 0, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := New(c.channels, c.sampleSize, c.rate)
			if (err != nil) != c.wantErr {
				t.Fatalf("New(%d,%d,%d) err=%v, wantErr=%v", c.channels, c.sampleSize, c.rate, err, c.wantErr)
			}
		})
	}
}

func TestAlignment(t *testing.T) {
	f, err := New(2, 2, 44100) // bytes per frame = 4
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if got := f.BytesPerFrame(); got != 4 {
		t.Fatalf("BytesPerFrame() = %d, want 4", got)
	}
	if got := f.BytesPerSecond(); got != 4*44100 {
		t.Fatalf("BytesPerSecond() = %d, want %d", got, 4*44100)
	}
	if got := f.AlignDown(10); got != 8 {
		t.Fatalf("AlignDown(10) = %d, want 8", got)
	}
	if got := f.AlignUp(10); got != 12 {
		t.Fatalf("AlignUp(10) = %d, want 12", got)
	}
	if got := f.AlignUp(12); got != 12 {
		t.Fatalf("AlignUp(12) = %d, want 12 (already aligned)", got)
	}
}

func TestSecondsBytesRoundTrip(t *testing.T) {
	f, _ := New(1, 2, 8000)
	n := f.SecondsToBytes(1.0)
	if n != f.BytesPerSecond() {
		t.Fatalf("SecondsToBytes(1.0) = %d, want %d", n, f.BytesPerSecond())
	}
	s := f.BytesToSeconds(n)
	if s != 1.0 {
		t.Fatalf("BytesToSeconds(%d) = %v, want 1.0", n, s)
	}
}
