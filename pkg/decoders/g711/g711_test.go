package g711

import "testing"

func TestGetFormatFixedTelephonyParameters(t *testing.T) {
	d := NewMuLawDecoder()
	rate, channels, bps := d.GetFormat()
	if rate != 8000 || channels != 1 || bps != 16 {
		t.Fatalf("GetFormat() = (%d,%d,%d), want (8000,1,16)", rate, channels, bps)
	}
}

func TestNewDecoderDefaultsToMuLaw(t *testing.T) {
	d := NewDecoder()
	if d.law != MuLaw {
		t.Fatalf("NewDecoder() law = %v, want MuLaw", d.law)
	}
}

func TestNewALawDecoderSelectsALaw(t *testing.T) {
	d := NewALawDecoder()
	if d.law != ALaw {
		t.Fatalf("NewALawDecoder() law = %v, want ALaw", d.law)
	}
}
