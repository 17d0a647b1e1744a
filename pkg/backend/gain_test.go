package backend

import "testing"

func TestGainToDB(t *testing.T) {
	if got := GainToDB(0); got != -10000 {
		t.Fatalf("GainToDB(0) = %d, want -10000", got)
	}
	if got := GainToDB(1.0); got != 0 {
		t.Fatalf("GainToDB(1.0) = %d, want 0", got)
	}
	if got := GainToDB(-1); got != -10000 {
		t.Fatalf("GainToDB(-1) = %d, want -10000", got)
	}
	if got := GainToDB(2.0); got != 0 {
		t.Fatalf("GainToDB(2.0) (clamped to unity) = %d, want 0", got)
	}
	half := GainToDB(0.5)
	if half >= 0 {
		t.Fatalf("GainToDB(0.5) = %d, want negative", half)
	}
}

func TestConvertCoordinatesInvertsZ(t *testing.T) {
	c := ConvertCoordinates(Coordinates{X: 1, Y: 2, Z: 3})
	if c.X != 1 || c.Y != 2 || c.Z != -3 {
		t.Fatalf("ConvertCoordinates = %+v, want Z negated", c)
	}
}
