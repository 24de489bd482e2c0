package model

import (
	"testing"
)

func TestNewLocation(t *testing.T) {
	tests := []struct {
		name    string
		x, y, z float64
		want    Location
	}{
		{
			name: "zero values",
			want: Location{},
		},
		{
			name: "positive coordinates",
			x:    100, y: 200, z: 300,
			want: Location{X: 100, Y: 200, Z: 300},
		},
		{
			name: "negative coordinates",
			x:    -100.5, y: -200, z: -300.25,
			want: Location{X: -100.5, Y: -200, Z: -300.25},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewLocation(tt.x, tt.y, tt.z)
			if got != tt.want {
				t.Errorf("NewLocation() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLocation_WithCoordinates(t *testing.T) {
	orig := NewLocation(1, 2, 3)
	moved := orig.WithCoordinates(4, 5, 6)

	if orig != (Location{X: 1, Y: 2, Z: 3}) {
		t.Errorf("original modified: %+v", orig)
	}
	if moved != (Location{X: 4, Y: 5, Z: 6}) {
		t.Errorf("WithCoordinates() = %+v", moved)
	}
}

func TestLocation_Distance(t *testing.T) {
	a := NewLocation(0, 0, 0)
	b := NewLocation(3, 4, 0)

	if got := a.DistanceSquared(b); got != 25 {
		t.Errorf("DistanceSquared() = %v; want 25", got)
	}
	if got := a.Distance(b); got != 5 {
		t.Errorf("Distance() = %v; want 5", got)
	}
	if !a.WithinRange(b, 5) {
		t.Error("WithinRange(5) = false; want true")
	}
	if a.WithinRange(b, 4.99) {
		t.Error("WithinRange(4.99) = true; want false")
	}
}
