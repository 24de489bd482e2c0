package model

import "math"

// Location is a point in the host world.
// Value type, passed by value (immutable).
type Location struct {
	X float64
	Y float64
	Z float64
}

// NewLocation creates a Location with the given coordinates.
func NewLocation(x, y, z float64) Location {
	return Location{X: x, Y: y, Z: z}
}

// WithCoordinates returns a copy with updated coordinates (immutable pattern).
func (l Location) WithCoordinates(x, y, z float64) Location {
	l.X = x
	l.Y = y
	l.Z = z
	return l
}

// DistanceSquared returns the squared distance to other (no sqrt).
func (l Location) DistanceSquared(other Location) float64 {
	dx := l.X - other.X
	dy := l.Y - other.Y
	dz := l.Z - other.Z
	return dx*dx + dy*dy + dz*dz
}

// Distance returns the euclidean distance to other.
func (l Location) Distance(other Location) float64 {
	return math.Sqrt(l.DistanceSquared(other))
}

// WithinRange reports whether other is at most r away.
func (l Location) WithinRange(other Location, r float64) bool {
	return l.DistanceSquared(other) <= r*r
}
