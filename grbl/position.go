package grbl

import "math"

// Position is a triple of signed decimal millimetres on the X, Y and Z axes.
type Position struct {
	X, Y, Z float64
}

// Add returns the element-wise sum of p and o.
func (p Position) Add(o Position) Position {
	return Position{p.X + o.X, p.Y + o.Y, p.Z + o.Z}
}

// Sub returns the element-wise difference p-o.
func (p Position) Sub(o Position) Position {
	return Position{p.X - o.X, p.Y - o.Y, p.Z - o.Z}
}

// Scale returns p with every axis multiplied by k.
func (p Position) Scale(k float64) Position {
	return Position{p.X * k, p.Y * k, p.Z * k}
}

// Norm returns the Euclidean length of p, treated as a vector.
func (p Position) Norm() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

// Axis returns the value on the given axis letter ('X', 'Y' or 'Z').
func (p Position) Axis(letter byte) float64 {
	switch letter {
	case 'X':
		return p.X
	case 'Y':
		return p.Y
	case 'Z':
		return p.Z
	default:
		return 0
	}
}

// WithAxis returns a copy of p with the given axis letter set to v.
func (p Position) WithAxis(letter byte, v float64) Position {
	switch letter {
	case 'X':
		p.X = v
	case 'Y':
		p.Y = v
	case 'Z':
		p.Z = v
	}
	return p
}

// ApproxEqual reports whether p and o are within atol of each other on
// every axis.
func (p Position) ApproxEqual(o Position, atol float64) bool {
	return math.Abs(p.X-o.X) <= atol && math.Abs(p.Y-o.Y) <= atol && math.Abs(p.Z-o.Z) <= atol
}
