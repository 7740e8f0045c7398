package grbl

import "math"

const (
	// arcRadiusFloor is the minimum computed radius below which a circular
	// move degenerates to a single linear waypoint.
	arcRadiusFloor = 1e-3

	// arcFullRevolutionFloor is the sweep below which start and end angles
	// are treated as coincident, triggering the full-circle rule.
	arcFullRevolutionFloor = 1e-4

	// arcChordTarget is the approximate chord length, in millimetres, used
	// to choose how many linear segments approximate the arc.
	arcChordTarget = 1.0
)

// ExpandArc generates the linear waypoints approximating a circular move
// from start S to endpoint E, with centre offsets (i, j) relative to S and
// k ignored (the active plane is fixed to XY). cw selects clockwise vs
// counter-clockwise traversal. Z interpolates linearly across the arc.
func ExpandArc(start, end Position, i, j float64, cw bool) []Position {
	center := Position{X: start.X + i, Y: start.Y + j}
	radius := math.Hypot(start.X-center.X, start.Y-center.Y)
	if radius < arcRadiusFloor {
		return []Position{end}
	}

	startAngle := math.Atan2(start.Y-center.Y, start.X-center.X)
	endAngle := math.Atan2(end.Y-center.Y, end.X-center.X)

	if cw {
		for endAngle > startAngle {
			endAngle -= 2 * math.Pi
		}
	} else {
		for endAngle < startAngle {
			endAngle += 2 * math.Pi
		}
	}

	if math.Abs(endAngle-startAngle) < arcFullRevolutionFloor {
		if cw {
			endAngle = startAngle - 2*math.Pi
		} else {
			endAngle = startAngle + 2*math.Pi
		}
	}

	angularTravel := math.Abs(endAngle - startAngle)
	n := int(radius * angularTravel / arcChordTarget)
	if n < 2 {
		n = 2
	}

	waypoints := make([]Position, 0, n)
	for idx := 1; idx <= n; idx++ {
		t := float64(idx) / float64(n)
		angle := startAngle + (endAngle-startAngle)*t
		waypoints = append(waypoints, Position{
			X: center.X + radius*math.Cos(angle),
			Y: center.Y + radius*math.Sin(angle),
			Z: start.Z + (end.Z-start.Z)*t,
		})
	}
	return waypoints
}
