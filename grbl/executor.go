package grbl

import (
	"math"

	"github.com/nasa-jpl/grblsim/util"
)

const (
	// waypointArriveTol is the distance below which a waypoint counts as
	// reached.
	waypointArriveTol = 1e-3

	// minRunSpeed is the speed floor used for Run/Jog motion, in mm/min.
	minRunSpeed = 100.0

	// homeSpeedMMPerMin is the fixed speed used while homing.
	homeSpeedMMPerMin = 500.0
)

// Tick advances the controller by one executor period. dt is the elapsed
// time since the previous tick, in seconds. It is the sole entry point for
// the motion executor and is expected to be called at a nominal 100 Hz; it
// tolerates jitter because it integrates the real elapsed dt rather than
// assuming a fixed period.
func (c *Controller) Tick(dt float64, sink OutputSink) {
	c.mu.Lock()
	alarmed := c.tickLocked(dt)
	c.mu.Unlock()
	if alarmed {
		sink.Alarm(AlarmCodeSoftLimit, HardLimitMessage)
	}
}

func (c *Controller) tickLocked(dt float64) (alarmFired bool) {
	switch c.state {
	case Run, Jog:
		return c.tickMotionLocked(dt)
	case Home:
		c.stepHomingLocked(dt)
		return false
	default:
		return false
	}
}

// tickMotionLocked drives mpos toward the queue head and enforces soft
// limits. Callers hold c.mu.
func (c *Controller) tickMotionLocked(dt float64) bool {
	target, ok := c.queue.Head()
	if !ok {
		c.state = Idle
		return false
	}

	delta := target.Sub(c.mpos)
	dist := delta.Norm()
	if dist <= waypointArriveTol {
		c.queue.Pop()
		if c.queue.Empty() {
			c.state = Idle
		}
		return false
	}

	speed := math.Max(c.modal.Feed, minRunSpeed) / 60.0 // mm/s
	step := speed * dt

	var next Position
	if step >= dist {
		next = target
	} else {
		next = c.mpos.Add(delta.Scale(step / dist))
	}

	clamped, breached := c.clampToTravelLocked(next)
	c.mpos = clamped
	if breached {
		c.target = c.mpos
		c.queue.Clear()
		c.state = Alarm
		return true
	}
	return false
}

// clampToTravelLocked clamps p to [0, settings.max_travel] per axis and
// reports whether any axis required clamping. Callers hold c.mu.
func (c *Controller) clampToTravelLocked(p Position) (Position, bool) {
	max := c.settings.MaxTravel()
	limiters := map[byte]util.Limiter{
		'X': {Min: 0, Max: max.X},
		'Y': {Min: 0, Max: max.Y},
		'Z': {Min: 0, Max: max.Z},
	}
	breached := false
	out := p
	for axis, l := range limiters {
		v := p.Axis(axis)
		if !l.Check(v) {
			breached = true
			out = out.WithAxis(axis, l.Clamp(v))
		}
	}
	return out, breached
}

// driveAxisToward returns pos with the given axis moved toward target by
// at most speed*dt millimetres, never overshooting.
func driveAxisToward(pos Position, axis byte, target, speed, dt float64) Position {
	cur := pos.Axis(axis)
	delta := target - cur
	dist := math.Abs(delta)
	if dist <= 1e-9 {
		return pos
	}
	step := speed * dt
	if step >= dist {
		return pos.WithAxis(axis, target)
	}
	sign := 1.0
	if delta < 0 {
		sign = -1
	}
	return pos.WithAxis(axis, cur+sign*step)
}
