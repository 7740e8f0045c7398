package grbl

import "math"

// homingPhase enumerates the steps of the five-phase homing sequence: seek
// toward home, dwell, snap back off, then re-seek at the same homing speed.
// The final X/Y back-off and re-seek are tracked as two separate steps.
type homingPhase int

const (
	homingSeekZ homingPhase = iota
	homingBackoffZ
	homingReseekZ
	homingSeekXY
	homingBackoffXY
	homingReseekXY
)

const (
	// homingSpeedMMPerSec is the fixed homing feed, 500 mm/min.
	homingSpeedMMPerSec = homeSpeedMMPerMin / 60.0

	// homingArriveTol is the per-axis tolerance for "arrived" during a seek.
	homingArriveTol = 0.1

	// homingBackoffDistance is how far each axis backs off before its
	// re-seek.
	homingBackoffDistance = 2.0

	// homingDwellSeconds is the pause before each back-off snap.
	homingDwellSeconds = 0.5
)

// StartHoming begins the five-phase homing sequence triggered by "$H"/"$HA".
// It captures home = (settings[130], settings[131], settings[132]), clears
// the motion queue, and takes exclusive control of the executor's target
// until the sequence completes or a soft reset cancels it. target starts
// out as the immediate destination of the first phase (a Z-only seek).
func (c *Controller) StartHoming() {
	c.mu.Lock()
	defer c.mu.Unlock()
	home := c.settings.MaxTravel()
	c.queue.Clear()
	c.state = Home
	c.homing = &homingState{
		phase:  homingSeekZ,
		home:   home,
		target: Position{X: c.mpos.X, Y: c.mpos.Y, Z: home.Z},
	}
}

// stepHomingLocked advances the homing sequence by dt seconds, driving each
// axis toward h.target (the current phase's immediate destination, distinct
// from h.home, the sequence's final destination) and re-pointing h.target
// as each phase completes. Callers hold c.mu. Soft-limit enforcement does
// not apply while homing.
func (c *Controller) stepHomingLocked(dt float64) {
	h := c.homing
	if h == nil {
		return
	}

	switch h.phase {
	case homingSeekZ:
		c.mpos = driveAxisToward(c.mpos, 'Z', h.target.Z, homingSpeedMMPerSec, dt)
		if math.Abs(c.mpos.Z-h.target.Z) <= homingArriveTol {
			h.phase = homingBackoffZ
			h.dwell = homingDwellSeconds
		}
	case homingBackoffZ:
		h.dwell -= dt
		if h.dwell <= 0 {
			c.mpos.Z = h.home.Z - homingBackoffDistance
			h.target.Z = h.home.Z
			h.phase = homingReseekZ
		}
	case homingReseekZ:
		c.mpos = driveAxisToward(c.mpos, 'Z', h.target.Z, homingSpeedMMPerSec, dt)
		if math.Abs(c.mpos.Z-h.target.Z) <= homingArriveTol {
			h.phase = homingSeekXY
			h.target = Position{X: h.home.X, Y: h.home.Y, Z: c.mpos.Z}
		}
	case homingSeekXY:
		c.mpos = driveAxisToward(c.mpos, 'X', h.target.X, homingSpeedMMPerSec, dt)
		c.mpos = driveAxisToward(c.mpos, 'Y', h.target.Y, homingSpeedMMPerSec, dt)
		if math.Abs(c.mpos.X-h.target.X) <= homingArriveTol && math.Abs(c.mpos.Y-h.target.Y) <= homingArriveTol {
			h.phase = homingBackoffXY
			h.dwell = homingDwellSeconds
		}
	case homingBackoffXY:
		h.dwell -= dt
		if h.dwell <= 0 {
			c.mpos.X = h.home.X - homingBackoffDistance
			c.mpos.Y = h.home.Y - homingBackoffDistance
			h.target.X = h.home.X
			h.target.Y = h.home.Y
			h.phase = homingReseekXY
		}
	case homingReseekXY:
		c.mpos = driveAxisToward(c.mpos, 'X', h.target.X, homingSpeedMMPerSec, dt)
		c.mpos = driveAxisToward(c.mpos, 'Y', h.target.Y, homingSpeedMMPerSec, dt)
		if math.Abs(c.mpos.X-h.target.X) <= homingArriveTol && math.Abs(c.mpos.Y-h.target.Y) <= homingArriveTol {
			c.finishHomingLocked(h.home)
		}
	}
}

// finishHomingLocked completes homing: mpos snaps to home, wco resets to
// zero, the queue is (already) empty, and state returns to Idle.
func (c *Controller) finishHomingLocked(home Position) {
	c.mpos = home
	c.target = home
	c.wco = Position{}
	c.queue.Clear()
	c.homing = nil
	c.state = Idle
}
