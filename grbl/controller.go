// Package grbl implements the GRBL v1.1-compatible controller core: the
// settings store, the G-code modal interpreter, the arc expander, the
// motion queue and executor, the homing coordinator and the supervisory
// state machine. It owns no I/O; callers (the protocol package's framer
// and emitter) drive it through Controller's methods.
package grbl

import (
	"sync"
)

// homingState tracks the homing coordinator's progress while State == Home.
// See homing.go.
type homingState struct {
	phase  homingPhase
	target Position
	home   Position
	dwell  float64 // remaining dwell seconds, phase-local
}

// Controller is the supervisory core. A single coarse mutex guards all of
// its mutable state (mpos, target, wco, queue, state, feed, settings); the
// framer acquires it to append lines and mutate modal state, and the
// executor acquires it once per tick.
type Controller struct {
	mu sync.Mutex

	state    State
	mpos     Position
	target   Position
	wco      Position
	modal    Modal
	queue    Queue
	settings *Settings
	homing   *homingState
	portName string
}

// NewController returns a controller in its initial state: Idle, zeroed
// position, rapid motion mode, absolute distancing, default settings.
func NewController(portName string) *Controller {
	return &Controller{
		state:    Idle,
		modal:    NewModal(),
		settings: NewSettings(),
		portName: portName,
	}
}

// Settings exposes the underlying settings store, e.g. for "$n=v" updates
// issued over the wire.
func (c *Controller) Settings() *Settings {
	return c.settings
}

// SetPortName updates the name reported through Snapshot (and so through
// httpstatus's /state), e.g. after a transport reconnect assigns a new
// pty/TCP peer. The wire status frame does not include it.
func (c *Controller) SetPortName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.portName = name
}
