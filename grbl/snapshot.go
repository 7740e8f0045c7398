package grbl

// Snapshot is an atomically-read, consistent view of controller state for
// status reporting or an external observer.
type Snapshot struct {
	State    State
	MPos     Position
	WCO      Position
	Feed     float64
	PortName string
}

// Snapshot returns a coherent read of the controller's observable state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		State:    c.state,
		MPos:     c.mpos,
		WCO:      c.wco,
		Feed:     c.modal.Feed,
		PortName: c.portName,
	}
}
