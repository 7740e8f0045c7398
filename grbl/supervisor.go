package grbl

import "strings"

// allowedInAlarm is the set of well-formed line commands honoured while in
// Alarm; everything else is rejected with error:9.
var allowedInAlarm = map[string]bool{
	"$X":  true,
	"$H":  true,
	"$HA": true,
	"$$":  true,
	"$I":  true,
	"$G":  true,
}

// gateLocked reports whether line is allowed to run given the current
// state, returning ErrNotAllowedInAlarm if not. Callers hold c.mu.
func (c *Controller) gateLocked(line string) error {
	if c.state != Alarm {
		return nil
	}
	if allowedInAlarm[line] {
		return nil
	}
	return ErrNotAllowedInAlarm
}

// RealtimeStatus services a '?' byte: an immediate, atomic status frame.
func (c *Controller) RealtimeStatus(sink OutputSink) {
	c.mu.Lock()
	snap := c.snapshotLocked()
	c.mu.Unlock()
	sink.Status(snap)
}

// RealtimeResume services a '~' byte: Hold resumes to Run if the queue is
// non-empty, else Idle. Outside Hold this is a no-op.
func (c *Controller) RealtimeResume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Hold {
		return
	}
	if c.queue.Empty() {
		c.state = Idle
	} else {
		c.state = Run
	}
}

// RealtimeHold services a '!' byte: enters Hold, freezing the executor in
// place.
func (c *Controller) RealtimeHold() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Run || c.state == Jog {
		c.state = Hold
	}
}

// RealtimeSoftReset services a 0x18 byte: aborts any in-progress homing,
// clears the motion queue, and transitions to Alarm. The welcome banner is
// written by the caller via sink.WelcomeBanner() after this returns.
func (c *Controller) RealtimeSoftReset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.homing = nil
	c.queue.Clear()
	c.state = Alarm
}

// HandleLine dispatches a trimmed, terminated command line: a system ("$")
// command or a G-code block. It writes exactly one ok/error frame to sink
// (an ALARM frame may additionally follow if the line starts motion that
// later breaches a soft limit, emitted later by the executor).
func (c *Controller) HandleLine(line string, sink OutputSink) {
	c.mu.Lock()
	err := c.gateLocked(strings.ToUpper(line))
	c.mu.Unlock()
	if err == ErrNotAllowedInAlarm {
		sink.Error(ErrCodeNotAllowed)
		return
	}

	if strings.HasPrefix(line, "$") {
		c.handleSystemCommand(line, sink)
		return
	}

	err = c.handleGCodeBlock(line, false)
	if err != nil {
		sink.Error(ErrCodeMalformed)
		return
	}
	sink.OK()
}

func (c *Controller) handleSystemCommand(line string, sink OutputSink) {
	upper := strings.ToUpper(line)
	switch {
	case upper == "$$":
		sink.SettingsDump(c.settings)
	case upper == "$H" || upper == "$HA":
		c.StartHoming()
		sink.OK()
	case upper == "$X":
		c.mu.Lock()
		c.state = Idle
		c.mu.Unlock()
		sink.OK()
	case upper == "$I":
		sink.Version()
	case upper == "$G":
		sink.ModalReport()
	case strings.HasPrefix(upper, "$J="):
		err := c.handleGCodeBlock(line[3:], true)
		if err != nil {
			sink.Error(ErrCodeMalformed)
			return
		}
		sink.OK()
	default:
		c.applySettingAssignment(line)
		sink.OK()
	}
}

// applySettingAssignment parses "$n=v" and stores it, silently ignoring
// anything that doesn't parse: unknown or malformed "$" commands are
// accepted permissively to match sender expectations.
func (c *Controller) applySettingAssignment(line string) {
	body := strings.TrimPrefix(line, "$")
	parts := strings.SplitN(body, "=", 2)
	if len(parts) != 2 {
		return
	}
	id, err := parseSettingID(parts[0])
	if err != nil {
		return
	}
	v, err := parseFloat(parts[1])
	if err != nil {
		return
	}
	c.mu.Lock()
	c.settings.Set(id, v)
	c.mu.Unlock()
}
