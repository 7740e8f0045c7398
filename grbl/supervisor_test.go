package grbl

import "testing"

func TestHandleLineGatesNonWhitelistedCommandsInAlarm(t *testing.T) {
	c := NewController("test")
	c.state = Alarm
	sink := &recordingSink{}
	errs := 0
	c.HandleLine("G0 X1", errCountingSink{sink, &errs})
	if errs != 1 {
		t.Fatalf("got %d error frames, want 1", errs)
	}
	if c.queue.Len() != 0 {
		t.Errorf("motion queued while gated in Alarm")
	}
}

func TestHandleLineAllowsWhitelistedCommandsInAlarm(t *testing.T) {
	c := NewController("test")
	c.state = Alarm
	errs := 0
	c.HandleLine("$X", errCountingSink{&recordingSink{}, &errs})
	if errs != 0 {
		t.Fatalf("got %d error frames, want 0", errs)
	}
	if c.state != Idle {
		t.Errorf("state = %v after $X, want Idle", c.state)
	}
}

func TestRealtimeResumeGoesIdleWhenQueueEmpty(t *testing.T) {
	c := NewController("test")
	c.state = Hold
	c.RealtimeResume()
	if c.state != Idle {
		t.Errorf("state = %v, want Idle", c.state)
	}
}

func TestRealtimeResumeGoesRunWhenQueueNonEmpty(t *testing.T) {
	c := NewController("test")
	c.state = Hold
	c.queue.Push(Position{X: 1})
	c.RealtimeResume()
	if c.state != Run {
		t.Errorf("state = %v, want Run", c.state)
	}
}

func TestRealtimeHoldFreezesRunOrJog(t *testing.T) {
	c := NewController("test")
	c.state = Run
	c.RealtimeHold()
	if c.state != Hold {
		t.Errorf("state = %v, want Hold", c.state)
	}
}

func TestRealtimeSoftResetClearsQueueAndAlarms(t *testing.T) {
	c := NewController("test")
	c.queue.Push(Position{X: 1})
	c.state = Run
	c.RealtimeSoftReset()
	if c.state != Alarm {
		t.Errorf("state = %v, want Alarm", c.state)
	}
	if !c.queue.Empty() {
		t.Errorf("queue not cleared by soft reset")
	}
}

func TestApplySettingAssignmentIgnoresMalformedLine(t *testing.T) {
	c := NewController("test")
	before := c.settings.Len()
	c.applySettingAssignment("$notanumber=5")
	if c.settings.Len() != before {
		t.Errorf("malformed setting assignment was not ignored")
	}
}

func TestApplySettingAssignmentStoresNewSetting(t *testing.T) {
	c := NewController("test")
	c.applySettingAssignment("$130=123.5")
	v, ok := c.settings.Get(130)
	if !ok || v != 123.5 {
		t.Errorf("settings[130] = %v, %v, want 123.5, true", v, ok)
	}
}

// errCountingSink wraps another OutputSink and counts Error calls, for
// assertions that don't care about the exact error code.
type errCountingSink struct {
	OutputSink
	n *int
}

func (e errCountingSink) Error(code int) {
	*e.n++
	e.OutputSink.Error(code)
}
