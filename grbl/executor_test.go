package grbl

import "testing"

type recordingSink struct {
	alarms []int
}

func (r *recordingSink) OK()                       {}
func (r *recordingSink) Error(code int)            {}
func (r *recordingSink) Alarm(code int, msg string) { r.alarms = append(r.alarms, code) }
func (r *recordingSink) Status(snap Snapshot)       {}
func (r *recordingSink) SettingsDump(s *Settings)   {}
func (r *recordingSink) Version()                   {}
func (r *recordingSink) ModalReport()               {}
func (r *recordingSink) WelcomeBanner()             {}

func TestTickMotionArrivesAtWaypointAndGoesIdle(t *testing.T) {
	c := NewController("test")
	c.modal.Feed = 6000 // 100 mm/s
	c.queue.Push(Position{X: 1})
	c.state = Run

	sink := &recordingSink{}
	for i := 0; i < 100 && c.state != Idle; i++ {
		c.Tick(0.01, sink)
	}
	if c.state != Idle {
		t.Fatalf("state = %v after ticking, want Idle", c.state)
	}
	if !c.mpos.ApproxEqual(Position{X: 1}, 1e-2) {
		t.Errorf("mpos = %+v, want approx (1,0,0)", c.mpos)
	}
	if len(sink.alarms) != 0 {
		t.Errorf("unexpected alarms: %v", sink.alarms)
	}
}

func TestTickMotionBreachingSoftLimitAlarms(t *testing.T) {
	c := NewController("test")
	c.settings.Set(MaxTravelSetting[0], 10)
	c.modal.Feed = 60000 // fast enough to overshoot past the limit in one tick
	c.queue.Push(Position{X: 50})
	c.state = Run

	sink := &recordingSink{}
	c.Tick(1.0, sink)

	if c.state != Alarm {
		t.Fatalf("state = %v, want Alarm", c.state)
	}
	if len(sink.alarms) != 1 || sink.alarms[0] != AlarmCodeSoftLimit {
		t.Errorf("alarms = %v, want [%d]", sink.alarms, AlarmCodeSoftLimit)
	}
	if !c.queue.Empty() {
		t.Errorf("queue not cleared after alarm")
	}
}

func TestTickIdleIsANoOp(t *testing.T) {
	c := NewController("test")
	before := c.mpos
	c.Tick(1.0, &recordingSink{})
	if c.mpos != before {
		t.Errorf("mpos changed while Idle: %+v -> %+v", before, c.mpos)
	}
}

func TestClampToTravelLockedClampsOverTravel(t *testing.T) {
	c := NewController("test")
	c.settings.Set(MaxTravelSetting[0], 10)
	clamped, breached := c.clampToTravelLocked(Position{X: 20})
	if !breached {
		t.Fatal("expected a breach")
	}
	if clamped.X != 10 {
		t.Errorf("clamped.X = %v, want 10", clamped.X)
	}
}

func TestClampToTravelLockedRejectsNegative(t *testing.T) {
	c := NewController("test")
	clamped, breached := c.clampToTravelLocked(Position{X: -1})
	if !breached {
		t.Fatal("expected a breach on negative position")
	}
	if clamped.X != 0 {
		t.Errorf("clamped.X = %v, want 0", clamped.X)
	}
}
