package protocol

import (
	"strings"
	"testing"

	"github.com/nasa-jpl/grblsim/grbl"
)

func TestEmitterStatusFormatsAllFields(t *testing.T) {
	var buf strings.Builder
	e := NewEmitter(&buf)
	e.Status(grbl.Snapshot{
		State: grbl.Run,
		MPos:  grbl.Position{X: 1.5, Y: -2, Z: 0.125},
		WCO:   grbl.Position{X: 0, Y: 0, Z: 0},
		Feed:  1500,
	})
	want := "<Run|MPos:1.500,-2.000,0.125|WCO:0.000,0.000,0.000|FS:1500,0>\r\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEmitterSettingsDumpEndsWithOK(t *testing.T) {
	var buf strings.Builder
	e := NewEmitter(&buf)
	s := grbl.NewSettings()
	e.SettingsDump(s)

	got := buf.String()
	if !strings.HasSuffix(got, "ok\r\n") {
		t.Errorf("settings dump did not end with ok: %q", got)
	}
	lines := strings.Count(got, "\r\n")
	if lines != s.Len()+1 {
		t.Errorf("got %d lines, want %d (%d settings + ok)", lines, s.Len()+1, s.Len())
	}
}

func TestEmitterErrorAndAlarmFormatting(t *testing.T) {
	var buf strings.Builder
	e := NewEmitter(&buf)
	e.Error(1)
	e.Alarm(1, "msg")
	want := "error:1\r\nALARM:1\r\n[MSG:msg]\r\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
