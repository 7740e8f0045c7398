package protocol

import (
	"strings"
	"testing"

	"github.com/nasa-jpl/grblsim/grbl"
)

func TestFramerDeliversTerminatedLine(t *testing.T) {
	var buf strings.Builder
	c := grbl.NewController("test")
	e := NewEmitter(&buf)
	f := NewFramer(c, e)

	f.ProcessBytes([]byte("G0 X1\r\n"))

	if got := buf.String(); got != "ok\r\n" {
		t.Errorf("got %q, want %q", got, "ok\r\n")
	}
}

func TestFramerDispatchesStatusRequestImmediately(t *testing.T) {
	var buf strings.Builder
	c := grbl.NewController("myport")
	e := NewEmitter(&buf)
	f := NewFramer(c, e)

	f.ProcessByte(StatusRequest)

	got := buf.String()
	if !strings.HasPrefix(got, "<Idle|MPos:0.000,0.000,0.000") {
		t.Errorf("got %q", got)
	}
}

func TestFramerOverflowReportsMalformed(t *testing.T) {
	var buf strings.Builder
	c := grbl.NewController("test")
	e := NewEmitter(&buf)
	f := NewFramer(c, e)

	f.ProcessBytes([]byte(strings.Repeat("X", maxLineLength+10)))
	f.ProcessByte('\r')

	if got := buf.String(); got != "error:1\r\n" {
		t.Errorf("got %q, want error:1", got)
	}
}

func TestFramerBlankLineIsANoOp(t *testing.T) {
	var buf strings.Builder
	c := grbl.NewController("test")
	e := NewEmitter(&buf)
	f := NewFramer(c, e)

	f.ProcessBytes([]byte("   \r\n"))

	if got := buf.String(); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestFramerSoftResetEmitsWelcomeBanner(t *testing.T) {
	var buf strings.Builder
	c := grbl.NewController("test")
	e := NewEmitter(&buf)
	f := NewFramer(c, e)

	f.ProcessByte(SoftReset)

	if got := buf.String(); got != "Grbl 1.1f ['$' for help]\r\n" {
		t.Errorf("got %q", got)
	}
}
