// Package protocol implements the wire-level front end of the emulator: the
// byte framer that turns a raw byte stream into real-time events and
// terminated command lines, and the response emitter that serializes
// outbound frames.
package protocol

import (
	"strings"

	"golang.org/x/time/rate"

	"github.com/nasa-jpl/grblsim/grbl"
)

const (
	// StatusRequest is '?', the immediate status-report byte.
	StatusRequest = 0x3F

	// CycleStartResume is '~', resume from Hold.
	CycleStartResume = 0x7E

	// FeedHold is '!', enter Hold.
	FeedHold = 0x21

	// SoftReset is Ctrl-X, abort to Alarm.
	SoftReset = 0x18

	// maxLineLength caps the line accumulator. On overflow the line is
	// discarded with error:1.
	maxLineLength = 256

	// statusBurstLimit caps how many '?' status frames a sender can trigger
	// per second before extra requests are silently dropped, so a status
	// flood cannot starve line processing (golang.org/x/time/rate mirrors
	// nkt.go's use of the same limiter for polling pace).
	statusBurstLimit = 200
)

// Framer consumes raw incoming bytes one at a time, dispatching real-time
// commands immediately and delivering terminated lines to the controller.
type Framer struct {
	controller *grbl.Controller
	sink       grbl.OutputSink

	accumulator []byte
	overflowed  bool

	statusLimiter *rate.Limiter
}

// NewFramer returns a Framer wired to the given controller and sink.
func NewFramer(c *grbl.Controller, sink grbl.OutputSink) *Framer {
	return &Framer{
		controller:    c,
		sink:          sink,
		statusLimiter: rate.NewLimiter(rate.Limit(statusBurstLimit), statusBurstLimit),
	}
}

// ProcessByte consumes a single incoming byte: a real-time single-byte
// command, a line terminator, or an ordinary accumulating byte.
func (f *Framer) ProcessByte(b byte) {
	switch b {
	case StatusRequest:
		if f.statusLimiter.Allow() {
			f.controller.RealtimeStatus(f.sink)
		}
	case CycleStartResume:
		f.controller.RealtimeResume()
	case FeedHold:
		f.controller.RealtimeHold()
	case SoftReset:
		f.controller.RealtimeSoftReset()
		f.sink.WelcomeBanner()
		f.accumulator = f.accumulator[:0]
		f.overflowed = false
	case '\r', '\n':
		f.flushLine()
	default:
		f.appendByte(b)
	}
}

// ProcessBytes feeds a chunk of bytes through ProcessByte in order.
func (f *Framer) ProcessBytes(buf []byte) {
	for _, b := range buf {
		f.ProcessByte(b)
	}
}

func (f *Framer) appendByte(b byte) {
	if len(f.accumulator) >= maxLineLength {
		f.overflowed = true
		return
	}
	f.accumulator = append(f.accumulator, b)
}

func (f *Framer) flushLine() {
	line := strings.TrimSpace(string(f.accumulator))
	f.accumulator = f.accumulator[:0]
	if f.overflowed {
		f.overflowed = false
		if line != "" {
			f.sink.Error(grbl.ErrCodeMalformed)
		}
		return
	}
	if line == "" {
		return
	}
	f.controller.HandleLine(line, f.sink)
}
