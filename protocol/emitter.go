package protocol

import (
	"fmt"
	"io"
	"sync"

	"github.com/nasa-jpl/grblsim/grbl"
)

const (
	versionBlock  = "[VER:1.1f.20170801:]\r\n[OPT:V,15,128]\r\nok\r\n"
	modalReport   = "[GC:G0 G54 G17 G21 G90 G94 M5 M9 T0 F0 S0]\r\nok\r\n"
	welcomeBanner = "Grbl 1.1f ['$' for help]\r\n"
)

// Emitter serializes every outbound frame the protocol defines onto w, with
// \r\n line endings. It is the sole writer of bytes to the outbound stream;
// a write lock keeps each frame atomic, mirroring comm.RemoteDevice's own
// per-connection lock on the teacher's client side.
type Emitter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewEmitter returns an Emitter writing to w.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

// write is the single write path; transport write failures are swallowed —
// the sender has disconnected, and the emulator keeps running in case of
// reconnection.
func (e *Emitter) write(s string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, _ = io.WriteString(e.w, s)
}

// OK implements grbl.OutputSink.
func (e *Emitter) OK() {
	e.write("ok\r\n")
}

// Error implements grbl.OutputSink.
func (e *Emitter) Error(code int) {
	e.write(fmt.Sprintf("error:%d\r\n", code))
}

// Alarm implements grbl.OutputSink.
func (e *Emitter) Alarm(code int, msg string) {
	e.write(fmt.Sprintf("ALARM:%d\r\n[MSG:%s]\r\n", code, msg))
}

// Status implements grbl.OutputSink.
func (e *Emitter) Status(snap grbl.Snapshot) {
	e.write(fmt.Sprintf("<%s|MPos:%.3f,%.3f,%.3f|WCO:%.3f,%.3f,%.3f|FS:%d,0>\r\n",
		snap.State,
		snap.MPos.X, snap.MPos.Y, snap.MPos.Z,
		snap.WCO.X, snap.WCO.Y, snap.WCO.Z,
		int(snap.Feed)))
}

// SettingsDump implements grbl.OutputSink.
func (e *Emitter) SettingsDump(s *grbl.Settings) {
	s.Each(func(id int, v float64) {
		e.write(fmt.Sprintf("$%d=%v\r\n", id, v))
	})
	e.OK()
}

// Version implements grbl.OutputSink.
func (e *Emitter) Version() {
	e.write(versionBlock)
}

// ModalReport implements grbl.OutputSink.
func (e *Emitter) ModalReport() {
	e.write(modalReport)
}

// WelcomeBanner implements grbl.OutputSink.
func (e *Emitter) WelcomeBanner() {
	e.write(welcomeBanner)
}
