// Command grblsim runs the GRBL v1.1-compatible controller emulator: it
// opens a transport (a pty, by default, so any serial sender can be pointed
// at it; or a TCP listener for headless use), wires it to a grbl.Controller
// through the protocol front end, and drives the executor tick loop, with a
// single coarse mutex inside Controller guarding all of the shared state
// the two loops touch. Structured the way cmd/multiserver and cmd/envsrv
// structure their mains: a small set of verb functions dispatched from
// main, package-scoped config loaded once at startup.
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/fatih/color"
	"goji.io"

	"github.com/nasa-jpl/grblsim/config"
	"github.com/nasa-jpl/grblsim/grbl"
	"github.com/nasa-jpl/grblsim/httpstatus"
	"github.com/nasa-jpl/grblsim/protocol"
	"github.com/nasa-jpl/grblsim/transport"
)

// sinkSwitcher lets the tick loop keep running across a transport reconnect:
// it forwards to whichever emitter is current, swallowing frames when no
// sender is connected rather than writing to a closed one.
type sinkSwitcher struct {
	mu  sync.Mutex
	cur grbl.OutputSink
}

func (s *sinkSwitcher) set(sink grbl.OutputSink) {
	s.mu.Lock()
	s.cur = sink
	s.mu.Unlock()
}

func (s *sinkSwitcher) get() grbl.OutputSink {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

func (s *sinkSwitcher) OK() {
	if c := s.get(); c != nil {
		c.OK()
	}
}
func (s *sinkSwitcher) Error(code int) {
	if c := s.get(); c != nil {
		c.Error(code)
	}
}
func (s *sinkSwitcher) Alarm(code int, msg string) {
	if c := s.get(); c != nil {
		c.Alarm(code, msg)
	}
}
func (s *sinkSwitcher) Status(snap grbl.Snapshot) {
	if c := s.get(); c != nil {
		c.Status(snap)
	}
}
func (s *sinkSwitcher) SettingsDump(settings *grbl.Settings) {
	if c := s.get(); c != nil {
		c.SettingsDump(settings)
	}
}
func (s *sinkSwitcher) Version() {
	if c := s.get(); c != nil {
		c.Version()
	}
}
func (s *sinkSwitcher) ModalReport() {
	if c := s.get(); c != nil {
		c.ModalReport()
	}
}
func (s *sinkSwitcher) WelcomeBanner() {
	if c := s.get(); c != nil {
		c.WelcomeBanner()
	}
}

// ConfigFileName mirrors multiserver.yml: present if the operator wants
// non-default behavior, absent and silently skipped otherwise.
const ConfigFileName = "grblsim.yml"

func root() {
	fmt.Println(`grblsim emulates a GRBL v1.1 CNC controller over a serial-like byte stream.

Usage:
	grblsim <command>

Commands:
	run       start the emulator
	mkconf    write grblsim.yml populated with the defaults
	conf      print the active configuration
	help      show this message`)
}

func help() {
	fmt.Println(`grblsim reads grblsim.yml from the working directory if present, otherwise
runs with built-in defaults (a pty transport, 100 Hz tick, no HTTP status
server). Run mkconf to generate a config file prepopulated with the
defaults to edit from.`)
}

func mkconf() {
	if err := config.Dump(config.Default(), ConfigFileName); err != nil {
		log.Fatal(err)
	}
}

func conf() {
	c, err := config.Load(ConfigFileName)
	if err != nil {
		log.Fatal(err)
	}
	if err := config.Dump(c, os.DevNull); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%+v\n", c)
}

func run() {
	c, err := config.Load(ConfigFileName)
	if err != nil {
		log.Fatal(err)
	}

	controller := grbl.NewController("")
	controller.Settings().Set(grbl.MaxTravelSetting[0], c.MaxTravel.X)
	controller.Settings().Set(grbl.MaxTravelSetting[1], c.MaxTravel.Y)
	controller.Settings().Set(grbl.MaxTravelSetting[2], c.MaxTravel.Z)

	if c.StatusAddr != "" {
		mux := goji.NewMux()
		httpstatus.NewServer(controller).RouteTable().Bind(mux)
		go func() {
			log.Printf("status server listening on %s", c.StatusAddr)
			log.Println(http.ListenAndServe(c.StatusAddr, mux))
		}()
	}

	sink := &sinkSwitcher{}
	go tickLoop(controller, sink, c.TickHz)

	// The controller survives every reconnect below; only the transport (and
	// the emitter/framer wrapping it) are rebuilt, matching
	// comm.RemoteDevice's own "keep the device state, redial the pipe"
	// behavior on a dropped connection.
	for {
		t, err := openTransport(c)
		if err != nil {
			log.Fatalf("error opening transport: %v", err)
		}
		color.New(color.FgGreen, color.Bold).Printf("grblsim listening on %s\n", t.Name())
		controller.SetPortName(t.Name())

		emitter := protocol.NewEmitter(t)
		sink.set(emitter)
		framer := protocol.NewFramer(controller, emitter)
		emitter.WelcomeBanner()

		readLoop(t, framer)
		sink.set(nil)
		t.Close()
	}
}

// openTransport opens the configured transport, retrying with the same
// exponential backoff policy comm.RemoteDevice.Open uses to redial hardware.
func openTransport(c config.Config) (transport.Transport, error) {
	var t transport.Transport
	op := func() error {
		var err error
		switch c.Transport {
		case "tcp":
			t, err = transport.ListenAndAcceptTCP(c.ListenAddr)
		default:
			t, err = transport.OpenPTY()
		}
		return err
	}
	err := backoff.Retry(op, &backoff.ExponentialBackOff{
		InitialInterval:     25 * time.Millisecond,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         1 * time.Second,
		MaxElapsedTime:      3 * time.Second,
		Clock:               backoff.SystemClock,
	})
	return t, err
}

// tickLoop drives the executor at the configured rate, measuring real
// elapsed time between ticks so jitter does not desync simulated motion
// from wall-clock time.
func tickLoop(c *grbl.Controller, sink grbl.OutputSink, hz float64) {
	period := time.Duration(float64(time.Second) / hz)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	last := time.Now()
	for now := range ticker.C {
		dt := now.Sub(last).Seconds()
		last = now
		c.Tick(dt, sink)
	}
}

// readLoop feeds every byte read from t through the framer until the
// transport closes, logging disconnects the way comm.RemoteDevice logs its
// own connection loss; the emulator keeps running and accepts a
// reconnection rather than exiting.
func readLoop(t transport.Transport, f *protocol.Framer) {
	for {
		b, err := t.ReadByte()
		if err != nil {
			color.New(color.FgRed).Printf("transport closed: %v\n", err)
			return
		}
		f.ProcessByte(b)
	}
}

func pversion() {
	fmt.Println("grblsim version dev")
}

func main() {
	args := os.Args
	if len(args) == 1 {
		root()
		return
	}
	switch args[1] {
	case "help":
		help()
	case "mkconf":
		mkconf()
	case "conf":
		conf()
	case "run":
		run()
	case "version":
		pversion()
	default:
		log.Fatalf("unknown command %q", args[1])
	}
}
