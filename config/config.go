// Package config loads cmd/grblsim's startup parameters, grounded on
// cmd/multiserver's koanf-based setupconfig/mkconf/printconf trio: defaults
// are loaded from a struct first, then overlaid by an optional YAML file on
// disk, so the emulator runs with sane values even with no config file
// present at all.
package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	yml "gopkg.in/yaml.v2"
)

// MaxTravel carries the three soft-limit settings ($130/$131/$132) as a
// config-friendly triple.
type MaxTravel struct {
	X float64 `koanf:"X" yaml:"X"`
	Y float64 `koanf:"Y" yaml:"Y"`
	Z float64 `koanf:"Z" yaml:"Z"`
}

// Config holds everything cmd/grblsim needs to stand up one emulated
// controller.
type Config struct {
	// Transport is "pty" (default, so any serial sender can be pointed at
	// it) or "tcp" for headless/integration use.
	Transport string `koanf:"Transport" yaml:"Transport"`

	// ListenAddr is the TCP address to accept one connection on, only used
	// when Transport is "tcp".
	ListenAddr string `koanf:"ListenAddr" yaml:"ListenAddr"`

	// StatusAddr is the address httpstatus listens on. Empty disables the
	// HTTP status server entirely.
	StatusAddr string `koanf:"StatusAddr" yaml:"StatusAddr"`

	// TickHz is the executor's nominal tick rate, on the order of 100 Hz.
	TickHz float64 `koanf:"TickHz" yaml:"TickHz"`

	// MaxTravel seeds $130/$131/$132.
	MaxTravel MaxTravel `koanf:"MaxTravel" yaml:"MaxTravel"`
}

// Default returns the out-of-the-box configuration: a pty transport, no
// HTTP status server, a 100 Hz tick, and the travel limits carried over
// from the original emulator (original_source/grbl_emu.py).
func Default() Config {
	return Config{
		Transport:  "pty",
		ListenAddr: "",
		StatusAddr: "",
		TickHz:     100,
		MaxTravel:  MaxTravel{X: 300, Y: 180, Z: 45},
	}
}

// k is package-scoped like cmd/multiserver's k, since a single process
// only ever runs one emulator instance.
var k = koanf.New(".")

// Load builds a Config starting from Default() and overlaying path if it
// exists; a missing file is not an error, matching setupconfig's tolerance
// for "no such file".
func Load(path string) (Config, error) {
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, err
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if !strings.Contains(err.Error(), "no such file") {
			return Config{}, err
		}
	}
	var c Config
	if err := k.Unmarshal("", &c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Dump writes c to path as YAML, mirroring mkconf's use of the defaults as
// a template for a config file a user can then edit.
func Dump(c Config, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return yml.NewEncoder(f).Encode(c)
}
