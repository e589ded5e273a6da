// Package config loads a small YAML settings document into an
// engine.Settings value, matching spec.md §6: "any configuration
// loader writes to the same settings struct" that KISS commands also
// mutate live.
//
// Grounded on doismellburning/samoyed src/deviceid.go's use of
// gopkg.in/yaml.v3 to unmarshal a YAML document into plain Go structs
// at startup (there, tocalls.yaml; here, the channel's modem/scheduler
// settings), and on src/config.go's overall role as the single
// settings source a running TNC consults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/n0call/samoyed-core/afsk"
	"github.com/n0call/samoyed-core/engine"
)

// File is the on-disk YAML shape; zero fields fall back to
// engine.DefaultSettings().
type File struct {
	Baud          int    `yaml:"baud"`
	FX25Preferred bool   `yaml:"fx25_preferred"`
	TXDelayMS     int    `yaml:"tx_delay_ms"`
	TXTailMS      int    `yaml:"tx_tail_ms"`
	SlotTimeMS    int    `yaml:"slot_time_ms"`
	PersistenceP  int    `yaml:"persistence"`
	FullDuplex    bool   `yaml:"full_duplex"`
	Device        string `yaml:"device"`
	GPIOChip      string `yaml:"gpio_chip"`
	GPIOOffset    int    `yaml:"gpio_offset"`
}

// Load reads and parses path into a File, then applies it on top of
// engine.DefaultSettings(), returning the resulting engine.Settings.
func Load(path string) (engine.Settings, File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.Settings{}, File{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return engine.Settings{}, File{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return ApplyTo(engine.DefaultSettings(), f), f, nil
}

// ApplyTo overlays non-zero fields of f onto base, returning a new
// engine.Settings (base is never mutated in place).
func ApplyTo(base engine.Settings, f File) engine.Settings {
	out := base
	if f.Baud != 0 {
		out.Baud = afsk.Baud(f.Baud)
	}
	if f.FX25Preferred {
		out.FX25Preferred = true
	}
	if f.TXDelayMS != 0 {
		out.TX.TXDelayMS = f.TXDelayMS
	}
	if f.TXTailMS != 0 {
		out.TX.TXTailMS = f.TXTailMS
	}
	if f.SlotTimeMS != 0 {
		out.TX.SlotTimeMS = f.SlotTimeMS
	}
	if f.PersistenceP != 0 {
		out.TX.PersistenceP = byte(f.PersistenceP)
	}
	if f.FullDuplex {
		out.TX.FullDuplex = true
	}
	return out
}
