package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/guidoenr/beatviz/internal/easing"
	"github.com/guidoenr/beatviz/internal/gvm"
	"github.com/guidoenr/beatviz/internal/motion"
)

// Slot overrides the registration of one engine slot.
type Slot struct {
	Key       string    `yaml:"key"`
	Mode      string    `yaml:"mode"`
	Divisions int       `yaml:"divisions,omitempty"`
	Values    []float64 `yaml:"values,omitempty"`
	Seed      []float64 `yaml:"seed,omitempty"`
	Easing    string    `yaml:"easing,omitempty"`
}

// File is the on-disk session configuration.
type File struct {
	BPM          float64 `yaml:"bpm"`
	MaxTaps      int     `yaml:"maxTaps"`
	TapTimeoutMs int     `yaml:"tapTimeoutMs"`
	Channels     int     `yaml:"channels"`
	FPS          float64 `yaml:"fps"`
	Division     string  `yaml:"division"`
	Strategy     string  `yaml:"strategy"`
	SmoothTempo  bool    `yaml:"smoothTempo"`
	Easing       string  `yaml:"easing"`
	Palette      []bool  `yaml:"palette,omitempty"`
	Scene        string  `yaml:"scene"`
	WebPort      int     `yaml:"webPort"`
	MIDIDevice   string  `yaml:"midiDevice,omitempty"`
	Click        bool    `yaml:"click"`
	Slots        []Slot  `yaml:"slots,omitempty"`
}

// Default returns the values used when no file is given.
func Default() File {
	return File{
		BPM:          130,
		MaxTaps:      8,
		TapTimeoutMs: 4000,
		Channels:     motion.DefaultChannels,
		FPS:          30,
		Division:     "normal",
		Strategy:     "slot",
		Easing:       "inOutSine",
		Scene:        "auto",
	}
}

// Load reads path and merges it over Default.
func Load(path string) (File, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func Save(path string, cfg File) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate reports every problem found in the configuration.
func (f File) Validate() error {
	var errs []error
	if f.BPM <= 0 {
		errs = append(errs, fmt.Errorf("bpm must be positive (got %.2f)", f.BPM))
	}
	if f.MaxTaps < 2 {
		errs = append(errs, fmt.Errorf("maxTaps must be at least 2 (got %d)", f.MaxTaps))
	}
	if f.TapTimeoutMs <= 0 {
		errs = append(errs, fmt.Errorf("tapTimeoutMs must be positive (got %d)", f.TapTimeoutMs))
	}
	if f.Channels <= 0 {
		errs = append(errs, fmt.Errorf("channels must be positive (got %d)", f.Channels))
	}
	if f.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps must be positive (got %.2f)", f.FPS))
	}
	if _, err := gvm.ParseDivision(f.Division); err != nil {
		errs = append(errs, err)
	}
	if _, err := motion.ParseStrategy(f.Strategy); err != nil {
		errs = append(errs, err)
	}
	if _, ok := easing.Lookup(f.Easing); !ok {
		errs = append(errs, fmt.Errorf("unknown easing %q", f.Easing))
	}
	for i, s := range f.Slots {
		if s.Key == "" {
			errs = append(errs, fmt.Errorf("slot %d: missing key", i))
		}
		if _, err := s.Config(); err != nil {
			errs = append(errs, fmt.Errorf("slot %q: %w", s.Key, err))
		}
	}
	return errors.Join(errs...)
}

// TapTimeout returns the tap expiry as a duration.
func (f File) TapTimeout() time.Duration {
	return time.Duration(f.TapTimeoutMs) * time.Millisecond
}

// Config converts the override into an engine slot configuration.
func (s Slot) Config() (gvm.SlotConfig, error) {
	mode, err := gvm.ParseSlotMode(s.Mode)
	if err != nil {
		return gvm.SlotConfig{}, err
	}
	cfg := gvm.SlotConfig{
		Mode:      mode,
		Divisions: s.Divisions,
		Values:    s.Values,
	}
	switch mode {
	case gvm.SlotQuantized:
		if cfg.Divisions <= 0 {
			return cfg, fmt.Errorf("quantized slot needs divisions > 0")
		}
	case gvm.SlotDiscrete:
		if len(cfg.Values) == 0 {
			return cfg, fmt.Errorf("discrete slot needs values")
		}
	}
	if len(s.Seed) > 0 {
		cfg.Seeded = true
		copy(cfg.Seed[:], s.Seed)
	}
	if s.Easing != "" {
		fn, ok := easing.Lookup(s.Easing)
		if !ok {
			return cfg, fmt.Errorf("unknown easing %q", s.Easing)
		}
		cfg.Ease = fn
	}
	return cfg, nil
}
