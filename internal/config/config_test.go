package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/guidoenr/beatviz/internal/gvm"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.yaml")
	body := `
bpm: 98
division: half
strategy: rleap
slots:
  - key: motion/2/HoldNoise
    mode: quantized
    divisions: 8
  - key: accent
    mode: array
    values: [0.1, 0.5, 0.9]
    seed: [4, 2]
    easing: linear
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BPM != 98 || cfg.Division != "half" || cfg.Strategy != "rleap" {
		t.Fatalf("unexpected values %+v", cfg)
	}
	if cfg.FPS != 30 || cfg.MaxTaps != 8 {
		t.Fatalf("defaults not kept: fps=%f maxTaps=%d", cfg.FPS, cfg.MaxTaps)
	}
	if len(cfg.Slots) != 2 {
		t.Fatalf("slots=%d want 2", len(cfg.Slots))
	}
	sc, err := cfg.Slots[1].Config()
	if err != nil {
		t.Fatal(err)
	}
	if sc.Mode != gvm.SlotDiscrete || !sc.Seeded || sc.Seed != [2]float64{4, 2} {
		t.Fatalf("unexpected slot config %+v", sc)
	}
	if sc.Ease == nil || sc.Ease(0.3) != 0.3 {
		t.Fatalf("slot easing not resolved to linear")
	}
	if first, _ := cfg.Slots[0].Config(); first.Ease != nil {
		t.Fatalf("slot without easing should keep the caller's curve")
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.BPM = 0
	cfg.Division = "triple"
	cfg.Slots = []Slot{{Key: "x", Mode: "quantized"}, {Key: "y", Easing: "wobbly"}}
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"bpm", "triple", "divisions", "wobbly"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.BPM = 140
	cfg.Palette = []bool{true, false, true}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.BPM != 140 || len(got.Palette) != 3 || !got.Palette[2] {
		t.Fatalf("unexpected loaded config %+v", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
