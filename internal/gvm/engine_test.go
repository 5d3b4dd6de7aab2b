package gvm

import (
	"bytes"
	"log"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/guidoenr/beatviz/internal/clock"
	"github.com/guidoenr/beatviz/internal/easing"
)

func newTestEngine(bpm float64) (*Engine, *clock.Manual) {
	clk := clock.NewManual(time.Unix(5000, 0))
	return New(Config{BPM: bpm, Clock: clk, Seed: 7}), clk
}

func TestCountAtTempo(t *testing.T) {
	e, clk := newTestEngine(120)
	if got := e.Count("ch", DivisionNormal); got != 0 {
		t.Fatalf("first Count=%f want 0", got)
	}
	clk.AdvanceMillis(1250)
	if got := e.Count("ch", DivisionNormal); math.Abs(got-2.5) > 1e-9 {
		t.Fatalf("Count=%f want 2.5", got)
	}
	if got := e.Count("ch", DivisionHalf); math.Abs(got-1.25) > 1e-9 {
		t.Fatalf("half Count=%f want 1.25", got)
	}
	if got := e.Count("ch", DivisionDouble); math.Abs(got-5) > 1e-9 {
		t.Fatalf("double Count=%f want 5", got)
	}
}

func TestCountClocksAreIndependentPerKey(t *testing.T) {
	e, clk := newTestEngine(60)
	e.Count("a", DivisionNormal)
	clk.AdvanceMillis(2000)
	if got := e.Count("b", DivisionNormal); got != 0 {
		t.Fatalf("new key should start at 0, got %f", got)
	}
	if got := e.Count("a", DivisionNormal); math.Abs(got-2) > 1e-9 {
		t.Fatalf("key a Count=%f want 2", got)
	}
}

func TestUnregisteredSlotWarnsAndReturnsZero(t *testing.T) {
	var buf bytes.Buffer
	e := New(Config{Clock: clock.NewManual(time.Unix(0, 0)), Seed: 1, Log: log.New(&buf, "", 0)})
	if got := e.InterpolatedValue("missing", 4, 1, easing.Linear, DivisionNormal); got != 0 {
		t.Fatalf("missing slot value=%f want 0", got)
	}
	if !strings.Contains(buf.String(), "missing") {
		t.Fatalf("expected warning to name the slot, log=%q", buf.String())
	}
}

func TestTargetsHoldWithinBucket(t *testing.T) {
	e, _ := newTestEngine(120)
	e.RegisterSlot("s", SlotConfig{Mode: SlotScalar})
	e.InterpolateAt("s", 0.1, 4, 1, easing.Linear)
	p0, n0, ok := e.SlotTargets("s")
	if !ok {
		t.Fatalf("expected cached targets")
	}
	for _, phase := range []float64{0.5, 1.9, 2.7, 3.99} {
		e.InterpolateAt("s", phase, 4, 1, easing.Linear)
		p, n, _ := e.SlotTargets("s")
		if p != p0 || n != n0 {
			t.Fatalf("targets changed inside bucket at phase %f", phase)
		}
	}
	e.InterpolateAt("s", 4.01, 4, 1, easing.Linear)
	p1, _, _ := e.SlotTargets("s")
	if p1 != n0 {
		t.Fatalf("expected next target %f shifted into prev, got %f", n0, p1)
	}
}

func TestHoldThenEaseShape(t *testing.T) {
	e, _ := newTestEngine(120)
	e.RegisterSlot("s", SlotConfig{Mode: SlotScalar})
	e.InterpolateAt("s", 0, 4, 1, easing.Linear)
	prev, next, _ := e.SlotTargets("s")

	if got := e.InterpolateAt("s", 2, 4, 1, easing.Linear); got != prev {
		t.Fatalf("hold section=%f want prev %f", got, prev)
	}
	want := prev*0.5 + next*0.5
	if got := e.InterpolateAt("s", 3.5, 4, 1, easing.Linear); math.Abs(got-want) > 1e-12 {
		t.Fatalf("ease midpoint=%f want %f", got, want)
	}
}

func TestSlotEaseOverridesCaller(t *testing.T) {
	e, _ := newTestEngine(120)
	e.RegisterSlot("s", SlotConfig{Mode: SlotScalar, Ease: easing.Linear})
	e.InterpolateAt("s", 0, 4, 2, easing.InCubic)
	prev, next, _ := e.SlotTargets("s")
	want := prev*0.75 + next*0.25
	if got := e.InterpolateAt("s", 2.5, 4, 2, easing.InCubic); math.Abs(got-want) > 1e-12 {
		t.Fatalf("eased value=%f want linear %f", got, want)
	}
}

func TestContinuousAcrossBucketBoundary(t *testing.T) {
	e, _ := newTestEngine(120)
	e.RegisterSlot("s", SlotConfig{Mode: SlotScalar})
	const eps = 1e-7
	for n := 0; n < 6; n++ {
		boundary := float64(n+1) * 2
		before := e.InterpolateAt("s", boundary-eps, 2, 1, easing.InOutSine)
		after := e.InterpolateAt("s", boundary+eps, 2, 1, easing.InOutSine)
		if math.Abs(before-after) > 1e-4 {
			t.Fatalf("discontinuity at %f: %f -> %f", boundary, before, after)
		}
	}
}

func TestQuantizedTargetsAreBucketCenters(t *testing.T) {
	e, _ := newTestEngine(120)
	e.RegisterSlot("q", SlotConfig{Mode: SlotQuantized, Divisions: 4})
	allowed := map[float64]bool{0.125: true, 0.375: true, 0.625: true, 0.875: true}
	for i := 0; i < 50; i++ {
		e.InterpolateAt("q", float64(i), 1, 0.5, easing.Linear)
		prev, next, _ := e.SlotTargets("q")
		if !allowed[prev] || !allowed[next] {
			t.Fatalf("unexpected quantized targets %f %f", prev, next)
		}
	}
}

func TestDiscreteTargetsComeFromSet(t *testing.T) {
	e, _ := newTestEngine(120)
	e.RegisterSlot("d", SlotConfig{Mode: SlotDiscrete, Values: []float64{0.1, 0.9}})
	for i := 0; i < 30; i++ {
		e.InterpolateAt("d", float64(i), 1, 0.5, easing.Linear)
		prev, next, _ := e.SlotTargets("d")
		for _, v := range []float64{prev, next} {
			if v != 0.1 && v != 0.9 {
				t.Fatalf("target %f not in set", v)
			}
		}
	}
}

func TestSeededSlotsReproduce(t *testing.T) {
	cfg := SlotConfig{Mode: SlotScalar, Seeded: true, Seed: [2]float64{3, 4}}
	a, _ := newTestEngine(120)
	b := New(Config{Clock: clock.NewManual(time.Unix(0, 0)), Seed: 999})
	a.RegisterSlot("s", cfg)
	b.RegisterSlot("s", cfg)
	for i := 0; i < 10; i++ {
		phase := float64(i) * 1.5
		if va, vb := a.InterpolateAt("s", phase, 2, 1, easing.Linear), b.InterpolateAt("s", phase, 2, 1, easing.Linear); va != vb {
			t.Fatalf("seeded slots diverged at %f: %f vs %f", phase, va, vb)
		}
	}
}

func TestRebaseKeepsCount(t *testing.T) {
	e, clk := newTestEngine(120)
	e.Count("ch", DivisionNormal)
	clk.AdvanceMillis(1500)
	e.SetBPM(90)
	e.Rebase("ch", 120, 90)
	if got := e.Count("ch", DivisionNormal); math.Abs(got-3) > 1e-6 {
		t.Fatalf("Count after rebase=%f want 3", got)
	}
	clk.AdvanceMillis(2000)
	if got := e.Count("ch", DivisionNormal); math.Abs(got-6) > 1e-6 {
		t.Fatalf("Count=%f want 6", got)
	}
	// keys without a clock stay unstarted
	e.Rebase("other", 120, 90)
	if got := e.Count("other", DivisionNormal); got != 0 {
		t.Fatalf("unstarted key Count=%f want 0", got)
	}
}

func TestReRegisterReplacesCache(t *testing.T) {
	e, _ := newTestEngine(120)
	e.RegisterSlot("s", SlotConfig{Mode: SlotDiscrete, Values: []float64{0.2}})
	e.InterpolateAt("s", 0, 2, 1, easing.Linear)
	e.RegisterSlot("s", SlotConfig{Mode: SlotDiscrete, Values: []float64{0.8}})
	if _, _, ok := e.SlotTargets("s"); ok {
		t.Fatalf("expected cache cleared by re-registration")
	}
	if got := e.InterpolateAt("s", 0.5, 2, 1, easing.Linear); got != 0.8 {
		t.Fatalf("value after re-register=%f want 0.8", got)
	}
}

func TestPulseTriangle(t *testing.T) {
	e, clk := newTestEngine(60)
	cases := []struct {
		advance float64
		want    float64
	}{
		{0, 1},
		{500, 0.5},
		{500, 0},
		{500, 0.5},
		{500, 1},
	}
	for _, c := range cases {
		clk.AdvanceMillis(c.advance)
		if got := e.Pulse("p", DivisionNormal); math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("pulse=%f want %f", got, c.want)
		}
	}
}

func TestResetAllKeepsDefaultSlot(t *testing.T) {
	e, _ := newTestEngine(120)
	e.RegisterSlot("x", DefaultSlotConfig())
	e.ResetAll()
	if e.HasSlot("x") {
		t.Fatalf("expected custom slot removed")
	}
	if !e.HasSlot(DefaultKey) {
		t.Fatalf("expected default slot present")
	}
}

func TestParseDivision(t *testing.T) {
	for in, want := range map[string]Division{"half": DivisionHalf, "2x": DivisionDouble, "": DivisionNormal} {
		got, err := ParseDivision(in)
		if err != nil || got != want {
			t.Fatalf("ParseDivision(%q)=%v,%v want %v", in, got, err, want)
		}
	}
	if _, err := ParseDivision("triple"); err == nil {
		t.Fatalf("expected error for unknown division")
	}
}
