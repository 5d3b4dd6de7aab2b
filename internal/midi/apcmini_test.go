package midi

import (
	"testing"

	"github.com/guidoenr/beatviz/internal/gvm"
)

func TestGridNoteSelectsColumnRow(t *testing.T) {
	a := NewAPCMini()
	// note 0 is the bottom-left pad
	if got := a.Handle(Message{Status: statusNoteOn, Data1: 0, Data2: 127}); got != ControlGrid {
		t.Fatalf("control=%d want grid", got)
	}
	if got := a.Grid()[0]; got != 7 {
		t.Fatalf("column 0 row=%d want 7", got)
	}
	a.Handle(Message{Status: statusNoteOn, Data1: 59, Data2: 100})
	if got := a.Grid()[3]; got != 0 {
		t.Fatalf("column 3 row=%d want 0", got)
	}
}

func TestGridIgnoresZeroVelocity(t *testing.T) {
	a := NewAPCMini()
	if got := a.Handle(Message{Status: statusNoteOff, Data1: 10, Data2: 0}); got != ControlNone {
		t.Fatalf("release should not change state, got %d", got)
	}
	if a.Grid() != [8]int{} {
		t.Fatalf("grid changed on release: %v", a.Grid())
	}
}

func TestSideButtonsAreRadio(t *testing.T) {
	a := NewAPCMini()
	a.Handle(Message{Status: statusNoteOn, Data1: 114, Data2: 127})
	if got := a.Handle(Message{Status: statusNoteOn, Data1: 119, Data2: 127}); got != ControlScene {
		t.Fatalf("control=%d want scene", got)
	}
	if got := a.SceneRadio(); got != 7 {
		t.Fatalf("radio=%d want 7", got)
	}
}

func TestFaderAndToggle(t *testing.T) {
	a := NewAPCMini()
	if got := a.Handle(Message{Status: statusCC, Data1: 50, Data2: 127}); got != ControlFader {
		t.Fatalf("control=%d want fader", got)
	}
	if got := a.Faders()[2]; got != 1 {
		t.Fatalf("fader 2=%f want 1", got)
	}
	a.Handle(Message{Status: statusCC, Data1: 50, Data2: 0})
	if got := a.Faders()[2]; got != 0 {
		t.Fatalf("fader 2=%f want 0", got)
	}
	// toggle latches to full, second press restores the fader position
	a.Handle(Message{Status: statusNoteOn, Data1: 102, Data2: 127})
	if got := a.Faders()[2]; got != 1 {
		t.Fatalf("latched fader=%f want 1", got)
	}
	a.Handle(Message{Status: statusNoteOn, Data1: 102, Data2: 127})
	if got := a.Faders()[2]; got != 0 {
		t.Fatalf("unlatched fader=%f want 0", got)
	}
	if got := a.Faders(); got[0] != 0 || got[7] != 0 {
		t.Fatalf("untouched faders=%v want 0", got)
	}
	a.Handle(Message{Status: statusCC, Data1: 56, Data2: 127})
	if got := a.Faders(); got[2] != 0 {
		t.Fatalf("master fader leaked into channel faders: %v", got)
	}
}

func TestDivisionFromMasterFader(t *testing.T) {
	a := NewAPCMini()
	if _, ok := a.Division(); ok {
		t.Fatalf("untouched division should not be reported")
	}
	if got := a.Handle(Message{Status: statusCC, Data1: 56, Data2: 0}); got != ControlDivision {
		t.Fatalf("control=%d want division", got)
	}
	if got, ok := a.Division(); !ok || got != gvm.DivisionHalf {
		t.Fatalf("division=%s want half", got)
	}
	a.Handle(Message{Status: statusCC, Data1: 56, Data2: 64})
	if got, _ := a.Division(); got != gvm.DivisionNormal {
		t.Fatalf("division=%s want normal", got)
	}
	a.Handle(Message{Status: statusNoteOn, Data1: masterButton, Data2: 127})
	if got, _ := a.Division(); got != gvm.DivisionDouble {
		t.Fatalf("division=%s want double", got)
	}
}

func TestFeedbackMirrorsState(t *testing.T) {
	a := NewAPCMini()
	a.Handle(Message{Status: statusNoteOn, Data1: 8, Data2: 127}) // column 0, row 6
	a.Handle(Message{Status: statusNoteOn, Data1: 113, Data2: 127})

	var gridLit, sideLit int
	for _, m := range a.Feedback() {
		switch {
		case m.Status == statusNoteOn && m.Data1 == 8:
			if m.Data2 != 25 {
				t.Fatalf("selected pad velocity=%d want 25", m.Data2)
			}
		case m.Status == statusNoteOn && m.Data1 == 0:
			if m.Data2 != 0 {
				t.Fatalf("deselected pad velocity=%d want 0", m.Data2)
			}
		}
		if m.Status == statusNoteOn && m.Data1 < 64 && m.Data2 > 0 {
			gridLit++
		}
		if m.Status == statusNoteOn && m.Data1 >= 112 && m.Data1 <= 119 && m.Data2 > 0 {
			sideLit++
			if m.Data1 != 113 {
				t.Fatalf("wrong side button lit: %d", m.Data1)
			}
		}
	}
	if gridLit != 8 {
		t.Fatalf("lit pads=%d want one per column", gridLit)
	}
	if sideLit != 1 {
		t.Fatalf("lit side buttons=%d want 1", sideLit)
	}
}
