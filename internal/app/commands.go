package app

import (
	"fmt"
	"math"

	"github.com/guidoenr/beatviz/internal/gvm"
	"github.com/guidoenr/beatviz/internal/motion"
	"github.com/guidoenr/beatviz/internal/render"
	"github.com/guidoenr/beatviz/internal/web"
)

// CommandKind enumerates the operations external inputs can request.
type CommandKind int

const (
	CmdTap CommandKind = iota
	CmdCycleMode
	CmdSetMode
	CmdSetModeAll
	CmdTogglePalette
	CmdPaletteAll
	CmdPaletteNone
	CmdToggleUI
	CmdSlower
	CmdFaster
	CmdSetDivision
	CmdSetBPM
	CmdNextScene
	CmdReset
	CmdResetRandom
	CmdQuit
)

// Command is a request from the keyboard, MIDI or web goroutines. Commands
// are applied on the tick goroutine between frames.
type Command struct {
	Kind     CommandKind
	Channel  int
	Mode     int
	Index    int
	BPM      float64
	Division gvm.Division
}

const commandQueueSize = 64

// submit queues cmd without blocking. It reports false when the queue is full.
func (a *App) submit(cmd Command) bool {
	select {
	case a.commands <- cmd:
		return true
	default:
		a.log.Printf("command queue full, dropping %d", cmd.Kind)
		return false
	}
}

// apply executes cmd and reports whether the app should stop.
func (a *App) apply(cmd Command) bool {
	switch cmd.Kind {
	case CmdTap:
		a.tracker.Tap()
	case CmdCycleMode:
		// the controller grid owns mode selection once MIDI is active
		if a.midiActive {
			return false
		}
		ch := a.group.Channel(cmd.Channel)
		if ch == nil {
			return false
		}
		a.group.SetModeIndex(cmd.Channel, (ch.ModeIndex()+1)%motion.ModeCount)
	case CmdSetMode:
		a.group.SetModeIndex(cmd.Channel, cmd.Mode)
	case CmdSetModeAll:
		a.group.SetModeIndexAll(cmd.Mode)
	case CmdTogglePalette:
		a.renderer.Colors().Toggle(cmd.Index)
	case CmdPaletteAll:
		a.renderer.Colors().SetAll(true)
	case CmdPaletteNone:
		a.renderer.Colors().SetAll(false)
	case CmdToggleUI:
		a.renderer.ToggleUI()
	case CmdSlower:
		a.division = a.division.Slower()
	case CmdFaster:
		a.division = a.division.Faster()
	case CmdSetDivision:
		a.division = cmd.Division
	case CmdSetBPM:
		a.tracker.Reset()
		a.tracker.SetInitialBPM(cmd.BPM)
	case CmdNextScene:
		a.sceneRadio = (a.sceneRadio + 1) % (render.AutoScene + 1)
	case CmdReset:
		a.tracker.Reset()
		a.group.Reset()
		a.group.ResetRandom()
	case CmdResetRandom:
		a.group.ResetRandom()
	case CmdQuit:
		return true
	}
	return false
}

// Snapshot returns the state published by the last frame.
func (a *App) Snapshot() web.Status {
	a.snapMu.RLock()
	defer a.snapMu.RUnlock()
	return a.snapshot
}

// Tap queues a tempo tap.
func (a *App) Tap() { a.submit(Command{Kind: CmdTap}) }

// SetMode queues a mode request. A negative channel targets every channel.
func (a *App) SetMode(channel, mode int) error {
	if channel >= a.group.Len() {
		return fmt.Errorf("channel %d out of range (have %d)", channel, a.group.Len())
	}
	if channel < 0 {
		a.submit(Command{Kind: CmdSetModeAll, Mode: mode})
		return nil
	}
	a.submit(Command{Kind: CmdSetMode, Channel: channel, Mode: mode})
	return nil
}

// SetBPM replaces the fallback tempo and clears the tap history.
func (a *App) SetBPM(bpm float64) error {
	if bpm <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return fmt.Errorf("bpm must be positive (got %v)", bpm)
	}
	a.submit(Command{Kind: CmdSetBPM, BPM: bpm})
	return nil
}

// SetDivision queues a division change.
func (a *App) SetDivision(d gvm.Division) {
	a.submit(Command{Kind: CmdSetDivision, Division: d})
}

var _ web.Controller = (*App)(nil)
