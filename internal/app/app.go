package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/guidoenr/beatviz/internal/clock"
	"github.com/guidoenr/beatviz/internal/config"
	"github.com/guidoenr/beatviz/internal/easing"
	"github.com/guidoenr/beatviz/internal/gvm"
	"github.com/guidoenr/beatviz/internal/metronome"
	"github.com/guidoenr/beatviz/internal/midi"
	"github.com/guidoenr/beatviz/internal/motion"
	"github.com/guidoenr/beatviz/internal/render"
	"github.com/guidoenr/beatviz/internal/tempo"
	"github.com/guidoenr/beatviz/internal/web"
)

// Config configures the application runtime.
type Config struct {
	Session       config.File
	Width         int
	Height        int
	ShowStatusBar bool
	Glyphs        string
	UseANSI       bool
	UseSDL        bool
	AutoTapBPM    float64
	ProfilePath   string
	// FollowTerminal resizes the frame to the terminal on every tick.
	FollowTerminal bool
	Clock          clock.Clock
	Seed           int64
	Output         io.Writer
	Log            *log.Logger
}

// App owns the engine and drives it from a single tick loop.
type App struct {
	cfg      Config
	log      *log.Logger
	clock    clock.Clock
	out      io.Writer
	tracker  *tempo.Tracker
	engine   *gvm.Engine
	group    *motion.Group
	renderer *render.Renderer
	commands chan Command

	division   gvm.Division
	sceneRadio int

	apc        *midi.APCMini
	midiDev    *midi.Device
	midiIn     chan midi.Message
	midiActive bool
	midiDirty  bool

	metro  *metronome.Metronome
	web    *web.Server
	tapper *autoTapper
	prof   *profiler

	start        time.Time
	last         time.Time
	fps          float64
	width        int
	height       int
	renderHeight int

	snapMu   sync.RWMutex
	snapshot web.Status
}

// New constructs the application using the provided configuration.
func New(cfg Config) (*App, error) {
	if cfg.Log == nil {
		cfg.Log = log.New(os.Stdout, "", log.LstdFlags)
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.System
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.Width <= 0 {
		cfg.Width = 80
	}
	if cfg.Height <= 0 {
		cfg.Height = 24
	}
	session := cfg.Session
	if err := session.Validate(); err != nil {
		return nil, fmt.Errorf("session config: %w", err)
	}

	division, _ := gvm.ParseDivision(session.Division)
	strategy, _ := motion.ParseStrategy(session.Strategy)
	ease, _ := easing.Lookup(session.Easing)
	sceneRadio, ok := render.ParseScene(session.Scene)
	if !ok {
		return nil, fmt.Errorf("unknown scene %q (have %s)", session.Scene, strings.Join(render.SceneNames(), ", "))
	}

	renderHeight := cfg.Height
	if cfg.ShowStatusBar && renderHeight > 1 {
		renderHeight--
	}
	colors, err := render.NewColorPalette(render.DefaultColors)
	if err != nil {
		return nil, err
	}
	colors.SetEnabled(session.Palette)
	renderer, err := render.New(cfg.Width, renderHeight, cfg.Glyphs, colors, cfg.UseANSI)
	if err != nil {
		return nil, err
	}
	if cfg.UseSDL {
		if err := renderer.EnableSDL(); err != nil {
			return nil, fmt.Errorf("sdl: %w", err)
		}
	}

	a := &App{
		cfg:          cfg,
		log:          cfg.Log,
		clock:        cfg.Clock,
		out:          cfg.Output,
		renderer:     renderer,
		commands:     make(chan Command, commandQueueSize),
		division:     division,
		sceneRadio:   sceneRadio,
		apc:          midi.NewAPCMini(),
		midiIn:       make(chan midi.Message, 256),
		width:        cfg.Width,
		height:       cfg.Height,
		renderHeight: renderHeight,
	}

	a.tracker = tempo.NewTracker(tempo.Config{
		InitialBPM: session.BPM,
		MaxTaps:    session.MaxTaps,
		Timeout:    session.TapTimeout(),
		Clock:      cfg.Clock,
	})
	a.engine = gvm.New(gvm.Config{
		BPM:   session.BPM,
		Clock: cfg.Clock,
		Seed:  cfg.Seed,
		Log:   cfg.Log,
	})
	a.group = motion.NewGroup(motion.GroupConfig{
		Count:           session.Channels,
		BPM:             session.BPM,
		Engine:          a.engine,
		Clock:           cfg.Clock,
		Division:        func() gvm.Division { return a.division },
		Strategy:        strategy,
		Ease:            ease,
		ContinuousTempo: session.SmoothTempo,
	})
	for _, s := range session.Slots {
		sc, _ := s.Config()
		a.engine.RegisterSlot(s.Key, sc)
	}

	if session.MIDIDevice != "" {
		name := session.MIDIDevice
		if name == "default" {
			name = ""
		}
		dev, err := midi.Open(name)
		if err != nil {
			a.log.Printf("midi disabled: %v", err)
		} else {
			a.midiDev = dev
			a.midiActive = true
			a.midiDirty = true
			a.log.Printf("midi controller %q connected", dev.Name)
		}
	}

	if session.Click {
		player, err := metronome.NewSpeaker(metronome.SampleRate)
		if err != nil {
			a.log.Printf("metronome disabled: %v", err)
		} else {
			a.metro = metronome.New(player, metronome.SampleRate)
		}
	}

	if session.WebPort > 0 {
		a.web = web.NewServer(a, log.New(a.log.Writer(), "[web] ", a.log.Flags()))
	}

	a.tapper = newAutoTapper(cfg.AutoTapBPM, cfg.Seed)
	a.prof = newProfiler(cfg.ProfilePath, cfg.Clock, a.log)

	a.start = cfg.Clock.Now()
	a.last = a.start
	a.log.Printf("engine ready: %d channels @ %.1f BPM, strategy=%s division=%s scene=%s",
		a.group.Len(), session.BPM, strategy, division, session.Scene)
	return a, nil
}

// Run starts the render loop until context cancellation.
func (a *App) Run(ctx context.Context) error {
	frameDuration := time.Duration(float64(time.Second) / a.cfg.Session.FPS)
	ticker := time.NewTicker(frameDuration)
	defer ticker.Stop()

	if !a.renderer.Windowed() {
		enterAltScreen(a.out)
		clearScreen(a.out)
		hideCursor(a.out)
		defer func() {
			showCursor(a.out)
			exitAltScreen(a.out)
		}()
	}

	inputCtx, cancelInput := context.WithCancel(ctx)
	defer cancelInput()
	a.startInputListener(inputCtx)
	a.startMIDI(inputCtx)
	if a.web != nil {
		go func() {
			if err := a.web.Start(inputCtx, a.cfg.Session.WebPort); err != nil {
				a.log.Printf("web panel stopped: %v", err)
			}
		}()
	}
	a.ensureDimensions()

	for {
		select {
		case <-ctx.Done():
			moveCursorHome(a.out)
			return ctx.Err()
		case cmd := <-a.commands:
			if a.apply(cmd) {
				moveCursorHome(a.out)
				return nil
			}
		case msg := <-a.midiIn:
			a.handleMIDI(msg)
		case <-ticker.C:
			if err := a.step(); err != nil {
				if errors.Is(err, render.ErrRendererQuit) {
					return nil
				}
				return err
			}
		}
	}
}

// Close releases held resources.
func (a *App) Close() error {
	var errs []error
	if a.midiDev != nil {
		errs = append(errs, a.midiDev.Close())
	}
	if a.metro != nil {
		metronome.CloseSpeaker()
	}
	errs = append(errs, a.renderer.Close(), a.prof.Close())
	return errors.Join(errs...)
}

func (a *App) startMIDI(ctx context.Context) {
	if a.midiDev == nil {
		return
	}
	go func() {
		if err := a.midiDev.Listen(ctx, a.midiIn); err != nil {
			a.log.Printf("midi input stopped: %v", err)
		}
	}()
}

// handleMIDI applies one controller message to the surface state.
func (a *App) handleMIDI(msg midi.Message) {
	a.midiActive = true
	switch a.apc.Handle(msg) {
	case midi.ControlNone:
		return
	case midi.ControlScene:
		a.sceneRadio = a.apc.SceneRadio()
	case midi.ControlDivision:
		if d, ok := a.apc.Division(); ok {
			a.division = d
		}
	}
	a.midiDirty = true
}

func (a *App) sendFeedback() {
	a.midiDirty = false
	if a.midiDev == nil {
		return
	}
	if err := a.midiDev.Send(a.apc.Feedback()); err != nil {
		a.log.Printf("midi feedback: %v", err)
	}
}

// step renders one frame. Values are read before the tempo is refreshed so
// a tap only affects the following frame.
func (a *App) step() error {
	if a.cfg.FollowTerminal {
		a.ensureDimensions()
	}
	a.prof.beginFrame(a.tracker.BPM())

	now := a.clock.Now()
	delta := now.Sub(a.last).Seconds()
	if delta <= 0 {
		delta = 1.0 / a.cfg.Session.FPS
	}
	a.last = now
	a.fps = 1.0 / delta

	if a.tapper.Due(now) {
		a.tracker.Tap()
	}
	if a.midiActive {
		for col, row := range a.apc.Grid() {
			if ch := a.group.Channel(col); ch != nil && ch.ModeIndex() != row {
				a.group.SetModeIndex(col, row)
			}
		}
	}

	values := a.group.Values()
	count := a.engine.Count(gvm.DefaultKey, a.division)
	a.prof.markSection("values")

	if a.metro != nil {
		a.metro.Tick(int64(math.Floor(count)))
	}

	st := a.renderState(values, count, now)
	frame := a.renderer.Render(st)
	a.prof.markSection("render")
	a.publish(st)

	if err := a.present(frame); err != nil {
		return err
	}
	a.prof.markSection("present")

	if a.midiDirty {
		a.sendFeedback()
	}

	bpm := a.tracker.BPM()
	if a.cfg.Session.SmoothTempo {
		a.engine.Rebase(gvm.DefaultKey, a.engine.BPM(), bpm)
	}
	a.engine.SetBPM(bpm)
	a.group.SetBPM(bpm)
	a.prof.endFrame()
	return nil
}

func (a *App) renderState(values []float64, count float64, now time.Time) render.State {
	n := a.group.Len()
	modes := make([]string, n)
	pending := make([]bool, n)
	for i := 0; i < n; i++ {
		modes[i] = a.group.CurrentMode(i)
		pending[i] = a.group.Channel(i).Waiting()
	}
	var post render.Post
	if a.midiActive {
		post = render.PostFromFaders(a.apc.Faders())
	}
	return render.State{
		Post:      post,
		Values:    values,
		Modes:     modes,
		Pending:   pending,
		ModeNames: a.group.Modes(),
		BPM:       a.group.BPM(),
		Division:  a.division.String(),
		Scene:     render.SelectScene(a.sceneRadio, count),
		Count:     count,
		Time:      now.Sub(a.start).Seconds(),
		FPS:       a.fps,
		Taps:      len(a.tracker.Taps()),
	}
}

// publish stores the frame state for the web panel.
func (a *App) publish(st render.State) {
	status := web.Status{
		BPM:       st.BPM,
		Division:  st.Division,
		Count:     st.Count,
		Values:    st.Values,
		Modes:     st.Modes,
		Pending:   st.Pending,
		ModeNames: st.ModeNames,
		Scene:     render.SceneName(st.Scene),
		Palette:   a.renderer.Colors().ActiveHex(),
		Taps:      st.Taps,
		FPS:       st.FPS,
	}
	a.snapMu.Lock()
	a.snapshot = status
	a.snapMu.Unlock()
}

func (a *App) present(frame render.Frame) error {
	if frame.Present != nil {
		return frame.Present(frame.Status)
	}
	var b strings.Builder
	b.WriteString("\x1b[H")
	for _, line := range frame.Lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if a.cfg.ShowStatusBar {
		b.WriteString(statusBar(frame.Status, a.width))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(a.out, b.String())
	return err
}

func (a *App) ensureDimensions() {
	f, ok := a.out.(*os.File)
	if !ok || a.renderer.Windowed() {
		return
	}
	w, h, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return
	}

	renderHeight := h
	if a.cfg.ShowStatusBar && renderHeight > 1 {
		renderHeight--
	}

	if w == a.width && h == a.height && renderHeight == a.renderHeight {
		return
	}

	a.width = w
	a.height = h
	a.renderHeight = renderHeight
	a.renderer.Resize(w, renderHeight)
}

func statusBar(text string, width int) string {
	if width <= 0 {
		return text
	}
	if len(text) >= width {
		return text[:width]
	}
	return text + strings.Repeat(" ", width-len(text))
}

func clearScreen(w io.Writer) {
	fmt.Fprint(w, "\x1b[2J")
	moveCursorHome(w)
}

func moveCursorHome(w io.Writer) {
	fmt.Fprint(w, "\x1b[H")
}

func hideCursor(w io.Writer) {
	fmt.Fprint(w, "\x1b[?25l")
}

func showCursor(w io.Writer) {
	fmt.Fprint(w, "\x1b[?25h")
}

func enterAltScreen(w io.Writer) {
	fmt.Fprint(w, "\x1b[?1049h")
}

func exitAltScreen(w io.Writer) {
	fmt.Fprint(w, "\x1b[?1049l\x1b[0m")
}
