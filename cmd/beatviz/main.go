package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/guidoenr/beatviz/internal/app"
	"github.com/guidoenr/beatviz/internal/config"
	"github.com/guidoenr/beatviz/internal/easing"
	"github.com/guidoenr/beatviz/internal/render"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Optional YAML session file")
		saveConfig  = flag.String("save-config", "", "Write the effective session to this YAML file and exit")
		bpm         = flag.Float64("bpm", 130, "Initial tempo used until two taps are registered")
		targetFPS   = flag.Float64("fps", 30, "Target frames per second")
		channels    = flag.Int("channels", 8, "Number of motion channels")
		division    = flag.String("division", "normal", "Beat division (half|normal|double)")
		strategy    = flag.String("strategy", "slot", "Random source for the noise modes (slot|rleap)")
		smoothTempo = flag.Bool("smooth-tempo", false, "Keep the beat phase continuous across tempo changes")
		ease        = flag.String("easing", "inOutSine", "Easing for random transitions ("+strings.Join(easing.Names(), "|")+")")
		scene       = flag.String("scene", "auto", "Scene ("+strings.Join(render.SceneNames(), "|")+"|auto)")
		webPort     = flag.Int("web-port", 0, "Serve the control panel on this port (0 disables it)")
		midiDevice  = flag.String("midi-device", "", "MIDI controller name (substring match, \"default\" for the first input)")
		click       = flag.Bool("click", false, "Play a metronome click on every beat")
		autoTap     = flag.Float64("auto-tap", 0, "Tap automatically at this BPM (0 disables it)")
		profilePath = flag.String("profile", "", "Append per-frame timings as CSV to this file")
		useSDL      = flag.Bool("sdl", false, "Render into an SDL window (needs the sdl build tag)")
		glyphs      = flag.String("glyphs", "default", "ASCII glyph ramp ("+strings.Join(render.GlyphNames(), "|")+")")
		width       = flag.Int("width", 80, "ASCII frame width")
		height      = flag.Int("height", 24, "ASCII frame height")
		seed        = flag.Int64("seed", 0, "Random seed (0 picks one from the clock)")
		debug       = flag.Bool("debug", false, "Enable verbose logging")
		showStatus  = flag.Bool("status", true, "Display status bar")
		noColor     = flag.Bool("no-color", false, "Disable ANSI color output")
	)

	flag.Parse()

	logger := log.New(os.Stdout, "[beatviz] ", log.LstdFlags)
	if !*debug {
		logger.SetOutput(os.Stderr)
		logger.SetFlags(0)
	}

	session := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.Fatalf("%v", err)
		}
		session = loaded
	}

	// flags given on the command line win over the session file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "bpm":
			session.BPM = *bpm
		case "fps":
			session.FPS = *targetFPS
		case "channels":
			session.Channels = *channels
		case "division":
			session.Division = *division
		case "strategy":
			session.Strategy = *strategy
		case "smooth-tempo":
			session.SmoothTempo = *smoothTempo
		case "easing":
			session.Easing = *ease
		case "scene":
			session.Scene = *scene
		case "web-port":
			session.WebPort = *webPort
		case "midi-device":
			session.MIDIDevice = *midiDevice
		case "click":
			session.Click = *click
		}
	})

	if err := session.Validate(); err != nil {
		logger.Fatalf("invalid session: %v", err)
	}

	if *saveConfig != "" {
		if err := config.Save(*saveConfig, session); err != nil {
			logger.Fatalf("save config: %v", err)
		}
		fmt.Printf("session written to %s\n", *saveConfig)
		return
	}

	if *width <= 0 || *height <= 0 {
		logger.Fatalf("invalid dimensions: width=%d height=%d", *width, *height)
	}

	followTerminal := false
	if fd := int(os.Stdout.Fd()); fd >= 0 && !*useSDL {
		if w, h, err := term.GetSize(fd); err == nil {
			followTerminal = true
			if w > 0 {
				*width = w
			}
			if h > 0 {
				*height = h
			}
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	appConfig := app.Config{
		Session:        session,
		Width:          *width,
		Height:         *height,
		ShowStatusBar:  *showStatus,
		Glyphs:         *glyphs,
		UseANSI:        !*noColor,
		UseSDL:         *useSDL,
		AutoTapBPM:     *autoTap,
		ProfilePath:    *profilePath,
		FollowTerminal: followTerminal,
		Seed:           *seed,
		Log:            logger,
	}

	a, err := app.New(appConfig)
	if err != nil {
		logger.Fatalf("failed to create app: %v", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "cleanup error: %v\n", err)
		}
	}()

	if err := a.Run(ctx); err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nExiting...")
			return
		}
		logger.Fatalf("runtime error: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
}
