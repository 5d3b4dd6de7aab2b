package app

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/guidoenr/beatviz/internal/clock"
)

// profiler appends per-frame section timings as CSV rows:
// timestamp,section,delta_ms,bpm. A nil profiler is a no-op.
type profiler struct {
	w     io.WriteCloser
	clock clock.Clock
	start time.Time
	last  time.Time
	bpm   float64
}

func newProfiler(path string, clk clock.Clock, logger *log.Logger) *profiler {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		if logger != nil {
			logger.Printf("profiler disabled: %v", err)
		}
		return nil
	}
	return newProfilerWriter(f, clk)
}

func newProfilerWriter(w io.WriteCloser, clk clock.Clock) *profiler {
	p := &profiler{w: w, clock: clk}
	fmt.Fprintln(p.w, "timestamp,section,delta_ms,bpm")
	return p
}

func (p *profiler) beginFrame(bpm float64) {
	if p == nil {
		return
	}
	now := p.clock.Now()
	p.start = now
	p.last = now
	p.bpm = bpm
}

func (p *profiler) markSection(name string) {
	if p == nil {
		return
	}
	now := p.clock.Now()
	p.write(now, name, clock.Millis(now.Sub(p.last)))
	p.last = now
}

func (p *profiler) endFrame() {
	if p == nil {
		return
	}
	now := p.clock.Now()
	p.write(now, "frame_total", clock.Millis(now.Sub(p.start)))
}

func (p *profiler) Close() error {
	if p == nil {
		return nil
	}
	return p.w.Close()
}

func (p *profiler) write(now time.Time, section string, deltaMs float64) {
	fmt.Fprintf(p.w, "%s,%s,%.3f,%.2f\n", now.Format(time.RFC3339Nano), section, deltaMs, p.bpm)
}
