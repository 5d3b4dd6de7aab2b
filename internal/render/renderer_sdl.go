//go:build sdl

package render

import (
	"fmt"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"
)

type sdlState struct {
	initialized bool
	window      *sdl.Window
	renderer    *sdl.Renderer
	texture     *sdl.Texture
	pixelBuffer []byte
	width       int
	height      int
	pitch       int
	windowTitle string
}

func (r *Renderer) initSDL(width, height int) error {
	if r.sdl != nil {
		r.mode = backendSDL
		r.useANSI = false
		return nil
	}
	if err := sdl.InitSubSystem(sdl.INIT_VIDEO); err != nil {
		return fmt.Errorf("init SDL video: %w", err)
	}
	r.sdl = &sdlState{initialized: true}
	r.mode = backendSDL
	r.useANSI = false
	return nil
}

func (r *Renderer) ensureSDLResources() error {
	if r.sdl == nil {
		return fmt.Errorf("SDL backend not initialized")
	}
	state := r.sdl
	if state.window == nil {
		window, err := sdl.CreateWindow(
			"beatviz",
			sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
			int32(r.width), int32(r.height),
			sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE,
		)
		if err != nil {
			return err
		}
		state.window = window
	}
	if state.renderer == nil {
		renderer, err := sdl.CreateRenderer(state.window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
		if err != nil {
			return err
		}
		state.renderer = renderer
		_ = renderer.SetLogicalSize(int32(r.width), int32(r.height))
	}
	if state.texture == nil || state.width != r.width || state.height != r.height {
		if state.texture != nil {
			state.texture.Destroy()
			state.texture = nil
		}
		tex, err := state.renderer.CreateTexture(
			sdl.PIXELFORMAT_ABGR8888,
			sdl.TEXTUREACCESS_STREAMING,
			int32(r.width), int32(r.height),
		)
		if err != nil {
			return err
		}
		_ = state.renderer.SetLogicalSize(int32(r.width), int32(r.height))
		state.texture = tex
		state.width = r.width
		state.height = r.height
		state.pitch = r.width * 4
		state.pixelBuffer = make([]byte, state.pitch*r.height)
	}
	return nil
}

func (r *Renderer) renderSDL(st State, p *Params, fn sceneFunc, status string) Frame {
	if err := r.ensureSDLResources(); err != nil {
		return Frame{
			Status: fmt.Sprintf("SDL init error: %v", err),
			Present: func(string) error {
				return err
			},
		}
	}
	state := r.sdl
	width := r.width
	height := r.height
	pitch := state.pitch

	for y := 0; y < height; y++ {
		rowOffset := y * pitch
		for x := 0; x < width; x++ {
			brightness, col := r.shade(r.xCoords[x], r.yCoords[y], fn, p, &st.Post, st.Time)
			rr, gg, bb := col.RGB255()
			offset := rowOffset + x*4
			state.pixelBuffer[offset+0] = byte(float64(rr) * brightness)
			state.pixelBuffer[offset+1] = byte(float64(gg) * brightness)
			state.pixelBuffer[offset+2] = byte(float64(bb) * brightness)
			state.pixelBuffer[offset+3] = 255
		}
	}

	if r.showUI {
		r.drawMetersSDL(st.Values)
	}

	return Frame{
		Status: status,
		Present: func(status string) error {
			if status != "" && status != state.windowTitle && state.window != nil {
				state.window.SetTitle(status)
				state.windowTitle = status
			}
			if err := state.texture.Update(nil, unsafe.Pointer(&state.pixelBuffer[0]), state.pitch); err != nil {
				return err
			}
			if err := state.renderer.Clear(); err != nil {
				return err
			}
			if err := state.renderer.Copy(state.texture, nil, nil); err != nil {
				return err
			}
			state.renderer.Present()
			for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
				switch event.(type) {
				case *sdl.QuitEvent:
					return ErrRendererQuit
				}
			}
			return nil
		},
	}
}

// drawMetersSDL paints one white bar per channel along the bottom edge.
func (r *Renderer) drawMetersSDL(values []float64) {
	if len(values) == 0 {
		return
	}
	state := r.sdl
	barHeight := r.height / 4
	colWidth := r.width / len(values)
	if colWidth < 2 || barHeight < 1 {
		return
	}
	for i, v := range values {
		h := int(clamp01(v) * float64(barHeight))
		x0 := i*colWidth + 1
		x1 := (i+1)*colWidth - 1
		for y := r.height - h; y < r.height; y++ {
			for x := x0; x < x1; x++ {
				offset := y*state.pitch + x*4
				state.pixelBuffer[offset+0] = 255
				state.pixelBuffer[offset+1] = 255
				state.pixelBuffer[offset+2] = 255
			}
		}
	}
}

func (r *Renderer) resizeSDL() {
	if r.sdl == nil {
		return
	}
	r.sdl.width = 0
	r.sdl.height = 0
}

func (r *Renderer) closeSDL() error {
	if r.sdl == nil {
		return nil
	}
	if r.sdl.texture != nil {
		r.sdl.texture.Destroy()
		r.sdl.texture = nil
	}
	if r.sdl.renderer != nil {
		r.sdl.renderer.Destroy()
		r.sdl.renderer = nil
	}
	if r.sdl.window != nil {
		r.sdl.window.Destroy()
		r.sdl.window = nil
	}
	r.sdl.pixelBuffer = nil
	if r.sdl.initialized {
		sdl.QuitSubSystem(sdl.INIT_VIDEO)
		r.sdl.initialized = false
	}
	r.sdl = nil
	return nil
}

func (r *Renderer) windowedSDL() bool {
	return r.sdl != nil
}

// SupportsSDL reports whether the SDL backend is compiled in.
func SupportsSDL() bool { return true }
