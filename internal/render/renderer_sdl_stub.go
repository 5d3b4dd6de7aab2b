//go:build !sdl

package render

import (
	"errors"
)

type sdlState struct{}

func (r *Renderer) initSDL(width, height int) error {
	return errors.New("SDL backend not enabled; rebuild with -tags sdl")
}

func (r *Renderer) renderSDL(st State, p *Params, fn sceneFunc, status string) Frame {
	return Frame{
		Status: "SDL backend unavailable (build without -tags sdl)",
		Present: func(string) error {
			return ErrRendererQuit
		},
	}
}

func (r *Renderer) resizeSDL() {}

func (r *Renderer) closeSDL() error { return nil }

func (r *Renderer) windowedSDL() bool { return false }

// SupportsSDL reports whether the SDL backend is compiled in.
func SupportsSDL() bool { return false }
