// Package platform wraps SDL2 window/renderer creation and input polling
// for the frame loop. Unlike the teacher's OpenGL-context window, this
// renderer blits a CPU-rasterized RGB framebuffer straight to a streaming
// texture, since the portal renderer produces pixels directly rather than
// geometry for a GPU pipeline.
package platform

import (
	"fmt"
	"runtime"

	"github.com/veandco/go-sdl2/sdl"
)

func init() {
	// SDL2 calls must be made from the thread that initialized the video
	// subsystem.
	runtime.LockOSThread()
}

// Config holds window/renderer configuration.
type Config struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	VSync      bool
}

// Display owns the SDL2 window, renderer, and the streaming texture the
// framebuffer is blitted through each frame.
type Display struct {
	config   Config
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
}

// NewDisplay creates the window, accelerated renderer, and a
// TEXTUREACCESS_STREAMING texture sized to cfg.Width x cfg.Height in
// RGB24, matching portal.Framebuffer's byte layout exactly so Present can
// upload it with no conversion.
func NewDisplay(cfg Config) (*Display, error) {
	d := &Display{config: cfg}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	flags := uint32(sdl.WINDOW_SHOWN)
	if cfg.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN
	}

	var err error
	d.window, err = sdl.CreateWindow(
		cfg.Title,
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(cfg.Width), int32(cfg.Height),
		flags,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	rendererFlags := uint32(sdl.RENDERER_ACCELERATED)
	if cfg.VSync {
		rendererFlags |= sdl.RENDERER_PRESENTVSYNC
	}
	d.renderer, err = sdl.CreateRenderer(d.window, -1, rendererFlags)
	if err != nil {
		d.window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateRenderer failed: %w", err)
	}

	d.texture, err = d.renderer.CreateTexture(
		sdl.PIXELFORMAT_RGB24,
		sdl.TEXTUREACCESS_STREAMING,
		int32(cfg.Width), int32(cfg.Height),
	)
	if err != nil {
		d.renderer.Destroy()
		d.window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateTexture failed: %w", err)
	}

	if err := sdl.SetRelativeMouseMode(true); err != nil {
		d.texture.Destroy()
		d.renderer.Destroy()
		d.window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("SDL_SetRelativeMouseMode failed: %w", err)
	}

	return d, nil
}

// Present uploads a row-major RGB24 framebuffer (portal.Framebuffer.Pix)
// to the streaming texture and blits it to the whole window.
func (d *Display) Present(pix []byte) error {
	pitch := d.config.Width * 3
	if err := d.texture.Update(nil, pix, pitch); err != nil {
		return fmt.Errorf("texture update: %w", err)
	}
	if err := d.renderer.Clear(); err != nil {
		return fmt.Errorf("renderer clear: %w", err)
	}
	if err := d.renderer.Copy(d.texture, nil, nil); err != nil {
		return fmt.Errorf("renderer copy: %w", err)
	}
	d.renderer.Present()
	return nil
}

// Size returns the configured framebuffer dimensions.
func (d *Display) Size() (int, int) {
	return d.config.Width, d.config.Height
}

// Close tears down the texture, renderer, window, and SDL2 itself.
func (d *Display) Close() {
	if d.texture != nil {
		d.texture.Destroy()
	}
	if d.renderer != nil {
		d.renderer.Destroy()
	}
	if d.window != nil {
		d.window.Destroy()
	}
	sdl.Quit()
}
