// Package frame orchestrates Motion and the Portal renderer each tick (F,
// §4.9): poll input, step physics, rasterize, present, sleep. Grounded on
// the teacher's Game.Run/Game.frame shape (delta-time tracking, an FPS
// counter sampled once a second, structured zap logging), adapted from an
// ImGui/OpenGL frame to a raw-framebuffer SDL2 present.
package frame

import (
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/sectorview/internal/config"
	"github.com/Faultbox/sectorview/internal/logger"
	"github.com/Faultbox/sectorview/internal/motion"
	"github.com/Faultbox/sectorview/internal/platform"
	"github.com/Faultbox/sectorview/internal/portal"
	"github.com/Faultbox/sectorview/internal/texture"
	"github.com/Faultbox/sectorview/internal/world"
)

// Mouse-to-orientation scale factors. §4.8 measures pitch in
// tangent-of-half-fov units rather than radians, so these are tuned to
// feel right at the default FOV rather than derived from a physical unit
// conversion.
const (
	yawSensitivity   = 0.0022
	pitchSensitivity = 0.0022
)

// tickInterval is the frame loop's fixed sleep, matching §4.9 step 4
// ("present the framebuffer; sleep ~10 ms") literally rather than pacing
// to a target frame rate.
const tickInterval = 10 * time.Millisecond

// Loop ties the world, texture store, physics, renderer, and platform
// display/input together into the per-frame tick.
type Loop struct {
	world   *world.World
	store   *texture.Store
	display *platform.Display
	input   *platform.Input
	opts    portal.Options
	fb      *portal.Framebuffer

	showMap bool

	frameCount int
	fps        float64
	fpsTimer   time.Time
}

// New builds a frame loop against an already-loaded, verified world and a
// warm texture store, creating the platform display from gfx.
func New(w *world.World, store *texture.Store, gfx config.GraphicsConfig) (*Loop, error) {
	display, err := platform.NewDisplay(platform.Config{
		Title:      "sectorview",
		Width:      gfx.Width,
		Height:     gfx.Height,
		Fullscreen: gfx.Fullscreen,
		VSync:      gfx.VSync,
	})
	if err != nil {
		return nil, err
	}

	return &Loop{
		world:   w,
		store:   store,
		display: display,
		input:   platform.NewInput(),
		opts:    portal.Options{Width: gfx.Width, Height: gfx.Height, HFov: gfx.HFov, VFov: gfx.VFov},
		fb:      portal.NewFramebuffer(gfx.Width, gfx.Height),
	}, nil
}

// Close releases the platform display.
func (l *Loop) Close() {
	l.display.Close()
}

// Run drives the loop until the window-close signal or the quit key is
// observed (§4.9 exit condition).
func (l *Loop) Run() {
	lastTime := time.Now()
	l.fpsTimer = time.Now()

	logger.Info("starting frame loop")

	for {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if l.input.Update() {
			break
		}
		if l.input.KeyDown(sdl.SCANCODE_Q) {
			break
		}

		l.tick(dt)
		l.trackFPS()

		time.Sleep(tickInterval)
	}

	logger.Info("frame loop stopped")
}

// tick runs one iteration of F: M with the current velocity, then
// input-derived acceleration, then P, then present (§4.9 steps 1-3).
func (l *Loop) tick(dt float64) {
	motion.Step(l.world, dt)
	motion.ApplyInput(l.world, l.pollMovement(), dt)

	if l.input.KeyPressedThisFrame(sdl.SCANCODE_TAB) {
		l.showMap = !l.showMap
	}

	pitch := motion.ViewPitch(&l.world.Player)

	l.fb.Clear(0, 0, 0)
	portal.Render(l.world, l.store, l.opts, pitch, l.fb)

	if err := l.display.Present(l.fb.Pix); err != nil {
		logger.Warn("present failed", zap.Error(err))
	}
}

// pollMovement derives a motion.Input from currently-held keys and the
// frame's accumulated mouse delta (§4.9 step 2, §6 keyboard bindings).
func (l *Loop) pollMovement() motion.Input {
	var in motion.Input

	if l.input.KeyDown(sdl.SCANCODE_W) {
		in.Forward += 1
	}
	if l.input.KeyDown(sdl.SCANCODE_S) {
		in.Forward -= 1
	}
	if l.input.KeyDown(sdl.SCANCODE_D) {
		in.Strafe += 1
	}
	if l.input.KeyDown(sdl.SCANCODE_A) {
		in.Strafe -= 1
	}
	in.Jump = l.input.KeyDown(sdl.SCANCODE_SPACE)
	in.Duck = l.input.KeyDown(sdl.SCANCODE_LCTRL) || l.input.KeyDown(sdl.SCANCODE_RCTRL)

	dx, dy := l.input.MouseDelta()
	in.YawDelta = float64(dx) * yawSensitivity
	in.PitchDelta = -float64(dy) * pitchSensitivity

	return in
}

// trackFPS samples a once-a-second frame-rate counter and logs it at
// debug level, the same cadence the teacher's game loop uses.
func (l *Loop) trackFPS() {
	l.frameCount++
	if time.Since(l.fpsTimer) >= time.Second {
		l.fps = float64(l.frameCount)
		l.frameCount = 0
		l.fpsTimer = time.Now()
		logger.Debug("fps", zap.Float64("count", l.fps))
	}
}
