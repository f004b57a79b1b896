package platform

import "github.com/veandco/go-sdl2/sdl"

// EventType discriminates a processed input event, generalized from the
// teacher's input event enum to the key bindings this renderer needs (§6
// "Keyboard").
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
)

// Event is a single processed input event from the last Update call.
type Event struct {
	Type          EventType
	Key           sdl.Scancode
	Width, Height int
}

// Input polls SDL2 events once per frame and tracks held-key state plus
// accumulated relative mouse motion, for WASD movement (level-triggered)
// and mouse-look (edge-triggered per frame) respectively.
type Input struct {
	events           []Event
	mouseDX, mouseDY int32
}

// NewInput creates an input poller. Relative mouse mode (required for
// unbounded yaw/pitch look) is enabled by Display.NewDisplay.
func NewInput() *Input {
	return &Input{events: make([]Event, 0, 16)}
}

// Update drains the SDL2 event queue, refreshing the per-frame event list
// and accumulated mouse delta. It returns true if a quit was requested
// (window close button; Q is handled by the caller via KeyDown).
func (i *Input) Update() bool {
	i.events = i.events[:0]
	i.mouseDX, i.mouseDY = 0, 0
	quit := false

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			quit = true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED {
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN {
				i.events = append(i.events, Event{Type: EventKeyDown, Key: e.Keysym.Scancode})
			} else if e.Type == sdl.KEYUP {
				i.events = append(i.events, Event{Type: EventKeyUp, Key: e.Keysym.Scancode})
			}

		case *sdl.MouseMotionEvent:
			i.mouseDX += e.XRel
			i.mouseDY += e.YRel
		}
	}

	return quit
}

// Events returns the events observed during the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// MouseDelta returns the relative mouse motion accumulated since the last
// Update.
func (i *Input) MouseDelta() (int32, int32) {
	return i.mouseDX, i.mouseDY
}

// KeyDown reports whether scancode is currently held, independent of the
// per-frame event queue: WASD movement and duck are level-triggered, not
// edge-triggered (§6).
func (i *Input) KeyDown(scancode sdl.Scancode) bool {
	state := sdl.GetKeyboardState()
	return state[scancode] != 0
}

// KeyPressedThisFrame reports whether scancode had a key-down edge during
// the last Update, for one-shot bindings like TAB's map overlay toggle.
func (i *Input) KeyPressedThisFrame(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}
