// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType classifies a processed event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventMouseWheel
)

// MouseButton identifies a pointer button.
type MouseButton uint8

const (
	MouseLeft   MouseButton = sdl.BUTTON_LEFT
	MouseMiddle MouseButton = sdl.BUTTON_MIDDLE
	MouseRight  MouseButton = sdl.BUTTON_RIGHT
)

// Event is one processed input event. Key holds the SDL key name
// ("Left", "Escape", "F12"). Pointer positions are in window points.
type Event struct {
	Type   EventType
	Key    string
	Repeat bool

	Width  int
	Height int

	X, Y   float32
	DX, DY float32
	Button MouseButton
	Wheel  float32
}

// Input collects the events of one frame.
type Input struct {
	events []Event
	quit   bool
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update drains the SDL event queue. Returns true once a quit was
// requested.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			i.quit = true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			if e.Type != sdl.KEYDOWN {
				continue
			}
			i.events = append(i.events, Event{
				Type:   EventKeyDown,
				Key:    sdl.GetKeyName(e.Keysym.Sym),
				Repeat: e.Repeat != 0,
			})

		case *sdl.MouseMotionEvent:
			i.events = append(i.events, Event{
				Type: EventMouseMove,
				X:    float32(e.X),
				Y:    float32(e.Y),
				DX:   float32(e.XRel),
				DY:   float32(e.YRel),
			})

		case *sdl.MouseButtonEvent:
			ev := Event{
				X:      float32(e.X),
				Y:      float32(e.Y),
				Button: MouseButton(e.Button),
			}
			switch e.Type {
			case sdl.MOUSEBUTTONDOWN:
				ev.Type = EventMouseDown
			case sdl.MOUSEBUTTONUP:
				ev.Type = EventMouseUp
			default:
				continue
			}
			i.events = append(i.events, ev)

		case *sdl.MouseWheelEvent:
			dy := float32(e.Y)
			if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
				dy = -dy
			}
			i.events = append(i.events, Event{Type: EventMouseWheel, Wheel: dy})
		}
	}

	return i.quit
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}
