// Package hud lays out and hit-tests the on-screen move buttons.
package hud

import (
	"github.com/Faultbox/armview/internal/engine/scene"
)

// ButtonID identifies an on-screen button.
type ButtonID int

const (
	ButtonNone ButtonID = iota
	ButtonLeft
	ButtonRight
)

// String returns the element name the button is known by.
func (b ButtonID) String() string {
	switch b {
	case ButtonLeft:
		return "leftButton"
	case ButtonRight:
		return "rightButton"
	default:
		return "none"
	}
}

// Rect is an axis-aligned rectangle in window points, origin top-left.
type Rect struct {
	X, Y, W, H float32
}

// Contains reports whether (x, y) lies inside r.
func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Button is one laid-out button.
type Button struct {
	ID     ButtonID
	Bounds Rect
}

// Style holds sizes and colours for the button bar.
type Style struct {
	Width, Height float32
	Gap           float32
	Margin        float32 // distance from the bottom edge

	Fill    scene.Color
	Hover   scene.Color
	Pressed scene.Color
	Arrow   scene.Color
}

// DefaultStyle returns the stock button bar look.
func DefaultStyle() Style {
	return Style{
		Width:   72,
		Height:  48,
		Gap:     16,
		Margin:  24,
		Fill:    scene.Color{0.22, 0.22, 0.25},
		Hover:   scene.Color{0.32, 0.32, 0.36},
		Pressed: scene.Color{0.15, 0.45, 0.75},
		Arrow:   scene.Color{0.95, 0.95, 0.95},
	}
}

// Panel tracks button layout and pointer state. A click fires when the
// pointer is pressed and released over the same button.
type Panel struct {
	style   Style
	buttons [2]Button

	hover   ButtonID
	pressed ButtonID
}

// NewPanel creates a panel laid out for a window of width x height points.
func NewPanel(style Style, width, height int) *Panel {
	p := &Panel{style: style}
	p.Layout(width, height)
	return p
}

// Layout centres the two buttons along the bottom edge.
func (p *Panel) Layout(width, height int) {
	s := p.style
	total := 2*s.Width + s.Gap
	x := (float32(width) - total) / 2
	y := float32(height) - s.Margin - s.Height

	p.buttons[0] = Button{ID: ButtonLeft, Bounds: Rect{X: x, Y: y, W: s.Width, H: s.Height}}
	p.buttons[1] = Button{ID: ButtonRight, Bounds: Rect{X: x + s.Width + s.Gap, Y: y, W: s.Width, H: s.Height}}
}

// Buttons returns the laid-out buttons.
func (p *Panel) Buttons() []Button {
	return p.buttons[:]
}

// HitTest returns the button under (x, y), or ButtonNone.
func (p *Panel) HitTest(x, y float32) ButtonID {
	for _, b := range p.buttons {
		if b.Bounds.Contains(x, y) {
			return b.ID
		}
	}
	return ButtonNone
}

// PointerMove updates hover state.
func (p *Panel) PointerMove(x, y float32) {
	p.hover = p.HitTest(x, y)
}

// PointerDown starts a press. Reports whether a button captured it, in
// which case the press must not reach the camera controls.
func (p *Panel) PointerDown(x, y float32) bool {
	p.pressed = p.HitTest(x, y)
	return p.pressed != ButtonNone
}

// PointerUp ends a press and returns the clicked button, if any.
func (p *Panel) PointerUp(x, y float32) ButtonID {
	pressed := p.pressed
	p.pressed = ButtonNone
	if pressed != ButtonNone && p.HitTest(x, y) == pressed {
		return pressed
	}
	return ButtonNone
}

// Vertices returns triangle-list geometry in window points: a filled
// rectangle and an arrow per button.
func (p *Panel) Vertices() []scene.ColorVertex {
	vertices := make([]scene.ColorVertex, 0, 2*9)
	for _, b := range p.buttons {
		fill := p.style.Fill
		switch {
		case b.ID == p.pressed:
			fill = p.style.Pressed
		case b.ID == p.hover:
			fill = p.style.Hover
		}
		vertices = appendRect(vertices, b.Bounds, fill)
		vertices = appendArrow(vertices, b.Bounds, b.ID == ButtonLeft, p.style.Arrow)
	}
	return vertices
}

func appendRect(v []scene.ColorVertex, r Rect, c scene.Color) []scene.ColorVertex {
	x0, y0, x1, y1 := r.X, r.Y, r.X+r.W, r.Y+r.H
	return append(v,
		vtx(x0, y0, c), vtx(x1, y0, c), vtx(x1, y1, c),
		vtx(x0, y0, c), vtx(x1, y1, c), vtx(x0, y1, c),
	)
}

func appendArrow(v []scene.ColorVertex, r Rect, left bool, c scene.Color) []scene.ColorVertex {
	cx, cy := r.X+r.W/2, r.Y+r.H/2
	hw, hh := r.H*0.25, r.H*0.3
	if left {
		return append(v, vtx(cx-hw, cy, c), vtx(cx+hw, cy-hh, c), vtx(cx+hw, cy+hh, c))
	}
	return append(v, vtx(cx+hw, cy, c), vtx(cx-hw, cy+hh, c), vtx(cx-hw, cy-hh, c))
}

func vtx(x, y float32, c scene.Color) scene.ColorVertex {
	return scene.ColorVertex{X: x, Y: y, R: c[0], G: c[1], B: c[2]}
}
