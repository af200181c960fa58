package hud

import "testing"

func TestLayoutCentresButtons(t *testing.T) {
	p := NewPanel(DefaultStyle(), 1280, 720)
	buttons := p.Buttons()

	left, right := buttons[0].Bounds, buttons[1].Bounds
	if buttons[0].ID != ButtonLeft || buttons[1].ID != ButtonRight {
		t.Fatalf("unexpected button order: %v, %v", buttons[0].ID, buttons[1].ID)
	}
	if left.X+left.W >= right.X {
		t.Error("buttons overlap")
	}
	mid := (left.X + right.X + right.W) / 2
	if mid != 640 {
		t.Errorf("bar centred at %f, want 640", mid)
	}
	if left.Y+left.H != 720-DefaultStyle().Margin {
		t.Errorf("bar bottom at %f", left.Y+left.H)
	}
}

func TestHitTest(t *testing.T) {
	p := NewPanel(DefaultStyle(), 800, 600)
	l := p.Buttons()[0].Bounds
	r := p.Buttons()[1].Bounds

	tests := []struct {
		name string
		x, y float32
		want ButtonID
	}{
		{"left centre", l.X + l.W/2, l.Y + l.H/2, ButtonLeft},
		{"right centre", r.X + r.W/2, r.Y + r.H/2, ButtonRight},
		{"gap", l.X + l.W + 1, l.Y + 1, ButtonNone},
		{"top of window", 400, 10, ButtonNone},
		{"right edge exclusive", l.X + l.W, l.Y + 1, ButtonNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.HitTest(tt.x, tt.y); got != tt.want {
				t.Errorf("HitTest(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestClickRequiresPressAndReleaseOnSameButton(t *testing.T) {
	p := NewPanel(DefaultStyle(), 800, 600)
	l := p.Buttons()[0].Bounds
	r := p.Buttons()[1].Bounds
	lx, ly := l.X+1, l.Y+1
	rx, ry := r.X+1, r.Y+1

	if !p.PointerDown(lx, ly) {
		t.Fatal("press on a button must be captured")
	}
	if got := p.PointerUp(lx, ly); got != ButtonLeft {
		t.Errorf("click = %v, want leftButton", got)
	}

	p.PointerDown(lx, ly)
	if got := p.PointerUp(rx, ry); got != ButtonNone {
		t.Errorf("press left, release right = %v, want none", got)
	}

	if p.PointerDown(400, 10) {
		t.Error("press outside the bar must not be captured")
	}
	if got := p.PointerUp(rx, ry); got != ButtonNone {
		t.Errorf("release without press = %v, want none", got)
	}
}

func TestRelayoutOnResize(t *testing.T) {
	p := NewPanel(DefaultStyle(), 800, 600)
	before := p.Buttons()[0].Bounds
	p.Layout(1600, 1200)
	after := p.Buttons()[0].Bounds
	if before == after {
		t.Error("layout did not follow the new window size")
	}
}

func TestVerticesHighlightState(t *testing.T) {
	style := DefaultStyle()
	p := NewPanel(style, 800, 600)

	v := p.Vertices()
	if len(v) != 18 {
		t.Fatalf("expected 18 vertices (2 quads + 2 arrows), got %d", len(v))
	}
	if v[0].R != style.Fill[0] {
		t.Error("idle button should use the fill colour")
	}

	l := p.Buttons()[0].Bounds
	p.PointerMove(l.X+1, l.Y+1)
	if got := p.Vertices()[0].R; got != style.Hover[0] {
		t.Errorf("hovered button colour = %v, want hover", got)
	}
	p.PointerDown(l.X+1, l.Y+1)
	if got := p.Vertices()[0].R; got != style.Pressed[0] {
		t.Errorf("pressed button colour = %v, want pressed", got)
	}
}
