package router

import (
	"testing"

	"github.com/Faultbox/armview/internal/anim"
	"github.com/Faultbox/armview/internal/hud"
)

type nopJoint struct{}

func (nopJoint) Rotate(float64) {}

func boundAnimator() *anim.Animator {
	a := anim.New()
	a.Bind(nopJoint{})
	return a
}

func TestKeyRouting(t *testing.T) {
	tests := []struct {
		key  string
		want anim.State
		ok   bool
	}{
		{"Left", anim.RotatingLeft, true},
		{"Right", anim.RotatingRight, true},
		{"Up", anim.Idle, false},
		{"", anim.Idle, false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			a := boundAnimator()
			r := New(a, DefaultBindings())

			if got := r.Key(tt.key); got != tt.ok {
				t.Errorf("Key(%q) = %v, want %v", tt.key, got, tt.ok)
			}
			if a.State() != tt.want {
				t.Errorf("state = %s, want %s", a.State(), tt.want)
			}
		})
	}
}

func TestButtonRouting(t *testing.T) {
	tests := []struct {
		id   hud.ButtonID
		want anim.State
	}{
		{hud.ButtonLeft, anim.RotatingLeft},
		{hud.ButtonRight, anim.RotatingRight},
		{hud.ButtonNone, anim.Idle},
	}

	for _, tt := range tests {
		t.Run(tt.id.String(), func(t *testing.T) {
			a := anim.New()
			r := New(a, DefaultBindings())
			r.Button(tt.id)
			if a.State() != tt.want {
				t.Errorf("state = %s, want %s", a.State(), tt.want)
			}
		})
	}
}

func TestBothSourcesShareIdleGate(t *testing.T) {
	a := boundAnimator()
	r := New(a, DefaultBindings())

	if !r.Button(hud.ButtonLeft) {
		t.Fatal("expected left button to start a sweep")
	}
	if r.Key("Right") {
		t.Error("key trigger must be ignored mid-sweep")
	}
	if r.Button(hud.ButtonRight) {
		t.Error("button trigger must be ignored mid-sweep")
	}
	if a.State() != anim.RotatingLeft {
		t.Errorf("state = %s, want rotating-left", a.State())
	}
}

func TestCustomBindings(t *testing.T) {
	a := anim.New()
	r := New(a, Bindings{Left: []string{"A", "Left"}, Right: []string{"D"}})

	if !r.Bound("A") || !r.Bound("D") || r.Bound("Right") {
		t.Error("bindings not applied as configured")
	}
	r.Key("D")
	if a.State() != anim.RotatingRight {
		t.Errorf("state = %s, want rotating-right", a.State())
	}
}
