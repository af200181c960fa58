// Package anim drives the robot base-joint sweep.
package anim

import (
	"math"
	"time"
)

const (
	// Step is the angle applied per tick during a sweep, in radians (0.9°).
	Step = math.Pi / 200

	// Sweep is the total angle of one sweep, in radians.
	Sweep = math.Pi / 2
)

// State is the animator state.
type State int

const (
	Idle State = iota
	RotatingLeft
	RotatingRight
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case RotatingLeft:
		return "rotating-left"
	case RotatingRight:
		return "rotating-right"
	default:
		return "unknown"
	}
}

// Trigger requests a sweep in one direction.
type Trigger int

const (
	TriggerLeft Trigger = iota
	TriggerRight
)

// String returns the trigger name.
func (t Trigger) String() string {
	if t == TriggerLeft {
		return "left"
	}
	return "right"
}

// Mode selects how the per-tick step is derived.
type Mode int

const (
	// ModeFrame applies a fixed step every tick. Sweep duration follows the
	// display refresh rate.
	ModeFrame Mode = iota

	// ModeTime derives the step from elapsed time, so a sweep lasts
	// Sweep/speed seconds at any refresh rate.
	ModeTime
)

// ParseMode accepts "frame" or "time".
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "frame":
		return ModeFrame, true
	case "time":
		return ModeTime, true
	}
	return ModeFrame, false
}

func (m Mode) String() string {
	if m == ModeTime {
		return "time"
	}
	return "frame"
}

// Joint is a single rotatable axis of a scene node.
type Joint interface {
	Rotate(delta float64)
}

// Animator owns the sweep state machine and its angle accumulator.
// It is not safe for concurrent use; all calls belong on the render thread.
type Animator struct {
	state       State
	accumulated float64

	step  float64
	sweep float64
	mode  Mode
	speed float64 // radians per second, ModeTime only

	joint Joint
}

// Option configures an Animator.
type Option func(*Animator)

// WithStep sets the fixed per-tick step in radians.
func WithStep(rad float64) Option {
	return func(a *Animator) {
		if rad > 0 {
			a.step = rad
		}
	}
}

// WithSweep sets the sweep angle in radians.
func WithSweep(rad float64) Option {
	return func(a *Animator) {
		if rad > 0 {
			a.sweep = rad
		}
	}
}

// WithMode sets the step mode.
func WithMode(m Mode) Option {
	return func(a *Animator) { a.mode = m }
}

// WithSpeed sets the angular speed in radians per second for ModeTime.
func WithSpeed(radPerSec float64) Option {
	return func(a *Animator) {
		if radPerSec > 0 {
			a.speed = radPerSec
		}
	}
}

// New creates an idle, unbound animator. Triggers still change state
// before Bind; nothing rotates until a joint is attached.
func New(opts ...Option) *Animator {
	a := &Animator{
		state: Idle,
		step:  Step,
		sweep: Sweep,
		mode:  ModeFrame,
		speed: Step * 60,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Bind sets the joint the animator rotates. Call once, when the model
// carrying the joint has been composed into the scene.
func (a *Animator) Bind(j Joint) {
	a.joint = j
}

// Bound reports whether a joint is bound.
func (a *Animator) Bound() bool {
	return a.joint != nil
}

// State returns the current state.
func (a *Animator) State() State {
	return a.state
}

// Accumulated returns the angle swept so far in the current sweep.
func (a *Animator) Accumulated() float64 {
	return a.accumulated
}

// Trigger starts a sweep if the animator is idle. Triggers arriving
// mid-sweep are dropped. Reports whether the state changed.
func (a *Animator) Trigger(t Trigger) bool {
	if a.state != Idle {
		return false
	}
	switch t {
	case TriggerLeft:
		a.state = RotatingLeft
	case TriggerRight:
		a.state = RotatingRight
	default:
		return false
	}
	return true
}

// Tick advances the sweep by one display refresh. dt is only consulted in
// ModeTime.
func (a *Animator) Tick(dt time.Duration) {
	if a.joint == nil || a.state == Idle {
		return
	}

	step := a.stepFor(dt)
	a.accumulated += step

	// The increment that would overshoot is dropped, never clamped.
	if a.accumulated > a.sweep {
		a.state = Idle
		a.accumulated = 0
		return
	}

	if a.state == RotatingLeft {
		a.joint.Rotate(-step)
	} else {
		a.joint.Rotate(step)
	}
}

func (a *Animator) stepFor(dt time.Duration) float64 {
	if a.mode == ModeTime {
		if dt <= 0 {
			return 0
		}
		return a.speed * dt.Seconds()
	}
	return a.step
}
