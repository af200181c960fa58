// Package router turns keyboard and button input into sweep triggers.
package router

import (
	"github.com/Faultbox/armview/internal/anim"
	"github.com/Faultbox/armview/internal/hud"
)

// Target receives triggers. *anim.Animator satisfies it.
type Target interface {
	Trigger(t anim.Trigger) bool
}

// Router maps key names and button IDs to triggers. Every source goes
// through the target's idle gate; nothing is queued.
type Router struct {
	target  Target
	keys    map[string]anim.Trigger
	buttons map[hud.ButtonID]anim.Trigger
}

// Bindings lists key names (as SDL names them, e.g. "Left") per direction.
type Bindings struct {
	Left  []string
	Right []string
}

// DefaultBindings maps the arrow keys.
func DefaultBindings() Bindings {
	return Bindings{Left: []string{"Left"}, Right: []string{"Right"}}
}

// New creates a router feeding target.
func New(target Target, b Bindings) *Router {
	r := &Router{
		target: target,
		keys:   make(map[string]anim.Trigger, len(b.Left)+len(b.Right)),
		buttons: map[hud.ButtonID]anim.Trigger{
			hud.ButtonLeft:  anim.TriggerLeft,
			hud.ButtonRight: anim.TriggerRight,
		},
	}
	for _, k := range b.Left {
		r.keys[k] = anim.TriggerLeft
	}
	for _, k := range b.Right {
		r.keys[k] = anim.TriggerRight
	}
	return r
}

// Key routes a key press. Reports whether it started a sweep.
func (r *Router) Key(name string) bool {
	t, ok := r.keys[name]
	if !ok {
		return false
	}
	return r.target.Trigger(t)
}

// Button routes a button click. Reports whether it started a sweep.
func (r *Router) Button(id hud.ButtonID) bool {
	t, ok := r.buttons[id]
	if !ok {
		return false
	}
	return r.target.Trigger(t)
}

// Bound reports whether name is bound to a trigger.
func (r *Router) Bound(name string) bool {
	_, ok := r.keys[name]
	return ok
}
