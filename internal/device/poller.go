// Package device turns raw keyboard events and gamepad readings into
// per-frame physical state and edges, and tracks which device is active.
package device

import (
	"maps"
	"slices"

	"github.com/soar/inputmap/internal/physical"
)

// DefaultStickDeadzone is the stick deflection a synthetic d-pad press needs.
const DefaultStickDeadzone = 0.5

// GamepadSnapshot is one frame's raw reading of the active gamepad.
// Axes are normalized to -1..1 with negative Y pointing up; axes 0/1 are the
// left stick and 2/3 the right stick.
type GamepadSnapshot struct {
	Index     int
	Name      string
	Connected bool
	Buttons   []bool
	Axes      []float64
}

// Frame is the physical state produced by one Poll.
type Frame struct {
	Keys        map[physical.Key]bool
	KeyEdges    []physical.KeyEdge
	Buttons     []bool
	ButtonEdges []physical.ButtonEdge

	// First is the lowest-index gamepad transition of the frame. Only it is
	// offered to capture and device tracking.
	First    physical.ButtonEdge
	HasFirst bool
}

// KeyHeld reports whether k was held during the frame.
func (f *Frame) KeyHeld(k physical.Key) bool {
	return f.Keys[k]
}

// ButtonHeld reports whether b was held during the frame.
func (f *Frame) ButtonHeld(b physical.Button) bool {
	return b >= 0 && int(b) < len(f.Buttons) && f.Buttons[b]
}

// Poller accumulates keyboard events between frames and diffs the active
// gamepad against the previous frame.
type Poller struct {
	deadzone float64

	held      map[physical.Key]bool
	pressedAt map[physical.Key]bool // pressed since the last Poll
	deferred  []physical.Key        // released in the frame they were pressed
	keyEdges  []physical.KeyEdge

	prevButtons []bool
}

// NewPoller returns a poller using deadzone for stick synthesis. A
// non-positive deadzone selects DefaultStickDeadzone.
func NewPoller(deadzone float64) *Poller {
	if deadzone <= 0 {
		deadzone = DefaultStickDeadzone
	}
	return &Poller{
		deadzone:  deadzone,
		held:      make(map[physical.Key]bool),
		pressedAt: make(map[physical.Key]bool),
	}
}

// KeyDown records a key-down event. Auto-repeat of a held key is ignored, and
// a re-press of a tapped key cancels its pending release.
// It reports whether the event produced a press edge.
func (p *Poller) KeyDown(k physical.Key) bool {
	if p.held[k] {
		if i := slices.Index(p.deferred, k); i >= 0 {
			p.deferred = slices.Delete(p.deferred, i, i+1)
		}
		return false
	}
	p.held[k] = true
	p.pressedAt[k] = true
	p.keyEdges = append(p.keyEdges, physical.KeyEdge{Key: k, Edge: physical.Press})
	return true
}

// KeyUp records a key-up event. A key released in the same frame it was
// pressed stays held for that frame and is released by the next Poll.
func (p *Poller) KeyUp(k physical.Key) {
	if !p.held[k] {
		return
	}
	if p.pressedAt[k] {
		p.deferred = append(p.deferred, k)
		return
	}
	delete(p.held, k)
	p.keyEdges = append(p.keyEdges, physical.KeyEdge{Key: k, Edge: physical.Release})
}

// ReleaseAllKeys drops every held key, e.g. when the window loses focus.
func (p *Poller) ReleaseAllKeys() {
	for k := range p.held {
		p.keyEdges = append(p.keyEdges, physical.KeyEdge{Key: k, Edge: physical.Release})
	}
	clear(p.held)
	clear(p.pressedAt)
	p.deferred = nil
}

// ResetGamepad forgets the previous gamepad reading. Call it when the active
// device changes so the new device is diffed against an all-released state.
func (p *Poller) ResetGamepad() {
	p.prevButtons = nil
}

// Poll closes the current frame: it returns the keyboard edges gathered since
// the last call and the gamepad edges between snap and the previous reading.
func (p *Poller) Poll(snap GamepadSnapshot) Frame {
	f := Frame{
		Keys:     maps.Clone(p.held),
		KeyEdges: p.keyEdges,
		Buttons:  p.buttons(snap),
	}
	p.keyEdges = nil
	clear(p.pressedAt)
	for _, k := range p.deferred {
		if p.held[k] {
			delete(p.held, k)
			p.keyEdges = append(p.keyEdges, physical.KeyEdge{Key: k, Edge: physical.Release})
		}
	}
	p.deferred = nil

	n := max(len(f.Buttons), len(p.prevButtons))
	for i := range n {
		was := i < len(p.prevButtons) && p.prevButtons[i]
		is := i < len(f.Buttons) && f.Buttons[i]
		if was == is {
			continue
		}
		e := physical.ButtonEdge{Button: physical.Button(i), Edge: physical.Release}
		if is {
			e.Edge = physical.Press
		}
		if !f.HasFirst {
			f.First, f.HasFirst = e, true
		}
		f.ButtonEdges = append(f.ButtonEdges, e)
	}
	p.prevButtons = f.Buttons
	return f
}

// buttons builds the digital vector for snap, with stick deflection folded
// into the d-pad indices.
func (p *Poller) buttons(snap GamepadSnapshot) []bool {
	out := make([]bool, max(len(snap.Buttons), physical.StandardButtonCount))
	if !snap.Connected {
		return out
	}
	copy(out, snap.Buttons)
	for stick := range 2 {
		x := axis(snap.Axes, 2*stick)
		y := axis(snap.Axes, 2*stick+1)
		if x < -p.deadzone {
			out[physical.ButtonLeft] = true
		}
		if x > p.deadzone {
			out[physical.ButtonRight] = true
		}
		if y < -p.deadzone {
			out[physical.ButtonUp] = true
		}
		if y > p.deadzone {
			out[physical.ButtonDown] = true
		}
	}
	return out
}

func axis(axes []float64, i int) float64 {
	if i < len(axes) {
		return axes[i]
	}
	return 0
}
