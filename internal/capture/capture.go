// Package capture implements the one-shot "press a key to bind it" protocol.
//
// A Capturer holds at most one armed request. The engine offers it the
// frame's keyboard edges and the gamepad's first transition; a matching edge
// disarms the request and runs its handler synchronously, inside the frame
// update, before logical state is aggregated.
package capture

import "github.com/soar/inputmap/internal/physical"

// AnyButton arms a gamepad capture for whichever button transitions first.
const AnyButton physical.Button = -1

// State is the position of the capture state machine.
type State int

const (
	Idle State = iota
	ArmedForPress
	ArmedForRelease
)

func (s State) String() string {
	switch s {
	case ArmedForPress:
		return "armed_press"
	case ArmedForRelease:
		return "armed_release"
	}
	return "idle"
}

// Event is the captured input handed to a Handler.
type Event struct {
	Kind   physical.Kind
	Key    physical.Key
	Button physical.Button
	Edge   physical.Edge
}

// Handler receives a captured event. It may arm a new request.
type Handler func(Event)

// Request is an armed capture.
type Request struct {
	Kind    physical.Kind
	Edge    physical.Edge
	Button  physical.Button // gamepad only; AnyButton matches all
	Handler Handler
}

// Capturer holds the pending request and the inputs a fired capture has
// consumed until they are released.
type Capturer struct {
	pending *Request
	keys    map[physical.Key]bool
	buttons map[physical.Button]bool
	fired   int
}

// New returns an idle capturer.
func New() *Capturer {
	return &Capturer{
		keys:    make(map[physical.Key]bool),
		buttons: make(map[physical.Button]bool),
	}
}

// ArmKeyboard arms for the next key-down, replacing any pending request.
func (c *Capturer) ArmKeyboard(h Handler) {
	c.pending = &Request{Kind: physical.Keyboard, Edge: physical.Press, Handler: h}
}

// ArmGamepad arms for the next gamepad transition of kind edge on button,
// replacing any pending request.
func (c *Capturer) ArmGamepad(edge physical.Edge, button physical.Button, h Handler) {
	c.pending = &Request{Kind: physical.Gamepad, Edge: edge, Button: button, Handler: h}
}

// Cancel drops the pending request without running its handler.
func (c *Capturer) Cancel() {
	c.pending = nil
}

// Pending returns the armed request, if any.
func (c *Capturer) Pending() (Request, bool) {
	if c.pending == nil {
		return Request{}, false
	}
	return *c.pending, true
}

// State reports the state machine position.
func (c *Capturer) State() State {
	switch {
	case c.pending == nil:
		return Idle
	case c.pending.Edge == physical.Release:
		return ArmedForRelease
	default:
		return ArmedForPress
	}
}

// Fired returns how many captures have completed.
func (c *Capturer) Fired() int {
	return c.fired
}

// OfferKey offers a keyboard edge. It reports whether a capture fired. The
// captured key is hidden from aggregation until released, except Escape,
// which also flows through so the caller can treat it as cancel.
func (c *Capturer) OfferKey(e physical.KeyEdge) bool {
	if e.Edge == physical.Release {
		delete(c.keys, e.Key)
	}
	req := c.pending
	if req == nil || req.Kind != physical.Keyboard || req.Edge != e.Edge {
		return false
	}
	c.pending = nil
	if e.Edge == physical.Press && e.Key != physical.KeyEscape {
		c.keys[e.Key] = true
	}
	c.fire(req, Event{Kind: physical.Keyboard, Key: e.Key, Edge: e.Edge})
	return true
}

// OfferButton offers the first gamepad transition of a frame. It reports
// whether a capture fired. A captured press is hidden from aggregation until
// released.
func (c *Capturer) OfferButton(e physical.ButtonEdge) bool {
	req := c.pending
	if req == nil || req.Kind != physical.Gamepad || req.Edge != e.Edge {
		return false
	}
	if req.Button != AnyButton && req.Button != e.Button {
		return false
	}
	c.pending = nil
	if e.Edge == physical.Press {
		c.buttons[e.Button] = true
	}
	c.fire(req, Event{Kind: physical.Gamepad, Button: e.Button, Edge: e.Edge})
	return true
}

// ReleaseButton clears suppression of b once it is physically released.
func (c *Capturer) ReleaseButton(b physical.Button) {
	delete(c.buttons, b)
}

// ReleaseAllButtons clears every gamepad suppression. Call it when the active
// gamepad changes, since the old device will never report the releases.
func (c *Capturer) ReleaseAllButtons() {
	clear(c.buttons)
}

func (c *Capturer) fire(req *Request, ev Event) {
	c.fired++
	if req.Handler != nil {
		req.Handler(ev)
	}
}

// KeySuppressed reports whether k was consumed by a capture and is still held.
func (c *Capturer) KeySuppressed(k physical.Key) bool {
	return c.keys[k]
}

// ButtonSuppressed reports whether b was consumed by a capture and is still
// held.
func (c *Capturer) ButtonSuppressed(b physical.Button) bool {
	return c.buttons[b]
}
