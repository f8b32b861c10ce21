// Package logical derives per-function held/triggered/repeated state from a
// frame of physical input and the current binding table.
package logical

import (
	"github.com/soar/inputmap/internal/binding"
	"github.com/soar/inputmap/internal/device"
	"github.com/soar/inputmap/internal/physical"
)

// Repeat timing defaults, in frames.
const (
	DefaultRepeatDelay    = 24
	DefaultRepeatInterval = 6
)

// Static is a reserved name bound to a fixed key regardless of configuration.
type Static struct {
	Name string
	Key  physical.Key
}

// Failsafe names. They cannot be rebound or reset away.
const (
	FailsafeEscape = binding.FailsafeEscape
	FailsafeTab    = binding.FailsafeTab
)

var statics = []Static{
	{Name: FailsafeEscape, Key: physical.KeyEscape},
	{Name: FailsafeTab, Key: physical.KeyTab},
}

// Statics returns the reserved bindings.
func Statics() []Static {
	return append([]Static(nil), statics...)
}

// Mask hides physical inputs from aggregation, e.g. a press consumed by a
// remap capture. Static names ignore the mask.
type Mask interface {
	KeySuppressed(physical.Key) bool
	ButtonSuppressed(physical.Button) bool
}

// State is the logical state of one name.
type State struct {
	Held bool `json:"held"`
	// Duration counts frames since the press edge; 0 on the trigger frame.
	Duration int `json:"duration"`
}

// Aggregator holds logical state for every name seen so far.
type Aggregator struct {
	delay    int
	interval int
	states   map[string]*State
	held     map[string]bool
}

// NewAggregator returns an aggregator with the given repeat timing. Non-positive
// values select the defaults.
func NewAggregator(delay, interval int) *Aggregator {
	if delay <= 0 {
		delay = DefaultRepeatDelay
	}
	if interval <= 0 {
		interval = DefaultRepeatInterval
	}
	return &Aggregator{
		delay:    delay,
		interval: interval,
		states:   make(map[string]*State),
		held:     make(map[string]bool),
	}
}

// Update advances every logical state by one frame.
func (a *Aggregator) Update(f *device.Frame, tbl *binding.Table, mask Mask) {
	clear(a.held)
	for k, down := range f.Keys {
		if !down || (mask != nil && mask.KeySuppressed(k)) {
			continue
		}
		for _, name := range tbl.NamesForKey(k) {
			a.held[name] = true
		}
	}
	for i, down := range f.Buttons {
		b := physical.Button(i)
		if !down || (mask != nil && mask.ButtonSuppressed(b)) {
			continue
		}
		for _, name := range tbl.NamesForButton(b) {
			a.held[name] = true
		}
	}
	for _, s := range statics {
		if f.KeyHeld(s.Key) {
			a.held[s.Name] = true
		}
	}

	for name, st := range a.states {
		if !a.held[name] {
			st.Held, st.Duration = false, 0
		}
	}
	for name := range a.held {
		st, ok := a.states[name]
		if !ok {
			st = &State{}
			a.states[name] = st
		}
		if st.Held {
			st.Duration++
		} else {
			st.Held, st.Duration = true, 0
		}
	}
}

// Reset releases every name.
func (a *Aggregator) Reset() {
	for _, st := range a.states {
		st.Held, st.Duration = false, 0
	}
}

// State returns the state of name. Unknown names read as released.
func (a *Aggregator) State(name string) State {
	if st, ok := a.states[name]; ok {
		return *st
	}
	return State{}
}

// IsHeld reports whether name is currently held.
func (a *Aggregator) IsHeld(name string) bool {
	return a.State(name).Held
}

// IsTriggered reports whether name was pressed this frame.
func (a *Aggregator) IsTriggered(name string) bool {
	st := a.State(name)
	return st.Held && st.Duration == 0
}

// IsRepeated reports whether name was pressed this frame or is due for a
// repeat pulse: after delay frames, then every interval frames.
func (a *Aggregator) IsRepeated(name string) bool {
	st := a.State(name)
	if !st.Held {
		return false
	}
	if st.Duration == 0 {
		return true
	}
	return st.Duration >= a.delay && (st.Duration-a.delay)%a.interval == 0
}

// Duration returns how many frames name has been held past its trigger frame.
func (a *Aggregator) Duration(name string) int {
	return a.State(name).Duration
}

// HeldNames returns the names held this frame.
func (a *Aggregator) HeldNames() []string {
	out := make([]string, 0, len(a.held))
	for name := range a.held {
		out = append(out, name)
	}
	return out
}
