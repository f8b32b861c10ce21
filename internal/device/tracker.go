package device

import "github.com/soar/inputmap/internal/physical"

// Info identifies a connected gamepad. Index is assigned by the platform and
// may change across reconnects; Name is the durable selector.
type Info struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	// ButtonSet is the glyph set suggested by the device family.
	ButtonSet int `json:"buttonSet"`
}

// Tracker remembers the preferred gamepad, the active one, and which device
// kind produced the most recent edge.
type Tracker struct {
	preferred string
	devices   []Info
	active    Info
	hasActive bool
	lastUsed  physical.Kind
}

// NewTracker returns a tracker preferring the gamepad named preferred.
func NewTracker(preferred string) *Tracker {
	return &Tracker{preferred: preferred, lastUsed: physical.Keyboard}
}

// Preferred returns the preferred gamepad name, "" when none.
func (t *Tracker) Preferred() string {
	return t.preferred
}

// SetPreferred changes the preferred name and re-resolves the active device
// against the last known device list. It reports whether the active device
// changed.
func (t *Tracker) SetPreferred(name string) bool {
	t.preferred = name
	return t.Resolve(t.devices)
}

// Devices returns the last device list passed to Resolve.
func (t *Tracker) Devices() []Info {
	return t.devices
}

// Resolve selects the active gamepad from the connected devices: the
// preferred name wins, otherwise the current device is kept while it is still
// connected, otherwise the first device. It reports whether the selection
// changed.
func (t *Tracker) Resolve(devices []Info) bool {
	t.devices = append(t.devices[:0:0], devices...)
	prev, had := t.active, t.hasActive

	next, ok := t.pick(devices)
	t.active, t.hasActive = next, ok
	return had != ok || prev.Index != next.Index || prev.Name != next.Name
}

func (t *Tracker) pick(devices []Info) (Info, bool) {
	if t.preferred != "" {
		for _, d := range devices {
			if d.Name == t.preferred {
				return d, true
			}
		}
	}
	if t.hasActive {
		for _, d := range devices {
			if d.Index == t.active.Index && d.Name == t.active.Name {
				return d, true
			}
		}
	}
	if len(devices) > 0 {
		return devices[0], true
	}
	return Info{}, false
}

// Active returns the active gamepad.
func (t *Tracker) Active() (Info, bool) {
	return t.active, t.hasActive
}

// Touch records an edge from kind. It reports whether the last used kind
// flipped.
func (t *Tracker) Touch(kind physical.Kind) bool {
	if t.lastUsed == kind {
		return false
	}
	t.lastUsed = kind
	return true
}

// LastUsed returns the device kind that produced the most recent edge.
func (t *Tracker) LastUsed() physical.Kind {
	return t.lastUsed
}
