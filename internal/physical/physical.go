// Package physical holds the vocabulary shared by every layer that touches
// raw input: keyboard key names, standard gamepad button indices, device
// kinds and edge directions.
package physical

// Key is a stable keyboard key name. Names follow SDL scancode naming
// ("Z", "Return", "Up", "Left Shift") so they survive keyboard layout changes.
type Key string

// Common keys referenced by defaults, failsafes and the capture protocol.
const (
	KeyEscape Key = "Escape"
	KeyTab    Key = "Tab"
	KeyReturn Key = "Return"
	KeyUp     Key = "Up"
	KeyDown   Key = "Down"
	KeyLeft   Key = "Left"
	KeyRight  Key = "Right"
)

// IsArrow reports whether k is one of the four arrow keys.
func (k Key) IsArrow() bool {
	switch k {
	case KeyUp, KeyDown, KeyLeft, KeyRight:
		return true
	}
	return false
}

// Button is a gamepad button index in the standard layout.
type Button int

// Standard layout indices.
const (
	ButtonA Button = iota // Cross
	ButtonB               // Circle
	ButtonX               // Square
	ButtonY               // Triangle
	ButtonLB
	ButtonRB
	ButtonLT
	ButtonRT
	ButtonSelect
	ButtonStart
	ButtonL3
	ButtonR3
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
	ButtonHome

	StandardButtonCount = int(ButtonHome) + 1
)

// Valid reports whether b addresses a standard layout button.
func (b Button) Valid() bool {
	return b >= 0 && int(b) < StandardButtonCount
}

// Kind identifies a device class.
type Kind int

const (
	Keyboard Kind = iota
	Gamepad

	// Auto stands for whichever kind produced the most recent edge.
	Auto Kind = -1
)

func (k Kind) String() string {
	switch k {
	case Keyboard:
		return "keyboard"
	case Gamepad:
		return "gamepad"
	case Auto:
		return "auto"
	}
	return "unknown"
}

// ParseKind converts a Kind name back to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "keyboard":
		return Keyboard, true
	case "gamepad":
		return Gamepad, true
	case "auto", "":
		return Auto, true
	}
	return 0, false
}

// Edge is the direction of a button transition.
type Edge int

const (
	Press Edge = iota
	Release
)

func (e Edge) String() string {
	if e == Press {
		return "press"
	}
	return "release"
}

// KeyEdge is a keyboard transition.
type KeyEdge struct {
	Key  Key
	Edge Edge
}

// ButtonEdge is a gamepad transition.
type ButtonEdge struct {
	Button Button
	Edge   Edge
}
