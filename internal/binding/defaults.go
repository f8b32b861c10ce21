package binding

import "github.com/soar/inputmap/internal/physical"

// Built-in function names the rest of an application may depend on.
const (
	Confirm  = "confirm"
	Cancel   = "cancel"
	Dash     = "dash"
	Menu     = "menu"
	PageUp   = "pageup"
	PageDown = "pagedown"
	Up       = "up"
	Down     = "down"
	Left     = "left"
	Right    = "right"
)

// Reserved names are static failsafes. They never enter the table.
const (
	FailsafeEscape = "failsafe_escape"
	FailsafeTab    = "failsafe_tab"
)

// IsReserved reports whether name is a static failsafe name.
func IsReserved(name string) bool {
	return name == FailsafeEscape || name == FailsafeTab
}

// Defaults returns the built-in definitions in display order.
func Defaults() []Definition {
	return []Definition{
		{Name: Confirm, Title: "Confirm", Key: "Z", Button: physical.ButtonA, Aliases: []string{"ok"}},
		{Name: Cancel, Title: "Cancel", Key: "X", Button: physical.ButtonB, Aliases: []string{"back"}},
		{Name: Dash, Title: "Dash", Key: "Left Shift", Button: physical.ButtonX, Aliases: []string{"shift"}},
		{Name: Menu, Title: "Menu", Key: "A", Button: physical.ButtonY},
		{Name: PageUp, Title: "Page Up", Key: "Q", Button: physical.ButtonLB},
		{Name: PageDown, Title: "Page Down", Key: "W", Button: physical.ButtonRB},
		{Name: Up, Title: "Up", Key: physical.KeyUp, Button: physical.ButtonUp},
		{Name: Down, Title: "Down", Key: physical.KeyDown, Button: physical.ButtonDown},
		{Name: Left, Title: "Left", Key: physical.KeyLeft, Button: physical.ButtonLeft},
		{Name: Right, Title: "Right", Key: physical.KeyRight, Button: physical.ButtonRight},
	}
}
