package binding

import (
	"fmt"
	"slices"

	"github.com/soar/inputmap/internal/physical"
)

// Slot selects which of a function's two bindings an operation addresses.
type Slot int

const (
	SlotKeyboard Slot = iota
	SlotGamepad
)

func (s Slot) String() string {
	if s == SlotKeyboard {
		return "keyboard"
	}
	return "gamepad"
}

// ParseSlot converts "keyboard" or "gamepad" to a Slot.
func ParseSlot(s string) (Slot, error) {
	switch s {
	case "keyboard":
		return SlotKeyboard, nil
	case "gamepad":
		return SlotGamepad, nil
	}
	return 0, fmt.Errorf("slot %q: %w", s, ErrInvalidBinding)
}

// Definition describes a logical function before it enters a Table.
type Definition struct {
	Name    string
	Title   string
	Key     physical.Key
	Button  physical.Button
	Aliases []string
}

// Function is a logical function with its current and default bindings.
// Values returned by a Table are copies; mutate through the Table.
type Function struct {
	Name          string
	Title         string
	Key           physical.Key
	Button        physical.Button
	DefaultKey    physical.Key
	DefaultButton physical.Button
	Aliases       []string
	BuiltIn       bool
}

func newFunction(d Definition, builtIn bool) *Function {
	title := d.Title
	if title == "" {
		title = d.Name
	}
	return &Function{
		Name:          d.Name,
		Title:         title,
		Key:           d.Key,
		Button:        d.Button,
		DefaultKey:    d.Key,
		DefaultButton: d.Button,
		Aliases:       slices.Clone(d.Aliases),
		BuiltIn:       builtIn,
	}
}

func (f *Function) clone() Function {
	c := *f
	c.Aliases = slices.Clone(f.Aliases)
	return c
}

// Names returns the function name followed by its aliases.
func (f Function) Names() []string {
	return append([]string{f.Name}, f.Aliases...)
}
