package binding

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/soar/inputmap/internal/physical"
)

// Assignment is the persisted pair of bindings for one function.
type Assignment struct {
	Keyboard physical.Key    `json:"keyboardBinding"`
	Gamepad  physical.Button `json:"gamepadBinding"`
}

// Config is the persisted shape of the input settings.
type Config struct {
	ActiveButtonSet  int                   `json:"activeButtonSetIndex"`
	PreferredGamepad string                `json:"preferredGamepadName,omitempty"`
	Bindings         map[string]Assignment `json:"bindingsByFunction"`
}

// ToConfig captures the current bindings together with the device settings
// owned by the caller.
func (t *Table) ToConfig(buttonSet int, preferredGamepad string) Config {
	cfg := Config{
		ActiveButtonSet:  buttonSet,
		PreferredGamepad: preferredGamepad,
		Bindings:         make(map[string]Assignment, len(t.functions)),
	}
	for _, f := range t.functions {
		cfg.Bindings[f.Name] = Assignment{Keyboard: f.Key, Gamepad: f.Button}
	}
	return cfg
}

// FromConfig resets the table to its defaults and applies cfg.Bindings in
// table order through the swap rule. A bad entry only affects its own
// function, which keeps whatever binding the defaults and earlier entries left
// it; the remaining entries still apply. The device fields of cfg are left to
// the caller.
func (t *Table) FromConfig(cfg Config) error {
	t.resetBindings()
	defer t.Rebuild()

	var errs []error
	claimedKeys := make(map[physical.Key]string)
	claimedButtons := make(map[physical.Button]string)
	for _, f := range t.functions {
		a, ok := cfg.Bindings[f.Name]
		if !ok {
			continue
		}
		if a.Keyboard == "" {
			errs = append(errs, fmt.Errorf("%q: empty keyboard binding: %w", f.Name, ErrMalformedConfig))
		} else if holder, taken := claimedKeys[a.Keyboard]; taken {
			errs = append(errs, fmt.Errorf("%q: key %q already claimed by %q: %w", f.Name, a.Keyboard, holder, ErrMalformedConfig))
		} else {
			swap(t, f, a.Keyboard, keySlot)
			claimedKeys[a.Keyboard] = f.Name
		}
		if !a.Gamepad.Valid() {
			errs = append(errs, fmt.Errorf("%q: gamepad binding %d out of range: %w", f.Name, a.Gamepad, ErrMalformedConfig))
		} else if holder, taken := claimedButtons[a.Gamepad]; taken {
			errs = append(errs, fmt.Errorf("%q: button %d already claimed by %q: %w", f.Name, a.Gamepad, holder, ErrMalformedConfig))
		} else {
			swap(t, f, a.Gamepad, buttonSlot)
			claimedButtons[a.Gamepad] = f.Name
		}
	}

	for _, name := range slices.Sorted(maps.Keys(cfg.Bindings)) {
		if i, ok := t.index[name]; !ok || t.functions[i].Name != name {
			errs = append(errs, fmt.Errorf("%q: %w: %w", name, ErrUnknownFunction, ErrMalformedConfig))
		}
	}
	return errors.Join(errs...)
}
