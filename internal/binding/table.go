// Package binding owns the mapping from logical function names to the
// physical key and gamepad button that trigger them.
//
// A Table keeps each slot injective: rebinding a function to a value held by
// another function swaps the two, so every function stays reachable.
package binding

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/soar/inputmap/internal/physical"
)

// Table is the ordered set of logical functions. It is not safe for
// concurrent use; the engine drives it from the frame goroutine.
type Table struct {
	functions []*Function
	index     map[string]int // names and aliases -> position
	byKey     map[physical.Key][]string
	byButton  map[physical.Button][]string
}

// NewTable builds a table holding the built-in functions followed by custom.
// Custom definitions that would break name uniqueness or slot injectivity are
// skipped; the returned error joins one ErrMalformedConfig per skipped entry
// and the table is usable either way.
func NewTable(custom ...Definition) (*Table, error) {
	t := &Table{}
	for _, d := range Defaults() {
		t.functions = append(t.functions, newFunction(d, true))
	}
	t.Rebuild()

	var errs []error
	for _, d := range custom {
		if err := t.add(d); err != nil {
			errs = append(errs, err)
		}
	}
	return t, errors.Join(errs...)
}

func (t *Table) add(d Definition) error {
	d.Name = strings.ToLower(strings.TrimSpace(d.Name))
	if d.Name == "" {
		return fmt.Errorf("custom function with empty name: %w", ErrMalformedConfig)
	}
	if IsReserved(d.Name) {
		return fmt.Errorf("custom function %q: name is reserved: %w", d.Name, ErrMalformedConfig)
	}
	if _, taken := t.index[d.Name]; taken {
		return fmt.Errorf("custom function %q: name already defined: %w", d.Name, ErrMalformedConfig)
	}
	d.Aliases = slices.Clone(d.Aliases)
	for i, a := range d.Aliases {
		a = strings.ToLower(strings.TrimSpace(a))
		if _, taken := t.index[a]; taken || a == "" || a == d.Name || IsReserved(a) {
			return fmt.Errorf("custom function %q: alias %q unusable: %w", d.Name, a, ErrMalformedConfig)
		}
		d.Aliases[i] = a
	}
	if d.Key == "" || !d.Button.Valid() {
		return fmt.Errorf("custom function %q: incomplete bindings: %w", d.Name, ErrMalformedConfig)
	}
	for _, f := range t.functions {
		if f.DefaultKey == d.Key || f.Key == d.Key {
			return fmt.Errorf("custom function %q: key %q already bound to %q: %w", d.Name, d.Key, f.Name, ErrMalformedConfig)
		}
		if f.DefaultButton == d.Button || f.Button == d.Button {
			return fmt.Errorf("custom function %q: button %d already bound to %q: %w", d.Name, d.Button, f.Name, ErrMalformedConfig)
		}
	}
	t.functions = append(t.functions, newFunction(d, false))
	t.Rebuild()
	return nil
}

// Rebuild recomputes every derived lookup from the function list. It is
// idempotent and runs at the end of each mutating operation.
func (t *Table) Rebuild() {
	t.index = make(map[string]int, len(t.functions)*2)
	t.byKey = make(map[physical.Key][]string, len(t.functions))
	t.byButton = make(map[physical.Button][]string, len(t.functions))
	for i, f := range t.functions {
		for _, name := range f.Names() {
			t.index[name] = i
			t.byKey[f.Key] = append(t.byKey[f.Key], name)
			t.byButton[f.Button] = append(t.byButton[f.Button], name)
		}
	}
}

// Len returns the number of functions.
func (t *Table) Len() int {
	return len(t.functions)
}

// Get returns the function registered under name or one of its aliases.
func (t *Table) Get(name string) (Function, error) {
	f, err := t.lookup(name)
	if err != nil {
		return Function{}, err
	}
	return f.clone(), nil
}

// ByOrdinal returns the i-th function in insertion order.
func (t *Table) ByOrdinal(i int) (Function, error) {
	if i < 0 || i >= len(t.functions) {
		return Function{}, fmt.Errorf("ordinal %d of %d: %w", i, len(t.functions), ErrIndexOutOfRange)
	}
	return t.functions[i].clone(), nil
}

// Functions returns copies of all functions in insertion order.
func (t *Table) Functions() []Function {
	out := make([]Function, len(t.functions))
	for i, f := range t.functions {
		out[i] = f.clone()
	}
	return out
}

// NamesForKey returns every name, aliases included, bound to key.
func (t *Table) NamesForKey(key physical.Key) []string {
	return t.byKey[key]
}

// NamesForButton returns every name, aliases included, bound to b.
func (t *Table) NamesForButton(b physical.Button) []string {
	return t.byButton[b]
}

func (t *Table) lookup(name string) (*Function, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownFunction)
	}
	return t.functions[i], nil
}

// RebindKey binds name's keyboard slot to key, swapping with any holder.
func (t *Table) RebindKey(name string, key physical.Key) error {
	if key == "" {
		return fmt.Errorf("empty key for %q: %w", name, ErrInvalidBinding)
	}
	f, err := t.lookup(name)
	if err != nil {
		return err
	}
	swap(t, f, key, keySlot)
	t.Rebuild()
	return nil
}

// RebindButton binds name's gamepad slot to b, swapping with any holder.
func (t *Table) RebindButton(name string, b physical.Button) error {
	if !b.Valid() {
		return fmt.Errorf("button %d for %q: %w", b, name, ErrInvalidBinding)
	}
	f, err := t.lookup(name)
	if err != nil {
		return err
	}
	swap(t, f, b, buttonSlot)
	t.Rebuild()
	return nil
}

// ResetAll restores every function to its default bindings.
func (t *Table) ResetAll() {
	t.resetBindings()
	t.Rebuild()
}

func (t *Table) resetBindings() {
	for _, f := range t.functions {
		f.Key = f.DefaultKey
		f.Button = f.DefaultButton
	}
}

func keySlot(f *Function) *physical.Key       { return &f.Key }
func buttonSlot(f *Function) *physical.Button { return &f.Button }

// swap assigns value to f's slot. Whoever held value before takes f's old
// value, keeping the slot injective.
func swap[V comparable](t *Table, f *Function, value V, slot func(*Function) *V) {
	old := *slot(f)
	if old == value {
		return
	}
	for _, d := range t.functions {
		if d != f && *slot(d) == value {
			*slot(d) = old
			break
		}
	}
	*slot(f) = value
}
