// Package icon maps a logical function's current binding to an index in the
// glyph atlas used to draw key and button prompts.
package icon

import (
	"strconv"

	"github.com/soar/inputmap/internal/binding"
	"github.com/soar/inputmap/internal/physical"
)

// Layout describes where glyphs live in the atlas. The atlas stores one
// complete gamepad glyph set per selectable button set, back to back, starting
// at GamepadBase.
type Layout struct {
	GamepadBase   int `mapstructure:"gamepad_base" toml:"gamepad_base"`
	ButtonSetSize int `mapstructure:"button_set_size" toml:"button_set_size"`
	ButtonSets    int `mapstructure:"button_sets" toml:"button_sets"`
	Unknown       int `mapstructure:"unknown" toml:"unknown"`
}

// Button set indices for the shipped glyph sets.
const (
	SetXbox = iota
	SetPlayStation
	SetSwitch
)

// DefaultLayout matches the shipped atlas.
func DefaultLayout() Layout {
	return Layout{
		GamepadBase:   16,
		ButtonSetSize: physical.StandardButtonCount,
		ButtonSets:    3,
		Unknown:       0,
	}
}

// keyboardGlyphs holds atlas indices for keys with a dedicated glyph. Arrow
// keys are absent: they borrow the d-pad glyphs of button set 0.
var keyboardGlyphs = func() map[physical.Key]int {
	m := make(map[physical.Key]int, 64)
	next := 100
	add := func(keys ...physical.Key) {
		for _, k := range keys {
			m[k] = next
			next++
		}
	}
	for c := 'A'; c <= 'Z'; c++ {
		add(physical.Key(string(c)))
	}
	for c := '0'; c <= '9'; c++ {
		add(physical.Key(string(c)))
	}
	add(physical.KeyReturn, "Space", physical.KeyEscape, physical.KeyTab,
		"Left Shift", "Right Shift", "Backspace", "Left Ctrl", "Right Ctrl",
		"Left Alt", "Right Alt", "PageUp", "PageDown", "Insert", "Delete",
		"Home", "End")
	for i := 1; i <= 12; i++ {
		add(physical.Key("F" + strconv.Itoa(i)))
	}
	return m
}()

// Keyboard returns the atlas index for key.
func (l Layout) Keyboard(key physical.Key) int {
	if key.IsArrow() {
		return l.Gamepad(arrowButton(key), 0)
	}
	if i, ok := keyboardGlyphs[key]; ok {
		return i
	}
	return l.Unknown
}

// Gamepad returns the atlas index for b drawn with the given button set.
func (l Layout) Gamepad(b physical.Button, set int) int {
	if b < 0 || int(b) >= l.ButtonSetSize || set < 0 || set >= l.ButtonSets {
		return l.Unknown
	}
	return l.GamepadBase + l.ButtonSetSize*set + int(b)
}

// Resolve returns the atlas index for fn's binding on kind.
func (l Layout) Resolve(fn binding.Function, kind physical.Kind, set int) int {
	switch kind {
	case physical.Keyboard:
		return l.Keyboard(fn.Key)
	case physical.Gamepad:
		return l.Gamepad(fn.Button, set)
	}
	return l.Unknown
}

// ResolveName looks name up in tbl and resolves it. Unknown names give the
// fallback glyph.
func (l Layout) ResolveName(tbl *binding.Table, name string, kind physical.Kind, set int) int {
	fn, err := tbl.Get(name)
	if err != nil {
		return l.Unknown
	}
	return l.Resolve(fn, kind, set)
}

func arrowButton(k physical.Key) physical.Button {
	switch k {
	case physical.KeyUp:
		return physical.ButtonUp
	case physical.KeyDown:
		return physical.ButtonDown
	case physical.KeyLeft:
		return physical.ButtonLeft
	default:
		return physical.ButtonRight
	}
}
