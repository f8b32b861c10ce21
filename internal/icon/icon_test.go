package icon

import (
	"testing"

	"github.com/soar/inputmap/internal/binding"
	"github.com/soar/inputmap/internal/physical"
)

func TestResolve(t *testing.T) {
	tbl, err := binding.NewTable()
	if err != nil {
		t.Fatal(err)
	}
	l := DefaultLayout()

	tests := []struct {
		name string
		fn   string
		kind physical.Kind
		set  int
		want int
	}{
		{"gamepad set 0", binding.Confirm, physical.Gamepad, SetXbox, 16},
		{"gamepad set offset", binding.Cancel, physical.Gamepad, SetPlayStation, 16 + 17 + 1},
		{"gamepad set out of range", binding.Cancel, physical.Gamepad, 3, l.Unknown},
		{"keyboard letter", binding.Confirm, physical.Keyboard, SetSwitch, 100 + 25},
		{"arrow borrows set 0 dpad", binding.Up, physical.Keyboard, SetSwitch, 16 + int(physical.ButtonUp)},
		{"unknown function", "speculative", physical.Keyboard, 0, l.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l.ResolveName(tbl, tt.fn, tt.kind, tt.set); got != tt.want {
				t.Fatalf("ResolveName(%s) = %d, want %d", tt.fn, got, tt.want)
			}
		})
	}
}

func TestUnknownKeyFallsBack(t *testing.T) {
	l := DefaultLayout()
	if got := l.Keyboard("Keypad Hash"); got != l.Unknown {
		t.Fatalf("unknown key = %d", got)
	}
	if got := l.Gamepad(physical.Button(40), 0); got != l.Unknown {
		t.Fatalf("unknown button = %d", got)
	}
	if got := l.Keyboard("F12"); got == l.Unknown {
		t.Fatal("F12 should have a glyph")
	}
}
