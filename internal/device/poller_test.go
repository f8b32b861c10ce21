package device

import (
	"reflect"
	"testing"

	"github.com/soar/inputmap/internal/physical"
)

func pad(pressed ...physical.Button) GamepadSnapshot {
	s := GamepadSnapshot{Index: 0, Name: "Test Pad", Connected: true, Buttons: make([]bool, physical.StandardButtonCount)}
	for _, b := range pressed {
		s.Buttons[b] = true
	}
	return s
}

func TestKeyboardEdges(t *testing.T) {
	p := NewPoller(0)

	if !p.KeyDown("Z") {
		t.Fatal("first KeyDown should produce an edge")
	}
	if p.KeyDown("Z") {
		t.Fatal("auto-repeat KeyDown should be ignored")
	}
	f := p.Poll(GamepadSnapshot{})
	if !f.KeyHeld("Z") {
		t.Fatal("Z should be held")
	}
	want := []physical.KeyEdge{{Key: "Z", Edge: physical.Press}}
	if !reflect.DeepEqual(f.KeyEdges, want) {
		t.Fatalf("edges = %v", f.KeyEdges)
	}

	p.KeyUp("Z")
	f = p.Poll(GamepadSnapshot{})
	if f.KeyHeld("Z") {
		t.Fatal("Z should be released")
	}
	if len(f.KeyEdges) != 1 || f.KeyEdges[0].Edge != physical.Release {
		t.Fatalf("edges = %v", f.KeyEdges)
	}
}

func TestKeyRepressWithinOneFrameStaysHeld(t *testing.T) {
	p := NewPoller(0)
	p.KeyDown("Z")
	p.KeyUp("Z")
	p.KeyDown("Z")

	f := p.Poll(GamepadSnapshot{})
	if !f.KeyHeld("Z") {
		t.Fatal("Z should be held")
	}
	if len(f.KeyEdges) != 1 || f.KeyEdges[0] != (physical.KeyEdge{Key: "Z", Edge: physical.Press}) {
		t.Fatalf("edges = %v", f.KeyEdges)
	}
	for range 3 {
		f = p.Poll(GamepadSnapshot{})
		if !f.KeyHeld("Z") || len(f.KeyEdges) != 0 {
			t.Fatalf("re-pressed Z should stay held without edges: held=%v edges=%v", f.KeyHeld("Z"), f.KeyEdges)
		}
	}

	p.KeyUp("Z")
	f = p.Poll(GamepadSnapshot{})
	if f.KeyHeld("Z") || len(f.KeyEdges) != 1 || f.KeyEdges[0].Edge != physical.Release {
		t.Fatalf("Z should release: held=%v edges=%v", f.KeyHeld("Z"), f.KeyEdges)
	}
}

func TestKeyTapWithinOneFrameIsNotLost(t *testing.T) {
	p := NewPoller(0)
	p.KeyDown("X")
	p.KeyUp("X")

	f := p.Poll(GamepadSnapshot{})
	if !f.KeyHeld("X") {
		t.Fatal("tapped key should be held for its frame")
	}
	f = p.Poll(GamepadSnapshot{})
	if f.KeyHeld("X") {
		t.Fatal("tapped key should be released on the next frame")
	}
	if len(f.KeyEdges) != 1 || f.KeyEdges[0] != (physical.KeyEdge{Key: "X", Edge: physical.Release}) {
		t.Fatalf("edges = %v", f.KeyEdges)
	}
}

func TestGamepadFirstTransitionWins(t *testing.T) {
	p := NewPoller(0)
	p.Poll(pad())

	f := p.Poll(pad(physical.ButtonY, physical.ButtonA))
	if !f.HasFirst || f.First != (physical.ButtonEdge{Button: physical.ButtonA, Edge: physical.Press}) {
		t.Fatalf("first = %+v (has=%v)", f.First, f.HasFirst)
	}
	if len(f.ButtonEdges) != 2 {
		t.Fatalf("all transitions should be reported, got %v", f.ButtonEdges)
	}

	f = p.Poll(pad(physical.ButtonY, physical.ButtonA))
	if f.HasFirst || len(f.ButtonEdges) != 0 {
		t.Fatalf("steady state produced edges: %v", f.ButtonEdges)
	}

	f = p.Poll(pad(physical.ButtonA))
	if f.First != (physical.ButtonEdge{Button: physical.ButtonY, Edge: physical.Release}) {
		t.Fatalf("first = %+v", f.First)
	}
}

func TestStickSynthesizesDpad(t *testing.T) {
	tests := []struct {
		name string
		axes []float64
		want physical.Button
		held bool
	}{
		{"left stick up", []float64{0, -0.8}, physical.ButtonUp, true},
		{"left stick down", []float64{0, 0.8}, physical.ButtonDown, true},
		{"left stick left", []float64{-0.9, 0}, physical.ButtonLeft, true},
		{"right stick right", []float64{0, 0, 0.6, 0}, physical.ButtonRight, true},
		{"inside deadzone", []float64{0.5, 0}, physical.ButtonRight, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPoller(DefaultStickDeadzone)
			s := pad()
			s.Axes = tt.axes
			f := p.Poll(s)
			if f.ButtonHeld(tt.want) != tt.held {
				t.Fatalf("button %d held = %v, want %v", tt.want, !tt.held, tt.held)
			}
		})
	}
}

func TestDisconnectReleasesEverything(t *testing.T) {
	p := NewPoller(0)
	p.Poll(pad(physical.ButtonB))

	f := p.Poll(GamepadSnapshot{})
	if f.ButtonHeld(physical.ButtonB) {
		t.Fatal("disconnected pad should read released")
	}
	if !f.HasFirst || f.First.Edge != physical.Release {
		t.Fatalf("expected release edge, got %+v", f.First)
	}
}

func TestResetGamepadDiffsFromReleased(t *testing.T) {
	p := NewPoller(0)
	p.Poll(pad(physical.ButtonA))
	p.ResetGamepad()

	f := p.Poll(pad(physical.ButtonA))
	if !f.HasFirst || f.First.Edge != physical.Press {
		t.Fatalf("expected a fresh press edge, got %+v", f.First)
	}
}
