package capture

import (
	"testing"

	"github.com/soar/inputmap/internal/physical"
)

func press(k physical.Key) physical.KeyEdge {
	return physical.KeyEdge{Key: k, Edge: physical.Press}
}

func TestKeyboardCaptureIsOneShot(t *testing.T) {
	c := New()
	var got []physical.Key
	c.ArmKeyboard(func(ev Event) { got = append(got, ev.Key) })
	if c.State() != ArmedForPress {
		t.Fatalf("state = %v", c.State())
	}

	if !c.OfferKey(press("M")) {
		t.Fatal("first key-down should be captured")
	}
	if c.OfferKey(press("N")) {
		t.Fatal("second key-down must flow through")
	}
	if len(got) != 1 || got[0] != "M" {
		t.Fatalf("handler calls = %v", got)
	}
	if c.State() != Idle {
		t.Fatalf("state = %v", c.State())
	}
	if !c.KeySuppressed("M") || c.KeySuppressed("N") {
		t.Fatal("only the captured key should be suppressed")
	}
	c.OfferKey(physical.KeyEdge{Key: "M", Edge: physical.Release})
	if c.KeySuppressed("M") {
		t.Fatal("suppression should end at release")
	}
}

func TestEscapeIsNotSuppressed(t *testing.T) {
	c := New()
	var captured physical.Key
	c.ArmKeyboard(func(ev Event) { captured = ev.Key })
	c.OfferKey(press(physical.KeyEscape))
	if captured != physical.KeyEscape {
		t.Fatalf("captured = %q", captured)
	}
	if c.KeySuppressed(physical.KeyEscape) {
		t.Fatal("Escape should keep flowing to aggregation")
	}
}

func TestGamepadPressThenRelease(t *testing.T) {
	c := New()
	var events []Event
	var onRelease Handler = func(ev Event) { events = append(events, ev) }
	c.ArmGamepad(physical.Press, AnyButton, func(ev Event) {
		events = append(events, ev)
		c.ArmGamepad(physical.Release, ev.Button, onRelease)
	})

	if c.OfferButton(physical.ButtonEdge{Button: physical.ButtonX, Edge: physical.Release}) {
		t.Fatal("release must not satisfy a press capture")
	}
	if !c.OfferButton(physical.ButtonEdge{Button: physical.ButtonX, Edge: physical.Press}) {
		t.Fatal("press should be captured")
	}
	if c.State() != ArmedForRelease {
		t.Fatalf("state = %v", c.State())
	}
	if !c.ButtonSuppressed(physical.ButtonX) {
		t.Fatal("captured button should be suppressed until released")
	}
	if c.OfferButton(physical.ButtonEdge{Button: physical.ButtonY, Edge: physical.Release}) {
		t.Fatal("release of another button must not match")
	}
	c.ReleaseButton(physical.ButtonX)
	if !c.OfferButton(physical.ButtonEdge{Button: physical.ButtonX, Edge: physical.Release}) {
		t.Fatal("release of the captured button should fire")
	}
	if len(events) != 2 || events[1].Edge != physical.Release || c.State() != Idle {
		t.Fatalf("events = %+v state = %v", events, c.State())
	}
	if c.Fired() != 2 {
		t.Fatalf("fired = %d", c.Fired())
	}
}

func TestReleaseAllButtonsEndsSuppression(t *testing.T) {
	c := New()
	c.ArmGamepad(physical.Press, AnyButton, nil)
	c.OfferButton(physical.ButtonEdge{Button: physical.ButtonX, Edge: physical.Press})
	if !c.ButtonSuppressed(physical.ButtonX) {
		t.Fatal("captured button should be suppressed")
	}
	c.ReleaseAllButtons()
	if c.ButtonSuppressed(physical.ButtonX) {
		t.Fatal("suppression should end when the device goes away")
	}
}

func TestArmReplacesAndCancel(t *testing.T) {
	c := New()
	calls := 0
	c.ArmKeyboard(func(Event) { calls++ })
	c.ArmGamepad(physical.Press, AnyButton, func(Event) { calls += 10 })

	if c.OfferKey(press("Z")) {
		t.Fatal("replaced keyboard request must not fire")
	}
	c.Cancel()
	if c.OfferButton(physical.ButtonEdge{Button: physical.ButtonA, Edge: physical.Press}) {
		t.Fatal("cancelled request must not fire")
	}
	if calls != 0 {
		t.Fatalf("calls = %d", calls)
	}
	if _, ok := c.Pending(); ok {
		t.Fatal("nothing should be pending")
	}
}
