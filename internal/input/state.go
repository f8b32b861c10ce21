package input

import (
	"slices"

	"github.com/soar/inputmap/internal/device"
	"github.com/soar/inputmap/internal/physical"
)

// BindingView is one function's bindings with their resolved glyphs.
type BindingView struct {
	Name       string          `json:"name"`
	Title      string          `json:"title"`
	Key        physical.Key    `json:"key"`
	Button     physical.Button `json:"button"`
	KeyIcon    int             `json:"keyIcon"`
	ButtonIcon int             `json:"buttonIcon"`
}

// GamepadState describes the active gamepad.
type GamepadState struct {
	Connected bool   `json:"connected"`
	Index     int    `json:"index"`
	Name      string `json:"name"`
}

// Snapshot is the externally visible engine state after a frame.
type Snapshot struct {
	Held      []string      `json:"held"`
	LastUsed  string        `json:"lastUsed"`
	Gamepad   GamepadState  `json:"gamepad"`
	Devices   []device.Info `json:"devices"`
	Capture   string        `json:"capture"`
	ButtonSet int           `json:"buttonSet"`
	Bindings  []BindingView `json:"bindings"`
}

// DeltaChanges carries only the Snapshot fields that changed.
type DeltaChanges struct {
	Held      *[]string      `json:"held,omitempty"`
	LastUsed  *string        `json:"lastUsed,omitempty"`
	Gamepad   *GamepadState  `json:"gamepad,omitempty"`
	Devices   *[]device.Info `json:"devices,omitempty"`
	Capture   *string        `json:"capture,omitempty"`
	ButtonSet *int           `json:"buttonSet,omitempty"`
	Bindings  *[]BindingView `json:"bindings,omitempty"`
}

func (d *DeltaChanges) IsEmpty() bool {
	return d.Held == nil &&
		d.LastUsed == nil &&
		d.Gamepad == nil &&
		d.Devices == nil &&
		d.Capture == nil &&
		d.ButtonSet == nil &&
		d.Bindings == nil
}

// ComputeDelta returns the fields of new_ that differ from old.
func ComputeDelta(old, new_ Snapshot) *DeltaChanges {
	d := &DeltaChanges{}

	if !slices.Equal(old.Held, new_.Held) {
		d.Held = &new_.Held
	}
	if old.LastUsed != new_.LastUsed {
		d.LastUsed = &new_.LastUsed
	}
	if old.Gamepad != new_.Gamepad {
		d.Gamepad = &new_.Gamepad
	}
	if !slices.Equal(old.Devices, new_.Devices) {
		d.Devices = &new_.Devices
	}
	if old.Capture != new_.Capture {
		d.Capture = &new_.Capture
	}
	if old.ButtonSet != new_.ButtonSet {
		d.ButtonSet = &new_.ButtonSet
	}
	if !slices.Equal(old.Bindings, new_.Bindings) {
		d.Bindings = &new_.Bindings
	}

	return d
}
