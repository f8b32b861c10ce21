// Package gamepad converts raw joystick readings of known controller families
// into the standard button layout used by the input engine.
package gamepad

import (
	"math"

	"github.com/soar/inputmap/internal/icon"
	"github.com/soar/inputmap/internal/physical"
)

const (
	// triggerDeadzone removes resting noise from analog triggers.
	triggerDeadzone = 0.05
	// triggerPressed is the trigger travel that counts as a digital press.
	triggerPressed = 0.5

	hatUp    uint8 = 0x01
	hatRight uint8 = 0x02
	hatDown  uint8 = 0x04
	hatLeft  uint8 = 0x08
)

// Axis slots in a snapshot.
const (
	AxisLeftX = iota
	AxisLeftY
	AxisRightX
	AxisRightY
	stickAxes
)

// AxisMapping defines how a raw axis index maps to a stick axis or trigger.
type AxisMapping struct {
	Index int32
	// Stick is the snapshot axis slot; ignored for triggers.
	Stick     int
	IsTrigger bool
	// Trigger is the standard button a pulled trigger presses.
	Trigger physical.Button
	// For triggers: raw range. Some devices use -32768..32767, others 0..32767.
	RawMin int16
	RawMax int16
}

// ButtonMapping defines how a raw button index maps to a standard button.
type ButtonMapping struct {
	Index  int32
	Target physical.Button
}

// DeviceMapping holds the complete mapping for a specific device family.
type DeviceMapping struct {
	Name      string
	ButtonSet int
	Axes      []AxisMapping
	Buttons   []ButtonMapping
	HasHat    bool
}

// RawState is one unprocessed joystick reading.
type RawState struct {
	Buttons []bool  // indexed by raw button index
	Axes    []int16 // indexed by raw axis index
	Hat     uint8
}

// NormalizeAxis converts a raw axis value (-32768..32767) to -1.0..1.0.
func NormalizeAxis(raw int16) float64 {
	v := float64(raw) / math.MaxInt16
	if v < -1.0 {
		v = -1.0
	}
	return v
}

// NormalizeTrigger converts a raw trigger value to 0.0..1.0.
func NormalizeTrigger(raw int16, rawMin, rawMax int16) float64 {
	if rawMax == rawMin {
		return 0
	}
	v := (float64(raw) - float64(rawMin)) / (float64(rawMax) - float64(rawMin))
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v
}

// ApplyDeadzone returns 0 if the value is within the deadzone threshold.
func ApplyDeadzone(v float64, threshold float64) float64 {
	if math.Abs(v) < threshold {
		return 0
	}
	return v
}

// Convert maps a raw reading into standard-layout buttons and stick axes.
// Axes keep the platform convention of negative Y pointing up.
func (m *DeviceMapping) Convert(raw RawState) (buttons []bool, axes []float64) {
	buttons = make([]bool, physical.StandardButtonCount)
	axes = make([]float64, stickAxes)

	for _, bm := range m.Buttons {
		if int(bm.Index) < len(raw.Buttons) && raw.Buttons[bm.Index] {
			buttons[bm.Target] = true
		}
	}
	for _, am := range m.Axes {
		if int(am.Index) >= len(raw.Axes) {
			continue
		}
		v := raw.Axes[am.Index]
		if am.IsTrigger {
			if ApplyDeadzone(NormalizeTrigger(v, am.RawMin, am.RawMax), triggerDeadzone) > triggerPressed {
				buttons[am.Trigger] = true
			}
			continue
		}
		axes[am.Stick] = NormalizeAxis(v)
	}
	if m.HasHat {
		buttons[physical.ButtonUp] = buttons[physical.ButtonUp] || raw.Hat&hatUp != 0
		buttons[physical.ButtonRight] = buttons[physical.ButtonRight] || raw.Hat&hatRight != 0
		buttons[physical.ButtonDown] = buttons[physical.ButtonDown] || raw.Hat&hatDown != 0
		buttons[physical.ButtonLeft] = buttons[physical.ButtonLeft] || raw.Hat&hatLeft != 0
	}
	return buttons, axes
}

// Built-in mappings for common controllers.

var standardAxes = []AxisMapping{
	{Index: 0, Stick: AxisLeftX},
	{Index: 1, Stick: AxisLeftY},
	{Index: 2, Stick: AxisRightX},
	{Index: 3, Stick: AxisRightY},
	{Index: 4, IsTrigger: true, Trigger: physical.ButtonLT, RawMin: -32768, RawMax: 32767},
	{Index: 5, IsTrigger: true, Trigger: physical.ButtonRT, RawMin: -32768, RawMax: 32767},
}

var xboxMapping = &DeviceMapping{
	Name:      "xbox",
	ButtonSet: icon.SetXbox,
	Axes:      standardAxes,
	Buttons: []ButtonMapping{
		{Index: 0, Target: physical.ButtonA},
		{Index: 1, Target: physical.ButtonB},
		{Index: 2, Target: physical.ButtonX},
		{Index: 3, Target: physical.ButtonY},
		{Index: 4, Target: physical.ButtonLB},
		{Index: 5, Target: physical.ButtonRB},
		{Index: 6, Target: physical.ButtonSelect},
		{Index: 7, Target: physical.ButtonStart},
		{Index: 8, Target: physical.ButtonL3},
		{Index: 9, Target: physical.ButtonR3},
		{Index: 10, Target: physical.ButtonHome},
	},
	HasHat: true,
}

var playstationMapping = &DeviceMapping{
	Name:      "playstation",
	ButtonSet: icon.SetPlayStation,
	Axes:      standardAxes,
	Buttons: []ButtonMapping{
		{Index: 0, Target: physical.ButtonA},      // Cross (×)
		{Index: 1, Target: physical.ButtonB},      // Circle (○)
		{Index: 2, Target: physical.ButtonX},      // Square (□)
		{Index: 3, Target: physical.ButtonY},      // Triangle (△)
		{Index: 4, Target: physical.ButtonSelect}, // Share / Create
		{Index: 5, Target: physical.ButtonHome},   // PS button
		{Index: 6, Target: physical.ButtonStart},  // Options
		{Index: 7, Target: physical.ButtonL3},
		{Index: 8, Target: physical.ButtonR3},
		{Index: 9, Target: physical.ButtonLB},  // L1
		{Index: 10, Target: physical.ButtonRB}, // R1
	},
	HasHat: true,
}

var switchProMapping = &DeviceMapping{
	Name:      "switch_pro",
	ButtonSet: icon.SetSwitch,
	Axes:      standardAxes[:4],
	Buttons: []ButtonMapping{
		{Index: 0, Target: physical.ButtonA},
		{Index: 1, Target: physical.ButtonB},
		{Index: 2, Target: physical.ButtonX},
		{Index: 3, Target: physical.ButtonY},
		{Index: 4, Target: physical.ButtonLB},
		{Index: 5, Target: physical.ButtonRB},
		{Index: 6, Target: physical.ButtonSelect},
		{Index: 7, Target: physical.ButtonStart},
		{Index: 8, Target: physical.ButtonL3},
		{Index: 9, Target: physical.ButtonR3},
		{Index: 10, Target: physical.ButtonHome},
		{Index: 11, Target: physical.ButtonLT}, // ZL
		{Index: 12, Target: physical.ButtonRT}, // ZR
	},
	HasHat: true,
}

var genericMapping = &DeviceMapping{
	Name:      "generic",
	ButtonSet: icon.SetXbox,
	Axes:      standardAxes,
	Buttons:   xboxMapping.Buttons,
	HasHat:    true,
}

// Known vendor/product IDs.
type deviceKey struct {
	VendorID  uint16
	ProductID uint16
}

var knownDevices = map[deviceKey]*DeviceMapping{
	// Microsoft Xbox controllers
	{0x045E, 0x028E}: xboxMapping, // Xbox 360
	{0x045E, 0x02FF}: xboxMapping, // Xbox One
	{0x045E, 0x0B12}: xboxMapping, // Xbox Series X|S
	{0x045E, 0x0B13}: xboxMapping, // Xbox Series X|S (wireless)
	// Sony PlayStation controllers
	{0x054C, 0x0CE6}: playstationMapping, // DualSense
	{0x054C, 0x09CC}: playstationMapping, // DualShock 4 v2
	{0x054C, 0x05C4}: playstationMapping, // DualShock 4 v1
	// Nintendo Switch Pro Controller
	{0x057E, 0x2009}: switchProMapping,
}

// GetMapping returns the appropriate mapping for a device identified by vendor/product ID.
// Falls back to generic mapping if no specific mapping is found.
func GetMapping(vendorID, productID uint16) *DeviceMapping {
	key := deviceKey{VendorID: vendorID, ProductID: productID}
	if m, ok := knownDevices[key]; ok {
		return m
	}
	return genericMapping
}
