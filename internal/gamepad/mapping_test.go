package gamepad

import (
	"testing"

	"github.com/soar/inputmap/internal/icon"
	"github.com/soar/inputmap/internal/physical"
)

func TestGetMapping(t *testing.T) {
	cases := []struct {
		vid, pid uint16
		want     string
		set      int
	}{
		{0x045E, 0x0B12, "xbox", icon.SetXbox},
		{0x054C, 0x0CE6, "playstation", icon.SetPlayStation},
		{0x057E, 0x2009, "switch_pro", icon.SetSwitch},
		{0x1234, 0x5678, "generic", icon.SetXbox},
	}
	for _, c := range cases {
		m := GetMapping(c.vid, c.pid)
		if m.Name != c.want || m.ButtonSet != c.set {
			t.Errorf("GetMapping(%04X,%04X) = %s/%d, want %s/%d", c.vid, c.pid, m.Name, m.ButtonSet, c.want, c.set)
		}
	}
}

func TestNormalize(t *testing.T) {
	if v := NormalizeAxis(-32768); v != -1 {
		t.Errorf("NormalizeAxis(min) = %v", v)
	}
	if v := NormalizeAxis(32767); v != 1 {
		t.Errorf("NormalizeAxis(max) = %v", v)
	}
	if v := NormalizeTrigger(-32768, -32768, 32767); v != 0 {
		t.Errorf("NormalizeTrigger(rest) = %v", v)
	}
	if v := NormalizeTrigger(32767, 0, 32767); v != 1 {
		t.Errorf("NormalizeTrigger(full) = %v", v)
	}
	if v := NormalizeTrigger(5, 3, 3); v != 0 {
		t.Errorf("NormalizeTrigger(empty range) = %v", v)
	}
	if v := ApplyDeadzone(0.01, 0.05); v != 0 {
		t.Errorf("ApplyDeadzone = %v", v)
	}
}

func TestConvertPlayStation(t *testing.T) {
	raw := RawState{
		Buttons: make([]bool, 13),
		Axes:    []int16{0, -32768, 0, 0, 32767, -32768},
		Hat:     hatLeft,
	}
	raw.Buttons[9] = true // L1
	raw.Buttons[5] = true // PS

	buttons, axes := playstationMapping.Convert(raw)
	if len(buttons) != physical.StandardButtonCount {
		t.Fatalf("len(buttons) = %d", len(buttons))
	}
	for _, b := range []physical.Button{physical.ButtonLB, physical.ButtonHome, physical.ButtonLT, physical.ButtonLeft} {
		if !buttons[b] {
			t.Errorf("button %d not pressed", b)
		}
	}
	if buttons[physical.ButtonRT] || buttons[physical.ButtonA] {
		t.Error("unexpected press")
	}
	if axes[AxisLeftY] != -1 {
		t.Errorf("left Y = %v, want up", axes[AxisLeftY])
	}
}

func TestConvertToleratesShortReadings(t *testing.T) {
	buttons, axes := switchProMapping.Convert(RawState{Buttons: []bool{true}})
	if !buttons[physical.ButtonA] {
		t.Fatal("A not pressed")
	}
	for i, v := range axes {
		if v != 0 {
			t.Fatalf("axis %d = %v", i, v)
		}
	}
}
