// Package reader drives an input sink from SDL3: keyboard events from a small
// focus window, joystick hot-plug notifications and one polled reading of the
// active gamepad per frame.
package reader

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"slices"

	"github.com/jupiterrider/purego-sdl3/sdl"

	"github.com/soar/inputmap/internal/device"
	"github.com/soar/inputmap/internal/gamepad"
	"github.com/soar/inputmap/internal/physical"
)

const pollDelayNS = 16_000_000 // ~60Hz

// ErrInit is returned when SDL cannot be initialized.
var ErrInit = errors.New("sdl init failed")

// Sink receives raw input. *input.Engine satisfies it.
type Sink interface {
	KeyDown(physical.Key)
	KeyUp(physical.Key)
	ReleaseAllKeys()
	SetDevices([]device.Info)
	ActiveGamepad() (device.Info, bool)
	Update(device.GamepadSnapshot)
}

type joystickInfo struct {
	joystick *sdl.Joystick
	mapping  *gamepad.DeviceMapping
	name     string
	id       sdl.JoystickID
}

// Reader owns the SDL thread.
type Reader struct {
	// AfterInit, if set, runs on the SDL thread right after SDL starts.
	AfterInit func()

	sink      Sink
	title     string
	joysticks map[sdl.JoystickID]*joystickInfo
	window    *sdl.Window
}

// New creates a reader feeding sink. title names the keyboard focus window.
func New(sink Sink, title string) *Reader {
	return &Reader{
		sink:      sink,
		title:     title,
		joysticks: make(map[sdl.JoystickID]*joystickInfo),
	}
}

// Run initializes SDL and runs the event and frame loop on the current
// thread until ctx is cancelled or the focus window is closed.
func (r *Reader) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if !sdl.Init(sdl.InitJoystick | sdl.InitVideo) {
		return fmt.Errorf("%w: %s", ErrInit, sdl.GetError())
	}
	defer sdl.Quit()

	log.Println("SDL3 joystick and video subsystems initialized")
	if r.AfterInit != nil {
		r.AfterInit()
	}

	r.window = sdl.CreateWindow(r.title, 480, 120, 0)
	if r.window == nil {
		log.Printf("No keyboard window, gamepad input only: %s", sdl.GetError())
	} else {
		defer sdl.DestroyWindow(r.window)
	}

	for _, id := range sdl.GetJoysticks() {
		r.openJoystick(id)
	}
	r.publishDevices()

	defer r.closeAll()
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if !r.processEvents() {
			return nil
		}
		r.sink.Update(r.readActive())
		sdl.DelayNS(pollDelayNS)
	}
}

// processEvents drains the SDL queue. It returns false on quit.
func (r *Reader) processEvents() bool {
	changed := false
	var event sdl.Event
	for sdl.PollEvent(&event) {
		switch event.Type() {
		case sdl.EventQuit:
			return false

		case sdl.EventKeyDown:
			ke := event.Key()
			if ke.Repeat {
				continue
			}
			if name := sdl.GetScancodeName(ke.Scancode); name != "" {
				r.sink.KeyDown(physical.Key(name))
			}

		case sdl.EventKeyUp:
			ke := event.Key()
			if name := sdl.GetScancodeName(ke.Scancode); name != "" {
				r.sink.KeyUp(physical.Key(name))
			}

		case sdl.EventWindowFocusLost:
			r.sink.ReleaseAllKeys()

		case sdl.EventJoystickAdded:
			changed = r.openJoystick(event.JDevice().Which) || changed

		case sdl.EventJoystickRemoved:
			changed = r.removeJoystick(event.JDevice().Which) || changed
		}
	}
	if changed {
		r.publishDevices()
	}
	return true
}

func (r *Reader) openJoystick(instanceID sdl.JoystickID) bool {
	if _, exists := r.joysticks[instanceID]; exists {
		return false
	}

	js := sdl.OpenJoystick(instanceID)
	if js == nil {
		log.Printf("Failed to open joystick %d: %s", instanceID, sdl.GetError())
		return false
	}

	jsID := sdl.GetJoystickID(js)
	vendorID := sdl.GetJoystickVendor(js)
	productID := sdl.GetJoystickProduct(js)
	name := sdl.GetJoystickName(js)
	mapping := gamepad.GetMapping(vendorID, productID)

	r.joysticks[jsID] = &joystickInfo{
		joystick: js,
		mapping:  mapping,
		name:     name,
		id:       jsID,
	}

	log.Printf("Joystick connected: %s (VID=%04X PID=%04X) mapping=%s axes=%d buttons=%d hats=%d",
		name, vendorID, productID, mapping.Name,
		sdl.GetNumJoystickAxes(js), sdl.GetNumJoystickButtons(js), sdl.GetNumJoystickHats(js))
	return true
}

func (r *Reader) removeJoystick(instanceID sdl.JoystickID) bool {
	info, exists := r.joysticks[instanceID]
	if !exists {
		return false
	}

	log.Printf("Joystick disconnected: %s", info.name)
	sdl.CloseJoystick(info.joystick)
	delete(r.joysticks, instanceID)
	return true
}

func (r *Reader) closeAll() {
	for id, info := range r.joysticks {
		sdl.CloseJoystick(info.joystick)
		delete(r.joysticks, id)
	}
}

// publishDevices reports connected joysticks in connection order.
func (r *Reader) publishDevices() {
	ids := make([]sdl.JoystickID, 0, len(r.joysticks))
	for id := range r.joysticks {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	devices := make([]device.Info, 0, len(ids))
	for _, id := range ids {
		info := r.joysticks[id]
		devices = append(devices, device.Info{
			Index:     int(id),
			Name:      info.name,
			ButtonSet: info.mapping.ButtonSet,
		})
	}
	r.sink.SetDevices(devices)
}

// readActive reads only the active gamepad.
func (r *Reader) readActive() device.GamepadSnapshot {
	active, ok := r.sink.ActiveGamepad()
	if !ok {
		return device.GamepadSnapshot{}
	}
	info, exists := r.joysticks[sdl.JoystickID(active.Index)]
	if !exists || !sdl.JoystickConnected(info.joystick) {
		return device.GamepadSnapshot{Index: active.Index, Name: active.Name}
	}

	js := info.joystick
	raw := gamepad.RawState{
		Buttons: make([]bool, max(0, sdl.GetNumJoystickButtons(js))),
		Axes:    make([]int16, max(0, sdl.GetNumJoystickAxes(js))),
	}
	for i := range raw.Buttons {
		raw.Buttons[i] = sdl.GetJoystickButton(js, int32(i))
	}
	for i := range raw.Axes {
		raw.Axes[i] = sdl.GetJoystickAxis(js, int32(i))
	}
	if sdl.GetNumJoystickHats(js) > 0 {
		raw.Hat = sdl.GetJoystickHat(js, 0)
	}

	buttons, axes := info.mapping.Convert(raw)
	return device.GamepadSnapshot{
		Index:     active.Index,
		Name:      info.name,
		Connected: true,
		Buttons:   buttons,
		Axes:      axes,
	}
}
