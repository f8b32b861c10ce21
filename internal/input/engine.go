// Package input wires the binding table, device poller, logical aggregator,
// capture protocol and icon resolver into one Engine driven once per frame.
//
// An Engine is not safe for concurrent use. Everything except Submit and
// Changes must be called from the goroutine that calls Update; other
// goroutines hand work over with Submit.
package input

import (
	"errors"
	"fmt"
	"log"
	"slices"

	"github.com/soar/inputmap/internal/binding"
	"github.com/soar/inputmap/internal/capture"
	"github.com/soar/inputmap/internal/device"
	"github.com/soar/inputmap/internal/icon"
	"github.com/soar/inputmap/internal/logical"
	"github.com/soar/inputmap/internal/physical"
)

// ErrCaptureCancelled is reported to a CaptureBinding callback when the user
// pressed Escape or the capture was replaced.
var ErrCaptureCancelled = errors.New("capture cancelled")

// ErrClosed is returned by operations on a closed engine.
var ErrClosed = errors.New("engine closed")

// Store persists the binding configuration.
type Store interface {
	Save(binding.Config) error
}

// Command is work submitted from another goroutine. It runs at the start of
// the next Update.
type Command func(*Engine)

// Options configures an Engine.
type Options struct {
	RepeatDelay    int
	RepeatInterval int
	StickDeadzone  float64
	Layout         icon.Layout
	Custom         []binding.Definition
	Store          Store
}

// Engine is the process-scoped input instance.
type Engine struct {
	table   *binding.Table
	poller  *device.Poller
	agg     *logical.Aggregator
	capt    *capture.Capturer
	tracker *device.Tracker
	layout  icon.Layout
	store   Store

	buttonSet       int
	buttonSetChosen bool
	frames          uint64
	captureDone     func(error)

	commands  chan Command
	changes   chan Snapshot
	prevState Snapshot
	closed    bool
}

// New builds an engine. Custom definitions that cannot be added are logged
// and skipped.
func New(opts Options) *Engine {
	tbl, err := binding.NewTable(opts.Custom...)
	if err != nil {
		log.Printf("Ignoring custom functions: %v", err)
	}
	layout := opts.Layout
	if layout.ButtonSetSize <= 0 || layout.ButtonSets <= 0 {
		layout = icon.DefaultLayout()
	}
	return &Engine{
		table:    tbl,
		poller:   device.NewPoller(opts.StickDeadzone),
		agg:      logical.NewAggregator(opts.RepeatDelay, opts.RepeatInterval),
		capt:     capture.New(),
		tracker:  device.NewTracker(""),
		layout:   layout,
		store:    opts.Store,
		commands: make(chan Command, 64),
		changes:  make(chan Snapshot, 64),
	}
}

// Close tears the engine down: any pending capture is dropped without firing
// and logical state is released. Later Updates are no-ops.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.capt.Cancel()
	e.captureDone = nil
	e.agg.Reset()
	e.closed = true
}

// Submit queues cmd for the next frame. It is safe to call from any
// goroutine; commands are dropped when the queue is full.
func (e *Engine) Submit(cmd Command) bool {
	select {
	case e.commands <- cmd:
		return true
	default:
		log.Printf("Input command queue full, dropping command")
		return false
	}
}

// Changes returns the channel on which snapshots are sent when they change.
func (e *Engine) Changes() <-chan Snapshot {
	return e.changes
}

// Frames returns the number of completed Updates.
func (e *Engine) Frames() uint64 {
	return e.frames
}

// Table exposes the binding table for read access.
func (e *Engine) Table() *binding.Table {
	return e.table
}

// KeyDown forwards a raw key-down event.
func (e *Engine) KeyDown(k physical.Key) {
	e.poller.KeyDown(k)
}

// KeyUp forwards a raw key-up event.
func (e *Engine) KeyUp(k physical.Key) {
	e.poller.KeyUp(k)
}

// ReleaseAllKeys releases every held key, e.g. on focus loss.
func (e *Engine) ReleaseAllKeys() {
	e.poller.ReleaseAllKeys()
}

// SetDevices reports the currently connected gamepads. Call it between
// frames, after a connect or disconnect notification.
func (e *Engine) SetDevices(devices []device.Info) {
	if e.tracker.Resolve(devices) {
		e.activeChanged()
	}
}

// ActiveGamepad returns the gamepad whose state Update expects.
func (e *Engine) ActiveGamepad() (device.Info, bool) {
	return e.tracker.Active()
}

// PreferredGamepad returns the persisted gamepad name.
func (e *Engine) PreferredGamepad() string {
	return e.tracker.Preferred()
}

// SetPreferredGamepad selects a gamepad by its stable name and persists it.
func (e *Engine) SetPreferredGamepad(name string) {
	if e.tracker.SetPreferred(name) {
		e.activeChanged()
	}
	e.save()
}

func (e *Engine) activeChanged() {
	e.poller.ResetGamepad()
	e.capt.ReleaseAllButtons()
	active, ok := e.tracker.Active()
	if !ok {
		log.Println("No active gamepad")
		return
	}
	log.Printf("Active gamepad set: %s (index=%d)", active.Name, active.Index)
	if !e.buttonSetChosen && active.ButtonSet >= 0 && active.ButtonSet < e.layout.ButtonSets {
		e.buttonSet = active.ButtonSet
	}
}

// LastUsed returns the device kind that produced the most recent edge.
func (e *Engine) LastUsed() physical.Kind {
	return e.tracker.LastUsed()
}

// Update runs one frame: queued commands, poll and diff, capture dispatch,
// then aggregation. snap must be a reading of ActiveGamepad; readings of any
// other device are treated as disconnected.
func (e *Engine) Update(snap device.GamepadSnapshot) {
	if e.closed {
		return
	}
	e.drain()

	active, ok := e.tracker.Active()
	if !ok || snap.Index != active.Index || snap.Name != active.Name {
		snap = device.GamepadSnapshot{}
	}
	f := e.poller.Poll(snap)

	for _, ke := range f.KeyEdges {
		e.tracker.Touch(physical.Keyboard)
		e.capt.OfferKey(ke)
	}
	if f.HasFirst {
		e.tracker.Touch(physical.Gamepad)
		e.capt.OfferButton(f.First)
	}
	for _, be := range f.ButtonEdges {
		if be.Edge == physical.Release {
			e.capt.ReleaseButton(be.Button)
		}
	}

	e.agg.Update(&f, e.table, e.capt)
	e.frames++
	e.emit()
}

func (e *Engine) drain() {
	for {
		select {
		case cmd := <-e.commands:
			cmd(e)
		default:
			return
		}
	}
}

// IsHeld reports whether name is held. Unknown names read as released.
func (e *Engine) IsHeld(name string) bool {
	return e.agg.IsHeld(name)
}

// IsTriggered reports whether name was pressed this frame.
func (e *Engine) IsTriggered(name string) bool {
	return e.agg.IsTriggered(name)
}

// IsRepeated reports whether name was pressed this frame or is due a repeat.
func (e *Engine) IsRepeated(name string) bool {
	return e.agg.IsRepeated(name)
}

// Duration returns how long name has been held, in frames.
func (e *Engine) Duration(name string) int {
	return e.agg.Duration(name)
}

// RebindKey binds name's keyboard slot and persists the result.
func (e *Engine) RebindKey(name string, k physical.Key) error {
	if err := e.table.RebindKey(name, k); err != nil {
		return err
	}
	log.Printf("Rebound %s keyboard -> %s", name, k)
	e.save()
	return nil
}

// RebindButton binds name's gamepad slot and persists the result.
func (e *Engine) RebindButton(name string, b physical.Button) error {
	if err := e.table.RebindButton(name, b); err != nil {
		return err
	}
	log.Printf("Rebound %s gamepad -> %d", name, b)
	e.save()
	return nil
}

// ResetAll restores default bindings and persists the result.
func (e *Engine) ResetAll() {
	e.table.ResetAll()
	log.Println("Bindings reset to defaults")
	e.save()
}

// ButtonSet returns the active gamepad glyph set.
func (e *Engine) ButtonSet() int {
	return e.buttonSet
}

// SetButtonSet selects a gamepad glyph set and persists it.
func (e *Engine) SetButtonSet(set int) error {
	if set < 0 || set >= e.layout.ButtonSets {
		return fmt.Errorf("button set %d of %d: %w", set, e.layout.ButtonSets, binding.ErrIndexOutOfRange)
	}
	e.buttonSet = set
	e.buttonSetChosen = true
	e.save()
	return nil
}

// ResolveIcon returns the atlas index for name on kind. physical.Auto picks
// the last used device kind.
func (e *Engine) ResolveIcon(name string, kind physical.Kind) int {
	if kind == physical.Auto {
		kind = e.tracker.LastUsed()
	}
	return e.layout.ResolveName(e.table, name, kind, e.buttonSet)
}

// ArmKeyboardCapture diverts the next key-down to h.
func (e *Engine) ArmKeyboardCapture(h capture.Handler) {
	e.abandonCapture()
	e.capt.ArmKeyboard(h)
}

// ArmGamepadCapture diverts the next matching gamepad transition to h.
func (e *Engine) ArmGamepadCapture(edge physical.Edge, b physical.Button, h capture.Handler) {
	e.abandonCapture()
	e.capt.ArmGamepad(edge, b, h)
}

// CancelCapture drops any pending capture without firing it.
func (e *Engine) CancelCapture() {
	e.abandonCapture()
	e.capt.Cancel()
}

// CaptureState reports the capture state machine position.
func (e *Engine) CaptureState() capture.State {
	return e.capt.State()
}

func (e *Engine) abandonCapture() {
	if done := e.captureDone; done != nil {
		e.captureDone = nil
		done(ErrCaptureCancelled)
	}
}

// CaptureBinding runs the full remap gesture for name's slot: the next key
// (or gamepad press followed by its release) becomes the new binding. Escape
// cancels a keyboard capture. done, if not nil, runs once with the outcome.
func (e *Engine) CaptureBinding(name string, slot binding.Slot, done func(error)) error {
	if e.closed {
		return ErrClosed
	}
	if _, err := e.table.Get(name); err != nil {
		return err
	}
	e.abandonCapture()
	e.captureDone = done
	finish := func(err error) {
		if e.captureDone == nil {
			return
		}
		cb := e.captureDone
		e.captureDone = nil
		cb(err)
	}

	if slot == binding.SlotKeyboard {
		e.capt.ArmKeyboard(func(ev capture.Event) {
			if ev.Key == physical.KeyEscape {
				finish(ErrCaptureCancelled)
				return
			}
			finish(e.RebindKey(name, ev.Key))
		})
		return nil
	}
	e.capt.ArmGamepad(physical.Press, capture.AnyButton, func(ev capture.Event) {
		e.capt.ArmGamepad(physical.Release, ev.Button, func(ev capture.Event) {
			finish(e.RebindButton(name, ev.Button))
		})
	})
	return nil
}

// Config returns the persisted shape of the current settings.
func (e *Engine) Config() binding.Config {
	return e.table.ToConfig(e.buttonSet, e.tracker.Preferred())
}

// ApplyConfig restores settings from a persisted config. Problems with single
// entries are returned joined; everything else is applied.
func (e *Engine) ApplyConfig(cfg binding.Config) error {
	var errs []error
	if err := e.table.FromConfig(cfg); err != nil {
		errs = append(errs, err)
	}
	if cfg.ActiveButtonSet >= 0 && cfg.ActiveButtonSet < e.layout.ButtonSets {
		e.buttonSet = cfg.ActiveButtonSet
		e.buttonSetChosen = true
	} else {
		errs = append(errs, fmt.Errorf("button set %d: %w", cfg.ActiveButtonSet, binding.ErrMalformedConfig))
	}
	if e.tracker.SetPreferred(cfg.PreferredGamepad) {
		e.activeChanged()
	}
	return errors.Join(errs...)
}

func (e *Engine) save() {
	if e.store == nil {
		return
	}
	if err := e.store.Save(e.Config()); err != nil {
		log.Printf("Failed to save bindings: %v", err)
	}
}

// Snapshot builds the externally visible state.
func (e *Engine) Snapshot() Snapshot {
	held := e.agg.HeldNames()
	slices.Sort(held)
	s := Snapshot{
		Held:      held,
		LastUsed:  e.tracker.LastUsed().String(),
		Devices:   e.tracker.Devices(),
		Capture:   e.capt.State().String(),
		ButtonSet: e.buttonSet,
	}
	if active, ok := e.tracker.Active(); ok {
		s.Gamepad = GamepadState{Connected: true, Index: active.Index, Name: active.Name}
	}
	for _, f := range e.table.Functions() {
		s.Bindings = append(s.Bindings, BindingView{
			Name:       f.Name,
			Title:      f.Title,
			Key:        f.Key,
			Button:     f.Button,
			KeyIcon:    e.layout.Resolve(f, physical.Keyboard, e.buttonSet),
			ButtonIcon: e.layout.Resolve(f, physical.Gamepad, e.buttonSet),
		})
	}
	return s
}

func (e *Engine) emit() {
	s := e.Snapshot()
	if ComputeDelta(e.prevState, s).IsEmpty() {
		return
	}
	e.prevState = s
	select {
	case e.changes <- s:
	default:
		// Drop if channel is full to avoid blocking the frame loop
	}
}
