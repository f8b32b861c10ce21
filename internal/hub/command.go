package hub

import (
	"errors"
	"fmt"
	"log"

	"github.com/soar/inputmap/internal/binding"
	"github.com/soar/inputmap/internal/input"
	"github.com/soar/inputmap/internal/physical"
)

var (
	ErrUnknownMessage = errors.New("unknown message type")
	ErrMissingField   = errors.New("missing field")

	errBusy = errors.New("input queue full, try again")
)

// Reply delivers a message to the client that sent a command.
type Reply func(*WSMessage)

// Command validates m and turns it into work for the input frame. Errors
// raised while the command runs are sent back through reply.
func (m *ClientMessage) Command(reply Reply) (input.Command, error) {
	switch m.Type {
	case TypeArmCapture:
		slot, err := m.slot()
		if err != nil {
			return nil, err
		}
		name := m.Function
		return func(e *input.Engine) {
			err := e.CaptureBinding(name, slot, func(err error) {
				reply(NewCapturedMessage(name, slot.String(), err))
			})
			if err != nil {
				reply(NewErrorMessage(err))
			}
		}, nil

	case TypeCancelCapture:
		return func(e *input.Engine) { e.CancelCapture() }, nil

	case TypeRebind:
		slot, err := m.slot()
		if err != nil {
			return nil, err
		}
		name := m.Function
		if slot == binding.SlotKeyboard {
			if m.Key == "" {
				return nil, fmt.Errorf("rebind: key: %w", ErrMissingField)
			}
			key := physical.Key(m.Key)
			return func(e *input.Engine) {
				if err := e.RebindKey(name, key); err != nil {
					reply(NewErrorMessage(err))
				}
			}, nil
		}
		if m.Button == nil {
			return nil, fmt.Errorf("rebind: button: %w", ErrMissingField)
		}
		button := physical.Button(*m.Button)
		return func(e *input.Engine) {
			if err := e.RebindButton(name, button); err != nil {
				reply(NewErrorMessage(err))
			}
		}, nil

	case TypeReset:
		return func(e *input.Engine) { e.ResetAll() }, nil

	case TypeSetButtonSet:
		if m.ButtonSet == nil {
			return nil, fmt.Errorf("set_button_set: buttonSet: %w", ErrMissingField)
		}
		set := *m.ButtonSet
		return func(e *input.Engine) {
			if err := e.SetButtonSet(set); err != nil {
				reply(NewErrorMessage(err))
			}
		}, nil

	case TypeSetPreferredGamepad:
		name := m.Name
		return func(e *input.Engine) {
			e.SetPreferredGamepad(name)
			log.Printf("Preferred gamepad set to %q", name)
		}, nil
	}
	return nil, fmt.Errorf("%q: %w", m.Type, ErrUnknownMessage)
}

func (m *ClientMessage) slot() (binding.Slot, error) {
	if m.Function == "" {
		return 0, fmt.Errorf("%s: function: %w", m.Type, ErrMissingField)
	}
	return binding.ParseSlot(m.Slot)
}
