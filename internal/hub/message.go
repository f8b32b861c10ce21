package hub

import (
	"time"

	"github.com/soar/inputmap/internal/input"
)

// Server to client message types.
const (
	TypeFull     = "full"
	TypeDelta    = "delta"
	TypeCaptured = "captured"
	TypeError    = "error"
)

// Client to server message types.
const (
	TypeArmCapture          = "arm_capture"
	TypeCancelCapture       = "cancel_capture"
	TypeRebind              = "rebind"
	TypeReset               = "reset"
	TypeSetButtonSet        = "set_button_set"
	TypeSetPreferredGamepad = "set_preferred_gamepad"
)

// WSMessage represents a WebSocket message sent from server to client.
type WSMessage struct {
	Type      string              `json:"type"`               // "full", "delta", "captured", "error"
	Seq       int64               `json:"seq"`                // Sequence number for ordering
	Timestamp int64               `json:"timestamp"`          // Unix timestamp in milliseconds
	Data      *input.Snapshot     `json:"data,omitempty"`     // Full state for type "full"
	Changes   *input.DeltaChanges `json:"changes,omitempty"`  // Delta changes for type "delta"
	Function  string              `json:"function,omitempty"` // Capture target for type "captured"
	Slot      string              `json:"slot,omitempty"`
	Error     string              `json:"error,omitempty"`
}

// NewFullMessage creates a "full" type message containing the complete state.
func NewFullMessage(seq int64, state *input.Snapshot) *WSMessage {
	return &WSMessage{
		Type:      TypeFull,
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Data:      state,
	}
}

// NewDeltaMessage creates a "delta" type message containing only changed fields.
func NewDeltaMessage(seq int64, changes *input.DeltaChanges) *WSMessage {
	return &WSMessage{
		Type:      TypeDelta,
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Changes:   changes,
	}
}

// NewCapturedMessage reports the outcome of an arm_capture request.
func NewCapturedMessage(function, slot string, err error) *WSMessage {
	msg := &WSMessage{
		Type:      TypeCaptured,
		Timestamp: time.Now().UnixMilli(),
		Function:  function,
		Slot:      slot,
	}
	if err != nil {
		msg.Error = err.Error()
	}
	return msg
}

// NewErrorMessage reports a rejected client request.
func NewErrorMessage(err error) *WSMessage {
	return &WSMessage{
		Type:      TypeError,
		Timestamp: time.Now().UnixMilli(),
		Error:     err.Error(),
	}
}

// ClientMessage represents a message sent from the client to the server.
type ClientMessage struct {
	Type      string `json:"type"`
	Function  string `json:"function,omitempty"`
	Slot      string `json:"slot,omitempty"`
	Key       string `json:"key,omitempty"`
	Button    *int   `json:"button,omitempty"`
	ButtonSet *int   `json:"buttonSet,omitempty"`
	Name      string `json:"name,omitempty"`
}
