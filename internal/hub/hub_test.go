package hub

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/soar/inputmap/internal/binding"
	"github.com/soar/inputmap/internal/device"
	"github.com/soar/inputmap/internal/input"
	"github.com/soar/inputmap/internal/physical"
)

func intPtr(v int) *int { return &v }

func run(t *testing.T, e *input.Engine, msg ClientMessage) []*WSMessage {
	t.Helper()
	var replies []*WSMessage
	cmd, err := msg.Command(func(m *WSMessage) { replies = append(replies, m) })
	if err != nil {
		t.Fatalf("Command(%+v): %v", msg, err)
	}
	if !e.Submit(cmd) {
		t.Fatal("Submit rejected the command")
	}
	e.Update(device.GamepadSnapshot{})
	return replies
}

func newEngine(t *testing.T) *input.Engine {
	t.Helper()
	e := input.New(input.Options{})
	t.Cleanup(e.Close)
	return e
}

func TestCommandRebind(t *testing.T) {
	e := newEngine(t)

	if r := run(t, e, ClientMessage{Type: TypeRebind, Function: binding.Confirm, Slot: "keyboard", Key: "Return"}); len(r) != 0 {
		t.Fatalf("replies = %+v", r)
	}
	if f, _ := e.Table().Get(binding.Confirm); f.Key != physical.KeyReturn {
		t.Fatalf("confirm key = %q", f.Key)
	}
	run(t, e, ClientMessage{Type: TypeRebind, Function: binding.Confirm, Slot: "gamepad", Button: intPtr(9)})
	if f, _ := e.Table().Get(binding.Confirm); f.Button != physical.ButtonStart {
		t.Fatalf("confirm button = %d", f.Button)
	}

	r := run(t, e, ClientMessage{Type: TypeRebind, Function: "nope", Slot: "keyboard", Key: "K"})
	if len(r) != 1 || r[0].Type != TypeError {
		t.Fatalf("replies = %+v", r)
	}

	run(t, e, ClientMessage{Type: TypeReset})
	if f, _ := e.Table().Get(binding.Confirm); f.Key != "Z" || f.Button != physical.ButtonA {
		t.Fatalf("reset left %+v", f)
	}
}

func TestCommandButtonSetAndPreferred(t *testing.T) {
	e := newEngine(t)

	run(t, e, ClientMessage{Type: TypeSetButtonSet, ButtonSet: intPtr(2)})
	if e.ButtonSet() != 2 {
		t.Fatalf("button set = %d", e.ButtonSet())
	}
	if r := run(t, e, ClientMessage{Type: TypeSetButtonSet, ButtonSet: intPtr(5)}); len(r) != 1 || r[0].Type != TypeError {
		t.Fatalf("replies = %+v", r)
	}

	run(t, e, ClientMessage{Type: TypeSetPreferredGamepad, Name: "Pro Controller"})
	if e.PreferredGamepad() != "Pro Controller" {
		t.Fatalf("preferred = %q", e.PreferredGamepad())
	}
}

func TestCommandCapture(t *testing.T) {
	e := newEngine(t)

	run(t, e, ClientMessage{Type: TypeArmCapture, Function: binding.Menu, Slot: "keyboard"})
	e.KeyDown("M")
	e.Update(device.GamepadSnapshot{})
	if f, _ := e.Table().Get(binding.Menu); f.Key != "M" {
		t.Fatalf("menu key = %q", f.Key)
	}

	if r := run(t, e, ClientMessage{Type: TypeCancelCapture}); len(r) != 0 {
		t.Fatalf("cancel with nothing armed replied %+v", r)
	}
}

func TestCommandCaptureReportsOutcome(t *testing.T) {
	e := newEngine(t)
	var replies []*WSMessage
	cmd, err := (&ClientMessage{Type: TypeArmCapture, Function: binding.Dash, Slot: "keyboard"}).Command(func(m *WSMessage) { replies = append(replies, m) })
	if err != nil {
		t.Fatal(err)
	}
	e.Submit(cmd)
	e.KeyDown(physical.KeyEscape)
	e.Update(device.GamepadSnapshot{})

	if len(replies) != 1 || replies[0].Type != TypeCaptured || replies[0].Function != binding.Dash || replies[0].Error == "" {
		t.Fatalf("replies = %+v", replies)
	}
}

func TestCommandValidation(t *testing.T) {
	cases := []struct {
		msg  ClientMessage
		want error
	}{
		{ClientMessage{Type: "launch"}, ErrUnknownMessage},
		{ClientMessage{Type: TypeRebind, Slot: "keyboard", Key: "K"}, ErrMissingField},
		{ClientMessage{Type: TypeRebind, Function: binding.Menu, Slot: "keyboard"}, ErrMissingField},
		{ClientMessage{Type: TypeRebind, Function: binding.Menu, Slot: "gamepad"}, ErrMissingField},
		{ClientMessage{Type: TypeRebind, Function: binding.Menu, Slot: "mouse", Key: "K"}, binding.ErrInvalidBinding},
		{ClientMessage{Type: TypeSetButtonSet}, ErrMissingField},
		{ClientMessage{Type: TypeArmCapture, Function: binding.Menu}, binding.ErrInvalidBinding},
	}
	for _, c := range cases {
		if _, err := c.msg.Command(func(*WSMessage) {}); !errors.Is(err, c.want) {
			t.Errorf("Command(%+v) = %v, want %v", c.msg, err, c.want)
		}
	}
}

type refuse struct{}

func (refuse) Submit(input.Command) bool { return false }

func TestClientHandleErrors(t *testing.T) {
	c := NewClient(nil, nil)

	c.handle(refuse{}, []byte("{"))
	c.handle(refuse{}, []byte(`{"type":"reset"}`))

	for i := 0; i < 2; i++ {
		var msg WSMessage
		if err := json.Unmarshal(<-c.send, &msg); err != nil {
			t.Fatal(err)
		}
		if msg.Type != TypeError || msg.Error == "" {
			t.Fatalf("message %d = %+v", i, msg)
		}
	}
}

func TestClientSendAfterClose(t *testing.T) {
	c := NewClient(nil, nil)
	c.close()
	c.close()
	if c.Send([]byte("x")) {
		t.Fatal("send after close should fail")
	}
}

func waitClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Count() != n {
		if time.Now().After(deadline) {
			t.Fatalf("client count = %d, want %d", h.Count(), n)
		}
		time.Sleep(time.Millisecond)
	}
}

func receive(t *testing.T, c *Client) WSMessage {
	t.Helper()
	select {
	case data := <-c.send:
		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatal(err)
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a message")
	}
	return WSMessage{}
}

func TestBroadcasterFullThenDelta(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub()
	go h.Run(ctx)
	c := NewClient(h, nil)
	h.Register(c)
	waitClients(t, h, 1)

	changes := make(chan input.Snapshot, 4)
	b := NewBroadcaster(h, changes)
	go b.Run(ctx)

	changes <- input.Snapshot{Held: []string{binding.Confirm}, LastUsed: "keyboard"}
	if msg := receive(t, c); msg.Type != TypeFull || msg.Data == nil || len(msg.Data.Held) != 1 {
		t.Fatalf("first message = %+v", msg)
	}

	changes <- input.Snapshot{Held: []string{binding.Cancel}, LastUsed: "keyboard"}
	msg := receive(t, c)
	if msg.Type != TypeDelta || msg.Changes == nil || msg.Changes.Held == nil || msg.Changes.LastUsed != nil {
		t.Fatalf("second message = %+v", msg)
	}

	late := NewClient(h, nil)
	b.SendInitialState(late)
	if msg := receive(t, late); msg.Type != TypeFull || msg.Data.LastUsed != "keyboard" {
		t.Fatalf("initial state = %+v", msg)
	}
}

func TestHubShutdownClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub()
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()
	c := NewClient(h, nil)
	h.Register(c)
	waitClients(t, h, 1)
	cancel()
	<-stopped

	if _, ok := <-c.send; ok {
		t.Fatal("client channel should be closed")
	}
	h.Unregister(c)
	h.Register(NewClient(h, nil))
}
