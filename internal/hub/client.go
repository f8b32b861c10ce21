package hub

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/soar/inputmap/internal/input"
)

// Submitter accepts work for the input frame. *input.Engine satisfies it.
type Submitter interface {
	Submit(input.Command) bool
}

// Client represents a connected WebSocket client.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

// NewClient creates a new Client attached to the hub.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// Send queues data without blocking. It reports false when the client is
// gone or its buffer is full.
func (c *Client) Send(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) sendMessage(msg *WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling %s message: %v", msg.Type, err)
		return
	}
	c.Send(data)
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// WritePump sends messages from the send channel to the WebSocket connection.
func (c *Client) WritePump() {
	defer func() {
		c.conn.Close()
	}()

	for msg := range c.send {
		err := c.conn.WriteMessage(websocket.TextMessage, msg)
		if err != nil {
			break
		}
	}
}

// ReadPump reads client commands from the WebSocket and submits them to the
// input frame until the connection closes.
func (c *Client) ReadPump(engine Submitter) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		c.handle(engine, message)
	}
}

func (c *Client) handle(engine Submitter, message []byte) {
	var clientMsg ClientMessage
	if err := json.Unmarshal(message, &clientMsg); err != nil {
		log.Printf("Error parsing client message: %v", err)
		c.sendMessage(NewErrorMessage(err))
		return
	}

	cmd, err := clientMsg.Command(c.sendMessage)
	if err != nil {
		log.Printf("Rejected client message: %v", err)
		c.sendMessage(NewErrorMessage(err))
		return
	}
	if !engine.Submit(cmd) {
		c.sendMessage(NewErrorMessage(errBusy))
	}
}
