package hub

import (
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	// writeWait is how long to wait for a write to complete
	writeWait = 10 * time.Second

	// pongWait is how long to wait for a pong response
	pongWait = 60 * time.Second

	// pingPeriod must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize is the maximum message size allowed
	maxMessageSize = 256 * 1024 // headroom for annotated JPEG frames
)

// client is one dashboard websocket subscriber.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan Message
}

// Serve registers the connection as a subscriber and pumps broadcasts
// to it until it disconnects. Call from the websocket handler; blocks
// for the lifetime of the connection.
func (h *Hub) Serve(conn *websocket.Conn) {
	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan Message, 256),
	}
	h.register <- c

	go c.writeLoop()
	c.readLoop()
}

// readLoop exists only to detect disconnection and handle pongs;
// dashboard subscribers never send payload data.
func (c *client) readLoop() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writeLoop is the only goroutine writing to the connection. It drains
// the send channel and keeps the connection alive with pings.
func (c *client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub dropped us - best-effort close frame, we exit either way
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(msg.wsType(), msg.Data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// wsType maps the message kind to the websocket frame type.
func (m Message) wsType() int {
	if m.Type == BinaryMessage {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}
