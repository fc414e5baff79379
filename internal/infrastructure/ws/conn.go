package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Conn wraps a gorilla connection with a write mutex and an open flag.
// gorilla allows one concurrent writer, both the delivery path and the
// gateway's replay/ack responses write here.
type Conn struct {
	conn   *websocket.Conn
	mutex  sync.Mutex
	closed bool
}

func NewConn(c *websocket.Conn) *Conn {
	return &Conn{conn: c}
}

func (c *Conn) WriteJSON(v any) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *Conn) ReadMessage() (int, []byte, error) {
	return c.conn.ReadMessage()
}

func (c *Conn) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

func (c *Conn) IsOpen() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return !c.closed
}
