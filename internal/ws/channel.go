package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn adapts a gorilla websocket connection to the hub's Channel
// interface. Each send takes a write deadline so a hung peer fails the
// send instead of stalling the broadcaster; the hub then drops the
// channel.
type Conn struct {
	conn        *websocket.Conn
	sendTimeout time.Duration

	// gorilla allows one concurrent writer only
	writeMu sync.Mutex
}

func NewConn(conn *websocket.Conn, sendTimeout time.Duration) *Conn {
	return &Conn{
		conn:        conn,
		sendTimeout: sendTimeout,
	}
}

func (c *Conn) Send(payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.sendTimeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

func (c *Conn) Close() error {
	return c.conn.Close()
}
