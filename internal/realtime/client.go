package realtime

import (
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Client is one live websocket connection. userID is zero when the handshake
// carried no valid session token; such connections stay unregistered and
// never receive events.
type Client struct {
	hub    *Hub
	userID uint64
	conn   *websocket.Conn
	send   chan []byte
}

// readPump consumes inbound frames until the peer disconnects. The channel
// is notification-only, so client payloads are discarded.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, errRead := c.conn.ReadMessage(); errRead != nil {
			if websocket.IsUnexpectedCloseError(errRead, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(errRead).Debug("realtime: connection closed")
			}
			return
		}
	}
}

// writePump delivers queued events and keepalive pings to the peer.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if errWrite := c.conn.WriteMessage(websocket.TextMessage, message); errWrite != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if errPing := c.conn.WriteMessage(websocket.PingMessage, nil); errPing != nil {
				return
			}
		}
	}
}
