package websocket

import (
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// Client bridges one websocket connection to a hub subscription.
type Client struct {
	// The delivery-bus subscription this connection drains.
	Sub *Subscriber

	// The websocket connection.
	Conn *websocket.Conn
}

// ReadPump discards inbound frames and tears the subscription down when
// the peer goes away. Clients only listen on this channel; all writes go
// through the HTTP API.
func (c *Client) ReadPump() {
	defer func() {
		c.Sub.Close()
		c.Conn.Close()
		log.Printf("WebSocket ReadPump stopped for %s", c.Sub.Recipient())
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error for %s: %v", c.Sub.Recipient(), err)
			}
			break
		}
	}
}

// WritePump pumps payloads from the subscription to the websocket
// connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		log.Printf("WebSocket WritePump stopped for %s", c.Sub.Recipient())
	}()
	for {
		select {
		case payload, ok := <-c.Sub.C():
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The subscription was closed.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				log.Printf("WebSocket write error (NextWriter) for %s: %v", c.Sub.Recipient(), err)
				return
			}
			w.Write(payload)

			// Flush any payloads already queued on the subscription.
			n := len(c.Sub.C())
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.Sub.C())
			}

			if err := w.Close(); err != nil {
				log.Printf("WebSocket write error (Close) for %s: %v", c.Sub.Recipient(), err)
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("WebSocket write error (Ping) for %s: %v", c.Sub.Recipient(), err)
				return
			}
		}
	}
}
