package messaging

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AtRiskMedia/folio-go/internal/infrastructure/security"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

// Client is one websocket connection owned by a visitor.
type Client struct {
	ID        string
	VisitorID string
	Conn      *websocket.Conn
	Send      chan []byte
	hub       *StorageHub
}

// Upgrader builds the websocket upgrader. checkOrigin may be nil to accept
// same-origin requests only.
func Upgrader(checkOrigin func(r *http.Request) bool) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin,
	}
}

// Serve upgrades the request, registers the connection for visitorID and
// pumps events until either side closes. It blocks until the connection ends.
func (h *StorageHub) Serve(upgrader *websocket.Upgrader, w http.ResponseWriter, r *http.Request, visitorID string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		ID:        security.GenerateULID(),
		VisitorID: visitorID,
		Conn:      conn,
		Send:      make(chan []byte, sendBuffer),
		hub:       h,
	}
	h.Register(client)

	go client.writePump()
	client.readPump()
	return nil
}

// readPump discards inbound messages and detects closed connections.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	// The page echoes this id back on widget requests so its own saves are
	// not reported to it.
	hello := []byte(`{"connection":"` + c.ID + `"}`)
	_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.Conn.WriteMessage(websocket.TextMessage, hello); err != nil {
		return
	}

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
