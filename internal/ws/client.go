package ws

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
)

type Client struct {
	PlayerID string
	Name     string
	Conn     *websocket.Conn
	Send     chan []byte

	Hub  *Hub
	Done chan struct{}

	// room is set by Hub.Attach before registration and read by the
	// read pump, so the handoff goes through an atomic.
	room      atomic.Pointer[Room]
	pendingMu sync.Mutex
	pending   [][]byte
}

func NewClient(playerID, name string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		PlayerID: playerID,
		Name:     name,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		Hub:      hub,
		Done:     make(chan struct{}),
	}
}

func (c *Client) Run() {
	go c.writePump()

	// start readPump early so we don't miss messages while attaching
	go c.readPump()

	room := c.Hub.Attach(c)
	if room == nil {
		log.Printf("Client.Run: player=%s has no room, closing", c.PlayerID)
		c.Conn.Close()
		return
	}

	log.Printf("Client.Run: player=%s attached to room=%s", c.PlayerID, room.Code)

	// wait for readPump to finish (disconnect)
	<-c.Done
}

// read
func (c *Client) readPump() {
	defer func() {
		c.disconnect()
		close(c.Done)
	}()

	c.Conn.SetReadLimit(4096)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			break
		}
		if room := c.room.Load(); room != nil {
			room.HandleMessage(c, msg)
		} else {
			// buffer messages until the room is attached
			c.pendingMu.Lock()
			c.pending = append(c.pending, append([]byte(nil), msg...))
			c.pendingMu.Unlock()
		}
	}
}

// write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("Client.writePump: player=%s write error: %v", c.PlayerID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// disconnect
func (c *Client) disconnect() {
	if c.room.Load() != nil {
		c.Hub.OnDisconnect(c)
	}
	_ = c.Conn.Close()
}

// drainPending replays messages read before the room was attached.
func (c *Client) drainPending() [][]byte {
	c.pendingMu.Lock()
	pending := c.pending
	c.pending = nil
	c.pendingMu.Unlock()
	return pending
}
