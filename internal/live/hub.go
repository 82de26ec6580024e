// internal/live/hub.go
//
// Websocket fan-out of board snapshots.
// Every connection subscribes to one game ID; Publish pushes a JSON message
// to all of that game's connections. Clients are read-only: anything they
// send is discarded, and a read error unregisters them.
// A client whose buffer is full is dropped rather than blocking publishers.

package live

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	sendBuffer = 16
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type client struct {
	conn   *websocket.Conn
	send   chan any
	gameID string
}

// Hub tracks websocket clients grouped by game.
type Hub struct {
	mu    sync.RWMutex
	games map[string]map[*client]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{games: make(map[string]map[*client]struct{})}
}

// register adds c and queues its first message under the same lock, so no
// Publish can fall between the snapshot and the subscription.
func (h *Hub) register(c *client, snapshot func() any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.games[c.gameID]
	if !ok {
		set = make(map[*client]struct{})
		h.games[c.gameID] = set
	}
	set[c] = struct{}{}
	if snapshot != nil {
		if msg := snapshot(); msg != nil {
			c.send <- msg
		}
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// removeLocked: caller holds h.mu for writing.
func (h *Hub) removeLocked(c *client) {
	set, ok := h.games[c.gameID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.games, c.gameID)
	}
}

// Publish sends msg to every client watching gameID.
func (h *Hub) Publish(gameID string, msg any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.games[gameID] {
		select {
		case c.send <- msg:
		default:
			log.Warn().Str("gameId", gameID).Msg("dropping slow websocket client")
			h.removeLocked(c)
		}
	}
}

// Close disconnects every client of gameID.
func (h *Hub) Close(gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.games[gameID] {
		h.removeLocked(c)
	}
}

// Count reports how many clients watch gameID.
func (h *Hub) Count(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.games[gameID])
}

// Serve upgrades the request and streams gameID's messages until the client
// goes away. snapshot, when non-nil, is called once the client is subscribed
// and its result is sent first.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, gameID string, snapshot func() any) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Str("gameId", gameID).Msg("websocket upgrade")
		return
	}

	c := &client{conn: conn, send: make(chan any, sendBuffer), gameID: gameID}
	h.register(c, snapshot)

	go c.writePump()
	c.readPump(h)
}

func (c *client) readPump(h *Hub) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
