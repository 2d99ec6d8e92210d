package remote

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/tessro/showcase/internal/core"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 16
)

// Hub fans one coordinator's snapshots out to websocket clients.
type Hub struct {
	kind    core.Kind
	log     logrus.FieldLogger
	metrics *Metrics

	clients    map[*hubClient]struct{}
	register   chan *hubClient
	unregister chan *hubClient
	done       chan struct{}

	mu       sync.RWMutex
	last     []byte
	lastHash uint64
}

// NewHub creates a hub for kind.
func NewHub(kind core.Kind, log logrus.FieldLogger, m *Metrics) *Hub {
	return &Hub{
		kind:       kind,
		log:        log.WithField("hub", string(kind)),
		metrics:    m,
		clients:    make(map[*hubClient]struct{}),
		register:   make(chan *hubClient),
		unregister: make(chan *hubClient),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop. It must be run in a separate goroutine
// and returns when ctx is done or snaps is closed.
func (h *Hub) Run(ctx context.Context, snaps <-chan core.Snapshot) {
	h.log.Debug("hub started")
	defer h.log.Debug("hub stopped")
	defer close(h.done)
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.metrics.SetClients(string(h.kind), len(h.clients))
			h.log.WithField("client", c.id).Debug("client registered")
			if last := h.Last(); last != nil {
				c.trySend(last)
			}
		case c := <-h.unregister:
			h.drop(c)
		case snap, ok := <-snaps:
			if !ok {
				return
			}
			h.broadcast(snap)
		}
	}
}

// Last returns the most recent payload sent to clients.
func (h *Hub) Last() []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last
}

func (h *Hub) broadcast(snap core.Snapshot) {
	payload := newSnapshot(snap)
	hash, err := payload.contentHash()
	if err != nil {
		h.log.WithError(err).Warn("failed to hash snapshot")
	}

	h.mu.Lock()
	if err == nil && h.last != nil && hash == h.lastHash {
		h.mu.Unlock()
		h.metrics.IncDuplicate(string(h.kind))
		return
	}
	data, merr := json.Marshal(payload)
	if merr != nil {
		h.mu.Unlock()
		h.log.WithError(merr).Warn("failed to encode snapshot")
		return
	}
	h.last = data
	h.lastHash = hash
	h.mu.Unlock()

	h.metrics.IncBroadcast(string(h.kind))
	for c := range h.clients {
		if !c.trySend(data) {
			h.log.WithField("client", c.id).Warn("client too slow, disconnecting")
			h.drop(c)
		}
	}
}

func (h *Hub) drop(c *hubClient) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.metrics.SetClients(string(h.kind), len(h.clients))
	h.log.WithField("client", c.id).Debug("client unregistered")
}

// closeAll disconnects every client during shutdown.
func (h *Hub) closeAll() {
	for c := range h.clients {
		h.drop(c)
	}
}

// Serve registers conn with the hub and pumps messages until either side
// goes away.
func (h *Hub) Serve(conn *websocket.Conn) {
	c := &hubClient{
		id:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	c.readPump()
}

// hubClient is a middleman between the websocket connection and the hub.
type hubClient struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// trySend queues data without blocking. It reports false when the client's
// buffer is full. Only the hub goroutine calls it.
func (c *hubClient) trySend(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// readPump detects a dead connection. Clients are not expected to send
// anything but pongs and close frames.
func (c *hubClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			c.hub.log.WithField("client", c.id).WithError(err).Debug("client read ended")
			return
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *hubClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.log.WithField("client", c.id).WithError(err).Debug("client write error")
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
