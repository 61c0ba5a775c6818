package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"landlord/internal/game"
)

// Message is the envelope written to websocket subscribers.
type Message struct {
	Type    string     `json:"type"`
	Slot    string     `json:"slot"`
	Payload game.Event `json:"payload"`
}

type slotMessage struct {
	slot string
	raw  []byte
}

type Client struct {
	hub  *Hub
	slot string
	conn *websocket.Conn
	send chan []byte
}

// Hub fans engine events out to the websocket clients watching each slot.
type Hub struct {
	log        *slog.Logger
	clients    map[string]map[*Client]bool
	broadcast  chan slotMessage
	register   chan *Client
	unregister chan *Client
	quit       chan struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		log:        logger,
		clients:    map[string]map[*Client]bool{},
		broadcast:  make(chan slotMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
	}
}

// Run blocks until ctx ends, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.quit)
	for {
		select {
		case <-ctx.Done():
			for _, set := range h.clients {
				for c := range set {
					close(c.send)
				}
			}
			h.clients = map[string]map[*Client]bool{}
			return
		case c := <-h.register:
			set, ok := h.clients[c.slot]
			if !ok {
				set = map[*Client]bool{}
				h.clients[c.slot] = set
			}
			set[c] = true
			h.log.Debug("ws client registered", "slot", c.slot, "clients", len(set))
		case c := <-h.unregister:
			h.drop(c)
		case msg := <-h.broadcast:
			for c := range h.clients[msg.slot] {
				select {
				case c.send <- msg.raw:
				default:
					h.log.Warn("ws client too slow, dropping", "slot", msg.slot)
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *Client) {
	set, ok := h.clients[c.slot]
	if !ok || !set[c] {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.slot)
	}
}

// Emit queues ev for the slot's subscribers. It never blocks the caller for
// long: a full queue drops the event.
func (h *Hub) Emit(slot string, ev game.Event) {
	raw, err := json.Marshal(Message{Type: string(ev.Kind), Slot: slot, Payload: ev})
	if err != nil {
		h.log.Error("encode ws message", "err", err)
		return
	}
	select {
	case h.broadcast <- slotMessage{slot: slot, raw: raw}:
	case <-h.quit:
	default:
		h.log.Warn("ws broadcast queue full, event dropped", "slot", slot, "kind", ev.Kind)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

func (h *Hub) ServeWs(slot string, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "slot", slot, "err", err)
		return
	}
	c := &Client{hub: h, slot: slot, conn: conn, send: make(chan []byte, 64)}
	select {
	case h.register <- c:
	case <-h.quit:
		conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}

// readPump only watches for the close frame and keeps the read deadline
// moving; clients do not send commands over the socket.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.quit:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("ws read error", "slot", c.slot, "err", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
