package www

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

const (
	MessageTypeTitle     = "title"
	MessageTypeScroll    = "scroll"
	MessageTypeDashboard = "dashboard"
)

// Message is the JSON envelope pushed to browsers.
type Message struct {
	Type  string `json:"type"`
	Title string `json:"title,omitempty"`
	Key   string `json:"key,omitempty"`
	Html  string `json:"html,omitempty"`
}

type Client struct {
	logger *slog.Logger
	hub    *Hub
	conn   *ws.Conn
	send   chan []byte
	id     string
}

func NewClient(hub *Hub, w http.ResponseWriter, r *http.Request) (*Client, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	return &Client{
		logger: hub.logger.With(slog.String("client", id), slog.String("userAgent", r.UserAgent())),
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		id:     id,
	}, nil
}

// ReadPump discards incoming messages and keeps the read deadline moving on
// pongs, so dead connections get unregistered.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Warn("web socket set read deadline failed", slog.Any("error", err))
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if ws.IsUnexpectedCloseError(err, ws.CloseGoingAway, ws.CloseAbnormalClosure) {
				c.logger.Debug("web socket closed unexpectedly", slog.Any("error", err))
			}
			return
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.hub.unregister(c)
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Warn("web socket set write deadline failed", slog.Any("error", err))
				return
			}

			if !ok {
				if err := c.conn.WriteMessage(ws.CloseMessage, []byte{}); err != nil {
					c.logger.Debug("web socket close message failed", slog.Any("error", err))
				}
				return
			}

			if err := c.conn.WriteMessage(ws.TextMessage, message); err != nil {
				c.logger.Warn("web socket write failed", slog.Any("error", err))
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Warn("web socket set write deadline failed", slog.Any("error", err))
				return
			}
			if err := c.conn.WriteMessage(ws.PingMessage, nil); err != nil {
				c.logger.Debug("web socket ping message failed", slog.Any("error", err))
				return
			}
		}
	}
}

// Hub maintains the set of active clients and broadcasts messages to clients.
// The last title and scroll messages are replayed to clients when they connect.
type Hub struct {
	broadcast chan []byte
	join      chan *Client
	leave     chan *Client
	done      chan struct{}
	clients   map[*Client]bool
	logger    *slog.Logger

	mutex      sync.Mutex
	lastTitle  []byte
	lastScroll []byte
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		broadcast: make(chan []byte, 16),
		join:      make(chan *Client),
		leave:     make(chan *Client),
		done:      make(chan struct{}),
		clients:   make(map[*Client]bool),
		logger:    logger,
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
			}
			h.clients = map[*Client]bool{}
			return

		case client := <-h.join:
			h.logger.Debug("registering client", slog.String("client", client.id))
			h.clients[client] = true

			h.mutex.Lock()
			replay := [][]byte{h.lastTitle, h.lastScroll}
			h.mutex.Unlock()
			for _, msg := range replay {
				if msg != nil {
					h.deliver(client, msg)
				}
			}

		case client := <-h.leave:
			if _, ok := h.clients[client]; ok {
				h.logger.Debug("unregistering client", slog.String("client", client.id))
				delete(h.clients, client)
				close(client.send)
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				h.deliver(client, message)
			}
		}
	}
}

func (h *Hub) deliver(client *Client, message []byte) {
	select {
	case client.send <- message:
	default: // Client's channel is full, drop the message
		h.logger.Warn("client send buffer full, dropping message", slog.String("client", client.id))
	}
}

func (h *Hub) register(c *Client) bool {
	select {
	case h.join <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregister(c *Client) {
	select {
	case h.leave <- c:
	case <-h.done:
	}
}

// Publish sends msg to all connected clients. It does not block once the hub has stopped.
func (h *Hub) Publish(msg Message) {
	buf, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("web socket message encoding failed", slog.Any("error", err))
		return
	}

	h.mutex.Lock()
	switch msg.Type {
	case MessageTypeTitle:
		h.lastTitle = buf
	case MessageTypeScroll:
		h.lastScroll = buf
	}
	h.mutex.Unlock()

	websocketMessagesTotal.WithLabelValues(msg.Type).Inc()
	select {
	case h.broadcast <- buf:
	case <-h.done:
	}
}

// ServeWs upgrades the request and attaches the connection to the hub.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	client, err := NewClient(h, w, r)
	if err != nil {
		h.logger.Error("new websocket client failed", slog.Any("error", err))
		return
	}
	if !h.register(client) {
		client.conn.Close()
		return
	}
	go client.WritePump()
	go client.ReadPump()
}
