// Package kds pushes order events to kitchen and dashboard screens over websockets.
package kds

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/qr-hotel-menu/models"
	"github.com/yeremiapane/qr-hotel-menu/utils"
)

const (
	defaultWriteWait = 10 * time.Second
	clientBuffer     = 32
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// client owns one connection. Only its writer goroutine writes to conn.
type client struct {
	conn  *websocket.Conn
	label string
	send  chan []byte
}

// Hub holds the connected screens. Broadcasts never wait on a socket: each client has a
// buffered queue drained by its own writer, and a client whose queue is full is dropped.
type Hub struct {
	clients   map[*websocket.Conn]*client
	mutex     sync.Mutex
	writeWait time.Duration
}

func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*websocket.Conn]*client),
		writeWait: defaultWriteWait,
	}
}

// Register adds conn under a free-form label used only for logging.
func (h *Hub) Register(conn *websocket.Conn, label string) {
	c := &client{conn: conn, label: label, send: make(chan []byte, clientBuffer)}
	h.mutex.Lock()
	h.clients[conn] = c
	h.mutex.Unlock()
	go h.writePump(c)
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if c, ok := h.clients[conn]; ok {
		h.removeLocked(c)
	}
}

func (h *Hub) Count() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Publish broadcasts an order event. Slow or broken clients are dropped.
func (h *Hub) Publish(_ context.Context, event models.OrderEvent) error {
	h.broadcast(Message{Event: event.Type, Data: event})
	return nil
}

func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Errorf("kds: marshal %s: %v", msg.Event, err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for _, c := range h.clients {
		select {
		case c.send <- data:
		default:
			utils.ErrorLogger.WithFields(logrus.Fields{
				"client": c.label,
				"event":  msg.Event,
			}).Error("kds: client is not keeping up, dropping it")
			h.removeLocked(c)
		}
	}
}

// removeLocked forgets c and stops its writer. Caller holds h.mutex.
func (h *Hub) removeLocked(c *client) {
	delete(h.clients, c.conn)
	close(c.send)
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(h.writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.WithField("client", c.label).Errorf("kds: write failed, dropping client: %v", err)
			h.Unregister(c.conn)
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(h.writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
