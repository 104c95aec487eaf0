package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go-product-bridge/internal/model"
	"go-product-bridge/pkg/logger"

	"github.com/gofiber/contrib/websocket"
)

const broadcastBuffer = 64

// ProductEvent is the payload pushed to every connected client.
type ProductEvent struct {
	Type    string          `json:"type"`
	Action  string          `json:"action"`
	Product ProductSnapshot `json:"product"`
	Message string          `json:"message"`
}

type ProductSnapshot struct {
	ID          uint   `json:"id"`
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	CountryCode string `json:"country_code"`
}

type Hub struct {
	Clients    map[*websocket.Conn]bool
	Register   chan *websocket.Conn
	Unregister chan *websocket.Conn
	Broadcast  chan []byte
	mutex      sync.Mutex
	log        *logger.Logger

	// done is closed when Run returns.
	done chan struct{}
}

func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		Clients:    make(map[*websocket.Conn]bool),
		Register:   make(chan *websocket.Conn),
		Unregister: make(chan *websocket.Conn),
		Broadcast:  make(chan []byte, broadcastBuffer),
		log:        log,
		done:       make(chan struct{}),
	}
}

// Run pumps registrations and broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for conn := range h.Clients {
				conn.Close()
				delete(h.Clients, conn)
			}
			h.mutex.Unlock()
			return

		case conn := <-h.Register:
			h.mutex.Lock()
			h.Clients[conn] = true
			h.mutex.Unlock()
			h.log.Debug(ctx, "ws.client_connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.Clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Join registers conn. It reports false once the hub has stopped.
func (h *Hub) Join(conn *websocket.Conn) bool {
	select {
	case h.Register <- conn:
		return true
	case <-h.done:
		return false
	}
}

// Leave unregisters conn. After the hub has stopped it returns immediately,
// since Run already closed every client.
func (h *Hub) Leave(conn *websocket.Conn) {
	select {
	case h.Unregister <- conn:
	case <-h.done:
	}
}

// ClientCount is the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.Clients)
}

// ProductChanged queues an event for broadcast. It never blocks: when the
// buffer is full the event is dropped and logged.
func (h *Hub) ProductChanged(action string, product *model.Product) {
	event := NewProductEvent(action, product)
	msg, err := json.Marshal(event)
	if err != nil {
		h.log.Error(context.Background(), "ws.marshal_failed", err)
		return
	}

	select {
	case h.Broadcast <- msg:
	default:
		h.log.Warn(context.Background(), "ws.broadcast_dropped")
	}
}

func NewProductEvent(action string, product *model.Product) ProductEvent {
	return ProductEvent{
		Type:   "product_event",
		Action: action,
		Product: ProductSnapshot{
			ID:          product.ID,
			SKU:         product.SKU,
			Name:        product.Name,
			CountryCode: product.CountryCode,
		},
		Message: describe(action, product),
	}
}

func describe(action string, product *model.Product) string {
	switch action {
	case "product_created":
		return fmt.Sprintf("Product '%s' created with SKU %s", product.Name, product.SKU)
	case "product_updated":
		return fmt.Sprintf("Product '%s' updated", product.Name)
	case "product_deleted":
		return fmt.Sprintf("Product '%s' soft-deleted", product.Name)
	default:
		return fmt.Sprintf("Product '%s' changed", product.Name)
	}
}
