// Package realtime empuja eventos del ciclo de vida a los clientes
// conectados por websocket. Cada usuario tiene su sala implícita (sus
// conexiones) y existe un broadcast global para los paneles de admin.
package realtime

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"

	"github.com/makerforge/quote3d-api/internal/application/ports"
	"github.com/makerforge/quote3d-api/pkg/logger"
)

var _ ports.Publisher = (*Hub)(nil)

// Event mensaje enviado por el socket.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type client struct {
	userID string
	send   chan []byte
}

// Hub registro de conexiones activas y fan-out de eventos.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	log     *logger.Logger
}

// NewHub construye el hub vacío.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		log:     log,
	}
}

// Publish envía el evento a todas las conexiones de un usuario.
func (h *Hub) Publish(userID, event string, payload any) {
	msg, err := json.Marshal(Event{Event: event, Data: payload})
	if err != nil {
		h.log.Warn().Err(err).Str("event", event).Msg("realtime: serializar evento")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.userID == userID {
			c.trySend(msg)
		}
	}
}

// Broadcast envía el evento a todas las conexiones.
func (h *Hub) Broadcast(event string, payload any) {
	msg, err := json.Marshal(Event{Event: event, Data: payload})
	if err != nil {
		h.log.Warn().Err(err).Str("event", event).Msg("realtime: serializar evento")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.trySend(msg)
	}
}

// trySend encola sin bloquear: un cliente lento pierde eventos en vez de
// frenar el fan-out.
func (c *client) trySend(msg []byte) {
	select {
	case c.send <- msg:
	default:
	}
}

// Handler atiende una conexión ya autenticada. userID viene del middleware
// de auth (Locals) antes del upgrade.
func (h *Hub) Handler() func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		userID, _ := conn.Locals("userID").(string)
		c := &client{userID: userID, send: make(chan []byte, 32)}

		h.mu.Lock()
		h.clients[c] = struct{}{}
		h.mu.Unlock()

		defer func() {
			h.mu.Lock()
			delete(h.clients, c)
			h.mu.Unlock()
			close(c.send)
		}()

		done := make(chan struct{})
		go func() {
			defer conn.Close()
			for {
				select {
				case msg, ok := <-c.send:
					if !ok {
						return
					}
					if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		// Loop de lectura solo para detectar el cierre del cliente.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		close(done)
	}
}
