package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radieske/pick-control/internal/shared/auth"
	"github.com/radieske/pick-control/internal/shared/metrics"
	"github.com/radieske/pick-control/pkg/contracts/events"
)

const writeWait = 5 * time.Second

// client serializa as escritas; gorilla não aceita writers concorrentes
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

// Hub gerencia conexões WebSocket agrupadas por dono
// subs: mapeia ownerID para o conjunto de conexões abertas
type Hub struct {
	log      *zap.Logger
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	subs     map[string]map[*client]struct{}
}

// NewHub cria uma instância de Hub com política customizada de origem (CORS)
func NewHub(log *zap.Logger, allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		log:      log,
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		subs:     make(map[string]map[*client]struct{}),
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão.
// Requer a Session no contexto (auth.Middleware); responde ping com pong.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	s, ok := auth.SessionFrom(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	key := s.UserID
	if s.IsAdmin() {
		key = allOwners
	}
	c := &client{conn: conn}
	h.add(key, c)
	defer h.remove(key, c)

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		if msg.Type == "ping" {
			b, _ := json.Marshal(map[string]string{"type": "pong"})
			_ = c.write(b)
		}
	}
}

func (h *Hub) add(key string, c *client) {
	h.mu.Lock()
	if _, ok := h.subs[key]; !ok {
		h.subs[key] = make(map[*client]struct{})
	}
	h.subs[key][c] = struct{}{}
	h.mu.Unlock()
	metrics.WSConnections.Inc()
}

func (h *Hub) remove(key string, c *client) {
	h.mu.Lock()
	if set, ok := h.subs[key]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, key)
		}
	}
	h.mu.Unlock()
	metrics.WSConnections.Dec()
}

// Broadcast entrega a atualização às conexões do dono e às sessões admin
func (h *Hub) Broadcast(msg events.Broadcast) {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.subs[msg.OwnerID])+len(h.subs[allOwners]))
	for c := range h.subs[msg.OwnerID] {
		targets = append(targets, c)
	}
	if msg.OwnerID != allOwners {
		for c := range h.subs[allOwners] {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()
	if len(targets) == 0 {
		return
	}

	b, err := json.Marshal(msg.Update)
	if err != nil {
		return
	}
	for _, c := range targets {
		if err := c.write(b); err != nil && h.log != nil {
			h.log.Debug("ws write failed", zap.Error(err))
		}
	}
}
