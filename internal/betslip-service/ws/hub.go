package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radieske/football-betslip/pkg/contracts/events"
)

// client serializa as escritas: gorilla aceita só um writer por conexão
type client struct {
	id   string
	conn *websocket.Conn
	wmu  sync.Mutex
}

func (c *client) write(v any) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub mantém as assinaturas fixtureID -> clientes
type Hub struct {
	upgrader websocket.Upgrader
	log      *zap.Logger
	mu       sync.RWMutex
	subs     map[int64]map[*client]struct{}
	onUpdate []func(events.PredictionUpdate)
}

func NewHub(allowOrigin func(r *http.Request) bool, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		log:      log,
		subs:     make(map[int64]map[*client]struct{}),
	}
}

// OnUpdate registra fn para cada previsão vinda do canal Redis, antes do broadcast.
// Deve ser chamado antes de StartRedisSubscriber.
func (h *Hub) OnUpdate(fn func(events.PredictionUpdate)) {
	h.onUpdate = append(h.onUpdate, fn)
}

// HandleWS atende uma conexão até o cliente fechar
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{id: uuid.NewString(), conn: conn}
	log := h.log.With(zap.String("ws_client", c.id))
	log.Debug("ws connected")

	defer func() {
		h.drop(c)
		_ = conn.Close()
		log.Debug("ws disconnected")
	}()

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		switch msg.Type {
		case "subscribe":
			if msg.FixtureID <= 0 {
				_ = c.write(ServerMsg{Type: "error", Error: "fixture_id required"})
				continue
			}
			h.mu.Lock()
			if _, ok := h.subs[msg.FixtureID]; !ok {
				h.subs[msg.FixtureID] = make(map[*client]struct{})
			}
			h.subs[msg.FixtureID][c] = struct{}{}
			h.mu.Unlock()
		case "unsubscribe":
			h.mu.Lock()
			h.remove(msg.FixtureID, c)
			h.mu.Unlock()
		case "ping":
			_ = c.write(ServerMsg{Type: "pong"})
		default:
			_ = c.write(ServerMsg{Type: "error", Error: "unknown message type"})
		}
	}
}

// remove exige h.mu travado
func (h *Hub) remove(fixtureID int64, c *client) {
	if m, ok := h.subs[fixtureID]; ok {
		delete(m, c)
		if len(m) == 0 {
			delete(h.subs, fixtureID)
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	for id := range h.subs {
		h.remove(id, c)
	}
	h.mu.Unlock()
}

// Subscribers devolve quantos clientes acompanham a partida
func (h *Hub) Subscribers(fixtureID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[fixtureID])
}

// Broadcast envia a previsão nova a todos os inscritos na partida
func (h *Hub) Broadcast(upd events.PredictionUpdate) {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.subs[upd.FixtureID]))
	for c := range h.subs[upd.FixtureID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()
	if len(targets) == 0 {
		return
	}

	msg := ServerMsg{Type: "prediction", Prediction: &upd}
	for _, c := range targets {
		if err := c.write(msg); err != nil {
			h.log.Debug("ws write failed", zap.String("ws_client", c.id), zap.Error(err))
		}
	}
}

// handleRaw é o caminho do subscriber: payload JSON vindo do Redis
func (h *Hub) handleRaw(payload []byte) error {
	var upd events.PredictionUpdate
	if err := json.Unmarshal(payload, &upd); err != nil {
		return err
	}
	for _, fn := range h.onUpdate {
		fn(upd)
	}
	h.Broadcast(upd)
	return nil
}
