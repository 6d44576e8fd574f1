package signal

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/DeveloperTechForest/nodevideocall/internal/core"
	"github.com/DeveloperTechForest/nodevideocall/internal/domain"
)

// frame is the wire envelope, both directions: the event name plus an
// event-specific payload.
type frame struct {
	Event core.Event      `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Hub holds the live connections and implements core.Emitter on top of
// them. It knows nothing about rooms; membership lives in the engine.
type Hub struct {
	mu    sync.RWMutex
	conns map[domain.ConnID]*wsConn
}

func NewHub() *Hub {
	return &Hub{conns: make(map[domain.ConnID]*wsConn)}
}

func (h *Hub) add(id domain.ConnID, c *wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[id] = c
}

func (h *Hub) remove(id domain.ConnID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, id)
}

// Emit marshals and queues one event for one connection. Never blocks;
// frames for unknown or saturated connections are dropped.
func (h *Hub) Emit(to domain.ConnID, event core.Event, payload any) {
	h.mu.RLock()
	c, ok := h.conns[to]
	h.mu.RUnlock()
	if !ok {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("module", "signal.hub").Str("event", string(event)).Msg("marshal payload")
		return
	}
	b, err := json.Marshal(frame{Event: event, Data: data})
	if err != nil {
		log.Error().Err(err).Str("module", "signal.hub").Str("event", string(event)).Msg("marshal frame")
		return
	}
	if err := c.TrySend(b); err != nil {
		log.Warn().Err(err).Str("module", "signal.hub").
			Str("conn", string(to)).Str("event", string(event)).
			Msg("frame dropped")
	}
}
