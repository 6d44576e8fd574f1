package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/DeveloperTechForest/nodevideocall/internal/core"
	"github.com/DeveloperTechForest/nodevideocall/internal/domain"
)

func (ctl *Controller) writePump(ctx context.Context, id domain.ConnID, c *wsConn) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("conn", string(id)).Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteTimeout)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump owns the single cleanup path for the connection: voluntary
// close and network death both land in the same deferred teardown, so the
// engine sees exactly one disconnect per connection.
func (ctl *Controller) readPump(ctx context.Context, id domain.ConnID, c *wsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(id)).Msg("readPump closing")
		ctl.hub.remove(id)
		ctl.engine.Disconnect(id)
		c.Close()
	}()

	pongWait := ctl.cfg.PingPeriod * 10 / 9
	c.conn.SetReadLimit(ctl.cfg.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("conn", string(id)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("readPump read error")
				}
				return
			}
			ctl.dispatch(id, data)
		}
	}
}

func (ctl *Controller) dispatch(id domain.ConnID, data []byte) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("bad frame")
		return
	}
	if ctl.metrics != nil {
		ctl.metrics.EventsRelayed.WithLabelValues(string(f.Event)).Inc()
	}

	switch f.Event {
	case "join-room":
		ctl.handleJoin(id, f.Data)
	case core.EventSignal:
		ctl.handleSignal(id, f.Data)
	case core.EventChatMessage:
		ctl.handleChat(id, f.Data)
	default:
		log.Warn().Str("module", "signal").Str("event", string(f.Event)).Msg("unknown event")
	}
}

func (ctl *Controller) handleJoin(id domain.ConnID, data []byte) {
	var p struct {
		Room   string `json:"room"`
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		return
	}
	ctl.engine.Join(id, domain.RoomName(p.Room), p.UserID)
}

func (ctl *Controller) handleSignal(id domain.ConnID, data []byte) {
	var p struct {
		Room string          `json:"room"`
		To   string          `json:"to"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad signal payload")
		return
	}
	ctl.engine.Signal(id, domain.RoomName(p.Room), domain.ConnID(p.To), p.Data)
}

func (ctl *Controller) handleChat(id domain.ConnID, data []byte) {
	var p struct {
		Room    string `json:"room"`
		From    string `json:"from"`
		Message string `json:"message"`
		FileURL string `json:"fileUrl"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad chat payload")
		return
	}
	ctl.engine.Chat(id, domain.RoomName(p.Room), p.From, p.Message, p.FileURL)
}
