package signal

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/DeveloperTechForest/nodevideocall/internal/config"
	"github.com/DeveloperTechForest/nodevideocall/internal/core"
	"github.com/DeveloperTechForest/nodevideocall/internal/domain"
	"github.com/DeveloperTechForest/nodevideocall/internal/metrics"
)

// eventConnected is the handshake frame carrying the freshly minted
// connection id back to the client.
const eventConnected core.Event = "connected"

type connectedPayload struct {
	SocketID domain.ConnID `json:"socketId"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Controller upgrades websocket requests and runs the per-connection
// read/write pumps, feeding inbound frames to the engine.
type Controller struct {
	cfg     *config.Config
	hub     *Hub
	engine  *core.Engine
	metrics *metrics.Metrics
}

func NewController(cfg *config.Config, hub *Hub, engine *core.Engine, m *metrics.Metrics) *Controller {
	return &Controller{cfg: cfg, hub: hub, engine: engine, metrics: m}
}

func (ctl *Controller) HandleWS(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	id := domain.ConnID(uuid.NewString())
	log.Info().Str("module", "signal").
		Str("conn", string(id)).Str("ct", c.GetString("client_token")).
		Msg("new WS connection")

	conn := newWSConn(ws, ctl.cfg.SendBuffer)
	ctl.hub.add(id, conn)
	ctl.engine.Connect(id)
	ctl.hub.Emit(id, eventConnected, connectedPayload{SocketID: id})

	go ctl.writePump(ctx, id, conn)
	go ctl.readPump(ctx, id, conn)
}
