package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/audit"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/realtime"
	pkglog "github.com/weiawesome/wes-io-live/pkg/log"
	"github.com/weiawesome/wes-io-live/pkg/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler upgrades authenticated requests to websocket clients of the hub.
type WSHandler struct {
	hub            *realtime.Hub
	authMiddleware *middleware.AuthMiddleware
}

func NewWSHandler(hub *realtime.Hub, authMiddleware *middleware.AuthMiddleware) *WSHandler {
	return &WSHandler{hub: hub, authMiddleware: authMiddleware}
}

// RegisterRoutes registers GET /ws. Browsers pass the token as ?token=.
func (h *WSHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/ws", h.authMiddleware.RequireAuth(), h.HandleWebSocket)
}

func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l := pkglog.Ctx(ctx)
		l.Warn().Err(err).Str(pkglog.FieldUserID, userID).Msg("websocket upgrade failed")
		audit.Log(ctx, audit.ActionSocketRejected, userID, "websocket upgrade failed")
		return
	}

	client := realtime.NewClient(uuid.New().String(), userID, h.hub, conn)
	h.hub.Register(client)
	audit.LogTarget(ctx, audit.ActionSocketConnect, userID, client.ID, "websocket connected")

	go client.WritePump()
	go client.ReadPump()
}
