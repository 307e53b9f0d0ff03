package ws

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"studyhub/internal/notify"
)

// Handler upgrades HTTP requests to websocket connections and registers
// them with the hub. The server only pushes; incoming frames are read
// and discarded, the read loop exists to notice the peer going away.
type Handler struct {
	hub         *notify.Hub
	upgrader    websocket.Upgrader
	sendTimeout time.Duration
	logger      *zap.Logger
}

func NewHandler(hub *notify.Hub, sendTimeout time.Duration, logger *zap.Logger) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Clients connect from the desktop app, not browsers.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		sendTimeout: sendTimeout,
		logger:      logger,
	}
}

func (h *Handler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed",
			zap.String("client_ip", c.ClientIP()),
			zap.Error(err),
		)
		return
	}

	channel := NewConn(conn, h.sendTimeout)
	id := h.hub.Register(channel)

	h.logger.Info("WebSocket connection established",
		zap.Int64("channel_id", id),
		zap.String("client_ip", c.ClientIP()),
	)

	defer func() {
		h.hub.Unregister(id)
		channel.Close()
		h.logger.Info("WebSocket connection closed", zap.Int64("channel_id", id))
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
