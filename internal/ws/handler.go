// Package ws streams prompt and acknowledgment events to the host over a
// WebSocket and accepts confirmation answers on the same connection.
package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/voxlaunch/voxlaunch/internal/confirm"
	"github.com/voxlaunch/voxlaunch/internal/events"
	"github.com/voxlaunch/voxlaunch/internal/logging"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local host bridge, origin enforcement is upstream
	},
}

// Handler manages WebSocket connections.
type Handler struct {
	hub         *events.Hub
	coordinator *confirm.Coordinator
	logger      *logging.Logger
}

// NewHandler creates a WebSocket handler.
func NewHandler(hub *events.Hub, coordinator *confirm.Coordinator, logger *logging.Logger) *Handler {
	return &Handler{hub: hub, coordinator: coordinator, logger: logger}
}

// inbound is a message from the host.
type inbound struct {
	Type   string `json:"type"`
	App    string `json:"app,omitempty"`
	Answer string `json:"answer,omitempty"`
}

// HandleConnection upgrades the request and bridges events both ways: hub
// events out, confirmation answers in.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	eventCh, cancel := h.hub.Subscribe()
	defer cancel()

	// Writer: one goroutine owns the connection's write side.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for event := range eventCh {
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(event); err != nil {
				h.logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		}
	}()

	for {
		var msg inbound
		if err := conn.ReadJSON(&msg); err != nil {
			h.logger.Debug("websocket read ended", zap.Error(err))
			break
		}

		switch msg.Type {
		case "respond":
			accepted := h.coordinator.Respond(context.Background(), msg.App, confirm.ParseAnswer(msg.Answer))
			if !accepted {
				h.logger.Debug("response without active session", zap.String("app", msg.App))
			}
		case "ping":
			// Events flow through the hub channel; pings just keep the
			// connection warm.
		default:
			h.logger.Debug("unknown websocket message type", zap.String("type", msg.Type))
		}
	}

	cancel()
	<-done
}
