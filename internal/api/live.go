package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"wikiscope/pkg/dashboard"
)

const (
	livePingInterval = 30 * time.Second
	liveWriteWait    = 5 * time.Second
)

// EventSource hands out subscriptions to refresh events.
type EventSource interface {
	Subscribe() (<-chan dashboard.Event, func())
}

// LiveHandler upgrades dashboard clients to a WebSocket and pushes one
// frame per completed dataset refresh.
type LiveHandler struct {
	hub      EventSource
	upgrader websocket.Upgrader
}

// NewLiveHandler creates a new LiveHandler.
func NewLiveHandler(hub EventSource) *LiveHandler {
	return &LiveHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		slog.Warn("WebSocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	events, cancel := h.hub.Subscribe()
	defer cancel()

	slog.Debug("Live client connected", "remote", r.RemoteAddr)

	// Clients never send frames, but reading is what surfaces the close
	// handshake and keeps control messages flowing.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(livePingInterval)
	defer ticker.Stop()

	for {
		select {
		case ev := <-events:
			if err := conn.WriteJSON(ev); err != nil {
				slog.Debug("Live client write failed", "error", err)
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(liveWriteWait)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		case <-done:
			slog.Debug("Live client disconnected", "remote", r.RemoteAddr)
			return
		case <-r.Context().Done():
			return
		}
	}
}
