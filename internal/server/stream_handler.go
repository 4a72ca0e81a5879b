package server

import (
	"net/http"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/broadcast777/my-dividend-app/internal/modules/universe"
)

// StreamHandler pushes batch refresh progress events over a websocket.
type StreamHandler struct {
	hub *universe.ProgressHub
	log zerolog.Logger
}

// NewStreamHandler creates a refresh progress stream handler
func NewStreamHandler(hub *universe.ProgressHub, log zerolog.Logger) *StreamHandler {
	return &StreamHandler{
		hub: hub,
		log: log.With().Str("handler", "refresh-stream").Logger(),
	}
}

// HandleStream handles GET /api/securities/refresh/stream
func (h *StreamHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // same-origin dashboard plus CORS-permitted clients
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("Websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	events, cancel := h.hub.Subscribe()
	defer cancel()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case ev, ok := <-events:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			if err := wsjson.Write(ctx, conn, ev); err != nil {
				h.log.Debug().Err(err).Msg("Websocket write failed, dropping subscriber")
				return
			}
		}
	}
}
