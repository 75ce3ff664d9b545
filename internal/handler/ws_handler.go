package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/eliteadvisers/portal/internal/clock"
	"github.com/eliteadvisers/portal/internal/response"
	"github.com/eliteadvisers/portal/internal/session"
	ws "github.com/eliteadvisers/portal/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams the admin console clock.
type WSHandler struct {
	gate     *session.Gate
	interval time.Duration
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(gate *session.Gate, interval time.Duration, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	if interval <= 0 {
		interval = time.Second
	}
	return &WSHandler{
		gate:     gate,
		interval: interval,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// AdminClockStream godoc
// WS /ws/admin/clock
// Sends a tick every interval until the client disconnects. Clients may
// send {"action":"ping"}.
func (h *WSHandler) AdminClockStream(c *gin.Context) {
	if _, err := h.gate.Token(c.Request.Context(), session.KindAdmin); err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrSessionRequired)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	w := ws.NewWriter(conn)
	display := clock.NewDisplay(time.Now())
	if err := w.WriteTyped(ws.NewTick(display.Now(), display.Format())); err != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop := clock.Start(ctx, h.interval, func(t time.Time) {
		display.Set(t)
		if err := w.WriteTyped(ws.NewTick(t, display.Format())); err != nil {
			h.log.Debug().Err(err).Msg("Tick write failed")
			cancel()
		}
	})
	defer stop()

	h.log.Info().Msg("Admin clock connected")

	for {
		var msg ws.RequestEnvelope
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn().Err(err).Msg("Unexpected close")
			} else {
				h.log.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionPing:
			w.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		default:
			w.WriteError("unknown action: " + string(msg.Action))
		}
	}
}
