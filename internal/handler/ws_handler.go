package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/anonq-bot/internal/events"
	"github.com/stemsi/anonq-bot/internal/middleware"
	ws "github.com/stemsi/anonq-bot/internal/websocket"
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

// WSHandler streams question lifecycle events to ops clients.
type WSHandler struct {
	source   events.Source
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(source events.Source, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		source:   source,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// EventStream godoc
// WS /ws/v1/events
// Forwards every lifecycle event; answers {"action":"ping"} with a pong.
func (h *WSHandler) EventStream(c *gin.Context) {
	subject := ""
	if claims := middleware.GetClaims(c); claims != nil {
		subject = claims.Subject
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	wsLog := h.log.With().Str("subject", subject).Logger()

	feed, stop, err := h.source.Listen(ctx)
	if err != nil {
		wsLog.Error().Err(err).Msg("subscribe to events")
		_ = ws.WriteError(conn, "event stream unavailable")
		return
	}
	defer stop()

	// gorilla allows one concurrent writer, so the reader only signals.
	pings := make(chan struct{}, 1)
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				}
				return
			}
			if msg.Action == ws.ActionPing {
				select {
				case pings <- struct{}{}:
				default:
				}
			}
		}
	}()

	wsLog.Info().Msg("Ops client attached to event stream")

	for {
		select {
		case <-closed:
			wsLog.Debug().Msg("Connection closed")
			return
		case <-ctx.Done():
			return
		case <-pings:
			if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
				return
			}
		case ev, ok := <-feed:
			if !ok {
				return
			}
			if err := ws.WriteTyped(conn, ws.LifecycleMessage{Event: ws.EventLifecycle, Data: ev}); err != nil {
				wsLog.Debug().Err(err).Msg("write event")
				return
			}
		}
	}
}
