package websocket

import "github.com/stemsi/anonq-bot/internal/events"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const ActionPing Action = "ping"

// RequestEnvelope is the only client message shape.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError     Event = "error"
	EventPong      Event = "pong"
	EventLifecycle Event = "lifecycle"
)

// LifecycleMessage wraps one question lifecycle event.
type LifecycleMessage struct {
	Event Event        `json:"event"`
	Data  events.Event `json:"data"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
