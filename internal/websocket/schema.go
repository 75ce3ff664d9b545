package websocket

import "time"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError Event = "error"
	EventTick  Event = "tick"
	EventPong  Event = "pong"
)

// TickResponse is one clock tick of the admin console.
type TickResponse struct {
	Event   Event  `json:"event"`
	Display string `json:"display"`
	Unix    int64  `json:"unix"`
}

// NewTick builds the tick for t.
func NewTick(t time.Time, display string) TickResponse {
	return TickResponse{Event: EventTick, Display: display, Unix: t.Unix()}
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
