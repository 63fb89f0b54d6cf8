package server

import (
	"github.com/soulbound/soulbound-server/internal/game"
	"github.com/soulbound/soulbound-server/internal/game/rules"
)

// Inbound message types.
const (
	MessagePlayCard = "play_card"
	MessageEndTurn  = "end_turn"
	MessageView     = "view"
)

// Outbound message types.
const (
	MessageWelcome  = "welcome"
	MessageEvent    = "event"
	MessageRejected = "rejected"
)

// ClientMessage is a request sent by a connected player.
type ClientMessage struct {
	Type      string `json:"type"`
	HandIndex int    `json:"hand_index"`
	TargetID  string `json:"target_id,omitempty"`
	// PlayerID is the identity the client claims; it must match the
	// connection when set.
	PlayerID string `json:"player_id,omitempty"`
}

// ServerMessage is anything the server pushes to a connection.
type ServerMessage struct {
	Type     string            `json:"type"`
	PlayerID string            `json:"player_id,omitempty"`
	Event    *rules.Event      `json:"event,omitempty"`
	View     *game.SessionView `json:"view,omitempty"`
	Request  string            `json:"request,omitempty"`
	Code     string            `json:"code,omitempty"`
	Reason   string            `json:"reason,omitempty"`
}
