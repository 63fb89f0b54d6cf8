package game

import (
	"errors"

	"github.com/soulbound/soulbound-server/internal/game/catalog"
	"github.com/soulbound/soulbound-server/internal/game/effects"
)

var (
	ErrEmptyRoster         = errors.New("roster is empty")
	ErrNoAlivePlayers      = errors.New("no alive players")
	ErrNotInProgress       = errors.New("session is not in progress")
	ErrGameInProgress      = errors.New("game already in progress")
	ErrSessionStalled      = errors.New("session stalled: no other alive player to pass the turn to")
	ErrUnknownPlayer       = errors.New("unknown player")
	ErrMissingPlayerID     = errors.New("player id is required")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrPlayerDead          = errors.New("player is dead")
	ErrHandIndexOutOfRange = errors.New("hand index out of range")
	ErrInsufficientMana    = errors.New("insufficient mana")
	ErrHandLimitExceeded   = errors.New("hand limit exceeded")
)

var rejectionCodes = []struct {
	err  error
	code string
}{
	{ErrEmptyRoster, "EMPTY_ROSTER"},
	{ErrNoAlivePlayers, "NO_ALIVE_PLAYERS"},
	{ErrNotInProgress, "NOT_IN_PROGRESS"},
	{ErrGameInProgress, "GAME_IN_PROGRESS"},
	{ErrSessionStalled, "SESSION_STALLED"},
	{ErrUnknownPlayer, "UNKNOWN_PLAYER"},
	{ErrMissingPlayerID, "MISSING_PLAYER_ID"},
	{ErrNotYourTurn, "NOT_YOUR_TURN"},
	{ErrPlayerDead, "PLAYER_DEAD"},
	{ErrHandIndexOutOfRange, "HAND_INDEX_OUT_OF_RANGE"},
	{ErrInsufficientMana, "INSUFFICIENT_MANA"},
	{ErrHandLimitExceeded, "HAND_LIMIT_EXCEEDED"},
	{catalog.ErrNotFound, "CARD_NOT_FOUND"},
	{effects.ErrInvalidTarget, "INVALID_TARGET"},
}

// RejectionCode maps a rejected request to a stable code clients can switch on.
func RejectionCode(err error) string {
	if err == nil {
		return ""
	}
	for _, rc := range rejectionCodes {
		if errors.Is(err, rc.err) {
			return rc.code
		}
	}
	return "REJECTED"
}
