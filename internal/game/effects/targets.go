package effects

import (
	"errors"
	"fmt"

	"github.com/soulbound/soulbound-server/internal/game/catalog"
)

// ErrInvalidTarget is returned when a card's target rule cannot be satisfied.
var ErrInvalidTarget = errors.New("invalid target")

// TargetView provides the roster facts needed to resolve targets.
type TargetView interface {
	// PlayerAlive reports whether the player exists and whether it is alive.
	PlayerAlive(playerID string) (alive bool, found bool)
	// AlivePlayerIDs returns the alive players in roster order.
	AlivePlayerIDs() []string
}

// ResolveTargets turns a target rule and a client supplied reference into
// the set of player IDs an effect applies to. A nil result with a nil error
// means the card is untargeted.
func ResolveTargets(rule catalog.TargetRule, casterID, targetID string, view TargetView) ([]string, error) {
	switch rule {
	case catalog.TargetSelf:
		return []string{casterID}, nil
	case catalog.TargetOtherPlayer:
		if targetID == casterID {
			return nil, fmt.Errorf("%w: cannot target yourself", ErrInvalidTarget)
		}
		if err := requireAlive(targetID, view); err != nil {
			return nil, err
		}
		return []string{targetID}, nil
	case catalog.TargetAnyPlayer:
		if err := requireAlive(targetID, view); err != nil {
			return nil, err
		}
		return []string{targetID}, nil
	case catalog.TargetAllPlayers:
		return view.AlivePlayerIDs(), nil
	case catalog.TargetNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: unknown target rule %q", ErrInvalidTarget, rule)
	}
}

func requireAlive(targetID string, view TargetView) error {
	if targetID == "" {
		return fmt.Errorf("%w: target required", ErrInvalidTarget)
	}
	alive, found := view.PlayerAlive(targetID)
	if !found {
		return fmt.Errorf("%w: player %s not found", ErrInvalidTarget, targetID)
	}
	if !alive {
		return fmt.Errorf("%w: player %s is dead", ErrInvalidTarget, targetID)
	}
	return nil
}
