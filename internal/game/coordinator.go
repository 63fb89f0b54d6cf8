package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"go.uber.org/zap"

	"github.com/soulbound/soulbound-server/internal/game/rules"
)

// RoleAssigner hands out hidden roles right before a game starts.
type RoleAssigner interface {
	AssignRoles(players []*Player)
}

// ShuffledRoles assigns roles over a shuffled roster: up to two TrueSouls
// (always leaving at least one Forsaken), the rest Forsaken, and with five
// or more players the last one becomes the Reaper.
type ShuffledRoles struct {
	rng *rand.Rand
}

// NewShuffledRoles creates a role assigner. A nil rng uses a random seed.
func NewShuffledRoles(rng *rand.Rand) *ShuffledRoles {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &ShuffledRoles{rng: rng}
}

// AssignRoles implements RoleAssigner.
func (r *ShuffledRoles) AssignRoles(players []*Player) {
	n := len(players)
	if n == 0 {
		return
	}
	order := append([]*Player(nil), players...)
	r.rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })

	trueSouls := min(2, n-1)
	for i, p := range order {
		p.HasExtraLife = false
		p.RespawnedWithSix = false
		switch {
		case n >= 5 && i == n-1:
			p.Role = rules.RoleReaper
		case i < trueSouls:
			p.Role = rules.RoleTrueSoul
		default:
			p.Role = rules.RoleForsaken
			p.HasExtraLife = true
			p.RespawnedWithSix = n == 6
		}
	}
}

// Coordinator registers players as they join, starts the game once enough
// have joined and forwards in-game requests to the session.
// It is not safe for concurrent use.
type Coordinator struct {
	logger  *zap.Logger
	session *Session
	roles   RoleAssigner
}

// NewCoordinator creates a coordinator around session. A nil assigner uses
// ShuffledRoles.
func NewCoordinator(session *Session, roles RoleAssigner, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if roles == nil {
		roles = NewShuffledRoles(nil)
	}
	return &Coordinator{
		logger:  logger,
		session: session,
		roles:   roles,
	}
}

// Session returns the coordinated session.
func (c *Coordinator) Session() *Session {
	return c.session
}

// RegisterPlayer seats a player once. Registering the same id again has no
// effect. When the roster reaches the minimum size the game starts.
func (c *Coordinator) RegisterPlayer(id, name string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("failed to register player: %w", ErrMissingPlayerID)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Player_%d", len(c.session.players)+1)
	}

	added, err := c.session.AddPlayer(id, name)
	if err != nil {
		return err
	}
	if !added {
		c.logger.Debug("player already registered", zap.String("player_id", id))
		return nil
	}

	if c.session.Phase() == rules.PhaseWaitingForPlayers && len(c.session.players) >= c.session.cfg.MinPlayers {
		c.roles.AssignRoles(c.session.players)
		if err := c.session.StartGame(); err != nil {
			return fmt.Errorf("failed to start game: %w", err)
		}
	}
	return nil
}

// PlayCard forwards a card play from playerID.
func (c *Coordinator) PlayCard(playerID string, handIndex int, targetID string) error {
	return c.session.PlayCard(playerID, handIndex, targetID)
}

// EndTurn forwards an end-of-turn request from playerID.
func (c *Coordinator) EndTurn(playerID string) error {
	return c.session.EndTurn(playerID)
}

// Disconnect removes a player whose connection went away. Unknown players
// are ignored.
func (c *Coordinator) Disconnect(playerID string) error {
	err := c.session.RemovePlayer(playerID)
	if errors.Is(err, ErrUnknownPlayer) {
		return nil
	}
	return err
}

// View returns the snapshot playerID may see.
func (c *Coordinator) View(playerID string) SessionView {
	return c.session.View(playerID)
}

// Subscribe registers a listener for committed session events.
func (c *Coordinator) Subscribe(listener rules.Listener) int {
	return c.session.Events().Subscribe(listener)
}

// SubscribeTyped registers a listener for one committed event type.
func (c *Coordinator) SubscribeTyped(eventType rules.EventType, listener func(rules.Event)) int {
	return c.session.Events().SubscribeTyped(eventType, listener)
}

// Unsubscribe removes a listener registered with Subscribe or SubscribeTyped.
func (c *Coordinator) Unsubscribe(handle int) {
	c.session.Events().Unsubscribe(handle)
}
