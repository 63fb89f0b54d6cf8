package game

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/soulbound/soulbound-server/internal/game/catalog"
	"github.com/soulbound/soulbound-server/internal/game/deck"
	"github.com/soulbound/soulbound-server/internal/game/effects"
	"github.com/soulbound/soulbound-server/internal/game/rules"
)

// Config holds the tunable numbers of a session.
type Config struct {
	MinPlayers     int `mapstructure:"min_players"`
	StartingHand   int `mapstructure:"starting_hand"`
	TurnDraw       int `mapstructure:"turn_draw"`
	HandLimit      int `mapstructure:"hand_limit"`
	BonusHandLimit int `mapstructure:"bonus_hand_limit"`
}

// DefaultConfig returns the standard rules.
func DefaultConfig() Config {
	return Config{
		MinPlayers:     2,
		StartingHand:   5,
		TurnDraw:       2,
		HandLimit:      5,
		BonusHandLimit: 6,
	}
}

// Session owns the roster, the deck and the turn pointer of one game.
// It is not safe for concurrent use; callers serialize requests.
type Session struct {
	logger   *zap.Logger
	cfg      Config
	catalog  *catalog.Catalog
	deck     *deck.Deck
	resolver *effects.Resolver
	bus      *rules.EventBus
	turns    *rules.TurnManager
	evaluate func([]rules.Combatant) rules.Side

	players     []*Player
	phase       rules.Phase
	winner      rules.Side
	reaperAlive bool

	pending []rules.Event
}

// NewSession creates a session in the waiting phase and loads one copy of
// every catalog card into the deck.
func NewSession(cfg Config, cat *catalog.Catalog, dk *deck.Deck, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dk == nil {
		dk = deck.New(nil, logger)
	}
	dk.Initialize(cat.IDs())

	return &Session{
		logger:   logger,
		cfg:      cfg,
		catalog:  cat,
		deck:     dk,
		resolver: effects.NewResolver(logger),
		bus:      rules.NewEventBus(),
		turns:    rules.NewTurnManager(),
		evaluate: rules.Evaluate,
		phase:    rules.PhaseWaitingForPlayers,
	}
}

// Events returns the bus committed session events are published on.
func (s *Session) Events() *rules.EventBus {
	return s.bus
}

// Phase returns the lifecycle phase.
func (s *Session) Phase() rules.Phase {
	return s.phase
}

// Winner returns the winning side once the session has finished.
func (s *Session) Winner() rules.Side {
	return s.winner
}

// ReaperAlive reports whether a Reaper is seated and alive.
func (s *Session) ReaperAlive() bool {
	return s.reaperAlive
}

// TurnNumber returns the number of the turn in progress.
func (s *Session) TurnNumber() int {
	return s.turns.TurnNumber()
}

// CurrentPlayerID returns the player holding the turn, or "" when none does.
func (s *Session) CurrentPlayerID() string {
	if p := s.current(); p != nil {
		return p.ID
	}
	return ""
}

// Player returns a copy of the player's state.
func (s *Session) Player(id string) (Player, bool) {
	_, p := s.find(id)
	if p == nil {
		return Player{}, false
	}
	return p.clone(), true
}

// Players returns copies of every seated player in roster order.
func (s *Session) Players() []Player {
	out := make([]Player, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p.clone())
	}
	return out
}

// PlayerAlive implements effects.TargetView.
func (s *Session) PlayerAlive(id string) (alive bool, found bool) {
	_, p := s.find(id)
	if p == nil {
		return false, false
	}
	return p.Alive, true
}

// AlivePlayerIDs implements effects.TargetView.
func (s *Session) AlivePlayerIDs() []string {
	var ids []string
	for _, p := range s.players {
		if p.Alive {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// AddPlayer seats a new player and deals the starting hand. Seating an
// already present player is a no-op that reports false.
func (s *Session) AddPlayer(id, name string) (bool, error) {
	defer s.flush()

	if _, p := s.find(id); p != nil {
		return false, nil
	}
	if s.phase != rules.PhaseWaitingForPlayers {
		return false, fmt.Errorf("failed to add player %s: %w", id, ErrGameInProgress)
	}

	p := newPlayer(id, name)
	s.players = append(s.players, p)
	s.emit(rules.NewEvent(rules.EventPlayerRegistered, p.ID))
	s.draw(p.ID, s.cfg.StartingHand)

	s.logger.Info("player registered",
		zap.String("player_id", p.ID),
		zap.String("name", p.Name),
		zap.Int("roster_size", len(s.players)),
	)
	return true, nil
}

// StartGame moves the session into play with the first alive player.
func (s *Session) StartGame() error {
	defer s.flush()

	if s.phase != rules.PhaseWaitingForPlayers {
		return fmt.Errorf("failed to start game: %w", ErrGameInProgress)
	}
	if len(s.players) == 0 {
		return fmt.Errorf("failed to start game: %w", ErrEmptyRoster)
	}
	if !s.turns.Begin(len(s.players), s.aliveAt) {
		return fmt.Errorf("failed to start game: %w", ErrNoAlivePlayers)
	}

	s.reaperAlive = false
	for _, p := range s.players {
		if p.Role == rules.RoleReaper && p.Alive {
			s.reaperAlive = true
		}
	}

	first := s.current()
	first.Mana = first.BaselineMana()
	s.phase = rules.PhaseInProgress
	s.emit(rules.NewEvent(rules.EventGameStarted, first.ID))

	s.logger.Info("game started",
		zap.Int("players", len(s.players)),
		zap.String("first_player_id", first.ID),
	)
	return s.startTurn()
}

// PlayCard plays the card at handIndex of the requester's hand. Checks run
// in a fixed order and the first failure rejects the request without
// touching any state.
func (s *Session) PlayCard(requesterID string, handIndex int, targetID string) error {
	defer s.flush()

	caster, err := s.requireTurn(requesterID)
	if err != nil {
		return fmt.Errorf("failed to play card: %w", err)
	}
	if !caster.Alive {
		return fmt.Errorf("failed to play card: %w", ErrPlayerDead)
	}
	if handIndex < 0 || handIndex >= len(caster.Hand) {
		return fmt.Errorf("failed to play card: %w: index %d, hand size %d", ErrHandIndexOutOfRange, handIndex, len(caster.Hand))
	}
	card, err := s.catalog.Lookup(caster.Hand[handIndex])
	if err != nil {
		return fmt.Errorf("failed to play card: %w", err)
	}
	if caster.Mana < card.ManaCost {
		return fmt.Errorf("failed to play card: %w: need %d, have %d", ErrInsufficientMana, card.ManaCost, caster.Mana)
	}
	targets, err := effects.ResolveTargets(card.Target, caster.ID, targetID, s)
	if err != nil {
		return fmt.Errorf("failed to play card: %w", err)
	}

	// The card leaves the hand before resolution so a caster killed by its
	// own card does not discard it twice.
	caster.removeCard(handIndex)
	played := rules.NewEvent(rules.EventCardPlayed, caster.ID)
	played.CardID = card.ID
	if catalog.RequiresTarget(card) {
		played.TargetID = targets[0]
	}
	s.emit(played)

	s.resolver.Apply(sessionMutator{s}, card, caster.ID, targets)

	caster.Mana = max(0, caster.Mana-card.ManaCost)
	s.deck.Discard(card.ID)
	s.emitHand(caster)

	s.logger.Debug("card played",
		zap.String("player_id", caster.ID),
		zap.String("card_id", card.ID),
		zap.Strings("targets", targets),
		zap.Int("mana_left", caster.Mana),
	)

	if !caster.Alive {
		// Nobody else can end a dead player's turn.
		if err := s.advance(); err != nil {
			s.logger.Warn("failed to pass turn after caster died", zap.Error(err))
		}
	}
	return nil
}

// EndTurn passes the turn after checking the hand limit and the win
// condition.
func (s *Session) EndTurn(requesterID string) error {
	defer s.flush()

	p, err := s.requireTurn(requesterID)
	if err != nil {
		return fmt.Errorf("failed to end turn: %w", err)
	}
	limit := p.HandLimit(s.cfg.HandLimit, s.cfg.BonusHandLimit)
	if len(p.Hand) > limit {
		return fmt.Errorf("failed to end turn: %w: holding %d, limit %d", ErrHandLimitExceeded, len(p.Hand), limit)
	}
	if err := s.advance(); err != nil {
		return fmt.Errorf("failed to end turn: %w", err)
	}
	return nil
}

// RemovePlayer drops a player from the roster and returns their hand to the
// discard pile. If they held the turn the next alive player starts one.
func (s *Session) RemovePlayer(id string) error {
	defer s.flush()

	idx, p := s.find(id)
	if p == nil {
		return fmt.Errorf("failed to remove player %s: %w", id, ErrUnknownPlayer)
	}

	for _, cardID := range p.Hand {
		s.deck.Discard(cardID)
	}
	p.Hand = nil
	if p.Role == rules.RoleReaper {
		s.reaperAlive = false
	}
	s.players = append(s.players[:idx:idx], s.players[idx+1:]...)

	left := rules.NewEvent(rules.EventPlayerLeft, p.ID)
	if s.phase != rules.PhaseWaitingForPlayers {
		left.Role = p.Role.String()
	}
	s.emit(left)
	s.logger.Info("player left",
		zap.String("player_id", p.ID),
		zap.Int("roster_size", len(s.players)),
	)

	if s.phase != rules.PhaseInProgress {
		return nil
	}

	heldTurn, seated := s.turns.Removed(idx, len(s.players), s.aliveAt)
	if side := s.evaluate(s.combatants()); side != rules.SideNone {
		s.finish(side)
		return nil
	}
	if !seated {
		s.stall()
		return nil
	}
	if heldTurn {
		next := s.current()
		next.Mana = next.BaselineMana()
		if err := s.startTurn(); err != nil {
			return fmt.Errorf("failed to hand over turn: %w", err)
		}
	}
	return nil
}

func (s *Session) requireTurn(requesterID string) (*Player, error) {
	switch s.phase {
	case rules.PhaseInProgress:
	case rules.PhaseStalled:
		return nil, ErrSessionStalled
	default:
		return nil, ErrNotInProgress
	}
	p := s.current()
	if p == nil || p.ID != requesterID {
		return nil, ErrNotYourTurn
	}
	return p, nil
}

// advance runs the win check and hands the turn to the next alive player.
func (s *Session) advance() error {
	if side := s.evaluate(s.combatants()); side != rules.SideNone {
		s.finish(side)
		return nil
	}
	if !s.turns.Advance(len(s.players), s.aliveAt) {
		s.stall()
		return ErrSessionStalled
	}
	next := s.current()
	next.Mana = next.BaselineMana()
	return s.startTurn()
}

func (s *Session) startTurn() error {
	if !s.turns.Revalidate(len(s.players), s.aliveAt) {
		s.stall()
		return ErrSessionStalled
	}
	p := s.current()
	s.emit(rules.NewEventWithAmount(rules.EventTurnStarted, p.ID, s.turns.TurnNumber()))
	s.draw(p.ID, s.cfg.TurnDraw)

	s.logger.Debug("turn started",
		zap.String("player_id", p.ID),
		zap.Int("turn", s.turns.TurnNumber()),
		zap.Int("mana", p.Mana),
	)
	return nil
}

func (s *Session) finish(side rules.Side) {
	s.phase = rules.PhaseFinished
	s.winner = side
	evt := rules.NewEvent(rules.EventGameOver, "")
	evt.Side = side.String()
	s.emit(evt)
	s.logger.Info("game over", zap.Stringer("winner", side), zap.Int("turn", s.turns.TurnNumber()))
}

func (s *Session) stall() {
	s.phase = rules.PhaseStalled
	s.emit(rules.NewEvent(rules.EventSessionStalled, ""))
	s.logger.Warn("session stalled: no other alive player to pass the turn to",
		zap.Int("roster_size", len(s.players)),
		zap.Int("turn", s.turns.TurnNumber()),
	)
}

func (s *Session) current() *Player {
	idx := s.turns.Current()
	if idx < 0 || idx >= len(s.players) {
		return nil
	}
	return s.players[idx]
}

func (s *Session) find(id string) (int, *Player) {
	for i, p := range s.players {
		if p.ID == id {
			return i, p
		}
	}
	return -1, nil
}

func (s *Session) aliveAt(i int) bool {
	return s.players[i].Alive
}

func (s *Session) combatants() []rules.Combatant {
	out := make([]rules.Combatant, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p.combatant())
	}
	return out
}

func (s *Session) emit(evt rules.Event) {
	s.pending = append(s.pending, evt)
}

func (s *Session) emitHand(p *Player) {
	evt := rules.NewEventWithAmount(rules.EventHandChanged, p.ID, len(p.Hand))
	evt.Hand = append([]string{}, p.Hand...)
	evt.Recipient = p.ID
	s.emit(evt)
}

// flush publishes the events buffered by the operation that just committed.
func (s *Session) flush() {
	if len(s.pending) == 0 {
		return
	}
	events := s.pending
	s.pending = nil
	s.bus.PublishBatch(events)
}

func (s *Session) damage(id string, amount int) {
	_, p := s.find(id)
	if p == nil || !p.Alive {
		return
	}

	outcome := p.takeDamage(amount)
	s.emit(rules.NewEventWithAmount(rules.EventDamaged, p.ID, amount))

	switch outcome {
	case damageRespawned:
		s.emit(rules.NewEvent(rules.EventRespawned, p.ID))
		s.logger.Info("player respawned", zap.String("player_id", p.ID))
	case damageKilled:
		for _, cardID := range p.Hand {
			s.deck.Discard(cardID)
		}
		p.Hand = nil
		if p.Role == rules.RoleReaper {
			s.reaperAlive = false
		}
		died := rules.NewEvent(rules.EventDied, p.ID)
		died.Role = p.Role.String()
		s.emit(died)
		s.emitHand(p)
		s.logger.Info("player died", zap.String("player_id", p.ID), zap.Stringer("role", p.Role))
	}
}

func (s *Session) heal(id string, amount int) {
	if _, p := s.find(id); p != nil && p.heal(amount) {
		s.emit(rules.NewEventWithAmount(rules.EventHealed, p.ID, amount))
	}
}

func (s *Session) addArmor(id string, amount int) {
	if _, p := s.find(id); p != nil && p.addArmor(amount) {
		s.emit(rules.NewEventWithAmount(rules.EventArmorGained, p.ID, amount))
	}
}

func (s *Session) addMana(id string, amount int) {
	if _, p := s.find(id); p != nil && p.addMana(amount) {
		s.emit(rules.NewEventWithAmount(rules.EventManaGained, p.ID, amount))
	}
}

// draw moves up to count cards from the deck into the player's hand.
func (s *Session) draw(id string, count int) {
	_, p := s.find(id)
	if p == nil || !p.Alive || count <= 0 {
		return
	}
	drawn := 0
	for ; drawn < count; drawn++ {
		cardID, ok := s.deck.Draw()
		if !ok {
			break
		}
		p.Hand = append(p.Hand, cardID)
	}
	if drawn > 0 {
		s.emitHand(p)
	}
}

// sessionMutator exposes the mutation API to the effect resolver without
// widening the Session's public surface.
type sessionMutator struct {
	s *Session
}

func (m sessionMutator) Damage(id string, amount int)   { m.s.damage(id, amount) }
func (m sessionMutator) Heal(id string, amount int)     { m.s.heal(id, amount) }
func (m sessionMutator) AddArmor(id string, amount int) { m.s.addArmor(id, amount) }
func (m sessionMutator) Draw(id string, count int)      { m.s.draw(id, count) }
func (m sessionMutator) AddMana(id string, amount int)  { m.s.addMana(id, amount) }
