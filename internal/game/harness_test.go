package game

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/soulbound/soulbound-server/internal/game/catalog"
	"github.com/soulbound/soulbound-server/internal/game/deck"
	"github.com/soulbound/soulbound-server/internal/game/rules"
)

// fixedRoles assigns roles in roster order.
type fixedRoles []rules.Role

func (f fixedRoles) AssignRoles(players []*Player) {
	for i, p := range players {
		p.Role = f[i]
		p.HasExtraLife = f[i] == rules.RoleForsaken
	}
}

// mixedCatalog holds one card of every effect plus enough cheap filler to
// deal starting hands to six players.
func mixedCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cards := []catalog.Card{
		{ID: "strike", ManaCost: 1, Effect: catalog.EffectDamage, Value: 2, Target: catalog.TargetOtherPlayer},
		{ID: "hex", ManaCost: 2, Effect: catalog.EffectDamage, Value: 2, Target: catalog.TargetAnyPlayer},
		{ID: "wail", ManaCost: 1, Effect: catalog.EffectDamage, Value: 1, Target: catalog.TargetAllPlayers},
		{ID: "mend", ManaCost: 1, Effect: catalog.EffectHeal, Value: 2, Target: catalog.TargetAnyPlayer},
		{ID: "ward", ManaCost: 1, Effect: catalog.EffectArmor, Value: 2, Target: catalog.TargetSelf},
		{ID: "insight", ManaCost: 1, Effect: catalog.EffectDraw, Value: 2, Target: catalog.TargetNone},
		{ID: "focus", ManaCost: 1, Effect: catalog.EffectManaUp, Value: 1, Target: catalog.TargetNone},
		{ID: "doom", ManaCost: 9, Effect: catalog.EffectDamage, Value: 5, Target: catalog.TargetOtherPlayer},
	}
	for i := 1; i <= 30; i++ {
		cards = append(cards, catalog.Card{
			ID: fmt.Sprintf("filler-%02d", i), ManaCost: 0, Effect: catalog.EffectArmor, Value: 1, Target: catalog.TargetSelf,
		})
	}
	cat, err := catalog.New(cards)
	require.NoError(t, err)
	return cat
}

// focusCatalog holds nothing but one-mana ManaUp(+1) cards.
func focusCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	var cards []catalog.Card
	for i := 1; i <= 20; i++ {
		cards = append(cards, catalog.Card{
			ID: fmt.Sprintf("focus-%02d", i), ManaCost: 1, Effect: catalog.EffectManaUp, Value: 1, Target: catalog.TargetNone,
		})
	}
	cat, err := catalog.New(cards)
	require.NoError(t, err)
	return cat
}

type sessionHarness struct {
	t       *testing.T
	catalog *catalog.Catalog
	session *Session
	coord   *Coordinator
	events  []rules.Event
}

func newHarness(t *testing.T, cat *catalog.Catalog, minPlayers int, roles RoleAssigner) *sessionHarness {
	t.Helper()
	logger := zaptest.NewLogger(t)
	cfg := DefaultConfig()
	cfg.MinPlayers = minPlayers

	h := &sessionHarness{t: t, catalog: cat}
	h.session = NewSession(cfg, cat, deck.New(rand.New(rand.NewPCG(7, 11)), logger), logger)
	h.coord = NewCoordinator(h.session, roles, logger)
	h.coord.Subscribe(func(e rules.Event) { h.events = append(h.events, e) })
	return h
}

// startedHarness seats p1..pN with the given roles and starts the game.
func startedHarness(t *testing.T, cat *catalog.Catalog, roles ...rules.Role) *sessionHarness {
	t.Helper()
	h := newHarness(t, cat, len(roles), fixedRoles(roles))
	for i := range roles {
		require.NoError(t, h.coord.RegisterPlayer(fmt.Sprintf("p%d", i+1), ""))
	}
	require.Equal(t, rules.PhaseInProgress, h.session.Phase())
	return h
}

func (h *sessionHarness) player(id string) *Player {
	h.t.Helper()
	_, p := h.session.find(id)
	require.NotNil(h.t, p, "player %s not seated", id)
	return p
}

// setHand replaces a hand without going through the deck; tests using it do
// not check card conservation.
func (h *sessionHarness) setHand(id string, cards ...string) {
	h.player(id).Hand = append([]string(nil), cards...)
}

func (h *sessionHarness) eventTypes() []rules.EventType {
	out := make([]rules.EventType, 0, len(h.events))
	for _, e := range h.events {
		out = append(out, e.Type)
	}
	return out
}

func (h *sessionHarness) resetEvents() {
	h.events = nil
}

// assertConserved checks that every catalog card sits in exactly one place.
func (h *sessionHarness) assertConserved() {
	h.t.Helper()
	draw, discard := h.session.deck.Contents()
	all := append(append([]string{}, draw...), discard...)
	for _, p := range h.session.players {
		all = append(all, p.Hand...)
	}
	assert.ElementsMatch(h.t, h.catalog.IDs(), all)
}

type snapshot struct {
	players []Player
	draw    int
	discard int
	phase   rules.Phase
	current string
}

func (h *sessionHarness) snapshot() snapshot {
	return snapshot{
		players: h.session.Players(),
		draw:    h.session.deck.DrawCount(),
		discard: h.session.deck.DiscardCount(),
		phase:   h.session.Phase(),
		current: h.session.CurrentPlayerID(),
	}
}
