package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned by Lookup for an identifier the catalog does not hold.
var ErrNotFound = errors.New("card not found")

// EffectKind names what a card does when played.
type EffectKind string

const (
	EffectDamage EffectKind = "damage"
	EffectHeal   EffectKind = "heal"
	EffectArmor  EffectKind = "armor"
	EffectDraw   EffectKind = "draw"
	EffectManaUp EffectKind = "mana_up"
)

// TargetRule names which players a card applies to.
type TargetRule string

const (
	TargetSelf        TargetRule = "self"
	TargetOtherPlayer TargetRule = "other_player"
	TargetAnyPlayer   TargetRule = "any_player"
	TargetAllPlayers  TargetRule = "all_players"
	TargetNone        TargetRule = "no_target"
)

var targetRules = map[TargetRule]bool{
	TargetSelf:        true,
	TargetOtherPlayer: true,
	TargetAnyPlayer:   true,
	TargetAllPlayers:  true,
	TargetNone:        true,
}

// ParseTargetRule normalizes a configured target rule.
func ParseTargetRule(value string) (TargetRule, error) {
	rule := TargetRule(strings.ToLower(strings.TrimSpace(value)))
	if !targetRules[rule] {
		return "", fmt.Errorf("unknown target rule %q", value)
	}
	return rule, nil
}

// Card is the static definition of a playable card.
type Card struct {
	ID       string
	Name     string
	ManaCost int
	Effect   EffectKind
	Value    int
	Target   TargetRule
}

// RequiresTarget reports whether playing the card needs a player reference.
func RequiresTarget(card Card) bool {
	switch card.Target {
	case TargetSelf, TargetOtherPlayer, TargetAnyPlayer:
		return true
	default:
		return false
	}
}

// Catalog is an immutable lookup from card ID to definition.
type Catalog struct {
	cards map[string]Card
	ids   []string
}

// New validates the definitions and builds a catalog.
func New(cards []Card) (*Catalog, error) {
	c := &Catalog{
		cards: make(map[string]Card, len(cards)),
		ids:   make([]string, 0, len(cards)),
	}

	for i, card := range cards {
		card.ID = strings.TrimSpace(card.ID)
		if card.ID == "" {
			return nil, fmt.Errorf("card %d: id is required", i)
		}
		if _, exists := c.cards[card.ID]; exists {
			return nil, fmt.Errorf("card %s: duplicate id", card.ID)
		}
		if card.ManaCost < 0 {
			return nil, fmt.Errorf("card %s: negative mana cost %d", card.ID, card.ManaCost)
		}
		if !targetRules[card.Target] {
			return nil, fmt.Errorf("card %s: unknown target rule %q", card.ID, card.Target)
		}
		if card.Name == "" {
			card.Name = card.ID
		}
		c.cards[card.ID] = card
		c.ids = append(c.ids, card.ID)
	}

	sort.Strings(c.ids)
	return c, nil
}

// Lookup returns the definition for id.
func (c *Catalog) Lookup(id string) (Card, error) {
	card, ok := c.cards[id]
	if !ok {
		return Card{}, fmt.Errorf("lookup %q: %w", id, ErrNotFound)
	}
	return card, nil
}

// IDs returns one identifier per card, sorted.
func (c *Catalog) IDs() []string {
	return append([]string(nil), c.ids...)
}

// Len returns the number of cards.
func (c *Catalog) Len() int {
	return len(c.ids)
}
