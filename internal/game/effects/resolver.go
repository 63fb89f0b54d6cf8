package effects

import (
	"go.uber.org/zap"

	"github.com/soulbound/soulbound-server/internal/game/catalog"
)

// Mutator is the server-side mutation API effects act through.
type Mutator interface {
	Damage(playerID string, amount int)
	Heal(playerID string, amount int)
	AddArmor(playerID string, amount int)
	Draw(playerID string, count int)
	AddMana(playerID string, amount int)
}

// Resolver applies card effects to resolved targets.
type Resolver struct {
	logger *zap.Logger
}

// NewResolver creates a resolver.
func NewResolver(logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{logger: logger}
}

// Apply resolves card for casterID against targets. Damage, Heal and Armor
// apply once per target and do nothing when targets is nil. Draw and ManaUp
// always act on the caster, exactly once.
func (r *Resolver) Apply(m Mutator, card catalog.Card, casterID string, targets []string) {
	switch card.Effect {
	case catalog.EffectDamage, catalog.EffectHeal, catalog.EffectArmor:
		if targets == nil {
			r.logger.Debug("untargeted card effect skipped",
				zap.String("card_id", card.ID),
				zap.String("effect", string(card.Effect)),
				zap.String("caster_id", casterID),
			)
			return
		}
	}

	switch card.Effect {
	case catalog.EffectDamage:
		for _, id := range targets {
			m.Damage(id, card.Value)
		}
	case catalog.EffectHeal:
		for _, id := range targets {
			m.Heal(id, card.Value)
		}
	case catalog.EffectArmor:
		for _, id := range targets {
			m.AddArmor(id, card.Value)
		}
	case catalog.EffectDraw:
		m.Draw(casterID, card.Value)
	case catalog.EffectManaUp:
		m.AddMana(casterID, card.Value)
	default:
		r.logger.Warn("unknown card effect ignored",
			zap.String("card_id", card.ID),
			zap.String("effect", string(card.Effect)),
			zap.String("caster_id", casterID),
		)
		return
	}

	r.logger.Debug("card effect resolved",
		zap.String("card_id", card.ID),
		zap.String("effect", string(card.Effect)),
		zap.Int("value", card.Value),
		zap.String("caster_id", casterID),
		zap.Strings("targets", targets),
	)
}
