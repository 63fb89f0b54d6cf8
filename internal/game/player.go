package game

import (
	"github.com/soulbound/soulbound-server/internal/game/rules"
)

const (
	MaxHealth = 5
	MaxArmor  = 5
	MaxMana   = 10

	baselineMana      = 2
	bonusBaselineMana = 3
)

// Player is the authoritative state of one seat in a session.
type Player struct {
	ID           string
	Name         string
	Role         rules.Role
	Health       int
	Armor        int
	Mana         int
	Alive        bool
	RoleRevealed bool
	HasExtraLife bool
	// RespawnedWithSix is the six-player Forsaken bonus: a larger hand limit
	// and more baseline mana.
	RespawnedWithSix bool
	Hand             []string
}

func newPlayer(id, name string) *Player {
	return &Player{
		ID:     id,
		Name:   name,
		Health: MaxHealth,
		Mana:   baselineMana,
		Alive:  true,
	}
}

// BaselineMana is the mana a player is set to at the start of each turn.
func (p *Player) BaselineMana() int {
	if p.RespawnedWithSix {
		return bonusBaselineMana
	}
	return baselineMana
}

// HandLimit is the largest hand the player may hold when ending a turn.
func (p *Player) HandLimit(base, bonus int) int {
	if p.RespawnedWithSix {
		return bonus
	}
	return base
}

func (p *Player) combatant() rules.Combatant {
	return rules.Combatant{Role: p.Role, Alive: p.Alive}
}

func (p *Player) clone() Player {
	c := *p
	c.Hand = append([]string(nil), p.Hand...)
	return c
}

type damageOutcome int

const (
	damageIgnored damageOutcome = iota
	damageSurvived
	damageRespawned
	damageKilled
)

// takeDamage runs armor absorption and the death/extra-life transition.
// Discarding the hand of a killed player is left to the session, which owns
// the deck.
func (p *Player) takeDamage(amount int) damageOutcome {
	if !p.Alive {
		return damageIgnored
	}
	if amount < 0 {
		amount = 0
	}

	absorbed := min(p.Armor, amount)
	p.Armor -= absorbed
	p.Health -= amount - absorbed
	if p.Health > 0 {
		return damageSurvived
	}
	p.Health = 0

	if p.Role == rules.RoleForsaken && p.HasExtraLife {
		p.HasExtraLife = false
		p.Health = MaxHealth
		p.Armor = 0
		p.Mana = p.BaselineMana()
		return damageRespawned
	}

	p.Alive = false
	p.RoleRevealed = true
	return damageKilled
}

func (p *Player) heal(amount int) bool {
	if !p.Alive || amount <= 0 {
		return false
	}
	p.Health = min(MaxHealth, p.Health+amount)
	return true
}

func (p *Player) addArmor(amount int) bool {
	if amount <= 0 {
		return false
	}
	p.Armor = min(MaxArmor, p.Armor+amount)
	return true
}

func (p *Player) addMana(amount int) bool {
	if !p.Alive || amount <= 0 {
		return false
	}
	p.Mana = min(MaxMana, p.Mana+amount)
	return true
}

func (p *Player) removeCard(index int) string {
	cardID := p.Hand[index]
	p.Hand = append(p.Hand[:index:index], p.Hand[index+1:]...)
	return cardID
}
