package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/soulbound/soulbound-server/internal/game/rules"
)

func TestTakeDamageArmorAbsorbsFirst(t *testing.T) {
	p := newPlayer("p1", "Player_1")
	p.Armor = 3

	assert.Equal(t, damageSurvived, p.takeDamage(5))
	assert.Equal(t, 0, p.Armor)
	assert.Equal(t, 3, p.Health)

	p = newPlayer("p1", "Player_1")
	p.Armor = 3
	assert.Equal(t, damageSurvived, p.takeDamage(2))
	assert.Equal(t, 1, p.Armor)
	assert.Equal(t, 5, p.Health)
}

func TestTakeDamageKillsOnce(t *testing.T) {
	p := newPlayer("p1", "Player_1")
	p.Role = rules.RoleTrueSoul

	assert.Equal(t, damageKilled, p.takeDamage(7))
	assert.False(t, p.Alive)
	assert.True(t, p.RoleRevealed)
	assert.Equal(t, 0, p.Health)

	assert.Equal(t, damageIgnored, p.takeDamage(3), "dead players take no further damage")
	assert.Equal(t, 0, p.Health)
}

func TestTakeDamageForsakenRespawn(t *testing.T) {
	tests := []struct {
		name      string
		bonus     bool
		wantMana  int
		wantLimit int
	}{
		{name: "standard", bonus: false, wantMana: 2, wantLimit: 5},
		{name: "six player bonus", bonus: true, wantMana: 3, wantLimit: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPlayer("p2", "Player_2")
			p.Role = rules.RoleForsaken
			p.HasExtraLife = true
			p.RespawnedWithSix = tt.bonus
			p.Armor = 2
			p.Mana = 7

			assert.Equal(t, damageRespawned, p.takeDamage(9))
			assert.True(t, p.Alive)
			assert.False(t, p.HasExtraLife)
			assert.Equal(t, MaxHealth, p.Health)
			assert.Equal(t, 0, p.Armor)
			assert.Equal(t, tt.wantMana, p.Mana)
			assert.Equal(t, tt.wantLimit, p.HandLimit(5, 6))

			assert.Equal(t, damageKilled, p.takeDamage(5))
			assert.False(t, p.Alive)
		})
	}
}

func TestPlayerCaps(t *testing.T) {
	p := newPlayer("p1", "Player_1")
	p.Health = 4

	assert.True(t, p.heal(3))
	assert.Equal(t, MaxHealth, p.Health)

	assert.True(t, p.addArmor(4))
	assert.True(t, p.addArmor(4))
	assert.Equal(t, MaxArmor, p.Armor)

	assert.True(t, p.addMana(20))
	assert.Equal(t, MaxMana, p.Mana)

	p.Alive = false
	assert.False(t, p.heal(1), "heal has no effect on the dead")
	assert.False(t, p.addMana(1), "mana has no effect on the dead")
}

func TestRemoveCardKeepsOrder(t *testing.T) {
	p := newPlayer("p1", "Player_1")
	p.Hand = []string{"a", "b", "c"}

	assert.Equal(t, "b", p.removeCard(1))
	assert.Equal(t, []string{"a", "c"}, p.Hand)
}
