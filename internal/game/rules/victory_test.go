package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	alive := func(r Role) Combatant { return Combatant{Role: r, Alive: true} }
	dead := func(r Role) Combatant { return Combatant{Role: r, Alive: false} }

	tests := []struct {
		name    string
		players []Combatant
		want    Side
	}{
		{
			name:    "both factions alive",
			players: []Combatant{alive(RoleTrueSoul), alive(RoleForsaken)},
			want:    SideNone,
		},
		{
			name:    "forsaken eliminated",
			players: []Combatant{alive(RoleTrueSoul), dead(RoleForsaken)},
			want:    SideTrueSouls,
		},
		{
			name:    "true souls eliminated",
			players: []Combatant{dead(RoleTrueSoul), alive(RoleForsaken), dead(RoleTrueSoul)},
			want:    SideForsaken,
		},
		{
			name:    "true souls win even with a reaper alive",
			players: []Combatant{alive(RoleTrueSoul), dead(RoleForsaken), alive(RoleReaper)},
			want:    SideTrueSouls,
		},
		{
			name:    "forsaken win even with a reaper alive",
			players: []Combatant{dead(RoleTrueSoul), alive(RoleForsaken), alive(RoleReaper)},
			want:    SideForsaken,
		},
		{
			name:    "lone reaper wins",
			players: []Combatant{dead(RoleTrueSoul), dead(RoleForsaken), alive(RoleReaper)},
			want:    SideReaper,
		},
		{
			name:    "reaper alongside both factions",
			players: []Combatant{alive(RoleTrueSoul), alive(RoleForsaken), alive(RoleReaper)},
			want:    SideNone,
		},
		{
			name:    "everyone dead",
			players: []Combatant{dead(RoleTrueSoul), dead(RoleForsaken)},
			want:    SideTrueSouls,
		},
		{
			name:    "empty roster",
			players: nil,
			want:    SideTrueSouls,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.players))
		})
	}
}

func TestRoleAndSideStrings(t *testing.T) {
	assert.Equal(t, "FORSAKEN", RoleForsaken.String())
	assert.Equal(t, "ROLE_9", Role(9).String())
	assert.Equal(t, "REAPER", SideReaper.String())
	assert.Equal(t, "SIDE_7", Side(7).String())
}
