package rules

import "fmt"

// Role is a player's hidden allegiance.
type Role int

const (
	RoleUnassigned Role = iota
	RoleTrueSoul
	RoleForsaken
	RoleReaper
)

var roleNames = map[Role]string{
	RoleUnassigned: "UNASSIGNED",
	RoleTrueSoul:   "TRUE_SOUL",
	RoleForsaken:   "FORSAKEN",
	RoleReaper:     "REAPER",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("ROLE_%d", int(r))
}

// Side is the faction that won a session, or SideNone while it continues.
type Side int

const (
	SideNone Side = iota
	SideTrueSouls
	SideForsaken
	SideReaper
)

var sideNames = map[Side]string{
	SideNone:      "NONE",
	SideTrueSouls: "TRUE_SOULS",
	SideForsaken:  "FORSAKEN",
	SideReaper:    "REAPER",
}

func (s Side) String() string {
	if name, ok := sideNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SIDE_%d", int(s))
}

// Combatant is the slice of player state the win check looks at.
type Combatant struct {
	Role  Role
	Alive bool
}

// Evaluate decides whether the session is over.
//
// A lone surviving Reaper (no TrueSoul or Forsaken alive) wins outright.
// Otherwise the TrueSouls win once no Forsaken is alive, and the Forsaken win
// once no TrueSoul is alive. An empty or fully dead roster counts as a
// TrueSoul win.
func Evaluate(players []Combatant) Side {
	var trueSoulAlive, forsakenAlive, reaperAlive bool
	for _, p := range players {
		if !p.Alive {
			continue
		}
		switch p.Role {
		case RoleTrueSoul:
			trueSoulAlive = true
		case RoleForsaken:
			forsakenAlive = true
		case RoleReaper:
			reaperAlive = true
		}
	}

	if reaperAlive && !trueSoulAlive && !forsakenAlive {
		return SideReaper
	}
	if !forsakenAlive {
		return SideTrueSouls
	}
	if !trueSoulAlive {
		return SideForsaken
	}
	return SideNone
}
