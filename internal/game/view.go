package game

import (
	"github.com/soulbound/soulbound-server/internal/game/rules"
)

// PlayerView is the replicated state of one player as seen by an observer.
type PlayerView struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Role         string   `json:"role,omitempty"`
	Health       int      `json:"health"`
	Armor        int      `json:"armor"`
	Mana         int      `json:"mana"`
	Alive        bool     `json:"alive"`
	RoleRevealed bool     `json:"role_revealed"`
	HandSize     int      `json:"hand_size"`
	Hand         []string `json:"hand,omitempty"`
	Current      bool     `json:"current"`
}

// SessionView is the replicated session snapshot sent to one observer.
type SessionView struct {
	Phase           string       `json:"phase"`
	Winner          string       `json:"winner,omitempty"`
	TurnNumber      int          `json:"turn_number"`
	CurrentPlayerID string       `json:"current_player_id,omitempty"`
	DrawPile        int          `json:"draw_pile"`
	DiscardPile     int          `json:"discard_pile"`
	Players         []PlayerView `json:"players"`
}

// View builds the snapshot forPlayerID is allowed to see. Other players'
// hands are reduced to a count and their roles stay hidden until revealed
// or the game is over.
func (s *Session) View(forPlayerID string) SessionView {
	view := SessionView{
		Phase:           s.phase.String(),
		TurnNumber:      s.turns.TurnNumber(),
		CurrentPlayerID: s.CurrentPlayerID(),
		DrawPile:        s.deck.DrawCount(),
		DiscardPile:     s.deck.DiscardCount(),
		Players:         make([]PlayerView, 0, len(s.players)),
	}
	if s.phase == rules.PhaseFinished {
		view.Winner = s.winner.String()
	}

	for _, p := range s.players {
		own := p.ID == forPlayerID
		pv := PlayerView{
			ID:           p.ID,
			Name:         p.Name,
			Health:       p.Health,
			Armor:        p.Armor,
			Mana:         p.Mana,
			Alive:        p.Alive,
			RoleRevealed: p.RoleRevealed,
			HandSize:     len(p.Hand),
			Current:      p.ID == view.CurrentPlayerID,
		}
		if p.Role != rules.RoleUnassigned && (own || p.RoleRevealed || s.phase == rules.PhaseFinished) {
			pv.Role = p.Role.String()
		}
		if own {
			pv.Hand = append([]string{}, p.Hand...)
		}
		view.Players = append(view.Players, pv)
	}
	return view
}
