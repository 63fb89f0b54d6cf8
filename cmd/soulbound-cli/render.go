package main

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/soulbound/soulbound-server/internal/game"
	"github.com/soulbound/soulbound-server/internal/game/rules"
	"github.com/soulbound/soulbound-server/internal/server"
)

type screen struct {
	playerID string
	names    map[string]string
}

func newScreen() *screen {
	return &screen{names: make(map[string]string)}
}

// handle prints one server message and reports whether the table should be
// refreshed.
func (s *screen) handle(msg server.ServerMessage) bool {
	switch msg.Type {
	case server.MessageWelcome:
		s.playerID = msg.PlayerID
		pterm.Success.Printfln("Joined as %s", msg.PlayerID)
	case server.MessageRejected:
		pterm.Error.Printfln("%s rejected: %s (%s)", msg.Request, msg.Code, msg.Reason)
	case server.MessageView:
		if msg.View != nil {
			s.render(*msg.View)
		}
	case server.MessageEvent:
		if msg.Event != nil {
			return s.event(*msg.Event)
		}
	}
	return false
}

func (s *screen) event(evt rules.Event) bool {
	who := s.name(evt.PlayerID)
	switch evt.Type {
	case rules.EventPlayerRegistered:
		pterm.Info.Printfln("%s joined", who)
	case rules.EventPlayerLeft:
		pterm.Info.Printfln("%s left", who)
	case rules.EventGameStarted:
		pterm.DefaultHeader.Println("Game started")
		return true
	case rules.EventTurnStarted:
		if evt.PlayerID == s.playerID {
			pterm.Success.Printfln("Turn %d: your turn", evt.Amount)
		} else {
			pterm.Info.Printfln("Turn %d: %s is playing", evt.Amount, who)
		}
		return true
	case rules.EventCardPlayed:
		target := ""
		if evt.TargetID != "" {
			target = " on " + s.name(evt.TargetID)
		}
		pterm.Info.Printfln("%s played %s%s", who, pterm.LightYellow(evt.CardID), target)
	case rules.EventDamaged:
		pterm.Warning.Printfln("%s takes %d damage", who, evt.Amount)
	case rules.EventHealed:
		pterm.Info.Printfln("%s heals %d", who, evt.Amount)
	case rules.EventArmorGained:
		pterm.Info.Printfln("%s gains %d armor", who, evt.Amount)
	case rules.EventManaGained:
		pterm.Info.Printfln("%s gains %d mana", who, evt.Amount)
	case rules.EventRespawned:
		pterm.Warning.Printfln("%s rises again", who)
	case rules.EventDied:
		pterm.Error.Printfln("%s died, they were %s", who, evt.Role)
	case rules.EventHandChanged:
		pterm.Info.Printfln("Your hand: %s", strings.Join(evt.Hand, ", "))
	case rules.EventSessionStalled:
		pterm.Error.Println("The session stalled")
	case rules.EventGameOver:
		pterm.DefaultBigText.WithLetters(pterm.NewLettersFromString("GAME OVER")).Render()
		pterm.Success.Printfln("Winner: %s", evt.Side)
		return true
	}
	return false
}

func (s *screen) render(view game.SessionView) {
	for _, p := range view.Players {
		s.names[p.ID] = p.Name
	}

	data := pterm.TableData{{"", "Player", "Role", "Health", "Armor", "Mana", "Cards", "ID"}}
	for _, p := range view.Players {
		marker := ""
		if p.Current {
			marker = "▶"
		}
		name := p.Name
		if p.ID == s.playerID {
			name = pterm.LightCyan(p.Name + " (you)")
		}
		health := pterm.LightGreen(fmt.Sprint(p.Health))
		if !p.Alive {
			health = pterm.LightRed("dead")
		}
		role := p.Role
		if role == "" {
			role = "?"
		}
		data = append(data, []string{
			marker, name, role, health,
			fmt.Sprint(p.Armor), fmt.Sprint(p.Mana), fmt.Sprint(p.HandSize), p.ID,
		})
	}

	pterm.DefaultSection.Printfln("%s, turn %d, deck %d / discard %d",
		view.Phase, view.TurnNumber, view.DrawPile, view.DiscardPile)
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()

	for _, p := range view.Players {
		if p.ID != s.playerID || len(p.Hand) == 0 {
			continue
		}
		cards := make([]string, len(p.Hand))
		for i, id := range p.Hand {
			cards[i] = fmt.Sprintf("[%d] %s", i, id)
		}
		pterm.DefaultBox.WithTitle("Your hand").Println(strings.Join(cards, "  "))
	}
	if view.Winner != "" {
		pterm.Success.Printfln("Winner: %s", view.Winner)
	}
}

func (s *screen) name(id string) string {
	if id == "" {
		return ""
	}
	if id == s.playerID {
		return "You"
	}
	if name, ok := s.names[id]; ok {
		return name
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
