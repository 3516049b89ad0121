package engine

import (
	"slices"

	"github.com/helldraft/helldraft/internal/catalog"
)

// sacrificeQueue decides who owes an equipment sacrifice after a mission.
// Brutality mode: every connected player who failed to extract. Standard
// mode: everyone, but only on a full-squad extraction failure.
func sacrificeQueue(s *State) []int {
	var failed []int
	anyExtracted := false
	for _, i := range s.connectedIndices() {
		if s.Players[i].Extracted {
			anyExtracted = true
		} else {
			failed = append(failed, i)
		}
	}
	if s.Config.Brutality {
		return failed
	}
	if !anyExtracted {
		return failed
	}
	return nil
}

// handleSacrifice removes exactly one non-protected item from the active
// queued player. Equipped slots fall back to their default item so no
// required slot is ever left empty; primary and booster may become empty.
func (e *Engine) handleSacrifice(s *State, playerIdx int, itemID string) ([]Event, error) {
	if s.Phase != PhaseSacrifice || s.Sacrifice == nil {
		return nil, ErrWrongPhase
	}
	if playerIdx != s.Sacrifice.ActivePlayerIndex {
		return nil, ErrWrongTurn
	}
	p, ok := s.player(playerIdx)
	if !ok {
		return nil, ErrMissingPlayer
	}
	if e.cat.IsProtected(itemID) {
		return nil, ErrProtectedItem
	}
	if !p.Inventory[itemID] {
		return nil, ErrUnknownItem
	}
	it, ok := e.cat.Item(itemID)
	if !ok {
		return nil, ErrUnknownItem
	}

	delete(p.Inventory, itemID)
	if p.ExcludedItems == nil {
		p.ExcludedItems = map[string]bool{}
	}
	p.ExcludedItems[itemID] = true
	e.unequip(p, it)

	events := []Event{
		{Type: EvtItemSacrificed, PlayerIndex: playerIdx, PlayerID: p.ID, ItemID: itemID},
		{Type: EvtLoadoutChanged, PlayerIndex: playerIdx, PlayerID: p.ID},
	}
	return append(events, e.advanceSacrifice(s)...), nil
}

// advanceSacrifice moves to the next queued connected player, or finishes:
// extraction flags reset to true and the normal draft session begins.
func (e *Engine) advanceSacrifice(s *State) []Event {
	sac := s.Sacrifice
	pos := slices.Index(sac.SacrificesRequired, sac.ActivePlayerIndex)
	for i := pos + 1; i < len(sac.SacrificesRequired); i++ {
		ni := sac.SacrificesRequired[i]
		if ni < len(s.Players) && s.Players[ni].Connected {
			sac.ActivePlayerIndex = ni
			return []Event{{Type: EvtTurnAdvanced, PlayerIndex: ni, PlayerID: s.Players[ni].ID}}
		}
	}

	s.Sacrifice = nil
	for i := range s.Players {
		s.Players[i].Extracted = true
	}
	return e.startDraftPhase(s)
}

// unequip clears the sacrificed item from the loadout. Secondary, grenade
// and armor fall back to the slot default (which re-enters the inventory);
// primary and booster go empty; stratagems leave their slot.
func (e *Engine) unequip(p *Player, it catalog.Item) {
	l := &p.Loadout
	switch it.Type {
	case catalog.TypePrimary:
		if l.Primary == it.ID {
			l.Primary = ""
		}
	case catalog.TypeBooster:
		if l.Booster == it.ID {
			l.Booster = ""
		}
	case catalog.TypeSecondary:
		if l.Secondary == it.ID {
			l.Secondary = e.fallbackFor(p, catalog.TypeSecondary)
		}
	case catalog.TypeGrenade:
		if l.Grenade == it.ID {
			l.Grenade = e.fallbackFor(p, catalog.TypeGrenade)
		}
	case catalog.TypeArmor:
		if l.Armor == it.ID {
			l.Armor = e.fallbackFor(p, catalog.TypeArmor)
		}
	case catalog.TypeStratagem:
		for i, id := range l.Stratagems {
			if id == it.ID {
				l.Stratagems = append(l.Stratagems[:i], l.Stratagems[i+1:]...)
				break
			}
		}
	}
}

func (e *Engine) fallbackFor(p *Player, t catalog.ItemType) string {
	def := e.cat.DefaultFor(t)
	if def != "" {
		p.Inventory[def] = true
	}
	return def
}
