package engine

import (
	"github.com/google/uuid"

	"github.com/helldraft/helldraft/internal/catalog"
)

// NewPlayer builds a fresh player with empty collections. The caller decides
// connectivity and loadout.
func NewPlayer(id, name string) Player {
	if id == "" {
		id = uuid.NewString()
	}
	return Player{
		ID:            id,
		Name:          name,
		Inventory:     map[string]bool{},
		Warbonds:      map[string]bool{"helldivers_mobilize": true},
		ExcludedItems: map[string]bool{},
		LockedSlots:   map[catalog.ItemType]bool{},
	}
}

// applyJoinPlayer reconciles the lobby roster with the known player list. A
// known id reconnects; an unknown one is appended and, when joining after
// difficulty 1, scheduled for retrospective catch-up sessions instead of
// silently inheriting the squad's loadout tier.
func (e *Engine) applyJoinPlayer(s *State, cmd Command) ([]Event, error) {
	for i := range s.Players {
		if s.Players[i].ID == cmd.PlayerID {
			s.Players[i].Connected = true
			return []Event{{Type: EvtPlayerJoined, PlayerIndex: i, PlayerID: s.Players[i].ID}}, nil
		}
	}

	switch s.Phase {
	case PhaseVictory, PhaseGameOver, PhaseKicked:
		return nil, ErrWrongPhase
	}

	p := NewPlayer(cmd.PlayerID, cmd.Name)
	p.Connected = true
	if s.Difficulty >= 1 {
		// Run already started: outfit the newcomer with the defaults.
		e.equipDefaults(&p)
		p.Extracted = true
	}
	if s.Difficulty > 1 {
		p.NeedsRetrospectiveDraft = true
		p.CatchUpDraftsRemaining = s.Difficulty - 1
	}
	s.Players = append(s.Players, p)
	idx := len(s.Players) - 1
	return []Event{{Type: EvtPlayerJoined, PlayerIndex: idx, PlayerID: p.ID}}, nil
}

// applyLeavePlayer marks a player disconnected. Their state is preserved for
// reconnection; draft and sacrifice advancement simply skip them.
func (e *Engine) applyLeavePlayer(s *State, cmd Command) ([]Event, error) {
	for i := range s.Players {
		if s.Players[i].ID == cmd.PlayerID {
			s.Players[i].Connected = false
			return []Event{{Type: EvtPlayerLeft, PlayerIndex: i, PlayerID: cmd.PlayerID}}, nil
		}
	}
	return nil, ErrMissingPlayer
}

// applyKickPlayer removes a player outright and remaps every stored index.
// If the kicked player was mid-turn the affected session aborts to the
// dashboard rather than guessing a successor.
func (e *Engine) applyKickPlayer(s *State, cmd Command) ([]Event, error) {
	idx := cmd.PlayerIndex
	p, ok := s.player(idx)
	if !ok {
		return nil, ErrMissingPlayer
	}
	kickedID := p.ID
	s.Players = append(s.Players[:idx], s.Players[idx+1:]...)

	events := []Event{{Type: EvtPlayerKicked, PlayerIndex: idx, PlayerID: kickedID}}
	events = append(events, remapAfterRemoval(s, idx)...)
	return events, nil
}

func remapAfterRemoval(s *State, removed int) []Event {
	adjust := func(i int) (int, bool) {
		if i == removed {
			return -1, false
		}
		if i > removed {
			return i - 1, true
		}
		return i, true
	}

	var events []Event
	if d := s.Draft; d != nil {
		activeKicked := false
		if ai, ok := adjust(d.ActivePlayerIndex); ok {
			d.ActivePlayerIndex = ai
		} else {
			activeKicked = true
		}
		var order []int
		for _, i := range d.DraftOrder {
			if ni, ok := adjust(i); ok {
				order = append(order, ni)
			}
		}
		d.DraftOrder = order
		if ri, ok := adjust(d.RetrospectivePlayerIndex); ok {
			d.RetrospectivePlayerIndex = ri
		}
		if activeKicked || len(order) == 0 {
			s.Draft = nil
			s.Phase = PhaseDashboard
			events = append(events, Event{Type: EvtPhaseChanged, Phase: PhaseDashboard})
		}
	}

	if ev := s.Event; ev != nil {
		if ti, ok := adjust(ev.TargetPlayer); ok {
			ev.TargetPlayer = ti
		} else {
			// The event's target is gone; abort rather than pick a stand-in.
			s.Event = nil
			if s.Phase == PhaseEvent {
				s.Phase = PhaseDashboard
				events = append(events, Event{Type: EvtPhaseChanged, Phase: PhaseDashboard})
			}
		}
	}

	if sac := s.Sacrifice; sac != nil {
		activeKicked := false
		if ai, ok := adjust(sac.ActivePlayerIndex); ok {
			sac.ActivePlayerIndex = ai
		} else {
			activeKicked = true
		}
		var queue []int
		for _, i := range sac.SacrificesRequired {
			if ni, ok := adjust(i); ok {
				queue = append(queue, ni)
			}
		}
		sac.SacrificesRequired = queue
		if activeKicked || len(queue) == 0 {
			s.Sacrifice = nil
			s.Phase = PhaseDashboard
			events = append(events, Event{Type: EvtPhaseChanged, Phase: PhaseDashboard})
		}
	}
	return events
}
