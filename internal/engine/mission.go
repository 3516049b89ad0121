package engine

// applyResolveMission closes out a mission from the dashboard: bank the
// collected samples, pay requisition to extracted players, advance the star
// rating, then route into sacrifice, victory, or the next draft session.
func (e *Engine) applyResolveMission(s *State, cmd Command) ([]Event, error) {
	if s.Phase != PhaseDashboard {
		return nil, ErrWrongPhase
	}

	events := []Event{{Type: EvtMissionResolved, Amount: s.Difficulty}}

	s.Samples.Common += cmd.Samples.Common
	s.Samples.Rare += cmd.Samples.Rare
	s.Samples.SuperRare += cmd.Samples.SuperRare

	reward := e.cat.RequisitionPerStar() * s.Difficulty
	if reward > 0 {
		for i := range s.Players {
			if s.Players[i].Extracted {
				s.Players[i].Requisition += reward
				events = append(events, Event{
					Type:        EvtRequisitionChanged,
					PlayerIndex: i,
					PlayerID:    s.Players[i].ID,
					Amount:      reward,
				})
			}
		}
	}

	if s.Difficulty >= s.Config.MaxStarRating && !s.Config.Endurance {
		s.Phase = PhaseVictory
		return append(events,
			Event{Type: EvtPhaseChanged, Phase: PhaseVictory},
			Event{Type: EvtRunCompleted}), nil
	}
	s.Difficulty++

	if queue := sacrificeQueue(s); len(queue) > 0 {
		s.Sacrifice = &SacrificeState{ActivePlayerIndex: queue[0], SacrificesRequired: queue}
		s.Phase = PhaseSacrifice
		return append(events,
			Event{Type: EvtPhaseChanged, Phase: PhaseSacrifice},
			Event{Type: EvtTurnAdvanced, PlayerIndex: queue[0], PlayerID: s.Players[queue[0]].ID}), nil
	}

	for i := range s.Players {
		s.Players[i].Extracted = true
	}
	return append(events, e.startDraftPhase(s)...), nil
}
