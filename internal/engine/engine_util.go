package engine

// NewState builds the initial state for a lobby. Multiplayer games open in
// the lobby phase; solo games go straight to solo configuration.
func NewState(cfg GameConfig, solo bool) *State {
	s := &State{
		Phase:      PhaseLobby,
		Config:     normalizeConfig(cfg),
		Burned:     map[string]bool{},
		SeenEvents: map[string]bool{},
	}
	if solo {
		s.Phase = PhaseSoloConfig
	}
	return s
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}
