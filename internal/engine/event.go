package engine

import (
	"github.com/helldraft/helldraft/internal/catalog"
)

// EventProbability is the trigger chance derived from accumulated mission
// samples, capped at certainty.
func EventProbability(samples Samples) float64 {
	p := float64(samples.Common)*0.01 + float64(samples.Rare)*0.02 + float64(samples.SuperRare)*0.03
	if p > 1 {
		p = 1
	}
	return p
}

// tryTriggerEvent rolls the sample-driven probability and, on success, picks
// a weighted eligible event, marks it seen (events never repeat within a
// run), resets the samples, and enters the event phase. Returns the chosen
// event id.
func (e *Engine) tryTriggerEvent(s *State) (string, bool) {
	p := EventProbability(s.Samples)
	if p <= 0 || e.rng.Float64() >= p {
		return "", false
	}

	var eligible []catalog.EventDef
	for _, ev := range e.cat.Events() {
		if s.SeenEvents[ev.ID] {
			continue
		}
		if ev.MinDifficulty > 0 && s.Difficulty < ev.MinDifficulty {
			continue
		}
		if ev.MaxDifficulty > 0 && s.Difficulty > ev.MaxDifficulty {
			continue
		}
		if ev.MultiplayerOnly && len(s.Players) <= 1 {
			continue
		}
		eligible = append(eligible, ev)
	}
	if len(eligible) == 0 {
		return "", false
	}

	idx := e.pickWeighted(len(eligible), func(i int) float64 { return eligible[i].Weight })
	chosen := eligible[idx]

	s.Samples = Samples{}
	if s.SeenEvents == nil {
		s.SeenEvents = map[string]bool{}
	}
	s.SeenEvents[chosen.ID] = true

	targets := s.connectedIndices()
	target := 0
	if len(targets) > 0 {
		target = targets[e.rng.Intn(len(targets))]
	}
	s.Event = &EventState{
		EventID:      chosen.ID,
		AwaitsChoice: chosen.Type == "choices",
		TargetPlayer: target,
	}
	s.Phase = PhaseEvent
	return chosen.ID, true
}

// resolveEvent applies the event's outcome. For "choices" events the choice
// index must come from the target player; for "outcomes" events an outcome is
// drawn by weight and the choice argument is ignored. A redraft penalty
// starts its session immediately; everything else returns to the dashboard.
func (e *Engine) resolveEvent(s *State, playerIdx, choice int) ([]Event, error) {
	if s.Phase != PhaseEvent || s.Event == nil {
		return nil, ErrWrongPhase
	}
	ev, ok := e.cat.Event(s.Event.EventID)
	if !ok {
		// Stale id, most likely a catalog swap under a loaded save. Degrade
		// to the dashboard instead of wedging the phase machine.
		s.Event = nil
		s.Phase = PhaseDashboard
		return []Event{{Type: EvtPhaseChanged, Phase: PhaseDashboard}}, nil
	}

	var outcome catalog.EventOutcome
	if ev.Type == "choices" {
		if playerIdx != s.Event.TargetPlayer {
			return nil, ErrWrongTurn
		}
		if choice < 0 || choice >= len(ev.Choices) {
			return nil, ErrBadCommand
		}
		outcome = ev.Choices[choice]
	} else {
		if len(ev.Outcomes) == 0 {
			s.Event = nil
			s.Phase = PhaseDashboard
			return []Event{{Type: EvtPhaseChanged, Phase: PhaseDashboard}}, nil
		}
		idx := e.pickWeighted(len(ev.Outcomes), func(i int) float64 { return ev.Outcomes[i].Weight })
		outcome = ev.Outcomes[idx]
	}

	targetIdx := s.Event.TargetPlayer
	events := []Event{{Type: EvtEventResolved, ItemID: ev.ID, PlayerIndex: targetIdx}}

	var targets []int
	if outcome.Effect.AllPlayers {
		targets = s.connectedIndices()
	} else if targetIdx < len(s.Players) {
		targets = []int{targetIdx}
	}

	redraftTarget := -1
	for _, ti := range targets {
		p := &s.Players[ti]
		eff := outcome.Effect
		if eff.Requisition != 0 {
			p.Requisition += eff.Requisition
			events = append(events, Event{Type: EvtRequisitionChanged, PlayerIndex: ti, PlayerID: p.ID, Amount: eff.Requisition})
		}
		if eff.ExtraDraftCards > 0 {
			p.ExtraDraftCards += eff.ExtraDraftCards
		}
		if eff.RedraftRounds > 0 {
			p.RedraftRounds += eff.RedraftRounds
			redraftTarget = ti
		}
		if eff.GrantItem != "" {
			if it, ok := e.cat.Item(eff.GrantItem); ok {
				e.equipItem(p, it)
				events = append(events, Event{Type: EvtLoadoutChanged, PlayerIndex: ti, PlayerID: p.ID})
			}
		}
	}

	s.Event = nil
	if redraftTarget >= 0 && s.Players[redraftTarget].Connected {
		return append(events, e.startRedraftSession(s, redraftTarget)...), nil
	}
	s.Phase = PhaseDashboard
	return append(events, Event{Type: EvtPhaseChanged, Phase: PhaseDashboard}), nil
}

// pickWeighted walks n entries subtracting weights from a uniform draw, the
// same walk the card sampler uses.
func (e *Engine) pickWeighted(n int, weightAt func(int) float64) int {
	total := 0.0
	for i := 0; i < n; i++ {
		total += weightAt(i)
	}
	idx := n - 1
	if total > 0 {
		r := e.rng.Float64() * total
		for i := 0; i < n; i++ {
			r -= weightAt(i)
			if r <= 0 {
				idx = i
				break
			}
		}
	}
	return idx
}
