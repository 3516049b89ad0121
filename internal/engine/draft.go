package engine

import (
	"slices"

	"github.com/helldraft/helldraft/internal/catalog"
)

// startDraftPhase opens a draft session for every connected player: shuffle
// the connected subset into a draft order (Fisher-Yates, via the injected
// RNG), deal the first hand, enter the draft phase. Zero connected players is
// a defined no-op back to the dashboard, not an error.
func (e *Engine) startDraftPhase(s *State) []Event {
	order := s.connectedIndices()
	if len(order) == 0 {
		s.Draft = nil
		s.Phase = PhaseDashboard
		return []Event{{Type: EvtPhaseChanged, Phase: PhaseDashboard}}
	}
	e.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	s.Draft = &DraftState{
		ActivePlayerIndex: order[0],
		DraftOrder:        order,
		Difficulty:        s.Difficulty,
		Picks:             map[string]string{},
	}
	e.deal(s, order[0])
	s.Phase = PhaseDraft
	return []Event{
		{Type: EvtPhaseChanged, Phase: PhaseDraft},
		{Type: EvtTurnAdvanced, PlayerIndex: order[0]},
	}
}

// startRetrospectiveDraft opens a single-player catch-up session for a late
// joiner. Synthetic difficulty starts at 1 and climbs one star per completed
// catch-up round.
func (e *Engine) startRetrospectiveDraft(s *State, idx int) []Event {
	p := &s.Players[idx]
	s.Draft = &DraftState{
		ActivePlayerIndex:        idx,
		DraftOrder:               []int{idx},
		IsRetrospective:          true,
		RetrospectivePlayerIndex: idx,
		Difficulty:               p.RetrospectiveDraftsCompleted + 1,
		Picks:                    map[string]string{},
	}
	e.deal(s, idx)
	s.Phase = PhaseDraft
	return []Event{
		{Type: EvtPhaseChanged, Phase: PhaseDraft},
		{Type: EvtTurnAdvanced, PlayerIndex: idx},
	}
}

// startRedraftSession opens a single-player penalty session. One redraft
// round is consumed on entry; the advancement rules serve the rest.
func (e *Engine) startRedraftSession(s *State, idx int) []Event {
	p := &s.Players[idx]
	if p.RedraftRounds <= 0 {
		return nil
	}
	p.RedraftRounds--
	s.Draft = &DraftState{
		ActivePlayerIndex: idx,
		DraftOrder:        []int{idx},
		IsRedrafting:      true,
		Difficulty:        s.Difficulty,
		Picks:             map[string]string{},
	}
	e.deal(s, idx)
	s.Phase = PhaseDraft
	return []Event{
		{Type: EvtPhaseChanged, Phase: PhaseDraft},
		{Type: EvtTurnAdvanced, PlayerIndex: idx},
	}
}

// deal generates a fresh hand for the given player at the session difficulty.
func (e *Engine) deal(s *State, idx int) {
	d := s.Draft
	p := &s.Players[idx]
	d.RoundCards = GenerateHand(e.cat, p, d.Difficulty, s.Config, s.Burned,
		s.Players, s.burn, s.Config.HandSize, p.LockedSlots, e.cat.WeightFor, e.rng)
	d.PendingStratagem = nil
}

func (s *State) burn(id string) {
	if s.Burned == nil {
		s.Burned = map[string]bool{}
	}
	s.Burned[id] = true
}

// activeDrafter validates turn ownership: only the active player of a live
// draft session may act.
func (e *Engine) activeDrafter(s *State, playerIdx int) (*DraftState, *Player, error) {
	if s.Phase != PhaseDraft || s.Draft == nil {
		return nil, nil, ErrWrongPhase
	}
	p, ok := s.player(playerIdx)
	if !ok {
		return nil, nil, ErrMissingPlayer
	}
	if playerIdx != s.Draft.ActivePlayerIndex {
		return nil, nil, ErrWrongTurn
	}
	return s.Draft, p, nil
}

func (e *Engine) handleDraftPick(s *State, playerIdx, cardIdx int) ([]Event, error) {
	d, p, err := e.activeDrafter(s, playerIdx)
	if err != nil {
		return nil, err
	}
	if d.PendingStratagem != nil {
		return nil, ErrPendingStratagem
	}
	if cardIdx < 0 || cardIdx >= len(d.RoundCards) {
		return nil, ErrBadCommand
	}
	card := d.RoundCards[cardIdx]

	if card.IsCombo() {
		// Armor combos always auto-equip their first variant; armor has a
		// single slot so there is no fullness conflict.
		p.Loadout.Armor = card.Combo.ItemIDs[0]
		for _, id := range card.Combo.ItemIDs {
			p.Inventory[id] = true
		}
	} else {
		it, ok := e.cat.Item(card.ItemID)
		if !ok {
			return nil, ErrUnknownItem
		}
		if it.Type == catalog.TypeStratagem && stratagemSlotsFull(p, s.Config.StratagemSlots) {
			// Suspend the turn until the player chooses which slot to free.
			// No inventory or loadout mutation happens yet.
			d.PendingStratagem = &card
			return []Event{{Type: EvtStratagemPending, PlayerIndex: playerIdx, PlayerID: p.ID, ItemID: it.ID}}, nil
		}
		e.equipItem(p, it)
	}

	d.Picks[p.ID] = card.Key()
	events := []Event{
		{Type: EvtCardPicked, PlayerIndex: playerIdx, PlayerID: p.ID, ItemID: card.Key()},
		{Type: EvtLoadoutChanged, PlayerIndex: playerIdx, PlayerID: p.ID},
	}
	return append(events, e.proceedToNextDraft(s)...), nil
}

func (e *Engine) handleStratagemReplacement(s *State, playerIdx, slotIdx int) ([]Event, error) {
	d, p, err := e.activeDrafter(s, playerIdx)
	if err != nil {
		return nil, err
	}
	if d.PendingStratagem == nil {
		return nil, ErrBadCommand
	}
	if slotIdx < 0 || slotIdx >= len(p.Loadout.Stratagems) {
		return nil, ErrBadCommand
	}
	card := *d.PendingStratagem
	p.Loadout.Stratagems[slotIdx] = card.ItemID
	p.Inventory[card.ItemID] = true
	d.PendingStratagem = nil

	d.Picks[p.ID] = card.Key()
	events := []Event{
		{Type: EvtStratagemReplaced, PlayerIndex: playerIdx, PlayerID: p.ID, ItemID: card.ItemID, Amount: slotIdx},
		{Type: EvtLoadoutChanged, PlayerIndex: playerIdx, PlayerID: p.ID},
	}
	return append(events, e.proceedToNextDraft(s)...), nil
}

// handleDraftSkip passes the turn without granting an item. In burn mode the
// shown cards are already spent; the advancement rules run exactly as for a
// pick.
func (e *Engine) handleDraftSkip(s *State, playerIdx int) ([]Event, error) {
	d, p, err := e.activeDrafter(s, playerIdx)
	if err != nil {
		return nil, err
	}
	if d.PendingStratagem != nil {
		return nil, ErrPendingStratagem
	}
	if s.Config.BurnMode {
		for _, c := range d.RoundCards {
			for _, id := range cardItemIDs(c) {
				s.burn(id)
			}
		}
	}
	events := []Event{{Type: EvtCardSkipped, PlayerIndex: playerIdx, PlayerID: p.ID}}
	return append(events, e.proceedToNextDraft(s)...), nil
}

// handleRerollCard replaces one displayed card with a fresh weighted draw
// from a pool that excludes everything currently in hand. An exhausted pool
// is a final "no more unique cards" outcome, not an error. Retrospective
// sessions never offer rerolls.
func (e *Engine) handleRerollCard(s *State, playerIdx, cardIdx int) ([]Event, error) {
	d, p, err := e.activeDrafter(s, playerIdx)
	if err != nil {
		return nil, err
	}
	if d.IsRetrospective {
		return nil, ErrWrongPhase
	}
	if cardIdx < 0 || cardIdx >= len(d.RoundCards) {
		return nil, ErrBadCommand
	}

	replacement, ok := drawReplacement(e.cat, p, d.Difficulty, s.Config, s.Burned,
		s.Players, d.RoundCards, p.LockedSlots, e.cat.WeightFor, e.rng)
	if !ok {
		return []Event{{Type: EvtPoolEmpty, PlayerIndex: playerIdx, PlayerID: p.ID}}, nil
	}
	if s.Config.BurnMode {
		for _, id := range cardItemIDs(replacement) {
			s.burn(id)
		}
	}
	d.RoundCards[cardIdx] = replacement
	return []Event{{Type: EvtCardRerolled, PlayerIndex: playerIdx, PlayerID: p.ID, ItemID: replacement.Key()}}, nil
}

// handleRemoveCard drops one card from the hand without replacement.
func (e *Engine) handleRemoveCard(s *State, playerIdx, cardIdx int) ([]Event, error) {
	d, p, err := e.activeDrafter(s, playerIdx)
	if err != nil {
		return nil, err
	}
	if cardIdx < 0 || cardIdx >= len(d.RoundCards) {
		return nil, ErrBadCommand
	}
	removed := d.RoundCards[cardIdx]
	d.RoundCards = append(d.RoundCards[:cardIdx], d.RoundCards[cardIdx+1:]...)
	return []Event{{Type: EvtCardRemoved, PlayerIndex: playerIdx, PlayerID: p.ID, ItemID: removed.Key()}}, nil
}

// proceedToNextDraft advances the session after a pick or skip. The rules
// are an ordered list evaluated top to bottom; their precedence is part of
// the contract:
//
//  1. retrospective catch-up rounds for the same player
//  2. pending redraft rounds for the same player (exits to dashboard when
//     exhausted, never back into multi-player turn order)
//  3. pending extra draft cards for the same player
//  4. next connected player in draft order
//  5. session end: record history, start a pending catch-up session, else
//     try a random event, else dashboard
func (e *Engine) proceedToNextDraft(s *State) []Event {
	d := s.Draft
	idx := d.ActivePlayerIndex
	p := &s.Players[idx]

	// Rule 1: retrospective catch-up.
	if d.IsRetrospective {
		p.RetrospectiveDraftsCompleted++
		if p.CatchUpDraftsRemaining > 0 {
			p.CatchUpDraftsRemaining--
		}
		if p.CatchUpDraftsRemaining > 0 {
			d.Difficulty = p.RetrospectiveDraftsCompleted + 1
			e.deal(s, idx)
			return []Event{{Type: EvtTurnAdvanced, PlayerIndex: idx, PlayerID: p.ID}}
		}
		p.NeedsRetrospectiveDraft = false
		s.Draft = nil
		s.Phase = PhaseDashboard
		return []Event{
			{Type: EvtDraftCompleted, PlayerIndex: idx, PlayerID: p.ID},
			{Type: EvtPhaseChanged, Phase: PhaseDashboard},
		}
	}

	// Rule 2: redraft rounds repeat the same player's turn.
	if p.RedraftRounds > 0 {
		p.RedraftRounds--
		d.IsRedrafting = true
		e.deal(s, idx)
		return []Event{{Type: EvtTurnAdvanced, PlayerIndex: idx, PlayerID: p.ID}}
	}
	if d.IsRedrafting {
		s.Draft = nil
		s.Phase = PhaseDashboard
		return []Event{
			{Type: EvtDraftCompleted, PlayerIndex: idx, PlayerID: p.ID},
			{Type: EvtPhaseChanged, Phase: PhaseDashboard},
		}
	}

	// Rule 3: extra draft cards repeat the same player's turn.
	if p.ExtraDraftCards > 0 {
		p.ExtraDraftCards--
		d.ExtraDraftRound++
		e.deal(s, idx)
		return []Event{{Type: EvtTurnAdvanced, PlayerIndex: idx, PlayerID: p.ID}}
	}
	d.ExtraDraftRound = 0

	// Rule 4: next connected player in draft order. Disconnected players are
	// skipped without consuming anything.
	pos := slices.Index(d.DraftOrder, idx)
	for i := pos + 1; i < len(d.DraftOrder); i++ {
		ni := d.DraftOrder[i]
		if ni < len(s.Players) && s.Players[ni].Connected {
			d.ActivePlayerIndex = ni
			e.deal(s, ni)
			return []Event{{Type: EvtTurnAdvanced, PlayerIndex: ni, PlayerID: s.Players[ni].ID}}
		}
	}

	// Rule 5: session complete.
	events := []Event{{Type: EvtDraftCompleted}}
	s.History = append(s.History, DraftRecord{Difficulty: d.Difficulty, Picks: d.Picks})
	s.Draft = nil

	if ci, ok := nextCatchUpPlayer(s); ok {
		return append(events, e.startRetrospectiveDraft(s, ci)...)
	}
	if ev, ok := e.tryTriggerEvent(s); ok {
		return append(events,
			Event{Type: EvtEventTriggered, ItemID: ev},
			Event{Type: EvtPhaseChanged, Phase: PhaseEvent})
	}
	s.Phase = PhaseDashboard
	return append(events, Event{Type: EvtPhaseChanged, Phase: PhaseDashboard})
}

func nextCatchUpPlayer(s *State) (int, bool) {
	for i := range s.Players {
		p := &s.Players[i]
		if p.Connected && p.NeedsRetrospectiveDraft && p.CatchUpDraftsRemaining > 0 {
			return i, true
		}
	}
	return 0, false
}

func stratagemSlotsFull(p *Player, max int) bool {
	if len(p.Loadout.Stratagems) < max {
		return false
	}
	for _, id := range p.Loadout.Stratagems {
		if id == "" {
			return false
		}
	}
	return true
}

func (e *Engine) equipItem(p *Player, it catalog.Item) {
	switch it.Type {
	case catalog.TypePrimary:
		p.Loadout.Primary = it.ID
	case catalog.TypeSecondary:
		p.Loadout.Secondary = it.ID
	case catalog.TypeGrenade:
		p.Loadout.Grenade = it.ID
	case catalog.TypeArmor:
		p.Loadout.Armor = it.ID
	case catalog.TypeBooster:
		p.Loadout.Booster = it.ID
	case catalog.TypeStratagem:
		p.Loadout.Stratagems = append(p.Loadout.Stratagems, it.ID)
	}
	p.Inventory[it.ID] = true
}
