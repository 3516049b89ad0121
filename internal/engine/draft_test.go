package engine

import (
	"errors"
	"slices"
	"testing"

	"github.com/helldraft/helldraft/internal/catalog"
)

func TestStartDraft_ZeroConnectedPlayersIsNoop(t *testing.T) {
	e := testEngine(1)
	s := testState(2)
	for i := range s.Players {
		s.Players[i].Connected = false
	}

	e.startDraftPhase(s)

	if s.Phase != PhaseDashboard {
		t.Fatalf("want dashboard, got %v", s.Phase)
	}
	if s.Draft != nil {
		t.Fatalf("expected no draft session")
	}
}

func TestDraft_WrongTurnRejected(t *testing.T) {
	e := testEngine(1)
	s := testState(2)
	startSession(e, s, []int{1, 0})

	_, err := e.Apply(s, Command{Type: CmdDraftPick, PlayerIndex: 0, CardIndex: 0})
	if !errors.Is(err, ErrWrongTurn) {
		t.Fatalf("want ErrWrongTurn, got %v", err)
	}
}

// Squad of 2 at difficulty 1, order [1,0]: player 1 picks, turn advances to
// player 0; player 0 skips, the session completes with one history entry.
func TestDraft_TwoPlayerPickThenSkip(t *testing.T) {
	e := testEngine(1)
	s := testState(2)
	startSession(e, s, []int{1, 0})

	events, err := e.Apply(s, Command{Type: CmdDraftPick, PlayerIndex: 1, CardIndex: 0})
	if err != nil {
		t.Fatalf("pick: %v", err)
	}
	if !ContainsEvent(events, EvtCardPicked) {
		t.Fatalf("expected EvtCardPicked, got %+v", events)
	}
	if s.Draft.ActivePlayerIndex != 0 {
		t.Fatalf("want active=0 after pick, got %d", s.Draft.ActivePlayerIndex)
	}

	events, err = e.Apply(s, Command{Type: CmdDraftSkip, PlayerIndex: 0})
	if err != nil {
		t.Fatalf("skip: %v", err)
	}
	if !ContainsEvent(events, EvtDraftCompleted) {
		t.Fatalf("expected EvtDraftCompleted, got %+v", events)
	}
	if s.Phase != PhaseDashboard || s.Draft != nil {
		t.Fatalf("session should have ended, phase=%v", s.Phase)
	}
	if len(s.History) != 1 || s.History[0].Difficulty != 1 {
		t.Fatalf("want one history entry at difficulty 1, got %+v", s.History)
	}
	if len(s.History[0].Picks) != 1 {
		t.Fatalf("want exactly the picker recorded, got %+v", s.History[0].Picks)
	}
}

// A player with extraDraftCards=2 gets exactly two bonus hands before turn
// order moves on.
func TestDraft_ExtraDraftCards(t *testing.T) {
	e := testEngine(1)
	s := testState(2)
	s.Players[0].ExtraDraftCards = 2
	startSession(e, s, []int{0, 1})

	for round := 0; round < 3; round++ {
		if s.Draft.ActivePlayerIndex != 0 {
			t.Fatalf("round %d: want player 0 active, got %d", round, s.Draft.ActivePlayerIndex)
		}
		if _, err := e.Apply(s, Command{Type: CmdDraftSkip, PlayerIndex: 0}); err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
	}
	if s.Draft.ActivePlayerIndex != 1 {
		t.Fatalf("want player 1 active after bonus rounds, got %d", s.Draft.ActivePlayerIndex)
	}
	if s.Players[0].ExtraDraftCards != 0 || s.Draft.ExtraDraftRound != 0 {
		t.Fatalf("extra counters not cleared: %d %d", s.Players[0].ExtraDraftCards, s.Draft.ExtraDraftRound)
	}
}

// A late joiner at squad difficulty 4 owes 3 catch-up sessions at synthetic
// difficulties 1, 2, 3; completing them clears the flag.
func TestDraft_RetrospectiveCatchUp(t *testing.T) {
	e := testEngine(1)
	s := testState(1)
	s.Difficulty = 4

	events, err := e.Apply(s, Command{Type: CmdJoinPlayer, PlayerID: "late", Name: "late"})
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if !ContainsEvent(events, EvtPlayerJoined) {
		t.Fatalf("expected EvtPlayerJoined")
	}
	late := &s.Players[1]
	if late.CatchUpDraftsRemaining != 3 || !late.NeedsRetrospectiveDraft {
		t.Fatalf("want catchUpDraftsRemaining=3, got %d", late.CatchUpDraftsRemaining)
	}

	// Finish a normal session so the catch-up kicks in at session end.
	startSession(e, s, []int{0})
	if _, err := e.Apply(s, Command{Type: CmdDraftSkip, PlayerIndex: 0}); err != nil {
		t.Fatalf("skip: %v", err)
	}

	wantDifficulty := 1
	for s.Draft != nil && s.Draft.IsRetrospective {
		if s.Draft.ActivePlayerIndex != 1 {
			t.Fatalf("retrospective must target the late joiner, got %d", s.Draft.ActivePlayerIndex)
		}
		if len(s.Draft.DraftOrder) != 1 {
			t.Fatalf("retrospective runs a single-player order, got %v", s.Draft.DraftOrder)
		}
		if s.Draft.Difficulty != wantDifficulty {
			t.Fatalf("want synthetic difficulty %d, got %d", wantDifficulty, s.Draft.Difficulty)
		}
		if _, err := e.Apply(s, Command{Type: CmdDraftSkip, PlayerIndex: 1}); err != nil {
			t.Fatalf("catch-up skip: %v", err)
		}
		wantDifficulty++
	}

	if wantDifficulty != 4 {
		t.Fatalf("expected 3 catch-up rounds, stopped before difficulty %d", wantDifficulty)
	}
	late = &s.Players[1]
	if late.NeedsRetrospectiveDraft || late.CatchUpDraftsRemaining != 0 {
		t.Fatalf("catch-up flags not cleared: %+v", late)
	}
	if s.Phase != PhaseDashboard {
		t.Fatalf("want dashboard after catch-up, got %v", s.Phase)
	}
}

func TestDraft_RetrospectiveDisallowsReroll(t *testing.T) {
	e := testEngine(1)
	s := testState(1)
	e.startRetrospectiveDraft(s, 0)

	_, err := e.Apply(s, Command{Type: CmdRerollCard, PlayerIndex: 0, CardIndex: 0})
	if !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("want reroll rejected in retrospective, got %v", err)
	}
}

// With all stratagem slots full a stratagem pick suspends into
// pendingStratagem: no mutation until the replacement slot is chosen.
func TestDraft_PendingStratagem(t *testing.T) {
	e := testEngine(1)
	s := testState(1)
	p := &s.Players[0]
	p.Loadout.Stratagems = []string{"airstrike", "railcannon"} // StratagemSlots=2
	startSession(e, s, []int{0})
	s.Draft.RoundCards = []HandCard{{ItemID: "laser"}}

	events, err := e.Apply(s, Command{Type: CmdDraftPick, PlayerIndex: 0, CardIndex: 0})
	if err != nil {
		t.Fatalf("pick: %v", err)
	}
	if !ContainsEvent(events, EvtStratagemPending) {
		t.Fatalf("expected EvtStratagemPending, got %+v", events)
	}
	if s.Draft.PendingStratagem == nil {
		t.Fatalf("pendingStratagem not set")
	}
	if p.Inventory["laser"] {
		t.Fatalf("inventory mutated before replacement choice")
	}

	// A second pick while suspended is rejected.
	if _, err := e.Apply(s, Command{Type: CmdDraftPick, PlayerIndex: 0, CardIndex: 0}); !errors.Is(err, ErrPendingStratagem) {
		t.Fatalf("want ErrPendingStratagem, got %v", err)
	}

	if _, err := e.Apply(s, Command{Type: CmdReplaceStratagem, PlayerIndex: 0, SlotIndex: 1}); err != nil {
		t.Fatalf("replacement: %v", err)
	}
	if p.Loadout.Stratagems[1] != "laser" || !p.Inventory["laser"] {
		t.Fatalf("replacement not applied: %+v", p.Loadout.Stratagems)
	}
}

func TestDraft_ArmorComboEquipsFirstVariant(t *testing.T) {
	e := testEngine(1)
	s := testState(1)
	startSession(e, s, []int{0})
	s.Draft.RoundCards = []HandCard{{Combo: &ArmorCombo{
		Passive: "scout", ArmorClass: "light", ItemIDs: []string{"scout_light", "scout_light_2"},
	}}}

	if _, err := e.Apply(s, Command{Type: CmdDraftPick, PlayerIndex: 0, CardIndex: 0}); err != nil {
		t.Fatalf("pick: %v", err)
	}
	p := &s.Players[0]
	if p.Loadout.Armor != "scout_light" {
		t.Fatalf("want first variant equipped, got %q", p.Loadout.Armor)
	}
	if !p.Inventory["scout_light"] || !p.Inventory["scout_light_2"] {
		t.Fatalf("all variants should enter inventory: %v", p.Inventory)
	}
}

func TestDraft_DisconnectedPlayerSkipped(t *testing.T) {
	e := testEngine(1)
	s := testState(3)
	s.Players[1].Connected = false
	startSession(e, s, []int{0, 1, 2})

	if _, err := e.Apply(s, Command{Type: CmdDraftPick, PlayerIndex: 0, CardIndex: 0}); err != nil {
		t.Fatalf("pick: %v", err)
	}
	if s.Draft.ActivePlayerIndex != 2 {
		t.Fatalf("disconnected player not skipped, active=%d", s.Draft.ActivePlayerIndex)
	}
}

// Redraft rounds repeat the same player's turn, then exit straight to the
// dashboard without resuming the rest of the order.
func TestDraft_RedraftExitsToDashboard(t *testing.T) {
	e := testEngine(1)
	s := testState(2)
	s.Players[0].RedraftRounds = 1
	startSession(e, s, []int{0, 1})

	if _, err := e.Apply(s, Command{Type: CmdDraftPick, PlayerIndex: 0, CardIndex: 0}); err != nil {
		t.Fatalf("pick: %v", err)
	}
	if s.Draft == nil || s.Draft.ActivePlayerIndex != 0 || !s.Draft.IsRedrafting {
		t.Fatalf("want redraft repeat for player 0, got %+v", s.Draft)
	}

	if _, err := e.Apply(s, Command{Type: CmdDraftPick, PlayerIndex: 0, CardIndex: 0}); err != nil {
		t.Fatalf("redraft pick: %v", err)
	}
	if s.Phase != PhaseDashboard || s.Draft != nil {
		t.Fatalf("redraft exhaustion must return to dashboard, phase=%v", s.Phase)
	}
}

// The active player is always a member of the draft order while a session
// is live.
func TestDraft_ActiveAlwaysInOrder(t *testing.T) {
	e := testEngine(3)
	s := testState(3)
	s.Players[1].ExtraDraftCards = 1
	startSession(e, s, []int{2, 1, 0})

	for s.Draft != nil {
		d := s.Draft
		if !slices.Contains(d.DraftOrder, d.ActivePlayerIndex) {
			t.Fatalf("active %d not in order %v", d.ActivePlayerIndex, d.DraftOrder)
		}
		if _, err := e.Apply(s, Command{Type: CmdDraftSkip, PlayerIndex: d.ActivePlayerIndex}); err != nil {
			t.Fatalf("skip: %v", err)
		}
	}
}

// Burn mode: every card shown is spent for the rest of the run, picked or
// not, and never resurfaces in a later pool.
func TestDraft_BurnedCardsNeverReappear(t *testing.T) {
	e := testEngine(5)
	s := testState(1)
	s.Config.BurnMode = true
	startSession(e, s, []int{0})

	shown := map[string]bool{}
	for _, c := range s.Draft.RoundCards {
		for _, id := range cardItemIDs(c) {
			shown[id] = true
			if !s.Burned[id] {
				t.Fatalf("shown card %q not burned", id)
			}
		}
	}
	if _, err := e.Apply(s, Command{Type: CmdDraftSkip, PlayerIndex: 0}); err != nil {
		t.Fatalf("skip: %v", err)
	}

	pool := poolFor(s, 0)
	for _, entry := range pool {
		for _, id := range cardItemIDs(entry.Card) {
			if shown[id] {
				t.Fatalf("burned card %q back in pool", id)
			}
		}
	}
}

func TestDraft_RemoveCardShrinksHand(t *testing.T) {
	e := testEngine(1)
	s := testState(1)
	startSession(e, s, []int{0})
	before := len(s.Draft.RoundCards)
	if before == 0 {
		t.Fatalf("expected a dealt hand")
	}

	events, err := e.Apply(s, Command{Type: CmdRemoveCard, PlayerIndex: 0, CardIndex: 0})
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !ContainsEvent(events, EvtCardRemoved) || len(s.Draft.RoundCards) != before-1 {
		t.Fatalf("remove did not shrink hand: %d -> %d", before, len(s.Draft.RoundCards))
	}
}

func TestDraft_RerollExhaustedPoolIsFinal(t *testing.T) {
	e := testEngine(1)
	s := testState(1)
	p := &s.Players[0]
	// Lock every slot type except primaries, then own all but one primary:
	// the replacement pool is empty.
	for _, id := range []string{"shotgun", "plasma"} {
		p.Inventory[id] = true
	}
	p.LockedSlots = map[catalog.ItemType]bool{
		catalog.TypeSecondary: true,
		catalog.TypeGrenade:   true,
		catalog.TypeArmor:     true,
		catalog.TypeBooster:   true,
		catalog.TypeStratagem: true,
	}
	startSession(e, s, []int{0})

	if len(s.Draft.RoundCards) != 1 || s.Draft.RoundCards[0].ItemID != "rifle" {
		t.Fatalf("expected a single rifle in hand, got %+v", s.Draft.RoundCards)
	}
	events, err := e.Apply(s, Command{Type: CmdRerollCard, PlayerIndex: 0, CardIndex: 0})
	if err != nil {
		t.Fatalf("reroll: %v", err)
	}
	if !ContainsEvent(events, EvtPoolEmpty) {
		t.Fatalf("want EvtPoolEmpty, got %+v", events)
	}
	if s.Draft.RoundCards[0].ItemID != "rifle" {
		t.Fatalf("hand must be unchanged on exhausted reroll")
	}
}

func TestToggleSlotLock_CapIsNoop(t *testing.T) {
	e := testEngine(1)
	s := testState(1) // MaxLockedSlots=2

	for _, cmd := range []Command{
		{Type: CmdToggleSlotLock, PlayerIndex: 0, Slot: "grenade"},
		{Type: CmdToggleSlotLock, PlayerIndex: 0, Slot: "booster"},
		{Type: CmdToggleSlotLock, PlayerIndex: 0, Slot: "secondary"},
	} {
		if _, err := e.Apply(s, cmd); err != nil {
			t.Fatalf("lock: %v", err)
		}
	}
	if got := len(s.Players[0].LockedSlots); got != 2 {
		t.Fatalf("lock cap violated: %d slots locked", got)
	}
	if s.Players[0].LockedSlots["secondary"] {
		t.Fatalf("third lock should have been a no-op")
	}
}
