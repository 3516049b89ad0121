package engine

import (
	"github.com/helldraft/helldraft/internal/catalog"
)

type Phase string

const (
	PhaseMenu        Phase = "menu"
	PhaseLobby       Phase = "lobby"
	PhaseSoloConfig  Phase = "solo_config"
	PhaseCustomSetup Phase = "custom_setup"
	PhaseDashboard   Phase = "dashboard"
	PhaseDraft       Phase = "draft"
	PhaseEvent       Phase = "event"
	PhaseSacrifice   Phase = "sacrifice"
	PhaseVictory     Phase = "victory"
	PhaseGameOver    Phase = "gameover"
	// PhaseKicked is only ever set client-side after the relay's kick notice;
	// host state never enters it because the kicked player is removed from the
	// roster outright.
	PhaseKicked Phase = "kicked"
)

// Loadout holds one item id per equipment slot. Empty string means the slot
// is empty, which is only legal for primary and booster.
type Loadout struct {
	Primary    string   `json:"primary"`
	Secondary  string   `json:"secondary"`
	Grenade    string   `json:"grenade"`
	Armor      string   `json:"armor"`
	Booster    string   `json:"booster"`
	Stratagems []string `json:"stratagems"`
}

// Player is owned exclusively by the top-level State and mutated only through
// applied commands, never by the sampler.
type Player struct {
	ID            string                     `json:"id"`
	Name          string                     `json:"name"`
	Loadout       Loadout                    `json:"loadout"`
	Inventory     map[string]bool            `json:"inventory"`
	Warbonds      map[string]bool            `json:"warbonds"`
	ExcludedItems map[string]bool            `json:"excluded_items"`
	LockedSlots   map[catalog.ItemType]bool  `json:"locked_slots"`
	Extracted     bool                       `json:"extracted"`
	Connected     bool                       `json:"connected"`
	Requisition   int                        `json:"requisition"`

	// Transient draft counters.
	RedraftRounds                int  `json:"redraft_rounds"`
	ExtraDraftCards              int  `json:"extra_draft_cards"`
	NeedsRetrospectiveDraft      bool `json:"needs_retrospective_draft"`
	CatchUpDraftsRemaining       int  `json:"catch_up_drafts_remaining"`
	RetrospectiveDraftsCompleted int  `json:"retrospective_drafts_completed"`
}

// ArmorCombo is a synthetic draft entry bundling armor variants that share a
// passive and armor class. It is drafted as a unit: the first variant is
// equipped, every variant enters the inventory.
type ArmorCombo struct {
	Passive    string   `json:"passive"`
	ArmorClass string   `json:"armor_class"`
	ItemIDs    []string `json:"item_ids"`
}

// HandCard is one entry of a draft hand: either a single item or an armor
// combo, never both.
type HandCard struct {
	ItemID string      `json:"item_id,omitempty"`
	Combo  *ArmorCombo `json:"combo,omitempty"`
}

func (c HandCard) IsCombo() bool { return c.Combo != nil }

// Key identifies a hand card for dedup purposes. Combos key on their first
// variant, which is unique because a combo and its constituents are mutually
// exclusive pool entries.
func (c HandCard) Key() string {
	if c.Combo != nil && len(c.Combo.ItemIDs) > 0 {
		return "combo:" + c.Combo.ItemIDs[0]
	}
	return c.ItemID
}

// DraftState lives for exactly one draft session: created by startDraftPhase,
// discarded when the session completes.
type DraftState struct {
	ActivePlayerIndex        int               `json:"active_player_index"`
	RoundCards               []HandCard        `json:"round_cards"`
	DraftOrder               []int             `json:"draft_order"`
	PendingStratagem         *HandCard         `json:"pending_stratagem,omitempty"`
	ExtraDraftRound          int               `json:"extra_draft_round"`
	IsRetrospective          bool              `json:"is_retrospective"`
	RetrospectivePlayerIndex int               `json:"retrospective_player_index"`
	IsRedrafting             bool              `json:"is_redrafting"`
	Difficulty               int               `json:"difficulty"`
	Picks                    map[string]string `json:"picks"` // player id -> item id / combo key
}

type SacrificeState struct {
	ActivePlayerIndex  int   `json:"active_player_index"`
	SacrificesRequired []int `json:"sacrifices_required"`
}

// EventState carries the pending narrative event, including any choice the
// active squad still owes. There is no side channel; everything travels in
// the state object.
type EventState struct {
	EventID      string `json:"event_id"`
	AwaitsChoice bool   `json:"awaits_choice"`
	TargetPlayer int    `json:"target_player"`
}

// Samples are the per-mission sample counts that feed the event trigger
// probability. They accumulate across missions and reset when an event fires.
type Samples struct {
	Common    int `json:"common"`
	Rare      int `json:"rare"`
	SuperRare int `json:"super_rare"`
}

type DraftRecord struct {
	Difficulty int               `json:"difficulty"`
	Picks      map[string]string `json:"picks"`
}

// GameConfig is resolved once at run start and read-only afterwards except
// for explicit configure commands during setup.
type GameConfig struct {
	PlayerCount    int                `json:"player_count"`
	MaxStarRating  int                `json:"max_star_rating"`
	BurnMode       bool               `json:"burn_mode"`
	Endurance      bool               `json:"endurance"`
	Brutality      bool               `json:"brutality"`
	Faction        string             `json:"faction"`
	Subfaction     string             `json:"subfaction"`
	CustomStart    bool               `json:"custom_start"`
	MaxLockedSlots int                `json:"max_locked_slots"`
	StratagemSlots int                `json:"stratagem_slots"`
	HandSize       int                `json:"hand_size"`
	UniqueTypes    []catalog.ItemType `json:"unique_types"`
}

// State is the full canonical game state. In multiplayer only the host
// mutates it; clients replace their copy wholesale on every snapshot.
type State struct {
	Phase      Phase           `json:"phase"`
	Config     GameConfig      `json:"config"`
	Players    []Player        `json:"players"`
	Difficulty int             `json:"difficulty"`
	Draft      *DraftState     `json:"draft,omitempty"`
	Sacrifice  *SacrificeState `json:"sacrifice,omitempty"`
	Event      *EventState     `json:"event,omitempty"`
	Burned     map[string]bool `json:"burned"`
	SeenEvents map[string]bool `json:"seen_events"`
	Samples    Samples         `json:"samples"`
	History    []DraftRecord   `json:"history"`
}

func (s *State) player(idx int) (*Player, bool) {
	if idx < 0 || idx >= len(s.Players) {
		return nil, false
	}
	return &s.Players[idx], true
}

func (s *State) connectedIndices() []int {
	var out []int
	for i := range s.Players {
		if s.Players[i].Connected {
			out = append(out, i)
		}
	}
	return out
}
