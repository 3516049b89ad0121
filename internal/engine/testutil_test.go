package engine

import (
	"math/rand"

	"github.com/helldraft/helldraft/internal/catalog"
)

func testCatalog() *catalog.Catalog {
	items := []catalog.Item{
		{ID: "rifle", Type: catalog.TypePrimary, Rarity: catalog.RarityCommon},
		{ID: "shotgun", Type: catalog.TypePrimary, Rarity: catalog.RarityCommon},
		{ID: "plasma", Type: catalog.TypePrimary, Rarity: catalog.RaritySuperRare, Warbond: "veterans"},
		{ID: "pistol", Type: catalog.TypeSecondary, Rarity: catalog.RarityCommon},
		{ID: "revolver", Type: catalog.TypeSecondary, Rarity: catalog.RarityRare},
		{ID: "frag", Type: catalog.TypeGrenade, Rarity: catalog.RarityCommon},
		{ID: "impact", Type: catalog.TypeGrenade, Rarity: catalog.RarityRare},
		{ID: "scout_light", Type: catalog.TypeArmor, Rarity: catalog.RarityRare, Passive: "scout", ArmorClass: "light"},
		{ID: "scout_light_2", Type: catalog.TypeArmor, Rarity: catalog.RarityRare, Passive: "scout", ArmorClass: "light"},
		{ID: "fortified_heavy", Type: catalog.TypeArmor, Rarity: catalog.RarityRare, Passive: "fortified", ArmorClass: "heavy"},
		{ID: "stamina", Type: catalog.TypeBooster, Rarity: catalog.RarityCommon},
		{ID: "vitality", Type: catalog.TypeBooster, Rarity: catalog.RarityCommon},
		{ID: "airstrike", Type: catalog.TypeStratagem, Rarity: catalog.RarityCommon},
		{ID: "railcannon", Type: catalog.TypeStratagem, Rarity: catalog.RarityRare},
		{ID: "laser", Type: catalog.TypeStratagem, Rarity: catalog.RaritySuperRare},
		{ID: "autocannon", Type: catalog.TypeStratagem, Rarity: catalog.RarityCommon},
	}
	passives := map[string]string{"scout": "Scout", "fortified": "Fortified"}
	events := []catalog.EventDef{
		{
			ID: "cache", Type: "outcomes", Weight: 1,
			Outcomes: []catalog.EventOutcome{{Weight: 1, Effect: catalog.EventEffect{Requisition: 50}}},
		},
		{
			ID: "ambush", Type: "outcomes", Weight: 1, MinDifficulty: 3,
			Outcomes: []catalog.EventOutcome{{Weight: 1, Effect: catalog.EventEffect{RedraftRounds: 1}}},
		},
		{
			ID: "audit", Type: "choices", Weight: 1, MultiplayerOnly: true,
			Choices: []catalog.EventOutcome{
				{Effect: catalog.EventEffect{Requisition: -25}},
				{Effect: catalog.EventEffect{ExtraDraftCards: 2}},
			},
		},
	}
	bal := catalog.Balancing{
		Weights: map[catalog.Rarity]catalog.RarityCurve{
			catalog.RarityCommon:    {Base: 10},
			catalog.RarityRare:      {Base: 10},
			catalog.RaritySuperRare: {Base: 10},
		},
		ProtectedItems:     []string{"pistol"},
		DefaultLoadout:     map[catalog.ItemType]string{catalog.TypeSecondary: "pistol", catalog.TypeGrenade: "frag", catalog.TypeArmor: "scout_light"},
		RequisitionPerStar: 10,
	}
	return catalog.New(items, passives, events, bal)
}

func testEngine(seed int64) *Engine {
	return New(testCatalog(), rand.New(rand.NewSource(seed)))
}

func testPlayer(id string) Player {
	p := NewPlayer(id, id)
	p.Connected = true
	p.Extracted = true
	p.Warbonds["veterans"] = true
	return p
}

// testState builds a dashboard-phase squad of n connected players.
func testState(n int) *State {
	s := NewState(GameConfig{HandSize: 3, StratagemSlots: 2, MaxLockedSlots: 2, MaxStarRating: 10}, false)
	s.Phase = PhaseDashboard
	s.Difficulty = 1
	for i := 0; i < n; i++ {
		s.Players = append(s.Players, testPlayer(playerID(i)))
	}
	return s
}

func playerID(i int) string {
	return string(rune('a' + i))
}

// startSession opens a draft session and pins the draft order so tests are
// independent of the shuffle.
func startSession(e *Engine, s *State, order []int) {
	e.startDraftPhase(s)
	if s.Draft == nil {
		return
	}
	s.Draft.DraftOrder = order
	s.Draft.ActivePlayerIndex = order[0]
	e.deal(s, order[0])
}
