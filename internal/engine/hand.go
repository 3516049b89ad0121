package engine

import (
	"math/rand"

	"github.com/helldraft/helldraft/internal/catalog"
)

// GenerateHand draws handSize unique cards for one player's turn. Pool
// exhaustion is not an error: fewer cards (or none) simply come back. In burn
// mode every card shown is reported through onBurn, because shown cards are
// spent whether or not they get picked.
func GenerateHand(cat *catalog.Catalog, p *Player, difficulty int, cfg GameConfig,
	burned map[string]bool, players []Player, onBurn func(string), handSize int,
	locked map[catalog.ItemType]bool, weight WeightFunc, rng *rand.Rand) []HandCard {

	pool := ComputePool(cat, p, difficulty, cfg, burned, players, locked, weight)
	drawn := DrawWeighted(pool, handSize, rng)

	hand := make([]HandCard, 0, len(drawn))
	for _, e := range drawn {
		hand = append(hand, e.Card)
		if cfg.BurnMode && onBurn != nil {
			for _, id := range cardItemIDs(e.Card) {
				onBurn(id)
			}
		}
	}
	return hand
}

// drawReplacement draws one card from the player's pool, excluding everything
// already in hand. Used by the reroll-one-card flow. Returns false when no
// unique card remains, which is a final user-visible outcome, not an error.
func drawReplacement(cat *catalog.Catalog, p *Player, difficulty int, cfg GameConfig,
	burned map[string]bool, players []Player, hand []HandCard,
	locked map[catalog.ItemType]bool, weight WeightFunc, rng *rand.Rand) (HandCard, bool) {

	inHand := make(map[string]bool, len(hand))
	for _, c := range hand {
		inHand[c.Key()] = true
		for _, id := range cardItemIDs(c) {
			inHand[id] = true
		}
	}

	pool := ComputePool(cat, p, difficulty, cfg, burned, players, locked, weight)
	filtered := pool[:0]
	for _, e := range pool {
		if inHand[e.Card.Key()] {
			continue
		}
		overlap := false
		for _, id := range cardItemIDs(e.Card) {
			if inHand[id] {
				overlap = true
				break
			}
		}
		if overlap {
			continue
		}
		filtered = append(filtered, e)
	}

	drawn := DrawWeighted(filtered, 1, rng)
	if len(drawn) == 0 {
		return HandCard{}, false
	}
	return drawn[0].Card, true
}

func cardItemIDs(c HandCard) []string {
	if c.Combo != nil {
		return c.Combo.ItemIDs
	}
	return []string{c.ItemID}
}
