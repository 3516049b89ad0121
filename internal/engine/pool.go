package engine

import (
	"math/rand"

	"github.com/helldraft/helldraft/internal/catalog"
)

// PoolEntry is one weighted candidate in a draft pool.
type PoolEntry struct {
	Card   HandCard
	Weight float64
}

// WeightFunc maps (rarity, difficulty) onto a draw weight. The curve itself
// is balancing data; the sampler treats it as a pure function.
type WeightFunc func(r catalog.Rarity, difficulty int) float64

// ComputePool builds the weighted candidate pool for one player's draft turn.
//
// Filtering, in order: content-pack enablement, permanent exclusions, burned
// cards (burn mode only), locked slot types, items already owned, and
// globally-unique types already equipped by another player. Eligible armor is
// then grouped by (passive, armorClass); groups of two or more collapse into
// a single ArmorCombo entry so the same passive/class pair is never offered
// both bundled and loose.
func ComputePool(cat *catalog.Catalog, p *Player, difficulty int, cfg GameConfig,
	burned map[string]bool, players []Player, locked map[catalog.ItemType]bool,
	weight WeightFunc) []PoolEntry {

	unique := make(map[catalog.ItemType]bool, len(cfg.UniqueTypes))
	for _, t := range cfg.UniqueTypes {
		unique[t] = true
	}

	var pool []PoolEntry
	armorGroups := make(map[[2]string][]catalog.Item)
	var armorOrder [][2]string

	for _, it := range cat.Items() {
		if !eligible(it, p, cfg, burned, locked) {
			continue
		}
		if unique[it.Type] && equippedElsewhere(players, p, it) {
			continue
		}
		if it.Type == catalog.TypeArmor && it.Passive != "" {
			key := [2]string{it.Passive, it.ArmorClass}
			if _, seen := armorGroups[key]; !seen {
				armorOrder = append(armorOrder, key)
			}
			armorGroups[key] = append(armorGroups[key], it)
			continue
		}
		pool = append(pool, PoolEntry{
			Card:   HandCard{ItemID: it.ID},
			Weight: weight(it.Rarity, difficulty),
		})
	}

	// Armor groups keep catalog order so pool walks stay reproducible.
	for _, key := range armorOrder {
		group := armorGroups[key]
		if len(group) == 1 {
			pool = append(pool, PoolEntry{
				Card:   HandCard{ItemID: group[0].ID},
				Weight: weight(group[0].Rarity, difficulty),
			})
			continue
		}
		ids := make([]string, len(group))
		best := group[0].Rarity
		for i, it := range group {
			ids[i] = it.ID
			if rarityRank(it.Rarity) > rarityRank(best) {
				best = it.Rarity
			}
		}
		pool = append(pool, PoolEntry{
			Card: HandCard{Combo: &ArmorCombo{
				Passive:    key[0],
				ArmorClass: key[1],
				ItemIDs:    ids,
			}},
			Weight: weight(best, difficulty),
		})
	}

	return pool
}

func eligible(it catalog.Item, p *Player, cfg GameConfig,
	burned map[string]bool, locked map[catalog.ItemType]bool) bool {
	if !it.Superstore && it.Warbond != "" && !p.Warbonds[it.Warbond] {
		return false
	}
	if p.ExcludedItems[it.ID] {
		return false
	}
	if cfg.BurnMode && burned[it.ID] {
		return false
	}
	if locked[it.Type] {
		return false
	}
	if p.Inventory[it.ID] {
		return false
	}
	return true
}

func equippedElsewhere(players []Player, self *Player, it catalog.Item) bool {
	for i := range players {
		other := &players[i]
		if other.ID == self.ID {
			continue
		}
		if equippedID(&other.Loadout, it.Type) == it.ID {
			return true
		}
	}
	return false
}

func equippedID(l *Loadout, t catalog.ItemType) string {
	switch t {
	case catalog.TypePrimary:
		return l.Primary
	case catalog.TypeSecondary:
		return l.Secondary
	case catalog.TypeGrenade:
		return l.Grenade
	case catalog.TypeArmor:
		return l.Armor
	case catalog.TypeBooster:
		return l.Booster
	}
	return ""
}

func rarityRank(r catalog.Rarity) int {
	switch r {
	case catalog.RarityCommon:
		return 0
	case catalog.RarityRare:
		return 1
	case catalog.RaritySuperRare:
		return 2
	}
	return 0
}

// DrawWeighted performs weighted sampling without replacement: draw a uniform
// value in [0, totalWeight), walk entries subtracting weight until the
// remainder is <= 0, remove the chosen entry, repeat. Replay tooling depends
// on this exact walk order, so keep the algorithm as-is.
func DrawWeighted(pool []PoolEntry, n int, rng *rand.Rand) []PoolEntry {
	remaining := make([]PoolEntry, len(pool))
	copy(remaining, pool)

	var drawn []PoolEntry
	for len(drawn) < n && len(remaining) > 0 {
		total := 0.0
		for _, e := range remaining {
			total += e.Weight
		}
		idx := len(remaining) - 1
		if total > 0 {
			r := rng.Float64() * total
			for i, e := range remaining {
				r -= e.Weight
				if r <= 0 {
					idx = i
					break
				}
			}
		}
		drawn = append(drawn, remaining[idx])
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return drawn
}
