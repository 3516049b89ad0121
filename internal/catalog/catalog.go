package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type ItemType string

const (
	TypePrimary   ItemType = "primary"
	TypeSecondary ItemType = "secondary"
	TypeGrenade   ItemType = "grenade"
	TypeArmor     ItemType = "armor"
	TypeBooster   ItemType = "booster"
	TypeStratagem ItemType = "stratagem"
)

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RaritySuperRare Rarity = "super_rare"
)

// Item is an immutable catalog entry. Passive and ArmorClass are only
// meaningful for armor items.
type Item struct {
	ID         string   `yaml:"id" json:"id"`
	Name       string   `yaml:"name" json:"name"`
	Type       ItemType `yaml:"type" json:"type"`
	Rarity     Rarity   `yaml:"rarity" json:"rarity"`
	Warbond    string   `yaml:"warbond" json:"warbond"`
	Tags       []string `yaml:"tags" json:"tags,omitempty"`
	Superstore bool     `yaml:"superstore" json:"superstore,omitempty"`
	Passive    string   `yaml:"passive" json:"passive,omitempty"`
	ArmorClass string   `yaml:"armor_class" json:"armor_class,omitempty"`
}

// EventEffect is one concrete consequence of an event outcome or choice.
// A zero value means "nothing happens".
type EventEffect struct {
	Requisition     int    `yaml:"requisition"`
	ExtraDraftCards int    `yaml:"extra_draft_cards"`
	RedraftRounds   int    `yaml:"redraft_rounds"`
	GrantItem       string `yaml:"grant_item"`
	AllPlayers      bool   `yaml:"all_players"`
}

type EventOutcome struct {
	Text   string      `yaml:"text"`
	Weight float64     `yaml:"weight"`
	Effect EventEffect `yaml:"effect"`
}

// EventDef is a narrative event definition. Type "outcomes" resolves to a
// weighted random outcome; type "choices" waits for an explicit player choice.
type EventDef struct {
	ID              string         `yaml:"id"`
	Type            string         `yaml:"type"` // "outcomes" | "choices"
	Text            string         `yaml:"text"`
	Weight          float64        `yaml:"weight"`
	MinDifficulty   int            `yaml:"min_difficulty"`
	MaxDifficulty   int            `yaml:"max_difficulty"` // 0 = unbounded
	MultiplayerOnly bool           `yaml:"multiplayer_only"`
	Outcomes        []EventOutcome `yaml:"outcomes"`
	Choices         []EventOutcome `yaml:"choices"`
}

// RarityCurve maps difficulty onto a draw weight for one rarity tier.
type RarityCurve struct {
	Base          float64 `yaml:"base"`
	PerDifficulty float64 `yaml:"per_difficulty"`
}

// Balancing holds the externally tuned numbers the engine treats as pure
// function inputs.
type Balancing struct {
	Weights            map[Rarity]RarityCurve `yaml:"weights"`
	ProtectedItems     []string               `yaml:"protected_items"`
	DefaultLoadout     map[ItemType]string    `yaml:"default_loadout"`
	RequisitionPerStar int                    `yaml:"requisition_per_star"`
}

// Catalog is the read-only content bundle the engine consumes. Items keep a
// stable load order so weighted pool walks are reproducible.
type Catalog struct {
	items     []Item
	byID      map[string]Item
	passives  map[string]string
	events    []EventDef
	balancing Balancing
}

func New(items []Item, passives map[string]string, events []EventDef, bal Balancing) *Catalog {
	byID := make(map[string]Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	if passives == nil {
		passives = map[string]string{}
	}
	return &Catalog{items: items, byID: byID, passives: passives, events: events, balancing: bal}
}

type catalogFile struct {
	Items    []Item            `yaml:"items"`
	Passives map[string]string `yaml:"passives"`
	Events   []EventDef        `yaml:"events"`
}

// Load reads items.yaml and balancing.yaml from dir.
func Load(dir string) (*Catalog, error) {
	var cf catalogFile
	if err := readYAML(filepath.Join(dir, "items.yaml"), &cf); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	var bal Balancing
	if err := readYAML(filepath.Join(dir, "balancing.yaml"), &bal); err != nil {
		return nil, fmt.Errorf("load balancing: %w", err)
	}
	for i, it := range cf.Items {
		if it.ID == "" {
			return nil, fmt.Errorf("load catalog: item %d has no id", i)
		}
	}
	return New(cf.Items, cf.Passives, cf.Events, bal), nil
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return nil
}

func (c *Catalog) Items() []Item { return c.items }

func (c *Catalog) Item(id string) (Item, bool) {
	it, ok := c.byID[id]
	return it, ok
}

func (c *Catalog) Events() []EventDef { return c.events }

func (c *Catalog) Event(id string) (EventDef, bool) {
	for _, ev := range c.events {
		if ev.ID == id {
			return ev, true
		}
	}
	return EventDef{}, false
}

func (c *Catalog) PassiveName(id string) string { return c.passives[id] }

func (c *Catalog) IsProtected(id string) bool {
	for _, p := range c.balancing.ProtectedItems {
		if p == id {
			return true
		}
	}
	return false
}

// DefaultFor returns the fallback item for a slot type, or "" when the slot
// may be left empty.
func (c *Catalog) DefaultFor(t ItemType) string {
	return c.balancing.DefaultLoadout[t]
}

func (c *Catalog) RequisitionPerStar() int { return c.balancing.RequisitionPerStar }

// WeightFor evaluates the balancing curve for one rarity at one difficulty.
// The curve is clamped to a floor of 1 so no eligible item ever becomes
// undraftable.
func (c *Catalog) WeightFor(r Rarity, difficulty int) float64 {
	curve, ok := c.balancing.Weights[r]
	if !ok {
		return 1
	}
	w := curve.Base + curve.PerDifficulty*float64(difficulty)
	if w < 1 {
		return 1
	}
	return w
}
