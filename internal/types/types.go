package types

import (
	"github.com/helldraft/helldraft/internal/catalog"
	"github.com/helldraft/helldraft/internal/engine"
)

// ClientMessage is a client intent on the wire. Clients never mutate state
// themselves; the host applies the translated command and broadcasts.
type ClientMessage struct {
	Type        string              `json:"type"`
	PlayerIndex int                 `json:"player_index,omitempty"`
	CardIndex   int                 `json:"card_index,omitempty"`
	SlotIndex   int                 `json:"slot_index,omitempty"`
	ItemID      string              `json:"item_id,omitempty"`
	Choice      int                 `json:"choice,omitempty"`
	Slot        catalog.ItemType    `json:"slot,omitempty"`
	Samples     *engine.Samples     `json:"samples,omitempty"`
	Config      *engine.GameConfig  `json:"config,omitempty"`
}

// ServerMessage carries either a full canonical state snapshot, a kick
// notice, or an error back to one client.
type ServerMessage struct {
	Type    string        `json:"type"` // "StateSnapshot" | "Kicked" | "Error"
	Version int           `json:"version,omitempty"`
	State   *engine.State `json:"state,omitempty"`
	Error   string        `json:"error,omitempty"`
}
