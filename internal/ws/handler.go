package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/helldraft/helldraft/internal/engine"
	"github.com/helldraft/helldraft/internal/hub"
	"github.com/helldraft/helldraft/internal/lobby"
	"github.com/helldraft/helldraft/internal/types"
)

// Handler upgrades a client, joins it to its lobby, and pumps intents in and
// snapshots out. The connection never mutates state itself; everything goes
// through the lobby inbox.
func Handler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}
		playerID := r.URL.Query().Get("player_id")
		if playerID == "" {
			playerID = uuid.NewString()
		}
		name := r.URL.Query().Get("name")

		reply := make(chan *lobby.Lobby, 1)
		h.Inbox() <- hub.GetLobby{Code: code, Reply: reply}
		lb := <-reply
		if lb == nil {
			http.Error(w, "lobby not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan lobby.Snapshot, 8)
		clientID := uuid.NewString()

		lb.Inbox() <- lobby.Join{ClientID: clientID, PlayerID: playerID, Name: name, Outbox: out}
		defer func() { lb.Inbox() <- lobby.Leave{ClientID: clientID} }()

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for snap := range out {
				msg := types.ServerMessage{Type: "StateSnapshot", Version: snap.Version}
				if snap.Kicked {
					msg.Type = "Kicked"
				} else {
					msg.State = &engine.State{}
					if err := json.Unmarshal(snap.Payload, msg.State); err != nil {
						log.Warn("bad snapshot payload", zap.Error(err))
						continue
					}
				}
				payload, _ := json.Marshal(msg)
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
				if snap.Kicked {
					writeCancel()
					return
				}
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				// Treat clean close/going-away as normal:
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				// Otherwise, just exit (lobby.Leave in defer):
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"Error","error":"bad json"}`))
				continue
			}

			cmd, ok := toEngineCommand(cm)
			if !ok {
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"Error","error":"unknown type"}`))
				continue
			}

			lb.Inbox() <- lobby.FromClient{ClientID: clientID, Cmd: cmd}
		}
	}
}

func toEngineCommand(m types.ClientMessage) (engine.Command, bool) {
	cmd := engine.Command{
		PlayerIndex: m.PlayerIndex,
		CardIndex:   m.CardIndex,
		SlotIndex:   m.SlotIndex,
		ItemID:      m.ItemID,
		Choice:      m.Choice,
		Slot:        m.Slot,
		Config:      m.Config,
	}
	if m.Samples != nil {
		cmd.Samples = *m.Samples
	}

	switch m.Type {
	case "Configure":
		cmd.Type = engine.CmdConfigure
	case "StartRun":
		cmd.Type = engine.CmdStartRun
	case "ToggleExtraction":
		cmd.Type = engine.CmdToggleExtraction
	case "ToggleSlotLock":
		cmd.Type = engine.CmdToggleSlotLock
	case "ResolveMission":
		cmd.Type = engine.CmdResolveMission
	case "DraftPick":
		cmd.Type = engine.CmdDraftPick
	case "DraftSkip":
		cmd.Type = engine.CmdDraftSkip
	case "RerollCard":
		cmd.Type = engine.CmdRerollCard
	case "RemoveCard":
		cmd.Type = engine.CmdRemoveCard
	case "ReplaceStratagem":
		cmd.Type = engine.CmdReplaceStratagem
	case "SacrificeItem":
		cmd.Type = engine.CmdSacrificeItem
	case "ResolveEvent":
		cmd.Type = engine.CmdResolveEvent
	case "KickPlayer":
		cmd.Type = engine.CmdKickPlayer
	case "AbandonRun":
		cmd.Type = engine.CmdAbandonRun
	default:
		return engine.Command{}, false
	}
	return cmd, true
}
