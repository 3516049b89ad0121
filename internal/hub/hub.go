package hub

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/helldraft/helldraft/internal/engine"
	"github.com/helldraft/helldraft/internal/lobby"
	"github.com/helldraft/helldraft/internal/store"
)

type HubMsg interface{ isHubMsg() }

type CreateLobby struct {
	Code  string
	State *engine.State
	Reply chan *lobby.Lobby
}

type GetLobby struct {
	Code  string
	Reply chan *lobby.Lobby
}

// EnsureLobby returns the live lobby for a code, reviving it from the
// snapshot store when the process restarted underneath a running game.
type EnsureLobby struct {
	Code  string
	State *engine.State // only used if creation happens and no snapshot exists
	Reply chan *lobby.Lobby
}

type RemoveLobby struct {
	Code string
}

type ShutdownHub struct{}

func (CreateLobby) isHubMsg() {}
func (GetLobby) isHubMsg()    {}
func (EnsureLobby) isHubMsg() {}
func (RemoveLobby) isHubMsg() {}
func (ShutdownHub) isHubMsg() {}

type Hub struct {
	inbox   chan HubMsg
	lobbies map[string]*lobby.Lobby
	deps    lobby.Deps
	snaps   store.Store
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewHub(parent context.Context, deps lobby.Deps) *Hub {
	ctx, cancel := context.WithCancel(parent)
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		lobbies: make(map[string]*lobby.Lobby),
		deps:    deps,
		snaps:   deps.Store,
		log:     deps.Logger.Named("hub"),
		ctx:     ctx,
		cancel:  cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateLobby:
				if lb := h.lobbies[msg.Code]; lb != nil {
					msg.Reply <- lb
					break
				}
				lb := lobby.NewLobby(h.ctx, msg.Code, msg.State, h.deps)
				h.lobbies[msg.Code] = lb
				msg.Reply <- lb

			case GetLobby:
				msg.Reply <- h.lobbies[msg.Code] // May be nil

			case EnsureLobby:
				if lb := h.lobbies[msg.Code]; lb != nil {
					msg.Reply <- lb
					break
				}
				initial := msg.State
				if restored := h.restore(msg.Code); restored != nil {
					initial = restored
				}
				lb := lobby.NewLobby(h.ctx, msg.Code, initial, h.deps)
				h.lobbies[msg.Code] = lb
				msg.Reply <- lb

			case RemoveLobby:
				delete(h.lobbies, msg.Code)

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) restore(code string) *engine.State {
	if h.snaps == nil {
		return nil
	}
	payload, version, err := h.snaps.Load(h.ctx, code)
	if err != nil {
		return nil
	}
	var s engine.State
	if err := json.Unmarshal(payload, &s); err != nil {
		h.log.Warn("corrupt snapshot ignored", zap.String("lobby", code), zap.Error(err))
		return nil
	}
	h.log.Info("lobby restored from snapshot", zap.String("lobby", code), zap.Int("version", version))
	return &s
}

func (h *Hub) shutdown() {
	for _, lb := range h.lobbies {
		lb.Inbox() <- lobby.Shutdown{}
	}
	clear(h.lobbies)
	h.cancel()
}
