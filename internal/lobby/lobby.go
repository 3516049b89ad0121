package lobby

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/helldraft/helldraft/internal/analytics"
	"github.com/helldraft/helldraft/internal/engine"
	"github.com/helldraft/helldraft/internal/store"
)

type Msg interface{ isLobbyMsg() }

// FromClient relays one intent to the host loop. The sender only identifies
// itself; turn ownership is re-validated by the engine on every command, so
// stale or duplicate intents degrade to logged no-ops.
type FromClient struct {
	ClientID string
	Cmd      engine.Command
}

func (FromClient) isLobbyMsg() {}

type Join struct {
	ClientID string
	PlayerID string
	Name     string
	Outbox   chan Snapshot // where this client wants to receive snapshots
}

func (Join) isLobbyMsg() {}

type Leave struct{ ClientID string }

func (Leave) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isLobbyMsg() {}

// ReplaceState swaps in an imported snapshot wholesale. Used by the
// export/import flow; the next broadcast makes it canonical everywhere.
type ReplaceState struct {
	Payload []byte
	Reply   chan error
}

func (ReplaceState) isLobbyMsg() {}

// Snapshot is one full-state publication. Payload is the serialized
// engine.State, marshaled once inside the host loop so client writers never
// touch live state.
type Snapshot struct {
	Version int
	Payload []byte
	Kicked  bool
}

type View struct {
	Version    int
	NumClients int
	Payload    []byte
}

type client struct {
	outbox   chan Snapshot
	playerID string
}

// Lobby is the authoritative host for one game: a single goroutine owns the
// state, applies intents in arrival order, and publishes full snapshots.
type Lobby struct {
	code    string
	inbox   chan Msg
	eng     *engine.Engine
	state   *engine.State
	version int
	clients map[string]*client
	hostID  string
	store   store.Store
	rec     analytics.Recorder
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

// Deps carries the collaborators every lobby shares.
type Deps struct {
	Engine    *engine.Engine
	Store     store.Store
	Analytics analytics.Recorder
	Logger    *zap.Logger
}

func NewLobby(parent context.Context, code string, initial *engine.State, deps Deps) *Lobby {
	ctx, cancel := context.WithCancel(parent)

	if deps.Analytics == nil {
		deps.Analytics = analytics.Nop{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	l := &Lobby{
		code:    code,
		inbox:   make(chan Msg, 64), // Small buffer
		eng:     deps.Engine,
		state:   initial,
		version: 0,
		clients: make(map[string]*client),
		store:   deps.Store,
		rec:     deps.Analytics,
		log:     deps.Logger.With(zap.String("lobby", code)),
		ctx:     ctx,
		cancel:  cancel,
	}

	go l.loop()
	return l
}

// hostOnly lists the commands reserved for the lobby owner. Everything else
// is gated by turn ownership inside the engine.
var hostOnly = map[engine.CommandType]bool{
	engine.CmdConfigure:      true,
	engine.CmdStartRun:       true,
	engine.CmdResolveMission: true,
	engine.CmdKickPlayer:     true,
	engine.CmdAbandonRun:     true,
}

func (l *Lobby) loop() {
	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Join:
				l.handleJoin(msg)

			case Leave:
				l.handleLeave(msg)

			case FromClient:
				if hostOnly[msg.Cmd.Type] && msg.ClientID != l.hostID {
					l.log.Info("non-host intent dropped",
						zap.String("client", msg.ClientID),
						zap.String("cmd", string(msg.Cmd.Type)))
					break
				}
				l.dispatch(msg.Cmd)

			case GetState:
				// test/export: reflect internal state without data races
				msg.Reply <- View{
					Version:    l.version,
					NumClients: len(l.clients),
					Payload:    l.marshalState(),
				}

			case ReplaceState:
				var replaced engine.State
				if err := json.Unmarshal(msg.Payload, &replaced); err != nil {
					msg.Reply <- err
					break
				}
				l.state = &replaced
				l.version++
				l.broadcast()
				l.persist()
				msg.Reply <- nil

			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

// dispatch runs one command through the engine. Accepted mutations bump the
// version, broadcast, persist, and feed analytics; rejections are logged
// no-ops so a bad intent can never wedge the session.
func (l *Lobby) dispatch(cmd engine.Command) {
	events, err := l.eng.Apply(l.state, cmd)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrWrongTurn), errors.Is(err, engine.ErrWrongPhase),
			errors.Is(err, engine.ErrPendingStratagem):
			l.log.Debug("stale intent ignored", zap.String("cmd", string(cmd.Type)), zap.Error(err))
		default:
			l.log.Warn("intent rejected", zap.String("cmd", string(cmd.Type)), zap.Error(err))
		}
		return
	}

	l.version++
	l.record(events)
	l.routeKicks(events)
	l.broadcast()
	l.persist()
}

func (l *Lobby) handleJoin(msg Join) {
	l.clients[msg.ClientID] = &client{outbox: msg.Outbox, playerID: msg.PlayerID}
	if l.hostID == "" {
		l.hostID = msg.ClientID
	}
	// Send the current snapshot immediately, then reconcile the roster.
	msg.Outbox <- Snapshot{Version: l.version, Payload: l.marshalState()}
	l.dispatch(engine.Command{Type: engine.CmdJoinPlayer, PlayerID: msg.PlayerID, Name: msg.Name})
}

func (l *Lobby) handleLeave(msg Leave) {
	c := l.clients[msg.ClientID]
	delete(l.clients, msg.ClientID)
	if c == nil {
		return
	}
	if msg.ClientID == l.hostID {
		// Host gone: no further publications will ever come. Shut the lobby
		// down so remaining clients fall back to the menu.
		l.log.Info("host left, closing lobby")
		l.shutdown()
		return
	}
	l.dispatch(engine.Command{Type: engine.CmdLeavePlayer, PlayerID: c.playerID})
}

// routeKicks delivers a terminal kick notice to the affected client before
// the regular broadcast, then drops them.
func (l *Lobby) routeKicks(events []engine.Event) {
	for _, ev := range events {
		if ev.Type != engine.EvtPlayerKicked {
			continue
		}
		for id, c := range l.clients {
			if c.playerID != ev.PlayerID {
				continue
			}
			select {
			case c.outbox <- Snapshot{Version: l.version, Kicked: true}:
			default:
			}
			close(c.outbox)
			delete(l.clients, id)
		}
	}
}

func (l *Lobby) record(events []engine.Event) {
	for _, ev := range events {
		switch ev.Type {
		case engine.EvtDraftCompleted:
			l.rec.DraftCompleted(l.code, l.state.Difficulty)
		case engine.EvtLoadoutChanged:
			l.rec.LoadoutChanged(l.code, ev.PlayerID)
		case engine.EvtRequisitionChanged:
			l.rec.RequisitionChanged(l.code, ev.PlayerID, ev.Amount)
		case engine.EvtMissionResolved:
			l.rec.MissionResolved(l.code, ev.Amount)
		}
	}
}

func (l *Lobby) marshalState() []byte {
	payload, err := json.Marshal(l.state)
	if err != nil {
		l.log.Error("marshal state", zap.Error(err))
		return nil
	}
	return payload
}

func (l *Lobby) persist() {
	if l.store == nil {
		return
	}
	if err := l.store.Save(l.ctx, l.code, l.version, l.marshalState()); err != nil {
		l.log.Warn("persist snapshot", zap.Error(err))
	}
}

func (l *Lobby) shutdown() {
	for id, c := range l.clients {
		close(c.outbox) // Tell client no more snapshots
		delete(l.clients, id)
	}
	l.cancel()
}

func (l *Lobby) broadcast() {
	snap := Snapshot{Version: l.version, Payload: l.marshalState()}
	for id, c := range l.clients {
		select {
		case c.outbox <- snap:
			//ok
		default:
			// Client is slow/full - drop them.
			close(c.outbox)
			delete(l.clients, id)
		}
	}
}

// Expose the inbox so tests or the WS layer can send messages.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }
