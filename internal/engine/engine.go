package engine

import (
	"errors"
	"math/rand"
	"time"

	"github.com/helldraft/helldraft/internal/catalog"
)

var ErrWrongTurn = errors.New("invalid turn")
var ErrWrongPhase = errors.New("invalid phase")
var ErrMissingPlayer = errors.New("missing player")
var ErrPendingStratagem = errors.New("stratagem replacement pending")
var ErrProtectedItem = errors.New("item is protected")
var ErrUnknownItem = errors.New("unknown item")
var ErrBadCommand = errors.New("malformed command")
var ErrUnsupportedCommand = errors.New("unsupported command")

type CommandType string

const (
	CmdConfigure        CommandType = "Configure"
	CmdStartRun         CommandType = "StartRun"
	CmdToggleExtraction CommandType = "ToggleExtraction"
	CmdToggleSlotLock   CommandType = "ToggleSlotLock"
	CmdResolveMission   CommandType = "ResolveMission"
	CmdDraftPick        CommandType = "DraftPick"
	CmdDraftSkip        CommandType = "DraftSkip"
	CmdRerollCard       CommandType = "RerollCard"
	CmdRemoveCard       CommandType = "RemoveCard"
	CmdReplaceStratagem CommandType = "ReplaceStratagem"
	CmdSacrificeItem    CommandType = "SacrificeItem"
	CmdResolveEvent     CommandType = "ResolveEvent"
	CmdJoinPlayer       CommandType = "JoinPlayer"
	CmdLeavePlayer      CommandType = "LeavePlayer"
	CmdKickPlayer       CommandType = "KickPlayer"
	CmdAbandonRun       CommandType = "AbandonRun"
)

// Command is a client intent. The relay delivers these to the host, which is
// the sole mutator; a command that no longer matches the active player or
// phase is rejected and the caller treats it as a silent no-op.
type Command struct {
	Type        CommandType
	PlayerIndex int
	PlayerID    string
	Name        string
	CardIndex   int
	SlotIndex   int
	ItemID      string
	Choice      int
	Slot        catalog.ItemType
	Samples     Samples
	Config      *GameConfig
}

type EventType string

const (
	EvtCardPicked         EventType = "CardPicked"
	EvtCardSkipped        EventType = "CardSkipped"
	EvtCardRerolled       EventType = "CardRerolled"
	EvtCardRemoved        EventType = "CardRemoved"
	EvtPoolEmpty          EventType = "PoolEmpty"
	EvtTurnAdvanced       EventType = "TurnAdvanced"
	EvtDraftCompleted     EventType = "DraftCompleted"
	EvtStratagemPending   EventType = "StratagemPending"
	EvtStratagemReplaced  EventType = "StratagemReplaced"
	EvtLoadoutChanged     EventType = "LoadoutChanged"
	EvtRequisitionChanged EventType = "RequisitionChanged"
	EvtMissionResolved    EventType = "MissionResolved"
	EvtEventTriggered     EventType = "EventTriggered"
	EvtEventResolved      EventType = "EventResolved"
	EvtItemSacrificed     EventType = "ItemSacrificed"
	EvtPlayerJoined       EventType = "PlayerJoined"
	EvtPlayerLeft         EventType = "PlayerLeft"
	EvtPlayerKicked       EventType = "PlayerKicked"
	EvtPhaseChanged       EventType = "PhaseChanged"
	EvtRunCompleted       EventType = "RunCompleted"
)

// Event describes an accepted mutation, for analytics and tests. Events are
// observational: state changes happen in Apply, never by replaying events.
type Event struct {
	Type        EventType
	PlayerIndex int
	PlayerID    string
	ItemID      string
	Amount      int
	Phase       Phase
}

// Engine applies commands to game state. The catalog and RNG are injected
// once at construction; the engine holds no per-game state, so one instance
// can serve many lobbies as long as each lobby applies commands from a single
// goroutine.
type Engine struct {
	cat *catalog.Catalog
	rng *rand.Rand
}

func New(cat *catalog.Catalog, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{cat: cat, rng: rng}
}

// Apply processes one command against the state, mutating it in place and
// returning the events the mutation produced. No error is fatal; callers
// degrade every failure to a logged no-op.
func (e *Engine) Apply(s *State, cmd Command) ([]Event, error) {
	switch cmd.Type {
	case CmdConfigure:
		return e.applyConfigure(s, cmd)
	case CmdStartRun:
		return e.applyStartRun(s)
	case CmdToggleExtraction:
		return e.applyToggleExtraction(s, cmd)
	case CmdToggleSlotLock:
		return e.applyToggleSlotLock(s, cmd)
	case CmdResolveMission:
		return e.applyResolveMission(s, cmd)
	case CmdDraftPick:
		return e.handleDraftPick(s, cmd.PlayerIndex, cmd.CardIndex)
	case CmdDraftSkip:
		return e.handleDraftSkip(s, cmd.PlayerIndex)
	case CmdRerollCard:
		return e.handleRerollCard(s, cmd.PlayerIndex, cmd.CardIndex)
	case CmdRemoveCard:
		return e.handleRemoveCard(s, cmd.PlayerIndex, cmd.CardIndex)
	case CmdReplaceStratagem:
		return e.handleStratagemReplacement(s, cmd.PlayerIndex, cmd.SlotIndex)
	case CmdSacrificeItem:
		return e.handleSacrifice(s, cmd.PlayerIndex, cmd.ItemID)
	case CmdResolveEvent:
		return e.resolveEvent(s, cmd.PlayerIndex, cmd.Choice)
	case CmdJoinPlayer:
		return e.applyJoinPlayer(s, cmd)
	case CmdLeavePlayer:
		return e.applyLeavePlayer(s, cmd)
	case CmdKickPlayer:
		return e.applyKickPlayer(s, cmd)
	case CmdAbandonRun:
		return e.applyAbandonRun(s)
	default:
		return nil, ErrUnsupportedCommand
	}
}

func (e *Engine) applyConfigure(s *State, cmd Command) ([]Event, error) {
	switch s.Phase {
	case PhaseLobby, PhaseSoloConfig, PhaseCustomSetup:
	default:
		return nil, ErrWrongPhase
	}
	if cmd.Config == nil {
		return nil, ErrBadCommand
	}
	s.Config = normalizeConfig(*cmd.Config)
	return nil, nil
}

func (e *Engine) applyStartRun(s *State) ([]Event, error) {
	switch s.Phase {
	case PhaseLobby, PhaseSoloConfig:
		if s.Config.CustomStart {
			s.Phase = PhaseCustomSetup
			return []Event{{Type: EvtPhaseChanged, Phase: s.Phase}}, nil
		}
	case PhaseCustomSetup:
	default:
		return nil, ErrWrongPhase
	}

	s.Difficulty = 1
	for i := range s.Players {
		e.equipDefaults(&s.Players[i])
		s.Players[i].Extracted = true
	}
	s.Phase = PhaseDashboard
	return []Event{{Type: EvtPhaseChanged, Phase: s.Phase}}, nil
}

func (e *Engine) applyToggleExtraction(s *State, cmd Command) ([]Event, error) {
	if s.Phase != PhaseDashboard {
		return nil, ErrWrongPhase
	}
	p, ok := s.player(cmd.PlayerIndex)
	if !ok {
		return nil, ErrMissingPlayer
	}
	p.Extracted = !p.Extracted
	return nil, nil
}

// applyToggleSlotLock toggles a slot-type exemption. Locking past the
// configured cap is a no-op, not an error.
func (e *Engine) applyToggleSlotLock(s *State, cmd Command) ([]Event, error) {
	if s.Phase != PhaseDashboard {
		return nil, ErrWrongPhase
	}
	p, ok := s.player(cmd.PlayerIndex)
	if !ok {
		return nil, ErrMissingPlayer
	}
	if p.LockedSlots[cmd.Slot] {
		delete(p.LockedSlots, cmd.Slot)
		return nil, nil
	}
	if len(p.LockedSlots) >= s.Config.MaxLockedSlots {
		return nil, nil
	}
	p.LockedSlots[cmd.Slot] = true
	return nil, nil
}

func (e *Engine) applyAbandonRun(s *State) ([]Event, error) {
	switch s.Phase {
	case PhaseVictory, PhaseGameOver, PhaseKicked:
		return nil, ErrWrongPhase
	}
	s.Phase = PhaseGameOver
	return []Event{
		{Type: EvtPhaseChanged, Phase: s.Phase},
		{Type: EvtRunCompleted},
	}, nil
}

func normalizeConfig(cfg GameConfig) GameConfig {
	if cfg.HandSize <= 0 {
		cfg.HandSize = 4
	}
	if cfg.StratagemSlots <= 0 {
		cfg.StratagemSlots = 4
	}
	if cfg.MaxStarRating <= 0 {
		cfg.MaxStarRating = 10
	}
	if cfg.MaxLockedSlots < 0 {
		cfg.MaxLockedSlots = 0
	}
	return cfg
}

func (e *Engine) equipDefaults(p *Player) {
	l := &p.Loadout
	if l.Secondary == "" {
		l.Secondary = e.cat.DefaultFor(catalog.TypeSecondary)
	}
	if l.Grenade == "" {
		l.Grenade = e.cat.DefaultFor(catalog.TypeGrenade)
	}
	if l.Armor == "" {
		l.Armor = e.cat.DefaultFor(catalog.TypeArmor)
	}
	for _, id := range []string{l.Primary, l.Secondary, l.Grenade, l.Armor, l.Booster} {
		if id != "" {
			p.Inventory[id] = true
		}
	}
}
