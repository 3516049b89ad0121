package engine

import (
	"errors"
	"testing"
)

func TestNewState_Phases(t *testing.T) {
	if s := NewState(GameConfig{}, false); s.Phase != PhaseLobby {
		t.Fatalf("multiplayer start: want lobby, got %v", s.Phase)
	}
	if s := NewState(GameConfig{}, true); s.Phase != PhaseSoloConfig {
		t.Fatalf("solo start: want solo config, got %v", s.Phase)
	}
}

func TestNormalizeConfig_Defaults(t *testing.T) {
	s := NewState(GameConfig{}, false)
	cfg := s.Config
	if cfg.HandSize != 4 || cfg.StratagemSlots != 4 || cfg.MaxStarRating != 10 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestConfigure(t *testing.T) {
	e := testEngine(1)
	s := NewState(GameConfig{}, false)
	s.Players = append(s.Players, testPlayer("a"))

	cfg := GameConfig{HandSize: 5, MaxStarRating: 7, BurnMode: true}
	if _, err := e.Apply(s, Command{Type: CmdConfigure, Config: &cfg}); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if s.Config.HandSize != 5 || s.Config.MaxStarRating != 7 || !s.Config.BurnMode {
		t.Fatalf("config not applied: %+v", s.Config)
	}

	if _, err := e.Apply(s, Command{Type: CmdConfigure}); !errors.Is(err, ErrBadCommand) {
		t.Fatalf("nil config: want ErrBadCommand, got %v", err)
	}

	s.Phase = PhaseDashboard
	if _, err := e.Apply(s, Command{Type: CmdConfigure, Config: &cfg}); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("mid-run configure: want ErrWrongPhase, got %v", err)
	}
}

func TestStartRun_FromLobby(t *testing.T) {
	e := testEngine(1)
	s := NewState(GameConfig{}, false)
	s.Players = append(s.Players, testPlayer("a"))
	s.Players[0].Loadout = Loadout{}
	s.Players[0].Extracted = false

	events, err := e.Apply(s, Command{Type: CmdStartRun})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if s.Phase != PhaseDashboard || s.Difficulty != 1 {
		t.Fatalf("run not started: phase=%v difficulty=%d", s.Phase, s.Difficulty)
	}
	p := &s.Players[0]
	if p.Loadout.Secondary != "pistol" || p.Loadout.Grenade != "frag" || p.Loadout.Armor != "scout_light" {
		t.Fatalf("defaults not equipped: %+v", p.Loadout)
	}
	if !p.Extracted {
		t.Fatalf("players start extracted")
	}
	if !ContainsEvent(events, EvtPhaseChanged) {
		t.Fatalf("expected EvtPhaseChanged")
	}
}

// With customStart enabled the first start request detours through the
// custom setup phase; the second one launches the run.
func TestStartRun_CustomStartDetour(t *testing.T) {
	e := testEngine(1)
	s := NewState(GameConfig{CustomStart: true}, true)
	s.Players = append(s.Players, testPlayer("a"))

	if _, err := e.Apply(s, Command{Type: CmdStartRun}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if s.Phase != PhaseCustomSetup {
		t.Fatalf("want custom setup detour, got %v", s.Phase)
	}
	if _, err := e.Apply(s, Command{Type: CmdStartRun}); err != nil {
		t.Fatalf("second start: %v", err)
	}
	if s.Phase != PhaseDashboard {
		t.Fatalf("want dashboard, got %v", s.Phase)
	}
}

func TestToggleExtraction(t *testing.T) {
	e := testEngine(1)
	s := testState(1)

	if _, err := e.Apply(s, Command{Type: CmdToggleExtraction, PlayerIndex: 0}); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if s.Players[0].Extracted {
		t.Fatalf("toggle off failed")
	}
	if _, err := e.Apply(s, Command{Type: CmdToggleExtraction, PlayerIndex: 5}); !errors.Is(err, ErrMissingPlayer) {
		t.Fatalf("want ErrMissingPlayer, got %v", err)
	}
}

func TestAbandonRun(t *testing.T) {
	e := testEngine(1)
	s := testState(1)

	events, err := e.Apply(s, Command{Type: CmdAbandonRun})
	if err != nil {
		t.Fatalf("abandon: %v", err)
	}
	if s.Phase != PhaseGameOver {
		t.Fatalf("want game over, got %v", s.Phase)
	}
	if !ContainsEvent(events, EvtRunCompleted) {
		t.Fatalf("expected EvtRunCompleted")
	}

	if _, err := e.Apply(s, Command{Type: CmdAbandonRun}); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("abandon after game over: want ErrWrongPhase, got %v", err)
	}
}

func TestApply_UnsupportedCommand(t *testing.T) {
	e := testEngine(1)
	s := testState(1)
	if _, err := e.Apply(s, Command{Type: "Nonsense"}); !errors.Is(err, ErrUnsupportedCommand) {
		t.Fatalf("want ErrUnsupportedCommand, got %v", err)
	}
}
