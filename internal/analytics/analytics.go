package analytics

import "go.uber.org/zap"

// Recorder receives fire-and-forget gameplay telemetry. Callers never wait
// on or branch on the result, so implementations must be non-blocking and
// must not fail loudly.
type Recorder interface {
	DraftCompleted(lobby string, difficulty int)
	LoadoutChanged(lobby, playerID string)
	RequisitionChanged(lobby, playerID string, amount int)
	MissionResolved(lobby string, difficulty int)
}

// Nop discards everything.
type Nop struct{}

func (Nop) DraftCompleted(string, int)             {}
func (Nop) LoadoutChanged(string, string)          {}
func (Nop) RequisitionChanged(string, string, int) {}
func (Nop) MissionResolved(string, int)            {}

// Log writes each record as a structured log line. Good enough until a real
// sink exists; swapping one in only touches this package.
type Log struct {
	L *zap.Logger
}

func NewLog(l *zap.Logger) Log { return Log{L: l.Named("analytics")} }

func (a Log) DraftCompleted(lobby string, difficulty int) {
	a.L.Info("draft_completed", zap.String("lobby", lobby), zap.Int("difficulty", difficulty))
}

func (a Log) LoadoutChanged(lobby, playerID string) {
	a.L.Info("loadout_changed", zap.String("lobby", lobby), zap.String("player", playerID))
}

func (a Log) RequisitionChanged(lobby, playerID string, amount int) {
	a.L.Info("requisition_changed", zap.String("lobby", lobby),
		zap.String("player", playerID), zap.Int("amount", amount))
}

func (a Log) MissionResolved(lobby string, difficulty int) {
	a.L.Info("mission_resolved", zap.String("lobby", lobby), zap.Int("difficulty", difficulty))
}
