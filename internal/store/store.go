package store

import (
	"context"
	"errors"
	"sync"
)

var ErrNotFound = errors.New("snapshot not found")

// Store persists whole-state snapshots keyed by lobby code. The core only
// ever serializes the full state and replaces it wholesale, so the interface
// is deliberately two calls.
type Store interface {
	Save(ctx context.Context, code string, version int, payload []byte) error
	Load(ctx context.Context, code string) (payload []byte, version int, err error)
}

// Memory is the dev/test store.
type Memory struct {
	mu   sync.RWMutex
	rows map[string]memoryRow
}

type memoryRow struct {
	version int
	payload []byte
}

func NewMemory() *Memory {
	return &Memory{rows: make(map[string]memoryRow)}
}

func (m *Memory) Save(_ context.Context, code string, version int, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(payload))
	copy(cp, payload)
	m.rows[code] = memoryRow{version: version, payload: cp}
	return nil
}

func (m *Memory) Load(_ context.Context, code string) ([]byte, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.rows[code]
	if !ok {
		return nil, 0, ErrNotFound
	}
	return row.payload, row.version, nil
}
