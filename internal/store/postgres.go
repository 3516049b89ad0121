package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const snapshotSchemaVersion = 1

// GameSnapshot is one persisted lobby, last write wins.
type GameSnapshot struct {
	Code          string `gorm:"primaryKey;size:12"`
	SchemaVersion int
	Version       int
	Payload       []byte `gorm:"type:jsonb"`
	UpdatedAt     time.Time
}

// Postgres stores snapshots in a single upsert-style table.
type Postgres struct {
	db *gorm.DB
}

func OpenPostgres(dsn string) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(&GameSnapshot{}); err != nil {
		return nil, fmt.Errorf("migrate snapshots: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Save(ctx context.Context, code string, version int, payload []byte) error {
	row := GameSnapshot{
		Code:          code,
		SchemaVersion: snapshotSchemaVersion,
		Version:       version,
		Payload:       payload,
	}
	if err := p.db.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("save snapshot %s: %w", code, err)
	}
	return nil
}

func (p *Postgres) Load(ctx context.Context, code string) ([]byte, int, error) {
	var row GameSnapshot
	err := p.db.WithContext(ctx).First(&row, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("load snapshot %s: %w", code, err)
	}
	if row.SchemaVersion != snapshotSchemaVersion {
		return nil, 0, fmt.Errorf("load snapshot %s: schema version %d unsupported", code, row.SchemaVersion)
	}
	return row.Payload, row.Version, nil
}
