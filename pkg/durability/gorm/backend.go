package gorm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cyberarian/rekama-sys/pkg/durability"
)

// DefaultName is the snapshot row used when none is configured.
const DefaultName = "default"

// Ensure Backend implements durability.Backend
var _ durability.Backend = (*Backend)(nil)

// Snapshot is the persisted row.
type Snapshot struct {
	Name      string `gorm:"primaryKey"`
	Image     []byte
	UpdatedAt time.Time
}

func (Snapshot) TableName() string {
	return "rekama_snapshots"
}

// Backend implements durability.Backend using GORM
type Backend struct {
	db   *gorm.DB
	name string
}

// NewBackend creates a Backend writing the row called name.
func NewBackend(db *gorm.DB, name string) *Backend {
	if name == "" {
		name = DefaultName
	}
	return &Backend{db: db, name: name}
}

// AutoMigrate creates the snapshot table if it is missing.
func (b *Backend) AutoMigrate() error {
	return b.db.AutoMigrate(&Snapshot{})
}

func (b *Backend) Load(ctx context.Context) ([]byte, error) {
	var row Snapshot
	tx := b.db.WithContext(ctx).Where("name = ?", b.name).Take(&row)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, durability.ErrNoSnapshot
		}
		return nil, fmt.Errorf("load snapshot %q: %w", b.name, tx.Error)
	}
	return row.Image, nil
}

func (b *Backend) Save(ctx context.Context, image []byte) error {
	row := Snapshot{Name: b.name, Image: image, UpdatedAt: time.Now().UTC()}
	err := b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"image", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save snapshot %q: %w", b.name, err)
	}
	return nil
}

func (b *Backend) Reset(ctx context.Context) error {
	err := b.db.WithContext(ctx).Where("name = ?", b.name).Delete(&Snapshot{}).Error
	if err != nil {
		return fmt.Errorf("reset snapshot %q: %w", b.name, err)
	}
	return nil
}
