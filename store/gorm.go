package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ Backend = (*GormStore)(nil)

// LocalRecord is one persisted record of the mysql store driver.
type LocalRecord struct {
	RecordKey string    `gorm:"column:record_key;size:191;primaryKey" json:"record_key"`
	Value     string    `gorm:"type:longtext;not null" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// GormStore keeps records as rows of local_records.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore migrates local_records and returns the store.
func NewGormStore(ctx context.Context, db *gorm.DB) (*GormStore, error) {
	if err := db.WithContext(ctx).AutoMigrate(&LocalRecord{}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func (g *GormStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var rec LocalRecord
	err := g.db.WithContext(ctx).Where("record_key = ?", key).Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(rec.Value), true, nil
}

func (g *GormStore) Set(ctx context.Context, key string, value []byte) error {
	rec := LocalRecord{RecordKey: key, Value: string(value)}
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "record_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
}

func (g *GormStore) Delete(ctx context.Context, keys ...string) error {
	return g.db.WithContext(ctx).Where("record_key IN ?", keys).Delete(&LocalRecord{}).Error
}
