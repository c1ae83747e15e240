package repository

import (
	"errors"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskflow/internal/model"
)

// KVStore is the local key/value store of anonymous task lists, kept in the
// local_entries table. Reads and writes never fail from the caller's side:
// errors are logged and a failed read reports the key as absent.
type KVStore struct {
	db *gorm.DB
}

func NewKVStore(db *gorm.DB) *KVStore {
	return &KVStore{db: db}
}

func (s *KVStore) Read(key string) (string, bool) {
	var entry model.LocalEntry
	err := s.db.Where("key = ?", key).First(&entry).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[warn] read local entry %q: %v", key, err)
		}
		return "", false
	}
	return entry.Value, true
}

func (s *KVStore) Write(key, value string) {
	entry := model.LocalEntry{Key: key, Value: value}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		log.Printf("[warn] write local entry %q: %v", key, err)
	}
}

