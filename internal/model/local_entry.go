package model

import "time"

// LocalEntry is one key of the local key/value store.
type LocalEntry struct {
	Key       string `gorm:"primaryKey"`
	Value     string
	UpdatedAt time.Time
}
