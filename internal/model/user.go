package model

import "time"

// User stores Telegram user metadata. Users who haven't signed in are
// anonymous and keep their tasks in the local store.
type User struct {
	ID         uint  `gorm:"primaryKey"`
	TelegramID int64 `gorm:"uniqueIndex"`
	FirstName  string
	LastName   string
	Username   string
	SignedIn   bool `gorm:"default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
