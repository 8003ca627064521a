package store

import "time"

// GORM models used for persistence.
type UserModel struct {
	ID           string    `gorm:"primaryKey"`
	Username     string    `gorm:"not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Subscription string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

type StoryModel struct {
	ID          string `gorm:"primaryKey"`
	Title       string `gorm:"not null"`
	Description string
	Body        string
	Ending      string
	ImagePath   string    `gorm:"not null"`
	AuthorID    string    `gorm:"not null;index"`
	CreatedAt   time.Time `gorm:"not null;index"`
}
