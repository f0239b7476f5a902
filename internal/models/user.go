// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a channel owner / viewer. Credentials are managed by the
// auth service and never serialized.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	FullName     string    `gorm:"not null" json:"full_name"`
	Avatar       string    `json:"avatar"`
	CoverImage   string    `json:"cover_image"`
	Password     string    `gorm:"not null" json:"-"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// OwnerProfile is the public projection of a User attached to content.
type OwnerProfile struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	FullName string    `json:"full_name"`
	Avatar   string    `json:"avatar"`
}

// Profile returns the public projection of u.
func (u *User) Profile() OwnerProfile {
	return OwnerProfile{
		ID:       u.ID,
		Username: u.Username,
		FullName: u.FullName,
		Avatar:   u.Avatar,
	}
}

// WatchHistoryEntry records that a user opened a video.
type WatchHistoryEntry struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	VideoID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"video_id"`
	WatchedAt time.Time `json:"watched_at"`
}

func (WatchHistoryEntry) TableName() string {
	return "watch_history"
}
