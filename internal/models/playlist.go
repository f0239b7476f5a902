package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultPlaylistName is used when a playlist is created without a name.
const DefaultPlaylistName = "Untitled"

// Playlist is an ordered collection of videos owned by one user.
type Playlist struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner       User      `gorm:"foreignKey:OwnerID" json:"-"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	Videos      []Video   `gorm:"many2many:playlist_videos;constraint:OnDelete:CASCADE" json:"videos,omitempty"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p *Playlist) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Name == "" {
		p.Name = DefaultPlaylistName
	}
	return nil
}
