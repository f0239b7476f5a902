package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Video is an uploaded video. Media files live in external storage; only
// their URLs are kept here.
type Video struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner       User      `gorm:"foreignKey:OwnerID" json:"-"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	VideoFile   string    `gorm:"not null" json:"video_file"`
	Thumbnail   string    `gorm:"not null" json:"thumbnail"`
	Duration    float64   `json:"duration"`
	Views       int64     `gorm:"not null" json:"views"`
	IsPublished bool      `gorm:"not null" json:"is_published"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (v *Video) BeforeCreate(_ *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
