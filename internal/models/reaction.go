package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TargetKind identifies which collection a reaction points into.
type TargetKind string

const (
	TargetVideo   TargetKind = "video"
	TargetComment TargetKind = "comment"
	TargetTweet   TargetKind = "tweet"
)

// ParseTargetKind converts user input into a TargetKind.
func ParseTargetKind(s string) (TargetKind, error) {
	switch TargetKind(strings.ToLower(strings.TrimSpace(s))) {
	case TargetVideo:
		return TargetVideo, nil
	case TargetComment:
		return TargetComment, nil
	case TargetTweet:
		return TargetTweet, nil
	}
	return "", NewValidationError("Invalid reaction target: " + s)
}

// Valid reports whether k is one of the known target kinds.
func (k TargetKind) Valid() bool {
	switch k {
	case TargetVideo, TargetComment, TargetTweet:
		return true
	}
	return false
}

// ContentKind maps the reaction target onto the content collection it lives in.
func (k TargetKind) ContentKind() ContentKind {
	switch k {
	case TargetVideo:
		return ContentVideo
	case TargetComment:
		return ContentComment
	case TargetTweet:
		return ContentTweet
	}
	return ""
}

// Reaction is one user's like of one target.
// (UserID, TargetKind, TargetID) is unique; toggling creates or deletes the row.
type Reaction struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_reaction_user_target,priority:1" json:"user_id"`
	TargetKind TargetKind `gorm:"type:varchar(16);not null;uniqueIndex:idx_reaction_user_target,priority:2;index:idx_reaction_target,priority:1" json:"target_kind"`
	TargetID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_reaction_user_target,priority:3;index:idx_reaction_target,priority:2" json:"target_id"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (r *Reaction) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return nil
}

// ReactionState is the post-toggle state for the caller.
type ReactionState string

const (
	StateReacted   ReactionState = "reacted"
	StateUnreacted ReactionState = "unreacted"
)
