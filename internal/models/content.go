package models

import (
	"time"

	"github.com/google/uuid"
)

// ContentKind identifies a content collection.
type ContentKind string

const (
	ContentVideo    ContentKind = "video"
	ContentComment  ContentKind = "comment"
	ContentTweet    ContentKind = "tweet"
	ContentPlaylist ContentKind = "playlist"
)

func (k ContentKind) Valid() bool {
	switch k {
	case ContentVideo, ContentComment, ContentTweet, ContentPlaylist:
		return true
	}
	return false
}

// TargetKind is the reaction target kind for k, if any.
func (k ContentKind) TargetKind() (TargetKind, bool) {
	switch k {
	case ContentVideo:
		return TargetVideo, true
	case ContentComment:
		return TargetComment, true
	case ContentTweet:
		return TargetTweet, true
	}
	return "", false
}

// Label is the human readable resource name used in error messages.
func (k ContentKind) Label() string {
	switch k {
	case ContentVideo:
		return "Video"
	case ContentComment:
		return "Comment"
	case ContentTweet:
		return "Tweet"
	case ContentPlaylist:
		return "Playlist"
	}
	return "Content"
}

// ContentItem is the kind-agnostic row shared by feeds and ownership checks.
// Title/Body hold the kind's text fields (video title/description, comment and
// tweet content in Body, playlist name/description). ParentID is the video a
// comment belongs to.
type ContentItem struct {
	Kind        ContentKind `gorm:"-" json:"kind"`
	ID          uuid.UUID   `json:"id"`
	OwnerID     uuid.UUID   `json:"owner_id"`
	Title       string      `json:"title,omitempty"`
	Body        string      `json:"body,omitempty"`
	ParentID    *uuid.UUID  `json:"parent_id,omitempty"`
	Thumbnail   string      `json:"thumbnail,omitempty"`
	VideoFile   string      `json:"video_file,omitempty"`
	Duration    float64     `json:"duration,omitempty"`
	Views       int64       `json:"views,omitempty"`
	IsPublished *bool       `json:"is_published,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	// Derived, viewer-relative fields. Never persisted.
	Owner              *OwnerProfile `gorm:"-" json:"owner,omitempty"`
	ReactionCount      int64         `gorm:"-" json:"reaction_count"`
	OwnerSubscribers   int64         `gorm:"-" json:"owner_subscribers,omitempty"`
	ViewerHasReacted   bool          `gorm:"-" json:"viewer_has_reacted"`
	ViewerIsSubscribed bool          `gorm:"-" json:"viewer_is_subscribed,omitempty"`
}

// Published reports the video publish flag; non-video items are always published.
func (c *ContentItem) Published() bool {
	return c.IsPublished == nil || *c.IsPublished
}
