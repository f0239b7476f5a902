package database

import "vidtube/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Video{},
		&models.Comment{},
		&models.Tweet{},
		&models.Playlist{},
		&models.Reaction{},
		&models.Subscription{},
		&models.WatchHistoryEntry{},
	}
}
