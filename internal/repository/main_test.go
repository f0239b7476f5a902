package repository

import (
	"testing"
	"time"

	"vidtube/internal/database"
	"vidtube/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupTestDB returns a migrated in-memory SQLite database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// setupMockDB returns a postgres-dialect gorm DB backed by sqlmock.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

var baseTime = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		FullName: username + " Example",
		Avatar:   "https://cdn.example.com/" + username + ".png",
		Password: "hashed",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// createVideo inserts a published video whose created_at is offset minutes
// after baseTime so insertion order is deterministic.
func createVideo(t *testing.T, db *gorm.DB, owner uuid.UUID, title string, offset int) *models.Video {
	t.Helper()
	v := &models.Video{
		OwnerID:     owner,
		Title:       title,
		Description: "about " + title,
		VideoFile:   "https://cdn.example.com/v.mp4",
		Thumbnail:   "https://cdn.example.com/t.png",
		Duration:    60,
		IsPublished: true,
		CreatedAt:   baseTime.Add(time.Duration(offset) * time.Minute),
	}
	require.NoError(t, db.Omit("Owner").Create(v).Error)
	return v
}

func createComment(t *testing.T, db *gorm.DB, owner, video uuid.UUID, content string, offset int) *models.Comment {
	t.Helper()
	c := &models.Comment{
		OwnerID:   owner,
		VideoID:   video,
		Content:   content,
		CreatedAt: baseTime.Add(time.Duration(offset) * time.Minute),
	}
	require.NoError(t, db.Omit("Owner", "Video").Create(c).Error)
	return c
}
