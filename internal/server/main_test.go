package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"vidtube/internal/config"
	"vidtube/internal/database"
	"vidtube/internal/middleware"
	"vidtube/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret-key-at-least-32-characters"

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
}

func setupServer(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := &config.Config{
		JWTSecret:       testSecret,
		Env:             "test",
		AllowedOrigins:  "http://localhost:5173",
		ToggleRateLimit: 100,
	}
	s, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)

	return &testEnv{app: s.NewApp(), db: db, cfg: cfg}
}

func (e *testEnv) token(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	tok, err := middleware.IssueToken(e.cfg.JWTSecret, userID, time.Hour)
	require.NoError(t, err)
	return tok
}

// do sends a request as userID (uuid.Nil for anonymous) and returns the status
// and raw body.
func (e *testEnv) do(t *testing.T, method, path string, userID uuid.UUID, body interface{}) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != uuid.Nil {
		req.Header.Set("Authorization", "Bearer "+e.token(t, userID))
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decode(t *testing.T, data []byte, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(data, dest), string(data))
}

func (e *testEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		FullName: username + " Example",
		Password: "hashed",
	}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *testEnv) createVideo(t *testing.T, owner uuid.UUID, title string, offset int) *models.Video {
	t.Helper()
	v := &models.Video{
		OwnerID:     owner,
		Title:       title,
		Description: "about " + title,
		VideoFile:   "https://cdn.example.com/v.mp4",
		Thumbnail:   "https://cdn.example.com/t.png",
		IsPublished: true,
		CreatedAt:   time.Date(2026, 1, 1, 12, offset, 0, 0, time.UTC),
	}
	require.NoError(t, e.db.Omit("Owner").Create(v).Error)
	return v
}

// pageBody mirrors service.FeedPage on the wire.
type pageBody struct {
	Items       []models.ContentItem `json:"items"`
	Page        int                  `json:"page"`
	PageSize    int                  `json:"page_size"`
	Total       int64                `json:"total"`
	HasNextPage bool                 `json:"has_next_page"`
}
