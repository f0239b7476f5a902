package repository

import (
	"context"

	"vidtube/internal/models"
	"vidtube/internal/observability"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlaylistRepository defines the interface for playlist data operations
type PlaylistRepository interface {
	Create(ctx context.Context, playlist *models.Playlist) error
	GetWithVideos(ctx context.Context, id uuid.UUID) (*models.Playlist, error)
	AddVideo(ctx context.Context, playlistID, videoID uuid.UUID) error
	RemoveVideo(ctx context.Context, playlistID, videoID uuid.UUID) error
}

type playlistRepository struct {
	db *gorm.DB
}

// NewPlaylistRepository creates a new playlist repository
func NewPlaylistRepository(db *gorm.DB) PlaylistRepository {
	return &playlistRepository{db: db}
}

func (r *playlistRepository) Create(ctx context.Context, playlist *models.Playlist) error {
	if err := r.db.WithContext(ctx).Omit("Owner", "Videos").Create(playlist).Error; err != nil {
		observability.NewRepoLogger("playlists").LogError(ctx, err, "create")
		return err
	}
	observability.NewRepoLogger("playlists").LogCreate(ctx, map[string]interface{}{"id": playlist.ID.String()})
	return nil
}

// GetWithVideos loads the playlist with its published videos.
func (r *playlistRepository) GetWithVideos(ctx context.Context, id uuid.UUID) (*models.Playlist, error) {
	var playlist models.Playlist
	err := r.db.WithContext(ctx).
		Preload("Videos", "is_published = ?", true).
		First(&playlist, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &playlist, nil
}

// AddVideo links a video to a playlist. A duplicate link surfaces as a unique violation.
func (r *playlistRepository) AddVideo(ctx context.Context, playlistID, videoID uuid.UUID) error {
	return r.db.WithContext(ctx).Table("playlist_videos").Create(map[string]interface{}{
		"playlist_id": playlistID,
		"video_id":    videoID,
	}).Error
}

func (r *playlistRepository) RemoveVideo(ctx context.Context, playlistID, videoID uuid.UUID) error {
	res := r.db.WithContext(ctx).Exec(
		"DELETE FROM playlist_videos WHERE playlist_id = ? AND video_id = ?", playlistID, videoID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
