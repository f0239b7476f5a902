package service

import (
	"context"
	"strings"

	"vidtube/internal/models"
	"vidtube/internal/repository"

	"github.com/google/uuid"
)

type PlaylistService struct {
	contents  repository.ContentRepository
	playlists repository.PlaylistRepository
	gate      *OwnershipGate
}

type CreatePlaylistInput struct {
	OwnerID     uuid.UUID
	Name        string
	Description string
}

func NewPlaylistService(
	contents repository.ContentRepository,
	playlists repository.PlaylistRepository,
	gate *OwnershipGate,
) *PlaylistService {
	return &PlaylistService{
		contents:  contents,
		playlists: playlists,
		gate:      gate,
	}
}

// CreatePlaylist stores a new empty playlist. A blank name falls back to
// models.DefaultPlaylistName.
func (s *PlaylistService) CreatePlaylist(ctx context.Context, in CreatePlaylistInput) (*models.Playlist, error) {
	if in.OwnerID == uuid.Nil {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	playlist := &models.Playlist{
		OwnerID:     in.OwnerID,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
	}
	if err := s.playlists.Create(ctx, playlist); err != nil {
		return nil, models.NewInternalError(err)
	}
	return playlist, nil
}

func (s *PlaylistService) GetPlaylist(ctx context.Context, id uuid.UUID) (*models.Playlist, error) {
	playlist, err := s.playlists.GetWithVideos(ctx, id)
	if err != nil {
		return nil, storeError(err, "Playlist", id)
	}
	return playlist, nil
}

func (s *PlaylistService) AddVideo(ctx context.Context, userID, playlistID, videoID uuid.UUID) error {
	if _, err := s.gate.Authorize(ctx, models.ContentPlaylist, playlistID, userID); err != nil {
		return err
	}
	exists, err := s.contents.Exists(ctx, models.ContentVideo, videoID)
	if err != nil {
		return models.NewInternalError(err)
	}
	if !exists {
		return models.NewNotFoundError("Video", videoID)
	}

	if err := s.playlists.AddVideo(ctx, playlistID, videoID); err != nil {
		if repository.IsUniqueViolation(err) {
			return models.NewConflictError("Video is already in the playlist")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (s *PlaylistService) RemoveVideo(ctx context.Context, userID, playlistID, videoID uuid.UUID) error {
	if _, err := s.gate.Authorize(ctx, models.ContentPlaylist, playlistID, userID); err != nil {
		return err
	}
	if err := s.playlists.RemoveVideo(ctx, playlistID, videoID); err != nil {
		return storeError(err, "Video", videoID)
	}
	return nil
}

func (s *PlaylistService) UpdatePlaylist(ctx context.Context, userID, playlistID uuid.UUID, name, description string) (*models.ContentItem, error) {
	patch := Patch{}
	if strings.TrimSpace(name) != "" {
		patch["name"] = name
	}
	if strings.TrimSpace(description) != "" {
		patch["description"] = description
	}
	if len(patch) == 0 {
		return nil, models.NewValidationError("Name or description is required")
	}
	return s.gate.Update(ctx, models.ContentPlaylist, playlistID, userID, patch)
}

func (s *PlaylistService) DeletePlaylist(ctx context.Context, userID, playlistID uuid.UUID) (*models.ContentItem, error) {
	return s.gate.Delete(ctx, models.ContentPlaylist, playlistID, userID)
}
