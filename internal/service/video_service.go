package service

import (
	"context"
	"strings"

	"vidtube/internal/models"
	"vidtube/internal/repository"

	"github.com/google/uuid"
)

type VideoService struct {
	videos repository.VideoRepository
	gate   *OwnershipGate
}

// PublishVideoInput carries metadata for media that is already uploaded.
type PublishVideoInput struct {
	OwnerID     uuid.UUID
	Title       string
	Description string
	VideoFile   string
	Thumbnail   string
	Duration    float64
}

type UpdateVideoInput struct {
	UserID      uuid.UUID
	VideoID     uuid.UUID
	Title       string
	Description string
	Thumbnail   string
}

func NewVideoService(videos repository.VideoRepository, gate *OwnershipGate) *VideoService {
	return &VideoService{videos: videos, gate: gate}
}

func (s *VideoService) PublishVideo(ctx context.Context, in PublishVideoInput) (*models.Video, error) {
	if in.OwnerID == uuid.Nil {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" || description == "" {
		return nil, models.NewValidationError("Title and description are required")
	}
	if strings.TrimSpace(in.VideoFile) == "" || strings.TrimSpace(in.Thumbnail) == "" {
		return nil, models.NewValidationError("Video file and thumbnail are required")
	}
	if in.Duration < 0 {
		return nil, models.NewValidationError("Duration must not be negative")
	}

	video := &models.Video{
		OwnerID:     in.OwnerID,
		Title:       title,
		Description: description,
		VideoFile:   strings.TrimSpace(in.VideoFile),
		Thumbnail:   strings.TrimSpace(in.Thumbnail),
		Duration:    in.Duration,
		IsPublished: true,
	}
	if err := s.videos.Create(ctx, video); err != nil {
		return nil, models.NewInternalError(err)
	}
	return video, nil
}

func (s *VideoService) UpdateVideo(ctx context.Context, in UpdateVideoInput) (*models.ContentItem, error) {
	patch := Patch{}
	if strings.TrimSpace(in.Title) != "" {
		patch["title"] = in.Title
	}
	if strings.TrimSpace(in.Description) != "" {
		patch["description"] = in.Description
	}
	if strings.TrimSpace(in.Thumbnail) != "" {
		patch["thumbnail"] = in.Thumbnail
	}
	return s.gate.Update(ctx, models.ContentVideo, in.VideoID, in.UserID, patch)
}

func (s *VideoService) DeleteVideo(ctx context.Context, userID, videoID uuid.UUID) (*models.ContentItem, error) {
	return s.gate.Delete(ctx, models.ContentVideo, videoID, userID)
}

func (s *VideoService) TogglePublishStatus(ctx context.Context, userID, videoID uuid.UUID) (*models.ContentItem, error) {
	return s.gate.TogglePublishStatus(ctx, videoID, userID)
}
