package repository

import (
	"context"

	"vidtube/internal/models"
	"vidtube/internal/observability"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VideoRepository defines the interface for video-specific data operations
type VideoRepository interface {
	Create(ctx context.Context, video *models.Video) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
}

type videoRepository struct {
	db *gorm.DB
}

// NewVideoRepository creates a new video repository
func NewVideoRepository(db *gorm.DB) VideoRepository {
	return &videoRepository{db: db}
}

func (r *videoRepository) Create(ctx context.Context, video *models.Video) error {
	if err := r.db.WithContext(ctx).Omit("Owner").Create(video).Error; err != nil {
		observability.NewRepoLogger("videos").LogError(ctx, err, "create")
		return err
	}
	observability.NewRepoLogger("videos").LogCreate(ctx, map[string]interface{}{
		"id":       video.ID.String(),
		"owner_id": video.OwnerID.String(),
	})
	return nil
}

func (r *videoRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&models.Video{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
