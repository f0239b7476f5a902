package repository

import (
	"context"

	"vidtube/internal/models"
	"vidtube/internal/observability"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Omit("Owner", "Video").Create(comment).Error; err != nil {
		observability.NewRepoLogger("comments").LogError(ctx, err, "create")
		return err
	}
	observability.NewRepoLogger("comments").LogCreate(ctx, map[string]interface{}{
		"id":       comment.ID.String(),
		"video_id": comment.VideoID.String(),
	})
	return nil
}
