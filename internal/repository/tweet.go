package repository

import (
	"context"

	"vidtube/internal/models"
	"vidtube/internal/observability"

	"gorm.io/gorm"
)

// TweetRepository defines the interface for tweet data operations
type TweetRepository interface {
	Create(ctx context.Context, tweet *models.Tweet) error
}

type tweetRepository struct {
	db *gorm.DB
}

// NewTweetRepository creates a new tweet repository
func NewTweetRepository(db *gorm.DB) TweetRepository {
	return &tweetRepository{db: db}
}

func (r *tweetRepository) Create(ctx context.Context, tweet *models.Tweet) error {
	if err := r.db.WithContext(ctx).Omit("Owner").Create(tweet).Error; err != nil {
		observability.NewRepoLogger("tweets").LogError(ctx, err, "create")
		return err
	}
	observability.NewRepoLogger("tweets").LogCreate(ctx, map[string]interface{}{"id": tweet.ID.String()})
	return nil
}
