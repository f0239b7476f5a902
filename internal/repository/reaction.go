package repository

import (
	"context"
	"errors"

	"vidtube/internal/models"
	"vidtube/internal/observability"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReactionRepository defines the interface for reaction data operations
type ReactionRepository interface {
	// Toggle performs one insert-or-delete attempt in a transaction and returns
	// the resulting state with the post-write count. ErrToggleRaced means the
	// attempt changed nothing and may be retried.
	Toggle(ctx context.Context, userID uuid.UUID, kind models.TargetKind, targetID uuid.UUID) (models.ReactionState, int64, error)
	Count(ctx context.Context, kind models.TargetKind, targetID uuid.UUID) (int64, error)
	CountByTargets(ctx context.Context, kind models.TargetKind, targetIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	ReactedTargetIDs(ctx context.Context, userID uuid.UUID, kind models.TargetKind, targetIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	LikedVideos(ctx context.Context, userID uuid.UUID) ([]*models.Video, error)
}

type reactionRepository struct {
	db *gorm.DB
}

// NewReactionRepository creates a new reaction repository
func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

func (r *reactionRepository) Toggle(ctx context.Context, userID uuid.UUID, kind models.TargetKind, targetID uuid.UUID) (models.ReactionState, int64, error) {
	defer observability.TrackQuery("toggle", "reactions")()

	var (
		state models.ReactionState
		count int64
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reaction := &models.Reaction{UserID: userID, TargetKind: kind, TargetID: targetID}
		inserted, err := insertIfAbsent(tx, "reaction_insert", reaction)
		if err != nil {
			return err
		}

		if inserted {
			state = models.StateReacted
		} else {
			res := tx.Where("user_id = ? AND target_kind = ? AND target_id = ?", userID, kind, targetID).
				Delete(&models.Reaction{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrToggleRaced
			}
			state = models.StateUnreacted
		}

		return tx.Model(&models.Reaction{}).
			Where("target_kind = ? AND target_id = ?", kind, targetID).
			Count(&count).Error
	})
	if err != nil {
		if !errors.Is(err, ErrToggleRaced) {
			observability.NewRepoLogger("reactions").LogError(ctx, err, "toggle")
		}
		return "", 0, err
	}
	return state, count, nil
}

func (r *reactionRepository) Count(ctx context.Context, kind models.TargetKind, targetID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Reaction{}).
		Where("target_kind = ? AND target_id = ?", kind, targetID).
		Count(&count).Error
	return count, err
}

type targetCount struct {
	TargetID uuid.UUID
	Total    int64
}

func (r *reactionRepository) CountByTargets(ctx context.Context, kind models.TargetKind, targetIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(targetIDs))
	if len(targetIDs) == 0 {
		return counts, nil
	}
	defer observability.TrackQuery("count", "reactions")()

	var rows []targetCount
	err := r.db.WithContext(ctx).Model(&models.Reaction{}).
		Select("target_id, COUNT(*) AS total").
		Where("target_kind = ? AND target_id IN ?", kind, targetIDs).
		Group("target_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.TargetID] = row.Total
	}
	return counts, nil
}

func (r *reactionRepository) ReactedTargetIDs(ctx context.Context, userID uuid.UUID, kind models.TargetKind, targetIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	reacted := make(map[uuid.UUID]bool)
	if userID == uuid.Nil || len(targetIDs) == 0 {
		return reacted, nil
	}

	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.Reaction{}).
		Where("user_id = ? AND target_kind = ? AND target_id IN ?", userID, kind, targetIDs).
		Pluck("target_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		reacted[id] = true
	}
	return reacted, nil
}

// LikedVideos returns the videos userID reacted to, most recent reaction
// first. Unpublished videos are only included for their owner.
func (r *reactionRepository) LikedVideos(ctx context.Context, userID uuid.UUID) ([]*models.Video, error) {
	var videos []*models.Video
	err := r.db.WithContext(ctx).Model(&models.Video{}).
		Select("videos.*").
		Joins("JOIN reactions ON reactions.target_id = videos.id AND reactions.target_kind = ?", models.TargetVideo).
		Where("reactions.user_id = ?", userID).
		Where("videos.is_published = ? OR videos.owner_id = ?", true, userID).
		Order("reactions.created_at DESC").
		Find(&videos).Error
	return videos, err
}
