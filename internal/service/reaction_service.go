package service

import (
	"context"
	"errors"
	"time"

	"vidtube/internal/models"
	"vidtube/internal/notifications"
	"vidtube/internal/observability"
	"vidtube/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// maxToggleAttempts bounds retries after a concurrent writer removed the row
// between our insert and delete.
const maxToggleAttempts = 3

// ToggleResult is the caller's state after a toggle and the post-write count.
type ToggleResult struct {
	State models.ReactionState `json:"state"`
	Count int64                `json:"count"`
}

// Reacted reports whether the caller now holds a reaction on the target.
func (r *ToggleResult) Reacted() bool {
	return r.State == models.StateReacted
}

type ReactionService struct {
	contents  repository.ContentRepository
	reactions repository.ReactionRepository
	publisher EventPublisher
}

func NewReactionService(
	contents repository.ContentRepository,
	reactions repository.ReactionRepository,
	publisher EventPublisher,
) *ReactionService {
	return &ReactionService{
		contents:  contents,
		reactions: reactions,
		publisher: publisher,
	}
}

// ToggleReaction creates the caller's reaction on the target if absent and
// removes it otherwise. Video, comment and tweet targets share this path.
func (s *ReactionService) ToggleReaction(ctx context.Context, userID uuid.UUID, kind models.TargetKind, targetID uuid.UUID) (*ToggleResult, error) {
	if userID == uuid.Nil {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if !kind.Valid() {
		return nil, models.NewValidationError("Invalid reaction target: " + string(kind))
	}

	span, ctx := observability.NewSpan(ctx, "reaction.toggle",
		attribute.String("reaction.kind", string(kind)),
		attribute.String("reaction.target_id", targetID.String()),
	)
	defer span.End()

	contentKind := kind.ContentKind()
	exists, err := s.contents.Exists(ctx, contentKind, targetID)
	if err != nil {
		span.SetError(err)
		return nil, models.NewInternalError(err)
	}
	if !exists {
		return nil, models.NewNotFoundError(contentKind.Label(), targetID)
	}

	for attempt := 1; attempt <= maxToggleAttempts; attempt++ {
		state, count, err := s.reactions.Toggle(ctx, userID, kind, targetID)
		if errors.Is(err, repository.ErrToggleRaced) {
			observability.ReactionToggleRetries.WithLabelValues(string(kind)).Inc()
			continue
		}
		if err != nil {
			span.SetError(err)
			return nil, storeError(err, contentKind.Label(), targetID)
		}

		observability.ReactionToggles.WithLabelValues(string(kind), string(state)).Inc()
		span.AddAttributes(attribute.String("reaction.state", string(state)), attribute.Int64("reaction.count", count))

		if s.publisher != nil {
			logPublishError(ctx, "reaction.toggled", s.publisher.PublishReaction(ctx, notifications.ReactionEvent{
				UserID:     userID,
				TargetKind: kind,
				TargetID:   targetID,
				State:      state,
				Count:      count,
				At:         time.Now().UTC(),
			}))
		}
		return &ToggleResult{State: state, Count: count}, nil
	}

	err = models.NewConflictError("Reaction changed concurrently, please retry")
	span.SetError(err)
	return nil, err
}

// LikedVideos lists the videos the user has reacted to.
func (s *ReactionService) LikedVideos(ctx context.Context, userID uuid.UUID) ([]*models.Video, error) {
	if userID == uuid.Nil {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	videos, err := s.reactions.LikedVideos(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return videos, nil
}
