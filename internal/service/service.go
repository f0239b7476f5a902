// Package service implements the engagement and discovery core: reaction
// toggling, feed queries and ownership-gated mutations.
package service

import (
	"context"
	"errors"
	"log/slog"

	"vidtube/internal/models"
	"vidtube/internal/notifications"
	"vidtube/internal/observability"

	"gorm.io/gorm"
)

// EventPublisher delivers engagement events to other processes. Delivery is
// best effort; failures never fail the operation that produced the event.
type EventPublisher interface {
	PublishReaction(ctx context.Context, ev notifications.ReactionEvent) error
	PublishSubscription(ctx context.Context, ev notifications.SubscriptionEvent) error
}

// storeError keeps AppErrors as they are, maps a missing row to NotFound and
// wraps anything else as an internal failure.
func storeError(err error, resource string, id interface{}) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}

func logPublishError(ctx context.Context, event string, err error) {
	if err == nil {
		return
	}
	observability.GlobalLogger.WarnContext(ctx, "event publish failed",
		slog.String("event", event),
		slog.String("error", err.Error()),
	)
}
