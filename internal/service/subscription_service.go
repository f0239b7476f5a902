package service

import (
	"context"
	"errors"
	"time"

	"vidtube/internal/models"
	"vidtube/internal/notifications"
	"vidtube/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubscriptionService struct {
	users         repository.UserRepository
	subscriptions repository.SubscriptionRepository
	publisher     EventPublisher
}

// SubscriptionResult is the caller's state after a toggle.
type SubscriptionResult struct {
	Subscribed bool `json:"subscribed"`
}

func NewSubscriptionService(
	users repository.UserRepository,
	subscriptions repository.SubscriptionRepository,
	publisher EventPublisher,
) *SubscriptionService {
	return &SubscriptionService{
		users:         users,
		subscriptions: subscriptions,
		publisher:     publisher,
	}
}

// ToggleSubscription subscribes the caller to a channel, or unsubscribes if
// already subscribed.
func (s *SubscriptionService) ToggleSubscription(ctx context.Context, subscriberID, channelID uuid.UUID) (*SubscriptionResult, error) {
	if subscriberID == uuid.Nil {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if subscriberID == channelID {
		return nil, models.NewValidationError("You cannot subscribe to your own channel")
	}
	if _, err := s.users.GetByID(ctx, channelID); err != nil {
		return nil, storeError(err, "Channel", channelID)
	}

	for attempt := 1; attempt <= maxToggleAttempts; attempt++ {
		subscribed, err := s.subscriptions.Toggle(ctx, subscriberID, channelID)
		if errors.Is(err, repository.ErrToggleRaced) {
			continue
		}
		if err != nil {
			return nil, models.NewInternalError(err)
		}

		if s.publisher != nil {
			logPublishError(ctx, "subscription.toggled", s.publisher.PublishSubscription(ctx, notifications.SubscriptionEvent{
				SubscriberID: subscriberID,
				ChannelID:    channelID,
				Subscribed:   subscribed,
				At:           time.Now().UTC(),
			}))
		}
		return &SubscriptionResult{Subscribed: subscribed}, nil
	}
	return nil, models.NewConflictError("Subscription changed concurrently, please retry")
}

func (s *SubscriptionService) ListSubscribers(ctx context.Context, channelID uuid.UUID) ([]models.OwnerProfile, error) {
	if err := s.requireUser(ctx, channelID, "Channel"); err != nil {
		return nil, err
	}
	profiles, err := s.subscriptions.ListSubscribers(ctx, channelID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return profiles, nil
}

func (s *SubscriptionService) ListSubscribedChannels(ctx context.Context, subscriberID uuid.UUID) ([]models.OwnerProfile, error) {
	if err := s.requireUser(ctx, subscriberID, "User"); err != nil {
		return nil, err
	}
	profiles, err := s.subscriptions.ListChannels(ctx, subscriberID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return profiles, nil
}

func (s *SubscriptionService) requireUser(ctx context.Context, id uuid.UUID, resource string) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError(resource, id)
		}
		return models.NewInternalError(err)
	}
	return nil
}
