package repository

import (
	"context"
	"errors"

	"vidtube/internal/models"
	"vidtube/internal/observability"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubscriptionRepository defines the interface for channel subscription data operations
type SubscriptionRepository interface {
	// Toggle subscribes or unsubscribes in one transaction and reports the new state.
	Toggle(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error)
	CountByChannels(ctx context.Context, channelIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	SubscribedChannelIDs(ctx context.Context, subscriberID uuid.UUID, channelIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	ListSubscribers(ctx context.Context, channelID uuid.UUID) ([]models.OwnerProfile, error)
	ListChannels(ctx context.Context, subscriberID uuid.UUID) ([]models.OwnerProfile, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Toggle(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error) {
	defer observability.TrackQuery("toggle", "subscriptions")()

	var subscribed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub := &models.Subscription{SubscriberID: subscriberID, ChannelID: channelID}
		inserted, err := insertIfAbsent(tx, "subscription_insert", sub)
		if err != nil {
			return err
		}
		if inserted {
			subscribed = true
			return nil
		}

		del := tx.Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).
			Delete(&models.Subscription{})
		if del.Error != nil {
			return del.Error
		}
		if del.RowsAffected == 0 {
			return ErrToggleRaced
		}
		subscribed = false
		return nil
	})
	if err != nil && !errors.Is(err, ErrToggleRaced) {
		observability.NewRepoLogger("subscriptions").LogError(ctx, err, "toggle")
	}
	return subscribed, err
}

type channelCount struct {
	ChannelID uuid.UUID
	Total     int64
}

func (r *subscriptionRepository) CountByChannels(ctx context.Context, channelIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(channelIDs))
	if len(channelIDs) == 0 {
		return counts, nil
	}

	var rows []channelCount
	err := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Select("channel_id, COUNT(*) AS total").
		Where("channel_id IN ?", uniqueIDs(channelIDs)).
		Group("channel_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ChannelID] = row.Total
	}
	return counts, nil
}

func (r *subscriptionRepository) SubscribedChannelIDs(ctx context.Context, subscriberID uuid.UUID, channelIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	subscribed := make(map[uuid.UUID]bool)
	if subscriberID == uuid.Nil || len(channelIDs) == 0 {
		return subscribed, nil
	}

	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("subscriber_id = ? AND channel_id IN ?", subscriberID, uniqueIDs(channelIDs)).
		Pluck("channel_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		subscribed[id] = true
	}
	return subscribed, nil
}

func (r *subscriptionRepository) ListSubscribers(ctx context.Context, channelID uuid.UUID) ([]models.OwnerProfile, error) {
	return r.listProfiles(ctx, "subscriptions.subscriber_id", "subscriptions.channel_id = ?", channelID)
}

func (r *subscriptionRepository) ListChannels(ctx context.Context, subscriberID uuid.UUID) ([]models.OwnerProfile, error) {
	return r.listProfiles(ctx, "subscriptions.channel_id", "subscriptions.subscriber_id = ?", subscriberID)
}

func (r *subscriptionRepository) listProfiles(ctx context.Context, joinCol, where string, id uuid.UUID) ([]models.OwnerProfile, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("users.id", "users.username", "users.full_name", "users.avatar").
		Joins("JOIN subscriptions ON users.id = "+joinCol).
		Where(where, id).
		Order("subscriptions.created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	profiles := make([]models.OwnerProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].Profile())
	}
	return profiles, nil
}
