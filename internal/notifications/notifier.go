// Package notifications publishes engagement events to Redis channels.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"vidtube/internal/middleware"
	"vidtube/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ReactionEvent is published after a reaction toggle commits.
type ReactionEvent struct {
	UserID     uuid.UUID            `json:"user_id"`
	TargetKind models.TargetKind    `json:"target_kind"`
	TargetID   uuid.UUID            `json:"target_id"`
	State      models.ReactionState `json:"state"`
	Count      int64                `json:"count"`
	At         time.Time            `json:"at"`
}

// SubscriptionEvent is published after a channel subscription toggle commits.
type SubscriptionEvent struct {
	SubscriberID uuid.UUID `json:"subscriber_id"`
	ChannelID    uuid.UUID `json:"channel_id"`
	Subscribed   bool      `json:"subscribed"`
	At           time.Time `json:"at"`
}

// ReactionChannel is the pub/sub channel for reactions on one target.
func ReactionChannel(kind models.TargetKind, targetID uuid.UUID) string {
	return fmt.Sprintf("reactions:%s:%s", kind, targetID)
}

// SubscriptionChannel is the pub/sub channel for one creator's subscribers.
func SubscriptionChannel(channelID uuid.UUID) string {
	return fmt.Sprintf("subscriptions:channel:%s", channelID)
}

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishReaction sends a reaction event to the target's channel.
func (n *Notifier) PublishReaction(ctx context.Context, ev ReactionEvent) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return n.rdb.Publish(ctx, ReactionChannel(ev.TargetKind, ev.TargetID), payload).Err()
}

// PublishSubscription sends a subscription event to the creator's channel.
func (n *Notifier) PublishSubscription(ctx context.Context, ev SubscriptionEvent) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return n.rdb.Publish(ctx, SubscriptionChannel(ev.ChannelID), payload).Err()
}

// StartPatternSubscriber subscribes to reaction and subscription channels and
// calls onMessage for each incoming message until ctx is done.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "reactions:*", "subscriptions:*")
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return err
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in pattern subscriber",
								slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
