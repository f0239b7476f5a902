package service

import (
	"context"
	"strings"

	"vidtube/internal/models"
	"vidtube/internal/repository"

	"github.com/google/uuid"
)

const maxTweetLen = 280

type TweetService struct {
	tweets repository.TweetRepository
	gate   *OwnershipGate
}

func NewTweetService(tweets repository.TweetRepository, gate *OwnershipGate) *TweetService {
	return &TweetService{tweets: tweets, gate: gate}
}

func validateTweetContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", models.NewValidationError("Tweet content is required")
	}
	if len([]rune(content)) > maxTweetLen {
		return "", models.NewValidationError("Tweet too long (max 280 characters)")
	}
	return content, nil
}

func (s *TweetService) CreateTweet(ctx context.Context, userID uuid.UUID, content string) (*models.Tweet, error) {
	if userID == uuid.Nil {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	content, err := validateTweetContent(content)
	if err != nil {
		return nil, err
	}
	tweet := &models.Tweet{OwnerID: userID, Content: content}
	if err := s.tweets.Create(ctx, tweet); err != nil {
		return nil, models.NewInternalError(err)
	}
	return tweet, nil
}

func (s *TweetService) UpdateTweet(ctx context.Context, userID, tweetID uuid.UUID, content string) (*models.ContentItem, error) {
	content, err := validateTweetContent(content)
	if err != nil {
		return nil, err
	}
	return s.gate.Update(ctx, models.ContentTweet, tweetID, userID, Patch{"content": content})
}

func (s *TweetService) DeleteTweet(ctx context.Context, userID, tweetID uuid.UUID) (*models.ContentItem, error) {
	return s.gate.Delete(ctx, models.ContentTweet, tweetID, userID)
}
