package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"vidtube/internal/database"
	"vidtube/internal/models"
	"vidtube/internal/notifications"
	"vidtube/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// contentRepoStub is a stub for repository.ContentRepository.
type contentRepoStub struct {
	findByIDFn        func(context.Context, models.ContentKind, uuid.UUID) (*models.ContentItem, error)
	listFn            func(context.Context, repository.ContentQuery) ([]*models.ContentItem, error)
	countFn           func(context.Context, repository.ContentQuery) (int64, error)
	existsFn          func(context.Context, models.ContentKind, uuid.UUID) (bool, error)
	updateFn          func(context.Context, models.ContentKind, uuid.UUID, map[string]interface{}) (*models.ContentItem, error)
	deleteFn          func(context.Context, models.ContentKind, uuid.UUID) (*models.ContentItem, error)
	togglePublishedFn func(context.Context, uuid.UUID) (*models.ContentItem, error)
}

func (s *contentRepoStub) FindByID(ctx context.Context, kind models.ContentKind, id uuid.UUID) (*models.ContentItem, error) {
	return s.findByIDFn(ctx, kind, id)
}
func (s *contentRepoStub) List(ctx context.Context, q repository.ContentQuery) ([]*models.ContentItem, error) {
	return s.listFn(ctx, q)
}
func (s *contentRepoStub) Count(ctx context.Context, q repository.ContentQuery) (int64, error) {
	return s.countFn(ctx, q)
}
func (s *contentRepoStub) Exists(ctx context.Context, kind models.ContentKind, id uuid.UUID) (bool, error) {
	return s.existsFn(ctx, kind, id)
}
func (s *contentRepoStub) Update(ctx context.Context, kind models.ContentKind, id uuid.UUID, patch map[string]interface{}) (*models.ContentItem, error) {
	return s.updateFn(ctx, kind, id, patch)
}
func (s *contentRepoStub) Delete(ctx context.Context, kind models.ContentKind, id uuid.UUID) (*models.ContentItem, error) {
	return s.deleteFn(ctx, kind, id)
}
func (s *contentRepoStub) TogglePublished(ctx context.Context, id uuid.UUID) (*models.ContentItem, error) {
	return s.togglePublishedFn(ctx, id)
}

func noopContentRepo() *contentRepoStub {
	return &contentRepoStub{
		findByIDFn: func(_ context.Context, kind models.ContentKind, id uuid.UUID) (*models.ContentItem, error) {
			return &models.ContentItem{Kind: kind, ID: id}, nil
		},
		listFn:  func(_ context.Context, _ repository.ContentQuery) ([]*models.ContentItem, error) { return nil, nil },
		countFn: func(_ context.Context, _ repository.ContentQuery) (int64, error) { return 0, nil },
		existsFn: func(_ context.Context, _ models.ContentKind, _ uuid.UUID) (bool, error) {
			return true, nil
		},
		updateFn: func(_ context.Context, kind models.ContentKind, id uuid.UUID, _ map[string]interface{}) (*models.ContentItem, error) {
			return &models.ContentItem{Kind: kind, ID: id}, nil
		},
		deleteFn: func(_ context.Context, kind models.ContentKind, id uuid.UUID) (*models.ContentItem, error) {
			return &models.ContentItem{Kind: kind, ID: id}, nil
		},
		togglePublishedFn: func(_ context.Context, id uuid.UUID) (*models.ContentItem, error) {
			return &models.ContentItem{Kind: models.ContentVideo, ID: id}, nil
		},
	}
}

// reactionRepoStub is a stub for repository.ReactionRepository.
type reactionRepoStub struct {
	toggleFn           func(context.Context, uuid.UUID, models.TargetKind, uuid.UUID) (models.ReactionState, int64, error)
	countFn            func(context.Context, models.TargetKind, uuid.UUID) (int64, error)
	countByTargetsFn   func(context.Context, models.TargetKind, []uuid.UUID) (map[uuid.UUID]int64, error)
	reactedTargetIDsFn func(context.Context, uuid.UUID, models.TargetKind, []uuid.UUID) (map[uuid.UUID]bool, error)
	likedVideosFn      func(context.Context, uuid.UUID) ([]*models.Video, error)
}

func (s *reactionRepoStub) Toggle(ctx context.Context, userID uuid.UUID, kind models.TargetKind, targetID uuid.UUID) (models.ReactionState, int64, error) {
	return s.toggleFn(ctx, userID, kind, targetID)
}
func (s *reactionRepoStub) Count(ctx context.Context, kind models.TargetKind, targetID uuid.UUID) (int64, error) {
	return s.countFn(ctx, kind, targetID)
}
func (s *reactionRepoStub) CountByTargets(ctx context.Context, kind models.TargetKind, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	return s.countByTargetsFn(ctx, kind, ids)
}
func (s *reactionRepoStub) ReactedTargetIDs(ctx context.Context, userID uuid.UUID, kind models.TargetKind, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	return s.reactedTargetIDsFn(ctx, userID, kind, ids)
}
func (s *reactionRepoStub) LikedVideos(ctx context.Context, userID uuid.UUID) ([]*models.Video, error) {
	return s.likedVideosFn(ctx, userID)
}

func noopReactionRepo() *reactionRepoStub {
	return &reactionRepoStub{
		toggleFn: func(_ context.Context, _ uuid.UUID, _ models.TargetKind, _ uuid.UUID) (models.ReactionState, int64, error) {
			return models.StateReacted, 1, nil
		},
		countFn: func(_ context.Context, _ models.TargetKind, _ uuid.UUID) (int64, error) { return 0, nil },
		countByTargetsFn: func(_ context.Context, _ models.TargetKind, _ []uuid.UUID) (map[uuid.UUID]int64, error) {
			return map[uuid.UUID]int64{}, nil
		},
		reactedTargetIDsFn: func(_ context.Context, _ uuid.UUID, _ models.TargetKind, _ []uuid.UUID) (map[uuid.UUID]bool, error) {
			return map[uuid.UUID]bool{}, nil
		},
		likedVideosFn: func(_ context.Context, _ uuid.UUID) ([]*models.Video, error) { return nil, nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn             func(context.Context, *models.User) error
	getByIDFn            func(context.Context, uuid.UUID) (*models.User, error)
	getProfileFn         func(context.Context, uuid.UUID) (*models.OwnerProfile, error)
	getProfilesFn        func(context.Context, []uuid.UUID) (map[uuid.UUID]models.OwnerProfile, error)
	appendWatchHistoryFn func(context.Context, uuid.UUID, uuid.UUID) error
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetProfile(ctx context.Context, id uuid.UUID) (*models.OwnerProfile, error) {
	return s.getProfileFn(ctx, id)
}
func (s *userRepoStub) GetProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.OwnerProfile, error) {
	return s.getProfilesFn(ctx, ids)
}
func (s *userRepoStub) AppendWatchHistory(ctx context.Context, userID, videoID uuid.UUID) error {
	return s.appendWatchHistoryFn(ctx, userID, videoID)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn: func(_ context.Context, _ *models.User) error { return nil },
		getByIDFn: func(_ context.Context, id uuid.UUID) (*models.User, error) {
			return &models.User{ID: id}, nil
		},
		getProfileFn: func(_ context.Context, id uuid.UUID) (*models.OwnerProfile, error) {
			return &models.OwnerProfile{ID: id}, nil
		},
		getProfilesFn: func(_ context.Context, _ []uuid.UUID) (map[uuid.UUID]models.OwnerProfile, error) {
			return map[uuid.UUID]models.OwnerProfile{}, nil
		},
		appendWatchHistoryFn: func(_ context.Context, _, _ uuid.UUID) error { return nil },
	}
}

// subscriptionRepoStub is a stub for repository.SubscriptionRepository.
type subscriptionRepoStub struct {
	toggleFn               func(context.Context, uuid.UUID, uuid.UUID) (bool, error)
	countByChannelsFn      func(context.Context, []uuid.UUID) (map[uuid.UUID]int64, error)
	subscribedChannelIDsFn func(context.Context, uuid.UUID, []uuid.UUID) (map[uuid.UUID]bool, error)
	listSubscribersFn      func(context.Context, uuid.UUID) ([]models.OwnerProfile, error)
	listChannelsFn         func(context.Context, uuid.UUID) ([]models.OwnerProfile, error)
}

func (s *subscriptionRepoStub) Toggle(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error) {
	return s.toggleFn(ctx, subscriberID, channelID)
}
func (s *subscriptionRepoStub) CountByChannels(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	return s.countByChannelsFn(ctx, ids)
}
func (s *subscriptionRepoStub) SubscribedChannelIDs(ctx context.Context, subscriberID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	return s.subscribedChannelIDsFn(ctx, subscriberID, ids)
}
func (s *subscriptionRepoStub) ListSubscribers(ctx context.Context, channelID uuid.UUID) ([]models.OwnerProfile, error) {
	return s.listSubscribersFn(ctx, channelID)
}
func (s *subscriptionRepoStub) ListChannels(ctx context.Context, subscriberID uuid.UUID) ([]models.OwnerProfile, error) {
	return s.listChannelsFn(ctx, subscriberID)
}

func noopSubscriptionRepo() *subscriptionRepoStub {
	return &subscriptionRepoStub{
		toggleFn: func(_ context.Context, _, _ uuid.UUID) (bool, error) { return true, nil },
		countByChannelsFn: func(_ context.Context, _ []uuid.UUID) (map[uuid.UUID]int64, error) {
			return map[uuid.UUID]int64{}, nil
		},
		subscribedChannelIDsFn: func(_ context.Context, _ uuid.UUID, _ []uuid.UUID) (map[uuid.UUID]bool, error) {
			return map[uuid.UUID]bool{}, nil
		},
		listSubscribersFn: func(_ context.Context, _ uuid.UUID) ([]models.OwnerProfile, error) { return nil, nil },
		listChannelsFn:    func(_ context.Context, _ uuid.UUID) ([]models.OwnerProfile, error) { return nil, nil },
	}
}

// videoRepoStub is a stub for repository.VideoRepository.
type videoRepoStub struct {
	createFn         func(context.Context, *models.Video) error
	incrementViewsFn func(context.Context, uuid.UUID) error
}

func (s *videoRepoStub) Create(ctx context.Context, video *models.Video) error {
	return s.createFn(ctx, video)
}
func (s *videoRepoStub) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return s.incrementViewsFn(ctx, id)
}

func noopVideoRepo() *videoRepoStub {
	return &videoRepoStub{
		createFn:         func(_ context.Context, _ *models.Video) error { return nil },
		incrementViewsFn: func(_ context.Context, _ uuid.UUID) error { return nil },
	}
}

// publisherStub records published events.
type publisherStub struct {
	mu            sync.Mutex
	err           error
	reactions     []notifications.ReactionEvent
	subscriptions []notifications.SubscriptionEvent
}

func (p *publisherStub) PublishReaction(_ context.Context, ev notifications.ReactionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reactions = append(p.reactions, ev)
	return p.err
}

func (p *publisherStub) PublishSubscription(_ context.Context, ev notifications.SubscriptionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscriptions = append(p.subscriptions, ev)
	return p.err
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// setupTestDB returns a migrated in-memory SQLite database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// stores bundles the real repositories over one database.
type stores struct {
	db            *gorm.DB
	contents      repository.ContentRepository
	reactions     repository.ReactionRepository
	users         repository.UserRepository
	subscriptions repository.SubscriptionRepository
	videos        repository.VideoRepository
	comments      repository.CommentRepository
	tweets        repository.TweetRepository
	playlists     repository.PlaylistRepository
}

func newStores(t *testing.T) *stores {
	t.Helper()
	db := setupTestDB(t)
	return &stores{
		db:            db,
		contents:      repository.NewContentRepository(db),
		reactions:     repository.NewReactionRepository(db),
		users:         repository.NewUserRepository(db),
		subscriptions: repository.NewSubscriptionRepository(db),
		videos:        repository.NewVideoRepository(db),
		comments:      repository.NewCommentRepository(db),
		tweets:        repository.NewTweetRepository(db),
		playlists:     repository.NewPlaylistRepository(db),
	}
}

var baseTime = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		FullName: username + " Example",
		Password: "hashed",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// createVideo inserts a published video created offset minutes after baseTime.
func createVideo(t *testing.T, db *gorm.DB, owner uuid.UUID, title string, offset int) *models.Video {
	t.Helper()
	v := &models.Video{
		OwnerID:     owner,
		Title:       title,
		Description: "about " + title,
		VideoFile:   "https://cdn.example.com/v.mp4",
		Thumbnail:   "https://cdn.example.com/t.png",
		Duration:    60,
		IsPublished: true,
		CreatedAt:   baseTime.Add(time.Duration(offset) * time.Minute),
	}
	require.NoError(t, db.Omit("Owner").Create(v).Error)
	return v
}
