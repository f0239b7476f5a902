package repository

import (
	"context"
	"time"

	"vidtube/internal/cache"
	"vidtube/internal/models"
	"vidtube/internal/observability"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*models.OwnerProfile, error)
	GetProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.OwnerProfile, error)
	AppendWatchHistory(ctx context.Context, userID, videoID uuid.UUID) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return err
	}
	observability.NewRepoLogger("users").LogCreate(ctx, map[string]interface{}{"id": user.ID.String()})
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetProfile(ctx context.Context, id uuid.UUID) (*models.OwnerProfile, error) {
	var profile models.OwnerProfile
	err := cache.Aside(ctx, cache.UserProfileKey(id), &profile, cache.ProfileTTL, func() error {
		user, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		profile = user.Profile()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetProfiles resolves many owner profiles with one query for the cache misses.
// Unknown ids are absent from the result.
func (r *userRepository) GetProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.OwnerProfile, error) {
	profiles := make(map[uuid.UUID]models.OwnerProfile, len(ids))
	misses := make([]uuid.UUID, 0, len(ids))
	for _, id := range uniqueIDs(ids) {
		var p models.OwnerProfile
		found, err := cache.GetJSON(ctx, cache.UserProfileKey(id), &p)
		if err != nil {
			observability.NewRepoLogger("users").LogError(ctx, err, "cache_read")
		}
		if found {
			profiles[id] = p
			continue
		}
		misses = append(misses, id)
	}
	if len(misses) == 0 {
		return profiles, nil
	}

	defer observability.TrackQuery("select", "users")()
	var users []models.User
	err := r.db.WithContext(ctx).
		Select("id", "username", "full_name", "avatar").
		Where("id IN ?", misses).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	for i := range users {
		p := users[i].Profile()
		profiles[p.ID] = p
		_ = cache.SetJSON(ctx, cache.UserProfileKey(p.ID), p, cache.ProfileTTL)
	}
	return profiles, nil
}

func (r *userRepository) AppendWatchHistory(ctx context.Context, userID, videoID uuid.UUID) error {
	entry := models.WatchHistoryEntry{UserID: userID, VideoID: videoID, WatchedAt: time.Now().UTC()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"watched_at"}),
	}).Create(&entry).Error
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
