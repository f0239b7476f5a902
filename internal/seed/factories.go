// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"time"

	"vidtube/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the plaintext password of every seeded user.
const DemoPassword = "password123"

// SeedOptions tune how entities are generated.
type SeedOptions struct {
	// RandSeed makes generated data reproducible; zero uses the clock.
	RandSeed int64
	// SkipBcrypt stores the demo password unhashed for fast local runs.
	SkipBcrypt bool
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	// MaxDays spreads created_at over the last MaxDays days (default 90).
	MaxDays int
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db    *gorm.DB
	opts  SeedOptions
	faker *gofakeit.Faker
	now   time.Time
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts SeedOptions) *Factory {
	if opts.RandSeed == 0 {
		opts.RandSeed = time.Now().UnixNano()
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	return &Factory{
		db:    db,
		opts:  opts,
		faker: gofakeit.New(opts.RandSeed),
		now:   time.Now().UTC(),
	}
}

// pastTime returns a timestamp within the configured window.
func (f *Factory) pastTime() time.Time {
	back := time.Duration(f.faker.Number(0, f.opts.MaxDays*24*60)) * time.Minute
	return f.now.Add(-back)
}

// CreateUser constructs and persists a sample user.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: fmt.Sprintf("%s%d", f.faker.Username(), f.faker.Number(100, 999)),
		Email:    fmt.Sprintf("%d.%s", f.faker.Number(1000, 9999), f.faker.Email()),
		FullName: f.faker.Name(),
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
	}

	if f.opts.SkipBcrypt {
		user.Password = DemoPassword
	} else {
		hashed, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), f.opts.BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.Password = string(hashed)
	}

	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateVideo persists a video owned by user. Roughly one in ten is left unpublished.
func (f *Factory) CreateVideo(user *models.User, overrides ...func(*models.Video)) (*models.Video, error) {
	key := f.faker.UUID()
	video := &models.Video{
		OwnerID:     user.ID,
		Title:       f.faker.HipsterSentence(4),
		Description: f.faker.Paragraph(1, 3, 12, " "),
		VideoFile:   fmt.Sprintf("https://cdn.example.com/videos/%s.mp4", key),
		Thumbnail:   fmt.Sprintf("https://picsum.photos/seed/%s/640/360", key),
		Duration:    f.faker.Float64Range(15, 3600),
		Views:       int64(f.faker.Number(0, 50000)),
		IsPublished: f.faker.Number(1, 10) > 1,
		CreatedAt:   f.pastTime(),
	}
	for _, override := range overrides {
		override(video)
	}
	if err := f.db.Omit("Owner").Create(video).Error; err != nil {
		return nil, err
	}
	return video, nil
}

// CreateComment persists a comment by user on video.
func (f *Factory) CreateComment(user *models.User, video *models.Video) (*models.Comment, error) {
	comment := &models.Comment{
		OwnerID:   user.ID,
		VideoID:   video.ID,
		Content:   f.faker.Sentence(f.faker.Number(4, 20)),
		CreatedAt: f.pastTime(),
	}
	if err := f.db.Omit("Owner", "Video").Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateTweet persists a short post by user.
func (f *Factory) CreateTweet(user *models.User) (*models.Tweet, error) {
	content := f.faker.HackerPhrase()
	if len([]rune(content)) > 280 {
		content = string([]rune(content)[:280])
	}
	tweet := &models.Tweet{
		OwnerID:   user.ID,
		Content:   content,
		CreatedAt: f.pastTime(),
	}
	if err := f.db.Omit("Owner").Create(tweet).Error; err != nil {
		return nil, err
	}
	return tweet, nil
}

// CreatePlaylist persists a playlist for user containing videos.
func (f *Factory) CreatePlaylist(user *models.User, videos []*models.Video) (*models.Playlist, error) {
	playlist := &models.Playlist{
		OwnerID:     user.ID,
		Name:        f.faker.BuzzWord() + " mix",
		Description: f.faker.Sentence(8),
		CreatedAt:   f.pastTime(),
	}
	if err := f.db.Omit("Owner", "Videos").Create(playlist).Error; err != nil {
		return nil, err
	}
	for _, v := range videos {
		if err := f.db.Table("playlist_videos").Create(map[string]interface{}{
			"playlist_id": playlist.ID,
			"video_id":    v.ID,
		}).Error; err != nil {
			return nil, err
		}
	}
	return playlist, nil
}

// CreateReaction persists one reaction. Seeding never toggles, so callers
// must not repeat a (user, kind, target) triple.
func (f *Factory) CreateReaction(user *models.User, kind models.TargetKind, targetID uuid.UUID) error {
	return f.db.Create(&models.Reaction{
		UserID:     user.ID,
		TargetKind: kind,
		TargetID:   targetID,
		CreatedAt:  f.pastTime(),
	}).Error
}

// CreateSubscription subscribes subscriber to channel.
func (f *Factory) CreateSubscription(subscriber, channel *models.User) error {
	return f.db.Create(&models.Subscription{
		SubscriberID: subscriber.ID,
		ChannelID:    channel.ID,
		CreatedAt:    f.pastTime(),
	}).Error
}
