package seed

import (
	"testing"

	"vidtube/internal/database"
	"vidtube/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

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

func count(t *testing.T, db *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Table(table).Count(&n).Error)
	return n
}

func TestSeeder_Run(t *testing.T) {
	db := setupTestDB(t)
	s := NewSeeder(db, SeedOptions{RandSeed: 42, SkipBcrypt: true})

	sum, err := s.Run(Options{
		NumUsers:         4,
		VideosPerUser:    3,
		CommentsPerVideo: 2,
		TweetsPerUser:    2,
		ReactionRate:     1,
		SubscriptionRate: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, sum.Users)
	assert.Equal(t, 12, sum.Videos)
	assert.Equal(t, 24, sum.Comments)
	assert.Equal(t, 8, sum.Tweets)
	assert.Equal(t, 4, sum.Playlists)
	// Every user likes every item and follows every other user.
	assert.Equal(t, 4*(12+24+8), sum.Reactions)
	assert.Equal(t, 4*3, sum.Subscriptions)

	assert.Equal(t, int64(sum.Users), count(t, db, "users"))
	assert.Equal(t, int64(sum.Videos), count(t, db, "videos"))
	assert.Equal(t, int64(sum.Comments), count(t, db, "comments"))
	assert.Equal(t, int64(sum.Reactions), count(t, db, "reactions"))
	assert.Equal(t, int64(sum.Subscriptions), count(t, db, "subscriptions"))
	assert.Equal(t, int64(4*2), count(t, db, "playlist_videos"))

	require.NoError(t, s.ClearAll())
	for _, table := range tablesInDeleteOrder {
		assert.Zero(t, count(t, db, table), table)
	}
}

func TestSeeder_ZeroRatesCreateNoEngagement(t *testing.T) {
	db := setupTestDB(t)
	s := NewSeeder(db, SeedOptions{RandSeed: 7, SkipBcrypt: true})

	sum, err := s.Run(Options{NumUsers: 2, VideosPerUser: 1})
	require.NoError(t, err)
	assert.Zero(t, sum.Reactions)
	assert.Zero(t, sum.Subscriptions)
	assert.Zero(t, sum.Comments)
}

func TestFactory_CreateUserHashesPassword(t *testing.T) {
	db := setupTestDB(t)
	f := NewFactory(db, SeedOptions{RandSeed: 1, BcryptCost: bcrypt.MinCost})

	user, err := f.CreateUser(func(u *models.User) { u.Username = "fixed" })
	require.NoError(t, err)
	assert.Equal(t, "fixed", user.Username)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(DemoPassword)))
}

func TestFactory_TweetsFitLimit(t *testing.T) {
	db := setupTestDB(t)
	f := NewFactory(db, SeedOptions{RandSeed: 3, SkipBcrypt: true})
	user, err := f.CreateUser()
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		tweet, err := f.CreateTweet(user)
		require.NoError(t, err)
		assert.LessOrEqual(t, len([]rune(tweet.Content)), 280)
	}
}
