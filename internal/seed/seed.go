package seed

import (
	"fmt"
	"log"

	"vidtube/internal/models"

	"gorm.io/gorm"
)

// Options size a seeding run.
type Options struct {
	NumUsers         int
	VideosPerUser    int
	CommentsPerVideo int
	TweetsPerUser    int
	// ReactionRate is the chance (0..1) that a given user likes a given item.
	ReactionRate float64
	// SubscriptionRate is the chance (0..1) that a given user follows another.
	SubscriptionRate float64
}

// Summary counts what a run created.
type Summary struct {
	Users         int
	Videos        int
	Comments      int
	Tweets        int
	Playlists     int
	Reactions     int
	Subscriptions int
}

// Seeder fills the database with a connected graph of demo content.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

func NewSeeder(db *gorm.DB, opts SeedOptions) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, opts)}
}

// tablesInDeleteOrder lists tables children first.
var tablesInDeleteOrder = []string{
	"reactions",
	"subscriptions",
	"watch_history",
	"playlist_videos",
	"comments",
	"playlists",
	"tweets",
	"videos",
	"users",
}

// ClearAll removes every row the seeder can create.
func (s *Seeder) ClearAll() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, table := range tablesInDeleteOrder {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}

// Run seeds users, their content and the engagement between them.
func (s *Seeder) Run(opts Options) (*Summary, error) {
	f := s.factory
	sum := &Summary{}

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		u, err := f.CreateUser()
		if err != nil {
			return sum, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}
	sum.Users = len(users)
	log.Printf("seeded %d users", sum.Users)

	var (
		videos   []*models.Video
		comments []*models.Comment
		tweets   []*models.Tweet
	)
	for _, u := range users {
		owned := make([]*models.Video, 0, opts.VideosPerUser)
		for i := 0; i < opts.VideosPerUser; i++ {
			v, err := f.CreateVideo(u)
			if err != nil {
				return sum, fmt.Errorf("create video: %w", err)
			}
			owned = append(owned, v)
		}
		videos = append(videos, owned...)

		for i := 0; i < opts.TweetsPerUser; i++ {
			t, err := f.CreateTweet(u)
			if err != nil {
				return sum, fmt.Errorf("create tweet: %w", err)
			}
			tweets = append(tweets, t)
		}

		if len(owned) > 0 {
			if _, err := f.CreatePlaylist(u, owned[:(len(owned)+1)/2]); err != nil {
				return sum, fmt.Errorf("create playlist: %w", err)
			}
			sum.Playlists++
		}
	}
	sum.Videos, sum.Tweets = len(videos), len(tweets)

	if len(users) > 0 {
		for _, v := range videos {
			for i := 0; i < opts.CommentsPerVideo; i++ {
				author := users[f.faker.Number(0, len(users)-1)]
				c, err := f.CreateComment(author, v)
				if err != nil {
					return sum, fmt.Errorf("create comment: %w", err)
				}
				comments = append(comments, c)
			}
		}
	}
	sum.Comments = len(comments)
	log.Printf("seeded %d videos, %d comments, %d tweets", sum.Videos, sum.Comments, sum.Tweets)

	for _, u := range users {
		for _, v := range videos {
			if f.chance(opts.ReactionRate) {
				if err := f.CreateReaction(u, models.TargetVideo, v.ID); err != nil {
					return sum, fmt.Errorf("create reaction: %w", err)
				}
				sum.Reactions++
			}
		}
		for _, c := range comments {
			if f.chance(opts.ReactionRate) {
				if err := f.CreateReaction(u, models.TargetComment, c.ID); err != nil {
					return sum, fmt.Errorf("create reaction: %w", err)
				}
				sum.Reactions++
			}
		}
		for _, t := range tweets {
			if f.chance(opts.ReactionRate) {
				if err := f.CreateReaction(u, models.TargetTweet, t.ID); err != nil {
					return sum, fmt.Errorf("create reaction: %w", err)
				}
				sum.Reactions++
			}
		}
		for _, channel := range users {
			if channel.ID != u.ID && f.chance(opts.SubscriptionRate) {
				if err := f.CreateSubscription(u, channel); err != nil {
					return sum, fmt.Errorf("create subscription: %w", err)
				}
				sum.Subscriptions++
			}
		}
	}
	log.Printf("seeded %d reactions, %d subscriptions", sum.Reactions, sum.Subscriptions)

	return sum, nil
}

func (f *Factory) chance(rate float64) bool {
	if rate <= 0 {
		return false
	}
	return f.faker.Float64Range(0, 1) < rate
}
