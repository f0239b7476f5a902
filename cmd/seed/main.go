// Command main fills the database with demo users, videos and engagement.
package main

import (
	"flag"
	"log"

	"vidtube/internal/config"
	"vidtube/internal/database"
	"vidtube/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	videosPerUser := flag.Int("videos", 5, "Videos per user")
	commentsPerVideo := flag.Int("comments", 3, "Comments per video")
	tweetsPerUser := flag.Int("tweets", 4, "Tweets per user")
	reactionRate := flag.Float64("like-rate", 0.15, "Chance that a user likes a given item")
	subscriptionRate := flag.Float64("sub-rate", 0.3, "Chance that a user subscribes to a given channel")
	randSeed := flag.Int64("seed", 0, "Random seed (0 picks one from the clock)")
	fast := flag.Bool("fast", false, "Store passwords unhashed")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d videos each, clean=%v\n", *numUsers, *videosPerUser, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db, seed.SeedOptions{RandSeed: *randSeed, SkipBcrypt: *fast})

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	sum, err := s.Run(seed.Options{
		NumUsers:         *numUsers,
		VideosPerUser:    *videosPerUser,
		CommentsPerVideo: *commentsPerVideo,
		TweetsPerUser:    *tweetsPerUser,
		ReactionRate:     *reactionRate,
		SubscriptionRate: *subscriptionRate,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Done: %d users, %d videos, %d comments, %d tweets, %d playlists, %d reactions, %d subscriptions",
		sum.Users, sum.Videos, sum.Comments, sum.Tweets, sum.Playlists, sum.Reactions, sum.Subscriptions)
	log.Printf("All seeded users have the password: %s", seed.DemoPassword)
}
