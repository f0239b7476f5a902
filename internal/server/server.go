// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"vidtube/internal/bootstrap"
	"vidtube/internal/config"
	"vidtube/internal/middleware"
	"vidtube/internal/models"
	"vidtube/internal/notifications"
	"vidtube/internal/repository"
	"vidtube/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus
	notifier       *notifications.Notifier

	reactionService     *service.ReactionService
	feedService         *service.FeedService
	videoService        *service.VideoService
	commentService      *service.CommentService
	tweetService        *service.TweetService
	playlistService     *service.PlaylistService
	subscriptionService *service.SubscriptionService
}

// NewServer connects the runtime dependencies described by cfg and builds a Server.
func NewServer(cfg *config.Config) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("server requires config")
	}
	middleware.InitMiddleware(cfg)
	db, redisClient, err := bootstrap.InitRuntime(cfg)
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; caching, rate limiting and event fan-out are then skipped.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server requires config and database")
	}
	middleware.InitMiddleware(cfg)

	contentRepo := repository.NewContentRepository(db)
	reactionRepo := repository.NewReactionRepository(db)
	userRepo := repository.NewUserRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	videoRepo := repository.NewVideoRepository(db)

	notifier := notifications.NewNotifier(redisClient)
	gate := service.NewOwnershipGate(contentRepo)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("vidtube-api"),
		notifier:       notifier,

		reactionService: service.NewReactionService(contentRepo, reactionRepo, notifier),
		feedService: service.NewFeedService(contentRepo, reactionRepo, userRepo, subscriptionRepo, videoRepo, service.FeedLimits{
			DefaultPageSize: cfg.FeedDefaultPageSize,
			MaxPageSize:     cfg.FeedMaxPageSize,
		}),
		videoService:        service.NewVideoService(videoRepo, gate),
		commentService:      service.NewCommentService(contentRepo, repository.NewCommentRepository(db), gate),
		tweetService:        service.NewTweetService(repository.NewTweetRepository(db), gate),
		playlistService:     service.NewPlaylistService(contentRepo, repository.NewPlaylistRepository(db), gate),
		subscriptionService: service.NewSubscriptionService(userRepo, subscriptionRepo, notifier),
	}, nil
}

// Notifier exposes the event publisher so the runtime can attach subscribers.
func (s *Server) Notifier() *notifications.Notifier {
	return s.notifier
}

// StartEventLog logs every reaction and subscription event published by any
// instance until ctx is done. Without Redis it is a no-op.
func (s *Server) StartEventLog(ctx context.Context) error {
	return s.notifier.StartPatternSubscriber(ctx, func(channel, payload string) {
		middleware.Logger.Info("engagement event",
			slog.String("channel", channel),
			slog.String("payload", payload))
	})
}

// Shutdown releases the database and Redis connections.
func (s *Server) Shutdown(_ context.Context) error {
	var errs []error
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			errs = append(errs, cerr)
		}
	}
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			errs = append(errs, rerr)
		}
	}
	middleware.Logger.Info("Server shutdown complete")
	return errors.Join(errs...)
}

// NewApp builds the Fiber application with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "vidtube-api",
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api/v1")
	auth := middleware.AuthRequired
	optional := middleware.OptionalAuth

	toggleLimit := s.config.ToggleRateLimit
	if toggleLimit <= 0 {
		toggleLimit = 60
	}
	toggleRate := middleware.RateLimit(s.redis, toggleLimit, time.Minute, "toggle")

	videos := api.Group("/videos")
	videos.Get("/", optional, s.ListVideos)
	videos.Post("/", auth, s.PublishVideo)
	// Specific routes before generic /:id
	videos.Patch("/toggle/publish/:videoId", auth, s.TogglePublishStatus)
	videos.Get("/:videoId", optional, s.GetVideo)
	videos.Patch("/:videoId", auth, s.UpdateVideo)
	videos.Delete("/:videoId", auth, s.DeleteVideo)

	comments := api.Group("/comments")
	comments.Patch("/c/:commentId", auth, s.UpdateComment)
	comments.Delete("/c/:commentId", auth, s.DeleteComment)
	comments.Get("/:videoId", optional, s.ListVideoComments)
	comments.Post("/:videoId", auth, s.AddComment)

	tweets := api.Group("/tweets")
	tweets.Post("/", auth, s.CreateTweet)
	tweets.Get("/user/:userId", optional, s.ListUserTweets)
	tweets.Patch("/:tweetId", auth, s.UpdateTweet)
	tweets.Delete("/:tweetId", auth, s.DeleteTweet)

	likes := api.Group("/likes", auth)
	likes.Post("/toggle/v/:videoId", toggleRate, s.ToggleVideoLike)
	likes.Post("/toggle/c/:commentId", toggleRate, s.ToggleCommentLike)
	likes.Post("/toggle/t/:tweetId", toggleRate, s.ToggleTweetLike)
	likes.Post("/toggle/:kind/:targetId", toggleRate, s.ToggleLike)
	likes.Get("/videos", s.GetLikedVideos)

	subscriptions := api.Group("/subscriptions")
	subscriptions.Post("/c/:channelId", auth, toggleRate, s.ToggleSubscription)
	subscriptions.Get("/c/:channelId", s.ListSubscribers)
	subscriptions.Get("/u/:subscriberId", s.ListSubscribedChannels)

	playlists := api.Group("/playlist")
	playlists.Post("/", auth, s.CreatePlaylist)
	playlists.Get("/user/:userId", optional, s.ListUserPlaylists)
	playlists.Patch("/add/:videoId/:playlistId", auth, s.AddVideoToPlaylist)
	playlists.Patch("/remove/:videoId/:playlistId", auth, s.RemoveVideoFromPlaylist)
	playlists.Get("/:playlistId", s.GetPlaylist)
	playlists.Patch("/:playlistId", auth, s.UpdatePlaylist)
	playlists.Delete("/:playlistId", auth, s.DeletePlaylist)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional; only the
// database decides readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// errorHandler renders errors that escape handlers, including Fiber's own 404/405.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := models.CodeInternal
		switch fe.Code {
		case fiber.StatusNotFound:
			code = models.CodeNotFound
		case fiber.StatusBadRequest, fiber.StatusMethodNotAllowed:
			code = models.CodeValidation
		}
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message, Code: code})
	}
	return respondError(c, err)
}
