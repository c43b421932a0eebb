// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	_ "instogram/docs" // swagger docs
	"instogram/internal/auth"
	"instogram/internal/cache"
	"instogram/internal/config"
	"instogram/internal/database"
	"instogram/internal/middleware"
	"instogram/internal/models"
	"instogram/internal/mongostore"
	"instogram/internal/observability"
	"instogram/internal/repository"
	"instogram/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	store          *repository.Store
	redis          *redis.Client
	feed           *cache.FeedCache
	gate           middleware.Authenticator
	promMiddleware *fiberprometheus.FiberPrometheus
	userService    *service.UserService
	followService  *service.FollowService
	postService    *service.PostService
}

// NewServer creates a new server instance with all dependencies, connecting
// to the storage backend selected by cfg.StorageDriver.
func NewServer(cfg *config.Config) (*Server, error) {
	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	// A missing Redis leaves the client nil; the feed is then served uncached.
	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, store, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes storage and Redis.
func NewServerWithDeps(cfg *config.Config, store *repository.Store, redisClient *redis.Client) (*Server, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}

	creds := auth.NewCredentials(cfg)
	feed := cache.NewFeedCache(redisClient)

	server := &Server{
		config:         cfg,
		store:          store,
		redis:          redisClient,
		feed:           feed,
		gate:           auth.NewGate(creds, store.Users),
		promMiddleware: middleware.InitMetrics("instogram-api"),
	}
	server.userService = service.NewUserService(store.Users, store.Follows, creds)
	server.followService = service.NewFollowService(store.Follows, store.Users)
	server.postService = service.NewPostService(store.Posts, feed)

	return server, nil
}

func openStore(cfg *config.Config) (*repository.Store, error) {
	switch cfg.StorageDriver {
	case config.StorageMongo:
		client, err := mongostore.Connect(context.Background(), cfg)
		if err != nil {
			return nil, fmt.Errorf("mongodb connection failed: %w", err)
		}
		db := client.Database(cfg.MongoDatabase)
		if err := mongostore.EnsureIndexes(context.Background(), db); err != nil {
			return nil, err
		}
		return mongostore.New(client, db), nil
	default:
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		return repository.NewGormStore(db), nil
	}
}

// Services exposes the business layer for bootstrap tasks such as seeding.
func (s *Server) Services() (*service.UserService, *service.FollowService, *service.PostService) {
	return s.userService, s.followService, s.postService
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Tracing runs first so its trace ID reaches the request context
	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Context Middleware to propagate Request ID and Trace ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		MaxAge:       86400, // 24 hours
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", s.Register)
	authRoutes.Post("/login", s.Login)

	authRequired := middleware.Authenticated(s.gate)

	// Define /me and /search BEFORE the generic /:id routes
	users := api.Group("/users", authRequired)
	users.Get("/me", s.GetMyProfile)
	users.Get("/me/posts", s.GetMyPosts)
	users.Get("/search", s.SearchUsers)
	users.Get("/:id/posts", s.GetUserPosts)
	users.Get("/:id", s.GetUserProfile)

	api.Post("/follows", authRequired, s.ToggleFollow)

	posts := api.Group("/posts", authRequired)
	posts.Get("/", s.GetFeed)
	posts.Post("/", s.CreatePost)
	posts.Post("/:id/comments", s.CreateComment)
	posts.Post("/:id/likes", s.ToggleLike)
	posts.Get("/:id", s.GetPost)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Storage must answer; a
// missing or failing Redis only degrades the feed to uncached reads.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	storeStatus := "healthy"
	if err := s.store.Backend.Ping(ctx); err != nil {
		storeStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis == nil {
		redisStatus = "unavailable"
	} else if err := s.feed.Ping(ctx); err != nil {
		redisStatus = "degraded"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if storeStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"storage": storeStatus,
			"redis":   redisStatus,
		},
		"driver": s.config.StorageDriver,
		"time":   time.Now(),
	})
}

// Shutdown closes the storage backend and the Redis client.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.store != nil && s.store.Backend != nil {
		if err := s.store.Backend.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if len(errs) > 0 {
		err := errors.Join(errs...)
		observability.Logger.Error("shutdown finished with errors", "error", err)
		return err
	}
	return nil
}

// ErrorHandler renders errors that escape handlers in the standard shape.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return models.RespondWithError(c, fiberErr.Code, err)
	}
	return models.RespondWithAppError(c, err)
}
