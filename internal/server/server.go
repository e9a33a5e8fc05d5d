// Package server wires the HTTP API.
package server

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"funprofile/internal/config"
	"funprofile/internal/middleware"
	"funprofile/internal/models"
	"funprofile/internal/repository"
	"funprofile/internal/service"
)

const (
	jwtIssuer   = "funprofile"
	jwtAudience = "funprofile-api"
)

// Server holds the application's wiring: config, stores, repositories,
// services and the fiber app.
type Server struct {
	app   *fiber.App
	cfg   *config.Config
	db    *gorm.DB
	redis *redis.Client

	users       repository.UserRepository
	posts       repository.PostRepository
	profiles    repository.ProfileRepository
	wallets     repository.WalletRepository
	friendships repository.FriendshipRepository

	postService    *service.PostService
	profileService *service.ProfileService
	walletService  *service.WalletService
}

// Deps bundles the constructed dependencies for NewServer. Tests swap in
// mocks here.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.Client

	Users       repository.UserRepository
	Posts       repository.PostRepository
	Profiles    repository.ProfileRepository
	Wallets     repository.WalletRepository
	Friendships repository.FriendshipRepository

	PostService    *service.PostService
	ProfileService *service.ProfileService
	WalletService  *service.WalletService
}

// NewServer builds the fiber app, middleware stack and routes.
func NewServer(deps Deps) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{
			AppName:      "funprofile",
			BodyLimit:    64 * 1024 * 1024,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		}),
		cfg:            deps.Config,
		db:             deps.DB,
		redis:          deps.Redis,
		users:          deps.Users,
		friendships:    deps.Friendships,
		posts:          deps.Posts,
		profiles:       deps.Profiles,
		wallets:        deps.Wallets,
		postService:    deps.PostService,
		profileService: deps.ProfileService,
		walletService:  deps.WalletService,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) setupMiddleware() {
	s.app.Use(recover.New())
	s.app.Use(requestid.New())
	s.app.Use(middleware.ContextMiddleware())
	s.app.Use(middleware.Tracing())
	middleware.InitMetrics(s.app, "funprofile")
	s.app.Use(helmet.New())
	s.app.Use(middleware.StructuredLogger())
	s.app.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
	}))
	s.app.Use(middleware.RateLimit(s.redis, middleware.RateLimitConfig{
		KeyPrefix: "rl:global",
		Max:       300,
		Window:    time.Minute,
		Policy:    middleware.FailOpen,
	}))
}

func (s *Server) setupRoutes() {
	s.app.Get("/health", s.handleHealth)
	s.app.Get("/ready", s.handleReady)

	api := s.app.Group("/api")

	auth := api.Group("/auth")
	auth.Use(middleware.RateLimit(s.redis, middleware.RateLimitConfig{
		KeyPrefix: "rl:auth",
		Max:       10,
		Window:    time.Minute,
		Policy:    middleware.FailClosed,
	}))
	auth.Post("/signup", s.handleSignup)
	auth.Post("/login", s.handleLogin)

	posts := api.Group("/posts")
	posts.Get("/", s.optionalAuth, s.handleGetFeed)
	posts.Get("/:id", s.handleGetPost)
	posts.Get("/:id/comments", s.handleGetComments)
	posts.Post("/", s.authRequired, s.handleCreatePost)
	posts.Put("/:id", s.authRequired, s.handleUpdatePost)
	posts.Delete("/:id", s.authRequired, s.handleDeletePost)
	posts.Post("/:id/comments", s.authRequired, s.handleAddComment)
	posts.Post("/:id/reactions", s.authRequired, s.handleToggleReaction)
	posts.Post("/:id/shares", s.authRequired, s.handleAddShare)

	profiles := api.Group("/profiles")
	profiles.Get("/honor-board", s.handleHonorBoard)
	profiles.Get("/:userId", s.handleGetProfile)
	profiles.Get("/:userId/posts", s.handleGetUserPosts)
	profiles.Put("/me", s.authRequired, s.handleUpdateProfile)
	profiles.Put("/me/avatar", s.authRequired, s.handleReplaceAvatar)
	profiles.Get("/me/friend-requests", s.authRequired, s.handlePendingFriendRequests)
	profiles.Get("/:userId/friends", s.handleGetFriends)
	profiles.Post("/:userId/friend-requests", s.authRequired, s.handleSendFriendRequest)

	// Legacy path kept for clients that read user posts by user id.
	api.Get("/users/:userId/posts", s.handleGetUserPosts)

	friendships := api.Group("/friendships")
	friendships.Put("/:requesterId/accept", s.authRequired, s.handleAcceptFriendRequest)

	wallet := api.Group("/wallet", s.authRequired)
	wallet.Post("/send", s.handleWalletSend)
	wallet.Get("/history", s.handleWalletHistory)
	wallet.Get("/contacts", s.handleWalletContacts)
	wallet.Post("/contacts", s.handleWalletAddContact)
	wallet.Get("/receive", s.handleWalletReceive)
}

// authRequired validates the bearer token and stores the user id in locals
// and the request context.
func (s *Server) authRequired(c *fiber.Ctx) error {
	userID, err := s.parseToken(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized, err)
	}
	c.Locals("userID", userID)
	c.SetUserContext(middleware.WithUserID(c.UserContext(), userID))
	return c.Next()
}

// optionalAuth resolves the user id when a valid token is present and
// continues anonymously otherwise.
func (s *Server) optionalAuth(c *fiber.Ctx) error {
	if userID, err := s.parseToken(c); err == nil {
		c.Locals("userID", userID)
		c.SetUserContext(middleware.WithUserID(c.UserContext(), userID))
	}
	return c.Next()
}

func (s *Server) parseToken(c *fiber.Ctx) (uint, error) {
	header := c.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return 0, models.NewUnauthorizedError("missing or malformed token")
	}
	tokenStr := strings.TrimPrefix(header, "Bearer ")

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithIssuer(jwtIssuer), jwt.WithAudience(jwtAudience), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return 0, models.NewUnauthorizedError("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, models.NewUnauthorizedError("invalid token claims")
	}
	sub, ok := claims["sub"].(float64)
	if !ok || sub <= 0 {
		return 0, models.NewUnauthorizedError("invalid token subject")
	}
	return uint(sub), nil
}

// currentUserID returns the authenticated user id, zero when anonymous.
func currentUserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals("userID").(uint); ok {
		return id
	}
	return 0
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleReady(c *fiber.Ctx) error {
	checks := fiber.Map{"database": "ok", "redis": "ok"}
	status := fiber.StatusOK

	if s.db != nil {
		if sqlDB, err := s.db.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			checks["database"] = "down"
			status = fiber.StatusServiceUnavailable
		}
	}
	if s.redis == nil || s.redis.Ping(c.UserContext()).Err() != nil {
		// Cache is optional; report but stay ready.
		checks["redis"] = "down"
	}
	return c.Status(status).JSON(checks)
}

// Start runs the HTTP server until the context is cancelled, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(":" + s.cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.app.ShutdownWithContext(shutdownCtx)
	}
}
