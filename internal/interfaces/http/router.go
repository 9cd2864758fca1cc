package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/entry-inc/entry/internal/application/user/usecases"
	"github.com/entry-inc/entry/internal/infrastructure/auth"
	"github.com/entry-inc/entry/internal/infrastructure/config"
	"github.com/entry-inc/entry/internal/infrastructure/repository"
	"github.com/entry-inc/entry/internal/interfaces/http/handlers"
	"github.com/entry-inc/entry/internal/interfaces/http/middleware"
	"github.com/entry-inc/entry/internal/interfaces/http/routes"
	"github.com/entry-inc/entry/internal/shared/authorization"
	"github.com/entry-inc/entry/internal/shared/logger"
)

// Router wires repositories, use cases, middleware and handlers into a gin
// engine and owns the HTTP server lifecycle.
type Router struct {
	engine *gin.Engine
	server *http.Server
	redis  *redis.Client
	log    logger.Interface
}

// jwtServiceAdapter bridges the infrastructure JWT service to the token
// port the use cases depend on.
type jwtServiceAdapter struct {
	svc *auth.JWTService
}

func (a *jwtServiceAdapter) Generate(userSID string, sessionID string, role authorization.UserRole) (*usecases.TokenPair, error) {
	pair, err := a.svc.Generate(userSID, sessionID, role)
	if err != nil {
		return nil, err
	}
	return &usecases.TokenPair{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

func (a *jwtServiceAdapter) VerifyRefresh(token string) (*usecases.TokenClaims, error) {
	claims, err := a.svc.VerifyRefresh(token)
	if err != nil {
		return nil, err
	}
	return &usecases.TokenClaims{
		UserSID:   claims.UserSID,
		SessionID: claims.SessionID,
		Role:      claims.Role,
	}, nil
}

func (a *jwtServiceAdapter) RefreshExpiry() time.Time { return a.svc.RefreshExpiry() }
func (a *jwtServiceAdapter) AccessExpMinutes() int    { return a.svc.AccessExpMinutes() }
func (a *jwtServiceAdapter) RefreshExpDays() int      { return a.svc.RefreshExpDays() }

// NewRouter creates a fully wired HTTP router.
func NewRouter(db *gorm.DB, cfg *config.Config, log logger.Interface) (*Router, error) {
	engine := gin.New()

	redisClient, err := initRedis(cfg, log)
	if err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepository(db, log)
	sessionRepo := repository.NewSessionRepository(db)

	jwtSvc, err := auth.NewJWTServiceFromConfig(cfg.Auth.JWT)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	tokens := &jwtServiceAdapter{svc: jwtSvc}
	hasher := auth.NewArgon2PasswordHasher(cfg.Auth.Password)

	registerUC := usecases.NewRegisterUserUseCase(userRepo, hasher, log)
	loginUC := usecases.NewLoginUseCase(userRepo, sessionRepo, hasher, tokens, log)
	logoutUC := usecases.NewLogoutUseCase(sessionRepo, log)
	rotateUC := usecases.NewRotateTokensUseCase(userRepo, sessionRepo, tokens, log)
	listSessionsUC := usecases.NewListSessionsUseCase(sessionRepo, log)
	revokeSessionUC := usecases.NewRevokeSessionUseCase(sessionRepo, log)
	verifyEmailUC := usecases.NewVerifyEmailUseCase(userRepo, log)
	changePasswordUC := usecases.NewChangePasswordUseCase(userRepo, sessionRepo, hasher, log)
	getUserUC := usecases.NewGetUserUseCase(userRepo, log)
	listUsersUC := usecases.NewListUsersUseCase(userRepo, log)
	updateUserUC := usecases.NewUpdateUserUseCase(userRepo, log)

	authMiddleware := middleware.NewAuthMiddleware(jwtSvc, rotateUC, logoutUC, cfg.Auth.Cookie, log)
	gates := middleware.NewGateMiddleware(userRepo, sessionRepo, cfg.Auth.Cookie, log)
	rateLimiter := middleware.NewRateLimiter(
		redisClient,
		cfg.Auth.RateLimit.Limit,
		time.Duration(cfg.Auth.RateLimit.WindowSeconds)*time.Second,
	)

	resolver := handlers.NewUserResolver(userRepo)
	authHandler := handlers.NewAuthHandler(
		loginUC, logoutUC, listSessionsUC, revokeSessionUC, verifyEmailUC, changePasswordUC,
		resolver, log, cfg.Auth.Cookie, cfg.Auth.JWT,
	)
	userHandler := handlers.NewUserHandler(registerUC, getUserUC, listUsersUC, updateUserUC, resolver, log)

	engine.Use(middleware.Recovery())
	engine.Use(middleware.Logger(log))
	engine.Use(middleware.ErrorHandler())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.SetupAuthRoutes(engine, &routes.AuthRouteConfig{
		AuthHandler:    authHandler,
		AuthMiddleware: authMiddleware,
		Gates:          gates,
		RateLimiter:    rateLimiter,
	})
	routes.SetupUserRoutes(engine, &routes.UserRouteConfig{
		UserHandler:    userHandler,
		AuthMiddleware: authMiddleware,
		Gates:          gates,
		RateLimiter:    rateLimiter,
	})

	return &Router{
		engine: engine,
		redis:  redisClient,
		log:    log,
	}, nil
}

// initRedis creates and tests the Redis client connection.
func initRedis(cfg *config.Config, log logger.Interface) (*redis.Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Infow("redis connection established")

	return redisClient, nil
}

// GetEngine returns the gin engine, mainly for tests.
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// Run starts the HTTP server and blocks until it stops.
func (r *Router) Run(addr string) error {
	r.server = &http.Server{
		Addr:         addr,
		Handler:      r.engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and closes the redis client.
func (r *Router) Shutdown(ctx context.Context) error {
	if r.server != nil {
		if err := r.server.Shutdown(ctx); err != nil {
			return err
		}
	}
	if r.redis != nil {
		if err := r.redis.Close(); err != nil {
			r.log.Warnw("failed to close redis client", "error", err)
		}
	}
	return nil
}
