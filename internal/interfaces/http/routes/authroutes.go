package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/entry-inc/entry/internal/interfaces/http/handlers"
	"github.com/entry-inc/entry/internal/interfaces/http/middleware"
)

// AuthRouteConfig holds dependencies for authentication routes.
type AuthRouteConfig struct {
	AuthHandler    *handlers.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
	Gates          *middleware.GateMiddleware
	RateLimiter    *middleware.RateLimiter
}

// SetupAuthRoutes configures the session lifecycle routes. Gate order is
// load-bearing: each gate assumes the ones before it have run.
func SetupAuthRoutes(engine *gin.Engine, cfg *AuthRouteConfig) {
	auth := engine.Group("/auth")
	{
		auth.POST("/login",
			cfg.RateLimiter.Limit(),
			cfg.Gates.AlreadyLoggedIn(),
			cfg.Gates.EmailVerified(),
			cfg.Gates.AccountInactive(),
			cfg.AuthHandler.Login)

		auth.POST("/logout",
			cfg.Gates.AlreadyLoggedOut(),
			cfg.AuthHandler.Logout)

		auth.GET("/units",
			cfg.AuthMiddleware.Authenticate(),
			cfg.Gates.RevokedRefreshToken(),
			cfg.Gates.EmailVerified(),
			cfg.Gates.AccountInactive(),
			cfg.AuthHandler.ListUnits)

		auth.DELETE("/units/:id",
			cfg.AuthMiddleware.Authenticate(),
			cfg.Gates.RevokedRefreshToken(),
			cfg.Gates.EmailVerified(),
			cfg.Gates.AccountInactive(),
			cfg.AuthHandler.RevokeUnit)

		auth.PUT("/email/verify/:token",
			cfg.Gates.EmailNotYetVerified(),
			cfg.AuthHandler.VerifyEmail)

		auth.PUT("/password/change",
			cfg.AuthMiddleware.Authenticate(),
			cfg.Gates.RevokedRefreshToken(),
			cfg.Gates.EmailVerified(),
			cfg.Gates.AccountInactive(),
			cfg.AuthHandler.ChangePassword)
	}
}
