package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/entry-inc/entry/internal/interfaces/http/handlers"
	"github.com/entry-inc/entry/internal/interfaces/http/middleware"
	"github.com/entry-inc/entry/internal/shared/authorization"
)

// UserRouteConfig holds dependencies for user routes.
type UserRouteConfig struct {
	UserHandler    *handlers.UserHandler
	AuthMiddleware *middleware.AuthMiddleware
	Gates          *middleware.GateMiddleware
	RateLimiter    *middleware.RateLimiter
}

// SetupUserRoutes configures user registration and profile routes.
func SetupUserRoutes(engine *gin.Engine, cfg *UserRouteConfig) {
	authed := func(extra ...gin.HandlerFunc) []gin.HandlerFunc {
		chain := []gin.HandlerFunc{
			cfg.AuthMiddleware.Authenticate(),
			cfg.Gates.RevokedRefreshToken(),
			cfg.Gates.EmailVerified(),
			cfg.Gates.AccountInactive(),
		}
		return append(chain, extra...)
	}

	users := engine.Group("/users")
	{
		users.POST("", cfg.RateLimiter.Limit(), cfg.UserHandler.Register)

		users.GET("", authed(cfg.UserHandler.GetCurrent)...)

		users.GET("/all", authed(
			cfg.Gates.RoleChecker(authorization.RoleModerator, authorization.RoleAdmin),
			cfg.UserHandler.List)...)

		users.GET("/:id", authed(cfg.UserHandler.Get)...)

		users.PUT("/:id", authed(
			cfg.Gates.EditPermissionsChecker(),
			cfg.UserHandler.Update)...)
	}
}
