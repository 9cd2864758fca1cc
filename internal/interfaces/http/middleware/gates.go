package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/entry-inc/entry/internal/domain/user"
	"github.com/entry-inc/entry/internal/shared/authorization"
	"github.com/entry-inc/entry/internal/shared/config"
	"github.com/entry-inc/entry/internal/shared/constants"
	"github.com/entry-inc/entry/internal/shared/errors"
	"github.com/entry-inc/entry/internal/shared/id"
	"github.com/entry-inc/entry/internal/shared/logger"
	"github.com/entry-inc/entry/internal/shared/utils"
)

// GateMiddleware is the ordered authorization gate chain that wraps route
// handlers after Authenticate has resolved the caller. Each gate either
// passes the request on or fails with one typed error, so gate order decides
// which failure a caller observes first.
type GateMiddleware struct {
	userRepo     user.Repository
	sessionRepo  user.SessionRepository
	cookieConfig config.CookieConfig
	logger       logger.Interface
}

func NewGateMiddleware(
	userRepo user.Repository,
	sessionRepo user.SessionRepository,
	cookieConfig config.CookieConfig,
	logger logger.Interface,
) *GateMiddleware {
	return &GateMiddleware{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		cookieConfig: cookieConfig,
		logger:       logger,
	}
}

func (g *GateMiddleware) storeCtx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), constants.StoreTimeoutSeconds*time.Second)
}

func (g *GateMiddleware) fail(c *gin.Context, err error) {
	utils.ErrorResponseWithError(c, err)
	c.Abort()
}

// activeSessionForCaller resolves the (refreshTokenId, userId) cookie pair
// to a live session record owned by exactly that caller. Tampered or missing
// cookies, dead records and foreign owners all read as "no active session".
func (g *GateMiddleware) activeSessionForCaller(c *gin.Context) *user.Session {
	refreshTokenID, err := utils.GetSignedCookie(c, g.cookieConfig, utils.RefreshTokenIDCookie)
	if err != nil || refreshTokenID == "" || !id.IsValidSessionID(refreshTokenID) {
		return nil
	}
	ownerSID := utils.GetPlainCookie(c, utils.UserIDCookie)
	if ownerSID == "" {
		return nil
	}

	ctx, cancel := g.storeCtx(c)
	defer cancel()

	session, err := g.sessionRepo.GetByID(ctx, refreshTokenID)
	if err != nil || session == nil || !session.IsLive() || session.UserSID != ownerSID {
		return nil
	}
	return session
}

// AlreadyLoggedIn rejects a login attempt from a caller that still holds a
// live session of their own. Stale or foreign cookies do not block login.
func (g *GateMiddleware) AlreadyLoggedIn() gin.HandlerFunc {
	return func(c *gin.Context) {
		if g.activeSessionForCaller(c) != nil {
			g.fail(c, errors.NewUserAlreadyLoggedInError())
			return
		}
		c.Next()
	}
}

// AlreadyLoggedOut rejects a logout from a caller with no live session of
// their own to leave
func (g *GateMiddleware) AlreadyLoggedOut() gin.HandlerFunc {
	return func(c *gin.Context) {
		if g.activeSessionForCaller(c) == nil {
			g.fail(c, errors.NewUserAlreadyLoggedOutError())
			return
		}
		c.Next()
	}
}

// RevokedRefreshToken catches sessions revoked out-of-band while the access
// token is still valid (admin revoke, password change on another device).
func (g *GateMiddleware) RevokedRefreshToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		refreshTokenID := c.GetString(constants.ContextKeyRefreshTokenID)
		if refreshTokenID == "" {
			c.Next()
			return
		}

		ctx, cancel := g.storeCtx(c)
		defer cancel()

		session, err := g.sessionRepo.GetByID(ctx, refreshTokenID)
		if err != nil {
			if errors.IsNotFoundError(err) {
				g.fail(c, errors.NewRefreshTokenRevokedError())
				return
			}
			g.fail(c, errors.NewInternalError("failed to check session"))
			return
		}
		if session.IsRevoked {
			g.fail(c, errors.NewRefreshTokenRevokedError())
			return
		}
		c.Next()
	}
}

type emailBody struct {
	Email string `json:"email"`
}

// resolveUser loads the caller by context SID, or by the submitted email on
// unauthenticated routes like login.
func (g *GateMiddleware) resolveUser(c *gin.Context) (*user.User, error) {
	ctx, cancel := g.storeCtx(c)
	defer cancel()

	if sid := c.GetString(constants.ContextKeyUserSID); sid != "" {
		return g.userRepo.GetBySID(ctx, sid)
	}

	var body emailBody
	if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil || body.Email == "" {
		return nil, nil
	}
	return g.userRepo.GetByEmail(ctx, user.NormalizeEmail(body.Email))
}

// EmailVerified blocks callers whose address is not verified. On routes that
// run before authentication it resolves the principal from the request body;
// an unresolvable principal passes, so login still returns its own error.
func (g *GateMiddleware) EmailVerified() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := g.resolveUser(c)
		if err != nil {
			g.fail(c, errors.NewInternalError("failed to load user"))
			return
		}
		if caller != nil && !caller.IsEmailVerified() {
			g.fail(c, errors.NewEmailNotVerifiedError())
			return
		}
		c.Next()
	}
}

// EmailNotYetVerified is the inverse gate for the verification route
func (g *GateMiddleware) EmailNotYetVerified() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := g.resolveUser(c)
		if err != nil {
			g.fail(c, errors.NewInternalError("failed to load user"))
			return
		}
		if caller != nil && caller.IsEmailVerified() {
			g.fail(c, errors.NewEmailAlreadyVerifiedError())
			return
		}
		c.Next()
	}
}

// AccountInactive blocks deactivated accounts
func (g *GateMiddleware) AccountInactive() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := g.resolveUser(c)
		if err != nil {
			g.fail(c, errors.NewInternalError("failed to load user"))
			return
		}
		if caller != nil && !caller.IsActive() {
			g.fail(c, errors.NewAccountInactiveError())
			return
		}
		c.Next()
	}
}

// RoleChecker restricts a route to the given roles
func (g *GateMiddleware) RoleChecker(allowed ...authorization.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := authorization.ParseUserRole(c.GetString(constants.ContextKeyUserRole))
		if !authorization.RoleIn(role, allowed) {
			g.fail(c, errors.NewUnauthorizedRoleError())
			return
		}
		c.Next()
	}
}

type editTargetBody struct {
	UserID string `json:"userId"`
	ID     string `json:"id"`
}

// resolveEditTarget reads the target user id from route parameters first,
// then falls back to the request body
func resolveEditTarget(c *gin.Context) string {
	if target := c.Param("userId"); target != "" {
		return target
	}
	if target := c.Param("id"); target != "" {
		return target
	}
	var body editTargetBody
	if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
		return ""
	}
	if body.UserID != "" {
		return body.UserID
	}
	return body.ID
}

// EditPermissionsChecker allows edits to self, and to anyone for privileged
// roles. Missing and malformed target IDs fail with distinct errors.
func (g *GateMiddleware) EditPermissionsChecker() gin.HandlerFunc {
	return func(c *gin.Context) {
		targetID := resolveEditTarget(c)
		if targetID == "" {
			g.fail(c, errors.NewValidationError("target user id is required"))
			return
		}
		if !id.IsValidUserID(targetID) {
			g.fail(c, errors.NewValidationError("target user id is malformed"))
			return
		}

		callerSID := c.GetString(constants.ContextKeyUserSID)
		if targetID == callerSID {
			c.Next()
			return
		}

		role := authorization.ParseUserRole(c.GetString(constants.ContextKeyUserRole))
		if !role.IsPrivileged() {
			g.logger.Warnw("edit permission denied",
				"caller", callerSID,
				"target", targetID,
				"role", role.String())
			g.fail(c, errors.NewUnauthorizedRoleError("you may only edit your own account"))
			return
		}
		c.Next()
	}
}
