package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/entry-inc/entry/internal/application/user/usecases"
	"github.com/entry-inc/entry/internal/infrastructure/auth"
	"github.com/entry-inc/entry/internal/shared/config"
	"github.com/entry-inc/entry/internal/shared/constants"
	"github.com/entry-inc/entry/internal/shared/errors"
	"github.com/entry-inc/entry/internal/shared/id"
	"github.com/entry-inc/entry/internal/shared/logger"
	"github.com/entry-inc/entry/internal/shared/utils"
)

// AuthMiddleware runs the per-request authentication state machine:
//
//	no credential cookies at all        -> reject (route protected)
//	valid access token                  -> attach context, self-heal userId
//	valid access token, cookie mismatch -> forced logout (tampering)
//	expired/absent access token         -> rotate via refresh-token record
//	rotation impossible or token reused -> forced logout
//
// Rotation itself lives in RotateTokensUseCase; this layer only moves
// cookies and context.
type AuthMiddleware struct {
	jwtService   *auth.JWTService
	rotateTokens *usecases.RotateTokensUseCase
	logoutUser   *usecases.LogoutUseCase
	cookieConfig config.CookieConfig
	logger       logger.Interface
}

func NewAuthMiddleware(
	jwtService *auth.JWTService,
	rotateTokens *usecases.RotateTokensUseCase,
	logoutUser *usecases.LogoutUseCase,
	cookieConfig config.CookieConfig,
	logger logger.Interface,
) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:   jwtService,
		rotateTokens: rotateTokens,
		logoutUser:   logoutUser,
		cookieConfig: cookieConfig,
		logger:       logger,
	}
}

// Authenticate is the entry gate for every protected route.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken, accessErr := utils.GetSignedCookie(c, m.cookieConfig, utils.AccessTokenCookie)
		refreshTokenID, refreshErr := utils.GetSignedCookie(c, m.cookieConfig, utils.RefreshTokenIDCookie)
		userIDCookie := utils.GetPlainCookie(c, utils.UserIDCookie)

		// A tampered signed cookie reads as absent, but two broken
		// credential cookies at once look like an attack, not loss
		if accessErr != nil && refreshErr != nil {
			m.forceLogout(c, "")
			return
		}

		if accessToken == "" && userIDCookie == "" {
			utils.ErrorResponseWithError(c, errors.NewRouteProtectedError())
			c.Abort()
			return
		}

		if accessToken != "" {
			claims, err := m.jwtService.VerifyAccess(accessToken)
			if err == nil {
				m.proceedAuthenticated(c, claims, accessToken, refreshTokenID, userIDCookie)
				return
			}
			// Expired or invalid access token falls through to rotation;
			// with no refresh-token id that is a forced logout
			if refreshTokenID == "" {
				m.forceLogout(c, "")
				return
			}
			m.rotate(c, refreshTokenID, userIDCookie)
			return
		}

		// No access token at all; only the userId cookie brought us here
		if refreshTokenID == "" {
			utils.ErrorResponseWithError(c, errors.NewRouteProtectedError())
			c.Abort()
			return
		}

		m.rotate(c, refreshTokenID, userIDCookie)
	}
}

// proceedAuthenticated handles the valid-access-token arm: tamper detection
// against the userId cookie, then self-healing, then context attachment.
func (m *AuthMiddleware) proceedAuthenticated(c *gin.Context, claims *auth.Claims, accessToken, refreshTokenID, userIDCookie string) {
	if !id.IsValidUserID(claims.UserSID) {
		m.forceLogout(c, refreshTokenID)
		return
	}

	if userIDCookie != "" {
		if !id.IsValidUserID(userIDCookie) || userIDCookie != claims.UserSID {
			m.logger.Warnw("userId cookie disagrees with verified claim",
				"claim_user", claims.UserSID,
				"ip", c.ClientIP())
			m.forceLogout(c, refreshTokenID)
			return
		}
	} else {
		// Re-issue the missing userId cookie from the verified claim
		maxAge := m.jwtService.RefreshExpDays() * 24 * 60 * 60
		utils.SetUserIDCookie(c, m.cookieConfig, claims.UserSID, maxAge)
	}

	m.attach(c, claims.UserSID, string(claims.Role), accessToken, refreshTokenID)
	c.Next()
}

// rotate exchanges the refresh-token record for a new pair. The record must
// belong to the owner named by the userId cookie; a foreign or absent owner
// reads as tampering. Any failure is normalized to the forced-logout flow so
// the client sees uniform behavior regardless of why the credential died.
func (m *AuthMiddleware) rotate(c *gin.Context, refreshTokenID, ownerSID string) {
	if !id.IsValidSessionID(refreshTokenID) {
		m.forceLogout(c, "")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), constants.StoreTimeoutSeconds*time.Second)
	defer cancel()

	result, err := m.rotateTokens.Execute(ctx, usecases.RotateTokensCommand{
		RefreshTokenID: refreshTokenID,
		OwnerSID:       ownerSID,
		IPAddress:      c.ClientIP(),
		UserAgent:      c.Request.UserAgent(),
	})
	if err != nil {
		m.forceLogout(c, refreshTokenID)
		return
	}

	accessMaxAge := m.jwtService.AccessExpMinutes() * 60
	refreshMaxAge := m.jwtService.RefreshExpDays() * 24 * 60 * 60
	utils.SetSessionCookies(c, m.cookieConfig,
		result.User.ID, result.AccessToken, result.RefreshTokenID,
		accessMaxAge, refreshMaxAge)

	m.attach(c, result.User.ID, result.User.Role, result.AccessToken, result.RefreshTokenID)
	c.Next()
}

// forceLogout revokes the record when resolvable, clears all three cookies,
// and answers as a logout so the client can re-authenticate cleanly.
func (m *AuthMiddleware) forceLogout(c *gin.Context, refreshTokenID string) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), constants.StoreTimeoutSeconds*time.Second)
	defer cancel()

	if _, err := m.logoutUser.Execute(ctx, usecases.LogoutCommand{
		SessionID: refreshTokenID,
		Forced:    true,
	}); err != nil {
		m.logger.Errorw("forced logout failed to revoke session",
			"session_id", refreshTokenID, "error", err)
	}

	utils.ClearSessionCookies(c, m.cookieConfig)
	utils.SuccessResponse(c, http.StatusOK, "logged out forcefully", gin.H{"forced": true})
	c.Abort()
}

func (m *AuthMiddleware) attach(c *gin.Context, userSID, role, accessToken, refreshTokenID string) {
	c.Set(constants.ContextKeyUserSID, userSID)
	c.Set(constants.ContextKeyUserRole, role)
	c.Set(constants.ContextKeyAccessToken, accessToken)
	c.Set(constants.ContextKeyRefreshTokenID, refreshTokenID)
}
