package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/entry-inc/entry/internal/application/user/usecases"
	"github.com/entry-inc/entry/internal/shared/config"
	"github.com/entry-inc/entry/internal/shared/constants"
	"github.com/entry-inc/entry/internal/shared/logger"
	"github.com/entry-inc/entry/internal/shared/utils"
)

type AuthHandler struct {
	loginUseCase          *usecases.LoginUseCase
	logoutUseCase         *usecases.LogoutUseCase
	listSessionsUseCase   *usecases.ListSessionsUseCase
	revokeSessionUseCase  *usecases.RevokeSessionUseCase
	verifyEmailUseCase    *usecases.VerifyEmailUseCase
	changePasswordUseCase *usecases.ChangePasswordUseCase
	userResolver          UserResolver
	logger                logger.Interface
	cookieConfig          config.CookieConfig
	jwtConfig             config.JWTConfig
}

func NewAuthHandler(
	loginUC *usecases.LoginUseCase,
	logoutUC *usecases.LogoutUseCase,
	listSessionsUC *usecases.ListSessionsUseCase,
	revokeSessionUC *usecases.RevokeSessionUseCase,
	verifyEmailUC *usecases.VerifyEmailUseCase,
	changePasswordUC *usecases.ChangePasswordUseCase,
	userResolver UserResolver,
	logger logger.Interface,
	cookieConfig config.CookieConfig,
	jwtConfig config.JWTConfig,
) *AuthHandler {
	return &AuthHandler{
		loginUseCase:          loginUC,
		logoutUseCase:         logoutUC,
		listSessionsUseCase:   listSessionsUC,
		revokeSessionUseCase:  revokeSessionUC,
		verifyEmailUseCase:    verifyEmailUC,
		changePasswordUseCase: changePasswordUC,
		userResolver:          userResolver,
		logger:                logger,
		cookieConfig:          cookieConfig,
		jwtConfig:             jwtConfig,
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword    string `json:"currentPassword" validate:"required"`
	NewPassword        string `json:"newPassword" validate:"required,min=8"`
	NewPasswordConfirm string `json:"newPasswordConfirm" validate:"required"`
}

// Login verifies credentials and establishes the cookie triple. Field
// presence is checked in the use case so email and password report distinct
// errors.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	// Body may already have been read by the gate chain
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	meta, err := utils.GetClientMetadata(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.loginUseCase.Execute(c.Request.Context(), usecases.LoginCommand{
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	accessMaxAge := int(result.ExpiresIn)
	refreshMaxAge := h.jwtConfig.RefreshExpDays * 24 * 60 * 60
	utils.SetSessionCookies(c, h.cookieConfig,
		result.User.ID, result.AccessToken, result.RefreshTokenID,
		accessMaxAge, refreshMaxAge)

	utils.SuccessResponse(c, http.StatusOK, "login successful", gin.H{
		"user": result.User,
	})
}

// Logout revokes the caller's session record and clears all cookies. It
// succeeds even when the record is already gone.
func (h *AuthHandler) Logout(c *gin.Context) {
	refreshTokenID, _ := utils.GetSignedCookie(c, h.cookieConfig, utils.RefreshTokenIDCookie)

	result, err := h.logoutUseCase.Execute(c.Request.Context(), usecases.LogoutCommand{
		SessionID: refreshTokenID,
		Forced:    false,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ClearSessionCookies(c, h.cookieConfig)
	utils.SuccessResponse(c, http.StatusOK, "logged out", gin.H{
		"forced": result.Forced,
	})
}

// ListUnits returns the caller's active sessions as a redacted projection
func (h *AuthHandler) ListUnits(c *gin.Context) {
	callerID, err := h.userResolver.ResolveID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.listSessionsUseCase.Execute(c.Request.Context(), usecases.ListSessionsCommand{
		UserID:           callerID,
		CurrentSessionID: c.GetString(constants.ContextKeyRefreshTokenID),
		Sort:             c.Query("sort"),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"units": result.Sessions,
	})
}

// RevokeUnit kills one of the caller's other sessions
func (h *AuthHandler) RevokeUnit(c *gin.Context) {
	callerID, err := h.userResolver.ResolveID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	err = h.revokeSessionUseCase.Execute(c.Request.Context(), usecases.RevokeSessionCommand{
		UserID:           callerID,
		SessionID:        c.Param("id"),
		CurrentSessionID: c.GetString(constants.ContextKeyRefreshTokenID),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "session revoked", nil)
}

// VerifyEmail consumes a verification token from the URL
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	result, err := h.verifyEmailUseCase.Execute(c.Request.Context(), usecases.VerifyEmailCommand{
		Token: c.Param("token"),
		Email: c.Query("email"),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "email verified", gin.H{
		"user": result.User,
	})
}

// ChangePassword swaps the caller's credential and ends all sessions
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	callerID, err := h.userResolver.ResolveID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	err = h.changePasswordUseCase.Execute(c.Request.Context(), usecases.ChangePasswordCommand{
		UserID:             callerID,
		CurrentPassword:    req.CurrentPassword,
		NewPassword:        req.NewPassword,
		NewPasswordConfirm: req.NewPasswordConfirm,
		CurrentSessionID:   c.GetString(constants.ContextKeyRefreshTokenID),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	// Every session is revoked, including this one
	utils.ClearSessionCookies(c, h.cookieConfig)
	utils.SuccessResponse(c, http.StatusOK, "password changed, please login again", nil)
}
