package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/entry-inc/entry/internal/application/user/usecases"
	"github.com/entry-inc/entry/internal/shared/logger"
	"github.com/entry-inc/entry/internal/shared/utils"
)

type UserHandler struct {
	registerUseCase   *usecases.RegisterUserUseCase
	getUserUseCase    *usecases.GetUserUseCase
	listUsersUseCase  *usecases.ListUsersUseCase
	updateUserUseCase *usecases.UpdateUserUseCase
	userResolver      UserResolver
	logger            logger.Interface
}

func NewUserHandler(
	registerUC *usecases.RegisterUserUseCase,
	getUserUC *usecases.GetUserUseCase,
	listUsersUC *usecases.ListUsersUseCase,
	updateUserUC *usecases.UpdateUserUseCase,
	userResolver UserResolver,
	logger logger.Interface,
) *UserHandler {
	return &UserHandler{
		registerUseCase:   registerUC,
		getUserUseCase:    getUserUC,
		listUsersUseCase:  listUsersUC,
		updateUserUseCase: updateUserUC,
		userResolver:      userResolver,
		logger:            logger,
	}
}

type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Username        string `json:"username" validate:"required"`
	Forename        string `json:"forename"`
	Surname         string `json:"surname"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required"`
}

type UpdateUserRequest struct {
	Email    *string `json:"email"`
	Username *string `json:"username"`
	Forename *string `json:"forename"`
	Surname  *string `json:"surname"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.registerUseCase.Execute(c.Request.Context(), usecases.RegisterUserCommand{
		Email:           req.Email,
		Username:        req.Username,
		Forename:        req.Forename,
		Surname:         req.Surname,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"user": result.User,
	}, "user registered")
}

// GetCurrent returns the caller's own profile
func (h *UserHandler) GetCurrent(c *gin.Context) {
	u, err := h.userResolver.Resolve(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"user": usecases.ToUserDTO(u),
	})
}

// Get resolves a user by public ID or username
func (h *UserHandler) Get(c *gin.Context) {
	result, err := h.getUserUseCase.Execute(c.Request.Context(), usecases.GetUserCommand{
		Identifier: c.Param("id"),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"user": result.User,
	})
}

func (h *UserHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	result, err := h.listUsersUseCase.Execute(c.Request.Context(), usecases.ListUsersQuery{
		Page:     page,
		PageSize: pageSize,
		Email:    c.Query("email"),
		Username: c.Query("username"),
		Role:     c.Query("role"),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"users": result.Users,
		"total": result.Total,
	})
}

// Update edits a profile. The edit-permissions gate has already decided the
// caller may touch this target.
func (h *UserHandler) Update(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.updateUserUseCase.Execute(c.Request.Context(), usecases.UpdateUserCommand{
		TargetSID: c.Param("id"),
		Email:     req.Email,
		Username:  req.Username,
		Forename:  req.Forename,
		Surname:   req.Surname,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "user updated", gin.H{
		"user": result.User,
	})
}
