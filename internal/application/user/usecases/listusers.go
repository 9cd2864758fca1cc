package usecases

import (
	"context"
	"fmt"

	"github.com/entry-inc/entry/internal/domain/user"
	"github.com/entry-inc/entry/internal/shared/logger"
)

type ListUsersQuery struct {
	Page     int
	PageSize int
	Email    string
	Username string
	Role     string
}

type ListUsersResult struct {
	Users []*UserDTO
	Total int64
}

// ListUsersUseCase returns a paginated, redacted user listing. Gated to
// privileged roles at the route layer.
type ListUsersUseCase struct {
	userRepo user.Repository
	logger   logger.Interface
}

func NewListUsersUseCase(userRepo user.Repository, logger logger.Interface) *ListUsersUseCase {
	return &ListUsersUseCase{
		userRepo: userRepo,
		logger:   logger,
	}
}

func (uc *ListUsersUseCase) Execute(ctx context.Context, query ListUsersQuery) (*ListUsersResult, error) {
	users, total, err := uc.userRepo.List(ctx, user.ListFilter{
		Page:     query.Page,
		PageSize: query.PageSize,
		Email:    query.Email,
		Username: query.Username,
		Role:     query.Role,
	})
	if err != nil {
		uc.logger.Errorw("failed to list users", "error", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	dtos := make([]*UserDTO, len(users))
	for i, u := range users {
		dtos[i] = ToUserDTO(u)
	}

	return &ListUsersResult{Users: dtos, Total: total}, nil
}
