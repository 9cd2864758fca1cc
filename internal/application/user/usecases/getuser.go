package usecases

import (
	"context"
	"fmt"

	"github.com/entry-inc/entry/internal/domain/user"
	"github.com/entry-inc/entry/internal/shared/errors"
	"github.com/entry-inc/entry/internal/shared/id"
	"github.com/entry-inc/entry/internal/shared/logger"
)

type GetUserCommand struct {
	// Identifier is either a public user ID (usr_…) or a username
	Identifier string
}

type GetUserResult struct {
	User *UserDTO
}

// GetUserUseCase resolves a user by public ID or username
type GetUserUseCase struct {
	userRepo user.Repository
	logger   logger.Interface
}

func NewGetUserUseCase(userRepo user.Repository, logger logger.Interface) *GetUserUseCase {
	return &GetUserUseCase{
		userRepo: userRepo,
		logger:   logger,
	}
}

func (uc *GetUserUseCase) Execute(ctx context.Context, cmd GetUserCommand) (*GetUserResult, error) {
	if cmd.Identifier == "" {
		return nil, errors.NewValidationError("user identifier is required")
	}

	var (
		target *user.User
		err    error
	)
	if id.IsValidUserID(cmd.Identifier) {
		target, err = uc.userRepo.GetBySID(ctx, cmd.Identifier)
	} else {
		target, err = uc.userRepo.GetByUsername(ctx, user.NormalizeUsername(cmd.Identifier))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if target == nil {
		return nil, errors.NewNotFoundError("user not found")
	}

	return &GetUserResult{User: ToUserDTO(target)}, nil
}
