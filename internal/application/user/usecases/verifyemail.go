package usecases

import (
	"context"
	"fmt"

	"github.com/entry-inc/entry/internal/domain/user"
	"github.com/entry-inc/entry/internal/shared/errors"
	"github.com/entry-inc/entry/internal/shared/logger"
)

type VerifyEmailCommand struct {
	Token string
	Email string
}

type VerifyEmailResult struct {
	User *UserDTO
}

// VerifyEmailUseCase consumes a verification token and marks the address
// verified. Token delivery is outside this system; the lifecycle is not.
type VerifyEmailUseCase struct {
	userRepo user.Repository
	logger   logger.Interface
}

func NewVerifyEmailUseCase(userRepo user.Repository, logger logger.Interface) *VerifyEmailUseCase {
	return &VerifyEmailUseCase{
		userRepo: userRepo,
		logger:   logger,
	}
}

func (uc *VerifyEmailUseCase) Execute(ctx context.Context, cmd VerifyEmailCommand) (*VerifyEmailResult, error) {
	if cmd.Token == "" {
		return nil, errors.NewValidationError("verification token is required")
	}

	target, err := uc.userRepo.GetByVerificationToken(ctx, cmd.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to look up verification token: %w", err)
	}
	if target == nil {
		return nil, errors.NewNotFoundError("user not found")
	}

	if cmd.Email != "" && user.NormalizeEmail(cmd.Email) != target.Email() {
		return nil, errors.NewNotFoundError("user not found")
	}

	if target.IsEmailVerified() {
		return nil, errors.NewEmailAlreadyVerifiedError()
	}

	if err := target.VerifyEmail(); err != nil {
		return nil, errors.NewEmailAlreadyVerifiedError()
	}

	if err := uc.userRepo.Update(ctx, target); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	uc.logger.Infow("email verified", "user_id", target.SID())

	return &VerifyEmailResult{User: ToUserDTO(target)}, nil
}
