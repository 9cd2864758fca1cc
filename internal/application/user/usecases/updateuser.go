package usecases

import (
	"context"
	"fmt"

	"github.com/entry-inc/entry/internal/domain/user"
	"github.com/entry-inc/entry/internal/shared/errors"
	"github.com/entry-inc/entry/internal/shared/logger"
)

type UpdateUserCommand struct {
	TargetSID string
	Email     *string
	Username  *string
	Forename  *string
	Surname   *string
}

type UpdateUserResult struct {
	User *UserDTO
}

// UpdateUserUseCase applies profile changes. Who may edit whom is decided by
// the gate chain before this runs; here only the data rules apply.
// Changing the email resets verification and stages a new token.
type UpdateUserUseCase struct {
	userRepo user.Repository
	logger   logger.Interface
}

func NewUpdateUserUseCase(userRepo user.Repository, logger logger.Interface) *UpdateUserUseCase {
	return &UpdateUserUseCase{
		userRepo: userRepo,
		logger:   logger,
	}
}

func (uc *UpdateUserUseCase) Execute(ctx context.Context, cmd UpdateUserCommand) (*UpdateUserResult, error) {
	if cmd.TargetSID == "" {
		return nil, errors.NewValidationError("target user id is required")
	}

	target, err := uc.userRepo.GetBySID(ctx, cmd.TargetSID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if target == nil {
		return nil, errors.NewNotFoundError("user not found")
	}

	if cmd.Username != nil {
		username := user.NormalizeUsername(*cmd.Username)
		if username != target.Username() {
			taken, err := uc.userRepo.ExistsByUsername(ctx, username)
			if err != nil {
				return nil, fmt.Errorf("failed to check username uniqueness: %w", err)
			}
			if taken {
				return nil, errors.NewConflictError("username is already taken")
			}
			if err := target.UpdateUsername(username); err != nil {
				return nil, errors.NewValidationError(err.Error())
			}
		}
	}

	if cmd.Email != nil {
		email := user.NormalizeEmail(*cmd.Email)
		if email != target.Email() {
			if err := user.ValidateEmail(email); err != nil {
				return nil, errors.NewValidationError(err.Error())
			}
			taken, err := uc.userRepo.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
			}
			if taken {
				return nil, errors.NewConflictError("email is already registered")
			}
			if err := target.ChangeEmail(email); err != nil {
				return nil, errors.NewValidationError(err.Error())
			}

			// A changed address must be re-verified
			token, err := generateVerificationToken()
			if err != nil {
				return nil, fmt.Errorf("failed to generate verification token: %w", err)
			}
			target.SetEmailVerificationToken(token)
		}
	}

	if cmd.Forename != nil || cmd.Surname != nil {
		forename := target.Forename()
		surname := target.Surname()
		if cmd.Forename != nil {
			forename = *cmd.Forename
		}
		if cmd.Surname != nil {
			surname = *cmd.Surname
		}
		target.UpdateName(forename, surname)
	}

	if err := uc.userRepo.Update(ctx, target); err != nil {
		if errors.IsDuplicateError(err) {
			return nil, errors.NewConflictError("email or username is already taken")
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	uc.logger.Infow("user updated", "user_id", target.SID())

	return &UpdateUserResult{User: ToUserDTO(target)}, nil
}
