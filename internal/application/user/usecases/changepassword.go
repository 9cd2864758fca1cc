package usecases

import (
	"context"
	"fmt"

	"github.com/entry-inc/entry/internal/domain/user"
	"github.com/entry-inc/entry/internal/shared/errors"
	"github.com/entry-inc/entry/internal/shared/logger"
)

type ChangePasswordCommand struct {
	UserID             uint
	CurrentPassword    string
	NewPassword        string
	NewPasswordConfirm string
	CurrentSessionID   string
}

// ChangePasswordUseCase swaps the credential hash and revokes every other
// live session, so a stolen refresh token does not survive a password change.
type ChangePasswordUseCase struct {
	userRepo    user.Repository
	sessionRepo user.SessionRepository
	hasher      PasswordHasher
	logger      logger.Interface
}

func NewChangePasswordUseCase(
	userRepo user.Repository,
	sessionRepo user.SessionRepository,
	hasher PasswordHasher,
	logger logger.Interface,
) *ChangePasswordUseCase {
	return &ChangePasswordUseCase{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		hasher:      hasher,
		logger:      logger,
	}
}

func (uc *ChangePasswordUseCase) Execute(ctx context.Context, cmd ChangePasswordCommand) error {
	if cmd.CurrentPassword == "" || cmd.NewPassword == "" {
		return errors.NewValidationError("current and new password are required")
	}
	if cmd.NewPassword != cmd.NewPasswordConfirm {
		return errors.NewPasswordMismatchError()
	}
	if len(cmd.NewPassword) < 8 {
		return errors.NewValidationError("password must be at least 8 characters")
	}

	target, err := uc.userRepo.GetByID(ctx, cmd.UserID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if target == nil {
		return errors.NewNotFoundError("user not found")
	}

	if err := uc.hasher.Verify(cmd.CurrentPassword, target.PasswordHash()); err != nil {
		return errors.NewPasswordWrongError()
	}

	hash, err := uc.hasher.Hash(cmd.NewPassword)
	if err != nil {
		uc.logger.Errorw("failed to hash password", "error", err)
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := target.SetPasswordHash(hash); err != nil {
		return errors.NewValidationError(err.Error())
	}

	if err := uc.userRepo.Update(ctx, target); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	// Kill every session; the caller re-authenticates with the new password
	if err := uc.sessionRepo.RevokeAllByUserID(ctx, cmd.UserID); err != nil {
		uc.logger.Errorw("failed to revoke sessions after password change",
			"user_id", target.SID(), "error", err)
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	uc.logger.Infow("password changed", "user_id", target.SID())
	return nil
}
