package usecases

import (
	"context"
	"fmt"

	"github.com/entry-inc/entry/internal/domain/user"
	"github.com/entry-inc/entry/internal/shared/errors"
	"github.com/entry-inc/entry/internal/shared/logger"
)

type RevokeSessionCommand struct {
	UserID           uint
	SessionID        string
	CurrentSessionID string
}

// RevokeSessionUseCase lets a user kill one of their other live sessions.
// The current session is off limits; ending it is a logout, not a revoke.
type RevokeSessionUseCase struct {
	sessionRepo user.SessionRepository
	logger      logger.Interface
}

func NewRevokeSessionUseCase(sessionRepo user.SessionRepository, logger logger.Interface) *RevokeSessionUseCase {
	return &RevokeSessionUseCase{
		sessionRepo: sessionRepo,
		logger:      logger,
	}
}

func (uc *RevokeSessionUseCase) Execute(ctx context.Context, cmd RevokeSessionCommand) error {
	if cmd.SessionID == "" {
		return errors.NewValidationError("session id is required")
	}
	if cmd.SessionID == cmd.CurrentSessionID {
		return errors.NewRefreshTokenCurrentRevokeError()
	}

	session, err := uc.sessionRepo.GetByID(ctx, cmd.SessionID)
	if err != nil {
		if errors.IsNotFoundError(err) {
			return errors.NewRefreshTokenNotFoundError()
		}
		return fmt.Errorf("failed to load session: %w", err)
	}

	// Users can only revoke their own sessions; report foreign IDs as
	// missing rather than confirming they exist
	if session.UserID != cmd.UserID {
		return errors.NewRefreshTokenNotFoundError()
	}

	if _, err := uc.sessionRepo.Revoke(ctx, cmd.SessionID); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	uc.logger.Infow("session revoked",
		"session_id", cmd.SessionID,
		"by_session", cmd.CurrentSessionID)

	return nil
}
