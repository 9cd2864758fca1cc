package usecases

import (
	"context"
	"fmt"

	"github.com/entry-inc/entry/internal/domain/user"
	"github.com/entry-inc/entry/internal/shared/logger"
)

type LogoutCommand struct {
	SessionID string
	// Forced marks a logout the server initiated (invalid or reused
	// credential) rather than one the user asked for.
	Forced bool
}

type LogoutResult struct {
	// Revoked reports whether this call flipped the record. False means
	// the record was already revoked or gone, which is still a success:
	// logout never hard-fails because the session was already dead.
	Revoked bool
	Forced  bool
}

// LogoutUseCase revokes the caller's refresh-token record. Idempotent by
// design: revoking twice, or revoking a vanished record, still succeeds.
type LogoutUseCase struct {
	sessionRepo user.SessionRepository
	logger      logger.Interface
}

func NewLogoutUseCase(sessionRepo user.SessionRepository, logger logger.Interface) *LogoutUseCase {
	return &LogoutUseCase{
		sessionRepo: sessionRepo,
		logger:      logger,
	}
}

func (uc *LogoutUseCase) Execute(ctx context.Context, cmd LogoutCommand) (*LogoutResult, error) {
	if cmd.SessionID == "" {
		// Nothing to revoke; cookies are cleared by the transport layer
		return &LogoutResult{Revoked: false, Forced: cmd.Forced}, nil
	}

	revoked, err := uc.sessionRepo.Revoke(ctx, cmd.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to revoke session: %w", err)
	}

	uc.logger.Infow("session logged out",
		"session_id", cmd.SessionID,
		"revoked", revoked,
		"forced", cmd.Forced)

	return &LogoutResult{Revoked: revoked, Forced: cmd.Forced}, nil
}
