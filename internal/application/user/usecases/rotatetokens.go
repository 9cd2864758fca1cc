package usecases

import (
	"context"
	"fmt"

	"github.com/entry-inc/entry/internal/domain/user"
	"github.com/entry-inc/entry/internal/shared/errors"
	"github.com/entry-inc/entry/internal/shared/id"
	"github.com/entry-inc/entry/internal/shared/logger"
)

type RotateTokensCommand struct {
	RefreshTokenID string
	// OwnerSID is the owner the caller claims via the userId cookie; the
	// record must belong to exactly this principal.
	OwnerSID  string
	IPAddress string
	UserAgent string
}

type RotateTokensResult struct {
	User           *UserDTO
	AccessToken    string
	RefreshTokenID string
	ExpiresIn      int64
}

// RotateTokensUseCase exchanges a live refresh-token record for a fresh
// access/refresh pair. The conditional revoke is the one-shot gate: of any
// number of concurrent rotations off the same record, exactly one wins; the
// rest see the record as already used and are forced out.
type RotateTokensUseCase struct {
	userRepo    user.Repository
	sessionRepo user.SessionRepository
	tokens      TokenService
	logger      logger.Interface
}

func NewRotateTokensUseCase(
	userRepo user.Repository,
	sessionRepo user.SessionRepository,
	tokens TokenService,
	logger logger.Interface,
) *RotateTokensUseCase {
	return &RotateTokensUseCase{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		tokens:      tokens,
		logger:      logger,
	}
}

func (uc *RotateTokensUseCase) Execute(ctx context.Context, cmd RotateTokensCommand) (*RotateTokensResult, error) {
	if cmd.RefreshTokenID == "" {
		return nil, errors.NewRouteProtectedError()
	}
	if cmd.OwnerSID == "" {
		return nil, errors.NewRouteProtectedError()
	}
	if cmd.IPAddress == "" {
		return nil, errors.NewClientIPNotFoundError()
	}

	session, err := uc.sessionRepo.GetByID(ctx, cmd.RefreshTokenID)
	if err != nil {
		if errors.IsNotFoundError(err) {
			return nil, errors.NewRefreshTokenRevokedError()
		}
		// Storage unavailable during rotation fails the request closed
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	// The record is only active for the owner who created it; a foreign
	// owner sees no record at all.
	if session.UserSID != cmd.OwnerSID {
		uc.logger.Warnw("rotation attempted against a foreign session record",
			"session_id", session.ID,
			"record_owner", session.UserSID,
			"claimed_owner", cmd.OwnerSID,
			"ip", cmd.IPAddress)
		return nil, errors.NewRefreshTokenRevokedError()
	}

	if session.IsRevoked {
		uc.logger.Warnw("rotation attempted with revoked refresh token",
			"session_id", session.ID,
			"user_id", session.UserSID,
			"ip", cmd.IPAddress)
		return nil, errors.NewRefreshTokenRevokedError()
	}
	if session.IsExpired() {
		return nil, errors.NewRefreshTokenRevokedError()
	}

	// The stored refresh token must still verify; a corrupt or foreign
	// token in the store is treated the same as a consumed one.
	claims, err := uc.tokens.VerifyRefresh(session.Token)
	if err != nil {
		uc.logger.Warnw("stored refresh token failed verification",
			"session_id", session.ID,
			"error", err)
		return nil, errors.NewRefreshTokenRevokedError()
	}
	if claims.UserSID != session.UserSID {
		return nil, errors.NewRefreshTokenRevokedError()
	}

	// Revoke-before-reissue. Losing this conditional write means another
	// rotation already consumed the record.
	won, err := uc.sessionRepo.Revoke(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to revoke session: %w", err)
	}
	if !won {
		uc.logger.Warnw("lost rotation race, token already consumed",
			"session_id", session.ID,
			"user_id", session.UserSID)
		return nil, errors.NewRefreshTokenRevokedError()
	}

	owner, err := uc.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if owner == nil {
		return nil, errors.NewNotFoundError("user not found")
	}

	newSessionID, err := id.NewSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	pair, err := uc.tokens.Generate(owner.SID(), newSessionID, owner.Role())
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	successor, err := user.NewSessionWithID(
		newSessionID,
		owner.ID(),
		owner.SID(),
		pair.RefreshToken,
		cmd.IPAddress,
		cmd.UserAgent,
		uc.tokens.RefreshExpiry(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err := uc.sessionRepo.Create(ctx, successor); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	uc.logger.Infow("tokens rotated",
		"user_id", owner.SID(),
		"old_session_id", session.ID,
		"new_session_id", newSessionID)

	return &RotateTokensResult{
		User:           ToUserDTO(owner),
		AccessToken:    pair.AccessToken,
		RefreshTokenID: newSessionID,
		ExpiresIn:      pair.ExpiresIn,
	}, nil
}
