package usecases

import (
	"context"
	"fmt"

	"github.com/entry-inc/entry/internal/domain/user"
	"github.com/entry-inc/entry/internal/shared/errors"
	"github.com/entry-inc/entry/internal/shared/id"
	"github.com/entry-inc/entry/internal/shared/logger"
)

type LoginCommand struct {
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

type LoginResult struct {
	User           *UserDTO
	AccessToken    string
	RefreshTokenID string
	ExpiresIn      int64
}

// LoginUseCase verifies credentials, mints a token pair, and persists the
// refresh-token record. The refresh token itself stays server-side; clients
// only ever hold its record ID.
type LoginUseCase struct {
	userRepo    user.Repository
	sessionRepo user.SessionRepository
	hasher      PasswordHasher
	tokens      TokenService
	logger      logger.Interface
}

func NewLoginUseCase(
	userRepo user.Repository,
	sessionRepo user.SessionRepository,
	hasher PasswordHasher,
	tokens TokenService,
	logger logger.Interface,
) *LoginUseCase {
	return &LoginUseCase{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		hasher:      hasher,
		tokens:      tokens,
		logger:      logger,
	}
}

func (uc *LoginUseCase) Execute(ctx context.Context, cmd LoginCommand) (*LoginResult, error) {
	if cmd.Email == "" {
		return nil, errors.NewValidationError("email is required")
	}
	if cmd.Password == "" {
		return nil, errors.NewValidationError("password is required")
	}
	if cmd.IPAddress == "" {
		return nil, errors.NewClientIPNotFoundError()
	}

	email := user.NormalizeEmail(cmd.Email)

	existingUser, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		uc.logger.Errorw("failed to get user by email", "error", err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if existingUser == nil {
		return nil, errors.NewUserNotFoundError()
	}

	if err := uc.hasher.Verify(cmd.Password, existingUser.PasswordHash()); err != nil {
		return nil, errors.NewPasswordWrongError()
	}

	// The session ID is minted first so the token claims can carry it
	sessionID, err := id.NewSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	pair, err := uc.tokens.Generate(existingUser.SID(), sessionID, existingUser.Role())
	if err != nil {
		uc.logger.Errorw("failed to generate token pair", "error", err)
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	session, err := user.NewSessionWithID(
		sessionID,
		existingUser.ID(),
		existingUser.SID(),
		pair.RefreshToken,
		cmd.IPAddress,
		cmd.UserAgent,
		uc.tokens.RefreshExpiry(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err := uc.sessionRepo.Create(ctx, session); err != nil {
		uc.logger.Errorw("failed to persist session", "error", err)
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	uc.logger.Infow("user logged in",
		"user_id", existingUser.SID(),
		"session_id", sessionID,
		"ip", cmd.IPAddress)

	return &LoginResult{
		User:           ToUserDTO(existingUser),
		AccessToken:    pair.AccessToken,
		RefreshTokenID: sessionID,
		ExpiresIn:      pair.ExpiresIn,
	}, nil
}
