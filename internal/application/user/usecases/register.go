package usecases

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/entry-inc/entry/internal/domain/user"
	"github.com/entry-inc/entry/internal/shared/errors"
	"github.com/entry-inc/entry/internal/shared/logger"
)

type RegisterUserCommand struct {
	Email           string
	Username        string
	Forename        string
	Surname         string
	Password        string
	PasswordConfirm string
}

type RegisterUserResult struct {
	User *UserDTO
}

// RegisterUserUseCase creates a new principal. Normalization, uniqueness
// checks, and hashing are explicit steps here rather than save-time hooks.
type RegisterUserUseCase struct {
	userRepo user.Repository
	hasher   PasswordHasher
	logger   logger.Interface
}

func NewRegisterUserUseCase(userRepo user.Repository, hasher PasswordHasher, logger logger.Interface) *RegisterUserUseCase {
	return &RegisterUserUseCase{
		userRepo: userRepo,
		hasher:   hasher,
		logger:   logger,
	}
}

func (uc *RegisterUserUseCase) Execute(ctx context.Context, cmd RegisterUserCommand) (*RegisterUserResult, error) {
	if cmd.Email == "" {
		return nil, errors.NewValidationError("email is required")
	}
	if cmd.Password == "" {
		return nil, errors.NewValidationError("password is required")
	}
	if cmd.Password != cmd.PasswordConfirm {
		return nil, errors.NewPasswordMismatchError()
	}
	if len(cmd.Password) < 8 {
		return nil, errors.NewValidationError("password must be at least 8 characters")
	}

	email := user.NormalizeEmail(cmd.Email)
	username := user.NormalizeUsername(cmd.Username)

	if err := user.ValidateEmail(email); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := user.ValidateUsername(username); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	emailTaken, err := uc.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		uc.logger.Errorw("failed to check email uniqueness", "error", err)
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if emailTaken {
		return nil, errors.NewConflictError("email is already registered")
	}

	usernameTaken, err := uc.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		uc.logger.Errorw("failed to check username uniqueness", "error", err)
		return nil, fmt.Errorf("failed to check username uniqueness: %w", err)
	}
	if usernameTaken {
		return nil, errors.NewConflictError("username is already taken")
	}

	hash, err := uc.hasher.Hash(cmd.Password)
	if err != nil {
		uc.logger.Errorw("failed to hash password", "error", err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := user.NewUser(email, username, cmd.Forename, cmd.Surname, hash)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	verificationToken, err := generateVerificationToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification token: %w", err)
	}
	newUser.SetEmailVerificationToken(verificationToken)

	if err := uc.userRepo.Create(ctx, newUser); err != nil {
		if errors.IsDuplicateError(err) {
			return nil, errors.NewConflictError("email or username is already registered")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	uc.logger.Infow("user registered", "user_id", newUser.SID(), "username", newUser.Username())

	return &RegisterUserResult{User: ToUserDTO(newUser)}, nil
}

func generateVerificationToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
