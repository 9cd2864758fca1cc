package usecases

import (
	"context"
	"time"

	"github.com/entry-inc/entry/internal/domain/user"
	"github.com/entry-inc/entry/internal/shared/authorization"
	"github.com/entry-inc/entry/internal/shared/logger"
)

type mockUserRepository struct {
	CreateFunc                 func(ctx context.Context, u *user.User) error
	GetByIDFunc                func(ctx context.Context, id uint) (*user.User, error)
	GetBySIDFunc               func(ctx context.Context, sid string) (*user.User, error)
	GetByEmailFunc             func(ctx context.Context, email string) (*user.User, error)
	GetByUsernameFunc          func(ctx context.Context, username string) (*user.User, error)
	GetByVerificationTokenFunc func(ctx context.Context, token string) (*user.User, error)
	ExistsByEmailFunc          func(ctx context.Context, email string) (bool, error)
	ExistsByUsernameFunc       func(ctx context.Context, username string) (bool, error)
	UpdateFunc                 func(ctx context.Context, u *user.User) error
	DeleteFunc                 func(ctx context.Context, id uint) error
	ListFunc                   func(ctx context.Context, filter user.ListFilter) ([]*user.User, int64, error)
}

func (m *mockUserRepository) Create(ctx context.Context, u *user.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, u)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id uint) (*user.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepository) GetBySID(ctx context.Context, sid string) (*user.User, error) {
	if m.GetBySIDFunc != nil {
		return m.GetBySIDFunc(ctx, sid)
	}
	return nil, nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, nil
}

func (m *mockUserRepository) GetByVerificationToken(ctx context.Context, token string) (*user.User, error) {
	if m.GetByVerificationTokenFunc != nil {
		return m.GetByVerificationTokenFunc(ctx, token)
	}
	return nil, nil
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.ExistsByEmailFunc != nil {
		return m.ExistsByEmailFunc(ctx, email)
	}
	return false, nil
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.ExistsByUsernameFunc != nil {
		return m.ExistsByUsernameFunc(ctx, username)
	}
	return false, nil
}

func (m *mockUserRepository) Update(ctx context.Context, u *user.User) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, u)
	}
	return nil
}

func (m *mockUserRepository) Delete(ctx context.Context, id uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *mockUserRepository) List(ctx context.Context, filter user.ListFilter) ([]*user.User, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, 0, nil
}

type mockSessionRepository struct {
	CreateFunc            func(ctx context.Context, s *user.Session) error
	GetByIDFunc           func(ctx context.Context, sessionID string) (*user.Session, error)
	GetActiveByUserIDFunc func(ctx context.Context, userID uint) ([]*user.Session, error)
	RevokeFunc            func(ctx context.Context, sessionID string) (bool, error)
	RevokeAllByUserIDFunc func(ctx context.Context, userID uint) error
	DeleteExpiredFunc     func(ctx context.Context) error
}

func (m *mockSessionRepository) Create(ctx context.Context, s *user.Session) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, s)
	}
	return nil
}

func (m *mockSessionRepository) GetByID(ctx context.Context, sessionID string) (*user.Session, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, sessionID)
	}
	return nil, nil
}

func (m *mockSessionRepository) GetActiveByUserID(ctx context.Context, userID uint) ([]*user.Session, error) {
	if m.GetActiveByUserIDFunc != nil {
		return m.GetActiveByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockSessionRepository) Revoke(ctx context.Context, sessionID string) (bool, error) {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, sessionID)
	}
	return true, nil
}

func (m *mockSessionRepository) RevokeAllByUserID(ctx context.Context, userID uint) error {
	if m.RevokeAllByUserIDFunc != nil {
		return m.RevokeAllByUserIDFunc(ctx, userID)
	}
	return nil
}

func (m *mockSessionRepository) DeleteExpired(ctx context.Context) error {
	if m.DeleteExpiredFunc != nil {
		return m.DeleteExpiredFunc(ctx)
	}
	return nil
}

type mockTokenService struct {
	GenerateFunc      func(userSID string, sessionID string, role authorization.UserRole) (*TokenPair, error)
	VerifyRefreshFunc func(token string) (*TokenClaims, error)
	RefreshExpiryFunc func() time.Time
}

func (m *mockTokenService) Generate(userSID string, sessionID string, role authorization.UserRole) (*TokenPair, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(userSID, sessionID, role)
	}
	return &TokenPair{
		AccessToken:  "access-" + sessionID,
		RefreshToken: "refresh-" + sessionID,
		ExpiresIn:    180,
	}, nil
}

func (m *mockTokenService) VerifyRefresh(token string) (*TokenClaims, error) {
	if m.VerifyRefreshFunc != nil {
		return m.VerifyRefreshFunc(token)
	}
	return &TokenClaims{}, nil
}

func (m *mockTokenService) RefreshExpiry() time.Time {
	if m.RefreshExpiryFunc != nil {
		return m.RefreshExpiryFunc()
	}
	return time.Now().Add(30 * 24 * time.Hour)
}

func (m *mockTokenService) AccessExpMinutes() int { return 3 }
func (m *mockTokenService) RefreshExpDays() int   { return 30 }

type mockPasswordHasher struct {
	HashFunc   func(password string) (string, error)
	VerifyFunc func(password, hash string) error
}

func (m *mockPasswordHasher) Hash(password string) (string, error) {
	if m.HashFunc != nil {
		return m.HashFunc(password)
	}
	return "hashed:" + password, nil
}

func (m *mockPasswordHasher) Verify(password, hash string) error {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(password, hash)
	}
	return nil
}

type mockLogger struct{}

func (m *mockLogger) Debug(msg string, args ...any)  {}
func (m *mockLogger) Info(msg string, args ...any)   {}
func (m *mockLogger) Warn(msg string, args ...any)   {}
func (m *mockLogger) Error(msg string, args ...any)  {}
func (m *mockLogger) Fatal(msg string, args ...any)  {}
func (m *mockLogger) With(args ...any) logger.Interface   { return m }
func (m *mockLogger) Named(name string) logger.Interface  { return m }
func (m *mockLogger) Debugw(msg string, keysAndValues ...interface{}) {}
func (m *mockLogger) Infow(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Warnw(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Errorw(msg string, keysAndValues ...interface{}) {}
func (m *mockLogger) Fatalw(msg string, keysAndValues ...interface{}) {}
