package middleware

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/entry-inc/entry/internal/application/user/usecases"
	"github.com/entry-inc/entry/internal/domain/user"
	"github.com/entry-inc/entry/internal/infrastructure/auth"
	"github.com/entry-inc/entry/internal/shared/authorization"
	"github.com/entry-inc/entry/internal/shared/config"
	"github.com/entry-inc/entry/internal/shared/errors"
	"github.com/entry-inc/entry/internal/shared/logger"
)

// memSessionRepo is an in-memory session store with the same conditional
// revoke semantics as the database-backed implementation.
type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*user.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: map[string]*user.Session{}}
}

func (r *memSessionRepo) Create(ctx context.Context, s *user.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.sessions[s.ID] = &cp
	return nil
}

func (r *memSessionRepo) GetByID(ctx context.Context, sessionID string) (*user.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, errors.NewNotFoundError("session not found")
	}
	cp := *s
	return &cp, nil
}

func (r *memSessionRepo) GetActiveByUserID(ctx context.Context, userID uint) ([]*user.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*user.Session
	for _, s := range r.sessions {
		if s.UserID == userID && s.IsLive() {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memSessionRepo) Revoke(ctx context.Context, sessionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok || s.IsRevoked {
		return false, nil
	}
	s.IsRevoked = true
	return true, nil
}

func (r *memSessionRepo) RevokeAllByUserID(ctx context.Context, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.UserID == userID {
			s.IsRevoked = true
		}
	}
	return nil
}

func (r *memSessionRepo) DeleteExpired(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		if s.IsExpired() {
			delete(r.sessions, id)
		}
	}
	return nil
}

// memUserRepo holds a single fixed user, which is all the middleware needs.
type memUserRepo struct {
	user *user.User
}

func (r *memUserRepo) Create(ctx context.Context, u *user.User) error { return nil }
func (r *memUserRepo) Update(ctx context.Context, u *user.User) error { return nil }
func (r *memUserRepo) Delete(ctx context.Context, id uint) error      { return nil }

func (r *memUserRepo) GetByID(ctx context.Context, id uint) (*user.User, error) {
	if r.user != nil && r.user.ID() == id {
		return r.user, nil
	}
	return nil, nil
}

func (r *memUserRepo) GetBySID(ctx context.Context, sid string) (*user.User, error) {
	if r.user != nil && r.user.SID() == sid {
		return r.user, nil
	}
	return nil, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if r.user != nil && r.user.Email() == email {
		return r.user, nil
	}
	return nil, nil
}

func (r *memUserRepo) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	if r.user != nil && r.user.Username() == username {
		return r.user, nil
	}
	return nil, nil
}

func (r *memUserRepo) GetByVerificationToken(ctx context.Context, token string) (*user.User, error) {
	return nil, nil
}

func (r *memUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.user != nil && r.user.Email() == email, nil
}

func (r *memUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.user != nil && r.user.Username() == username, nil
}

func (r *memUserRepo) List(ctx context.Context, filter user.ListFilter) ([]*user.User, int64, error) {
	if r.user == nil {
		return nil, 0, nil
	}
	return []*user.User{r.user}, 1, nil
}

// tokenServiceAdapter bridges the JWT service to the use-case port the same
// way the router wiring does.
type tokenServiceAdapter struct {
	svc *auth.JWTService
}

func (a *tokenServiceAdapter) Generate(userSID string, sessionID string, role authorization.UserRole) (*usecases.TokenPair, error) {
	pair, err := a.svc.Generate(userSID, sessionID, role)
	if err != nil {
		return nil, err
	}
	return &usecases.TokenPair{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

func (a *tokenServiceAdapter) VerifyRefresh(token string) (*usecases.TokenClaims, error) {
	claims, err := a.svc.VerifyRefresh(token)
	if err != nil {
		return nil, err
	}
	return &usecases.TokenClaims{
		UserSID:   claims.UserSID,
		SessionID: claims.SessionID,
		Role:      claims.Role,
	}, nil
}

func (a *tokenServiceAdapter) RefreshExpiry() time.Time { return a.svc.RefreshExpiry() }
func (a *tokenServiceAdapter) AccessExpMinutes() int    { return a.svc.AccessExpMinutes() }
func (a *tokenServiceAdapter) RefreshExpDays() int      { return a.svc.RefreshExpDays() }

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...any)                    {}
func (nopLogger) Info(msg string, args ...any)                     {}
func (nopLogger) Warn(msg string, args ...any)                     {}
func (nopLogger) Error(msg string, args ...any)                    {}
func (nopLogger) Fatal(msg string, args ...any)                    {}
func (n nopLogger) With(args ...any) logger.Interface              { return n }
func (n nopLogger) Named(name string) logger.Interface             { return n }
func (nopLogger) Debugw(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Infow(msg string, keysAndValues ...interface{})   {}
func (nopLogger) Warnw(msg string, keysAndValues ...interface{})   {}
func (nopLogger) Errorw(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Fatalw(msg string, keysAndValues ...interface{})  {}

// authFixture wires a real JWT service, real use cases, and in-memory stores
// behind the middleware under test.
type authFixture struct {
	middleware  *AuthMiddleware
	gates       *GateMiddleware
	jwtSvc      *auth.JWTService
	expiredSvc  *auth.JWTService
	sessionRepo *memSessionRepo
	userRepo    *memUserRepo
	cookieCfg   config.CookieConfig
	user        *user.User
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	jwtSvc := auth.NewJWTService(key, &key.PublicKey, "entry", 3, 30)
	// Mints already-expired access tokens with the same key and issuer
	expiredSvc := auth.NewJWTService(key, &key.PublicKey, "entry", -1, 30)

	u, err := user.ReconstructUser(
		1, "usr_abc123def456", "alice@example.com", "alice", "Alice", "Smith",
		"hashed", authorization.RoleUser, true, true, nil,
		time.Now().UTC(), time.Now().UTC(),
	)
	require.NoError(t, err)

	userRepo := &memUserRepo{user: u}
	sessionRepo := newMemSessionRepo()

	cookieCfg := config.CookieConfig{Path: "/", Secret: "test-secret"}

	tokens := &tokenServiceAdapter{svc: jwtSvc}
	rotateUC := usecases.NewRotateTokensUseCase(userRepo, sessionRepo, tokens, nopLogger{})
	logoutUC := usecases.NewLogoutUseCase(sessionRepo, nopLogger{})

	return &authFixture{
		middleware:  NewAuthMiddleware(jwtSvc, rotateUC, logoutUC, cookieCfg, nopLogger{}),
		gates:       NewGateMiddleware(userRepo, sessionRepo, cookieCfg, nopLogger{}),
		jwtSvc:      jwtSvc,
		expiredSvc:  expiredSvc,
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		cookieCfg:   cookieCfg,
		user:        u,
	}
}

// seedSession stores a live refresh-token record and returns its ID.
func (f *authFixture) seedSession(t *testing.T, sessionID string) string {
	t.Helper()
	pair, err := f.jwtSvc.Generate(f.user.SID(), sessionID, f.user.Role())
	require.NoError(t, err)

	s, err := user.NewSessionWithID(
		sessionID, f.user.ID(), f.user.SID(), pair.RefreshToken,
		"203.0.113.9", "test-agent",
		time.Now().UTC().Add(30*24*time.Hour),
	)
	require.NoError(t, err)
	require.NoError(t, f.sessionRepo.Create(context.Background(), s))
	return sessionID
}
