package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entry-inc/entry/internal/application/user/usecases"
	"github.com/entry-inc/entry/internal/domain/user"
	"github.com/entry-inc/entry/internal/shared/authorization"
	"github.com/entry-inc/entry/internal/shared/config"
	"github.com/entry-inc/entry/internal/shared/constants"
	"github.com/entry-inc/entry/internal/shared/errors"
	"github.com/entry-inc/entry/internal/shared/logger"
	"github.com/entry-inc/entry/internal/shared/utils"
)

// =====================================================================
// In-memory stores and service fakes
// =====================================================================

type memoryUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*user.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{nextID: 1, users: map[uint]*user.User{}}
}

func (r *memoryUserRepo) Create(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.SetID(r.nextID)
	r.users[r.nextID] = u
	r.nextID++
	return nil
}

func (r *memoryUserRepo) GetByID(ctx context.Context, id uint) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id], nil
}

func (r *memoryUserRepo) GetBySID(ctx context.Context, sid string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.SID() == sid {
			return u, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email() == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepo) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username() == username {
			return u, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepo) GetByVerificationToken(ctx context.Context, token string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if t := u.EmailVerificationToken(); t != nil && *t == token {
			return u, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	u, _ := r.GetByEmail(ctx, email)
	return u != nil, nil
}

func (r *memoryUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	u, _ := r.GetByUsername(ctx, username)
	return u != nil, nil
}

func (r *memoryUserRepo) Update(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID()] = u
	return nil
}

func (r *memoryUserRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *memoryUserRepo) List(ctx context.Context, filter user.ListFilter) ([]*user.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*user.User
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

type memorySessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*user.Session
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{sessions: map[string]*user.Session{}}
}

func (r *memorySessionRepo) Create(ctx context.Context, s *user.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.sessions[s.ID] = &cp
	return nil
}

func (r *memorySessionRepo) GetByID(ctx context.Context, sessionID string) (*user.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, errors.NewNotFoundError("session not found")
	}
	cp := *s
	return &cp, nil
}

func (r *memorySessionRepo) GetActiveByUserID(ctx context.Context, userID uint) ([]*user.Session, error) {
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

func (r *memorySessionRepo) Revoke(ctx context.Context, sessionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok || s.IsRevoked {
		return false, nil
	}
	s.IsRevoked = true
	return true, nil
}

func (r *memorySessionRepo) RevokeAllByUserID(ctx context.Context, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.UserID == userID {
			s.IsRevoked = true
		}
	}
	return nil
}

func (r *memorySessionRepo) DeleteExpired(ctx context.Context) error { return nil }

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (fakeHasher) Verify(password, hash string) error {
	if hash != "hashed:"+password {
		return fmt.Errorf("mismatch")
	}
	return nil
}

type fakeTokens struct{}

func (fakeTokens) Generate(userSID string, sessionID string, role authorization.UserRole) (*usecases.TokenPair, error) {
	return &usecases.TokenPair{
		AccessToken:  "access-" + sessionID,
		RefreshToken: "refresh-" + sessionID,
		ExpiresIn:    180,
	}, nil
}

func (fakeTokens) VerifyRefresh(token string) (*usecases.TokenClaims, error) {
	sessionID := strings.TrimPrefix(token, "refresh-")
	return &usecases.TokenClaims{SessionID: sessionID}, nil
}

func (fakeTokens) RefreshExpiry() time.Time { return time.Now().UTC().Add(30 * 24 * time.Hour) }
func (fakeTokens) AccessExpMinutes() int    { return 3 }
func (fakeTokens) RefreshExpDays() int      { return 30 }

// =====================================================================
// Fixture
// =====================================================================

type handlerFixture struct {
	auth        *AuthHandler
	users       *UserHandler
	userRepo    *memoryUserRepo
	sessionRepo *memorySessionRepo
	cookieCfg   config.CookieConfig
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
	userRepo := newMemoryUserRepo()
	sessionRepo := newMemorySessionRepo()
	hasher := fakeHasher{}
	tokens := fakeTokens{}
	resolver := NewUserResolver(userRepo)

	cookieCfg := config.CookieConfig{Path: "/", Secret: "test-secret"}
	jwtCfg := config.JWTConfig{Issuer: "entry", AccessExpMinutes: 3, RefreshExpDays: 30}

	auth := NewAuthHandler(
		usecases.NewLoginUseCase(userRepo, sessionRepo, hasher, tokens, log),
		usecases.NewLogoutUseCase(sessionRepo, log),
		usecases.NewListSessionsUseCase(sessionRepo, log),
		usecases.NewRevokeSessionUseCase(sessionRepo, log),
		usecases.NewVerifyEmailUseCase(userRepo, log),
		usecases.NewChangePasswordUseCase(userRepo, sessionRepo, hasher, log),
		resolver,
		log,
		cookieCfg,
		jwtCfg,
	)
	users := NewUserHandler(
		usecases.NewRegisterUserUseCase(userRepo, hasher, log),
		usecases.NewGetUserUseCase(userRepo, log),
		usecases.NewListUsersUseCase(userRepo, log),
		usecases.NewUpdateUserUseCase(userRepo, log),
		resolver,
		log,
	)

	return &handlerFixture{
		auth:        auth,
		users:       users,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		cookieCfg:   cookieCfg,
	}
}

// seedUser stores a verified active account with the given password
func (f *handlerFixture) seedUser(t *testing.T, email, username, password string) *user.User {
	t.Helper()
	u, err := user.NewUser(email, username, "Test", "User", "hashed:"+password)
	require.NoError(t, err)
	require.NoError(t, u.VerifyEmail())
	require.NoError(t, f.userRepo.Create(context.Background(), u))
	return u
}

type apiResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
	Error   struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func cookieByName(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rr.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

// =====================================================================
// Login / Logout
// =====================================================================

func TestAuthHandler_Login(t *testing.T) {
	t.Run("success establishes the cookie triple", func(t *testing.T) {
		f := newHandlerFixture(t)
		u := f.seedUser(t, "alice@example.com", "alice", "secret123")

		engine := gin.New()
		engine.POST("/auth/login", f.auth.Login)

		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			strings.NewReader(`{"email": "alice@example.com", "password": "secret123"}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		engine.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		resp := decodeResponse(t, rr)
		assert.True(t, resp.Success)
		userData, ok := resp.Data["user"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, u.SID(), userData["id"])
		assert.NotContains(t, rr.Body.String(), "hashed:", "password hash must never leak")

		userCookie := cookieByName(rr, utils.UserIDCookie)
		require.NotNil(t, userCookie)
		assert.Equal(t, u.SID(), userCookie.Value)
		assert.False(t, userCookie.HttpOnly, "userId cookie is client-readable")

		accessCookie := cookieByName(rr, utils.AccessTokenCookie)
		require.NotNil(t, accessCookie)
		assert.True(t, accessCookie.HttpOnly)
		_, err := utils.VerifyCookieValue(accessCookie.Value, f.cookieCfg.Secret)
		assert.NoError(t, err, "accessToken cookie must be signed")

		refreshCookie := cookieByName(rr, utils.RefreshTokenIDCookie)
		require.NotNil(t, refreshCookie)
		assert.True(t, refreshCookie.HttpOnly)
		sessionID, err := utils.VerifyCookieValue(refreshCookie.Value, f.cookieCfg.Secret)
		require.NoError(t, err)

		stored, err := f.sessionRepo.GetByID(context.Background(), sessionID)
		require.NoError(t, err)
		assert.Equal(t, u.ID(), stored.UserID)
		assert.Equal(t, "refresh-"+sessionID, stored.Token, "record stores the refresh token itself")
	})

	t.Run("wrong password sets no cookies", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.seedUser(t, "alice@example.com", "alice", "secret123")

		engine := gin.New()
		engine.POST("/auth/login", f.auth.Login)

		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			strings.NewReader(`{"email": "alice@example.com", "password": "wrong"}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		engine.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "password_wrong")
		assert.Empty(t, rr.Result().Cookies())
	})

	t.Run("unknown email reported distinctly", func(t *testing.T) {
		f := newHandlerFixture(t)

		engine := gin.New()
		engine.POST("/auth/login", f.auth.Login)

		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			strings.NewReader(`{"email": "nobody@example.com", "password": "secret123"}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		engine.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Contains(t, rr.Body.String(), "user_not_found")
		assert.Empty(t, rr.Result().Cookies())
	})

	t.Run("malformed body rejected", func(t *testing.T) {
		f := newHandlerFixture(t)

		engine := gin.New()
		engine.POST("/auth/login", f.auth.Login)

		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("{not json"))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		engine.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	f := newHandlerFixture(t)
	u := f.seedUser(t, "alice@example.com", "alice", "secret123")

	s, err := user.NewSessionWithID("ses_logout1", u.ID(), u.SID(), "refresh-ses_logout1",
		"203.0.113.9", "agent", time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, f.sessionRepo.Create(context.Background(), s))

	engine := gin.New()
	engine.POST("/auth/logout", f.auth.Logout)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{
		Name:  utils.RefreshTokenIDCookie,
		Value: utils.SignCookieValue("ses_logout1", f.cookieCfg.Secret),
	})
	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeResponse(t, rr)
	assert.Equal(t, "logged out", resp.Message)
	assert.Equal(t, false, resp.Data["forced"])

	stored, err := f.sessionRepo.GetByID(context.Background(), "ses_logout1")
	require.NoError(t, err)
	assert.True(t, stored.IsRevoked)

	for _, name := range []string{utils.UserIDCookie, utils.AccessTokenCookie, utils.RefreshTokenIDCookie} {
		ck := cookieByName(rr, name)
		require.NotNil(t, ck, "cookie %s must be cleared", name)
		assert.Empty(t, ck.Value)
		assert.Negative(t, ck.MaxAge)
	}
}

// =====================================================================
// Units (active sessions)
// =====================================================================

// attachCaller simulates the context the auth middleware leaves behind
func attachCaller(sid, refreshTokenID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(constants.ContextKeyUserSID, sid)
		c.Set(constants.ContextKeyRefreshTokenID, refreshTokenID)
		c.Next()
	}
}

func TestAuthHandler_ListUnits(t *testing.T) {
	f := newHandlerFixture(t)
	u := f.seedUser(t, "alice@example.com", "alice", "secret123")

	for _, sid := range []string{"ses_unita", "ses_unitb"} {
		s, err := user.NewSessionWithID(sid, u.ID(), u.SID(), "refresh-"+sid,
			"203.0.113.9", "agent", time.Now().UTC().Add(time.Hour))
		require.NoError(t, err)
		require.NoError(t, f.sessionRepo.Create(context.Background(), s))
	}

	engine := gin.New()
	engine.GET("/auth/units", attachCaller(u.SID(), "ses_unitb"), f.auth.ListUnits)

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/auth/units", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeResponse(t, rr)
	units, ok := resp.Data["units"].([]interface{})
	require.True(t, ok)
	require.Len(t, units, 2)

	current := map[string]bool{}
	for _, raw := range units {
		unit := raw.(map[string]interface{})
		current[unit["id"].(string)] = unit["current"].(bool)
		assert.NotContains(t, unit, "token", "refresh token must not appear in the projection")
	}
	assert.False(t, current["ses_unita"])
	assert.True(t, current["ses_unitb"])
}

func TestAuthHandler_RevokeUnit(t *testing.T) {
	f := newHandlerFixture(t)
	u := f.seedUser(t, "alice@example.com", "alice", "secret123")

	for _, sid := range []string{"ses_current1", "ses_other1"} {
		s, err := user.NewSessionWithID(sid, u.ID(), u.SID(), "refresh-"+sid,
			"203.0.113.9", "agent", time.Now().UTC().Add(time.Hour))
		require.NoError(t, err)
		require.NoError(t, f.sessionRepo.Create(context.Background(), s))
	}

	engine := gin.New()
	engine.DELETE("/auth/units/:id", attachCaller(u.SID(), "ses_current1"), f.auth.RevokeUnit)

	t.Run("revoking another session succeeds", func(t *testing.T) {
		rr := httptest.NewRecorder()
		engine.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/auth/units/ses_other1", nil))
		require.Equal(t, http.StatusOK, rr.Code)

		stored, err := f.sessionRepo.GetByID(context.Background(), "ses_other1")
		require.NoError(t, err)
		assert.True(t, stored.IsRevoked)
	})

	t.Run("revoking the current session is refused", func(t *testing.T) {
		rr := httptest.NewRecorder()
		engine.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/auth/units/ses_current1", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "refresh_token_current_revoke")
	})
}

// =====================================================================
// Registration
// =====================================================================

func TestUserHandler_Register(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newHandlerFixture(t)

		engine := gin.New()
		engine.POST("/users", f.users.Register)

		body := `{
			"email": "Bob@Example.com",
			"username": "Bob",
			"forename": "Bob",
			"surname": "Jones",
			"password": "secret123",
			"passwordConfirm": "secret123"
		}`
		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		engine.ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)
		resp := decodeResponse(t, rr)
		userData, ok := resp.Data["user"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "bob@example.com", userData["email"], "email is normalized")
		assert.Equal(t, "bob", userData["username"])
		assert.NotContains(t, rr.Body.String(), "secret123")

		stored, err := f.userRepo.GetByEmail(context.Background(), "bob@example.com")
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.False(t, stored.IsEmailVerified())
	})

	t.Run("password mismatch rejected", func(t *testing.T) {
		f := newHandlerFixture(t)

		engine := gin.New()
		engine.POST("/users", f.users.Register)

		body := `{
			"email": "bob@example.com",
			"username": "bob",
			"password": "secret123",
			"passwordConfirm": "different"
		}`
		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		engine.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.seedUser(t, "bob@example.com", "bob", "secret123")

		engine := gin.New()
		engine.POST("/users", f.users.Register)

		body := `{
			"email": "bob@example.com",
			"username": "bob2",
			"password": "secret123",
			"passwordConfirm": "secret123"
		}`
		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		engine.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

// =====================================================================
// Password change
// =====================================================================

func TestAuthHandler_ChangePassword(t *testing.T) {
	f := newHandlerFixture(t)
	u := f.seedUser(t, "alice@example.com", "alice", "oldsecret")

	s, err := user.NewSessionWithID("ses_pwchange", u.ID(), u.SID(), "refresh-ses_pwchange",
		"203.0.113.9", "agent", time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, f.sessionRepo.Create(context.Background(), s))

	engine := gin.New()
	engine.PUT("/auth/password/change", attachCaller(u.SID(), "ses_pwchange"), f.auth.ChangePassword)

	body := `{
		"currentPassword": "oldsecret",
		"newPassword": "newsecret99",
		"newPasswordConfirm": "newsecret99"
	}`
	req := httptest.NewRequest(http.MethodPut, "/auth/password/change", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "please login again")

	stored, err := f.userRepo.GetByID(context.Background(), u.ID())
	require.NoError(t, err)
	assert.Equal(t, "hashed:newsecret99", stored.PasswordHash())

	active, err := f.sessionRepo.GetActiveByUserID(context.Background(), u.ID())
	require.NoError(t, err)
	assert.Empty(t, active, "every session dies with the old password")

	ck := cookieByName(rr, utils.RefreshTokenIDCookie)
	require.NotNil(t, ck)
	assert.Negative(t, ck.MaxAge)
}
