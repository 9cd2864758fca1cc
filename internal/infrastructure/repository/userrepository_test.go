package repository

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entry-inc/entry/internal/domain/user"
	"github.com/entry-inc/entry/internal/shared/authorization"
	"github.com/entry-inc/entry/internal/shared/logger"
)

func testLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func createTestUser(t *testing.T, email, username string) *user.User {
	t.Helper()
	u, err := user.NewUser(email, username, "Test", "User", "hashed-password")
	require.NoError(t, err)
	return u
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db, testLogger())
	ctx := context.Background()

	u := createTestUser(t, "alice@example.com", "alice")
	require.NoError(t, repo.Create(ctx, u))
	assert.NotZero(t, u.ID(), "Create must backfill the internal ID")

	t.Run("by internal ID", func(t *testing.T) {
		found, err := repo.GetByID(ctx, u.ID())
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, u.SID(), found.SID())
		assert.Equal(t, "alice@example.com", found.Email())
		assert.Equal(t, "alice", found.Username())
		assert.Equal(t, authorization.RoleUser, found.Role())
		assert.True(t, found.IsActive())
		assert.False(t, found.IsEmailVerified())
	})

	t.Run("by SID", func(t *testing.T) {
		found, err := repo.GetBySID(ctx, u.SID())
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, u.ID(), found.ID())
	})

	t.Run("by email", func(t *testing.T) {
		found, err := repo.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, u.ID(), found.ID())
	})

	t.Run("by username", func(t *testing.T) {
		found, err := repo.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, u.ID(), found.ID())
	})
}

func TestUserRepository_AbsentReadsAsNilNil(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db, testLogger())
	ctx := context.Background()

	found, err := repo.GetByID(ctx, 999)
	assert.NoError(t, err)
	assert.Nil(t, found)

	found, err = repo.GetBySID(ctx, "usr_neverexisted")
	assert.NoError(t, err)
	assert.Nil(t, found)

	found, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.NoError(t, err)
	assert.Nil(t, found)

	found, err = repo.GetByUsername(ctx, "nobody")
	assert.NoError(t, err)
	assert.Nil(t, found)
}

func TestUserRepository_Exists(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db, testLogger())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, createTestUser(t, "bob@example.com", "bob")))

	exists, err := repo.ExistsByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepository_GetByVerificationToken(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db, testLogger())
	ctx := context.Background()

	u := createTestUser(t, "carol@example.com", "carol")
	u.SetEmailVerificationToken("verification-token-abc")
	require.NoError(t, repo.Create(ctx, u))

	found, err := repo.GetByVerificationToken(ctx, "verification-token-abc")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, u.ID(), found.ID())

	found, err = repo.GetByVerificationToken(ctx, "wrong-token")
	assert.NoError(t, err)
	assert.Nil(t, found)
}

func TestUserRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db, testLogger())
	ctx := context.Background()

	u := createTestUser(t, "dave@example.com", "dave")
	u.SetEmailVerificationToken("tok-123")
	require.NoError(t, repo.Create(ctx, u))

	require.NoError(t, u.VerifyEmail())
	u.UpdateName("David", "Jones")
	require.NoError(t, repo.Update(ctx, u))

	found, err := repo.GetByID(ctx, u.ID())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.IsEmailVerified())
	assert.Nil(t, found.EmailVerificationToken(), "verification token must be cleared")
	assert.Equal(t, "David", found.Forename())
	assert.Equal(t, "Jones", found.Surname())
}

func TestUserRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db, testLogger())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, createTestUser(t, "erin@example.com", "erin")))
	require.NoError(t, repo.Create(ctx, createTestUser(t, "frank@example.com", "frank")))

	admin := createTestUser(t, "grace@example.com", "grace")
	require.NoError(t, admin.ChangeRole(authorization.RoleAdmin))
	require.NoError(t, repo.Create(ctx, admin))

	t.Run("all users", func(t *testing.T) {
		users, total, err := repo.List(ctx, user.ListFilter{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		assert.Len(t, users, 3)
	})

	t.Run("email filter", func(t *testing.T) {
		users, total, err := repo.List(ctx, user.ListFilter{Page: 1, PageSize: 10, Email: "erin"})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, users, 1)
		assert.Equal(t, "erin@example.com", users[0].Email())
	})

	t.Run("role filter", func(t *testing.T) {
		users, total, err := repo.List(ctx, user.ListFilter{Page: 1, PageSize: 10, Role: string(authorization.RoleAdmin)})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, users, 1)
		assert.Equal(t, "grace", users[0].Username())
	})

	t.Run("pagination", func(t *testing.T) {
		first, total, err := repo.List(ctx, user.ListFilter{Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		assert.Len(t, first, 2)

		second, _, err := repo.List(ctx, user.ListFilter{Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.Len(t, second, 1)
	})

	t.Run("out-of-range page normalizes", func(t *testing.T) {
		users, _, err := repo.List(ctx, user.ListFilter{Page: -5, PageSize: 0})
		require.NoError(t, err)
		assert.Len(t, users, 3)
	})
}

func TestUserRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db, testLogger())
	ctx := context.Background()

	u := createTestUser(t, "henry@example.com", "henry")
	require.NoError(t, repo.Create(ctx, u))
	require.NoError(t, repo.Delete(ctx, u.ID()))

	found, err := repo.GetByID(ctx, u.ID())
	assert.NoError(t, err)
	assert.Nil(t, found)
}
