package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entry-inc/entry/internal/domain/user"
	"github.com/entry-inc/entry/internal/shared/errors"
	"github.com/entry-inc/entry/internal/shared/id"
)

func TestRegisterUserUseCase_Success(t *testing.T) {
	var created *user.User

	userRepo := &mockUserRepository{
		CreateFunc: func(ctx context.Context, u *user.User) error {
			created = u
			return nil
		},
	}

	uc := NewRegisterUserUseCase(userRepo, &mockPasswordHasher{}, &mockLogger{})

	result, err := uc.Execute(context.Background(), RegisterUserCommand{
		Email:           "Bob@Example.COM",
		Username:        "Bob.Jones",
		Forename:        "bOB",
		Surname:         " jones ",
		Password:        "secret123",
		PasswordConfirm: "secret123",
	})

	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, "bob@example.com", created.Email())
	assert.Equal(t, "bob.jones", created.Username())
	assert.Equal(t, "Bob", created.Forename(), "names are capitalized on save")
	assert.Equal(t, "Jones", created.Surname())
	assert.True(t, id.IsValidUserID(created.SID()))
	assert.Equal(t, "hashed:secret123", created.PasswordHash())
	assert.False(t, created.IsEmailVerified())
	require.NotNil(t, created.EmailVerificationToken())
	assert.Len(t, *created.EmailVerificationToken(), 64)

	// The projection never leaks the hash or the token
	assert.Equal(t, created.SID(), result.User.ID)
	assert.False(t, result.User.IsEmailVerified)
}

func TestRegisterUserUseCase_Validation(t *testing.T) {
	uc := NewRegisterUserUseCase(&mockUserRepository{}, &mockPasswordHasher{}, &mockLogger{})

	tests := []struct {
		name string
		cmd  RegisterUserCommand
	}{
		{"missing email", RegisterUserCommand{Username: "bob", Password: "secret123", PasswordConfirm: "secret123"}},
		{"missing password", RegisterUserCommand{Email: "b@c.com", Username: "bob"}},
		{"password mismatch", RegisterUserCommand{Email: "b@c.com", Username: "bob", Password: "secret123", PasswordConfirm: "secret124"}},
		{"password too short", RegisterUserCommand{Email: "b@c.com", Username: "bob", Password: "short", PasswordConfirm: "short"}},
		{"invalid email", RegisterUserCommand{Email: "not-an-email", Username: "bob", Password: "secret123", PasswordConfirm: "secret123"}},
		{"invalid username", RegisterUserCommand{Email: "b@c.com", Username: "x", Password: "secret123", PasswordConfirm: "secret123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tt.cmd)
			assert.Error(t, err)
		})
	}
}

func TestRegisterUserUseCase_Conflicts(t *testing.T) {
	emailTaken := &mockUserRepository{
		ExistsByEmailFunc: func(ctx context.Context, email string) (bool, error) { return true, nil },
	}
	usernameTaken := &mockUserRepository{
		ExistsByUsernameFunc: func(ctx context.Context, username string) (bool, error) { return true, nil },
	}

	cmd := RegisterUserCommand{
		Email: "b@c.com", Username: "bob", Password: "secret123", PasswordConfirm: "secret123",
	}

	uc := NewRegisterUserUseCase(emailTaken, &mockPasswordHasher{}, &mockLogger{})
	_, err := uc.Execute(context.Background(), cmd)
	require.Error(t, err)
	assert.True(t, errors.IsConflictError(err))

	uc = NewRegisterUserUseCase(usernameTaken, &mockPasswordHasher{}, &mockLogger{})
	_, err = uc.Execute(context.Background(), cmd)
	require.Error(t, err)
	assert.True(t, errors.IsConflictError(err))
}
