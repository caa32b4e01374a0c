package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"userauth/internal/password"
	"userauth/internal/user"
)

type mockUserFinder struct {
	findByEmailFunc func(ctx context.Context, email string) (*user.User, error)
}

func (m *mockUserFinder) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return nil, user.ErrNotFound
}

func setupService(t *testing.T) (*Service, *mockUserFinder, password.Hasher) {
	t.Helper()
	hasher := password.NewBcryptHasher(bcrypt.MinCost)
	finder := &mockUserFinder{}
	return NewService(finder, hasher, NewJWT(testSecret, time.Hour)), finder, hasher
}

func registeredUser(t *testing.T, h password.Hasher, email, plaintext string) *user.User {
	t.Helper()
	hash, err := h.Hash(plaintext)
	require.NoError(t, err)
	return &user.User{ID: "0b6f5a4e-3f7e-4c4b-9a55-2f1f3b3e9d10", Name: "John Doe", Email: email, PasswordHash: hash}
}

func TestValidatePassword(t *testing.T) {
	svc, _, h := setupService(t)
	hash, err := h.Hash("1234")
	require.NoError(t, err)

	assert.True(t, svc.ValidatePassword("1234", hash))
	assert.False(t, svc.ValidatePassword("4321", hash))
	assert.False(t, svc.ValidatePassword("1234", "garbage"))
}

func TestLogin_Success(t *testing.T) {
	svc, finder, h := setupService(t)
	u := registeredUser(t, h, "john@mail.com", "1234")

	finder.findByEmailFunc = func(ctx context.Context, email string) (*user.User, error) {
		assert.Equal(t, "john@mail.com", email)
		return u, nil
	}

	tok, err := svc.Login(context.Background(), " John@mail.com", "1234")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := svc.jwt.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID())
	assert.Equal(t, u.Email, claims.Email)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.Login(context.Background(), "some-email@mail.com", "1234")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NotEmpty(t, svc.dummyHash)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, finder, h := setupService(t)
	u := registeredUser(t, h, "john@mail.com", "1234")
	finder.findByEmailFunc = func(ctx context.Context, email string) (*user.User, error) { return u, nil }

	_, err := svc.Login(context.Background(), "john@mail.com", "different password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_SameErrorForBothFailures(t *testing.T) {
	svc, finder, h := setupService(t)
	u := registeredUser(t, h, "john@mail.com", "1234")
	finder.findByEmailFunc = func(ctx context.Context, email string) (*user.User, error) {
		if email == u.Email {
			return u, nil
		}
		return nil, user.ErrNotFound
	}

	_, errUnknown := svc.Login(context.Background(), "ghost@mail.com", "1234")
	_, errWrong := svc.Login(context.Background(), "john@mail.com", "nope")
	assert.Equal(t, errUnknown, errWrong)
}

func TestLogin_EmptyCredentials(t *testing.T) {
	svc, finder, _ := setupService(t)
	finder.findByEmailFunc = func(ctx context.Context, email string) (*user.User, error) {
		t.Fatal("store must not be queried")
		return nil, nil
	}

	_, err := svc.Login(context.Background(), "  ", "1234")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(context.Background(), "john@mail.com", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_StoreError(t *testing.T) {
	svc, finder, _ := setupService(t)
	finder.findByEmailFunc = func(ctx context.Context, email string) (*user.User, error) {
		return nil, errors.New("connection reset")
	}

	_, err := svc.Login(context.Background(), "john@mail.com", "1234")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.ErrorContains(t, err, "connection reset")
}
