package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"userauth/internal/password"
	"userauth/internal/user"
)

// ErrInvalidCredentials is returned for an unknown email and for a wrong
// password alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*user.User, error)
}

type Service struct {
	users  UserFinder
	hasher password.Hasher
	jwt    *JWT

	dummyOnce sync.Once
	dummyHash string
}

func NewService(users UserFinder, hasher password.Hasher, jwtSvc *JWT) *Service {
	return &Service{users: users, hasher: hasher, jwt: jwtSvc}
}

// ValidatePassword reports whether plaintext matches hash. A hash that
// cannot be parsed never matches.
func (s *Service) ValidatePassword(plaintext, hash string) bool {
	ok, err := s.hasher.Verify(plaintext, hash)
	return err == nil && ok
}

func (s *Service) Login(ctx context.Context, email, plaintext string) (string, error) {
	email = user.NormalizeEmail(email)
	if email == "" || plaintext == "" {
		return "", ErrInvalidCredentials
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// spend the same hashing work as a real check
			_ = s.ValidatePassword(plaintext, s.dummy())
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	if !s.ValidatePassword(plaintext, u.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	return s.jwt.Sign(u.ID, u.Email)
}

func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("dummy-password-for-timing")
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}
