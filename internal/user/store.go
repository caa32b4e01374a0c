package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"userauth/internal/password"
)

const uniqueViolation = "23505"

type Store struct {
	DB     *gorm.DB
	Hasher password.Hasher
}

func NewStore(db *gorm.DB, hasher password.Hasher) *Store {
	return &Store{DB: db, Hasher: hasher}
}

// Create validates the input, rejects a taken email before writing anything,
// then stores the user with a hashed password. A concurrent create that wins
// the race on the unique index surfaces as the same duplicate-email error.
func (s *Store) Create(ctx context.Context, in CreateInput) (*User, error) {
	if errs := Validate(in); len(errs) > 0 {
		return nil, &ValidationError{Model: modelName, Errors: errs}
	}

	email := NormalizeEmail(in.Email)

	var n int64
	if err := s.DB.WithContext(ctx).Model(&User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return nil, fmt.Errorf("count users by email: %w", err)
	}
	if n > 0 {
		return nil, duplicateEmailError()
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, &ValidationError{Model: modelName, Errors: []FieldError{passwordTooLongError()}}
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.DB.WithContext(ctx).Create(&u).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, duplicateEmailError()
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &u, nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.DB.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).Take(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &u, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	var u User
	err := s.DB.WithContext(ctx).Where("id = ?", id).Take(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &u, nil
}

// isUniqueViolation recognises lib/pq, pgx and gorm's translated error.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return false
}
