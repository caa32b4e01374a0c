package user

import "time"

// User never holds a plaintext password. The JSON "password" field carries
// the hash, which the create endpoint returns to its caller.
type User struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"uniqueIndex:uq_users_email;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"password"`
	CreatedAt    time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"not null" json:"-"`
}

type CreateInput struct {
	Name     string
	Email    string
	Password string
}
