package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("user with same email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
)

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string // bcrypt output, never plaintext
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
