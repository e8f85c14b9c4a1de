package repository

import (
	"context"

	"github.com/ErlanBelekov/authmail/internal/domain"
)

// UserRepository is the credential store. Email is the unique lookup key.
type UserRepository interface {
	// Create inserts the user only if no user with the same email exists,
	// returning domain.ErrEmailTaken otherwise. The store assigns the ID.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
