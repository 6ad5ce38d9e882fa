package domain

import (
	"context"
	"errors"
)

var (
	ErrNotFound           = errors.New("user_not_found")
	ErrEmailTaken         = errors.New("email_taken")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidRole        = errors.New("invalid_role")
	ErrInvalidRequest     = errors.New("invalid_user_request")
)

type CreateUserRequest struct {
	Email    string
	Password string
	Name     string
	Role     Role
	Team     string
}

type UpdateUserRequest struct {
	ID       string
	Name     *string
	Role     *Role
	Team     *string
	Password *string
	Active   *bool
}

type ListUsersRequest struct {
	Team string
	Role Role
}

type Service interface {
	Create(ctx context.Context, req CreateUserRequest) (*User, error)
	Get(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, req ListUsersRequest) ([]User, error)
	Update(ctx context.Context, req UpdateUserRequest) (*User, error)
	Delete(ctx context.Context, id string) error

	// Authenticate verifies email/password and returns the user; a
	// failed lookup and a failed password compare are indistinguishable
	// to the caller.
	Authenticate(ctx context.Context, email, password string) (*User, error)
}
