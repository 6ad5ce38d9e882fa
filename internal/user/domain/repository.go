package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	// FindByID returns nil when no user matches.
	FindByID(ctx context.Context, db *gorm.DB, id string) (*User, error)

	// FindByEmail returns nil when no user matches.
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*User, error)

	List(ctx context.Context, db *gorm.DB, req ListUsersRequest) ([]User, error)

	Insert(ctx context.Context, db *gorm.DB, user *User) error

	Save(ctx context.Context, db *gorm.DB, user *User) error

	Delete(ctx context.Context, db *gorm.DB, id string) error
}
