package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	// FindOpen returns the user's record with no check-out, nil when
	// none exists.
	FindOpen(ctx context.Context, db *gorm.DB, userID string) (*Record, error)

	Insert(ctx context.Context, db *gorm.DB, record *Record) error

	Save(ctx context.Context, db *gorm.DB, record *Record) error

	// List returns records matching the request, newest date first.
	List(ctx context.Context, db *gorm.DB, req RecordsRequest) ([]Record, error)
}
