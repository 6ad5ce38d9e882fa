package domain

import (
	"context"
	"errors"
	"time"

	userdomain "github.com/erayastyle/ops-hub/internal/user/domain"
	"gorm.io/gorm"
)

var (
	ErrInvalidSession = errors.New("invalid_session")
	ErrSessionExpired = errors.New("session_expired")
)

// Session is an opaque server-side login token. The token doubles as
// the primary key; it is a uuid with no embedded claims.
type Session struct {
	Token     string    `gorm:"primaryKey" json:"token"`
	UserID    string    `gorm:"index;not null" json:"user_id"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (Session) TableName() string { return "sessions" }

type LoginResult struct {
	User    *userdomain.User `json:"user"`
	Session *Session         `json:"session"`
}

type Service interface {
	// Login authenticates and opens a session.
	Login(ctx context.Context, email, password string) (*LoginResult, error)

	// Logout removes the session; unknown tokens are a no-op.
	Logout(ctx context.Context, token string) error

	// Resolve maps a session token to its user, deleting the row when
	// expired.
	Resolve(ctx context.Context, token string) (*userdomain.User, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, session *Session) error

	// FindByToken returns nil when no session matches.
	FindByToken(ctx context.Context, db *gorm.DB, token string) (*Session, error)

	Delete(ctx context.Context, db *gorm.DB, token string) error

	// DeleteExpired removes sessions past their expiry.
	DeleteExpired(ctx context.Context, db *gorm.DB, now time.Time) error
}
