package repository

import (
	"context"
	"time"

	"github.com/erayastyle/ops-hub/internal/auth/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, session *domain.Session) error {
	return db.WithContext(ctx).Create(session).Error
}

func (r *repo) FindByToken(ctx context.Context, db *gorm.DB, token string) (*domain.Session, error) {
	var session domain.Session
	err := db.WithContext(ctx).Where("token = ?", token).First(&session).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, token string) error {
	return db.WithContext(ctx).Where("token = ?", token).Delete(&domain.Session{}).Error
}

func (r *repo) DeleteExpired(ctx context.Context, db *gorm.DB, now time.Time) error {
	return db.WithContext(ctx).Where("expires_at < ?", now).Delete(&domain.Session{}).Error
}
