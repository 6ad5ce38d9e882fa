package repository

import (
	"context"

	"github.com/erayastyle/ops-hub/internal/attendance/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindOpen(ctx context.Context, db *gorm.DB, userID string) (*domain.Record, error) {
	var record domain.Record
	err := db.WithContext(ctx).
		Where("user_id = ? AND check_out IS NULL", userID).
		Order("check_in desc").
		First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, record *domain.Record) error {
	return db.WithContext(ctx).Create(record).Error
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, record *domain.Record) error {
	return db.WithContext(ctx).Save(record).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, req domain.RecordsRequest) ([]domain.Record, error) {
	stmt := db.WithContext(ctx).Model(&domain.Record{})
	if req.UserID != "" {
		stmt = stmt.Where("user_id = ?", req.UserID)
	}
	if req.StartDate != nil {
		stmt = stmt.Where("date >= ?", domain.DateBucket(*req.StartDate))
	}
	if req.EndDate != nil {
		stmt = stmt.Where("date <= ?", domain.DateBucket(*req.EndDate))
	}

	var records []domain.Record
	err := stmt.Order("date desc, check_in desc").Find(&records).Error
	return records, err
}
