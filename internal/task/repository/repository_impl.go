package repository

import (
	"context"
	"strings"
	"time"

	"github.com/erayastyle/ops-hub/internal/task/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id string) (*domain.Task, error) {
	var task domain.Task
	err := db.WithContext(ctx).Where("id = ?", id).First(&task).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, req domain.ListTasksRequest, assigneeIDs []string) ([]domain.Task, error) {
	stmt := db.WithContext(ctx).Model(&domain.Task{})
	if assigneeIDs != nil {
		stmt = stmt.Where("assigned_to_id IN ?", assigneeIDs)
	}
	if req.Board != "" {
		stmt = stmt.Where("board = ?", req.Board)
	}
	if req.Status != "" {
		stmt = stmt.Where("status = ?", req.Status)
	}
	if q := strings.TrimSpace(req.Query); q != "" {
		stmt = stmt.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	var tasks []domain.Task
	err := stmt.Order("updated_at desc").Find(&tasks).Error
	return tasks, err
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, task *domain.Task) error {
	return db.WithContext(ctx).Create(task).Error
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, task *domain.Task) error {
	return db.WithContext(ctx).Save(task).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&domain.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&domain.ActivityLog{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Task{}).Error
	})
}

func (r *repo) ListComments(ctx context.Context, db *gorm.DB, taskID string) ([]domain.Comment, error) {
	var comments []domain.Comment
	err := db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at asc").
		Find(&comments).Error
	return comments, err
}

func (r *repo) InsertComment(ctx context.Context, db *gorm.DB, comment *domain.Comment) error {
	return db.WithContext(ctx).Create(comment).Error
}

func (r *repo) ListActivity(ctx context.Context, db *gorm.DB, taskID string) ([]domain.ActivityLog, error) {
	var entries []domain.ActivityLog
	err := db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at asc").
		Find(&entries).Error
	return entries, err
}

func (r *repo) InsertActivity(ctx context.Context, db *gorm.DB, entry *domain.ActivityLog) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) ListAnnouncements(ctx context.Context, db *gorm.DB) ([]domain.Announcement, error) {
	var announcements []domain.Announcement
	err := db.WithContext(ctx).Order("created_at desc").Find(&announcements).Error
	return announcements, err
}

func (r *repo) InsertAnnouncement(ctx context.Context, db *gorm.DB, a *domain.Announcement) error {
	return db.WithContext(ctx).Create(a).Error
}

func (r *repo) ListTemplates(ctx context.Context, db *gorm.DB) ([]domain.RecurringTemplate, error) {
	var templates []domain.RecurringTemplate
	err := db.WithContext(ctx).Find(&templates).Error
	return templates, err
}

func (r *repo) SpawnExists(ctx context.Context, db *gorm.DB, title, assigneeID string, dayStart time.Time) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("title = ? AND assigned_to_id = ? AND created_at >= ?", title, assigneeID, dayStart).
		Count(&count).Error
	return count > 0, err
}

func (r *repo) CountBy(ctx context.Context, db *gorm.DB, column string, assigneeIDs []string) (map[string]int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Task{})
	if assigneeIDs != nil {
		stmt = stmt.Where("assigned_to_id IN ?", assigneeIDs)
	}

	type bucket struct {
		Key string
		N   int64
	}
	var buckets []bucket
	err := stmt.
		Select(column + " AS key, COUNT(*) AS n").
		Group(column).
		Scan(&buckets).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(buckets))
	for _, b := range buckets {
		counts[b.Key] = b.N
	}
	return counts, nil
}

func (r *repo) CountOverdue(ctx context.Context, db *gorm.DB, now time.Time, assigneeIDs []string) (int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("due_date IS NOT NULL AND due_date < ? AND status <> ?", now, domain.StatusDone)
	if assigneeIDs != nil {
		stmt = stmt.Where("assigned_to_id IN ?", assigneeIDs)
	}

	var count int64
	err := stmt.Count(&count).Error
	return count, err
}
