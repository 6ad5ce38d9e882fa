package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	// FindByID returns nil when no task matches.
	FindByID(ctx context.Context, db *gorm.DB, id string) (*Task, error)

	// List filters tasks, newest update first. assigneeIDs narrows to
	// those assignees when non-nil.
	List(ctx context.Context, db *gorm.DB, req ListTasksRequest, assigneeIDs []string) ([]Task, error)

	Insert(ctx context.Context, db *gorm.DB, task *Task) error

	Save(ctx context.Context, db *gorm.DB, task *Task) error

	// Delete removes the task with its comments and activity rows.
	Delete(ctx context.Context, db *gorm.DB, id string) error

	ListComments(ctx context.Context, db *gorm.DB, taskID string) ([]Comment, error)

	InsertComment(ctx context.Context, db *gorm.DB, comment *Comment) error

	ListActivity(ctx context.Context, db *gorm.DB, taskID string) ([]ActivityLog, error)

	InsertActivity(ctx context.Context, db *gorm.DB, entry *ActivityLog) error

	ListAnnouncements(ctx context.Context, db *gorm.DB) ([]Announcement, error)

	InsertAnnouncement(ctx context.Context, db *gorm.DB, a *Announcement) error

	ListTemplates(ctx context.Context, db *gorm.DB) ([]RecurringTemplate, error)

	// SpawnExists reports whether a task with the title and assignee was
	// already created on or after dayStart.
	SpawnExists(ctx context.Context, db *gorm.DB, title, assigneeID string, dayStart time.Time) (bool, error)

	// CountBy groups task counts by the named column.
	CountBy(ctx context.Context, db *gorm.DB, column string, assigneeIDs []string) (map[string]int64, error)

	CountOverdue(ctx context.Context, db *gorm.DB, now time.Time, assigneeIDs []string) (int64, error)
}
