package domain

import (
	"context"
	"errors"
	"time"

	userdomain "github.com/erayastyle/ops-hub/internal/user/domain"
)

var (
	ErrNotFound       = errors.New("task_not_found")
	ErrInvalidBoard   = errors.New("invalid_board")
	ErrInvalidStatus  = errors.New("invalid_status_for_board")
	ErrProofRequired  = errors.New("proof_required")
	ErrForbidden      = errors.New("task_forbidden")
	ErrInvalidRequest = errors.New("invalid_task_request")
)

// Actor is the requesting user, used for role and ownership checks.
type Actor struct {
	ID   string
	Name string
	Role userdomain.Role
	Team string
}

type ListTasksRequest struct {
	Scope  string // my|team|all
	Board  Board
	Status Status
	Query  string
}

type CreateTaskRequest struct {
	Title        string
	Board        Board
	Description  string
	Priority     Priority
	DueDate      *time.Time
	Tags         []string
	AssignedToID string
}

// UpdateTaskRequest patches fields; nil leaves a field unchanged.
// Employees may only patch their own assignments and never the title.
type UpdateTaskRequest struct {
	TaskID      string
	Title       *string
	Description *string
	Priority    *Priority
	DueDate     *time.Time
	Tags        *[]string
	ProofURL    *string
}

type MoveTaskRequest struct {
	TaskID   string
	ToStatus Status
	ToBoard  Board // optional board move
}

type Statistics struct {
	ByStatus   map[Status]int64   `json:"by_status"`
	ByBoard    map[Board]int64    `json:"by_board"`
	ByPriority map[Priority]int64 `json:"by_priority"`
	Overdue    int64              `json:"overdue"`
}

type Service interface {
	List(ctx context.Context, actor Actor, req ListTasksRequest) ([]Task, error)
	Get(ctx context.Context, actor Actor, id string) (*Task, error)
	Create(ctx context.Context, actor Actor, req CreateTaskRequest) (*Task, error)
	Update(ctx context.Context, actor Actor, req UpdateTaskRequest) (*Task, error)
	Move(ctx context.Context, actor Actor, req MoveTaskRequest) (*Task, error)
	Delete(ctx context.Context, actor Actor, id string) error

	Comments(ctx context.Context, actor Actor, taskID string) ([]Comment, error)
	AddComment(ctx context.Context, actor Actor, taskID, content string) (*Comment, error)

	Activity(ctx context.Context, actor Actor, taskID string) ([]ActivityLog, error)

	Announcements(ctx context.Context) ([]Announcement, error)
	CreateAnnouncement(ctx context.Context, actor Actor, title, body string) (*Announcement, error)

	// SpawnRecurring creates tasks for templates due at now; at most one
	// per (title, assignee, day). Returns the number spawned.
	SpawnRecurring(ctx context.Context, now time.Time) (int, error)

	Statistics(ctx context.Context, actor Actor) (Statistics, error)
}
