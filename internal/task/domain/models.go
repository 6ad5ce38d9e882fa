package domain

import (
	"time"

	"gorm.io/datatypes"
)

type Board string

const (
	BoardDaily Board = "DAILY"
	BoardOther Board = "OTHER"
)

func ValidBoard(b Board) bool {
	return b == BoardDaily || b == BoardOther
}

type Status string

const (
	StatusTodo       Status = "TODO"
	StatusBacklog    Status = "BACKLOG"
	StatusInProgress Status = "IN_PROGRESS"
	StatusReview     Status = "REVIEW"
	StatusDone       Status = "DONE"
)

// BoardStatuses lists the legal statuses per board. A move to any other
// status is rejected.
var BoardStatuses = map[Board][]Status{
	BoardDaily: {StatusTodo, StatusInProgress, StatusDone},
	BoardOther: {StatusBacklog, StatusInProgress, StatusReview, StatusDone},
}

func StatusAllowed(board Board, status Status) bool {
	for _, s := range BoardStatuses[board] {
		if s == status {
			return true
		}
	}
	return false
}

// InitialStatus is where new tasks land on each board.
func InitialStatus(board Board) Status {
	if board == BoardDaily {
		return StatusTodo
	}
	return StatusBacklog
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// TagRequireProof gates DONE on a non-empty proof URL.
const TagRequireProof = "requireProof"

type Task struct {
	ID     string `gorm:"primaryKey" json:"id"`
	Title  string `gorm:"not null" json:"title"`
	Board  Board  `gorm:"index;not null" json:"board"`
	Status Status `gorm:"index;not null" json:"status"`

	Description string     `gorm:"type:text" json:"description"`
	Priority    Priority   `gorm:"default:MEDIUM" json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	IsRecurring bool       `json:"is_recurring"`

	Tags        datatypes.JSONSlice[string] `json:"tags"`
	Attachments datatypes.JSONSlice[string] `json:"attachments"`
	ProofURL    string                      `json:"proof_url,omitempty"`

	CreatedByID  string `gorm:"index;not null" json:"created_by_id"`
	AssignedToID string `gorm:"index;not null" json:"assigned_to_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Task) TableName() string { return "tasks" }

func (t Task) HasTag(tag string) bool {
	for _, candidate := range t.Tags {
		if candidate == tag {
			return true
		}
	}
	return false
}

type Comment struct {
	ID       string `gorm:"primaryKey" json:"id"`
	TaskID   string `gorm:"index;not null" json:"task_id"`
	AuthorID string `gorm:"index;not null" json:"author_id"`
	Content  string `gorm:"type:text;not null" json:"content"`

	CreatedAt time.Time `json:"created_at"`
}

func (Comment) TableName() string { return "task_comments" }

type ActivityLog struct {
	ID      string            `gorm:"primaryKey" json:"id"`
	TaskID  string            `gorm:"index;not null" json:"task_id"`
	ActorID string            `json:"actor_id"`
	Action  string            `gorm:"index;not null" json:"action"`
	Meta    datatypes.JSONMap `json:"meta,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (ActivityLog) TableName() string { return "task_activity_logs" }

const (
	ActionCreate       = "CREATE"
	ActionUpdate       = "UPDATE"
	ActionUpdateStatus = "UPDATE_STATUS"
	ActionAddComment   = "ADD_COMMENT"
	ActionDelete       = "DELETE"
)

type Frequency string

const (
	FreqDaily  Frequency = "DAILY"
	FreqWeekly Frequency = "WEEKLY"
)

// RecurringTemplate spawns a task when the scheduler pass lands inside
// its (hour, >=minute[, weekday]) window. Weekday is ISO (1=Monday).
type RecurringTemplate struct {
	ID    string    `gorm:"primaryKey" json:"id"`
	Title string    `gorm:"not null" json:"title"`
	Freq  Frequency `gorm:"not null" json:"freq"`

	Hour    int `json:"hour"`
	Minute  int `json:"minute"`
	Weekday int `json:"weekday,omitempty"`

	Board         Board                       `json:"board"`
	DefaultStatus Status                      `json:"default_status,omitempty"`
	Description   string                      `gorm:"type:text" json:"description"`
	Priority      Priority                    `gorm:"default:MEDIUM" json:"priority"`
	Tags          datatypes.JSONSlice[string] `json:"tags"`

	CreatedByID  string `gorm:"not null" json:"created_by_id"`
	AssignedToID string `gorm:"not null" json:"assigned_to_id"`

	CreatedAt time.Time `json:"created_at"`
}

func (RecurringTemplate) TableName() string { return "task_recurring_templates" }

// Due reports whether the template's window covers now.
func (t RecurringTemplate) Due(now time.Time) bool {
	switch t.Freq {
	case FreqDaily:
		return now.Hour() == t.Hour && now.Minute() >= t.Minute
	case FreqWeekly:
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		target := t.Weekday
		if target == 0 {
			target = 1
		}
		return weekday == target && now.Hour() == t.Hour && now.Minute() >= t.Minute
	}
	return false
}

type Announcement struct {
	ID          string `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"not null" json:"title"`
	Body        string `gorm:"type:text" json:"body"`
	CreatedByID string `json:"created_by_id"`

	CreatedAt time.Time `json:"created_at"`
}

func (Announcement) TableName() string { return "announcements" }
