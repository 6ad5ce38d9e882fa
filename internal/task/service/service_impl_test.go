package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/erayastyle/ops-hub/internal/clock"
	"github.com/erayastyle/ops-hub/internal/task/domain"
	"github.com/erayastyle/ops-hub/internal/task/repository"
	userdomain "github.com/erayastyle/ops-hub/internal/user/domain"
	userrepo "github.com/erayastyle/ops-hub/internal/user/repository"
	userservice "github.com/erayastyle/ops-hub/internal/user/service"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	admin    = domain.Actor{ID: "a1", Name: "Asha", Role: userdomain.RoleAdmin}
	manager  = domain.Actor{ID: "m1", Name: "Mira", Role: userdomain.RoleManager, Team: "packing"}
	employee = domain.Actor{ID: "e1", Name: "Eshan", Role: userdomain.RoleEmployee, Team: "packing"}
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB, *clock.FakeClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&domain.Task{},
		&domain.Comment{},
		&domain.ActivityLog{},
		&domain.RecurringTemplate{},
		&domain.Announcement{},
		&userdomain.User{},
	))

	fake := clock.NewFakeClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	users := userservice.New(userservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		Repo:  userrepo.Provide(),
		Clock: fake,
	})
	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Repo:  repository.Provide(),
		Users: users,
		Clock: fake,
	})
	return svc, db, fake
}

func createTask(t *testing.T, svc domain.Service, actor domain.Actor, req domain.CreateTaskRequest) *domain.Task {
	t.Helper()
	if req.Board == "" {
		req.Board = domain.BoardDaily
	}
	if req.AssignedToID == "" {
		req.AssignedToID = employee.ID
	}
	task, err := svc.Create(context.Background(), actor, req)
	require.NoError(t, err)
	return task
}

func TestCreate(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, employee, domain.CreateTaskRequest{
		Title: "sneaky", Board: domain.BoardDaily, AssignedToID: employee.ID,
	})
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.Create(ctx, manager, domain.CreateTaskRequest{
		Title: "bad board", Board: "SOMEDAY", AssignedToID: employee.ID,
	})
	require.ErrorIs(t, err, domain.ErrInvalidBoard)

	_, err = svc.Create(ctx, manager, domain.CreateTaskRequest{
		Title: "  ", Board: domain.BoardDaily, AssignedToID: employee.ID,
	})
	require.ErrorIs(t, err, domain.ErrInvalidRequest)

	daily := createTask(t, svc, manager, domain.CreateTaskRequest{Title: "pack order 1001"})
	assert.Equal(t, domain.StatusTodo, daily.Status)
	assert.Equal(t, domain.PriorityMedium, daily.Priority)

	other, err := svc.Create(ctx, manager, domain.CreateTaskRequest{
		Title: "rework shelf labels", Board: domain.BoardOther, AssignedToID: employee.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBacklog, other.Status)

	var activity []domain.ActivityLog
	require.NoError(t, db.Find(&activity, "task_id = ?", daily.ID).Error)
	require.Len(t, activity, 1)
	assert.Equal(t, domain.ActionCreate, activity[0].Action)
}

func TestMoveTransitionMatrix(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		board   domain.Board
		status  domain.Status
		allowed bool
	}{
		{domain.BoardDaily, domain.StatusTodo, true},
		{domain.BoardDaily, domain.StatusInProgress, true},
		{domain.BoardDaily, domain.StatusDone, true},
		{domain.BoardDaily, domain.StatusBacklog, false},
		{domain.BoardDaily, domain.StatusReview, false},
		{domain.BoardOther, domain.StatusBacklog, true},
		{domain.BoardOther, domain.StatusInProgress, true},
		{domain.BoardOther, domain.StatusReview, true},
		{domain.BoardOther, domain.StatusDone, true},
		{domain.BoardOther, domain.StatusTodo, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s to %s", tt.board, tt.status), func(t *testing.T) {
			task := createTask(t, svc, manager, domain.CreateTaskRequest{
				Title: fmt.Sprintf("move %s %s", tt.board, tt.status),
				Board: tt.board,
			})
			moved, err := svc.Move(ctx, manager, domain.MoveTaskRequest{
				TaskID:   task.ID,
				ToStatus: tt.status,
			})
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.status, moved.Status)
			} else {
				require.ErrorIs(t, err, domain.ErrInvalidStatus)
			}
		})
	}
}

func TestMoveAcrossBoards(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	task := createTask(t, svc, manager, domain.CreateTaskRequest{Title: "promote", Board: domain.BoardDaily})

	moved, err := svc.Move(ctx, manager, domain.MoveTaskRequest{
		TaskID:   task.ID,
		ToBoard:  domain.BoardOther,
		ToStatus: domain.StatusReview,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.BoardOther, moved.Board)
	assert.Equal(t, domain.StatusReview, moved.Status)

	_, err = svc.Move(ctx, manager, domain.MoveTaskRequest{
		TaskID:   task.ID,
		ToBoard:  "SOMEDAY",
		ToStatus: domain.StatusDone,
	})
	require.ErrorIs(t, err, domain.ErrInvalidBoard)
}

func TestMoveProofGate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	task := createTask(t, svc, manager, domain.CreateTaskRequest{
		Title: "photograph packed order",
		Tags:  []string{domain.TagRequireProof},
	})

	_, err := svc.Move(ctx, employee, domain.MoveTaskRequest{
		TaskID:   task.ID,
		ToStatus: domain.StatusDone,
	})
	require.ErrorIs(t, err, domain.ErrProofRequired)

	proof := "https://files.example/proof.jpg"
	_, err = svc.Update(ctx, employee, domain.UpdateTaskRequest{
		TaskID:   task.ID,
		ProofURL: &proof,
	})
	require.NoError(t, err)

	moved, err := svc.Move(ctx, employee, domain.MoveTaskRequest{
		TaskID:   task.ID,
		ToStatus: domain.StatusDone,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, moved.Status)
}

func TestEmployeePermissions(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	mine := createTask(t, svc, manager, domain.CreateTaskRequest{Title: "mine"})
	other, err := svc.Create(ctx, manager, domain.CreateTaskRequest{
		Title: "someone else's", Board: domain.BoardDaily, AssignedToID: "e2",
	})
	require.NoError(t, err)

	// employees see and touch only their own assignments
	_, err = svc.Get(ctx, employee, other.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.Move(ctx, employee, domain.MoveTaskRequest{TaskID: other.ID, ToStatus: domain.StatusDone})
	require.ErrorIs(t, err, domain.ErrForbidden)

	// title edits stay manager-only even on own tasks
	newTitle := "renamed"
	updated, err := svc.Update(ctx, employee, domain.UpdateTaskRequest{TaskID: mine.ID, Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "mine", updated.Title)

	updated, err = svc.Update(ctx, manager, domain.UpdateTaskRequest{TaskID: mine.ID, Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)

	// list scopes
	_, err = svc.List(ctx, employee, domain.ListTasksRequest{Scope: "all"})
	require.ErrorIs(t, err, domain.ErrForbidden)
	_, err = svc.List(ctx, employee, domain.ListTasksRequest{Scope: "team"})
	require.ErrorIs(t, err, domain.ErrForbidden)
	_, err = svc.List(ctx, employee, domain.ListTasksRequest{Scope: "everything"})
	require.ErrorIs(t, err, domain.ErrInvalidRequest)

	tasks, err := svc.List(ctx, employee, domain.ListTasksRequest{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, mine.ID, tasks[0].ID)

	all, err := svc.List(ctx, admin, domain.ListTasksRequest{Scope: "all"})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDelete(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	task := createTask(t, svc, manager, domain.CreateTaskRequest{Title: "disposable"})
	_, err := svc.AddComment(ctx, employee, task.ID, "on it")
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, employee, task.ID), domain.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, manager, task.ID))

	require.ErrorIs(t, svc.Delete(ctx, manager, task.ID), domain.ErrNotFound)

	// comments and activity go with the task
	var comments, activity int64
	require.NoError(t, db.Model(&domain.Comment{}).Where("task_id = ?", task.ID).Count(&comments).Error)
	require.NoError(t, db.Model(&domain.ActivityLog{}).Where("task_id = ?", task.ID).Count(&activity).Error)
	assert.Zero(t, comments)
	assert.Zero(t, activity)
}

func TestCommentsAndActivity(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	task := createTask(t, svc, manager, domain.CreateTaskRequest{Title: "commented"})

	_, err := svc.AddComment(ctx, employee, task.ID, "   ")
	require.ErrorIs(t, err, domain.ErrInvalidRequest)

	comment, err := svc.AddComment(ctx, employee, task.ID, "starting now")
	require.NoError(t, err)
	assert.Equal(t, employee.ID, comment.AuthorID)

	comments, err := svc.Comments(ctx, manager, task.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)

	activity, err := svc.Activity(ctx, manager, task.ID)
	require.NoError(t, err)
	assert.Len(t, activity, 2) // CREATE + ADD_COMMENT
}

func TestAnnouncements(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateAnnouncement(ctx, employee, "nope", "body")
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.CreateAnnouncement(ctx, manager, "  ", "body")
	require.ErrorIs(t, err, domain.ErrInvalidRequest)

	created, err := svc.CreateAnnouncement(ctx, manager, "Diwali rush", "all hands on packing this week")
	require.NoError(t, err)

	list, err := svc.Announcements(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
}

func TestSpawnRecurringIdempotentPerDay(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&domain.RecurringTemplate{
		ID:           uuid.NewString(),
		Title:        "morning stock count",
		Freq:         domain.FreqDaily,
		Hour:         9,
		Minute:       0,
		Board:        domain.BoardDaily,
		CreatedByID:  manager.ID,
		AssignedToID: employee.ID,
	}).Error)

	now := time.Date(2026, 3, 10, 9, 5, 0, 0, time.UTC)

	spawned, err := svc.SpawnRecurring(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, spawned)

	// later in the same window: nothing new
	spawned, err = svc.SpawnRecurring(ctx, now.Add(10*time.Minute))
	require.NoError(t, err)
	assert.Zero(t, spawned)

	// outside the hour window: not due
	spawned, err = svc.SpawnRecurring(ctx, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, spawned)

	// next day spawns again
	spawned, err = svc.SpawnRecurring(ctx, now.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, spawned)

	var tasks []domain.Task
	require.NoError(t, db.Find(&tasks, "is_recurring = ?", true).Error)
	assert.Len(t, tasks, 2)
}

func TestSpawnRecurringWeekly(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&domain.RecurringTemplate{
		ID:            uuid.NewString(),
		Title:         "weekly stock audit",
		Freq:          domain.FreqWeekly,
		Hour:          10,
		Minute:        0,
		Weekday:       2, // Tuesday
		Board:         domain.BoardOther,
		DefaultStatus: domain.StatusBacklog,
		CreatedByID:   manager.ID,
		AssignedToID:  employee.ID,
	}).Error)

	// 2026-03-10 is a Tuesday.
	tuesday := time.Date(2026, 3, 10, 10, 5, 0, 0, time.UTC)

	spawned, err := svc.SpawnRecurring(ctx, tuesday)
	require.NoError(t, err)
	assert.Equal(t, 1, spawned)

	// Wednesday same time: not due.
	spawned, err = svc.SpawnRecurring(ctx, tuesday.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Zero(t, spawned)

	var task domain.Task
	require.NoError(t, db.First(&task, "is_recurring = ?", true).Error)
	assert.Equal(t, domain.BoardOther, task.Board)
	assert.Equal(t, domain.StatusBacklog, task.Status)
	assert.True(t, task.IsRecurring)
}

func TestSpawnRecurringWeekdayDefaultsToMonday(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&domain.RecurringTemplate{
		ID:           uuid.NewString(),
		Title:        "weekly planning",
		Freq:         domain.FreqWeekly,
		Hour:         9,
		Board:        domain.BoardOther,
		CreatedByID:  manager.ID,
		AssignedToID: employee.ID,
	}).Error)

	// Weekday 0 falls back to Monday; 2026-03-16 is a Monday.
	spawned, err := svc.SpawnRecurring(ctx, time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, spawned)
}

func TestStatisticsScoping(t *testing.T) {
	svc, _, fake := newTestService(t)
	ctx := context.Background()

	createTask(t, svc, manager, domain.CreateTaskRequest{Title: "t1"})
	createTask(t, svc, manager, domain.CreateTaskRequest{Title: "t2", Priority: domain.PriorityHigh})
	_, err := svc.Create(ctx, manager, domain.CreateTaskRequest{
		Title: "t3", Board: domain.BoardOther, AssignedToID: "e2",
	})
	require.NoError(t, err)

	overdueAt := fake.Now().Add(-time.Hour)
	task := createTask(t, svc, manager, domain.CreateTaskRequest{Title: "late"})
	_, err = svc.Update(ctx, manager, domain.UpdateTaskRequest{TaskID: task.ID, DueDate: &overdueAt})
	require.NoError(t, err)

	stats, err := svc.Statistics(ctx, manager)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.ByStatus[domain.StatusTodo]+stats.ByStatus[domain.StatusBacklog])
	assert.Equal(t, int64(3), stats.ByBoard[domain.BoardDaily])
	assert.Equal(t, int64(1), stats.ByPriority[domain.PriorityHigh])
	assert.Equal(t, int64(1), stats.Overdue)

	// employees only see their own numbers
	stats, err = svc.Statistics(ctx, employee)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.ByBoard[domain.BoardDaily])
}
