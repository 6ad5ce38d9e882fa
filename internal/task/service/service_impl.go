package service

import (
	"context"
	"strings"
	"time"

	"github.com/erayastyle/ops-hub/internal/clock"
	"github.com/erayastyle/ops-hub/internal/task/domain"
	userdomain "github.com/erayastyle/ops-hub/internal/user/domain"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Repo  domain.Repository
	Users userdomain.Service
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	users userdomain.Service
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("task.service"),
		repo:  p.Repo,
		users: p.Users,
		clock: p.Clock,
	}
}

// scopeAssignees resolves the list scope to an assignee filter; nil
// means no filter.
func (s *Service) scopeAssignees(ctx context.Context, actor domain.Actor, scope string) ([]string, error) {
	switch scope {
	case "", "my":
		return []string{actor.ID}, nil
	case "team":
		if !actor.Role.Manages() {
			return nil, domain.ErrForbidden
		}
		if actor.Role == userdomain.RoleAdmin {
			return nil, nil
		}
		members, err := s.users.List(ctx, userdomain.ListUsersRequest{Team: actor.Team})
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(members))
		for _, member := range members {
			ids = append(ids, member.ID)
		}
		return ids, nil
	case "all":
		if actor.Role != userdomain.RoleAdmin {
			return nil, domain.ErrForbidden
		}
		return nil, nil
	}
	return nil, domain.ErrInvalidRequest
}

func (s *Service) List(ctx context.Context, actor domain.Actor, req domain.ListTasksRequest) ([]domain.Task, error) {
	if req.Board != "" && !domain.ValidBoard(req.Board) {
		return nil, domain.ErrInvalidBoard
	}

	assignees, err := s.scopeAssignees(ctx, actor, req.Scope)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, s.db, req, assignees)
}

func (s *Service) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Task, error) {
	task, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, domain.ErrNotFound
	}
	if !actor.Role.Manages() && task.AssignedToID != actor.ID {
		return nil, domain.ErrForbidden
	}
	return task, nil
}

func (s *Service) Create(ctx context.Context, actor domain.Actor, req domain.CreateTaskRequest) (*domain.Task, error) {
	if !actor.Role.Manages() {
		return nil, domain.ErrForbidden
	}
	if !domain.ValidBoard(req.Board) {
		return nil, domain.ErrInvalidBoard
	}
	title := strings.TrimSpace(req.Title)
	if title == "" || req.AssignedToID == "" {
		return nil, domain.ErrInvalidRequest
	}

	priority := req.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}

	now := s.clock.Now()
	task := &domain.Task{
		ID:           uuid.NewString(),
		Title:        title,
		Board:        req.Board,
		Status:       domain.InitialStatus(req.Board),
		Description:  req.Description,
		Priority:     priority,
		DueDate:      req.DueDate,
		Tags:         datatypes.JSONSlice[string](req.Tags),
		Attachments:  datatypes.JSONSlice[string]{},
		CreatedByID:  actor.ID,
		AssignedToID: req.AssignedToID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, task); err != nil {
			return err
		}
		return s.repo.InsertActivity(ctx, tx, &domain.ActivityLog{
			ID:        uuid.NewString(),
			TaskID:    task.ID,
			ActorID:   actor.ID,
			Action:    domain.ActionCreate,
			Meta:      datatypes.JSONMap{"title": title},
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Service) Update(ctx context.Context, actor domain.Actor, req domain.UpdateTaskRequest) (*domain.Task, error) {
	task, err := s.repo.FindByID(ctx, s.db, req.TaskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, domain.ErrNotFound
	}

	titleAllowed := true
	if !actor.Role.Manages() {
		if task.AssignedToID != actor.ID {
			return nil, domain.ErrForbidden
		}
		titleAllowed = false
	}

	changed := datatypes.JSONMap{}
	if req.Title != nil && titleAllowed {
		task.Title = strings.TrimSpace(*req.Title)
		changed["title"] = task.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
		changed["description"] = task.Description
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
		changed["priority"] = string(task.Priority)
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
		changed["due_date"] = req.DueDate.Format(time.RFC3339)
	}
	if req.Tags != nil {
		task.Tags = datatypes.JSONSlice[string](*req.Tags)
		changed["tags"] = *req.Tags
	}
	if req.ProofURL != nil {
		task.ProofURL = strings.TrimSpace(*req.ProofURL)
		changed["proof_url"] = task.ProofURL
	}

	now := s.clock.Now()
	task.UpdatedAt = now

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Save(ctx, tx, task); err != nil {
			return err
		}
		return s.repo.InsertActivity(ctx, tx, &domain.ActivityLog{
			ID:        uuid.NewString(),
			TaskID:    task.ID,
			ActorID:   actor.ID,
			Action:    domain.ActionUpdate,
			Meta:      changed,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Service) Move(ctx context.Context, actor domain.Actor, req domain.MoveTaskRequest) (*domain.Task, error) {
	task, err := s.repo.FindByID(ctx, s.db, req.TaskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, domain.ErrNotFound
	}
	if !actor.Role.Manages() && task.AssignedToID != actor.ID {
		return nil, domain.ErrForbidden
	}

	board := task.Board
	if req.ToBoard != "" {
		if !domain.ValidBoard(req.ToBoard) {
			return nil, domain.ErrInvalidBoard
		}
		board = req.ToBoard
	}
	if !domain.StatusAllowed(board, req.ToStatus) {
		return nil, domain.ErrInvalidStatus
	}
	if req.ToStatus == domain.StatusDone && task.HasTag(domain.TagRequireProof) && task.ProofURL == "" {
		return nil, domain.ErrProofRequired
	}

	now := s.clock.Now()
	task.Board = board
	task.Status = req.ToStatus
	task.UpdatedAt = now

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Save(ctx, tx, task); err != nil {
			return err
		}
		return s.repo.InsertActivity(ctx, tx, &domain.ActivityLog{
			ID:      uuid.NewString(),
			TaskID:  task.ID,
			ActorID: actor.ID,
			Action:  domain.ActionUpdateStatus,
			Meta: datatypes.JSONMap{
				"to_status": string(req.ToStatus),
				"to_board":  string(board),
			},
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Service) Delete(ctx context.Context, actor domain.Actor, id string) error {
	task, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if task == nil {
		return domain.ErrNotFound
	}
	if !actor.Role.Manages() && task.CreatedByID != actor.ID {
		return domain.ErrForbidden
	}
	return s.repo.Delete(ctx, s.db, id)
}

func (s *Service) Comments(ctx context.Context, actor domain.Actor, taskID string) ([]domain.Comment, error) {
	if _, err := s.Get(ctx, actor, taskID); err != nil {
		return nil, err
	}
	return s.repo.ListComments(ctx, s.db, taskID)
}

func (s *Service) AddComment(ctx context.Context, actor domain.Actor, taskID, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.ErrInvalidRequest
	}
	if _, err := s.Get(ctx, actor, taskID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	comment := &domain.Comment{
		ID:        uuid.NewString(),
		TaskID:    taskID,
		AuthorID:  actor.ID,
		Content:   content,
		CreatedAt: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertComment(ctx, tx, comment); err != nil {
			return err
		}
		return s.repo.InsertActivity(ctx, tx, &domain.ActivityLog{
			ID:        uuid.NewString(),
			TaskID:    taskID,
			ActorID:   actor.ID,
			Action:    domain.ActionAddComment,
			Meta:      datatypes.JSONMap{"length": len(content)},
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *Service) Activity(ctx context.Context, actor domain.Actor, taskID string) ([]domain.ActivityLog, error) {
	if _, err := s.Get(ctx, actor, taskID); err != nil {
		return nil, err
	}
	return s.repo.ListActivity(ctx, s.db, taskID)
}

func (s *Service) Announcements(ctx context.Context) ([]domain.Announcement, error) {
	return s.repo.ListAnnouncements(ctx, s.db)
}

func (s *Service) CreateAnnouncement(ctx context.Context, actor domain.Actor, title, body string) (*domain.Announcement, error) {
	if !actor.Role.Manages() {
		return nil, domain.ErrForbidden
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domain.ErrInvalidRequest
	}

	a := &domain.Announcement{
		ID:          uuid.NewString(),
		Title:       title,
		Body:        body,
		CreatedByID: actor.ID,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.InsertAnnouncement(ctx, s.db, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) SpawnRecurring(ctx context.Context, now time.Time) (int, error) {
	templates, err := s.repo.ListTemplates(ctx, s.db)
	if err != nil {
		return 0, err
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	spawned := 0
	for _, tpl := range templates {
		if !tpl.Due(now) {
			continue
		}

		exists, err := s.repo.SpawnExists(ctx, s.db, tpl.Title, tpl.AssignedToID, dayStart)
		if err != nil {
			return spawned, err
		}
		if exists {
			continue
		}

		status := tpl.DefaultStatus
		if status == "" {
			status = domain.InitialStatus(tpl.Board)
		}
		priority := tpl.Priority
		if priority == "" {
			priority = domain.PriorityMedium
		}

		task := &domain.Task{
			ID:           uuid.NewString(),
			Title:        tpl.Title,
			Board:        tpl.Board,
			Status:       status,
			Description:  tpl.Description,
			Priority:     priority,
			IsRecurring:  true,
			Tags:         tpl.Tags,
			Attachments:  datatypes.JSONSlice[string]{},
			CreatedByID:  tpl.CreatedByID,
			AssignedToID: tpl.AssignedToID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.repo.Insert(ctx, tx, task); err != nil {
				return err
			}
			return s.repo.InsertActivity(ctx, tx, &domain.ActivityLog{
				ID:        uuid.NewString(),
				TaskID:    task.ID,
				ActorID:   tpl.CreatedByID,
				Action:    domain.ActionCreate,
				Meta:      datatypes.JSONMap{"recurring": true},
				CreatedAt: now,
			})
		})
		if err != nil {
			return spawned, err
		}
		spawned++
	}
	return spawned, nil
}

func (s *Service) Statistics(ctx context.Context, actor domain.Actor) (domain.Statistics, error) {
	var assignees []string
	if !actor.Role.Manages() {
		assignees = []string{actor.ID}
	}

	byStatus, err := s.repo.CountBy(ctx, s.db, "status", assignees)
	if err != nil {
		return domain.Statistics{}, err
	}
	byBoard, err := s.repo.CountBy(ctx, s.db, "board", assignees)
	if err != nil {
		return domain.Statistics{}, err
	}
	byPriority, err := s.repo.CountBy(ctx, s.db, "priority", assignees)
	if err != nil {
		return domain.Statistics{}, err
	}
	overdue, err := s.repo.CountOverdue(ctx, s.db, s.clock.Now(), assignees)
	if err != nil {
		return domain.Statistics{}, err
	}

	stats := domain.Statistics{
		ByStatus:   make(map[domain.Status]int64, len(byStatus)),
		ByBoard:    make(map[domain.Board]int64, len(byBoard)),
		ByPriority: make(map[domain.Priority]int64, len(byPriority)),
		Overdue:    overdue,
	}
	for k, v := range byStatus {
		stats.ByStatus[domain.Status(k)] = v
	}
	for k, v := range byBoard {
		stats.ByBoard[domain.Board(k)] = v
	}
	for k, v := range byPriority {
		stats.ByPriority[domain.Priority(k)] = v
	}
	return stats, nil
}
