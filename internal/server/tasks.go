package server

import (
	"net/http"
	"strings"
	"time"

	taskdomain "github.com/erayastyle/ops-hub/internal/task/domain"
	"github.com/gin-gonic/gin"
)

type CreateTaskRequest struct {
	Title        string   `json:"title"`
	Board        string   `json:"board"`
	Description  string   `json:"description"`
	Priority     string   `json:"priority"`
	DueDate      string   `json:"due_date"`
	Tags         []string `json:"tags"`
	AssignedToID string   `json:"assigned_to_id"`
}

type UpdateTaskRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Priority    *string   `json:"priority"`
	DueDate     *string   `json:"due_date"`
	Tags        *[]string `json:"tags"`
	ProofURL    *string   `json:"proof_url"`
}

type MoveTaskRequest struct {
	Status string `json:"status"`
	Board  string `json:"board"`
}

type CommentRequest struct {
	Content string `json:"content"`
}

type AnnouncementRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (s *Server) ListTasks(c *gin.Context) {
	actor := actorFrom(currentUser(c))
	tasks, err := s.tasksvc.List(c.Request.Context(), actor, taskdomain.ListTasksRequest{
		Scope:  strings.TrimSpace(c.Query("scope")),
		Board:  taskdomain.Board(strings.TrimSpace(c.Query("board"))),
		Status: taskdomain.Status(strings.TrimSpace(c.Query("status"))),
		Query:  strings.TrimSpace(c.Query("q")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (s *Server) GetTask(c *gin.Context) {
	actor := actorFrom(currentUser(c))
	task, err := s.tasksvc.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	dueDate, err := parseOptionalTime(req.DueDate, true)
	if err != nil {
		AbortWithError(c, newValidationError("due_date", "invalid_time", "invalid date"))
		return
	}

	actor := actorFrom(currentUser(c))
	task, err := s.tasksvc.Create(c.Request.Context(), actor, taskdomain.CreateTaskRequest{
		Title:        req.Title,
		Board:        taskdomain.Board(req.Board),
		Description:  req.Description,
		Priority:     taskdomain.Priority(req.Priority),
		DueDate:      dueDate,
		Tags:         req.Tags,
		AssignedToID: req.AssignedToID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (s *Server) UpdateTask(c *gin.Context) {
	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := taskdomain.UpdateTaskRequest{
		TaskID:      c.Param("id"),
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		ProofURL:    req.ProofURL,
	}
	if req.Priority != nil {
		priority := taskdomain.Priority(*req.Priority)
		update.Priority = &priority
	}
	if req.DueDate != nil {
		dueDate, err := parseOptionalTime(*req.DueDate, true)
		if err != nil {
			AbortWithError(c, newValidationError("due_date", "invalid_time", "invalid date"))
			return
		}
		update.DueDate = dueDate
	}

	actor := actorFrom(currentUser(c))
	task, err := s.tasksvc.Update(c.Request.Context(), actor, update)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) MoveTask(c *gin.Context) {
	var req MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	actor := actorFrom(currentUser(c))
	task, err := s.tasksvc.Move(c.Request.Context(), actor, taskdomain.MoveTaskRequest{
		TaskID:   c.Param("id"),
		ToStatus: taskdomain.Status(req.Status),
		ToBoard:  taskdomain.Board(req.Board),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) DeleteTask(c *gin.Context) {
	actor := actorFrom(currentUser(c))
	if err := s.tasksvc.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) TaskComments(c *gin.Context) {
	actor := actorFrom(currentUser(c))
	comments, err := s.tasksvc.Comments(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

func (s *Server) AddTaskComment(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	actor := actorFrom(currentUser(c))
	comment, err := s.tasksvc.AddComment(c.Request.Context(), actor, c.Param("id"), req.Content)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (s *Server) TaskActivity(c *gin.Context) {
	actor := actorFrom(currentUser(c))
	activity, err := s.tasksvc.Activity(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": activity})
}

func (s *Server) TaskStatistics(c *gin.Context) {
	actor := actorFrom(currentUser(c))
	stats, err := s.tasksvc.Statistics(c.Request.Context(), actor)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) ListAnnouncements(c *gin.Context) {
	announcements, err := s.tasksvc.Announcements(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"announcements": announcements})
}

func (s *Server) CreateAnnouncement(c *gin.Context) {
	var req AnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	actor := actorFrom(currentUser(c))
	announcement, err := s.tasksvc.CreateAnnouncement(c.Request.Context(), actor, req.Title, req.Body)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, announcement)
}

func (s *Server) RunRecurringTasks(c *gin.Context) {
	spawned, err := s.tasksvc.SpawnRecurring(c.Request.Context(), time.Now().UTC())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"spawned": spawned})
}
