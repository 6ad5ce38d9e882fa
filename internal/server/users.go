package server

import (
	"net/http"
	"strings"

	userdomain "github.com/erayastyle/ops-hub/internal/user/domain"
	"github.com/gin-gonic/gin"
)

type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Team     string `json:"team"`
}

type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	Team     *string `json:"team"`
	Password *string `json:"password"`
	Active   *bool   `json:"active"`
}

func (s *Server) ListUsers(c *gin.Context) {
	users, err := s.usersvc.List(c.Request.Context(), userdomain.ListUsersRequest{
		Team: strings.TrimSpace(c.Query("team")),
		Role: userdomain.Role(strings.TrimSpace(c.Query("role"))),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (s *Server) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	user, err := s.usersvc.Create(c.Request.Context(), userdomain.CreateUserRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     userdomain.Role(req.Role),
		Team:     req.Team,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (s *Server) GetUser(c *gin.Context) {
	user, err := s.usersvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := userdomain.UpdateUserRequest{
		ID:       c.Param("id"),
		Name:     req.Name,
		Team:     req.Team,
		Password: req.Password,
		Active:   req.Active,
	}
	if req.Role != nil {
		role := userdomain.Role(*req.Role)
		update.Role = &role
	}

	user, err := s.usersvc.Update(c.Request.Context(), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) DeleteUser(c *gin.Context) {
	if err := s.usersvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
