package server

import (
	"strings"

	taskdomain "github.com/erayastyle/ops-hub/internal/task/domain"
	userdomain "github.com/erayastyle/ops-hub/internal/user/domain"
	"github.com/gin-gonic/gin"
)

const (
	sessionCookieName = "opshub_session"
	contextUserKey    = "current_user"
)

// AuthRequired resolves the session cookie to a user and stores it on
// the request context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(sessionCookieName)
		if err != nil || strings.TrimSpace(token) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		user, err := s.authsvc.Resolve(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

// RequireRole gates a route to the listed roles. It must run after
// AuthRequired.
func (s *Server) RequireRole(roles ...userdomain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		AbortWithError(c, ErrForbidden)
	}
}

func currentUser(c *gin.Context) *userdomain.User {
	value, ok := c.Get(contextUserKey)
	if !ok {
		return nil
	}
	user, ok := value.(*userdomain.User)
	if !ok {
		return nil
	}
	return user
}

func actorFrom(user *userdomain.User) taskdomain.Actor {
	if user == nil {
		return taskdomain.Actor{}
	}
	return taskdomain.Actor{
		ID:   user.ID,
		Name: user.Name,
		Role: user.Role,
		Team: user.Team,
	}
}
