package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.authsvc.Login(c.Request.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	maxAge := int(result.Session.ExpiresAt.Sub(result.Session.CreatedAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, result.Session.Token, maxAge, "/", "", false, true)

	c.JSON(http.StatusOK, gin.H{
		"user":       result.User,
		"expires_at": result.Session.ExpiresAt,
	})
}

func (s *Server) Logout(c *gin.Context) {
	token, err := c.Cookie(sessionCookieName)
	if err == nil && strings.TrimSpace(token) != "" {
		if err := s.authsvc.Logout(c.Request.Context(), token); err != nil {
			AbortWithError(c, err)
			return
		}
	}

	c.SetCookie(sessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) Me(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	c.JSON(http.StatusOK, user)
}
