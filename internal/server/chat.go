package server

import (
	"net/http"
	"strings"

	chatdomain "github.com/erayastyle/ops-hub/internal/chat/domain"
	"github.com/gin-gonic/gin"
)

type SendMessageRequest struct {
	Content     string   `json:"content"`
	Attachments []string `json:"attachments"`
}

type ThreadReplyRequest struct {
	Content string `json:"content"`
}

type ReactionRequest struct {
	Emoji string `json:"emoji"`
}

type EditMessageRequest struct {
	Content string `json:"content"`
}

func (s *Server) ListChannels(c *gin.Context) {
	channels, err := s.chatsvc.ListChannels(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"channels": channels})
}

func (s *Server) ChannelMessages(c *gin.Context) {
	limit := 0
	if parsed, err := parseOptionalInt(c.Query("limit")); err != nil {
		AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
		return
	} else if parsed != nil {
		limit = *parsed
	}

	page, err := s.chatsvc.ChannelMessages(c.Request.Context(), chatdomain.ChannelMessagesRequest{
		Channel:  c.Param("name"),
		Limit:    limit,
		BeforeID: strings.TrimSpace(c.Query("before")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) SendChannelMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	user := currentUser(c)
	msg, err := s.chatsvc.SendChannelMessage(c.Request.Context(), chatdomain.SendChannelMessageRequest{
		Channel:     c.Param("name"),
		SenderID:    user.ID,
		SenderName:  user.Name,
		Content:     req.Content,
		Attachments: req.Attachments,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (s *Server) DirectMessages(c *gin.Context) {
	limit := 0
	if parsed, err := parseOptionalInt(c.Query("limit")); err != nil {
		AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
		return
	} else if parsed != nil {
		limit = *parsed
	}

	user := currentUser(c)
	page, err := s.chatsvc.DirectMessages(c.Request.Context(), chatdomain.DirectMessagesRequest{
		UserA:    user.ID,
		UserB:    c.Param("userId"),
		Limit:    limit,
		BeforeID: strings.TrimSpace(c.Query("before")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) SendDirectMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	user := currentUser(c)
	msg, err := s.chatsvc.SendDirectMessage(c.Request.Context(), chatdomain.SendDirectMessageRequest{
		FromID:      user.ID,
		FromName:    user.Name,
		ToID:        c.Param("userId"),
		Content:     req.Content,
		Attachments: req.Attachments,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (s *Server) Thread(c *gin.Context) {
	limit := 0
	if parsed, err := parseOptionalInt(c.Query("limit")); err != nil {
		AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
		return
	} else if parsed != nil {
		limit = *parsed
	}

	messages, err := s.chatsvc.Thread(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (s *Server) ThreadReply(c *gin.Context) {
	var req ThreadReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	user := currentUser(c)
	msg, err := s.chatsvc.ThreadReply(c.Request.Context(), chatdomain.ThreadReplyRequest{
		ParentMessageID: c.Param("id"),
		SenderID:        user.ID,
		SenderName:      user.Name,
		Content:         req.Content,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (s *Server) ToggleReaction(c *gin.Context) {
	var req ReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Emoji) == "" {
		AbortWithError(c, newValidationError("emoji", "invalid_emoji", "emoji is required"))
		return
	}

	user := currentUser(c)
	reactions, err := s.chatsvc.ToggleReaction(c.Request.Context(), c.Param("id"), user.ID, req.Emoji)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reactions": reactions})
}

func (s *Server) EditMessage(c *gin.Context) {
	var req EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	user := currentUser(c)
	err := s.chatsvc.EditMessage(c.Request.Context(), chatdomain.EditMessageRequest{
		MessageID: c.Param("id"),
		UserID:    user.ID,
		Content:   req.Content,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) DeleteMessage(c *gin.Context) {
	user := currentUser(c)
	if err := s.chatsvc.DeleteMessage(c.Request.Context(), c.Param("id"), user.ID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) MarkRead(c *gin.Context) {
	user := currentUser(c)
	if err := s.chatsvc.MarkRead(c.Request.Context(), c.Param("id"), user.ID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) UnreadCounts(c *gin.Context) {
	user := currentUser(c)
	counts, err := s.chatsvc.UnreadCounts(c.Request.Context(), user.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (s *Server) SearchMessages(c *gin.Context) {
	dateFrom, dateTo, err := parseDateRange(c.Query("date_from"), c.Query("date_to"))
	if err != nil {
		AbortWithError(c, newValidationError("date_from", "invalid_time", "invalid date"))
		return
	}

	messages, err := s.chatsvc.Search(c.Request.Context(), chatdomain.SearchRequest{
		Query:    strings.TrimSpace(c.Query("q")),
		Channel:  strings.TrimSpace(c.Query("channel")),
		SenderID: strings.TrimSpace(c.Query("sender_id")),
		DateFrom: dateFrom,
		DateTo:   dateTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
