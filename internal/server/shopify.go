package server

import (
	"io"
	"net/http"

	"github.com/erayastyle/ops-hub/internal/shopify"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ShopifyWebhook accepts order create/update callbacks. The HMAC
// signature replaces session auth on this route.
func (s *Server) ShopifyWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if !s.syncsvc.VerifyWebhook(body, c.GetHeader(shopify.HeaderHmac)) {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	if err := s.syncsvc.HandleWebhook(c.Request.Context(), body); err != nil {
		s.log.Error("webhook processing failed", zap.Error(err))
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) TriggerSync(c *gin.Context) {
	if !s.syncsvc.Configured() {
		AbortWithError(c, shopify.ErrNotConfigured)
		return
	}

	synced, err := s.syncsvc.SyncRecent(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"synced": synced})
}

type BackfillRequest struct {
	StartDate string `json:"start_date"`
}

func (s *Server) TriggerBackfill(c *gin.Context) {
	if !s.syncsvc.Configured() {
		AbortWithError(c, shopify.ErrNotConfigured)
		return
	}

	var req BackfillRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		AbortWithError(c, invalidRequestError())
		return
	}

	startDate, err := parseOptionalTime(req.StartDate, false)
	if err != nil {
		AbortWithError(c, newValidationError("start_date", "invalid_time", "invalid date"))
		return
	}

	synced, err := s.syncsvc.Backfill(c.Request.Context(), startDate)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"synced": synced})
}

func (s *Server) SyncStatus(c *gin.Context) {
	status, err := s.syncsvc.Status(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}
