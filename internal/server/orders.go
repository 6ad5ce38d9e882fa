package server

import (
	"net/http"
	"strings"

	orderdomain "github.com/erayastyle/ops-hub/internal/order/domain"
	"github.com/gin-gonic/gin"
)

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

type UpdateOrderTagsRequest struct {
	Tags []string `json:"tags"`
}

type UpdateOrderNoteRequest struct {
	Note string `json:"note"`
}

func (s *Server) ListOrders(c *gin.Context) {
	startDate, endDate, err := parseDateRange(c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		AbortWithError(c, newValidationError("start_date", "invalid_time", "invalid date"))
		return
	}

	limit := 0
	if parsed, err := parseOptionalInt(c.Query("limit")); err != nil {
		AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
		return
	} else if parsed != nil {
		limit = *parsed
	}

	var statuses []orderdomain.Status
	for _, raw := range strings.Split(c.Query("status"), ",") {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			statuses = append(statuses, orderdomain.Status(trimmed))
		}
	}

	resp, err := s.ordersvc.List(c.Request.Context(), orderdomain.ListOrdersRequest{
		Statuses:      statuses,
		Query:         strings.TrimSpace(c.Query("q")),
		StartDate:     startDate,
		EndDate:       endDate,
		PaymentMethod: strings.TrimSpace(c.Query("payment_method")),
		City:          strings.TrimSpace(c.Query("city")),
		State:         strings.TrimSpace(c.Query("state")),
		Tag:           strings.TrimSpace(c.Query("tag")),
		Cursor:        strings.TrimSpace(c.Query("cursor")),
		Limit:         limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetOrder(c *gin.Context) {
	order, err := s.ordersvc.Get(c.Request.Context(), c.Param("ref"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) OrderMetrics(c *gin.Context) {
	startDate, endDate, err := parseDateRange(c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		AbortWithError(c, newValidationError("start_date", "invalid_time", "invalid date"))
		return
	}

	metrics, err := s.ordersvc.Metrics(c.Request.Context(), orderdomain.MetricsRequest{
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}

func (s *Server) UpdateOrderStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	user := currentUser(c)
	err := s.ordersvc.UpdateStatus(c.Request.Context(), orderdomain.UpdateStatusRequest{
		Ref:       c.Param("ref"),
		Status:    orderdomain.Status(req.Status),
		Note:      req.Note,
		ActorID:   user.ID,
		ActorName: user.Name,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) UpdateOrderTags(c *gin.Context) {
	var req UpdateOrderTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	user := currentUser(c)
	err := s.ordersvc.UpdateTags(c.Request.Context(), orderdomain.UpdateTagsRequest{
		Ref:       c.Param("ref"),
		Tags:      req.Tags,
		ActorID:   user.ID,
		ActorName: user.Name,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) UpdateOrderNote(c *gin.Context) {
	var req UpdateOrderNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	user := currentUser(c)
	err := s.ordersvc.UpdateNote(c.Request.Context(), orderdomain.UpdateNoteRequest{
		Ref:       c.Param("ref"),
		Note:      req.Note,
		ActorID:   user.ID,
		ActorName: user.Name,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
